package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// LowGround is the height below which ground counts as wet lowland.
// Puddles form there in rain and predators refuse to cross it.
const LowGround = 0.6

// Terrain maps a planar position to ground height.
type Terrain interface {
	Height(x, z float64) float64
}

// NoiseTerrain is a rolling height field built from layered simplex noise.
type NoiseTerrain struct {
	noise     opensimplex.Noise
	frequency float64
	amplitude float64
}

// NewNoiseTerrain creates a height field from seed.
func NewNoiseTerrain(seed int64) *NoiseTerrain {
	return &NoiseTerrain{
		noise:     opensimplex.NewNormalized(seed),
		frequency: 0.045,
		amplitude: 4,
	}
}

// Height returns ground height at (x, z), never negative.
func (t *NoiseTerrain) Height(x, z float64) float64 {
	n := octaveNoise(t.noise, x, z, 4, t.frequency, 0.5)
	h := (n - 0.25) * t.amplitude
	if h < 0 {
		return 0
	}
	return h
}

// FlatTerrain is a constant-height field.
type FlatTerrain float64

// Height returns the constant height.
func (f FlatTerrain) Height(_, _ float64) float64 {
	return float64(f)
}

// IsLow reports whether the ground at p is wet lowland.
func IsLow(t Terrain, p Vec3) bool {
	return t.Height(p.X, p.Z) < LowGround
}

// Project snaps p onto the terrain surface.
func Project(t Terrain, p Vec3) Vec3 {
	p.Y = t.Height(p.X, p.Z)
	return p
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
