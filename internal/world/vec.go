// Package world provides the simulation data model: agents, flora, fauna,
// buildings, water, the world clock and the per-tick snapshot.
package world

import "math"

// Vec3 is a position in world space. Y is terrain height; all planar
// distances are measured on the XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Dist returns the planar (XZ) distance between two positions.
func Dist(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Heading returns the Y-axis rotation that faces from a toward b.
func Heading(from, to Vec3) float64 {
	return math.Atan2(to.X-from.X, to.Z-from.Z)
}

// Offset returns the point dist units away from v along the given heading.
func Offset(v Vec3, heading, dist float64) Vec3 {
	return Vec3{X: v.X + math.Sin(heading)*dist, Y: v.Y, Z: v.Z + math.Cos(heading)*dist}
}

// Bounds is the square playable area centred on the origin.
type Bounds struct {
	Size float64 `json:"size"` // Full edge length
}

// Half returns the half edge length.
func (b Bounds) Half() float64 {
	return b.Size / 2
}

// Clamp pulls v inside the bounds. Y is left untouched.
func (b Bounds) Clamp(v Vec3) Vec3 {
	h := b.Half()
	v.X = clamp(v.X, -h, h)
	v.Z = clamp(v.Z, -h, h)
	return v
}

// Contains reports whether v lies inside the bounds.
func (b Bounds) Contains(v Vec3) bool {
	h := b.Half()
	return v.X >= -h && v.X <= h && v.Z >= -h && v.Z <= h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp100 clamps a stat to the [0, 100] range used by needs and chemistry.
func Clamp100(v float64) float64 {
	return clamp(v, 0, 100)
}
