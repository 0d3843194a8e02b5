package environment

import (
	"github.com/google/uuid"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

const (
	puddleSpawnChance = 0.02
	puddleSpawnTries  = 4
	puddleTTL         = 300.0
	puddleMaxTTL      = 900.0
	puddleMaxSize     = 2.5
)

// Evaporation returns the per-tick puddle TTL loss for the weather.
// Wet weather returns a negative rate, so puddles last longer.
func Evaporation(w world.Weather) float64 {
	switch w {
	case world.WeatherStorm:
		return -1
	case world.WeatherRain:
		return -0.5
	case world.WeatherSnow:
		return 0.2
	case world.WeatherCloudy:
		return 0.5
	default:
		return 1
	}
}

func (e *Simulator) stepWater(s *world.Snapshot, rng *entropy.Rand) {
	rate := Evaporation(s.Weather)
	kept := s.Water[:0:0]
	for _, w := range s.Water {
		if w.Kind == world.WaterPuddle {
			w.TTL -= rate
			if w.TTL > puddleMaxTTL {
				w.TTL = puddleMaxTTL
			}
			if rate < 0 && w.Size < puddleMaxSize {
				w.Size += 0.002
			}
			if w.TTL <= 0 {
				continue
			}
		}
		kept = append(kept, w)
	}
	s.Water = kept

	if !s.Weather.Wet() || s.Puddles() >= e.PuddleCap || !rng.Chance(puddleSpawnChance) {
		return
	}
	half := s.Bounds.Half()
	for i := 0; i < puddleSpawnTries; i++ {
		p := world.Vec3{X: rng.Range(-half, half), Z: rng.Range(-half, half)}
		if !world.IsLow(e.Terrain, p) {
			continue
		}
		s.AddWater(&world.WaterPatch{
			ID:       uuid.NewString(),
			Kind:     world.WaterPuddle,
			Position: world.Project(e.Terrain, p),
			Size:     rng.Range(1, 2),
			TTL:      puddleTTL,
		})
		return
	}
}
