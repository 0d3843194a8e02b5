// Package environment advances the non-agent parts of the world each tick:
// fire ignition and spread, puddle formation and evaporation, and wildlife.
// It runs before agents decide so hazards are already visible to them.
package environment

import (
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// Simulator holds the environment tunables.
type Simulator struct {
	Terrain   world.Terrain
	PuddleCap int
}

// New creates a simulator over the given terrain.
func New(terrain world.Terrain, puddleCap int) *Simulator {
	return &Simulator{Terrain: terrain, PuddleCap: puddleCap}
}

// Step applies one tick of fire, water and wildlife to s.
// The snapshot index must be current.
func (e *Simulator) Step(s *world.Snapshot, rng *entropy.Rand) {
	e.stepFire(s, rng)
	e.stepWater(s, rng)
	e.stepWildlife(s, rng)
}
