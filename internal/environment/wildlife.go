package environment

import (
	"math"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

const (
	wanderToggleChance = 0.02
	followDistance     = 3.0
	huntRadius         = 10.0
	biteRange          = 1.2
	biteChance         = 0.05
	biteDamage         = 5.0

	walkSpeed   = 0.04
	fleeSpeed   = 0.1
	followSpeed = 0.08
	huntSpeed   = 0.12
)

func (e *Simulator) stepWildlife(s *world.Snapshot, rng *entropy.Rand) {
	for _, a := range s.Fauna {
		if !a.Alive() {
			continue
		}
		switch {
		case a.Tamed && s.Agent(a.OwnerID) != nil:
			follow(a, s.Agent(a.OwnerID))
		case a.Aggressive && !a.Tamed:
			e.hunt(s, a, rng)
		default:
			wander(a, rng)
		}
		e.move(s, a)
	}
}

func follow(a *world.Fauna, owner *world.Agent) {
	if world.Dist(a.Position, owner.Position) > followDistance {
		a.State = world.FaunaFollowing
		a.Rotation = world.Heading(a.Position, owner.Position)
		return
	}
	a.State = world.FaunaIdle
}

func wander(a *world.Fauna, rng *entropy.Rand) {
	switch a.State {
	case world.FaunaIdle:
		if rng.Chance(wanderToggleChance) {
			a.State = world.FaunaMoving
			a.Rotation = rng.Angle()
		}
	case world.FaunaMoving:
		if rng.Chance(wanderToggleChance) {
			a.State = world.FaunaIdle
		}
	case world.FaunaFleeing:
		if a.FleeTicks > 0 {
			a.FleeTicks--
			return
		}
		a.State = world.FaunaIdle
	default:
		a.State = world.FaunaIdle
	}
}

// hunt chases the nearest agent in range and occasionally bites when close.
func (e *Simulator) hunt(s *world.Snapshot, a *world.Fauna, rng *entropy.Rand) {
	var prey *world.Agent
	best := huntRadius
	for _, ag := range s.Agents {
		if d := world.Dist(a.Position, ag.Position); d < best {
			prey, best = ag, d
		}
	}
	if prey == nil {
		if a.State == world.FaunaHunting {
			a.State = world.FaunaIdle
		}
		wander(a, rng)
		return
	}
	a.State = world.FaunaHunting
	a.Rotation = world.Heading(a.Position, prey.Position)
	if best < biteRange && rng.Chance(biteChance) {
		prey.Needs.Health = world.Clamp100(prey.Needs.Health - biteDamage)
		s.Log(world.EventDanger, "A %s bit %s!", a.Type, prey.Name)
		s.Emit(world.SignalAttack, prey.ID, prey.Position)
	}
}

// move steps a moving animal along its heading. Predators turn back from
// low wet ground; every animal turns back at the world edge.
func (e *Simulator) move(s *world.Snapshot, a *world.Fauna) {
	var speed float64
	switch a.State {
	case world.FaunaMoving:
		speed = walkSpeed
	case world.FaunaFleeing:
		speed = fleeSpeed
	case world.FaunaFollowing:
		speed = followSpeed
	case world.FaunaHunting:
		speed = huntSpeed
	default:
		return
	}
	next := world.Offset(a.Position, a.Rotation, speed)
	if !s.Bounds.Contains(next) || (a.Aggressive && world.IsLow(e.Terrain, next)) {
		a.Rotation = math.Mod(a.Rotation+math.Pi, 2*math.Pi)
		return
	}
	a.Position = world.Project(e.Terrain, next)
}
