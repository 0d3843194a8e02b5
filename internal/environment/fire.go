package environment

import (
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// Fire tunables. Spread is less likely but reaches further from a campfire
// than from an entity that is already burning.
const (
	campfireSparkChance = 0.005
	campfireSparkRadius = 3.0
	campfireCatchChance = 0.1

	burnSpreadChance = 0.05
	burnSpreadRadius = 2.0
	burnCatchChance  = 0.3

	buildingBurnDamage = 1.0
	floraBurnResources = 0.1
	floraBurnDamage    = 1.0
)

// burnable is anything fire can take hold of.
type burnable struct {
	id      string
	pos     world.Vec3
	ignite  func() bool // Returns true if the entity was not already burning
	burning bool
}

func (e *Simulator) stepFire(s *world.Snapshot, rng *entropy.Rand) {
	targets := burnables(s)

	// Sources are fixed at the start of the tick; entities that catch fire
	// now only start spreading next tick.
	var campfires, burning []burnable
	for _, b := range s.Buildings {
		if b.Type == world.BuildingCampfire {
			campfires = append(campfires, burnable{id: b.ID, pos: b.Position})
		}
	}
	for _, t := range targets {
		if t.burning {
			burning = append(burning, t)
		}
	}

	ignited := 0
	for _, src := range campfires {
		if rng.Chance(campfireSparkChance) {
			ignited += spread(s, src, targets, campfireSparkRadius, campfireCatchChance, rng)
		}
	}
	for _, src := range burning {
		if rng.Chance(burnSpreadChance) {
			ignited += spread(s, src, targets, burnSpreadRadius, burnCatchChance, rng)
		}
	}
	if ignited > 0 {
		s.Log(world.EventDanger, "Fire spreads to %d more %s.", ignited, plural(ignited, "thing", "things"))
	}

	for _, b := range s.Buildings {
		if b.OnFire {
			b.Health -= buildingBurnDamage
			if b.Health <= 0 {
				b.Health = 0
				s.Log(world.EventDanger, "A %s burned down.", b.Type)
			}
		}
	}
	for _, f := range s.Flora {
		if f.OnFire {
			f.ResourcesLeft -= floraBurnResources
			if f.ResourcesLeft < 0 {
				f.ResourcesLeft = 0
			}
			f.Health -= floraBurnDamage
			if f.Health < 0 {
				f.Health = 0
			}
		}
	}
}

func burnables(s *world.Snapshot) []burnable {
	out := make([]burnable, 0, len(s.Flora)+len(s.Buildings))
	for _, f := range s.Flora {
		if !f.Flammable() {
			continue
		}
		f := f
		out = append(out, burnable{
			id:      f.ID,
			pos:     f.Position,
			burning: f.OnFire,
			ignite: func() bool {
				was := f.OnFire
				f.OnFire = true
				return !was
			},
		})
	}
	for _, b := range s.Buildings {
		b := b
		out = append(out, burnable{
			id:      b.ID,
			pos:     b.Position,
			burning: b.OnFire,
			ignite: func() bool {
				was := b.OnFire
				b.OnFire = true
				return !was
			},
		})
	}
	return out
}

// spread rolls ignition for every target within radius of src, returning how
// many newly caught fire.
func spread(s *world.Snapshot, src burnable, targets []burnable, radius, chance float64, rng *entropy.Rand) int {
	n := 0
	for _, t := range targets {
		if t.id == src.id || world.Dist(t.pos, src.pos) >= radius {
			continue
		}
		if rng.Chance(chance) && t.ignite() {
			s.Emit(world.SignalFire, "", t.pos)
			n++
		}
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
