// Physiological stat decay: needs drain while awake, recover while asleep,
// and body temperature drifts with time of day, season, weather and fire.
package agents

import "github.com/talgya/neurovale/internal/world"

// Per-tick rates.
const (
	energyDrain   = 0.02
	hungerDrain   = 0.03
	thirstDrain   = 0.04
	socialDrain   = 0.02
	funDrain      = 0.01
	sleepRecovery = 0.1
	homeRecovery  = 0.05
	sleepHunger   = 0.01
	sleepThirst   = 0.015

	dayWarming   = 0.2
	nightCooling = 0.1
	seasonScale  = 0.01
	fireWarmth   = 0.5
	fireRadius   = 5.0
	homeWarmth   = 0.2
	homeRadius   = 3.0
	sickDrain    = 0.05
	poisonHarm   = 0.02
	thirstFloor  = 10.0
	hungerFloor  = 5.0
	starveHarm   = 0.05
	healRate     = 0.02
	chatLifetime = 100
)

// Decay applies one tick of stat changes to a using the live snapshot s.
func Decay(a *world.Agent, s *world.Snapshot) {
	n := &a.Needs
	home := nearOwnHouse(a, s)

	if a.State == world.StateSleeping {
		n.Energy += sleepRecovery
		if home {
			n.Energy += homeRecovery
		}
		n.Hunger -= sleepHunger
		n.Thirst -= sleepThirst
	} else {
		n.Energy -= energyDrain
		n.Hunger -= hungerDrain
		n.Thirst -= thirstDrain
		n.Social -= socialDrain
		n.Fun -= funDrain
	}

	n.Temperature += ambientChange(a, s, home)

	if a.IsSick() {
		n.Energy -= sickDrain
		if a.Sickness == world.SicknessPoison {
			n.Health -= poisonHarm
		}
		a.SicknessTicks--
		if a.SicknessTicks <= 0 {
			a.Sickness = world.SicknessNone
			a.SicknessTicks = 0
			s.Log(world.EventAgent, "%s recovered.", a.Name)
		}
	}

	if n.Thirst < thirstFloor {
		n.Health -= starveHarm
	}
	if n.Hunger < hungerFloor {
		n.Health -= starveHarm
	}
	if !a.IsSick() && n.Hunger > 50 && n.Thirst > 50 {
		n.Health += healRate
	}

	if a.Chat != "" && s.Tick > a.LastChatTick && s.Tick-a.LastChatTick > chatLifetime {
		a.Chat = ""
	}

	n.Clamp()
}

// ambientChange is the per-tick body temperature change from the environment.
func ambientChange(a *world.Agent, s *world.Snapshot, home bool) float64 {
	change := dayWarming
	if s.IsNight() {
		change = -nightCooling
	}
	change += s.Season.TempModifier() * seasonScale
	change -= s.Weather.ColdPenalty()
	for _, b := range s.Buildings {
		if b.Type == world.BuildingCampfire && world.Dist(b.Position, a.Position) < fireRadius {
			change += fireWarmth
			break
		}
	}
	if home {
		change += homeWarmth
	}
	return change
}

func nearOwnHouse(a *world.Agent, s *world.Snapshot) bool {
	for _, b := range s.Buildings {
		if b.Type == world.BuildingHouse && b.OwnerID == a.ID && world.Dist(b.Position, a.Position) < homeRadius+b.Radius {
			return true
		}
	}
	return false
}
