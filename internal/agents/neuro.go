package agents

import "github.com/talgya/neurovale/internal/world"

// Neurochemistry tunables.
const (
	stressGain       = 0.05 // Cortisol per unit of weighted stress
	cortisolDecay    = 0.2
	predatorRadius   = 8.0
	friendRadius     = 5.0
	dopamineFloor    = 10.0
	adrenalineSurge  = 5.0
	adrenalineDecay  = 0.5
	serotoninRise    = 0.05
	serotoninFall    = 0.1
	serotoninRestore = 0.01
)

// UpdateChemistry returns the agent's hormone vector for this tick. It reads
// the agent and snapshot without modifying them.
func UpdateChemistry(a *world.Agent, s *world.Snapshot) world.Chemistry {
	c := a.Chem
	p := a.Personality
	homeless := !s.HasHouse(a.ID)

	stress := 0.0
	if a.Needs.Hunger < 30 {
		stress += 2
	}
	if a.Needs.Temperature < 40 {
		stress += 3
	}
	if homeless {
		stress += 5 + p.Conscientiousness*5
		if s.IsNight() {
			stress += 15
		}
		if s.Season == world.Winter {
			stress += 10
		}
	}
	if a.IsSick() {
		stress += 5
	}
	if predatorNear(a, s) {
		stress += 10
	}
	c.Cortisol += stress*(1+p.Neuroticism*0.5)*stressGain - cortisolDecay

	if c.Cortisol > PanicThreshold(p) {
		c.Adrenaline += adrenalineSurge
	} else {
		c.Adrenaline -= adrenalineDecay
	}

	if c.Dopamine > dopamineFloor {
		c.Dopamine -= 0.1
		if c.Dopamine < dopamineFloor {
			c.Dopamine = dopamineFloor
		}
	}

	if friendNear(a, s) {
		c.Oxytocin += 0.5 + p.Extraversion*0.5
	} else {
		c.Oxytocin -= 0.1 + p.Extraversion*0.1
	}

	switch {
	case c.Cortisol > 70:
		c.Serotonin -= serotoninFall
	case !homeless && a.Needs.Hunger > 50 && a.Needs.Thirst > 50 && a.Needs.Energy > 50:
		c.Serotonin += serotoninRise
	case c.Serotonin > 50:
		c.Serotonin -= serotoninRestore
	case c.Serotonin < 50:
		c.Serotonin += serotoninRestore
	}

	c.Clamp()
	return c
}

// PanicThreshold is the cortisol level above which adrenaline surges.
// More neurotic agents panic sooner.
func PanicThreshold(p world.Personality) float64 {
	return 90 - p.Neuroticism*20
}

func predatorNear(a *world.Agent, s *world.Snapshot) bool {
	for _, f := range s.Fauna {
		if f.Aggressive && !f.Tamed && f.Alive() && world.Dist(f.Position, a.Position) < predatorRadius {
			return true
		}
	}
	return false
}

func friendNear(a *world.Agent, s *world.Snapshot) bool {
	for _, o := range s.Agents {
		if o.ID != a.ID && world.Dist(o.Position, a.Position) < friendRadius {
			return true
		}
	}
	return false
}

// LearnOutcome records how an interaction turned out and feeds it back into
// chemistry: good outcomes release dopamine, bad ones cortisol. Open agents
// enjoy success more; neurotic agents take failure harder.
func LearnOutcome(a *world.Agent, tick uint64, target, action string, score float64) {
	if score > 0 {
		mult := 1.0
		if a.Personality.Openness > 0.7 {
			mult = 1.5
		}
		a.Chem.Dopamine += 5 * mult
	} else {
		mult := 1.0
		if a.Personality.Neuroticism > 0.7 {
			mult = 1.5
		}
		a.Chem.Cortisol += 5 * mult
	}
	a.Chem.Clamp()
	AddActionMemory(a, world.ActionMemory{Tick: tick, Target: target, Action: action, Outcome: score})
}
