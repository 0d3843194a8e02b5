package agents

import (
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// Action tunables.
const (
	attackDamage      = 10.0
	spearMultiplier   = 2.5
	meatYield         = 2
	huntHungerRestore = 30.0
	meatNutrition     = 25.0
	cohesionRadius    = 10.0
	cohesionBonus     = 5.0
	drinkRestore      = 40.0
	poisonTicks       = 300
	poisonDamage      = 10.0
	houseSerotonin    = 50.0
	houseRadius       = 2.0
	campfireRadius    = 1.0
	siteGap           = 0.5
	tameDopamine      = 30.0
	tameOxytocin      = 20.0
)

// Resolver applies the effect of an interaction once an agent reaches or
// works its target.
type Resolver struct {
	Recipes world.Recipes
}

// Resolve performs the interaction named by a.TargetID against the live
// snapshot and returns the state the agent should move to. Missing resources
// make the action a no-op.
func (r *Resolver) Resolve(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) world.AgentState {
	switch id := a.TargetID; {
	case id == world.TargetHouseSite:
		r.buildHouse(a, s)
	case id == world.TargetCampfire:
		r.buildCampfire(a, s)
	case id == world.TargetSpear:
		r.craftSpear(a, s)
	case id == world.TargetDrink:
		drink(a, s)
	case id == world.TargetEatMeat:
		eatMeat(a, s)
	case s.FloraByID(id) != nil:
		interactFlora(a, s.FloraByID(id), s)
	case s.FaunaByID(id) != nil:
		interactFauna(a, s.FaunaByID(id), s)
	case s.Agent(id) != nil && id != a.ID:
		return converse(a, s.Agent(id), s, rng)
	}
	return world.StateIdle
}

func (r *Resolver) buildHouse(a *world.Agent, s *world.Snapshot) {
	if !a.Inventory.Consume(r.Recipes.House) {
		return
	}
	pos := buildSite(a, s, houseRadius+a.Radius+siteGap)
	s.AddBuilding(&world.Building{
		ID:       uuid.NewString(),
		Type:     world.BuildingHouse,
		Position: pos,
		OwnerID:  a.ID,
		Radius:   houseRadius,
		Health:   100,
	})
	a.Chem.Serotonin += houseSerotonin
	a.Chem.Clamp()
	a.ActionLabel = "Built a home"
	AddMemory(a, s.Tick, "Built my own house", 0.9)
	LearnOutcome(a, s.Tick, world.TargetHouseSite, "BUILD", 80)
	s.Log(world.EventSystem, "%s constructed a HOUSE!", a.Name)
	s.Emit(world.SignalBuild, a.ID, pos)
}

func (r *Resolver) buildCampfire(a *world.Agent, s *world.Snapshot) {
	if !a.Inventory.Consume(r.Recipes.Campfire) {
		return
	}
	pos := buildSite(a, s, campfireRadius+a.Radius+siteGap)
	s.AddBuilding(&world.Building{
		ID:       uuid.NewString(),
		Type:     world.BuildingCampfire,
		Position: pos,
		OwnerID:  a.ID,
		Radius:   campfireRadius,
		Health:   50,
	})
	a.ActionLabel = "Warming by the fire"
	LearnOutcome(a, s.Tick, world.TargetCampfire, "BUILD", 30)
	s.Log(world.EventSystem, "%s built a fire!", a.Name)
	s.Emit(world.SignalBuild, a.ID, pos)
}

// buildSite places a new structure offset along X from the builder, far enough
// that the two do not overlap. Near the eastern edge it goes west instead.
func buildSite(a *world.Agent, s *world.Snapshot, offset float64) world.Vec3 {
	pos := s.Bounds.Clamp(world.Vec3{X: a.Position.X + offset, Y: a.Position.Y, Z: a.Position.Z})
	if world.Dist(pos, a.Position) < offset {
		pos = s.Bounds.Clamp(world.Vec3{X: a.Position.X - offset, Y: a.Position.Y, Z: a.Position.Z})
	}
	return pos
}

func (r *Resolver) craftSpear(a *world.Agent, s *world.Snapshot) {
	if a.Tool == world.ItemSpear || !a.Inventory.Consume(r.Recipes.Spear) {
		return
	}
	a.Tool = world.ItemSpear
	a.ActionLabel = "Armed with a spear"
	LearnOutcome(a, s.Tick, world.TargetSpear, "CRAFT", 30)
	s.Log(world.EventAgent, "%s crafted a spear.", a.Name)
	s.Emit(world.SignalBuild, a.ID, a.Position)
}

func drink(a *world.Agent, s *world.Snapshot) {
	w := s.NearestWater(a.Position)
	if w == nil || !w.Reaches(a.Position) {
		return
	}
	a.Needs.Thirst = world.Clamp100(a.Needs.Thirst + drinkRestore)
	a.ActionLabel = "Refreshed"
	s.Log(world.EventAgent, "%s drank from the %s.", a.Name, strings.ToLower(string(w.Kind)))
}

func eatMeat(a *world.Agent, s *world.Snapshot) {
	if !a.Inventory.Remove(world.ItemMeat, 1) {
		return
	}
	a.Needs.Hunger = world.Clamp100(a.Needs.Hunger + meatNutrition)
	a.ActionLabel = "Ate some meat"
	s.Log(world.EventAgent, "%s ate some meat.", a.Name)
	s.Emit(world.SignalEat, a.ID, a.Position)
}

func interactFlora(a *world.Agent, f *world.Flora, s *world.Snapshot) {
	if !f.Available() {
		return
	}
	if f.Yield != "" {
		a.Inventory.Add(f.Yield, 1)
		f.ResourcesLeft--
		if f.ResourcesLeft < 0 {
			f.ResourcesLeft = 0
		}
		a.ActionLabel = "Gathered " + strings.ToLower(string(f.Yield))
		s.Log(world.EventAgent, "%s gathered %s", a.Name, f.Yield)
		s.Emit(world.SignalGather, a.ID, f.Position)
		return
	}

	f.ResourcesLeft--
	if f.ResourcesLeft < 0 {
		f.ResourcesLeft = 0
	}
	s.Emit(world.SignalEat, a.ID, f.Position)
	if f.Poisonous {
		a.Sickness = world.SicknessPoison
		a.SicknessTicks = poisonTicks
		a.Needs.Health = world.Clamp100(a.Needs.Health - poisonDamage)
		a.ActionLabel = "Feeling sick"
		AddMemory(a, s.Tick, "Got sick after eating "+string(f.Type), 0.8)
		LearnOutcome(a, s.Tick, string(f.Type), "EAT", -50)
		s.Log(world.EventDanger, "%s ate a poisonous %s!", a.Name, f.Type)
		return
	}
	a.Needs.Hunger = world.Clamp100(a.Needs.Hunger + f.Nutrition)
	a.ActionLabel = "Ate " + strings.ToLower(string(f.Type))
	LearnOutcome(a, s.Tick, string(f.Type), "EAT", 50)
	s.Log(world.EventAgent, "%s ate %s", a.Name, f.Type)
}

func interactFauna(a *world.Agent, animal *world.Fauna, s *world.Snapshot) {
	if !animal.Alive() {
		return
	}
	if a.Intent == world.IntentAttack || animal.Aggressive {
		attack(a, animal, s)
		return
	}
	if animal.Tamed {
		return
	}
	animal.Tamed = true
	animal.OwnerID = a.ID
	animal.State = world.FaunaFollowing
	a.Chem.Dopamine += tameDopamine
	a.Chem.Oxytocin += tameOxytocin
	a.Chem.Clamp()
	a.ActionLabel = "Made a new friend"
	AddMemory(a, s.Tick, "Tamed a "+string(animal.Type), 0.6)
	s.Log(world.EventAgent, "%s tamed a %s!", a.Name, animal.Type)
	s.Emit(world.SignalTame, a.ID, animal.Position)
}

// attack deals weapon-scaled damage. A kill removes the animal immediately,
// feeds the hunter, and brings nearby agents closer together.
func attack(a *world.Agent, animal *world.Fauna, s *world.Snapshot) {
	dmg := attackDamage
	if a.Tool == world.ItemSpear {
		dmg *= spearMultiplier
	}
	animal.Health -= dmg
	s.Emit(world.SignalAttack, a.ID, animal.Position)
	if animal.Alive() {
		if animal.Aggressive {
			animal.State = world.FaunaHunting
		} else {
			animal.Startle(a.Position)
		}
		a.ActionLabel = "Fighting a " + strings.ToLower(string(animal.Type))
		s.Log(world.EventDanger, "%s strikes a %s.", a.Name, animal.Type)
		return
	}

	s.RemoveFauna(animal.ID)
	a.Inventory.Add(world.ItemMeat, meatYield)
	a.Needs.Hunger = world.Clamp100(a.Needs.Hunger + huntHungerRestore)
	for _, o := range s.Agents {
		if o.ID == a.ID || world.Dist(o.Position, a.Position) > cohesionRadius {
			continue
		}
		a.AdjustRelationship(o.ID, cohesionBonus)
		o.AdjustRelationship(a.ID, cohesionBonus)
		o.Chem.Oxytocin = world.Clamp100(o.Chem.Oxytocin + cohesionBonus)
	}
	a.ActionLabel = "Hunted a " + strings.ToLower(string(animal.Type))
	AddMemory(a, s.Tick, "Hunted a "+string(animal.Type), 0.7)
	LearnOutcome(a, s.Tick, string(animal.Type), "HUNT", 60)
	s.Log(world.EventAgent, "%s hunted a %s.", a.Name, animal.Type)
}

// converse opens a conversation on arrival next to another agent.
func converse(a, partner *world.Agent, s *world.Snapshot, rng *entropy.Rand) world.AgentState {
	line := pick(rng, greetingLines)
	a.Say(line, s.Tick)
	a.ActionLabel = "Talking to " + partner.Name
	AddConversation(a, a.Name+": "+line)
	s.Log(world.EventDialogue, "%s: %s", a.Name, line)
	s.Emit(world.SignalChat, a.ID, a.Position)
	return world.StateSocializing
}
