package agents

import (
	"fmt"
	"math"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// Policy orders the hunger and safety goals. Both orderings have shipped, so
// it is configurable rather than fixed.
type Policy uint8

const (
	HungerFirst Policy = iota // Sickness, hunger/thirst, then safety
	SafetyFirst               // Safety, sickness, then hunger/thirst
)

// ParsePolicy maps a configuration string onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "hunger_first":
		return HungerFirst, nil
	case "safety_first":
		return SafetyFirst, nil
	}
	return HungerFirst, fmt.Errorf("unknown goal policy %q", s)
}

// Goal names the rule that produced a transition.
type Goal uint8

const (
	GoalWake Goal = iota
	GoalCalm
	GoalRest
	GoalForage
	GoalHunt
	GoalDrink
	GoalFlee
	GoalWarmth
	GoalShelter
	GoalSocial
	GoalWander
)

var goalNames = [...]string{"wake", "calm", "rest", "forage", "hunt", "drink", "flee", "warmth", "shelter", "social", "wander"}

func (g Goal) String() string {
	if int(g) < len(goalNames) {
		return goalNames[g]
	}
	return "unknown"
}

// Transition is the single behavioral change chosen for an agent this tick.
type Transition struct {
	Goal     Goal
	State    world.AgentState
	TargetID string
	Target   *world.Vec3
	Intent   world.Intent
	Label    string
	Chat     string
}

// Apply writes the transition onto the agent, replacing its target pair.
func (t *Transition) Apply(a *world.Agent, tick uint64) {
	a.State = t.State
	a.SetTarget(t.TargetID, t.Target)
	a.Intent = t.Intent
	if t.Label != "" {
		a.ActionLabel = t.Label
	}
	if t.Chat != "" {
		a.Say(t.Chat, tick)
	}
}

// Goal tunables.
const (
	searchRadius     = 50.0
	hungerPriority   = 40.0 // Hunger that outranks safety under hunger_first
	criticalHealth   = 30.0
	thirstThreshold  = 35.0
	exhaustedEnergy  = 15.0
	wakeEnergy       = 95.0
	calmCortisol     = 70.0
	threatRadius     = 8.0
	threatClose      = 4.0
	threatCortisol   = 75.0
	fleeDistance     = 12.0
	warmRadius       = 4.0
	interactRange    = 2.0
	tameRadius       = 10.0
	chatRange        = 3.0
	wanderChance     = 0.05
	carelessCortisol = 80.0
)

// Solver is the utility goal solver: ordered rules, first applicable wins.
type Solver struct {
	Policy  Policy
	Recipes world.Recipes
}

// NewSolver creates a solver.
func NewSolver(policy Policy, recipes world.Recipes) *Solver {
	return &Solver{Policy: policy, Recipes: recipes}
}

type rule func(s *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (t *Transition, stop bool)

// Solve evaluates the goal rules for a in priority order against the view
// snapshot. It returns nil when the agent should carry on unchanged.
// a must already carry this tick's chemistry.
func (s *Solver) Solve(a *world.Agent, view *world.Snapshot, rng *entropy.Rand) *Transition {
	for _, r := range s.rules() {
		if t, stop := r(s, a, view, rng); t != nil || stop {
			return t
		}
	}
	return nil
}

func (s *Solver) rules() []rule {
	if s.Policy == SafetyFirst {
		return []rule{continuation, fleeing, safety, sickness, needs, shelter, appetite, social, wander}
	}
	return []rule{continuation, fleeing, sickness, needs, safety, shelter, appetite, social, wander}
}

func continuation(_ *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	switch a.State {
	case world.StateSleeping:
		if a.Needs.Energy >= wakeEnergy && !view.IsNight() {
			return &Transition{Goal: GoalWake, State: world.StateIdle, Label: "Waking up", Chat: "Good morning."}, true
		}
		return nil, true
	case world.StateMoving:
		return nil, a.TargetPos != nil
	}
	return nil, false
}

func fleeing(_ *Solver, a *world.Agent, _ *world.Snapshot, _ *entropy.Rand) (*Transition, bool) {
	if a.State != world.StateFleeing {
		return nil, false
	}
	if a.Chem.Cortisol < calmCortisol {
		return &Transition{Goal: GoalCalm, State: world.StateIdle, Label: "Calmed down"}, true
	}
	return nil, true
}

func sickness(_ *Solver, a *world.Agent, _ *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	if a.IsSick() {
		rest := 60.0
		if a.Personality.Conscientiousness > 0.5 {
			rest = 90
		}
		if a.Needs.Energy < rest {
			return &Transition{Goal: GoalRest, State: world.StateSleeping, Label: "Resting (Sick)", Chat: "I don't feel so good..."}, true
		}
	}
	if a.Needs.Energy < exhaustedEnergy {
		return &Transition{Goal: GoalRest, State: world.StateSleeping, Label: "Sleeping", Chat: pick(rng, tiredLines)}, true
	}
	return nil, false
}

// needs covers hunger, critical health and thirst.
func needs(s *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	if (a.Needs.Health < criticalHealth || a.Needs.Hunger < hungerPriority) && a.Needs.Hunger < hungerTrigger(a.Personality) {
		if t := forage(a, view); t != nil {
			return t, true
		}
		if a.Inventory.Count(world.ItemMeat) > 0 {
			return &Transition{Goal: GoalForage, State: world.StateWorking, TargetID: world.TargetEatMeat, Label: "Eating meat"}, true
		}
		if t := s.hunt(a, view); t != nil {
			return t, true
		}
	}
	if a.Needs.Thirst < thirstThreshold {
		if w := view.NearestWater(a.Position); w != nil {
			if w.Reaches(a.Position) {
				return &Transition{Goal: GoalDrink, State: world.StateWorking, TargetID: world.TargetDrink, Label: "Drinking"}, true
			}
			pos := w.Position
			return &Transition{Goal: GoalDrink, State: world.StateMoving, TargetID: world.TargetDrink, Target: &pos, Label: "Looking for water"}, true
		}
	}
	return nil, false
}

// hungerTrigger is the hunger level below which an agent will eat at all.
// Neurotic agents start worrying about food sooner.
func hungerTrigger(p world.Personality) float64 {
	return 50 + p.Neuroticism*20
}

// appetite sends an unoccupied agent foraging once hunger drops below its
// trigger, ahead of socializing and wandering.
func appetite(_ *Solver, a *world.Agent, view *world.Snapshot, _ *entropy.Rand) (*Transition, bool) {
	if a.State != world.StateIdle && a.State != world.StateThinking {
		return nil, false
	}
	if a.Needs.Hunger >= hungerTrigger(a.Personality) {
		return nil, false
	}
	if t := forage(a, view); t != nil {
		return t, true
	}
	return nil, false
}

func forage(a *world.Agent, view *world.Snapshot) *Transition {
	var food *world.Flora
	best := searchRadius
	for _, f := range view.Flora {
		if !f.Edible || !f.Available() || f.OnFire {
			continue
		}
		if score, ok := Recall(a, string(f.Type), "EAT"); ok && score < 0 {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < best {
			food, best = f, d
		}
	}
	if food == nil {
		return nil
	}
	pos := food.Position
	return &Transition{Goal: GoalForage, State: world.StateMoving, TargetID: food.ID, Target: &pos, Label: "Foraging"}
}

// hunt targets the nearest untamed prey animal. Predators are only hunted by
// agents carrying a spear. An agent without a spear crafts one first when it can.
func (s *Solver) hunt(a *world.Agent, view *world.Snapshot) *Transition {
	armed := a.Tool == world.ItemSpear
	if !armed && a.Inventory.Covers(s.Recipes.Spear) {
		return &Transition{Goal: GoalHunt, State: world.StateWorking, TargetID: world.TargetSpear, Label: "Crafting a spear"}
	}
	var prey *world.Fauna
	best := searchRadius
	for _, f := range view.Fauna {
		if f.Tamed || !f.Alive() || (f.Aggressive && !armed) {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < best {
			prey, best = f, d
		}
	}
	if prey == nil {
		return nil
	}
	if best < interactRange {
		return &Transition{Goal: GoalHunt, State: world.StateWorking, TargetID: prey.ID, Intent: world.IntentAttack, Label: fmt.Sprintf("Hunting a %s", prey.Type)}
	}
	pos := prey.Position
	return &Transition{Goal: GoalHunt, State: world.StateMoving, TargetID: prey.ID, Target: &pos, Intent: world.IntentAttack, Label: fmt.Sprintf("Stalking a %s", prey.Type)}
}

func safety(s *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	var threat *world.Fauna
	best := threatRadius
	for _, f := range view.Fauna {
		if !f.Aggressive || f.Tamed || !f.Alive() {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < best {
			threat, best = f, d
		}
	}
	if threat != nil && (best < threatClose || a.Chem.Cortisol > threatCortisol) {
		pos := view.Bounds.Clamp(FleeFrom(a.Position, threat.Position, rng))
		return &Transition{Goal: GoalFlee, State: world.StateFleeing, Target: &pos, Label: "Avoiding predator", Chat: pick(rng, dangerLines)}, true
	}

	comfort := 20 + a.Personality.Conscientiousness*20
	if view.Season == world.Winter {
		comfort += 20
	}
	if a.Needs.Temperature >= comfort {
		return nil, false
	}

	if fire := nearestWarmth(a, view); fire != nil {
		if world.Dist(fire.Position, a.Position) < warmRadius {
			return nil, true
		}
		pos := fire.Position
		return &Transition{Goal: GoalWarmth, State: world.StateMoving, TargetID: fire.ID, Target: &pos, Label: "Seeking warmth"}, true
	}
	if a.Inventory.Covers(s.Recipes.Campfire) {
		return &Transition{Goal: GoalWarmth, State: world.StateWorking, TargetID: world.TargetCampfire, Label: "Building fire"}, true
	}
	if tree := nearestYield(a, view, world.ItemWood); tree != nil {
		pos := tree.Position
		return &Transition{Goal: GoalWarmth, State: world.StateMoving, TargetID: tree.ID, Target: &pos, Label: "Need wood for warmth"}, true
	}
	return nil, false
}

// FleeFrom mirrors the threat through the agent and runs that way, with a
// little jitter so agents do not bunch up.
func FleeFrom(pos, threat world.Vec3, rng *entropy.Rand) world.Vec3 {
	dx, dz := pos.X-threat.X, pos.Z-threat.Z
	d := math.Hypot(dx, dz)
	if d == 0 {
		angle := rng.Angle()
		dx, dz, d = math.Sin(angle), math.Cos(angle), 1
	}
	return world.Vec3{
		X: pos.X + dx/d*fleeDistance + rng.Range(-2, 2),
		Z: pos.Z + dz/d*fleeDistance + rng.Range(-2, 2),
	}
}

// nearestWarmth returns the closest campfire or the agent's own house.
func nearestWarmth(a *world.Agent, view *world.Snapshot) *world.Building {
	var out *world.Building
	best := math.MaxFloat64
	for _, b := range view.Buildings {
		if b.Health <= 0 {
			continue
		}
		if b.Type == world.BuildingCampfire || (b.Type == world.BuildingHouse && b.OwnerID == a.ID) {
			if d := world.Dist(b.Position, a.Position); d < best {
				out, best = b, d
			}
		}
	}
	return out
}

func nearestYield(a *world.Agent, view *world.Snapshot, item world.Item) *world.Flora {
	var out *world.Flora
	best := math.MaxFloat64
	for _, f := range view.Flora {
		if f.Yield != item || !f.Available() || f.OnFire {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < best {
			out, best = f, d
		}
	}
	return out
}

var buildOrder = []world.Item{world.ItemWood, world.ItemStone, world.ItemMud}

func shelter(s *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	if view.HasHouse(a.ID) || a.TargetID == world.TargetHouseSite {
		return nil, false
	}
	if a.Personality.Conscientiousness < 0.2 && a.Chem.Cortisol < carelessCortisol && a.Needs.Temperature > 30 {
		return nil, false
	}

	if a.Inventory.Covers(s.Recipes.House) {
		dist := a.Personality.Openness*40 + 5
		site := view.Bounds.Clamp(world.Offset(a.Position, rng.Angle(), dist))
		return &Transition{Goal: GoalShelter, State: world.StateMoving, TargetID: world.TargetHouseSite, Target: &site, Label: "Found a spot for my house"}, true
	}

	var needed world.Item
	for _, item := range buildOrder {
		if a.Inventory.Count(item) < s.Recipes.House[item] {
			needed = item
			break
		}
	}
	if needed == "" {
		// Recipe names an item outside the gatherable set.
		return nil, false
	}

	var sources []*world.Flora
	for _, f := range view.Flora {
		if f.Yield == needed && f.Available() && !f.OnFire {
			sources = append(sources, f)
		}
	}
	var src *world.Flora
	switch {
	case len(sources) == 0:
	case a.Personality.Conscientiousness > 0.5:
		src = nearestYield(a, view, needed)
	default:
		src = sources[rng.Intn(len(sources))]
	}
	if src != nil {
		pos := src.Position
		return &Transition{Goal: GoalShelter, State: world.StateMoving, TargetID: src.ID, Target: &pos, Label: fmt.Sprintf("Gathering %s", needed)}, true
	}

	half := view.Bounds.Half()
	pos := world.Vec3{X: rng.Range(-half, half), Z: rng.Range(-half, half)}
	return &Transition{Goal: GoalShelter, State: world.StateMoving, Target: &pos, Label: fmt.Sprintf("Searching for %s...", needed)}, true
}

func social(_ *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	if a.State == world.StateSocializing {
		return nil, false
	}
	if a.Needs.Social >= 50-a.Personality.Extraversion*30 && a.Chem.Oxytocin <= 60 {
		return nil, false
	}

	if a.Personality.Agreeableness > 0.6 {
		for _, f := range view.Fauna {
			if f.Aggressive || f.Tamed || !f.Alive() {
				continue
			}
			d := world.Dist(f.Position, a.Position)
			if d >= tameRadius {
				continue
			}
			if d < interactRange {
				return &Transition{Goal: GoalSocial, State: world.StateWorking, TargetID: f.ID, Intent: world.IntentTame, Label: "Taming animal"}, true
			}
			pos := f.Position
			return &Transition{Goal: GoalSocial, State: world.StateMoving, TargetID: f.ID, Target: &pos, Intent: world.IntentTame, Label: "Approaching animal"}, true
		}
	}

	var friend *world.Agent
	best := math.MaxFloat64
	for _, o := range view.Agents {
		if o.ID == a.ID {
			continue
		}
		if d := world.Dist(o.Position, a.Position); d < best {
			friend, best = o, d
		}
	}
	if friend == nil {
		return nil, false
	}
	if best < chatRange {
		return &Transition{Goal: GoalSocial, State: world.StateSocializing, TargetID: friend.ID, Label: "Chatting", Chat: pick(rng, greetingLines)}, true
	}
	pos := friend.Position
	return &Transition{Goal: GoalSocial, State: world.StateMoving, TargetID: friend.ID, Target: &pos, Label: "Seeking " + friend.Name}, true
}

func wander(_ *Solver, a *world.Agent, view *world.Snapshot, rng *entropy.Rand) (*Transition, bool) {
	if a.State != world.StateIdle || !rng.Chance(wanderChance) {
		return nil, false
	}
	dist := 5 + a.Personality.Openness*20
	pos := view.Bounds.Clamp(world.Offset(a.Position, rng.Angle(), dist))
	label := "Wandering nearby"
	if a.Personality.Openness > 0.7 {
		label = "Exploring the unknown"
	}
	return &Transition{Goal: GoalWander, State: world.StateMoving, Target: &pos, Label: label}, true
}
