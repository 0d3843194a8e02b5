package mind

import (
	"fmt"
	"math"

	"github.com/talgya/neurovale/internal/agents"
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// Merge tunables.
const (
	respondBonus  = 5.0
	ignorePenalty = -10.0
	siteSpread    = 5.0
	wanderMin     = 3.0
	wanderMax     = 10.0
	fleeRandom    = 10.0
	threatRange   = 8.0
)

// Merger applies oracle decisions to the live snapshot.
type Merger struct {
	Recipes world.Recipes
}

// Apply merges d into the agent it names. It returns false, leaving s
// untouched, when that agent no longer exists. A decision whose target cannot
// be resolved leaves the agent IDLE so the goal solver takes over next tick.
func (m *Merger) Apply(d Decision, s *world.Snapshot, rng *entropy.Rand) bool {
	info := d.Info()
	a := s.Agent(info.AgentID)
	if a == nil {
		return false
	}

	if info.Thought != "" {
		a.ActionLabel = info.Thought
		agents.AddThought(a, info.Thought)
	}
	if info.Dialogue != "" {
		a.Say(info.Dialogue, s.Tick)
		agents.AddConversation(a, fmt.Sprintf("%s: %s", a.Name, info.Dialogue))
		s.Emit(world.SignalChat, a.ID, a.Position)
	}

	ok := false
	switch v := d.(type) {
	case Move:
		ok = moveTo(a, s, v.Target, allIDs(s), world.IntentNone)
	case Gather:
		ok = moveTo(a, s, v.Target, floraIDs(s), world.IntentNone)
	case Craft:
		ok = m.craft(a, s, rng)
	case Sleep:
		a.State = world.StateSleeping
		a.ClearTarget()
		ok = true
	case Flee:
		flee(a, s, rng)
		ok = true
	case Socialize:
		ok = socialize(a, s, v.Target)
	case Respond:
		ok = answer(a, s, respondBonus)
	case Ignore:
		ok = answer(a, s, ignorePenalty)
	case Wander:
		pos := s.Bounds.Clamp(world.Offset(a.Position, rng.Angle(), rng.Range(wanderMin, wanderMax)))
		a.State = world.StateMoving
		a.SetTarget("", &pos)
		ok = true
	case Attack:
		ok = moveTo(a, s, v.Target, faunaIDs(s), world.IntentAttack)
	case Drink:
		ok = drink(a, s)
	}

	if !ok {
		a.State = world.StateIdle
		a.ClearTarget()
	}
	return true
}

func moveTo(a *world.Agent, s *world.Snapshot, target string, ids []string, intent world.Intent) bool {
	id, found := world.MatchPrefix(target, ids)
	if !found || id == a.ID {
		return false
	}
	pos, ok := positionOf(s, id)
	if !ok {
		return false
	}
	a.State = world.StateMoving
	a.SetTarget(id, &pos)
	a.Intent = intent
	return true
}

func (m *Merger) craft(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) bool {
	switch {
	case a.Inventory.Covers(m.Recipes.House) && !s.HasHouse(a.ID):
		site := s.Bounds.Clamp(world.Vec3{
			X: a.Position.X + rng.Range(-siteSpread, siteSpread),
			Z: a.Position.Z + rng.Range(-siteSpread, siteSpread),
		})
		a.State = world.StateMoving
		a.SetTarget(world.TargetHouseSite, &site)
	case a.Inventory.Covers(m.Recipes.Campfire):
		a.State = world.StateWorking
		a.SetTarget(world.TargetCampfire, nil)
	case a.Tool != world.ItemSpear && a.Inventory.Covers(m.Recipes.Spear):
		a.State = world.StateWorking
		a.SetTarget(world.TargetSpear, nil)
	default:
		return false
	}
	return true
}

func flee(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) {
	var threat *world.Fauna
	best := threatRange
	for _, f := range s.Fauna {
		if !f.Aggressive || f.Tamed || !f.Alive() {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < best {
			threat, best = f, d
		}
	}
	var pos world.Vec3
	if threat != nil {
		pos = agents.FleeFrom(a.Position, threat.Position, rng)
	} else {
		pos = world.Offset(a.Position, rng.Angle(), fleeRandom)
	}
	pos = s.Bounds.Clamp(pos)
	a.State = world.StateFleeing
	a.SetTarget("", &pos)
}

func socialize(a *world.Agent, s *world.Snapshot, target string) bool {
	if target != "" {
		var ids []string
		for _, o := range s.Agents {
			if o.ID != a.ID {
				ids = append(ids, o.ID)
			}
		}
		return moveTo(a, s, target, ids, world.IntentNone)
	}
	var friend *world.Agent
	best := math.MaxFloat64
	for _, o := range s.Agents {
		if o.ID == a.ID {
			continue
		}
		if d := world.Dist(o.Position, a.Position); d < best {
			friend, best = o, d
		}
	}
	if friend == nil {
		return false
	}
	a.State = world.StateMoving
	a.SetTarget(friend.ID, &friend.Position)
	return true
}

// answer reacts to an agent currently talking to a. A positive delta keeps
// the conversation going.
func answer(a *world.Agent, s *world.Snapshot, delta float64) bool {
	var talker *world.Agent
	for _, o := range s.Agents {
		if o.ID != a.ID && o.State == world.StateSocializing && o.TargetID == a.ID {
			talker = o
			break
		}
	}
	if talker == nil {
		return false
	}
	a.AdjustRelationship(talker.ID, delta)
	if delta > 0 {
		a.State = world.StateSocializing
		a.SetTarget(talker.ID, nil)
		return true
	}
	s.Log(world.EventDialogue, "%s ignored %s.", a.Name, talker.Name)
	a.State = world.StateIdle
	a.ClearTarget()
	return true
}

func drink(a *world.Agent, s *world.Snapshot) bool {
	w := s.NearestWater(a.Position)
	if w == nil {
		return false
	}
	if w.Reaches(a.Position) {
		a.State = world.StateWorking
		a.SetTarget(world.TargetDrink, nil)
		return true
	}
	pos := w.Position
	a.State = world.StateMoving
	a.SetTarget(world.TargetDrink, &pos)
	return true
}

func positionOf(s *world.Snapshot, id string) (world.Vec3, bool) {
	if f := s.FloraByID(id); f != nil {
		return f.Position, f.Available()
	}
	if f := s.FaunaByID(id); f != nil {
		return f.Position, f.Alive()
	}
	if o := s.Agent(id); o != nil {
		return o.Position, true
	}
	if b := s.BuildingByID(id); b != nil {
		return b.Position, b.Health > 0
	}
	return world.Vec3{}, false
}

func floraIDs(s *world.Snapshot) []string {
	ids := make([]string, 0, len(s.Flora))
	for _, f := range s.Flora {
		if f.Available() {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func faunaIDs(s *world.Snapshot) []string {
	ids := make([]string, 0, len(s.Fauna))
	for _, f := range s.Fauna {
		if f.Alive() {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func allIDs(s *world.Snapshot) []string {
	ids := floraIDs(s)
	ids = append(ids, faunaIDs(s)...)
	for _, o := range s.Agents {
		ids = append(ids, o.ID)
	}
	for _, b := range s.Buildings {
		ids = append(ids, b.ID)
	}
	return ids
}
