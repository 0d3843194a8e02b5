// Agent state machine: executes the behavior chosen by the goal solver or the
// oracle. Movement, instant work, conversation and stale-target recovery.
package agents

import (
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

// ArrivalEpsilon is how close a walker must get to its target to count as
// arrived. It must stay above the collision correction step.
const ArrivalEpsilon = 0.8

// Movement and conversation tunables.
const (
	walkSpeed         = 0.08
	fleeSpeed         = 0.15
	stepSignalEvery   = 12
	talkRange         = 4.0
	talkBreakRange    = 6.0
	talkChance        = 0.1
	talkSocialGain    = 5.0
	contagionChance   = 0.05
	coldTicks         = 500
	socialSatisfied   = 95.0
	agentArrivalRange = chatRange - 0.5
)

// Machine runs one tick of an agent's current state.
type Machine struct {
	Resolver *Resolver
}

// NewMachine creates a state machine resolving actions with the given recipes.
func NewMachine(recipes world.Recipes) *Machine {
	return &Machine{Resolver: &Resolver{Recipes: recipes}}
}

// Step advances a against the live snapshot s.
func (m *Machine) Step(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) {
	if !validateTarget(a, s) {
		return
	}
	switch a.State {
	case world.StateMoving, world.StateFleeing:
		m.move(a, s, rng)
	case world.StateWorking:
		next := world.StateIdle
		if a.TargetID != "" {
			next = m.Resolver.Resolve(a, s, rng)
		}
		finish(a, next)
	case world.StateSocializing:
		socialize(a, s, rng)
	}
}

// validateTarget drops a target that no longer refers to anything, returning
// false when the agent was reset. Moving targets have their position refreshed.
func validateTarget(a *world.Agent, s *world.Snapshot) bool {
	id := a.TargetID
	if id == "" {
		return true
	}
	stale := false
	switch {
	case id == world.TargetDrink:
		stale = len(s.Water) == 0
	case world.IsReserved(id):
	case id == a.ID || !s.TargetExists(id):
		stale = true
	}
	if stale {
		a.State = world.StateIdle
		a.ClearTarget()
		a.ActionLabel = "Target lost..."
		s.Log(world.EventAgent, "%s lost track of their target.", a.Name)
		return false
	}

	if a.TargetPos != nil {
		if f := s.FaunaByID(id); f != nil {
			p := f.Position
			a.TargetPos = &p
		} else if o := s.Agent(id); o != nil {
			p := o.Position
			a.TargetPos = &p
		}
	}
	return true
}

func (m *Machine) move(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) {
	if a.TargetPos == nil {
		finish(a, world.StateIdle)
		return
	}
	speed := walkSpeed
	if a.State == world.StateFleeing {
		speed = fleeSpeed
	}

	d := world.Dist(a.Position, *a.TargetPos)
	if d > arrivalDistance(a, s) {
		if speed > d {
			speed = d
		}
		a.Rotation = world.Heading(a.Position, *a.TargetPos)
		a.Position = s.Bounds.Clamp(world.Offset(a.Position, a.Rotation, speed))
		if s.Tick%stepSignalEvery == 0 {
			s.Emit(world.SignalStep, a.ID, a.Position)
		}
		return
	}

	next := world.StateIdle
	if a.TargetID != "" {
		next = m.Resolver.Resolve(a, s, rng)
	}
	finish(a, next)
}

// arrivalDistance widens the arrival epsilon by the footprint of solid
// targets, which collision correction never lets an agent reach.
func arrivalDistance(a *world.Agent, s *world.Snapshot) float64 {
	id := a.TargetID
	if id == "" || world.IsReserved(id) {
		return ArrivalEpsilon
	}
	if s.Agent(id) != nil {
		return agentArrivalRange
	}
	if f := s.FloraByID(id); f != nil && f.Solid() {
		return ArrivalEpsilon + f.CollisionRadius() + a.Radius
	}
	if b := s.BuildingByID(id); b != nil {
		return ArrivalEpsilon + b.Radius + a.Radius
	}
	return ArrivalEpsilon
}

func finish(a *world.Agent, next world.AgentState) {
	a.State = next
	if next != world.StateSocializing {
		a.ClearTarget()
	}
}

func socialize(a *world.Agent, s *world.Snapshot, rng *entropy.Rand) {
	partner := s.Agent(a.TargetID)
	if partner == nil {
		finish(a, world.StateIdle)
		return
	}
	d := world.Dist(a.Position, partner.Position)
	if d > talkBreakRange {
		finish(a, world.StateIdle)
		a.ActionLabel = "Conversation drifted apart"
		return
	}
	a.Rotation = world.Heading(a.Position, partner.Position)

	if d < talkRange && rng.Chance(talkChance) {
		a.Needs.Social = world.Clamp100(a.Needs.Social + talkSocialGain)
		partner.Needs.Social = world.Clamp100(partner.Needs.Social + talkSocialGain)
		a.AdjustRelationship(partner.ID, 1)
		partner.AdjustRelationship(a.ID, 1)
		if pullable(partner.State) {
			partner.State = world.StateSocializing
			partner.SetTarget(a.ID, nil)
			partner.ActionLabel = "Talking to " + a.Name
		}
		if partner.State == world.StateSocializing && partner.TargetID == a.ID {
			line := pick(rng, append(replyLines, friendlyLines...))
			partner.Say(line, s.Tick)
			AddConversation(partner, partner.Name+": "+line)
			AddConversation(a, partner.Name+": "+line)
			s.Log(world.EventDialogue, "%s: %s", partner.Name, line)
			s.Emit(world.SignalChat, partner.ID, partner.Position)
		}
	}

	if d < talkRange && partner.IsSick() && !a.IsSick() && rng.Chance(contagionChance) {
		a.Sickness = world.SicknessCold
		a.SicknessTicks = coldTicks
		AddMemory(a, s.Tick, "Caught a cold from "+partner.Name, 0.5)
		s.Log(world.EventDanger, "%s caught a cold from %s!", a.Name, partner.Name)
	}

	if a.Needs.Social >= socialSatisfied {
		finish(a, world.StateIdle)
		a.ActionLabel = "Feeling connected"
	}
}

// pullable reports whether an agent in state st can be drawn into a conversation.
func pullable(st world.AgentState) bool {
	switch st {
	case world.StateIdle, world.StateMoving, world.StateWorking:
		return true
	}
	return false
}
