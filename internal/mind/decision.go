// Package mind is the contract with the remote decision oracle: the request
// projection sent for an agent, the closed set of decisions it may answer
// with, admission control for outgoing requests, and the merge of answers
// back into the live world.
package mind

// Action is the oracle's closed action vocabulary.
type Action string

const (
	ActMove      Action = "MOVE"
	ActGather    Action = "GATHER"
	ActCraft     Action = "CRAFT"
	ActSleep     Action = "SLEEP"
	ActFlee      Action = "FLEE"
	ActSocialize Action = "SOCIALIZE"
	ActRespond   Action = "RESPOND"
	ActIgnore    Action = "IGNORE"
	ActWander    Action = "WANDER"
	ActAttack    Action = "ATTACK"
	ActDrink     Action = "DRINK"
)

// Actions lists the vocabulary in prompt order.
var Actions = []Action{
	ActMove, ActGather, ActCraft, ActSleep, ActFlee, ActSocialize,
	ActRespond, ActIgnore, ActWander, ActAttack, ActDrink,
}

// Meta is carried by every decision.
type Meta struct {
	AgentID  string
	Thought  string // Rationale, kept as a thought and shown as the action label
	Dialogue string // Spoken aloud when non-empty
}

// Info returns the shared decision fields.
func (m Meta) Info() Meta { return m }

// Decision is one oracle answer. The concrete types below are the only
// implementations; Apply switches over them exhaustively.
type Decision interface {
	Info() Meta
	Action() Action
}

// Move walks toward any entity.
type Move struct {
	Meta
	Target string
}

// Gather walks to a plant or resource node and harvests it.
type Gather struct {
	Meta
	Target string
}

// Craft builds the best recipe the inventory covers.
type Craft struct{ Meta }

// Sleep lies down where the agent stands.
type Sleep struct{ Meta }

// Flee runs from the nearest threat.
type Flee struct{ Meta }

// Socialize seeks out another agent.
type Socialize struct {
	Meta
	Target string
}

// Respond answers an agent that is talking to this one.
type Respond struct{ Meta }

// Ignore snubs an agent that is talking to this one.
type Ignore struct{ Meta }

// Wander walks to a random nearby spot.
type Wander struct{ Meta }

// Attack hunts an animal.
type Attack struct {
	Meta
	Target string
}

// Drink goes to the nearest water.
type Drink struct{ Meta }

func (Move) Action() Action      { return ActMove }
func (Gather) Action() Action    { return ActGather }
func (Craft) Action() Action     { return ActCraft }
func (Sleep) Action() Action     { return ActSleep }
func (Flee) Action() Action      { return ActFlee }
func (Socialize) Action() Action { return ActSocialize }
func (Respond) Action() Action   { return ActRespond }
func (Ignore) Action() Action    { return ActIgnore }
func (Wander) Action() Action    { return ActWander }
func (Attack) Action() Action    { return ActAttack }
func (Drink) Action() Action     { return ActDrink }

// newDecision builds the variant for act. Unknown actions return nil.
func newDecision(act Action, target string, m Meta) Decision {
	switch act {
	case ActMove:
		return Move{Meta: m, Target: target}
	case ActGather:
		return Gather{Meta: m, Target: target}
	case ActCraft:
		return Craft{m}
	case ActSleep:
		return Sleep{m}
	case ActFlee:
		return Flee{m}
	case ActSocialize:
		return Socialize{Meta: m, Target: target}
	case ActRespond:
		return Respond{m}
	case ActIgnore:
		return Ignore{m}
	case ActWander:
		return Wander{m}
	case ActAttack:
		return Attack{Meta: m, Target: target}
	case ActDrink:
		return Drink{m}
	}
	return nil
}
