package world

import (
	"fmt"
	"maps"
)

// AgentState is the closed set of behavioral states an agent can occupy.
type AgentState uint8

const (
	StateIdle AgentState = iota
	StateMoving
	StateSocializing
	StateWorking
	StateSleeping
	StateThinking // Awaiting an external decision
	StateFleeing
)

var stateNames = [...]string{"IDLE", "MOVING", "SOCIALIZING", "WORKING", "SLEEPING", "THINKING", "FLEEING"}

func (s AgentState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("AgentState(%d)", s)
}

// MarshalText encodes the state by name.
func (s AgentState) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unknown agent state %d", s)
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes a state name.
func (s *AgentState) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = AgentState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown agent state %q", b)
}

// Needs tracks physiological and social needs. All values range from
// 0 (completely unmet) to 100 (fully satisfied).
type Needs struct {
	Hunger      float64 `json:"hunger"`
	Energy      float64 `json:"energy"`
	Thirst      float64 `json:"thirst"`
	Social      float64 `json:"social"`
	Fun         float64 `json:"fun"`
	Health      float64 `json:"health"`
	Temperature float64 `json:"temperature"`
}

// Clamp pulls every need back into [0, 100].
func (n *Needs) Clamp() {
	n.Hunger = Clamp100(n.Hunger)
	n.Energy = Clamp100(n.Energy)
	n.Thirst = Clamp100(n.Thirst)
	n.Social = Clamp100(n.Social)
	n.Fun = Clamp100(n.Fun)
	n.Health = Clamp100(n.Health)
	n.Temperature = Clamp100(n.Temperature)
}

// Chemistry is the five-channel hormone vector. Each channel is in [0, 100].
type Chemistry struct {
	Dopamine   float64 `json:"dopamine"`
	Serotonin  float64 `json:"serotonin"`
	Adrenaline float64 `json:"adrenaline"`
	Oxytocin   float64 `json:"oxytocin"`
	Cortisol   float64 `json:"cortisol"`
}

// Clamp pulls every channel back into [0, 100].
func (c *Chemistry) Clamp() {
	c.Dopamine = Clamp100(c.Dopamine)
	c.Serotonin = Clamp100(c.Serotonin)
	c.Adrenaline = Clamp100(c.Adrenaline)
	c.Oxytocin = Clamp100(c.Oxytocin)
	c.Cortisol = Clamp100(c.Cortisol)
}

// Personality holds the five trait scalars, each in [0, 1].
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
	Bio               string  `json:"bio"`
}

// Sickness is an agent's current illness.
type Sickness uint8

const (
	SicknessNone Sickness = iota
	SicknessCold
	SicknessPoison
)

func (s Sickness) String() string {
	switch s {
	case SicknessCold:
		return "COLD"
	case SicknessPoison:
		return "POISON"
	default:
		return "NONE"
	}
}

// MarshalText encodes the sickness by name.
func (s Sickness) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a sickness name.
func (s *Sickness) UnmarshalText(b []byte) error {
	switch string(b) {
	case "NONE", "":
		*s = SicknessNone
	case "COLD":
		*s = SicknessCold
	case "POISON":
		*s = SicknessPoison
	default:
		return fmt.Errorf("unknown sickness %q", b)
	}
	return nil
}

// Intent qualifies what an agent means to do with a fauna target.
type Intent uint8

const (
	IntentNone Intent = iota
	IntentTame
	IntentAttack
)

// Memory records a notable experience.
type Memory struct {
	Tick        uint64  `json:"tick"`
	Description string  `json:"description"`
	Importance  float64 `json:"importance"` // 0.0–1.0
}

// ActionMemory records how an interaction turned out.
type ActionMemory struct {
	Tick    uint64  `json:"tick"`
	Target  string  `json:"target"` // Flora/fauna type or pseudo-target
	Action  string  `json:"action"`
	Outcome float64 `json:"outcome"` // >0 good, <0 bad
}

// Agent is an autonomous simulated actor.
type Agent struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position Vec3    `json:"position"`
	Rotation float64 `json:"rotation"` // Y-axis rotation in radians
	Radius   float64 `json:"radius"`

	State     AgentState `json:"state"`
	TargetID  string     `json:"target_id,omitempty"`
	TargetPos *Vec3      `json:"target_position,omitempty"`
	Intent    Intent     `json:"intent,omitempty"`

	Needs       Needs       `json:"needs"`
	Chem        Chemistry   `json:"neuro"`
	Personality Personality `json:"personality"`

	Relationships map[string]float64 `json:"relationships"` // Agent ID → score, 50 is neutral
	Inventory     Inventory          `json:"inventory"`
	Tool          Item               `json:"tool,omitempty"`

	Sickness      Sickness `json:"sickness"`
	SicknessTicks int      `json:"sickness_ticks,omitempty"`

	Memories       []Memory       `json:"memories,omitempty"`
	ActionMemories []ActionMemory `json:"action_memories,omitempty"`
	Thoughts       []string       `json:"thoughts,omitempty"`
	Conversations  []string       `json:"conversations,omitempty"`

	// UI-facing.
	ActionLabel  string `json:"action_label"`
	Chat         string `json:"chat,omitempty"`
	LastChatTick uint64 `json:"last_chat_tick,omitempty"`
}

// SetTarget replaces the agent's outstanding target pair. Either half may be empty.
func (a *Agent) SetTarget(id string, pos *Vec3) {
	a.TargetID = id
	a.Intent = IntentNone
	if pos != nil {
		p := *pos
		a.TargetPos = &p
	} else {
		a.TargetPos = nil
	}
}

// ClearTarget drops the outstanding target pair.
func (a *Agent) ClearTarget() {
	a.TargetID = ""
	a.TargetPos = nil
	a.Intent = IntentNone
}

// Say sets the agent's chat bubble.
func (a *Agent) Say(text string, tick uint64) {
	a.Chat = text
	a.LastChatTick = tick
}

// IsSick reports whether the agent carries any illness.
func (a *Agent) IsSick() bool {
	return a.Sickness != SicknessNone
}

// Relationship returns the score toward another agent, 50 when unknown.
func (a *Agent) Relationship(id string) float64 {
	if v, ok := a.Relationships[id]; ok {
		return v
	}
	return 50
}

// AdjustRelationship adds delta to the score toward another agent, capped at 100.
func (a *Agent) AdjustRelationship(id string, delta float64) {
	if a.Relationships == nil {
		a.Relationships = make(map[string]float64)
	}
	v := a.Relationship(id) + delta
	if v > 100 {
		v = 100
	}
	a.Relationships[id] = v
}

// Clone returns a deep copy of the agent.
func (a *Agent) Clone() *Agent {
	c := *a
	if a.TargetPos != nil {
		p := *a.TargetPos
		c.TargetPos = &p
	}
	c.Relationships = maps.Clone(a.Relationships)
	c.Inventory = a.Inventory.Clone()
	c.Memories = append([]Memory(nil), a.Memories...)
	c.ActionMemories = append([]ActionMemory(nil), a.ActionMemories...)
	c.Thoughts = append([]string(nil), a.Thoughts...)
	c.Conversations = append([]string(nil), a.Conversations...)
	return &c
}
