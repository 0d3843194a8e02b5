package persistence

import (
	"maps"

	"github.com/talgya/neurovale/internal/world"
)

// Bundle is the part of an agent that outlives a run.
type Bundle struct {
	Memories       []world.Memory       `json:"memories,omitempty"`
	ActionMemories []world.ActionMemory `json:"action_memories,omitempty"`
	Thoughts       []string             `json:"thoughts,omitempty"`
	Conversations  []string             `json:"conversations,omitempty"`
	Relationships  map[string]float64   `json:"relationships,omitempty"`
}

// BundleOf copies an agent's persistent memory.
func BundleOf(a *world.Agent) Bundle {
	return Bundle{
		Memories:       append([]world.Memory(nil), a.Memories...),
		ActionMemories: append([]world.ActionMemory(nil), a.ActionMemories...),
		Thoughts:       append([]string(nil), a.Thoughts...),
		Conversations:  append([]string(nil), a.Conversations...),
		Relationships:  maps.Clone(a.Relationships),
	}
}

// Restore overwrites the agent's memory with the bundle. Relationships are
// merged so scores toward newly generated agents survive.
func (b Bundle) Restore(a *world.Agent) {
	a.Memories = append([]world.Memory(nil), b.Memories...)
	a.ActionMemories = append([]world.ActionMemory(nil), b.ActionMemories...)
	a.Thoughts = append([]string(nil), b.Thoughts...)
	a.Conversations = append([]string(nil), b.Conversations...)
	if len(b.Relationships) > 0 {
		if a.Relationships == nil {
			a.Relationships = make(map[string]float64, len(b.Relationships))
		}
		maps.Copy(a.Relationships, b.Relationships)
	}
}

// RestoreAll applies stored bundles to matching agents by id and returns how
// many agents were restored.
func RestoreAll(agentList []*world.Agent, bundles map[string]Bundle) int {
	n := 0
	for _, a := range agentList {
		if b, ok := bundles[a.ID]; ok {
			b.Restore(a)
			n++
		}
	}
	return n
}
