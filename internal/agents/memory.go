// Agent memory: episodic memories, action outcomes, oracle thoughts and
// overheard conversation, each kept to a fixed length.
package agents

import (
	"sort"

	"github.com/talgya/neurovale/internal/world"
)

const (
	MaxMemories       = 30
	MaxActionMemories = 20
	MaxThoughts       = 10
	MaxConversations  = 20
)

// AddMemory appends a memory to the agent's stream. When full, drops the
// lowest-importance memory to make room.
func AddMemory(a *world.Agent, tick uint64, description string, importance float64) {
	m := world.Memory{Tick: tick, Description: description, Importance: importance}

	if len(a.Memories) < MaxMemories {
		a.Memories = append(a.Memories, m)
		return
	}

	minIdx := 0
	for i := 1; i < len(a.Memories); i++ {
		if a.Memories[i].Importance < a.Memories[minIdx].Importance {
			minIdx = i
		}
	}
	if m.Importance > a.Memories[minIdx].Importance {
		a.Memories[minIdx] = m
	}
}

// RecentMemories returns the most recent N memories ordered by tick descending.
func RecentMemories(a *world.Agent, count int) []world.Memory {
	if len(a.Memories) == 0 {
		return nil
	}

	sorted := make([]world.Memory, len(a.Memories))
	copy(sorted, a.Memories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick > sorted[j].Tick
	})

	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

// AddActionMemory appends an action outcome, dropping the oldest when full.
func AddActionMemory(a *world.Agent, m world.ActionMemory) {
	a.ActionMemories = appendBounded(a.ActionMemories, m, MaxActionMemories)
}

// AddThought records an oracle rationale.
func AddThought(a *world.Agent, thought string) {
	if thought == "" {
		return
	}
	a.Thoughts = appendBounded(a.Thoughts, thought, MaxThoughts)
}

// AddConversation records a line spoken to or by the agent.
func AddConversation(a *world.Agent, line string) {
	if line == "" {
		return
	}
	a.Conversations = appendBounded(a.Conversations, line, MaxConversations)
}

// RecentThoughts returns up to n of the latest thoughts, oldest first.
func RecentThoughts(a *world.Agent, n int) []string {
	if n >= len(a.Thoughts) {
		return append([]string(nil), a.Thoughts...)
	}
	return append([]string(nil), a.Thoughts[len(a.Thoughts)-n:]...)
}

// Recall returns the average outcome the agent remembers for an action on a
// target kind, and whether it has any experience at all.
func Recall(a *world.Agent, target, action string) (float64, bool) {
	sum, n := 0.0, 0
	for _, m := range a.ActionMemories {
		if m.Target == target && m.Action == action {
			sum += m.Outcome
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}
