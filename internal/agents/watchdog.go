package agents

import "github.com/talgya/neurovale/internal/world"

// Stagnation defaults.
const (
	StuckEpsilon = 0.1
	StuckTicks   = 30
)

type sample struct {
	pos   world.Vec3
	ticks int
}

// Watchdog detects agents that are MOVING but making no progress and forces
// them back to IDLE. It is owned by the simulation, one per world.
type Watchdog struct {
	Epsilon float64
	Limit   int

	history map[string]*sample
}

// NewWatchdog creates a watchdog with the default thresholds.
func NewWatchdog() *Watchdog {
	return &Watchdog{Epsilon: StuckEpsilon, Limit: StuckTicks, history: make(map[string]*sample)}
}

// Check samples a and resets it if it has been stuck for more than Limit
// ticks. Returns true if the agent was reset.
func (w *Watchdog) Check(a *world.Agent, s *world.Snapshot) bool {
	if a.State != world.StateMoving {
		delete(w.history, a.ID)
		return false
	}
	h, ok := w.history[a.ID]
	if !ok {
		w.history[a.ID] = &sample{pos: a.Position}
		return false
	}
	if world.Dist(h.pos, a.Position) >= w.Epsilon {
		h.pos, h.ticks = a.Position, 0
		return false
	}
	h.ticks++
	if h.ticks <= w.Limit {
		return false
	}

	delete(w.history, a.ID)
	a.State = world.StateIdle
	a.ClearTarget()
	a.ActionLabel = "Path blocked..."
	s.Log(world.EventAgent, "%s gave up on a blocked path.", a.Name)
	return true
}

// Prune forgets agents that are no longer in the snapshot.
func (w *Watchdog) Prune(s *world.Snapshot) {
	for id := range w.history {
		if s.Agent(id) == nil {
			delete(w.history, id)
		}
	}
}
