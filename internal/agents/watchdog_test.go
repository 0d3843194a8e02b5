package agents

import (
	"testing"

	"github.com/talgya/neurovale/internal/world"
)

func TestWatchdog_ResetsBlockedAgent(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	oak := tree("oak", world.Vec3{X: 10})
	s.Flora = append(s.Flora, oak)
	s.Reindex()
	a.State = world.StateMoving
	a.SetTarget("oak", &oak.Position)
	w := NewWatchdog()

	// First sample plus StuckTicks stationary ticks is still tolerated.
	for i := 0; i <= StuckTicks; i++ {
		if w.Check(a, s) {
			t.Fatalf("reset too early at tick %d", i)
		}
	}
	if !w.Check(a, s) {
		t.Fatal("blocked agent was not reset")
	}
	if a.State != world.StateIdle || a.TargetID != "" || a.TargetPos != nil {
		t.Fatalf("state=%s target=%q pos=%v, want IDLE with target cleared", a.State, a.TargetID, a.TargetPos)
	}
	if a.ActionLabel != "Path blocked..." {
		t.Fatalf("label = %q", a.ActionLabel)
	}
	if !oak.Available() {
		t.Fatal("target should still be valid; reset must not depend on it")
	}
}

func TestWatchdog_ProgressResetsCounter(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	a.State = world.StateMoving
	a.SetTarget("", &world.Vec3{X: 50})
	w := NewWatchdog()

	for i := 0; i < 200; i++ {
		a.Position.X += 0.05
		if w.Check(a, s) {
			t.Fatalf("slow but steady walker reset at tick %d", i)
		}
	}
}

func TestWatchdog_IgnoresOtherStates(t *testing.T) {
	for _, state := range []world.AgentState{world.StateSleeping, world.StateFleeing, world.StateThinking} {
		a := testAgent("a")
		a.State = state
		target := world.Vec3{X: 10}
		a.SetTarget("", &target)
		s := testWorld(a)
		w := NewWatchdog()
		for i := 0; i < 100; i++ {
			if w.Check(a, s) {
				t.Fatalf("%s agent reset", state)
			}
		}
		if a.State != state || a.TargetPos == nil {
			t.Fatalf("%s agent was modified: state %s", state, a.State)
		}
	}
}

func TestWatchdog_Prune(t *testing.T) {
	a := testAgent("a")
	a.State = world.StateMoving
	s := testWorld(a)
	w := NewWatchdog()
	w.Check(a, s)

	empty := testWorld()
	w.Prune(empty)
	if len(w.history) != 0 {
		t.Fatalf("history = %d entries, want 0", len(w.history))
	}
}
