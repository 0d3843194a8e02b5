package engine

import (
	"context"
	"testing"
	"time"
)

func TestEngine_RunsUntilCancelled(t *testing.T) {
	e := NewEngine(time.Millisecond)
	calls := 0
	e.OnTick = func(context.Context) { calls++ }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	if calls == 0 || uint64(calls) != e.Ticks() {
		t.Fatalf("calls=%d ticks=%d", calls, e.Ticks())
	}
}

func TestEngine_PausedDoesNotTick(t *testing.T) {
	e := NewEngine(time.Millisecond)
	e.OnTick = func(context.Context) { t.Error("ticked while paused") }
	if !e.TogglePause() || e.Speed() != 0 {
		t.Fatal("toggle did not pause")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	if e.TogglePause() {
		t.Fatal("second toggle should resume")
	}
	if e.Speed() != 1 {
		t.Fatalf("speed = %v after resume", e.Speed())
	}
}

func TestEngine_StepIgnoresPause(t *testing.T) {
	e := NewEngine(time.Second)
	calls := 0
	e.OnTick = func(context.Context) { calls++ }
	e.SetSpeed(0)
	e.Step(context.Background())
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
