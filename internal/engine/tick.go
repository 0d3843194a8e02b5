// Package engine provides the fixed-period tick loop and the simulation
// orchestrator that builds each successor snapshot.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward at a fixed period.
type Engine struct {
	Interval time.Duration // Base tick period

	// OnTick runs once per tick on the engine goroutine.
	OnTick func(ctx context.Context)

	speed  atomic.Uint64 // float64 bits; 1.0 = real time
	paused atomic.Bool
	ticks  atomic.Uint64
}

// NewEngine creates an engine ticking every interval.
func NewEngine(interval time.Duration) *Engine {
	e := &Engine{Interval: interval}
	e.SetSpeed(1.0)
	return e
}

// Speed returns the current speed multiplier. 0 means paused.
func (e *Engine) Speed() float64 {
	if e.paused.Load() {
		return 0
	}
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the speed multiplier. Non-positive values pause.
func (e *Engine) SetSpeed(v float64) {
	if v <= 0 {
		e.paused.Store(true)
		return
	}
	e.speed.Store(math.Float64bits(v))
	e.paused.Store(false)
}

// TogglePause flips the paused flag and returns the new value.
func (e *Engine) TogglePause() bool {
	for {
		old := e.paused.Load()
		if e.paused.CompareAndSwap(old, !old) {
			slog.Info("simulation pause toggled", "paused", !old)
			return !old
		}
	}
}

// Paused reports whether the loop is paused.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// Ticks returns how many ticks the engine has run.
func (e *Engine) Ticks() uint64 {
	return e.ticks.Load()
}

// Run starts the simulation loop. Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.Speed())

	for {
		if ctx.Err() != nil {
			break
		}
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		e.step(ctx)

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target && !sleep(ctx, target-elapsed) {
			break
		}
	}

	slog.Info("simulation engine stopped", "ticks", e.Ticks())
}

// Step runs exactly one tick, paused or not.
func (e *Engine) Step(ctx context.Context) {
	e.step(ctx)
}

func (e *Engine) step(ctx context.Context) {
	e.ticks.Add(1)
	if e.OnTick != nil {
		e.OnTick(ctx)
	}
}

// sleep waits for d or until ctx is done. Returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
