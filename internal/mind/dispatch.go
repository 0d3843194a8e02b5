package mind

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// DispatchConfig tunes admission and availability probing.
type DispatchConfig struct {
	Cooldown      time.Duration // Minimum gap between requests for one agent
	Timeout       time.Duration // Per-request deadline
	ProbeInterval time.Duration // First re-probe delay after a failure
	MaxBackoff    time.Duration // Ceiling for the doubling probe delay
}

// Result is a finished oracle request waiting to be merged.
type Result struct {
	AgentID  string
	Decision Decision
	Err      error
}

// Dispatcher owns all oracle request state for one simulation: which agents
// have a request in flight, when each last asked, and whether the oracle is
// reachable. Every method except Available must be called from the tick
// goroutine; requests themselves run on their own goroutines and report back
// through a channel drained by Drain.
type Dispatcher struct {
	oracle Oracle
	cfg    DispatchConfig
	now    func() time.Time

	inFlight map[string]bool
	lastSent map[string]time.Time
	results  chan Result

	available atomic.Bool
	probing   bool
	probes    chan error
	nextProbe time.Time
	backoff   time.Duration
}

// NewDispatcher creates a dispatcher around oracle. The oracle starts out
// unavailable; the first MaybeProbe call checks it.
func NewDispatcher(oracle Oracle, cfg DispatchConfig) *Dispatcher {
	return &Dispatcher{
		oracle:   oracle,
		cfg:      cfg,
		now:      time.Now,
		inFlight: make(map[string]bool),
		lastSent: make(map[string]time.Time),
		results:  make(chan Result, 64),
		probes:   make(chan error, 1),
	}
}

// Available reports whether the last probe or request reached the oracle.
// Safe to call from any goroutine.
func (d *Dispatcher) Available() bool {
	return d.available.Load()
}

// InFlight reports how many requests are outstanding.
func (d *Dispatcher) InFlight() int {
	return len(d.inFlight)
}

// Admit checks whether a request for agentID may be sent now.
func (d *Dispatcher) Admit(agentID string) error {
	if !d.Available() {
		return ErrUnavailable
	}
	if d.inFlight[agentID] {
		return ErrBusy
	}
	if last, ok := d.lastSent[agentID]; ok && d.now().Sub(last) < d.cfg.Cooldown {
		return ErrCooldown
	}
	return nil
}

// Submit sends req to the oracle in the background if admitted. The answer
// arrives through Drain on a later tick.
func (d *Dispatcher) Submit(ctx context.Context, req Request) error {
	if err := d.Admit(req.AgentID); err != nil {
		return err
	}
	d.inFlight[req.AgentID] = true
	d.lastSent[req.AgentID] = d.now()

	go func() {
		rctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
		dec, err := d.oracle.Decide(rctx, req)
		select {
		case d.results <- Result{AgentID: req.AgentID, Decision: dec, Err: err}:
		case <-ctx.Done():
		}
	}()
	return nil
}

// Drain returns every finished request without blocking and frees the
// agents' in-flight slots. Failures are logged here; a transport failure
// marks the oracle unavailable so probing resumes.
func (d *Dispatcher) Drain() []Result {
	var out []Result
	for {
		select {
		case r := <-d.results:
			delete(d.inFlight, r.AgentID)
			if r.Err != nil {
				d.logFailure(r)
			}
			out = append(out, r)
		default:
			return out
		}
	}
}

func (d *Dispatcher) logFailure(r Result) {
	switch {
	case errors.Is(r.Err, ErrUnavailable):
		if d.available.Swap(false) {
			slog.Warn("oracle lost, falling back to goal solver", "agent", r.AgentID, "error", r.Err)
		}
		d.backoff = d.cfg.ProbeInterval
		d.nextProbe = d.now().Add(d.backoff)
	case errors.Is(r.Err, ErrTimeout), errors.Is(r.Err, ErrParse), errors.Is(r.Err, ErrStatus):
		slog.Warn("oracle response discarded", "agent", r.AgentID, "error", r.Err)
	default:
		slog.Warn("oracle request failed", "agent", r.AgentID, "error", r.Err)
	}
}

// MaybeProbe collects a finished probe and starts a new one when the oracle
// is unavailable and the backoff has elapsed. Each failed probe doubles the
// delay up to MaxBackoff.
func (d *Dispatcher) MaybeProbe(ctx context.Context) {
	select {
	case err := <-d.probes:
		d.probing = false
		d.probeDone(err)
	default:
	}

	if d.Available() || d.probing || d.now().Before(d.nextProbe) {
		return
	}
	d.probing = true
	go func() {
		pctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
		d.probes <- d.oracle.Probe(pctx)
	}()
}

func (d *Dispatcher) probeDone(err error) {
	if err == nil {
		d.backoff = 0
		d.available.Store(true)
		slog.Info("oracle connected")
		return
	}
	switch {
	case d.backoff == 0:
		d.backoff = d.cfg.ProbeInterval
	case d.backoff < d.cfg.MaxBackoff:
		d.backoff *= 2
		if d.backoff > d.cfg.MaxBackoff {
			d.backoff = d.cfg.MaxBackoff
		}
	}
	d.nextProbe = d.now().Add(d.backoff)
	slog.Debug("oracle probe failed", "error", err, "retry_in", d.backoff)
}

// Forget drops admission state for an agent that left the world.
func (d *Dispatcher) Forget(agentID string) {
	delete(d.lastSent, agentID)
}
