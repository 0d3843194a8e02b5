package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/neurovale/internal/agents"
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/environment"
	"github.com/talgya/neurovale/internal/mind"
	"github.com/talgya/neurovale/internal/physics"
	"github.com/talgya/neurovale/internal/world"
)

// ErrUnknownAgent is returned when selecting an agent that does not exist.
var ErrUnknownAgent = errors.New("unknown agent")

// Options are the tunables the orchestrator needs.
type Options struct {
	Clock     world.ClockConfig
	Recipes   world.Recipes
	Policy    agents.Policy
	PuddleCap int
}

// Simulation owns the published snapshot and every piece of cross-tick
// state: the random source, the stuck watchdog and the oracle dispatcher.
// Step must only be called from one goroutine; readers use Snapshot.
type Simulation struct {
	opts     Options
	rng      *entropy.Rand
	env      *environment.Simulator
	solver   *agents.Solver
	machine  *agents.Machine
	collide  *physics.Resolver
	watchdog *agents.Watchdog
	oracle   *mind.Dispatcher // nil when the oracle is disabled
	merger   *mind.Merger

	mu        sync.RWMutex
	current   *world.Snapshot
	selected  string
	published Stats

	hooksMu sync.Mutex
	hooks   []func(*world.Snapshot)

	stats Stats
}

// Stats are running counters for the daily report.
type Stats struct {
	OracleDecisions int `json:"oracle_decisions"`
	OracleFailures  int `json:"oracle_failures"`
	OracleDropped   int `json:"oracle_dropped"`
	StuckResets     int `json:"stuck_resets"`
}

// NewSimulation creates an orchestrator starting from initial. oracle may be
// nil, in which case the goal solver is the only decision source.
func NewSimulation(opts Options, initial *world.Snapshot, terrain world.Terrain, rng *entropy.Rand, oracle *mind.Dispatcher) *Simulation {
	initial.Reindex()
	return &Simulation{
		opts:     opts,
		rng:      rng,
		env:      environment.New(terrain, opts.PuddleCap),
		solver:   agents.NewSolver(opts.Policy, opts.Recipes),
		machine:  agents.NewMachine(opts.Recipes),
		collide:  physics.New(terrain),
		watchdog: agents.NewWatchdog(),
		oracle:   oracle,
		merger:   &mind.Merger{Recipes: opts.Recipes},
		current:  initial,
	}
}

// Snapshot returns the latest published snapshot. It must not be mutated.
func (s *Simulation) Snapshot() *world.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnPublish registers fn to receive every published snapshot. Hooks run on
// the tick goroutine and must not block.
func (s *Simulation) OnPublish(fn func(*world.Snapshot)) {
	s.hooksMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hooksMu.Unlock()
}

// Select marks an agent as selected for the UI. An empty id clears it.
func (s *Simulation) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.current.Agent(id) == nil {
		return fmt.Errorf("select %q: %w", id, ErrUnknownAgent)
	}
	s.selected = id
	return nil
}

// Selected returns the selected agent id, or "".
func (s *Simulation) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// OracleAvailable reports whether the remote oracle is reachable.
func (s *Simulation) OracleAvailable() bool {
	return s.oracle != nil && s.oracle.Available()
}

// Step advances the world by one tick and publishes the result.
func (s *Simulation) Step(ctx context.Context) {
	prev := s.Snapshot()
	next := prev.Clone()

	clock, notes := prev.Clock.Advance(s.opts.Clock, s.rng)
	next.Clock = clock
	for _, n := range notes {
		next.Log(world.EventSystem, "%s", n)
	}
	next.Reindex()

	s.env.Step(next, s.rng)

	merged := s.mergeOracle(ctx, next)

	s.watchdog.Prune(next)
	for _, a := range next.Agents {
		s.stepAgent(ctx, a, prev, next, merged[a.ID])
	}

	s.collide.ResolveAll(next)
	next.Compact()

	if next.Day != prev.Day {
		s.dailyReport(next)
	}
	s.publish(next)
}

// stepAgent runs one agent through watchdog, chemistry, goal selection, the
// state machine and stat decay. Decisions read prev; effects land in next.
func (s *Simulation) stepAgent(ctx context.Context, a *world.Agent, prev, next *world.Snapshot, merged bool) {
	if s.watchdog.Check(a, next) {
		s.stats.StuckResets++
	}

	a.Chem = agents.UpdateChemistry(a, prev)

	if !merged {
		if t := s.solver.Solve(a, prev, s.rng); t != nil {
			t.Apply(a, next.Tick)
		}
	}

	s.machine.Step(a, next, s.rng)
	agents.Decay(a, next)

	s.maybeAsk(ctx, a, next)
}

// mergeOracle applies every finished oracle answer to next. Answers for
// agents that have left are dropped; failed requests release the agent.
func (s *Simulation) mergeOracle(ctx context.Context, next *world.Snapshot) map[string]bool {
	if s.oracle == nil {
		return nil
	}
	s.oracle.MaybeProbe(ctx)

	var merged map[string]bool
	for _, r := range s.oracle.Drain() {
		a := next.Agent(r.AgentID)
		if a == nil {
			s.stats.OracleDropped++
			s.oracle.Forget(r.AgentID)
			slog.Debug("oracle result dropped", "agent", r.AgentID)
			continue
		}
		if r.Err != nil {
			s.stats.OracleFailures++
			if a.State == world.StateThinking {
				a.State = world.StateIdle
			}
			continue
		}
		if s.merger.Apply(r.Decision, next, s.rng) {
			s.stats.OracleDecisions++
			if merged == nil {
				merged = make(map[string]bool)
			}
			merged[r.AgentID] = true
		}
	}
	return merged
}

// maybeAsk hands an idle agent to the oracle when admission allows.
func (s *Simulation) maybeAsk(ctx context.Context, a *world.Agent, next *world.Snapshot) {
	if s.oracle == nil || a.State != world.StateIdle {
		return
	}
	if err := s.oracle.Submit(ctx, mind.Project(a, next, s.opts.Recipes)); err != nil {
		return
	}
	a.State = world.StateThinking
	a.ActionLabel = "Thinking..."
}

func (s *Simulation) publish(next *world.Snapshot) {
	s.mu.Lock()
	s.current = next
	s.published = s.stats
	if s.selected != "" && next.Agent(s.selected) == nil {
		s.selected = ""
	}
	s.mu.Unlock()

	s.hooksMu.Lock()
	hooks := slices.Clone(s.hooks)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(next)
	}
}

// Stats returns the counters as of the last published tick.
func (s *Simulation) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}

func (s *Simulation) dailyReport(snap *world.Snapshot) {
	var hunger, health, cortisol float64
	houses, fires := 0, 0
	for _, a := range snap.Agents {
		hunger += a.Needs.Hunger
		health += a.Needs.Health
		cortisol += a.Chem.Cortisol
	}
	for _, b := range snap.Buildings {
		switch b.Type {
		case world.BuildingHouse:
			houses++
		case world.BuildingCampfire:
			fires++
		}
	}
	n := float64(max(len(snap.Agents), 1))

	slog.Info("daily report",
		"tick", humanize.Comma(int64(snap.Tick)),
		"day", snap.Day,
		"season", snap.Season,
		"weather", snap.Weather,
		"agents", len(snap.Agents),
		"avg_hunger", fmt.Sprintf("%.1f", hunger/n),
		"avg_health", fmt.Sprintf("%.1f", health/n),
		"avg_cortisol", fmt.Sprintf("%.1f", cortisol/n),
		"houses", houses,
		"campfires", fires,
		"flora", len(snap.Flora),
		"fauna", len(snap.Fauna),
		"puddles", snap.Puddles(),
		"oracle_decisions", s.stats.OracleDecisions,
		"oracle_failures", s.stats.OracleFailures,
		"stuck_resets", s.stats.StuckResets,
	)
}
