package world

import (
	"fmt"

	"github.com/google/uuid"
)

// MaxEvents bounds the rolling event log carried by each snapshot.
const MaxEvents = 50

// EventKind categorizes log entries.
type EventKind string

const (
	EventSystem    EventKind = "SYSTEM"
	EventAgent     EventKind = "AGENT"
	EventDialogue  EventKind = "DIALOGUE"
	EventDanger    EventKind = "DANGER"
	EventDiscovery EventKind = "DISCOVERY"
)

// Event is a notable occurrence in the world.
type Event struct {
	ID      string    `json:"id"`
	Tick    uint64    `json:"tick"`
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
}

// SignalKind names an audio/visual cue for external collaborators.
type SignalKind string

const (
	SignalStep   SignalKind = "step"
	SignalChat   SignalKind = "chat"
	SignalBuild  SignalKind = "build"
	SignalGather SignalKind = "gather"
	SignalEat    SignalKind = "eat"
	SignalTame   SignalKind = "tame"
	SignalAttack SignalKind = "attack"
	SignalFire   SignalKind = "fire"
)

// Signal is a side-effect cue emitted during a tick. Signals are published
// with the snapshot and never read back by the simulation.
type Signal struct {
	Kind     SignalKind `json:"kind"`
	AgentID  string     `json:"agent_id,omitempty"`
	Position Vec3       `json:"position"`
}

// Snapshot is the complete world state at the end of one tick. A published
// snapshot is never mutated; each tick builds a successor from a Clone.
type Snapshot struct {
	Clock

	Bounds    Bounds        `json:"bounds"`
	Agents    []*Agent      `json:"agents"`
	Flora     []*Flora      `json:"flora"`
	Fauna     []*Fauna      `json:"fauna"`
	Buildings []*Building   `json:"buildings"`
	Water     []*WaterPatch `json:"water"`
	Events    []Event       `json:"events"`
	Signals   []Signal      `json:"signals,omitempty"`

	index *index
}

// Clone returns a deep copy suitable for building the next tick.
// Signals are not carried over.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Clock:  s.Clock,
		Bounds: s.Bounds,
		Events: append([]Event(nil), s.Events...),
	}
	c.Agents = make([]*Agent, len(s.Agents))
	for i, a := range s.Agents {
		c.Agents[i] = a.Clone()
	}
	c.Flora = make([]*Flora, len(s.Flora))
	for i, f := range s.Flora {
		v := *f
		c.Flora[i] = &v
	}
	c.Fauna = make([]*Fauna, len(s.Fauna))
	for i, f := range s.Fauna {
		v := *f
		c.Fauna[i] = &v
	}
	c.Buildings = make([]*Building, len(s.Buildings))
	for i, b := range s.Buildings {
		v := *b
		c.Buildings[i] = &v
	}
	c.Water = make([]*WaterPatch, len(s.Water))
	for i, w := range s.Water {
		v := *w
		c.Water[i] = &v
	}
	return c
}

// Log appends an event, keeping only the most recent MaxEvents.
func (s *Snapshot) Log(kind EventKind, format string, args ...any) {
	s.Events = append(s.Events, Event{
		ID:      uuid.NewString(),
		Tick:    s.Tick,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
	if len(s.Events) > MaxEvents {
		s.Events = append([]Event(nil), s.Events[len(s.Events)-MaxEvents:]...)
	}
}

// Emit records a side-effect signal for external collaborators.
func (s *Snapshot) Emit(kind SignalKind, agentID string, pos Vec3) {
	s.Signals = append(s.Signals, Signal{Kind: kind, AgentID: agentID, Position: pos})
}

// AddBuilding appends a building and indexes it.
func (s *Snapshot) AddBuilding(b *Building) {
	s.Buildings = append(s.Buildings, b)
	if s.index != nil {
		s.index.buildings[b.ID] = b
	}
}

// AddWater appends a water patch.
func (s *Snapshot) AddWater(w *WaterPatch) {
	s.Water = append(s.Water, w)
}

// RemoveFauna drops an animal immediately. Returns false if it was not present.
func (s *Snapshot) RemoveFauna(id string) bool {
	for i, f := range s.Fauna {
		if f.ID == id {
			s.Fauna = append(s.Fauna[:i:i], s.Fauna[i+1:]...)
			if s.index != nil {
				delete(s.index.fauna, id)
			}
			return true
		}
	}
	return false
}

// RemoveFlora drops a plant immediately. Returns false if it was not present.
func (s *Snapshot) RemoveFlora(id string) bool {
	for i, f := range s.Flora {
		if f.ID == id {
			s.Flora = append(s.Flora[:i:i], s.Flora[i+1:]...)
			if s.index != nil {
				delete(s.index.flora, id)
			}
			return true
		}
	}
	return false
}

// Compact removes depleted flora, dead fauna, destroyed buildings and
// evaporated puddles, then rebuilds the index.
func (s *Snapshot) Compact() {
	flora := s.Flora[:0:0]
	for _, f := range s.Flora {
		if f.ResourcesLeft > 0 && f.Health > 0 {
			flora = append(flora, f)
		}
	}
	s.Flora = flora

	fauna := s.Fauna[:0:0]
	for _, f := range s.Fauna {
		if f.Alive() {
			fauna = append(fauna, f)
		}
	}
	s.Fauna = fauna

	buildings := s.Buildings[:0:0]
	for _, b := range s.Buildings {
		if b.Health > 0 {
			buildings = append(buildings, b)
		}
	}
	s.Buildings = buildings

	water := s.Water[:0:0]
	for _, w := range s.Water {
		if w.Kind == WaterRiver || w.TTL > 0 {
			water = append(water, w)
		}
	}
	s.Water = water

	s.Reindex()
}

// Puddles counts transient water patches.
func (s *Snapshot) Puddles() int {
	n := 0
	for _, w := range s.Water {
		if w.Kind == WaterPuddle {
			n++
		}
	}
	return n
}

// HasHouse reports whether the agent owns a house.
func (s *Snapshot) HasHouse(ownerID string) bool {
	for _, b := range s.Buildings {
		if b.Type == BuildingHouse && b.OwnerID == ownerID {
			return true
		}
	}
	return false
}

// NearestWater returns the closest water patch to p, or nil.
func (s *Snapshot) NearestWater(p Vec3) *WaterPatch {
	var best *WaterPatch
	bestD := 0.0
	for _, w := range s.Water {
		d := Dist(w.Position, p)
		if best == nil || d < bestD {
			best, bestD = w, d
		}
	}
	return best
}
