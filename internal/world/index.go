package world

// index holds id-keyed lookup maps, rebuilt once per tick.
type index struct {
	agents    map[string]*Agent
	flora     map[string]*Flora
	fauna     map[string]*Fauna
	buildings map[string]*Building
}

// Reindex rebuilds the id lookup maps from the entity slices.
func (s *Snapshot) Reindex() {
	idx := &index{
		agents:    make(map[string]*Agent, len(s.Agents)),
		flora:     make(map[string]*Flora, len(s.Flora)),
		fauna:     make(map[string]*Fauna, len(s.Fauna)),
		buildings: make(map[string]*Building, len(s.Buildings)),
	}
	for _, a := range s.Agents {
		idx.agents[a.ID] = a
	}
	for _, f := range s.Flora {
		idx.flora[f.ID] = f
	}
	for _, f := range s.Fauna {
		idx.fauna[f.ID] = f
	}
	for _, b := range s.Buildings {
		idx.buildings[b.ID] = b
	}
	s.index = idx
}

func (s *Snapshot) lookup() *index {
	if s.index == nil {
		s.Reindex()
	}
	return s.index
}

// Agent returns the agent with the given id, or nil.
func (s *Snapshot) Agent(id string) *Agent {
	return s.lookup().agents[id]
}

// FloraByID returns the flora with the given id, or nil.
func (s *Snapshot) FloraByID(id string) *Flora {
	return s.lookup().flora[id]
}

// FaunaByID returns the animal with the given id, or nil.
func (s *Snapshot) FaunaByID(id string) *Fauna {
	return s.lookup().fauna[id]
}

// BuildingByID returns the building with the given id, or nil.
func (s *Snapshot) BuildingByID(id string) *Building {
	return s.lookup().buildings[id]
}
