// Initial world generation: preset agents, scattered flora and resource nodes,
// wildlife, and river water placed along the lowest ground of the height field.
package world

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/neurovale/internal/entropy"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Size      float64 // Edge length of the square world
	Flora     int     // Trees, bushes and mushrooms
	Rocks     int
	MudPits   int
	Prey      int // Rabbits, chickens and deer
	Predators int // Wolves
	Rivers    int // River water patches
}

// DefaultGenConfig returns the stock world.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:      60,
		Flora:     40,
		Rocks:     8,
		MudPits:   6,
		Prey:      10,
		Predators: 2,
		Rivers:    6,
	}
}

// Generate creates the starting snapshot. The same seed and terrain always
// produce the same world.
func Generate(cfg GenConfig, terrain Terrain, rng *entropy.Rand) *Snapshot {
	s := &Snapshot{
		Clock:  Clock{Day: 1, TimeOfDay: 12, Season: Spring, Weather: WeatherClear},
		Bounds: Bounds{Size: cfg.Size},
	}

	for _, a := range PresetAgents() {
		a.Position = Project(terrain, a.Position)
		s.Agents = append(s.Agents, a)
	}

	scatter := func(spread float64) Vec3 {
		x := (rng.Float64() - 0.5) * cfg.Size * spread
		z := (rng.Float64() - 0.5) * cfg.Size * spread
		return Project(terrain, Vec3{X: x, Z: z})
	}

	for i := 0; i < cfg.Flora; i++ {
		f := randomFlora(rng)
		f.ID = fmt.Sprintf("flora-%03d", i+1)
		f.Position = scatter(0.9)
		s.Flora = append(s.Flora, f)
	}
	for i := 0; i < cfg.Rocks; i++ {
		f := NewResourceNode(FloraRock)
		f.ID = fmt.Sprintf("rock-%03d", i+1)
		f.Position = scatter(0.9)
		s.Flora = append(s.Flora, f)
	}
	for i := 0; i < cfg.MudPits; i++ {
		f := NewResourceNode(FloraMudPit)
		f.ID = fmt.Sprintf("mud-%03d", i+1)
		f.Position = scatter(0.9)
		s.Flora = append(s.Flora, f)
	}

	for i := 0; i < cfg.Prey; i++ {
		kind := FaunaRabbit
		switch roll := rng.Float64(); {
		case roll < 0.15:
			kind = FaunaDeer
		case roll < 0.55:
			kind = FaunaChicken
		}
		a := NewFauna(kind)
		a.ID = fmt.Sprintf("fauna-%03d", i+1)
		a.Position = scatter(0.8)
		a.Rotation = rng.Angle()
		s.Fauna = append(s.Fauna, a)
	}
	for i := 0; i < cfg.Predators; i++ {
		a := NewFauna(FaunaWolf)
		a.ID = fmt.Sprintf("wolf-%03d", i+1)
		a.Position = scatter(0.8)
		a.Rotation = rng.Angle()
		s.Fauna = append(s.Fauna, a)
	}

	placeRivers(s, terrain, cfg.Rivers)

	s.Reindex()
	s.Log(EventSystem, "Neuro-chemical engine initiated.")
	return s
}

// PresetAgents returns the three founding agents.
func PresetAgents() []*Agent {
	return []*Agent{
		newAgent("npc_1", "Elara", Vec3{X: -5, Z: -5}, 0,
			Needs{Hunger: 80, Energy: 90, Social: 50, Fun: 60},
			Personality{
				Openness: 0.8, Conscientiousness: 0.6, Extraversion: 0.9, Agreeableness: 0.7, Neuroticism: 0.3,
				Bio: "An energetic leader who wants to establish a village and name everything she finds.",
			},
			map[string]float64{"npc_2": 50, "npc_3": 50},
			"Looking around...",
		),
		newAgent("npc_2", "Kael", Vec3{X: 5, Z: 5}, math.Pi,
			Needs{Hunger: 60, Energy: 70, Social: 30, Fun: 40},
			Personality{
				Openness: 0.9, Conscientiousness: 0.8, Extraversion: 0.2, Agreeableness: 0.5, Neuroticism: 0.4,
				Bio: "Cautious and analytical. He prefers to test plants before eating them.",
			},
			map[string]float64{"npc_1": 50, "npc_3": 40},
			"Observing the sky...",
		),
		newAgent("npc_3", "Thorne", Vec3{}, math.Pi/2,
			Needs{Hunger: 50, Energy: 50, Social: 80, Fun: 20},
			Personality{
				Openness: 0.4, Conscientiousness: 0.9, Extraversion: 0.5, Agreeableness: 0.2, Neuroticism: 0.6,
				Bio: "A survivalist who connects deeply with nature.",
			},
			map[string]float64{"npc_1": 50, "npc_2": 40},
			"Checking soil levels...",
		),
	}
}

func newAgent(id, name string, pos Vec3, rot float64, needs Needs, p Personality, rel map[string]float64, label string) *Agent {
	needs.Health = 100
	needs.Thirst = 80
	needs.Temperature = 70
	return &Agent{
		ID:            id,
		Name:          name,
		Position:      pos,
		Rotation:      rot,
		Radius:        0.5,
		State:         StateIdle,
		Needs:         needs,
		Chem:          Chemistry{Dopamine: 50, Serotonin: 50, Adrenaline: 10, Oxytocin: 30, Cortisol: 20},
		Personality:   p,
		Relationships: rel,
		Inventory:     Inventory{},
		ActionLabel:   label,
	}
}

// randomFlora rolls a tree, berry bush or mushroom. Berries are poisonous
// one time in five, mushrooms two times in five.
func randomFlora(rng *entropy.Rand) *Flora {
	f := &Flora{Health: 100}
	switch roll := rng.Float64(); {
	case roll < 0.3:
		f.Type = FloraOak
	case roll < 0.5:
		f.Type = FloraPine
	case roll < 0.7:
		f.Type = FloraBerryBush
		f.Edible, f.Nutrition = true, 20
		f.Radius = 0.4
		f.ResourcesLeft, f.MaxResources = 3, 3
		if rng.Chance(0.2) {
			f.Poisonous, f.Edible = true, false
		}
		return f
	default:
		f.Type = FloraRedMushroom
		if rng.Chance(0.5) {
			f.Type = FloraBrownMushroom
		}
		f.Edible, f.Nutrition = true, 10
		f.Radius = 0.2
		f.ResourcesLeft, f.MaxResources = 1, 1
		if rng.Chance(0.4) {
			f.Poisonous, f.Edible = true, false
		}
		return f
	}
	f.Yield = ItemWood
	f.Radius = 0.5
	f.ResourcesLeft, f.MaxResources = 5, 5
	return f
}

// NewResourceNode returns a rock or mud pit with full resources.
func NewResourceNode(kind FloraType) *Flora {
	f := &Flora{Type: kind, Health: 100}
	switch kind {
	case FloraMudPit:
		f.Yield, f.Radius = ItemMud, 1
	default:
		f.Type = FloraRock
		f.Yield, f.Radius = ItemStone, 0.8
	}
	f.ResourcesLeft, f.MaxResources = 6, 6
	return f
}

// NewFauna returns an animal of the given kind at full health.
func NewFauna(kind FaunaType) *Fauna {
	a := &Fauna{Type: kind, State: FaunaIdle}
	switch kind {
	case FaunaWolf:
		a.Aggressive, a.Health, a.Radius = true, 60, 0.6
	case FaunaDeer:
		a.Health, a.Radius = 40, 0.7
	case FaunaChicken:
		a.Health, a.Radius = 15, 0.3
	default:
		a.Type = FaunaRabbit
		a.Health, a.Radius = 20, 0.4
	}
	return a
}

// placeRivers samples the height field on a coarse grid and drops river water
// on the lowest cells, keeping patches apart from each other.
func placeRivers(s *Snapshot, terrain Terrain, n int) {
	if n <= 0 {
		return
	}
	type cell struct {
		pos Vec3
		h   float64
	}
	half := s.Bounds.Half() * 0.9
	var cells []cell
	for x := -half; x <= half; x += 3 {
		for z := -half; z <= half; z += 3 {
			h := terrain.Height(x, z)
			cells = append(cells, cell{Vec3{X: x, Y: h, Z: z}, h})
		}
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].h < cells[j].h })

	const minSpacing = 8.0
	for _, c := range cells {
		if len(s.Water) >= n {
			break
		}
		crowded := false
		for _, w := range s.Water {
			if Dist(w.Position, c.pos) < minSpacing {
				crowded = true
				break
			}
		}
		if crowded {
			continue
		}
		s.Water = append(s.Water, &WaterPatch{
			ID:       fmt.Sprintf("river-%03d", len(s.Water)+1),
			Kind:     WaterRiver,
			Position: c.pos,
			Size:     3,
		})
	}
}
