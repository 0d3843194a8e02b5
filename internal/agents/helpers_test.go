package agents

import (
	"github.com/talgya/neurovale/internal/world"
)

func testAgent(id string) *world.Agent {
	return &world.Agent{
		ID:     id,
		Name:   id,
		Radius: 0.5,
		State:  world.StateIdle,
		Needs: world.Needs{
			Hunger: 90, Energy: 90, Thirst: 90, Social: 90, Fun: 50, Health: 100, Temperature: 70,
		},
		Chem:          world.Chemistry{Dopamine: 50, Serotonin: 50, Adrenaline: 10, Oxytocin: 30, Cortisol: 20},
		Personality:   world.Personality{Openness: 0.5, Conscientiousness: 0.6, Extraversion: 0.5, Agreeableness: 0.5, Neuroticism: 0.5},
		Relationships: map[string]float64{},
		Inventory:     world.Inventory{},
	}
}

func testWorld(agents ...*world.Agent) *world.Snapshot {
	s := &world.Snapshot{
		Clock:  world.Clock{Tick: 100, Day: 1, TimeOfDay: 12, Season: world.Spring, Weather: world.WeatherClear},
		Bounds: world.Bounds{Size: 60},
		Agents: agents,
	}
	s.Reindex()
	return s
}

func berryBush(id string, pos world.Vec3, left float64) *world.Flora {
	return &world.Flora{
		ID: id, Type: world.FloraBerryBush, Position: pos, Radius: 0.4,
		Edible: true, Nutrition: 20, ResourcesLeft: left, MaxResources: 3, Health: 100,
	}
}

func tree(id string, pos world.Vec3) *world.Flora {
	return &world.Flora{
		ID: id, Type: world.FloraOak, Position: pos, Radius: 0.5,
		Yield: world.ItemWood, ResourcesLeft: 5, MaxResources: 5, Health: 100,
	}
}

// withHouse gives the agent a house far away so shelter goals stay quiet.
func withHouse(s *world.Snapshot, owner string) {
	s.AddBuilding(&world.Building{
		ID: "house-" + owner, Type: world.BuildingHouse, OwnerID: owner,
		Position: world.Vec3{X: 25, Z: 25}, Radius: 2, Health: 100,
	})
	s.Reindex()
}
