package agents

import (
	"testing"

	"github.com/talgya/neurovale/internal/world"
)

func needsInRange(n world.Needs) bool {
	for _, v := range []float64{n.Hunger, n.Energy, n.Thirst, n.Social, n.Fun, n.Health, n.Temperature} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

func TestDecay_AwakeDrains(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	before := a.Needs
	Decay(a, s)
	if a.Needs.Hunger >= before.Hunger || a.Needs.Energy >= before.Energy || a.Needs.Thirst >= before.Thirst {
		t.Fatalf("needs did not drain: %+v -> %+v", before, a.Needs)
	}
}

func TestDecay_SleepRestoresEnergy(t *testing.T) {
	a := testAgent("a")
	a.State = world.StateSleeping
	a.Needs.Energy = 50
	s := testWorld(a)
	Decay(a, s)
	if a.Needs.Energy <= 50 {
		t.Fatalf("energy = %v, want > 50 while asleep", a.Needs.Energy)
	}
	if a.Needs.Social != 90 {
		t.Fatalf("social = %v, want unchanged while asleep", a.Needs.Social)
	}
}

func TestDecay_StaysInBounds(t *testing.T) {
	cold := testAgent("cold")
	cold.Needs = world.Needs{}
	cold.Sickness = world.SicknessPoison
	cold.SicknessTicks = 1 << 20
	warm := testAgent("warm")
	warm.Needs = world.Needs{Hunger: 100, Energy: 100, Thirst: 100, Social: 100, Fun: 100, Health: 100, Temperature: 100}
	warm.State = world.StateSleeping
	s := testWorld(cold, warm)
	s.AddBuilding(&world.Building{ID: "fire", Type: world.BuildingCampfire, Position: world.Vec3{X: 1}, Radius: 1, Health: 50})

	for i := 0; i < 5000; i++ {
		s.Season = world.Season(i / 1000 % 4)
		s.Weather = world.WeatherOptions(s.Season)[i%len(world.WeatherOptions(s.Season))]
		for _, a := range s.Agents {
			Decay(a, s)
			if !needsInRange(a.Needs) {
				t.Fatalf("tick %d: %s needs out of range: %+v", i, a.ID, a.Needs)
			}
		}
	}
}

func TestDecay_ThirstDamagesHealth(t *testing.T) {
	a := testAgent("a")
	a.Needs.Thirst = 5
	s := testWorld(a)
	Decay(a, s)
	if a.Needs.Health >= 100 {
		t.Fatalf("health = %v, want damaged by thirst", a.Needs.Health)
	}
}

func TestDecay_FireWarms(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	s.TimeOfDay = 23
	s.Season = world.Winter
	Decay(a, s)
	coldRate := a.Needs.Temperature - 70

	b := testAgent("b")
	s2 := testWorld(b)
	s2.TimeOfDay = 23
	s2.Season = world.Winter
	s2.AddBuilding(&world.Building{ID: "fire", Type: world.BuildingCampfire, Position: world.Vec3{X: 2}, Radius: 1, Health: 50})
	Decay(b, s2)
	if warmRate := b.Needs.Temperature - 70; warmRate <= coldRate {
		t.Fatalf("fire did not warm: %v vs %v", warmRate, coldRate)
	}
	if coldRate >= 0 {
		t.Fatalf("winter night should cool, got %v", coldRate)
	}
}

func TestDecay_SicknessRunsOut(t *testing.T) {
	a := testAgent("a")
	a.Sickness = world.SicknessCold
	a.SicknessTicks = 2
	s := testWorld(a)
	Decay(a, s)
	if !a.IsSick() {
		t.Fatal("recovered too early")
	}
	Decay(a, s)
	if a.IsSick() {
		t.Fatal("still sick after sickness ran out")
	}
}

func TestDecay_ChatExpires(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	a.Say("hello", s.Tick)
	s.Tick += 100
	Decay(a, s)
	if a.Chat == "" {
		t.Fatal("chat expired early")
	}
	s.Tick++
	Decay(a, s)
	if a.Chat != "" {
		t.Fatal("chat did not expire")
	}
}

func TestAddMemory_ReplacesLeastImportant(t *testing.T) {
	a := testAgent("a")
	for i := 0; i < MaxMemories; i++ {
		AddMemory(a, uint64(i), "filler", 0.5)
	}
	a.Memories[3].Importance = 0.1
	AddMemory(a, 99, "big day", 0.9)
	if len(a.Memories) != MaxMemories {
		t.Fatalf("memories = %d", len(a.Memories))
	}
	if a.Memories[3].Description != "big day" {
		t.Fatalf("least important memory not replaced: %+v", a.Memories[3])
	}
	if got := RecentMemories(a, 1); got[0].Tick != 99 {
		t.Fatalf("most recent = %+v", got[0])
	}
}
