package mind

import (
	"testing"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

func mergeAgent(id string, x float64) *world.Agent {
	return &world.Agent{
		ID: id, Name: id, Position: world.Vec3{X: x}, Radius: 0.5,
		State: world.StateThinking, Needs: world.Needs{Hunger: 80, Energy: 80, Thirst: 80, Health: 100},
		Relationships: map[string]float64{}, Inventory: world.Inventory{},
	}
}

func mergeWorld(agents ...*world.Agent) *world.Snapshot {
	s := &world.Snapshot{Clock: world.Clock{Tick: 50, Day: 1, TimeOfDay: 12}, Bounds: world.Bounds{Size: 60}, Agents: agents}
	s.Flora = []*world.Flora{{ID: "flora-007", Type: world.FloraOak, Position: world.Vec3{X: 10}, Radius: 0.5, Yield: world.ItemWood, ResourcesLeft: 5, Health: 100}}
	s.Fauna = []*world.Fauna{{ID: "fauna-002", Type: world.FaunaDeer, Position: world.Vec3{Z: 8}, Health: 40, Radius: 0.7}}
	s.Reindex()
	return s
}

func TestApply_DroppedForMissingAgent(t *testing.T) {
	s := mergeWorld(mergeAgent("a", 0))
	m := &Merger{Recipes: world.DefaultRecipes()}
	if m.Apply(Sleep{Meta{AgentID: "ghost"}}, s, entropy.New(1)) {
		t.Fatal("decision for a missing agent was applied")
	}
}

func TestApply_GatherByPrefix(t *testing.T) {
	a := mergeAgent("a", 0)
	s := mergeWorld(a)
	m := &Merger{Recipes: world.DefaultRecipes()}
	m.Apply(Gather{Meta: Meta{AgentID: "a", Thought: "need wood", Dialogue: "To the trees!"}, Target: "flora-0"}, s, entropy.New(1))

	if a.State != world.StateMoving || a.TargetID != "flora-007" || a.TargetPos == nil || a.TargetPos.X != 10 {
		t.Fatalf("state=%s target=%q pos=%v", a.State, a.TargetID, a.TargetPos)
	}
	if a.ActionLabel != "need wood" || len(a.Thoughts) != 1 {
		t.Fatalf("thought not recorded: %q %v", a.ActionLabel, a.Thoughts)
	}
	if a.Chat != "To the trees!" || len(a.Conversations) != 1 {
		t.Fatalf("dialogue not recorded: %q %v", a.Chat, a.Conversations)
	}
}

func TestApply_UnknownTargetFallsBackToIdle(t *testing.T) {
	a := mergeAgent("a", 0)
	s := mergeWorld(a)
	m := &Merger{Recipes: world.DefaultRecipes()}
	m.Apply(Gather{Meta: Meta{AgentID: "a"}, Target: "zzz"}, s, entropy.New(1))
	if a.State != world.StateIdle || a.TargetID != "" {
		t.Fatalf("state=%s target=%q, want IDLE without target", a.State, a.TargetID)
	}
}

func TestApply_Attack(t *testing.T) {
	a := mergeAgent("a", 0)
	s := mergeWorld(a)
	m := &Merger{Recipes: world.DefaultRecipes()}
	m.Apply(Attack{Meta: Meta{AgentID: "a"}, Target: "fauna-002"}, s, entropy.New(1))
	if a.State != world.StateMoving || a.TargetID != "fauna-002" || a.Intent != world.IntentAttack {
		t.Fatalf("state=%s target=%q intent=%v", a.State, a.TargetID, a.Intent)
	}
}

func TestApply_Craft(t *testing.T) {
	m := &Merger{Recipes: world.DefaultRecipes()}

	a := mergeAgent("a", 0)
	a.Inventory = world.Inventory{world.ItemWood: 4, world.ItemStone: 2, world.ItemMud: 2}
	m.Apply(Craft{Meta{AgentID: "a"}}, mergeWorld(a), entropy.New(1))
	if a.State != world.StateMoving || a.TargetID != world.TargetHouseSite || a.TargetPos == nil {
		t.Fatalf("house: state=%s target=%q", a.State, a.TargetID)
	}

	b := mergeAgent("b", 0)
	b.Inventory = world.Inventory{world.ItemWood: 2}
	m.Apply(Craft{Meta{AgentID: "b"}}, mergeWorld(b), entropy.New(1))
	if b.State != world.StateWorking || b.TargetID != world.TargetCampfire {
		t.Fatalf("campfire: state=%s target=%q", b.State, b.TargetID)
	}

	c := mergeAgent("c", 0)
	m.Apply(Craft{Meta{AgentID: "c"}}, mergeWorld(c), entropy.New(1))
	if c.State != world.StateIdle {
		t.Fatalf("empty inventory: state=%s, want IDLE", c.State)
	}
}

func TestApply_RespondAndIgnore(t *testing.T) {
	m := &Merger{Recipes: world.DefaultRecipes()}

	talker := mergeAgent("t", 1)
	talker.State = world.StateSocializing
	talker.TargetID = "a"
	a := mergeAgent("a", 0)
	s := mergeWorld(a, talker)
	m.Apply(Respond{Meta{AgentID: "a"}}, s, entropy.New(1))
	if a.State != world.StateSocializing || a.TargetID != "t" || a.Relationship("t") != 55 {
		t.Fatalf("respond: state=%s target=%q rel=%v", a.State, a.TargetID, a.Relationship("t"))
	}

	b := mergeAgent("b", 0)
	talker.TargetID = "b"
	s = mergeWorld(b, talker)
	m.Apply(Ignore{Meta{AgentID: "b"}}, s, entropy.New(1))
	if b.State != world.StateIdle || b.Relationship("t") != 40 {
		t.Fatalf("ignore: state=%s rel=%v", b.State, b.Relationship("t"))
	}
}

func TestApply_FleeStaysInBounds(t *testing.T) {
	a := mergeAgent("a", 29)
	s := mergeWorld(a)
	s.Fauna = append(s.Fauna, &world.Fauna{ID: "wolf-1", Type: world.FaunaWolf, Position: world.Vec3{X: 25}, Aggressive: true, Health: 60})
	s.Reindex()
	m := &Merger{Recipes: world.DefaultRecipes()}
	m.Apply(Flee{Meta{AgentID: "a"}}, s, entropy.New(1))
	if a.State != world.StateFleeing || a.TargetPos == nil || !s.Bounds.Contains(*a.TargetPos) {
		t.Fatalf("state=%s pos=%v", a.State, a.TargetPos)
	}
}

func TestApply_SleepAndDrink(t *testing.T) {
	m := &Merger{Recipes: world.DefaultRecipes()}
	a := mergeAgent("a", 0)
	a.TargetID = "flora-007"
	s := mergeWorld(a)
	m.Apply(Sleep{Meta{AgentID: "a"}}, s, entropy.New(1))
	if a.State != world.StateSleeping || a.TargetID != "" {
		t.Fatalf("sleep: state=%s target=%q", a.State, a.TargetID)
	}

	b := mergeAgent("b", 0)
	s = mergeWorld(b)
	m.Apply(Drink{Meta{AgentID: "b"}}, s, entropy.New(1))
	if b.State != world.StateIdle {
		t.Fatalf("drink without water: state=%s", b.State)
	}
	s.AddWater(&world.WaterPatch{ID: "river-1", Kind: world.WaterRiver, Position: world.Vec3{X: 20}, Size: 3})
	m.Apply(Drink{Meta{AgentID: "b"}}, s, entropy.New(1))
	if b.State != world.StateMoving || b.TargetID != world.TargetDrink {
		t.Fatalf("drink: state=%s target=%q", b.State, b.TargetID)
	}
}
