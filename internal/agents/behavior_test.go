package agents

import (
	"testing"

	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/world"
)

func newMachine() *Machine {
	return NewMachine(world.DefaultRecipes())
}

func TestStep_CampfireWithoutEnoughWoodIsNoop(t *testing.T) {
	a := testAgent("a")
	a.Inventory = world.Inventory{world.ItemWood: 1}
	a.State = world.StateWorking
	a.SetTarget(world.TargetCampfire, nil)
	s := testWorld(a)

	newMachine().Step(a, s, entropy.New(1))

	if a.State != world.StateIdle {
		t.Fatalf("state = %s, want IDLE", a.State)
	}
	if got := a.Inventory.Count(world.ItemWood); got != 1 {
		t.Fatalf("wood = %d, want 1", got)
	}
	if len(s.Buildings) != 0 {
		t.Fatalf("buildings = %d, want 0", len(s.Buildings))
	}
	if a.TargetID != "" {
		t.Fatalf("target = %q, want cleared", a.TargetID)
	}
}

func TestStep_CampfireConsumesExactlyTwoWood(t *testing.T) {
	a := testAgent("a")
	a.Inventory = world.Inventory{world.ItemWood: 3}
	a.State = world.StateWorking
	a.SetTarget(world.TargetCampfire, nil)
	s := testWorld(a)

	newMachine().Step(a, s, entropy.New(1))

	if got := a.Inventory.Count(world.ItemWood); got != 1 {
		t.Fatalf("wood = %d, want 1", got)
	}
	if len(s.Buildings) != 1 || s.Buildings[0].Type != world.BuildingCampfire {
		t.Fatalf("buildings = %+v, want one campfire", s.Buildings)
	}
	if s.Buildings[0].Position.X != 2 {
		t.Fatalf("campfire at %v, want two units along X", s.Buildings[0].Position)
	}
}

func TestStep_RepeatedAttacksKillAndYieldMeat(t *testing.T) {
	a := testAgent("a")
	a.Needs.Hunger = 20
	b := testAgent("b")
	b.Position = world.Vec3{X: 3}
	s := testWorld(a, b)
	rabbit := world.NewFauna(world.FaunaRabbit)
	rabbit.ID = "rabbit"
	rabbit.Position = world.Vec3{X: 1}
	s.Fauna = append(s.Fauna, rabbit)
	s.Reindex()
	m := newMachine()
	rng := entropy.New(1)

	attack := func() {
		a.State = world.StateWorking
		a.SetTarget("rabbit", nil)
		a.Intent = world.IntentAttack
		m.Step(a, s, rng)
	}

	attack()
	if len(s.Fauna) != 1 || rabbit.Health != 10 {
		t.Fatalf("after one attack: fauna=%d health=%v", len(s.Fauna), rabbit.Health)
	}
	attack()
	if len(s.Fauna) != 0 {
		t.Fatalf("dead rabbit still in fauna collection")
	}
	if s.FaunaByID("rabbit") != nil {
		t.Fatal("dead rabbit still indexed")
	}
	if got := a.Inventory.Count(world.ItemMeat); got != 2 {
		t.Fatalf("meat = %d, want 2", got)
	}
	if a.Needs.Hunger != 50 {
		t.Fatalf("hunger = %v, want 50", a.Needs.Hunger)
	}
	if a.Relationship("b") != 55 || b.Relationship("a") != 55 {
		t.Fatalf("cohesion bonus missing: a->b %v, b->a %v", a.Relationship("b"), b.Relationship("a"))
	}
}

func TestStep_SpearMultipliesDamage(t *testing.T) {
	a := testAgent("a")
	a.Tool = world.ItemSpear
	s := testWorld(a)
	deer := world.NewFauna(world.FaunaDeer)
	deer.ID = "deer"
	s.Fauna = append(s.Fauna, deer)
	s.Reindex()

	a.State = world.StateWorking
	a.SetTarget("deer", nil)
	a.Intent = world.IntentAttack
	newMachine().Step(a, s, entropy.New(1))

	if deer.Health != 15 {
		t.Fatalf("deer health = %v, want 15", deer.Health)
	}
	if deer.State != world.FaunaFleeing || deer.FleeTicks != world.FleeDuration {
		t.Fatalf("wounded deer state %s flee ticks %d, want FLEEING for %d", deer.State, deer.FleeTicks, world.FleeDuration)
	}
}

func TestStep_StaleTargetIsClearedOnce(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	bush := berryBush("bush", world.Vec3{X: 10}, 1)
	s.Flora = append(s.Flora, bush)
	s.Reindex()
	a.State = world.StateMoving
	a.SetTarget("bush", &bush.Position)

	bush.ResourcesLeft = 0
	m := newMachine()
	m.Step(a, s, entropy.New(1))

	if a.State != world.StateIdle || a.TargetID != "" || a.TargetPos != nil {
		t.Fatalf("agent not reset: state=%s target=%q pos=%v", a.State, a.TargetID, a.TargetPos)
	}
	if a.ActionLabel != "Target lost..." {
		t.Fatalf("label = %q", a.ActionLabel)
	}
	logged := len(s.Events)
	if logged == 0 {
		t.Fatal("stale target not logged")
	}

	m.Step(a, s, entropy.New(1))
	if len(s.Events) != logged {
		t.Fatal("stale target re-resolved on a later tick")
	}
}

func TestStep_MovingArrivesAndGathers(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	oak := tree("oak", world.Vec3{X: 2})
	s.Flora = append(s.Flora, oak)
	s.Reindex()
	a.State = world.StateMoving
	a.SetTarget("oak", &oak.Position)
	m := newMachine()
	rng := entropy.New(1)

	for i := 0; i < 100 && a.State == world.StateMoving; i++ {
		m.Step(a, s, rng)
	}
	if a.State != world.StateIdle {
		t.Fatalf("state = %s, want IDLE after arrival", a.State)
	}
	if a.Inventory.Count(world.ItemWood) != 1 || oak.ResourcesLeft != 4 {
		t.Fatalf("wood = %d, oak left = %v", a.Inventory.Count(world.ItemWood), oak.ResourcesLeft)
	}
}

func TestStep_MovementStaysInBounds(t *testing.T) {
	a := testAgent("a")
	a.Position = world.Vec3{X: 29.95}
	s := testWorld(a)
	a.State = world.StateFleeing
	a.SetTarget("", &world.Vec3{X: 80})
	m := newMachine()
	rng := entropy.New(1)

	for i := 0; i < 10; i++ {
		m.Step(a, s, rng)
		if !s.Bounds.Contains(a.Position) {
			t.Fatalf("agent left bounds: %v", a.Position)
		}
	}
}

func TestStep_BuildHouseOnArrival(t *testing.T) {
	a := testAgent("a")
	a.Inventory = world.Inventory{world.ItemWood: 4, world.ItemStone: 2, world.ItemMud: 2}
	s := testWorld(a)
	a.State = world.StateMoving
	a.SetTarget(world.TargetHouseSite, &world.Vec3{X: 0.5})

	newMachine().Step(a, s, entropy.New(1))

	if !s.HasHouse("a") {
		t.Fatal("house not built")
	}
	if len(a.Inventory) != 0 {
		t.Fatalf("inventory = %v, want empty", a.Inventory)
	}
	if a.Chem.Serotonin != 100 {
		t.Fatalf("serotonin = %v, want 100", a.Chem.Serotonin)
	}
	h := s.Buildings[len(s.Buildings)-1]
	if d := world.Dist(h.Position, a.Position); d < h.Radius+a.Radius {
		t.Fatalf("house %.2f from its builder, overlapping radius %.2f", d, h.Radius+a.Radius)
	}
}

func TestResolve_BuildSitesClearOfBuilder(t *testing.T) {
	r := &Resolver{Recipes: world.DefaultRecipes()}
	for _, x := range []float64{0, 29.5, -29.5} {
		for _, target := range []string{world.TargetHouseSite, world.TargetCampfire} {
			a := testAgent("a")
			a.Position = world.Vec3{X: x}
			a.Inventory = world.Inventory{world.ItemWood: 6, world.ItemStone: 2, world.ItemMud: 2}
			s := testWorld(a)
			a.SetTarget(target, nil)

			r.Resolve(a, s, entropy.New(1))

			if len(s.Buildings) != 1 {
				t.Fatalf("%s at x=%v: %d buildings", target, x, len(s.Buildings))
			}
			b := s.Buildings[0]
			if d := world.Dist(b.Position, a.Position); d < b.Radius+a.Radius {
				t.Fatalf("%s at x=%v placed %.2f from builder, want at least %.2f", target, x, d, b.Radius+a.Radius)
			}
			if !s.Bounds.Contains(b.Position) {
				t.Fatalf("%s at x=%v placed out of bounds: %v", target, x, b.Position)
			}
		}
	}
}

func TestStep_EatingPoisonMakesSick(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	bad := berryBush("bad", world.Vec3{X: 1}, 3)
	bad.Edible, bad.Poisonous = false, true
	s.Flora = append(s.Flora, bad)
	s.Reindex()
	a.State = world.StateWorking
	a.SetTarget("bad", nil)

	newMachine().Step(a, s, entropy.New(1))

	if a.Sickness != world.SicknessPoison {
		t.Fatalf("sickness = %s, want POISON", a.Sickness)
	}
	if score, ok := Recall(a, string(world.FloraBerryBush), "EAT"); !ok || score >= 0 {
		t.Fatalf("bad outcome not remembered: %v %v", score, ok)
	}
}

func TestStep_EatingRestoresHunger(t *testing.T) {
	a := testAgent("a")
	a.Needs.Hunger = 10
	s := testWorld(a)
	s.Flora = append(s.Flora, berryBush("bush", world.Vec3{X: 1}, 3))
	s.Reindex()
	a.State = world.StateWorking
	a.SetTarget("bush", nil)

	newMachine().Step(a, s, entropy.New(1))

	if a.Needs.Hunger != 30 {
		t.Fatalf("hunger = %v, want 30", a.Needs.Hunger)
	}
	if s.FloraByID("bush").ResourcesLeft != 2 {
		t.Fatalf("bush left = %v, want 2", s.FloraByID("bush").ResourcesLeft)
	}
	if len(a.ActionMemories) != 1 || a.ActionMemories[0].Outcome <= 0 {
		t.Fatalf("action memories = %+v", a.ActionMemories)
	}
}

func TestStep_TameRaisesChemistry(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	chicken := world.NewFauna(world.FaunaChicken)
	chicken.ID = "chicken"
	s.Fauna = append(s.Fauna, chicken)
	s.Reindex()
	a.State = world.StateWorking
	a.SetTarget("chicken", nil)
	a.Intent = world.IntentTame

	newMachine().Step(a, s, entropy.New(1))

	if !chicken.Tamed || chicken.OwnerID != "a" {
		t.Fatalf("chicken = %+v, want tamed by a", chicken)
	}
	if a.Chem.Dopamine != 80 || a.Chem.Oxytocin != 50 {
		t.Fatalf("chem = %+v", a.Chem)
	}
}

func TestStep_DrinkRestoresThirst(t *testing.T) {
	a := testAgent("a")
	a.Needs.Thirst = 20
	s := testWorld(a)
	s.AddWater(&world.WaterPatch{ID: "p", Kind: world.WaterPuddle, Position: world.Vec3{X: 2}, Size: 1, TTL: 50})
	a.State = world.StateWorking
	a.SetTarget(world.TargetDrink, nil)

	newMachine().Step(a, s, entropy.New(1))

	if a.Needs.Thirst != 60 {
		t.Fatalf("thirst = %v, want 60", a.Needs.Thirst)
	}
}

func TestStep_DrinkWithoutWaterIsStale(t *testing.T) {
	a := testAgent("a")
	s := testWorld(a)
	a.State = world.StateMoving
	a.SetTarget(world.TargetDrink, &world.Vec3{X: 10})

	newMachine().Step(a, s, entropy.New(1))

	if a.State != world.StateIdle || a.TargetID != "" {
		t.Fatalf("state=%s target=%q, want reset", a.State, a.TargetID)
	}
}

func TestStep_SocializingPullsPartner(t *testing.T) {
	a := testAgent("a")
	a.Needs.Social = 20
	b := testAgent("b")
	b.Position = world.Vec3{X: 1.5}
	s := testWorld(a, b)
	a.State = world.StateSocializing
	a.SetTarget("b", nil)
	m := newMachine()
	rng := entropy.New(1)

	for i := 0; i < 200 && b.State != world.StateSocializing; i++ {
		m.Step(a, s, rng)
	}
	if b.State != world.StateSocializing || b.TargetID != "a" {
		t.Fatalf("partner state=%s target=%q, want SOCIALIZING with a", b.State, b.TargetID)
	}
	if a.Needs.Social <= 20 {
		t.Fatalf("social = %v, want raised", a.Needs.Social)
	}
}

func TestStep_SocializingEndsWhenPartnerLeaves(t *testing.T) {
	a := testAgent("a")
	b := testAgent("b")
	b.Position = world.Vec3{X: 10}
	s := testWorld(a, b)
	a.State = world.StateSocializing
	a.SetTarget("b", nil)

	newMachine().Step(a, s, entropy.New(1))

	if a.State != world.StateIdle || a.TargetID != "" {
		t.Fatalf("state=%s target=%q, want IDLE", a.State, a.TargetID)
	}
}

func TestStep_ArrivingNextToAgentStartsConversation(t *testing.T) {
	a := testAgent("a")
	b := testAgent("b")
	b.Position = world.Vec3{X: 2}
	s := testWorld(a, b)
	a.State = world.StateMoving
	a.SetTarget("b", &b.Position)

	newMachine().Step(a, s, entropy.New(1))

	if a.State != world.StateSocializing || a.TargetID != "b" {
		t.Fatalf("state=%s target=%q, want SOCIALIZING with b", a.State, a.TargetID)
	}
	if a.Chat == "" {
		t.Fatal("no greeting")
	}
}
