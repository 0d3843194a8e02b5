package physics

import (
	"testing"

	"github.com/talgya/neurovale/internal/world"
)

func agentAt(id string, x, z float64) *world.Agent {
	return &world.Agent{ID: id, Position: world.Vec3{X: x, Z: z}, Radius: 0.5}
}

func snapshot(agents ...*world.Agent) *world.Snapshot {
	s := &world.Snapshot{Bounds: world.Bounds{Size: 60}, Agents: agents}
	s.Reindex()
	return s
}

func penetration(a, b *world.Agent) float64 {
	return a.Radius + b.Radius - world.Dist(a.Position, b.Position)
}

func TestResolveAll_ReducesMutualPenetration(t *testing.T) {
	for _, gap := range []float64{0.05, 0.3, 0.6, 0.95} {
		a := agentAt("a", 0, 0)
		b := agentAt("b", gap, 0.1)
		s := snapshot(a, b)
		before := penetration(a, b)

		New(nil).ResolveAll(s)

		after := penetration(a, b)
		if after >= before {
			t.Fatalf("gap %v: penetration %v -> %v, want strictly less", gap, before, after)
		}
		if after < -1e-9 {
			t.Fatalf("gap %v: overshot to separation %v", gap, -after)
		}
	}
}

func TestResolveAll_SkipsZeroDistance(t *testing.T) {
	a := agentAt("a", 3, 3)
	b := agentAt("b", 3, 3)
	s := snapshot(a, b)

	New(nil).ResolveAll(s)

	if a.Position.X != 3 || a.Position.Z != 3 || b.Position.X != 3 || b.Position.Z != 3 {
		t.Fatalf("coincident agents moved: %v %v", a.Position, b.Position)
	}
}

func TestResolveAll_OrderIndependent(t *testing.T) {
	a1, b1 := agentAt("a", 0, 0), agentAt("b", 0.5, 0)
	New(nil).ResolveAll(snapshot(a1, b1))

	a2, b2 := agentAt("a", 0, 0), agentAt("b", 0.5, 0)
	New(nil).ResolveAll(snapshot(b2, a2))

	if a1.Position != a2.Position || b1.Position != b2.Position {
		t.Fatalf("result depends on order: %v/%v vs %v/%v", a1.Position, b1.Position, a2.Position, b2.Position)
	}
}

func TestResolveAll_BuildingsPushHarder(t *testing.T) {
	a := agentAt("a", 2, 0)
	s := snapshot(a)
	s.AddBuilding(&world.Building{ID: "h", Type: world.BuildingHouse, Radius: 2, Health: 100})

	New(nil).ResolveAll(s)

	// Penetration 0.5, 90% removed.
	if got := a.Position.X; got < 2.44 || got > 2.46 {
		t.Fatalf("x = %v, want about 2.45", got)
	}
}

func TestResolveAll_EdibleBushIsNotSolid(t *testing.T) {
	a := agentAt("a", 0.2, 0)
	s := snapshot(a)
	s.Flora = append(s.Flora, &world.Flora{ID: "b", Type: world.FloraBerryBush, Radius: 0.4, Edible: true, ResourcesLeft: 3, Health: 100})

	New(nil).ResolveAll(s)

	if a.Position.X != 0.2 {
		t.Fatalf("agent pushed out of a bush: %v", a.Position)
	}
}

func TestResolveAll_TreeUsesWideRadius(t *testing.T) {
	a := agentAt("a", 1.1, 0)
	s := snapshot(a)
	s.Flora = append(s.Flora, &world.Flora{ID: "t", Type: world.FloraOak, Radius: 0.5, Yield: world.ItemWood, ResourcesLeft: 5, Health: 100})

	New(nil).ResolveAll(s)

	if a.Position.X <= 1.1 {
		t.Fatalf("tree canopy did not push: %v", a.Position)
	}
}

func TestResolve_ClampsAndProjects(t *testing.T) {
	r := New(world.FlatTerrain(1.5))
	got := r.Resolve(world.Vec3{X: 40, Z: -45}, 0.5, nil, world.Bounds{Size: 60})
	if got.X != 30 || got.Z != -30 || got.Y != 1.5 {
		t.Fatalf("got %v, want clamped to (30, 1.5, -30)", got)
	}
}
