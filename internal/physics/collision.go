// Package physics separates overlapping agents from each other and from
// static obstacles with a soft, single-pass penetration correction.
package physics

import (
	"math"

	"github.com/talgya/neurovale/internal/world"
)

// Push strengths: the fraction of penetration removed per pass.
const (
	AgentStrength    = 0.5
	BuildingStrength = 0.9
	TreeStrength     = 0.8
	FloraStrength    = 0.6
)

// Obstacle is a circle an agent must not overlap.
type Obstacle struct {
	Position world.Vec3
	Radius   float64 // Combined with the agent radius by Resolve
	Strength float64
}

// Resolver pushes agents out of obstacles and reprojects them onto terrain.
type Resolver struct {
	Terrain world.Terrain
}

// New creates a resolver over terrain. A nil terrain is flat at height 0.
func New(terrain world.Terrain) *Resolver {
	if terrain == nil {
		terrain = world.FlatTerrain(0)
	}
	return &Resolver{Terrain: terrain}
}

// ResolveAll runs one correction pass for every agent in s. Other agents are
// seen at their positions from before the pass so the result does not depend
// on agent order.
func (r *Resolver) ResolveAll(s *world.Snapshot) {
	static := staticObstacles(s)
	captured := make([]world.Vec3, len(s.Agents))
	for i, a := range s.Agents {
		captured[i] = a.Position
	}

	for i, a := range s.Agents {
		obstacles := make([]Obstacle, 0, len(static)+len(s.Agents))
		obstacles = append(obstacles, static...)
		for j, other := range s.Agents {
			if j == i {
				continue
			}
			obstacles = append(obstacles, Obstacle{
				Position: captured[j],
				Radius:   other.Radius,
				Strength: AgentStrength,
			})
		}
		a.Position = r.Resolve(captured[i], a.Radius, obstacles, s.Bounds)
	}
}

// Resolve returns pos pushed out of every overlapping obstacle, clamped to
// bounds and projected onto the terrain. Zero-distance overlaps are skipped.
func (r *Resolver) Resolve(pos world.Vec3, radius float64, obstacles []Obstacle, bounds world.Bounds) world.Vec3 {
	for _, o := range obstacles {
		minDist := o.Radius + radius
		dx := pos.X - o.Position.X
		dz := pos.Z - o.Position.Z
		d := math.Sqrt(dx*dx + dz*dz)
		if d == 0 || d >= minDist {
			continue
		}
		f := (minDist - d) / d * o.Strength
		pos.X += dx * f
		pos.Z += dz * f
	}
	return world.Project(r.Terrain, bounds.Clamp(pos))
}

func staticObstacles(s *world.Snapshot) []Obstacle {
	var obs []Obstacle
	for _, b := range s.Buildings {
		obs = append(obs, Obstacle{Position: b.Position, Radius: b.Radius, Strength: BuildingStrength})
	}
	for _, f := range s.Flora {
		if !f.Solid() {
			continue
		}
		strength := FloraStrength
		if f.IsTree() {
			strength = TreeStrength
		}
		obs = append(obs, Obstacle{Position: f.Position, Radius: f.CollisionRadius(), Strength: strength})
	}
	return obs
}
