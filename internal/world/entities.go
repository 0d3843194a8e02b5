package world

// FloraType enumerates plant and resource node kinds.
type FloraType string

const (
	FloraOak           FloraType = "TREE_OAK"
	FloraPine          FloraType = "TREE_PINE"
	FloraBerryBush     FloraType = "BUSH_BERRY"
	FloraRedMushroom   FloraType = "MUSHROOM_RED"
	FloraBrownMushroom FloraType = "MUSHROOM_BROWN"
	FloraRock          FloraType = "RESOURCE_ROCK"
	FloraMudPit        FloraType = "RESOURCE_MUD"
)

// Flora is a plant or harvestable resource node.
type Flora struct {
	ID            string    `json:"id"`
	Type          FloraType `json:"type"`
	Position      Vec3      `json:"position"`
	Radius        float64   `json:"radius"`
	Edible        bool      `json:"edible"`
	Poisonous     bool      `json:"poisonous"`
	Nutrition     float64   `json:"nutrition"`
	Yield         Item      `json:"yield,omitempty"` // Empty for non-yielding plants
	ResourcesLeft float64   `json:"resources_left"`
	MaxResources  float64   `json:"max_resources"`
	OnFire        bool      `json:"on_fire"`
	Health        float64   `json:"health"`
}

// IsTree reports whether the flora is a tree.
func (f *Flora) IsTree() bool {
	return f.Type == FloraOak || f.Type == FloraPine
}

// Solid reports whether agents collide with this flora.
func (f *Flora) Solid() bool {
	return f.Yield != "" || !f.Edible
}

// CollisionRadius is the radius used when pushing agents away. Trunks and
// canopies make trees wider than their footprint.
func (f *Flora) CollisionRadius() float64 {
	if f.IsTree() {
		return f.Radius * 1.5
	}
	return f.Radius
}

// Flammable reports whether fire can take hold.
func (f *Flora) Flammable() bool {
	return f.Type != FloraRock && f.Type != FloraMudPit
}

// Available reports whether the flora still has resources to give.
func (f *Flora) Available() bool {
	return f.ResourcesLeft > 0
}

// FaunaType enumerates animal kinds.
type FaunaType string

const (
	FaunaRabbit  FaunaType = "RABBIT"
	FaunaChicken FaunaType = "CHICKEN"
	FaunaDeer    FaunaType = "DEER"
	FaunaWolf    FaunaType = "WOLF"
)

// FaunaState is an animal's behavioral sub-state.
type FaunaState string

const (
	FaunaIdle      FaunaState = "IDLE"
	FaunaMoving    FaunaState = "MOVING"
	FaunaFleeing   FaunaState = "FLEEING"
	FaunaHunting   FaunaState = "HUNTING"
	FaunaFollowing FaunaState = "FOLLOWING"
)

// Fauna is an animal.
type Fauna struct {
	ID         string     `json:"id"`
	Type       FaunaType  `json:"type"`
	Position   Vec3       `json:"position"`
	Rotation   float64    `json:"rotation"`
	State      FaunaState `json:"state"`
	Aggressive bool       `json:"aggressive"`
	Tamed      bool       `json:"tamed"`
	OwnerID    string     `json:"owner_id,omitempty"`
	Health     float64    `json:"health"`
	Radius     float64    `json:"radius"`
	FleeTicks  int        `json:"flee_ticks,omitempty"` // Remaining ticks of FLEEING
}

// FleeDuration is how many ticks a startled animal keeps running.
const FleeDuration = 60

// Alive reports whether the animal still has health.
func (f *Fauna) Alive() bool {
	return f.Health > 0
}

// Startle sends the animal running directly away from threat.
func (f *Fauna) Startle(threat Vec3) {
	f.State = FaunaFleeing
	f.FleeTicks = FleeDuration
	f.Rotation = Heading(threat, f.Position)
}

// BuildingType enumerates structure kinds.
type BuildingType string

const (
	BuildingHouse    BuildingType = "HOUSE"
	BuildingCampfire BuildingType = "CAMPFIRE"
)

// Building is a structure placed by an agent.
type Building struct {
	ID       string       `json:"id"`
	Type     BuildingType `json:"type"`
	Position Vec3         `json:"position"`
	OwnerID  string       `json:"owner_id"`
	Radius   float64      `json:"radius"`
	Health   float64      `json:"health"`
	OnFire   bool         `json:"on_fire"`
}

// WaterKind distinguishes persistent water from transient puddles.
type WaterKind string

const (
	WaterRiver  WaterKind = "RIVER"
	WaterPuddle WaterKind = "PUDDLE"
)

// WaterPatch is a drinkable body of water.
type WaterPatch struct {
	ID       string    `json:"id"`
	Kind     WaterKind `json:"kind"`
	Position Vec3      `json:"position"`
	Size     float64   `json:"size"`
	TTL      float64   `json:"ttl,omitempty"` // Puddles only
}

// Reaches reports whether p is close enough to drink from the patch.
func (w *WaterPatch) Reaches(p Vec3) bool {
	return Dist(w.Position, p) <= w.Size+2
}
