package mind

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/talgya/neurovale/internal/agents"
	"github.com/talgya/neurovale/internal/world"
)

// Projection limits.
const (
	VisibleRadius = 15.0
	MaxFlora      = 5
	MaxFauna      = 3
	MaxAgents     = 3
	MaxThoughts   = 2
	hearingRange  = 4.0
)

// Sighting is one nearby entity as the agent perceives it.
type Sighting struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Distance float64 `json:"distance"`
	Note     string  `json:"note,omitempty"`
}

// Request is everything the oracle is told about one agent.
type Request struct {
	AgentID     string           `json:"agent_id"`
	Name        string           `json:"name"`
	Bio         string           `json:"bio"`
	Traits      []string         `json:"traits"`
	State       world.AgentState `json:"state"`
	Needs       world.Needs      `json:"needs"`
	Feelings    agents.Feelings  `json:"feelings"`
	Inventory   world.Inventory  `json:"inventory"`
	Tool        world.Item       `json:"tool,omitempty"`
	HasHouse    bool             `json:"has_house"`
	NearFire    bool             `json:"near_fire"`
	Night       bool             `json:"night"`
	TimeOfDay   float64          `json:"time_of_day"`
	Season      world.Season     `json:"season"`
	Weather     world.Weather    `json:"weather"`
	Flora       []Sighting       `json:"flora"`
	Fauna       []Sighting       `json:"fauna"`
	Agents      []Sighting       `json:"agents"`
	Incoming    string           `json:"incoming,omitempty"`
	Thoughts    []string         `json:"thoughts,omitempty"`
	Recipes     world.Recipes    `json:"recipes"`
	RequestTick uint64           `json:"tick"`
}

// Project builds the oracle request for a from the snapshot s.
func Project(a *world.Agent, s *world.Snapshot, recipes world.Recipes) Request {
	req := Request{
		AgentID:     a.ID,
		Name:        a.Name,
		Bio:         a.Personality.Bio,
		Traits:      traits(a.Personality),
		State:       a.State,
		Needs:       a.Needs,
		Feelings:    agents.DeriveFeelings(a),
		Inventory:   a.Inventory.Clone(),
		Tool:        a.Tool,
		HasHouse:    s.HasHouse(a.ID),
		Night:       s.IsNight(),
		TimeOfDay:   s.TimeOfDay,
		Season:      s.Season,
		Weather:     s.Weather,
		Thoughts:    agents.RecentThoughts(a, MaxThoughts),
		Recipes:     recipes,
		RequestTick: s.Tick,
	}

	for _, b := range s.Buildings {
		if b.Type == world.BuildingCampfire && world.Dist(b.Position, a.Position) < 5 {
			req.NearFire = true
			break
		}
	}

	for _, f := range s.Flora {
		if !f.Available() {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < VisibleRadius {
			note := ""
			if f.OnFire {
				note = "burning"
			}
			req.Flora = append(req.Flora, Sighting{ID: f.ID, Kind: string(f.Type), Distance: round1(d), Note: note})
		}
	}
	req.Flora = nearest(req.Flora, MaxFlora)

	for _, f := range s.Fauna {
		if !f.Alive() {
			continue
		}
		if d := world.Dist(f.Position, a.Position); d < VisibleRadius {
			note := ""
			switch {
			case f.Tamed:
				note = "tame"
			case f.Aggressive:
				note = "aggressive"
			}
			req.Fauna = append(req.Fauna, Sighting{ID: f.ID, Kind: string(f.Type), Distance: round1(d), Note: note})
		}
	}
	req.Fauna = nearest(req.Fauna, MaxFauna)

	for _, o := range s.Agents {
		if o.ID == a.ID {
			continue
		}
		d := world.Dist(o.Position, a.Position)
		if d < VisibleRadius {
			req.Agents = append(req.Agents, Sighting{ID: o.ID, Kind: o.Name, Distance: round1(d), Note: relationLabel(a.Relationship(o.ID))})
		}
		if req.Incoming == "" && o.State == world.StateSocializing && o.TargetID == a.ID && o.Chat != "" && d < hearingRange {
			req.Incoming = fmt.Sprintf("%s says: %q", o.Name, o.Chat)
		}
	}
	req.Agents = nearest(req.Agents, MaxAgents)

	return req
}

func nearest(list []Sighting, n int) []Sighting {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Distance < list[j].Distance })
	if len(list) > n {
		list = list[:n]
	}
	return list
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func relationLabel(score float64) string {
	switch {
	case score > 70:
		return "friend"
	case score < 30:
		return "dislike"
	}
	return "neutral"
}

func traits(p world.Personality) []string {
	pickTrait := func(on bool, yes, no string) string {
		if on {
			return yes
		}
		return no
	}
	return []string{
		pickTrait(p.Extraversion > 0.6, "Social", "Introverted"),
		pickTrait(p.Neuroticism > 0.5, "Anxious", "Calm"),
		pickTrait(p.Conscientiousness > 0.6, "Hardworking", "Relaxed"),
		pickTrait(p.Openness > 0.6, "Curious", "Cautious"),
		pickTrait(p.Agreeableness > 0.6, "Kind", "Blunt"),
	}
}

const systemPrompt = "You are an agent in a survival world. Be brief. Survive: eat, drink, sleep, build shelter, stay warm. Respond ONLY with JSON."

// Prompt renders the request as the user prompt sent to the model.
func Prompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a unique individual in a survival world.\n", req.Name)
	if req.Bio != "" {
		fmt.Fprintf(&b, "Personality: %s\n", req.Bio)
	}
	fmt.Fprintf(&b, "Traits: %s\n\n", strings.Join(req.Traits, ", "))

	n := req.Needs
	b.WriteString("Your current state:\n")
	fmt.Fprintf(&b, "- Health:%.0f Hunger:%.0f Thirst:%.0f Energy:%.0f Temperature:%.0f Social:%.0f\n",
		n.Health, n.Hunger, n.Thirst, n.Energy, n.Temperature, n.Social)
	fmt.Fprintf(&b, "- Feeling %s (%s)\n", req.Feelings.Mood, strings.Join(req.Feelings.Labels, ", "))
	fmt.Fprintf(&b, "- Inventory: Wood=%d, Stone=%d, Mud=%d, Meat=%d",
		req.Inventory.Count(world.ItemWood), req.Inventory.Count(world.ItemStone),
		req.Inventory.Count(world.ItemMud), req.Inventory.Count(world.ItemMeat))
	if req.Tool != "" {
		fmt.Fprintf(&b, ", holding a %s", strings.ToLower(string(req.Tool)))
	}
	b.WriteString("\n")
	when := "Daytime"
	if req.Night {
		when = "It's NIGHT"
	}
	fmt.Fprintf(&b, "- %s, Season: %s, Weather: %s\n", when, req.Season, req.Weather)
	home := "You are homeless"
	if req.HasHouse {
		home = "You have a home"
	}
	if req.NearFire {
		home += " | Near warm fire"
	}
	fmt.Fprintf(&b, "- %s\n", home)
	if len(req.Thoughts) > 0 {
		fmt.Fprintf(&b, "Recent thoughts: %s\n", strings.Join(req.Thoughts, "; "))
	}

	b.WriteString("\nWhat you see nearby:\n")
	fmt.Fprintf(&b, "- Resources: %s\n", sightings(req.Flora, "nothing useful"))
	fmt.Fprintf(&b, "- Animals: %s\n", sightings(req.Fauna, "none"))
	fmt.Fprintf(&b, "- People: %s\n", sightings(req.Agents, "you are alone"))
	if req.Incoming != "" {
		fmt.Fprintf(&b, "\nINCOMING: %s. Decide to RESPOND (friendly) or IGNORE (hurts the relationship).\n", req.Incoming)
	}

	fmt.Fprintf(&b, "\nCrafting: CAMPFIRE needs %s, HOUSE needs %s, SPEAR needs %s\n",
		cost(req.Recipes.Campfire), cost(req.Recipes.House), cost(req.Recipes.Spear))

	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = string(a)
	}
	fmt.Fprintf(&b, "\nAs %s, decide what to do next. Respond with JSON only:\n", req.Name)
	fmt.Fprintf(&b, `{"action":"%s","target":"id from brackets or null","thought":"your inner monologue","say":"what you say out loud or null"}`,
		strings.Join(names, "|"))
	return b.String()
}

func sightings(list []Sighting, empty string) string {
	if len(list) == 0 {
		return empty
	}
	parts := make([]string, len(list))
	for i, s := range list {
		note := ""
		if s.Note != "" {
			note = "," + s.Note
		}
		parts[i] = fmt.Sprintf("%s[%s](%.0fm%s)", s.Kind, s.ID, s.Distance, note)
	}
	return strings.Join(parts, ", ")
}

func cost(r world.Recipe) string {
	var parts []string
	for _, item := range []world.Item{world.ItemWood, world.ItemStone, world.ItemMud} {
		if n := r[item]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(item))))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, " + ")
}
