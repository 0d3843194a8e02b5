package agents

import "github.com/talgya/neurovale/internal/world"

// Feelings is the subjective reading of an agent's chemistry and needs.
type Feelings struct {
	Labels []string `json:"feelings"`
	Mood   string   `json:"mood"`
}

// Mood tiers, most urgent first. The first tier with a present label wins.
var moodTiers = [][]string{
	{"panicked", "stressed", "hungry", "thirsty", "exhausted"},
	{"motivated", "alert", "bonded"},
	{"content", "relaxed"},
	{"irritable", "apathetic", "lonely"},
}

// DeriveFeelings maps chemistry and needs onto feeling labels and a single mood.
func DeriveFeelings(a *world.Agent) Feelings {
	c, n := a.Chem, a.Needs
	checks := []struct {
		on    bool
		label string
	}{
		{c.Dopamine > 70, "motivated"},
		{c.Dopamine < 30, "apathetic"},
		{c.Serotonin > 70, "content"},
		{c.Serotonin < 35, "irritable"},
		{c.Cortisol > 70, "stressed"},
		{c.Cortisol > 85, "panicked"},
		{c.Adrenaline > 70, "alert"},
		{c.Adrenaline < 25 && c.Cortisol < 40, "relaxed"},
		{c.Oxytocin > 65, "bonded"},
		{c.Oxytocin < 25 && c.Serotonin < 40, "lonely"},
		{n.Energy < 30, "exhausted"},
		{n.Hunger < 30, "hungry"},
		{n.Thirst < 30, "thirsty"},
	}

	f := Feelings{Mood: "neutral"}
	present := make(map[string]bool)
	for _, ch := range checks {
		if ch.on {
			f.Labels = append(f.Labels, ch.label)
			present[ch.label] = true
		}
	}
	for _, tier := range moodTiers {
		for _, label := range tier {
			if present[label] {
				f.Mood = label
				return f
			}
		}
	}
	return f
}
