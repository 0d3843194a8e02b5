package agents

import "github.com/talgya/neurovale/internal/entropy"

// Chat line pools.
var (
	greetingLines = []string{"Hello there!", "Good to see you.", "Hey, how are you holding up?", "Oh, hi!"}
	friendlyLines = []string{"Nice weather today.", "Found anything good to eat?", "We should build a village.", "I'm glad you're here."}
	dangerLines   = []string{"Run!", "Predator! Get away!", "Watch out!", "Too close, too close!"}
	tiredLines    = []string{"I need to rest...", "So sleepy.", "Time for a nap."}
	replyLines    = []string{"Sure, let's talk.", "Good to hear from you!", "Mm-hm, go on."}
)

func pick(rng *entropy.Rand, lines []string) string {
	return lines[rng.Intn(len(lines))]
}
