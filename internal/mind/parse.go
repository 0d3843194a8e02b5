package mind

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// decisionSchema is the shape every oracle answer must have once the action
// name has been normalized.
const decisionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["action"],
  "properties": {
    "action":  {"enum": ["MOVE","GATHER","CRAFT","SLEEP","FLEE","SOCIALIZE","RESPOND","IGNORE","WANDER","ATTACK","DRINK"]},
    "target":  {"type": ["string", "null"]},
    "thought": {"type": ["string", "null"], "maxLength": 400},
    "say":     {"type": ["string", "null"], "maxLength": 200}
  }
}`

var schema = jsonschema.MustCompileString("decision.schema.json", decisionSchema)

// Small models drift from the vocabulary; these are the drifts seen often
// enough to accept.
var actionAliases = map[string]Action{
	"SOCIAL":  ActSocialize,
	"TALK":    ActSocialize,
	"CHAT":    ActSocialize,
	"BUILD":   ActCraft,
	"REST":    ActSleep,
	"EAT":     ActGather,
	"HUNT":    ActAttack,
	"WAIT":    ActWander,
	"EXPLORE": ActWander,
}

// Parse extracts the first JSON object from a model reply, validates it and
// builds the matching Decision for agentID. Any failure wraps ErrParse.
func Parse(text, agentID string) (Decision, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrParse, err)
	}
	if act, ok := doc["action"].(string); ok {
		doc["action"] = string(normalizeAction(act))
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	act := Action(doc["action"].(string))
	m := Meta{
		AgentID:  agentID,
		Thought:  str(doc["thought"]),
		Dialogue: str(doc["say"]),
	}
	target := str(doc["target"])
	if strings.EqualFold(target, "null") || strings.EqualFold(target, "none") {
		target = ""
	}
	// Prompts show ids in brackets; models sometimes echo them.
	target = strings.Trim(target, "[] ")

	d := newDecision(act, target, m)
	if d == nil {
		return nil, fmt.Errorf("%w: unknown action %q", ErrParse, act)
	}
	return d, nil
}

func normalizeAction(s string) Action {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "| "); i > 0 {
		s = s[:i]
	}
	if a, ok := actionAliases[s]; ok {
		return a
	}
	return Action(s)
}

// extractJSON returns the first balanced {...} object in text. Braces inside
// JSON strings are ignored.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", errors.New("no JSON object in response")
	}
	depth, inString, escaped := 0, false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errors.New("unterminated JSON object in response")
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
