package mind

import (
	"errors"
	"testing"
)

func TestParse_Variants(t *testing.T) {
	cases := []struct {
		text string
		want Action
	}{
		{`{"action":"GATHER","target":"flora-012","thought":"berries","say":null}`, ActGather},
		{`Sure! {"action":"sleep","target":null,"thought":"tired"} hope that helps`, ActSleep},
		{`{"action":"TALK","target":"npc_2","thought":"lonely","say":"Hi!"}`, ActSocialize},
		{`{"action":"CRAFT|GATHER","thought":"build"}`, ActCraft},
		{`{"action":"RESPOND","thought":"nice {to} hear"}`, ActRespond},
		{`{"action":"DRINK"}`, ActDrink},
	}
	for _, c := range cases {
		d, err := Parse(c.text, "npc_1")
		if err != nil {
			t.Fatalf("Parse(%s): %v", c.text, err)
		}
		if d.Action() != c.want {
			t.Fatalf("Parse(%s) = %s, want %s", c.text, d.Action(), c.want)
		}
		if d.Info().AgentID != "npc_1" {
			t.Fatalf("agent id = %q", d.Info().AgentID)
		}
	}
}

func TestParse_Fields(t *testing.T) {
	d, err := Parse(`{"action":"ATTACK","target":"[fauna-003]","thought":"meat","say":"Got you!"}`, "npc_3")
	if err != nil {
		t.Fatal(err)
	}
	atk, ok := d.(Attack)
	if !ok {
		t.Fatalf("got %T, want Attack", d)
	}
	if atk.Target != "fauna-003" || atk.Thought != "meat" || atk.Dialogue != "Got you!" {
		t.Fatalf("fields = %+v", atk)
	}
}

func TestParse_NullTargetString(t *testing.T) {
	d, err := Parse(`{"action":"SOCIALIZE","target":"null"}`, "a")
	if err != nil {
		t.Fatal(err)
	}
	if d.(Socialize).Target != "" {
		t.Fatalf("target = %q, want empty", d.(Socialize).Target)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, text := range []string{
		"I think I will go gather some wood.",
		`{"action":"DANCE"}`,
		`{"target":"x"}`,
		`{"action":42}`,
		`{"action":"MOVE","target":7}`,
		`{"action":"MOVE"`,
	} {
		if _, err := Parse(text, "a"); !errors.Is(err, ErrParse) {
			t.Fatalf("Parse(%q) err = %v, want ErrParse", text, err)
		}
	}
}
