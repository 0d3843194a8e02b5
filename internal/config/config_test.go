package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/neurovale/internal/world"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Size != 60 {
		t.Fatalf("world.size = %v, want 60", cfg.World.Size)
	}
	if cfg.Tick != 125*time.Millisecond {
		t.Fatalf("tick = %s, want 125ms", cfg.Tick)
	}
	if cfg.Goals.Policy != PolicyHungerFirst {
		t.Fatalf("policy = %q, want %q", cfg.Goals.Policy, PolicyHungerFirst)
	}
	if got := cfg.Recipes.Campfire[world.ItemWood]; got != 2 {
		t.Fatalf("campfire wood = %d, want 2", got)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldsim.yaml")
	raw := `
world:
  size: 80
  day_length_ticks: 1200
tick: 50ms
goals:
  policy: safety_first
oracle:
  cooldown: 5s
recipes:
  campfire:
    WOOD: 3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Size != 80 || cfg.World.DayLengthTicks != 1200 {
		t.Fatalf("world = %+v, want size 80 and day length 1200", cfg.World)
	}
	if cfg.World.SeasonLengthDays != 3 {
		t.Fatalf("season_length_days = %d, want default 3", cfg.World.SeasonLengthDays)
	}
	if cfg.Tick != 50*time.Millisecond {
		t.Fatalf("tick = %s, want 50ms", cfg.Tick)
	}
	if cfg.Goals.Policy != PolicySafetyFirst {
		t.Fatalf("policy = %q", cfg.Goals.Policy)
	}
	if cfg.Oracle.Cooldown != 5*time.Second {
		t.Fatalf("cooldown = %s, want 5s", cfg.Oracle.Cooldown)
	}
	if got := cfg.Recipes.Campfire[world.ItemWood]; got != 3 {
		t.Fatalf("campfire wood = %d, want 3", got)
	}
	if got := cfg.Recipes.House[world.ItemStone]; got != 2 {
		t.Fatalf("house stone = %d, want default 2", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORLDSIM_ORACLE_URL", "http://oracle.internal:9000")
	t.Setenv("WORLDSIM_ORACLE_MODEL", "llama3")
	t.Setenv("WORLDSIM_ADDR", ":9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Oracle.Endpoint != "http://oracle.internal:9000" || cfg.Oracle.Model != "llama3" {
		t.Fatalf("oracle = %+v", cfg.Oracle)
	}
	if cfg.API.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.API.Addr)
	}
}

func TestLoad_RejectsBadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldsim.yaml")
	if err := os.WriteFile(path, []byte("goals:\n  policy: whatever\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldsim.yaml")
	if err := os.WriteFile(path, []byte("world: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldsim.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_RecipeReplacesDefault(t *testing.T) {
	path := writeConfig(t, "recipes:\n  house:\n    WOOD: 6\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := world.Recipe{world.ItemWood: 6}
	if len(cfg.Recipes.House) != len(want) || cfg.Recipes.House[world.ItemWood] != 6 {
		t.Fatalf("house = %v, want %v with no stock ingredients merged in", cfg.Recipes.House, want)
	}
	if got := cfg.Recipes.Spear[world.ItemStone]; got != 1 {
		t.Fatalf("unnamed spear recipe changed: stone = %d", got)
	}
	if got := world.DefaultRecipes().House[world.ItemStone]; got != 2 {
		t.Fatalf("stock house recipe was mutated: stone = %d", got)
	}
}

func TestLoad_RejectsBadTunables(t *testing.T) {
	cases := map[string]string{
		"empty recipe":        "recipes:\n  campfire: {}\n",
		"zero ingredient":     "recipes:\n  spear:\n    WOOD: 0\n",
		"negative timeout":    "oracle:\n  timeout: -1s\n",
		"zero timeout":        "oracle:\n  timeout: 0s\n",
		"zero cooldown":       "oracle:\n  cooldown: 0s\n",
		"zero probe":          "oracle:\n  probe_interval: 0s\n",
		"backoff below probe": "oracle:\n  probe_interval: 10s\n  max_backoff: 1s\n",
		"zero season":         "world:\n  season_length_days: 0\n",
	}
	for name, raw := range cases {
		if _, err := Load(writeConfig(t, raw)); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}
