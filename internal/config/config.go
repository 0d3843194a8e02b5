// Package config loads simulation tunables from a YAML file.
// A missing file yields the defaults; a few fields can be overridden from the
// environment so deployments can point the oracle elsewhere without a file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/neurovale/internal/world"
)

// DefaultPath is used when WORLDSIM_CONFIG is unset.
const DefaultPath = "worldsim.yaml"

// Goal priority policies.
const (
	PolicyHungerFirst = "hunger_first"
	PolicySafetyFirst = "safety_first"
)

// Config is the full set of simulation tunables.
type Config struct {
	World   World         `yaml:"world"`
	Tick    time.Duration `yaml:"tick"`
	Recipes world.Recipes `yaml:"recipes"`
	Goals   Goals         `yaml:"goals"`
	Oracle  Oracle        `yaml:"oracle"`
	Storage Storage       `yaml:"storage"`
	API     API           `yaml:"api"`
}

// World holds the calendar and population tunables.
type World struct {
	Size             float64 `yaml:"size"`
	Seed             int64   `yaml:"seed"` // 0 = random
	DayLengthTicks   int     `yaml:"day_length_ticks"`
	SeasonLengthDays int     `yaml:"season_length_days"`
	WeatherChange    float64 `yaml:"weather_change_chance"`
	Flora            int     `yaml:"flora"`
	Rocks            int     `yaml:"rocks"`
	MudPits          int     `yaml:"mud_pits"`
	Prey             int     `yaml:"prey"`
	Predators        int     `yaml:"predators"`
	Rivers           int     `yaml:"rivers"`
	PuddleCap        int     `yaml:"puddle_cap"`
}

// Goals selects the goal solver's priority ordering.
type Goals struct {
	Policy string `yaml:"policy"` // hunger_first | safety_first
}

// Oracle configures the remote decision source.
type Oracle struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	Cooldown      time.Duration `yaml:"cooldown"`
	Timeout       time.Duration `yaml:"timeout"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	MaxBackoff    time.Duration `yaml:"max_backoff"`
}

// Storage configures the memory store.
type Storage struct {
	Path         string        `yaml:"path"`
	SaveInterval time.Duration `yaml:"save_interval"`
}

// API configures the HTTP/websocket surface.
type API struct {
	Addr string `yaml:"addr"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		World: World{
			Size:             60,
			DayLengthTicks:   2400,
			SeasonLengthDays: 3,
			WeatherChange:    0.002,
			Flora:            40,
			Rocks:            8,
			MudPits:          6,
			Prey:             10,
			Predators:        2,
			Rivers:           6,
			PuddleCap:        12,
		},
		Tick:    125 * time.Millisecond,
		Recipes: world.DefaultRecipes(),
		Goals:   Goals{Policy: PolicyHungerFirst},
		Oracle: Oracle{
			Enabled:       true,
			Endpoint:      "http://localhost:11434",
			Model:         "qwen2.5:1.5b",
			Cooldown:      3 * time.Second,
			Timeout:       20 * time.Second,
			ProbeInterval: 10 * time.Second,
			MaxBackoff:    5 * time.Minute,
		},
		Storage: Storage{
			Path:         "data/neurovale.db",
			SaveInterval: 30 * time.Second,
		},
		API: API{Addr: ":8080"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
		if err := cfg.replaceRecipes(raw); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// replaceRecipes swaps in every recipe the file names. Decoding into the
// default maps would merge ingredients, so a file's recipe always replaces
// the stock one wholesale.
func (c *Config) replaceRecipes(raw []byte) error {
	var file struct {
		Recipes world.Recipes `yaml:"recipes"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}
	if file.Recipes.Campfire != nil {
		c.Recipes.Campfire = file.Recipes.Campfire
	}
	if file.Recipes.House != nil {
		c.Recipes.House = file.Recipes.House
	}
	if file.Recipes.Spear != nil {
		c.Recipes.Spear = file.Recipes.Spear
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WORLDSIM_ORACLE_URL"); v != "" {
		c.Oracle.Endpoint = v
	}
	if v := os.Getenv("WORLDSIM_ORACLE_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("WORLDSIM_ADDR"); v != "" {
		c.API.Addr = v
	}
}

// Validate rejects tunables the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.World.Size <= 0:
		return fmt.Errorf("world.size must be positive, got %v", c.World.Size)
	case c.Tick <= 0:
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	case c.World.DayLengthTicks <= 0:
		return fmt.Errorf("world.day_length_ticks must be positive, got %d", c.World.DayLengthTicks)
	case c.World.SeasonLengthDays <= 0:
		return fmt.Errorf("world.season_length_days must be positive, got %d", c.World.SeasonLengthDays)
	case c.Goals.Policy != PolicyHungerFirst && c.Goals.Policy != PolicySafetyFirst:
		return fmt.Errorf("goals.policy must be %q or %q, got %q", PolicyHungerFirst, PolicySafetyFirst, c.Goals.Policy)
	case c.Oracle.Timeout <= 0:
		return fmt.Errorf("oracle.timeout must be positive, got %v", c.Oracle.Timeout)
	case c.Oracle.Cooldown <= 0:
		return fmt.Errorf("oracle.cooldown must be positive, got %v", c.Oracle.Cooldown)
	case c.Oracle.ProbeInterval <= 0:
		return fmt.Errorf("oracle.probe_interval must be positive, got %v", c.Oracle.ProbeInterval)
	case c.Oracle.MaxBackoff < c.Oracle.ProbeInterval:
		return fmt.Errorf("oracle.max_backoff %v is shorter than oracle.probe_interval %v", c.Oracle.MaxBackoff, c.Oracle.ProbeInterval)
	}
	for name, r := range map[string]world.Recipe{
		"campfire": c.Recipes.Campfire,
		"house":    c.Recipes.House,
		"spear":    c.Recipes.Spear,
	} {
		if len(r) == 0 {
			return fmt.Errorf("recipes.%s must name at least one ingredient", name)
		}
		for item, n := range r {
			if n <= 0 {
				return fmt.Errorf("recipes.%s.%s must be positive, got %d", name, item, n)
			}
		}
	}
	return nil
}

// GenConfig projects the population tunables for world generation.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Size:      c.World.Size,
		Flora:     c.World.Flora,
		Rocks:     c.World.Rocks,
		MudPits:   c.World.MudPits,
		Prey:      c.World.Prey,
		Predators: c.World.Predators,
		Rivers:    c.World.Rivers,
	}
}

// ClockConfig projects the calendar tunables.
func (c Config) ClockConfig() world.ClockConfig {
	return world.ClockConfig{
		DayLengthTicks:      c.World.DayLengthTicks,
		SeasonLengthDays:    c.World.SeasonLengthDays,
		WeatherChangeChance: c.World.WeatherChange,
	}
}
