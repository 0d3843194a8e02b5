package world

import (
	"fmt"
	"math"

	"github.com/talgya/neurovale/internal/entropy"
)

// Season enumerates the four seasons.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = [...]string{"SPRING", "SUMMER", "AUTUMN", "WINTER"}

func (s Season) String() string {
	if int(s) < len(seasonNames) {
		return seasonNames[s]
	}
	return "UNKNOWN"
}

// MarshalText encodes the season by name.
func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a season name.
func (s *Season) UnmarshalText(b []byte) error {
	for i, name := range seasonNames {
		if name == string(b) {
			*s = Season(i)
			return nil
		}
	}
	return fmt.Errorf("unknown season %q", b)
}

// TempModifier is the seasonal shift applied to ambient temperature.
func (s Season) TempModifier() float64 {
	switch s {
	case Summer:
		return 20
	case Autumn:
		return -10
	case Winter:
		return -30
	default:
		return 0
	}
}

// Weather is the current sky condition.
type Weather string

const (
	WeatherClear  Weather = "CLEAR"
	WeatherCloudy Weather = "CLOUDY"
	WeatherRain   Weather = "RAIN"
	WeatherStorm  Weather = "STORM"
	WeatherSnow   Weather = "SNOW"
)

// Wet reports whether the weather adds water to the ground.
func (w Weather) Wet() bool {
	return w == WeatherRain || w == WeatherStorm
}

// ColdPenalty is the per-tick temperature loss caused by the weather.
func (w Weather) ColdPenalty() float64 {
	switch w {
	case WeatherRain:
		return 0.05
	case WeatherStorm:
		return 0.1
	case WeatherSnow:
		return 0.15
	default:
		return 0
	}
}

type weatherOdds struct {
	weather Weather
	weight  float64
}

// Season-conditioned weather distribution. Winter favors snow and cloud,
// summer favors clear skies with the occasional storm.
var seasonWeather = map[Season][]weatherOdds{
	Spring: {{WeatherClear, 0.4}, {WeatherCloudy, 0.3}, {WeatherRain, 0.3}},
	Summer: {{WeatherClear, 0.6}, {WeatherCloudy, 0.15}, {WeatherRain, 0.1}, {WeatherStorm, 0.15}},
	Autumn: {{WeatherClear, 0.25}, {WeatherCloudy, 0.35}, {WeatherRain, 0.3}, {WeatherStorm, 0.1}},
	Winter: {{WeatherClear, 0.15}, {WeatherCloudy, 0.35}, {WeatherSnow, 0.5}},
}

// WeatherOptions returns the weather kinds a season can draw.
func WeatherOptions(s Season) []Weather {
	odds := seasonWeather[s]
	out := make([]Weather, len(odds))
	for i, o := range odds {
		out[i] = o.weather
	}
	return out
}

// Clock holds the calendar portion of a snapshot.
type Clock struct {
	Tick      uint64  `json:"tick"`
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"` // Hours, [0, 24)
	Season    Season  `json:"season"`
	Weather   Weather `json:"weather"`
}

// IsNight reports whether the time of day is before 06:00 or after 19:00.
func (c Clock) IsNight() bool {
	return c.TimeOfDay < 6 || c.TimeOfDay > 19
}

// ClockConfig holds the calendar tunables.
type ClockConfig struct {
	DayLengthTicks      int
	SeasonLengthDays    int
	WeatherChangeChance float64 // Per tick
}

// DefaultClockConfig returns the stock calendar.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		DayLengthTicks:      2400,
		SeasonLengthDays:    3,
		WeatherChangeChance: 0.002,
	}
}

// SeasonForDay returns floor((day-1)/seasonLength) mod 4.
func SeasonForDay(day, seasonLengthDays int) Season {
	if seasonLengthDays <= 0 {
		seasonLengthDays = 1
	}
	if day < 1 {
		day = 1
	}
	return Season(((day - 1) / seasonLengthDays) % 4)
}

// Advance returns the clock one tick later along with any calendar events
// (season turn, weather change). It is a pure function of the previous clock
// and the random draw.
func (c Clock) Advance(cfg ClockConfig, rng *entropy.Rand) (Clock, []string) {
	var notes []string
	next := c
	next.Tick++

	dayLen := cfg.DayLengthTicks
	if dayLen <= 0 {
		dayLen = 1
	}
	raw := c.TimeOfDay + 24/float64(dayLen)
	if raw >= 24 {
		next.Day++
	}
	next.TimeOfDay = math.Mod(raw, 24)
	if next.Day < 1 {
		next.Day = 1
	}

	next.Season = SeasonForDay(next.Day, cfg.SeasonLengthDays)
	if next.Season != c.Season {
		notes = append(notes, fmt.Sprintf("Season changed to %s", next.Season))
	}

	if rng.Chance(cfg.WeatherChangeChance) {
		w := drawWeather(next.Season, rng)
		if w != c.Weather {
			next.Weather = w
			notes = append(notes, fmt.Sprintf("The weather turns %s", w))
		}
	}
	return next, notes
}

func drawWeather(s Season, rng *entropy.Rand) Weather {
	odds := seasonWeather[s]
	weights := make([]float64, len(odds))
	for i, o := range odds {
		weights[i] = o.weight
	}
	i := rng.Weighted(weights)
	if i < 0 {
		return WeatherClear
	}
	return odds[i].weather
}
