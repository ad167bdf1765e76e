package user

import (
	"fmt"
	"time"
)

// TimeOfDay buckets the local hour into the four greeting periods.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// Rand is the subset of math/rand used to vary greetings.
type Rand interface {
	Intn(n int) int
}

// TimeOfDayAt returns the greeting period for the given moment, using
// its location's local hour.
func TimeOfDayAt(now time.Time) TimeOfDay {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return Night
	}
}

var greetings = map[TimeOfDay][]string{
	Morning:   {"Good morning, %s!", "Hello, %s! Ready for a new day?"},
	Afternoon: {"Good afternoon, %s!", "Hello, %s! How is your day going?"},
	Evening:   {"Good evening, %s!", "Hello, %s! Let's finish the day strong."},
	Night:     {"Good night, %s!", "Hello, %s! Still awake?"},
}

// Greeting picks a time-of-day appropriate greeting for the user.
func Greeting(name string, now time.Time, rng Rand) string {
	options := greetings[TimeOfDayAt(now)]
	return fmt.Sprintf(options[rng.Intn(len(options))], name)
}

// FormatXP renders an XP total compactly: 950, 1.5k, 2.3M.
func FormatXP(xp int) string {
	switch {
	case xp < 1000:
		return fmt.Sprintf("%d", xp)
	case xp < 1000000:
		return fmt.Sprintf("%.1fk", float64(xp)/1000)
	default:
		return fmt.Sprintf("%.1fM", float64(xp)/1000000)
	}
}
