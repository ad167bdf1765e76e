package user

import (
	"strings"
	"testing"
	"time"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func TestTimeOfDayAt(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{4, Night},
		{5, Morning},
		{11, Morning},
		{12, Afternoon},
		{16, Afternoon},
		{17, Evening},
		{21, Evening},
		{22, Night},
		{0, Night},
	}
	for _, tt := range tests {
		now := time.Date(2025, 6, 10, tt.hour, 30, 0, 0, time.UTC)
		if got := TimeOfDayAt(now); got != tt.want {
			t.Errorf("TimeOfDayAt(hour %d) = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

func TestGreeting_UsesNameAndPeriod(t *testing.T) {
	morning := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	got := Greeting("Ana", morning, fixedRand(0))
	if got != "Good morning, Ana!" {
		t.Errorf("greeting = %q", got)
	}

	got = Greeting("Ana", morning, fixedRand(1))
	if !strings.Contains(got, "Ana") || strings.Contains(got, "%s") {
		t.Errorf("alternate greeting = %q", got)
	}
}

func TestFormatXP(t *testing.T) {
	tests := []struct {
		xp   int
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1.0k"},
		{1500, "1.5k"},
		{999999, "1000.0k"},
		{2300000, "2.3M"},
	}
	for _, tt := range tests {
		if got := FormatXP(tt.xp); got != tt.want {
			t.Errorf("FormatXP(%d) = %q, want %q", tt.xp, got, tt.want)
		}
	}
}
