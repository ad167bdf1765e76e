// Package session drives one mission at a time: selection, the countdown
// timer, and completion with all its downstream effects.
package session

import (
	"encoding/json"
	"time"

	"github.com/evolua/backend/internal/guidance"
	"github.com/evolua/backend/internal/mission"
)

// Phase is where the active session sits in its lifecycle. There is no
// completed phase: completing a mission resets the controller to Idle.
type Phase int

const (
	// Idle means no mission is selected.
	Idle Phase = iota
	// Armed means a mission is selected but the timer is not ticking.
	// A run whose timer hit zero returns here as well.
	Armed
	// Running means the countdown is ticking.
	Running
	// Paused means the countdown was stopped by the user.
	Paused
)

var phaseNames = map[Phase]string{
	Idle:    "idle",
	Armed:   "armed",
	Running: "running",
	Paused:  "paused",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// State is a point-in-time snapshot of the controller, safe to hold
// after the controller moves on.
type State struct {
	Phase            Phase              `json:"phase"`
	Mission          *mission.Mission   `json:"mission,omitempty"`
	Guidance         *guidance.Guidance `json:"guidance,omitempty"`
	RemainingSeconds int                `json:"remainingSeconds"`
	StartedAt        *time.Time         `json:"startedAt,omitempty"`
}
