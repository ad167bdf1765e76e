// Package streak computes consecutive-day activity streaks. Advance is a
// pure function over (lastActiveAt, now, streak, bestStreak); the caller
// owns persistence and must invoke it exactly once per session start.
package streak

import "time"

// Milestone streak lengths that produce a milestone event when reached
// by an increment (not by a reset).
var milestones = [...]int{7, 14, 30, 60, 100}

// Broken reports a streak reset after one or more missed days.
type Broken struct {
	StreakLength int `json:"streakLength"`
	DaysMissed   int `json:"daysMissed"`
}

// Milestone reports a streak reaching one of the sentinel lengths.
type Milestone struct {
	StreakLength int `json:"streakLength"`
}

// Outcome is the result of advancing the streak to a new point in time.
type Outcome struct {
	Streak     int
	BestStreak int
	// Changed is false when the advance happened within the same day
	// and the streak is untouched.
	Changed   bool
	Broken    *Broken
	Milestone *Milestone
}

// Advance computes the new streak for activity at now, given the last
// active timestamp and the current streak. Day difference uses elapsed
// time bucketed into 24h units rather than calendar-day boundaries; this
// matches the recorded product behavior and is deliberately kept even
// though it can break streaks early near midnight.
//
//	same day  -> unchanged
//	next day  -> streak + 1
//	2+ days   -> reset to 1, Broken emitted if a streak existed
//
// A Milestone is emitted only when the new streak strictly exceeds the
// previous one and lands exactly on a sentinel value.
func Advance(lastActiveAt, now time.Time, streak, bestStreak int) Outcome {
	daysDiff := int(now.Sub(lastActiveAt).Hours() / 24)

	if daysDiff <= 0 {
		return Outcome{Streak: streak, BestStreak: bestStreak}
	}

	out := Outcome{Changed: true}
	if daysDiff == 1 {
		out.Streak = streak + 1
	} else {
		if streak > 0 {
			out.Broken = &Broken{StreakLength: streak, DaysMissed: daysDiff}
		}
		out.Streak = 1
	}

	if out.Streak > streak && isMilestone(out.Streak) {
		out.Milestone = &Milestone{StreakLength: out.Streak}
	}

	out.BestStreak = bestStreak
	if out.Streak > bestStreak {
		out.BestStreak = out.Streak
	}
	return out
}

func isMilestone(n int) bool {
	for _, m := range milestones {
		if n == m {
			return true
		}
	}
	return false
}
