// Package progression holds the pure level math: XP totals map to levels
// through level = floor(sqrt(xp/100)) + 1, and the inverse threshold
// function gives the cumulative XP cost of each level. Nothing in this
// package performs I/O or fails.
package progression

import "math"

// LevelForXP returns the level reached with the given XP total.
// Level 1 starts at 0 XP; level N starts at (N-1)^2 * 100.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// XPThresholdForLevel returns the cumulative XP required to reach level.
// Levels below 1 are treated as level 1, which costs nothing.
func XPThresholdForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return (level - 1) * (level - 1) * 100
}

// XPToNextLevel returns how much XP is still missing to reach the next
// level from the given total. Always positive.
func XPToNextLevel(xp int) int {
	return XPThresholdForLevel(LevelForXP(xp)+1) - xp
}

// LevelUp describes a level increase produced by a single XP gain. One
// gain produces at most one LevelUp, even when several levels are crossed.
type LevelUp struct {
	OldLevel int `json:"oldLevel"`
	NewLevel int `json:"newLevel"`
	TotalXP  int `json:"totalXP"`
}

// Gain is the recomputed progression state after applying an XP amount.
type Gain struct {
	XP       int
	Level    int
	XPToNext int
}

// Apply adds amount to the current XP total and recomputes level and
// xp-to-next. Non-positive amounts are rejected as no-ops: the returned
// Gain reflects the unchanged total and the LevelUp is nil. The previous
// level is taken from the stored aggregate rather than recomputed from
// xp, so boosted levels (level raised without XP) are respected: a gain
// never lowers a boosted level, it only reports an event when the
// recomputed level exceeds the stored one.
func Apply(currentXP, currentLevel, amount int) (Gain, *LevelUp) {
	if amount <= 0 {
		return Gain{
			XP:       currentXP,
			Level:    currentLevel,
			XPToNext: XPToNextLevel(currentXP),
		}, nil
	}

	newXP := currentXP + amount
	newLevel := LevelForXP(newXP)
	if newLevel < currentLevel {
		newLevel = currentLevel
	}

	g := Gain{
		XP:       newXP,
		Level:    newLevel,
		XPToNext: XPToNextLevel(newXP),
	}
	if newLevel > currentLevel {
		return g, &LevelUp{OldLevel: currentLevel, NewLevel: newLevel, TotalXP: newXP}
	}
	return g, nil
}
