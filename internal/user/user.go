// Package user owns the mutable user aggregate and its append-only
// mission history. All mutation goes through the Store; every other
// component computes deltas against a snapshot and hands them back.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/mission"
)

// Preferences are the user's app settings.
type Preferences struct {
	Notifications bool   `json:"notifications"`
	SoundEffects  bool   `json:"soundEffects"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Difficulty    string `json:"difficulty"`
}

// Stats are aggregated counters derived from activity.
type Stats struct {
	TotalTimeSpent     int              `json:"totalTimeSpent"` // minutes
	AverageSessionTime int              `json:"averageSessionTime"`
	FavoriteCategory   mission.Category `json:"favoriteCategory"`
	BestStreak         int              `json:"bestStreak"`
	WeeklyGoal         int              `json:"weeklyGoal"`
	WeeklyCompleted    int              `json:"weeklyCompleted"`
	MonthlyGoal        int              `json:"monthlyGoal"`
	MonthlyCompleted   int              `json:"monthlyCompleted"`
}

// User is the single mutable aggregate. Level is derived from XP except
// when a purchased level boost raises it directly; the store tolerates
// that divergence and never recomputes level from XP on load.
type User struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Email             string                 `json:"email,omitempty"`
	Level             int                    `json:"level"`
	XP                int                    `json:"xp"`
	XPToNext          int                    `json:"xpToNext"`
	Streak            int                    `json:"streak"`
	CompletedMissions int                    `json:"completedMissions"`
	TotalMissions     int                    `json:"totalMissions"`
	IsVIP             bool                   `json:"isVip"`
	VIPExpiresAt      *time.Time             `json:"vipExpiresAt,omitempty"`
	JoinedAt          time.Time              `json:"joinedAt"`
	LastActiveAt      time.Time              `json:"lastActiveAt"`
	Preferences       Preferences            `json:"preferences"`
	Achievements      []achievement.Unlocked `json:"achievements"`
	Stats             Stats                  `json:"stats"`
}

// CompletedMission is one immutable history entry.
type CompletedMission struct {
	MissionID   string    `json:"missionId"`
	CompletedAt time.Time `json:"completedAt"`
	TimeSpent   int       `json:"timeSpent"` // minutes
	XPEarned    int       `json:"xpEarned"`
	Rating      int       `json:"rating,omitempty"` // 1-5 stars
	Feedback    string    `json:"feedback,omitempty"`
}

// New creates a fresh user at level 1 with default preferences and goals.
func New(name string, now time.Time) User {
	return User{
		ID:            uuid.NewString(),
		Name:          name,
		Level:         1,
		XP:            0,
		XPToNext:      100,
		TotalMissions: len(mission.Catalog()),
		JoinedAt:      now,
		LastActiveAt:  now,
		Preferences: Preferences{
			Notifications: true,
			SoundEffects:  true,
			Theme:         "light",
			Language:      "en",
			Difficulty:    "adaptive",
		},
		Achievements: []achievement.Unlocked{},
		Stats: Stats{
			FavoriteCategory: mission.CategoryProductivity,
			WeeklyGoal:       7,
			MonthlyGoal:      30,
		},
	}
}

// Clone returns a deep copy so callers can mutate snapshots freely.
func (u User) Clone() User {
	cp := u
	if u.VIPExpiresAt != nil {
		t := *u.VIPExpiresAt
		cp.VIPExpiresAt = &t
	}
	cp.Achievements = make([]achievement.Unlocked, len(u.Achievements))
	copy(cp.Achievements, u.Achievements)
	return cp
}

// UnlockedIDs returns the set of unlocked achievement ids, the shape the
// achievement evaluators take for deduplication.
func (u User) UnlockedIDs() map[string]bool {
	ids := make(map[string]bool, len(u.Achievements))
	for _, a := range u.Achievements {
		ids[a.ID] = true
	}
	return ids
}

// VIPActive reports whether the VIP entitlement is in effect at now.
func (u User) VIPActive(now time.Time) bool {
	if !u.IsVIP {
		return false
	}
	return u.VIPExpiresAt == nil || u.VIPExpiresAt.After(now)
}
