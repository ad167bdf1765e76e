package ws

import (
	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/progression"
	"github.com/evolua/backend/internal/session"
	"github.com/evolua/backend/internal/streak"
	"github.com/evolua/backend/internal/user"
)

type MessageType string

const (
	MsgSnapshot            MessageType = "snapshot"
	MsgTick                MessageType = "tick"
	MsgLevelUp             MessageType = "level_up"
	MsgAchievementUnlocked MessageType = "achievement_unlocked"
	MsgStreakBroken        MessageType = "streak_broken"
	MsgStreakMilestone     MessageType = "streak_milestone"
	MsgMissionCompleted    MessageType = "mission_completed"
	MsgNotification        MessageType = "notification"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload any `json:"payload"`
}

// SnapshotPayload is pushed to every client on connect.
type SnapshotPayload struct {
	User    *user.User    `json:"user,omitempty"`
	Session session.State `json:"session"`
	Unread  int           `json:"unread"`
}

type TickPayload struct {
	Session session.State `json:"session"`
}

type AchievementUnlockedPayload struct {
	Achievement achievement.Unlocked `json:"achievement"`
}

type NotificationPayload struct {
	Notification notify.Notification `json:"notification"`
}

// Aliases keep the wire payload set in one place even where a domain
// type already fits.
type (
	LevelUpPayload          = progression.LevelUp
	StreakBrokenPayload     = streak.Broken
	StreakMilestonePayload  = streak.Milestone
	MissionCompletedPayload = session.Completion
)
