// Package notify keeps the append-only notification log and the analytics
// event log. Both are bounded: notifications keep the 50 most recent
// entries, events the last 1000. Persistence failures are logged and
// degrade to in-memory operation.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/storage"
)

// Kind labels what produced a notification.
type Kind string

const (
	KindMission     Kind = "mission"
	KindAchievement Kind = "achievement"
	KindStreak      Kind = "streak"
	KindPromotion   Kind = "promotion"
	KindSystem      Kind = "system"
)

const (
	maxNotifications = 50
	maxEvents        = 1000
)

// Notification is a single user-facing message. The read flag flips once;
// entries are never deleted individually, only aged out by the cap.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"type"`
	Read      bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is one analytics record: a named event with free-form properties.
type Event struct {
	Name       string         `json:"event"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Log owns both bounded lists and their persistence.
type Log struct {
	repo storage.Repository
	log  zerolog.Logger

	mu            sync.Mutex
	notifications []Notification
	events        []Event

	onAdd func(Notification)
}

// OnAdd registers a callback invoked for every new notification, after
// it is stored. Invoked outside the lock.
func (l *Log) OnAdd(cb func(Notification)) { l.onAdd = cb }

// NewLog creates a Log backed by repo, loading any persisted entries.
// A corrupt or missing document starts the corresponding list empty.
func NewLog(repo storage.Repository, logger zerolog.Logger) *Log {
	l := &Log{repo: repo, log: logger.With().Str("component", "notify").Logger()}
	l.loadList(storage.KeyNotifications, &l.notifications)
	l.loadList(storage.KeyEvents, &l.events)
	return l
}

func (l *Log) loadList(key string, dst any) {
	data, err := l.repo.Load(context.Background(), key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to load log")
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to parse log, starting empty")
	}
}

// Add appends a notification, assigns it a fresh id and timestamp, trims
// the list to the cap, and persists. The created notification is returned.
func (l *Log) Add(title, message string, kind Kind) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.notifications = append([]Notification{n}, l.notifications...)
	if len(l.notifications) > maxNotifications {
		l.notifications = l.notifications[:maxNotifications]
	}
	l.persistLocked(storage.KeyNotifications, l.notifications)
	l.mu.Unlock()

	if l.onAdd != nil {
		l.onAdd(n)
	}
	return n
}

// Notifications returns a copy of the log, newest first.
func (l *Log) Notifications() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.notifications))
	copy(out, l.notifications)
	return out
}

// Unread counts notifications that have not been read.
func (l *Log) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, nt := range l.notifications {
		if !nt.Read {
			n++
		}
	}
	return n
}

// MarkRead flips the read flag on the notification with the given id.
// Unknown ids are ignored.
func (l *Log) MarkRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.notifications {
		if l.notifications[i].ID == id {
			if !l.notifications[i].Read {
				l.notifications[i].Read = true
				l.persistLocked(storage.KeyNotifications, l.notifications)
			}
			return
		}
	}
}

// Track appends an analytics event, trimming the oldest entries past the
// cap, and persists.
func (l *Log) Track(name string, properties map[string]any) {
	ev := Event{Name: name, Properties: properties, Timestamp: time.Now().UTC()}

	l.mu.Lock()
	l.events = append(l.events, ev)
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
	l.persistLocked(storage.KeyEvents, l.events)
	l.mu.Unlock()
}

// Events returns a copy of the event log, oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Log) persistLocked(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.log.Error().Err(err).Str("key", key).Msg("failed to marshal log")
		return
	}
	if err := l.repo.Save(context.Background(), key, data); err != nil {
		l.log.Error().Err(err).Str("key", key).Msg("failed to save log")
	}
}
