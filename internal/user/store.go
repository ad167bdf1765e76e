package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/progression"
	"github.com/evolua/backend/internal/storage"
	"github.com/evolua/backend/internal/streak"
)

// Update is a partial user mutation. Nil fields are left untouched;
// Achievements are appended (never replaced) and deduplicated by id.
type Update struct {
	Name              *string
	Level             *int
	XP                *int
	XPToNext          *int
	Streak            *int
	CompletedMissions *int
	IsVIP             *bool
	VIPExpiresAt      *time.Time
	Preferences       *Preferences
	Stats             *Stats
	LastActiveAt      *time.Time
	Achievements      []achievement.Unlocked
}

// Store is the single writer for the user aggregate and the mission
// history. Reads hand out deep copies; every mutation is a
// read-modify-write under one mutex, persisted before the in-memory
// state is committed. A failed persist leaves the prior state in place.
type Store struct {
	repo   storage.Repository
	events *notify.Log
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	user    *User
	history []CompletedMission

	onLevelUp         func(progression.LevelUp)
	onStreakBroken    func(streak.Broken)
	onStreakMilestone func(streak.Milestone)
}

// NewStore creates a Store backed by repo. Any persisted user record and
// mission history are loaded; a missing record means the user still needs
// onboarding, which is not an error.
func NewStore(repo storage.Repository, events *notify.Log, logger zerolog.Logger) *Store {
	s := &Store{
		repo:   repo,
		events: events,
		log:    logger.With().Str("component", "user-store").Logger(),
		now:    time.Now,
	}
	s.load()
	return s
}

// OnLevelUp registers a callback fired after a level-up is persisted.
// Must be set before the store is used concurrently.
func (s *Store) OnLevelUp(cb func(progression.LevelUp)) { s.onLevelUp = cb }

// OnStreakBroken registers a callback fired when a streak resets.
func (s *Store) OnStreakBroken(cb func(streak.Broken)) { s.onStreakBroken = cb }

// OnStreakMilestone registers a callback fired when a streak reaches a
// sentinel length.
func (s *Store) OnStreakMilestone(cb func(streak.Milestone)) { s.onStreakMilestone = cb }

func (s *Store) load() {
	ctx := context.Background()

	if data, err := s.repo.Load(ctx, storage.KeyUser); err == nil {
		var u User
		if jsonErr := json.Unmarshal(data, &u); jsonErr != nil {
			s.log.Warn().Err(jsonErr).Msg("corrupt user record, treating as absent")
		} else {
			if u.Achievements == nil {
				u.Achievements = []achievement.Unlocked{}
			}
			s.user = &u
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Msg("failed to load user record")
	}

	if data, err := s.repo.Load(ctx, storage.KeyMissions); err == nil {
		if jsonErr := json.Unmarshal(data, &s.history); jsonErr != nil {
			s.log.Warn().Err(jsonErr).Msg("corrupt mission history, starting empty")
			s.history = nil
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Msg("failed to load mission history")
	}
}

// Load returns a snapshot of the current user, or false when no user
// exists yet (needs onboarding).
func (s *Store) Load() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return s.user.Clone(), true
}

// Create builds and persists a brand new user and emits the welcome
// notification. An existing user is replaced.
func (s *Store) Create(name string) User {
	u := New(name, s.now().UTC())

	s.mu.Lock()
	s.persistUserLocked(&u)
	s.user = &u
	out := u.Clone()
	s.mu.Unlock()

	s.events.Track("user_registered", map[string]any{"userName": name})
	s.events.Add("Welcome to Evolua!", "Your personal growth journey starts now.", notify.KindSystem)
	return out
}

// Save persists the given user as the new current state. A persistence
// failure is logged and treated as a no-op: the prior in-memory value is
// kept and returned.
func (s *Store) Save(u User) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u.Clone()
	if !s.persistUserLocked(&cp) && s.user != nil {
		return s.user.Clone()
	}
	s.user = &cp
	return cp.Clone()
}

// Update applies a partial mutation: load current, merge the set fields,
// stamp lastActiveAt, persist, return the merged result. Returns false
// when no user exists. A persist failure is a no-op returning the prior
// in-memory value.
func (s *Store) Update(upd Update) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(upd)
}

func (s *Store) updateLocked(upd Update) (User, bool) {
	if s.user == nil {
		return User{}, false
	}

	merged := s.user.Clone()
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Level != nil {
		merged.Level = *upd.Level
	}
	if upd.XP != nil {
		merged.XP = *upd.XP
	}
	if upd.XPToNext != nil {
		merged.XPToNext = *upd.XPToNext
	}
	if upd.Streak != nil {
		merged.Streak = *upd.Streak
	}
	if upd.CompletedMissions != nil {
		merged.CompletedMissions = *upd.CompletedMissions
	}
	if upd.IsVIP != nil {
		merged.IsVIP = *upd.IsVIP
	}
	if upd.VIPExpiresAt != nil {
		t := *upd.VIPExpiresAt
		merged.VIPExpiresAt = &t
	}
	if upd.Preferences != nil {
		merged.Preferences = *upd.Preferences
	}
	if upd.Stats != nil {
		merged.Stats = *upd.Stats
	}
	if len(upd.Achievements) > 0 {
		have := merged.UnlockedIDs()
		for _, a := range upd.Achievements {
			if !have[a.ID] {
				merged.Achievements = append(merged.Achievements, a)
				have[a.ID] = true
			}
		}
	}
	if upd.LastActiveAt != nil {
		merged.LastActiveAt = upd.LastActiveAt.UTC()
	} else {
		merged.LastActiveAt = s.now().UTC()
	}

	if !s.persistUserLocked(&merged) {
		return s.user.Clone(), true
	}
	s.user = &merged
	return merged.Clone(), true
}

// persistUserLocked writes the record and reports whether it was stored.
// Failures are logged, never raised.
func (s *Store) persistUserLocked(u *User) bool {
	data, err := json.Marshal(u)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal user record")
		return false
	}
	if err := s.repo.Save(context.Background(), storage.KeyUser, data); err != nil {
		s.log.Error().Err(err).Msg("failed to save user record")
		return false
	}
	return true
}

// AddXP applies a positive XP gain, recomputing level and xp-to-next and
// persisting the result. A level-up emits exactly one event covering the
// whole jump. Non-positive amounts are rejected locally as no-ops.
func (s *Store) AddXP(amount int) (User, *progression.LevelUp, bool) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return User{}, nil, false
	}
	if amount <= 0 {
		out := s.user.Clone()
		s.mu.Unlock()
		return out, nil, true
	}

	gain, up := progression.Apply(s.user.XP, s.user.Level, amount)
	merged, _ := s.updateLocked(Update{
		XP:       &gain.XP,
		Level:    &gain.Level,
		XPToNext: &gain.XPToNext,
	})
	if merged.XP != gain.XP {
		// Persist failed; the gain did not take effect.
		up = nil
	}
	s.mu.Unlock()

	if up != nil {
		s.events.Track("level_up", map[string]any{
			"oldLevel": up.OldLevel,
			"newLevel": up.NewLevel,
			"totalXP":  up.TotalXP,
		})
		s.events.Add("Congratulations!", fmt.Sprintf("You reached level %d!", up.NewLevel), notify.KindAchievement)
		if s.onLevelUp != nil {
			s.onLevelUp(*up)
		}
	}
	return merged, up, true
}

// AdvanceStreak rolls the streak forward to now. Same-day calls return
// the user unchanged, so repeated activation within a day is safe; the
// caller contract is still one call per session start.
func (s *Store) AdvanceStreak(now time.Time) (User, streak.Outcome, bool) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return User{}, streak.Outcome{}, false
	}

	out := streak.Advance(s.user.LastActiveAt, now, s.user.Streak, s.user.Stats.BestStreak)
	if !out.Changed {
		u := s.user.Clone()
		s.mu.Unlock()
		return u, out, true
	}

	stats := s.user.Stats
	stats.BestStreak = out.BestStreak
	merged, _ := s.updateLocked(Update{Streak: &out.Streak, Stats: &stats, LastActiveAt: &now})
	s.mu.Unlock()

	if out.Broken != nil {
		s.events.Track("streak_broken", map[string]any{
			"streakLength": out.Broken.StreakLength,
			"daysMissed":   out.Broken.DaysMissed,
		})
		s.events.Add("Streak lost",
			fmt.Sprintf("Your %d day streak ended. Time to start again!", out.Broken.StreakLength),
			notify.KindStreak)
		if s.onStreakBroken != nil {
			s.onStreakBroken(*out.Broken)
		}
	}
	if out.Milestone != nil {
		s.events.Track("streak_milestone", map[string]any{"streakLength": out.Milestone.StreakLength})
		s.events.Add(fmt.Sprintf("%d days in a row!", out.Milestone.StreakLength),
			"You are on an incredible streak!", notify.KindStreak)
		if s.onStreakMilestone != nil {
			s.onStreakMilestone(*out.Milestone)
		}
	}
	return merged, out, true
}

// AppendCompleted adds one entry to the append-only mission history.
func (s *Store) AppendCompleted(cm CompletedMission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, cm)
	data, err := json.Marshal(s.history)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal mission history")
		return
	}
	if err := s.repo.Save(context.Background(), storage.KeyMissions, data); err != nil {
		s.log.Error().Err(err).Msg("failed to save mission history")
	}
}

// History returns completed missions from the last days days, newest
// entries preserved in append order. days <= 0 returns everything.
func (s *Store) History(days int) []CompletedMission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		out := make([]CompletedMission, len(s.history))
		copy(out, s.history)
		return out
	}
	cutoff := s.now().AddDate(0, 0, -days)
	var out []CompletedMission
	for _, cm := range s.history {
		if !cm.CompletedAt.Before(cutoff) {
			out = append(out, cm)
		}
	}
	return out
}

// Export bundles user, history, notifications and events into one
// indented JSON document.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	var u *User
	if s.user != nil {
		cp := s.user.Clone()
		u = &cp
	}
	history := make([]CompletedMission, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	bundle := struct {
		User              *User                 `json:"user"`
		CompletedMissions []CompletedMission    `json:"completedMissions"`
		Notifications     []notify.Notification `json:"notifications"`
		Events            []notify.Event        `json:"events"`
	}{u, history, s.events.Notifications(), s.events.Events()}

	return json.MarshalIndent(bundle, "", "  ")
}
