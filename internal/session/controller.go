package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/guidance"
	"github.com/evolua/backend/internal/mission"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/progression"
	"github.com/evolua/backend/internal/user"
)

const defaultRating = 5

// Completion is everything one finished mission produced.
type Completion struct {
	User            user.User             `json:"user"`
	Mission         mission.Mission       `json:"mission"`
	TimeSpent       int                   `json:"timeSpent"` // minutes
	XPEarned        int                   `json:"xpEarned"`
	LevelUp         *progression.LevelUp  `json:"levelUp,omitempty"`
	NewAchievements []achievement.Unlocked `json:"newAchievements,omitempty"`
}

// Controller runs at most one mission session. Selecting a new mission
// replaces the current one; its timer goroutine is torn down first.
type Controller struct {
	users  *user.Store
	coach  *guidance.Client
	events *notify.Log
	log    zerolog.Logger

	now  func() time.Time
	tick time.Duration

	mu        sync.Mutex
	phase     Phase
	mission   *mission.Mission
	guidance  *guidance.Guidance
	remaining int // seconds
	startedAt time.Time
	cancel    context.CancelFunc

	onTick     func(State)
	onComplete func(Completion)
}

// NewController wires a session controller over the given collaborators.
func NewController(users *user.Store, coach *guidance.Client, events *notify.Log, logger zerolog.Logger) *Controller {
	return &Controller{
		users:  users,
		coach:  coach,
		events: events,
		log:    logger,
		now:    time.Now,
		tick:   time.Second,
	}
}

// OnTick registers a callback invoked after every countdown tick and on
// phase changes driven by the timer. Called from the timer goroutine.
func (c *Controller) OnTick(cb func(State)) { c.onTick = cb }

// OnComplete registers a callback invoked after a mission completes.
func (c *Controller) OnComplete(cb func(Completion)) { c.onComplete = cb }

// Snapshot returns the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	st := State{
		Phase:            c.phase,
		RemainingSeconds: c.remaining,
	}
	if c.mission != nil {
		m := *c.mission
		st.Mission = &m
	}
	if c.guidance != nil {
		g := *c.guidance
		st.Guidance = &g
	}
	if !c.startedAt.IsZero() {
		t := c.startedAt
		st.StartedAt = &t
	}
	return st
}

// Select picks a mission, arming the timer at the mission's estimate and
// fetching coaching content. The user's streak rolls forward here, once
// per activation. Any previous session is discarded.
func (c *Controller) Select(ctx context.Context, m mission.Mission) (State, error) {
	u, ok := c.users.Load()
	if !ok {
		return State{}, fmt.Errorf("no user")
	}
	if m.Locked && u.Level < m.RequiredLevel && !u.VIPActive(c.now()) {
		return State{}, fmt.Errorf("mission %s requires level %d", m.ID, m.RequiredLevel)
	}

	c.users.AdvanceStreak(c.now())

	// Fetch guidance before touching controller state so a slow coach
	// call never blocks Snapshot.
	g := c.coach.GenerateOrFallback(ctx, guidance.Request{
		Prompt:     m.AIPrompt,
		Category:   m.Category,
		Difficulty: m.Difficulty,
		UserLevel:  u.Level,
		TimeLimit:  m.TimeEstimateMinutes,
	})

	c.mu.Lock()
	c.stopTimerLocked()
	c.phase = Armed
	mc := m
	c.mission = &mc
	c.guidance = &g
	c.remaining = m.TimeEstimateMinutes * 60
	c.startedAt = c.now().UTC()
	st := c.snapshotLocked()
	c.mu.Unlock()

	c.events.Track("mission_started", map[string]any{
		"missionId":  m.ID,
		"category":   string(m.Category),
		"difficulty": string(m.Difficulty),
		"userLevel":  u.Level,
	})
	return st, nil
}

// Start begins or resumes the countdown.
func (c *Controller) Start() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mission == nil {
		return c.snapshotLocked(), fmt.Errorf("no mission selected")
	}
	if c.phase == Running {
		return c.snapshotLocked(), nil
	}
	if c.remaining <= 0 {
		return c.snapshotLocked(), fmt.Errorf("timer already expired")
	}

	c.phase = Running
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
	return c.snapshotLocked(), nil
}

// Pause stops the countdown without losing the mission.
func (c *Controller) Pause() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != Running {
		return c.snapshotLocked(), fmt.Errorf("not running")
	}
	c.stopTimerLocked()
	c.phase = Paused
	return c.snapshotLocked(), nil
}

// Abandon discards the current session without completing it.
func (c *Controller) Abandon() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.snapshotLocked()
}

// Complete finishes the selected mission: XP, history, stats, and
// achievement checks all land here. Rating 0 means unrated and is
// recorded as the default. Without a selected mission it fails.
func (c *Controller) Complete(rating int, feedback string) (Completion, error) {
	c.mu.Lock()
	if c.mission == nil {
		c.mu.Unlock()
		return Completion{}, fmt.Errorf("no mission selected")
	}
	c.stopTimerLocked()
	m := *c.mission
	remaining := c.remaining
	c.resetLocked()
	c.mu.Unlock()

	if rating == 0 {
		rating = defaultRating
	}
	timeSpent := m.TimeEstimateMinutes - remaining/60
	if timeSpent < 0 {
		timeSpent = 0
	}
	completedAt := c.now().UTC()

	updated, up, ok := c.users.AddXP(m.XPReward)
	if !ok {
		return Completion{}, fmt.Errorf("no user")
	}

	completedMissions := updated.CompletedMissions + 1
	stats := updated.Stats
	stats.TotalTimeSpent += timeSpent
	if completedMissions > 0 {
		stats.AverageSessionTime = stats.TotalTimeSpent / completedMissions
	}
	updated, _ = c.users.Update(user.Update{
		CompletedMissions: &completedMissions,
		Stats:             &stats,
	})

	c.users.AppendCompleted(user.CompletedMission{
		MissionID:   m.ID,
		CompletedAt: completedAt,
		TimeSpent:   timeSpent,
		XPEarned:    m.XPReward,
		Rating:      rating,
		Feedback:    feedback,
	})

	newAchievements := c.evaluateAchievements(updated, m, timeSpent, rating, completedAt)
	if len(newAchievements) > 0 {
		updated, _ = c.users.Update(user.Update{Achievements: newAchievements})
		first := newAchievements[0]
		c.events.Add("New achievement unlocked!",
			fmt.Sprintf("You earned: %s", first.Title),
			notify.KindAchievement)
	}

	c.events.Track("mission_completed", map[string]any{
		"missionId": m.ID,
		"timeSpent": timeSpent,
		"xpEarned":  m.XPReward,
		"userLevel": updated.Level,
	})
	c.events.Add("Mission complete!",
		fmt.Sprintf("+%d XP earned", m.XPReward),
		notify.KindMission)

	out := Completion{
		User:            updated,
		Mission:         m,
		TimeSpent:       timeSpent,
		XPEarned:        m.XPReward,
		LevelUp:         up,
		NewAchievements: newAchievements,
	}
	if c.onComplete != nil {
		c.onComplete(out)
	}
	return out, nil
}

func (c *Controller) evaluateAchievements(u user.User, m mission.Mission, timeSpent, rating int, completedAt time.Time) []achievement.Unlocked {
	unlocked := u.UnlockedIDs()

	var out []achievement.Unlocked
	out = append(out, achievement.CheckMilestones(achievement.CategoryMissions, u.CompletedMissions, unlocked, completedAt)...)
	for _, a := range out {
		unlocked[a.ID] = true
	}
	for _, a := range achievement.CheckMilestones(achievement.CategoryXP, u.XP, unlocked, completedAt) {
		out = append(out, a)
		unlocked[a.ID] = true
	}
	for _, a := range achievement.CheckMilestones(achievement.CategoryStreak, u.Streak, unlocked, completedAt) {
		out = append(out, a)
		unlocked[a.ID] = true
	}
	special := achievement.SpecialContext{
		TimeSpentMinutes: timeSpent,
		EstimatedMinutes: m.TimeEstimateMinutes,
		Rating:           rating,
		CompletionHour:   completedAt.Hour(),
		PerfectWeek:      u.Stats.WeeklyGoal > 0 && u.Stats.WeeklyCompleted >= u.Stats.WeeklyGoal,
	}
	out = append(out, achievement.CheckSpecial(special, unlocked, completedAt)...)
	return out
}

// run is the countdown loop for one timer activation. It exits when its
// context is canceled or the timer reaches zero; hitting zero drops the
// session back to Armed without completing it.
func (c *Controller) run(ctx context.Context) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			// A tick can already be buffered when the run is canceled;
			// cancellation happens under the mutex, so a stale goroutine
			// must not touch the clock of a subsequently restarted run.
			if ctx.Err() != nil || c.phase != Running {
				c.mu.Unlock()
				return
			}
			c.remaining--
			expired := c.remaining <= 0
			if expired {
				c.remaining = 0
				c.phase = Armed
				c.stopTimerLocked()
			}
			st := c.snapshotLocked()
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(st)
			}
			if expired {
				return
			}
		}
	}
}

// stopTimerLocked cancels the active timer goroutine, if any.
func (c *Controller) stopTimerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) resetLocked() {
	c.stopTimerLocked()
	c.phase = Idle
	c.mission = nil
	c.guidance = nil
	c.remaining = 0
	c.startedAt = time.Time{}
}
