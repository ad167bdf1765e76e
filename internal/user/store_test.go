package user

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/achievement"
	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/progression"
	"github.com/evolua/backend/internal/storage"
	"github.com/evolua/backend/internal/streak"
)

var testTime = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	repo := storage.NewMemory()
	events := notify.NewLog(repo, zerolog.Nop())
	s := NewStore(repo, events, zerolog.Nop())
	s.now = func() time.Time { return testTime }
	return s, repo
}

func TestLoad_AbsentUser(t *testing.T) {
	s, _ := newTestStore(t)
	if _, ok := s.Load(); ok {
		t.Error("Load on an empty store must report absent")
	}
}

func TestCreate_Defaults(t *testing.T) {
	s, _ := newTestStore(t)
	u := s.Create("Ana")
	if u.Level != 1 || u.XP != 0 || u.XPToNext != 100 {
		t.Errorf("new user = level %d xp %d toNext %d, want 1/0/100", u.Level, u.XP, u.XPToNext)
	}
	if u.Stats.WeeklyGoal != 7 || u.Stats.MonthlyGoal != 30 {
		t.Errorf("goals = %d/%d, want 7/30", u.Stats.WeeklyGoal, u.Stats.MonthlyGoal)
	}
	if u.ID == "" {
		t.Error("new user must get an id")
	}
	if got, ok := s.Load(); !ok || got.ID != u.ID {
		t.Error("created user should be loadable")
	}
}

func TestCreate_SurvivesReload(t *testing.T) {
	repo := storage.NewMemory()
	s := NewStore(repo, notify.NewLog(repo, zerolog.Nop()), zerolog.Nop())
	u := s.Create("Ana")

	reloaded := NewStore(repo, notify.NewLog(repo, zerolog.Nop()), zerolog.Nop())
	got, ok := reloaded.Load()
	if !ok {
		t.Fatal("user lost across reload")
	}
	if got.ID != u.ID || got.Name != "Ana" {
		t.Errorf("reloaded user = %s/%s, want %s/Ana", got.ID, got.Name, u.ID)
	}
	if !got.JoinedAt.Equal(u.JoinedAt) {
		t.Errorf("JoinedAt = %v, want %v", got.JoinedAt, u.JoinedAt)
	}
}

func TestUpdate_MergesAndStampsLastActive(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")

	n := 3
	got, ok := s.Update(Update{CompletedMissions: &n})
	if !ok {
		t.Fatal("update failed")
	}
	if got.CompletedMissions != 3 {
		t.Errorf("CompletedMissions = %d, want 3", got.CompletedMissions)
	}
	if got.Name != "Ana" {
		t.Error("unset fields must be preserved")
	}
	if !got.LastActiveAt.Equal(testTime) {
		t.Errorf("LastActiveAt = %v, want stamped %v", got.LastActiveAt, testTime)
	}
}

func TestUpdate_AbsentUser(t *testing.T) {
	s, _ := newTestStore(t)
	n := 1
	if _, ok := s.Update(Update{CompletedMissions: &n}); ok {
		t.Error("update without a user must report absent")
	}
}

func TestUpdate_PersistFailureIsNoOp(t *testing.T) {
	s, repo := newTestStore(t)
	s.Create("Ana")
	repo.FailSaves = errors.New("disk full")

	n := 99
	got, ok := s.Update(Update{CompletedMissions: &n})
	if !ok {
		t.Fatal("update must not report absent on persist failure")
	}
	if got.CompletedMissions != 0 {
		t.Errorf("CompletedMissions = %d, want prior value 0", got.CompletedMissions)
	}
}

func TestUpdate_AchievementsAppendDedup(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")

	def, ok := achievement.ByID("missions_10")
	if !ok {
		t.Fatal("missions_10 missing from catalog")
	}
	a := achievement.Unlocked{Definition: def, UnlockedAt: testTime}
	s.Update(Update{Achievements: []achievement.Unlocked{a}})
	got, _ := s.Update(Update{Achievements: []achievement.Unlocked{a}})
	if len(got.Achievements) != 1 {
		t.Errorf("achievements = %d, want 1 (no duplicates)", len(got.Achievements))
	}
}

func TestAddXP_SingleEventAcrossLevels(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")
	xp, lvl, toNext := 150, 2, 250
	s.Update(Update{XP: &xp, Level: &lvl, XPToNext: &toNext})

	var fired []progression.LevelUp
	s.OnLevelUp(func(up progression.LevelUp) { fired = append(fired, up) })

	// 150 + 800 = 950 XP lands in level 4 territory.
	got, up, ok := s.AddXP(800)
	if !ok {
		t.Fatal("AddXP failed")
	}
	if got.XP != 950 || got.Level != 4 {
		t.Errorf("after gain: xp=%d level=%d, want 950/4", got.XP, got.Level)
	}
	if up == nil || up.OldLevel != 2 || up.NewLevel != 4 {
		t.Fatalf("level up = %+v, want 2 -> 4", up)
	}
	if len(fired) != 1 {
		t.Errorf("callback fired %d times, want exactly once", len(fired))
	}
}

func TestAddXP_RejectsNonPositive(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")
	got, up, ok := s.AddXP(0)
	if !ok {
		t.Fatal("AddXP(0) must still return the current user")
	}
	if got.XP != 0 || up != nil {
		t.Errorf("AddXP(0) = xp %d, up %v, want unchanged and no event", got.XP, up)
	}
}

func TestAddXP_PersistFailureIsNoOp(t *testing.T) {
	s, repo := newTestStore(t)
	s.Create("Ana")
	repo.FailSaves = errors.New("disk full")

	var fired int
	s.OnLevelUp(func(progression.LevelUp) { fired++ })

	got, up, _ := s.AddXP(500)
	if got.XP != 0 {
		t.Errorf("xp = %d, want prior value 0 after persist failure", got.XP)
	}
	if up != nil || fired != 0 {
		t.Error("level up must not be announced when the gain was not persisted")
	}
}

func TestAdvanceStreak_IdempotentSameDay(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")

	first, out, _ := s.AdvanceStreak(testTime.Add(25 * time.Hour))
	if !out.Changed || first.Streak != 1 {
		t.Fatalf("first advance: streak=%d changed=%v, want 1/true", first.Streak, out.Changed)
	}
	again, out2, _ := s.AdvanceStreak(testTime.Add(26 * time.Hour))
	if out2.Changed || again.Streak != 1 {
		t.Errorf("same-day advance: streak=%d changed=%v, want 1/false", again.Streak, out2.Changed)
	}
}

func TestAdvanceStreak_MilestoneAndBestStreak(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")
	streakVal := 6
	s.Update(Update{Streak: &streakVal})

	var milestones []streak.Milestone
	s.OnStreakMilestone(func(m streak.Milestone) { milestones = append(milestones, m) })

	got, out, _ := s.AdvanceStreak(testTime.Add(25 * time.Hour))
	if got.Streak != 7 {
		t.Fatalf("streak = %d, want 7", got.Streak)
	}
	if out.Milestone == nil || out.Milestone.StreakLength != 7 {
		t.Errorf("milestone = %+v, want length 7", out.Milestone)
	}
	if len(milestones) != 1 {
		t.Errorf("milestone callback fired %d times, want 1", len(milestones))
	}
	if got.Stats.BestStreak != 7 {
		t.Errorf("BestStreak = %d, want 7", got.Stats.BestStreak)
	}
}

func TestAdvanceStreak_Broken(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")
	streakVal := 5
	s.Update(Update{Streak: &streakVal})

	var broken []streak.Broken
	s.OnStreakBroken(func(b streak.Broken) { broken = append(broken, b) })

	got, out, _ := s.AdvanceStreak(testTime.Add(72 * time.Hour))
	if got.Streak != 1 {
		t.Errorf("streak = %d, want reset to 1", got.Streak)
	}
	if out.Broken == nil || out.Broken.StreakLength != 5 {
		t.Errorf("broken = %+v, want prior length 5", out.Broken)
	}
	if len(broken) != 1 {
		t.Errorf("broken callback fired %d times, want 1", len(broken))
	}
}

func TestHistory_DayWindow(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")

	s.AppendCompleted(CompletedMission{MissionID: "old", CompletedAt: testTime.AddDate(0, 0, -10), XPEarned: 50})
	s.AppendCompleted(CompletedMission{MissionID: "recent", CompletedAt: testTime.AddDate(0, 0, -2), XPEarned: 50})

	got := s.History(7)
	if len(got) != 1 || got[0].MissionID != "recent" {
		t.Errorf("History(7) = %+v, want only the recent entry", got)
	}
	if all := s.History(30); len(all) != 2 {
		t.Errorf("History(30) = %d entries, want 2", len(all))
	}
}

func TestExport_IncludesUserAndHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Ana")
	s.AppendCompleted(CompletedMission{MissionID: "prod_001", CompletedAt: testTime, XPEarned: 50})

	raw, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"user", "history", "notifications", "events"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("export missing %q section", key)
		}
	}
}
