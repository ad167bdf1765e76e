package achievement

import (
	"testing"
	"time"
)

var evalTime = time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

func ids(list []Unlocked) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.ID)
	}
	return out
}

func TestCheckMilestones_ExactThreshold(t *testing.T) {
	got := CheckMilestones(CategoryMissions, 10, nil, evalTime)
	if len(got) != 1 || got[0].ID != "missions_10" {
		t.Fatalf("got %v, want [missions_10]", ids(got))
	}
	if !got[0].UnlockedAt.Equal(evalTime) {
		t.Errorf("UnlockedAt = %v, want evaluation time", got[0].UnlockedAt)
	}
}

func TestCheckMilestones_BelowThreshold(t *testing.T) {
	if got := CheckMilestones(CategoryMissions, 9, nil, evalTime); len(got) != 0 {
		t.Errorf("got %v, want empty at 9 missions", ids(got))
	}
}

func TestCheckMilestones_AscendingOrder(t *testing.T) {
	got := CheckMilestones(CategoryStreak, 30, nil, evalTime)
	want := []string{"streak_3", "streak_7", "streak_30"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

// Repeated evaluation with a non-decreasing value and an accumulating
// unlocked set must never return an id twice.
func TestCheckMilestones_DedupAcrossCalls(t *testing.T) {
	unlocked := make(map[string]bool)
	seen := make(map[string]int)
	for _, value := range []int{5, 10, 10, 60, 120, 600} {
		for _, u := range CheckMilestones(CategoryMissions, value, unlocked, evalTime) {
			seen[u.ID]++
			unlocked[u.ID] = true
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("%s returned %d times, want once", id, n)
		}
	}
	if len(seen) != 4 {
		t.Errorf("unlocked %d mission achievements, want 4", len(seen))
	}
}

func TestCheckMilestones_MissionsNineToTen(t *testing.T) {
	unlocked := make(map[string]bool)
	if got := CheckMilestones(CategoryMissions, 9, unlocked, evalTime); len(got) != 0 {
		t.Fatalf("at 9: got %v, want empty", ids(got))
	}
	got := CheckMilestones(CategoryMissions, 10, unlocked, evalTime)
	if len(got) != 1 || got[0].ID != "missions_10" {
		t.Fatalf("at 10: got %v, want [missions_10]", ids(got))
	}
	unlocked["missions_10"] = true
	if got := CheckMilestones(CategoryMissions, 10, unlocked, evalTime); len(got) != 0 {
		t.Errorf("re-check at 10: got %v, want empty", ids(got))
	}
}

func TestCheckMilestones_NoLadderCategories(t *testing.T) {
	if got := CheckMilestones(CategorySocial, 1000, nil, evalTime); len(got) != 0 {
		t.Errorf("social: got %v, want empty", ids(got))
	}
	if got := CheckMilestones(CategorySpecial, 1000, nil, evalTime); len(got) != 0 {
		t.Errorf("special: got %v, want empty", ids(got))
	}
}

func TestCheckSpecial_SpeedDemon(t *testing.T) {
	ctx := SpecialContext{TimeSpentMinutes: 10, EstimatedMinutes: 25, CompletionHour: 14}
	got := CheckSpecial(ctx, nil, evalTime)
	if len(got) != 1 || got[0].ID != "special_speed_demon" {
		t.Errorf("got %v, want [special_speed_demon]", ids(got))
	}
	// Exactly half the estimate does not qualify.
	ctx = SpecialContext{TimeSpentMinutes: 12, EstimatedMinutes: 24, CompletionHour: 14}
	if got := CheckSpecial(ctx, nil, evalTime); len(got) != 0 {
		t.Errorf("at exactly half: got %v, want empty", ids(got))
	}
}

func TestCheckSpecial_CompletionHours(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{23, "special_night_owl"},
		{22, "special_night_owl"},
		{6, "special_early_bird"},
		{0, "special_early_bird"},
		{12, ""},
	}
	for _, tc := range cases {
		got := CheckSpecial(SpecialContext{CompletionHour: tc.hour}, nil, evalTime)
		if tc.want == "" {
			if len(got) != 0 {
				t.Errorf("hour %d: got %v, want empty", tc.hour, ids(got))
			}
			continue
		}
		if len(got) != 1 || got[0].ID != tc.want {
			t.Errorf("hour %d: got %v, want [%s]", tc.hour, ids(got), tc.want)
		}
	}
}

func TestCheckSpecial_Dedup(t *testing.T) {
	unlocked := map[string]bool{"special_night_owl": true}
	got := CheckSpecial(SpecialContext{CompletionHour: 23}, unlocked, evalTime)
	if len(got) != 0 {
		t.Errorf("got %v, want empty for already-unlocked id", ids(got))
	}
}

func TestCheckSpecial_PerfectWeek(t *testing.T) {
	got := CheckSpecial(SpecialContext{PerfectWeek: true, CompletionHour: 12}, nil, evalTime)
	if len(got) != 1 || got[0].ID != "special_perfect_week" {
		t.Errorf("got %v, want [special_perfect_week]", ids(got))
	}
}

func TestProgressTowardNext(t *testing.T) {
	p := ProgressTowardNext(CategoryMissions, 5)
	if p.Next == nil || p.Next.ID != "missions_10" {
		t.Fatalf("Next = %+v, want missions_10", p.Next)
	}
	if p.Percent != 50 || p.Target != 10 {
		t.Errorf("got %.0f%%/%d, want 50%%/10", p.Percent, p.Target)
	}
}

func TestProgressTowardNext_PastAllMilestones(t *testing.T) {
	p := ProgressTowardNext(CategoryXP, 60000)
	if p.Next != nil {
		t.Errorf("Next = %+v, want nil", p.Next)
	}
	if p.Percent != 100 {
		t.Errorf("Percent = %.0f, want 100", p.Percent)
	}
	if p.Target != 60000 {
		t.Errorf("Target = %d, want current value", p.Target)
	}
}

func TestSummarize(t *testing.T) {
	unlocked := []Unlocked{
		{Definition: catalogByID["streak_3"], UnlockedAt: evalTime},
		{Definition: catalogByID["missions_10"], UnlockedAt: evalTime},
		{Definition: catalogByID["streak_30"], UnlockedAt: evalTime},
	}
	s := Summarize(unlocked)
	if s.Total != 3 {
		t.Errorf("Total = %d, want 3", s.Total)
	}
	if s.ByCategory[CategoryStreak] != 2 {
		t.Errorf("ByCategory[streak] = %d, want 2", s.ByCategory[CategoryStreak])
	}
	if s.ByRarity[RarityRare] != 1 {
		t.Errorf("ByRarity[rare] = %d, want 1", s.ByRarity[RarityRare])
	}
	if s.CompletionPercent <= 0 || s.CompletionPercent >= 100 {
		t.Errorf("CompletionPercent = %.1f, want in (0, 100)", s.CompletionPercent)
	}
}

func TestCatalogIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Catalog() {
		if seen[d.ID] {
			t.Errorf("duplicate catalog id %q", d.ID)
		}
		seen[d.ID] = true
	}
}

func TestLaddersReferToCatalogEntries(t *testing.T) {
	for cat, ladder := range ladders {
		prev := 0
		for _, m := range ladder {
			if _, ok := ByID(m.id); !ok {
				t.Errorf("%s ladder references unknown id %q", cat, m.id)
			}
			if m.threshold <= prev {
				t.Errorf("%s ladder not strictly ascending at %q", cat, m.id)
			}
			prev = m.threshold
		}
	}
}
