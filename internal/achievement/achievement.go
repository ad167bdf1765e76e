// Package achievement holds the achievement catalog and the evaluators
// that decide which achievements a counter value or completion context
// newly unlocks. Evaluation is pure; the caller persists the results.
package achievement

import "time"

// Category groups related achievements.
type Category string

const (
	CategoryStreak   Category = "streak"
	CategoryMissions Category = "missions"
	CategoryXP       Category = "xp"
	CategorySocial   Category = "social"
	CategorySpecial  Category = "special"
)

// Rarity grades how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Definition is an immutable catalog entry.
type Definition struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Rarity      Rarity   `json:"rarity"`
}

// Unlocked is a catalog entry owned by a user, stamped with the moment it
// was earned. Created once per id; re-evaluation never duplicates it.
type Unlocked struct {
	Definition
	UnlockedAt time.Time `json:"unlockedAt"`
}

// milestone pairs a counter threshold with the achievement it unlocks.
type milestone struct {
	threshold int
	id        string
}

// Ladders are fixed and ascending; CheckMilestones relies on the order.
var ladders = map[Category][]milestone{
	CategoryStreak: {
		{3, "streak_3"},
		{7, "streak_7"},
		{30, "streak_30"},
		{100, "streak_100"},
	},
	CategoryMissions: {
		{10, "missions_10"},
		{50, "missions_50"},
		{100, "missions_100"},
		{500, "missions_500"},
	},
	CategoryXP: {
		{1000, "xp_1000"},
		{10000, "xp_10000"},
		{50000, "xp_50000"},
	},
}

func buildCatalog() []Definition {
	return []Definition{

		// Streaks

		{
			ID: "streak_3", Title: "Getting Started",
			Description: "Complete missions 3 days in a row",
			Icon:        "flame", Category: CategoryStreak, Rarity: RarityCommon,
		},
		{
			ID: "streak_7", Title: "A Strong Week",
			Description: "Keep a 7 day streak going",
			Icon:        "fire", Category: CategoryStreak, Rarity: RarityCommon,
		},
		{
			ID: "streak_30", Title: "Consistency Master",
			Description: "An incredible 30 day streak",
			Icon:        "crown", Category: CategoryStreak, Rarity: RarityRare,
		},
		{
			ID: "streak_100", Title: "Discipline Legend",
			Description: "An epic 100 day streak",
			Icon:        "trophy", Category: CategoryStreak, Rarity: RarityLegendary,
		},

		// Missions

		{
			ID: "missions_10", Title: "Explorer",
			Description: "Complete 10 missions",
			Icon:        "map", Category: CategoryMissions, Rarity: RarityCommon,
		},
		{
			ID: "missions_50", Title: "Adventurer",
			Description: "Complete 50 missions",
			Icon:        "compass", Category: CategoryMissions, Rarity: RarityCommon,
		},
		{
			ID: "missions_100", Title: "Veteran",
			Description: "Complete 100 missions",
			Icon:        "shield", Category: CategoryMissions, Rarity: RarityRare,
		},
		{
			ID: "missions_500", Title: "Mission Master",
			Description: "Complete 500 missions",
			Icon:        "star", Category: CategoryMissions, Rarity: RarityEpic,
		},

		// Experience

		{
			ID: "xp_1000", Title: "First Thousand",
			Description: "Collect 1,000 XP",
			Icon:        "zap", Category: CategoryXP, Rarity: RarityCommon,
		},
		{
			ID: "xp_10000", Title: "XP Collector",
			Description: "Collect 10,000 XP",
			Icon:        "battery", Category: CategoryXP, Rarity: RarityRare,
		},
		{
			ID: "xp_50000", Title: "Powerhouse",
			Description: "Collect 50,000 XP",
			Icon:        "bolt", Category: CategoryXP, Rarity: RarityEpic,
		},

		// Social

		{
			ID: "social_first_share", Title: "Sharer",
			Description: "Share your first achievement",
			Icon:        "share", Category: CategorySocial, Rarity: RarityCommon,
		},
		{
			ID: "social_invite_friend", Title: "Recruiter",
			Description: "Invite a friend to Evolua",
			Icon:        "user-plus", Category: CategorySocial, Rarity: RarityCommon,
		},

		// Special

		{
			ID: "special_early_adopter", Title: "Pioneer",
			Description: "One of the first Evolua users",
			Icon:        "rocket", Category: CategorySpecial, Rarity: RarityRare,
		},
		{
			ID: "special_perfect_week", Title: "Perfect Week",
			Description: "Complete every daily mission for a week",
			Icon:        "check-circle", Category: CategorySpecial, Rarity: RarityEpic,
		},
		{
			ID: "special_night_owl", Title: "Night Owl",
			Description: "Complete a mission after 10pm",
			Icon:        "moon", Category: CategorySpecial, Rarity: RarityRare,
		},
		{
			ID: "special_early_bird", Title: "Early Bird",
			Description: "Complete a mission before 7am",
			Icon:        "sun", Category: CategorySpecial, Rarity: RarityRare,
		},
		{
			ID: "special_speed_demon", Title: "Speedster",
			Description: "Complete a mission in under half the estimated time",
			Icon:        "gauge", Category: CategorySpecial, Rarity: RarityRare,
		},
		{
			ID: "special_perfectionist", Title: "Perfectionist",
			Description: "Complete 20 missions with a 5 star rating",
			Icon:        "award", Category: CategorySpecial, Rarity: RarityEpic,
		},
	}
}

var catalog = buildCatalog()

var catalogByID = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()

// Catalog returns a copy of every achievement definition.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// ByID returns the catalog entry for id.
func ByID(id string) (Definition, bool) {
	d, ok := catalogByID[id]
	return d, ok
}

// ByCategory returns the catalog entries in the given category, in
// catalog order.
func ByCategory(c Category) []Definition {
	var out []Definition
	for _, d := range catalog {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// CheckMilestones returns the achievements in category that value newly
// satisfies, in ascending threshold order, stamped with now. Ids already
// present in unlocked are skipped, so repeated calls with a growing value
// and an accumulating set never return the same achievement twice.
// Categories without a milestone ladder (social, special) return nothing.
func CheckMilestones(category Category, value int, unlocked map[string]bool, now time.Time) []Unlocked {
	var out []Unlocked
	for _, m := range ladders[category] {
		if value < m.threshold {
			break
		}
		if unlocked[m.id] {
			continue
		}
		if d, ok := catalogByID[m.id]; ok {
			out = append(out, Unlocked{Definition: d, UnlockedAt: now})
		}
	}
	return out
}

// SpecialContext carries the situational facts a mission completion
// produces. Zero values mean "unknown" and disable the related predicate,
// except CompletionHour, where -1 marks the hour as unknown.
type SpecialContext struct {
	TimeSpentMinutes int
	EstimatedMinutes int
	Rating           int
	CompletionHour   int
	PerfectWeek      bool
}

// CheckSpecial evaluates the contextual achievement predicates against
// ctx. Each predicate is an independent boolean, not a ladder; results
// are deduplicated against unlocked and stamped with now.
func CheckSpecial(ctx SpecialContext, unlocked map[string]bool, now time.Time) []Unlocked {
	var out []Unlocked

	add := func(id string) {
		if unlocked[id] {
			return
		}
		if d, ok := catalogByID[id]; ok {
			out = append(out, Unlocked{Definition: d, UnlockedAt: now})
		}
	}

	if ctx.TimeSpentMinutes > 0 && ctx.EstimatedMinutes > 0 &&
		ctx.TimeSpentMinutes < ctx.EstimatedMinutes/2 {
		add("special_speed_demon")
	}
	if ctx.CompletionHour >= 22 {
		add("special_night_owl")
	}
	if ctx.CompletionHour >= 0 && ctx.CompletionHour < 7 {
		add("special_early_bird")
	}
	if ctx.PerfectWeek {
		add("special_perfect_week")
	}

	return out
}

// Progress describes how close a counter is to its next milestone.
type Progress struct {
	Next    *Definition `json:"nextAchievement"`
	Percent float64     `json:"progress"`
	Target  int         `json:"target"`
}

// ProgressTowardNext reports the next milestone in category that value
// has not yet reached. Past the final milestone, Next is nil and the
// percent is pinned at 100.
func ProgressTowardNext(category Category, value int) Progress {
	for _, m := range ladders[category] {
		if value >= m.threshold {
			continue
		}
		d := catalogByID[m.id]
		pct := float64(value) / float64(m.threshold) * 100
		if pct > 100 {
			pct = 100
		}
		return Progress{Next: &d, Percent: pct, Target: m.threshold}
	}
	return Progress{Percent: 100, Target: value}
}

// Stats aggregates a user's unlocked achievements.
type Stats struct {
	Total             int              `json:"total"`
	ByRarity          map[Rarity]int   `json:"byRarity"`
	ByCategory        map[Category]int `json:"byCategory"`
	CompletionPercent float64          `json:"completionPercentage"`
}

// Summarize counts unlocked achievements by rarity and category and
// reports overall catalog completion.
func Summarize(unlocked []Unlocked) Stats {
	s := Stats{
		Total:      len(unlocked),
		ByRarity:   make(map[Rarity]int),
		ByCategory: make(map[Category]int),
	}
	for _, u := range unlocked {
		s.ByRarity[u.Rarity]++
		s.ByCategory[u.Category]++
	}
	s.CompletionPercent = float64(len(unlocked)) / float64(len(catalog)) * 100
	return s
}
