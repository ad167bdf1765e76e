// Package mission holds the static mission catalog: bounded tasks with a
// fixed XP reward, an estimated duration, and the prompt used to request
// AI guidance. The catalog is read-only; completion state lives with the
// user record.
package mission

// Category groups missions by life area. Categories unlock as the user
// levels up.
type Category string

const (
	CategoryProductivity Category = "productivity"
	CategoryHealth       Category = "health"
	CategorySocial       Category = "social"
	CategoryLearning     Category = "learning"
	CategoryCreativity   Category = "creativity"
	CategoryFinance      Category = "finance"
)

// Difficulty of a mission, also passed through to the guidance request.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Step is one sub-task inside a mission.
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Mission is an immutable catalog entry.
type Mission struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Category            Category   `json:"category"`
	XPReward            int        `json:"xpReward"`
	TimeEstimateMinutes int        `json:"timeEstimateMinutes"`
	Difficulty          Difficulty `json:"difficulty"`
	Locked              bool       `json:"isLocked"`
	RequiredLevel       int        `json:"requiredLevel"`
	Premium             bool       `json:"isPremium,omitempty"`
	Tags                []string   `json:"tags"`
	AIPrompt            string     `json:"-"`
	Steps               []Step     `json:"steps"`
	CompletionCriteria  []string   `json:"completionCriteria"`
}

// CategoryInfo is display metadata for a category, including the level at
// which it becomes available.
type CategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnlockLevel int    `json:"unlockLevel"`
}

// Categories maps each category to its metadata.
var Categories = map[Category]CategoryInfo{
	CategoryProductivity: {Name: "Productivity", Description: "Organize your life and maximize efficiency", UnlockLevel: 1},
	CategoryHealth:       {Name: "Wellness", Description: "Care for your mental and physical health", UnlockLevel: 1},
	CategorySocial:       {Name: "Social", Description: "Strengthen relationships and social skills", UnlockLevel: 2},
	CategoryLearning:     {Name: "Learning", Description: "Develop new skills and knowledge", UnlockLevel: 2},
	CategoryCreativity:   {Name: "Creativity", Description: "Explore creativity and innovation", UnlockLevel: 3},
	CategoryFinance:      {Name: "Finance", Description: "Manage money and investments better", UnlockLevel: 4},
}

// categoryOrder fixes iteration order for daily selection; map iteration
// would make the picks depend on runtime map ordering rather than the
// injected random source.
var categoryOrder = []Category{
	CategoryProductivity,
	CategoryHealth,
	CategorySocial,
	CategoryLearning,
	CategoryCreativity,
	CategoryFinance,
}

func buildCatalog() []Mission {
	return []Mission{

		// Productivity

		{
			ID: "prod_001", Title: "Plan Your Morning",
			Description: "Build a plan of 3 priority tasks for today",
			Category:    CategoryProductivity, XPReward: 50, TimeEstimateMinutes: 5,
			Difficulty: DifficultyEasy, RequiredLevel: 1,
			Tags:     []string{"planning", "prioritization", "morning"},
			AIPrompt: "Help the user identify and prioritize 3 important tasks for today, weighing urgency, impact and required energy.",
			Steps: []Step{
				{ID: "1", Title: "List pending tasks", Description: "Write down everything you need to do today"},
				{ID: "2", Title: "Prioritize by impact", Description: "Pick the 3 most important"},
				{ID: "3", Title: "Schedule them", Description: "Decide when you will do each one"},
			},
			CompletionCriteria: []string{"3 tasks prioritized", "Times scheduled", "Plan reviewed"},
		},
		{
			ID: "prod_002", Title: "Smart Pomodoro",
			Description: "Run an optimized focus and rest cycle",
			Category:    CategoryProductivity, XPReward: 75, TimeEstimateMinutes: 25,
			Difficulty: DifficultyMedium, RequiredLevel: 2,
			Tags:     []string{"focus", "pomodoro", "concentration"},
			AIPrompt: "Guide the user through a personalized Pomodoro session: best task to focus on, tips to hold concentration, ideal break activities.",
			Steps: []Step{
				{ID: "1", Title: "Pick a specific task", Description: "Define exactly what you will work on"},
				{ID: "2", Title: "Set up the environment", Description: "Remove distractions"},
				{ID: "3", Title: "Work for 25 minutes", Description: "Focus only on the chosen task"},
				{ID: "4", Title: "Take a 5 minute break", Description: "Relax and recharge"},
			},
			CompletionCriteria: []string{"25 minutes of focus", "Task advanced", "Break taken"},
		},
		{
			ID: "prod_003", Title: "Inbox Zero Challenge",
			Description: "Fully process your email inbox",
			Category:    CategoryProductivity, XPReward: 100, TimeEstimateMinutes: 15,
			Difficulty: DifficultyMedium, RequiredLevel: 3,
			Tags:     []string{"email", "organization", "communication"},
			AIPrompt: "Help the user process email efficiently using the two-minute rule, smart categorization and reply templates.",
			Steps: []Step{
				{ID: "1", Title: "Apply the two-minute rule", Description: "Answer quick emails immediately"},
				{ID: "2", Title: "Categorize the rest", Description: "Sort by priority and type"},
				{ID: "3", Title: "Schedule complex ones", Description: "Decide when to handle each"},
				{ID: "4", Title: "Set up filters", Description: "Automate future triage"},
			},
			CompletionCriteria: []string{"Inbox processed", "Emails categorized", "Filing system created"},
		},

		// Wellness

		{
			ID: "health_001", Title: "Daily Reflection",
			Description: "Answer 3 questions about your day",
			Category:    CategoryHealth, XPReward: 60, TimeEstimateMinutes: 8,
			Difficulty: DifficultyEasy, RequiredLevel: 1,
			Tags:     []string{"reflection", "self-awareness", "wellbeing"},
			AIPrompt: "Run a personalized daily reflection: deep questions about the user's day, insight into patterns and growth opportunities.",
			Steps: []Step{
				{ID: "1", Title: "Reflect on wins", Description: "What went well today?"},
				{ID: "2", Title: "Name the challenges", Description: "What was hard?"},
				{ID: "3", Title: "Plan improvements", Description: "How can tomorrow be better?"},
			},
			CompletionCriteria: []string{"3 reflections done", "Insights captured", "Improvement plan written"},
		},
		{
			ID: "health_002", Title: "Mindfulness Express",
			Description: "A guided 5 minute mindfulness session",
			Category:    CategoryHealth, XPReward: 40, TimeEstimateMinutes: 5,
			Difficulty: DifficultyEasy, RequiredLevel: 1,
			Tags:     []string{"mindfulness", "meditation", "calm"},
			AIPrompt: "Guide a short mindfulness session adapted to the user's experience level and current emotional state.",
			Steps: []Step{
				{ID: "1", Title: "Get comfortable", Description: "Sit or lie down comfortably"},
				{ID: "2", Title: "Watch your breath", Description: "Observe your natural breathing"},
				{ID: "3", Title: "Scan your body", Description: "Notice sensations without judging"},
				{ID: "4", Title: "Return gently", Description: "Come back to the present moment"},
			},
			CompletionCriteria: []string{"5 minutes of practice", "Focus held", "Calm reached"},
		},
		{
			ID: "health_003", Title: "Personal Energy Audit",
			Description: "Map your energy peaks and optimize your routine",
			Category:    CategoryHealth, XPReward: 90, TimeEstimateMinutes: 12,
			Difficulty: DifficultyMedium, RequiredLevel: 4,
			Tags:     []string{"energy", "circadian", "optimization"},
			AIPrompt: "Help the user map energy levels across the day and build strategies matching tasks to their chronotype.",
			Steps: []Step{
				{ID: "1", Title: "Map your energy", Description: "Identify peaks and dips"},
				{ID: "2", Title: "Analyze patterns", Description: "Correlate with activities"},
				{ID: "3", Title: "Optimize your schedule", Description: "Align tasks with energy levels"},
			},
			CompletionCriteria: []string{"Energy map created", "Patterns identified", "Routine optimized"},
		},

		// Social

		{
			ID: "social_001", Title: "Smart Networking",
			Description: "Write a personalized message to a professional contact",
			Category:    CategorySocial, XPReward: 80, TimeEstimateMinutes: 10,
			Difficulty: DifficultyMedium, RequiredLevel: 2,
			Tags:     []string{"networking", "communication", "relationships"},
			AIPrompt: "Help the user craft an authentic, effective networking message considering context, goal and the recipient.",
			Steps: []Step{
				{ID: "1", Title: "Define the goal", Description: "Why are you reaching out?"},
				{ID: "2", Title: "Research the contact", Description: "Find common ground"},
				{ID: "3", Title: "Write the message", Description: "Keep it personal and genuine"},
				{ID: "4", Title: "Review and send", Description: "Check tone and clarity"},
			},
			CompletionCriteria: []string{"Goal defined", "Research done", "Message sent"},
		},
		{
			ID: "social_002", Title: "Active Gratitude",
			Description: "Express genuine gratitude to 3 people who matter",
			Category:    CategorySocial, XPReward: 70, TimeEstimateMinutes: 15,
			Difficulty: DifficultyEasy, RequiredLevel: 1,
			Tags:     []string{"gratitude", "relationships", "positivity"},
			AIPrompt: "Guide the user to express specific, meaningful gratitude, pointing at concrete moments and qualities.",
			Steps: []Step{
				{ID: "1", Title: "Pick 3 people", Description: "Choose people who shaped your life"},
				{ID: "2", Title: "Recall specific moments", Description: "Think of concrete situations"},
				{ID: "3", Title: "Say it", Description: "Communicate it genuinely"},
			},
			CompletionCriteria: []string{"3 people picked", "Gratitude expressed", "Bonds strengthened"},
		},

		// Learning

		{
			ID: "learn_001", Title: "Active Learning Sprint",
			Description: "Learn something new with retention techniques",
			Category:    CategoryLearning, XPReward: 85, TimeEstimateMinutes: 10,
			Difficulty: DifficultyMedium, RequiredLevel: 2,
			Tags:     []string{"learning", "knowledge", "retention"},
			AIPrompt: "Guide an optimized study session using spaced repetition, active recall and elaborative interrogation.",
			Steps: []Step{
				{ID: "1", Title: "Pick a topic", Description: "Decide what to learn"},
				{ID: "2", Title: "Study actively", Description: "Ask questions, make connections"},
				{ID: "3", Title: "Test yourself", Description: "Explain what you learned"},
				{ID: "4", Title: "Schedule review", Description: "Plan when to revisit it"},
			},
			CompletionCriteria: []string{"Topic studied", "Knowledge tested", "Review scheduled"},
		},
		{
			ID: "learn_002", Title: "Smart Synthesis",
			Description: "Turn a long article into actionable insights",
			Category:    CategoryLearning, XPReward: 95, TimeEstimateMinutes: 15,
			Difficulty: DifficultyMedium, RequiredLevel: 3,
			Tags:     []string{"synthesis", "analysis", "insights"},
			AIPrompt: "Help the user extract valuable insight from complex content using synthesis and critical analysis.",
			Steps: []Step{
				{ID: "1", Title: "Read with purpose", Description: "Decide what you want from the content"},
				{ID: "2", Title: "Mark key points", Description: "Highlight the main ideas"},
				{ID: "3", Title: "Make connections", Description: "Relate to what you already know"},
				{ID: "4", Title: "Write actionable insights", Description: "Turn ideas into concrete actions"},
			},
			CompletionCriteria: []string{"Content analyzed", "Key points marked", "Insights written"},
		},

		// Creativity

		{
			ID: "creative_001", Title: "Creative Brainstorm",
			Description: "Generate 10 fresh ideas for a personal challenge",
			Category:    CategoryCreativity, XPReward: 75, TimeEstimateMinutes: 12,
			Difficulty: DifficultyMedium, RequiredLevel: 2,
			Tags:     []string{"creativity", "ideation", "innovation"},
			AIPrompt: "Facilitate a brainstorming session using SCAMPER, lateral thinking and free association.",
			Steps: []Step{
				{ID: "1", Title: "Frame the challenge", Description: "State the problem clearly"},
				{ID: "2", Title: "Generate freely", Description: "No judging, quantity first"},
				{ID: "3", Title: "Apply creative techniques", Description: "Use SCAMPER or analogies"},
				{ID: "4", Title: "Pick the best", Description: "Choose the 3 most promising ideas"},
			},
			CompletionCriteria: []string{"Challenge framed", "10 ideas generated", "Top 3 chosen"},
		},

		// Finance

		{
			ID: "finance_001", Title: "Quick Financial Review",
			Description: "Review this month's spending",
			Category:    CategoryFinance, XPReward: 90, TimeEstimateMinutes: 10,
			Difficulty: DifficultyMedium, RequiredLevel: 3,
			Tags:     []string{"finance", "analysis", "budget"},
			AIPrompt: "Help the user analyze monthly spending, spot patterns and find savings opportunities.",
			Steps: []Step{
				{ID: "1", Title: "List main expenses", Description: "Find the biggest spending categories"},
				{ID: "2", Title: "Analyze patterns", Description: "Look for trends and surprises"},
				{ID: "3", Title: "Spot opportunities", Description: "Where can you save?"},
				{ID: "4", Title: "Write an action plan", Description: "Set goals for next month"},
			},
			CompletionCriteria: []string{"Spending reviewed", "Patterns identified", "Plan written"},
		},

		// Premium

		{
			ID: "premium_001", Title: "Deep Goal Analysis",
			Description: "Break a goal into executable micro-steps",
			Category:    CategoryProductivity, XPReward: 150, TimeEstimateMinutes: 20,
			Difficulty: DifficultyHard, Locked: true, RequiredLevel: 5, Premium: true,
			Tags:     []string{"goals", "planning", "strategy"},
			AIPrompt: "Run a deep goal analysis with SMART, OKRs and backward planning; produce a detailed roadmap with milestones and metrics.",
			Steps: []Step{
				{ID: "1", Title: "Define a SMART goal", Description: "Make the goal specific and measurable"},
				{ID: "2", Title: "Map obstacles", Description: "Anticipate the hard parts"},
				{ID: "3", Title: "Create micro-steps", Description: "Split into 15 minute actions"},
				{ID: "4", Title: "Set milestones", Description: "Establish checkpoints"},
				{ID: "5", Title: "Define metrics", Description: "How will you measure progress?"},
			},
			CompletionCriteria: []string{"SMART goal defined", "Roadmap created", "Metrics set"},
		},
		{
			ID: "premium_002", Title: "AI Career Coach",
			Description: "A full career coaching session with personal analysis",
			Category:    CategoryLearning, XPReward: 200, TimeEstimateMinutes: 25,
			Difficulty: DifficultyHard, Locked: true, RequiredLevel: 8, Premium: true,
			Tags:     []string{"career", "coaching", "growth"},
			AIPrompt: "Run a full career coaching session: personal SWOT, skill gap mapping and a professional development plan.",
			Steps: []Step{
				{ID: "1", Title: "Personal SWOT", Description: "Strengths, weaknesses, opportunities, threats"},
				{ID: "2", Title: "Map your skills", Description: "Current versus desired skills"},
				{ID: "3", Title: "Career vision", Description: "Where do you want to be in 2-5 years?"},
				{ID: "4", Title: "Development plan", Description: "Concrete actions to grow"},
				{ID: "5", Title: "Network strategy", Description: "How to expand your professional network"},
			},
			CompletionCriteria: []string{"SWOT complete", "Skill gap identified", "Action plan written"},
		},
	}
}

var catalog = buildCatalog()

// Catalog returns a copy of all mission definitions.
func Catalog() []Mission {
	out := make([]Mission, len(catalog))
	copy(out, catalog)
	return out
}

// ByID returns the mission with the given id.
func ByID(id string) (Mission, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}

// ByCategory returns every mission in the category, in catalog order.
func ByCategory(c Category) []Mission {
	var out []Mission
	for _, m := range catalog {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// Available returns the unlocked missions reachable at the given level.
func Available(level int) []Mission {
	var out []Mission
	for _, m := range catalog {
		if m.RequiredLevel <= level && !m.Locked {
			out = append(out, m)
		}
	}
	return out
}

// LockedAt returns the locked missions whose level requirement the user
// already meets, i.e. the ones the store can offer to unlock.
func LockedAt(level int) []Mission {
	var out []Mission
	for _, m := range catalog {
		if m.RequiredLevel <= level && m.Locked {
			out = append(out, m)
		}
	}
	return out
}

// Premium returns every premium mission.
func Premium() []Mission {
	var out []Mission
	for _, m := range catalog {
		if m.Premium {
			out = append(out, m)
		}
	}
	return out
}

// Rand is the subset of math/rand used for mission selection; injected so
// tests can supply a deterministic sequence.
type Rand interface {
	Intn(n int) int
}

// Random picks one unlocked mission, optionally filtered by category and
// difficulty. Returns false when no mission matches.
func Random(rng Rand, category Category, difficulty Difficulty) (Mission, bool) {
	var filtered []Mission
	for _, m := range catalog {
		if m.Locked {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		if difficulty != "" && m.Difficulty != difficulty {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) == 0 {
		return Mission{}, false
	}
	return filtered[rng.Intn(len(filtered))], true
}

// maxDaily caps how many missions a daily set contains.
const maxDaily = 3

// Daily picks the day's mission set: one random available mission from
// each category in a fixed category order, capped at three.
func Daily(rng Rand, level int) []Mission {
	available := Available(level)
	var daily []Mission
	for _, c := range categoryOrder {
		var inCat []Mission
		for _, m := range available {
			if m.Category == c {
				inCat = append(inCat, m)
			}
		}
		if len(inCat) > 0 {
			daily = append(daily, inCat[rng.Intn(len(inCat))])
		}
		if len(daily) == maxDaily {
			break
		}
	}
	return daily
}
