package guidance

import "github.com/evolua/backend/internal/mission"

type fallbackKey struct {
	category   mission.Category
	difficulty mission.Difficulty
}

// Fallback returns built-in coaching content for the category and
// difficulty. There is a specific entry for the common combinations and
// a generic one for everything else, so the result is never empty.
func Fallback(category mission.Category, difficulty mission.Difficulty) Guidance {
	if g, ok := fallbackCatalog[fallbackKey{category, difficulty}]; ok {
		return g
	}
	if g, ok := fallbackCatalog[fallbackKey{category, mission.DifficultyEasy}]; ok {
		return g
	}
	return genericFallback
}

var genericFallback = Guidance{
	Content: "Let's work on this mission together! Follow the steps below to reach your goal.",
	Steps: []string{
		"Define clearly what you want to achieve",
		"Break it into small executable actions",
		"Execute one action at a time",
		"Reflect on the progress made",
	},
	Tips: []string{
		"Focus on progress, not perfection",
		"Celebrate small wins along the way",
	},
	EstimatedTime: 15,
	Difficulty:    "medium",
	FollowUp: []string{
		"How do you feel about this challenge?",
		"What resources do you have available to help?",
	},
}

var fallbackCatalog = map[fallbackKey]Guidance{
	{mission.CategoryProductivity, mission.DifficultyEasy}: {
		Content: "Let's organize your tasks in a simple, effective way! Start by identifying your 3 main priorities for today.",
		Steps: []string{
			"List every pending task",
			"Identify the 3 most important ones",
			"Set a specific time slot for each",
			"Drop or delegate the less important tasks",
		},
		Tips: []string{
			"Use the 2-minute rule: if it takes less than that, do it now",
			"Start with the hardest task while your energy is high",
		},
		EstimatedTime: 10,
		Difficulty:    "easy",
		FollowUp: []string{
			"Which task do you consider most important today?",
			"What obstacles could block your progress?",
		},
	},
	{mission.CategoryProductivity, mission.DifficultyMedium}: {
		Content: "Let's put a more robust productivity system in place using proven techniques.",
		Steps: []string{
			"Apply the Eisenhower matrix to prioritize",
			"Set up time blocks for focused work",
			"Run work sessions with the Pomodoro technique",
			"Review and adjust your system",
		},
		Tips: []string{
			"Keep a log of how you spend your time for one week",
			"Arrange your environment to minimize distractions",
		},
		EstimatedTime: 20,
		Difficulty:    "medium",
		FollowUp: []string{
			"What are your biggest sources of distraction?",
			"How do you measure your productivity today?",
		},
	},
	{mission.CategoryHealth, mission.DifficultyEasy}: {
		Content: "Let's start with simple well-being practices you can apply today.",
		Steps: []string{
			"Take 5 deep, conscious breaths",
			"Reflect on 3 things you are grateful for",
			"Name one emotion you are feeling right now",
			"Plan one enjoyable activity for today",
		},
		Tips: []string{
			"Small moments of self-care make a big difference",
			"Consistency matters more than perfection",
		},
		EstimatedTime: 8,
		Difficulty:    "easy",
		FollowUp: []string{
			"How do you feel after this exercise?",
			"What other well-being practices would you like to explore?",
		},
	},
	{mission.CategorySocial, mission.DifficultyEasy}: {
		Content: "Strengthening connections starts with one genuine gesture. Let's make it happen.",
		Steps: []string{
			"Pick someone you have not talked to in a while",
			"Write a short, genuine message asking how they are",
			"Send it without expecting anything back",
			"Note how the exchange made you feel",
		},
		Tips: []string{
			"Specific messages land better than a plain hello",
			"Listening well is the fastest way to connect",
		},
		EstimatedTime: 10,
		Difficulty:    "easy",
		FollowUp: []string{
			"Who else deserves a message like this?",
			"What made this conversation easy or hard?",
		},
	},
	{mission.CategoryLearning, mission.DifficultyEasy}: {
		Content: "Learning sticks when you engage actively. Let's practice that with a small topic.",
		Steps: []string{
			"Pick one topic you want to understand better",
			"Study it for 15 focused minutes",
			"Explain it out loud in your own words",
			"Write down the gaps you noticed while explaining",
		},
		Tips: []string{
			"Teaching a topic exposes what you actually know",
			"Short focused sessions beat long distracted ones",
		},
		EstimatedTime: 20,
		Difficulty:    "easy",
		FollowUp: []string{
			"Which gap surprised you the most?",
			"When will you revisit this topic?",
		},
	},
	{mission.CategoryCreativity, mission.DifficultyEasy}: {
		Content: "Creativity is a muscle. Let's warm it up with a quick divergent-thinking drill.",
		Steps: []string{
			"Pick an everyday object near you",
			"List 10 alternative uses for it, no filtering",
			"Circle the 2 most unexpected ideas",
			"Sketch or describe how one of them could work",
		},
		Tips: []string{
			"Quantity first, quality later",
			"Silly ideas often lead to the useful ones",
		},
		EstimatedTime: 10,
		Difficulty:    "easy",
		FollowUp: []string{
			"Which idea would you actually try?",
			"What other object deserves this treatment?",
		},
	},
	{mission.CategoryFinance, mission.DifficultyEasy}: {
		Content: "Financial control begins with knowing where the money goes. Let's map it.",
		Steps: []string{
			"List every expense from the last 7 days",
			"Group them into needs, wants, and leaks",
			"Pick one leak to cut this week",
			"Set a simple target for next week",
		},
		Tips: []string{
			"Track expenses the moment they happen",
			"One small recurring cut beats one big one-off saving",
		},
		EstimatedTime: 15,
		Difficulty:    "easy",
		FollowUp: []string{
			"Which expense surprised you?",
			"What will you do with the amount you free up?",
		},
	},
}
