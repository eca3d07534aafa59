package services

import "github.com/alimgiray/yearscope/internal/models"

// personaFacts are the derived aggregates the classifier rules read.
type personaFacts struct {
	TotalCommits   int
	TotalPRs       int
	TotalIssues    int
	TotalReviews   int
	LongestStreak  int
	StarsReceived  int
	LanguageCount  int
	NightCommits   int
	MorningCommits int
	WeekendCommits int
}

type personaRule struct {
	persona models.Persona
	matches func(f personaFacts) bool
}

// personaRules is evaluated strictly in order; the first matching rule wins.
// A user who qualifies for several personas always gets the highest one.
var personaRules = []personaRule{
	{
		persona: models.Persona{ID: "marathon_runner", Icon: "🏃"},
		matches: func(f personaFacts) bool { return f.LongestStreak > 30 },
	},
	{
		persona: models.Persona{ID: "star_gazer", Icon: "🤩"},
		matches: func(f personaFacts) bool { return f.StarsReceived > 100 },
	},
	{
		persona: models.Persona{ID: "polyglot", Icon: "🌍"},
		matches: func(f personaFacts) bool { return f.LanguageCount >= 6 },
	},
	{
		persona: models.Persona{ID: "the_reviewer", Icon: "👀"},
		matches: func(f personaFacts) bool { return f.TotalReviews > 20 && f.TotalReviews > f.TotalPRs },
	},
	{
		persona: models.Persona{ID: "bug_hunter", Icon: "🐛"},
		matches: func(f personaFacts) bool { return f.TotalIssues > 20 && f.TotalIssues > f.TotalPRs },
	},
	{
		persona: models.Persona{ID: "night_owl", Icon: "🦉"},
		matches: func(f personaFacts) bool { return float64(f.NightCommits) > float64(f.MorningCommits)*1.5 },
	},
	{
		persona: models.Persona{ID: "weekend_warrior", Icon: "⚔️"},
		matches: func(f personaFacts) bool {
			return f.WeekendCommits > 0 && float64(f.WeekendCommits) > float64(f.TotalCommits)*0.3
		},
	},
	{
		persona: models.Persona{ID: "pr_machine", Icon: "🤖"},
		matches: func(f personaFacts) bool {
			return float64(f.TotalPRs) > float64(f.TotalCommits)*0.2 && f.TotalPRs > 20
		},
	},
	{
		persona: models.Persona{ID: "early_bird", Icon: "🌅"},
		matches: func(f personaFacts) bool { return f.MorningCommits > f.NightCommits*2 },
	},
}

// consistentCoder is the default persona when no rule matches.
var consistentCoder = models.Persona{ID: "consistent_coder", Icon: "👨‍💻"}

// classifyPersona assigns the single behavioral label for the year.
func classifyPersona(f personaFacts) models.Persona {
	for _, rule := range personaRules {
		if rule.matches(f) {
			return rule.persona
		}
	}
	return consistentCoder
}
