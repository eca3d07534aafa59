package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPersona(t *testing.T) {
	testCases := []struct {
		name     string
		facts    personaFacts
		expected string
	}{
		{
			name:     "marathon runner",
			facts:    personaFacts{LongestStreak: 40},
			expected: "marathon_runner",
		},
		{
			name:     "marathon runner precedes star gazer",
			facts:    personaFacts{LongestStreak: 40, StarsReceived: 500},
			expected: "marathon_runner",
		},
		{
			name:     "star gazer",
			facts:    personaFacts{LongestStreak: 10, StarsReceived: 150},
			expected: "star_gazer",
		},
		{
			name:     "polyglot",
			facts:    personaFacts{LanguageCount: 6},
			expected: "polyglot",
		},
		{
			name:     "reviewer needs more reviews than prs",
			facts:    personaFacts{TotalReviews: 25, TotalPRs: 10},
			expected: "the_reviewer",
		},
		{
			name:     "reviewer not matched when prs dominate",
			facts:    personaFacts{TotalReviews: 25, TotalPRs: 30, TotalIssues: 40},
			expected: "bug_hunter",
		},
		{
			name:     "night owl",
			facts:    personaFacts{NightCommits: 16, MorningCommits: 10},
			expected: "night_owl",
		},
		{
			name:     "exactly 1.5 ratio is not night owl",
			facts:    personaFacts{NightCommits: 15, MorningCommits: 10, TotalCommits: 100},
			expected: "consistent_coder",
		},
		{
			name:     "weekend warrior",
			facts:    personaFacts{WeekendCommits: 40, TotalCommits: 100},
			expected: "weekend_warrior",
		},
		{
			name:     "pr machine",
			facts:    personaFacts{TotalPRs: 25, TotalCommits: 100},
			expected: "pr_machine",
		},
		{
			name:     "early bird",
			facts:    personaFacts{MorningCommits: 9, NightCommits: 4},
			expected: "early_bird",
		},
		{
			name:     "default",
			facts:    personaFacts{},
			expected: "consistent_coder",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			persona := classifyPersona(tc.facts)

			assert.Equal(t, tc.expected, persona.ID)
			assert.NotEmpty(t, persona.Icon)
		})
	}
}
