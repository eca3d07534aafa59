package services

import (
	"math"
	"sort"
	"time"

	"github.com/alimgiray/yearscope/internal/models"
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// assembleReport composes the finished ledger and run counters into the
// immutable report.
func (r *analysisRun) assembleReport(summary *models.ContributionSummary) *models.AnalysisReport {
	languages := languageDistribution(r.languageScores)
	streak := longestStreak(r.activeDays)

	persona := classifyPersona(personaFacts{
		TotalCommits:   summary.TotalCommits,
		TotalPRs:       summary.TotalPRs,
		TotalIssues:    summary.TotalIssues,
		TotalReviews:   summary.TotalReviews,
		LongestStreak:  streak,
		StarsReceived:  r.starsReceived,
		LanguageCount:  len(languages),
		NightCommits:   r.nightCommits,
		MorningCommits: r.morningCommits,
		WeekendCommits: r.weekendCommits,
	})

	sortedKeys := make([]string, 0, len(r.ledger))
	for key := range r.ledger {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)

	repoNames := make([]string, 0, len(sortedKeys))
	hasPrivate := false
	for _, key := range sortedKeys {
		repoNames = append(repoNames, r.ledger[key].Name)
		if r.ledger[key].IsPrivate {
			hasPrivate = true
		}
	}

	createdRepos := append([]models.CreatedRepo{}, r.createdRepos...)
	sort.SliceStable(createdRepos, func(i, j int) bool {
		return createdRepos[i].Stars > createdRepos[j].Stars
	})
	if len(createdRepos) > 5 {
		createdRepos = createdRepos[:5]
	}

	forkedRepos := append([]models.ForkedRepo{}, r.forkedRepos...)
	if len(forkedRepos) > 5 {
		forkedRepos = forkedRepos[:5]
	}

	return &models.AnalysisReport{
		Username: r.username,
		Year:     r.year,
		Stats: models.AnalysisStats{
			TotalCommits:         summary.TotalCommits,
			TotalContributions:   summary.TotalContributions,
			TotalRepos:           len(r.ledger),
			ContributedProjects:  len(r.ledger),
			OwnProjectCommits:    r.ownCommits,
			OthersProjectCommits: r.othersCommits,
			TotalAdditions:       r.totalAdditions,
			TotalDeletions:       r.totalDeletions,
			NetChanges:           r.totalAdditions - r.totalDeletions,
			ActiveDays:           len(r.activeDays),
			LongestStreak:        streak,
			TotalPRs:             summary.TotalPRs,
			TotalIssues:          summary.TotalIssues,
			TotalReviews:         summary.TotalReviews,
			TotalMerges:          r.totalMerges,
			StarsReceived:        r.starsReceived,
			ForksReceived:        r.forksReceived,
			ReposCreated:         len(r.createdRepos),
			ReposForked:          len(r.forkedRepos),
			MostActiveMonth:      mostActiveMonth(r.monthly),
		},
		Persona:      persona,
		TopRepos:     selectTopRepos(r.ledger, sortedKeys),
		CreatedRepos: createdRepos,
		ForkedRepos:  forkedRepos,
		CommitAnalysis: models.CommitAnalysis{
			MostCommonMessages:  commonMessages(r.messages, 5),
			MonthlyDistribution: monthlyDistribution(r.monthly),
		},
		Languages:               languages,
		OrgContributions:        orgContributions(r.ledger, sortedKeys, r.username),
		RepoNames:               repoNames,
		HasPrivateContributions: hasPrivate,
	}
}

// longestStreak returns the longest run of consecutive active calendar days.
func longestStreak(activeDays map[string]struct{}) int {
	if len(activeDays) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(activeDays))
	for day := range activeDays {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		days = append(days, date)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

// languageDistribution ranks the combined language scores and converts the
// top entries to percentages. Ties in score fall back to the language name
// so equal inputs always produce equal output.
func languageDistribution(scores map[string]float64) []models.LanguageShare {
	if len(scores) == 0 {
		return []models.LanguageShare{}
	}

	total := 0.0
	names := make([]string, 0, len(scores))
	for name, score := range scores {
		total += score
		names = append(names, name)
	}
	if total == 0 {
		return []models.LanguageShare{}
	}

	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 8 {
		names = names[:8]
	}

	distribution := make([]models.LanguageShare, 0, len(names))
	for _, name := range names {
		percentage := math.Round(scores[name]/total*1000) / 10
		distribution = append(distribution, models.LanguageShare{Name: name, Percentage: percentage})
	}
	return distribution
}

// maxEntry picks the entry maximizing metric. Keys arrive sorted, so a
// strictly-greater comparison keeps the lexicographically smallest key on
// ties and the winner does not depend on map iteration order.
func maxEntry(ledger map[string]*models.RepoLedgerEntry, sortedKeys []string, metric func(*models.RepoLedgerEntry) int) *models.RepoLedgerEntry {
	var best *models.RepoLedgerEntry
	for _, key := range sortedKeys {
		entry := ledger[key]
		if best == nil || metric(entry) > metric(best) {
			best = entry
		}
	}
	return best
}

// selectTopRepos computes the five per-category superlatives over the
// finished ledger.
func selectTopRepos(ledger map[string]*models.RepoLedgerEntry, sortedKeys []string) models.TopRepos {
	if len(ledger) == 0 {
		return models.TopRepos{}
	}

	mostCommits := maxEntry(ledger, sortedKeys, func(e *models.RepoLedgerEntry) int { return e.Commits })
	mostPRs := maxEntry(ledger, sortedKeys, func(e *models.RepoLedgerEntry) int { return e.PRs })
	mostChanges := maxEntry(ledger, sortedKeys, func(e *models.RepoLedgerEntry) int { return e.Changes })
	longest := maxEntry(ledger, sortedKeys, func(e *models.RepoLedgerEntry) int { return e.ContributionDays })

	top := models.TopRepos{
		MostCommits: &models.TopRepoCount{
			Name: mostCommits.Name, Count: mostCommits.Commits, URL: mostCommits.URL, IsPrivate: mostCommits.IsPrivate,
		},
		MostPRs: &models.TopRepoCount{
			Name: mostPRs.Name, Count: mostPRs.PRs, URL: mostPRs.URL, IsPrivate: mostPRs.IsPrivate,
		},
		MostChanges: &models.TopRepoChanges{
			Name: mostChanges.Name, Changes: mostChanges.Changes, Additions: mostChanges.Additions,
			Deletions: mostChanges.Deletions, URL: mostChanges.URL, IsPrivate: mostChanges.IsPrivate,
		},
		LongestContribution: &models.TopRepoDays{
			Name: longest.Name, Days: longest.ContributionDays, Commits: longest.Commits,
			URL: longest.URL, IsPrivate: longest.IsPrivate,
		},
	}

	// Most starred is restricted to the user's own repositories with at
	// least one star.
	var mostStarred *models.RepoLedgerEntry
	for _, key := range sortedKeys {
		entry := ledger[key]
		if !entry.IsOwn || entry.Stars == 0 {
			continue
		}
		if mostStarred == nil || entry.Stars > mostStarred.Stars {
			mostStarred = entry
		}
	}
	if mostStarred != nil {
		top.MostStarred = &models.TopRepoStars{
			Name: mostStarred.Name, Stars: mostStarred.Stars, Forks: mostStarred.Forks, URL: mostStarred.URL,
		}
	}

	return top
}

// orgContributions groups ledger entries by non-self owner and ranks the
// owners by combined commit and PR count.
func orgContributions(ledger map[string]*models.RepoLedgerEntry, sortedKeys []string, username string) []models.OrgContribution {
	byOwner := make(map[string]*models.OrgContribution)
	order := []string{}

	for _, key := range sortedKeys {
		entry := ledger[key]
		if entry.IsOwn {
			continue
		}
		org, ok := byOwner[entry.Owner]
		if !ok {
			org = &models.OrgContribution{Name: entry.Owner}
			byOwner[entry.Owner] = org
			order = append(order, entry.Owner)
		}
		org.Commits += entry.Commits
		org.PRs += entry.PRs
		org.Repos++
		if len(org.RepoNames) < 3 {
			org.RepoNames = append(org.RepoNames, entry.Name)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := byOwner[order[i]], byOwner[order[j]]
		return a.Commits+a.PRs > b.Commits+b.PRs
	})

	result := []models.OrgContribution{}
	for _, owner := range order {
		org := byOwner[owner]
		if org.Commits+org.PRs == 0 {
			continue
		}
		result = append(result, *org)
		if len(result) == 5 {
			break
		}
	}
	return result
}

// commonMessages returns the most frequent message samples, count descending
// with message-ascending tie-break.
func commonMessages(messages []string, limit int) []models.MessageCount {
	if len(messages) == 0 {
		return []models.MessageCount{}
	}

	counts := make(map[string]int)
	for _, message := range messages {
		counts[message]++
	}

	unique := make([]string, 0, len(counts))
	for message := range counts {
		unique = append(unique, message)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return unique[i] < unique[j]
	})
	if len(unique) > limit {
		unique = unique[:limit]
	}

	result := make([]models.MessageCount, 0, len(unique))
	for _, message := range unique {
		result = append(result, models.MessageCount{Message: message, Count: counts[message]})
	}
	return result
}

// monthlyDistribution converts the per-month totals into the ordered
// January..December list.
func monthlyDistribution(monthly [12]int) []models.MonthCount {
	result := make([]models.MonthCount, 0, 12)
	for i, name := range monthNames {
		result = append(result, models.MonthCount{Month: name, Count: monthly[i]})
	}
	return result
}

// mostActiveMonth returns the calendar month with the highest total, or ""
// when every month is zero. Earlier months win ties.
func mostActiveMonth(monthly [12]int) string {
	best, bestCount := "", 0
	for i, name := range monthNames {
		if monthly[i] > bestCount {
			best, bestCount = name, monthly[i]
		}
	}
	return best
}
