package services

import (
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/yearscope/internal/models"
)

// DetailSource supplies the per-repository detail collections consumed during
// enrichment. Implementations hold already-fetched data; the analyzer itself
// performs no I/O.
type DetailSource interface {
	// RepoCommits returns the commits of a repository inside the analysis
	// window, or nil when nothing could be fetched for it.
	RepoCommits(owner, name string) []models.CommitDetail
	// RepoLanguages returns the byte-level language histogram of a
	// repository, or nil when unavailable.
	RepoLanguages(owner, name string) map[string]int
}

// AnalyzerService turns already-fetched contribution feeds into an
// AnalysisReport. The service is stateless; all per-run counters live in an
// analysisRun created per invocation, so concurrent analyses never share
// state.
type AnalyzerService struct{}

func NewAnalyzerService() *AnalyzerService {
	return &AnalyzerService{}
}

// analysisRun is the mutable accumulator of a single analysis invocation.
type analysisRun struct {
	username string
	year     int

	ledger         map[string]*models.RepoLedgerEntry
	languageScores map[string]float64
	activeDays     map[string]struct{}
	monthly        [12]int

	nightCommits   int
	morningCommits int
	weekendCommits int

	totalMerges    int
	totalAdditions int
	totalDeletions int
	ownCommits     int
	othersCommits  int
	starsReceived  int
	forksReceived  int

	messages     []string
	createdRepos []models.CreatedRepo
	forkedRepos  []models.ForkedRepo
}

func newAnalysisRun(username string, year int) *analysisRun {
	return &analysisRun{
		username:       username,
		year:           year,
		ledger:         make(map[string]*models.RepoLedgerEntry),
		languageScores: make(map[string]float64),
		activeDays:     make(map[string]struct{}),
	}
}

// Analyze builds the complete report for one user and year. A nil summary
// means the coarse feed was unavailable; the result is then a degraded
// zero-value report instead of an error.
func (s *AnalyzerService) Analyze(username string, year int, summary *models.ContributionSummary, repos []models.RepositoryInfo, details DetailSource) *models.AnalysisReport {
	if summary == nil {
		return degradedReport(username, year)
	}

	run := newAnalysisRun(username, year)
	run.collectCalendar(summary)
	run.buildLedger(summary)
	run.enrichFromCommits(details)
	run.applyRepoMetadata(repos)
	run.collectLanguageBytes(details)

	return run.assembleReport(summary)
}

// collectCalendar records the active days and monthly totals from the
// summary feed's daily calendar.
func (r *analysisRun) collectCalendar(summary *models.ContributionSummary) {
	for _, day := range summary.Calendar {
		if day.Count <= 0 {
			continue
		}
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		r.activeDays[day.Date] = struct{}{}
		r.monthly[int(date.Month())-1] += day.Count
	}
}

// buildLedger merges the repository-scoped commit and PR counts of the
// summary feed into the ledger. Entries are only ever created from records
// with a nonzero count; commit and PR counts never overwrite each other.
func (r *analysisRun) buildLedger(summary *models.ContributionSummary) {
	for _, item := range summary.CommitsByRepo {
		if item.Count == 0 || item.Owner == "" || item.Name == "" {
			continue
		}

		isOwn := strings.EqualFold(item.Owner, r.username)
		if isOwn {
			r.ownCommits += item.Count
		} else {
			r.othersCommits += item.Count
		}

		// Coarse language signal, refined later by byte histograms.
		if item.PrimaryLanguage != "" {
			r.languageScores[item.PrimaryLanguage] += float64(item.Count * 1000)
		}

		entry := r.entry(item)
		entry.Commits = item.Count
	}

	for _, item := range summary.PRsByRepo {
		if item.Owner == "" || item.Name == "" {
			continue
		}
		if existing, ok := r.ledger[models.RepoKey(item.Owner, item.Name)]; ok {
			existing.PRs = item.Count
		} else if item.Count > 0 {
			entry := r.entry(item)
			entry.PRs = item.Count
		}
	}
}

// entry returns the ledger entry for a summary record, creating it if needed.
func (r *analysisRun) entry(item models.RepoContribution) *models.RepoLedgerEntry {
	key := models.RepoKey(item.Owner, item.Name)
	if existing, ok := r.ledger[key]; ok {
		return existing
	}
	entry := &models.RepoLedgerEntry{
		Name:      item.Name,
		Owner:     item.Owner,
		URL:       item.URL,
		IsPrivate: item.IsPrivate,
		IsOwn:     strings.EqualFold(item.Owner, r.username),
	}
	r.ledger[key] = entry
	return entry
}

// sortedLedgerKeys returns the ledger keys in descending (commits + PRs)
// order, ties broken by key so the processing order is reproducible.
func (r *analysisRun) sortedLedgerKeys() []string {
	keys := make([]string, 0, len(r.ledger))
	for key := range r.ledger {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := r.ledger[keys[i]], r.ledger[keys[j]]
		if a.Commits+a.PRs != b.Commits+b.PRs {
			return a.Commits+a.PRs > b.Commits+b.PRs
		}
		return keys[i] < keys[j]
	})
	return keys
}

// enrichFromCommits walks the detail feed for every ledger entry, most
// active repositories first, accumulating line stats, time-of-day buckets,
// merge counts, message samples and per-repository contribution days.
func (r *analysisRun) enrichFromCommits(details DetailSource) {
	if details == nil {
		return
	}
	for _, key := range r.sortedLedgerKeys() {
		entry := r.ledger[key]
		r.enrichEntry(entry, details.RepoCommits(entry.Owner, entry.Name))
	}
}

func (r *analysisRun) enrichEntry(entry *models.RepoLedgerEntry, commits []models.CommitDetail) {
	days := make(map[string]struct{})

	for _, commit := range commits {
		// A commit without a usable timestamp cannot be placed in the
		// window and is skipped entirely.
		date, err := time.Parse(time.RFC3339, commit.Timestamp)
		if err != nil {
			continue
		}
		if date.Year() != r.year {
			continue
		}
		// Attribution is to the user, not the repository.
		if commit.AuthorLogin != "" && !strings.EqualFold(commit.AuthorLogin, r.username) {
			continue
		}

		if commit.Parents > 1 {
			entry.Merges++
			r.totalMerges++
		}

		// Hours in [12, 22) belong to neither bucket on purpose;
		// afternoon commits are neutral for the persona heuristic.
		hour := date.Hour()
		if hour >= 22 || hour < 6 {
			r.nightCommits++
		} else if hour < 12 {
			r.morningCommits++
		}

		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			r.weekendCommits++
		}

		days[date.Format("2006-01-02")] = struct{}{}

		firstLine, _, _ := strings.Cut(commit.Message, "\n")
		firstLine = strings.TrimSpace(firstLine)
		if firstLine != "" && !strings.HasPrefix(strings.ToLower(firstLine), "merge") {
			r.messages = append(r.messages, strings.ToLower(firstLine))
		}

		if commit.HasStats {
			entry.Additions += commit.Additions
			entry.Deletions += commit.Deletions
			r.totalAdditions += commit.Additions
			r.totalDeletions += commit.Deletions
		}
	}

	entry.Changes = entry.Additions + entry.Deletions
	entry.ContributionDays = len(days)
}

// applyRepoMetadata folds star/fork counts and created/forked repository
// lists from the repository metadata into the run. Stars and forks count
// toward the user only for repositories they own.
func (r *analysisRun) applyRepoMetadata(repos []models.RepositoryInfo) {
	for _, repo := range repos {
		isOwn := strings.EqualFold(repo.Owner, r.username)

		if createdAt, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil && createdAt.Year() == r.year {
			description := repo.Description
			if description == "" {
				description = "No description"
			}
			language := repo.Language
			if language == "" {
				language = "Unknown"
			}
			r.createdRepos = append(r.createdRepos, models.CreatedRepo{
				Name:        repo.Name,
				URL:         repo.URL,
				Description: description,
				Stars:       repo.Stars,
				Forks:       repo.Forks,
				Language:    language,
			})
		}

		if repo.Fork && isOwn {
			r.forkedRepos = append(r.forkedRepos, models.ForkedRepo{Name: repo.Name, URL: repo.URL})
		}

		if isOwn {
			r.starsReceived += repo.Stars
			r.forksReceived += repo.Forks
			if entry, ok := r.ledger[models.RepoKey(repo.Owner, repo.Name)]; ok {
				entry.Stars = repo.Stars
				entry.Forks = repo.Forks
			}
		}
	}
}

// collectLanguageBytes adds the byte-level language signal for every ledger
// entry into the shared score map, weighting each histogram by how many
// commits the entry received. Both signals accumulate before normalization
// so the final ranking reflects their combination.
func (r *analysisRun) collectLanguageBytes(details DetailSource) {
	if details == nil {
		return
	}
	for _, key := range r.sortedLedgerKeys() {
		entry := r.ledger[key]
		languages := details.RepoLanguages(entry.Owner, entry.Name)
		if len(languages) == 0 {
			continue
		}
		weight := 1 + float64(entry.Commits)*0.1
		for language, bytes := range languages {
			r.languageScores[language] += float64(bytes) * weight
		}
	}
}

// degradedReport is the explicit minimal result returned when the summary
// feed is unavailable: all totals zero, empty rankings, clearly flagged.
func degradedReport(username string, year int) *models.AnalysisReport {
	return &models.AnalysisReport{
		Username:         username,
		Year:             year,
		Degraded:         true,
		CreatedRepos:     []models.CreatedRepo{},
		ForkedRepos:      []models.ForkedRepo{},
		Languages:        []models.LanguageShare{},
		OrgContributions: []models.OrgContribution{},
		RepoNames:        []string{},
		CommitAnalysis: models.CommitAnalysis{
			MostCommonMessages:  []models.MessageCount{},
			MonthlyDistribution: monthlyDistribution([12]int{}),
		},
	}
}
