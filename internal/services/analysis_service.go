package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alimgiray/yearscope/internal/models"
	"github.com/alimgiray/yearscope/internal/repositories"
	"github.com/alimgiray/yearscope/pkg/logger"
)

// ErrInvalidUsername is returned when no username could be extracted from
// the request input.
var ErrInvalidUsername = errors.New("invalid username or github url")

// ErrNoActivity is returned when the user has no recorded contributions in
// the requested year. It is a caller-visible condition, not an internal
// failure.
var ErrNoActivity = errors.New("no activity in the requested year")

// detailFetchConcurrency bounds the parallel per-repository detail requests.
const detailFetchConcurrency = 4

var usernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]+)$`),
}

// ExtractUsername pulls a GitHub username out of a raw input string, which
// may be a bare login or a profile URL.
func ExtractUsername(input string) string {
	for _, pattern := range usernamePatterns {
		if match := pattern.FindStringSubmatch(input); match != nil {
			return match[1]
		}
	}
	return ""
}

// GithubFetcher is the slice of the GitHub gateway the analysis flow needs.
type GithubFetcher interface {
	GetUser(ctx context.Context, username string) (*models.UserInfo, error)
	GetContributionSummary(ctx context.Context, username string, year int) (*models.ContributionSummary, error)
	ListUserRepositories(ctx context.Context, username string) ([]models.RepositoryInfo, error)
	ListRepositoryCommits(ctx context.Context, owner, name string, year int) ([]models.CommitDetail, error)
	ListRepositoryLanguages(ctx context.Context, owner, name string) (map[string]int, error)
	LatestEventTime(ctx context.Context, username string) (string, error)
	HasToken() bool
}

// AnalysisService orchestrates a full analysis: cache lookup, data fetch,
// engine run and cache store.
type AnalysisService struct {
	github       GithubFetcher
	analyzer     *AnalyzerService
	analysisRepo *repositories.AnalysisRepository
	cacheTTL     time.Duration
}

func NewAnalysisService(github GithubFetcher, analyzer *AnalyzerService, analysisRepo *repositories.AnalysisRepository, cacheTTL time.Duration) *AnalysisService {
	return &AnalysisService{
		github:       github,
		analyzer:     analyzer,
		analysisRepo: analysisRepo,
		cacheTTL:     cacheTTL,
	}
}

// AnalyzeUser resolves the input to a username and returns the year report,
// served from cache when it is still fresh.
func (s *AnalysisService) AnalyzeUser(ctx context.Context, input string, year int) (*models.AnalysisReport, error) {
	username := ExtractUsername(input)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	user, err := s.github.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	// The user's latest public activity acts as the freshness version of
	// the cached report. A failure here only disables version checking.
	dataVersion, err := s.github.LatestEventTime(ctx, username)
	if err != nil {
		logger.WithError(err).WithField("username", username).Debug("could not determine latest activity")
		dataVersion = ""
	}

	if cached := s.lookupCache(username, year, dataVersion); cached != nil {
		return cached, nil
	}

	logger.WithFields(map[string]interface{}{"username": username, "year": year}).Info("starting analysis")

	summary, err := s.github.GetContributionSummary(ctx, username, year)
	if err != nil {
		logger.WithError(err).WithField("username", username).Warn("summary feed unavailable, returning degraded report")
		summary = nil
	}

	repos, err := s.github.ListUserRepositories(ctx, username)
	if err != nil {
		logger.WithError(err).WithField("username", username).Warn("could not list repositories")
		repos = nil
	}

	var details DetailSource
	if summary != nil {
		details = s.collectDetails(ctx, summary, year)
	}

	report := s.analyzer.Analyze(username, year, summary, repos, details)
	if !report.Degraded && report.Stats.TotalContributions == 0 {
		return nil, ErrNoActivity
	}

	report.UserInfo = user
	report.HasToken = s.github.HasToken()
	report.DataVersion = dataVersion

	// Degraded reports are transient; caching them would hide a recovery
	// of the summary feed for the whole TTL.
	if !report.Degraded {
		s.storeCache(report, dataVersion)
	}
	return report, nil
}

// lookupCache returns a still-valid cached report or nil. A version mismatch
// against the user's latest activity invalidates the entry; an unknown
// version falls back to trusting the TTL. A hit restarts the TTL.
func (s *AnalysisService) lookupCache(username string, year int, dataVersion string) *models.AnalysisReport {
	cached, err := s.analysisRepo.GetFresh(username, year)
	if err != nil {
		logger.WithError(err).Warn("cache lookup failed")
		return nil
	}
	if cached == nil {
		return nil
	}
	if dataVersion != "" && cached.DataVersion != dataVersion {
		logger.WithField("username", username).Info("cache outdated, new activity detected")
		return nil
	}

	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(cached.Report), &report); err != nil {
		logger.WithError(err).Warn("discarding unreadable cache entry")
		return nil
	}

	if err := s.analysisRepo.Touch(cached.ID, time.Now().UTC().Add(s.cacheTTL)); err != nil {
		logger.WithError(err).Warn("failed to extend cache entry")
	}
	return &report
}

func (s *AnalysisService) storeCache(report *models.AnalysisReport, dataVersion string) {
	// The stored copy is marked as coming from cache so hits need no rewrite.
	stored := *report
	stored.FromCache = true

	payload, err := json.Marshal(&stored)
	if err != nil {
		logger.WithError(err).Warn("failed to serialize report for cache")
		return
	}

	entry := models.NewCachedAnalysis(report.Username, report.Year, dataVersion, string(payload), s.cacheTTL)
	if err := s.analysisRepo.Upsert(entry); err != nil {
		logger.WithError(err).Warn("failed to store analysis in cache")
	}
}

// mapDetailSource is a DetailSource over prefetched collections.
type mapDetailSource struct {
	commits   map[string][]models.CommitDetail
	languages map[string]map[string]int
}

func (m *mapDetailSource) RepoCommits(owner, name string) []models.CommitDetail {
	return m.commits[models.RepoKey(owner, name)]
}

func (m *mapDetailSource) RepoLanguages(owner, name string) map[string]int {
	return m.languages[models.RepoKey(owner, name)]
}

// collectDetails prefetches commit and language details for every repository
// the summary names, a bounded number of repositories at a time. Fetch
// failures leave the repository without detail data; the engine treats that
// as zero values. The aggregation downstream does not depend on completion
// order.
func (s *AnalysisService) collectDetails(ctx context.Context, summary *models.ContributionSummary, year int) DetailSource {
	type repoIdent struct {
		owner string
		name  string
	}

	seen := make(map[string]repoIdent)
	add := func(items []models.RepoContribution) {
		for _, item := range items {
			if item.Count == 0 || item.Owner == "" || item.Name == "" {
				continue
			}
			seen[models.RepoKey(item.Owner, item.Name)] = repoIdent{owner: item.Owner, name: item.Name}
		}
	}
	add(summary.CommitsByRepo)
	add(summary.PRsByRepo)

	source := &mapDetailSource{
		commits:   make(map[string][]models.CommitDetail, len(seen)),
		languages: make(map[string]map[string]int, len(seen)),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detailFetchConcurrency)

	for key, ident := range seen {
		key, ident := key, ident
		group.Go(func() error {
			commits, err := s.github.ListRepositoryCommits(groupCtx, ident.owner, ident.name, year)
			if err != nil {
				logger.WithError(err).WithField("repo", fmt.Sprintf("%s/%s", ident.owner, ident.name)).Warn("skipping commit details")
			}
			languages, err := s.github.ListRepositoryLanguages(groupCtx, ident.owner, ident.name)
			if err != nil {
				logger.WithError(err).WithField("repo", fmt.Sprintf("%s/%s", ident.owner, ident.name)).Warn("skipping language details")
			}

			mu.Lock()
			source.commits[key] = commits
			source.languages[key] = languages
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures degrade to missing detail data.
	_ = group.Wait()
	return source
}
