package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v57/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alimgiray/yearscope/internal/models"
)

// ErrUserNotFound is returned when the requested GitHub user does not exist.
var ErrUserNotFound = errors.New("github user not found")

// GithubService wraps the GitHub REST and GraphQL clients behind the shapes
// the analysis engine consumes. All rate-limit behavior lives here; the
// engine itself never talks to the network.
type GithubService struct {
	rest     *github.Client
	graphql  *githubv4.Client
	hasToken bool
}

// NewGithubService builds the REST and GraphQL clients over a shared
// rate-limit aware transport. An empty token is allowed; private
// contributions and the GraphQL summary are then unavailable.
func NewGithubService(token string) (*GithubService, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	return &GithubService{
		rest:     github.NewClient(httpClient),
		graphql:  githubv4.NewClient(httpClient),
		hasToken: token != "",
	}, nil
}

// HasToken reports whether the service is authenticated.
func (s *GithubService) HasToken() bool {
	return s.hasToken
}

// GetUser retrieves the public profile of a user.
func (s *GithubService) GetUser(ctx context.Context, username string) (*models.UserInfo, error) {
	user, resp, err := s.rest.Users.Get(ctx, username)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	info := &models.UserInfo{
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		Bio:         user.GetBio(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
	}
	if info.Name == "" {
		info.Name = username
	}
	if createdAt := user.GetCreatedAt(); !createdAt.IsZero() {
		info.CreatedAt = createdAt.Format(time.RFC3339)
	}
	return info, nil
}

// contributionsQuery mirrors the contributionsCollection shape of the GitHub
// GraphQL API for one user and date window.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions            int
			TotalPullRequestContributions       int
			TotalIssueContributions             int
			TotalPullRequestReviewContributions int

			ContributionCalendar struct {
				TotalContributions int
				Weeks              []struct {
					ContributionDays []struct {
						ContributionCount int
						Date              string
					}
				}
			}

			CommitContributionsByRepository []struct {
				Contributions struct {
					TotalCount int
				}
				Repository struct {
					Name  string
					Owner struct {
						Login string
					}
					URL             string `graphql:"url"`
					IsPrivate       bool
					PrimaryLanguage *struct {
						Name string
					}
				}
			} `graphql:"commitContributionsByRepository(maxRepositories: 100)"`

			PullRequestContributionsByRepository []struct {
				Contributions struct {
					TotalCount int
				}
				Repository struct {
					Name  string
					Owner struct {
						Login string
					}
					URL       string `graphql:"url"`
					IsPrivate bool
				}
			} `graphql:"pullRequestContributionsByRepository(maxRepositories: 100)"`
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// GetContributionSummary fetches the coarse yearly summary for a user via
// GraphQL. The summary includes private contribution counts when the token
// permits.
func (s *GithubService) GetContributionSummary(ctx context.Context, username string, year int) (*models.ContributionSummary, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var query contributionsQuery
	variables := map[string]interface{}{
		"login": githubv4.String(username),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}

	if err := s.graphql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("contributions query failed for %s: %w", username, err)
	}

	collection := query.User.ContributionsCollection
	summary := &models.ContributionSummary{
		TotalCommits:       collection.TotalCommitContributions,
		TotalPRs:           collection.TotalPullRequestContributions,
		TotalIssues:        collection.TotalIssueContributions,
		TotalReviews:       collection.TotalPullRequestReviewContributions,
		TotalContributions: collection.ContributionCalendar.TotalContributions,
	}

	for _, week := range collection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			summary.Calendar = append(summary.Calendar, models.ContributionDay{
				Date:  day.Date,
				Count: day.ContributionCount,
			})
		}
	}

	for _, item := range collection.CommitContributionsByRepository {
		contribution := models.RepoContribution{
			Name:      item.Repository.Name,
			Owner:     item.Repository.Owner.Login,
			URL:       item.Repository.URL,
			IsPrivate: item.Repository.IsPrivate,
			Count:     item.Contributions.TotalCount,
		}
		if item.Repository.PrimaryLanguage != nil {
			contribution.PrimaryLanguage = item.Repository.PrimaryLanguage.Name
		}
		summary.CommitsByRepo = append(summary.CommitsByRepo, contribution)
	}

	for _, item := range collection.PullRequestContributionsByRepository {
		summary.PRsByRepo = append(summary.PRsByRepo, models.RepoContribution{
			Name:      item.Repository.Name,
			Owner:     item.Repository.Owner.Login,
			URL:       item.Repository.URL,
			IsPrivate: item.Repository.IsPrivate,
			Count:     item.Contributions.TotalCount,
		})
	}

	return summary, nil
}

// ListUserRepositories retrieves all repositories of a user, most recently
// updated first.
func (s *GithubService) ListUserRepositories(ctx context.Context, username string) ([]models.RepositoryInfo, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var repositories []models.RepositoryInfo
	for {
		repos, resp, err := s.rest.Repositories.List(ctx, username, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", username, err)
		}

		for _, repo := range repos {
			info := models.RepositoryInfo{
				Name:        repo.GetName(),
				Owner:       repo.GetOwner().GetLogin(),
				URL:         repo.GetHTMLURL(),
				Description: repo.GetDescription(),
				Language:    repo.GetLanguage(),
				Stars:       repo.GetStargazersCount(),
				Forks:       repo.GetForksCount(),
				Fork:        repo.GetFork(),
			}
			if createdAt := repo.GetCreatedAt(); !createdAt.IsZero() {
				info.CreatedAt = createdAt.Format(time.RFC3339)
			}
			repositories = append(repositories, info)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repositories, nil
}

// ListRepositoryCommits retrieves the commits of a repository inside the
// analysis year. Line-level stats are carried over only when the API
// provides them.
func (s *GithubService) ListRepositoryCommits(ctx context.Context, owner, name string, year int) ([]models.CommitDetail, error) {
	opts := &github.CommitsListOptions{
		Since:       time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Until:       time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var commits []models.CommitDetail
	for {
		page, resp, err := s.rest.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s: %w", owner, name, err)
		}

		for _, commit := range page {
			detail := models.CommitDetail{
				AuthorLogin: commit.GetAuthor().GetLogin(),
				Message:     commit.GetCommit().GetMessage(),
				Parents:     len(commit.Parents),
			}
			if date := commit.GetCommit().GetAuthor().GetDate(); !date.IsZero() {
				detail.Timestamp = date.Format(time.RFC3339)
			}
			if stats := commit.GetStats(); stats != nil {
				detail.HasStats = true
				detail.Additions = stats.GetAdditions()
				detail.Deletions = stats.GetDeletions()
			}
			commits = append(commits, detail)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

// ListRepositoryLanguages retrieves the byte-level language histogram of a
// repository.
func (s *GithubService) ListRepositoryLanguages(ctx context.Context, owner, name string) (map[string]int, error) {
	languages, _, err := s.rest.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages for %s/%s: %w", owner, name, err)
	}
	return languages, nil
}

// LatestEventTime returns the timestamp of the user's most recent public
// event. It is used as the freshness version of cached reports.
func (s *GithubService) LatestEventTime(ctx context.Context, username string) (string, error) {
	events, _, err := s.rest.Activity.ListEventsPerformedByUser(ctx, username, false, &github.ListOptions{PerPage: 1})
	if err != nil {
		return "", fmt.Errorf("failed to list events for %s: %w", username, err)
	}
	if len(events) == 0 {
		return "", nil
	}
	return events[0].GetCreatedAt().Format(time.RFC3339), nil
}

// GetRateLimits returns the remaining quota of the REST and GraphQL APIs.
func (s *GithubService) GetRateLimits(ctx context.Context) (*models.RateLimitInfo, error) {
	limits, _, err := s.rest.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}

	info := &models.RateLimitInfo{HasToken: s.hasToken}
	if core := limits.GetCore(); core != nil {
		info.Core = models.RateLimitWindow{
			Limit:     core.Limit,
			Remaining: core.Remaining,
			Reset:     core.Reset.Unix(),
		}
	}
	if graphql := limits.GetGraphQL(); graphql != nil {
		info.GraphQL = models.RateLimitWindow{
			Limit:     graphql.Limit,
			Remaining: graphql.Remaining,
			Reset:     graphql.Reset.Unix(),
		}
	}
	return info, nil
}
