package models

// AnalysisReport is the final year-in-review record for one user and year.
// It is assembled once and never mutated afterwards; every analysis run
// produces its own report.
type AnalysisReport struct {
	Username                string            `json:"username"`
	Year                    int               `json:"year"`
	Stats                   AnalysisStats     `json:"stats"`
	Persona                 Persona           `json:"persona"`
	TopRepos                TopRepos          `json:"top_repos"`
	CreatedRepos            []CreatedRepo     `json:"created_repos"`
	ForkedRepos             []ForkedRepo      `json:"forked_repos"`
	CommitAnalysis          CommitAnalysis    `json:"commit_analysis"`
	Languages               []LanguageShare   `json:"languages"`
	OrgContributions        []OrgContribution `json:"org_contributions"`
	RepoNames               []string          `json:"repo_names"`
	HasPrivateContributions bool              `json:"has_private_contributions"`

	// Degraded is set when the summary feed could not be obtained and the
	// report carries zero values instead of failing the caller.
	Degraded bool `json:"degraded"`

	UserInfo    *UserInfo `json:"user_info,omitempty"`
	HasToken    bool      `json:"has_token"`
	FromCache   bool      `json:"from_cache"`
	DataVersion string    `json:"data_version,omitempty"`
}

// AnalysisStats holds the run-wide totals of a report.
type AnalysisStats struct {
	TotalCommits         int    `json:"total_commits"`
	TotalContributions   int    `json:"total_contributions"`
	TotalRepos           int    `json:"total_repos"`
	ContributedProjects  int    `json:"contributed_projects"`
	OwnProjectCommits    int    `json:"own_project_commits"`
	OthersProjectCommits int    `json:"others_project_commits"`
	TotalAdditions       int    `json:"total_additions"`
	TotalDeletions       int    `json:"total_deletions"`
	NetChanges           int    `json:"net_changes"`
	ActiveDays           int    `json:"active_days"`
	LongestStreak        int    `json:"longest_streak"`
	TotalPRs             int    `json:"total_prs"`
	TotalIssues          int    `json:"total_issues"`
	TotalReviews         int    `json:"total_reviews"`
	TotalMerges          int    `json:"total_merges"`
	StarsReceived        int    `json:"stars_received"`
	ForksReceived        int    `json:"forks_received"`
	ReposCreated         int    `json:"repos_created"`
	ReposForked          int    `json:"repos_forked"`
	MostActiveMonth      string `json:"most_active_month,omitempty"`
}

// Persona is the single behavioral classification of a user's year.
type Persona struct {
	ID   string `json:"id"`
	Icon string `json:"icon"`
}

// TopRepos holds the per-category superlative repositories. A category is
// nil when the ledger has no candidate for it.
type TopRepos struct {
	MostCommits         *TopRepoCount   `json:"most_commits,omitempty"`
	MostPRs             *TopRepoCount   `json:"most_prs,omitempty"`
	MostChanges         *TopRepoChanges `json:"most_changes,omitempty"`
	LongestContribution *TopRepoDays    `json:"longest_contribution,omitempty"`
	MostStarred         *TopRepoStars   `json:"most_starred,omitempty"`
}

// TopRepoCount is a superlative ranked by a single count (commits or PRs).
type TopRepoCount struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	URL       string `json:"url"`
	IsPrivate bool   `json:"is_private"`
}

// TopRepoChanges is the repository with the most combined line changes.
type TopRepoChanges struct {
	Name      string `json:"name"`
	Changes   int    `json:"changes"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	URL       string `json:"url"`
	IsPrivate bool   `json:"is_private"`
}

// TopRepoDays is the repository with the most distinct contribution days.
type TopRepoDays struct {
	Name      string `json:"name"`
	Days      int    `json:"days"`
	Commits   int    `json:"commits"`
	URL       string `json:"url"`
	IsPrivate bool   `json:"is_private"`
}

// TopRepoStars is the user's own repository with the most stars.
type TopRepoStars struct {
	Name  string `json:"name"`
	Stars int    `json:"stars"`
	Forks int    `json:"forks"`
	URL   string `json:"url"`
}

// CreatedRepo is a repository created by the user inside the analyzed year.
type CreatedRepo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Language    string `json:"language"`
}

// ForkedRepo is a repository the user forked.
type ForkedRepo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CommitAnalysis groups the commit-message and monthly statistics.
type CommitAnalysis struct {
	MostCommonMessages  []MessageCount `json:"most_common_messages"`
	MonthlyDistribution []MonthCount   `json:"monthly_distribution"`
}

// MessageCount is a commit message sample and how often it appeared.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// MonthCount is the total contributions of one calendar month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// LanguageShare is one entry of the ranked language distribution.
type LanguageShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// OrgContribution is the user's aggregated activity under one non-self owner.
type OrgContribution struct {
	Name      string   `json:"name"`
	Commits   int      `json:"commits"`
	PRs       int      `json:"prs"`
	Repos     int      `json:"repos"`
	RepoNames []string `json:"repo_names"`
}

// UserInfo is the public profile of the analyzed user.
type UserInfo struct {
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
}

// RateLimitInfo is the current GitHub API quota for both API surfaces.
type RateLimitInfo struct {
	Core     RateLimitWindow `json:"core"`
	GraphQL  RateLimitWindow `json:"graphql"`
	HasToken bool            `json:"has_token"`
}

// RateLimitWindow is the quota of a single rate-limited API surface.
type RateLimitWindow struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}
