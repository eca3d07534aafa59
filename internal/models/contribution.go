package models

// ContributionSummary is the pre-aggregated yearly summary for a user,
// as reported by the GitHub GraphQL contributions collection.
type ContributionSummary struct {
	TotalCommits       int
	TotalPRs           int
	TotalIssues        int
	TotalReviews       int
	TotalContributions int

	// Calendar holds one entry per day of the analyzed window.
	Calendar []ContributionDay

	// CommitsByRepo and PRsByRepo are repository-scoped contribution counts.
	CommitsByRepo []RepoContribution
	PRsByRepo     []RepoContribution
}

// ContributionDay is a single day of the contribution calendar.
type ContributionDay struct {
	Date  string // "2006-01-02"
	Count int
}

// RepoContribution is a repository-scoped contribution count from the summary feed.
type RepoContribution struct {
	Name            string
	Owner           string
	URL             string
	IsPrivate       bool
	PrimaryLanguage string
	Count           int
}

// CommitDetail is a single commit from the per-repository detail feed.
// It is consumed once during enrichment and discarded.
type CommitDetail struct {
	AuthorLogin string // empty if GitHub could not attribute the commit
	Timestamp   string // ISO-8601 / RFC 3339
	Parents     int
	Message     string
	Additions   int
	Deletions   int
	HasStats    bool
}

// RepositoryInfo is repository metadata from the REST repository listing.
type RepositoryInfo struct {
	Name        string
	Owner       string
	URL         string
	Description string
	Language    string
	Stars       int
	Forks       int
	Fork        bool
	CreatedAt   string
}
