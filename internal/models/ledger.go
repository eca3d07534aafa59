package models

import "strings"

// RepoKey normalizes an (owner, name) pair into the canonical ledger identity.
// Identity is case-insensitive so the same repository reported with different
// casing never produces two entries.
func RepoKey(owner, name string) string {
	return strings.ToLower(owner + "/" + name)
}

// RepoLedgerEntry is the per-repository aggregated contribution record.
//
// Commits and PRs come only from the summary feed; Additions, Deletions,
// Changes, ContributionDays and Merges come only from the detail feed and
// stay zero when that feed yields nothing for the entry.
type RepoLedgerEntry struct {
	Name             string `json:"name"`
	Owner            string `json:"owner"`
	Commits          int    `json:"commits"`
	PRs              int    `json:"prs"`
	Additions        int    `json:"additions"`
	Deletions        int    `json:"deletions"`
	Changes          int    `json:"changes"`
	ContributionDays int    `json:"contribution_days"`
	Merges           int    `json:"merges"`
	IsOwn            bool   `json:"is_own"`
	IsPrivate        bool   `json:"is_private"`
	Stars            int    `json:"stars"`
	Forks            int    `json:"forks"`
	URL              string `json:"url"`
}

// Key returns the canonical identity of this entry.
func (e *RepoLedgerEntry) Key() string {
	return RepoKey(e.Owner, e.Name)
}
