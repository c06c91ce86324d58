package models

import "time"

// StaleAfter is how long a successful sync stays fresh before a read may
// trigger an opportunistic refresh.
const StaleAfter = time.Hour

const (
	// TopRepoPoolSize is how many repositories a snapshot retains regardless
	// of the per-profile display cap, so display-time filtering always has a
	// pool to draw from.
	TopRepoPoolSize = 50
	// TopLanguageCount bounds the language histogram.
	TopLanguageCount = 8
	// CalendarDays bounds the flattened contribution calendar.
	CalendarDays = 365
	// TopCommitRepoCount bounds the per-repository commit breakdown.
	TopCommitRepoCount = 20
)

// RepoSummary is one cached repository entry. Field names are part of the
// widget payload contract.
type RepoSummary struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Language    string `json:"language"`
	URL         string `json:"url"`
	UpdatedAt   string `json:"updated_at"`
	Owner       string `json:"owner"`
}

// LanguageCount is one bar of the language histogram.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OwnerStats aggregates the repositories held by a single owner, which may be
// the tracked user or an organization.
type OwnerStats struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
	Stars int    `json:"stars"`
}

// RepoCommits is one entry of the per-repository commit breakdown.
type RepoCommits struct {
	Repo    string `json:"repo"`
	Private bool   `json:"is_private"`
	Commits int    `json:"commits"`
}

// ContributionDay is a single cell of the contribution calendar.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level string `json:"level"`
}

// ContributionStats summarises the trailing twelve months of activity. It is
// only present when the profile was synced with an access token.
type ContributionStats struct {
	TotalCommits            int               `json:"total_commits"`
	TotalPRs                int               `json:"total_prs"`
	TotalIssues             int               `json:"total_issues"`
	TotalReviews            int               `json:"total_reviews"`
	TotalRepoContributions  int               `json:"total_repo_contributions"`
	RestrictedContributions int               `json:"restricted_contributions"`
	TotalContributions      int               `json:"total_contributions"`
	CommitsByRepo           []RepoCommits     `json:"commits_by_repo"`
	Days                    []ContributionDay `json:"days"`
	Note                    string            `json:"note"`
}

// Snapshot is the last aggregated, unfiltered dataset for one profile. Data
// fields are only ever replaced wholesale on a successful sync; a failed
// attempt touches the error slot and attempt timestamp alone.
type Snapshot struct {
	ProfileID int64

	Name      string
	AvatarURL string
	Bio       string
	Location  string
	Company   string
	BlogURL   string

	Repos      int
	Gists      int
	Followers  int
	Following  int
	TotalStars int

	TopRepos  []RepoSummary
	Languages []LanguageCount
	Owners    []OwnerStats

	Contributions *ContributionStats

	LastSyncedAt  time.Time
	LastAttemptAt time.Time
	LastError     string
}

// Stale reports whether the snapshot is old enough for a read to attempt an
// opportunistic refresh. A profile that has never synced successfully is
// always stale; failed attempts do not reset the clock.
func (s *Snapshot) Stale(now time.Time) bool {
	if s == nil || s.LastSyncedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastSyncedAt) > StaleAfter
}
