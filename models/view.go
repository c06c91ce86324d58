package models

import "time"

// ViewStats carries the headline counters. Counters hidden by a visibility
// toggle are null rather than zero so the widget can tell "hidden" from
// "none".
type ViewStats struct {
	Repos     *int `json:"repos"`
	Stars     *int `json:"stars"`
	Followers *int `json:"followers"`
	Following int  `json:"following"`
}

// PublicView is the display-filtered projection of a cached snapshot. Field
// names are part of the widget contract and never include the access token.
type PublicView struct {
	ID            int64              `json:"id"`
	Username      string             `json:"username"`
	DisplayName   string             `json:"display_name"`
	AvatarURL     string             `json:"avatar_url"`
	Bio           *string            `json:"bio"`
	Location      *string            `json:"location"`
	Company       string             `json:"company"`
	BlogURL       string             `json:"blog_url"`
	Stats         ViewStats          `json:"stats"`
	ReposByOrg    []OwnerStats       `json:"repos_by_org"`
	TopRepos      []RepoSummary      `json:"top_repos"`
	Languages     []LanguageCount    `json:"languages"`
	Contributions *ContributionStats `json:"contributions"`
	Theme         string             `json:"theme"`
	Show          ShowFlags          `json:"show"`
	ExcludedOrgs  []string           `json:"excluded_orgs"`
	LastSync      *time.Time         `json:"last_sync"`
}
