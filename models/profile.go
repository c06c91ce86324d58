package models

import "time"

const (
	// DefaultMaxRepos caps how many repositories the widget shows unless the
	// profile overrides it.
	DefaultMaxRepos = 6
	// DefaultTheme matches the embedding site unless overridden per profile.
	DefaultTheme = "auto"
)

// ShowFlags toggles individual widget sections on or off. Toggles only affect
// the served view, never what gets cached.
type ShowFlags struct {
	Avatar        bool `json:"avatar"`
	Bio           bool `json:"bio"`
	Location      bool `json:"location"`
	Repos         bool `json:"repos"`
	Stars         bool `json:"stars"`
	Followers     bool `json:"followers"`
	Languages     bool `json:"languages"`
	Contributions bool `json:"contributions"`
}

// DefaultShowFlags returns the flag set applied to newly created profiles.
func DefaultShowFlags() ShowFlags {
	return ShowFlags{
		Avatar:        true,
		Bio:           true,
		Location:      true,
		Repos:         true,
		Stars:         true,
		Followers:     true,
		Languages:     true,
		Contributions: true,
	}
}

// Profile is a tracked GitHub account together with its display
// configuration. The access token is optional; without one only public data
// can be synced and contribution stats are unavailable.
type Profile struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"displayName,omitempty"`
	Username     string    `json:"username"`
	Token        string    `json:"-"`
	ExcludedOrgs string    `json:"excludedOrgs,omitempty"`
	Active       bool      `json:"active"`
	MaxRepos     int       `json:"maxRepos"`
	Theme        string    `json:"theme"`
	Show         ShowFlags `json:"show"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ConfigSummary is the minimal listing entry exposed to the widget selector.
type ConfigSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
