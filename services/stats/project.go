package stats

import (
	"sort"
	"strings"

	"octoboard/models"
)

// privateRepoMask replaces private repository names in the public commit
// breakdown. The upstream returns the names regardless of the privacy flag,
// so the cache holds them verbatim and the projection hides them.
const privateRepoMask = "private repository"

// exclusionSet parses the comma-separated exclusion list into a lowercase
// set. Entries may be owner logins or fully-qualified repository names.
func exclusionSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			set[entry] = struct{}{}
		}
	}
	return set
}

// project shapes a snapshot into the public widget payload. All filtering is
// display-time only; the snapshot keeps the unfiltered data. A nil snapshot
// (never synced) projects to a zeroed view rather than an error.
func project(profile *models.Profile, snap *models.Snapshot) *models.PublicView {
	if snap == nil {
		snap = &models.Snapshot{}
	}

	excluded := exclusionSet(profile.ExcludedOrgs)

	view := &models.PublicView{
		ID:           profile.ID,
		Username:     profile.Username,
		DisplayName:  displayName(profile, snap),
		AvatarURL:    snap.AvatarURL,
		Company:      snap.Company,
		BlogURL:      snap.BlogURL,
		Theme:        profile.Theme,
		Show:         profile.Show,
		ExcludedOrgs: sortedEntries(excluded),
		ReposByOrg:   []models.OwnerStats{},
		TopRepos:     []models.RepoSummary{},
		Languages:    []models.LanguageCount{},
	}
	if !snap.LastSyncedAt.IsZero() {
		t := snap.LastSyncedAt
		view.LastSync = &t
	}

	if profile.Show.Bio {
		bio := snap.Bio
		view.Bio = &bio
	}
	if profile.Show.Location {
		location := snap.Location
		view.Location = &location
	}

	view.Stats.Following = snap.Following
	if profile.Show.Repos {
		repos := snap.Repos
		view.Stats.Repos = &repos
	}
	if profile.Show.Stars {
		stars := snap.TotalStars
		view.Stats.Stars = &stars
	}
	if profile.Show.Followers {
		followers := snap.Followers
		view.Stats.Followers = &followers
	}

	if profile.Show.Repos {
		for _, owner := range snap.Owners {
			if _, hidden := excluded[strings.ToLower(owner.Owner)]; hidden {
				continue
			}
			view.ReposByOrg = append(view.ReposByOrg, owner)
		}

		limit := profile.MaxRepos
		if limit <= 0 {
			limit = models.DefaultMaxRepos
		}
		for _, repo := range snap.TopRepos {
			if len(view.TopRepos) >= limit {
				break
			}
			if _, hidden := excluded[strings.ToLower(repo.Owner)]; hidden {
				continue
			}
			if _, hidden := excluded[strings.ToLower(repo.FullName)]; hidden {
				continue
			}
			view.TopRepos = append(view.TopRepos, repo)
		}
	}

	if profile.Show.Languages {
		view.Languages = append(view.Languages, snap.Languages...)
	}

	if profile.Show.Contributions && snap.Contributions != nil {
		view.Contributions = maskPrivateRepos(snap.Contributions)
	}

	return view
}

// maskPrivateRepos copies the contribution stats with private repository
// names hidden; the commit counts stay.
func maskPrivateRepos(c *models.ContributionStats) *models.ContributionStats {
	out := *c
	out.CommitsByRepo = make([]models.RepoCommits, len(c.CommitsByRepo))
	for i, rc := range c.CommitsByRepo {
		if rc.Private {
			rc.Repo = privateRepoMask
		}
		out.CommitsByRepo[i] = rc
	}
	return &out
}

func displayName(profile *models.Profile, snap *models.Snapshot) string {
	if profile.DisplayName != "" {
		return profile.DisplayName
	}
	if snap.Name != "" {
		return snap.Name
	}
	return profile.Username
}

func sortedEntries(set map[string]struct{}) []string {
	entries := make([]string, 0, len(set))
	for entry := range set {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries
}
