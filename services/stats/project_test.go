package stats

import (
	"testing"
	"time"

	"octoboard/models"
)

func projectProfile() *models.Profile {
	return &models.Profile{
		ID:       1,
		Username: "octocat",
		Active:   true,
		MaxRepos: models.DefaultMaxRepos,
		Theme:    models.DefaultTheme,
		Show:     models.DefaultShowFlags(),
	}
}

func projectSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Name:       "The Octocat",
		AvatarURL:  "https://avatars.example/octocat.png",
		Bio:        "Professional cat",
		Location:   "San Francisco",
		Repos:      4,
		Followers:  10,
		Following:  2,
		TotalStars: 25,
		TopRepos: []models.RepoSummary{
			{Name: "widget", FullName: "acme/widget", Stars: 12, Owner: "acme"},
			{Name: "hello-world", FullName: "octocat/hello-world", Stars: 8, Owner: "octocat"},
			{Name: "secret-sauce", FullName: "octocat/secret-sauce", Stars: 5, Owner: "octocat"},
			{Name: "gadget", FullName: "acme/gadget", Stars: 0, Owner: "acme"},
		},
		Languages: []models.LanguageCount{{Name: "Go", Count: 3}},
		Owners: []models.OwnerStats{
			{Owner: "octocat", Count: 2, Stars: 13},
			{Owner: "acme", Count: 2, Stars: 12},
		},
		Contributions: &models.ContributionStats{
			TotalCommits: 100,
			CommitsByRepo: []models.RepoCommits{
				{Repo: "octocat/hello-world", Private: false, Commits: 60},
				{Repo: "acme/internal-tool", Private: true, Commits: 40},
			},
		},
		LastSyncedAt: time.Now(),
	}
}

func TestProjectExcludesOwner(t *testing.T) {
	profile := projectProfile()
	profile.ExcludedOrgs = "Acme"
	snap := projectSnapshot()

	view := project(profile, snap)

	for _, owner := range view.ReposByOrg {
		if owner.Owner == "acme" {
			t.Fatal("excluded owner must not appear in repos_by_org")
		}
	}
	for _, repo := range view.TopRepos {
		if repo.Owner == "acme" {
			t.Fatalf("excluded owner's repo %q must not appear in top_repos", repo.FullName)
		}
	}
	// Exclusion is display-only: the cached totals still include them.
	if view.Stats.Repos == nil || *view.Stats.Repos != 4 {
		t.Fatalf("cached repo count must stay unfiltered, got %v", view.Stats.Repos)
	}
	if len(view.ExcludedOrgs) != 1 || view.ExcludedOrgs[0] != "acme" {
		t.Fatalf("unexpected excluded_orgs %v", view.ExcludedOrgs)
	}
}

func TestProjectExcludesFullRepoName(t *testing.T) {
	profile := projectProfile()
	profile.ExcludedOrgs = "octocat/secret-sauce"

	view := project(profile, projectSnapshot())

	for _, repo := range view.TopRepos {
		if repo.FullName == "octocat/secret-sauce" {
			t.Fatal("excluded repo must not appear in top_repos")
		}
	}
	if len(view.TopRepos) != 3 {
		t.Fatalf("expected 3 repos, got %d", len(view.TopRepos))
	}
}

func TestProjectDisplayCap(t *testing.T) {
	profile := projectProfile()
	profile.MaxRepos = 2

	view := project(profile, projectSnapshot())

	if len(view.TopRepos) != 2 {
		t.Fatalf("expected display cap of 2, got %d", len(view.TopRepos))
	}
	if view.TopRepos[0].FullName != "acme/widget" {
		t.Fatalf("expected star ordering preserved, got %q", view.TopRepos[0].FullName)
	}
}

func TestProjectVisibilityToggles(t *testing.T) {
	profile := projectProfile()
	profile.Show.Bio = false
	profile.Show.Location = false
	profile.Show.Repos = false
	profile.Show.Stars = false
	profile.Show.Followers = false
	profile.Show.Languages = false
	profile.Show.Contributions = false

	view := project(profile, projectSnapshot())

	if view.Bio != nil || view.Location != nil {
		t.Fatal("hidden bio/location must be null")
	}
	if view.Stats.Repos != nil || view.Stats.Stars != nil || view.Stats.Followers != nil {
		t.Fatal("hidden counters must be null")
	}
	if view.Stats.Following != 2 {
		t.Fatalf("following has no toggle, got %d", view.Stats.Following)
	}
	if len(view.TopRepos) != 0 || len(view.ReposByOrg) != 0 {
		t.Fatal("hidden repos sections must be empty")
	}
	if len(view.Languages) != 0 {
		t.Fatal("hidden languages must be empty")
	}
	if view.Contributions != nil {
		t.Fatal("hidden contributions must be null")
	}
}

func TestProjectMasksPrivateRepoNames(t *testing.T) {
	profile := projectProfile()
	snap := projectSnapshot()

	view := project(profile, snap)

	if view.Contributions == nil {
		t.Fatal("expected contributions")
	}
	if got := view.Contributions.CommitsByRepo[1].Repo; got != privateRepoMask {
		t.Fatalf("private repo name leaked: %q", got)
	}
	if view.Contributions.CommitsByRepo[1].Commits != 40 {
		t.Fatal("masking must keep the commit count")
	}
	// The cached snapshot keeps the real name.
	if snap.Contributions.CommitsByRepo[1].Repo != "acme/internal-tool" {
		t.Fatal("projection must not mutate the snapshot")
	}
}

func TestProjectNeverSyncedSnapshot(t *testing.T) {
	profile := projectProfile()

	view := project(profile, nil)

	if view.LastSync != nil {
		t.Fatal("never-synced profile must have null last_sync")
	}
	if view.Stats.Repos == nil || *view.Stats.Repos != 0 {
		t.Fatalf("expected zeroed counters, got %v", view.Stats.Repos)
	}
	if view.DisplayName != "octocat" {
		t.Fatalf("expected username fallback, got %q", view.DisplayName)
	}
	if view.TopRepos == nil || view.ReposByOrg == nil || view.Languages == nil {
		t.Fatal("sections must be empty, not null")
	}
}

func TestProjectDisplayNamePrecedence(t *testing.T) {
	profile := projectProfile()
	snap := projectSnapshot()

	if got := project(profile, snap).DisplayName; got != "The Octocat" {
		t.Fatalf("expected upstream name, got %q", got)
	}

	profile.DisplayName = "Site Mascot"
	if got := project(profile, snap).DisplayName; got != "Site Mascot" {
		t.Fatalf("expected override to win, got %q", got)
	}
}

func TestExclusionSetParsing(t *testing.T) {
	set := exclusionSet(" Acme , octocat/Secret-Sauce ,, enterprise-corp ")

	want := []string{"acme", "octocat/secret-sauce", "enterprise-corp"}
	if len(set) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), set)
	}
	for _, entry := range want {
		if _, ok := set[entry]; !ok {
			t.Fatalf("missing entry %q in %v", entry, set)
		}
	}
}
