package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octoboard/models"
	"octoboard/services/github"
)

func makeRepo(owner, name string, stars int, language string) github.Repo {
	var r github.Repo
	r.Name = name
	r.FullName = owner + "/" + name
	r.Stars = stars
	r.Language = language
	r.Owner.Login = owner
	return r
}

func TestAggregateUnauthenticatedScenario(t *testing.T) {
	user := &github.User{Name: "The Octocat", PublicGists: 2, Followers: 10, Following: 4}
	repos := []github.Repo{
		makeRepo("octocat", "plain", 0, ""),
		makeRepo("octocat", "starred", 10, "Go"),
		makeRepo("octocat", "older", 3, "Go"),
		makeRepo("octocat", "scripts", 0, "Python"),
		makeRepo("octocat", "notes", 0, ""),
	}

	snap := Aggregate(user, repos, nil)

	assert.Equal(t, 5, snap.Repos)
	assert.Equal(t, 13, snap.TotalStars)
	require.Len(t, snap.TopRepos, 5)
	assert.Equal(t, "starred", snap.TopRepos[0].Name)
	assert.Equal(t, "older", snap.TopRepos[1].Name)

	// Repos without a language stay out of the histogram but count in totals.
	require.Len(t, snap.Languages, 2)
	assert.Equal(t, models.LanguageCount{Name: "Go", Count: 2}, snap.Languages[0])
	assert.Equal(t, models.LanguageCount{Name: "Python", Count: 1}, snap.Languages[1])

	assert.Nil(t, snap.Contributions)
}

func TestAggregateIdempotent(t *testing.T) {
	user := &github.User{Name: "The Octocat", Followers: 10}
	repos := []github.Repo{
		makeRepo("octocat", "a", 5, "Go"),
		makeRepo("acme", "b", 9, "Rust"),
	}
	contrib := &github.ContributionsPayload{TotalCommitContributions: 7}

	first := Aggregate(user, repos, contrib)
	second := Aggregate(user, repos, contrib)

	assert.Equal(t, first, second, "same inputs must aggregate identically")
}

func TestAggregateTopRepoPool(t *testing.T) {
	user := &github.User{}
	var repos []github.Repo
	total := 0
	for i := 0; i < 60; i++ {
		repos = append(repos, makeRepo("octocat", fmt.Sprintf("repo-%d", i), i, "Go"))
		total += i
	}

	snap := Aggregate(user, repos, nil)

	assert.Len(t, snap.TopRepos, models.TopRepoPoolSize)
	assert.Equal(t, 60, snap.Repos)
	assert.Equal(t, total, snap.TotalStars, "star total covers the whole list, not just the pool")
	assert.Equal(t, 59, snap.TopRepos[0].Stars)

	poolStars := 0
	for _, r := range snap.TopRepos {
		poolStars += r.Stars
	}
	assert.Less(t, poolStars, snap.TotalStars)
}

func TestAggregateSmallListPoolEqualsTotal(t *testing.T) {
	user := &github.User{}
	repos := []github.Repo{
		makeRepo("octocat", "a", 4, "Go"),
		makeRepo("octocat", "b", 6, "Go"),
	}

	snap := Aggregate(user, repos, nil)

	poolStars := 0
	for _, r := range snap.TopRepos {
		poolStars += r.Stars
	}
	assert.Equal(t, snap.TotalStars, poolStars, "pool covers the full list when it fits")
}

func TestLanguageHistogramTruncationAndTies(t *testing.T) {
	var repos []github.Repo
	// Nine languages, one repo each; ties must keep encounter order.
	names := []string{"Go", "Rust", "Python", "Ruby", "C", "Zig", "Elixir", "Haskell", "Lua"}
	for i, lang := range names {
		repos = append(repos, makeRepo("octocat", fmt.Sprintf("repo-%d", i), 0, lang))
	}

	languages := languageHistogram(repos)

	require.Len(t, languages, models.TopLanguageCount)
	for i, lang := range names[:models.TopLanguageCount] {
		assert.Equal(t, lang, languages[i].Name)
	}
}

func TestOwnerStatsGrouping(t *testing.T) {
	repos := []github.Repo{
		makeRepo("acme", "one", 1, "Go"),
		makeRepo("octocat", "two", 10, "Go"),
		makeRepo("acme", "three", 2, "Go"),
		makeRepo("acme", "four", 0, "Go"),
	}

	owners := ownerStats(repos)

	require.Len(t, owners, 2)
	assert.Equal(t, models.OwnerStats{Owner: "acme", Count: 3, Stars: 3}, owners[0])
	assert.Equal(t, models.OwnerStats{Owner: "octocat", Count: 1, Stars: 10}, owners[1])
}

func TestFlattenContributions(t *testing.T) {
	payload := &github.ContributionsPayload{
		TotalCommitContributions:            321,
		TotalPullRequestContributions:       45,
		TotalIssueContributions:             12,
		TotalPullRequestReviewContributions: 7,
		TotalRepositoryContributions:        4,
		RestrictedContributionsCount:        99,
	}
	payload.ContributionCalendar.TotalContributions = 484

	// 53 weeks of 7 days overflows the 365-day cap by 6.
	day := 0
	for w := 0; w < 53; w++ {
		var week github.CalendarWeek
		for d := 0; d < 7; d++ {
			week.ContributionDays = append(week.ContributionDays, github.CalendarDay{
				Date:              fmt.Sprintf("day-%03d", day),
				ContributionCount: day,
				ContributionLevel: "NONE",
			})
			day++
		}
		payload.ContributionCalendar.Weeks = append(payload.ContributionCalendar.Weeks, week)
	}

	for i := 0; i < 25; i++ {
		var rc github.RepoContribution
		rc.Repository.NameWithOwner = fmt.Sprintf("octocat/repo-%d", i)
		rc.Contributions.TotalCount = i // repo-0 has zero commits and must drop out
		payload.CommitContributionsByRepository = append(payload.CommitContributionsByRepository, rc)
	}

	stats := flattenContributions(payload)

	assert.Equal(t, 321, stats.TotalCommits)
	assert.Equal(t, 99, stats.RestrictedContributions)
	assert.Equal(t, 484, stats.TotalContributions)
	assert.Equal(t, contributionNote, stats.Note)

	require.Len(t, stats.Days, models.CalendarDays)
	assert.Equal(t, "day-006", stats.Days[0].Date, "truncation keeps the most recent days")
	assert.Equal(t, "day-370", stats.Days[len(stats.Days)-1].Date)

	require.Len(t, stats.CommitsByRepo, models.TopCommitRepoCount)
	assert.Equal(t, "octocat/repo-24", stats.CommitsByRepo[0].Repo)
	assert.Equal(t, 24, stats.CommitsByRepo[0].Commits)
	for _, rc := range stats.CommitsByRepo {
		assert.Positive(t, rc.Commits)
	}
}
