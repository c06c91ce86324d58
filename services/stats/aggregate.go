package stats

import (
	"sort"

	"octoboard/models"
	"octoboard/services/github"
)

// contributionNote explains why the calendar only covers one year.
const contributionNote = "Data is for the last 12 months (GitHub limitation)"

// Aggregate derives the cached data fields from one sync's raw fetch
// results. It never applies display configuration: the snapshot always holds
// the unfiltered union of everything the credential could see, so changing
// display settings does not require a re-sync.
func Aggregate(user *github.User, repos []github.Repo, contrib *github.ContributionsPayload) *models.Snapshot {
	snap := &models.Snapshot{
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
		Location:  user.Location,
		Company:   user.Company,
		BlogURL:   user.Blog,
		Repos:     len(repos),
		Gists:     user.PublicGists,
		Followers: user.Followers,
		Following: user.Following,
	}
	for _, r := range repos {
		snap.TotalStars += r.Stars
	}

	snap.TopRepos = topRepos(repos)
	snap.Languages = languageHistogram(repos)
	snap.Owners = ownerStats(repos)
	if contrib != nil {
		snap.Contributions = flattenContributions(contrib)
	}
	return snap
}

// topRepos sorts by star count descending and keeps the display pool, which
// is larger than any per-profile cap.
func topRepos(repos []github.Repo) []models.RepoSummary {
	sorted := make([]github.Repo, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stars > sorted[j].Stars })
	if len(sorted) > models.TopRepoPoolSize {
		sorted = sorted[:models.TopRepoPoolSize]
	}

	out := make([]models.RepoSummary, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, models.RepoSummary{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Language:    r.Language,
			URL:         r.URL,
			UpdatedAt:   r.UpdatedAt,
			Owner:       r.Owner.Login,
		})
	}
	return out
}

// languageHistogram counts repositories per language. Repositories without a
// language stay out of the histogram but still count toward the totals. Ties
// keep first-encounter order.
func languageHistogram(repos []github.Repo) []models.LanguageCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		if _, seen := counts[r.Language]; !seen {
			order = append(order, r.Language)
		}
		counts[r.Language]++
	}

	out := make([]models.LanguageCount, 0, len(order))
	for _, lang := range order {
		out = append(out, models.LanguageCount{Name: lang, Count: counts[lang]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > models.TopLanguageCount {
		out = out[:models.TopLanguageCount]
	}
	return out
}

// ownerStats groups the full repository list by owner login and accumulates
// counts and star sums, most repositories first.
func ownerStats(repos []github.Repo) []models.OwnerStats {
	index := make(map[string]int)
	out := make([]models.OwnerStats, 0)
	for _, r := range repos {
		owner := r.Owner.Login
		if owner == "" {
			owner = "unknown"
		}
		i, seen := index[owner]
		if !seen {
			i = len(out)
			index[owner] = i
			out = append(out, models.OwnerStats{Owner: owner})
		}
		out[i].Count++
		out[i].Stars += r.Stars
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// flattenContributions turns the nested week/day calendar into a flat day
// sequence capped at the trailing year, and ranks repositories by commit
// count.
func flattenContributions(p *github.ContributionsPayload) *models.ContributionStats {
	stats := &models.ContributionStats{
		TotalCommits:            p.TotalCommitContributions,
		TotalPRs:                p.TotalPullRequestContributions,
		TotalIssues:             p.TotalIssueContributions,
		TotalReviews:            p.TotalPullRequestReviewContributions,
		TotalRepoContributions:  p.TotalRepositoryContributions,
		RestrictedContributions: p.RestrictedContributionsCount,
		TotalContributions:      p.ContributionCalendar.TotalContributions,
		Note:                    contributionNote,
	}

	var days []models.ContributionDay
	for _, week := range p.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, models.ContributionDay{
				Date:  day.Date,
				Count: day.ContributionCount,
				Level: day.ContributionLevel,
			})
		}
	}
	if len(days) > models.CalendarDays {
		days = days[len(days)-models.CalendarDays:]
	}
	stats.Days = days

	var commits []models.RepoCommits
	for _, rc := range p.CommitContributionsByRepository {
		if rc.Contributions.TotalCount <= 0 {
			continue
		}
		commits = append(commits, models.RepoCommits{
			Repo:    rc.Repository.NameWithOwner,
			Private: rc.Repository.IsPrivate,
			Commits: rc.Contributions.TotalCount,
		})
	}
	sort.SliceStable(commits, func(i, j int) bool { return commits[i].Commits > commits[j].Commits })
	if len(commits) > models.TopCommitRepoCount {
		commits = commits[:models.TopCommitRepoCount]
	}
	stats.CommitsByRepo = commits

	return stats
}
