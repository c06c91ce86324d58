package stats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"octoboard/internal/database"
	"octoboard/models"
	"octoboard/services/github"
)

// githubClient abstracts the upstream API for tests.
type githubClient interface {
	FetchUser(ctx context.Context, username string, cred github.Credential) (*github.User, error)
	ListAccessibleRepos(ctx context.Context, username string, cred github.Credential) ([]github.Repo, error)
	ListOrganizations(ctx context.Context, cred github.Credential) ([]github.Org, error)
	FetchContributions(ctx context.Context, username string, cred github.Credential) (*github.ContributionsPayload, error)
}

var _ githubClient = (*github.Client)(nil)

// Service runs the sync pipeline and serves filtered views of cached data.
type Service struct {
	profiles  *database.ProfileStore
	snapshots *database.SnapshotStore
	client    githubClient
	group     singleflight.Group
}

// NewService wires the pipeline: upstream client, aggregation and the cached
// snapshot store.
func NewService(profiles *database.ProfileStore, snapshots *database.SnapshotStore, client githubClient) *Service {
	return &Service{
		profiles:  profiles,
		snapshots: snapshots,
		client:    client,
	}
}

// Sync fetches, aggregates and caches upstream data for one profile.
// Concurrent syncs of the same profile are collapsed into one upstream run.
// A required-call failure is recorded on the snapshot row and returned; the
// previously cached data stays untouched.
func (s *Service) Sync(ctx context.Context, profile *models.Profile) error {
	_, err, _ := s.group.Do(strconv.FormatInt(profile.ID, 10), func() (any, error) {
		return nil, s.sync(ctx, profile)
	})
	return err
}

func (s *Service) sync(ctx context.Context, profile *models.Profile) error {
	cred := github.Anonymous()
	if profile.Token != "" {
		cred = github.Token(profile.Token)
	}

	user, err := s.client.FetchUser(ctx, profile.Username, cred)
	if err != nil {
		return s.fail(profile.ID, fmt.Errorf("fetch user: %w", err))
	}

	repos, err := s.client.ListAccessibleRepos(ctx, profile.Username, cred)
	if err != nil {
		return s.fail(profile.ID, fmt.Errorf("list repos: %w", err))
	}
	log.Printf("[stats] %s: %d accessible repositories", profile.Username, len(repos))

	// Membership is informational only; a failure here degrades to nothing.
	if orgs, err := s.client.ListOrganizations(ctx, cred); err != nil {
		log.Printf("[stats] %s: could not fetch organizations: %v", profile.Username, err)
	} else if len(orgs) > 0 {
		log.Printf("[stats] %s: member of %d organizations", profile.Username, len(orgs))
	}

	contrib, err := s.client.FetchContributions(ctx, profile.Username, cred)
	if err != nil {
		log.Printf("[stats] %s: could not fetch contributions: %v", profile.Username, err)
		contrib = nil
	}

	snap := Aggregate(user, repos, contrib)
	if err := s.snapshots.Replace(profile.ID, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	log.Printf("[stats] %s: sync complete, %d repos, %d stars", profile.Username, snap.Repos, snap.TotalStars)
	return nil
}

func (s *Service) fail(profileID int64, err error) error {
	if recErr := s.snapshots.RecordFailure(profileID, err.Error()); recErr != nil {
		log.Printf("[stats] record failure for profile %d: %v", profileID, recErr)
	}
	return err
}

// SyncProfile runs a manual refresh for a single profile id.
func (s *Service) SyncProfile(ctx context.Context, id int64) error {
	profile, err := s.profiles.Get(id)
	if err != nil {
		return err
	}
	return s.Sync(ctx, profile)
}

// View loads the cached snapshot for an active profile, refreshing it first
// when stale, and returns the display-filtered projection. A failed
// opportunistic refresh falls back to whatever is cached, down to a zeroed
// view for a profile that has never synced.
func (s *Service) View(ctx context.Context, id int64) (*models.PublicView, error) {
	profile, err := s.profiles.Get(id)
	if err != nil {
		return nil, err
	}
	if !profile.Active {
		return nil, database.ErrProfileNotFound
	}

	snap, err := s.snapshots.Load(id)
	if err != nil && !errors.Is(err, database.ErrNoSnapshot) {
		return nil, err
	}

	if snap.Stale(time.Now()) {
		if syncErr := s.Sync(ctx, profile); syncErr != nil {
			log.Printf("[stats] opportunistic refresh failed for %s: %v", profile.Username, syncErr)
		} else if fresh, loadErr := s.snapshots.Load(id); loadErr == nil {
			snap = fresh
		}
	}

	return project(profile, snap), nil
}

// ActiveProfiles returns every profile the scheduler should refresh.
func (s *Service) ActiveProfiles() ([]models.Profile, error) {
	return s.profiles.List(true)
}

// Configs lists active profiles for the widget selector.
func (s *Service) Configs() ([]models.ConfigSummary, error) {
	profiles, err := s.profiles.List(true)
	if err != nil {
		return nil, err
	}
	configs := make([]models.ConfigSummary, 0, len(profiles))
	for _, p := range profiles {
		name := p.DisplayName
		if name == "" {
			name = p.Username
		}
		configs = append(configs, models.ConfigSummary{ID: p.ID, Name: name, Username: p.Username})
	}
	return configs, nil
}
