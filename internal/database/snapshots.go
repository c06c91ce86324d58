package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"octoboard/models"
)

// ErrNoSnapshot is returned when a profile has never attempted a sync.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// SnapshotStore persists one cached snapshot row per profile. Data columns
// are only touched by Replace; RecordFailure writes the error slot and
// attempt timestamp alone, so the "failed sync keeps old data" invariant is
// enforced by the statement shapes rather than by caller discipline.
type SnapshotStore struct {
	conn *sql.DB
}

// NewSnapshotStore returns a store bound to conn.
func NewSnapshotStore(conn *sql.DB) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Load returns the cached snapshot for a profile, or ErrNoSnapshot when no
// sync has ever been attempted.
func (s *SnapshotStore) Load(profileID int64) (*models.Snapshot, error) {
	row := s.conn.QueryRow(`
		SELECT profile_id, name, avatar_url, bio, location, company, blog_url,
			repos, gists, followers, following, total_stars,
			top_repos_json, languages_json, owners_json, contributions_json,
			last_synced_at, last_attempt_at, last_error
		FROM snapshots WHERE profile_id = ?`, profileID)

	var snap models.Snapshot
	var topRepos, languages, owners string
	var contributions sql.NullString
	var syncedAt, attemptAt sql.NullTime

	err := row.Scan(
		&snap.ProfileID, &snap.Name, &snap.AvatarURL, &snap.Bio, &snap.Location, &snap.Company, &snap.BlogURL,
		&snap.Repos, &snap.Gists, &snap.Followers, &snap.Following, &snap.TotalStars,
		&topRepos, &languages, &owners, &contributions,
		&syncedAt, &attemptAt, &snap.LastError,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %d: %w", profileID, err)
	}

	if err := json.Unmarshal([]byte(topRepos), &snap.TopRepos); err != nil {
		return nil, fmt.Errorf("load snapshot %d: top repos: %w", profileID, err)
	}
	if err := json.Unmarshal([]byte(languages), &snap.Languages); err != nil {
		return nil, fmt.Errorf("load snapshot %d: languages: %w", profileID, err)
	}
	if err := json.Unmarshal([]byte(owners), &snap.Owners); err != nil {
		return nil, fmt.Errorf("load snapshot %d: owners: %w", profileID, err)
	}
	if contributions.Valid && contributions.String != "" {
		if err := json.Unmarshal([]byte(contributions.String), &snap.Contributions); err != nil {
			return nil, fmt.Errorf("load snapshot %d: contributions: %w", profileID, err)
		}
	}
	if syncedAt.Valid {
		snap.LastSyncedAt = syncedAt.Time
	}
	if attemptAt.Valid {
		snap.LastAttemptAt = attemptAt.Time
	}
	return &snap, nil
}

// Replace stores a freshly aggregated snapshot wholesale, stamps the
// successful sync time and clears any previous error, all in one statement.
func (s *SnapshotStore) Replace(profileID int64, snap *models.Snapshot) error {
	topRepos, err := json.Marshal(snap.TopRepos)
	if err != nil {
		return fmt.Errorf("replace snapshot %d: top repos: %w", profileID, err)
	}
	languages, err := json.Marshal(snap.Languages)
	if err != nil {
		return fmt.Errorf("replace snapshot %d: languages: %w", profileID, err)
	}
	owners, err := json.Marshal(snap.Owners)
	if err != nil {
		return fmt.Errorf("replace snapshot %d: owners: %w", profileID, err)
	}
	var contributions any
	if snap.Contributions != nil {
		buf, err := json.Marshal(snap.Contributions)
		if err != nil {
			return fmt.Errorf("replace snapshot %d: contributions: %w", profileID, err)
		}
		contributions = string(buf)
	}

	now := time.Now().UTC()
	_, err = s.conn.Exec(`
		INSERT INTO snapshots (profile_id, name, avatar_url, bio, location, company, blog_url,
			repos, gists, followers, following, total_stars,
			top_repos_json, languages_json, owners_json, contributions_json,
			last_synced_at, last_attempt_at, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(profile_id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			location = excluded.location,
			company = excluded.company,
			blog_url = excluded.blog_url,
			repos = excluded.repos,
			gists = excluded.gists,
			followers = excluded.followers,
			following = excluded.following,
			total_stars = excluded.total_stars,
			top_repos_json = excluded.top_repos_json,
			languages_json = excluded.languages_json,
			owners_json = excluded.owners_json,
			contributions_json = excluded.contributions_json,
			last_synced_at = excluded.last_synced_at,
			last_attempt_at = excluded.last_attempt_at,
			last_error = ''`,
		profileID, snap.Name, snap.AvatarURL, snap.Bio, snap.Location, snap.Company, snap.BlogURL,
		snap.Repos, snap.Gists, snap.Followers, snap.Following, snap.TotalStars,
		string(topRepos), string(languages), string(owners), contributions,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("replace snapshot %d: %w", profileID, err)
	}
	return nil
}

// RecordFailure stamps the attempt time and error message without touching
// the cached data columns or the successful-sync timestamp.
func (s *SnapshotStore) RecordFailure(profileID int64, message string) error {
	now := time.Now().UTC()
	_, err := s.conn.Exec(`
		INSERT INTO snapshots (profile_id, last_attempt_at, last_error)
		VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			last_attempt_at = excluded.last_attempt_at,
			last_error = excluded.last_error`,
		profileID, now, message,
	)
	if err != nil {
		return fmt.Errorf("record failure %d: %w", profileID, err)
	}
	return nil
}

// IsStale reports whether a read should attempt a refresh before serving.
func (s *SnapshotStore) IsStale(profileID int64) (bool, error) {
	snap, err := s.Load(profileID)
	if errors.Is(err, ErrNoSnapshot) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return snap.Stale(time.Now()), nil
}
