package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"octoboard/models"
)

// ErrProfileNotFound is returned for lookups of unknown profile ids.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore persists tracked profile configurations.
type ProfileStore struct {
	conn *sql.DB
}

// NewProfileStore returns a store bound to conn.
func NewProfileStore(conn *sql.DB) *ProfileStore {
	return &ProfileStore{conn: conn}
}

const profileColumns = `id, name, display_name, username, token, excluded_orgs, active, max_repos, theme,
	show_avatar, show_bio, show_location, show_repos, show_stars, show_followers, show_languages, show_contributions,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Username, &p.Token, &p.ExcludedOrgs, &p.Active, &p.MaxRepos, &p.Theme,
		&p.Show.Avatar, &p.Show.Bio, &p.Show.Location, &p.Show.Repos, &p.Show.Stars, &p.Show.Followers,
		&p.Show.Languages, &p.Show.Contributions,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns one profile by id.
func (s *ProfileStore) Get(id int64) (*models.Profile, error) {
	row := s.conn.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, err)
	}
	return p, nil
}

// List returns profiles ordered by id, optionally restricted to active ones.
func (s *ProfileStore) List(activeOnly bool) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Create inserts a new profile and returns it with its assigned id.
func (s *ProfileStore) Create(p *models.Profile) (*models.Profile, error) {
	now := time.Now().UTC()
	res, err := s.conn.Exec(`
		INSERT INTO profiles (name, display_name, username, token, excluded_orgs, active, max_repos, theme,
			show_avatar, show_bio, show_location, show_repos, show_stars, show_followers, show_languages, show_contributions,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.DisplayName, p.Username, p.Token, p.ExcludedOrgs, p.Active, p.MaxRepos, p.Theme,
		p.Show.Avatar, p.Show.Bio, p.Show.Location, p.Show.Repos, p.Show.Stars, p.Show.Followers,
		p.Show.Languages, p.Show.Contributions,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	created := *p
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// Update rewrites a profile's configuration in place.
func (s *ProfileStore) Update(p *models.Profile) error {
	res, err := s.conn.Exec(`
		UPDATE profiles SET name = ?, display_name = ?, username = ?, token = ?, excluded_orgs = ?, active = ?,
			max_repos = ?, theme = ?,
			show_avatar = ?, show_bio = ?, show_location = ?, show_repos = ?, show_stars = ?, show_followers = ?,
			show_languages = ?, show_contributions = ?,
			updated_at = ?
		WHERE id = ?`,
		p.Name, p.DisplayName, p.Username, p.Token, p.ExcludedOrgs, p.Active,
		p.MaxRepos, p.Theme,
		p.Show.Avatar, p.Show.Bio, p.Show.Location, p.Show.Repos, p.Show.Stars, p.Show.Followers,
		p.Show.Languages, p.Show.Contributions,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Delete removes a profile and, via cascade, its cached snapshot.
func (s *ProfileStore) Delete(id int64) error {
	res, err := s.conn.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
