package database

import (
	"path/filepath"
	"testing"

	"octoboard/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestProfile(t *testing.T, db *DB) *models.Profile {
	t.Helper()
	profile, err := db.Profiles.Create(&models.Profile{
		Name:     "Personal",
		Username: "octocat",
		Active:   true,
		MaxRepos: models.DefaultMaxRepos,
		Theme:    models.DefaultTheme,
		Show:     models.DefaultShowFlags(),
	})
	if err != nil {
		t.Fatalf("create test profile: %v", err)
	}
	return profile
}
