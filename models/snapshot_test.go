package models

import (
	"testing"
	"time"
)

func TestSnapshotStaleBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	fresh := &Snapshot{LastSyncedAt: now.Add(-59 * time.Minute)}
	if fresh.Stale(now) {
		t.Fatal("expected snapshot synced 59 minutes ago to be fresh")
	}

	stale := &Snapshot{LastSyncedAt: now.Add(-61 * time.Minute)}
	if !stale.Stale(now) {
		t.Fatal("expected snapshot synced 61 minutes ago to be stale")
	}
}

func TestSnapshotStaleWhenNeverSynced(t *testing.T) {
	now := time.Now()

	var nilSnap *Snapshot
	if !nilSnap.Stale(now) {
		t.Fatal("expected nil snapshot to be stale")
	}

	if !(&Snapshot{}).Stale(now) {
		t.Fatal("expected zero snapshot to be stale")
	}
}

func TestSnapshotStaleIgnoresFailedAttempts(t *testing.T) {
	now := time.Now()

	snap := &Snapshot{
		LastSyncedAt:  now.Add(-2 * time.Hour),
		LastAttemptAt: now.Add(-time.Minute),
		LastError:     "github upstream unavailable",
	}
	if !snap.Stale(now) {
		t.Fatal("expected recent failed attempt not to reset the staleness clock")
	}
}
