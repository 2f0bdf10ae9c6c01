package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"image-catalog/internal/health"
)

func newTestDatabase(t *testing.T) (*Database, *health.ServiceState) {
	t.Helper()

	state := health.NewServiceState("test")
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), state)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, state
}

func TestAddAndGetBasePaths(t *testing.T) {
	db, _ := newTestDatabase(t)

	id, err := db.AddBasePath("/photos")
	if err != nil {
		t.Fatalf("AddBasePath() error: %v", err)
	}
	if id == 0 {
		t.Error("AddBasePath() returned id 0")
	}

	if _, err := db.AddBasePath("/library"); err != nil {
		t.Fatal(err)
	}

	paths, err := db.GetBasePaths()
	if err != nil {
		t.Fatalf("GetBasePaths() error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d base paths, want 2", len(paths))
	}
}

func TestAddBasePathDuplicate(t *testing.T) {
	db, state := newTestDatabase(t)

	if _, err := db.AddBasePath("/photos"); err != nil {
		t.Fatal(err)
	}

	_, err := db.AddBasePath("/photos")
	if !errors.Is(err, ErrBasePathExists) {
		t.Errorf("duplicate AddBasePath() = %v, want ErrBasePathExists", err)
	}

	// A duplicate is an application outcome, not a storage fault.
	if got := state.DatabaseHealth().Level; got != health.Healthy {
		t.Errorf("database health after duplicate = %v, want Healthy", got)
	}
}

func TestFileRecordRoundTrip(t *testing.T) {
	db, _ := newTestDatabase(t)

	baseID, err := db.AddBasePath("/photos")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.AddFileRecord(baseID, "2024", "img1.jpg", "abc123", 1000); err != nil {
		t.Fatalf("AddFileRecord() error: %v", err)
	}

	records, err := db.GetFileRecordsForDirectory(baseID, "2024")
	if err != nil {
		t.Fatalf("GetFileRecordsForDirectory() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Filename != "img1.jpg" || rec.Hash != "abc123" || rec.LastModified != 1000 {
		t.Errorf("record = %+v", rec)
	}

	if err := db.UpdateFileRecord(baseID, "2024", "img1.jpg", "def456", 2000); err != nil {
		t.Fatalf("UpdateFileRecord() error: %v", err)
	}

	records, err = db.GetFileRecordsForDirectory(baseID, "2024")
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Hash != "def456" || records[0].LastModified != 2000 {
		t.Errorf("record after update = %+v", records[0])
	}
}

func TestAddFileRecordIsUpsert(t *testing.T) {
	db, _ := newTestDatabase(t)

	baseID, err := db.AddBasePath("/photos")
	if err != nil {
		t.Fatal(err)
	}

	// Two adds for the same key must both apply without error.
	if _, err := db.AddFileRecord(baseID, "2024", "img1.jpg", "aaa", 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddFileRecord(baseID, "2024", "img1.jpg", "bbb", 1500); err != nil {
		t.Fatalf("second AddFileRecord() error: %v", err)
	}

	records, err := db.GetFileRecordsForDirectory(baseID, "2024")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after duplicate add, want 1", len(records))
	}
	if records[0].Hash != "bbb" || records[0].LastModified != 1500 {
		t.Errorf("record = %+v, want latest values", records[0])
	}
}

func TestGetFileRecordsScopedToDirectory(t *testing.T) {
	db, _ := newTestDatabase(t)

	baseID, err := db.AddBasePath("/photos")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.AddFileRecord(baseID, "2024", "a.jpg", "h1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddFileRecord(baseID, "2025", "b.jpg", "h2", 2); err != nil {
		t.Fatal(err)
	}

	records, err := db.GetFileRecordsForDirectory(baseID, "2024")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Filename != "a.jpg" {
		t.Errorf("records = %+v, want only a.jpg", records)
	}
}

func TestStorageFailureDegradesHealth(t *testing.T) {
	db, state := newTestDatabase(t)

	// Closing the handle forces every subsequent statement to fail.
	db.Close()

	if _, err := db.GetBasePaths(); err == nil {
		t.Fatal("GetBasePaths() on closed database: expected error")
	}

	got := state.DatabaseHealth()
	if got.Level != health.FullyDegraded {
		t.Errorf("database health = %v, want FullyDegraded", got.Level)
	}
	if got.Reason == "" {
		t.Error("degraded health has no reason string")
	}
}
