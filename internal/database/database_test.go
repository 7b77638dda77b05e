package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temporary test database
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "popup-db-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(dir, "uploads.db")
	db, err := Initialize(dbPath)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to initialize database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(dir)
	}

	return db, cleanup
}

func TestInitialize(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if db == nil {
		t.Fatal("expected non-nil database")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if filepath.Base(db.Path()) != "uploads.db" {
		t.Errorf("unexpected path %q", db.Path())
	}
}

func TestInitializeInvalidPath(t *testing.T) {
	_, err := Initialize("/nonexistent/path/uploads.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestRecordAndListUploads(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	uploads := []*Upload{
		{SampleID: "S1", Action: "created", StatusCode: 201, OK: true, QC: "unprocessed", UploadedAt: base},
		{SampleID: "S2", Action: "created", StatusCode: 503, Retryable: true, Error: "unexpected status 503", UploadedAt: base.Add(time.Minute)},
		{SampleID: "S1", Action: "updated", StatusCode: 200, OK: true, QC: "failed", Spike: "Bacillus subtilis",
			Contaminants: 1, Duration: 1500 * time.Millisecond, UploadedAt: base.Add(2 * time.Minute)},
	}
	for _, u := range uploads {
		if err := db.RecordUpload(u); err != nil {
			t.Fatalf("RecordUpload failed: %v", err)
		}
		if u.ID == "" {
			t.Error("expected an id to be assigned")
		}
	}

	all, err := db.ListUploads("", 0)
	if err != nil {
		t.Fatalf("ListUploads failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 uploads, got %d", len(all))
	}
	if all[0].ID != uploads[2].ID {
		t.Errorf("expected newest first, got %s", all[0].SampleID)
	}

	s1, err := db.ListUploads("S1", 0)
	if err != nil {
		t.Fatalf("ListUploads failed: %v", err)
	}
	if len(s1) != 2 {
		t.Errorf("expected 2 uploads for S1, got %d", len(s1))
	}

	last, err := db.LastUpload("S1")
	if err != nil {
		t.Fatalf("LastUpload failed: %v", err)
	}
	if last == nil {
		t.Fatal("expected a last upload")
	}
	if last.Action != "updated" || !last.OK || last.Spike != "Bacillus subtilis" || last.Contaminants != 1 {
		t.Errorf("unexpected last upload %+v", last)
	}
	if last.Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s duration, got %v", last.Duration)
	}
	if !last.UploadedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected timestamp %v", last.UploadedAt)
	}

	limited, err := db.ListUploads("", 1)
	if err != nil {
		t.Fatalf("ListUploads failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestLastUploadUnknownSample(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	last, err := db.LastUpload("nope")
	if err != nil {
		t.Fatalf("LastUpload failed: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil, got %+v", last)
	}
}

func TestGetInfo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, u := range []*Upload{
		{SampleID: "S1", OK: true},
		{SampleID: "S1", OK: false},
		{SampleID: "S2", OK: true},
		{SampleID: "S3", DryRun: true},
	} {
		if err := db.RecordUpload(u); err != nil {
			t.Fatalf("RecordUpload failed: %v", err)
		}
	}

	info, err := db.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.Uploads != 3 || info.Samples != 2 || info.Succeeded != 2 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestCountTable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.RecordUpload(&Upload{SampleID: "S1"}); err != nil {
		t.Fatalf("RecordUpload failed: %v", err)
	}

	count, err := db.CountTable("uploads")
	if err != nil {
		t.Fatalf("CountTable failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestCountTableInvalidTable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.CountTable("uploads; DROP TABLE uploads")
	if !errors.Is(err, ErrInvalidTableName) {
		t.Errorf("expected ErrInvalidTableName, got %v", err)
	}
}
