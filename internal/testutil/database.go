package testutil

import (
	"path/filepath"
	"testing"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/database"
)

// TestLedger creates an upload ledger in a temporary directory that is
// closed with the test.
func TestLedger(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "uploads.db"))
	if err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
