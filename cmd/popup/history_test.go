package main

import (
	"testing"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/database"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/testutil"
)

func TestShowLedgerInfoCountsDryRuns(t *testing.T) {
	db := testutil.TestLedger(t)

	testutil.RequireNoError(t, db.RecordUpload(&database.Upload{SampleID: "S1", Action: "created", StatusCode: 201, OK: true}), "record upload")
	testutil.RequireNoError(t, db.RecordUpload(&database.Upload{SampleID: "S1", DryRun: true}), "record dry run")

	savedQuiet := quiet
	quiet = true
	t.Cleanup(func() { quiet = savedQuiet })

	if err := showLedgerInfo(db); err != nil {
		t.Fatalf("showLedgerInfo() error = %v", err)
	}

	attempts, err := db.CountTable("uploads")
	testutil.RequireNoError(t, err, "count uploads")
	testutil.AssertEqual(t, attempts, int64(2), "attempts")

	info, err := db.GetInfo()
	testutil.RequireNoError(t, err, "ledger info")
	testutil.AssertEqual(t, info.Uploads, int64(1), "uploads excluding dry runs")
}
