package storage

import (
	"path/filepath"
	"testing"

	"stockcount/internal"
)

func TestInsertAndListRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rec := internal.RunRecord{
		RunID:      "run-1",
		ReportDate: "2026-10-19",
		Products:   "products.xlsx",
		Schedule:   "schedule.csv",
		Counts:     internal.RunCounts{Products: 5, TodayRows: 2, Files: 1, InvalidDates: 1},
	}
	issues := []internal.RowIssue{
		{Table: internal.TableSchedule, RowNo: 4, Kind: internal.IssueInvalidDate, Value: "31", Message: "day 31 does not exist"},
	}
	if err := db.InsertRun(rec, map[string]float64{"totalMs": 12}, issues); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("len=%d", len(runs))
	}
	got := runs[0]
	if got.RunID != "run-1" || got.Issues != 1 || got.Counts.Products != 5 || got.Counts.InvalidDates != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}

	stored, err := db.RunIssues("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Kind != internal.IssueInvalidDate || stored[0].RowNo != 4 {
		t.Fatalf("issues=%+v", stored)
	}

	one, err := db.GetRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if one == nil || one.Products != "products.xlsx" || one.Counts.TodayRows != 2 {
		t.Fatalf("run=%+v", one)
	}
	if missing, err := db.GetRun("run-2"); err != nil || missing != nil {
		t.Fatalf("unknown run=%v err=%v", missing, err)
	}

	last, err := db.GetMetadata(LastRunKey)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || *last != "run-1" {
		t.Fatalf("last_run=%v", last)
	}
}

func TestMetadataMissingKey(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	v, err := db.GetMetadata("nope")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("expected nil, got %q", *v)
	}
	if err := db.SetMetadata("nope", "yes"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("nope", "again"); err != nil {
		t.Fatal(err)
	}
	v, err = db.GetMetadata("nope")
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != "again" {
		t.Fatalf("value=%v", v)
	}
}
