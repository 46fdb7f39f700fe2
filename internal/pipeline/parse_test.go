package pipeline

import (
	"errors"
	"testing"
	"time"

	"stockcount/internal"
)

func TestParseProductsCategory(t *testing.T) {
	withCategory := internal.Table{
		Headers: []string{"name_en", "branch_name", "barcodes", "brand", "available_quantity", "actual_quantity", "Category"},
		Rows: [][]string{
			{"Milk 1L", "Downtown", "111", "Dairy", "10", "7", " Fresh "},
			{"", "", "", "", "", "", ""},
			{"Cheese", "Downtown", "222", "Dairy", "3", "3", ""},
		},
	}
	rows, err := ParseProducts(withCategory)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0].Category != " Fresh " || rows[0].CategoryDerived {
		t.Fatalf("category should be verbatim, got %q", rows[0].Category)
	}
	if rows[1].RowNo != 4 || rows[1].Category != "" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}

	withoutCategory := internal.Table{
		Headers: []string{"name_en", "branch_name", "barcodes", "brand", "available_quantity", "actual_quantity"},
		Rows:    [][]string{{"Milk 1L", "Downtown", "111", "Dairy", "10", "7"}},
	}
	rows, err = ParseProducts(withoutCategory)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Category != "Dairy" || !rows[0].CategoryDerived {
		t.Fatalf("derived category=%q", rows[0].Category)
	}
}

func TestParseProductsMissingBrand(t *testing.T) {
	table := internal.Table{
		Headers: []string{"name_en", "branch_name", "barcodes", "available_quantity", "actual_quantity"},
		Rows:    [][]string{{"Milk 1L", "Downtown", "111", "10", "7"}},
	}
	_, err := ParseProducts(table)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != ColBrand {
		t.Fatalf("missing=%v", missing.Missing)
	}
}

func TestParseScheduleRowErrors(t *testing.T) {
	now := time.Date(2026, time.September, 15, 12, 0, 0, 0, cairo(t))
	table := internal.Table{
		Headers: []string{"Branch", "Date", "Brand"},
		Rows: [][]string{
			{"Downtown", "15", "Dairy"},
			{"Downtown", "31", "Snacks"},
			{"", "15", "Dairy"},
			{"", "", ""},
			{"Uptown", "15", "Dairy; Bakery"},
		},
	}
	rows, rowErrs, err := ParseSchedule(table, now, ScheduleOptions{SplitBrandCells: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%+v", rows)
	}
	if rows[1].Brand != "Dairy" || rows[2].Brand != "Bakery" || rows[2].RowNo != 6 {
		t.Fatalf("brand cell not split: %+v", rows[1:])
	}
	if len(rowErrs) != 2 {
		t.Fatalf("rowErrs=%v", rowErrs)
	}
	issues := Issues(rowErrs)
	if issues[0].Kind != internal.IssueInvalidDate || issues[0].RowNo != 3 {
		t.Fatalf("first issue=%+v", issues[0])
	}
	if issues[1].Kind != internal.IssueSkippedRow || issues[1].RowNo != 4 {
		t.Fatalf("second issue=%+v", issues[1])
	}
}

func TestParseScheduleKeepsBrandCellWhenSplitDisabled(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, cairo(t))
	table := internal.Table{
		Headers: []string{"branch", "date", "brand"},
		Rows:    [][]string{{"Downtown", "19", "Procter/Gamble"}},
	}
	rows, _, err := ParseSchedule(table, now, ScheduleOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Brand != "Procter/Gamble" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestFilterTodayKeepsOrder(t *testing.T) {
	today := internal.Date{Year: 2026, Month: time.October, Day: 19}
	other := internal.Date{Year: 2026, Month: time.October, Day: 20}
	rows := []internal.ScheduleRow{
		{RowNo: 2, Branch: "B", Date: today},
		{RowNo: 3, Branch: "A", Date: other},
		{RowNo: 4, Branch: "A", Date: today},
	}
	got := FilterToday(rows, today)
	if len(got) != 2 || got[0].RowNo != 2 || got[1].RowNo != 4 {
		t.Fatalf("got %+v", got)
	}
	if len(FilterToday(nil, today)) != 0 {
		t.Fatalf("expected empty")
	}
}
