package internal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TableKind string

const (
	TableProducts TableKind = "products"
	TableSchedule TableKind = "schedule"
)

// Table is a fully materialized input: a header row plus text cells.
// Rows are padded to the header width by the loaders.
type Table struct {
	Name    string
	Sheet   string
	Headers []string
	Rows    [][]string
}

type ProductRow struct {
	RowNo             int
	NameEN            string
	BranchName        string
	Barcodes          string
	Brand             string
	AvailableQuantity string
	ActualQuantity    string
	Category          string
	CategoryDerived   bool
}

type ScheduleRow struct {
	RowNo  int
	Branch string
	Brand  string
	Date   Date
}

// Date is a calendar date without a time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as DD-MM-YYYY, the layout used in report and bundle names.
func (d Date) String() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

type MatchedEntry struct {
	Schedule   ScheduleRow
	Product    ProductRow
	Available  decimal.Decimal
	Actual     decimal.Decimal
	Difference decimal.Decimal
}

type BrandGroup struct {
	Brand   string
	Entries []MatchedEntry
}

type BranchGroup struct {
	Key        string
	BranchName string
	Brands     []*BrandGroup
}

func (b *BranchGroup) EntryCount() int {
	n := 0
	for _, g := range b.Brands {
		n += len(g.Entries)
	}
	return n
}

type IssueKind string

const (
	IssueInvalidDate     IssueKind = "INVALID_DATE"
	IssueInvalidQuantity IssueKind = "INVALID_QUANTITY"
	IssueSkippedRow      IssueKind = "SKIPPED_ROW"
)

type RowIssue struct {
	Table   TableKind `json:"table"`
	RowNo   int       `json:"row"`
	Kind    IssueKind `json:"kind"`
	Value   string    `json:"value"`
	Message string    `json:"message"`
}

type ReportFile struct {
	Branch  string
	Name    string
	Path    string
	Sheets  []string
	Entries int
}

type RunCounts struct {
	Products        int `json:"products"`
	ScheduleRows    int `json:"scheduleRows"`
	TodayRows       int `json:"todayRows"`
	UnmatchedPairs  int `json:"unmatchedPairs"`
	MatchedEntries  int `json:"matchedEntries"`
	Files           int `json:"files"`
	InvalidDates    int `json:"invalidDates"`
	InvalidQuantity int `json:"invalidQuantities"`
}

type RunRecord struct {
	ID         int
	RunID      string
	ReportDate string
	Products   string
	Schedule   string
	Counts     RunCounts
	Issues     int
	CreatedAt  string
}
