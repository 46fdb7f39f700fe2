package pipeline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"

	"stockcount/internal"
	"stockcount/internal/util"
)

const DefaultTimezone = "Africa/Cairo"

var (
	reNumeric  = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
)

// maxExcelSerial is 9999-12-31, the last date a workbook can hold.
const maxExcelSerial = 2958465

// Layouts accepted for full dates. Slashes are read month first, dashes
// with a leading day are read day first (the DD-MM-YYYY form used in report names).
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"2-1-2006",
	"2.1.2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	return loc, nil
}

// Today is the calendar date of now as observed in loc.
func Today(now time.Time, loc *time.Location) internal.Date {
	return internal.DateOf(now.In(loc))
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NormalizeDate resolves a raw schedule cell. now must already be expressed
// in the report timezone; a bare day number takes its month and year.
func NormalizeDate(rowNo int, raw string, now time.Time) (internal.Date, error) {
	s := util.NormalizeSpaces(raw)
	if s == "" {
		return internal.Date{}, &InvalidDateError{RowNo: rowNo, Value: raw, Reason: "empty"}
	}

	if reNumeric.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return internal.Date{}, &InvalidDateError{RowNo: rowNo, Value: raw, Reason: err.Error()}
		}
		return fromNumber(rowNo, raw, n, now)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return internal.DateOf(t), nil
		}
	}
	return internal.Date{}, &InvalidDateError{RowNo: rowNo, Value: raw, Reason: "not a date or a day of month"}
}

func fromNumber(rowNo int, raw string, n float64, now time.Time) (internal.Date, error) {
	whole := math.Trunc(n)
	switch {
	case n >= 1 && n <= 31:
		if whole != n {
			return internal.Date{}, &InvalidDateError{RowNo: rowNo, Value: raw, Reason: "day of month must be a whole number"}
		}
		year, month, _ := now.Date()
		day := int(whole)
		if day > DaysIn(year, month) {
			return internal.Date{}, &InvalidDateError{
				RowNo:  rowNo,
				Value:  raw,
				Reason: fmt.Sprintf("day %d does not exist in %s %d", day, month, year),
			}
		}
		return internal.Date{Year: year, Month: month, Day: day}, nil
	case n > 31 && n <= maxExcelSerial:
		return internal.DateOf(excelEpoch.AddDate(0, 0, int(whole))), nil
	default:
		return internal.Date{}, &InvalidDateError{RowNo: rowNo, Value: raw, Reason: "number is neither a day of month nor a date serial"}
	}
}
