package pipeline

import (
	"errors"
	"testing"
	"time"

	"stockcount/internal"
)

func cairo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestNormalizeDateDayOfMonth(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, cairo(t))

	got, err := NormalizeDate(2, "19", now)
	if err != nil {
		t.Fatal(err)
	}
	if got != (internal.Date{Year: 2026, Month: time.October, Day: 19}) {
		t.Fatalf("got %v", got)
	}

	got, err = NormalizeDate(3, "31", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Day != 31 || got.Month != time.October {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeDateDayOutsideMonth(t *testing.T) {
	sept := time.Date(2026, time.September, 10, 12, 0, 0, 0, cairo(t))
	_, err := NormalizeDate(4, "31", sept)
	var dateErr *InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("expected InvalidDateError, got %v", err)
	}
	if dateErr.RowNo != 4 || dateErr.Value != "31" {
		t.Fatalf("unexpected error fields: %+v", dateErr)
	}

	feb := time.Date(2026, time.February, 1, 12, 0, 0, 0, cairo(t))
	if _, err := NormalizeDate(5, "29", feb); err == nil {
		t.Fatalf("29 February 2026 should be rejected")
	}
	leap := time.Date(2028, time.February, 1, 12, 0, 0, 0, cairo(t))
	if _, err := NormalizeDate(5, "29", leap); err != nil {
		t.Fatalf("29 February 2028 should be accepted: %v", err)
	}
}

func TestNormalizeDateSerialAndLayouts(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, cairo(t))
	want := internal.Date{Year: 2026, Month: time.October, Day: 19}

	cases := []string{"46314", "46314.5", "2026-10-19", "2026-10-19 08:00:00", "10/19/2026", "19-10-2026", "19 Oct 2026", "October 19, 2026"}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			got, err := NormalizeDate(2, raw, now)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}
}

func TestNormalizeDateInvalid(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, cairo(t))
	for _, raw := range []string{"", "0", "2.5", "tomorrow", "99999999"} {
		if _, err := NormalizeDate(2, raw, now); err == nil {
			t.Fatalf("%q should be invalid", raw)
		}
	}
}

func TestTodayUsesReportTimezone(t *testing.T) {
	loc := cairo(t)
	late := time.Date(2026, time.October, 18, 23, 30, 0, 0, time.UTC)
	if got := Today(late, loc); got != (internal.Date{Year: 2026, Month: time.October, Day: 19}) {
		t.Fatalf("got %v", got)
	}
	if got := Today(late, time.UTC); got.Day != 18 {
		t.Fatalf("utc day=%d", got.Day)
	}
}

func TestDateString(t *testing.T) {
	d := internal.Date{Year: 2026, Month: time.March, Day: 5}
	if d.String() != "05-03-2026" || d.ISO() != "2026-03-05" {
		t.Fatalf("got %s / %s", d.String(), d.ISO())
	}
}
