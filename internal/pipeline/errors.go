package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"stockcount/internal"
)

// MissingColumnError lists every required field a table lacks. It is fatal
// for the whole run.
type MissingColumnError struct {
	Table   internal.TableKind
	Missing []string
	Found   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s file is missing required columns: %s (found: %s)",
		e.Table, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

type InvalidDateError struct {
	RowNo  int
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("schedule row %d: invalid date %q: %s", e.RowNo, e.Value, e.Reason)
}

type InvalidQuantityError struct {
	RowNo int
	Field string
	Value string
	Err   error
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("products row %d: %s %q is not numeric", e.RowNo, e.Field, e.Value)
}

func (e *InvalidQuantityError) Unwrap() error { return e.Err }

// SkippedRowError marks a schedule row without a branch or a brand.
type SkippedRowError struct {
	RowNo  int
	Reason string
}

func (e *SkippedRowError) Error() string {
	return fmt.Sprintf("schedule row %d skipped: %s", e.RowNo, e.Reason)
}

// Issue converts a per-row error into the record kept for the caller and the ledger.
func Issue(err error) internal.RowIssue {
	var (
		dateErr *InvalidDateError
		qtyErr  *InvalidQuantityError
		skipErr *SkippedRowError
	)
	switch {
	case errors.As(err, &dateErr):
		return internal.RowIssue{Table: internal.TableSchedule, RowNo: dateErr.RowNo, Kind: internal.IssueInvalidDate, Value: dateErr.Value, Message: err.Error()}
	case errors.As(err, &qtyErr):
		return internal.RowIssue{Table: internal.TableProducts, RowNo: qtyErr.RowNo, Kind: internal.IssueInvalidQuantity, Value: qtyErr.Value, Message: err.Error()}
	case errors.As(err, &skipErr):
		return internal.RowIssue{Table: internal.TableSchedule, RowNo: skipErr.RowNo, Kind: internal.IssueSkippedRow, Message: err.Error()}
	default:
		return internal.RowIssue{Message: err.Error()}
	}
}

func Issues(errs []error) []internal.RowIssue {
	out := make([]internal.RowIssue, 0, len(errs))
	for _, err := range errs {
		out = append(out, Issue(err))
	}
	return out
}
