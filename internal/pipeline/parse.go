package pipeline

import (
	"strings"
	"time"

	"stockcount/internal"
	"stockcount/internal/util"
)

var brandSeparators = []string{";", ",", "/"}

// ParseProducts resolves the product header once and converts every
// non-blank row. Category is taken verbatim when the column exists and
// derived from name_en otherwise.
func ParseProducts(table internal.Table) ([]internal.ProductRow, error) {
	cols, err := ResolveColumns(internal.TableProducts, table.Headers, ProductFields)
	if err != nil {
		return nil, err
	}
	hasCategory := cols.Has(ColCategory)

	out := make([]internal.ProductRow, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlank(row) {
			continue
		}
		p := internal.ProductRow{
			RowNo:             i + 2,
			NameEN:            cols.Value(row, ColNameEN),
			BranchName:        cols.Value(row, ColBranch),
			Barcodes:          cols.Value(row, ColBarcodes),
			Brand:             cols.Value(row, ColBrand),
			AvailableQuantity: cols.Value(row, ColAvailable),
			ActualQuantity:    cols.Value(row, ColActual),
		}
		if hasCategory {
			p.Category = cols.Raw(row, ColCategory)
		} else {
			p.Category = ExtractCategory(p.NameEN)
			p.CategoryDerived = true
		}
		out = append(out, p)
	}
	return out, nil
}

type ScheduleOptions struct {
	// SplitBrandCells expands "A; B" style cells into one row per brand.
	SplitBrandCells bool
}

// ParseSchedule resolves the schedule header and normalizes each row's date
// against now. Rows that cannot be used are returned as row errors and never
// reach the filter; a missing column is fatal.
func ParseSchedule(table internal.Table, now time.Time, opts ScheduleOptions) ([]internal.ScheduleRow, []error, error) {
	cols, err := ResolveColumns(internal.TableSchedule, table.Headers, ScheduleFields)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     = make([]internal.ScheduleRow, 0, len(table.Rows))
		rowErrs []error
	)
	for i, row := range table.Rows {
		rowNo := i + 2
		branch := util.NormalizeSpaces(cols.Value(row, ColScheduleBranch))
		brandCell := cols.Value(row, ColScheduleBrand)
		rawDate := cols.Value(row, ColScheduleDate)
		if branch == "" && brandCell == "" && rawDate == "" {
			continue
		}
		if branch == "" || brandCell == "" {
			rowErrs = append(rowErrs, &SkippedRowError{RowNo: rowNo, Reason: "branch and brand are required"})
			continue
		}

		date, err := NormalizeDate(rowNo, rawDate, now)
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}

		for _, brand := range splitBrands(brandCell, opts.SplitBrandCells) {
			out = append(out, internal.ScheduleRow{RowNo: rowNo, Branch: branch, Brand: brand, Date: date})
		}
	}
	return out, rowErrs, nil
}

func splitBrands(cell string, split bool) []string {
	if split {
		for _, sep := range brandSeparators {
			if !strings.Contains(cell, sep) {
				continue
			}
			var brands []string
			for _, b := range strings.Split(cell, sep) {
				if b = util.NormalizeSpaces(b); b != "" {
					brands = append(brands, b)
				}
			}
			return brands
		}
	}
	return []string{util.NormalizeSpaces(cell)}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
