package pipeline

import (
	"strings"

	"stockcount/internal"
	"stockcount/internal/util"
)

// Field is a logical column. Aliases are tried in order after Name.
type Field struct {
	Name     string
	Aliases  []string
	Optional bool
}

const (
	ColNameEN    = "name_en"
	ColBranch    = "branch_name"
	ColBarcodes  = "barcodes"
	ColBrand     = "brand"
	ColAvailable = "available_quantity"
	ColActual    = "actual_quantity"
	ColCategory  = "category"

	ColScheduleBranch = "branch"
	ColScheduleDate   = "date"
	ColScheduleBrand  = "brand"
)

var ProductFields = []Field{
	{Name: ColNameEN},
	{Name: ColBranch},
	{Name: ColBarcodes},
	{Name: ColBrand},
	{Name: ColAvailable},
	{Name: ColActual},
	{Name: ColCategory, Optional: true},
}

var ScheduleFields = []Field{
	{Name: ColScheduleBranch, Aliases: []string{"branch_name", "store", "location"}},
	{Name: ColScheduleDate, Aliases: []string{"day", "day_number", "daynum", "day_no", "day_of_month"}},
	{Name: ColScheduleBrand, Aliases: []string{"brands", "brand_name", "vendor", "vendors"}},
}

// ColumnMap is the resolved logical name -> column position mapping for one table.
type ColumnMap struct {
	index   map[string]int
	headers map[string]string
}

func (m ColumnMap) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m ColumnMap) Index(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

func (m ColumnMap) Header(name string) string {
	return m.headers[name]
}

// Value returns the trimmed cell for a logical field, or "" when the field
// is absent or the row is short.
func (m ColumnMap) Value(row []string, name string) string {
	return strings.TrimSpace(m.Raw(row, name))
}

func (m ColumnMap) Raw(row []string, name string) string {
	i, ok := m.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ResolveColumns matches fields to headers ignoring case and surrounding
// whitespace. All missing required fields are reported in one error.
func ResolveColumns(table internal.TableKind, headers []string, fields []Field) (ColumnMap, error) {
	byKey := make(map[string]int, len(headers))
	for i, h := range headers {
		key := util.FoldKey(h)
		if key == "" {
			continue
		}
		if _, exists := byKey[key]; !exists {
			byKey[key] = i
		}
	}

	m := ColumnMap{index: map[string]int{}, headers: map[string]string{}}
	var missing []string
	for _, f := range fields {
		idx := -1
		for _, candidate := range append([]string{f.Name}, f.Aliases...) {
			if i, ok := byKey[util.FoldKey(candidate)]; ok {
				idx = i
				break
			}
		}
		if idx < 0 {
			if !f.Optional {
				missing = append(missing, f.Name)
			}
			continue
		}
		m.index[f.Name] = idx
		m.headers[f.Name] = headers[idx]
	}

	if len(missing) > 0 {
		found := make([]string, 0, len(headers))
		for _, h := range headers {
			if strings.TrimSpace(h) != "" {
				found = append(found, strings.TrimSpace(h))
			}
		}
		return ColumnMap{}, &MissingColumnError{Table: table, Missing: missing, Found: found}
	}
	return m, nil
}

// HeadersSatisfy is the sheet probe used when a workbook has several sheets.
func HeadersSatisfy(fields []Field) func(headers []string) bool {
	return func(headers []string) bool {
		_, err := ResolveColumns("", headers, fields)
		return err == nil
	}
}
