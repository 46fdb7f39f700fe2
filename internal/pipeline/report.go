package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockcount/internal"
	"stockcount/internal/util"
)

const DefaultSummarySheet = "Summary"

var (
	SummaryHeaders = []string{"Product Name", "Barcode", "Difference"}
	BrandHeaders   = []string{ColNameEN, ColCategory, ColBranch, ColBarcodes, ColBrand, ColAvailable, ColActual, "difference"}
)

type ReportOptions struct {
	SummarySheet string
	// LiveFormulas writes difference cells as =actual-available formulas and
	// points the summary at the brand sheets instead of copying values.
	LiveFormulas bool
}

// Workbook is one assembled branch report held in memory.
type Workbook struct {
	Branch   string
	FileName string
	Sheets   []string
	Entries  int
	Content  []byte
}

func ReportFileName(branchName string, today internal.Date) string {
	return fmt.Sprintf("%s_%s.xlsx", util.SafeFileName(branchName, "branch"), today)
}

// BuildReports assembles one workbook per branch that has matched entries.
// Nothing is written to disk here.
func BuildReports(rec *Reconciliation, today internal.Date, opts ReportOptions) ([]Workbook, error) {
	usedNames := map[string]int{}
	out := make([]Workbook, 0, len(rec.Branches))
	for _, branch := range rec.Branches {
		if branch.EntryCount() == 0 {
			continue
		}
		content, sheets, err := buildBranchWorkbook(branch, opts)
		if err != nil {
			return nil, fmt.Errorf("build report for %s: %w", branch.BranchName, err)
		}

		name := ReportFileName(branch.BranchName, today)
		key := strings.ToLower(name)
		usedNames[key]++
		if n := usedNames[key]; n > 1 {
			name = fmt.Sprintf("%s_%d.xlsx", strings.TrimSuffix(name, ".xlsx"), n)
		}

		out = append(out, Workbook{
			Branch:   branch.BranchName,
			FileName: name,
			Sheets:   sheets,
			Entries:  branch.EntryCount(),
			Content:  content,
		})
	}
	return out, nil
}

func buildBranchWorkbook(branch *internal.BranchGroup, opts ReportOptions) ([]byte, []string, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := util.SheetName(opts.SummarySheet, DefaultSummarySheet)
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return nil, nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, nil, err
	}

	names := newSheetNamer(summary)
	sheets := []string{summary}
	if err := writeHeader(f, summary, SummaryHeaders, headerStyle); err != nil {
		return nil, nil, err
	}

	summaryRow := 2
	for _, group := range branch.Brands {
		sheet := names.next(group.Brand)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, nil, err
		}
		sheets = append(sheets, sheet)
		if err := writeHeader(f, sheet, BrandHeaders, headerStyle); err != nil {
			return nil, nil, err
		}

		for i, e := range group.Entries {
			r := i + 2
			var actual any = cellNumber(e.Actual)
			if opts.LiveFormulas && strings.TrimSpace(e.Product.ActualQuantity) == "" {
				// left empty for the count to be typed in; the formula picks it up
				actual = nil
			}
			row := []any{
				e.Product.NameEN,
				e.Product.Category,
				e.Product.BranchName,
				e.Product.Barcodes,
				e.Product.Brand,
				cellNumber(e.Available),
				actual,
				cellNumber(e.Difference),
			}
			if err := setRow(f, sheet, r, row); err != nil {
				return nil, nil, err
			}

			summaryValues := []any{e.Product.NameEN, e.Product.Barcodes, cellNumber(e.Difference)}
			if err := setRow(f, summary, summaryRow, summaryValues); err != nil {
				return nil, nil, err
			}

			if opts.LiveFormulas {
				if err := writeFormulas(f, summary, summaryRow, sheet, r); err != nil {
					return nil, nil, err
				}
			}
			summaryRow++
		}
		if err := setColWidths(f, sheet, "E"); err != nil {
			return nil, nil, err
		}
	}
	if err := setColWidths(f, summary, "C"); err != nil {
		return nil, nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, nil, err
	}
	return bytes.Clone(buf.Bytes()), sheets, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setColWidths(f *excelize.File, sheet, lastText string) error {
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", lastText, 18)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// writeFormulas replaces the copied difference with a live formula on the
// brand sheet and makes the summary row reference it.
func writeFormulas(f *excelize.File, summary string, summaryRow int, sheet string, row int) error {
	diff := fmt.Sprintf("H%d", row)
	if err := f.SetCellFormula(sheet, diff, fmt.Sprintf("G%d-F%d", row, row)); err != nil {
		return err
	}
	ref := "'" + strings.ReplaceAll(sheet, "'", "''") + "'!"
	formulas := []string{ref + fmt.Sprintf("A%d", row), ref + fmt.Sprintf("D%d", row), ref + diff}
	for i, formula := range formulas {
		cell, _ := excelize.CoordinatesToCellName(i+1, summaryRow)
		if err := f.SetCellFormula(summary, cell, formula); err != nil {
			return err
		}
	}
	return nil
}

// cellNumber keeps whole quantities as integers so the sheet shows "7", not "7.0".
func cellNumber(d decimal.Decimal) any {
	if d.IsInteger() && d.Abs().LessThan(decimal.New(1, 15)) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

// sheetNamer hands out tab names that are valid and unique ignoring case.
type sheetNamer struct {
	used map[string]struct{}
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: map[string]struct{}{}}
	for _, r := range reserved {
		n.used[util.FoldKey(r)] = struct{}{}
	}
	return n
}

func (n *sheetNamer) next(brand string) string {
	base := util.SheetName(brand, "Brand")
	name := base
	for i := 2; ; i++ {
		if _, taken := n.used[util.FoldKey(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", i)
		name = util.TruncateRunes(base, util.MaxSheetNameLen-len(suffix)) + suffix
	}
	n.used[util.FoldKey(name)] = struct{}{}
	return name
}

// SaveReports writes assembled workbooks into dir. Each file goes through a
// temporary name and a rename so a report is either complete or absent.
func SaveReports(dir string, workbooks []Workbook) ([]internal.ReportFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	out := make([]internal.ReportFile, 0, len(workbooks))
	for _, wb := range workbooks {
		path := filepath.Join(dir, wb.FileName)
		if err := writeFileAtomic(dir, path, wb.Content); err != nil {
			return out, err
		}
		out = append(out, internal.ReportFile{
			Branch:  wb.Branch,
			Name:    wb.FileName,
			Path:    path,
			Sheets:  wb.Sheets,
			Entries: wb.Entries,
		})
	}
	return out, nil
}

func writeFileAtomic(dir, path string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".stockcount-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
