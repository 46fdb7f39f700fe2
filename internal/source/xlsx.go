package source

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"

	"stockcount/internal"
	"stockcount/internal/util"
)

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// parseXLSX picks the sheet to read: the preferred sheet name first, then
// the first sheet whose header satisfies opts.Probe, then the first sheet.
// Cells are read raw so date cells arrive as serial numbers.
func parseXLSX(blob []byte, opts Options) (internal.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return internal.Table{}, ErrEmptyTable
	}

	cache := map[string][][]string{}
	rowsOf := func(sheet string) [][]string {
		if rows, ok := cache[sheet]; ok {
			return rows
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			rows = nil
		}
		cache[sheet] = rows
		return rows
	}

	chosen := ""
	if opts.PreferredSheet != "" {
		for _, s := range sheets {
			if util.EqualFold(s, opts.PreferredSheet) {
				chosen = s
				break
			}
		}
	}
	if chosen == "" && opts.Probe != nil {
		for _, s := range sheets {
			rows := rowsOf(s)
			if len(rows) > 0 && opts.Probe(rows[0]) {
				chosen = s
				break
			}
		}
	}
	if chosen == "" {
		chosen = sheets[0]
	}

	table, err := fromRecords(rowsOf(chosen))
	if err != nil {
		return internal.Table{}, err
	}
	table.Sheet = chosen
	return table, nil
}

// parseLegacyXLS handles the two shapes that commonly carry an .xls name:
// HTML table exports and renamed xlsx workbooks. BIFF binaries are rejected.
func parseLegacyXLS(blob []byte, opts Options) (internal.Table, error) {
	if bytes.HasPrefix(blob, oleSignature) {
		return internal.Table{}, errors.New("binary .xls workbooks are not supported, save the file as .xlsx or .csv")
	}
	if looksLikeHTML(blob) {
		return parseHTMLTable(blob)
	}
	return parseXLSX(blob, opts)
}
