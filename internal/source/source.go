package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stockcount/internal"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyTable      = errors.New("no header row found")
)

var supportedExts = []string{".csv", ".xls", ".xlsx", ".xlsm", ".htm", ".html", ".eml"}

type Options struct {
	MaxUploadMB    int
	CSVEncoding    string
	PreferredSheet string
	// Probe reports whether a header row carries the columns the caller needs.
	// It is used to pick a sheet from a multi-sheet workbook.
	Probe func(headers []string) bool
}

// CheckFile validates the extension and size of an input before it is read.
func CheckFile(name string, size int64, maxMB int) error {
	ext := strings.ToLower(filepath.Ext(name))
	ok := false
	for _, e := range supportedExts {
		if e == ext {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %q (accepted: csv, xls, xlsx, xlsm, html, eml)", ErrUnsupportedType, filepath.Base(name))
	}
	if maxMB > 0 && size > int64(maxMB)*1024*1024 {
		return fmt.Errorf("%w: %s exceeds %dMB", ErrTooLarge, filepath.Base(name), maxMB)
	}
	return nil
}

func Load(path string, opts Options) (internal.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return internal.Table{}, err
	}
	if err := CheckFile(path, info.Size(), opts.MaxUploadMB); err != nil {
		return internal.Table{}, err
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.Table{}, err
	}
	return LoadBytes(filepath.Base(path), blob, opts)
}

func LoadBytes(name string, blob []byte, opts Options) (internal.Table, error) {
	if err := CheckFile(name, int64(len(blob)), opts.MaxUploadMB); err != nil {
		return internal.Table{}, err
	}

	var (
		table internal.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		table, err = parseCSV(blob, opts)
	case ".xlsx", ".xlsm":
		table, err = parseXLSX(blob, opts)
	case ".xls":
		table, err = parseLegacyXLS(blob, opts)
	case ".htm", ".html":
		table, err = parseHTMLTable(blob)
	case ".eml":
		table, err = parseEML(blob, opts)
	}
	if err != nil {
		return internal.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	if table.Name == "" {
		table.Name = name
	}
	return finalize(table)
}

// fromRecords turns raw records into a table using the first row as header.
func fromRecords(records [][]string) (internal.Table, error) {
	if len(records) == 0 {
		return internal.Table{}, ErrEmptyTable
	}
	return internal.Table{Headers: records[0], Rows: records[1:]}, nil
}

func finalize(table internal.Table) (internal.Table, error) {
	headers := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return internal.Table{}, ErrEmptyTable
	}

	rows := table.Rows
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		padded := make([]string, len(headers))
		copy(padded, row)
		out = append(out, padded)
	}

	table.Headers = headers
	table.Rows = out
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
