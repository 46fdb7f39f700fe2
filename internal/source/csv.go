package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"stockcount/internal"
)

func parseCSV(blob []byte, opts Options) (internal.Table, error) {
	text, err := decodeText(blob, opts.CSVEncoding)
	if err != nil {
		return internal.Table{}, err
	}

	records, err := readCSV(text, ',')
	if err != nil {
		return internal.Table{}, err
	}
	if len(records) > 0 && len(records[0]) == 1 && strings.Contains(records[0][0], ";") {
		records, err = readCSV(text, ';')
		if err != nil {
			return internal.Table{}, err
		}
	}
	return fromRecords(records)
}

func readCSV(text []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var out [][]string
	line := 0
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeText converts legacy single-byte exports to UTF-8. UTF-8 input has
// its byte order mark removed; a UTF-16 mark switches decoding accordingly.
func decodeText(blob []byte, name string) ([]byte, error) {
	var dec transform.Transformer
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case "windows-1256", "cp1256":
		dec = charmap.Windows1256.NewDecoder()
	case "iso-8859-6":
		dec = charmap.ISO8859_6.NewDecoder()
	case "windows-1252", "cp1252":
		dec = charmap.Windows1252.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported csv encoding: %s", name)
	}
	return io.ReadAll(transform.NewReader(bytes.NewReader(blob), dec))
}
