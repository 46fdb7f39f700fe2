package source

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func mkXLSX(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(name, cell, v); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCheckFile(t *testing.T) {
	if err := CheckFile("products.XLSX", 10, 200); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := CheckFile("products.pdf", 10, 200); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err=%v", err)
	}
	if err := CheckFile("products.csv", 3*1024*1024, 2); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadCSVComma(t *testing.T) {
	blob := []byte("\xEF\xBB\xBFName_EN,Brand\nMilk 1L,Dairy\n,\n")
	table, err := LoadBytes("products.csv", blob, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Headers[0] != "Name_EN" {
		t.Fatalf("header=%q", table.Headers[0])
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "Dairy" {
		t.Fatalf("rows=%v", table.Rows)
	}
}

func TestLoadCSVSemicolonFallback(t *testing.T) {
	blob := []byte("branch;date;brand\nDowntown;19;Dairy\nUptown;20\n")
	table, err := LoadBytes("schedule.csv", blob, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Headers) != 3 {
		t.Fatalf("headers=%v", table.Headers)
	}
	if len(table.Rows) != 2 || table.Rows[1][2] != "" {
		t.Fatalf("short row not padded: %v", table.Rows)
	}
}

func TestLoadCSVWindows1256(t *testing.T) {
	encoded, err := charmap.Windows1256.NewEncoder().String("branch,brand\nفرع,Dairy\n")
	if err != nil {
		t.Fatal(err)
	}
	table, err := LoadBytes("schedule.csv", []byte(encoded), Options{CSVEncoding: "windows-1256"})
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows[0][0] != "فرع" {
		t.Fatalf("decoded=%q", table.Rows[0][0])
	}
}

func TestLoadXLSXPrefersDataSheet(t *testing.T) {
	blob := mkXLSX(t, map[string][][]any{
		"Notes": {{"readme"}},
		"DATA":  {{"branch", "date", "brand"}, {"Downtown", 19, "Dairy"}},
	}, "Notes", "DATA")
	table, err := LoadBytes("schedule.xlsx", blob, Options{PreferredSheet: "data"})
	if err != nil {
		t.Fatal(err)
	}
	if table.Sheet != "DATA" {
		t.Fatalf("sheet=%q", table.Sheet)
	}
	if table.Rows[0][1] != "19" {
		t.Fatalf("cell=%q", table.Rows[0][1])
	}
}

func TestLoadXLSXProbe(t *testing.T) {
	blob := mkXLSX(t, map[string][][]any{
		"Cover":  {{"Stock count"}},
		"Sheet2": {{"Branch", "Brand"}, {"Downtown", "Dairy"}},
	}, "Cover", "Sheet2")
	probe := func(headers []string) bool {
		for _, h := range headers {
			if strings.EqualFold(h, "brand") {
				return true
			}
		}
		return false
	}
	table, err := LoadBytes("schedule.xlsx", blob, Options{PreferredSheet: "data", Probe: probe})
	if err != nil {
		t.Fatal(err)
	}
	if table.Sheet != "Sheet2" {
		t.Fatalf("sheet=%q", table.Sheet)
	}
}

func TestLoadHTMLDisguisedAsXLS(t *testing.T) {
	html := `<html><body><table>
<tr><th>Branch</th><th>Date</th><th>Brand</th></tr>
<tr><td> Downtown </td><td>19</td><td>Dairy</td></tr>
</table></body></html>`
	table, err := LoadBytes("schedule.xls", []byte(html), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "Downtown" {
		t.Fatalf("rows=%v", table.Rows)
	}
}

func TestLoadBinaryXLSRejected(t *testing.T) {
	blob := append([]byte{}, oleSignature...)
	blob = append(blob, make([]byte, 64)...)
	if _, err := LoadBytes("old.xls", blob, Options{}); err == nil {
		t.Fatal("expected error for BIFF workbook")
	}
}

func TestLoadEMLAttachment(t *testing.T) {
	csvBody := base64.StdEncoding.EncodeToString([]byte("branch,date,brand\nDowntown,19,Dairy\n"))
	raw := strings.Join([]string{
		"From: ops@example.com",
		"To: counts@example.com",
		"Subject: schedule",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="XYZ"`,
		"",
		"--XYZ",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Schedule attached.",
		"--XYZ",
		`Content-Type: text/csv; name="schedule.csv"`,
		`Content-Disposition: attachment; filename="schedule.csv"`,
		"Content-Transfer-Encoding: base64",
		"",
		csvBody,
		"--XYZ--",
		"",
	}, "\r\n")

	table, err := LoadBytes("mail.eml", []byte(raw), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Name != "schedule.csv" {
		t.Fatalf("name=%q", table.Name)
	}
	if len(table.Rows) != 1 || table.Rows[0][2] != "Dairy" {
		t.Fatalf("rows=%v", table.Rows)
	}
}
