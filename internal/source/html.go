package source

import (
	"bytes"
	"errors"

	"github.com/PuerkitoBio/goquery"

	"stockcount/internal"
	"stockcount/internal/util"
)

func looksLikeHTML(blob []byte) bool {
	head := blob
	if len(head) > 4096 {
		head = head[:4096]
	}
	head = bytes.ToLower(head)
	return bytes.Contains(head, []byte("<table")) || bytes.Contains(head, []byte("<html"))
}

// parseHTMLTable reads the first table of an HTML document; its first row is the header.
func parseHTMLTable(blob []byte) (internal.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(blob))
	if err != nil {
		return internal.Table{}, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return internal.Table{}, errors.New("no <table> element found")
	}

	records := [][]string{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, util.NormalizeSpaces(cell.Text()))
		})
		if len(cells) > 0 {
			records = append(records, cells)
		}
	})
	return fromRecords(records)
}
