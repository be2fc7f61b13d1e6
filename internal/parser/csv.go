package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
)

// CSVParser handles CSV exports of financial tables. Rows are rendered as
// "header: value" lines so the metric patterns can match them, batched into
// synthetic pages.
type CSVParser struct{}

const csvRowsPerPage = 20

func (p *CSVParser) Parse(r io.Reader, filename string) ([]document.RawPage, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	var pages []document.RawPage
	for i := 0; i < len(dataRows); i += csvRowsPerPage {
		end := i + csvRowsPerPage
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		pages = append(pages, document.RawPage{
			Text:   text.String(),
			Number: len(pages) + 1,
		})
	}
	return pages, nil
}
