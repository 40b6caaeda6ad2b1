package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files. Rows are grouped into batches, each rendered
// under a "## Rows N-M" heading so the splitter picks them up as sections.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*Parsed, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := titleFromFilename(filename)
	if len(records) == 0 {
		return &Parsed{Title: title}, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var out strings.Builder
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		// Row numbers are 1-indexed counting the header row.
		fmt.Fprintf(&out, "## Rows %d-%d\n\n", i+2, end+1)
		out.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")

		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j > 0 {
					out.WriteString(", ")
				}
				if j < len(headers) {
					out.WriteString(headers[j] + ": " + cell)
				} else {
					out.WriteString(cell)
				}
			}
			out.WriteString("\n")
		}
	}

	return &Parsed{
		Title: title,
		Text:  strings.TrimSpace(out.String()),
	}, nil
}
