package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/reportmd/internal/ir"
)

// CSVImporter converts a CSV file into a single IR table block, with the
// first record flagged as the header row.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (ir.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := newDocument(titleStem(filename))
	if len(records) == 0 {
		return doc, nil
	}

	var rows []any
	for i, record := range records {
		var cells []any
		for _, field := range record {
			cell := map[string]any{"blocks": []any{field}}
			if i == 0 {
				cell["header"] = true
			}
			cells = append(cells, cell)
		}
		rows = append(rows, map[string]any{"cells": cells})
	}

	chapter := newChapter("")
	appendBlock(chapter, map[string]any{"type": "table", "rows": rows})
	appendChapter(doc, chapter)
	return doc, nil
}
