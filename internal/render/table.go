package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// renderTable degrades a table block to a Markdown pipe table. The first row
// acts as the header only when at least one of its cells is flagged as a
// header cell; otherwise synthetic 列N headers are generated. Column count is
// the maximum colspan sum across rows. Rowspan is not supported: cells
// carrying one will misalign, a documented limitation of the flat format.
func (r *Renderer) renderTable(block ir.Block, depth int) string {
	rows := ir.Slice(block, "rows")
	if len(rows) == 0 {
		return ""
	}

	var firstRowCells []any
	if first, ok := ir.AsMap(rows[0]); ok {
		firstRowCells = ir.Slice(first, "cells")
	}
	hasHeader := false
	for _, raw := range firstRowCells {
		if cell, ok := ir.AsMap(raw); ok && (truthy(cell["header"]) || truthy(cell["isHeader"])) {
			hasHeader = true
			break
		}
	}

	colCount := 0
	for _, raw := range rows {
		row, ok := ir.AsMap(raw)
		if !ok {
			continue
		}
		span := 0
		for _, rawCell := range ir.Slice(row, "cells") {
			if cell, ok := ir.AsMap(rawCell); ok {
				span += cellColspan(cell)
			}
		}
		if span > colCount {
			colCount = span
		}
	}

	var headerCells []string
	if hasHeader {
		for _, raw := range firstRowCells {
			headerCells = append(headerCells, r.renderCellContent(raw, depth))
		}
		rows = rows[1:]
	} else {
		n := colCount
		if n == 0 {
			n = len(firstRowCells)
		}
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			headerCells = append(headerCells, "列"+strconv.Itoa(i+1))
		}
	}

	lines := []string{
		markdownRow(headerCells),
		markdownSeparator(len(headerCells)),
	}
	for _, raw := range rows {
		row, ok := ir.AsMap(raw)
		if !ok {
			continue
		}
		var rowCells []string
		for _, rawCell := range ir.Slice(row, "cells") {
			rowCells = append(rowCells, r.renderCellContent(rawCell, depth))
			if cell, ok := ir.AsMap(rawCell); ok {
				for span := cellColspan(cell); span > 1; span-- {
					rowCells = append(rowCells, "")
				}
			}
		}
		for len(rowCells) < len(headerCells) {
			rowCells = append(rowCells, "")
		}
		lines = append(lines, markdownRow(rowCells[:len(headerCells)]))
	}
	return strings.Join(lines, "\n")
}

// renderCellContent flattens a cell's nested blocks to one table-safe line.
func (r *Renderer) renderCellContent(rawCell any, depth int) string {
	cell, ok := ir.AsMap(rawCell)
	if !ok {
		return ""
	}
	return r.flattenBlocks(ir.Slice(cell, "blocks"), depth)
}

// flattenBlocks reduces nested block content to a single line for table
// cells, joining the pieces with spaces. Multi-block structure is
// intentionally lossy here: a pipe-table cell cannot hold it.
func (r *Renderer) flattenBlocks(blocks []any, depth int) string {
	var parts []string
	for _, block := range blocks {
		if text := r.flattenBlock(block, depth); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) flattenBlock(raw any, depth int) string {
	if depth > r.maxDepth() {
		return ""
	}
	switch block := raw.(type) {
	case string:
		return escapeTable(block)
	case map[string]any:
		switch ir.Block(block).Type() {
		case "paragraph":
			return renderInlines(ir.Slice(block, "inlines"), true)
		case "heading":
			return escapeValue(block["text"], true)
		case "list":
			var items []string
			for _, sub := range ir.Slice(block, "items") {
				subBlocks, _ := ir.AsSlice(sub)
				if text := r.flattenBlocks(subBlocks, depth+1); text != "" {
					items = append(items, text)
				}
			}
			return strings.Join(items, "; ")
		case "math":
			return "$" + normalizeMath(block["latex"]) + "$"
		case "code":
			return ir.String(block, "content")
		case "widget":
			title := ir.String(block, "title")
			if title == "" {
				title = "图表"
			}
			return escapeTable(title)
		default:
			if nested, ok := ir.AsSlice(block["blocks"]); ok {
				return r.flattenBlocks(nested, depth+1)
			}
			return escapeValue(block, true)
		}
	default:
		return ""
	}
}
