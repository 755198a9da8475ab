package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// matrixItem is the normalized form of a quadrant entry. Heterogeneous input
// shapes (bare strings, loosely keyed objects) all reduce to this record
// before the uniform per-quadrant table is emitted.
type matrixItem struct {
	Title    string
	Detail   any
	Impact   any
	Priority any
	Weight   any
	Evidence any
}

type quadrant struct {
	key   string
	label string
}

var swotQuadrants = []quadrant{
	{"strengths", "S 优势"},
	{"weaknesses", "W 劣势"},
	{"opportunities", "O 机会"},
	{"threats", "T 威胁"},
}

var pestDimensions = []quadrant{
	{"political", "P 政治"},
	{"economic", "E 经济"},
	{"social", "S 社会"},
	{"technological", "T 技术"},
}

// renderSWOTTable degrades a SWOT analysis block to one table per quadrant.
func (r *Renderer) renderSWOTTable(block ir.Block) string {
	return r.renderMatrix(block, "SWOT 分析", swotQuadrants, normalizeSWOTItem, swotRow)
}

// renderPESTTable degrades a PEST analysis block the same way.
func (r *Renderer) renderPESTTable(block ir.Block) string {
	return r.renderMatrix(block, "PEST 分析", pestDimensions, normalizePESTItem, pestRow)
}

// renderMatrix is the shared quadrant-analysis strategy: heading, optional
// summary, then a fixed 4-column table per quadrant. Quadrants with no items
// get a placeholder blockquote instead of an empty table.
func (r *Renderer) renderMatrix(block ir.Block, defaultTitle string, quadrants []quadrant, normalize func(any) (matrixItem, bool), rowFor func(int, matrixItem) []string) string {
	title := ir.String(block, "title")
	if title == "" {
		title = defaultTitle
	}

	lines := []string{"### " + escapeText(title)}
	if summary := ir.String(block, "summary"); summary != "" {
		lines = append(lines, escapeText(summary))
	}

	for _, q := range quadrants {
		var items []matrixItem
		if raw, ok := ir.AsSlice(block[q.key]); ok {
			for _, entry := range raw {
				if item, ok := normalize(entry); ok {
					items = append(items, item)
				}
			}
		}
		lines = append(lines, "#### "+q.label)
		if len(items) == 0 {
			lines = append(lines, "> 暂无数据")
			continue
		}
		tableLines := []string{
			markdownRow([]string{"序号", "要点", "详情", "标签"}),
			markdownSeparator(4),
		}
		for i, item := range items {
			tableLines = append(tableLines, markdownRow(rowFor(i+1, item)))
		}
		lines = append(lines, strings.Join(tableLines, "\n"))
	}
	return strings.Join(lines, "\n\n")
}

func swotRow(index int, item matrixItem) []string {
	detail := item.Detail
	if !truthy(detail) {
		detail = item.Evidence
	}
	return []string{
		strconv.Itoa(index),
		escapeTable(item.Title),
		escapeValue(detail, true),
		escapeTable(joinTags(item.Impact, item.Priority)),
	}
}

func pestRow(index int, item matrixItem) []string {
	return []string{
		strconv.Itoa(index),
		escapeTable(item.Title),
		escapeValue(item.Detail, true),
		escapeTable(joinTags(item.Impact, item.Weight, item.Priority)),
	}
}

// joinTags joins the truthy tag values with " / ".
func joinTags(tags ...any) string {
	var parts []string
	for _, tag := range tags {
		if truthy(tag) {
			parts = append(parts, escapeText(coerceString(tag)))
		}
	}
	return strings.Join(parts, " / ")
}

func normalizeSWOTItem(entry any) (matrixItem, bool) {
	switch e := entry.(type) {
	case string:
		return matrixItem{Title: e}, true
	case map[string]any:
		return matrixItem{
			Title:    itemTitle(e),
			Detail:   firstTruthy(e, "detail", "description"),
			Impact:   e["impact"],
			Priority: e["priority"],
			Evidence: e["evidence"],
		}, true
	}
	return matrixItem{}, false
}

func normalizePESTItem(entry any) (matrixItem, bool) {
	switch e := entry.(type) {
	case string:
		return matrixItem{Title: e}, true
	case map[string]any:
		return matrixItem{
			Title:    itemTitle(e),
			Detail:   firstTruthy(e, "detail", "description"),
			Impact:   e["impact"],
			Priority: e["priority"],
			Weight:   e["weight"],
		}, true
	}
	return matrixItem{}, false
}

func itemTitle(entry map[string]any) string {
	if title := ir.String(entry, "title", "label", "text"); title != "" {
		return title
	}
	return "未命名要点"
}
