package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// renderKPIGrid degrades a KPI grid to a fixed 指标/数值/变化 table. Deltas
// carry an up/down triangle when the delta tone indicates direction.
func (r *Renderer) renderKPIGrid(block ir.Block) string {
	items := ir.Slice(block, "items")
	if len(items) == 0 {
		return ""
	}
	header := []string{"指标", "数值", "变化"}
	lines := []string{markdownRow(header), markdownSeparator(len(header))}
	for _, raw := range items {
		item, ok := ir.AsMap(raw)
		if !ok {
			continue
		}
		value := coerceString(item["value"]) + ir.String(item, "unit")
		lines = append(lines, markdownRow([]string{
			escapeTable(ir.String(item, "label")),
			escapeTable(value),
			escapeTable(formatDelta(item["delta"], item["deltaTone"])),
		}))
	}
	return strings.Join(lines, "\n")
}

func formatDelta(delta, tone any) string {
	if delta == nil {
		return ""
	}
	prefix := ""
	switch strings.ToLower(coerceString(tone)) {
	case "up", "increase", "positive":
		prefix = "▲ "
	case "down", "decrease", "negative":
		prefix = "▼ "
	}
	return prefix + coerceString(delta)
}

// renderWidget dispatches data widgets by widgetType. Chart-library and word
// cloud widgets degrade to data tables; anything else gets an unsupported
// note plus a truncated JSON preview of its payload.
func (r *Renderer) renderWidget(block ir.Block) string {
	widgetType := strings.ToLower(ir.String(block, "widgetType"))
	title := ir.String(block, "title")
	if title == "" {
		title = ir.String(ir.Map(block, "props"), "title")
	}
	titlePrefix := ""
	if title != "" {
		titlePrefix = "**" + escapeText(title) + "**\n\n"
	}

	if strings.HasPrefix(widgetType, "chart.js") {
		return strings.TrimSpace(titlePrefix + r.renderChartAsTable(block))
	}
	if strings.Contains(widgetType, "wordcloud") {
		return strings.TrimSpace(titlePrefix + r.renderWordCloudAsTable(block))
	}

	// Best effort: a payload that cannot serialize drops the preview rather
	// than failing the document.
	preview := ""
	data := block["data"]
	if data == nil {
		data = map[string]any{}
	}
	if text, err := marshalJSON(data, false); err == nil {
		if len(text) > 200 {
			text = text[:200]
		}
		preview = text
	}
	out := titlePrefix + "> 数据组件暂不支持Markdown渲染"
	if preview != "" {
		out += "\n\n```\n" + preview + "\n```"
	}
	return out
}

// renderChartAsTable emits one row per label and one column per dataset.
// Ragged series are tolerated: short datasets yield empty cells.
func (r *Renderer) renderChartAsTable(block ir.Block) string {
	data := coerceChartData(ir.Map(block, "data"))
	labels := ir.Slice(data, "labels")
	datasets := ir.Slice(data, "datasets")
	if len(labels) == 0 || len(datasets) == 0 {
		return "> 图表数据缺失，无法转为表格"
	}

	headers := []string{"类别"}
	series := make([]map[string]any, 0, len(datasets))
	for i, raw := range datasets {
		ds, _ := ir.AsMap(raw)
		if ds == nil {
			ds = map[string]any{}
		}
		label := ir.String(ds, "label")
		if label == "" {
			label = "系列" + strconv.Itoa(i+1)
		}
		headers = append(headers, label)
		series = append(series, ds)
	}

	lines := []string{markdownRow(headers), markdownSeparator(len(headers))}
	for i, label := range labels {
		cells := []string{escapeTable(stringifyValue(label))}
		for _, ds := range series {
			values := ir.Slice(ds, "data")
			var value any
			if i < len(values) {
				value = values[i]
			}
			cells = append(cells, escapeTable(stringifyValue(value)))
		}
		lines = append(lines, markdownRow(cells))
	}
	return strings.Join(lines, "\n")
}

// coerceChartData unwraps chart payloads one level: labels/datasets may sit
// at the top or under data/chartData/payload.
func coerceChartData(data map[string]any) map[string]any {
	if _, ok := data["labels"]; ok {
		return data
	}
	if _, ok := data["datasets"]; ok {
		return data
	}
	for _, key := range []string{"data", "chartData", "payload"} {
		nested, ok := ir.AsMap(data[key])
		if !ok {
			continue
		}
		if _, ok := nested["labels"]; ok {
			return nested
		}
		if _, ok := nested["datasets"]; ok {
			return nested
		}
	}
	return data
}

// wordCloudItem is one keyword entry after container unification.
type wordCloudItem struct {
	Word     string
	Weight   any
	Category string
}

// renderWordCloudAsTable degrades a word cloud to a 关键词/权重/类别 table.
func (r *Renderer) renderWordCloudAsTable(block ir.Block) string {
	items := collectWordCloudItems(block)
	if len(items) == 0 {
		return "> 词云数据缺失，无法转为表格"
	}

	lines := []string{
		markdownRow([]string{"关键词", "权重", "类别"}),
		markdownSeparator(3),
	}
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "-"
		}
		lines = append(lines, markdownRow([]string{
			escapeTable(item.Word),
			escapeTable(stringifyValue(item.Weight)),
			escapeTable(category),
		}))
	}
	return strings.Join(lines, "\n")
}

// collectWordCloudItems gathers entries from every plausible container
// (props.data/words/items, data as a list, data.items), accepting object or
// positional-tuple encodings. Duplicates collapse by word+category with the
// first occurrence winning, regardless of weight.
func collectWordCloudItems(block ir.Block) []wordCloudItem {
	props := ir.Map(block, "props")
	var candidates [][]any
	for _, key := range []string{"data", "words", "items"} {
		if list, ok := ir.AsSlice(props[key]); ok {
			candidates = append(candidates, list)
		}
	}
	switch data := block["data"].(type) {
	case []any:
		candidates = append(candidates, data)
	case map[string]any:
		if list, ok := ir.AsSlice(data["items"]); ok {
			candidates = append(candidates, list)
		}
	}

	var items []wordCloudItem
	seen := map[string]bool{}
	push := func(word string, weight any, category string) {
		key := word + "::" + category
		if seen[key] {
			return
		}
		seen[key] = true
		items = append(items, wordCloudItem{Word: word, Weight: weight, Category: category})
	}

	for _, candidate := range candidates {
		for _, raw := range candidate {
			switch entry := raw.(type) {
			case map[string]any:
				word := firstTruthy(entry, "word", "text", "label")
				if word == nil {
					continue
				}
				category := entry["category"]
				if category == nil {
					category = ""
				}
				push(coerceString(word), firstTruthy(entry, "weight", "value"), coerceString(category))
			case []any:
				if len(entry) == 0 {
					continue
				}
				var weight any = ""
				if len(entry) > 1 {
					weight = entry[1]
				}
				category := ""
				if len(entry) > 2 {
					category = coerceString(entry[2])
				}
				push(coerceString(entry[0]), weight, category)
			case string:
				push(entry, "", "")
			}
		}
	}
	return items
}
