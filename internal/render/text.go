package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// escapeText trims surrounding whitespace. Markdown control characters are
// left alone so authored emphasis survives.
func escapeText(text string) string {
	return strings.TrimSpace(text)
}

// escapeTable makes a string safe inside a Markdown table row: pipes are
// escaped and line breaks collapse to spaces so one cell stays one cell.
func escapeTable(text string) string {
	text = strings.ReplaceAll(text, "|", `\|`)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}

// escapeValue renders an arbitrary IR value as escaped text.
func escapeValue(v any, forTable bool) string {
	if forTable {
		return escapeTable(coerceString(v))
	}
	return escapeText(coerceString(v))
}

// coerceString is the catch-all string conversion for loosely typed IR values.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]any, []any:
		if text, err := marshalJSON(val, false); err == nil {
			return text
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}

// formatNumber renders JSON numbers without a trailing ".0" for whole values.
func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// stringifyValue converts chart/KPI payload values to display text: numbers
// as-is, mappings prefer a y/value key before falling back to JSON, sequences
// join their elements with ", ".
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64, int, int64:
		return coerceString(val)
	case map[string]any:
		for _, key := range []string{"y", "value"} {
			if inner, ok := val[key]; ok {
				return coerceString(inner)
			}
		}
		if text, err := marshalJSON(val, false); err == nil {
			return text
		}
		return fmt.Sprint(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringifyValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return coerceString(val)
	}
}

// mathDelimiters lists the display-math wrappers normalizeMath strips.
var mathDelimiters = [][2]string{
	{"$$", "$$"},
	{`\[`, `\]`},
	{`\(`, `\)`},
}

// normalizeMath strips one matching pair of display-math delimiters from a
// LaTeX snippet. Non-string input normalizes to empty.
func normalizeMath(raw any) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	text = strings.TrimSpace(text)
	for _, pair := range mathDelimiters {
		start, end := pair[0], pair[1]
		if len(text) >= len(start)+len(end) && strings.HasPrefix(text, start) && strings.HasSuffix(text, end) {
			return strings.TrimSpace(text[len(start) : len(text)-len(end)])
		}
	}
	return text
}

// quoteLines prefixes every line with a blockquote marker, using a bare ">"
// for blank lines.
func quoteLines(text string) string {
	if text == "" {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			lines = append(lines, ">")
		} else {
			lines = append(lines, "> "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func markdownRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func markdownSeparator(count int) string {
	if count < 1 {
		count = 1
	}
	cells := make([]string, count)
	for i := range cells {
		cells[i] = "---"
	}
	return markdownRow(cells)
}

// marshalJSON encodes v without HTML escaping so CJK report text and URLs
// stay readable inside fallback fences.
func marshalJSON(v any, indent bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// truthy mirrors the loose boolean reading the IR producer assumes: empty
// strings, zero numbers, false, nil, and empty containers are all false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// firstTruthy returns the first truthy value among keys.
func firstTruthy(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// cellColspan reads a cell's colspan, tolerating numeric or string encodings.
func cellColspan(cell map[string]any) int {
	switch v := cell["colspan"].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	default:
		if n := ir.Int(cell, "colspan", 1); n > 0 {
			return n
		}
	}
	return 1
}
