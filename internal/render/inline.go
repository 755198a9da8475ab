package render

import (
	"github.com/dgallion1/reportmd/internal/ir"
)

// renderInlines concatenates a sequence of inline runs with no separator.
func renderInlines(runs []any, forTable bool) string {
	var out string
	for _, run := range runs {
		out += renderInlineRun(run, forTable)
	}
	return out
}

// renderInlineRun renders one text run, applying its marks in array order:
// each mark wraps the result of the previous one, so [bold, italic] yields
// *...**text**...* rather than a fixed canonical nesting. Marks outside the
// recognized set (colors, fonts) degrade to plain text.
func renderInlineRun(run any, forTable bool) string {
	var text any
	var marks []any
	switch r := run.(type) {
	case map[string]any:
		text = r["text"]
		marks = ir.Slice(r, "marks")
	case string:
		text = r
	default:
		return ""
	}

	result := escapeValue(text, forTable)
	for _, raw := range marks {
		mark, ok := ir.AsMap(raw)
		if !ok {
			continue
		}
		result = applyMark(mark, result, text)
	}
	return result
}

func applyMark(mark map[string]any, result string, runText any) string {
	switch ir.String(mark, "type") {
	case "bold":
		return "**" + result + "**"
	case "italic":
		return "*" + result + "*"
	case "underline":
		return "__" + result + "__"
	case "strike":
		return "~~" + result + "~~"
	case "code":
		return "`" + result + "`"
	case "link":
		if href := firstTruthy(mark, "href", "value"); href != nil {
			return "[" + result + "](" + coerceString(href) + ")"
		}
		return result
	case "highlight":
		return "==" + result + "=="
	case "subscript":
		return "~" + result + "~"
	case "superscript":
		return "^" + result + "^"
	case "math":
		raw := mark["value"]
		if !truthy(raw) {
			raw = runText
		}
		if latex := normalizeMath(raw); latex != "" {
			return "$" + latex + "$"
		}
		return result
	default:
		return result
	}
}
