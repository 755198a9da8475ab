package render

import (
	"testing"
)

func mark(markType string, extra map[string]any) map[string]any {
	m := map[string]any{"type": markType}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func run(text string, marks ...any) map[string]any {
	return map[string]any{"text": text, "marks": marks}
}

func TestRenderInlines_Concatenation(t *testing.T) {
	got := renderInlines([]any{run("a "), run("b", mark("bold", nil)), "c"}, false)
	if got != "a**b**c" {
		t.Errorf("expected runs concatenated without separator, got %q", got)
	}
}

func TestRenderInlineRun_SingleMarks(t *testing.T) {
	tests := []struct {
		markType string
		extra    map[string]any
		want     string
	}{
		{"bold", nil, "**x**"},
		{"italic", nil, "*x*"},
		{"underline", nil, "__x__"},
		{"strike", nil, "~~x~~"},
		{"code", nil, "`x`"},
		{"highlight", nil, "==x=="},
		{"subscript", nil, "~x~"},
		{"superscript", nil, "^x^"},
		{"link", map[string]any{"href": "https://example.com"}, "[x](https://example.com)"},
		{"link", map[string]any{"value": "https://example.com"}, "[x](https://example.com)"},
		{"math", map[string]any{"value": "$$a+b$$"}, "$a+b$"},
	}
	for _, tt := range tests {
		t.Run(tt.markType, func(t *testing.T) {
			got := renderInlineRun(run("x", mark(tt.markType, tt.extra)), false)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRenderInlineRun_MarkOrderComposition(t *testing.T) {
	// Marks apply in array order, each wrapping the prior result: bold then
	// italic yields *...**x**...*, not a fixed canonical nesting.
	got := renderInlineRun(run("x", mark("bold", nil), mark("italic", nil)), false)
	if got != "***x***" {
		t.Errorf("expected bold-then-italic composition, got %q", got)
	}

	got = renderInlineRun(run("x", mark("code", nil), mark("bold", nil)), false)
	if got != "**`x`**" {
		t.Errorf("expected code-then-bold composition, got %q", got)
	}
}

func TestRenderInlineRun_LinkWithoutHref(t *testing.T) {
	got := renderInlineRun(run("x", mark("link", nil)), false)
	if got != "x" {
		t.Errorf("expected unwrapped text for missing href, got %q", got)
	}
}

func TestRenderInlineRun_MathFallsBackToRunText(t *testing.T) {
	got := renderInlineRun(run(`\(y^2\)`, mark("math", nil)), false)
	if got != "$y^2$" {
		t.Errorf("expected run text as math source, got %q", got)
	}
}

func TestRenderInlineRun_UnknownMarkDropsToPlainText(t *testing.T) {
	got := renderInlineRun(run("x", mark("color", map[string]any{"value": "#f00"})), false)
	if got != "x" {
		t.Errorf("expected styling marks dropped to plain text, got %q", got)
	}
}

func TestRenderInlineRun_TableModeEscapesPipes(t *testing.T) {
	got := renderInlineRun(run("a|b", mark("bold", nil)), true)
	if got != `**a\|b**` {
		t.Errorf("expected table-safe escaping inside marks, got %q", got)
	}
}

func TestRenderInlineRun_MalformedShapes(t *testing.T) {
	if got := renderInlineRun(42.0, false); got != "" {
		t.Errorf("expected empty render for numeric run, got %q", got)
	}
	if got := renderInlineRun(map[string]any{"text": "x", "marks": "bad"}, false); got != "x" {
		t.Errorf("expected marks treated as absent, got %q", got)
	}
	if got := renderInlineRun(map[string]any{"text": "x", "marks": []any{"notamap"}}, false); got != "x" {
		t.Errorf("expected non-mapping mark skipped, got %q", got)
	}
}
