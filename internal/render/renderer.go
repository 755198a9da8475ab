// Package render converts a Document IR tree into a single Markdown string.
//
// It is the portable fallback path used when a rich renderer (PDF/HTML with
// real charts) is unavailable: every visual construct degrades to a textual
// approximation that keeps the underlying data. One bad block never fails
// the whole document.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// DefaultMaxDepth bounds block recursion so adversarial or cyclic-looking
// input cannot exhaust the stack. Deeper content reads as absent.
const DefaultMaxDepth = 64

// Renderer converts Document IR values to Markdown. It holds no per-call
// state, so one instance is safe for concurrent renders.
type Renderer struct {
	// MaxDepth caps block nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	log *slog.Logger
}

// New creates a Renderer. The logger is the diagnostic sink for unrecognized
// block kinds; nil disables diagnostics.
func New(log *slog.Logger) *Renderer {
	return &Renderer{MaxDepth: DefaultMaxDepth, log: log}
}

// Render converts a document to Markdown. Missing metadata or chapters are
// treated as empty; no input shape makes Render fail.
func (r *Renderer) Render(doc ir.Document) string {
	meta := doc.Metadata()

	var parts []string
	title := ir.String(meta, "title", "query")
	if title == "" {
		title = "报告"
	}
	parts = append(parts, "# "+escapeText(title), "")

	for _, chapter := range doc.Chapters() {
		if md := r.renderChapter(chapter); md != "" {
			parts = append(parts, md, "")
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (r *Renderer) renderChapter(chapter ir.Chapter) string {
	var lines []string
	if title := chapter.Title(); title != "" {
		lines = append(lines, "## "+escapeText(title), "")
	}
	if body := r.renderBlocks(chapter.Blocks(), true, 0); body != "" {
		lines = append(lines, body)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// renderBlocks renders a block list, dropping empty results. Blocks join
// with a blank line, or a bare newline inside list items.
func (r *Renderer) renderBlocks(blocks []any, joinWithBlank bool, depth int) string {
	var rendered []string
	for _, block := range blocks {
		md := strings.TrimSpace(r.renderBlock(block, depth))
		if md != "" {
			rendered = append(rendered, md)
		}
	}
	separator := "\n"
	if joinWithBlank {
		separator = "\n\n"
	}
	return strings.Join(rendered, separator)
}

// renderBlock dispatches one block by its type discriminant. A bare string
// renders as escaped text; a mapping without a known type falls through to
// its generic nested-blocks form, then to the JSON fallback.
func (r *Renderer) renderBlock(raw any, depth int) string {
	if depth > r.maxDepth() {
		return ""
	}
	var block ir.Block
	switch b := raw.(type) {
	case nil:
		return ""
	case string:
		return escapeText(b)
	case map[string]any:
		block = ir.Block(b)
	default:
		return ""
	}

	blockType := block.Type()
	if blockType == "" && truthy(block["inlines"]) {
		blockType = "paragraph"
	}

	switch blockType {
	case "heading":
		return r.renderHeading(block)
	case "paragraph":
		return renderInlines(ir.Slice(block, "inlines"), false)
	case "list":
		return r.renderList(block, depth)
	case "table":
		return r.renderTable(block, depth)
	case "swotTable":
		return r.renderSWOTTable(block)
	case "pestTable":
		return r.renderPESTTable(block)
	case "blockquote":
		return quoteLines(r.renderBlocks(ir.Slice(block, "blocks"), true, depth+1))
	case "engineQuote":
		return r.renderEngineQuote(block, depth)
	case "hr":
		return "---"
	case "code":
		return "```" + ir.String(block, "lang") + "\n" + ir.String(block, "content") + "\n```"
	case "math":
		latex := normalizeMath(block["latex"])
		if latex == "" {
			return ""
		}
		return "$$\n" + latex + "\n$$"
	case "figure":
		return r.renderFigure(block)
	case "callout":
		return r.renderCallout(block, depth)
	case "kpiGrid":
		return r.renderKPIGrid(block)
	case "widget":
		return r.renderWidget(block)
	case "toc":
		// A table of contents is meaningless in flat Markdown without
		// generated anchors.
		return ""
	default:
		if nested, ok := ir.AsSlice(block["blocks"]); ok {
			return r.renderBlocks(nested, true, depth+1)
		}
		return r.fallbackUnknown(block)
	}
}

func (r *Renderer) renderHeading(block ir.Block) string {
	level := ir.Int(block, "level", 2)
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	out := strings.Repeat("#", level) + " " + escapeText(ir.String(block, "text"))
	if subtitle := ir.String(block, "subtitle"); subtitle != "" {
		out += " _" + escapeText(subtitle) + "_"
	}
	return out
}

// renderList handles bullet, ordered and task flavors. Ordered markers
// follow input positions, so skipped empty items leave numbering gaps.
func (r *Renderer) renderList(block ir.Block, depth int) string {
	listType := ir.String(block, "listType")
	var lines []string
	for idx, rawItem := range ir.Slice(block, "items") {
		prefix := "-"
		switch listType {
		case "ordered":
			prefix = fmt.Sprintf("%d.", idx+1)
		case "task":
			prefix = "- [ ]"
		}
		itemBlocks, _ := ir.AsSlice(rawItem)
		content := r.renderBlocks(itemBlocks, false, depth+1)
		if content == "" {
			continue
		}
		contentLines := strings.Split(content, "\n")
		lines = append(lines, prefix+" "+contentLines[0])
		for _, cont := range contentLines[1:] {
			lines = append(lines, "  "+cont)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderEngineQuote(block ir.Block, depth int) string {
	title := ir.String(block, "title", "engine")
	if title == "" {
		title = "引用"
	}
	header := "**" + escapeText(title) + "**"
	if inner := r.renderBlocks(ir.Slice(block, "blocks"), true, depth+1); inner != "" {
		return quoteLines(header + "\n" + inner)
	}
	return quoteLines(header)
}

func (r *Renderer) renderCallout(block ir.Block, depth int) string {
	tone := ir.String(block, "tone")
	if tone == "" {
		tone = "info"
	}
	header := "[" + tone + "]"
	if title := ir.String(block, "title"); title != "" {
		header = "**" + escapeText(title) + "** " + header
	}
	content := header
	if inner := r.renderBlocks(ir.Slice(block, "blocks"), true, depth+1); inner != "" {
		content = header + "\n" + inner
	}
	return quoteLines(content)
}

// renderFigure degrades a figure to a placeholder image reference plus its
// caption. Real images are never embedded, only described.
func (r *Renderer) renderFigure(block ir.Block) string {
	caption := ir.String(block, "caption")
	if caption == "" {
		caption = "图像内容占位"
	}
	return "> ![图示占位]() " + escapeText(caption)
}

// fallbackUnknown captures blocks with no dedicated strategy as verbatim
// JSON inside a fence, so unrecognized content is preserved instead of
// dropped. One debug diagnostic per block goes to the injected sink.
func (r *Renderer) fallbackUnknown(block ir.Block) string {
	payload, err := marshalJSON(map[string]any(block), true)
	if err != nil {
		payload = fmt.Sprint(map[string]any(block))
	}
	if r.log != nil {
		r.log.Debug("unrecognized block type, falling back to JSON", "type", block.Type())
	}
	return "```json\n" + payload + "\n```"
}

func (r *Renderer) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}
