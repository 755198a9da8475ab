package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/reportmd/internal/ir"
)

// MarkdownImporter handles Markdown files using goldmark with the GFM
// extensions, so tables, strikethrough and task lists survive the trip
// through the IR.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (ir.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	doc := newDocument(titleStem(filename))

	// Level-1 headings open chapters; everything else becomes blocks of the
	// current chapter.
	current := newChapter("")
	flush := func() {
		if chapterBlockCount(current) > 0 || current["title"] != nil {
			appendChapter(doc, current)
		}
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			flush()
			current = newChapter(string(h.Text(src)))
			continue
		}
		if block := convertBlock(n, src); block != nil {
			appendBlock(current, block)
		}
	}
	flush()

	return doc, nil
}

// convertBlock maps one goldmark block node to an IR block. Nodes with no
// IR counterpart return nil and are dropped.
func convertBlock(n ast.Node, src []byte) map[string]any {
	switch node := n.(type) {
	case *ast.Heading:
		return headingBlock(node.Level, string(node.Text(src)))
	case *ast.Paragraph, *ast.TextBlock:
		inlines := convertInlines(n, src, nil)
		if len(inlines) == 0 {
			return nil
		}
		return map[string]any{"type": "paragraph", "inlines": inlines}
	case *ast.List:
		return convertList(node, src)
	case *ast.FencedCodeBlock:
		return map[string]any{
			"type":    "code",
			"lang":    string(node.Language(src)),
			"content": blockLines(node, src),
		}
	case *ast.CodeBlock:
		return map[string]any{"type": "code", "lang": "", "content": blockLines(node, src)}
	case *ast.Blockquote:
		var blocks []any
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if block := convertBlock(c, src); block != nil {
				blocks = append(blocks, block)
			}
		}
		if len(blocks) == 0 {
			return nil
		}
		return map[string]any{"type": "blockquote", "blocks": blocks}
	case *ast.ThematicBreak:
		return map[string]any{"type": "hr"}
	case *east.Table:
		return convertTable(node, src)
	default:
		return nil
	}
}

func convertList(list *ast.List, src []byte) map[string]any {
	listType := "bullet"
	if list.IsOrdered() {
		listType = "ordered"
	}
	var items []any
	hasTask := false
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var itemBlocks []any
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if first := c.FirstChild(); first != nil {
				if _, ok := first.(*east.TaskCheckBox); ok {
					hasTask = true
				}
			}
			if block := convertBlock(c, src); block != nil {
				itemBlocks = append(itemBlocks, block)
			}
		}
		items = append(items, itemBlocks)
	}
	if hasTask {
		listType = "task"
	}
	if len(items) == 0 {
		return nil
	}
	return map[string]any{"type": "list", "listType": listType, "items": items}
}

func convertTable(table *east.Table, src []byte) map[string]any {
	var rows []any
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		_, isHeader := r.(*east.TableHeader)
		var cells []any
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell := map[string]any{"blocks": []any{string(c.Text(src))}}
			if isHeader {
				cell["header"] = true
			}
			cells = append(cells, cell)
		}
		rows = append(rows, map[string]any{"cells": cells})
	}
	if len(rows) == 0 {
		return nil
	}
	return map[string]any{"type": "table", "rows": rows}
}

// convertInlines flattens goldmark inline nodes into IR runs. outer carries
// the marks of enclosing emphasis nodes; run marks list innermost first so
// the renderer's wrap order reproduces the original nesting.
func convertInlines(parent ast.Node, src []byte, outer []any) []any {
	var runs []any
	var plain strings.Builder

	flush := func() {
		if plain.Len() == 0 {
			return
		}
		runs = append(runs, markedRun(plain.String(), outer))
		plain.Reset()
	}

	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			plain.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				plain.WriteByte(' ')
			}
		case *ast.String:
			plain.Write(node.Value)
		case *ast.CodeSpan:
			flush()
			runs = append(runs, markedRun(string(node.Text(src)), prependMark(outer, map[string]any{"type": "code"})))
		case *ast.Emphasis:
			flush()
			markType := "italic"
			if node.Level >= 2 {
				markType = "bold"
			}
			runs = append(runs, convertInlines(node, src, prependMark(outer, map[string]any{"type": markType}))...)
		case *east.Strikethrough:
			flush()
			runs = append(runs, convertInlines(node, src, prependMark(outer, map[string]any{"type": "strike"}))...)
		case *ast.Link:
			flush()
			mark := map[string]any{"type": "link", "href": string(node.Destination)}
			runs = append(runs, convertInlines(node, src, prependMark(outer, mark))...)
		case *ast.AutoLink:
			flush()
			url := string(node.URL(src))
			runs = append(runs, markedRun(url, prependMark(outer, map[string]any{"type": "link", "href": url})))
		case *ast.Image:
			flush()
			alt := string(node.Text(src))
			if alt == "" {
				alt = string(node.Destination)
			}
			runs = append(runs, markedRun(alt, prependMark(outer, map[string]any{"type": "link", "href": string(node.Destination)})))
		case *east.TaskCheckBox:
			// Rendered by the list marker, not as run text.
		default:
			plain.WriteString(string(c.Text(src)))
		}
	}
	flush()
	return runs
}

func markedRun(text string, marks []any) map[string]any {
	run := map[string]any{"text": text}
	if len(marks) > 0 {
		run["marks"] = marks
	}
	return run
}

func prependMark(outer []any, mark map[string]any) []any {
	marks := make([]any, 0, len(outer)+1)
	marks = append(marks, mark)
	return append(marks, outer...)
}

// blockLines joins a code block's raw source lines.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
