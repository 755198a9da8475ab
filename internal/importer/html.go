package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/reportmd/internal/ir"
)

// HTMLImporter handles HTML files. Heading tags shape the chapter layout,
// content tags map to IR blocks, chrome elements (script/style/nav/etc.)
// are skipped.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (ir.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := newDocument(titleStem(filename))
	if title := findTitle(root); title != "" {
		setTitle(doc, title)
	}

	current := newChapter("")
	flush := func() {
		if chapterBlockCount(current) > 0 || current["title"] != nil {
			appendChapter(doc, current)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				text := textContent(n)
				if level == 1 {
					flush()
					current = newChapter(text)
				} else if text != "" {
					appendBlock(current, headingBlock(level, text))
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p":
				if text := textContent(n); text != "" {
					appendBlock(current, paragraphBlock(text))
				}
				return
			case "ul", "ol":
				if block := convertHTMLList(n); block != nil {
					appendBlock(current, block)
				}
				return
			case "table":
				if block := convertHTMLTable(n); block != nil {
					appendBlock(current, block)
				}
				return
			case "blockquote":
				if text := textContent(n); text != "" {
					appendBlock(current, map[string]any{
						"type":   "blockquote",
						"blocks": []any{paragraphBlock(text)},
					})
				}
				return
			case "pre":
				if text := rawTextContent(n); text != "" {
					appendBlock(current, map[string]any{"type": "code", "lang": "", "content": text})
				}
				return
			case "hr":
				appendBlock(current, map[string]any{"type": "hr"})
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	flush()

	return doc, nil
}

func convertHTMLList(n *html.Node) map[string]any {
	listType := "bullet"
	if n.Data == "ol" {
		listType = "ordered"
	}
	var items []any
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if text := textContent(c); text != "" {
			items = append(items, []any{paragraphBlock(text)})
		}
	}
	if len(items) == 0 {
		return nil
	}
	return map[string]any{"type": "list", "listType": listType, "items": items}
}

func convertHTMLTable(n *html.Node) map[string]any {
	var rows []any
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var cells []any
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				cell := map[string]any{"blocks": []any{textContent(c)}}
				if c.Data == "th" {
					cell["header"] = true
				}
				if span := attrInt(c, "colspan"); span > 1 {
					cell["colspan"] = span
				}
				cells = append(cells, cell)
			}
			if len(cells) > 0 {
				rows = append(rows, map[string]any{"cells": cells})
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	if len(rows) == 0 {
		return nil
	}
	return map[string]any{"type": "table", "rows": rows}
}

func attrInt(n *html.Node, name string) int {
	for _, attr := range n.Attr {
		if attr.Key == name {
			if v, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil {
				return v
			}
		}
	}
	return 0
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(rawTextContent(n))
}

func rawTextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
