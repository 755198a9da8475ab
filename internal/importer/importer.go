// Package importer reconstructs a Document IR from uploaded source files,
// the inverse of the Markdown renderer. Imported documents flow through the
// same IR as pipeline-authored reports, so any supported format can be
// normalized and re-emitted as portable Markdown.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// Importer converts raw document bytes into a Document IR.
type Importer interface {
	Import(r io.Reader, filename string) (ir.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleStem strips known extensions from a filename for the default title.
func titleStem(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext)
}

// newDocument builds an empty Document IR with the given title.
func newDocument(title string) ir.Document {
	return ir.Document{
		"metadata": map[string]any{"title": title},
		"chapters": []any{},
	}
}

func setTitle(doc ir.Document, title string) {
	if meta, ok := ir.AsMap(doc["metadata"]); ok {
		meta["title"] = title
	}
}

func appendChapter(doc ir.Document, chapter map[string]any) {
	chapters, _ := ir.AsSlice(doc["chapters"])
	doc["chapters"] = append(chapters, chapter)
}

func newChapter(title string) map[string]any {
	ch := map[string]any{"blocks": []any{}}
	if title != "" {
		ch["title"] = title
	}
	return ch
}

func appendBlock(chapter map[string]any, block any) {
	blocks, _ := ir.AsSlice(chapter["blocks"])
	chapter["blocks"] = append(blocks, block)
}

func chapterBlockCount(chapter map[string]any) int {
	blocks, _ := ir.AsSlice(chapter["blocks"])
	return len(blocks)
}

// paragraphBlock wraps plain text in a single-run paragraph.
func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"type":    "paragraph",
		"inlines": []any{map[string]any{"text": text}},
	}
}

func headingBlock(level int, text string) map[string]any {
	return map[string]any{"type": "heading", "level": level, "text": text}
}
