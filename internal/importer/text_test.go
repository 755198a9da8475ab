package importer

import (
	"strings"
	"testing"

	"github.com/dgallion1/reportmd/internal/ir"
)

func textParagraphs(t *testing.T, doc ir.Document) []string {
	t.Helper()
	chapters := doc.Chapters()
	if len(chapters) == 0 {
		return nil
	}
	var texts []string
	for _, raw := range chapters[0].Blocks() {
		block, _ := ir.AsMap(raw)
		for _, rawRun := range ir.Slice(block, "inlines") {
			run, _ := ir.AsMap(rawRun)
			texts = append(texts, ir.String(run, "text"))
		}
	}
	return texts
}

func TestTextImporter_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextImporter{}
	doc, err := p.Import(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ir.String(doc.Metadata(), "title"); got != "notes" {
		t.Errorf("expected title %q, got %q", "notes", got)
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	got := textParagraphs(t, doc)
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestTextImporter_EmptyInput(t *testing.T) {
	p := &TextImporter{}
	doc, err := p.Import(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(doc.Chapters()); got != 0 {
		t.Errorf("expected 0 chapters for empty input, got %d", got)
	}
}

func TestTextImporter_WhitespaceOnlyLinesSplit(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextImporter{}
	doc, err := p.Import(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(textParagraphs(t, doc)); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d", got)
	}
}

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename  string
		supported bool
	}{
		{"a.txt", true},
		{"a.md", true},
		{"a.markdown", true},
		{"a.csv", true},
		{"a.html", true},
		{"a.htm", true},
		{"a.pdf", true},
		{"a.docx", true},
		{"a.exe", false},
		{"noext", false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if tt.supported && err != nil {
			t.Errorf("%s: expected importer, got error %v", tt.filename, err)
		}
		if !tt.supported && err == nil {
			t.Errorf("%s: expected error for unsupported extension", tt.filename)
		}
	}
	if IsSupportedExtension("x.EXE") {
		t.Error("expected .exe unsupported")
	}
	if !IsSupportedExtension("x.MD") {
		t.Error("expected extension check to be case-insensitive")
	}
}
