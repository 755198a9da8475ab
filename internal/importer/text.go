package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/reportmd/internal/ir"
)

// TextImporter handles plain text files: blank lines split paragraphs, all
// collected into a single untitled chapter.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (ir.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := newDocument(titleStem(filename))
	if len(paragraphs) == 0 {
		return doc, nil
	}

	chapter := newChapter("")
	for _, para := range paragraphs {
		appendBlock(chapter, paragraphBlock(para))
	}
	appendChapter(doc, chapter)
	return doc, nil
}
