package ir

import "encoding/json"

// Document is the root of a decoded Document IR payload. The IR arrives as
// arbitrary JSON from the upstream report pipeline, so the types here are
// map-backed views rather than rigid structs: unknown fields survive for the
// renderer's JSON fallback, and wrong value kinds read as absent.
type Document map[string]any

// Chapter is one chapter entry under Document.chapters.
type Chapter map[string]any

// Block is one discriminated content unit within a chapter.
type Block map[string]any

// Decode parses a JSON Document IR payload.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Metadata returns the document metadata mapping, or an empty map.
func (d Document) Metadata() map[string]any {
	return Map(d, "metadata")
}

// Chapters returns the ordered chapter list, skipping non-mapping entries.
func (d Document) Chapters() []Chapter {
	var chapters []Chapter
	for _, v := range Slice(d, "chapters") {
		if m, ok := AsMap(v); ok {
			chapters = append(chapters, Chapter(m))
		}
	}
	return chapters
}

// SetTitle overrides the document title, creating metadata if needed.
func SetTitle(d Document, title string) {
	meta, ok := AsMap(d["metadata"])
	if !ok {
		meta = map[string]any{}
		d["metadata"] = meta
	}
	meta["title"] = title
}

// Title returns the chapter title, falling back to the chapter id.
func (c Chapter) Title() string {
	return String(c, "title", "chapterId")
}

// Blocks returns the chapter's raw block list.
func (c Chapter) Blocks() []any {
	return Slice(c, "blocks")
}

// Type returns the block's kind discriminant.
func (b Block) Type() string {
	return String(b, "type")
}

// AsMap reports v as a string-keyed mapping.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsSlice reports v as a sequence.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// String returns the first non-empty string value among keys. Non-string
// values are treated as absent.
func String(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Map returns m[key] as a mapping, or an empty map when absent or mistyped.
func Map(m map[string]any, key string) map[string]any {
	if nested, ok := AsMap(m[key]); ok {
		return nested
	}
	return map[string]any{}
}

// Slice returns m[key] as a sequence, or nil when absent or mistyped.
func Slice(m map[string]any, key string) []any {
	if s, ok := AsSlice(m[key]); ok {
		return s
	}
	return nil
}

// Int returns m[key] as an int, accepting JSON float64 and Go int encodings.
func Int(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}
