// Package notebook decodes on-disk notebook documents (.ipynb).
//
// Only the parts of the nbformat schema needed to rebuild a notebook's code
// are modelled: the ordered cells, their type, and their source lines.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CellType identifies the kind of a cell. Values other than Code and
// Markdown (e.g. "raw") are kept as-is.
type CellType string

const (
	Code     CellType = "code"
	Markdown CellType = "markdown"
)

// Document is a notebook read from disk.
type Document struct {
	Path          string `json:"-"`
	NBFormat      int    `json:"nbformat"`
	NBFormatMinor int    `json:"nbformat_minor"`
	Cells         []Cell `json:"cells"`
}

// Cell is one unit of a notebook document.
type Cell struct {
	Type   CellType `json:"cell_type"`
	Source Source   `json:"source"`
}

// IsCode reports whether the cell holds code.
func (c Cell) IsCode() bool {
	return c.Type == Code
}

// Source holds a cell's lines without their line terminators.
//
// nbformat stores source either as a list of strings (each keeping its
// trailing newline, except usually the last) or as one string. Both forms
// decode to the same lines.
type Source []string

// UnmarshalJSON accepts a JSON list of strings, a single string, or null.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = nil
	case string:
		*s = splitLines(v)
	case []any:
		lines := make(Source, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("source line %d: expected string, got %T", i, item)
			}
			lines = append(lines, trimEOL(str))
		}
		*s = lines
	default:
		return fmt.Errorf("source: expected string or list of strings, got %T", raw)
	}
	return nil
}

// MarshalJSON writes the nbformat list form: every line but the last
// carries a trailing newline.
func (s Source) MarshalJSON() ([]byte, error) {
	out := make([]string, len(s))
	for i, line := range s {
		if i < len(s)-1 {
			line += "\n"
		}
		out[i] = line
	}
	return json.Marshal(out)
}

// splitLines splits text after each "\n" and trims the terminators, so
// "a\nb\n" yields ["a", "b"] and "" yields no lines.
func splitLines(text string) Source {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	lines := make(Source, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue // after a trailing newline
		}
		lines = append(lines, trimEOL(p))
	}
	return lines
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// DocumentReadError reports a notebook that is missing, unreadable, or not
// valid JSON.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("reading notebook %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// Load reads and decodes the notebook at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentReadError{Path: path, Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, &DocumentReadError{Path: path, Err: err}
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a notebook document from JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
