// Package archive reads and writes single cases in the native .mapinv
// format: the case record as indented JSON.
package archive

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	json "github.com/goccy/go-json"

	"casewall/internal/board"
)

// Ext is the native archive extension.
const Ext = ".mapinv"

// ImportPrefix is the id prefix given to imported cases.
const ImportPrefix = "case-imp"

var ErrInvalidArchive = errors.New("invalid archive")

var whitespace = regexp.MustCompile(`\s+`)

// FileName is the export file name for c.
func FileName(c board.Case) string {
	return whitespace.ReplaceAllString(c.Name, "_") + Ext
}

// Export writes c as indented JSON.
func Export(w io.Writer, c board.Case) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode case: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Import parses an archive. Payloads without both a node list and an edge
// list are rejected with ErrInvalidArchive. The stored id is never
// trusted: the case gets a fresh one from newID.
func Import(r io.Reader, newID board.IDFunc) (board.Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return board.Case{}, fmt.Errorf("read archive: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return board.Case{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	for _, k := range []string{"nodes", "edges"} {
		raw, ok := keys[k]
		if !ok || string(raw) == "null" {
			return board.Case{}, fmt.Errorf("%w: missing %q", ErrInvalidArchive, k)
		}
	}

	var c board.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return board.Case{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	c.ID = newID(ImportPrefix)
	if c.Categories == nil {
		c.Categories = []board.CustomCategory{}
	}
	return c, nil
}
