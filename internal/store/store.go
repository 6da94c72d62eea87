// Package store persists the full list of cases as a single keyed entry.
// The whole list is written on every save and read once at startup.
package store

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"casewall/internal/board"
)

// Key is the name of the single entry that holds every case.
const Key = "casewall.cases"

var ErrClosed = errors.New("store: closed")

// Repository loads and saves the complete case list.
type Repository interface {
	Load(ctx context.Context) ([]board.Case, error)
	Save(ctx context.Context, cases []board.Case) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the repository for the named backend rooted at path.
func Open(backend, path string) (Repository, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// document is the serialized form of the keyed entry.
type document struct {
	Cases []board.Case `json:"cases"`
}

func encode(cases []board.Case) ([]byte, error) {
	if cases == nil {
		cases = []board.Case{}
	}
	return json.Marshal(document{Cases: cases})
}

func decode(data []byte) ([]board.Case, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if doc.Cases == nil {
		doc.Cases = []board.Case{}
	}
	return doc.Cases, nil
}
