package store

import (
	"context"
	"sync"

	"casewall/internal/board"
)

// Memory keeps the serialized list in memory. Saves round-trip through the
// same encoding as the durable backends so callers never share slices
// with the store.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	saves  int
	closed bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) ([]board.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.data == nil {
		return []board.Case{}, nil
	}
	return decode(m.data)
}

func (m *Memory) Save(ctx context.Context, cases []board.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	data, err := encode(cases)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

// Saves counts successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
