package storage

import (
	"fmt"
	"sync"

	"github.com/Tiliavir/simple-timesheet/internal/model"
)

// Memory is an append-only entry store that lives for the lifetime of the
// process. It performs no validation beyond rejecting a nil entry.
type Memory struct {
	mu      sync.RWMutex
	entries []model.Entry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{entries: []model.Entry{}}
}

// AddEntry appends a copy of entry, preserving insertion order.
func (m *Memory) AddEntry(entry *model.Entry) error {
	if entry == nil {
		return fmt.Errorf("storage error adding entry: %w", model.ErrNilEntry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

// GetAllEntries returns a snapshot of every entry in insertion order.
// The returned slice is never nil and is not shared with the store.
func (m *Memory) GetAllEntries() []model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports how many entries are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
