package receipt

import (
	"fmt"
	"sync"
)

// MemoryStore implements the Store interface with a mutex guarded map.
// Records live for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Insert saves a copy of the record unless its ID is already present
func (m *MemoryStore) Insert(record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}
	m.records[record.ID] = *record
	return nil
}

// Get returns a copy of the record stored under id
func (m *MemoryStore) Get(id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &record, nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
