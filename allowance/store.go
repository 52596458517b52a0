package allowance

import (
	"sync"
)

// Store is the persistence contract for allowance records: a pure
// key/value map over ordered (owner, spender) pairs with point reads and
// writes. Get returns the zero record for an absent pair. Set is an
// unconditional full overwrite; there are no partial updates.
//
// Store implementations do not serialize read-modify-write sequences.
// The surrounding execution environment must serialize operations on a
// given pair; distinct pairs are fully independent.
type Store interface {
	Get(owner, spender string) (Record, error)
	Set(owner, spender string, r Record) error
}

type pairKey struct {
	owner   string
	spender string
}

// MemoryStore is an in-memory Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[pairKey]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[pairKey]Record),
	}
}

// Get returns the record for the pair, or the zero record if absent.
func (s *MemoryStore) Get(owner, spender string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[pairKey{owner, spender}]
	if !ok {
		return ZeroRecord(), nil
	}
	return r.Clone(), nil
}

// Set overwrites the record for the pair.
func (s *MemoryStore) Set(owner, spender string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[pairKey{owner, spender}] = r.Clone()
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ Store = (*MemoryStore)(nil)
