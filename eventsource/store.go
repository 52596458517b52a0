package eventsource

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrConcurrencyConflict is returned by Append when the expected version
// does not match the stream's current version.
var ErrConcurrencyConflict = errors.New("eventsource: concurrency conflict")

// Store persists ordered event streams.
type Store interface {
	// Append adds events to a stream. expectedVersion is the version of
	// the last event already in the stream (-1 for a new stream); on
	// mismatch ErrConcurrencyConflict is returned and nothing is written.
	// Returns the version of the last appended event.
	Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error)

	// Read returns events in a stream with Version >= fromVersion, in
	// order. An unknown stream yields no events and no error.
	Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error)

	// StreamVersion returns the version of the last event in the stream,
	// or -1 if the stream does not exist.
	StreamVersion(ctx context.Context, stream string) (int, error)

	// Streams returns the names of all streams with at least one event.
	Streams(ctx context.Context) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]*Event),
	}
}

// Append adds events to a stream with optimistic concurrency.
func (s *MemoryStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := len(s.streams[stream]) - 1
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, e := range events {
		version++
		e.Stream = stream
		e.Version = version
		s.streams[stream] = append(s.streams[stream], e)
	}
	return version, nil
}

// Read returns events in a stream from the given version.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.streams[stream] {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion returns the last version in the stream, or -1.
func (s *MemoryStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[stream]) - 1, nil
}

// Streams returns all stream names, sorted.
func (s *MemoryStore) Streams(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
