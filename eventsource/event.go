// Package eventsource provides the append-only notification transport
// for the allowance ledger: ordered event streams with optimistic
// concurrency, backed by memory or SQLite.
//
// One stream holds the grant and consumption history of a single
// (owner, spender) pair; see PairStream.
package eventsource

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single immutable entry in a stream.
type Event struct {
	// ID is a unique event identifier.
	ID string `json:"id"`

	// Stream is the stream the event belongs to.
	Stream string `json:"stream"`

	// Type is the event type name, e.g. "renewable.granted".
	Type string `json:"type"`

	// Version is the event's position in its stream, assigned on append.
	Version int `json:"version"`

	// Time is when the event was created.
	Time time.Time `json:"time"`

	// Data is the JSON-encoded payload.
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent creates an event for a stream with a JSON-encoded payload.
// data may be nil.
func NewEvent(stream, eventType string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode event data: %w", err)
		}
		raw = b
	}

	return &Event{
		ID:     uuid.New().String(),
		Stream: stream,
		Type:   eventType,
		Time:   time.Now().UTC(),
		Data:   raw,
	}, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}

// PairStream returns the stream name for an (owner, spender) pair.
func PairStream(owner, spender string) string {
	return fmt.Sprintf("allowance:%s:%s", owner, spender)
}
