package token

import (
	"context"
	"fmt"
	"time"

	"github.com/pflow-xyz/go-renew/eventsource"
)

// HistoryEntry is one decoded event from a pair's stream.
type HistoryEntry struct {
	Version int
	Time    time.Time
	Type    string

	// Granted is set for EventGranted entries.
	Granted *GrantedData

	// Consumed is set for EventConsumed entries.
	Consumed *ConsumedData
}

// History reads and decodes the full event stream for an
// (owner, spender) pair. Unknown event types are returned with only the
// envelope fields set.
func History(ctx context.Context, store eventsource.Store, owner, spender string) ([]HistoryEntry, error) {
	events, err := store.Read(ctx, eventsource.PairStream(owner, spender), 0)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(events))
	for _, e := range events {
		entry := HistoryEntry{
			Version: e.Version,
			Time:    e.Time,
			Type:    e.Type,
		}

		switch e.Type {
		case EventGranted:
			var data GrantedData
			if err := e.Decode(&data); err != nil {
				return nil, fmt.Errorf("decode event %s: %w", e.ID, err)
			}
			entry.Granted = &data
		case EventConsumed:
			var data ConsumedData
			if err := e.Decode(&data); err != nil {
				return nil, fmt.Errorf("decode event %s: %w", e.ID, err)
			}
			entry.Consumed = &data
		}

		out = append(out, entry)
	}
	return out, nil
}
