package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-renew/allowance"
	"github.com/pflow-xyz/go-renew/eventsource"
	"github.com/pflow-xyz/go-renew/token"
)

// state holds the ledger components opened over a single database file.
type state struct {
	db     *sql.DB
	tok    *token.Token
	events eventsource.Store
}

func openState(path string) (*state, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	book, err := token.NewSQLiteBookDB(db, "Renewable", "RNW", 18)
	if err != nil {
		db.Close()
		return nil, err
	}
	allowances, err := allowance.NewSQLiteStoreDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	events, err := eventsource.NewSQLiteStoreDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &state{
		db:     db,
		tok:    token.New(book, allowances, token.WithEventStore(events)),
		events: events,
	}, nil
}

func (s *state) close() {
	s.db.Close()
}

// parseAmount parses a decimal token amount.
func parseAmount(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("-%s is required", name)
	}
	v, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, value, err)
	}
	return v, nil
}

// resolveNow maps the -now flag to unix seconds, falling back to the
// wall clock when unset.
func resolveNow(now int64) uint64 {
	if now < 0 {
		return uint64(time.Now().Unix())
	}
	return uint64(now)
}
