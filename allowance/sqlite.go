package allowance

import (
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database. Amounts are stored
// as decimal text so the full 256-bit range round-trips exactly.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: a pooled second connection to ":memory:" would see
	// a different database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, owned: true}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteStoreDB creates a store over an already-open database handle.
// The caller retains ownership of db; Close is a no-op for the handle.
func NewSQLiteStoreDB(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS allowances (
		owner    TEXT NOT NULL,
		spender  TEXT NOT NULL,
		max      TEXT NOT NULL,
		rate     TEXT NOT NULL,
		amount   TEXT NOT NULL,
		updated  INTEGER NOT NULL,
		expires  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (owner, spender)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the record for the pair, or the zero record if absent.
func (s *SQLiteStore) Get(owner, spender string) (Record, error) {
	var maxStr, rateStr, amountStr string
	var updated, expires uint64

	err := s.db.QueryRow(
		`SELECT max, rate, amount, updated, expires FROM allowances WHERE owner = ? AND spender = ?`,
		owner, spender,
	).Scan(&maxStr, &rateStr, &amountStr, &updated, &expires)
	if err == sql.ErrNoRows {
		return ZeroRecord(), nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("query allowance: %w", err)
	}

	max, err := uint256.FromDecimal(maxStr)
	if err != nil {
		return Record{}, fmt.Errorf("decode max: %w", err)
	}
	rate, err := uint256.FromDecimal(rateStr)
	if err != nil {
		return Record{}, fmt.Errorf("decode rate: %w", err)
	}
	amount, err := uint256.FromDecimal(amountStr)
	if err != nil {
		return Record{}, fmt.Errorf("decode amount: %w", err)
	}

	return Record{
		Max:          max,
		RecoveryRate: rate,
		Amount:       amount,
		Updated:      updated,
		Expires:      expires,
	}, nil
}

// Set overwrites the record for the pair.
func (s *SQLiteStore) Set(owner, spender string, r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO allowances (owner, spender, max, rate, amount, updated, expires)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (owner, spender) DO UPDATE SET
		   max = excluded.max,
		   rate = excluded.rate,
		   amount = excluded.amount,
		   updated = excluded.updated,
		   expires = excluded.expires`,
		owner, spender, r.Max.Dec(), r.RecoveryRate.Dec(), r.Amount.Dec(), r.Updated, r.Expires,
	)
	if err != nil {
		return fmt.Errorf("write allowance: %w", err)
	}
	return nil
}

// Close closes the underlying database if this store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
