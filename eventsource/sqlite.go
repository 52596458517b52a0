package eventsource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteStore opens (or creates) a SQLite-backed event store at path.
// Use ":memory:" for an ephemeral store.
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
	CREATE TABLE IF NOT EXISTS events (
		stream  TEXT NOT NULL,
		version INTEGER NOT NULL,
		id      TEXT NOT NULL,
		type    TEXT NOT NULL,
		time    INTEGER NOT NULL,
		data    BLOB,
		PRIMARY KEY (stream, version)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds events to a stream with optimistic concurrency. The write
// is transactional: on conflict or error nothing is persisted.
func (s *SQLiteStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, stream)
	if err != nil {
		return 0, err
	}
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, e := range events {
		version++
		e.Stream = stream
		e.Version = version
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream, version, id, type, time, data) VALUES (?, ?, ?, ?, ?, ?)`,
			e.Stream, e.Version, e.ID, e.Type, e.Time.UnixNano(), []byte(e.Data),
		)
		if err != nil {
			return 0, fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return version, nil
}

// Read returns events in a stream from the given version.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stream, version, id, type, time, data FROM events
		 WHERE stream = ? AND version >= ? ORDER BY version`,
		stream, fromVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var e Event
		var ts int64
		var data []byte
		if err := rows.Scan(&e.Stream, &e.Version, &e.ID, &e.Type, &ts, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Time = time.Unix(0, ts).UTC()
		if len(data) > 0 {
			e.Data = data
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// StreamVersion returns the last version in the stream, or -1.
func (s *SQLiteStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream = ?`, stream,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query stream version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

// Streams returns all stream names, sorted.
func (s *SQLiteStore) Streams(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT stream FROM events ORDER BY stream`)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Close closes the underlying database if this store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

func streamVersionTx(ctx context.Context, tx *sql.Tx, stream string) (int, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream = ?`, stream,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query stream version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}
