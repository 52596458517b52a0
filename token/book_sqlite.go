package token

import (
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"
	_ "modernc.org/sqlite"
)

// SQLiteBook is a Ledger backed by a SQLite database. Amounts are stored
// as decimal text so the full 256-bit range round-trips exactly.
type SQLiteBook struct {
	name     string
	symbol   string
	decimals uint8

	db    *sql.DB
	owned bool
}

// NewSQLiteBook opens (or creates) a SQLite-backed ledger at path.
func NewSQLiteBook(path, name, symbol string, decimals uint8) (*SQLiteBook, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: a pooled second connection to ":memory:" would see
	// a different database.
	db.SetMaxOpenConns(1)

	b := &SQLiteBook{name: name, symbol: symbol, decimals: decimals, db: db, owned: true}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

// NewSQLiteBookDB creates a ledger over an already-open database handle.
// The caller retains ownership of db; Close is a no-op for the handle.
func NewSQLiteBookDB(db *sql.DB, name, symbol string, decimals uint8) (*SQLiteBook, error) {
	b := &SQLiteBook{name: name, symbol: symbol, decimals: decimals, db: db}
	if err := b.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

func (b *SQLiteBook) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS balances (
		account TEXT PRIMARY KEY,
		amount  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS supply (
		id     INTEGER PRIMARY KEY CHECK (id = 1),
		amount TEXT NOT NULL
	);
	INSERT OR IGNORE INTO supply (id, amount) VALUES (1, '0');`
	_, err := b.db.Exec(schema)
	return err
}

// Name returns the token name.
func (b *SQLiteBook) Name() string { return b.name }

// Symbol returns the token symbol.
func (b *SQLiteBook) Symbol() string { return b.symbol }

// Decimals returns the number of decimals the token uses.
func (b *SQLiteBook) Decimals() uint8 { return b.decimals }

// TotalSupply returns the number of tokens in existence.
func (b *SQLiteBook) TotalSupply() (*uint256.Int, error) {
	var s string
	if err := b.db.QueryRow(`SELECT amount FROM supply WHERE id = 1`).Scan(&s); err != nil {
		return nil, fmt.Errorf("query supply: %w", err)
	}
	supply, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("decode supply: %w", err)
	}
	return supply, nil
}

// BalanceOf returns the balance of an account.
func (b *SQLiteBook) BalanceOf(account string) (*uint256.Int, error) {
	var s string
	err := b.db.QueryRow(`SELECT amount FROM balances WHERE account = ?`, account).Scan(&s)
	if err == sql.ErrNoRows {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}
	bal, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return bal, nil
}

// Mint creates tokens for an account.
func (b *SQLiteBook) Mint(account string, amount *uint256.Int) error {
	return b.inTx(func(tx *sql.Tx) error {
		supply, err := readAmountTx(tx, `SELECT amount FROM supply WHERE id = 1`)
		if err != nil {
			return err
		}
		newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
		if overflow {
			return ErrSupplyOverflow
		}

		bal, err := readBalanceTx(tx, account)
		if err != nil {
			return err
		}

		if err := writeBalanceTx(tx, account, new(uint256.Int).Add(bal, amount)); err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE supply SET amount = ? WHERE id = 1`, newSupply.Dec())
		return err
	})
}

// Burn destroys tokens held by an account.
func (b *SQLiteBook) Burn(account string, amount *uint256.Int) error {
	return b.inTx(func(tx *sql.Tx) error {
		bal, err := readBalanceTx(tx, account)
		if err != nil {
			return err
		}
		if amount.Gt(bal) {
			return ErrInsufficientBalance
		}

		supply, err := readAmountTx(tx, `SELECT amount FROM supply WHERE id = 1`)
		if err != nil {
			return err
		}

		if err := writeBalanceTx(tx, account, new(uint256.Int).Sub(bal, amount)); err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE supply SET amount = ? WHERE id = 1`,
			new(uint256.Int).Sub(supply, amount).Dec())
		return err
	})
}

// Transfer moves tokens between accounts.
func (b *SQLiteBook) Transfer(from, to string, amount *uint256.Int) error {
	return b.inTx(func(tx *sql.Tx) error {
		src, err := readBalanceTx(tx, from)
		if err != nil {
			return err
		}
		if amount.Gt(src) {
			return ErrInsufficientBalance
		}
		if from == to {
			return nil
		}

		dst, err := readBalanceTx(tx, to)
		if err != nil {
			return err
		}

		if err := writeBalanceTx(tx, from, new(uint256.Int).Sub(src, amount)); err != nil {
			return err
		}
		return writeBalanceTx(tx, to, new(uint256.Int).Add(dst, amount))
	})
}

// Close closes the underlying database if this ledger opened it.
func (b *SQLiteBook) Close() error {
	if !b.owned || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBook) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func readAmountTx(tx *sql.Tx, query string, args ...any) (*uint256.Int, error) {
	var s string
	if err := tx.QueryRow(query, args...).Scan(&s); err != nil {
		return nil, fmt.Errorf("query amount: %w", err)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	return v, nil
}

func readBalanceTx(tx *sql.Tx, account string) (*uint256.Int, error) {
	var s string
	err := tx.QueryRow(`SELECT amount FROM balances WHERE account = ?`, account).Scan(&s)
	if err == sql.ErrNoRows {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return v, nil
}

func writeBalanceTx(tx *sql.Tx, account string, amount *uint256.Int) error {
	_, err := tx.Exec(
		`INSERT INTO balances (account, amount) VALUES (?, ?)
		 ON CONFLICT (account) DO UPDATE SET amount = excluded.amount`,
		account, amount.Dec(),
	)
	return err
}

var _ Ledger = (*SQLiteBook)(nil)
