package token

import (
	"sync"

	"github.com/holiman/uint256"
)

// Book is an in-memory Ledger.
type Book struct {
	name     string
	symbol   string
	decimals uint8

	mu       sync.RWMutex
	balances map[string]*uint256.Int
	supply   *uint256.Int
}

// NewBook creates an empty in-memory ledger with the given metadata.
func NewBook(name, symbol string, decimals uint8) *Book {
	return &Book{
		name:     name,
		symbol:   symbol,
		decimals: decimals,
		balances: make(map[string]*uint256.Int),
		supply:   new(uint256.Int),
	}
}

// Name returns the token name.
func (b *Book) Name() string { return b.name }

// Symbol returns the token symbol.
func (b *Book) Symbol() string { return b.symbol }

// Decimals returns the number of decimals the token uses.
func (b *Book) Decimals() uint8 { return b.decimals }

// TotalSupply returns the number of tokens in existence.
func (b *Book) TotalSupply() (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.supply.Clone(), nil
}

// BalanceOf returns the balance of an account.
func (b *Book) BalanceOf(account string) (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if bal, ok := b.balances[account]; ok {
		return bal.Clone(), nil
	}
	return new(uint256.Int), nil
}

// Mint creates tokens for an account.
func (b *Book) Mint(account string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(b.supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}

	bal := b.balances[account]
	if bal == nil {
		bal = new(uint256.Int)
	}
	// Balance cannot overflow if supply did not.
	b.balances[account] = new(uint256.Int).Add(bal, amount)
	b.supply = supply
	return nil
}

// Burn destroys tokens held by an account.
func (b *Book) Burn(account string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bal := b.balances[account]
	if bal == nil || amount.Gt(bal) {
		return ErrInsufficientBalance
	}
	b.balances[account] = new(uint256.Int).Sub(bal, amount)
	b.supply = new(uint256.Int).Sub(b.supply, amount)
	return nil
}

// Transfer moves tokens between accounts.
func (b *Book) Transfer(from, to string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.balances[from]
	if src == nil || amount.Gt(src) {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}

	dst := b.balances[to]
	if dst == nil {
		dst = new(uint256.Int)
	}

	b.balances[from] = new(uint256.Int).Sub(src, amount)
	b.balances[to] = new(uint256.Int).Add(dst, amount)
	return nil
}

var _ Ledger = (*Book)(nil)
