package token

import "github.com/holiman/uint256"

// Proxy wraps an existing base token so a renewable allowance surface
// can be deployed in front of it. All ledger operations pass through
// unchanged; Underlying exposes the wrapped token for capability-aware
// callers.
type Proxy struct {
	underlying Ledger
}

// NewProxy wraps an existing base ledger.
func NewProxy(underlying Ledger) *Proxy {
	return &Proxy{underlying: underlying}
}

// Underlying returns the wrapped base token.
func (p *Proxy) Underlying() Ledger { return p.underlying }

// Name returns the underlying token name.
func (p *Proxy) Name() string { return p.underlying.Name() }

// Symbol returns the underlying token symbol.
func (p *Proxy) Symbol() string { return p.underlying.Symbol() }

// Decimals returns the underlying token decimals.
func (p *Proxy) Decimals() uint8 { return p.underlying.Decimals() }

// TotalSupply returns the underlying total supply.
func (p *Proxy) TotalSupply() (*uint256.Int, error) { return p.underlying.TotalSupply() }

// BalanceOf returns the underlying balance of an account.
func (p *Proxy) BalanceOf(account string) (*uint256.Int, error) {
	return p.underlying.BalanceOf(account)
}

// Mint passes through to the underlying token.
func (p *Proxy) Mint(account string, amount *uint256.Int) error {
	return p.underlying.Mint(account, amount)
}

// Burn passes through to the underlying token.
func (p *Proxy) Burn(account string, amount *uint256.Int) error {
	return p.underlying.Burn(account, amount)
}

// Transfer passes through to the underlying token.
func (p *Proxy) Transfer(from, to string, amount *uint256.Int) error {
	return p.underlying.Transfer(from, to, amount)
}

var _ Ledger = (*Proxy)(nil)
