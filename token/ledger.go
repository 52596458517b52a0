// Package token binds the allowance engine to a base fungible-token
// ledger, exposing the public token surface: static and renewable
// approvals, allowance queries, and allowance-gated transfers.
//
// The base ledger is an injected collaborator. The allowance math never
// depends on it, so the engine stays unit-testable without a full token
// implementation.
package token

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	ErrSupplyOverflow      = errors.New("token: total supply overflow")
)

// Ledger is the base fungible-token collaborator: balances, supply, and
// raw transfers. Amounts are 256-bit unsigned integers.
type Ledger interface {
	// Name returns the token name.
	Name() string

	// Symbol returns the token symbol.
	Symbol() string

	// Decimals returns the number of decimals the token uses.
	Decimals() uint8

	// TotalSupply returns the number of tokens in existence.
	TotalSupply() (*uint256.Int, error)

	// BalanceOf returns the balance of an account. Unknown accounts have
	// a zero balance.
	BalanceOf(account string) (*uint256.Int, error)

	// Mint creates tokens for an account, increasing total supply.
	Mint(account string, amount *uint256.Int) error

	// Burn destroys tokens held by an account, decreasing total supply.
	// Fails with ErrInsufficientBalance if the account holds less.
	Burn(account string, amount *uint256.Int) error

	// Transfer moves tokens between accounts. Fails with
	// ErrInsufficientBalance if from holds less than amount; on failure
	// no balance changes.
	Transfer(from, to string, amount *uint256.Int) error
}
