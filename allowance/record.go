// Package allowance implements a renewable allowance ledger: per
// (owner, spender) spending permissions that start at a maximum value,
// are consumed by transfers, and regenerate over time at a fixed rate
// up to that maximum.
//
// Recovery is never scheduled. Every operation takes the current time as
// an explicit argument and catches the record up lazily, so the package
// has no background goroutines and is deterministic under test.
package allowance

import (
	"github.com/holiman/uint256"
)

// Record holds the stored state of one (owner, spender) allowance.
//
// Amount is a snapshot of the remaining allowance as of Updated, not the
// live spendable value; use Engine.Spendable for that.
type Record struct {
	// Max is the ceiling the allowance regenerates to, and its value
	// immediately after a grant.
	Max *uint256.Int

	// RecoveryRate is the quantity regenerated per second. Zero means the
	// allowance is static and never regenerates.
	RecoveryRate *uint256.Int

	// Amount is the allowance remaining as of Updated.
	Amount *uint256.Int

	// Updated is the unix time (seconds) Amount was last written.
	Updated uint64

	// Expires is an absolute unix time after which the allowance is
	// treated as zero. Zero means no expiration.
	Expires uint64
}

// State is the observed lifecycle state of a record at a point in time.
type State int

const (
	// StateAbsent means no grant exists for the pair.
	StateAbsent State = iota
	// StateStatic means a non-renewable grant is active.
	StateStatic
	// StateRenewable means a renewable grant is active.
	StateRenewable
	// StateExpired means a renewable grant has passed its expiration.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateStatic:
		return "static"
	case StateRenewable:
		return "renewable"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ZeroRecord returns the record equivalent to an absent grant.
func ZeroRecord() Record {
	return Record{
		Max:          new(uint256.Int),
		RecoveryRate: new(uint256.Int),
		Amount:       new(uint256.Int),
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record{
		Max:          r.Max.Clone(),
		RecoveryRate: r.RecoveryRate.Clone(),
		Amount:       r.Amount.Clone(),
		Updated:      r.Updated,
		Expires:      r.Expires,
	}
}

// IsZero reports whether the record is equivalent to an absent grant.
func (r Record) IsZero() bool {
	return r.Max.IsZero() && r.RecoveryRate.IsZero() && r.Amount.IsZero()
}

// StateAt returns the observed lifecycle state at the given unix time.
// Expiration is derived, never stored: the underlying record is not
// mutated by the transition into StateExpired.
func (r Record) StateAt(now uint64) State {
	if r.IsZero() {
		return StateAbsent
	}
	if r.RecoveryRate.IsZero() {
		return StateStatic
	}
	if r.Expires != 0 && now >= r.Expires {
		return StateExpired
	}
	return StateRenewable
}
