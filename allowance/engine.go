package allowance

import (
	"github.com/holiman/uint256"
)

// Notifier receives the granted notification emitted by renewable
// grants. The notification carries the grant terms only; it omits
// expiration and never fires for static grants or consumption.
type Notifier interface {
	AllowanceGranted(owner, spender string, max, rate *uint256.Int)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(owner, spender string, max, rate *uint256.Int)

// AllowanceGranted calls f.
func (f NotifierFunc) AllowanceGranted(owner, spender string, max, rate *uint256.Int) {
	f(owner, spender, max, rate)
}

// Engine computes allowance state over a Store. It is stateless with
// respect to wall-clock time: every operation takes now (unix seconds)
// explicitly, and recovery is folded in lazily at read or consumption
// time. Reads never mutate the store.
//
// Operations on a single pair are read-modify-write and must be
// serialized by the caller; the engine adds no locking of its own.
type Engine struct {
	store    Store
	notifier Notifier
}

// NewEngine creates an engine over the given store. notifier may be nil.
func NewEngine(store Store, notifier Notifier) *Engine {
	return &Engine{store: store, notifier: notifier}
}

// Grant installs a renewable allowance, unconditionally replacing any
// prior record: the new record starts at max, regenerates at rate units
// per second, and expires at the absolute unix time expires (zero for no
// expiration). Any unspent prior allowance is discarded.
//
// A rate greater than max is rejected with ErrInvalidRecoveryRate before
// any state change. A past expiration is accepted but yields an
// immediately exhausted allowance.
func (e *Engine) Grant(owner, spender string, max, rate *uint256.Int, expires, now uint64) (Record, error) {
	if rate.Gt(max) {
		return Record{}, ErrInvalidRecoveryRate
	}

	r := Record{
		Max:          max.Clone(),
		RecoveryRate: rate.Clone(),
		Amount:       max.Clone(),
		Updated:      now,
		Expires:      expires,
	}
	if err := e.setMonotonic(owner, spender, r); err != nil {
		return Record{}, err
	}

	if e.notifier != nil {
		e.notifier.AllowanceGranted(owner, spender, max.Clone(), rate.Clone())
	}
	return r, nil
}

// GrantStatic installs a classic non-renewable allowance of value,
// unconditionally replacing any prior record. The recovery rate is
// zeroed even if a renewable grant existed, and any expiration is
// cleared: renewal semantics never survive a static grant. No granted
// notification is emitted.
func (e *Engine) GrantStatic(owner, spender string, value *uint256.Int, now uint64) (Record, error) {
	r := Record{
		Max:          value.Clone(),
		RecoveryRate: new(uint256.Int),
		Amount:       value.Clone(),
		Updated:      now,
	}
	if err := e.setMonotonic(owner, spender, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Spendable returns the allowance available to spend at the given unix
// time. It is a pure read: stored state is never mutated.
//
// Static records return the stored amount unchanged. Renewable records
// past their expiration return zero. Otherwise the result is
// min(max, amount + elapsed*rate), with elapsed clamped at zero and all
// arithmetic saturating rather than wrapping.
func (e *Engine) Spendable(owner, spender string, now uint64) (*uint256.Int, error) {
	r, err := e.store.Get(owner, spender)
	if err != nil {
		return nil, err
	}
	return spendable(r, now), nil
}

// Consume spends amount from the pair's allowance at the given unix
// time. Recovery is materialized first, then the amount is subtracted
// and the record written back with Updated set to now, so partial
// recovery between consumptions is neither lost nor double-counted.
//
// If amount exceeds the spendable value the record is left completely
// unchanged and ErrInsufficientAllowance is returned.
func (e *Engine) Consume(owner, spender string, amount *uint256.Int, now uint64) error {
	r, err := e.store.Get(owner, spender)
	if err != nil {
		return err
	}

	avail := spendable(r, now)
	if amount.Gt(avail) {
		return ErrInsufficientAllowance
	}

	r.Amount = new(uint256.Int).Sub(avail, amount)
	if now > r.Updated {
		r.Updated = now
	}
	return e.store.Set(owner, spender, r)
}

// Terms returns the grant parameters (max, recovery rate, expiration)
// for the pair. This is the stored allowance terms, not the live
// spendable value; use Spendable for that.
func (e *Engine) Terms(owner, spender string) (max, rate *uint256.Int, expires uint64, err error) {
	r, err := e.store.Get(owner, spender)
	if err != nil {
		return nil, nil, 0, err
	}
	return r.Max, r.RecoveryRate, r.Expires, nil
}

// StateAt returns the observed lifecycle state of the pair's record.
func (e *Engine) StateAt(owner, spender string, now uint64) (State, error) {
	r, err := e.store.Get(owner, spender)
	if err != nil {
		return StateAbsent, err
	}
	return r.StateAt(now), nil
}

// setMonotonic writes r, keeping Updated non-decreasing relative to the
// stored record.
func (e *Engine) setMonotonic(owner, spender string, r Record) error {
	prev, err := e.store.Get(owner, spender)
	if err != nil {
		return err
	}
	if r.Updated < prev.Updated {
		r.Updated = prev.Updated
	}
	return e.store.Set(owner, spender, r)
}

// spendable computes the live value of a record at now.
func spendable(r Record, now uint64) *uint256.Int {
	if r.RecoveryRate.IsZero() {
		return r.Amount.Clone()
	}
	if r.Expires != 0 && now >= r.Expires {
		return new(uint256.Int)
	}

	var elapsed uint64
	if now > r.Updated {
		elapsed = now - r.Updated
	}

	recovered := satMul(uint256.NewInt(elapsed), r.RecoveryRate)
	total := satAdd(r.Amount, recovered)
	if total.Gt(r.Max) {
		return r.Max.Clone()
	}
	return total
}

// satMul returns x*y, saturating at the maximum representable value.
func satMul(x, y *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return z
}

// satAdd returns x+y, saturating at the maximum representable value.
func satAdd(x, y *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return z
}
