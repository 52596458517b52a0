package token

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-renew/allowance"
	"github.com/pflow-xyz/go-renew/capability"
	"github.com/pflow-xyz/go-renew/eventsource"
)

// Event types appended to pair streams.
const (
	// EventGranted is the notification emitted on every renewable grant.
	// Static approvals never emit it.
	EventGranted = "renewable.granted"

	// EventConsumed is an audit record of successful allowance
	// consumption. It is not part of the grant-notification contract.
	EventConsumed = "allowance.consumed"
)

// GrantedData is the payload of an EventGranted event. Expiration is
// deliberately omitted: the notification carries grant terms only.
type GrantedData struct {
	Owner        string `json:"owner"`
	Spender      string `json:"spender"`
	Max          string `json:"max"`
	RecoveryRate string `json:"recoveryRate"`
}

// ConsumedData is the payload of an EventConsumed event.
type ConsumedData struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

// Token exposes the public allowance surface over an injected base
// ledger. All time-dependent operations take now (unix seconds)
// explicitly; the token never reads the wall clock.
//
// Operations on a single (owner, spender) pair must be serialized by the
// caller, matching the allowance engine's contract.
type Token struct {
	ledger Ledger
	store  allowance.Store
	engine *allowance.Engine
	caps   *capability.Registry
	events eventsource.Store
}

// Option configures a Token.
type Option func(*Token)

// WithEventStore attaches an event store; grant notifications and
// consumption audit records are appended to per-pair streams.
func WithEventStore(s eventsource.Store) Option {
	return func(t *Token) { t.events = s }
}

// New creates a token over a base ledger and an allowance store. The
// renewable and expirable capabilities are registered; proxy deployments
// additionally advertise the underlying-token capability.
func New(ledger Ledger, store allowance.Store, opts ...Option) *Token {
	t := &Token{
		ledger: ledger,
		store:  store,
		engine: allowance.NewEngine(store, nil),
		caps:   capability.NewRegistry(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.caps.Register(capability.Renewable)
	t.caps.Register(capability.Expirable)
	if _, ok := ledger.(*Proxy); ok {
		t.caps.Register(capability.Underlying)
	}
	return t
}

// Ledger returns the base-token collaborator.
func (t *Token) Ledger() Ledger { return t.ledger }

// Supports reports whether a capability is advertised.
func (t *Token) Supports(id capability.ID) bool { return t.caps.Supports(id) }

// Capabilities returns all advertised capability IDs.
func (t *Token) Capabilities() []capability.ID { return t.caps.List() }

// Approve installs a static (non-renewable) allowance of value for
// spender over owner's tokens. Any prior renewable grant is replaced and
// its recovery rate zeroed. No granted notification is emitted.
func (t *Token) Approve(owner, spender string, value *uint256.Int, now uint64) error {
	_, err := t.engine.GrantStatic(owner, spender, value, now)
	return err
}

// ApproveRenewable installs a renewable allowance with ceiling max
// regenerating at rate units per second, and emits the granted
// notification.
func (t *Token) ApproveRenewable(owner, spender string, max, rate *uint256.Int, now uint64) error {
	return t.approveRenewable(owner, spender, max, rate, 0, now)
}

// ApproveRenewableUntil is the expirable variant of ApproveRenewable:
// the grant is treated as zero once now reaches expires. A past
// expiration is accepted but yields an immediately exhausted allowance.
func (t *Token) ApproveRenewableUntil(owner, spender string, max, rate *uint256.Int, expires, now uint64) error {
	return t.approveRenewable(owner, spender, max, rate, expires, now)
}

func (t *Token) approveRenewable(owner, spender string, max, rate *uint256.Int, expires, now uint64) error {
	if _, err := t.engine.Grant(owner, spender, max, rate, expires, now); err != nil {
		return err
	}
	return t.emit(owner, spender, EventGranted, GrantedData{
		Owner:        owner,
		Spender:      spender,
		Max:          max.Dec(),
		RecoveryRate: rate.Dec(),
	})
}

// Allowance returns the amount spender can currently spend from owner's
// balance, with recovery folded in as of now. Pure read.
func (t *Token) Allowance(owner, spender string, now uint64) (*uint256.Int, error) {
	return t.engine.Spendable(owner, spender, now)
}

// RenewableAllowance returns the grant terms for the pair: ceiling,
// recovery rate, and expiration (zero when none). This is the stored
// terms, not the live spendable amount.
func (t *Token) RenewableAllowance(owner, spender string) (max, rate *uint256.Int, expires uint64, err error) {
	return t.engine.Terms(owner, spender)
}

// TransferFrom moves amount from owner to dest, gated by spender's
// allowance at now. The allowance is consumed first; if the underlying
// balance movement then fails, the consumption is rolled back so the
// operation is all-or-nothing.
func (t *Token) TransferFrom(spender, owner, dest string, amount *uint256.Int, now uint64) error {
	prev, err := t.store.Get(owner, spender)
	if err != nil {
		return err
	}

	if err := t.engine.Consume(owner, spender, amount, now); err != nil {
		return err
	}

	if err := t.ledger.Transfer(owner, dest, amount); err != nil {
		if restoreErr := t.store.Set(owner, spender, prev); restoreErr != nil {
			return fmt.Errorf("%w (allowance restore failed: %v)", err, restoreErr)
		}
		return err
	}

	return t.emit(owner, spender, EventConsumed, ConsumedData{
		Owner:   owner,
		Spender: spender,
		To:      dest,
		Amount:  amount.Dec(),
	})
}

// emit appends an event to the pair's stream. A nil event store turns
// emission into a no-op.
func (t *Token) emit(owner, spender, eventType string, data any) error {
	if t.events == nil {
		return nil
	}

	ctx := context.Background()
	stream := eventsource.PairStream(owner, spender)

	event, err := eventsource.NewEvent(stream, eventType, data)
	if err != nil {
		return err
	}

	version, err := t.events.StreamVersion(ctx, stream)
	if err != nil {
		return fmt.Errorf("emit %s: %w", eventType, err)
	}
	if _, err := t.events.Append(ctx, stream, version, []*eventsource.Event{event}); err != nil {
		return fmt.Errorf("emit %s: %w", eventType, err)
	}
	return nil
}
