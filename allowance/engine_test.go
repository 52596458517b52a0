package allowance

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func mustSpendable(t *testing.T, e *Engine, owner, spender string, now uint64) uint64 {
	t.Helper()
	v, err := e.Spendable(owner, spender, now)
	if err != nil {
		t.Fatalf("Spendable failed: %v", err)
	}
	if !v.IsUint64() {
		t.Fatalf("Spendable out of uint64 range: %s", v.Dec())
	}
	return v.Uint64()
}

func TestGrantAndRecovery(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	// maxAmount=1000, recoveryRate=10 at t=0
	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	if got := mustSpendable(t, e, "alice", "bob", 0); got != 1000 {
		t.Errorf("spendable at t=0 = %d, want 1000", got)
	}

	if err := e.Consume("alice", "bob", uint256.NewInt(400), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	tests := []struct {
		now  uint64
		want uint64
	}{
		{0, 600},
		{10, 700},
		{40, 1000}, // 600 + 400 recovered
		{50, 1000}, // capped at max
		{1 << 40, 1000},
	}
	for _, tc := range tests {
		if got := mustSpendable(t, e, "alice", "bob", tc.now); got != tc.want {
			t.Errorf("spendable at t=%d = %d, want %d", tc.now, got, tc.want)
		}
	}
}

func TestFullConsumptionThenPartialRecovery(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(1000), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if got := mustSpendable(t, e, "alice", "bob", 40); got != 400 {
		t.Errorf("spendable at t=40 = %d, want 400", got)
	}

	// Over-consumption fails and leaves state untouched.
	err := e.Consume("alice", "bob", uint256.NewInt(500), 40)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("Consume = %v, want ErrInsufficientAllowance", err)
	}

	r, err := e.store.Get("alice", "bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !r.Amount.IsZero() || r.Updated != 0 {
		t.Errorf("failed consume mutated state: amount=%s updated=%d", r.Amount.Dec(), r.Updated)
	}

	// The spendable amount itself is unaffected by the failed attempt.
	if got := mustSpendable(t, e, "alice", "bob", 40); got != 400 {
		t.Errorf("spendable after failed consume = %d, want 400", got)
	}
}

func TestStaticAllowanceNeverRecovers(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.GrantStatic("alice", "bob", uint256.NewInt(200), 5); err != nil {
		t.Fatalf("GrantStatic failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(150), 5); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	for _, now := range []uint64{5, 6, 1000, 1 << 50} {
		if got := mustSpendable(t, e, "alice", "bob", now); got != 50 {
			t.Errorf("static spendable at t=%d = %d, want 50", now, got)
		}
	}
}

func TestStaticGrantZeroesRecoveryRate(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 500, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := e.GrantStatic("alice", "bob", uint256.NewInt(200), 10); err != nil {
		t.Fatalf("GrantStatic failed: %v", err)
	}

	max, rate, expires, err := e.Terms("alice", "bob")
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	if max.Uint64() != 200 {
		t.Errorf("max = %s, want 200", max.Dec())
	}
	if !rate.IsZero() {
		t.Errorf("rate = %s, want 0 after static grant", rate.Dec())
	}
	if expires != 0 {
		t.Errorf("expires = %d, want 0 after static grant", expires)
	}
}

func TestGrantResetsHistory(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(900), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// Re-grant discards the consumed state entirely.
	if _, err := e.Grant("alice", "bob", uint256.NewInt(500), uint256.NewInt(1), 0, 1); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if got := mustSpendable(t, e, "alice", "bob", 1); got != 500 {
		t.Errorf("spendable after re-grant = %d, want 500", got)
	}
}

func TestInvalidRecoveryRate(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	_, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(1500), 0, 0)
	if !errors.Is(err, ErrInvalidRecoveryRate) {
		t.Fatalf("Grant = %v, want ErrInvalidRecoveryRate", err)
	}

	// Rejected before any state mutation.
	r, err := e.store.Get("alice", "bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !r.IsZero() {
		t.Errorf("rejected grant stored a record: %+v", r)
	}

	// rate == max is valid.
	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(1000), 0, 0); err != nil {
		t.Errorf("Grant with rate == max failed: %v", err)
	}
}

func TestExpiration(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	// maxAmount=500, recoveryRate=5, expiration=100 at t=0
	if _, err := e.Grant("alice", "bob", uint256.NewInt(500), uint256.NewInt(5), 100, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(500), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	tests := []struct {
		now  uint64
		want uint64
	}{
		{50, 250},
		{99, 495},
		{100, 0},
		{101, 0},
		{1 << 30, 0},
	}
	for _, tc := range tests {
		if got := mustSpendable(t, e, "alice", "bob", tc.now); got != tc.want {
			t.Errorf("spendable at t=%d = %d, want %d", tc.now, got, tc.want)
		}
	}

	// Expiration observation does not mutate the stored record.
	r, err := e.store.Get("alice", "bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if r.Updated != 0 || !r.Amount.IsZero() {
		t.Errorf("expired read mutated record: amount=%s updated=%d", r.Amount.Dec(), r.Updated)
	}

	err = e.Consume("alice", "bob", uint256.NewInt(1), 200)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Errorf("Consume after expiration = %v, want ErrInsufficientAllowance", err)
	}
}

func TestPastExpirationAccepted(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(500), uint256.NewInt(5), 10, 50); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if got := mustSpendable(t, e, "alice", "bob", 50); got != 0 {
		t.Errorf("spendable with past expiration = %d, want 0", got)
	}
}

func TestReadsArePure(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(400), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	before, _ := store.Get("alice", "bob")
	for i := 0; i < 5; i++ {
		if got := mustSpendable(t, e, "alice", "bob", 25); got != 850 {
			t.Fatalf("spendable at t=25 = %d, want 850", got)
		}
	}
	after, _ := store.Get("alice", "bob")

	if !before.Amount.Eq(after.Amount) || before.Updated != after.Updated {
		t.Errorf("repeated reads mutated stored record")
	}
}

func TestConsumeMaterializesRecovery(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(1000), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// At t=30, 300 recovered; consuming 100 must fold the recovery in
	// first so the remaining 200 is preserved.
	if err := e.Consume("alice", "bob", uint256.NewInt(100), 30); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	r, _ := store.Get("alice", "bob")
	if r.Amount.Uint64() != 200 {
		t.Errorf("amount after materialized consume = %s, want 200", r.Amount.Dec())
	}
	if r.Updated != 30 {
		t.Errorf("updated = %d, want 30", r.Updated)
	}

	// Partial recovery between two consumptions is not double-counted.
	if got := mustSpendable(t, e, "alice", "bob", 40); got != 300 {
		t.Errorf("spendable at t=40 = %d, want 300", got)
	}
}

func TestSaturatingRecovery(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	max := new(uint256.Int).SetAllOne()
	rate := new(uint256.Int).SetAllOne()

	if _, err := e.Grant("alice", "bob", max, rate, 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(1), 0); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// elapsed*rate and amount+recovered both overflow; the result must
	// saturate and then cap at max rather than wrap.
	got, err := e.Spendable("alice", "bob", 1<<40)
	if err != nil {
		t.Fatalf("Spendable failed: %v", err)
	}
	if !got.Eq(max) {
		t.Errorf("saturating spendable = %s, want max", got.Dec())
	}
}

func TestClockClampedToLastUpdate(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 100); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(500), 100); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// A query before Updated clamps elapsed at zero.
	if got := mustSpendable(t, e, "alice", "bob", 50); got != 500 {
		t.Errorf("spendable at t=50 = %d, want 500 (elapsed clamped)", got)
	}

	// A write with an earlier now keeps Updated monotonic.
	if err := e.Consume("alice", "bob", uint256.NewInt(100), 50); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	r, _ := store.Get("alice", "bob")
	if r.Updated != 100 {
		t.Errorf("updated = %d, want 100 (monotonic)", r.Updated)
	}
}

func TestAbsentPair(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if got := mustSpendable(t, e, "nobody", "noone", 12345); got != 0 {
		t.Errorf("spendable for absent pair = %d, want 0", got)
	}

	max, rate, expires, err := e.Terms("nobody", "noone")
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	if !max.IsZero() || !rate.IsZero() || expires != 0 {
		t.Errorf("terms for absent pair = (%s, %s, %d), want zeros", max.Dec(), rate.Dec(), expires)
	}

	err = e.Consume("nobody", "noone", uint256.NewInt(1), 0)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Errorf("Consume on absent pair = %v, want ErrInsufficientAllowance", err)
	}
}

func TestRevokeByZeroGrant(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := e.Grant("alice", "bob", new(uint256.Int), new(uint256.Int), 0, 1); err != nil {
		t.Fatalf("zero Grant failed: %v", err)
	}

	if got := mustSpendable(t, e, "alice", "bob", 1000); got != 0 {
		t.Errorf("spendable after revoke = %d, want 0", got)
	}
}

func TestNotifier(t *testing.T) {
	type grant struct {
		owner, spender string
		max, rate      uint64
	}
	var got []grant

	e := NewEngine(NewMemoryStore(), NotifierFunc(func(owner, spender string, max, rate *uint256.Int) {
		got = append(got, grant{owner, spender, max.Uint64(), rate.Uint64()})
	}))

	if _, err := e.Grant("alice", "bob", uint256.NewInt(1000), uint256.NewInt(10), 0, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := e.GrantStatic("alice", "bob", uint256.NewInt(200), 1); err != nil {
		t.Fatalf("GrantStatic failed: %v", err)
	}
	if err := e.Consume("alice", "bob", uint256.NewInt(50), 2); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// Only the renewable grant notifies; static grants and consumption
	// stay silent.
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	want := grant{"alice", "bob", 1000, 10}
	if got[0] != want {
		t.Errorf("notification = %+v, want %+v", got[0], want)
	}

	// A rejected grant does not notify.
	if _, err := e.Grant("alice", "bob", uint256.NewInt(10), uint256.NewInt(20), 0, 3); !errors.Is(err, ErrInvalidRecoveryRate) {
		t.Fatalf("Grant = %v, want ErrInvalidRecoveryRate", err)
	}
	if len(got) != 1 {
		t.Errorf("rejected grant emitted a notification")
	}
}

func TestStateAt(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil)

	if got, _ := e.StateAt("alice", "bob", 0); got != StateAbsent {
		t.Errorf("state = %v, want absent", got)
	}

	if _, err := e.GrantStatic("alice", "bob", uint256.NewInt(100), 0); err != nil {
		t.Fatalf("GrantStatic failed: %v", err)
	}
	if got, _ := e.StateAt("alice", "bob", 0); got != StateStatic {
		t.Errorf("state = %v, want static", got)
	}

	if _, err := e.Grant("alice", "bob", uint256.NewInt(100), uint256.NewInt(1), 50, 0); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if got, _ := e.StateAt("alice", "bob", 10); got != StateRenewable {
		t.Errorf("state = %v, want renewable", got)
	}
	if got, _ := e.StateAt("alice", "bob", 50); got != StateExpired {
		t.Errorf("state = %v, want expired", got)
	}
}
