package capability

import "testing"

func TestDeriveDeterministic(t *testing.T) {
	a := Derive("approve(spender,value)", "allowance(owner,spender)")
	b := Derive("approve(spender,value)", "allowance(owner,spender)")
	if a != b {
		t.Errorf("same signatures produced different IDs: %s vs %s", a, b)
	}
}

func TestDeriveOrderIndependent(t *testing.T) {
	a := Derive("approve(spender,value)", "allowance(owner,spender)")
	b := Derive("allowance(owner,spender)", "approve(spender,value)")
	if a != b {
		t.Errorf("signature order changed the ID: %s vs %s", a, b)
	}
}

func TestDeriveWhitespaceInsensitive(t *testing.T) {
	a := Derive("approve(spender, value)")
	b := Derive("approve(spender,value)")
	if a != b {
		t.Errorf("whitespace changed the ID: %s vs %s", a, b)
	}
}

func TestPublishedIDsAreDistinct(t *testing.T) {
	ids := map[ID]string{
		Renewable:  "Renewable",
		Expirable:  "Expirable",
		Underlying: "Underlying",
	}
	if len(ids) != 3 {
		t.Errorf("published capability IDs collide: %v", ids)
	}
	for id := range ids {
		if len(id) != len("cap:")+32 {
			t.Errorf("unexpected ID shape: %s", id)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if r.Supports(Renewable) {
		t.Error("empty registry should support nothing")
	}

	r.Register(Renewable)
	r.Register(Expirable)

	if !r.Supports(Renewable) || !r.Supports(Expirable) {
		t.Error("registered capabilities should be supported")
	}
	if r.Supports(Underlying) {
		t.Error("unregistered capability should not be supported")
	}

	list := r.List()
	if len(list) != 2 {
		t.Errorf("expected 2 registered IDs, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1] >= list[i] {
			t.Errorf("List not sorted: %v", list)
		}
	}
}
