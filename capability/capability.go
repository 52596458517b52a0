// Package capability implements interface-capability discovery for the
// token surface. A capability identifier is derived deterministically
// from the set of function signatures it covers, so any change to a
// surface changes its ID.
package capability

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
)

// ID identifies a published capability.
type ID string

// Derive computes the capability identifier for a set of function
// signatures. Signatures are normalized (trimmed, sorted) before
// hashing, so declaration order does not matter.
func Derive(signatures ...string) ID {
	normalized := make([]string, len(signatures))
	for i, sig := range signatures {
		normalized[i] = strings.Join(strings.Fields(sig), "")
	}
	sort.Strings(normalized)

	hash := sha256.Sum256([]byte(strings.Join(normalized, ";")))
	return ID("cap:" + hex.EncodeToString(hash[:16]))
}

// Published capability identifiers for the allowance token surface.
var (
	// Renewable covers the renewable allowance surface.
	Renewable = Derive(
		"approve(spender,value)",
		"approveRenewable(spender,maxAmount,recoveryRate)",
		"renewableAllowance(owner,spender)",
		"allowance(owner,spender)",
		"transferFrom(owner,to,amount)",
	)

	// Expirable covers the variant whose grants carry an absolute
	// expiration time.
	Expirable = Derive(
		"approveRenewable(spender,maxAmount,recoveryRate,expiration)",
		"renewableAllowance(owner,spender)",
	)

	// Underlying covers the base-token accessor exposed by proxy
	// deployments.
	Underlying = Derive(
		"underlyingToken()",
	)
)

// Registry tracks which capabilities an instance supports.
type Registry struct {
	mu        sync.RWMutex
	supported map[ID]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		supported: make(map[ID]bool),
	}
}

// Register marks a capability as supported.
func (r *Registry) Register(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supported[id] = true
}

// Supports reports whether the capability is registered.
func (r *Registry) Supports(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.supported[id]
}

// List returns all registered capability IDs, sorted.
func (r *Registry) List() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.supported))
	for id := range r.supported {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
