/*
store.go - Persistence interface for policies

PURPOSE:
  Defines the contract between the coverage ledger and the database.
  Implementations must normalize policies on save and load (so the
  superset shape survives round-trips) and must enforce optimistic
  concurrency on Save.

OPTIMISTIC CONCURRENCY:
  Save succeeds only when the policy's Version matches the persisted
  row, and increments the version on success. A mismatch returns
  ErrConcurrencyConflict. This is what makes the decision engine's
  validate-then-commit sequence safe: two racing commits against the
  same policy cannot both win the version check.

IMPLEMENTATIONS:
  - store/memory: In-memory for testing
  - store/sqlite: Production SQLite

SEE ALSO:
  - ledger.go: Mutations that must be persisted through Save
*/
package policy

import "context"

// Store handles policy persistence. Method names carry the Policy suffix so
// a single store type can implement this alongside the claim and template
// store interfaces.
type Store interface {
	// CreatePolicy persists a new policy at Version 1. Fails if the ID or
	// the (upper-cased) policy number already exists.
	CreatePolicy(ctx context.Context, p *Policy) error

	// GetPolicy returns the policy, normalized, or ErrPolicyNotFound.
	GetPolicy(ctx context.Context, id PolicyID) (*Policy, error)

	// GetPolicyByNumber looks up by upper-cased policy number.
	GetPolicyByNumber(ctx context.Context, number string) (*Policy, error)

	// SavePolicy persists a mutated policy iff p.Version matches the stored
	// row, then increments p.Version. Returns ErrConcurrencyConflict on
	// mismatch.
	SavePolicy(ctx context.Context, p *Policy) error

	// ListPolicies returns all policies, normalized.
	ListPolicies(ctx context.Context) ([]*Policy, error)

	// DeletePolicy removes the whole policy, including its balance sheet.
	// This is the only way claimed-amount entries are ever deleted.
	DeletePolicy(ctx context.Context, id PolicyID) error
}
