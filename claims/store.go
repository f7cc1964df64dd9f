/*
store.go - Persistence interfaces for claims and templates

PURPOSE:
  Defines the contract between the claims engine and the database.
  Claim writes are whole-document read-modify-writes, so stores enforce
  optimistic concurrency: Save succeeds only when the in-memory Version
  matches the persisted row. A stale write surfaces as
  ErrConcurrencyConflict and the caller retries from a fresh load.

IMPLEMENTATIONS:
  - store/memory: In-memory for testing/dev
  - store/sqlite: Production SQLite

SEE ALSO:
  - policy/store.go: Policy store with the same versioning discipline
  - decision.go: Relies on version guards for the validate+commit window
*/
package claims

import "context"

// ClaimStore handles claim persistence. Method names carry the Claim suffix
// so a single store type can implement this alongside the policy and
// template store interfaces.
type ClaimStore interface {
	// CreateClaim persists a new claim at Version 1. Fails if the ID exists.
	CreateClaim(ctx context.Context, c *Claim) error

	// GetClaim returns the claim or ErrClaimNotFound.
	GetClaim(ctx context.Context, id ClaimID) (*Claim, error)

	// SaveClaim persists a mutated claim iff c.Version matches the stored
	// row, then increments c.Version. Returns ErrConcurrencyConflict on
	// mismatch.
	SaveClaim(ctx context.Context, c *Claim) error

	// ListClaimsByEmployee returns the employee's claims, newest first.
	ListClaimsByEmployee(ctx context.Context, employeeID string) ([]*Claim, error)

	// ListClaimsByStatus returns claims in a status, oldest first (work
	// queues).
	ListClaimsByStatus(ctx context.Context, status Status) ([]*Claim, error)
}

// TemplateStore handles questionnaire template persistence. At most one
// active template exists per (claimType, claimOption) key; PromoteTemplate
// swaps the active template atomically.
type TemplateStore interface {
	// FindActiveTemplate returns the active template for the pair, or
	// ErrTemplateNotFound.
	FindActiveTemplate(ctx context.Context, ct ClaimType, opt ClaimOption) (*Template, error)

	// GetTemplate returns a template by ID (any version, active or not).
	GetTemplate(ctx context.Context, id string) (*Template, error)

	// SaveTemplate inserts or replaces a template version.
	SaveTemplate(ctx context.Context, t *Template) error

	// PromoteTemplate activates the template and deactivates the previously
	// active template for the same (claimType, claimOption) key, atomically.
	PromoteTemplate(ctx context.Context, id string) error

	// ListTemplateVersions returns all versions for a pair, newest first.
	ListTemplateVersions(ctx context.Context, ct ClaimType, opt ClaimOption) ([]*Template, error)
}
