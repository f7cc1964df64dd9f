/*
Package memory provides in-memory store implementations (for testing/dev).

PURPOSE:
  Implements claims.ClaimStore, claims.TemplateStore and policy.Store
  with maps behind a mutex. Optimistic concurrency works exactly as in
  the SQLite store: Save succeeds only when the document's Version
  matches the stored one, so concurrency tests exercise the same
  conflict paths production sees.

ISOLATION:
  Every read and write passes through a deep copy, so callers never
  alias the store's internal state — mutating a loaded claim has no
  effect until Save.

SEE ALSO:
  - store/sqlite: Production implementation
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/policy"
)

// Store is the in-memory implementation of all persistence interfaces.
type Store struct {
	mu        sync.RWMutex
	claims    map[claims.ClaimID]*claims.Claim
	policies  map[policy.PolicyID]*policy.Policy
	templates map[string]*claims.Template
}

func New() *Store {
	return &Store{
		claims:    make(map[claims.ClaimID]*claims.Claim),
		policies:  make(map[policy.PolicyID]*policy.Policy),
		templates: make(map[string]*claims.Template),
	}
}

// Compile-time interface checks
var (
	_ claims.ClaimStore    = (*Store)(nil)
	_ claims.TemplateStore = (*Store)(nil)
	_ policy.Store         = (*Store)(nil)
)

// =============================================================================
// CLAIM STORE
// =============================================================================

func (s *Store) CreateClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[c.ID]; exists {
		return policy.ErrConcurrencyConflict
	}
	c.Version = 1
	s.claims[c.ID] = c.Clone()
	return nil
}

func (s *Store) GetClaim(ctx context.Context, id claims.ClaimID) (*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[id]
	if !ok {
		return nil, claims.ErrClaimNotFound
	}
	return c.Clone(), nil
}

func (s *Store) SaveClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.claims[c.ID]
	if !ok {
		return claims.ErrClaimNotFound
	}
	if stored.Version != c.Version {
		return policy.ErrConcurrencyConflict
	}
	c.Version++
	s.claims[c.ID] = c.Clone()
	return nil
}

func (s *Store) ListClaimsByEmployee(ctx context.Context, employeeID string) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*claims.Claim
	for _, c := range s.claims {
		if c.EmployeeID == employeeID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListClaimsByStatus(ctx context.Context, status claims.Status) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*claims.Claim
	for _, c := range s.claims {
		if c.Status == status {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// POLICY STORE
// =============================================================================

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Normalize()
	if _, exists := s.policies[p.ID]; exists {
		return policy.ErrConcurrencyConflict
	}
	for _, existing := range s.policies {
		if existing.Number == p.Number {
			return policy.ErrConcurrencyConflict
		}
	}
	p.Version = 1
	s.policies[p.ID] = p.Clone()
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, id policy.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return nil, policy.ErrPolicyNotFound
	}
	out := p.Clone()
	out.Normalize()
	return out, nil
}

func (s *Store) GetPolicyByNumber(ctx context.Context, number string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	number = policy.NormalizeNumber(number)
	for _, p := range s.policies {
		if p.Number == number {
			out := p.Clone()
			out.Normalize()
			return out, nil
		}
	}
	return nil, policy.ErrPolicyNotFound
}

func (s *Store) SavePolicy(ctx context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.policies[p.ID]
	if !ok {
		return policy.ErrPolicyNotFound
	}
	if stored.Version != p.Version {
		return policy.ErrConcurrencyConflict
	}
	p.Normalize()
	p.Version++
	s.policies[p.ID] = p.Clone()
	return nil
}

func (s *Store) ListPolicies(ctx context.Context) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		cp := p.Clone()
		cp.Normalize()
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) DeletePolicy(ctx context.Context, id policy.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return policy.ErrPolicyNotFound
	}
	delete(s.policies, id)
	return nil
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

func (s *Store) FindActiveTemplate(ctx context.Context, ct claims.ClaimType, opt claims.ClaimOption) (*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.templates {
		if t.ClaimType == ct && t.ClaimOption == opt && t.IsActive {
			return t.Copy(), nil
		}
	}
	return nil, claims.ErrTemplateNotFound
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, claims.ErrTemplateNotFound
	}
	return t.Copy(), nil
}

func (s *Store) SaveTemplate(ctx context.Context, t *claims.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[t.ID] = t.Copy()
	return nil
}

func (s *Store) PromoteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.templates[id]
	if !ok {
		return claims.ErrTemplateNotFound
	}
	for _, t := range s.templates {
		if t.ClaimType == target.ClaimType && t.ClaimOption == target.ClaimOption {
			t.IsActive = t.ID == id
		}
	}
	return nil
}

func (s *Store) ListTemplateVersions(ctx context.Context, ct claims.ClaimType, opt claims.ClaimOption) ([]*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*claims.Template
	for _, t := range s.templates {
		if t.ClaimType == ct && t.ClaimOption == opt {
			out = append(out, t.Copy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}
