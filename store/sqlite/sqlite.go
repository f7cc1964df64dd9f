/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (claims.ClaimStore,
  claims.TemplateStore, policy.Store) using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

DOCUMENT STORAGE:
  Claims, policies and templates are nested documents (questionnaire
  snapshots, note logs, positional balance sheets), so each row stores
  the full document as JSON plus the columns queries filter on
  (employee_id, status, claim_type/claim_option, policy number).
  The JSON column is the source of truth; the filter columns are
  denormalized from it on every write.

OPTIMISTIC CONCURRENCY:
  Claim and policy saves are version-guarded UPDATEs:
    UPDATE ... SET version = version + 1 WHERE id = ? AND version = ?
  Zero affected rows on an existing id means a stale write and surfaces
  ErrConcurrencyConflict; the caller retries from a fresh load. This is
  the guarantee the decision engine's validate+commit sequence leans on.

KEY TABLES:
  claims:     Claim documents, filtered by employee and status
  policies:   Policy documents with the coverage balance sheet
  templates:  Questionnaire template versions, one active per
              (claim_type, claim_option) key

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/claims.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := claims.NewService(store, store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - claims/store.go: Interface definitions
  - policy/store.go: Policy store contract
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/policy"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks
var (
	_ claims.ClaimStore    = (*Store)(nil)
	_ claims.TemplateStore = (*Store)(nil)
	_ policy.Store         = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases from fragmenting
	// across the pool and sidesteps SQLITE_BUSY under write contention.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Claims (whole-document storage + query columns)
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		status TEXT NOT NULL,
		doc_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claims_employee
		ON claims(employee_id, created_at DESC);

	-- Work-queue path: oldest submitted/forwarded claims first
	CREATE INDEX IF NOT EXISTS idx_claims_status
		ON claims(status, created_at ASC);

	CREATE INDEX IF NOT EXISTS idx_claims_policy
		ON claims(policy_id);

	-- Policies
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		line TEXT NOT NULL,
		doc_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Questionnaire templates, versioned per (claim_type, claim_option)
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		claim_type TEXT NOT NULL,
		claim_option TEXT NOT NULL,
		version INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		doc_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_key
		ON templates(claim_type, claim_option, version DESC);

	-- CRITICAL: At most one active template per (claim_type, claim_option)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_single_active
		ON templates(claim_type, claim_option)
		WHERE is_active;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CLAIM STORE (claims.ClaimStore interface)
// =============================================================================

// CreateClaim inserts a new claim at version 1.
func (s *Store) CreateClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Version = 1
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal claim %s: %w", c.ID, err)
	}

	query := `
		INSERT INTO claims (id, employee_id, policy_id, status, doc_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		string(c.ID), c.EmployeeID, string(c.PolicyID), string(c.Status),
		string(doc), c.Version,
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("claim %s already exists: %w", c.ID, policy.ErrConcurrencyConflict)
		}
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}

// GetClaim returns a claim by ID.
func (s *Store) GetClaim(ctx context.Context, id claims.ClaimID) (*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	var version int64
	err := s.db.QueryRowContext(ctx,
		"SELECT doc_json, version FROM claims WHERE id = ?", string(id),
	).Scan(&doc, &version)
	if err == sql.ErrNoRows {
		return nil, claims.ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claim %s: %w", id, err)
	}

	return unmarshalClaim(doc, version)
}

// SaveClaim persists a mutated claim under a version guard.
func (s *Store) SaveClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *c
	next.Version = c.Version + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to marshal claim %s: %w", c.ID, err)
	}

	query := `
		UPDATE claims
		SET status = ?, doc_json = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		string(c.Status), string(doc),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		string(c.ID), c.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save claim %s: %w", c.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.staleOrMissingClaim(ctx, c.ID)
	}
	c.Version++
	return nil
}

// staleOrMissingClaim distinguishes a version conflict from a missing row
// after a zero-row UPDATE.
func (s *Store) staleOrMissingClaim(ctx context.Context, id claims.ClaimID) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM claims WHERE id = ?", string(id),
	).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return claims.ErrClaimNotFound
	}
	return policy.ErrConcurrencyConflict
}

// ListClaimsByEmployee returns the employee's claims, newest first.
func (s *Store) ListClaimsByEmployee(ctx context.Context, employeeID string) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClaims(ctx,
		"SELECT doc_json, version FROM claims WHERE employee_id = ? ORDER BY created_at DESC",
		employeeID)
}

// ListClaimsByStatus returns claims in a status, oldest first (work queues).
func (s *Store) ListClaimsByStatus(ctx context.Context, status claims.Status) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClaims(ctx,
		"SELECT doc_json, version FROM claims WHERE status = ? ORDER BY created_at ASC",
		string(status))
}

func (s *Store) queryClaims(ctx context.Context, query string, args ...any) ([]*claims.Claim, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	var out []*claims.Claim
	for rows.Next() {
		var doc string
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		c, err := unmarshalClaim(doc, version)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func unmarshalClaim(doc string, version int64) (*claims.Claim, error) {
	var c claims.Claim
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim: %w", err)
	}
	// The version column wins over the stored document copy.
	c.Version = version
	return &c, nil
}

// =============================================================================
// POLICY STORE (policy.Store interface)
// =============================================================================

// CreatePolicy inserts a new policy at version 1.
func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Normalize()
	p.Version = 1
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy %s: %w", p.ID, err)
	}

	query := `
		INSERT INTO policies (id, number, line, doc_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		string(p.ID), p.Number, string(p.Line), string(doc), p.Version, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("policy %s (number %s) already exists: %w", p.ID, p.Number, policy.ErrConcurrencyConflict)
		}
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	return nil
}

// GetPolicy returns a policy by ID, normalized.
func (s *Store) GetPolicy(ctx context.Context, id policy.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPolicy(ctx, "SELECT doc_json, version FROM policies WHERE id = ?", string(id))
}

// GetPolicyByNumber looks up by upper-cased policy number.
func (s *Store) GetPolicyByNumber(ctx context.Context, number string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPolicy(ctx,
		"SELECT doc_json, version FROM policies WHERE number = ?",
		policy.NormalizeNumber(number))
}

func (s *Store) queryPolicy(ctx context.Context, query string, arg any) (*policy.Policy, error) {
	var doc string
	var version int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&doc, &version)
	if err == sql.ErrNoRows {
		return nil, policy.ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return unmarshalPolicy(doc, version)
}

// SavePolicy persists a mutated policy under a version guard.
func (s *Store) SavePolicy(ctx context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Normalize()
	next := *p
	next.Version = p.Version + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to marshal policy %s: %w", p.ID, err)
	}

	query := `
		UPDATE policies
		SET number = ?, line = ?, doc_json = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Number, string(p.Line), string(doc),
		time.Now().UTC().Format(time.RFC3339),
		string(p.ID), p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save policy %s: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var count int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM policies WHERE id = ?", string(p.ID),
		).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return policy.ErrPolicyNotFound
		}
		return policy.ErrConcurrencyConflict
	}
	p.Version++
	return nil
}

// ListPolicies returns all policies ordered by number.
func (s *Store) ListPolicies(ctx context.Context) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_json, version FROM policies ORDER BY number ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var out []*policy.Policy
	for rows.Next() {
		var doc string
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		p, err := unmarshalPolicy(doc, version)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePolicy removes the whole policy, including its balance sheet.
func (s *Store) DeletePolicy(ctx context.Context, id policy.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM policies WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete policy %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return policy.ErrPolicyNotFound
	}
	return nil
}

func unmarshalPolicy(doc string, version int64) (*policy.Policy, error) {
	var p policy.Policy
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	p.Version = version
	p.Normalize()
	return &p, nil
}

// =============================================================================
// TEMPLATE STORE (claims.TemplateStore interface)
// =============================================================================

// FindActiveTemplate returns the active template for a (claimType, claimOption)
// pair.
func (s *Store) FindActiveTemplate(ctx context.Context, ct claims.ClaimType, opt claims.ClaimOption) (*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTemplate(ctx,
		"SELECT doc_json FROM templates WHERE claim_type = ? AND claim_option = ? AND is_active",
		string(ct), string(opt))
}

// GetTemplate returns a template by ID, active or not.
func (s *Store) GetTemplate(ctx context.Context, id string) (*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTemplate(ctx, "SELECT doc_json FROM templates WHERE id = ?", id)
}

func (s *Store) queryTemplate(ctx context.Context, query string, args ...any) (*claims.Template, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, claims.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	var t claims.Template
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template: %w", err)
	}
	return &t, nil
}

// SaveTemplate inserts or replaces a template version.
func (s *Store) SaveTemplate(ctx context.Context, t *claims.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", t.ID, err)
	}

	query := `
		INSERT INTO templates (id, claim_type, claim_option, version, is_active, doc_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			claim_type = excluded.claim_type,
			claim_option = excluded.claim_option,
			version = excluded.version,
			is_active = excluded.is_active,
			doc_json = excluded.doc_json,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		t.ID, string(t.ClaimType), string(t.ClaimOption), t.Version, t.IsActive,
		string(doc), now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("another template is already active for %s/%s: %w",
				t.ClaimType, t.ClaimOption, policy.ErrConcurrencyConflict)
		}
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// PromoteTemplate activates the template and deactivates the previously
// active template for the same (claimType, claimOption) key, atomically.
func (s *Store) PromoteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ct, opt, doc string
	err = tx.QueryRowContext(ctx,
		"SELECT claim_type, claim_option, doc_json FROM templates WHERE id = ?", id,
	).Scan(&ct, &opt, &doc)
	if err == sql.ErrNoRows {
		return claims.ErrTemplateNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", id, err)
	}

	// Deactivate first so the single-active index never sees two.
	if _, err := tx.ExecContext(ctx,
		"UPDATE templates SET is_active = FALSE, doc_json = json_set(doc_json, '$.IsActive', json('false')) WHERE claim_type = ? AND claim_option = ? AND is_active",
		ct, opt,
	); err != nil {
		return fmt.Errorf("failed to deactivate templates for %s/%s: %w", ct, opt, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE templates SET is_active = TRUE, doc_json = json_set(doc_json, '$.IsActive', json('true')) WHERE id = ?",
		id,
	); err != nil {
		return fmt.Errorf("failed to activate template %s: %w", id, err)
	}

	return tx.Commit()
}

// ListTemplateVersions returns all versions for a pair, newest first.
func (s *Store) ListTemplateVersions(ctx context.Context, ct claims.ClaimType, opt claims.ClaimOption) ([]*claims.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_json, is_active FROM templates WHERE claim_type = ? AND claim_option = ? ORDER BY version DESC",
		string(ct), string(opt))
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []*claims.Template
	for rows.Next() {
		var doc string
		var active bool
		if err := rows.Scan(&doc, &active); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		var t claims.Template
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template: %w", err)
		}
		t.IsActive = active
		out = append(out, t.Copy())
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
