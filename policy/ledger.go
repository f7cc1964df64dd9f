/*
ledger.go - Per-beneficiary, per-coverage-type balance sheet

PURPOSE:
  The Ledger answers "how much coverage is left?" and records committed
  claim amounts. It is a view over a single Policy: queries resolve the
  beneficiary's positional row in ClaimedAmounts and the matching
  coverage-type cell.

QUERY CLASSES:
  - Per-type limit:        CoverageLimit
  - Per-cell balance:      ClaimedAmountFor, RemainingCoverage
  - Per-beneficiary total: TotalClaimedFor, RemainingTotalCoverage
  - Validation:            ValidateClaimAmount, ValidateTotalClaimAmount

MUTATION:
  AddClaimedAmount is the single write. It re-checks both limits before
  committing (exceeding is reported, never clamped), but validate-then-
  commit across multiple breakdown items is still check-then-act: the
  decision engine must hold the policy document for the whole sequence,
  which it does via version-guarded saves (see claims/decision.go).

FAILURE SEMANTICS:
  - Unknown coverage type  -> limit 0, any positive claim fails validation
  - Unknown beneficiary    -> claimed 0 on reads, error on writes
  - Limit overflow         -> *CoverageExceededError, never silent clamping

SEE ALSO:
  - types.go: Policy shape and Normalize
  - consistency.go: Coverage-consistency drift report
*/
package policy

import (
	"github.com/shopspring/decimal"
)

// Ledger exposes balance queries and the claimed-amount mutation for one
// policy. It holds a pointer: mutations are visible to the caller, who is
// responsible for persisting the policy afterwards.
type Ledger struct {
	policy *Policy
}

// NewLedger wraps a policy. The policy is normalized so every lookup path
// below can assume the superset shape.
func NewLedger(p *Policy) *Ledger {
	p.Normalize()
	return &Ledger{policy: p}
}

// Policy returns the underlying policy.
func (l *Ledger) Policy() *Policy { return l.policy }

// =============================================================================
// QUERIES
// =============================================================================

// CoverageLimit returns the limit for a coverage type, or 0 if the type is
// absent. Never errors: an unknown type simply has nothing to claim against.
func (l *Ledger) CoverageLimit(ct CoverageType) Money {
	if i := l.policy.coverageDetailIndex(ct); i >= 0 {
		return l.policy.Coverage.CoverageDetails[i].Limit
	}
	return decimal.Zero
}

// ClaimedAmountFor returns the cumulative claimed amount for a beneficiary
// and coverage type, or 0 when no record exists.
func (l *Ledger) ClaimedAmountFor(b BeneficiaryID, ct CoverageType) Money {
	idx := l.policy.BeneficiaryIndex(b)
	if idx < 0 || idx >= len(l.policy.ClaimedAmounts) {
		return decimal.Zero
	}
	row := l.policy.ClaimedAmounts[idx]
	if i := claimedIndex(row, ct); i >= 0 {
		return row[i].ClaimedAmount
	}
	return decimal.Zero
}

// RemainingCoverage returns limit minus claimed for one balance-sheet cell.
func (l *Ledger) RemainingCoverage(b BeneficiaryID, ct CoverageType) Money {
	return l.CoverageLimit(ct).Sub(l.ClaimedAmountFor(b, ct))
}

// TotalClaimedFor sums claimed amounts across all coverage types for a
// beneficiary.
func (l *Ledger) TotalClaimedFor(b BeneficiaryID) Money {
	total := decimal.Zero
	idx := l.policy.BeneficiaryIndex(b)
	if idx < 0 || idx >= len(l.policy.ClaimedAmounts) {
		return total
	}
	for _, ca := range l.policy.ClaimedAmounts[idx] {
		total = total.Add(ca.ClaimedAmount)
	}
	return total
}

// RemainingTotalCoverage returns the policy-wide headroom for a beneficiary:
// total coverage amount minus everything already claimed.
func (l *Ledger) RemainingTotalCoverage(b BeneficiaryID) Money {
	return l.policy.Coverage.CoverageAmount.Sub(l.TotalClaimedFor(b))
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateClaimAmount reports whether claimed + amount fits the per-type limit.
func (l *Ledger) ValidateClaimAmount(b BeneficiaryID, ct CoverageType, amount Money) bool {
	if amount.IsNegative() {
		return false
	}
	return l.ClaimedAmountFor(b, ct).Add(amount).LessThanOrEqual(l.CoverageLimit(ct))
}

// ValidateTotalClaimAmount reports whether totalClaimed + amount fits the
// policy's total coverage amount.
func (l *Ledger) ValidateTotalClaimAmount(b BeneficiaryID, amount Money) bool {
	if amount.IsNegative() {
		return false
	}
	return l.TotalClaimedFor(b).Add(amount).LessThanOrEqual(l.policy.Coverage.CoverageAmount)
}

// =============================================================================
// MUTATION
// =============================================================================

// AddClaimedAmount commits an approved amount against one balance-sheet cell.
// Both the per-type and the total limit are re-checked here; a violation is
// reported as *CoverageExceededError with the remaining balance, never
// clamped. The caller persists the policy afterwards — under a version guard,
// so a concurrent commit against the same cell cannot interleave.
func (l *Ledger) AddClaimedAmount(b BeneficiaryID, ct CoverageType, amount Money) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	idx := l.policy.BeneficiaryIndex(b)
	if idx < 0 {
		return &BeneficiaryNotCoveredError{PolicyID: l.policy.ID, BeneficiaryID: b}
	}

	if !l.ValidateClaimAmount(b, ct, amount) {
		return &CoverageExceededError{
			PolicyID:      l.policy.ID,
			BeneficiaryID: b,
			CoverageType:  ct,
			Requested:     amount,
			Remaining:     l.RemainingCoverage(b, ct),
		}
	}
	if !l.ValidateTotalClaimAmount(b, amount) {
		return &CoverageExceededError{
			PolicyID:      l.policy.ID,
			BeneficiaryID: b,
			Requested:     amount,
			Remaining:     l.RemainingTotalCoverage(b),
		}
	}

	row := l.policy.ClaimedAmounts[idx]
	i := claimedIndex(row, ct)
	if i < 0 {
		// Unknown type with limit 0 only reaches here for amount == 0.
		l.policy.ClaimedAmounts[idx] = append(row, ClaimedAmount{CoverageType: ct, ClaimedAmount: amount})
		return nil
	}
	row[i].ClaimedAmount = row[i].ClaimedAmount.Add(amount)
	return nil
}
