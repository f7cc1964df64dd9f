/*
errors.go - Centralized error types for the policy package

PURPOSE:
  All policy/ledger error types in one place. The claims engine wraps
  these with transition context; this package only reports what went
  wrong at the coverage level.

USAGE:
  Callers match with errors.Is / errors.As:

    var exceeded *policy.CoverageExceededError
    if errors.As(err, &exceeded) {
        // exceeded.Remaining tells the caller how much still fits
    }

SEE ALSO:
  - ledger.go: Returns these errors
*/
package policy

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCoverageExceeded is returned when a claim amount does not fit within
	// a per-type limit or the policy's total coverage amount.
	ErrCoverageExceeded = errors.New("coverage exceeded")

	// ErrBeneficiaryNotCovered is returned when the beneficiary is not on the
	// policy's beneficiary list.
	ErrBeneficiaryNotCovered = errors.New("beneficiary not covered by policy")

	// ErrPolicyNotFound is returned when a referenced policy doesn't exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrNegativeAmount is returned for claim amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrConcurrencyConflict is returned by stores when a version-guarded
	// save detects a stale write. The caller reloads and retries the same
	// logical operation; this is the only retryable error class.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CoverageExceededError reports which coverage type overflowed and how much
// balance remains, so the caller can adjust the amount precisely.
type CoverageExceededError struct {
	PolicyID      PolicyID
	BeneficiaryID BeneficiaryID
	CoverageType  CoverageType // empty for total-coverage overflows
	Requested     Money
	Remaining     Money
}

func (e *CoverageExceededError) Error() string {
	scope := string(e.CoverageType)
	if scope == "" {
		scope = "total coverage"
	}
	return fmt.Sprintf("coverage exceeded for %s: requested %v, remaining %v",
		scope, e.Requested, e.Remaining)
}

func (e *CoverageExceededError) Unwrap() error { return ErrCoverageExceeded }

// BeneficiaryNotCoveredError identifies the missing beneficiary.
type BeneficiaryNotCoveredError struct {
	PolicyID      PolicyID
	BeneficiaryID BeneficiaryID
}

func (e *BeneficiaryNotCoveredError) Error() string {
	return fmt.Sprintf("beneficiary %s not covered by policy %s", e.BeneficiaryID, e.PolicyID)
}

func (e *BeneficiaryNotCoveredError) Unwrap() error { return ErrBeneficiaryNotCovered }
