/*
errors.go - Centralized error taxonomy for the claims engine

PURPOSE:
  All error types in one place. The engine never swallows an error class:
  everything propagates to the caller with enough structured detail
  (entity id, attempted transition, current state) to render a precise
  message. The engine itself performs no logging or user-facing
  formatting.

TAXONOMY:
  ValidationError        - malformed input; caller corrects, never retried
  AuthorizationError     - actor role not permitted; surfaced as-is
  IllegalTransitionError - current status forbids the edge; carries the
                           current status so the caller can re-sync
  CoverageExceededError  - ledger validation failure (policy package);
                           carries coverage type and remaining balance
  ErrConcurrencyConflict - stale write; the ONLY class callers retry, by
                           reloading and reattempting the operation

USAGE:
  if claims.IsRetryable(err) {
      // reload and retry
  }

  var illegal *claims.IllegalTransitionError
  if errors.As(err, &illegal) {
      // re-sync the caller's view from illegal.Current
  }

SEE ALSO:
  - policy/errors.go: Coverage and concurrency sentinels wrapped here
  - workflow.go: Produces authorization and transition errors
*/
package claims

import (
	"errors"
	"fmt"

	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all malformed-input failures.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization is returned when the actor's role is not permitted
	// to perform the attempted operation.
	ErrAuthorization = errors.New("actor not authorized")

	// ErrIllegalTransition is returned when the claim's current status is
	// not a legal source for the attempted edge.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrClaimNotFound is returned when a referenced claim doesn't exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrTemplateNotFound is returned when no active questionnaire template
	// exists for a valid (claimType, claimOption) pair.
	ErrTemplateNotFound = errors.New("active questionnaire template not found")

	// ErrInvalidOption is returned when the claim option is not a member of
	// the valid-combination table for the claim's type.
	ErrInvalidOption = errors.New("invalid claim option for claim type")

	// ErrQuestionNotFound is returned when answering a question that is not
	// part of the bound questionnaire snapshot.
	ErrQuestionNotFound = errors.New("question not found in questionnaire")
)

// Re-exported from the policy package so callers can match either way.
var (
	ErrCoverageExceeded    = policy.ErrCoverageExceeded
	ErrConcurrencyConflict = policy.ErrConcurrencyConflict
	ErrPolicyNotFound      = policy.ErrPolicyNotFound
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed field with a reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthorizationError identifies the actor and the operation that was denied.
type AuthorizationError struct {
	ClaimID ClaimID
	ActorID string
	Role    Role
	Action  Action
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s (%s) not authorized for %s on claim %s",
		e.ActorID, e.Role, e.Action, e.ClaimID)
}

func (e *AuthorizationError) Unwrap() error { return ErrAuthorization }

// IllegalTransitionError carries the claim's current status so the caller
// can re-sync a stale view.
type IllegalTransitionError struct {
	ClaimID   ClaimID
	Current   Status
	Attempted Status
	Action    Action
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("claim %s: cannot %s from %s to %s",
		e.ClaimID, e.Action, e.Current, e.Attempted)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// QuestionValidationError reports a per-question answer failure. It does not
// block other questions from being answered.
type QuestionValidationError struct {
	QuestionID string
	Reason     string
}

func (e *QuestionValidationError) Error() string {
	return fmt.Sprintf("invalid answer for question %s: %s", e.QuestionID, e.Reason)
}

func (e *QuestionValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry after a
// reload. Only concurrency conflicts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsClientError returns true if the error is due to invalid client input
// or an out-of-date view, as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrCoverageExceeded) ||
		errors.Is(err, ErrInvalidOption)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClaimNotFound) ||
		errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}
