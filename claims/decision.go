/*
decision.go - Final decisions interlocked with the coverage ledger

PURPOSE:
  On approval, validates the claim's coverage breakdown (or its single
  requested amount against the default coverage type) against the policy
  coverage ledger and commits it; on rejection or return, never touches
  the ledger.

ALL-OR-NOTHING:
  Breakdown items are committed to an in-memory copy of the policy and
  persisted with a single version-guarded save. Any item failing
  validation aborts before the save, so no partial ledger mutation is
  ever visible.

CONCURRENCY:
  Two approvals racing on the same policy both load the same version;
  the first save wins, the second gets ErrConcurrencyConflict and the
  engine retries the WHOLE validate+commit sequence from a fresh load.
  A retry re-validates against the updated balances, so when only one
  of two concurrent approvals fits the remaining limit, exactly one
  succeeds and the other surfaces CoverageExceededError. This is the
  one required transactional guarantee of the core.

SEE ALSO:
  - policy/ledger.go: Validation and the claimed-amount mutation
  - service.go: Decide entry point wrapping this engine
*/
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coverline/claims-engine/policy"
)

// Decision is the insurer's verdict on a forwarded claim.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionReturned Decision = "returned_to_employee"
)

// maxCommitRetries bounds the reload-and-retry loop on version conflicts.
const maxCommitRetries = 5

// DecisionEngine executes insurer decisions against the coverage ledger.
type DecisionEngine struct {
	Policies policy.Store
}

func NewDecisionEngine(policies policy.Store) *DecisionEngine {
	return &DecisionEngine{Policies: policies}
}

// Decide applies the verdict to the claim. The caller persists the claim
// afterwards; the policy (on approval) is persisted here, inside the
// critical section.
func (de *DecisionEngine) Decide(
	ctx context.Context,
	c *Claim,
	actor Actor,
	decision Decision,
	approvedAmount policy.Money,
	rejectionReason string,
	now time.Time,
) error {
	if c.Status != StatusForwardedToInsurer && c.Status != StatusUnderInsurerReview {
		return &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: Status(decision), Action: actionFor(decision)}
	}

	switch decision {
	case DecisionApproved:
		return de.approve(ctx, c, actor, approvedAmount, now)

	case DecisionRejected:
		if rejectionReason == "" {
			return &ValidationError{Field: "rejectionReason", Reason: "required when rejecting a claim"}
		}
		if err := Transition(c, actor, StatusRejected, ActionReject, rejectionReason, now); err != nil {
			return err
		}
		c.RejectionReason = rejectionReason
		at := now
		c.DecidedAt = &at
		return nil

	case DecisionReturned:
		return Transition(c, actor, StatusReturnedToEmployee, ActionReturnToEmployee, rejectionReason, now)

	default:
		return &ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", decision)}
	}
}

func actionFor(d Decision) Action {
	switch d {
	case DecisionApproved:
		return ActionApprove
	case DecisionRejected:
		return ActionReject
	default:
		return ActionReturnToEmployee
	}
}

// approve validates and commits the breakdown, then transitions the claim.
func (de *DecisionEngine) approve(ctx context.Context, c *Claim, actor Actor, approvedAmount policy.Money, now time.Time) error {
	// Authorization and edge legality are checked before the ledger is
	// touched, so an unauthorized approval leaves no side effect.
	if !CanTransition(actor.Role, c.Status, StatusApproved) {
		if !roleCanEverReach(actor.Role, StatusApproved) {
			return &AuthorizationError{ClaimID: c.ID, ActorID: actor.ID, Role: actor.Role, Action: ActionApprove}
		}
		return &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: StatusApproved, Action: ActionApprove}
	}

	items := c.CoverageBreakdown
	if len(items) == 0 {
		amount := approvedAmount
		if !amount.IsPositive() {
			amount = c.Amount.Requested
		}
		items = []BreakdownItem{{
			CoverageType:    DefaultCoverageType(c.Option),
			RequestedAmount: amount,
		}}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.RequestedAmount)
	}
	if !total.IsPositive() {
		return &ValidationError{Field: "approvedAmount", Reason: "approved amount must be positive"}
	}

	if err := de.commitToLedger(ctx, c, items); err != nil {
		return err
	}

	if err := Transition(c, actor, StatusApproved, ActionApprove, "", now); err != nil {
		// The transition was pre-checked above; reaching here means the
		// claim changed mid-flight. Surface it; the ledger commit stands
		// and the caller reconciles from the workflow history.
		return err
	}

	recorded := approvedAmount
	if !recorded.IsPositive() {
		recorded = total
	}
	c.Amount.Approved = recorded
	at := now
	c.DecidedAt = &at
	return nil
}

// commitToLedger runs the validate+commit sequence as one critical section
// per policy: all items are applied to an in-memory copy and persisted with
// a version-guarded save, retried from a fresh load on conflict.
func (de *DecisionEngine) commitToLedger(ctx context.Context, c *Claim, items []BreakdownItem) error {
	var lastErr error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		p, err := de.Policies.GetPolicy(ctx, c.PolicyID)
		if err != nil {
			return fmt.Errorf("load policy %s: %w", c.PolicyID, err)
		}

		ledger := policy.NewLedger(p)
		for _, item := range items {
			// AddClaimedAmount re-validates cumulatively, so overlapping
			// items that fit individually but not together are caught here.
			if err := ledger.AddClaimedAmount(c.BeneficiaryID, item.CoverageType, item.RequestedAmount); err != nil {
				return err // in-memory copy discarded, nothing persisted
			}
		}

		err = de.Policies.SavePolicy(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, policy.ErrConcurrencyConflict) {
			return fmt.Errorf("save policy %s: %w", c.PolicyID, err)
		}
		lastErr = err
	}
	return fmt.Errorf("commit claim %s to policy %s: %w", c.ID, c.PolicyID, lastErr)
}
