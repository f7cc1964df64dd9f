/*
service.go - Claim operations exposed to collaborators

PURPOSE:
  Orchestrates the claim lifecycle: each operation loads the claim,
  verifies actor authorization and edge legality, applies the edge's
  documented field mutations, and persists under a version guard. A
  check failure aborts before any mutation; a persistence conflict
  surfaces as ErrConcurrencyConflict for the caller to retry from a
  fresh read (the decision engine retries its ledger commit itself).

OWNERSHIP:
  A claim is exclusively owned by its workflow stage's acting role:
  employees act only on their own claims, HR/admin may act on an
  employee's behalf, the insurer only in the insurer stages. Ownership
  transfers atomically with the status transition.

OPERATIONS:
  CreateClaim          draft claim for an employee
  LoadQuestionnaire    bind the active template snapshot
  AnswerQuestion       record one answer, flip to completed when done
  SetClaimAmount       requested amount + documents, readiness check
  SubmitClaim          hand off to HR
  TransitionByHR       review / return / forward (+ coverage breakdown)
  Decide               insurer verdict via the decision engine
  AddNote              role-scoped note, legal in any status
  AttachDocuments      pre-submission document references
  CancelClaim          employee closes a claim before submission
  RemainingCoverage    ledger read-through
  CoverageConsistency  drift report for a policy

SEE ALSO:
  - workflow.go: The transition table behind every edge
  - decision.go: Approval critical section
*/
package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coverline/claims-engine/policy"
)

// Service wires the stores and the decision engine together.
type Service struct {
	Claims    ClaimStore
	Policies  policy.Store
	Templates TemplateStore
	Engine    *DecisionEngine

	// Clock is swappable for tests; defaults to time.Now.
	Clock func() time.Time
}

func NewService(cs ClaimStore, ps policy.Store, ts TemplateStore) *Service {
	return &Service{
		Claims:    cs,
		Policies:  ps,
		Templates: ts,
		Engine:    NewDecisionEngine(ps),
		Clock:     time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// =============================================================================
// CREATION
// =============================================================================

// CreateClaim creates a draft claim. Employees create their own claims;
// HR and admins may create one on an employee's behalf.
func (s *Service) CreateClaim(ctx context.Context, actor Actor, employeeID string, policyID policy.PolicyID, claimType ClaimType) (*Claim, error) {
	switch actor.Role {
	case RoleEmployee:
		if actor.ID != employeeID {
			return nil, &AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: ActionCreate}
		}
	case RoleHR, RoleAdmin:
		// on-behalf creation allowed
	default:
		return nil, &AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: ActionCreate}
	}

	if claimType != TypeLife && claimType != TypeVehicle {
		return nil, &ValidationError{Field: "claimType", Reason: fmt.Sprintf("unknown claim type %q", claimType)}
	}

	p, err := s.Policies.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if p.Line != PolicyLine(claimType) {
		return nil, &ValidationError{Field: "claimType", Reason: fmt.Sprintf("policy %s is a %s policy", policyID, p.Line)}
	}
	if !p.HasBeneficiary(policy.BeneficiaryID(employeeID)) {
		return nil, &policy.BeneficiaryNotCoveredError{PolicyID: policyID, BeneficiaryID: policy.BeneficiaryID(employeeID)}
	}

	now := s.now()
	c := NewClaim(employeeID, policyID, claimType, now)
	c.WorkflowHistory = append(c.WorkflowHistory, WorkflowEntry{
		ID:          uuid.NewString(),
		From:        StatusDraft,
		To:          StatusDraft,
		Action:      ActionCreate,
		PerformedBy: actor.ID,
		Role:        actor.Role,
		Timestamp:   now,
	})

	if err := s.Claims.CreateClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// QUESTIONNAIRE
// =============================================================================

// LoadQuestionnaire binds the active template for the claim's type and the
// chosen option. Legal only from draft.
func (s *Service) LoadQuestionnaire(ctx context.Context, actor Actor, claimID ClaimID, option ClaimOption) (*Claim, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	if !IsValidOption(c.Type, option) {
		return nil, fmt.Errorf("option %q for %s claim: %w", option, c.Type, ErrInvalidOption)
	}

	tpl, err := s.Templates.FindActiveTemplate(ctx, c.Type, option)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := Transition(c, actor, StatusQuestionnairePending, ActionLoadQuestionnaire, "", now); err != nil {
		return nil, err
	}
	c.Option = option
	c.Questionnaire = Bind(tpl)

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AnswerQuestion records one answer. When the answer completes the last
// required question, the claim flips to questionnaire_completed on the same
// call. Completion is a checkpoint: edits after completion never revert it.
func (s *Service) AnswerQuestion(ctx context.Context, actor Actor, claimID ClaimID, questionID string, answer any) (*Claim, bool, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, false, err
	}

	if c.Status != StatusQuestionnairePending && c.Status != StatusQuestionnaireCompleted {
		return nil, false, &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: c.Status, Action: ActionAnswerQuestion}
	}
	if c.Questionnaire == nil {
		return nil, false, &ValidationError{Field: "questionnaire", Reason: "no questionnaire loaded"}
	}

	now := s.now()
	if err := c.Questionnaire.Answer(questionID, answer, now); err != nil {
		return nil, false, err
	}
	c.UpdatedAt = now

	complete := c.Questionnaire.IsComplete()
	if complete && c.Status == StatusQuestionnairePending {
		if err := Transition(c, actor, StatusQuestionnaireCompleted, ActionAnswerQuestion, "", now); err != nil {
			return nil, false, err
		}
	}

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, false, err
	}
	return c, complete, nil
}

// =============================================================================
// AMOUNT, DOCUMENTS, SUBMISSION
// =============================================================================

// SetClaimAmount sets the requested amount and appends supplied documents.
// Legal from questionnaire_completed, and from returned_to_employee when
// amending before resubmission. Returns the readiness flag.
func (s *Service) SetClaimAmount(ctx context.Context, actor Actor, claimID ClaimID, requested policy.Money, documents []DocumentRef) (*Claim, bool, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, false, err
	}

	if c.Status != StatusQuestionnaireCompleted && c.Status != StatusReturnedToEmployee {
		return nil, false, &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: c.Status, Action: ActionSetAmount}
	}
	if !requested.IsPositive() {
		return nil, false, &ValidationError{Field: "requestedAmount", Reason: "must be positive"}
	}

	now := s.now()
	c.Amount.Requested = requested
	c.AttachDocuments(actor, documents, now)

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, false, err
	}
	return c, c.Flags().IsReadyForSubmission, nil
}

// AttachDocuments appends document references outside of SetClaimAmount.
// Legal for the owning employee (or HR/admin) before submission.
func (s *Service) AttachDocuments(ctx context.Context, actor Actor, claimID ClaimID, documents []DocumentRef) (*Claim, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}
	if !c.Flags().RequiresEmployeeAction {
		return nil, &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: c.Status, Action: ActionSetAmount}
	}

	c.AttachDocuments(actor, documents, s.now())
	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SubmitClaim hands the claim to HR. Legal only when ready for submission.
func (s *Service) SubmitClaim(ctx context.Context, actor Actor, claimID ClaimID) (*Claim, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := Transition(c, actor, StatusSubmitted, ActionSubmit, "", now); err != nil {
		return nil, err
	}
	// Ready check after edge legality so a draft submit reports the
	// transition, not the missing amount.
	if !c.Amount.Requested.IsPositive() {
		return nil, &ValidationError{Field: "requestedAmount", Reason: "claim amount must be set before submission"}
	}
	at := now
	c.SubmittedAt = &at

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CancelClaim closes a claim that has not been submitted yet.
func (s *Service) CancelClaim(ctx context.Context, actor Actor, claimID ClaimID, reason string) (*Claim, error) {
	c, err := s.ownedClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	if err := Transition(c, actor, StatusClosed, ActionCancel, reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// HR STAGE
// =============================================================================

// hrTargets are the only statuses TransitionByHR may produce.
var hrTargets = map[Status]Action{
	StatusUnderHRReview:      ActionStartHRReview,
	StatusReturnedToEmployee: ActionReturnToEmployee,
	StatusForwardedToInsurer: ActionForwardToInsurer,
}

// TransitionByHR moves a submitted claim through the HR stage. Forwarding
// to the insurer may attach a coverage breakdown; its item sum need not
// equal the requested amount, but it is what the decision engine validates.
func (s *Service) TransitionByHR(ctx context.Context, actor Actor, claimID ClaimID, target Status, notes string, breakdown []BreakdownItem) (*Claim, error) {
	action, ok := hrTargets[target]
	if !ok {
		return nil, &ValidationError{Field: "targetStatus", Reason: fmt.Sprintf("%q is not an HR transition target", target)}
	}

	c, err := s.Claims.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if target == StatusForwardedToInsurer && len(breakdown) > 0 {
		for _, item := range breakdown {
			if !item.RequestedAmount.IsPositive() {
				return nil, &ValidationError{Field: "coverageBreakdown", Reason: "breakdown amounts must be positive"}
			}
		}
	}

	if err := Transition(c, actor, target, action, notes, s.now()); err != nil {
		return nil, err
	}
	if target == StatusForwardedToInsurer && len(breakdown) > 0 {
		c.CoverageBreakdown = breakdown
	}

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// INSURER STAGE
// =============================================================================

// StartInsurerReview marks a forwarded claim as under active review.
func (s *Service) StartInsurerReview(ctx context.Context, actor Actor, claimID ClaimID) (*Claim, error) {
	c, err := s.Claims.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := Transition(c, actor, StatusUnderInsurerReview, ActionStartInsurerReview, "", s.now()); err != nil {
		return nil, err
	}
	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Decide applies the insurer's verdict. Approvals validate and commit the
// coverage breakdown against the policy ledger; rejections and returns
// never touch the ledger.
func (s *Service) Decide(ctx context.Context, actor Actor, claimID ClaimID, decision Decision, approvedAmount policy.Money, rejectionReason string) (*Claim, error) {
	c, err := s.Claims.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if err := s.Engine.Decide(ctx, c, actor, decision, approvedAmount, rejectionReason, s.now()); err != nil {
		return nil, err
	}

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// =============================================================================
// NOTES AND QUERIES
// =============================================================================

// AddNote appends a note to the log selected by the actor's role. Legal in
// every status, including terminal ones.
func (s *Service) AddNote(ctx context.Context, actor Actor, claimID ClaimID, text string) (*Claim, error) {
	if text == "" {
		return nil, &ValidationError{Field: "text", Reason: "note text must not be empty"}
	}

	c, err := s.Claims.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if actor.Role == RoleEmployee && actor.ID != c.EmployeeID {
		return nil, &AuthorizationError{ClaimID: c.ID, ActorID: actor.ID, Role: actor.Role, Action: ActionAddNote}
	}

	now := s.now()
	c.Notes.Append(actor, text, now)
	c.UpdatedAt = now

	if err := s.Claims.SaveClaim(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetClaim returns a claim by ID.
func (s *Service) GetClaim(ctx context.Context, claimID ClaimID) (*Claim, error) {
	return s.Claims.GetClaim(ctx, claimID)
}

// ListByEmployee returns an employee's claims.
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]*Claim, error) {
	return s.Claims.ListClaimsByEmployee(ctx, employeeID)
}

// ListByStatus returns the work queue for a status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Claim, error) {
	return s.Claims.ListClaimsByStatus(ctx, status)
}

// =============================================================================
// LEDGER READ-THROUGHS
// =============================================================================

// RemainingCoverage returns limit minus claimed for one balance-sheet cell.
func (s *Service) RemainingCoverage(ctx context.Context, policyID policy.PolicyID, b policy.BeneficiaryID, ct policy.CoverageType) (policy.Money, error) {
	p, err := s.Policies.GetPolicy(ctx, policyID)
	if err != nil {
		return policy.ZeroMoney(), err
	}
	return policy.NewLedger(p).RemainingCoverage(b, ct), nil
}

// CoverageConsistency returns the drift report for a policy.
func (s *Service) CoverageConsistency(ctx context.Context, policyID policy.PolicyID) (policy.ConsistencyReport, error) {
	p, err := s.Policies.GetPolicy(ctx, policyID)
	if err != nil {
		return policy.ConsistencyReport{}, err
	}
	return policy.ValidateCoverageConsistency(p), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ownedClaim loads a claim and enforces employee-stage ownership: employees
// act only on their own claims, admins on anyone's. HR's on-behalf power is
// limited to creation; it never drives the employee stage.
func (s *Service) ownedClaim(ctx context.Context, actor Actor, claimID ClaimID) (*Claim, error) {
	c, err := s.Claims.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case RoleEmployee:
		if actor.ID != c.EmployeeID {
			return nil, &AuthorizationError{ClaimID: c.ID, ActorID: actor.ID, Role: actor.Role}
		}
	case RoleAdmin:
		// on-behalf access allowed
	default:
		return nil, &AuthorizationError{ClaimID: c.ID, ActorID: actor.ID, Role: actor.Role}
	}
	return c, nil
}
