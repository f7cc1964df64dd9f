/*
workflow.go - Claim lifecycle state machine

PURPOSE:
  Owns the claim's status field and the legal transitions between
  statuses, gated by actor role. Every transition atomically verifies
  authorization and legality, mutates the status, and appends exactly
  one workflow-history entry. A failed check aborts with no mutation.

LIFECYCLE:
  draft -> questionnaire_pending -> questionnaire_completed -> submitted
        -> under_hr_review -> {forwarded_to_insurer | returned_to_employee}
        -> under_insurer_review -> {approved | rejected | returned_to_employee}

  returned_to_employee is re-entrant: the employee amends and resubmits,
  re-entering submitted. approved/rejected/closed are terminal and accept
  nothing but note appends.

TRANSITION TABLE:
  The role-gated edges are one explicit package-level table
  (role -> source status -> allowed targets). New statuses force the
  table to be updated, and an exhaustive test walks every
  (role, source, target) triple against it.

ERROR SELECTION:
  - Role can never produce the target at all        -> AuthorizationError
  - Role can, but not from the current status       -> IllegalTransitionError
  (so HR forwarding a draft claim reports the bad source, not a
  permissions problem)

SEE ALSO:
  - types.go: Status enumeration and derived flags
  - service.go: Edge payload mutations around Transition calls
*/
package claims

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ACTIONS
// =============================================================================

// Action names the operation that caused a transition, recorded in history.
type Action string

const (
	ActionCreate            Action = "create"
	ActionLoadQuestionnaire Action = "load_questionnaire"
	ActionAnswerQuestion    Action = "answer_question"
	ActionSetAmount         Action = "set_claim_amount"
	ActionSubmit            Action = "submit"
	ActionStartHRReview     Action = "start_hr_review"
	ActionReturnToEmployee  Action = "return_to_employee"
	ActionForwardToInsurer  Action = "forward_to_insurer"
	ActionStartInsurerReview Action = "start_insurer_review"
	ActionApprove           Action = "approve"
	ActionReject            Action = "reject"
	ActionCancel            Action = "cancel"
	ActionAddNote           Action = "add_note"
)

// =============================================================================
// TRANSITION TABLE - role x source status -> allowed targets
// =============================================================================

var employeeEdges = map[Status][]Status{
	StatusDraft:                  {StatusQuestionnairePending, StatusClosed},
	StatusQuestionnairePending:   {StatusQuestionnaireCompleted, StatusClosed},
	StatusQuestionnaireCompleted: {StatusSubmitted, StatusClosed},
	StatusReturnedToEmployee:     {StatusSubmitted, StatusClosed},
}

var hrEdges = map[Status][]Status{
	StatusSubmitted:     {StatusUnderHRReview, StatusReturnedToEmployee, StatusForwardedToInsurer},
	StatusUnderHRReview: {StatusReturnedToEmployee, StatusForwardedToInsurer},
}

var insurerEdges = map[Status][]Status{
	StatusForwardedToInsurer: {StatusUnderInsurerReview, StatusApproved, StatusRejected, StatusReturnedToEmployee},
	StatusUnderInsurerReview: {StatusApproved, StatusRejected, StatusReturnedToEmployee},
}

// transitionTable is the single source of truth for legal, role-gated edges.
// Admin acts on employees' and HR's behalf but never decides as the insurer.
var transitionTable = map[Role]map[Status][]Status{
	RoleEmployee: employeeEdges,
	RoleHR:       hrEdges,
	RoleInsurer:  insurerEdges,
	RoleAdmin:    mergeEdges(employeeEdges, hrEdges),
}

func mergeEdges(tables ...map[Status][]Status) map[Status][]Status {
	merged := make(map[Status][]Status)
	for _, t := range tables {
		for from, targets := range t {
			merged[from] = append(merged[from], targets...)
		}
	}
	return merged
}

// CanTransition reports whether the role may move a claim from -> to.
func CanTransition(role Role, from, to Status) bool {
	for _, target := range transitionTable[role][from] {
		if target == to {
			return true
		}
	}
	return false
}

// roleCanEverReach reports whether any source status lets the role produce
// the target. Distinguishes "wrong source" from "not your edge at all".
func roleCanEverReach(role Role, to Status) bool {
	for _, targets := range transitionTable[role] {
		for _, target := range targets {
			if target == to {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// TRANSITION
// =============================================================================

// Transition verifies the edge and applies the status change:
//  1. actor's role must be authorized for the edge
//  2. the current status must be a legal source
//  3. status is mutated and exactly one history entry is appended
//
// Field mutations specific to an edge (amounts, breakdowns, timestamps) are
// applied by the caller around this call; a check failure here happens
// before any of them, keeping failed transitions all-or-nothing.
func Transition(c *Claim, actor Actor, to Status, action Action, notes string, now time.Time) error {
	if !actor.Role.Valid() || !roleCanEverReach(actor.Role, to) {
		return &AuthorizationError{ClaimID: c.ID, ActorID: actor.ID, Role: actor.Role, Action: action}
	}
	if c.Status.IsTerminal() || !CanTransition(actor.Role, c.Status, to) {
		return &IllegalTransitionError{ClaimID: c.ID, Current: c.Status, Attempted: to, Action: action}
	}

	from := c.Status
	c.Status = to
	c.UpdatedAt = now
	c.WorkflowHistory = append(c.WorkflowHistory, WorkflowEntry{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		Action:      action,
		PerformedBy: actor.ID,
		Role:        actor.Role,
		Timestamp:   now,
		Notes:       notes,
	})
	return nil
}
