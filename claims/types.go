/*
Package claims implements the claim lifecycle engine.

PURPOSE:
  This package contains the core of the claims-management system: the
  claim document model, the multi-actor lifecycle state machine, the
  questionnaire binder, and the decision engine that interlocks final
  approvals with the policy coverage ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Claim: The claim document — status, questionnaire, amounts, history
  - Status: Closed enumeration of lifecycle states
  - StatusFlags: Derived booleans recomputed from status, never stored
  - Actor: (ID, Role) pair supplied by the identity collaborator
  - WorkflowEntry: Append-only record of one status transition

DESIGN PRINCIPLES:
  1. Derived flags: StatusFlags are a pure function of the claim document,
     eliminating drift between flags and status
  2. Append-only history: WorkflowHistory and the note logs are only ever
     appended to, never rewritten
  3. Precision: Monetary amounts are decimal.Decimal via the policy package
  4. Optimistic concurrency: every claim carries a Version checked on save

USAGE:
  c := claims.NewClaim("emp-1", "pol-1", claims.TypeLife, now)
  // c.Status == claims.StatusDraft

SEE ALSO:
  - workflow.go: Legal transitions and the role-gated transition table
  - questionnaire.go: Template snapshotting and answer validation
  - decision.go: Final decisions against the coverage ledger
*/
package claims

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// IDENTIFIERS AND ACTORS
// =============================================================================

type ClaimID string

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleInsurer  Role = "insurer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleInsurer, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated (id, role) pair accompanying every call into
// the engine. The engine trusts it; authentication happens upstream.
type Actor struct {
	ID   string
	Role Role
}

// NewClaimID generates a human-readable claim identifier:
// prefix + year/month + random suffix, e.g. CLM-202603-4F7A2C.
func NewClaimID(now time.Time) ClaimID {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return ClaimID(fmt.Sprintf("CLM-%s-%s", now.Format("200601"), suffix))
}

// =============================================================================
// CLAIM TYPE AND OPTION
// =============================================================================

type ClaimType string

const (
	TypeLife    ClaimType = "life"
	TypeVehicle ClaimType = "vehicle"
)

// ClaimOption narrows the claim type and fixes the questionnaire template.
type ClaimOption string

const (
	// Life options
	OptionHospitalization ClaimOption = "hospitalization"
	OptionChannelling     ClaimOption = "channelling"
	OptionMedication      ClaimOption = "medication"
	OptionDeath           ClaimOption = "death"

	// Vehicle options
	OptionAccident        ClaimOption = "accident"
	OptionTheft           ClaimOption = "theft"
	OptionFire            ClaimOption = "fire"
	OptionNaturalDisaster ClaimOption = "naturalDisaster"
)

// =============================================================================
// STATUS - Closed lifecycle enumeration
// =============================================================================

type Status string

const (
	StatusDraft                  Status = "draft"
	StatusQuestionnairePending   Status = "questionnaire_pending"
	StatusQuestionnaireCompleted Status = "questionnaire_completed"
	StatusSubmitted              Status = "submitted"
	StatusUnderHRReview          Status = "under_hr_review"
	StatusForwardedToInsurer     Status = "forwarded_to_insurer"
	StatusUnderInsurerReview     Status = "under_insurer_review"
	StatusReturnedToEmployee     Status = "returned_to_employee"
	StatusApproved               Status = "approved"
	StatusRejected               Status = "rejected"
	StatusClosed                 Status = "closed"
)

// AllStatuses enumerates every lifecycle state. Tests iterate this to prove
// the transition table rejects everything it does not explicitly allow.
var AllStatuses = []Status{
	StatusDraft,
	StatusQuestionnairePending,
	StatusQuestionnaireCompleted,
	StatusSubmitted,
	StatusUnderHRReview,
	StatusForwardedToInsurer,
	StatusUnderInsurerReview,
	StatusReturnedToEmployee,
	StatusApproved,
	StatusRejected,
	StatusClosed,
}

// IsTerminal reports whether the status accepts no further transitions.
// Terminal claims still accept note appends.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusClosed
}

// =============================================================================
// CLAIM DOCUMENT
// =============================================================================

// ClaimAmount tracks the two monetary figures on a claim. Requested is set
// once before submission; Approved is set exactly once by the decision engine.
type ClaimAmount struct {
	Requested policy.Money
	Approved  policy.Money
}

// DocumentRef is an opaque reference into the document-store collaborator.
// The engine never inspects file bytes.
type DocumentRef struct {
	ID         string
	Name       string
	Reference  string
	UploadedBy string
	UploadedAt time.Time
}

// WorkflowEntry records one status transition. The history is append-only:
// entries are never mutated or removed.
type WorkflowEntry struct {
	ID          string
	From        Status
	To          Status
	Action      Action
	PerformedBy string
	Role        Role
	Timestamp   time.Time
	Notes       string
}

// Note is one entry in a role-scoped note log.
type Note struct {
	ID        string
	AuthorID  string
	Role      Role
	Text      string
	CreatedAt time.Time
}

// NoteLog holds the three independent append-only note logs. The author's
// role selects the log; admin notes land in the HR log.
type NoteLog struct {
	Employee []Note
	HR       []Note
	Insurer  []Note
}

// Append adds a note to the log selected by the actor's role.
func (nl *NoteLog) Append(actor Actor, text string, at time.Time) Note {
	n := Note{
		ID:        uuid.NewString(),
		AuthorID:  actor.ID,
		Role:      actor.Role,
		Text:      text,
		CreatedAt: at,
	}
	switch actor.Role {
	case RoleEmployee:
		nl.Employee = append(nl.Employee, n)
	case RoleInsurer:
		nl.Insurer = append(nl.Insurer, n)
	default:
		nl.HR = append(nl.HR, n)
	}
	return n
}

// BreakdownItem allocates part of a claim's amount to one coverage type.
// HR attaches the breakdown when forwarding to the insurer; the decision
// engine validates each item against the ledger.
type BreakdownItem struct {
	CoverageType    policy.CoverageType
	RequestedAmount policy.Money
	Notes           string
}

// Claim is the claim document. Identity, ownership and policy reference are
// immutable after creation; Status is mutated only by the state machine.
type Claim struct {
	ID            ClaimID
	EmployeeID    string
	PolicyID      policy.PolicyID
	BeneficiaryID policy.BeneficiaryID
	Type          ClaimType
	Option        ClaimOption

	Status        Status
	Questionnaire *ResponseSet
	Amount        ClaimAmount
	Documents     []DocumentRef

	// CoverageBreakdown is attached at HR-forwarding time. Its item sum need
	// not equal Amount.Requested; it is what the decision engine validates.
	CoverageBreakdown []BreakdownItem

	RejectionReason string

	WorkflowHistory []WorkflowEntry
	Notes           NoteLog

	SubmittedAt *time.Time
	DecidedAt   *time.Time

	// Optimistic concurrency: stores reject a Save whose Version does not
	// match the persisted row.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewClaim creates a claim in draft for the given employee. The employee is
// the claiming beneficiary on the referenced policy.
func NewClaim(employeeID string, policyID policy.PolicyID, claimType ClaimType, now time.Time) *Claim {
	return &Claim{
		ID:            NewClaimID(now),
		EmployeeID:    employeeID,
		PolicyID:      policyID,
		BeneficiaryID: policy.BeneficiaryID(employeeID),
		Type:          claimType,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// =============================================================================
// STATUS FLAGS - Derived, never stored
// =============================================================================

// StatusFlags are the derived booleans callers read instead of re-deriving
// workflow state themselves. They are recomputed from the claim document on
// every read; no caller may set them independently.
type StatusFlags struct {
	RequiresEmployeeAction  bool
	RequiresHRAction        bool
	RequiresInsurerAction   bool
	IsQuestionnaireComplete bool
	IsDocumentationComplete bool
	IsReadyForSubmission    bool
}

// Flags computes the derived status flags. Pure function of the document.
func (c *Claim) Flags() StatusFlags {
	questionnaireComplete := c.Status != StatusDraft && c.Status != StatusQuestionnairePending

	return StatusFlags{
		RequiresEmployeeAction: c.Status == StatusDraft ||
			c.Status == StatusQuestionnairePending ||
			c.Status == StatusQuestionnaireCompleted ||
			c.Status == StatusReturnedToEmployee,
		RequiresHRAction: c.Status == StatusSubmitted ||
			c.Status == StatusUnderHRReview,
		RequiresInsurerAction: c.Status == StatusForwardedToInsurer ||
			c.Status == StatusUnderInsurerReview,
		IsQuestionnaireComplete: questionnaireComplete,
		IsDocumentationComplete: len(c.Documents) > 0,
		IsReadyForSubmission: (c.Status == StatusQuestionnaireCompleted ||
			c.Status == StatusReturnedToEmployee) &&
			c.Amount.Requested.IsPositive(),
	}
}

// Clone returns a deep copy, so stores can hand out claims without
// aliasing their internal state.
func (c *Claim) Clone() *Claim {
	cp := *c
	if c.Questionnaire != nil {
		cp.Questionnaire = c.Questionnaire.clone()
	}
	cp.Documents = append([]DocumentRef(nil), c.Documents...)
	cp.CoverageBreakdown = append([]BreakdownItem(nil), c.CoverageBreakdown...)
	cp.WorkflowHistory = append([]WorkflowEntry(nil), c.WorkflowHistory...)
	cp.Notes.Employee = append([]Note(nil), c.Notes.Employee...)
	cp.Notes.HR = append([]Note(nil), c.Notes.HR...)
	cp.Notes.Insurer = append([]Note(nil), c.Notes.Insurer...)
	if c.SubmittedAt != nil {
		at := *c.SubmittedAt
		cp.SubmittedAt = &at
	}
	if c.DecidedAt != nil {
		at := *c.DecidedAt
		cp.DecidedAt = &at
	}
	return &cp
}

// AttachDocuments appends document references and stamps them.
func (c *Claim) AttachDocuments(actor Actor, refs []DocumentRef, now time.Time) {
	for _, ref := range refs {
		if ref.ID == "" {
			ref.ID = uuid.NewString()
		}
		ref.UploadedBy = actor.ID
		ref.UploadedAt = now
		c.Documents = append(c.Documents, ref)
	}
	c.UpdatedAt = now
}
