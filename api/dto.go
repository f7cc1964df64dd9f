/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

MONEY ENCODING:
  Monetary amounts are JSON strings ("20000.50"), parsed through decimal
  on the way in. Clients never see floating-point drift on contract
  limits.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type reused for policy payloads
*/
package api

import (
	"time"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/factory"
	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// CLAIM TYPES
// =============================================================================

// ClaimDTO represents a claim in API responses.
type ClaimDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	PolicyID      string `json:"policy_id"`
	BeneficiaryID string `json:"beneficiary_id"`
	ClaimType     string `json:"claim_type"`
	ClaimOption   string `json:"claim_option,omitempty"`
	Status        string `json:"status"`

	RequestedAmount string `json:"requested_amount,omitempty"`
	ApprovedAmount  string `json:"approved_amount,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	Flags         FlagsDTO            `json:"flags"`
	Questionnaire *QuestionnaireDTO   `json:"questionnaire,omitempty"`
	Breakdown     []BreakdownItemDTO  `json:"coverage_breakdown,omitempty"`
	Documents     []DocumentDTO       `json:"documents,omitempty"`
	History       []WorkflowEntryDTO  `json:"workflow_history"`
	Notes         NotesDTO            `json:"notes"`

	SubmittedAt *string `json:"submitted_at,omitempty"`
	DecidedAt   *string `json:"decided_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// FlagsDTO mirrors the derived status flags.
type FlagsDTO struct {
	RequiresEmployeeAction  bool `json:"requires_employee_action"`
	RequiresHRAction        bool `json:"requires_hr_action"`
	RequiresInsurerAction   bool `json:"requires_insurer_action"`
	IsQuestionnaireComplete bool `json:"is_questionnaire_complete"`
	IsDocumentationComplete bool `json:"is_documentation_complete"`
	IsReadyForSubmission    bool `json:"is_ready_for_submission"`
}

// QuestionnaireDTO is the bound questionnaire snapshot with answers.
type QuestionnaireDTO struct {
	TemplateID      string               `json:"template_id"`
	TemplateVersion int                  `json:"template_version"`
	IsComplete      bool                 `json:"is_complete"`
	Sections        []factory.SectionJSON `json:"sections"`
	Responses       []ResponseDTO        `json:"responses"`
}

// ResponseDTO is one answer slot.
type ResponseDTO struct {
	QuestionID string  `json:"question_id"`
	Answer     any     `json:"answer,omitempty"`
	IsAnswered bool    `json:"is_answered"`
	AnsweredAt *string `json:"answered_at,omitempty"`
}

// BreakdownItemDTO allocates part of the claim amount to a coverage type.
type BreakdownItemDTO struct {
	CoverageType    string `json:"coverage_type"`
	RequestedAmount string `json:"requested_amount"`
	Notes           string `json:"notes,omitempty"`
}

// DocumentDTO is an opaque document reference.
type DocumentDTO struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Reference  string `json:"reference"`
	UploadedBy string `json:"uploaded_by,omitempty"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// WorkflowEntryDTO is one history entry.
type WorkflowEntryDTO struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Action      string `json:"action"`
	PerformedBy string `json:"performed_by"`
	Role        string `json:"role"`
	Timestamp   string `json:"timestamp"`
	Notes       string `json:"notes,omitempty"`
}

// NotesDTO holds the three role-scoped note logs.
type NotesDTO struct {
	Employee []NoteDTO `json:"employee,omitempty"`
	HR       []NoteDTO `json:"hr,omitempty"`
	Insurer  []NoteDTO `json:"insurer,omitempty"`
}

type NoteDTO struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// =============================================================================
// REQUEST BODIES
// =============================================================================

// CreateClaimRequest creates a draft claim.
type CreateClaimRequest struct {
	EmployeeID string `json:"employee_id"`
	PolicyID   string `json:"policy_id"`
	ClaimType  string `json:"claim_type"`
}

// LoadQuestionnaireRequest binds the active template for an option.
type LoadQuestionnaireRequest struct {
	ClaimOption string `json:"claim_option"`
}

// AnswerRequest records one questionnaire answer.
type AnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     any    `json:"answer"`
}

// SetAmountRequest sets the requested amount and attaches documents.
type SetAmountRequest struct {
	RequestedAmount string        `json:"requested_amount"`
	Documents       []DocumentDTO `json:"documents,omitempty"`
}

// AttachDocumentsRequest appends document references.
type AttachDocumentsRequest struct {
	Documents []DocumentDTO `json:"documents"`
}

// CancelRequest closes a claim before submission.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// HRTransitionRequest moves a claim through the HR stage.
type HRTransitionRequest struct {
	Target    string             `json:"target"`
	Notes     string             `json:"notes,omitempty"`
	Breakdown []BreakdownItemDTO `json:"coverage_breakdown,omitempty"`
}

// DecisionRequest applies the insurer's verdict.
type DecisionRequest struct {
	Decision        string `json:"decision"`
	ApprovedAmount  string `json:"approved_amount,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// NoteRequest appends a role-scoped note.
type NoteRequest struct {
	Text string `json:"text"`
}

// BeneficiaryRequest covers another beneficiary under a policy.
type BeneficiaryRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
}

// =============================================================================
// POLICY / TEMPLATE TYPES
// =============================================================================

// PolicyDTO represents a policy in API responses.
type PolicyDTO struct {
	factory.PolicyJSON
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// RemainingCoverageDTO is one balance-sheet cell read-through.
type RemainingCoverageDTO struct {
	PolicyID      string `json:"policy_id"`
	BeneficiaryID string `json:"beneficiary_id"`
	CoverageType  string `json:"coverage_type"`
	Remaining     string `json:"remaining"`
}

// ConsistencyDTO is the coverage drift report.
type ConsistencyDTO struct {
	PolicyID         string `json:"policy_id"`
	IsConsistent     bool   `json:"is_consistent"`
	CurrentAmount    string `json:"current_amount"`
	CalculatedAmount string `json:"calculated_amount"`
	Difference       string `json:"difference"`
}

// TemplateDTO represents a questionnaire template in API responses.
type TemplateDTO struct {
	factory.TemplateJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toClaimDTO(c *claims.Claim) ClaimDTO {
	flags := c.Flags()
	dto := ClaimDTO{
		ID:            string(c.ID),
		EmployeeID:    c.EmployeeID,
		PolicyID:      string(c.PolicyID),
		BeneficiaryID: string(c.BeneficiaryID),
		ClaimType:     string(c.Type),
		ClaimOption:   string(c.Option),
		Status:        string(c.Status),
		Flags: FlagsDTO{
			RequiresEmployeeAction:  flags.RequiresEmployeeAction,
			RequiresHRAction:        flags.RequiresHRAction,
			RequiresInsurerAction:   flags.RequiresInsurerAction,
			IsQuestionnaireComplete: flags.IsQuestionnaireComplete,
			IsDocumentationComplete: flags.IsDocumentationComplete,
			IsReadyForSubmission:    flags.IsReadyForSubmission,
		},
		RejectionReason: c.RejectionReason,
		History:         make([]WorkflowEntryDTO, 0, len(c.WorkflowHistory)),
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}

	if c.Amount.Requested.IsPositive() {
		dto.RequestedAmount = c.Amount.Requested.String()
	}
	if c.Amount.Approved.IsPositive() {
		dto.ApprovedAmount = c.Amount.Approved.String()
	}
	if c.SubmittedAt != nil {
		s := c.SubmittedAt.Format(time.RFC3339)
		dto.SubmittedAt = &s
	}
	if c.DecidedAt != nil {
		s := c.DecidedAt.Format(time.RFC3339)
		dto.DecidedAt = &s
	}

	if c.Questionnaire != nil {
		dto.Questionnaire = toQuestionnaireDTO(c.Questionnaire)
	}
	for _, item := range c.CoverageBreakdown {
		dto.Breakdown = append(dto.Breakdown, BreakdownItemDTO{
			CoverageType:    string(item.CoverageType),
			RequestedAmount: item.RequestedAmount.String(),
			Notes:           item.Notes,
		})
	}
	for _, doc := range c.Documents {
		dto.Documents = append(dto.Documents, DocumentDTO{
			ID:         doc.ID,
			Name:       doc.Name,
			Reference:  doc.Reference,
			UploadedBy: doc.UploadedBy,
			UploadedAt: doc.UploadedAt.Format(time.RFC3339),
		})
	}
	for _, e := range c.WorkflowHistory {
		dto.History = append(dto.History, WorkflowEntryDTO{
			From:        string(e.From),
			To:          string(e.To),
			Action:      string(e.Action),
			PerformedBy: e.PerformedBy,
			Role:        string(e.Role),
			Timestamp:   e.Timestamp.Format(time.RFC3339),
			Notes:       e.Notes,
		})
	}
	dto.Notes = NotesDTO{
		Employee: toNoteDTOs(c.Notes.Employee),
		HR:       toNoteDTOs(c.Notes.HR),
		Insurer:  toNoteDTOs(c.Notes.Insurer),
	}
	return dto
}

func toClaimDTOs(cs []*claims.Claim) []ClaimDTO {
	dtos := make([]ClaimDTO, len(cs))
	for i, c := range cs {
		dtos[i] = toClaimDTO(c)
	}
	return dtos
}

func toQuestionnaireDTO(rs *claims.ResponseSet) *QuestionnaireDTO {
	tf := factory.NewTemplateFactory()
	snapshot := tf.ToJSON(&claims.Template{Sections: rs.Sections})

	dto := &QuestionnaireDTO{
		TemplateID:      rs.TemplateID,
		TemplateVersion: rs.TemplateVersion,
		IsComplete:      rs.IsComplete(),
		Sections:        snapshot.Sections,
	}
	for _, r := range rs.Responses {
		rdto := ResponseDTO{
			QuestionID: r.QuestionID,
			Answer:     r.Answer,
			IsAnswered: r.IsAnswered,
		}
		if r.AnsweredAt != nil {
			s := r.AnsweredAt.Format(time.RFC3339)
			rdto.AnsweredAt = &s
		}
		dto.Responses = append(dto.Responses, rdto)
	}
	return dto
}

func toNoteDTOs(notes []claims.Note) []NoteDTO {
	var dtos []NoteDTO
	for _, n := range notes {
		dtos = append(dtos, NoteDTO{
			ID:        n.ID,
			AuthorID:  n.AuthorID,
			Role:      string(n.Role),
			Text:      n.Text,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return dtos
}

func toPolicyDTO(pf *factory.PolicyFactory, p *policy.Policy) PolicyDTO {
	return PolicyDTO{
		PolicyJSON: pf.ToJSON(p),
		Version:    p.Version,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func toTemplateDTO(tf *factory.TemplateFactory, t *claims.Template) TemplateDTO {
	return TemplateDTO{
		TemplateJSON: tf.ToJSON(t),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

func toDocumentRefs(docs []DocumentDTO) []claims.DocumentRef {
	var refs []claims.DocumentRef
	for _, d := range docs {
		refs = append(refs, claims.DocumentRef{
			ID:        d.ID,
			Name:      d.Name,
			Reference: d.Reference,
		})
	}
	return refs
}
