/*
handlers.go - HTTP API handlers for the claims-management system

PURPOSE:
  Exposes the claims engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Claims:
    POST   /api/claims                       Create draft claim
    GET    /api/claims/{id}                  Get claim with derived flags
    GET    /api/claims                       List by employee or status
    POST   /api/claims/{id}/questionnaire    Bind the active template
    POST   /api/claims/{id}/answers          Answer a question
    POST   /api/claims/{id}/amount           Set amount + documents
    POST   /api/claims/{id}/documents        Attach documents
    POST   /api/claims/{id}/submit           Submit to HR
    POST   /api/claims/{id}/cancel           Close before submission
    POST   /api/claims/{id}/hr-transition    HR review/return/forward
    POST   /api/claims/{id}/review           Insurer starts review
    POST   /api/claims/{id}/decision         Insurer verdict
    POST   /api/claims/{id}/notes            Append role-scoped note

  Policies:
    GET    /api/policies                     List policies
    POST   /api/policies                     Create from JSON
    GET    /api/policies/{id}                Get policy
    DELETE /api/policies/{id}                Delete policy + balance sheet
    GET    /api/policies/{id}/remaining      Remaining coverage cell
    GET    /api/policies/{id}/consistency    Coverage drift report

  Templates:
    GET    /api/templates                    List versions for a pair
    POST   /api/templates                    Author a new version
    GET    /api/templates/{id}               Get template
    POST   /api/templates/{id}/clone         Clone as next dormant version
    POST   /api/templates/{id}/promote       Swap the active template

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario

ACTOR IDENTITY:
  Every claim operation requires the acting identity in headers:
    X-Actor-Id:   opaque user id
    X-Actor-Role: employee | hr | insurer | admin
  Authentication happens upstream; the engine trusts these values.

ERROR HANDLING:
  Domain errors map onto HTTP status codes:
  - 400: Validation errors, invalid options, malformed input
  - 403: Role not authorized for the operation
  - 404: Claim / policy / template not found
  - 409: Illegal status transition, stale write (retry from fresh read)
  - 422: Coverage limit exceeded (carries the remaining balance)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/factory"
	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service         *claims.Service
	PolicyFactory   *factory.PolicyFactory
	TemplateFactory *factory.TemplateFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the claims service.
func NewHandler(svc *claims.Service) *Handler {
	return &Handler{
		Service:         svc,
		PolicyFactory:   factory.NewPolicyFactory(),
		TemplateFactory: factory.NewTemplateFactory(),
	}
}

// actorFrom extracts the acting identity from request headers.
func actorFrom(r *http.Request) (claims.Actor, error) {
	actor := claims.Actor{
		ID:   r.Header.Get("X-Actor-Id"),
		Role: claims.Role(r.Header.Get("X-Actor-Role")),
	}
	if actor.ID == "" {
		return actor, fmt.Errorf("missing X-Actor-Id header")
	}
	if !actor.Role.Valid() {
		return actor, fmt.Errorf("missing or unknown X-Actor-Role header")
	}
	return actor, nil
}

// =============================================================================
// CLAIM HANDLERS
// =============================================================================

// CreateClaim creates a draft claim.
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Service.CreateClaim(r.Context(), actor, req.EmployeeID,
		policy.PolicyID(req.PolicyID), claims.ClaimType(req.ClaimType))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClaimDTO(c))
}

// GetClaim returns a single claim with derived flags.
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetClaim(r.Context(), claims.ClaimID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// ListClaims lists by employee_id or by status (work queue).
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		cs, err := h.Service.ListByEmployee(ctx, employeeID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClaimDTOs(cs))
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		cs, err := h.Service.ListByStatus(ctx, claims.Status(status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClaimDTOs(cs))
		return
	}

	writeError(w, http.StatusBadRequest, "Provide employee_id or status query parameter", nil)
}

// LoadQuestionnaire binds the active template for the chosen option.
func (h *Handler) LoadQuestionnaire(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req LoadQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Service.LoadQuestionnaire(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), claims.ClaimOption(req.ClaimOption))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// AnswerQuestion records one questionnaire answer.
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, _, err := h.Service.AnswerQuestion(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), req.QuestionID, req.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// SetAmount sets the requested amount and attaches documents.
func (h *Handler) SetAmount(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req SetAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	requested, err := decimal.NewFromString(req.RequestedAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requested_amount", err)
		return
	}

	c, _, err := h.Service.SetClaimAmount(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), requested, toDocumentRefs(req.Documents))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// AttachDocuments appends document references pre-submission.
func (h *Handler) AttachDocuments(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req AttachDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Service.AttachDocuments(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), toDocumentRefs(req.Documents))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// SubmitClaim hands the claim to HR.
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	c, err := h.Service.SubmitClaim(r.Context(), actor, claims.ClaimID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// CancelClaim closes a claim before submission.
func (h *Handler) CancelClaim(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req CancelRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	c, err := h.Service.CancelClaim(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// HRTransition moves a submitted claim through the HR stage.
func (h *Handler) HRTransition(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req HRTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var breakdown []claims.BreakdownItem
	for _, item := range req.Breakdown {
		amount, err := decimal.NewFromString(item.RequestedAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid breakdown amount for %s", item.CoverageType), err)
			return
		}
		breakdown = append(breakdown, claims.BreakdownItem{
			CoverageType:    policy.CoverageType(item.CoverageType),
			RequestedAmount: amount,
			Notes:           item.Notes,
		})
	}

	c, err := h.Service.TransitionByHR(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")), claims.Status(req.Target), req.Notes, breakdown)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// StartReview marks a forwarded claim as under insurer review.
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	c, err := h.Service.StartInsurerReview(r.Context(), actor, claims.ClaimID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// Decide applies the insurer's verdict.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	approved := decimal.Zero
	if req.ApprovedAmount != "" {
		approved, err = decimal.NewFromString(req.ApprovedAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid approved_amount", err)
			return
		}
	}

	c, err := h.Service.Decide(r.Context(), actor,
		claims.ClaimID(chi.URLParam(r, "id")),
		claims.Decision(req.Decision), approved, req.RejectionReason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// AddNote appends a role-scoped note.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor identity", err)
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Service.AddNote(r.Context(), actor, claims.ClaimID(chi.URLParam(r, "id")), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns all policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Service.Policies.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toPolicyDTO(h.PolicyFactory, p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns a single policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Policies.GetPolicy(r.Context(), policy.PolicyID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(h.PolicyFactory, p))
}

// CreatePolicy creates a policy from its JSON definition.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var pj factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.PolicyFactory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy definition", err)
		return
	}
	if err := h.Service.Policies.CreatePolicy(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPolicyDTO(h.PolicyFactory, p))
}

// DeletePolicy removes a policy and its balance sheet.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Policies.DeletePolicy(r.Context(), policy.PolicyID(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBeneficiary covers another beneficiary under the policy, growing the
// balance sheet to match.
func (h *Handler) AddBeneficiary(w http.ResponseWriter, r *http.Request) {
	var req BeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BeneficiaryID == "" {
		writeError(w, http.StatusBadRequest, "beneficiary_id is required", nil)
		return
	}

	p, err := h.Service.Policies.GetPolicy(r.Context(), policy.PolicyID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p.AddBeneficiary(policy.BeneficiaryID(req.BeneficiaryID))
	if err := h.Service.Policies.SavePolicy(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(h.PolicyFactory, p))
}

// RemoveBeneficiary drops a beneficiary and its claimed-amount row.
func (h *Handler) RemoveBeneficiary(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Policies.GetPolicy(r.Context(), policy.PolicyID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p.RemoveBeneficiary(policy.BeneficiaryID(chi.URLParam(r, "beneficiaryId")))
	if err := h.Service.Policies.SavePolicy(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(h.PolicyFactory, p))
}

// RemainingCoverage returns one balance-sheet cell read-through.
func (h *Handler) RemainingCoverage(w http.ResponseWriter, r *http.Request) {
	policyID := policy.PolicyID(chi.URLParam(r, "id"))
	beneficiary := policy.BeneficiaryID(r.URL.Query().Get("beneficiary_id"))
	coverageType := policy.CoverageType(r.URL.Query().Get("coverage_type"))
	if beneficiary == "" || coverageType == "" {
		writeError(w, http.StatusBadRequest, "Provide beneficiary_id and coverage_type query parameters", nil)
		return
	}

	remaining, err := h.Service.RemainingCoverage(r.Context(), policyID, beneficiary, coverageType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemainingCoverageDTO{
		PolicyID:      string(policyID),
		BeneficiaryID: string(beneficiary),
		CoverageType:  string(coverageType),
		Remaining:     remaining.String(),
	})
}

// CoverageConsistency returns the drift report for a policy.
func (h *Handler) CoverageConsistency(w http.ResponseWriter, r *http.Request) {
	policyID := policy.PolicyID(chi.URLParam(r, "id"))
	report, err := h.Service.CoverageConsistency(r.Context(), policyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConsistencyDTO{
		PolicyID:         string(policyID),
		IsConsistent:     report.IsConsistent,
		CurrentAmount:    report.CurrentAmount.String(),
		CalculatedAmount: report.CalculatedAmount.String(),
		Difference:       report.Difference.String(),
	})
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns all versions for a (claim_type, claim_option) pair.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ct := claims.ClaimType(r.URL.Query().Get("claim_type"))
	opt := claims.ClaimOption(r.URL.Query().Get("claim_option"))
	if ct == "" || opt == "" {
		writeError(w, http.StatusBadRequest, "Provide claim_type and claim_option query parameters", nil)
		return
	}

	templates, err := h.Service.Templates.ListTemplateVersions(r.Context(), ct, opt)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(h.TemplateFactory, t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTemplate returns a template by ID, active or not.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.Templates.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(h.TemplateFactory, t))
}

// CreateTemplate authors a new template version from JSON. The template
// stays dormant until promoted.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tj factory.TemplateJSON
	if err := json.NewDecoder(r.Body).Decode(&tj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tj.IsActive = false

	t, err := h.TemplateFactory.FromJSON(tj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid template definition", err)
		return
	}
	if err := h.Service.Templates.SaveTemplate(r.Context(), t); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(h.TemplateFactory, t))
}

// CloneTemplate clones a template as the next dormant version.
func (h *Handler) CloneTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.Service.Templates.GetTemplate(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	next := t.Clone(h.Service.Clock())
	if err := h.Service.Templates.SaveTemplate(ctx, next); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(h.TemplateFactory, next))
}

// PromoteTemplate swaps the active template for the pair.
func (h *Handler) PromoteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Templates.PromoteTemplate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	t, err := h.Service.Templates.GetTemplate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(h.TemplateFactory, t))
}

// =============================================================================
// ERROR MAPPING AND RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case claims.IsNotFound(err):
		writeErrorCode(w, http.StatusNotFound, "not_found", err)

	case errors.Is(err, claims.ErrAuthorization):
		writeErrorCode(w, http.StatusForbidden, "not_authorized", err)

	case errors.Is(err, claims.ErrCoverageExceeded):
		resp := ErrorResponse{Error: err.Error(), Code: "coverage_exceeded"}
		var exceeded *policy.CoverageExceededError
		if errors.As(err, &exceeded) {
			resp.Details = map[string]string{
				"coverage_type": string(exceeded.CoverageType),
				"requested":     exceeded.Requested.String(),
				"remaining":     exceeded.Remaining.String(),
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)

	case errors.Is(err, claims.ErrIllegalTransition),
		errors.Is(err, claims.ErrConcurrencyConflict):
		writeErrorCode(w, http.StatusConflict, "conflict", err)

	case errors.Is(err, claims.ErrValidation),
		errors.Is(err, claims.ErrInvalidOption):
		writeErrorCode(w, http.StatusBadRequest, "validation_failed", err)

	default:
		var notCovered *policy.BeneficiaryNotCoveredError
		if errors.As(err, &notCovered) {
			writeErrorCode(w, http.StatusBadRequest, "beneficiary_not_covered", err)
			return
		}
		writeErrorCode(w, http.StatusInternalServerError, "internal", err)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
