/*
handlers_test.go - HTTP-level tests for the claims API

Tests for:
- The full claim lifecycle driven through the router
- Actor header handling and error status mapping
- Policy, template and coverage endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/factory"
	"github.com/coverline/claims-engine/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type testServer struct {
	router *chi.Mux
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, tpl := range factory.DefaultTemplates(time.Now()) {
		require.NoError(t, store.SaveTemplate(ctx, tpl))
	}

	service := claims.NewService(store, store, store)
	handler := NewHandler(service)
	return &testServer{router: NewRouter(handler), store: store}
}

// do issues a request with the actor headers set and returns the recorder.
func (ts *testServer) do(t *testing.T, method, path string, actor *claims.Actor, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		req.Header.Set("X-Actor-Id", actor.ID)
		req.Header.Set("X-Actor-Role", string(actor.Role))
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

var (
	apiEmployee = claims.Actor{ID: "user-1", Role: claims.RoleEmployee}
	apiHR       = claims.Actor{ID: "hr-1", Role: claims.RoleHR}
	apiInsurer  = claims.Actor{ID: "ins-1", Role: claims.RoleInsurer}
)

// assertMoney compares two money strings numerically, so "2400" and
// "2400.00" are the same amount.
func assertMoney(t *testing.T, want, got string) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	require.NoError(t, err)
	g, err := decimal.NewFromString(got)
	require.NoError(t, err)
	assert.True(t, w.Equal(g), "want %s, got %s", want, got)
}

// seedLifePolicy creates a life policy over HTTP and returns its ID.
func (ts *testServer) seedLifePolicy(t *testing.T, hospitalizationLimit string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/policies", nil, map[string]any{
		"id":              "pol-api-1",
		"number":          "LIFE-API-1",
		"line":            "life",
		"holder_id":       "acme",
		"coverage_amount": hospitalizationLimit,
		"coverage_details": []map[string]any{
			{"type": "hospitalization", "limit": hospitalizationLimit},
		},
		"beneficiaries": []string{"user-1", "user-2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[PolicyDTO](t, rec).ID
}

// submitHospitalizationClaim drives a claim to submitted over HTTP.
func (ts *testServer) submitHospitalizationClaim(t *testing.T, policyID, amount string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/claims", &apiEmployee, CreateClaimRequest{
		EmployeeID: apiEmployee.ID, PolicyID: policyID, ClaimType: "life",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[ClaimDTO](t, rec).ID

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/questionnaire", &apiEmployee,
		LoadQuestionnaireRequest{ClaimOption: "hospitalization"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	answers := map[string]any{
		"q-admission-date": "2026-02-10",
		"q-hospital":       "St. Mary General",
		"q-ward-type":      "general",
		"q-days":           3,
		"q-description":    "Admitted for observation after a fall.",
	}
	for questionID, answer := range answers {
		rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/answers", &apiEmployee,
			AnswerRequest{QuestionID: questionID, Answer: answer})
		require.Equal(t, http.StatusOK, rec.Code, "answer %s: %s", questionID, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/amount", &apiEmployee, SetAmountRequest{
		RequestedAmount: amount,
		Documents:       []DocumentDTO{{Name: "bill.pdf", Reference: "doc://bill"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/submit", &apiEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "submitted", decode[ClaimDTO](t, rec).Status)
	return id
}

// forwardToInsurer walks a submitted claim into the insurer review stage.
func (ts *testServer) forwardToInsurer(t *testing.T, id string) {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/claims/"+id+"/hr-transition", &apiHR,
		HRTransitionRequest{Target: "under_hr_review"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/hr-transition", &apiHR,
		HRTransitionRequest{Target: "forwarded_to_insurer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/review", &apiInsurer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestClaimLifecycle_EndToEnd(t *testing.T) {
	// GIVEN: A life policy and a claim driven through the whole pipeline
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")
	id := ts.submitHospitalizationClaim(t, policyID, "2400.00")
	ts.forwardToInsurer(t, id)

	// WHEN: The insurer approves
	rec := ts.do(t, http.MethodPost, "/api/claims/"+id+"/decision", &apiInsurer,
		DecisionRequest{Decision: "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The claim is approved with the requested amount
	claim := decode[ClaimDTO](t, rec)
	assert.Equal(t, "approved", claim.Status)
	assertMoney(t, "2400", claim.ApprovedAmount)
	assert.NotNil(t, claim.DecidedAt)

	// AND: The balance sheet reflects the committed amount
	rec = ts.do(t, http.MethodGet,
		fmt.Sprintf("/api/policies/%s/remaining?beneficiary_id=user-1&coverage_type=hospitalization", policyID),
		nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assertMoney(t, "7600", decode[RemainingCoverageDTO](t, rec).Remaining)
}

func TestDecision_ExceedingCoverageIs422(t *testing.T) {
	// GIVEN: A claim asking for more than the policy limit
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "1000")
	id := ts.submitHospitalizationClaim(t, policyID, "3000")
	ts.forwardToInsurer(t, id)

	// WHEN: The insurer tries to approve it
	rec := ts.do(t, http.MethodPost, "/api/claims/"+id+"/decision", &apiInsurer,
		DecisionRequest{Decision: "approved"})

	// THEN: 422 with the remaining balance in the details
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "coverage_exceeded", resp.Code)
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assertMoney(t, "1000", details["remaining"].(string))
	assertMoney(t, "3000", details["requested"].(string))

	// AND: The claim is still awaiting a decision
	rec = ts.do(t, http.MethodGet, "/api/claims/"+id, nil, nil)
	assert.Equal(t, "under_insurer_review", decode[ClaimDTO](t, rec).Status)
}

func TestDecision_RejectionKeepsLedgerUntouched(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")
	id := ts.submitHospitalizationClaim(t, policyID, "2400")
	ts.forwardToInsurer(t, id)

	rec := ts.do(t, http.MethodPost, "/api/claims/"+id+"/decision", &apiInsurer,
		DecisionRequest{Decision: "rejected", RejectionReason: "No supporting invoice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claim := decode[ClaimDTO](t, rec)
	assert.Equal(t, "rejected", claim.Status)
	assert.Equal(t, "No supporting invoice", claim.RejectionReason)

	rec = ts.do(t, http.MethodGet,
		fmt.Sprintf("/api/policies/%s/remaining?beneficiary_id=user-1&coverage_type=hospitalization", policyID),
		nil, nil)
	assertMoney(t, "10000", decode[RemainingCoverageDTO](t, rec).Remaining)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestCreateClaim_MissingActorHeaders(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/claims", nil, CreateClaimRequest{
		EmployeeID: "user-1", PolicyID: "pol-1", ClaimType: "life",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetClaim_UnknownIs404(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/claims/CLM-000000-FFFFFF", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
}

func TestSubmit_DraftIs409(t *testing.T) {
	// A draft has no questionnaire yet; submitting it is an illegal
	// transition, not a validation problem.
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")

	rec := ts.do(t, http.MethodPost, "/api/claims", &apiEmployee, CreateClaimRequest{
		EmployeeID: apiEmployee.ID, PolicyID: policyID, ClaimType: "life",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[ClaimDTO](t, rec).ID

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/submit", &apiEmployee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode[ErrorResponse](t, rec).Code)
}

func TestHRTransition_AsEmployeeIs403(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")
	id := ts.submitHospitalizationClaim(t, policyID, "500")

	rec := ts.do(t, http.MethodPost, "/api/claims/"+id+"/hr-transition", &apiEmployee,
		HRTransitionRequest{Target: "under_hr_review"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_authorized", decode[ErrorResponse](t, rec).Code)
}

func TestLoadQuestionnaire_InvalidOptionIs400(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")

	rec := ts.do(t, http.MethodPost, "/api/claims", &apiEmployee, CreateClaimRequest{
		EmployeeID: apiEmployee.ID, PolicyID: policyID, ClaimType: "life",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[ClaimDTO](t, rec).ID

	// theft belongs to vehicle claims
	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/questionnaire", &apiEmployee,
		LoadQuestionnaireRequest{ClaimOption: "theft"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListClaims_ByEmployeeAndStatus(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "50000")
	ts.submitHospitalizationClaim(t, policyID, "100")
	ts.submitHospitalizationClaim(t, policyID, "200")

	rec := ts.do(t, http.MethodGet, "/api/claims?employee_id=user-1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ClaimDTO](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/api/claims?status=submitted", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ClaimDTO](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/api/claims?status=approved", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]ClaimDTO](t, rec))

	rec = ts.do(t, http.MethodGet, "/api/claims", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a filter is required")
}

// =============================================================================
// POLICY ENDPOINTS
// =============================================================================

func TestPolicyEndpoints_CreateGetConsistencyDelete(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")

	rec := ts.do(t, http.MethodGet, "/api/policies/"+policyID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[PolicyDTO](t, rec)
	assert.Equal(t, "LIFE-API-1", p.Number)
	assert.Len(t, p.CoverageDetails, 5, "normalized to the full life coverage set")

	// The single explicit limit equals the total, so no drift.
	rec = ts.do(t, http.MethodGet, "/api/policies/"+policyID+"/consistency", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ConsistencyDTO](t, rec)
	assert.True(t, report.IsConsistent)
	assertMoney(t, "0", report.Difference)

	rec = ts.do(t, http.MethodDelete, "/api/policies/"+policyID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/policies/"+policyID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBeneficiaryEndpoints_AddAndRemove(t *testing.T) {
	ts := newTestServer(t)
	policyID := ts.seedLifePolicy(t, "10000")

	rec := ts.do(t, http.MethodPost, "/api/policies/"+policyID+"/beneficiaries", nil,
		BeneficiaryRequest{BeneficiaryID: "user-3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[PolicyDTO](t, rec)
	assert.Contains(t, p.Beneficiaries, "user-3")

	rec = ts.do(t, http.MethodDelete, "/api/policies/"+policyID+"/beneficiaries/user-3", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = decode[PolicyDTO](t, rec)
	assert.NotContains(t, p.Beneficiaries, "user-3")
	assert.Contains(t, p.Beneficiaries, "user-1", "remaining beneficiaries keep their rows")
}

func TestCreatePolicy_DuplicateNumberIs409(t *testing.T) {
	ts := newTestServer(t)
	ts.seedLifePolicy(t, "10000")

	rec := ts.do(t, http.MethodPost, "/api/policies", nil, map[string]any{
		"id":              "pol-api-2",
		"number":          "life-api-1", // same number, different case
		"line":            "life",
		"coverage_amount": "500",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

// =============================================================================
// TEMPLATE ENDPOINTS
// =============================================================================

func TestTemplateEndpoints_CloneAndPromote(t *testing.T) {
	// GIVEN: The seeded default hospitalization template
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/templates?claim_type=life&claim_option=hospitalization", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	versions := decode[[]TemplateDTO](t, rec)
	require.Len(t, versions, 1)
	assert.True(t, versions[0].IsActive)

	// WHEN: Cloning it and promoting the clone
	rec = ts.do(t, http.MethodPost, "/api/templates/"+versions[0].ID+"/clone", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	clone := decode[TemplateDTO](t, rec)
	assert.Equal(t, 2, clone.Version)
	assert.False(t, clone.IsActive, "clones stay dormant until promoted")

	rec = ts.do(t, http.MethodPost, "/api/templates/"+clone.ID+"/promote", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Exactly the clone is active
	rec = ts.do(t, http.MethodGet, "/api/templates?claim_type=life&claim_option=hospitalization", nil, nil)
	versions = decode[[]TemplateDTO](t, rec)
	require.Len(t, versions, 2)
	for _, v := range versions {
		assert.Equal(t, v.ID == clone.ID, v.IsActive, "template %s", v.ID)
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadLifePortfolio(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/scenarios", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]ScenarioDTO](t, rec))

	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", nil,
		LoadScenarioRequest{ScenarioID: "life-portfolio"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The scenario leaves one approved claim behind.
	rec = ts.do(t, http.MethodGet, "/api/claims?status=approved", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ClaimDTO](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/scenarios/current", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "life-portfolio", decode[ScenarioDTO](t, rec).ID)
}

func TestScenarios_EveryRegisteredScenarioLoads(t *testing.T) {
	// Every scenario in the catalog must load cleanly on a fresh database.
	// Coverage types in the demo policy JSON must match the policy catalog
	// (snake_case), not the claim-option spelling.

	for _, scenario := range scenarios {
		t.Run(scenario.ID, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(t, http.MethodPost, "/api/scenarios/load", nil,
				LoadScenarioRequest{ScenarioID: scenario.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = ts.do(t, http.MethodGet, "/api/scenarios/current", nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, scenario.ID, decode[ScenarioDTO](t, rec).ID)
		})
	}
}

func TestScenarios_UnknownIs400(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", nil,
		LoadScenarioRequest{ScenarioID: "does-not-exist"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
