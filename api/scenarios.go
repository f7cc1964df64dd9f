/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the stores with realistic
	data for testing and demos. Each scenario creates policies and drives
	claims to different lifecycle stages through the real service calls,
	so the loaded data is exactly what the engine would have produced.

AVAILABLE SCENARIOS:

	fresh-start:       Policies only, no claims yet
	life-portfolio:    Life policy with claims at several stages
	vehicle-fleet:     Vehicle policy with claims in the HR/insurer pipeline
	coverage-pressure: Policy close to its limits, next approval will clash

HOW SCENARIOS WORK:
 1. Create policies via the factory (skipped when the number already exists)
 2. Create claims through the service as the demo employees
 3. Answer questionnaires, set amounts, submit
 4. Advance some claims through HR and insurer stages

NOTE:

	Scenarios are additive. Loading a scenario twice creates a second round
	of claims against the same policies, which is itself a useful demo of
	coverage exhaustion. Start a fresh database for a clean slate.

SEE ALSO:
  - handlers.go: Error mapping and response helpers
  - factory/policy.go: Policy JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coverline/claims-engine/claims"
	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-start",
		Name:        "Fresh Start",
		Description: "Life and vehicle policies with no claims yet",
		Category:    "basic",
	},
	{
		ID:          "life-portfolio",
		Name:        "Life Portfolio",
		Description: "Life policy with an approved, an in-flight and a draft claim",
		Category:    "life",
	},
	{
		ID:          "vehicle-fleet",
		Name:        "Vehicle Fleet",
		Description: "Vehicle policy with claims in the HR and insurer queues",
		Category:    "vehicle",
	},
	{
		ID:          "coverage-pressure",
		Name:        "Coverage Pressure",
		Description: "Policy near its limits, the next approval will exceed coverage",
		Category:    "life",
	},
}

// Demo actors used by every scenario.
var (
	scnEmployee = claims.Actor{ID: "emp-olivia", Role: claims.RoleEmployee}
	scnHR       = claims.Actor{ID: "hr-dana", Role: claims.RoleHR}
	scnInsurer  = claims.Actor{ID: "ins-axa", Role: claims.RoleInsurer}
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "fresh-start":
		err = h.loadFreshStart(ctx)
	case "life-portfolio":
		err = h.loadLifePortfolio(ctx)
	case "vehicle-fleet":
		err = h.loadVehicleFleet(ctx)
	case "coverage-pressure":
		err = h.loadCoveragePressure(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshStart(ctx context.Context) error {
	if _, err := h.ensurePolicy(ctx, demoLifePolicy); err != nil {
		return err
	}
	_, err := h.ensurePolicy(ctx, demoVehiclePolicy)
	return err
}

// loadLifePortfolio drives three life claims to different stages:
// one approved, one sitting in the HR queue, one still answering.
func (h *Handler) loadLifePortfolio(ctx context.Context) error {
	p, err := h.ensurePolicy(ctx, demoLifePolicy)
	if err != nil {
		return err
	}

	// Approved hospitalization claim.
	c, err := h.startClaim(ctx, p.ID, claims.TypeLife, claims.OptionHospitalization, map[string]any{
		"q-admission-date": "2026-02-10",
		"q-hospital":       "St. Mary General",
		"q-ward-type":      "general",
		"q-days":           3,
		"q-description":    "Admitted for three days after an acute appendicitis.",
	}, "2400.00", "hospital-invoice.pdf")
	if err != nil {
		return err
	}
	if err := h.advanceToInsurer(ctx, c.ID, "Invoice verified against the hospital statement"); err != nil {
		return err
	}
	if _, err := h.Service.Decide(ctx, scnInsurer, c.ID, claims.DecisionApproved, policy.ZeroMoney(), ""); err != nil {
		return err
	}

	// Medication claim waiting in the HR queue.
	c, err = h.startClaim(ctx, p.ID, claims.TypeLife, claims.OptionMedication, map[string]any{
		"q-incident-date": "2026-03-01",
		"q-pharmacy":      "Corner Pharmacy",
		"q-chronic":       "yes",
	}, "180.50", "prescription-receipt.pdf")
	if err != nil {
		return err
	}
	if _, err := h.Service.SubmitClaim(ctx, scnEmployee, c.ID); err != nil {
		return err
	}

	// Channelling claim still in the questionnaire stage.
	c, err = h.Service.CreateClaim(ctx, scnEmployee, scnEmployee.ID, p.ID, claims.TypeLife)
	if err != nil {
		return err
	}
	_, err = h.Service.LoadQuestionnaire(ctx, scnEmployee, c.ID, claims.OptionChannelling)
	return err
}

// loadVehicleFleet leaves one claim in the insurer queue with an HR
// breakdown attached and one freshly submitted.
func (h *Handler) loadVehicleFleet(ctx context.Context) error {
	p, err := h.ensurePolicy(ctx, demoVehiclePolicy)
	if err != nil {
		return err
	}

	// Accident claim forwarded to the insurer with a coverage breakdown.
	c, err := h.startClaim(ctx, p.ID, claims.TypeVehicle, claims.OptionAccident, map[string]any{
		"q-incident-date": "2026-02-20",
		"q-vehicle-reg":   "KX-4821",
		"q-police-report": "yes",
		"q-third-party":   "no",
		"q-damage-areas":  []string{"front", "left side"},
		"q-description":   "Slid on black ice and hit a guard rail on the ring road.",
	}, "5200.00", "garage-estimate.pdf")
	if err != nil {
		return err
	}
	if _, err := h.Service.TransitionByHR(ctx, scnHR, c.ID, claims.StatusUnderHRReview, "", nil); err != nil {
		return err
	}
	if _, err := h.Service.TransitionByHR(ctx, scnHR, c.ID, claims.StatusForwardedToInsurer,
		"Estimate split across body work and windscreen",
		[]claims.BreakdownItem{
			{CoverageType: policy.CoverageAccident, RequestedAmount: policy.MustParseMoney("4800.00"), Notes: "body work"},
			{CoverageType: policy.CoverageAccident, RequestedAmount: policy.MustParseMoney("400.00"), Notes: "windscreen"},
		}); err != nil {
		return err
	}

	// Theft claim freshly submitted.
	_, err = h.startClaim(ctx, p.ID, claims.TypeVehicle, claims.OptionTheft, map[string]any{
		"q-incident-date": "2026-03-05",
		"q-vehicle-reg":   "KX-9917",
		"q-police-report": "yes",
		"q-recovered":     "no",
		"q-description":   "Vehicle missing from the company lot overnight, reported at once.",
	}, "14000.00", "police-report.pdf")
	return err
}

// loadCoveragePressure approves claims until the hospitalization limit is
// nearly exhausted, then leaves one oversized claim in the insurer queue.
func (h *Handler) loadCoveragePressure(ctx context.Context) error {
	p, err := h.ensurePolicy(ctx, demoPressurePolicy)
	if err != nil {
		return err
	}

	answers := map[string]any{
		"q-admission-date": "2026-01-15",
		"q-hospital":       "Riverside Clinic",
		"q-ward-type":      "private",
		"q-days":           5,
		"q-description":    "Extended observation after a cardiac episode.",
	}

	// Approved claim eats most of the 10000 hospitalization limit.
	c, err := h.startClaim(ctx, p.ID, claims.TypeLife, claims.OptionHospitalization,
		answers, "8500.00", "clinic-invoice.pdf")
	if err != nil {
		return err
	}
	if err := h.advanceToInsurer(ctx, c.ID, ""); err != nil {
		return err
	}
	if _, err := h.Service.Decide(ctx, scnInsurer, c.ID, claims.DecisionApproved, policy.ZeroMoney(), ""); err != nil {
		return err
	}

	// This one asks for more than the 1500 that is left.
	c, err = h.startClaim(ctx, p.ID, claims.TypeLife, claims.OptionHospitalization,
		answers, "3000.00", "clinic-invoice-2.pdf")
	if err != nil {
		return err
	}
	return h.advanceToInsurer(ctx, c.ID, "Second admission this quarter")
}

// =============================================================================
// SCENARIO HELPERS
// =============================================================================

// demo policy definitions, in the same JSON shape the policy API accepts.
var (
	demoLifePolicy = `{
		"id": "pol-demo-life",
		"number": "LIFE-9001",
		"line": "life",
		"holder_id": "acme-corp",
		"coverage_amount": "100000",
		"coverage_details": [
			{"type": "hospitalization", "limit": "40000"},
			{"type": "channelling", "limit": "10000"},
			{"type": "medication", "limit": "10000"},
			{"type": "death", "limit": "30000"},
			{"type": "disability", "limit": "10000"}
		],
		"beneficiaries": ["emp-olivia", "emp-marcus", "emp-priya"]
	}`

	demoVehiclePolicy = `{
		"id": "pol-demo-vehicle",
		"number": "VEH-9002",
		"line": "vehicle",
		"holder_id": "acme-corp",
		"coverage_amount": "80000",
		"coverage_details": [
			{"type": "accident", "limit": "30000"},
			{"type": "theft", "limit": "30000"},
			{"type": "fire", "limit": "10000"},
			{"type": "natural_disaster", "limit": "10000"}
		],
		"beneficiaries": ["emp-olivia", "emp-marcus"]
	}`

	demoPressurePolicy = `{
		"id": "pol-demo-pressure",
		"number": "LIFE-9003",
		"line": "life",
		"holder_id": "acme-corp",
		"coverage_amount": "10000",
		"coverage_details": [
			{"type": "hospitalization", "limit": "10000"}
		],
		"beneficiaries": ["emp-olivia"]
	}`
)

// ensurePolicy creates a demo policy unless its number already exists.
func (h *Handler) ensurePolicy(ctx context.Context, jsonStr string) (*policy.Policy, error) {
	p, err := h.PolicyFactory.ParsePolicy(jsonStr)
	if err != nil {
		return nil, err
	}
	if existing, err := h.Service.Policies.GetPolicyByNumber(ctx, p.Number); err == nil {
		return existing, nil
	}
	if err := h.Service.Policies.CreatePolicy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// startClaim creates a claim, completes its questionnaire and sets the
// amount, leaving it ready for submission. Submits when amount is set.
func (h *Handler) startClaim(ctx context.Context, policyID policy.PolicyID,
	ct claims.ClaimType, opt claims.ClaimOption, answers map[string]any,
	amount string, documentName string) (*claims.Claim, error) {

	c, err := h.Service.CreateClaim(ctx, scnEmployee, scnEmployee.ID, policyID, ct)
	if err != nil {
		return nil, err
	}
	if _, err := h.Service.LoadQuestionnaire(ctx, scnEmployee, c.ID, opt); err != nil {
		return nil, err
	}
	for questionID, answer := range answers {
		if _, _, err := h.Service.AnswerQuestion(ctx, scnEmployee, c.ID, questionID, answer); err != nil {
			return nil, fmt.Errorf("answering %s: %w", questionID, err)
		}
	}
	if _, _, err := h.Service.SetClaimAmount(ctx, scnEmployee, c.ID, policy.MustParseMoney(amount),
		[]claims.DocumentRef{{Name: documentName, Reference: "demo://" + documentName}}); err != nil {
		return nil, err
	}
	return h.Service.SubmitClaim(ctx, scnEmployee, c.ID)
}

// advanceToInsurer walks a submitted claim through HR review and the
// insurer pickup, leaving it under insurer review.
func (h *Handler) advanceToInsurer(ctx context.Context, id claims.ClaimID, hrNotes string) error {
	if _, err := h.Service.TransitionByHR(ctx, scnHR, id, claims.StatusUnderHRReview, "", nil); err != nil {
		return err
	}
	if _, err := h.Service.TransitionByHR(ctx, scnHR, id, claims.StatusForwardedToInsurer, hrNotes, nil); err != nil {
		return err
	}
	_, err := h.Service.StartInsurerReview(ctx, scnInsurer, id)
	return err
}
