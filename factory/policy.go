/*
policy.go - JSON to Go policy conversion

PURPOSE:
  Converts JSON policy definitions into policy.Policy documents. This
  enables policy configuration without code changes - administrators can
  define coverage limits in JSON, and the factory creates the proper Go
  structs, normalized to the superset coverage shape.

JSON SCHEMA:
  {
    "id": "pol-life-1001",
    "number": "LIFE-1001",
    "line": "life",
    "holder_id": "acme-corp",
    "coverage_amount": "50000",
    "coverage_details": [
      {"type": "hospitalization", "limit": "20000"},
      {"type": "death", "limit": "30000"}
    ],
    "beneficiaries": ["user-1", "user-2"]
  }

  Monetary values are JSON strings, parsed through decimal to avoid
  floating-point drift in contract limits.

USAGE:
  f := factory.NewPolicyFactory()
  p, err := f.ParsePolicy(jsonString)

SEE ALSO:
  - policy/types.go: Policy type definition and normalization
  - template.go: Questionnaire template parsing and built-in defaults
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coverline/claims-engine/policy"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy.
type PolicyJSON struct {
	ID              string               `json:"id"`
	Number          string               `json:"number"`
	Line            string               `json:"line"`
	HolderID        string               `json:"holder_id,omitempty"`
	CoverageAmount  string               `json:"coverage_amount"`
	CoverageDetails []CoverageDetailJSON `json:"coverage_details"`
	Beneficiaries   []string             `json:"beneficiaries,omitempty"`
}

// CoverageDetailJSON is one itemized coverage entry.
type CoverageDetailJSON struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Limit       string `json:"limit"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a normalized Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*policy.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to a normalized policy.Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*policy.Policy, error) {
	line := policy.Line(pj.Line)
	if !line.Valid() {
		return nil, fmt.Errorf("unknown line of business %q", pj.Line)
	}
	if pj.Number == "" {
		return nil, fmt.Errorf("policy number is required")
	}

	total, err := parseMoney(pj.CoverageAmount, "coverage_amount")
	if err != nil {
		return nil, err
	}

	p := &policy.Policy{
		ID:       policy.PolicyID(pj.ID),
		Number:   pj.Number,
		Line:     line,
		HolderID: pj.HolderID,
		Coverage: policy.Coverage{CoverageAmount: total},
	}

	for _, dj := range pj.CoverageDetails {
		ct := policy.CoverageType(dj.Type)
		if !policy.IsRecognized(line, ct) {
			return nil, fmt.Errorf("coverage type %q is not recognized for %s policies", dj.Type, line)
		}
		limit, err := parseMoney(dj.Limit, fmt.Sprintf("coverage_details[%s].limit", dj.Type))
		if err != nil {
			return nil, err
		}
		p.Coverage.CoverageDetails = append(p.Coverage.CoverageDetails, policy.CoverageDetail{
			Type:        ct,
			Description: dj.Description,
			Limit:       limit,
		})
	}

	for _, b := range pj.Beneficiaries {
		p.AddBeneficiary(policy.BeneficiaryID(b))
	}

	p.Normalize()
	return p, nil
}

// ToJSON converts a Policy to PolicyJSON. Zero-limit auto-added coverage
// entries are kept, so the output round-trips the superset shape.
func (f *PolicyFactory) ToJSON(p *policy.Policy) PolicyJSON {
	pj := PolicyJSON{
		ID:             string(p.ID),
		Number:         p.Number,
		Line:           string(p.Line),
		HolderID:       p.HolderID,
		CoverageAmount: p.Coverage.CoverageAmount.String(),
	}
	for _, d := range p.Coverage.CoverageDetails {
		pj.CoverageDetails = append(pj.CoverageDetails, CoverageDetailJSON{
			Type:        string(d.Type),
			Description: d.Description,
			Limit:       d.Limit.String(),
		})
	}
	for _, b := range p.Beneficiaries {
		pj.Beneficiaries = append(pj.Beneficiaries, string(b))
	}
	return pj
}

func parseMoney(s, field string) (policy.Money, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount for %s: %w", field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount for %s must not be negative", field)
	}
	return d, nil
}
