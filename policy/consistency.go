/*
consistency.go - Coverage-consistency drift detection

PURPOSE:
  Verifies that the policy's declared total coverage amount equals the
  sum of its itemized coverage-detail limits. Manual edits (an admin
  raising one limit without touching the total) make the two drift;
  this check reports the exact delta. It never auto-repairs.

IDEMPOTENCE:
  Running the check twice without an intervening mutation returns
  identical reports — it is a pure function of the policy document.

SEE ALSO:
  - types.go: Coverage shape
*/
package policy

import "github.com/shopspring/decimal"

// ConsistencyReport describes the relationship between the declared total
// coverage amount and the sum of itemized limits.
type ConsistencyReport struct {
	IsConsistent     bool
	CurrentAmount    Money // declared Coverage.CoverageAmount
	CalculatedAmount Money // sum of CoverageDetails limits
	Difference       Money // current - calculated
}

// ValidateCoverageConsistency computes the drift report for a policy.
func ValidateCoverageConsistency(p *Policy) ConsistencyReport {
	calculated := decimal.Zero
	for _, cd := range p.Coverage.CoverageDetails {
		calculated = calculated.Add(cd.Limit)
	}

	diff := p.Coverage.CoverageAmount.Sub(calculated)
	return ConsistencyReport{
		IsConsistent:     diff.IsZero(),
		CurrentAmount:    p.Coverage.CoverageAmount,
		CalculatedAmount: calculated,
		Difference:       diff,
	}
}
