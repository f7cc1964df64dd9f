/*
Package policy provides the policy coverage model and balance ledger.

PURPOSE:
  This package owns everything about an insurance policy's coverage:
  which coverage types exist per line of business, the per-type limits,
  the total contractual ceiling, and the per-beneficiary claimed-amount
  balance sheet that prevents approved claims from exceeding limits.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A monetary amount backed by decimal.Decimal (never floats)
  - Line: Line of business (life or vehicle), fixes the coverage-type set
  - CoverageType: A named sub-category of protection with its own limit
  - Policy: Coverage limits + beneficiaries + claimed-amount balance sheet

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Type Safety: Strong typing for IDs prevents mixing policy/beneficiary IDs
  3. Positional ledger: ClaimedAmounts is a parallel array indexed to
     Beneficiaries — order of beneficiaries is significant
  4. Superset shape: normalization keeps every recognized coverage type
     present so lookups never need a "type not found" branch

USAGE:
  p := policy.Policy{Number: "pol-1001", Line: policy.LineLife, ...}
  p.Normalize()
  ledger := policy.NewLedger(&p)
  remaining := ledger.RemainingCoverage("user-1", policy.CoverageHospitalization)

SEE ALSO:
  - catalog.go: Recognized coverage types per line
  - ledger.go: Balance queries and the claimed-amount mutation
  - errors.go: Coverage validation errors
*/
package policy

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary amount (always currency, never time)
// =============================================================================

type Money = decimal.Decimal

func NewMoney(value float64) Money   { return decimal.NewFromFloat(value) }
func NewMoneyFromInt(v int64) Money  { return decimal.NewFromInt(v) }
func ZeroMoney() Money               { return decimal.Zero }

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PolicyID string
type BeneficiaryID string

// =============================================================================
// LINE OF BUSINESS
// =============================================================================

type Line string

const (
	LineLife    Line = "life"
	LineVehicle Line = "vehicle"
)

func (l Line) Valid() bool { return l == LineLife || l == LineVehicle }

// =============================================================================
// COVERAGE
// =============================================================================

// CoverageType identifies a sub-category of protection within a policy.
// The recognized set per line is defined in catalog.go.
type CoverageType string

// CoverageDetail is one itemized coverage entry with its own limit.
type CoverageDetail struct {
	Type        CoverageType
	Description string
	Limit       Money
}

// Coverage bundles the total contractual ceiling with its itemization.
//
// INVARIANT: CoverageAmount should equal the sum of CoverageDetails limits.
// Drift is detected (never auto-repaired) by ValidateCoverageConsistency.
type Coverage struct {
	CoverageAmount  Money
	CoverageDetails []CoverageDetail
}

// ClaimedAmount is one cell of the balance sheet: cumulative amount
// committed against a single coverage type for a single beneficiary.
type ClaimedAmount struct {
	CoverageType  CoverageType
	ClaimedAmount Money
}

// =============================================================================
// POLICY
// =============================================================================

// Policy is the contractual unit the ledger operates on.
//
// ClaimedAmounts is positionally parallel to Beneficiaries: the entry list
// at index i belongs to Beneficiaries[i]. Normalize keeps both sides in sync.
type Policy struct {
	ID           PolicyID
	Number       string // unique, stored upper-cased
	Line         Line
	HolderID     string
	Coverage     Coverage
	Beneficiaries  []BeneficiaryID
	ClaimedAmounts [][]ClaimedAmount

	// Optimistic concurrency: stores reject a Save whose Version does not
	// match the persisted row, surfacing a conflict instead of overwriting.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeNumber upper-cases a policy number for storage and lookup.
func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// BeneficiaryIndex resolves a beneficiary's positional index, or -1.
func (p *Policy) BeneficiaryIndex(id BeneficiaryID) int {
	for i, b := range p.Beneficiaries {
		if b == id {
			return i
		}
	}
	return -1
}

// HasBeneficiary reports whether the beneficiary is covered by this policy.
func (p *Policy) HasBeneficiary(id BeneficiaryID) bool {
	return p.BeneficiaryIndex(id) >= 0
}

// AddBeneficiary appends a beneficiary and grows the balance sheet to match.
// Adding an existing beneficiary is a no-op.
func (p *Policy) AddBeneficiary(id BeneficiaryID) {
	if p.HasBeneficiary(id) {
		return
	}
	p.Beneficiaries = append(p.Beneficiaries, id)
	p.Normalize()
}

// RemoveBeneficiary removes a beneficiary and its claimed-amount row,
// preserving the positional pairing of the remaining entries.
func (p *Policy) RemoveBeneficiary(id BeneficiaryID) {
	idx := p.BeneficiaryIndex(id)
	if idx < 0 {
		return
	}
	p.Beneficiaries = append(p.Beneficiaries[:idx], p.Beneficiaries[idx+1:]...)
	if idx < len(p.ClaimedAmounts) {
		p.ClaimedAmounts = append(p.ClaimedAmounts[:idx], p.ClaimedAmounts[idx+1:]...)
	}
}

// Normalize brings the policy to its canonical superset shape:
//   - Number is upper-cased
//   - CoverageDetails contains every recognized coverage type for the line
//     (missing types inserted with a zero limit)
//   - ClaimedAmounts has one row per beneficiary, each row containing one
//     entry per coverage type in CoverageDetails (missing entries zeroed)
//
// Stores call this on every save and load, so partially authored policies
// are always fully addressable by the ledger. Normalize never removes or
// alters amounts already present.
func (p *Policy) Normalize() {
	p.Number = NormalizeNumber(p.Number)

	// Ensure every recognized type appears in CoverageDetails.
	for _, ct := range RecognizedTypes(p.Line) {
		if p.coverageDetailIndex(ct) < 0 {
			p.Coverage.CoverageDetails = append(p.Coverage.CoverageDetails, CoverageDetail{
				Type:        ct,
				Description: DescribeCoverage(ct),
				Limit:       decimal.Zero,
			})
		}
	}

	// Grow the balance sheet to one row per beneficiary.
	for len(p.ClaimedAmounts) < len(p.Beneficiaries) {
		p.ClaimedAmounts = append(p.ClaimedAmounts, nil)
	}
	// A row longer than the beneficiary list is orphaned; trim it.
	if len(p.ClaimedAmounts) > len(p.Beneficiaries) {
		p.ClaimedAmounts = p.ClaimedAmounts[:len(p.Beneficiaries)]
	}

	// Each row mirrors the coverage-detail type set.
	for i := range p.ClaimedAmounts {
		for _, cd := range p.Coverage.CoverageDetails {
			if claimedIndex(p.ClaimedAmounts[i], cd.Type) < 0 {
				p.ClaimedAmounts[i] = append(p.ClaimedAmounts[i], ClaimedAmount{
					CoverageType:  cd.Type,
					ClaimedAmount: decimal.Zero,
				})
			}
		}
	}
}

func (p *Policy) coverageDetailIndex(ct CoverageType) int {
	for i, cd := range p.Coverage.CoverageDetails {
		if cd.Type == ct {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy, so stores can hand out policies without
// aliasing their internal state.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Coverage.CoverageDetails = append([]CoverageDetail(nil), p.Coverage.CoverageDetails...)
	c.Beneficiaries = append([]BeneficiaryID(nil), p.Beneficiaries...)
	c.ClaimedAmounts = make([][]ClaimedAmount, len(p.ClaimedAmounts))
	for i, row := range p.ClaimedAmounts {
		c.ClaimedAmounts[i] = append([]ClaimedAmount(nil), row...)
	}
	return &c
}

func claimedIndex(row []ClaimedAmount, ct CoverageType) int {
	for i, ca := range row {
		if ca.CoverageType == ct {
			return i
		}
	}
	return -1
}
