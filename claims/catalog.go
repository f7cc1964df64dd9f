/*
catalog.go - Valid claim-type/option combinations and coverage mapping

PURPOSE:
  The valid-combination table gates loadQuestionnaire: an option outside
  its claim type's set fails with ErrInvalidOption before any template
  lookup. The option-to-coverage mapping supplies the default coverage
  type the decision engine charges when HR attached no breakdown.

SEE ALSO:
  - workflow.go: loadQuestionnaire gating
  - decision.go: Default coverage type on breakdown-less approvals
*/
package claims

import "github.com/coverline/claims-engine/policy"

// ValidOptions is the valid-combination table: which claim options exist
// for each claim type.
var ValidOptions = map[ClaimType][]ClaimOption{
	TypeLife: {
		OptionHospitalization,
		OptionChannelling,
		OptionMedication,
		OptionDeath,
	},
	TypeVehicle: {
		OptionAccident,
		OptionTheft,
		OptionFire,
		OptionNaturalDisaster,
	},
}

// IsValidOption reports whether the option belongs to the claim type's set.
func IsValidOption(ct ClaimType, opt ClaimOption) bool {
	for _, o := range ValidOptions[ct] {
		if o == opt {
			return true
		}
	}
	return false
}

// PolicyLine maps a claim type to the policy line of business it draws on.
func PolicyLine(ct ClaimType) policy.Line {
	switch ct {
	case TypeVehicle:
		return policy.LineVehicle
	default:
		return policy.LineLife
	}
}

var optionCoverage = map[ClaimOption]policy.CoverageType{
	OptionHospitalization: policy.CoverageHospitalization,
	OptionChannelling:     policy.CoverageChannelling,
	OptionMedication:      policy.CoverageMedication,
	OptionDeath:           policy.CoverageDeath,
	OptionAccident:        policy.CoverageAccident,
	OptionTheft:           policy.CoverageTheft,
	OptionFire:            policy.CoverageFire,
	OptionNaturalDisaster: policy.CoverageNaturalDisaster,
}

// DefaultCoverageType returns the coverage type a claim option charges by
// default, used when no coverage breakdown was attached at forwarding time.
func DefaultCoverageType(opt ClaimOption) policy.CoverageType {
	return optionCoverage[opt]
}
