/*
catalog.go - Coverage catalog: recognized coverage types per line

PURPOSE:
  Static description of which coverage types exist for each line of
  business. The catalog is the source of truth Normalize uses to keep
  every policy's ledger fully addressable, and the set the consistency
  check sums over.

RECOGNIZED TYPES:
  Life:    hospitalization, channelling, medication, death, disability
  Vehicle: accident, theft, fire, natural_disaster

  A coverage type unknown to the catalog is treated as limit 0 by the
  ledger, so any positive claim against it fails validation.

SEE ALSO:
  - types.go: Policy.Normalize uses RecognizedTypes
  - ledger.go: Limit lookups fall back to 0 for absent types
*/
package policy

// Life coverage types.
const (
	CoverageHospitalization CoverageType = "hospitalization"
	CoverageChannelling     CoverageType = "channelling"
	CoverageMedication      CoverageType = "medication"
	CoverageDeath           CoverageType = "death"
	CoverageDisability      CoverageType = "disability"
)

// Vehicle coverage types.
const (
	CoverageAccident        CoverageType = "accident"
	CoverageTheft           CoverageType = "theft"
	CoverageFire            CoverageType = "fire"
	CoverageNaturalDisaster CoverageType = "natural_disaster"
)

var lifeCoverageTypes = []CoverageType{
	CoverageHospitalization,
	CoverageChannelling,
	CoverageMedication,
	CoverageDeath,
	CoverageDisability,
}

var vehicleCoverageTypes = []CoverageType{
	CoverageAccident,
	CoverageTheft,
	CoverageFire,
	CoverageNaturalDisaster,
}

var coverageDescriptions = map[CoverageType]string{
	CoverageHospitalization: "Inpatient hospitalization expenses",
	CoverageChannelling:     "Specialist channelling fees",
	CoverageMedication:      "Prescribed medication expenses",
	CoverageDeath:           "Death benefit",
	CoverageDisability:      "Permanent or partial disability benefit",
	CoverageAccident:        "Accident repair costs",
	CoverageTheft:           "Vehicle theft compensation",
	CoverageFire:            "Fire damage compensation",
	CoverageNaturalDisaster: "Natural disaster damage compensation",
}

// RecognizedTypes returns the full coverage-type set for a line of business.
// The returned slice is a copy; callers may mutate it freely.
func RecognizedTypes(line Line) []CoverageType {
	var src []CoverageType
	switch line {
	case LineLife:
		src = lifeCoverageTypes
	case LineVehicle:
		src = vehicleCoverageTypes
	default:
		return nil
	}
	out := make([]CoverageType, len(src))
	copy(out, src)
	return out
}

// IsRecognized reports whether the coverage type belongs to the line's set.
func IsRecognized(line Line, ct CoverageType) bool {
	for _, t := range RecognizedTypes(line) {
		if t == ct {
			return true
		}
	}
	return false
}

// DescribeCoverage returns the human-readable description for a type.
func DescribeCoverage(ct CoverageType) string {
	return coverageDescriptions[ct]
}
