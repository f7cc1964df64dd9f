/*
Package factory provides JSON to Go conversion for policies and
questionnaire templates.

PURPOSE:
  Converts JSON template definitions into claims.Template documents and
  ships the built-in default template for every valid (claimType,
  claimOption) pair, so a fresh deployment can bind questionnaires
  before any template has been authored.

JSON SCHEMA:
  {
    "id": "life-hospitalization-v1",
    "claim_type": "life",
    "claim_option": "hospitalization",
    "version": 1,
    "is_active": true,
    "sections": [
      {
        "id": "incident",
        "title": "Incident Details",
        "questions": [
          {
            "id": "q-admission-date",
            "text": "Date of admission",
            "type": "date",
            "is_required": true
          },
          {
            "id": "q-ward-type",
            "text": "Ward type",
            "type": "select",
            "options": ["general", "private", "icu"],
            "is_required": true
          }
        ]
      }
    ]
  }

USAGE:
  f := factory.NewTemplateFactory()

  // From JSON string
  tpl, err := f.ParseTemplate(jsonString)

  // Built-in defaults (recommended for seeding)
  for _, tpl := range factory.DefaultTemplates(time.Now()) {
      store.SaveTemplate(ctx, tpl)
  }

SEE ALSO:
  - claims/questionnaire.go: Template type, binding and answer validation
  - policy.go: Policy JSON parsing
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coverline/claims-engine/claims"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TemplateJSON is the JSON representation of a questionnaire template.
type TemplateJSON struct {
	ID          string        `json:"id"`
	ClaimType   string        `json:"claim_type"`
	ClaimOption string        `json:"claim_option"`
	Version     int           `json:"version,omitempty"`
	IsActive    bool          `json:"is_active,omitempty"`
	Sections    []SectionJSON `json:"sections"`
}

type SectionJSON struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Questions []QuestionJSON `json:"questions"`
}

type QuestionJSON struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Type       string          `json:"type"`
	Options    []string        `json:"options,omitempty"`
	IsRequired bool            `json:"is_required,omitempty"`
	Validation *ValidationJSON `json:"validation,omitempty"`
}

type ValidationJSON struct {
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// =============================================================================
// TEMPLATE FACTORY
// =============================================================================

// TemplateFactory converts JSON templates to Go structs.
type TemplateFactory struct{}

func NewTemplateFactory() *TemplateFactory {
	return &TemplateFactory{}
}

// ParseTemplate parses a JSON string into a Template.
func (f *TemplateFactory) ParseTemplate(jsonStr string) (*claims.Template, error) {
	var tj TemplateJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts TemplateJSON to a claims.Template.
func (f *TemplateFactory) FromJSON(tj TemplateJSON) (*claims.Template, error) {
	ct := claims.ClaimType(tj.ClaimType)
	opt := claims.ClaimOption(tj.ClaimOption)
	if !claims.IsValidOption(ct, opt) {
		return nil, fmt.Errorf("option %q is not valid for claim type %q", tj.ClaimOption, tj.ClaimType)
	}
	if len(tj.Sections) == 0 {
		return nil, fmt.Errorf("template %s has no sections", tj.ID)
	}

	tpl := &claims.Template{
		ID:          tj.ID,
		ClaimType:   ct,
		ClaimOption: opt,
		Version:     tj.Version,
		IsActive:    tj.IsActive,
	}
	if tpl.Version == 0 {
		tpl.Version = 1
	}

	seen := make(map[string]bool)
	for _, sj := range tj.Sections {
		section := claims.Section{ID: sj.ID, Title: sj.Title}
		for _, qj := range sj.Questions {
			q, err := parseQuestion(qj)
			if err != nil {
				return nil, err
			}
			if seen[q.ID] {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			seen[q.ID] = true
			section.Questions = append(section.Questions, q)
		}
		tpl.Sections = append(tpl.Sections, section)
	}
	return tpl, nil
}

// ToJSON converts a Template to TemplateJSON.
func (f *TemplateFactory) ToJSON(tpl *claims.Template) TemplateJSON {
	tj := TemplateJSON{
		ID:          tpl.ID,
		ClaimType:   string(tpl.ClaimType),
		ClaimOption: string(tpl.ClaimOption),
		Version:     tpl.Version,
		IsActive:    tpl.IsActive,
	}
	for _, s := range tpl.Sections {
		sj := SectionJSON{ID: s.ID, Title: s.Title}
		for _, q := range s.Questions {
			qj := QuestionJSON{
				ID:         q.ID,
				Text:       q.Text,
				Type:       string(q.Type),
				Options:    q.Options,
				IsRequired: q.IsRequired,
			}
			if q.Validation != nil {
				qj.Validation = &ValidationJSON{
					MinLength: q.Validation.MinLength,
					MaxLength: q.Validation.MaxLength,
					Pattern:   q.Validation.Pattern,
					Min:       q.Validation.Min,
					Max:       q.Validation.Max,
				}
			}
			sj.Questions = append(sj.Questions, qj)
		}
		tj.Sections = append(tj.Sections, sj)
	}
	return tj
}

func parseQuestion(qj QuestionJSON) (claims.Question, error) {
	qt := claims.QuestionType(qj.Type)
	switch qt {
	case claims.QuestionText, claims.QuestionNumber, claims.QuestionDate:
	case claims.QuestionSelect, claims.QuestionMultiSelect:
		if len(qj.Options) == 0 {
			return claims.Question{}, fmt.Errorf("question %q: %s questions need options", qj.ID, qj.Type)
		}
	default:
		return claims.Question{}, fmt.Errorf("question %q: unknown question type %q", qj.ID, qj.Type)
	}

	q := claims.Question{
		ID:         qj.ID,
		Text:       qj.Text,
		Type:       qt,
		Options:    qj.Options,
		IsRequired: qj.IsRequired,
	}
	if qj.Validation != nil {
		q.Validation = &claims.ValidationRules{
			MinLength: qj.Validation.MinLength,
			MaxLength: qj.Validation.MaxLength,
			Pattern:   qj.Validation.Pattern,
			Min:       qj.Validation.Min,
			Max:       qj.Validation.Max,
		}
	}
	return q, nil
}

// =============================================================================
// BUILT-IN DEFAULT TEMPLATES
// =============================================================================

// DefaultTemplates returns an active v1 template for every valid
// (claimType, claimOption) pair. Deployments seed these at startup so
// every combination can bind a questionnaire out of the box; authored
// replacements are cloned from them and promoted.
func DefaultTemplates(now time.Time) []*claims.Template {
	one := 1.0

	build := func(ct claims.ClaimType, opt claims.ClaimOption, sections ...claims.Section) *claims.Template {
		return &claims.Template{
			ID:          fmt.Sprintf("%s-%s-v1", ct, opt),
			ClaimType:   ct,
			ClaimOption: opt,
			Version:     1,
			IsActive:    true,
			Sections:    sections,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	incidentDate := func(text string) claims.Question {
		return claims.Question{ID: "q-incident-date", Text: text, Type: claims.QuestionDate, IsRequired: true}
	}
	description := func(text string) claims.Question {
		return claims.Question{
			ID: "q-description", Text: text, Type: claims.QuestionText, IsRequired: true,
			Validation: &claims.ValidationRules{MinLength: 10, MaxLength: 2000},
		}
	}

	vehicleSection := func(extra ...claims.Question) claims.Section {
		questions := []claims.Question{
			incidentDate("When did the incident occur?"),
			{ID: "q-vehicle-reg", Text: "Vehicle registration number", Type: claims.QuestionText, IsRequired: true,
				Validation: &claims.ValidationRules{MinLength: 2, MaxLength: 16}},
			{ID: "q-police-report", Text: "Was a police report filed?", Type: claims.QuestionSelect,
				Options: []string{"yes", "no"}, IsRequired: true},
		}
		return claims.Section{ID: "incident", Title: "Incident Details", Questions: append(questions, extra...)}
	}

	narrative := claims.Section{
		ID: "narrative", Title: "Description",
		Questions: []claims.Question{description("Describe what happened")},
	}

	return []*claims.Template{
		build(claims.TypeLife, claims.OptionHospitalization,
			claims.Section{
				ID: "admission", Title: "Hospital Admission",
				Questions: []claims.Question{
					{ID: "q-admission-date", Text: "Date of admission", Type: claims.QuestionDate, IsRequired: true},
					{ID: "q-discharge-date", Text: "Date of discharge", Type: claims.QuestionDate, IsRequired: false},
					{ID: "q-hospital", Text: "Hospital name", Type: claims.QuestionText, IsRequired: true,
						Validation: &claims.ValidationRules{MinLength: 2, MaxLength: 200}},
					{ID: "q-ward-type", Text: "Ward type", Type: claims.QuestionSelect,
						Options: []string{"general", "private", "icu"}, IsRequired: true},
					{ID: "q-days", Text: "Number of days hospitalized", Type: claims.QuestionNumber, IsRequired: true,
						Validation: &claims.ValidationRules{Min: &one}},
				},
			},
			narrative,
		),

		build(claims.TypeLife, claims.OptionChannelling,
			claims.Section{
				ID: "consultation", Title: "Consultation Details",
				Questions: []claims.Question{
					incidentDate("Date of consultation"),
					{ID: "q-doctor", Text: "Consulting doctor", Type: claims.QuestionText, IsRequired: true,
						Validation: &claims.ValidationRules{MinLength: 2, MaxLength: 200}},
					{ID: "q-speciality", Text: "Speciality", Type: claims.QuestionSelect,
						Options: []string{"general", "cardiology", "orthopedics", "neurology", "other"}, IsRequired: true},
				},
			},
		),

		build(claims.TypeLife, claims.OptionMedication,
			claims.Section{
				ID: "prescription", Title: "Prescription Details",
				Questions: []claims.Question{
					incidentDate("Prescription date"),
					{ID: "q-pharmacy", Text: "Pharmacy name", Type: claims.QuestionText, IsRequired: true,
						Validation: &claims.ValidationRules{MinLength: 2, MaxLength: 200}},
					{ID: "q-chronic", Text: "Is this for a chronic condition?", Type: claims.QuestionSelect,
						Options: []string{"yes", "no"}, IsRequired: true},
				},
			},
		),

		build(claims.TypeLife, claims.OptionDeath,
			claims.Section{
				ID: "deceased", Title: "Deceased Details",
				Questions: []claims.Question{
					{ID: "q-date-of-death", Text: "Date of death", Type: claims.QuestionDate, IsRequired: true},
					{ID: "q-relationship", Text: "Relationship to the insured", Type: claims.QuestionSelect,
						Options: []string{"self", "spouse", "child", "parent"}, IsRequired: true},
					{ID: "q-cause", Text: "Cause of death", Type: claims.QuestionText, IsRequired: true,
						Validation: &claims.ValidationRules{MinLength: 3, MaxLength: 500}},
				},
			},
		),

		build(claims.TypeVehicle, claims.OptionAccident,
			vehicleSection(
				claims.Question{ID: "q-third-party", Text: "Was a third party involved?", Type: claims.QuestionSelect,
					Options: []string{"yes", "no"}, IsRequired: true},
				claims.Question{ID: "q-damage-areas", Text: "Damaged areas", Type: claims.QuestionMultiSelect,
					Options: []string{"front", "rear", "left side", "right side", "roof", "undercarriage"}, IsRequired: true},
			),
			narrative,
		),

		build(claims.TypeVehicle, claims.OptionTheft,
			vehicleSection(
				claims.Question{ID: "q-recovered", Text: "Has the vehicle been recovered?", Type: claims.QuestionSelect,
					Options: []string{"yes", "no"}, IsRequired: true},
			),
			narrative,
		),

		build(claims.TypeVehicle, claims.OptionFire,
			vehicleSection(),
			narrative,
		),

		build(claims.TypeVehicle, claims.OptionNaturalDisaster,
			vehicleSection(
				claims.Question{ID: "q-disaster-type", Text: "Type of disaster", Type: claims.QuestionSelect,
					Options: []string{"flood", "storm", "earthquake", "landslide", "other"}, IsRequired: true},
			),
			narrative,
		),
	}
}
