/*
questionnaire.go - Questionnaire binder: template snapshots and answers

PURPOSE:
  Resolves the template for a (claimType, claimOption) pair and produces
  a mutable response set attached to a claim. The response set embeds an
  immutable SNAPSHOT of the template content taken at bind time — later
  template edits never retroactively alter claims in progress.

COMPLETION:
  A response set is complete when every required question in every
  section has been answered. Answers may arrive in any order; required-
  ness is only enforced at completion-check time. Completion is a
  checkpoint: once a claim reaches questionnaire_completed, further
  edits never revert its status.

VALIDATION:
  Per question type:
    select/multiselect  answer(s) must be drawn from the options list
    number              numeric value (JSON number or numeric string)
    date                RFC3339 or YYYY-MM-DD
    text                min/max length and pattern when declared
  A malformed answer fails with *QuestionValidationError and leaves
  every other response untouched.

SEE ALSO:
  - factory/template.go: JSON template parsing and built-in defaults
  - service.go: LoadQuestionnaire / AnswerQuestion operations
*/
package claims

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// =============================================================================
// TEMPLATE - Authored per (claimType, claimOption), versioned
// =============================================================================

type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionNumber      QuestionType = "number"
	QuestionDate        QuestionType = "date"
	QuestionSelect      QuestionType = "select"
	QuestionMultiSelect QuestionType = "multiselect"
)

// ValidationRules constrains free-text and numeric answers.
type ValidationRules struct {
	MinLength int
	MaxLength int
	Pattern   string
	Min       *float64
	Max       *float64
}

type Question struct {
	ID         string
	Text       string
	Type       QuestionType
	Options    []string
	IsRequired bool
	Validation *ValidationRules
}

type Section struct {
	ID        string
	Title     string
	Questions []Question
}

// Template is a questionnaire definition. Only one active template may
// exist per (claimType, claimOption) key at a time; cloning produces an
// inactive copy that stays dormant until promoted.
type Template struct {
	ID          string
	ClaimType   ClaimType
	ClaimOption ClaimOption
	Version     int
	IsActive    bool
	Sections    []Section
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deactivated copy with the version bumped. The clone is
// promoted separately, which deactivates the previously active template.
func (t *Template) Clone(now time.Time) *Template {
	c := t.snapshot()
	c.ID = fmt.Sprintf("%s-v%d", templateKey(t.ClaimType, t.ClaimOption), t.Version+1)
	c.Version = t.Version + 1
	c.IsActive = false
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

func templateKey(ct ClaimType, opt ClaimOption) string {
	return fmt.Sprintf("%s-%s", ct, opt)
}

// Copy returns a deep copy of the template, same ID and version.
func (t *Template) Copy() *Template { return t.snapshot() }

// snapshot deep-copies the template content.
func (t *Template) snapshot() *Template {
	c := *t
	c.Sections = make([]Section, len(t.Sections))
	for i, s := range t.Sections {
		cs := s
		cs.Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			cq := q
			cq.Options = append([]string(nil), q.Options...)
			if q.Validation != nil {
				v := *q.Validation
				cq.Validation = &v
			}
			cs.Questions[j] = cq
		}
		c.Sections[i] = cs
	}
	return &c
}

// =============================================================================
// RESPONSE SET - Mutable answers over an immutable template snapshot
// =============================================================================

// Response is one answer slot, independently answerable.
type Response struct {
	QuestionID string
	Answer     any
	IsAnswered bool
	AnsweredAt *time.Time
}

// ResponseSet binds a template snapshot to a claim and collects answers.
type ResponseSet struct {
	TemplateID      string
	TemplateVersion int

	// Snapshot of the template sections at bind time. Template edits after
	// binding do not appear here.
	Sections []Section

	Responses []Response
}

// Bind snapshots the template and produces one empty response slot per
// question.
func Bind(t *Template) *ResponseSet {
	snap := t.snapshot()
	rs := &ResponseSet{
		TemplateID:      t.ID,
		TemplateVersion: t.Version,
		Sections:        snap.Sections,
	}
	for _, s := range snap.Sections {
		for _, q := range s.Questions {
			rs.Responses = append(rs.Responses, Response{QuestionID: q.ID})
		}
	}
	return rs
}

// Question finds a question in the snapshot by ID.
func (rs *ResponseSet) Question(questionID string) (Question, bool) {
	for _, s := range rs.Sections {
		for _, q := range s.Questions {
			if q.ID == questionID {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Answer validates and records an answer. A validation failure leaves the
// response set untouched and does not block other questions.
func (rs *ResponseSet) Answer(questionID string, answer any, now time.Time) error {
	q, ok := rs.Question(questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	if err := validateAnswer(q, answer); err != nil {
		return err
	}

	for i := range rs.Responses {
		if rs.Responses[i].QuestionID == questionID {
			at := now
			rs.Responses[i].Answer = answer
			rs.Responses[i].IsAnswered = true
			rs.Responses[i].AnsweredAt = &at
			return nil
		}
	}
	return ErrQuestionNotFound
}

// IsComplete reports whether every required question has been answered.
func (rs *ResponseSet) IsComplete() bool {
	answered := make(map[string]bool, len(rs.Responses))
	for _, r := range rs.Responses {
		answered[r.QuestionID] = r.IsAnswered
	}
	for _, s := range rs.Sections {
		for _, q := range s.Questions {
			if q.IsRequired && !answered[q.ID] {
				return false
			}
		}
	}
	return true
}

// clone deep-copies the response set, snapshot included.
func (rs *ResponseSet) clone() *ResponseSet {
	c := *rs
	tpl := Template{Sections: rs.Sections}
	c.Sections = tpl.snapshot().Sections
	c.Responses = make([]Response, len(rs.Responses))
	for i, r := range rs.Responses {
		cr := r
		if r.AnsweredAt != nil {
			at := *r.AnsweredAt
			cr.AnsweredAt = &at
		}
		c.Responses[i] = cr
	}
	return &c
}

// =============================================================================
// PER-TYPE ANSWER VALIDATION
// =============================================================================

func validateAnswer(q Question, answer any) error {
	if answer == nil {
		return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must not be empty"}
	}

	switch q.Type {
	case QuestionSelect:
		s, ok := answer.(string)
		if !ok {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be a string"}
		}
		if !containsOption(q.Options, s) {
			return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("%q is not one of the options", s)}
		}

	case QuestionMultiSelect:
		values, err := stringSlice(answer)
		if err != nil {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be a list of strings"}
		}
		if len(values) == 0 {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "at least one option must be selected"}
		}
		for _, v := range values {
			if !containsOption(q.Options, v) {
				return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("%q is not one of the options", v)}
			}
		}

	case QuestionNumber:
		n, ok := numericValue(answer)
		if !ok {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be a number"}
		}
		if q.Validation != nil {
			if q.Validation.Min != nil && n < *q.Validation.Min {
				return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("must be at least %v", *q.Validation.Min)}
			}
			if q.Validation.Max != nil && n > *q.Validation.Max {
				return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("must be at most %v", *q.Validation.Max)}
			}
		}

	case QuestionDate:
		s, ok := answer.(string)
		if !ok {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be a date string"}
		}
		if !validDate(s) {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be an RFC3339 or YYYY-MM-DD date"}
		}

	default: // free text
		s, ok := answer.(string)
		if !ok {
			return &QuestionValidationError{QuestionID: q.ID, Reason: "answer must be a string"}
		}
		if q.Validation != nil {
			if q.Validation.MinLength > 0 && len(s) < q.Validation.MinLength {
				return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("must be at least %d characters", q.Validation.MinLength)}
			}
			if q.Validation.MaxLength > 0 && len(s) > q.Validation.MaxLength {
				return &QuestionValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("must be at most %d characters", q.Validation.MaxLength)}
			}
			if q.Validation.Pattern != "" {
				re, err := regexp.Compile(q.Validation.Pattern)
				if err == nil && !re.MatchString(s) {
					return &QuestionValidationError{QuestionID: q.ID, Reason: "does not match the required pattern"}
				}
			}
		}
	}
	return nil
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func stringSlice(answer any) ([]string, error) {
	switch v := answer.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string element")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a list")
	}
}

func numericValue(answer any) (float64, bool) {
	switch v := answer.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func validDate(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
