package claims_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverline/claims-engine/claims"
)

// hospitalizationTemplate builds a small active template: two required
// questions and one optional, across two sections.
func hospitalizationTemplate() *claims.Template {
	minDays := 1.0
	return &claims.Template{
		ID:          "life-hospitalization-v1",
		ClaimType:   claims.TypeLife,
		ClaimOption: claims.OptionHospitalization,
		Version:     1,
		IsActive:    true,
		Sections: []claims.Section{
			{
				ID:    "incident",
				Title: "Incident Details",
				Questions: []claims.Question{
					{ID: "q-date", Text: "Date of admission", Type: claims.QuestionDate, IsRequired: true},
					{ID: "q-days", Text: "Days hospitalized", Type: claims.QuestionNumber, IsRequired: true,
						Validation: &claims.ValidationRules{Min: &minDays}},
				},
			},
			{
				ID:    "extra",
				Title: "Additional Information",
				Questions: []claims.Question{
					{ID: "q-notes", Text: "Anything else?", Type: claims.QuestionText, IsRequired: false},
				},
			},
		},
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

// =============================================================================
// BINDING AND SNAPSHOT ISOLATION
// =============================================================================

func TestBind_CreatesOneSlotPerQuestion(t *testing.T) {
	rs := claims.Bind(hospitalizationTemplate())

	assert.Equal(t, "life-hospitalization-v1", rs.TemplateID)
	assert.Equal(t, 1, rs.TemplateVersion)
	require.Len(t, rs.Responses, 3)
	for _, r := range rs.Responses {
		assert.False(t, r.IsAnswered)
	}
}

func TestBind_SnapshotIsolatedFromLaterTemplateEdits(t *testing.T) {
	// GIVEN: A response set bound to a template
	// WHEN: The template is mutated after binding
	// THEN: The bound snapshot keeps the bind-time content

	tpl := hospitalizationTemplate()
	rs := claims.Bind(tpl)

	tpl.Sections[0].Questions[0].Text = "REWRITTEN"
	tpl.Sections[0].Questions = append(tpl.Sections[0].Questions,
		claims.Question{ID: "q-new", Type: claims.QuestionText, IsRequired: true})

	q, ok := rs.Question("q-date")
	require.True(t, ok)
	assert.Equal(t, "Date of admission", q.Text)

	_, ok = rs.Question("q-new")
	assert.False(t, ok, "questions added after binding are invisible")
	assert.True(t, answerAll(t, rs), "completion judged against the snapshot only")
}

// answerAll answers the snapshot's required questions and returns IsComplete.
func answerAll(t *testing.T, rs *claims.ResponseSet) bool {
	t.Helper()
	require.NoError(t, rs.Answer("q-date", "2026-03-01", testTime))
	require.NoError(t, rs.Answer("q-days", 4, testTime))
	return rs.IsComplete()
}

// =============================================================================
// COMPLETION
// =============================================================================

func TestIsComplete_RequiredQuestionsOnly(t *testing.T) {
	// GIVEN: Two required questions and one optional
	// WHEN: Answers arrive out of order, optional last unanswered
	// THEN: The set completes on the last required answer

	rs := claims.Bind(hospitalizationTemplate())
	assert.False(t, rs.IsComplete())

	require.NoError(t, rs.Answer("q-days", 4, testTime))
	assert.False(t, rs.IsComplete(), "one required question still open")

	require.NoError(t, rs.Answer("q-date", "2026-03-01", testTime))
	assert.True(t, rs.IsComplete(), "optional question never blocks completion")
}

func TestAnswer_ReanswerOverwritesWithoutUncompleting(t *testing.T) {
	rs := claims.Bind(hospitalizationTemplate())
	require.True(t, answerAll(t, rs))

	require.NoError(t, rs.Answer("q-days", 7, testTime))
	assert.True(t, rs.IsComplete())
}

func TestAnswer_UnknownQuestion(t *testing.T) {
	rs := claims.Bind(hospitalizationTemplate())
	err := rs.Answer("q-missing", "x", testTime)
	assert.ErrorIs(t, err, claims.ErrQuestionNotFound)
}

// =============================================================================
// PER-TYPE VALIDATION
// =============================================================================

func TestAnswer_Validation(t *testing.T) {
	min, max := 10.0, 100.0
	tpl := &claims.Template{
		ID: "t-val", ClaimType: claims.TypeVehicle, ClaimOption: claims.OptionAccident,
		Version: 1, IsActive: true,
		Sections: []claims.Section{{
			ID: "s", Questions: []claims.Question{
				{ID: "q-sel", Type: claims.QuestionSelect, Options: []string{"minor", "major"}},
				{ID: "q-multi", Type: claims.QuestionMultiSelect, Options: []string{"front", "rear", "side"}},
				{ID: "q-num", Type: claims.QuestionNumber, Validation: &claims.ValidationRules{Min: &min, Max: &max}},
				{ID: "q-date", Type: claims.QuestionDate},
				{ID: "q-text", Type: claims.QuestionText, Validation: &claims.ValidationRules{MinLength: 5, MaxLength: 20}},
			},
		}},
	}

	cases := []struct {
		name       string
		questionID string
		answer     any
		wantErr    bool
	}{
		{"select from options", "q-sel", "minor", false},
		{"select outside options", "q-sel", "totaled", true},
		{"select non-string", "q-sel", 3, true},
		{"multiselect subset", "q-multi", []string{"front", "side"}, false},
		{"multiselect from json decode", "q-multi", []any{"rear"}, false},
		{"multiselect empty", "q-multi", []string{}, true},
		{"multiselect stranger", "q-multi", []string{"roof"}, true},
		{"number in range", "q-num", 42, false},
		{"numeric string", "q-num", "55.5", false},
		{"number below min", "q-num", 3, true},
		{"number above max", "q-num", 101, true},
		{"number not numeric", "q-num", "lots", true},
		{"date rfc3339", "q-date", "2026-03-01T09:00:00Z", false},
		{"date short form", "q-date", "2026-03-01", false},
		{"date garbage", "q-date", "last tuesday", true},
		{"text in bounds", "q-text", "hit a lamppost", false},
		{"text too short", "q-text", "hit", true},
		{"text too long", "q-text", "aaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"nil answer", "q-text", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := claims.Bind(tpl)
			err := rs.Answer(tc.questionID, tc.answer, testTime)
			if tc.wantErr {
				var qErr *claims.QuestionValidationError
				require.ErrorAs(t, err, &qErr)
				assert.Equal(t, tc.questionID, qErr.QuestionID)
				assert.ErrorIs(t, err, claims.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAnswer_FailureLeavesOtherResponsesUntouched(t *testing.T) {
	rs := claims.Bind(hospitalizationTemplate())
	require.NoError(t, rs.Answer("q-date", "2026-03-01", testTime))

	err := rs.Answer("q-days", "not a number", testTime)
	require.Error(t, err)

	q, _ := rs.Question("q-date")
	assert.Equal(t, claims.QuestionDate, q.Type)
	for _, r := range rs.Responses {
		switch r.QuestionID {
		case "q-date":
			assert.True(t, r.IsAnswered)
		case "q-days":
			assert.False(t, r.IsAnswered, "failed answer never recorded")
		}
	}
}

// =============================================================================
// TEMPLATE VERSIONING
// =============================================================================

func TestTemplateClone_BumpsVersionAndDeactivates(t *testing.T) {
	tpl := hospitalizationTemplate()
	next := tpl.Clone(testTime)

	assert.Equal(t, 2, next.Version)
	assert.False(t, next.IsActive, "clones stay dormant until promoted")
	assert.Equal(t, "life-hospitalization-v2", next.ID)
	assert.True(t, tpl.IsActive, "source template untouched")

	next.Sections[0].Questions[0].Text = "edited"
	assert.Equal(t, "Date of admission", tpl.Sections[0].Questions[0].Text)
}
