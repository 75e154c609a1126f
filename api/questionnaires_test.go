package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/disc"
)

func TestDiscSession_WalkAndComplete(t *testing.T) {
	env := newTestEnv(t)
	_, emp := env.seedEmployee("Ana", "ana@acme.test")

	// GIVEN: A new DISC session
	var s SessionDTO
	env.expect(env.do(http.MethodPost, "/api/questionnaires/disc/sessions", map[string]any{"subject_id": emp}), http.StatusCreated, &s)
	require.NotNil(t, s.Current)
	assert.Equal(t, len(disc.Items), s.Total)
	assert.Equal(t, "q1", s.Current.Key)
	assert.True(t, s.IsFirst)
	assert.False(t, s.CanComplete)
	assert.Len(t, s.Missing, len(disc.Items))
	base := "/api/questionnaires/sessions/" + s.ID

	// Choices are factor letters.
	body := env.errorBody(env.do(http.MethodPost, base+"/answers", map[string]any{"key": "q1", "value": "X"}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "q1")

	// Completing early lists what is missing.
	body = env.errorBody(env.do(http.MethodPost, base+"/complete", nil), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "q1")

	// WHEN: Answering every item, advancing each time
	for i, key := range disc.ItemKeys() {
		factor := "S"
		if i < 3 {
			factor = "C"
		}
		env.expect(env.do(http.MethodPost, base+"/answers", map[string]any{"key": key, "value": factor, "advance": true}), http.StatusOK, &s)
	}
	assert.True(t, s.IsLast)
	assert.True(t, s.CanComplete)
	assert.InDelta(t, 100.0, s.Progress, 0.001)

	// Progress survives a reload.
	env.expect(env.do(http.MethodGet, base, nil), http.StatusOK, &s)
	assert.Len(t, s.Answers, len(disc.Items))

	// THEN: Completion stores an assessment
	env.expect(env.do(http.MethodPost, base+"/complete", nil), http.StatusOK, &s)
	assert.True(t, s.Completed)
	require.NotEmpty(t, s.ResultID)

	var a AssessmentDTO
	env.expect(env.do(http.MethodGet, "/api/disc/assessments/"+s.ResultID, nil), http.StatusOK, &a)
	assert.Equal(t, emp, a.EmployeeID)
	assert.Equal(t, "S", a.PrimaryProfile)

	// Completed sessions are read-only.
	env.errorBody(env.do(http.MethodPost, base+"/answers", map[string]any{"key": "q1", "value": "D"}), http.StatusConflict)
	env.errorBody(env.do(http.MethodPost, base+"/complete", nil), http.StatusConflict)
	env.expect(env.do(http.MethodGet, base, nil), http.StatusOK, nil)
}

func TestSession_Navigation(t *testing.T) {
	env := newTestEnv(t)
	_, emp := env.seedEmployee("Ana", "ana@acme.test")
	id := env.create("/api/questionnaires/disc/sessions", map[string]any{"subject_id": emp})
	base := "/api/questionnaires/sessions/" + id

	var s SessionDTO
	env.expect(env.do(http.MethodPost, base+"/previous", nil), http.StatusOK, &s)
	assert.Equal(t, 0, s.CurrentIndex, "previous stays on the first question")

	env.expect(env.do(http.MethodPost, base+"/next", nil), http.StatusOK, &s)
	assert.Equal(t, 1, s.CurrentIndex)

	env.expect(env.do(http.MethodPost, base+"/goto?index=5", nil), http.StatusOK, &s)
	assert.Equal(t, 5, s.CurrentIndex)
	assert.Equal(t, "q6", s.Current.Key)

	env.expect(env.do(http.MethodPost, base+"/goto", map[string]any{"index": 999}), http.StatusOK, &s)
	assert.Equal(t, len(disc.Items)-1, s.CurrentIndex)
	assert.True(t, s.IsLast)

	env.errorBody(env.do(http.MethodPost, base+"/goto?index=-2", nil), http.StatusBadRequest)

	// The position is stored.
	env.expect(env.do(http.MethodGet, base, nil), http.StatusOK, &s)
	assert.Equal(t, len(disc.Items)-1, s.CurrentIndex)

	var listed []SessionDTO
	env.expect(env.do(http.MethodGet, "/api/questionnaires/sessions?kind=disc", nil), http.StatusOK, &listed)
	assert.Len(t, listed, 1)
	env.errorBody(env.do(http.MethodGet, "/api/questionnaires/sessions?kind=tarot", nil), http.StatusBadRequest)

	env.expect(env.do(http.MethodDelete, base, nil), http.StatusNoContent, nil)
	env.errorBody(env.do(http.MethodGet, base, nil), http.StatusNotFound)
}

func TestSession_RejectsUnknownKindAndSubject(t *testing.T) {
	env := newTestEnv(t)
	env.errorBody(env.do(http.MethodPost, "/api/questionnaires/tarot/sessions", map[string]any{"subject_id": "x"}), http.StatusBadRequest)

	body := env.errorBody(env.do(http.MethodPost, "/api/questionnaires/disc/sessions", map[string]any{"subject_id": "emp-missing"}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "subject_id")

	env.errorBody(env.do(http.MethodPost, "/api/questionnaires/survey/sessions", map[string]any{"subject_id": "srv-missing"}), http.StatusNotFound)
}

func TestIdentitySession_GeneratesIdentity(t *testing.T) {
	env := newTestEnv(t)
	id := env.create("/api/questionnaires/identity/sessions", map[string]any{"subject_id": "acme"})
	base := "/api/questionnaires/sessions/" + id

	for key, value := range map[string]string{
		"company_name":     "Acme",
		"industry":         "logistics",
		"description":      "Same day delivery",
		"target_customers": "online shops",
		"values":           "Speed, Care",
	} {
		env.expect(env.do(http.MethodPost, base+"/answers", map[string]any{"key": key, "value": value}), http.StatusOK, nil)
	}

	var s SessionDTO
	env.expect(env.do(http.MethodPost, base+"/complete", nil), http.StatusOK, &s)
	assert.True(t, s.Completed)

	var ident IdentityDTO
	env.expect(env.do(http.MethodGet, "/api/strategy/identity?company_id=acme", nil), http.StatusOK, &ident)
	assert.Equal(t, s.ResultID, ident.ID)
	assert.Equal(t, []string{"Speed", "Care"}, ident.Values)
}

func TestIdentitySession_GeneratorFailureKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t)
	env.h.Generator = brokenGenerator{}
	id := env.create("/api/questionnaires/identity/sessions", map[string]any{"subject_id": "acme"})
	base := "/api/questionnaires/sessions/" + id
	for _, key := range []string{"company_name", "industry", "description", "target_customers"} {
		env.expect(env.do(http.MethodPost, base+"/answers", map[string]any{"key": key, "value": "x"}), http.StatusOK, nil)
	}

	env.errorBody(env.do(http.MethodPost, base+"/complete", nil), http.StatusBadGateway)

	var s SessionDTO
	env.expect(env.do(http.MethodGet, base, nil), http.StatusOK, &s)
	assert.False(t, s.Completed)
	assert.True(t, s.CanComplete)
}

func TestSurveySession_StoresResponse(t *testing.T) {
	env := newTestEnv(t)
	_, emp := env.seedEmployee("Ana", "ana@acme.test")
	surveyID, scaleID, choiceID := newActiveSurvey(env, false)

	// Named surveys need a respondent.
	body := env.errorBody(env.do(http.MethodPost, "/api/questionnaires/survey/sessions", map[string]any{"subject_id": surveyID}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "respondent_id")

	var s SessionDTO
	env.expect(env.do(http.MethodPost, "/api/questionnaires/survey/sessions", map[string]any{
		"subject_id": surveyID, "respondent_id": emp,
	}), http.StatusCreated, &s)
	require.NotNil(t, s.Current)
	assert.Equal(t, scaleID, s.Current.Key)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, s.Current.Choices)
	base := "/api/questionnaires/sessions/" + s.ID

	env.expect(env.do(http.MethodPost, base+"/answers", map[string]any{"key": scaleID, "value": "4", "advance": true}), http.StatusOK, &s)
	assert.Equal(t, choiceID, s.Current.Key)
	assert.True(t, s.CanComplete, "the choice question is optional")

	env.expect(env.do(http.MethodPost, base+"/complete", nil), http.StatusOK, &s)

	var responses []ResponseDTO
	env.expect(env.do(http.MethodGet, "/api/surveys/"+surveyID+"/responses", nil), http.StatusOK, &responses)
	require.Len(t, responses, 1)
	assert.Equal(t, s.ResultID, responses[0].ID)
	assert.Equal(t, emp, responses[0].EmployeeID)
}
