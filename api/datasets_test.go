package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/generic"
)

func TestDatasets_ListAndLoad(t *testing.T) {
	env := newTestEnv(t)

	var list []DatasetDTO
	env.expect(env.do(http.MethodGet, "/api/demo/datasets", nil), http.StatusOK, &list)
	require.Len(t, list, len(datasets))
	for _, d := range list {
		assert.Contains(t, datasetSeeds, d.ID, "every listed dataset has a loader")
	}

	// GIVEN: Nothing loaded yet
	rec := env.do(http.MethodGet, "/api/demo/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String()[:4])

	// WHEN: Loading the full dataset
	var out struct {
		Dataset string         `json:"dataset"`
		Counts  map[string]int `json:"counts"`
	}
	env.expect(env.do(http.MethodPost, "/api/demo/load", map[string]any{"dataset_id": "full-company"}), http.StatusOK, &out)

	// THEN: Every module has data
	assert.Equal(t, "full-company", out.Dataset)
	for _, table := range []string{
		generic.TableDepartments, generic.TableEmployees, generic.TableOccurrences, generic.TableTraining,
		generic.TableCosts, generic.TableSurveys, generic.TableSurveyResponses, generic.TableDisc,
		generic.TableIdentity, generic.TableIndicators, generic.TableRisks, generic.TableDocuments,
	} {
		assert.Positive(t, out.Counts[table], table)
	}

	var current DatasetDTO
	env.expect(env.do(http.MethodGet, "/api/demo/current", nil), http.StatusOK, &current)
	assert.Equal(t, "full-company", current.ID)

	// The overdue document shows up for review.
	var due []DocumentDTO
	env.expect(env.do(http.MethodGet, "/api/documents/review-due", nil), http.StatusOK, &due)
	require.Len(t, due, 1)
	assert.Equal(t, "QM-001", due[0].Code)

	// The demo survey is open today.
	var summary struct {
		Responses int `json:"responses"`
	}
	env.expect(env.do(http.MethodGet, "/api/surveys/srv-q/summary", nil), http.StatusOK, &summary)
	assert.Equal(t, 6, summary.Responses)
}

func TestDatasets_LoadReplacesPreviousData(t *testing.T) {
	env := newTestEnv(t)
	env.create("/api/departments", map[string]any{"name": "Leftover"})

	var out struct {
		Counts map[string]int `json:"counts"`
	}
	env.expect(env.do(http.MethodPost, "/api/demo/load", map[string]any{"dataset_id": "hr-basics"}), http.StatusOK, &out)
	assert.Equal(t, 4, out.Counts[generic.TableDepartments])
	assert.Zero(t, out.Counts[generic.TableRisks])

	env.expect(env.do(http.MethodPost, "/api/demo/reset", nil), http.StatusOK, nil)
	var employees []EmployeeDTO
	env.expect(env.do(http.MethodGet, "/api/employees", nil), http.StatusOK, &employees)
	assert.Empty(t, employees)

	rec := env.do(http.MethodGet, "/api/demo/current", nil)
	assert.Equal(t, "null", rec.Body.String()[:4])
}

func TestDatasets_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	body := env.errorBody(env.do(http.MethodPost, "/api/demo/load", map[string]any{"dataset_id": "nope"}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "dataset_id")
	env.errorBody(env.do(http.MethodPost, "/api/demo/load", map[string]any{}), http.StatusBadRequest)
}
