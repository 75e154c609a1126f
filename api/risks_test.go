package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRisks_ScoreAndSeverity(t *testing.T) {
	env := newTestEnv(t)
	_, owner := env.seedEmployee("Ana", "ana@acme.test")

	var rk RiskDTO
	env.expect(env.do(http.MethodPost, "/api/risks", map[string]any{
		"title": "Outage", "probability": "medium", "impact": "high", "owner_id": owner,
	}), http.StatusCreated, &rk)
	assert.Equal(t, 6, rk.Score)
	assert.Equal(t, "high", rk.Severity)
	assert.Equal(t, "identified", rk.Status)

	// Mitigating needs a plan.
	body := env.errorBody(env.do(http.MethodPut, "/api/risks/"+rk.ID, map[string]any{
		"title": "Outage", "probability": "medium", "impact": "high", "status": "mitigating",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "mitigation")

	body = env.errorBody(env.do(http.MethodPost, "/api/risks", map[string]any{
		"title": "x", "probability": "extreme", "impact": "high",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "probability")

	body = env.errorBody(env.do(http.MethodPost, "/api/risks", map[string]any{
		"title": "x", "probability": "low", "impact": "low", "owner_id": "emp-missing",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "owner_id")
}

func TestRiskMatrix_PlotAndHit(t *testing.T) {
	env := newTestEnv(t)
	critical := env.create("/api/risks", map[string]any{"title": "Fire", "probability": "high", "impact": "high"})
	a := env.create("/api/risks", map[string]any{"title": "Churn", "probability": "medium", "impact": "high"})
	b := env.create("/api/risks", map[string]any{"title": "Attrition", "probability": "medium", "impact": "high"})
	env.create("/api/risks", map[string]any{"title": "Closed", "probability": "low", "impact": "low", "status": "closed"})

	// WHEN: Drawing the default 300x300 matrix
	var m MatrixDTO
	env.expect(env.do(http.MethodGet, "/api/risks/matrix", nil), http.StatusOK, &m)

	// THEN: Nine cells, one point per occupied cell
	assert.Equal(t, 300.0, m.Width)
	assert.Equal(t, 100.0, m.CellWidth)
	require.Len(t, m.Cells, 9)
	assert.Equal(t, "green", string(m.Cells[0].Colour), "top-left is low/low")
	assert.Equal(t, "red", string(m.Cells[8].Colour), "bottom-right is high/high")
	require.Len(t, m.Points, 3)

	// A click near the shared medium/high point returns both risks.
	var hit HitDTO
	env.expect(env.do(http.MethodGet, "/api/risks/matrix/hit?x=155&y=245", nil), http.StatusOK, &hit)
	require.True(t, hit.Hit)
	ids := []string{hit.Risks[0].ID, hit.Risks[1].ID}
	assert.ElementsMatch(t, []string{a, b}, ids)

	env.expect(env.do(http.MethodGet, "/api/risks/matrix/hit?x=250&y=250", nil), http.StatusOK, &hit)
	require.True(t, hit.Hit)
	assert.Equal(t, critical, hit.Risks[0].ID)

	// Empty space misses.
	env.expect(env.do(http.MethodGet, "/api/risks/matrix/hit?x=10&y=10", nil), http.StatusOK, &hit)
	assert.False(t, hit.Hit)
	assert.Empty(t, hit.Risks)

	// Filters apply before plotting, sizes scale the canvas.
	env.expect(env.do(http.MethodGet, "/api/risks/matrix?status=closed&width=600&height=300", nil), http.StatusOK, &m)
	require.Len(t, m.Points, 1)
	assert.Equal(t, 100.0, m.Points[0].X)
	assert.Equal(t, 50.0, m.Points[0].Y)

	env.errorBody(env.do(http.MethodGet, "/api/risks/matrix/hit?x=10", nil), http.StatusBadRequest)
	env.errorBody(env.do(http.MethodGet, "/api/risks/matrix?width=0", nil), http.StatusBadRequest)
}

func TestRiskSummary(t *testing.T) {
	env := newTestEnv(t)
	env.create("/api/risks", map[string]any{"title": "Fire", "probability": "high", "impact": "high"})
	env.create("/api/risks", map[string]any{"title": "Leak", "probability": "low", "impact": "medium", "status": "closed"})

	var summary struct {
		Total      int            `json:"total"`
		Open       int            `json:"open"`
		BySeverity map[string]int `json:"by_severity"`
	}
	env.expect(env.do(http.MethodGet, "/api/risks/summary", nil), http.StatusOK, &summary)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Open)
	assert.Equal(t, 1, summary.BySeverity["critical"])
}
