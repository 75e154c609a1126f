package api

import (
	"context"
	"net/http"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/risk"
)

// defaultMatrixSize is the canvas edge used when width/height are omitted.
const defaultMatrixSize = 300.0

func (h *Handler) risks() resource[risk.Risk, RiskRequest] {
	return resource[risk.Risk, RiskRequest]{
		table:  generic.TableRisks,
		get:    h.Store.GetRisk,
		save:   h.Store.SaveRisk,
		remove: h.Store.DeleteRisk,
		id:     func(r risk.Risk) string { return r.ID },
		toDTO:  func(r risk.Risk) any { return toRiskDTO(r) },
		prepare: func(ctx context.Context, rk *risk.Risk) error {
			return exists(ctx, h.Store.GetEmployee, "owner_id", rk.OwnerID)
		},
	}
}

func (h *Handler) filteredRisks(r *http.Request) ([]risk.Risk, error) {
	items, err := h.Store.ListRisks(r.Context())
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return risk.Query{
		Search:   q.Get("q"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		OwnerID:  q.Get("owner_id"),
		Severity: q.Get("severity"),
		Sort:     q.Get("sort"),
	}.Apply(items)
}

// ListRisks supports ?q=, ?status=, ?category=, ?owner_id=, ?severity=, ?sort=.
func (h *Handler) ListRisks(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredRisks(r)
	listJSON(h, w, r, "list risks", items, err, toRiskDTO)
}

func (h *Handler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredRisks(r)
	if err != nil {
		h.fail(w, r, "risk summary", err)
		return
	}
	writeJSON(w, http.StatusOK, risk.Summarize(items))
}

// matrix builds the canvas from ?width= and ?height= and plots the
// filtered risks on it.
func (h *Handler) matrix(r *http.Request) (risk.Matrix, []risk.Point, []risk.Risk, error) {
	size := func(name string) (float64, error) {
		if r.URL.Query().Get(name) == "" {
			return defaultMatrixSize, nil
		}
		return floatParam(r, name)
	}
	width, err := size("width")
	if err != nil {
		return risk.Matrix{}, nil, nil, err
	}
	height, err := size("height")
	if err != nil {
		return risk.Matrix{}, nil, nil, err
	}
	m, err := risk.NewMatrix(width, height)
	if err != nil {
		return m, nil, nil, fieldError("width", err.Error())
	}
	items, err := h.filteredRisks(r)
	if err != nil {
		return m, nil, nil, err
	}
	return m, m.Plot(items), items, nil
}

// GetRiskMatrix returns cell geometry and plotted points.
func (h *Handler) GetRiskMatrix(w http.ResponseWriter, r *http.Request) {
	m, points, _, err := h.matrix(r)
	if err != nil {
		h.fail(w, r, "risk matrix", err)
		return
	}
	if points == nil {
		points = []risk.Point{}
	}
	writeJSON(w, http.StatusOK, MatrixDTO{
		Width:      m.Width,
		Height:     m.Height,
		CellWidth:  m.CellWidth(),
		CellHeight: m.CellHeight(),
		HitRadius:  risk.HitRadius,
		Cells:      m.Cells(),
		Points:     points,
	})
}

// HitRiskMatrix resolves a click at ?x=&y= to the risks under it.
func (h *Handler) HitRiskMatrix(w http.ResponseWriter, r *http.Request) {
	const op = "risk matrix hit"
	x, err := floatParam(r, "x")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	y, err := floatParam(r, "y")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	_, points, items, err := h.matrix(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	resp := HitDTO{Risks: []RiskDTO{}}
	p, ok := risk.HitTest(points, x, y)
	if ok {
		byID := make(map[string]risk.Risk, len(items))
		for _, rk := range items {
			byID[rk.ID] = rk
		}
		resp.Hit, resp.Point = true, &p
		for _, id := range p.RiskIDs {
			resp.Risks = append(resp.Risks, toRiskDTO(byID[id]))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
