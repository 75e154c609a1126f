package api

import (
	"context"
	"net/http"

	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
)

func (h *Handler) assessments() resource[disc.Assessment, AssessmentRequest] {
	return resource[disc.Assessment, AssessmentRequest]{
		table:  generic.TableDisc,
		get:    h.Store.GetAssessment,
		save:   h.Store.SaveAssessment,
		remove: h.Store.DeleteAssessment,
		id:     func(a disc.Assessment) string { return a.ID },
		toDTO:  func(a disc.Assessment) any { return toAssessmentDTO(a) },
		prepare: func(ctx context.Context, a *disc.Assessment) error {
			if err := exists(ctx, h.Store.GetEmployee, "employee_id", a.EmployeeID); err != nil {
				return err
			}
			a.Finalize(h.now())
			return nil
		},
	}
}

// ListAssessments supports ?employee_id=, ?status=, ?profile=.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListAssessments(r.Context())
	if err == nil {
		items = filterAssessments(r, items)
	}
	listJSON(h, w, r, "list assessments", items, err, toAssessmentDTO)
}

func filterAssessments(r *http.Request, items []disc.Assessment) []disc.Assessment {
	q := r.URL.Query()
	return generic.Filter(items,
		generic.Match(q.Get("employee_id"), func(a disc.Assessment) string { return a.EmployeeID }),
		generic.Match(q.Get("status"), func(a disc.Assessment) string { return string(a.Status) }),
		generic.Match(q.Get("profile"), func(a disc.Assessment) string { return string(a.PrimaryProfile) }),
	)
}

// GetDiscStats aggregates the filtered assessments.
func (h *Handler) GetDiscStats(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListAssessments(r.Context())
	if err != nil {
		h.fail(w, r, "disc stats", err)
		return
	}
	writeJSON(w, http.StatusOK, disc.ComputeStats(filterAssessments(r, items)))
}

// GetDiscQuestions returns the item bank.
func (h *Handler) GetDiscQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, disc.Items)
}
