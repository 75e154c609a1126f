package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/warp/business-admin/importer"
)

// =============================================================================
// RESOURCES
// =============================================================================

func (h *Handler) departments() resource[hr.Department, DepartmentRequest] {
	return resource[hr.Department, DepartmentRequest]{
		table:  generic.TableDepartments,
		get:    h.Store.GetDepartment,
		save:   h.Store.SaveDepartment,
		remove: h.Store.DeleteDepartment,
		id:     func(d hr.Department) string { return d.ID },
		toDTO:  func(d hr.Department) any { return toDepartmentDTO(d) },
		prepare: func(ctx context.Context, d *hr.Department) error {
			if d.ParentID != "" && d.ParentID == d.ID {
				return fieldError("parent_id", "must not reference itself")
			}
			if err := exists(ctx, h.Store.GetDepartment, "parent_id", d.ParentID); err != nil {
				return err
			}
			return exists(ctx, h.Store.GetEmployee, "manager_id", d.ManagerID)
		},
	}
}

func (h *Handler) employees() resource[hr.Employee, EmployeeRequest] {
	return resource[hr.Employee, EmployeeRequest]{
		table:  generic.TableEmployees,
		get:    h.Store.GetEmployee,
		save:   h.Store.SaveEmployee,
		remove: h.Store.DeleteEmployee,
		id:     func(e hr.Employee) string { return e.ID },
		toDTO:  func(e hr.Employee) any { return toEmployeeDTO(e) },
		prepare: func(ctx context.Context, e *hr.Employee) error {
			return exists(ctx, h.Store.GetDepartment, "department_id", e.DepartmentID)
		},
	}
}

func (h *Handler) occurrences() resource[hr.Occurrence, OccurrenceRequest] {
	return resource[hr.Occurrence, OccurrenceRequest]{
		table:  generic.TableOccurrences,
		get:    h.Store.GetOccurrence,
		save:   h.Store.SaveOccurrence,
		remove: h.Store.DeleteOccurrence,
		id:     func(o hr.Occurrence) string { return o.ID },
		toDTO:  func(o hr.Occurrence) any { return toOccurrenceDTO(o) },
		prepare: func(ctx context.Context, o *hr.Occurrence) error {
			return exists(ctx, h.Store.GetEmployee, "employee_id", o.EmployeeID)
		},
	}
}

func (h *Handler) training() resource[hr.TrainingSession, TrainingRequest] {
	return resource[hr.TrainingSession, TrainingRequest]{
		table:  generic.TableTraining,
		get:    h.Store.GetTraining,
		save:   h.Store.SaveTraining,
		remove: h.Store.DeleteTraining,
		id:     func(t hr.TrainingSession) string { return t.ID },
		toDTO:  func(t hr.TrainingSession) any { return toTrainingDTO(t) },
		prepare: func(ctx context.Context, t *hr.TrainingSession) error {
			for _, id := range t.Participants {
				if err := exists(ctx, h.Store.GetEmployee, "participants", id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (h *Handler) costs() resource[hr.CostItem, CostRequest] {
	return resource[hr.CostItem, CostRequest]{
		table:  generic.TableCosts,
		get:    h.Store.GetCost,
		save:   h.Store.SaveCost,
		remove: h.Store.DeleteCost,
		id:     func(c hr.CostItem) string { return c.ID },
		toDTO:  func(c hr.CostItem) any { return toCostDTO(c) },
		prepare: func(ctx context.Context, c *hr.CostItem) error {
			if err := exists(ctx, h.Store.GetEmployee, "employee_id", c.EmployeeID); err != nil {
				return err
			}
			return exists(ctx, h.Store.GetDepartment, "department_id", c.DepartmentID)
		},
	}
}

// exists rejects a non-empty reference to a missing record as a field error.
func exists[T any](ctx context.Context, get func(context.Context, string) (*T, error), field, id string) error {
	if id == "" {
		return nil
	}
	rec, err := get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fieldError(field, "references unknown record "+id)
	}
	return nil
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

// ListDepartments supports ?q=, ?status=, ?sort=.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDepartments(r.Context())
	if err == nil {
		q := r.URL.Query()
		items, err = hr.DepartmentQuery{Search: q.Get("q"), Status: q.Get("status"), Sort: q.Get("sort")}.Apply(items)
	}
	listJSON(h, w, r, "list departments", items, err, toDepartmentDTO)
}

// GetHeadcount counts the department's active employees.
func (h *Handler) GetHeadcount(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if _, err := h.departments().load(r.Context(), id); err != nil {
		h.fail(w, r, "get headcount", err)
		return
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "get headcount", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"department_id": id,
		"headcount":     hr.Headcount(employees)[id],
	})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func employeeQuery(r *http.Request) hr.EmployeeQuery {
	q := r.URL.Query()
	return hr.EmployeeQuery{
		Search:       q.Get("q"),
		DepartmentID: q.Get("department_id"),
		Status:       q.Get("status"),
		Sort:         q.Get("sort"),
	}
}

// ListEmployees supports ?q=, ?department_id=, ?status=, ?sort=.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListEmployees(r.Context())
	if err == nil {
		items, err = employeeQuery(r).Apply(items)
	}
	listJSON(h, w, r, "list employees", items, err, toEmployeeDTO)
}

// ImportEmployees reads a CSV or XLSX upload (form field "file"). Valid
// rows are stored in one transaction; invalid rows are reported back.
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	const op = "import employees"
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, op, fieldError("file", "a CSV or XLSX upload is required"))
		return
	}
	defer file.Close()

	parsed, err := importer.Parse(header.Filename, file)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	ctx := r.Context()
	departments, err := h.Store.ListDepartments(ctx)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	existing, err := h.Store.ListEmployees(ctx)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	employees, rowErrs := importer.Resolve(parsed, departments, existing)
	if err := h.Store.SaveEmployees(ctx, employees); err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.Metrics.recordImport(len(employees), len(rowErrs))
	resp := ImportResponse{
		Total:    parsed.Total(),
		Imported: len(employees),
		Errors:   rowErrs,
		Created:  make([]EmployeeDTO, len(employees)),
	}
	if resp.Errors == nil {
		resp.Errors = []importer.RowError{}
	}
	for i, e := range employees {
		resp.Created[i] = toEmployeeDTO(*e)
		h.record(ctx, generic.TableEmployees, e.ID, generic.ActionImported, map[string]any{"file": header.Filename})
	}
	h.Logger.WithField("file", header.Filename).
		WithField("imported", resp.Imported).
		WithField("rejected", len(rowErrs)).
		Info("employee import finished")
	writeJSON(w, http.StatusOK, resp)
}

// ExportEmployees writes the filtered employee list as an XLSX workbook.
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	const op = "export employees"
	ctx := r.Context()
	items, err := h.Store.ListEmployees(ctx)
	if err == nil {
		items, err = employeeQuery(r).Apply(items)
	}
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	departments, err := h.Store.ListDepartments(ctx)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}

	var buf bytes.Buffer
	if err := importer.ExportEmployees(&buf, items, names); err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// OCCURRENCE HANDLERS
// =============================================================================

func occurrenceQuery(r *http.Request) (hr.OccurrenceQuery, error) {
	p, err := period(r)
	q := r.URL.Query()
	return hr.OccurrenceQuery{
		Search:     q.Get("q"),
		EmployeeID: q.Get("employee_id"),
		Type:       q.Get("type"),
		Severity:   q.Get("severity"),
		Status:     q.Get("status"),
		Period:     p,
		Sort:       q.Get("sort"),
	}, err
}

func (h *Handler) filteredOccurrences(r *http.Request) ([]hr.Occurrence, error) {
	query, err := occurrenceQuery(r)
	if err != nil {
		return nil, err
	}
	items, err := h.Store.ListOccurrences(r.Context())
	if err != nil {
		return nil, err
	}
	return query.Apply(items)
}

// ListOccurrences supports ?q=, ?employee_id=, ?type=, ?severity=, ?status=, ?from=, ?to=, ?sort=.
func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredOccurrences(r)
	listJSON(h, w, r, "list occurrences", items, err, toOccurrenceDTO)
}

// GetOccurrenceStats aggregates the same filtered list.
func (h *Handler) GetOccurrenceStats(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredOccurrences(r)
	if err != nil {
		h.fail(w, r, "occurrence stats", err)
		return
	}
	writeJSON(w, http.StatusOK, hr.ComputeOccurrenceStats(items))
}

// =============================================================================
// TRAINING HANDLERS
// =============================================================================

func (h *Handler) filteredTraining(r *http.Request) ([]hr.TrainingSession, error) {
	p, err := period(r)
	if err != nil {
		return nil, err
	}
	items, err := h.Store.ListTraining(r.Context())
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return hr.TrainingQuery{
		Search:     q.Get("q"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		Category:   q.Get("category"),
		EmployeeID: q.Get("employee_id"),
		Period:     p,
		Sort:       q.Get("sort"),
	}.Apply(items)
}

// ListTraining supports ?q=, ?type=, ?status=, ?category=, ?employee_id=, ?from=, ?to=, ?sort=.
func (h *Handler) ListTraining(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredTraining(r)
	listJSON(h, w, r, "list training", items, err, toTrainingDTO)
}

func (h *Handler) GetTrainingStats(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredTraining(r)
	if err != nil {
		h.fail(w, r, "training stats", err)
		return
	}
	writeJSON(w, http.StatusOK, hr.ComputeTrainingStats(items))
}

// =============================================================================
// COST HANDLERS
// =============================================================================

func (h *Handler) filteredCosts(r *http.Request) ([]hr.CostItem, error) {
	items, err := h.Store.ListCosts(r.Context())
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return hr.CostQuery{
		EmployeeID:   q.Get("employee_id"),
		DepartmentID: q.Get("department_id"),
		Category:     q.Get("category"),
		FromMonth:    q.Get("from_month"),
		ToMonth:      q.Get("to_month"),
		Sort:         q.Get("sort"),
	}.Apply(items)
}

// ListCosts supports ?employee_id=, ?department_id=, ?category=, ?from_month=, ?to_month=, ?sort=.
func (h *Handler) ListCosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredCosts(r)
	listJSON(h, w, r, "list costs", items, err, toCostDTO)
}

func (h *Handler) GetCostSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.filteredCosts(r)
	if err != nil {
		h.fail(w, r, "cost summary", err)
		return
	}
	writeJSON(w, http.StatusOK, hr.SummarizeCosts(items))
}
