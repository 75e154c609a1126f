package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDepartments_CRUD(t *testing.T) {
	env := newTestEnv(t)

	// GIVEN: A department
	id := env.create("/api/departments", map[string]any{"name": "Engineering"})

	// WHEN: Reading, updating and deleting it
	var got DepartmentDTO
	env.expect(env.do(http.MethodGet, "/api/departments/"+id, nil), http.StatusOK, &got)
	assert.Equal(t, "Engineering", got.Name)
	assert.Equal(t, "active", got.Status)

	env.expect(env.do(http.MethodPut, "/api/departments/"+id, map[string]any{
		"name": "Product Engineering", "status": "inactive",
	}), http.StatusOK, &got)
	assert.Equal(t, "Product Engineering", got.Name)
	assert.Equal(t, "inactive", got.Status)

	env.expect(env.do(http.MethodDelete, "/api/departments/"+id, nil), http.StatusNoContent, nil)

	// THEN: It is gone
	env.errorBody(env.do(http.MethodGet, "/api/departments/"+id, nil), http.StatusNotFound)
	env.errorBody(env.do(http.MethodDelete, "/api/departments/"+id, nil), http.StatusNotFound)
}

func TestDepartments_RejectsSelfParentAndUnknownManager(t *testing.T) {
	env := newTestEnv(t)
	id := env.create("/api/departments", map[string]any{"name": "Sales"})

	body := env.errorBody(env.do(http.MethodPut, "/api/departments/"+id, map[string]any{
		"name": "Sales", "parent_id": id,
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "parent_id")

	body = env.errorBody(env.do(http.MethodPost, "/api/departments", map[string]any{
		"name": "Ops", "manager_id": "emp-missing",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "manager_id")
}

func TestEmployees_ValidationAndConflicts(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.seedEmployee("Ana", "ana@acme.test")

	// Missing required fields are reported per field.
	body := env.errorBody(env.do(http.MethodPost, "/api/employees", map[string]any{"email": "nope"}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "hire_date")
	assert.Contains(t, body.Fields, "email")

	// Unknown department.
	body = env.errorBody(env.do(http.MethodPost, "/api/employees", map[string]any{
		"name": "Bruno", "hire_date": "2025-02-01", "department_id": "dep-missing",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "department_id")

	// Bad date.
	body = env.errorBody(env.do(http.MethodPost, "/api/employees", map[string]any{
		"name": "Bruno", "hire_date": "01/02/2025",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "hire_date")

	// Taken email.
	env.errorBody(env.do(http.MethodPost, "/api/employees", map[string]any{
		"name": "Other Ana", "email": "ana@acme.test", "hire_date": "2025-02-01",
	}), http.StatusConflict)
}

func TestEmployees_ListFiltersAndHeadcount(t *testing.T) {
	env := newTestEnv(t)
	dept, _ := env.seedEmployee("Ana", "ana@acme.test")
	env.create("/api/employees", map[string]any{"name": "Bruno", "department_id": dept, "hire_date": "2025-01-01"})
	env.create("/api/employees", map[string]any{"name": "Carla", "department_id": dept, "hire_date": "2025-01-01", "status": "terminated"})

	var all []EmployeeDTO
	env.expect(env.do(http.MethodGet, "/api/employees?department_id="+dept+"&sort=name", nil), http.StatusOK, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana", all[0].Name)

	var found []EmployeeDTO
	env.expect(env.do(http.MethodGet, "/api/employees?q=bru", nil), http.StatusOK, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Bruno", found[0].Name)

	var hc struct {
		Headcount int `json:"headcount"`
	}
	env.expect(env.do(http.MethodGet, "/api/departments/"+dept+"/headcount", nil), http.StatusOK, &hc)
	assert.Equal(t, 2, hc.Headcount, "terminated employees are not counted")
}

func TestImportEmployees_CSV(t *testing.T) {
	env := newTestEnv(t)
	dept := env.create("/api/departments", map[string]any{"name": "Engineering"})
	env.create("/api/employees", map[string]any{"name": "Ana", "email": "ana@acme.test", "hire_date": "2024-01-01"})

	csv := strings.Join([]string{
		"Full Name,E-mail,Department,Hire Date,Salary",
		"Bruno Lima,bruno@acme.test,engineering,2025-02-01,7000",
		"Carla Mendes,carla@acme.test," + dept + ",15/03/2025,",
		"Taken Email,ana@acme.test,,2025-01-01,",
		",missing@acme.test,,2025-01-01,",
		"Lost Dept,lost@acme.test,Marketing,2025-01-01,",
	}, "\n")

	// WHEN: Importing the file
	var resp ImportResponse
	env.expect(env.upload("/api/employees/import", "people.csv", "text/csv", []byte(csv)), http.StatusOK, &resp)

	// THEN: Valid rows are stored, the rest reported by line
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Imported)
	require.Len(t, resp.Created, 2)
	assert.Equal(t, dept, resp.Created[0].DepartmentID)
	assert.Equal(t, "2025-03-15", resp.Created[1].HireDate)

	lines := make([]int, len(resp.Errors))
	for i, e := range resp.Errors {
		lines[i] = e.Line
	}
	assert.Equal(t, []int{4, 5, 6}, lines)

	var all []EmployeeDTO
	env.expect(env.do(http.MethodGet, "/api/employees", nil), http.StatusOK, &all)
	assert.Len(t, all, 3)
}

func TestImportEmployees_RejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	env.errorBody(env.upload("/api/employees/import", "people.pdf", "application/pdf", []byte("%PDF")), http.StatusBadRequest)
	env.errorBody(env.do(http.MethodPost, "/api/employees/import", nil), http.StatusBadRequest)
}

func TestExportEmployees_XLSX(t *testing.T) {
	env := newTestEnv(t)
	env.seedEmployee("Ana", "ana@acme.test")

	rec := env.do(http.MethodGet, "/api/employees/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Employees")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0][0])
	assert.Equal(t, "Ana", rows[1][0])
	assert.Equal(t, "Dept Ana", rows[1][3])
}

func TestOccurrences_StatsAndPeriodFilter(t *testing.T) {
	env := newTestEnv(t)
	_, emp := env.seedEmployee("Ana", "ana@acme.test")

	for _, o := range []map[string]any{
		{"employee_id": emp, "type": "absence", "severity": "medium", "title": "Missed day", "occurred_on": "2026-01-10"},
		{"employee_id": emp, "type": "delay", "severity": "low", "title": "Late", "occurred_on": "2026-02-20", "status": "closed"},
		{"employee_id": emp, "type": "delay", "severity": "low", "title": "Late again", "occurred_on": "2026-03-01"},
	} {
		env.create("/api/occurrences", o)
	}
	env.errorBody(env.do(http.MethodPost, "/api/occurrences", map[string]any{
		"employee_id": "emp-missing", "type": "delay", "severity": "low", "title": "x", "occurred_on": "2026-03-01",
	}), http.StatusBadRequest)

	var listed []OccurrenceDTO
	env.expect(env.do(http.MethodGet, "/api/occurrences?from=2026-02-01&to=2026-02-28", nil), http.StatusOK, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Late", listed[0].Title)

	var stats struct {
		Total  int            `json:"total"`
		Open   int            `json:"open"`
		ByType map[string]int `json:"by_type"`
	}
	env.expect(env.do(http.MethodGet, "/api/occurrences/stats", nil), http.StatusOK, &stats)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 2, stats.ByType["delay"])

	env.errorBody(env.do(http.MethodGet, "/api/occurrences?from=2026-03-01&to=2026-01-01", nil), http.StatusBadRequest)
}

func TestCosts_Summary(t *testing.T) {
	env := newTestEnv(t)
	dept, emp := env.seedEmployee("Ana", "ana@acme.test")

	env.create("/api/costs", map[string]any{"employee_id": emp, "department_id": dept, "category": "salary", "amount": "5000", "month": "2026-01"})
	env.create("/api/costs", map[string]any{"employee_id": emp, "department_id": dept, "category": "salary", "amount": "5000", "month": "2026-02"})
	env.create("/api/costs", map[string]any{"department_id": dept, "category": "equipment", "amount": "1500.50", "month": "2026-02"})

	body := env.errorBody(env.do(http.MethodPost, "/api/costs", map[string]any{
		"category": "salary", "amount": "10", "month": "2026-13",
	}), http.StatusBadRequest)
	assert.Contains(t, body.Fields, "month")

	var summary struct {
		Total      string `json:"total"`
		Count      int    `json:"count"`
		ByCategory []struct {
			Key   string `json:"key"`
			Total string `json:"total"`
		} `json:"by_category"`
	}
	env.expect(env.do(http.MethodGet, "/api/costs/summary", nil), http.StatusOK, &summary)
	assert.Equal(t, "11500.5", summary.Total)
	assert.Equal(t, 3, summary.Count)
	require.Len(t, summary.ByCategory, 2)
	assert.Equal(t, "salary", summary.ByCategory[0].Key)
}

func TestActivity_RecordsMutations(t *testing.T) {
	env := newTestEnv(t)
	id := env.create("/api/departments", map[string]any{"name": "Engineering"})
	env.expect(env.do(http.MethodDelete, "/api/departments/"+id, nil), http.StatusNoContent, nil)

	var entries []ActivityDTO
	env.expect(env.do(http.MethodGet, "/api/activity?table=departments&record_id="+id, nil), http.StatusOK, &entries)
	require.Len(t, entries, 2)
	actions := []string{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []string{"created", "deleted"}, actions)
}
