package importer

import (
	"sort"
	"strings"

	"github.com/warp/business-admin/hr"
)

// Resolve turns parsed rows into employees ready to store. Department
// cells match a department id or, case-insensitively, its name. Rows with
// an unknown department, or an email already taken by a stored employee or
// an earlier row, become RowErrors. Parse errors are carried over; the
// returned errors are ordered by line.
func Resolve(res Result, departments []hr.Department, existing []hr.Employee) ([]*hr.Employee, []RowError) {
	byKey := make(map[string]string, 2*len(departments))
	for _, d := range departments {
		byKey[d.ID] = d.ID
		byKey[strings.ToLower(strings.TrimSpace(d.Name))] = d.ID
	}
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		if e.Email != "" {
			taken[e.Email] = true
		}
	}

	errs := append([]RowError(nil), res.Errors...)
	out := make([]*hr.Employee, 0, len(res.Rows))
	for _, row := range res.Rows {
		e := row.Employee
		if dept := strings.TrimSpace(row.Department); dept != "" {
			id, ok := byKey[dept]
			if !ok {
				id, ok = byKey[strings.ToLower(dept)]
			}
			if !ok {
				errs = append(errs, rowError(row.Line, "department", "unknown department "+dept))
				continue
			}
			e.DepartmentID = id
		}
		if e.Email != "" {
			if taken[e.Email] {
				errs = append(errs, rowError(row.Line, "email", "already in use"))
				continue
			}
			taken[e.Email] = true
		}
		out = append(out, &e)
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Line < errs[j].Line })
	return out, errs
}

func rowError(line int, field, message string) RowError {
	return RowError{
		Line:    line,
		Message: field + ": " + message,
		Fields:  map[string]string{field: message},
	}
}
