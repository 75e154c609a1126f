package hr

import (
	"strings"
	"time"

	"github.com/warp/business-admin/generic"
)

// =============================================================================
// LIST FILTERS - what each list view lets users narrow by
// =============================================================================

// DepartmentQuery filters departments by name/description and status.
type DepartmentQuery struct {
	Search string
	Status string
	Sort   string
}

func (q DepartmentQuery) Apply(items []Department) ([]Department, error) {
	out := generic.Filter(items,
		generic.Search(q.Search, func(d Department) []string { return []string{d.Name, d.Description} }),
		generic.Match(q.Status, func(d Department) string { return string(d.Status) }),
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "name"), generic.Comparators[Department]{
		"name":       func(a, b Department) int { return generic.CompareFold(a.Name, b.Name) },
		"created_at": func(a, b Department) int { return a.CreatedAt.Compare(b.CreatedAt) },
	})
	return out, err
}

// EmployeeQuery filters employees by name/email/position, department and status.
type EmployeeQuery struct {
	Search       string
	DepartmentID string
	Status       string
	Sort         string
}

func (q EmployeeQuery) Apply(items []Employee) ([]Employee, error) {
	out := generic.Filter(items,
		generic.Search(q.Search, func(e Employee) []string { return []string{e.Name, e.Email, e.Position} }),
		generic.Match(q.DepartmentID, func(e Employee) string { return e.DepartmentID }),
		generic.Match(q.Status, func(e Employee) string { return string(e.Status) }),
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "name"), generic.Comparators[Employee]{
		"name":      func(a, b Employee) int { return generic.CompareFold(a.Name, b.Name) },
		"position":  func(a, b Employee) int { return generic.CompareFold(a.Position, b.Position) },
		"hire_date": func(a, b Employee) int { return a.HireDate.Compare(b.HireDate) },
		"salary":    func(a, b Employee) int { return a.Salary.Cmp(b.Salary) },
	})
	return out, err
}

// OccurrenceQuery filters occurrences.
type OccurrenceQuery struct {
	Search     string
	EmployeeID string
	Type       string
	Severity   string
	Status     string
	Period     generic.Period
	Sort       string
}

func (q OccurrenceQuery) Apply(items []Occurrence) ([]Occurrence, error) {
	var inPeriod generic.Predicate[Occurrence]
	if !q.Period.IsOpen() {
		inPeriod = func(o Occurrence) bool { return q.Period.Contains(o.OccurredOn) }
	}
	out := generic.Filter(items,
		generic.Search(q.Search, func(o Occurrence) []string { return []string{o.Title, o.Description} }),
		generic.Match(q.EmployeeID, func(o Occurrence) string { return o.EmployeeID }),
		generic.Match(q.Type, func(o Occurrence) string { return string(o.Type) }),
		generic.Match(q.Severity, func(o Occurrence) string { return string(o.Severity) }),
		generic.Match(q.Status, func(o Occurrence) string { return string(o.Status) }),
		inPeriod,
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "-occurred_on"), generic.Comparators[Occurrence]{
		"occurred_on": func(a, b Occurrence) int { return a.OccurredOn.Compare(b.OccurredOn) },
		"title":       func(a, b Occurrence) int { return generic.CompareFold(a.Title, b.Title) },
		"severity":    func(a, b Occurrence) int { return severityRank(a.Severity) - severityRank(b.Severity) },
	})
	return out, err
}

func severityRank(s Severity) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// TrainingQuery filters training sessions. EmployeeID matches participants.
type TrainingQuery struct {
	Search     string
	Type       string
	Status     string
	Category   string
	EmployeeID string
	Period     generic.Period
	Sort       string
}

func (q TrainingQuery) Apply(items []TrainingSession) ([]TrainingSession, error) {
	var participant, inPeriod generic.Predicate[TrainingSession]
	if q.EmployeeID != "" {
		participant = func(t TrainingSession) bool { return t.HasParticipant(q.EmployeeID) }
	}
	if !q.Period.IsOpen() {
		inPeriod = func(t TrainingSession) bool { return q.Period.Contains(t.StartDate) }
	}
	out := generic.Filter(items,
		generic.Search(q.Search, func(t TrainingSession) []string {
			return []string{t.Title, t.Description, t.Instructor, t.Category}
		}),
		generic.Match(q.Type, func(t TrainingSession) string { return string(t.Type) }),
		generic.Match(q.Status, func(t TrainingSession) string { return string(t.Status) }),
		generic.Match(q.Category, func(t TrainingSession) string { return t.Category }),
		participant,
		inPeriod,
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "-start_date"), generic.Comparators[TrainingSession]{
		"start_date": func(a, b TrainingSession) int { return a.StartDate.Compare(b.StartDate) },
		"title":      func(a, b TrainingSession) int { return generic.CompareFold(a.Title, b.Title) },
		"hours":      func(a, b TrainingSession) int { return compareFloat(a.Hours, b.Hours) },
	})
	return out, err
}

// HasParticipant reports whether employeeID attends the session.
func (t TrainingSession) HasParticipant(employeeID string) bool {
	for _, p := range t.Participants {
		if p == employeeID {
			return true
		}
	}
	return false
}

// CostQuery filters cost items. Month bounds are inclusive YYYY-MM keys.
type CostQuery struct {
	EmployeeID   string
	DepartmentID string
	Category     string
	FromMonth    string
	ToMonth      string
	Sort         string
}

func (q CostQuery) Apply(items []CostItem) ([]CostItem, error) {
	var months generic.Predicate[CostItem]
	if q.FromMonth != "" || q.ToMonth != "" {
		months = func(c CostItem) bool {
			if q.FromMonth != "" && c.Month < q.FromMonth {
				return false
			}
			if q.ToMonth != "" && c.Month > q.ToMonth {
				return false
			}
			return true
		}
	}
	out := generic.Filter(items,
		generic.Match(q.EmployeeID, func(c CostItem) string { return c.EmployeeID }),
		generic.Match(q.DepartmentID, func(c CostItem) string { return c.DepartmentID }),
		generic.Match(q.Category, func(c CostItem) string { return string(c.Category) }),
		months,
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "-month"), generic.Comparators[CostItem]{
		"month":  func(a, b CostItem) int { return strings.Compare(a.Month, b.Month) },
		"amount": func(a, b CostItem) int { return a.Amount.Cmp(b.Amount) },
	})
	return out, err
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Tenure returns whole years between hire date and asOf.
func (e Employee) Tenure(asOf time.Time) int {
	years := asOf.Year() - e.HireDate.Year()
	if asOf.Month() < e.HireDate.Month() ||
		(asOf.Month() == e.HireDate.Month() && asOf.Day() < e.HireDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
