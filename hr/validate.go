package hr

import (
	"fmt"

	"github.com/warp/business-admin/generic"
)

// Validate checks form-level rules for a department.
func (d Department) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("name", d.Name)
	verr.OneOf("status", string(d.Status), string(DepartmentActive), string(DepartmentInactive))
	if d.ParentID != "" && d.ParentID == d.ID {
		verr.Add("parent_id", "cannot be the department itself")
	}
	return verr.OrNil()
}

// Validate checks form-level rules for an employee.
func (e Employee) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("name", e.Name)
	if e.Email != "" && !generic.ValidEmail(e.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if e.HireDate.IsZero() {
		verr.Add("hire_date", "is required")
	}
	verr.OneOf("status", string(e.Status),
		string(EmployeeActive), string(EmployeeInactive), string(EmployeeOnLeave), string(EmployeeTerminated))
	if e.Salary.IsNegative() {
		verr.Add("salary", "must not be negative")
	}
	return verr.OrNil()
}

// Validate checks form-level rules for an occurrence.
// Resolved and closed occurrences must say how they were resolved.
func (o Occurrence) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("employee_id", o.EmployeeID)
	verr.Require("title", o.Title)
	verr.Require("type", string(o.Type))
	verr.OneOf("type", string(o.Type),
		string(OccurrenceWarning), string(OccurrenceAbsence), string(OccurrenceDelay),
		string(OccurrenceAccident), string(OccurrenceCommendation), string(OccurrenceOther))
	verr.OneOf("severity", string(o.Severity), string(SeverityLow), string(SeverityMedium), string(SeverityHigh))
	verr.OneOf("status", string(o.Status),
		string(OccurrenceOpen), string(OccurrenceInProgress), string(OccurrenceResolved), string(OccurrenceClosed))
	if o.OccurredOn.IsZero() {
		verr.Add("occurred_on", "is required")
	}
	if (o.Status == OccurrenceResolved || o.Status == OccurrenceClosed) && o.Resolution == "" {
		verr.Add("resolution", "is required once the occurrence is resolved")
	}
	return verr.OrNil()
}

// Validate checks form-level rules for a training session.
func (t TrainingSession) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("title", t.Title)
	if t.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	}
	if t.EndDate != nil && !t.StartDate.IsZero() && t.EndDate.Before(t.StartDate) {
		verr.Add("end_date", "must not be before start_date")
	}
	if t.Hours <= 0 || t.Hours > MaxTrainingHours {
		verr.Add("hours", fmt.Sprintf("must be greater than 0 and at most %d", MaxTrainingHours))
	}
	verr.OneOf("type", string(t.Type), string(TrainingInternal), string(TrainingExternal), string(TrainingOnline))
	verr.OneOf("status", string(t.Status),
		string(TrainingPlanned), string(TrainingOngoing), string(TrainingCompleted), string(TrainingCancelled))
	if t.Cost.IsNegative() {
		verr.Add("cost", "must not be negative")
	}
	seen := make(map[string]bool, len(t.Participants))
	for _, p := range t.Participants {
		if p == "" {
			verr.Add("participants", "must not contain empty IDs")
			break
		}
		if seen[p] {
			verr.Add("participants", fmt.Sprintf("lists %q twice", p))
			break
		}
		seen[p] = true
	}
	return verr.OrNil()
}

// Validate checks form-level rules for a cost item.
func (c CostItem) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("category", string(c.Category))
	verr.OneOf("category", string(c.Category),
		string(CostSalary), string(CostBenefits), string(CostTaxes),
		string(CostTraining), string(CostEquipment), string(CostOther))
	if !c.Amount.IsPositive() {
		verr.Add("amount", "must be greater than 0")
	}
	if !generic.ValidMonth(c.Month) {
		verr.Add("month", "must be a month in YYYY-MM format")
	}
	if c.EmployeeID == "" && c.DepartmentID == "" {
		verr.Add("employee_id", "employee_id or department_id is required")
	}
	return verr.OrNil()
}
