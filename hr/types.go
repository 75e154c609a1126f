/*
Package hr implements the human resources feature modules.

PURPOSE:
  Departments, employees, occurrences, training sessions and employee
  costs. Each module is a flat record mirrored from its table plus the
  form-level rules and the small aggregations the dashboard shows.

KEY CONCEPTS:
  - Records:     Department, Employee, Occurrence, TrainingSession, CostItem
  - Validation:  Validate() on each record (required fields, enums, ranges)
  - Queries:     *Query structs turn list-view filters into predicates
  - Stats:       TrainingStats, OccurrenceStats, CostSummary, Headcount

CONSISTENCY:
  No cross-record invariants are enforced here. An occurrence may point
  at an employee that was deleted later; the store keeps whatever was
  written last.

SEE ALSO:
  - generic/filter.go: Predicate helpers used by the queries
  - generic/stats.go: Aggregation helpers
  - store/sqlite: Persistence for these records
*/
package hr

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/business-admin/generic"
)

// =============================================================================
// DEPARTMENT
// =============================================================================

type DepartmentStatus string

const (
	DepartmentActive   DepartmentStatus = "active"
	DepartmentInactive DepartmentStatus = "inactive"
)

type Department struct {
	ID          string
	Name        string
	Description string
	ManagerID   string
	ParentID    string
	Status      DepartmentStatus
	generic.Timestamps
}

// =============================================================================
// EMPLOYEE
// =============================================================================

type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeInactive   EmployeeStatus = "inactive"
	EmployeeOnLeave    EmployeeStatus = "on_leave"
	EmployeeTerminated EmployeeStatus = "terminated"
)

type Employee struct {
	ID           string
	Name         string
	Email        string
	Position     string
	DepartmentID string
	HireDate     time.Time
	Status       EmployeeStatus
	Salary       decimal.Decimal
	generic.Timestamps
}

// =============================================================================
// OCCURRENCE - Disciplinary and workplace events tied to an employee
// =============================================================================

type OccurrenceType string

const (
	OccurrenceWarning      OccurrenceType = "warning"
	OccurrenceAbsence      OccurrenceType = "absence"
	OccurrenceDelay        OccurrenceType = "delay"
	OccurrenceAccident     OccurrenceType = "accident"
	OccurrenceCommendation OccurrenceType = "commendation"
	OccurrenceOther        OccurrenceType = "other"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type OccurrenceStatus string

const (
	OccurrenceOpen       OccurrenceStatus = "open"
	OccurrenceInProgress OccurrenceStatus = "in_progress"
	OccurrenceResolved   OccurrenceStatus = "resolved"
	OccurrenceClosed     OccurrenceStatus = "closed"
)

type Occurrence struct {
	ID          string
	EmployeeID  string
	Type        OccurrenceType
	Severity    Severity
	Title       string
	Description string
	OccurredOn  time.Time
	Status      OccurrenceStatus
	Resolution  string
	generic.Timestamps
}

// =============================================================================
// TRAINING
// =============================================================================

type TrainingType string

const (
	TrainingInternal TrainingType = "internal"
	TrainingExternal TrainingType = "external"
	TrainingOnline   TrainingType = "online"
)

type TrainingStatus string

const (
	TrainingPlanned   TrainingStatus = "planned"
	TrainingOngoing   TrainingStatus = "ongoing"
	TrainingCompleted TrainingStatus = "completed"
	TrainingCancelled TrainingStatus = "cancelled"
)

// MaxTrainingHours bounds a single session's workload.
const MaxTrainingHours = 1000

type TrainingSession struct {
	ID           string
	Title        string
	Description  string
	Instructor   string
	Type         TrainingType
	Category     string
	StartDate    time.Time
	EndDate      *time.Time
	Hours        float64
	Status       TrainingStatus
	Participants []string // employee IDs
	Cost         decimal.Decimal
	generic.Timestamps
}

// =============================================================================
// EMPLOYEE COSTS
// =============================================================================

type CostCategory string

const (
	CostSalary    CostCategory = "salary"
	CostBenefits  CostCategory = "benefits"
	CostTaxes     CostCategory = "taxes"
	CostTraining  CostCategory = "training"
	CostEquipment CostCategory = "equipment"
	CostOther     CostCategory = "other"
)

type CostItem struct {
	ID           string
	EmployeeID   string
	DepartmentID string
	Category     CostCategory
	Description  string
	Amount       decimal.Decimal
	Month        string // YYYY-MM
	Recurring    bool
	generic.Timestamps
}
