package hr

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/business-admin/generic"
)

// =============================================================================
// TRAINING STATS
// =============================================================================

// TrainingStats summarises a set of training sessions.
type TrainingStats struct {
	Total              int             `json:"total"`
	ByStatus           map[string]int  `json:"by_status"`
	ByType             map[string]int  `json:"by_type"`
	TotalHours         float64         `json:"total_hours"`
	CompletedHours     float64         `json:"completed_hours"`
	TotalParticipants  int             `json:"total_participants"` // seats, an employee in two sessions counts twice
	UniqueParticipants int             `json:"unique_participants"`
	AverageHours       float64         `json:"average_hours"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	CostPerParticipant decimal.Decimal `json:"cost_per_participant"`
}

// ComputeTrainingStats aggregates sessions. Cancelled sessions count toward
// Total and ByStatus only.
func ComputeTrainingStats(sessions []TrainingSession) TrainingStats {
	stats := TrainingStats{
		Total:     len(sessions),
		ByStatus:  generic.CountBy(sessions, func(t TrainingSession) string { return string(t.Status) }),
		ByType:    generic.CountBy(sessions, func(t TrainingSession) string { return string(t.Type) }),
		TotalCost: decimal.Zero,
	}

	unique := make(map[string]bool)
	var hours []float64
	for _, s := range sessions {
		if s.Status == TrainingCancelled {
			continue
		}
		hours = append(hours, s.Hours)
		stats.TotalHours += s.Hours
		if s.Status == TrainingCompleted {
			stats.CompletedHours += s.Hours
		}
		stats.TotalParticipants += len(s.Participants)
		for _, p := range s.Participants {
			unique[p] = true
		}
		stats.TotalCost = stats.TotalCost.Add(s.Cost)
	}

	stats.TotalHours = generic.Round(stats.TotalHours, 2)
	stats.CompletedHours = generic.Round(stats.CompletedHours, 2)
	stats.UniqueParticipants = len(unique)
	stats.AverageHours = generic.Average(hours)
	stats.CostPerParticipant = generic.AverageDecimal(stats.TotalCost, stats.TotalParticipants)
	return stats
}

// EmployeeTrainingHours sums completed hours per participant.
func EmployeeTrainingHours(sessions []TrainingSession) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range sessions {
		if s.Status != TrainingCompleted {
			continue
		}
		for _, p := range s.Participants {
			out[p] += s.Hours
		}
	}
	return out
}

// =============================================================================
// OCCURRENCE STATS
// =============================================================================

type OccurrenceStats struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"` // open + in_progress
	ByType     map[string]int `json:"by_type"`
	BySeverity map[string]int `json:"by_severity"`
	ByStatus   map[string]int `json:"by_status"`
}

func ComputeOccurrenceStats(items []Occurrence) OccurrenceStats {
	stats := OccurrenceStats{
		Total:      len(items),
		ByType:     generic.CountBy(items, func(o Occurrence) string { return string(o.Type) }),
		BySeverity: generic.CountBy(items, func(o Occurrence) string { return string(o.Severity) }),
		ByStatus:   generic.CountBy(items, func(o Occurrence) string { return string(o.Status) }),
	}
	for _, o := range items {
		if o.Status == OccurrenceOpen || o.Status == OccurrenceInProgress {
			stats.Open++
		}
	}
	return stats
}

// =============================================================================
// HEADCOUNT
// =============================================================================

// Headcount counts active employees per department ID.
// Employees without a department are counted under "".
func Headcount(employees []Employee) map[string]int {
	active := generic.Filter(employees, func(e Employee) bool { return e.Status == EmployeeActive })
	return generic.CountBy(active, func(e Employee) string { return e.DepartmentID })
}

// =============================================================================
// COST SUMMARY
// =============================================================================

// CostBucket is one group of a cost breakdown.
type CostBucket struct {
	Key        string          `json:"key"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

type CostSummary struct {
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	ByCategory      []CostBucket    `json:"by_category"`   // largest first
	ByMonth         []CostBucket    `json:"by_month"`      // chronological
	ByDepartment    []CostBucket    `json:"by_department"` // largest first
	ByEmployee      []CostBucket    `json:"by_employee"`   // largest first
	AveragePerMonth decimal.Decimal `json:"average_per_month"`
}

// SummarizeCosts groups cost items and computes totals with exact decimals.
func SummarizeCosts(items []CostItem) CostSummary {
	amounts := make([]decimal.Decimal, len(items))
	for i, c := range items {
		amounts[i] = c.Amount
	}
	total := generic.Sum(amounts)

	byMonth := buckets(items, total, func(c CostItem) string { return c.Month })
	sort.Slice(byMonth, func(i, j int) bool { return byMonth[i].Key < byMonth[j].Key })

	return CostSummary{
		Total:           total,
		Count:           len(items),
		ByCategory:      largestFirst(buckets(items, total, func(c CostItem) string { return string(c.Category) })),
		ByMonth:         byMonth,
		ByDepartment:    largestFirst(buckets(items, total, func(c CostItem) string { return c.DepartmentID })),
		ByEmployee:      largestFirst(buckets(items, total, func(c CostItem) string { return c.EmployeeID })),
		AveragePerMonth: generic.AverageDecimal(total, len(byMonth)),
	}
}

func buckets(items []CostItem, total decimal.Decimal, key func(CostItem) string) []CostBucket {
	groups := generic.GroupBy(items, key)
	out := make([]CostBucket, 0, len(groups))
	for k, group := range groups {
		if k == "" {
			continue
		}
		b := CostBucket{Key: k, Total: decimal.Zero, Count: len(group)}
		for _, c := range group {
			b.Total = b.Total.Add(c.Amount)
		}
		if !total.IsZero() {
			b.Percentage = b.Total.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		out = append(out, b)
	}
	return out
}

func largestFirst(b []CostBucket) []CostBucket {
	sort.Slice(b, func(i, j int) bool {
		if c := b[i].Total.Cmp(b[j].Total); c != 0 {
			return c > 0
		}
		return b[i].Key < b[j].Key
	})
	return b
}
