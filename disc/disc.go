/*
Package disc implements DISC behavioural assessments.

PURPOSE:
  An employee answers a fixed bank of items. Each item offers four
  adjectives, one per factor (Dominance, Influence, Steadiness,
  Conscientiousness); the employee picks the one that describes them
  best. Scores are the share of picks per factor, as whole percentages
  that add up to 100.

SCORING:
  count per factor -> percentage via largest remainder, so rounding never
  makes the total drift from 100. The primary profile is the highest
  factor; ties resolve in D, I, S, C order.

SEE ALSO:
  - questions.go: The item bank
  - questionnaire/: Multi-step answering sessions
*/
package disc

import (
	"fmt"
	"sort"
	"time"

	"github.com/warp/business-admin/generic"
)

type Factor string

const (
	FactorD Factor = "D"
	FactorI Factor = "I"
	FactorS Factor = "S"
	FactorC Factor = "C"
)

// Factors in tie-break order.
var Factors = []Factor{FactorD, FactorI, FactorS, FactorC}

// ProfileNames are the display names of each factor.
var ProfileNames = map[Factor]string{
	FactorD: "Dominance",
	FactorI: "Influence",
	FactorS: "Steadiness",
	FactorC: "Conscientiousness",
}

// Scores is the JSON payload stored with an assessment: {"d":..,"i":..,"s":..,"c":..}.
type Scores struct {
	D int `json:"d"`
	I int `json:"i"`
	S int `json:"s"`
	C int `json:"c"`
}

// Get returns the score for f.
func (s Scores) Get(f Factor) int {
	switch f {
	case FactorD:
		return s.D
	case FactorI:
		return s.I
	case FactorS:
		return s.S
	case FactorC:
		return s.C
	}
	return 0
}

func (s *Scores) set(f Factor, v int) {
	switch f {
	case FactorD:
		s.D = v
	case FactorI:
		s.I = v
	case FactorS:
		s.S = v
	case FactorC:
		s.C = v
	}
}

// Total sums the four factors.
func (s Scores) Total() int {
	return s.D + s.I + s.S + s.C
}

// Primary returns the dominant factor, or "" when every score is zero.
func (s Scores) Primary() Factor {
	best := Factor("")
	bestScore := 0
	for _, f := range Factors {
		if v := s.Get(f); v > bestScore {
			best, bestScore = f, v
		}
	}
	return best
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

type Assessment struct {
	ID             string
	EmployeeID     string
	Scores         Scores
	PrimaryProfile Factor
	Status         Status
	CompletedAt    *time.Time
	Notes          string
	generic.Timestamps
}

// Validate checks form-level rules and score ranges.
func (a Assessment) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("employee_id", a.EmployeeID)
	verr.OneOf("status", string(a.Status), string(StatusPending), string(StatusCompleted))
	for _, f := range Factors {
		if v := a.Scores.Get(f); v < 0 || v > 100 {
			verr.Add("scores."+string(f), "must be between 0 and 100")
		}
	}
	if a.Status == StatusCompleted && a.Scores.Total() == 0 {
		verr.Add("scores", "completed assessments need scores")
	}
	return verr.OrNil()
}

// Finalize derives the primary profile and completion time from the scores.
func (a *Assessment) Finalize(now time.Time) {
	a.PrimaryProfile = a.Scores.Primary()
	if a.Status == StatusCompleted && a.CompletedAt == nil {
		t := now
		a.CompletedAt = &t
	}
}

// =============================================================================
// SCORING
// =============================================================================

// Score converts answers (item key -> factor letter) into percentage scores.
// Answers for unknown items or with an unknown factor are errors.
func Score(answers map[string]string) (Scores, error) {
	counts := make(map[Factor]int, len(Factors))
	total := 0
	for key, value := range answers {
		if _, ok := itemIndex[key]; !ok {
			return Scores{}, fmt.Errorf("unknown DISC item %q: %w", key, generic.ErrValidation)
		}
		f := Factor(value)
		if _, ok := ProfileNames[f]; !ok {
			return Scores{}, fmt.Errorf("item %q: unknown factor %q: %w", key, value, generic.ErrValidation)
		}
		counts[f]++
		total++
	}
	return percentages(counts, total), nil
}

// percentages applies the largest remainder method so results sum to 100.
func percentages(counts map[Factor]int, total int) Scores {
	var s Scores
	if total == 0 {
		return s
	}

	type share struct {
		f         Factor
		floor     int
		remainder int
	}
	shares := make([]share, 0, len(Factors))
	assigned := 0
	for _, f := range Factors {
		scaled := counts[f] * 100
		sh := share{f: f, floor: scaled / total, remainder: scaled % total}
		assigned += sh.floor
		shares = append(shares, sh)
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i].remainder > shares[j].remainder })
	for i := 0; assigned < 100; i++ {
		shares[i%len(shares)].floor++
		assigned++
	}
	for _, sh := range shares {
		s.set(sh.f, sh.floor)
	}
	return s
}

// =============================================================================
// STATS
// =============================================================================

type AverageScores struct {
	D float64 `json:"d"`
	I float64 `json:"i"`
	S float64 `json:"s"`
	C float64 `json:"c"`
}

type ProfileShare struct {
	Factor     Factor  `json:"factor"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Stats struct {
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Pending   int            `json:"pending"`
	Average   AverageScores  `json:"average"` // completed assessments only
	Profiles  []ProfileShare `json:"profiles"`
}

// ComputeStats aggregates assessments for the dashboard.
func ComputeStats(items []Assessment) Stats {
	completed := generic.Filter(items, func(a Assessment) bool { return a.Status == StatusCompleted })
	stats := Stats{
		Total:     len(items),
		Completed: len(completed),
		Pending:   len(items) - len(completed),
	}

	perFactor := make(map[Factor][]float64, len(Factors))
	profiles := make(map[Factor]int, len(Factors))
	for _, a := range completed {
		for _, f := range Factors {
			perFactor[f] = append(perFactor[f], float64(a.Scores.Get(f)))
		}
		p := a.PrimaryProfile
		if p == "" {
			p = a.Scores.Primary()
		}
		profiles[p]++
	}

	stats.Average = AverageScores{
		D: generic.Average(perFactor[FactorD]),
		I: generic.Average(perFactor[FactorI]),
		S: generic.Average(perFactor[FactorS]),
		C: generic.Average(perFactor[FactorC]),
	}
	for _, f := range Factors {
		stats.Profiles = append(stats.Profiles, ProfileShare{
			Factor:     f,
			Name:       ProfileNames[f],
			Count:      profiles[f],
			Percentage: generic.Percentage(profiles[f], len(completed)),
		})
	}
	return stats
}
