/*
Package strategy holds the strategic identity of a company (mission,
vision, values, purpose) and its balanced-scorecard indicators.

Both can be written by hand or produced by a Generator from the answers
of the identity questionnaire.

SEE ALSO:
  - generator.go: Generator implementations and the demo fallback
  - questionnaire/: the wizard that collects IdentityInput
*/
package strategy

import (
	"strings"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/questionnaire"
)

// =============================================================================
// IDENTITY
// =============================================================================

type StrategicIdentity struct {
	ID        string
	CompanyID string
	Mission   string
	Vision    string
	Values    []string
	Purpose   string
	Generated bool
	generic.Timestamps
}

func (s StrategicIdentity) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("company_id", s.CompanyID)
	for _, v := range s.Values {
		if strings.TrimSpace(v) == "" {
			verr.Add("values", "must not contain empty entries")
			break
		}
	}
	return verr.OrNil()
}

// =============================================================================
// INDICATORS
// =============================================================================

type Perspective string

const (
	PerspectiveFinancial Perspective = "financial"
	PerspectiveCustomer  Perspective = "customer"
	PerspectiveProcess   Perspective = "process"
	PerspectiveLearning  Perspective = "learning"
)

// Perspectives lists the scorecard perspectives in display order.
var Perspectives = []Perspective{PerspectiveFinancial, PerspectiveCustomer, PerspectiveProcess, PerspectiveLearning}

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

type StrategicIndicator struct {
	ID           string
	CompanyID    string
	Name         string
	Description  string
	Perspective  Perspective
	Target       string
	Unit         string
	Frequency    Frequency
	CurrentValue string
	generic.Timestamps
}

func (s StrategicIndicator) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("company_id", s.CompanyID)
	verr.Require("name", s.Name)
	verr.OneOf("perspective", string(s.Perspective),
		string(PerspectiveFinancial), string(PerspectiveCustomer), string(PerspectiveProcess), string(PerspectiveLearning))
	verr.OneOf("frequency", string(s.Frequency),
		string(FrequencyMonthly), string(FrequencyQuarterly), string(FrequencyYearly))
	return verr.OrNil()
}

// IndicatorQuery filters indicator lists.
type IndicatorQuery struct {
	CompanyID   string
	Perspective string
	Search      string
	Sort        string
}

func (q IndicatorQuery) Apply(items []StrategicIndicator) ([]StrategicIndicator, error) {
	out := generic.Filter(items,
		generic.Match(q.CompanyID, func(s StrategicIndicator) string { return s.CompanyID }),
		generic.Match(q.Perspective, func(s StrategicIndicator) string { return string(s.Perspective) }),
		generic.Search(q.Search, func(s StrategicIndicator) []string { return []string{s.Name, s.Description} }),
	)
	err := generic.Sort(out, generic.ParseSort(q.Sort, "name"), generic.Comparators[StrategicIndicator]{
		"name":        func(a, b StrategicIndicator) int { return generic.CompareFold(a.Name, b.Name) },
		"perspective": func(a, b StrategicIndicator) int { return perspectiveRank(a.Perspective) - perspectiveRank(b.Perspective) },
		"created_at":  func(a, b StrategicIndicator) int { return a.CreatedAt.Compare(b.CreatedAt) },
	})
	return out, err
}

func perspectiveRank(p Perspective) int {
	for i, v := range Perspectives {
		if v == p {
			return i
		}
	}
	return len(Perspectives)
}

// =============================================================================
// GENERATION INPUTS
// =============================================================================

// IdentityInput is what the identity questionnaire collects.
type IdentityInput struct {
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	Industry        string `json:"industry"`
	Description     string `json:"description"`
	TargetCustomers string `json:"target_customers"`
	Differentials   string `json:"differentials"`
	Values          string `json:"values"`
	LongTermGoals   string `json:"long_term_goals"`
}

// IndicatorInput seeds indicator generation from an existing identity.
type IndicatorInput struct {
	CompanyID string   `json:"company_id"`
	Mission   string   `json:"mission"`
	Vision    string   `json:"vision"`
	Values    []string `json:"values"`
	Count     int      `json:"count"`
}

// DefaultIndicatorCount is used when IndicatorInput.Count is zero.
const DefaultIndicatorCount = 8

// IdentityQuestions is the identity interview, in order.
var IdentityQuestions = []questionnaire.Question{
	{Key: "company_name", Label: "What is the company called?", Required: true},
	{Key: "industry", Label: "Which industry does it operate in?", Required: true},
	{Key: "description", Label: "Describe what the company does.", Required: true},
	{Key: "target_customers", Label: "Who are its customers?", Required: true},
	{Key: "differentials", Label: "What sets it apart from competitors?"},
	{Key: "values", Label: "Which values guide the team? (comma separated)"},
	{Key: "long_term_goals", Label: "Where should the company be in ten years?"},
}

// IdentityInputFromAnswers maps questionnaire answers onto an input.
func IdentityInputFromAnswers(companyID string, answers map[string]string) IdentityInput {
	return IdentityInput{
		CompanyID:       companyID,
		CompanyName:     answers["company_name"],
		Industry:        answers["industry"],
		Description:     answers["description"],
		TargetCustomers: answers["target_customers"],
		Differentials:   answers["differentials"],
		Values:          answers["values"],
		LongTermGoals:   answers["long_term_goals"],
	}
}

// SplitValues turns a comma or newline separated list into trimmed,
// de-duplicated entries.
func SplitValues(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
