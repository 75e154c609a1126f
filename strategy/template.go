package strategy

import (
	"context"
	"fmt"
	"strings"
)

var defaultValues = []string{"Integrity", "Customer focus", "Continuous improvement", "Teamwork"}

// TemplateGenerator fills fixed sentences with the input. It never
// fails and always returns the same output for the same input.
type TemplateGenerator struct{}

func (TemplateGenerator) GenerateIdentity(_ context.Context, in IdentityInput) (IdentityDraft, error) {
	name := orDefault(in.CompanyName, "Our company")
	industry := orDefault(in.Industry, "our market")
	customers := orDefault(in.TargetCustomers, "our customers")

	values := SplitValues(in.Values)
	if len(values) == 0 {
		values = append([]string(nil), defaultValues...)
	}

	vision := fmt.Sprintf("To be recognised as the reference in %s, trusted by %s.", industry, customers)
	if goals := strings.TrimSpace(in.LongTermGoals); goals != "" {
		vision = fmt.Sprintf("%s %s", vision, sentence(goals))
	}

	return IdentityDraft{
		Mission: fmt.Sprintf("%s delivers value to %s in %s through quality, reliability and care.", name, customers, industry),
		Vision:  vision,
		Values:  values,
		Purpose: fmt.Sprintf("Improve the lives of %s by doing excellent work in %s.", customers, industry),
	}, nil
}

type indicatorTemplate struct {
	perspective Perspective
	name        string
	description string
	target      string
	unit        string
	frequency   Frequency
}

var indicatorTemplates = []indicatorTemplate{
	{PerspectiveFinancial, "Revenue growth", "Year over year growth of net revenue", "10", "%", FrequencyQuarterly},
	{PerspectiveCustomer, "Customer satisfaction", "Average score of the customer satisfaction survey", "4.5", "score", FrequencyQuarterly},
	{PerspectiveProcess, "On-time delivery", "Share of orders delivered by the promised date", "95", "%", FrequencyMonthly},
	{PerspectiveLearning, "Training hours per employee", "Completed training hours divided by headcount", "40", "hours", FrequencyYearly},
	{PerspectiveFinancial, "Operating margin", "Operating income over net revenue", "15", "%", FrequencyQuarterly},
	{PerspectiveCustomer, "Customer retention", "Share of customers active in the previous period who remain active", "90", "%", FrequencyYearly},
	{PerspectiveProcess, "Non-conformities", "Open quality non-conformities at period end", "5", "count", FrequencyMonthly},
	{PerspectiveLearning, "Employee climate", "Favourable share of the climate survey", "75", "%", FrequencyYearly},
}

func (TemplateGenerator) GenerateIndicators(_ context.Context, in IndicatorInput) ([]IndicatorDraft, error) {
	n := in.count()
	out := make([]IndicatorDraft, 0, n)
	for i := 0; i < n; i++ {
		t := indicatorTemplates[i%len(indicatorTemplates)]
		name := t.name
		if round := i / len(indicatorTemplates); round > 0 {
			name = fmt.Sprintf("%s (%d)", name, round+1)
		}
		out = append(out, IndicatorDraft{
			Name:        name,
			Description: t.description,
			Perspective: string(t.perspective),
			Target:      t.target,
			Unit:        t.unit,
			Frequency:   string(t.frequency),
		})
	}
	return out, nil
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
