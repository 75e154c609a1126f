package climate

import (
	"sort"

	"github.com/warp/business-admin/generic"
)

// FavorableThreshold is the lowest scale answer counted as favourable.
const FavorableThreshold = 4

type ChoiceCount struct {
	Choice     string  `json:"choice"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type QuestionSummary struct {
	QuestionID   string               `json:"question_id"`
	Text         string               `json:"text"`
	Type         QuestionType         `json:"type"`
	Category     string               `json:"category"`
	Answered     int                  `json:"answered"`
	Average      float64              `json:"average"`      // scale questions only
	Distribution []generic.ScalePoint `json:"distribution"` // scale questions only
	Choices      []ChoiceCount        `json:"choices"`      // choice questions only
}

type CategorySummary struct {
	Category  string  `json:"category"`
	Average   float64 `json:"average"`
	Questions int     `json:"questions"`
}

type Summary struct {
	Responses         int               `json:"responses"`
	Invited           int               `json:"invited"`
	ParticipationRate float64           `json:"participation_rate"` // 0 when Invited is unknown
	OverallAverage    float64           `json:"overall_average"`
	Favorable         float64           `json:"favorable"` // share of scale answers >= FavorableThreshold
	Questions         []QuestionSummary `json:"questions"`
	Categories        []CategorySummary `json:"categories"`
}

// Summarize aggregates responses per question and per category.
// invited is the number of employees asked to answer; pass 0 if unknown.
func Summarize(questions []Question, responses []Response, invited int) Summary {
	ordered := append([]Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	summary := Summary{
		Responses: len(responses),
		Invited:   invited,
		Questions: make([]QuestionSummary, 0, len(ordered)),
	}
	if invited > 0 {
		summary.ParticipationRate = generic.Percentage(len(responses), invited)
	}

	var allScale []int
	categoryValues := make(map[string][]int)
	categoryQuestions := make(map[string]int)

	for _, q := range ordered {
		qs := QuestionSummary{QuestionID: q.ID, Text: q.Text, Type: q.Type, Category: q.Category}
		switch q.Type {
		case QuestionScale:
			values := scaleAnswers(q.ID, responses)
			qs.Answered = len(values)
			qs.Average = generic.AverageInts(values)
			qs.Distribution = generic.Distribution(values)
			allScale = append(allScale, values...)
			if q.Category != "" {
				categoryValues[q.Category] = append(categoryValues[q.Category], values...)
				categoryQuestions[q.Category]++
			}
		case QuestionChoice:
			qs.Choices, qs.Answered = choiceCounts(q, responses)
		default:
			for _, r := range responses {
				if r.Answers[q.ID] != "" {
					qs.Answered++
				}
			}
		}
		summary.Questions = append(summary.Questions, qs)
	}

	summary.OverallAverage = generic.AverageInts(allScale)
	favorable := 0
	for _, v := range allScale {
		if v >= FavorableThreshold {
			favorable++
		}
	}
	summary.Favorable = generic.Percentage(favorable, len(allScale))

	for _, cat := range generic.SortedKeys(categoryValues) {
		summary.Categories = append(summary.Categories, CategorySummary{
			Category:  cat,
			Average:   generic.AverageInts(categoryValues[cat]),
			Questions: categoryQuestions[cat],
		})
	}
	return summary
}

func scaleAnswers(questionID string, responses []Response) []int {
	var values []int
	for _, r := range responses {
		if v, ok := ScaleValue(r.Answers[questionID]); ok {
			values = append(values, v)
		}
	}
	return values
}

func choiceCounts(q Question, responses []Response) ([]ChoiceCount, int) {
	counts := make(map[string]int, len(q.Options.Choices))
	answered := 0
	for _, r := range responses {
		if v := r.Answers[q.ID]; v != "" {
			counts[v]++
			answered++
		}
	}
	out := make([]ChoiceCount, 0, len(q.Options.Choices))
	for _, c := range q.Options.Choices {
		out = append(out, ChoiceCount{Choice: c, Count: counts[c], Percentage: generic.Percentage(counts[c], answered)})
	}
	return out, answered
}
