/*
Package questionnaire implements linear multi-step forms.

PURPOSE:
  DISC assessments, the strategic identity interview and climate survey
  responses are all answered one question at a time. A Wizard keeps an
  index into a fixed question list and the answers given so far.

RULES:
  - Next/Previous move one step and clamp to [0, len-1]; they never fail.
  - Answer accepts only known keys; an empty value clears the answer.
  - Complete succeeds once every required key has a non-empty value.
  - There is no branching: the question list never changes mid-session.

PERSISTENCE:
  Session is the stored form of a wizard (index + answers). It is
  rebuilt into a Wizard against the current question list on every
  request.

SEE ALSO:
  - api/questionnaires.go: HTTP endpoints driving sessions
*/
package questionnaire

import (
	"fmt"
	"strings"

	"github.com/warp/business-admin/generic"
)

// Question is one step of a wizard.
type Question struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Choices  []string `json:"choices,omitempty"` // when set, answers must be one of these
}

type Wizard struct {
	Questions    []Question
	CurrentIndex int
	Answers      map[string]string
}

// New creates a wizard positioned on the first question.
func New(questions []Question) *Wizard {
	return &Wizard{Questions: questions, Answers: make(map[string]string)}
}

// Restore rebuilds a wizard from stored state, dropping answers to
// questions that no longer exist and clamping the index.
func Restore(questions []Question, index int, answers map[string]string) *Wizard {
	w := New(questions)
	for _, q := range questions {
		if v, ok := answers[q.Key]; ok && v != "" {
			w.Answers[q.Key] = v
		}
	}
	w.GoTo(index)
	return w
}

// Current returns the question at CurrentIndex.
func (w *Wizard) Current() (Question, bool) {
	if len(w.Questions) == 0 {
		return Question{}, false
	}
	return w.Questions[w.CurrentIndex], true
}

// Next moves forward one step, staying on the last question.
func (w *Wizard) Next() int {
	return w.GoTo(w.CurrentIndex + 1)
}

// Previous moves back one step, staying on the first question.
func (w *Wizard) Previous() int {
	return w.GoTo(w.CurrentIndex - 1)
}

// GoTo jumps to index i, clamped to the question range.
func (w *Wizard) GoTo(i int) int {
	last := len(w.Questions) - 1
	switch {
	case i < 0 || last < 0:
		i = 0
	case i > last:
		i = last
	}
	w.CurrentIndex = i
	return i
}

func (w *Wizard) IsFirst() bool { return w.CurrentIndex == 0 }
func (w *Wizard) IsLast() bool  { return w.CurrentIndex >= len(w.Questions)-1 }

// Answer records value for key.
func (w *Wizard) Answer(key, value string) error {
	q, ok := w.find(key)
	if !ok {
		verr := generic.NewValidationError()
		verr.Add(key, "unknown question")
		return verr
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(w.Answers, key)
		return nil
	}
	if len(q.Choices) > 0 && !contains(q.Choices, value) {
		verr := generic.NewValidationError()
		verr.Add(key, fmt.Sprintf("must be one of: %s", strings.Join(q.Choices, ", ")))
		return verr
	}
	w.Answers[key] = value
	return nil
}

// Missing lists required keys without an answer, in question order.
func (w *Wizard) Missing() []string {
	var missing []string
	for _, q := range w.Questions {
		if q.Required && w.Answers[q.Key] == "" {
			missing = append(missing, q.Key)
		}
	}
	return missing
}

// CanComplete reports whether every required question is answered.
func (w *Wizard) CanComplete() bool {
	return len(w.Missing()) == 0
}

// Complete returns a copy of the answers, or a ValidationError naming
// each missing required key.
func (w *Wizard) Complete() (map[string]string, error) {
	if missing := w.Missing(); len(missing) > 0 {
		verr := generic.NewValidationError()
		for _, k := range missing {
			verr.Add(k, "is required")
		}
		return nil, verr
	}
	out := make(map[string]string, len(w.Answers))
	for k, v := range w.Answers {
		out[k] = v
	}
	return out, nil
}

// Progress is the answered share of all questions, 0-100.
func (w *Wizard) Progress() float64 {
	answered := 0
	for _, q := range w.Questions {
		if w.Answers[q.Key] != "" {
			answered++
		}
	}
	return generic.Percentage(answered, len(w.Questions))
}

func (w *Wizard) find(key string) (Question, bool) {
	for _, q := range w.Questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

func contains(items []string, v string) bool {
	for _, s := range items {
		if s == v {
			return true
		}
	}
	return false
}
