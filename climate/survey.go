/*
Package climate implements organisational climate surveys.

PURPOSE:
  A survey has an ordered list of questions (1-5 scale, single choice or
  free text) and collects responses from employees. The dashboard shows
  per-question averages and distributions, per-category averages and an
  overall favourability score.

LIFECYCLE:
  draft -> active -> closed. Responses are only accepted while active.
  Questions may only be edited while the survey is a draft.

ANONYMITY:
  For anonymous surveys the employee reference is dropped before the
  response is stored.

SEE ALSO:
  - summary.go: Aggregation
  - questionnaire/: Multi-step answering sessions
*/
package climate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warp/business-admin/generic"
)

type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

type Survey struct {
	ID          string
	Title       string
	Description string
	Status      SurveyStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Anonymous   bool
	generic.Timestamps
}

type QuestionType string

const (
	QuestionScale  QuestionType = "scale"
	QuestionChoice QuestionType = "choice"
	QuestionText   QuestionType = "text"
)

// Options is the JSON payload stored alongside choice questions.
type Options struct {
	Choices []string `json:"choices,omitempty"`
}

type Question struct {
	ID       string
	SurveyID string
	Text     string
	Type     QuestionType
	Category string
	Options  Options
	Required bool
	Position int
	generic.Timestamps
}

// Response maps question IDs to the submitted value. Scale answers are
// the decimal digits "1".."5"; choice answers are the choice label.
type Response struct {
	ID          string
	SurveyID    string
	EmployeeID  string
	Answers     map[string]string
	SubmittedAt time.Time
}

// =============================================================================
// VALIDATION
// =============================================================================

func (s Survey) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("title", s.Title)
	verr.OneOf("status", string(s.Status), string(SurveyDraft), string(SurveyActive), string(SurveyClosed))
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		verr.Add("end_date", "must not be before start_date")
	}
	return verr.OrNil()
}

func (q Question) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("survey_id", q.SurveyID)
	verr.Require("text", q.Text)
	verr.Require("type", string(q.Type))
	verr.OneOf("type", string(q.Type), string(QuestionScale), string(QuestionChoice), string(QuestionText))
	if q.Type == QuestionChoice && len(nonBlank(q.Options.Choices)) < 2 {
		verr.Add("options", "choice questions need at least 2 choices")
	}
	if q.Position < 0 {
		verr.Add("position", "must not be negative")
	}
	return verr.OrNil()
}

// CanTransition reports whether a survey may move from one status to another.
func CanTransition(from, to SurveyStatus) bool {
	switch from {
	case SurveyDraft:
		return to == SurveyActive
	case SurveyActive:
		return to == SurveyClosed
	}
	return false
}

// Transition moves the survey to status or returns a TransitionError.
func (s *Survey) Transition(to SurveyStatus) error {
	if s.Status == to {
		return nil
	}
	if !CanTransition(s.Status, to) {
		return &generic.TransitionError{From: string(s.Status), To: string(to)}
	}
	s.Status = to
	return nil
}

// EditQuestions returns ErrConflict unless the survey is still a draft.
func (s Survey) EditQuestions() error {
	if s.Status != SurveyDraft {
		return fmt.Errorf("%w: questions of %s survey %s are locked", generic.ErrConflict, s.Status, s.ID)
	}
	return nil
}

// AcceptsResponses reports whether the survey is open on day.
func (s Survey) AcceptsResponses(day time.Time) bool {
	if s.Status != SurveyActive {
		return false
	}
	period := generic.Period{}
	if s.StartDate != nil {
		period.Start = *s.StartDate
	}
	if s.EndDate != nil {
		period.End = *s.EndDate
	}
	return period.Contains(day)
}

// ValidateResponse checks a response against the survey's questions and
// returns it ready to store (anonymised when required).
func ValidateResponse(s Survey, questions []Question, r Response, day time.Time) (Response, error) {
	if !s.AcceptsResponses(day) {
		verr := generic.NewValidationError()
		verr.Add("survey_id", "survey is not accepting responses")
		return r, verr
	}

	verr := generic.NewValidationError()
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	clean := make(map[string]string, len(r.Answers))
	for id, raw := range r.Answers {
		q, ok := byID[id]
		if !ok {
			verr.Add("answers."+id, "unknown question")
			continue
		}
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if msg := checkAnswer(q, value); msg != "" {
			verr.Add("answers."+id, msg)
			continue
		}
		clean[id] = value
	}
	for _, q := range questions {
		if _, ok := clean[q.ID]; q.Required && !ok {
			verr.Add("answers."+q.ID, "is required")
		}
	}
	if verr.HasErrors() {
		return r, verr
	}

	r.SurveyID = s.ID
	r.Answers = clean
	if s.Anonymous {
		r.EmployeeID = ""
	}
	return r, nil
}

func checkAnswer(q Question, value string) string {
	switch q.Type {
	case QuestionScale:
		if _, ok := ScaleValue(value); !ok {
			return fmt.Sprintf("must be an integer from %d to %d", generic.ScaleMin, generic.ScaleMax)
		}
	case QuestionChoice:
		for _, c := range q.Options.Choices {
			if c == value {
				return ""
			}
		}
		return "must be one of the question's choices"
	}
	return ""
}

// ScaleValue parses a 1-5 answer.
func ScaleValue(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < generic.ScaleMin || n > generic.ScaleMax {
		return 0, false
	}
	return n, true
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
