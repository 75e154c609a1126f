package questionnaire

import (
	"github.com/warp/business-admin/generic"
)

// Kind selects which question list a session walks through.
type Kind string

const (
	KindDisc     Kind = "disc"
	KindIdentity Kind = "identity"
	KindSurvey   Kind = "survey"
)

// ParseKind validates a kind from a URL segment.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDisc, KindIdentity, KindSurvey:
		return k, nil
	}
	verr := generic.NewValidationError()
	verr.OneOf("kind", s, string(KindDisc), string(KindIdentity), string(KindSurvey))
	return "", verr
}

// Session is a stored wizard.
//
// SubjectID depends on Kind: the employee being assessed (disc), the
// company (identity) or the survey (survey). RespondentID is the employee
// answering, empty for anonymous surveys.
type Session struct {
	ID           string
	Kind         Kind
	SubjectID    string
	RespondentID string
	CurrentIndex int
	Answers      map[string]string
	Completed    bool
	ResultID     string // record created on completion
	generic.Timestamps
}

// Wizard rebuilds the session's wizard over questions.
func (s Session) Wizard(questions []Question) *Wizard {
	return Restore(questions, s.CurrentIndex, s.Answers)
}

// Save copies wizard state back into the session.
func (s *Session) Save(w *Wizard) {
	s.CurrentIndex = w.CurrentIndex
	s.Answers = make(map[string]string, len(w.Answers))
	for k, v := range w.Answers {
		s.Answers[k] = v
	}
}

// Validate checks a new session before it is stored.
func (s Session) Validate() error {
	verr := generic.NewValidationError()
	verr.Require("kind", string(s.Kind))
	verr.OneOf("kind", string(s.Kind), string(KindDisc), string(KindIdentity), string(KindSurvey))
	verr.Require("subject_id", s.SubjectID)
	return verr.OrNil()
}
