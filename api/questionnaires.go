/*
questionnaires.go - Stored multi-step wizards for the three interviews

PURPOSE:
  Drives questionnaire.Wizard over HTTP. Each request restores the wizard
  from the stored session, applies one step and saves it back, so a user
  can leave and resume.

KINDS:
  disc      SubjectID = employee assessed. Completion stores a DISC assessment.
  identity  SubjectID = company. Completion generates and stores the
            strategic identity.
  survey    SubjectID = climate survey, RespondentID = employee answering.
            Completion stores a survey response.

SEE ALSO:
  - questionnaire/: the wizard state machine
  - climate.go, strategy.go: completion side effects shared with the
    direct endpoints
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/questionnaire"
	"github.com/warp/business-admin/strategy"
)

// scaleChoices are the accepted answers of a scale question.
var scaleChoices = []string{"1", "2", "3", "4", "5"}

// surveyWizardQuestions maps climate questions onto wizard steps keyed
// by question id.
func surveyWizardQuestions(questions []climate.Question) []questionnaire.Question {
	out := make([]questionnaire.Question, len(questions))
	for i, q := range questions {
		wq := questionnaire.Question{Key: q.ID, Label: q.Text, Required: q.Required}
		switch q.Type {
		case climate.QuestionScale:
			wq.Choices = scaleChoices
		case climate.QuestionChoice:
			wq.Choices = q.Options.Choices
		}
		out[i] = wq
	}
	return out
}

// wizardQuestions returns the question list a session walks through.
func (h *Handler) wizardQuestions(ctx context.Context, s questionnaire.Session) ([]questionnaire.Question, error) {
	switch s.Kind {
	case questionnaire.KindDisc:
		return disc.WizardQuestions(), nil
	case questionnaire.KindIdentity:
		return strategy.IdentityQuestions, nil
	case questionnaire.KindSurvey:
		questions, err := h.Store.ListQuestions(ctx, s.SubjectID)
		if err != nil {
			return nil, err
		}
		return surveyWizardQuestions(questions), nil
	}
	return nil, fmt.Errorf("%w: unknown questionnaire kind %q", generic.ErrValidation, s.Kind)
}

// checkSubject verifies the session points at something that exists.
func (h *Handler) checkSubject(ctx context.Context, s questionnaire.Session) error {
	switch s.Kind {
	case questionnaire.KindDisc:
		return exists(ctx, h.Store.GetEmployee, "subject_id", s.SubjectID)
	case questionnaire.KindSurvey:
		survey, err := h.surveys().load(ctx, s.SubjectID)
		if err != nil {
			return err
		}
		if !survey.AcceptsResponses(h.today()) {
			return fieldError("subject_id", "survey is not accepting responses")
		}
		if !survey.Anonymous {
			if s.RespondentID == "" {
				return fieldError("respondent_id", "is required for named surveys")
			}
			return exists(ctx, h.Store.GetEmployee, "respondent_id", s.RespondentID)
		}
	}
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

// CreateSession starts a wizard of the kind in the URL.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "create session"
	ctx := r.Context()
	kind, err := questionnaire.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	var req SessionRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	s := questionnaire.Session{
		Kind:         kind,
		SubjectID:    req.SubjectID,
		RespondentID: req.RespondentID,
		Answers:      map[string]string{},
	}
	if err := s.Validate(); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.checkSubject(ctx, s); err != nil {
		h.fail(w, r, op, err)
		return
	}
	questions, err := h.wizardQuestions(ctx, s)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if len(questions) == 0 {
		h.fail(w, r, op, fieldError("subject_id", "has no questions"))
		return
	}
	if err := h.Store.SaveSession(ctx, &s); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.record(ctx, generic.TableSessions, s.ID, generic.ActionCreated, map[string]any{"kind": string(kind)})
	writeJSON(w, http.StatusCreated, toSessionDTO(s, s.Wizard(questions)))
}

// ListSessions supports ?kind=.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	const op = "list sessions"
	ctx := r.Context()
	var kind questionnaire.Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := questionnaire.ParseKind(raw)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		kind = k
	}
	sessions, err := h.Store.ListSessions(ctx, kind)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	out := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		questions, err := h.wizardQuestions(ctx, s)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		out = append(out, toSessionDTO(s, s.Wizard(questions)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "get session", false, func(*questionnaire.Wizard) error { return nil })
}

// AnswerSession records one answer, optionally advancing.
func (h *Handler) AnswerSession(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "answer session", err)
		return
	}
	h.step(w, r, "answer session", true, func(wz *questionnaire.Wizard) error {
		if err := wz.Answer(req.Key, req.Value); err != nil {
			return err
		}
		if req.Advance {
			wz.Next()
		}
		return nil
	})
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "next question", true, func(wz *questionnaire.Wizard) error {
		wz.Next()
		return nil
	})
}

func (h *Handler) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "previous question", true, func(wz *questionnaire.Wizard) error {
		wz.Previous()
		return nil
	})
}

// GoToQuestion jumps to ?index= or a JSON {"index": n} body.
func (h *Handler) GoToQuestion(w http.ResponseWriter, r *http.Request) {
	var req GoToRequest
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(w, r, "go to question", fieldError("index", "must be a non-negative integer"))
			return
		}
		req.Index = n
	} else if err := decode(r, &req); err != nil {
		h.fail(w, r, "go to question", err)
		return
	}
	h.step(w, r, "go to question", true, func(wz *questionnaire.Wizard) error {
		wz.GoTo(req.Index)
		return nil
	})
}

// step loads the session, applies fn to its wizard and, when mutate is
// set, saves the result. Completed sessions are read-only.
func (h *Handler) step(w http.ResponseWriter, r *http.Request, op string, mutate bool, fn func(*questionnaire.Wizard) error) {
	ctx := r.Context()
	s, wz, err := h.loadSession(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if mutate && s.Completed {
		h.fail(w, r, op, fmt.Errorf("%w: session %s is already completed", generic.ErrConflict, s.ID))
		return
	}
	if err := fn(wz); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if mutate {
		s.Save(wz)
		if err := h.Store.SaveSession(ctx, s); err != nil {
			h.fail(w, r, op, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toSessionDTO(*s, wz))
}

func (h *Handler) loadSession(ctx context.Context, id string) (*questionnaire.Session, *questionnaire.Wizard, error) {
	s, err := h.Store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, &generic.NotFoundError{Table: generic.TableSessions, ID: id}
	}
	questions, err := h.wizardQuestions(ctx, *s)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Wizard(questions), nil
}

// CompleteSession finishes the wizard and stores what it produced.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "complete session"
	ctx := r.Context()
	s, wz, err := h.loadSession(ctx, urlID(r))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if s.Completed {
		h.fail(w, r, op, fmt.Errorf("%w: session %s is already completed", generic.ErrConflict, s.ID))
		return
	}
	answers, err := wz.Complete()
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	resultID, err := h.completeSession(ctx, *s, answers)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	s.Save(wz)
	s.Completed, s.ResultID = true, resultID
	if err := h.Store.SaveSession(ctx, s); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.record(ctx, generic.TableSessions, s.ID, generic.ActionUpdated, map[string]any{"completed": true, "result_id": resultID})
	writeJSON(w, http.StatusOK, toSessionDTO(*s, wz))
}

// completeSession stores the kind's result and returns its id.
func (h *Handler) completeSession(ctx context.Context, s questionnaire.Session, answers map[string]string) (string, error) {
	switch s.Kind {
	case questionnaire.KindDisc:
		scores, err := disc.Score(answers)
		if err != nil {
			return "", err
		}
		a := disc.Assessment{EmployeeID: s.SubjectID, Scores: scores, Status: disc.StatusCompleted}
		a.Finalize(h.now())
		if err := a.Validate(); err != nil {
			return "", err
		}
		if err := h.Store.SaveAssessment(ctx, &a); err != nil {
			return "", err
		}
		h.record(ctx, generic.TableDisc, a.ID, generic.ActionCreated, map[string]any{"session_id": s.ID})
		return a.ID, nil

	case questionnaire.KindIdentity:
		ident, err := h.generateIdentity(ctx, strategy.IdentityInputFromAnswers(s.SubjectID, answers))
		if err != nil {
			return "", err
		}
		return ident.ID, nil

	case questionnaire.KindSurvey:
		resp, err := h.submitResponse(ctx, s.SubjectID, s.RespondentID, answers)
		if err != nil {
			return "", err
		}
		return resp.ID, nil
	}
	return "", fmt.Errorf("%w: unknown questionnaire kind %q", generic.ErrValidation, s.Kind)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if err := h.Store.DeleteSession(r.Context(), id); err != nil {
		h.fail(w, r, "delete session", err)
		return
	}
	h.record(r.Context(), generic.TableSessions, id, generic.ActionDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}
