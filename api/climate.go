package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
)

func (h *Handler) surveys() resource[climate.Survey, SurveyRequest] {
	return resource[climate.Survey, SurveyRequest]{
		table:  generic.TableSurveys,
		get:    h.Store.GetSurvey,
		save:   h.Store.SaveSurvey,
		remove: h.Store.DeleteSurvey,
		id:     func(s climate.Survey) string { return s.ID },
		toDTO:  func(s climate.Survey) any { return toSurveyDTO(s) },
	}
}

func (h *Handler) questions() resource[climate.Question, QuestionRequest] {
	return resource[climate.Question, QuestionRequest]{
		table:  generic.TableSurveyQuestions,
		get:    h.Store.GetQuestion,
		save:   h.Store.SaveQuestion,
		remove: h.Store.DeleteQuestion,
		id:     func(q climate.Question) string { return q.ID },
		toDTO:  func(q climate.Question) any { return toQuestionDTO(q) },
		prepare: func(ctx context.Context, q *climate.Question) error {
			if q.SurveyID == "" {
				return nil
			}
			if err := exists(ctx, h.Store.GetSurvey, "survey_id", q.SurveyID); err != nil {
				return err
			}
			return h.questionsEditable(ctx, q.SurveyID)
		},
		guard: func(ctx context.Context, q *climate.Question) error {
			return h.questionsEditable(ctx, q.SurveyID)
		},
	}
}

// questionsEditable fails with a conflict once the survey left draft.
func (h *Handler) questionsEditable(ctx context.Context, surveyID string) error {
	s, err := h.surveys().load(ctx, surveyID)
	if err != nil {
		return err
	}
	return s.EditQuestions()
}

// =============================================================================
// SURVEY HANDLERS
// =============================================================================

// ListSurveys supports ?q= and ?status=.
func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListSurveys(r.Context())
	if err == nil {
		q := r.URL.Query()
		items = generic.Filter(items,
			generic.Search(q.Get("q"), func(s climate.Survey) []string { return []string{s.Title, s.Description} }),
			generic.Match(q.Get("status"), func(s climate.Survey) string { return string(s.Status) }),
		)
	}
	listJSON(h, w, r, "list surveys", items, err, toSurveyDTO)
}

// ListSurveyQuestions returns the questions of the survey in the URL.
func (h *Handler) ListSurveyQuestions(w http.ResponseWriter, r *http.Request) {
	h.listQuestions(w, r, urlID(r))
}

// ListQuestions requires ?survey_id=.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		h.fail(w, r, "list questions", fieldError("survey_id", "is required"))
		return
	}
	h.listQuestions(w, r, surveyID)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request, surveyID string) {
	if _, err := h.surveys().load(r.Context(), surveyID); err != nil {
		h.fail(w, r, "list questions", err)
		return
	}
	items, err := h.Store.ListQuestions(r.Context(), surveyID)
	listJSON(h, w, r, "list questions", items, err, toQuestionDTO)
}

// AddSurveyQuestion creates a question under the survey in the URL.
func (h *Handler) AddSurveyQuestion(w http.ResponseWriter, r *http.Request) {
	const op = "add survey question"
	res := h.questions()
	var req QuestionRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	req.SurveyID = urlID(r)
	if err := h.questionsEditable(r.Context(), req.SurveyID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	// Without a position the question goes last.
	if req.Position == 0 {
		existing, err := h.Store.ListQuestions(r.Context(), req.SurveyID)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		req.Position = len(existing) + 1
	}
	var q climate.Question
	if err := res.write(r.Context(), req, &q); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.record(r.Context(), res.table, q.ID, generic.ActionCreated, nil)
	writeJSON(w, http.StatusCreated, toQuestionDTO(q))
}

// =============================================================================
// RESPONSES & SUMMARY
// =============================================================================

// SubmitResponse validates answers against the survey's questions. Named
// responses need a known employee; anonymous surveys drop the employee.
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	const op = "submit survey response"
	var req ResponseRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	resp, err := h.submitResponse(r.Context(), urlID(r), req.EmployeeID, req.Answers)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponseDTO(resp))
}

// submitResponse is shared with survey questionnaire sessions.
func (h *Handler) submitResponse(ctx context.Context, surveyID, employeeID string, answers map[string]string) (climate.Response, error) {
	survey, err := h.surveys().load(ctx, surveyID)
	if err != nil {
		return climate.Response{}, err
	}
	if !survey.Anonymous {
		if err := exists(ctx, h.Store.GetEmployee, "employee_id", employeeID); err != nil {
			return climate.Response{}, err
		}
	}
	questions, err := h.Store.ListQuestions(ctx, surveyID)
	if err != nil {
		return climate.Response{}, err
	}
	resp, err := climate.ValidateResponse(*survey, questions, climate.Response{
		SurveyID:   surveyID,
		EmployeeID: employeeID,
		Answers:    answers,
	}, h.today())
	if err != nil {
		return climate.Response{}, err
	}
	if err := h.Store.SaveResponse(ctx, &resp); err != nil {
		return climate.Response{}, err
	}
	h.record(ctx, generic.TableSurveyResponses, resp.ID, generic.ActionCreated, map[string]any{"survey_id": surveyID})
	return resp, nil
}

func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if _, err := h.surveys().load(r.Context(), id); err != nil {
		h.fail(w, r, "list responses", err)
		return
	}
	items, err := h.Store.ListResponses(r.Context(), id)
	listJSON(h, w, r, "list responses", items, err, toResponseDTO)
}

// GetSurveySummary aggregates the survey's responses. Participation is
// measured against ?invited=, or the active headcount when omitted.
func (h *Handler) GetSurveySummary(w http.ResponseWriter, r *http.Request) {
	const op = "survey summary"
	ctx := r.Context()
	id := urlID(r)
	if _, err := h.surveys().load(ctx, id); err != nil {
		h.fail(w, r, op, err)
		return
	}

	invited, err := h.invited(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	questions, err := h.Store.ListQuestions(ctx, id)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	responses, err := h.Store.ListResponses(ctx, id)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, climate.Summarize(questions, responses, invited))
}

func (h *Handler) invited(r *http.Request) (int, error) {
	if raw := r.URL.Query().Get("invited"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fieldError("invited", "must be a non-negative integer")
		}
		return n, nil
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		return 0, err
	}
	active := 0
	for _, n := range hr.Headcount(employees) {
		active += n
	}
	return active, nil
}
