package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/generic"
)

// =============================================================================
// SURVEYS
// =============================================================================

const surveyColumns = `id, title, description, status, start_date, end_date, anonymous, created_at, updated_at`

func (s *Store) SaveSurvey(ctx context.Context, sv *climate.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv.ID = generic.EnsureID(sv.ID)
	sv.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO climate_surveys (`+surveyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			anonymous = excluded.anonymous,
			updated_at = excluded.updated_at
	`, sv.ID, sv.Title, sv.Description, sv.Status, formatOptionalDate(sv.StartDate), formatOptionalDate(sv.EndDate),
		sv.Anonymous, formatTime(sv.CreatedAt), formatTime(sv.UpdatedAt))
	return saveErr(generic.TableSurveys, err)
}

func (s *Store) GetSurvey(ctx context.Context, id string) (*climate.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanSurvey, `SELECT `+surveyColumns+` FROM climate_surveys WHERE id = ?`, id)
}

func (s *Store) ListSurveys(ctx context.Context) ([]climate.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanSurvey, `SELECT `+surveyColumns+` FROM climate_surveys ORDER BY created_at DESC`)
}

// DeleteSurvey removes the survey together with its questions and responses.
func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM climate_surveys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, generic.TableSurveys, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM climate_survey_questions WHERE survey_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM climate_survey_responses WHERE survey_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanSurvey(row scanner) (climate.Survey, error) {
	var sv climate.Survey
	var startDate, endDate sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&sv.ID, &sv.Title, &sv.Description, &sv.Status, &startDate, &endDate,
		&sv.Anonymous, &createdAt, &updatedAt)
	if err != nil {
		return sv, err
	}
	sv.StartDate, sv.EndDate = parseOptionalDate(startDate), parseOptionalDate(endDate)
	sv.CreatedAt, sv.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return sv, nil
}

// =============================================================================
// QUESTIONS
// =============================================================================

const questionColumns = `id, survey_id, text, type, category, options_json, required, position, created_at, updated_at`

func (s *Store) SaveQuestion(ctx context.Context, q *climate.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	options, err := marshalJSON(q.Options)
	if err != nil {
		return err
	}
	q.ID = generic.EnsureID(q.ID)
	q.Touch(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO climate_survey_questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			survey_id = excluded.survey_id,
			text = excluded.text,
			type = excluded.type,
			category = excluded.category,
			options_json = excluded.options_json,
			required = excluded.required,
			position = excluded.position,
			updated_at = excluded.updated_at
	`, q.ID, q.SurveyID, q.Text, q.Type, q.Category, options, q.Required, q.Position,
		formatTime(q.CreatedAt), formatTime(q.UpdatedAt))
	return saveErr(generic.TableSurveyQuestions, err)
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*climate.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanQuestion, `SELECT `+questionColumns+` FROM climate_survey_questions WHERE id = ?`, id)
}

// ListQuestions returns a survey's questions in display order.
func (s *Store) ListQuestions(ctx context.Context, surveyID string) ([]climate.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanQuestion,
		`SELECT `+questionColumns+` FROM climate_survey_questions WHERE survey_id = ? ORDER BY position, created_at`, surveyID)
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableSurveyQuestions, id)
}

func scanQuestion(row scanner) (climate.Question, error) {
	var q climate.Question
	var options, createdAt, updatedAt string
	err := row.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &q.Category, &options, &q.Required, &q.Position,
		&createdAt, &updatedAt)
	if err != nil {
		return q, err
	}
	if err := unmarshalJSON(options, &q.Options); err != nil {
		return q, fmt.Errorf("question %s options: %w", q.ID, err)
	}
	q.CreatedAt, q.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return q, nil
}

// =============================================================================
// RESPONSES
// =============================================================================

const responseColumns = `id, survey_id, employee_id, answers_json, submitted_at`

// SaveResponse stores a new response. A second named response from the
// same employee to the same survey returns generic.ErrConflict.
func (s *Store) SaveResponse(ctx context.Context, r *climate.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers, err := marshalJSON(r.Answers)
	if err != nil {
		return err
	}
	r.ID = generic.EnsureID(r.ID)
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO climate_survey_responses (`+responseColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.SurveyID, nullString(r.EmployeeID), answers, formatTime(r.SubmittedAt))
	return saveErr(generic.TableSurveyResponses, err)
}

// ListResponses returns a survey's responses, oldest first.
func (s *Store) ListResponses(ctx context.Context, surveyID string) ([]climate.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanResponse,
		`SELECT `+responseColumns+` FROM climate_survey_responses WHERE survey_id = ? ORDER BY submitted_at`, surveyID)
}

func (s *Store) DeleteResponse(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableSurveyResponses, id)
}

func scanResponse(row scanner) (climate.Response, error) {
	var r climate.Response
	var employeeID sql.NullString
	var answers, submittedAt string
	if err := row.Scan(&r.ID, &r.SurveyID, &employeeID, &answers, &submittedAt); err != nil {
		return r, err
	}
	if err := unmarshalJSON(answers, &r.Answers); err != nil {
		return r, fmt.Errorf("response %s answers: %w", r.ID, err)
	}
	r.EmployeeID = employeeID.String
	r.SubmittedAt = parseTime(submittedAt)
	return r, nil
}
