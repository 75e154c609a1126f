package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/questionnaire"
)

const sessionColumns = `id, kind, subject_id, respondent_id, current_index, answers_json, completed, result_id, created_at, updated_at`

func (s *Store) SaveSession(ctx context.Context, q *questionnaire.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := q.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	answersJSON, err := marshalJSON(answers)
	if err != nil {
		return err
	}
	q.ID = generic.EnsureID(q.ID)
	q.Touch(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questionnaire_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_index = excluded.current_index,
			answers_json = excluded.answers_json,
			completed = excluded.completed,
			result_id = excluded.result_id,
			updated_at = excluded.updated_at
	`, q.ID, q.Kind, q.SubjectID, nullString(q.RespondentID), q.CurrentIndex, answersJSON, q.Completed,
		nullString(q.ResultID), formatTime(q.CreatedAt), formatTime(q.UpdatedAt))
	return saveErr(generic.TableSessions, err)
}

func (s *Store) GetSession(ctx context.Context, id string) (*questionnaire.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanSession, `SELECT `+sessionColumns+` FROM questionnaire_sessions WHERE id = ?`, id)
}

// ListSessions returns sessions of kind, or all sessions when kind is empty.
func (s *Store) ListSessions(ctx context.Context, kind questionnaire.Kind) ([]questionnaire.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind == "" {
		return queryAll(ctx, s.db, scanSession,
			`SELECT `+sessionColumns+` FROM questionnaire_sessions ORDER BY updated_at DESC`)
	}
	return queryAll(ctx, s.db, scanSession,
		`SELECT `+sessionColumns+` FROM questionnaire_sessions WHERE kind = ? ORDER BY updated_at DESC`, kind)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableSessions, id)
}

func scanSession(row scanner) (questionnaire.Session, error) {
	var q questionnaire.Session
	var respondentID, resultID sql.NullString
	var answers, createdAt, updatedAt string
	err := row.Scan(&q.ID, &q.Kind, &q.SubjectID, &respondentID, &q.CurrentIndex, &answers, &q.Completed,
		&resultID, &createdAt, &updatedAt)
	if err != nil {
		return q, err
	}
	if err := unmarshalJSON(answers, &q.Answers); err != nil {
		return q, fmt.Errorf("session %s answers: %w", q.ID, err)
	}
	if q.Answers == nil {
		q.Answers = map[string]string{}
	}
	q.RespondentID, q.ResultID = respondentID.String, resultID.String
	q.CreatedAt, q.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return q, nil
}
