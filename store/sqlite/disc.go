package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
)

const discColumns = `id, employee_id, scores_json, primary_profile, status, completed_at, notes, created_at, updated_at`

func (s *Store) SaveAssessment(ctx context.Context, a *disc.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores, err := marshalJSON(a.Scores)
	if err != nil {
		return err
	}
	a.ID = generic.EnsureID(a.ID)
	a.Touch(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO disc_assessments (`+discColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			scores_json = excluded.scores_json,
			primary_profile = excluded.primary_profile,
			status = excluded.status,
			completed_at = excluded.completed_at,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, a.ID, a.EmployeeID, scores, a.PrimaryProfile, a.Status, formatOptionalTime(a.CompletedAt), a.Notes,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	return saveErr(generic.TableDisc, err)
}

func (s *Store) GetAssessment(ctx context.Context, id string) (*disc.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanAssessment, `SELECT `+discColumns+` FROM disc_assessments WHERE id = ?`, id)
}

// ListAssessments returns every assessment, newest first.
func (s *Store) ListAssessments(ctx context.Context) ([]disc.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanAssessment, `SELECT `+discColumns+` FROM disc_assessments ORDER BY created_at DESC`)
}

func (s *Store) DeleteAssessment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableDisc, id)
}

func scanAssessment(row scanner) (disc.Assessment, error) {
	var a disc.Assessment
	var completedAt sql.NullString
	var scores, createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.EmployeeID, &scores, &a.PrimaryProfile, &a.Status, &completedAt, &a.Notes,
		&createdAt, &updatedAt)
	if err != nil {
		return a, err
	}
	if err := unmarshalJSON(scores, &a.Scores); err != nil {
		return a, fmt.Errorf("assessment %s scores: %w", a.ID, err)
	}
	a.CompletedAt = parseOptionalTime(completedAt)
	a.CreatedAt, a.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return a, nil
}
