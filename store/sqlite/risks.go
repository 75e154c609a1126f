package sqlite

import (
	"context"
	"database/sql"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/risk"
)

const riskColumns = `id, title, description, category, probability, impact, status, owner_id, mitigation, review_date, created_at, updated_at`

func (s *Store) SaveRisk(ctx context.Context, r *risk.Risk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = generic.EnsureID(r.ID)
	r.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risks (`+riskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			probability = excluded.probability,
			impact = excluded.impact,
			status = excluded.status,
			owner_id = excluded.owner_id,
			mitigation = excluded.mitigation,
			review_date = excluded.review_date,
			updated_at = excluded.updated_at
	`, r.ID, r.Title, r.Description, r.Category, r.Probability, r.Impact, r.Status, nullString(r.OwnerID),
		r.Mitigation, formatOptionalDate(r.ReviewDate), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	return saveErr(generic.TableRisks, err)
}

func (s *Store) GetRisk(ctx context.Context, id string) (*risk.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanRisk, `SELECT `+riskColumns+` FROM risks WHERE id = ?`, id)
}

func (s *Store) ListRisks(ctx context.Context) ([]risk.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanRisk, `SELECT `+riskColumns+` FROM risks ORDER BY created_at`)
}

func (s *Store) DeleteRisk(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableRisks, id)
}

func scanRisk(row scanner) (risk.Risk, error) {
	var r risk.Risk
	var ownerID, reviewDate sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Category, &r.Probability, &r.Impact, &r.Status,
		&ownerID, &r.Mitigation, &reviewDate, &createdAt, &updatedAt)
	if err != nil {
		return r, err
	}
	r.OwnerID = ownerID.String
	r.ReviewDate = parseOptionalDate(reviewDate)
	r.CreatedAt, r.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return r, nil
}
