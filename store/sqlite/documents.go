package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/quality"
)

const documentColumns = `id, code, title, standard, version, status, owner_id, review_date,
	attachment_key, attachment_name, attachment_size, attachment_type, created_at, updated_at`

// SaveDocument upserts on id. A duplicate code returns generic.ErrConflict.
func (s *Store) SaveDocument(ctx context.Context, d *quality.IsoDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = generic.EnsureID(d.ID)
	d.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO iso_documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			title = excluded.title,
			standard = excluded.standard,
			version = excluded.version,
			status = excluded.status,
			owner_id = excluded.owner_id,
			review_date = excluded.review_date,
			attachment_key = excluded.attachment_key,
			attachment_name = excluded.attachment_name,
			attachment_size = excluded.attachment_size,
			attachment_type = excluded.attachment_type,
			updated_at = excluded.updated_at
	`, d.ID, d.Code, d.Title, d.Standard, d.Version, d.Status, nullString(d.OwnerID),
		formatOptionalDate(d.ReviewDate),
		nullString(d.Attachment.Key), nullString(d.Attachment.Name), d.Attachment.Size, nullString(d.Attachment.ContentType),
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	return saveErr(generic.TableDocuments, err)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*quality.IsoDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanDocument, `SELECT `+documentColumns+` FROM iso_documents WHERE id = ?`, id)
}

func (s *Store) ListDocuments(ctx context.Context) ([]quality.IsoDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanDocument, `SELECT `+documentColumns+` FROM iso_documents ORDER BY code`)
}

// ListDocumentsDue returns approved documents whose review date is on or
// before day, soonest first.
func (s *Store) ListDocumentsDue(ctx context.Context, day time.Time) ([]quality.IsoDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanDocument, `
		SELECT `+documentColumns+` FROM iso_documents
		WHERE status = ? AND review_date IS NOT NULL AND review_date <= ?
		ORDER BY review_date, code
	`, quality.StatusApproved, generic.FormatDate(day))
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableDocuments, id)
}

func scanDocument(row scanner) (quality.IsoDocument, error) {
	var d quality.IsoDocument
	var ownerID, reviewDate, key, name, contentType sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.Code, &d.Title, &d.Standard, &d.Version, &d.Status, &ownerID, &reviewDate,
		&key, &name, &d.Attachment.Size, &contentType, &createdAt, &updatedAt)
	if err != nil {
		return d, err
	}
	d.OwnerID = ownerID.String
	d.ReviewDate = parseOptionalDate(reviewDate)
	d.Attachment.Key, d.Attachment.Name, d.Attachment.ContentType = key.String, name.String, contentType.String
	d.CreatedAt, d.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return d, nil
}
