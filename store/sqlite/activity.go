package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/warp/business-admin/generic"
)

// defaultActivityLimit caps ListActivity when the filter sets no limit.
const defaultActivityLimit = 100

// activityTimeLayout keeps a fixed fraction width so ts sorts as text.
const activityTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ generic.ActivityLog = (*Store)(nil)

func (s *Store) AppendActivity(ctx context.Context, a generic.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload sql.NullString
	if len(a.Payload) > 0 {
		b, err := marshalJSON(a.Payload)
		if err != nil {
			return err
		}
		payload = sql.NullString{String: b, Valid: true}
	}
	a.ID = generic.EnsureID(a.ID)
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, ts, table_name, record_id, action, payload_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Timestamp.UTC().Format(activityTimeLayout), a.Table, a.RecordID, a.Action, payload)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// ListActivity returns entries newest first.
func (s *Store) ListActivity(ctx context.Context, filter generic.ActivityFilter) ([]generic.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.Table != "" {
		where = append(where, "table_name = ?")
		args = append(args, filter.Table)
	}
	if filter.RecordID != "" {
		where = append(where, "record_id = ?")
		args = append(args, filter.RecordID)
	}
	query := `SELECT id, ts, table_name, record_id, action, payload_json FROM activity_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	query += " ORDER BY ts DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	return queryAll(ctx, s.db, scanActivity, query, args...)
}

func scanActivity(row scanner) (generic.Activity, error) {
	var a generic.Activity
	var ts string
	var payload sql.NullString
	if err := row.Scan(&a.ID, &ts, &a.Table, &a.RecordID, &a.Action, &payload); err != nil {
		return a, err
	}
	a.Timestamp = parseTime(ts)
	if payload.Valid {
		if err := unmarshalJSON(payload.String, &a.Payload); err != nil {
			return a, fmt.Errorf("activity %s payload: %w", a.ID, err)
		}
	}
	return a, nil
}
