package sqlite

import (
	"context"
	"fmt"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/strategy"
)

// =============================================================================
// STRATEGIC IDENTITY - One row per company
// =============================================================================

const identityColumns = `id, company_id, mission, vision, values_json, purpose, generated, created_at, updated_at`

// SaveIdentity upserts on company_id. The stored row keeps its original
// id and created_at; the returned identity reflects them.
func (s *Store) SaveIdentity(ctx context.Context, ident *strategy.StrategicIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := ident.Values
	if values == nil {
		values = []string{}
	}
	valuesJSON, err := marshalJSON(values)
	if err != nil {
		return err
	}
	ident.ID = generic.EnsureID(ident.ID)
	ident.Touch(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO strategic_identity (`+identityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id) DO UPDATE SET
			mission = excluded.mission,
			vision = excluded.vision,
			values_json = excluded.values_json,
			purpose = excluded.purpose,
			generated = excluded.generated,
			updated_at = excluded.updated_at
	`, ident.ID, ident.CompanyID, ident.Mission, ident.Vision, valuesJSON, ident.Purpose, ident.Generated,
		formatTime(ident.CreatedAt), formatTime(ident.UpdatedAt))
	if err != nil {
		return saveErr(generic.TableIdentity, err)
	}

	stored, err := queryOne(ctx, s.db, scanIdentity,
		`SELECT `+identityColumns+` FROM strategic_identity WHERE company_id = ?`, ident.CompanyID)
	if err != nil {
		return err
	}
	if stored != nil {
		ident.ID, ident.CreatedAt = stored.ID, stored.CreatedAt
	}
	return nil
}

// GetIdentity returns the company's identity, or nil when none is stored.
func (s *Store) GetIdentity(ctx context.Context, companyID string) (*strategy.StrategicIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanIdentity,
		`SELECT `+identityColumns+` FROM strategic_identity WHERE company_id = ?`, companyID)
}

func (s *Store) DeleteIdentity(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM strategic_identity WHERE company_id = ?`, companyID)
	if err != nil {
		return err
	}
	return requireAffected(res, generic.TableIdentity, companyID)
}

func scanIdentity(row scanner) (strategy.StrategicIdentity, error) {
	var id strategy.StrategicIdentity
	var values, createdAt, updatedAt string
	err := row.Scan(&id.ID, &id.CompanyID, &id.Mission, &id.Vision, &values, &id.Purpose, &id.Generated,
		&createdAt, &updatedAt)
	if err != nil {
		return id, err
	}
	if err := unmarshalJSON(values, &id.Values); err != nil {
		return id, fmt.Errorf("identity %s values: %w", id.ID, err)
	}
	id.CreatedAt, id.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return id, nil
}

// =============================================================================
// STRATEGIC INDICATORS
// =============================================================================

const indicatorColumns = `id, company_id, name, description, perspective, target, unit, frequency, current_value, created_at, updated_at`

const upsertIndicator = `
	INSERT INTO strategic_indicators (` + indicatorColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		company_id = excluded.company_id,
		name = excluded.name,
		description = excluded.description,
		perspective = excluded.perspective,
		target = excluded.target,
		unit = excluded.unit,
		frequency = excluded.frequency,
		current_value = excluded.current_value,
		updated_at = excluded.updated_at
`

func (s *Store) SaveIndicator(ctx context.Context, in *strategy.StrategicIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveErr(generic.TableIndicators, s.execIndicator(ctx, s.db, in))
}

// SaveIndicators stores a generated batch in one transaction.
func (s *Store) SaveIndicators(ctx context.Context, items []*strategy.StrategicIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, in := range items {
		if err := s.execIndicator(ctx, tx, in); err != nil {
			return saveErr(generic.TableIndicators, err)
		}
	}
	return tx.Commit()
}

func (s *Store) execIndicator(ctx context.Context, db execer, in *strategy.StrategicIndicator) error {
	in.ID = generic.EnsureID(in.ID)
	in.Touch(s.now())
	_, err := db.ExecContext(ctx, upsertIndicator,
		in.ID, in.CompanyID, in.Name, in.Description, in.Perspective, in.Target, in.Unit, in.Frequency,
		in.CurrentValue, formatTime(in.CreatedAt), formatTime(in.UpdatedAt))
	return err
}

func (s *Store) GetIndicator(ctx context.Context, id string) (*strategy.StrategicIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanIndicator, `SELECT `+indicatorColumns+` FROM strategic_indicators WHERE id = ?`, id)
}

// ListIndicators returns every indicator, or a single company's when
// companyID is set.
func (s *Store) ListIndicators(ctx context.Context, companyID string) ([]strategy.StrategicIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if companyID == "" {
		return queryAll(ctx, s.db, scanIndicator, `SELECT `+indicatorColumns+` FROM strategic_indicators ORDER BY name`)
	}
	return queryAll(ctx, s.db, scanIndicator,
		`SELECT `+indicatorColumns+` FROM strategic_indicators WHERE company_id = ? ORDER BY name`, companyID)
}

func (s *Store) DeleteIndicator(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableIndicators, id)
}

func scanIndicator(row scanner) (strategy.StrategicIndicator, error) {
	var in strategy.StrategicIndicator
	var createdAt, updatedAt string
	err := row.Scan(&in.ID, &in.CompanyID, &in.Name, &in.Description, &in.Perspective, &in.Target, &in.Unit,
		&in.Frequency, &in.CurrentValue, &createdAt, &updatedAt)
	if err != nil {
		return in, err
	}
	in.CreatedAt, in.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return in, nil
}
