/*
Package sqlite provides the SQLite-backed persistence for every table.

PURPOSE:
  One Store owns the database file. Each feature table gets the same four
  operations, named after the record:

      Save<Record>    insert, or update on id conflict (last write wins)
      Get<Record>     nil, nil when the id does not exist
      List<Records>   every row, in a stable default order
      Delete<Record>  *generic.NotFoundError when nothing was deleted

  Filtering and sorting of list views happens in the domain packages
  (hr.EmployeeQuery etc.) over the listed rows.

SCHEMA:
  Versioned goose migrations embedded from migrations/*.sql, applied on
  New(). Nested values (participants, answers, scores, values, options)
  are JSON text columns. Timestamps are RFC3339 UTC text; calendar dates
  are YYYY-MM-DD; money is decimal text.

UNIQUENESS:
  employees.email, iso_documents.code, strategic_identity.company_id and
  one named response per (survey, employee). Violations are returned as
  generic.ErrConflict.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; SQLite allows a single writer.

USAGE:
  store, err := sqlite.New("./data/business.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - migrations/00001_init.sql: Table definitions
  - generic/store.go: Table names, Timestamps, activity log contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/warp/business-admin/generic"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store implements persistence for all feature tables using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	store, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := store.Migrate(context.Background()); err != nil {
		store.db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Open opens the database without migrating it.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// SetClock replaces the time source used to stamp saved records.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) provider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
}

// Migrate applies pending migrations and returns the resulting version.
func (s *Store) Migrate(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.provider()
	if err != nil {
		return 0, err
	}
	if _, err := p.Up(ctx); err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

// SchemaVersion reports the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.provider()
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

// =============================================================================
// UTILITIES
// =============================================================================

// resetTables lists every data table, children first.
var resetTables = []string{
	generic.TableSurveyResponses,
	generic.TableSurveyQuestions,
	generic.TableSurveys,
	generic.TableSessions,
	generic.TableDisc,
	generic.TableOccurrences,
	generic.TableTraining,
	generic.TableCosts,
	generic.TableIndicators,
	generic.TableIdentity,
	generic.TableRisks,
	generic.TableDocuments,
	generic.TableEmployees,
	generic.TableDepartments,
	"activity_log",
}

// Reset clears all data (for testing/demo). The schema is kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range resetTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Counts returns the number of rows per data table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(resetTables))
	for _, table := range resetTables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and scans every row.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// queryOne returns nil, nil when no row matches.
func queryOne[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// deleteByID removes one row and reports a NotFoundError when none matched.
func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(res, table, id)
}

func requireAffected(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &generic.NotFoundError{Table: table, ID: id}
	}
	return nil
}

// saveErr maps constraint violations onto generic errors.
func saveErr(table string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s: %s", generic.ErrConflict, table, uniqueColumn(err))
	}
	return fmt.Errorf("failed to save %s: %w", table, err)
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseOptionalTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func formatOptionalDate(t *time.Time) sql.NullString {
	return nullString(generic.FormatOptionalDate(t))
}

func parseOptionalDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := generic.ParseOptionalDate(ns.String)
	if err != nil {
		return nil
	}
	return t
}

func parseDate(s string) time.Time {
	t, _ := generic.ParseDate(s)
	return t
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// uniqueColumn extracts "table.column" from a sqlite unique violation.
func uniqueColumn(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		return "duplicate " + msg[i+len("UNIQUE constraint failed: "):]
	}
	return "duplicate value"
}
