/*
store.go - Shared persistence vocabulary for every feature table

PURPOSE:
  Every feature module stores flat records in a named table and goes
  through the same lifecycle: insert on form submission, select on read,
  update on form submission, delete after confirmation. This file holds
  what those tables share: table names, record timestamps, ID generation
  and the activity log that records each mutation.

LAST WRITE WINS:
  Updates replace the whole row. There is no optimistic locking; two
  sessions editing the same record resolve to whichever saves last.

ACTIVITY LOG:
  Append-only, like the rest of the audit trail. One entry per insert,
  update or delete, carrying the table, record ID and a small payload.

SEE ALSO:
  - store/sqlite/sqlite.go: Concrete implementation
  - api/handlers.go: Records activity after successful writes
*/
package generic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Table names as exposed to clients and stored in the activity log.
const (
	TableDepartments     = "departments"
	TableEmployees       = "employees"
	TableOccurrences     = "occurrences"
	TableTraining        = "training_sessions"
	TableSurveys         = "climate_surveys"
	TableSurveyQuestions = "climate_survey_questions"
	TableSurveyResponses = "climate_survey_responses"
	TableDisc            = "disc_assessments"
	TableCosts           = "employee_costs"
	TableIdentity        = "strategic_identity"
	TableIndicators      = "strategic_indicators"
	TableRisks           = "risks"
	TableDocuments       = "iso_documents"
	TableSessions        = "questionnaire_sessions"
)

// Timestamps are carried by every stored record.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps UpdatedAt, and CreatedAt on first save.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// NewID generates a record identifier.
func NewID() string {
	return uuid.NewString()
}

// EnsureID returns id, or a fresh identifier when id is empty.
func EnsureID(id string) string {
	if id == "" {
		return NewID()
	}
	return id
}

// =============================================================================
// ACTIVITY LOG - who changed which record when
// =============================================================================

type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionImported  Action = "imported"
	ActionGenerated Action = "generated"
)

// Activity records a single mutation.
type Activity struct {
	ID        string
	Timestamp time.Time
	Table     string
	RecordID  string
	Action    Action
	Payload   map[string]any
}

// ActivityLog stores activity entries. Append-only.
type ActivityLog interface {
	AppendActivity(ctx context.Context, a Activity) error
	ListActivity(ctx context.Context, filter ActivityFilter) ([]Activity, error)
}

// ActivityFilter narrows ListActivity. Zero values mean "any".
type ActivityFilter struct {
	Table    string
	RecordID string
	Limit    int
}
