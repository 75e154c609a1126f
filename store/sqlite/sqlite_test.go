/*
sqlite_test.go - Persistence round trips against an in-memory database

Tests for:
- Upsert and last-write-wins updates
- Unique constraints surfacing as generic.ErrConflict
- Delete reporting missing rows
- Cascading survey deletes and batch saves
- Activity log ordering and filtering
*/
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/warp/business-admin/quality"
	"github.com/warp/business-admin/questionnaire"
	"github.com/warp/business-admin/risk"
	"github.com/warp/business-admin/strategy"
)

var clock = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	store.SetClock(func() time.Time { return clock })
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrating again is a no-op.
	version, err = store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestEmployee_RoundTripAndUpdate(t *testing.T) {
	// GIVEN: A stored employee
	store := newTestStore(t)
	ctx := context.Background()

	e := &hr.Employee{
		Name:     "Ana Souza",
		Email:    "ana@example.com",
		Position: "Analyst",
		HireDate: date(2024, 1, 15),
		Status:   hr.EmployeeActive,
		Salary:   decimal.RequireFromString("5250.50"),
	}
	require.NoError(t, store.SaveEmployee(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.Equal(t, clock, e.CreatedAt)

	// WHEN: It is saved again with a new position
	store.SetClock(func() time.Time { return clock.Add(time.Hour) })
	e.Position = "Senior Analyst"
	require.NoError(t, store.SaveEmployee(ctx, e))

	// THEN: The last write wins and created_at is kept
	got, err := store.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Senior Analyst", got.Position)
	assert.Equal(t, date(2024, 1, 15), got.HireDate)
	assert.True(t, got.Salary.Equal(decimal.RequireFromString("5250.5")))
	assert.Equal(t, clock, got.CreatedAt)
	assert.Equal(t, clock.Add(time.Hour), got.UpdatedAt)
	assert.Empty(t, got.DepartmentID)
}

func TestEmployee_DuplicateEmailConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, &hr.Employee{Name: "A", Email: "same@example.com", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive}))
	err := store.SaveEmployee(ctx, &hr.Employee{Name: "B", Email: "same@example.com", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive})
	assert.ErrorIs(t, err, generic.ErrConflict)

	// Employees without an email never collide.
	require.NoError(t, store.SaveEmployee(ctx, &hr.Employee{Name: "C", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive}))
	require.NoError(t, store.SaveEmployee(ctx, &hr.Employee{Name: "D", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive}))
}

func TestSaveEmployees_IsAtomic(t *testing.T) {
	// GIVEN: A batch whose second row collides with the first
	store := newTestStore(t)
	ctx := context.Background()
	batch := []*hr.Employee{
		{Name: "A", Email: "a@example.com", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive},
		{Name: "B", Email: "a@example.com", HireDate: date(2024, 1, 1), Status: hr.EmployeeActive},
	}

	// WHEN: The batch is saved
	err := store.SaveEmployees(ctx, batch)

	// THEN: Nothing is written
	assert.ErrorIs(t, err, generic.ErrConflict)
	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAndDelete_Missing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetDepartment(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = store.DeleteDepartment(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestTraining_NestedValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	end := date(2026, 2, 3)

	ts := &hr.TrainingSession{
		Title:        "Safety",
		Type:         hr.TrainingInternal,
		StartDate:    date(2026, 2, 2),
		EndDate:      &end,
		Hours:        8,
		Status:       hr.TrainingPlanned,
		Participants: []string{"e1", "e2"},
		Cost:         decimal.NewFromInt(1200),
	}
	require.NoError(t, store.SaveTraining(ctx, ts))

	got, err := store.GetTraining(ctx, ts.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"e1", "e2"}, got.Participants)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, end, *got.EndDate)
	assert.True(t, got.Cost.Equal(decimal.NewFromInt(1200)))
}

func TestSurvey_DeleteCascades(t *testing.T) {
	// GIVEN: A survey with questions and responses
	store := newTestStore(t)
	ctx := context.Background()

	sv := &climate.Survey{Title: "Q1 pulse", Status: climate.SurveyActive}
	require.NoError(t, store.SaveSurvey(ctx, sv))
	q2 := &climate.Question{SurveyID: sv.ID, Text: "Second", Type: climate.QuestionScale, Position: 2}
	q1 := &climate.Question{SurveyID: sv.ID, Text: "First", Type: climate.QuestionChoice, Position: 1,
		Options: climate.Options{Choices: []string{"Yes", "No"}}}
	require.NoError(t, store.SaveQuestion(ctx, q2))
	require.NoError(t, store.SaveQuestion(ctx, q1))
	require.NoError(t, store.SaveResponse(ctx, &climate.Response{SurveyID: sv.ID, EmployeeID: "e1",
		Answers: map[string]string{q1.ID: "Yes", q2.ID: "4"}}))

	questions, err := store.ListQuestions(ctx, sv.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "First", questions[0].Text)
	assert.Equal(t, []string{"Yes", "No"}, questions[0].Options.Choices)

	// WHEN: The survey is deleted
	require.NoError(t, store.DeleteSurvey(ctx, sv.ID))

	// THEN: Its questions and responses are gone too
	questions, err = store.ListQuestions(ctx, sv.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)
	responses, err := store.ListResponses(ctx, sv.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	assert.ErrorIs(t, store.DeleteSurvey(ctx, sv.ID), generic.ErrNotFound)
}

func TestResponse_OnePerNamedEmployee(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveResponse(ctx, &climate.Response{SurveyID: "s1", EmployeeID: "e1", Answers: map[string]string{}}))
	err := store.SaveResponse(ctx, &climate.Response{SurveyID: "s1", EmployeeID: "e1", Answers: map[string]string{}})
	assert.ErrorIs(t, err, generic.ErrConflict)

	// Anonymous responses are not limited.
	require.NoError(t, store.SaveResponse(ctx, &climate.Response{SurveyID: "s1", Answers: map[string]string{}}))
	require.NoError(t, store.SaveResponse(ctx, &climate.Response{SurveyID: "s1", Answers: map[string]string{}}))

	responses, err := store.ListResponses(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, responses, 3)
	assert.Equal(t, clock, responses[0].SubmittedAt)
}

func TestAssessment_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	done := clock

	a := &disc.Assessment{
		EmployeeID:     "e1",
		Scores:         disc.Scores{D: 40, I: 30, S: 20, C: 10},
		PrimaryProfile: disc.FactorD,
		Status:         disc.StatusCompleted,
		CompletedAt:    &done,
	}
	require.NoError(t, store.SaveAssessment(ctx, a))

	got, err := store.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Scores, got.Scores)
	assert.Equal(t, disc.FactorD, got.PrimaryProfile)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, done, *got.CompletedAt)
}

func TestIdentity_UpsertsOnCompany(t *testing.T) {
	// GIVEN: A stored identity for a company
	store := newTestStore(t)
	ctx := context.Background()

	first := &strategy.StrategicIdentity{CompanyID: "acme", Mission: "Old", Values: []string{"Trust"}}
	require.NoError(t, store.SaveIdentity(ctx, first))

	// WHEN: A new identity is saved for the same company
	store.SetClock(func() time.Time { return clock.Add(time.Minute) })
	second := &strategy.StrategicIdentity{CompanyID: "acme", Mission: "New", Values: []string{"Speed", "Care"}, Generated: true}
	require.NoError(t, store.SaveIdentity(ctx, second))

	// THEN: The existing row is replaced in place
	assert.Equal(t, first.ID, second.ID)
	got, err := store.GetIdentity(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New", got.Mission)
	assert.Equal(t, []string{"Speed", "Care"}, got.Values)
	assert.True(t, got.Generated)
	assert.Equal(t, clock, got.CreatedAt)

	missing, err := store.GetIdentity(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIndicators_BatchAndCompanyFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveIndicators(ctx, []*strategy.StrategicIndicator{
		{CompanyID: "acme", Name: "Revenue growth", Perspective: strategy.PerspectiveFinancial},
		{CompanyID: "acme", Name: "NPS", Perspective: strategy.PerspectiveCustomer},
		{CompanyID: "other", Name: "Churn", Perspective: strategy.PerspectiveCustomer},
	}))

	acme, err := store.ListIndicators(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, acme, 2)
	assert.Equal(t, "NPS", acme[0].Name)

	all, err := store.ListIndicators(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRisk_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	review := date(2026, 6, 1)

	r := &risk.Risk{Title: "Supplier failure", Probability: risk.High, Impact: risk.Medium,
		Status: risk.StatusIdentified, ReviewDate: &review}
	require.NoError(t, store.SaveRisk(ctx, r))

	got, err := store.GetRisk(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, risk.High, got.Probability)
	assert.Equal(t, 6, got.Score())
	require.NotNil(t, got.ReviewDate)
	assert.Equal(t, review, *got.ReviewDate)

	require.NoError(t, store.DeleteRisk(ctx, r.ID))
	got, err = store.GetRisk(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocuments_CodeConflictAndDueList(t *testing.T) {
	// GIVEN: Approved documents with past and future review dates
	store := newTestStore(t)
	ctx := context.Background()
	past, future := date(2026, 1, 1), date(2027, 1, 1)

	due := &quality.IsoDocument{Code: "QP-001", Title: "Quality policy", Status: quality.StatusApproved, ReviewDate: &past,
		Attachment: quality.Attachment{Key: "documents/x/policy.pdf", Name: "policy.pdf", Size: 42, ContentType: "application/pdf"}}
	later := &quality.IsoDocument{Code: "QP-002", Title: "Procedure", Status: quality.StatusApproved, ReviewDate: &future}
	draft := &quality.IsoDocument{Code: "QP-003", Title: "Draft", Status: quality.StatusDraft, ReviewDate: &past}
	for _, d := range []*quality.IsoDocument{due, later, draft} {
		require.NoError(t, store.SaveDocument(ctx, d))
	}

	// WHEN: Listing documents due today
	list, err := store.ListDocumentsDue(ctx, date(2026, 3, 10))

	// THEN: Only the approved, overdue document is returned
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "QP-001", list[0].Code)
	assert.Equal(t, due.Attachment, list[0].Attachment)

	err = store.SaveDocument(ctx, &quality.IsoDocument{Code: "QP-001", Title: "Copy", Status: quality.StatusDraft})
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestSession_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := &questionnaire.Session{Kind: questionnaire.KindDisc, SubjectID: "e1", CurrentIndex: 3,
		Answers: map[string]string{"q1": "D"}}
	require.NoError(t, store.SaveSession(ctx, s))

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.CurrentIndex)
	assert.Equal(t, map[string]string{"q1": "D"}, got.Answers)
	assert.Empty(t, got.ResultID)

	list, err := store.ListSessions(ctx, questionnaire.KindIdentity)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestActivity_NewestFirstAndFiltered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, action := range []generic.Action{generic.ActionCreated, generic.ActionUpdated, generic.ActionDeleted} {
		require.NoError(t, store.AppendActivity(ctx, generic.Activity{
			Timestamp: clock.Add(time.Duration(i) * time.Millisecond),
			Table:     generic.TableRisks,
			RecordID:  "r1",
			Action:    action,
			Payload:   map[string]any{"title": "Supplier failure"},
		}))
	}
	require.NoError(t, store.AppendActivity(ctx, generic.Activity{Table: generic.TableEmployees, RecordID: "e1", Action: generic.ActionImported}))

	entries, err := store.ListActivity(ctx, generic.ActivityFilter{Table: generic.TableRisks, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, generic.ActionDeleted, entries[0].Action)
	assert.Equal(t, generic.ActionUpdated, entries[1].Action)
	assert.Equal(t, "Supplier failure", entries[0].Payload["title"])

	all, err := store.ListActivity(ctx, generic.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestReset_ClearsEveryTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDepartment(ctx, &hr.Department{Name: "Ops", Status: hr.DepartmentActive}))
	require.NoError(t, store.SaveRisk(ctx, &risk.Risk{Title: "R", Probability: risk.Low, Impact: risk.Low, Status: risk.StatusIdentified}))

	require.NoError(t, store.Reset(ctx))

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, table)
	}
}
