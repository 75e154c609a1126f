/*
datasets.go - Demo dataset loaders for testing and demonstrations

PURPOSE:

	Provides pre-built datasets that populate the database with realistic
	records so every screen has something to show. Dates are relative to
	the handler's clock, so overdue reviews and open surveys stay overdue
	and open whenever the dataset is loaded.

AVAILABLE DATASETS:

	hr-basics:     Departments, employees, occurrences, training, costs
	people:        hr-basics + a climate survey with responses + DISC
	quality-risk:  hr-basics + risk register + ISO documents (one overdue)
	full-company:  Everything, including strategic identity and indicators

HOW DATASETS WORK:
 1. Reset database (clear all data)
 2. Seed the HR base every dataset depends on
 3. Seed the dataset's own modules through the store

USAGE VIA API:

	POST /api/demo/load
	{"dataset_id": "quality-risk"}

ADDING NEW DATASETS:
 1. Add to 'datasets' slice with ID, name, description, modules
 2. Add its seed functions to 'datasetSeeds'

NOTE:

	Datasets reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
  - strategy/template.go: offline identity and indicator drafts
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/warp/business-admin/quality"
	"github.com/warp/business-admin/risk"
	"github.com/warp/business-admin/strategy"
)

// DemoCompanyID owns the strategy records of the demo datasets.
const DemoCompanyID = "acme"

// =============================================================================
// DATASET DEFINITIONS
// =============================================================================

var datasets = []DatasetDTO{
	{
		ID:          "hr-basics",
		Name:        "HR Basics",
		Description: "Four departments, ten employees, occurrences, training sessions and six months of costs.",
		Modules:     []string{"hr"},
	},
	{
		ID:          "people",
		Name:        "People & Climate",
		Description: "HR basics plus an active climate survey with responses and DISC assessments.",
		Modules:     []string{"hr", "climate", "disc"},
	},
	{
		ID:          "quality-risk",
		Name:        "Quality & Risk",
		Description: "HR basics plus a risk register and ISO documents, one of them past its review date.",
		Modules:     []string{"hr", "risks", "quality"},
	},
	{
		ID:          "full-company",
		Name:        "Full Company",
		Description: "Every module, including the strategic identity and balanced-scorecard indicators.",
		Modules:     []string{"hr", "climate", "disc", "strategy", "risks", "quality"},
	},
}

type seedFunc func(*seeder) error

var datasetSeeds = map[string][]seedFunc{
	"hr-basics":    {seedHR},
	"people":       {seedHR, seedClimate, seedDisc},
	"quality-risk": {seedHR, seedRisks, seedDocuments},
	"full-company": {seedHR, seedClimate, seedDisc, seedStrategy, seedRisks, seedDocuments},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListDatasets returns available demo datasets.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, datasets)
}

// GetCurrentDataset returns the currently loaded dataset, or null.
func (h *Handler) GetCurrentDataset(w http.ResponseWriter, r *http.Request) {
	current := h.getCurrentDataset()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, d := range datasets {
		if d.ID == current {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusOK, DatasetDTO{ID: current, Name: current, Modules: []string{}})
}

// LoadDataset resets the database and loads a predefined dataset.
func (h *Handler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	const op = "load dataset"
	var req LoadDatasetRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	seeds, ok := datasetSeeds[req.DatasetID]
	if !ok {
		h.fail(w, r, op, fieldError("dataset_id", fmt.Sprintf("unknown dataset %q", req.DatasetID)))
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.setCurrentDataset("")

	s := &seeder{ctx: ctx, h: h, today: h.today()}
	for _, seed := range seeds {
		if err := seed(s); err != nil {
			h.fail(w, r, op, fmt.Errorf("failed to load dataset %s: %w", req.DatasetID, err))
			return
		}
	}
	h.setCurrentDataset(req.DatasetID)

	counts, err := h.Store.Counts(ctx)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.Logger.WithFields(logrus.Fields{"dataset": req.DatasetID, "records": s.saved}).Info("demo dataset loaded")
	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "dataset": req.DatasetID, "counts": counts})
}

// ResetDemo clears the database and forgets the loaded dataset.
func (h *Handler) ResetDemo(w http.ResponseWriter, r *http.Request) {
	h.ResetDatabase(w, r)
}

// =============================================================================
// SEEDER
// =============================================================================

// seeder carries the context and reference date through the seed
// functions.
type seeder struct {
	ctx   context.Context
	h     *Handler
	today time.Time
	saved int
}

func (s *seeder) daysAgo(n int) time.Time { return s.today.AddDate(0, 0, -n) }

func (s *seeder) datePtr(days int) *time.Time {
	t := s.today.AddDate(0, 0, days)
	return &t
}

func (s *seeder) month(offset int) string {
	return generic.MonthKey(s.today.AddDate(0, offset, 0))
}

// save validates v before handing it to the store.
func save[T interface{ Validate() error }](s *seeder, v *T, fn func(context.Context, *T) error) error {
	if err := (*v).Validate(); err != nil {
		return err
	}
	if err := fn(s.ctx, v); err != nil {
		return err
	}
	s.saved++
	return nil
}

// =============================================================================
// HR
// =============================================================================

type seedEmployee struct {
	id, name, email, position, department string
	hiredDaysAgo                          int
	salary                                int64
	status                                hr.EmployeeStatus
}

var seedEmployees = []seedEmployee{
	{"emp-ana", "Ana Souza", "ana.souza@acme.test", "CEO", "dep-board", 2900, 32000, hr.EmployeeActive},
	{"emp-bruno", "Bruno Lima", "bruno.lima@acme.test", "Engineering Manager", "dep-eng", 1800, 18500, hr.EmployeeActive},
	{"emp-carla", "Carla Mendes", "carla.mendes@acme.test", "Backend Developer", "dep-eng", 900, 12000, hr.EmployeeActive},
	{"emp-diego", "Diego Alves", "diego.alves@acme.test", "Frontend Developer", "dep-eng", 420, 10500, hr.EmployeeActive},
	{"emp-elisa", "Elisa Rocha", "elisa.rocha@acme.test", "QA Analyst", "dep-eng", 260, 8200, hr.EmployeeOnLeave},
	{"emp-fabio", "Fabio Nunes", "fabio.nunes@acme.test", "Sales Lead", "dep-sales", 1500, 14000, hr.EmployeeActive},
	{"emp-gabi", "Gabriela Costa", "gabriela.costa@acme.test", "Account Executive", "dep-sales", 610, 9000, hr.EmployeeActive},
	{"emp-hugo", "Hugo Prado", "hugo.prado@acme.test", "Account Executive", "dep-sales", 120, 8800, hr.EmployeeActive},
	{"emp-iris", "Iris Barros", "iris.barros@acme.test", "HR Manager", "dep-people", 2100, 13500, hr.EmployeeActive},
	{"emp-joao", "Joao Teixeira", "joao.teixeira@acme.test", "Recruiter", "dep-people", 700, 7600, hr.EmployeeTerminated},
}

func seedHR(s *seeder) error {
	st := s.h.Store
	departments := []hr.Department{
		{ID: "dep-board", Name: "Board", Description: "Executive leadership", ManagerID: "emp-ana", Status: hr.DepartmentActive},
		{ID: "dep-eng", Name: "Engineering", Description: "Product development", ManagerID: "emp-bruno", ParentID: "dep-board", Status: hr.DepartmentActive},
		{ID: "dep-sales", Name: "Sales", Description: "New business and accounts", ManagerID: "emp-fabio", ParentID: "dep-board", Status: hr.DepartmentActive},
		{ID: "dep-people", Name: "People", Description: "Recruiting and HR operations", ManagerID: "emp-iris", ParentID: "dep-board", Status: hr.DepartmentActive},
	}
	for i := range departments {
		if err := save(s, &departments[i], st.SaveDepartment); err != nil {
			return err
		}
	}

	for _, e := range seedEmployees {
		emp := hr.Employee{
			ID:           e.id,
			Name:         e.name,
			Email:        e.email,
			Position:     e.position,
			DepartmentID: e.department,
			HireDate:     s.daysAgo(e.hiredDaysAgo),
			Status:       e.status,
			Salary:       decimal.NewFromInt(e.salary),
		}
		if err := save(s, &emp, st.SaveEmployee); err != nil {
			return err
		}
	}

	occurrences := []hr.Occurrence{
		{ID: "occ-1", EmployeeID: "emp-diego", Type: hr.OccurrenceDelay, Severity: hr.SeverityLow, Title: "Late to sprint review", OccurredOn: s.daysAgo(40), Status: hr.OccurrenceClosed, Resolution: "Talked through calendar conflicts"},
		{ID: "occ-2", EmployeeID: "emp-hugo", Type: hr.OccurrenceAbsence, Severity: hr.SeverityMedium, Title: "Unjustified absence", OccurredOn: s.daysAgo(12), Status: hr.OccurrenceOpen},
		{ID: "occ-3", EmployeeID: "emp-carla", Type: hr.OccurrenceCommendation, Severity: hr.SeverityLow, Title: "Led the billing migration", OccurredOn: s.daysAgo(20), Status: hr.OccurrenceResolved},
		{ID: "occ-4", EmployeeID: "emp-elisa", Type: hr.OccurrenceAccident, Severity: hr.SeverityHigh, Title: "Fall on office stairs", Description: "Sprained ankle, medical leave issued", OccurredOn: s.daysAgo(30), Status: hr.OccurrenceInProgress},
		{ID: "occ-5", EmployeeID: "emp-joao", Type: hr.OccurrenceWarning, Severity: hr.SeverityHigh, Title: "Shared candidate data externally", OccurredOn: s.daysAgo(75), Status: hr.OccurrenceClosed, Resolution: "Contract terminated"},
	}
	for i := range occurrences {
		if err := save(s, &occurrences[i], st.SaveOccurrence); err != nil {
			return err
		}
	}

	training := []hr.TrainingSession{
		{ID: "trn-1", Title: "Secure coding", Instructor: "OWASP chapter", Type: hr.TrainingExternal, Category: "security", StartDate: s.daysAgo(60), EndDate: s.datePtr(-58), Hours: 16, Status: hr.TrainingCompleted, Participants: []string{"emp-bruno", "emp-carla", "emp-diego"}, Cost: decimal.NewFromInt(4500)},
		{ID: "trn-2", Title: "Negotiation basics", Instructor: "Fabio Nunes", Type: hr.TrainingInternal, Category: "sales", StartDate: s.daysAgo(15), Hours: 4, Status: hr.TrainingCompleted, Participants: []string{"emp-gabi", "emp-hugo"}},
		{ID: "trn-3", Title: "ISO 9001 awareness", Instructor: "Quality Academy", Type: hr.TrainingOnline, Category: "quality", StartDate: s.daysAgo(-10), Hours: 8, Status: hr.TrainingPlanned, Participants: []string{"emp-ana", "emp-bruno", "emp-fabio", "emp-iris"}, Cost: decimal.NewFromInt(1200)},
	}
	for i := range training {
		if err := save(s, &training[i], st.SaveTraining); err != nil {
			return err
		}
	}

	for offset := -5; offset <= 0; offset++ {
		month := s.month(offset)
		for _, e := range seedEmployees {
			if e.status == hr.EmployeeTerminated && offset > -3 {
				continue
			}
			salary := hr.CostItem{
				EmployeeID:   e.id,
				DepartmentID: e.department,
				Category:     hr.CostSalary,
				Description:  "Monthly salary",
				Amount:       decimal.NewFromInt(e.salary),
				Month:        month,
				Recurring:    true,
			}
			if err := save(s, &salary, st.SaveCost); err != nil {
				return err
			}
		}
		benefits := hr.CostItem{
			DepartmentID: "dep-people",
			Category:     hr.CostBenefits,
			Description:  "Health plan",
			Amount:       decimal.RequireFromString("6400.00"),
			Month:        month,
			Recurring:    true,
		}
		if err := save(s, &benefits, st.SaveCost); err != nil {
			return err
		}
	}
	laptop := hr.CostItem{
		EmployeeID:   "emp-hugo",
		DepartmentID: "dep-sales",
		Category:     hr.CostEquipment,
		Description:  "Laptop",
		Amount:       decimal.RequireFromString("7899.90"),
		Month:        s.month(-4),
	}
	return save(s, &laptop, st.SaveCost)
}

// =============================================================================
// CLIMATE
// =============================================================================

func seedClimate(s *seeder) error {
	st := s.h.Store
	survey := climate.Survey{
		ID:          "srv-q",
		Title:       "Quarterly climate pulse",
		Description: "How are we doing this quarter?",
		Status:      climate.SurveyActive,
		StartDate:   s.datePtr(-14),
		EndDate:     s.datePtr(14),
		Anonymous:   true,
	}
	if err := save(s, &survey, st.SaveSurvey); err != nil {
		return err
	}

	questions := []climate.Question{
		{ID: "q-lead", Text: "My manager gives me useful feedback", Type: climate.QuestionScale, Category: "leadership", Required: true},
		{ID: "q-growth", Text: "I see a path to grow here", Type: climate.QuestionScale, Category: "growth", Required: true},
		{ID: "q-load", Text: "My workload is sustainable", Type: climate.QuestionScale, Category: "wellbeing", Required: true},
		{ID: "q-mode", Text: "Preferred work mode", Type: climate.QuestionChoice, Category: "wellbeing", Options: climate.Options{Choices: []string{"Remote", "Hybrid", "Office"}}},
		{ID: "q-free", Text: "Anything else?", Type: climate.QuestionText, Category: "general"},
	}
	for i := range questions {
		questions[i].SurveyID = survey.ID
		questions[i].Position = i + 1
		if err := save(s, &questions[i], st.SaveQuestion); err != nil {
			return err
		}
	}

	answers := []map[string]string{
		{"q-lead": "4", "q-growth": "3", "q-load": "4", "q-mode": "Hybrid"},
		{"q-lead": "5", "q-growth": "4", "q-load": "3", "q-mode": "Remote", "q-free": "More pairing please"},
		{"q-lead": "2", "q-growth": "2", "q-load": "2", "q-mode": "Remote", "q-free": "Too many meetings"},
		{"q-lead": "4", "q-growth": "5", "q-load": "4", "q-mode": "Office"},
		{"q-lead": "3", "q-growth": "3", "q-load": "5", "q-mode": "Hybrid"},
		{"q-lead": "5", "q-growth": "4", "q-load": "4"},
	}
	for _, a := range answers {
		resp, err := climate.ValidateResponse(survey, questions, climate.Response{SurveyID: survey.ID, Answers: a}, s.today)
		if err != nil {
			return err
		}
		if err := s.h.Store.SaveResponse(s.ctx, &resp); err != nil {
			return err
		}
		s.saved++
	}

	draft := climate.Survey{ID: "srv-onb", Title: "Onboarding experience", Status: climate.SurveyDraft}
	return save(s, &draft, st.SaveSurvey)
}

// =============================================================================
// DISC
// =============================================================================

func seedDisc(s *seeder) error {
	completed := []struct {
		employee string
		scores   disc.Scores
	}{
		{"emp-ana", disc.Scores{D: 45, I: 25, S: 10, C: 20}},
		{"emp-bruno", disc.Scores{D: 20, I: 15, S: 25, C: 40}},
		{"emp-carla", disc.Scores{D: 10, I: 10, S: 30, C: 50}},
		{"emp-fabio", disc.Scores{D: 30, I: 45, S: 10, C: 15}},
		{"emp-gabi", disc.Scores{D: 15, I: 40, S: 30, C: 15}},
		{"emp-iris", disc.Scores{D: 10, I: 30, S: 45, C: 15}},
	}
	for _, c := range completed {
		a := disc.Assessment{EmployeeID: c.employee, Scores: c.scores, Status: disc.StatusCompleted}
		a.Finalize(s.h.now())
		if err := save(s, &a, s.h.Store.SaveAssessment); err != nil {
			return err
		}
	}
	pending := disc.Assessment{EmployeeID: "emp-hugo", Status: disc.StatusPending, Notes: "Scheduled after onboarding"}
	return save(s, &pending, s.h.Store.SaveAssessment)
}

// =============================================================================
// STRATEGY
// =============================================================================

// seedStrategy always uses the template generator so loading a dataset
// never calls a remote model.
func seedStrategy(s *seeder) error {
	var gen strategy.TemplateGenerator
	draft, err := gen.GenerateIdentity(s.ctx, strategy.IdentityInput{
		CompanyID:       DemoCompanyID,
		CompanyName:     "Acme Software",
		Industry:        "B2B software",
		Description:     "Billing and invoicing tools for small businesses",
		TargetCustomers: "Small and medium businesses",
		Differentials:   "Fast onboarding and local support",
		Values:          "Customer focus, Transparency, Craftsmanship",
		LongTermGoals:   "Be the reference billing platform in the region",
	})
	if err != nil {
		return err
	}
	ident := draft.ToIdentity(DemoCompanyID)
	if err := save(s, &ident, s.h.Store.SaveIdentity); err != nil {
		return err
	}

	drafts, err := gen.GenerateIndicators(s.ctx, strategy.IndicatorInput{
		CompanyID: DemoCompanyID,
		Mission:   ident.Mission,
		Vision:    ident.Vision,
		Values:    ident.Values,
		Count:     8,
	})
	if err != nil {
		return err
	}
	for _, d := range drafts {
		in := d.ToIndicator(DemoCompanyID)
		if err := save(s, &in, s.h.Store.SaveIndicator); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// RISKS & QUALITY
// =============================================================================

func seedRisks(s *seeder) error {
	risks := []risk.Risk{
		{ID: "rsk-1", Title: "Key engineer leaves", Category: "people", Probability: risk.Medium, Impact: risk.High, Status: risk.StatusMitigating, OwnerID: "emp-bruno", Mitigation: "Pairing rotation and documentation", ReviewDate: s.datePtr(30)},
		{ID: "rsk-2", Title: "Data breach", Category: "security", Probability: risk.Low, Impact: risk.High, Status: risk.StatusAssessed, OwnerID: "emp-ana", ReviewDate: s.datePtr(60)},
		{ID: "rsk-3", Title: "Largest customer churns", Category: "commercial", Probability: risk.Medium, Impact: risk.Medium, Status: risk.StatusIdentified, OwnerID: "emp-fabio"},
		{ID: "rsk-4", Title: "Cloud provider outage", Category: "operations", Probability: risk.Low, Impact: risk.Medium, Status: risk.StatusAssessed, OwnerID: "emp-carla"},
		{ID: "rsk-5", Title: "Payroll tax change", Category: "compliance", Probability: risk.High, Impact: risk.Low, Status: risk.StatusClosed, OwnerID: "emp-iris"},
		{ID: "rsk-6", Title: "Release slips a quarter", Category: "operations", Probability: risk.High, Impact: risk.High, Status: risk.StatusIdentified, OwnerID: "emp-bruno"},
	}
	for i := range risks {
		if err := save(s, &risks[i], s.h.Store.SaveRisk); err != nil {
			return err
		}
	}
	return nil
}

func seedDocuments(s *seeder) error {
	docs := []quality.IsoDocument{
		{ID: "doc-qm", Code: "QM-001", Title: "Quality manual", Standard: "ISO 9001", Version: "3.0", Status: quality.StatusApproved, OwnerID: "emp-ana", ReviewDate: s.datePtr(-5)},
		{ID: "doc-hr", Code: "PR-HR-01", Title: "Hiring procedure", Standard: "ISO 9001", Version: "1.2", Status: quality.StatusApproved, OwnerID: "emp-iris", ReviewDate: s.datePtr(90)},
		{ID: "doc-sec", Code: "POL-SEC-01", Title: "Information security policy", Standard: "ISO 27001", Version: "0.4", Status: quality.StatusReview, OwnerID: "emp-bruno", ReviewDate: s.datePtr(10)},
		{ID: "doc-inc", Code: "PR-SEC-02", Title: "Incident response", Standard: "ISO 27001", Version: "0.1", Status: quality.StatusDraft, OwnerID: "emp-carla"},
		{ID: "doc-old", Code: "PR-OPS-00", Title: "Legacy deploy checklist", Standard: "ISO 9001", Version: "2.1", Status: quality.StatusObsolete, OwnerID: "emp-bruno"},
	}
	for i := range docs {
		if err := save(s, &docs[i], s.h.Store.SaveDocument); err != nil {
			return err
		}
	}
	return nil
}
