/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain records carry
  no JSON tags; these types are the external contract and map to and from
  them. Read-only aggregates (stats, summaries, matrix cells) are tagged in
  their own packages and served as they are.

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags for form-level rules
  (required, enums, date layout). Cross-field rules live in the domain
  Validate() methods, which run after apply().

DATES:
  Calendar dates travel as "YYYY-MM-DD" strings, timestamps as RFC3339.
  Money travels as decimal strings ("1250.50"); numbers are accepted too.

SEE ALSO:
  - resource.go: Generic create/update flow that calls apply()
  - generic/validate.go: Struct validation into generic.ValidationError
*/
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/business-admin/climate"
	"github.com/warp/business-admin/disc"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/warp/business-admin/importer"
	"github.com/warp/business-admin/quality"
	"github.com/warp/business-admin/questionnaire"
	"github.com/warp/business-admin/risk"
	"github.com/warp/business-admin/strategy"
)

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// TimestampsDTO is embedded in every record response.
type TimestampsDTO struct {
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toTimestamps(t generic.Timestamps) TimestampsDTO {
	return TimestampsDTO{CreatedAt: formatTimestamp(t.CreatedAt), UpdatedAt: formatTimestamp(t.UpdatedAt)}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(*t)
}

// dates collects date parse failures into one ValidationError.
type dates struct {
	verr *generic.ValidationError
}

func newDates() *dates { return &dates{verr: generic.NewValidationError()} }

func (d *dates) required(field, s string) time.Time {
	t, err := generic.ParseDate(s)
	if err != nil {
		d.verr.Add(field, "must be a date (YYYY-MM-DD)")
	}
	return t
}

func (d *dates) optional(field, s string) *time.Time {
	t, err := generic.ParseOptionalDate(strings.TrimSpace(s))
	if err != nil {
		d.verr.Add(field, "must be a date (YYYY-MM-DD)")
		return nil
	}
	return t
}

func (d *dates) err() error { return d.verr.OrNil() }

// =============================================================================
// DEPARTMENTS
// =============================================================================

type DepartmentRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id"`
	ParentID    string `json:"parent_id"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (req DepartmentRequest) apply(d *hr.Department) error {
	d.Name = strings.TrimSpace(req.Name)
	d.Description = req.Description
	d.ManagerID = req.ManagerID
	d.ParentID = req.ParentID
	d.Status = hr.DepartmentStatus(orDefault(req.Status, string(hr.DepartmentActive)))
	return nil
}

type DepartmentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Status      string `json:"status"`
	TimestampsDTO
}

func toDepartmentDTO(d hr.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		ManagerID:     d.ManagerID,
		ParentID:      d.ParentID,
		Status:        string(d.Status),
		TimestampsDTO: toTimestamps(d.Timestamps),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeRequest struct {
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Position     string          `json:"position"`
	DepartmentID string          `json:"department_id"`
	HireDate     string          `json:"hire_date" validate:"required"`
	Status       string          `json:"status" validate:"omitempty,oneof=active inactive on_leave terminated"`
	Salary       decimal.Decimal `json:"salary"`
}

func (req EmployeeRequest) apply(e *hr.Employee) error {
	d := newDates()
	e.Name = strings.TrimSpace(req.Name)
	e.Email = strings.ToLower(strings.TrimSpace(req.Email))
	e.Position = req.Position
	e.DepartmentID = req.DepartmentID
	e.HireDate = d.required("hire_date", req.HireDate)
	e.Status = hr.EmployeeStatus(orDefault(req.Status, string(hr.EmployeeActive)))
	e.Salary = req.Salary
	return d.err()
}

type EmployeeDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Position     string          `json:"position"`
	DepartmentID string          `json:"department_id,omitempty"`
	HireDate     string          `json:"hire_date"`
	Status       string          `json:"status"`
	Salary       decimal.Decimal `json:"salary"`
	TimestampsDTO
}

func toEmployeeDTO(e hr.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		Position:      e.Position,
		DepartmentID:  e.DepartmentID,
		HireDate:      generic.FormatDate(e.HireDate),
		Status:        string(e.Status),
		Salary:        e.Salary,
		TimestampsDTO: toTimestamps(e.Timestamps),
	}
}

// ImportResponse reports an employee import.
type ImportResponse struct {
	Total    int                 `json:"total"`
	Imported int                 `json:"imported"`
	Errors   []importer.RowError `json:"errors"`
	Created  []EmployeeDTO       `json:"created"`
}

// =============================================================================
// OCCURRENCES
// =============================================================================

type OccurrenceRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=warning absence delay accident commendation other"`
	Severity    string `json:"severity" validate:"omitempty,oneof=low medium high"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	OccurredOn  string `json:"occurred_on" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Resolution  string `json:"resolution"`
}

func (req OccurrenceRequest) apply(o *hr.Occurrence) error {
	d := newDates()
	o.EmployeeID = req.EmployeeID
	o.Type = hr.OccurrenceType(req.Type)
	o.Severity = hr.Severity(orDefault(req.Severity, string(hr.SeverityLow)))
	o.Title = strings.TrimSpace(req.Title)
	o.Description = req.Description
	o.OccurredOn = d.required("occurred_on", req.OccurredOn)
	o.Status = hr.OccurrenceStatus(orDefault(req.Status, string(hr.OccurrenceOpen)))
	o.Resolution = req.Resolution
	return d.err()
}

type OccurrenceDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OccurredOn  string `json:"occurred_on"`
	Status      string `json:"status"`
	Resolution  string `json:"resolution,omitempty"`
	TimestampsDTO
}

func toOccurrenceDTO(o hr.Occurrence) OccurrenceDTO {
	return OccurrenceDTO{
		ID:            o.ID,
		EmployeeID:    o.EmployeeID,
		Type:          string(o.Type),
		Severity:      string(o.Severity),
		Title:         o.Title,
		Description:   o.Description,
		OccurredOn:    generic.FormatDate(o.OccurredOn),
		Status:        string(o.Status),
		Resolution:    o.Resolution,
		TimestampsDTO: toTimestamps(o.Timestamps),
	}
}

// =============================================================================
// TRAINING
// =============================================================================

type TrainingRequest struct {
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	Instructor   string          `json:"instructor"`
	Type         string          `json:"type" validate:"omitempty,oneof=internal external online"`
	Category     string          `json:"category"`
	StartDate    string          `json:"start_date" validate:"required"`
	EndDate      string          `json:"end_date"`
	Hours        float64         `json:"hours" validate:"gt=0,lte=1000"`
	Status       string          `json:"status" validate:"omitempty,oneof=planned ongoing completed cancelled"`
	Participants []string        `json:"participants"`
	Cost         decimal.Decimal `json:"cost"`
}

func (req TrainingRequest) apply(t *hr.TrainingSession) error {
	d := newDates()
	t.Title = strings.TrimSpace(req.Title)
	t.Description = req.Description
	t.Instructor = req.Instructor
	t.Type = hr.TrainingType(orDefault(req.Type, string(hr.TrainingInternal)))
	t.Category = req.Category
	t.StartDate = d.required("start_date", req.StartDate)
	t.EndDate = d.optional("end_date", req.EndDate)
	t.Hours = req.Hours
	t.Status = hr.TrainingStatus(orDefault(req.Status, string(hr.TrainingPlanned)))
	t.Participants = uniqueNonBlank(req.Participants)
	t.Cost = req.Cost
	return d.err()
}

type TrainingDTO struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Instructor   string          `json:"instructor"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date,omitempty"`
	Hours        float64         `json:"hours"`
	Status       string          `json:"status"`
	Participants []string        `json:"participants"`
	Cost         decimal.Decimal `json:"cost"`
	TimestampsDTO
}

func toTrainingDTO(t hr.TrainingSession) TrainingDTO {
	participants := t.Participants
	if participants == nil {
		participants = []string{}
	}
	return TrainingDTO{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Instructor:    t.Instructor,
		Type:          string(t.Type),
		Category:      t.Category,
		StartDate:     generic.FormatDate(t.StartDate),
		EndDate:       generic.FormatOptionalDate(t.EndDate),
		Hours:         t.Hours,
		Status:        string(t.Status),
		Participants:  participants,
		Cost:          t.Cost,
		TimestampsDTO: toTimestamps(t.Timestamps),
	}
}

// =============================================================================
// EMPLOYEE COSTS
// =============================================================================

type CostRequest struct {
	EmployeeID   string          `json:"employee_id"`
	DepartmentID string          `json:"department_id"`
	Category     string          `json:"category" validate:"required,oneof=salary benefits taxes training equipment other"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Month        string          `json:"month" validate:"required"`
	Recurring    bool            `json:"recurring"`
}

func (req CostRequest) apply(c *hr.CostItem) error {
	c.EmployeeID = req.EmployeeID
	c.DepartmentID = req.DepartmentID
	c.Category = hr.CostCategory(req.Category)
	c.Description = req.Description
	c.Amount = req.Amount
	c.Month = strings.TrimSpace(req.Month)
	c.Recurring = req.Recurring
	return nil
}

type CostDTO struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id,omitempty"`
	DepartmentID string          `json:"department_id,omitempty"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Month        string          `json:"month"`
	Recurring    bool            `json:"recurring"`
	TimestampsDTO
}

func toCostDTO(c hr.CostItem) CostDTO {
	return CostDTO{
		ID:            c.ID,
		EmployeeID:    c.EmployeeID,
		DepartmentID:  c.DepartmentID,
		Category:      string(c.Category),
		Description:   c.Description,
		Amount:        c.Amount,
		Month:         c.Month,
		Recurring:     c.Recurring,
		TimestampsDTO: toTimestamps(c.Timestamps),
	}
}

// =============================================================================
// CLIMATE SURVEYS
// =============================================================================

type SurveyRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=draft active closed"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Anonymous   bool   `json:"anonymous"`
}

// apply sets the status freely on create; later changes must follow
// draft -> active -> closed.
func (req SurveyRequest) apply(s *climate.Survey) error {
	d := newDates()
	if s.ID == "" {
		s.Status = climate.SurveyStatus(orDefault(req.Status, string(climate.SurveyDraft)))
	} else if req.Status != "" {
		if err := s.Transition(climate.SurveyStatus(req.Status)); err != nil {
			return err
		}
	}
	s.Title = strings.TrimSpace(req.Title)
	s.Description = req.Description
	s.StartDate = d.optional("start_date", req.StartDate)
	s.EndDate = d.optional("end_date", req.EndDate)
	s.Anonymous = req.Anonymous
	return d.err()
}

type SurveyDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Anonymous   bool   `json:"anonymous"`
	TimestampsDTO
}

func toSurveyDTO(s climate.Survey) SurveyDTO {
	return SurveyDTO{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Status:        string(s.Status),
		StartDate:     generic.FormatOptionalDate(s.StartDate),
		EndDate:       generic.FormatOptionalDate(s.EndDate),
		Anonymous:     s.Anonymous,
		TimestampsDTO: toTimestamps(s.Timestamps),
	}
}

type QuestionRequest struct {
	SurveyID string   `json:"survey_id"`
	Text     string   `json:"text" validate:"required"`
	Type     string   `json:"type" validate:"omitempty,oneof=scale choice text"`
	Category string   `json:"category"`
	Choices  []string `json:"choices"`
	Required *bool    `json:"required"`
	Position int      `json:"position" validate:"gte=0"`
}

func (req QuestionRequest) apply(q *climate.Question) error {
	if req.SurveyID != "" {
		q.SurveyID = req.SurveyID
	}
	q.Text = strings.TrimSpace(req.Text)
	q.Type = climate.QuestionType(orDefault(req.Type, string(climate.QuestionScale)))
	q.Category = req.Category
	q.Options = climate.Options{Choices: req.Choices}
	q.Required = req.Required == nil || *req.Required
	q.Position = req.Position
	return nil
}

type QuestionDTO struct {
	ID       string   `json:"id"`
	SurveyID string   `json:"survey_id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Choices  []string `json:"choices,omitempty"`
	Required bool     `json:"required"`
	Position int      `json:"position"`
	TimestampsDTO
}

func toQuestionDTO(q climate.Question) QuestionDTO {
	return QuestionDTO{
		ID:            q.ID,
		SurveyID:      q.SurveyID,
		Text:          q.Text,
		Type:          string(q.Type),
		Category:      q.Category,
		Choices:       q.Options.Choices,
		Required:      q.Required,
		Position:      q.Position,
		TimestampsDTO: toTimestamps(q.Timestamps),
	}
}

type ResponseRequest struct {
	EmployeeID string            `json:"employee_id"`
	Answers    map[string]string `json:"answers" validate:"required"`
}

type ResponseDTO struct {
	ID          string            `json:"id"`
	SurveyID    string            `json:"survey_id"`
	EmployeeID  string            `json:"employee_id,omitempty"`
	Answers     map[string]string `json:"answers"`
	SubmittedAt string            `json:"submitted_at"`
}

func toResponseDTO(r climate.Response) ResponseDTO {
	return ResponseDTO{
		ID:          r.ID,
		SurveyID:    r.SurveyID,
		EmployeeID:  r.EmployeeID,
		Answers:     r.Answers,
		SubmittedAt: formatTimestamp(r.SubmittedAt),
	}
}

// =============================================================================
// DISC ASSESSMENTS
// =============================================================================

type ScoresDTO struct {
	D int `json:"d" validate:"gte=0,lte=100"`
	I int `json:"i" validate:"gte=0,lte=100"`
	S int `json:"s" validate:"gte=0,lte=100"`
	C int `json:"c" validate:"gte=0,lte=100"`
}

// AssessmentRequest sets scores directly, or derives them from answers
// (item key -> factor letter) when answers are present.
type AssessmentRequest struct {
	EmployeeID string            `json:"employee_id" validate:"required"`
	Answers    map[string]string `json:"answers"`
	Scores     *ScoresDTO        `json:"scores"`
	Status     string            `json:"status" validate:"omitempty,oneof=pending completed"`
	Notes      string            `json:"notes"`
}

func (req AssessmentRequest) apply(a *disc.Assessment) error {
	a.EmployeeID = req.EmployeeID
	a.Notes = req.Notes
	a.Status = disc.Status(orDefault(req.Status, string(disc.StatusPending)))
	switch {
	case len(req.Answers) > 0:
		scores, err := disc.Score(req.Answers)
		if err != nil {
			return err
		}
		a.Scores = scores
		a.Status = disc.StatusCompleted
	case req.Scores != nil:
		a.Scores = disc.Scores{D: req.Scores.D, I: req.Scores.I, S: req.Scores.S, C: req.Scores.C}
	}
	return nil
}

type AssessmentDTO struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	Scores         ScoresDTO `json:"scores"`
	PrimaryProfile string    `json:"primary_profile"`
	ProfileName    string    `json:"profile_name,omitempty"`
	Status         string    `json:"status"`
	CompletedAt    string    `json:"completed_at,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	TimestampsDTO
}

func toAssessmentDTO(a disc.Assessment) AssessmentDTO {
	return AssessmentDTO{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		Scores:         ScoresDTO{D: a.Scores.D, I: a.Scores.I, S: a.Scores.S, C: a.Scores.C},
		PrimaryProfile: string(a.PrimaryProfile),
		ProfileName:    disc.ProfileNames[a.PrimaryProfile],
		Status:         string(a.Status),
		CompletedAt:    optionalTimestamp(a.CompletedAt),
		Notes:          a.Notes,
		TimestampsDTO:  toTimestamps(a.Timestamps),
	}
}

// =============================================================================
// STRATEGY
// =============================================================================

type IdentityRequest struct {
	CompanyID string   `json:"company_id" validate:"required"`
	Mission   string   `json:"mission"`
	Vision    string   `json:"vision"`
	Values    []string `json:"values"`
	Purpose   string   `json:"purpose"`
}

type IdentityDTO struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"company_id"`
	Mission   string   `json:"mission"`
	Vision    string   `json:"vision"`
	Values    []string `json:"values"`
	Purpose   string   `json:"purpose"`
	Generated bool     `json:"generated"`
	TimestampsDTO
}

func toIdentityDTO(s strategy.StrategicIdentity) IdentityDTO {
	values := s.Values
	if values == nil {
		values = []string{}
	}
	return IdentityDTO{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		Mission:       s.Mission,
		Vision:        s.Vision,
		Values:        values,
		Purpose:       s.Purpose,
		Generated:     s.Generated,
		TimestampsDTO: toTimestamps(s.Timestamps),
	}
}

// GenerateIdentityRequest is the identity interview submitted in one go.
type GenerateIdentityRequest struct {
	CompanyID       string `json:"company_id" validate:"required"`
	CompanyName     string `json:"company_name" validate:"required"`
	Industry        string `json:"industry"`
	Description     string `json:"description"`
	TargetCustomers string `json:"target_customers"`
	Differentials   string `json:"differentials"`
	Values          string `json:"values"`
	LongTermGoals   string `json:"long_term_goals"`
}

func (req GenerateIdentityRequest) input() strategy.IdentityInput {
	return strategy.IdentityInput(req)
}

type GenerateIndicatorsRequest struct {
	CompanyID string `json:"company_id" validate:"required"`
	Count     int    `json:"count" validate:"omitempty,min=1,max=20"`
	// Replace deletes the company's existing indicators first.
	Replace bool `json:"replace"`
}

type IndicatorRequest struct {
	CompanyID    string `json:"company_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Perspective  string `json:"perspective" validate:"omitempty,oneof=financial customer process learning"`
	Target       string `json:"target"`
	Unit         string `json:"unit"`
	Frequency    string `json:"frequency" validate:"omitempty,oneof=monthly quarterly yearly"`
	CurrentValue string `json:"current_value"`
}

func (req IndicatorRequest) apply(in *strategy.StrategicIndicator) error {
	in.CompanyID = req.CompanyID
	in.Name = strings.TrimSpace(req.Name)
	in.Description = req.Description
	in.Perspective = strategy.Perspective(orDefault(req.Perspective, string(strategy.PerspectiveProcess)))
	in.Target = req.Target
	in.Unit = req.Unit
	in.Frequency = strategy.Frequency(orDefault(req.Frequency, string(strategy.FrequencyQuarterly)))
	in.CurrentValue = req.CurrentValue
	return nil
}

type IndicatorDTO struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Perspective  string `json:"perspective"`
	Target       string `json:"target"`
	Unit         string `json:"unit"`
	Frequency    string `json:"frequency"`
	CurrentValue string `json:"current_value"`
	TimestampsDTO
}

func toIndicatorDTO(in strategy.StrategicIndicator) IndicatorDTO {
	return IndicatorDTO{
		ID:            in.ID,
		CompanyID:     in.CompanyID,
		Name:          in.Name,
		Description:   in.Description,
		Perspective:   string(in.Perspective),
		Target:        in.Target,
		Unit:          in.Unit,
		Frequency:     string(in.Frequency),
		CurrentValue:  in.CurrentValue,
		TimestampsDTO: toTimestamps(in.Timestamps),
	}
}

// =============================================================================
// RISKS
// =============================================================================

type RiskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Probability string `json:"probability" validate:"required,oneof=low medium high"`
	Impact      string `json:"impact" validate:"required,oneof=low medium high"`
	Status      string `json:"status" validate:"omitempty,oneof=identified assessed mitigating closed"`
	OwnerID     string `json:"owner_id"`
	Mitigation  string `json:"mitigation"`
	ReviewDate  string `json:"review_date"`
}

func (req RiskRequest) apply(r *risk.Risk) error {
	d := newDates()
	r.Title = strings.TrimSpace(req.Title)
	r.Description = req.Description
	r.Category = req.Category
	r.Probability = risk.Level(req.Probability)
	r.Impact = risk.Level(req.Impact)
	r.Status = risk.Status(orDefault(req.Status, string(risk.StatusIdentified)))
	r.OwnerID = req.OwnerID
	r.Mitigation = req.Mitigation
	r.ReviewDate = d.optional("review_date", req.ReviewDate)
	return d.err()
}

type RiskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Score       int    `json:"score"`
	Severity    string `json:"severity"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id,omitempty"`
	Mitigation  string `json:"mitigation"`
	ReviewDate  string `json:"review_date,omitempty"`
	TimestampsDTO
}

func toRiskDTO(r risk.Risk) RiskDTO {
	return RiskDTO{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Probability:   string(r.Probability),
		Impact:        string(r.Impact),
		Score:         r.Score(),
		Severity:      string(r.Severity()),
		Status:        string(r.Status),
		OwnerID:       r.OwnerID,
		Mitigation:    r.Mitigation,
		ReviewDate:    generic.FormatOptionalDate(r.ReviewDate),
		TimestampsDTO: toTimestamps(r.Timestamps),
	}
}

// MatrixDTO is the laid-out risk matrix.
type MatrixDTO struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	CellWidth  float64      `json:"cell_width"`
	CellHeight float64      `json:"cell_height"`
	HitRadius  float64      `json:"hit_radius"`
	Cells      []risk.Cell  `json:"cells"`
	Points     []risk.Point `json:"points"`
}

// HitDTO answers a hit test; Risks is empty on a miss.
type HitDTO struct {
	Hit   bool        `json:"hit"`
	Point *risk.Point `json:"point,omitempty"`
	Risks []RiskDTO   `json:"risks"`
}

// =============================================================================
// ISO DOCUMENTS
// =============================================================================

// DocumentRequest edits a document. Status only applies on create; later
// changes go through the status endpoint.
type DocumentRequest struct {
	Code       string `json:"code" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Standard   string `json:"standard"`
	Version    string `json:"version"`
	Status     string `json:"status" validate:"omitempty,oneof=draft review approved obsolete"`
	OwnerID    string `json:"owner_id"`
	ReviewDate string `json:"review_date"`
}

func (req DocumentRequest) apply(doc *quality.IsoDocument) error {
	d := newDates()
	if doc.ID == "" {
		doc.Status = quality.Status(orDefault(req.Status, string(quality.StatusDraft)))
	}
	doc.Code = strings.TrimSpace(req.Code)
	doc.Title = strings.TrimSpace(req.Title)
	doc.Standard = req.Standard
	doc.Version = req.Version
	doc.OwnerID = req.OwnerID
	doc.ReviewDate = d.optional("review_date", req.ReviewDate)
	return d.err()
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AttachmentDTO struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type DocumentDTO struct {
	ID         string         `json:"id"`
	Code       string         `json:"code"`
	Title      string         `json:"title"`
	Standard   string         `json:"standard"`
	Version    string         `json:"version"`
	Status     string         `json:"status"`
	Allowed    []string       `json:"allowed_transitions"`
	OwnerID    string         `json:"owner_id,omitempty"`
	ReviewDate string         `json:"review_date,omitempty"`
	ReviewDue  bool           `json:"review_due"`
	Attachment *AttachmentDTO `json:"attachment,omitempty"`
	TimestampsDTO
}

func toDocumentDTO(d quality.IsoDocument, today time.Time) DocumentDTO {
	allowed := []string{}
	for _, s := range quality.Allowed(d.Status) {
		allowed = append(allowed, string(s))
	}
	dto := DocumentDTO{
		ID:            d.ID,
		Code:          d.Code,
		Title:         d.Title,
		Standard:      d.Standard,
		Version:       d.Version,
		Status:        string(d.Status),
		Allowed:       allowed,
		OwnerID:       d.OwnerID,
		ReviewDate:    generic.FormatOptionalDate(d.ReviewDate),
		ReviewDue:     quality.ReviewDue(d, today),
		TimestampsDTO: toTimestamps(d.Timestamps),
	}
	if !d.Attachment.IsZero() {
		dto.Attachment = &AttachmentDTO{Name: d.Attachment.Name, Size: d.Attachment.Size, ContentType: d.Attachment.ContentType}
	}
	return dto
}

// =============================================================================
// QUESTIONNAIRES
// =============================================================================

type SessionRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	RespondentID string `json:"respondent_id"`
}

// AnswerRequest records one answer. Advance moves to the next question
// after a successful answer.
type AnswerRequest struct {
	Key     string `json:"key" validate:"required"`
	Value   string `json:"value"`
	Advance bool   `json:"advance"`
}

type GoToRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

type WizardQuestionDTO struct {
	Index    int      `json:"index"`
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Choices  []string `json:"choices,omitempty"`
	Answer   string   `json:"answer,omitempty"`
}

type SessionDTO struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	SubjectID    string             `json:"subject_id"`
	RespondentID string             `json:"respondent_id,omitempty"`
	CurrentIndex int                `json:"current_index"`
	Total        int                `json:"total"`
	Current      *WizardQuestionDTO `json:"current,omitempty"`
	Answers      map[string]string  `json:"answers"`
	Missing      []string           `json:"missing"`
	Progress     float64            `json:"progress"`
	IsFirst      bool               `json:"is_first"`
	IsLast       bool               `json:"is_last"`
	CanComplete  bool               `json:"can_complete"`
	Completed    bool               `json:"completed"`
	ResultID     string             `json:"result_id,omitempty"`
	TimestampsDTO
}

func toSessionDTO(s questionnaire.Session, w *questionnaire.Wizard) SessionDTO {
	dto := SessionDTO{
		ID:            s.ID,
		Kind:          string(s.Kind),
		SubjectID:     s.SubjectID,
		RespondentID:  s.RespondentID,
		CurrentIndex:  w.CurrentIndex,
		Total:         len(w.Questions),
		Answers:       w.Answers,
		Missing:       w.Missing(),
		Progress:      w.Progress(),
		IsFirst:       w.IsFirst(),
		IsLast:        w.IsLast(),
		CanComplete:   w.CanComplete(),
		Completed:     s.Completed,
		ResultID:      s.ResultID,
		TimestampsDTO: toTimestamps(s.Timestamps),
	}
	if dto.Missing == nil {
		dto.Missing = []string{}
	}
	if q, ok := w.Current(); ok {
		dto.Current = &WizardQuestionDTO{
			Index:    w.CurrentIndex,
			Key:      q.Key,
			Label:    q.Label,
			Required: q.Required,
			Choices:  q.Choices,
			Answer:   w.Answers[q.Key],
		}
	}
	return dto
}

// =============================================================================
// ACTIVITY & DEMO DATASETS
// =============================================================================

type ActivityDTO struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Table     string         `json:"table"`
	RecordID  string         `json:"record_id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func toActivityDTO(a generic.Activity) ActivityDTO {
	return ActivityDTO{
		ID:        a.ID,
		Timestamp: a.Timestamp.UTC().Format(time.RFC3339Nano),
		Table:     a.Table,
		RecordID:  a.RecordID,
		Action:    string(a.Action),
		Payload:   a.Payload,
	}
}

// DatasetDTO represents a demo dataset.
type DatasetDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
}

type LoadDatasetRequest struct {
	DatasetID string `json:"dataset_id" validate:"required"`
}

// =============================================================================
// HELPERS
// =============================================================================

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func uniqueNonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func mapSlice[T, D any](items []T, fn func(T) D) []D {
	out := make([]D, len(items))
	for i, it := range items {
		out[i] = fn(it)
	}
	return out
}
