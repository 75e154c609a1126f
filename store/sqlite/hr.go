package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
)

// =============================================================================
// DEPARTMENTS
// =============================================================================

const departmentColumns = `id, name, description, manager_id, parent_id, status, created_at, updated_at`

func (s *Store) SaveDepartment(ctx context.Context, d *hr.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = generic.EnsureID(d.ID)
	d.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO departments (`+departmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			manager_id = excluded.manager_id,
			parent_id = excluded.parent_id,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, d.ID, d.Name, d.Description, nullString(d.ManagerID), nullString(d.ParentID), d.Status,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	return saveErr(generic.TableDepartments, err)
}

func (s *Store) GetDepartment(ctx context.Context, id string) (*hr.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanDepartment, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
}

func (s *Store) ListDepartments(ctx context.Context) ([]hr.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanDepartment, `SELECT `+departmentColumns+` FROM departments ORDER BY name`)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableDepartments, id)
}

func scanDepartment(row scanner) (hr.Department, error) {
	var d hr.Department
	var managerID, parentID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.Name, &d.Description, &managerID, &parentID, &d.Status, &createdAt, &updatedAt)
	if err != nil {
		return d, err
	}
	d.ManagerID, d.ParentID = managerID.String, parentID.String
	d.CreatedAt, d.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return d, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, email, position, department_id, hire_date, status, salary, created_at, updated_at`

const upsertEmployee = `
	INSERT INTO employees (` + employeeColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		email = excluded.email,
		position = excluded.position,
		department_id = excluded.department_id,
		hire_date = excluded.hire_date,
		status = excluded.status,
		salary = excluded.salary,
		updated_at = excluded.updated_at
`

func (s *Store) SaveEmployee(ctx context.Context, e *hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveErr(generic.TableEmployees, s.execEmployee(ctx, s.db, e))
}

// SaveEmployees stores a batch in one transaction. Either every employee
// is written or none is.
func (s *Store) SaveEmployees(ctx context.Context, employees []*hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range employees {
		if err := s.execEmployee(ctx, tx, e); err != nil {
			return saveErr(generic.TableEmployees, fmt.Errorf("employee %q: %w", e.Name, err))
		}
	}
	return tx.Commit()
}

func (s *Store) execEmployee(ctx context.Context, db execer, e *hr.Employee) error {
	e.ID = generic.EnsureID(e.ID)
	e.Touch(s.now())
	_, err := db.ExecContext(ctx, upsertEmployee,
		e.ID, e.Name, nullString(e.Email), e.Position, nullString(e.DepartmentID),
		generic.FormatDate(e.HireDate), e.Status, e.Salary.String(),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanEmployee, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
}

func (s *Store) ListEmployees(ctx context.Context) ([]hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanEmployee, `SELECT `+employeeColumns+` FROM employees ORDER BY name`)
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableEmployees, id)
}

func scanEmployee(row scanner) (hr.Employee, error) {
	var e hr.Employee
	var email, departmentID sql.NullString
	var hireDate, salary, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Name, &email, &e.Position, &departmentID, &hireDate, &e.Status, &salary, &createdAt, &updatedAt)
	if err != nil {
		return e, err
	}
	e.Email, e.DepartmentID = email.String, departmentID.String
	e.HireDate = parseDate(hireDate)
	e.Salary = parseDecimal(salary)
	e.CreatedAt, e.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return e, nil
}

// =============================================================================
// OCCURRENCES
// =============================================================================

const occurrenceColumns = `id, employee_id, type, severity, title, description, occurred_on, status, resolution, created_at, updated_at`

func (s *Store) SaveOccurrence(ctx context.Context, o *hr.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = generic.EnsureID(o.ID)
	o.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO occurrences (`+occurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			type = excluded.type,
			severity = excluded.severity,
			title = excluded.title,
			description = excluded.description,
			occurred_on = excluded.occurred_on,
			status = excluded.status,
			resolution = excluded.resolution,
			updated_at = excluded.updated_at
	`, o.ID, o.EmployeeID, o.Type, o.Severity, o.Title, o.Description,
		generic.FormatDate(o.OccurredOn), o.Status, o.Resolution,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	return saveErr(generic.TableOccurrences, err)
}

func (s *Store) GetOccurrence(ctx context.Context, id string) (*hr.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanOccurrence, `SELECT `+occurrenceColumns+` FROM occurrences WHERE id = ?`, id)
}

// ListOccurrences returns the newest occurrences first.
func (s *Store) ListOccurrences(ctx context.Context) ([]hr.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanOccurrence,
		`SELECT `+occurrenceColumns+` FROM occurrences ORDER BY occurred_on DESC, created_at DESC`)
}

func (s *Store) DeleteOccurrence(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableOccurrences, id)
}

func scanOccurrence(row scanner) (hr.Occurrence, error) {
	var o hr.Occurrence
	var occurredOn, createdAt, updatedAt string
	err := row.Scan(&o.ID, &o.EmployeeID, &o.Type, &o.Severity, &o.Title, &o.Description,
		&occurredOn, &o.Status, &o.Resolution, &createdAt, &updatedAt)
	if err != nil {
		return o, err
	}
	o.OccurredOn = parseDate(occurredOn)
	o.CreatedAt, o.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return o, nil
}

// =============================================================================
// TRAINING SESSIONS
// =============================================================================

const trainingColumns = `id, title, description, instructor, type, category, start_date, end_date, hours, status, participants_json, cost, created_at, updated_at`

func (s *Store) SaveTraining(ctx context.Context, t *hr.TrainingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants := t.Participants
	if participants == nil {
		participants = []string{}
	}
	participantsJSON, err := marshalJSON(participants)
	if err != nil {
		return err
	}

	t.ID = generic.EnsureID(t.ID)
	t.Touch(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO training_sessions (`+trainingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			instructor = excluded.instructor,
			type = excluded.type,
			category = excluded.category,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			hours = excluded.hours,
			status = excluded.status,
			participants_json = excluded.participants_json,
			cost = excluded.cost,
			updated_at = excluded.updated_at
	`, t.ID, t.Title, t.Description, t.Instructor, t.Type, t.Category,
		generic.FormatDate(t.StartDate), formatOptionalDate(t.EndDate), t.Hours, t.Status,
		participantsJSON, t.Cost.String(), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	return saveErr(generic.TableTraining, err)
}

func (s *Store) GetTraining(ctx context.Context, id string) (*hr.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanTraining, `SELECT `+trainingColumns+` FROM training_sessions WHERE id = ?`, id)
}

func (s *Store) ListTraining(ctx context.Context) ([]hr.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanTraining,
		`SELECT `+trainingColumns+` FROM training_sessions ORDER BY start_date DESC, title`)
}

func (s *Store) DeleteTraining(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableTraining, id)
}

func scanTraining(row scanner) (hr.TrainingSession, error) {
	var t hr.TrainingSession
	var endDate sql.NullString
	var startDate, participantsJSON, cost, createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Instructor, &t.Type, &t.Category,
		&startDate, &endDate, &t.Hours, &t.Status, &participantsJSON, &cost, &createdAt, &updatedAt)
	if err != nil {
		return t, err
	}
	if err := unmarshalJSON(participantsJSON, &t.Participants); err != nil {
		return t, fmt.Errorf("training %s participants: %w", t.ID, err)
	}
	t.StartDate = parseDate(startDate)
	t.EndDate = parseOptionalDate(endDate)
	t.Cost = parseDecimal(cost)
	t.CreatedAt, t.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return t, nil
}

// =============================================================================
// EMPLOYEE COSTS
// =============================================================================

const costColumns = `id, employee_id, department_id, category, description, amount, month, recurring, created_at, updated_at`

func (s *Store) SaveCost(ctx context.Context, c *hr.CostItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = generic.EnsureID(c.ID)
	c.Touch(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_costs (`+costColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			department_id = excluded.department_id,
			category = excluded.category,
			description = excluded.description,
			amount = excluded.amount,
			month = excluded.month,
			recurring = excluded.recurring,
			updated_at = excluded.updated_at
	`, c.ID, nullString(c.EmployeeID), nullString(c.DepartmentID), c.Category, c.Description,
		c.Amount.String(), c.Month, c.Recurring, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	return saveErr(generic.TableCosts, err)
}

func (s *Store) GetCost(ctx context.Context, id string) (*hr.CostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryOne(ctx, s.db, scanCost, `SELECT `+costColumns+` FROM employee_costs WHERE id = ?`, id)
}

func (s *Store) ListCosts(ctx context.Context) ([]hr.CostItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAll(ctx, s.db, scanCost, `SELECT `+costColumns+` FROM employee_costs ORDER BY month DESC, category`)
}

func (s *Store) DeleteCost(ctx context.Context, id string) error {
	return s.deleteByID(ctx, generic.TableCosts, id)
}

func scanCost(row scanner) (hr.CostItem, error) {
	var c hr.CostItem
	var employeeID, departmentID sql.NullString
	var amount, createdAt, updatedAt string
	err := row.Scan(&c.ID, &employeeID, &departmentID, &c.Category, &c.Description, &amount,
		&c.Month, &c.Recurring, &createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	c.EmployeeID, c.DepartmentID = employeeID.String, departmentID.String
	c.Amount = parseDecimal(amount)
	c.CreatedAt, c.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return c, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
