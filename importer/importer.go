/*
Package importer reads employee spreadsheets and writes them back out.

FORMAT:
  The first row is a header. Columns are matched case-insensitively and
  may appear in any order; unknown columns are ignored.

      name*  email  position  department  hire_date*  status  salary

  "department" holds a department id or name; the caller resolves it.
  Dates are YYYY-MM-DD, YYYY/MM/DD, DD/MM/YYYY, or an Excel serial number.

ERRORS:
  A bad row does not stop the import. Each failing row is reported with
  its 1-based line number and the valid rows are returned.
*/
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/xuri/excelize/v2"
)

// MaxRows bounds a single import.
const MaxRows = 10000

// Row is one valid spreadsheet line.
type Row struct {
	Line       int
	Employee   hr.Employee
	Department string // id or name, unresolved
}

// RowError describes why a line was skipped.
type RowError struct {
	Line    int               `json:"line"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Result struct {
	Rows   []Row
	Errors []RowError
}

// Total is the number of data lines read.
func (r Result) Total() int { return len(r.Rows) + len(r.Errors) }

var headerAliases = map[string]string{
	"name":          "name",
	"full_name":     "name",
	"email":         "email",
	"e-mail":        "email",
	"position":      "position",
	"role":          "position",
	"job_title":     "position",
	"department":    "department",
	"department_id": "department",
	"hire_date":     "hire_date",
	"hired_on":      "hire_date",
	"admission":     "hire_date",
	"status":        "status",
	"salary":        "salary",
}

// Parse dispatches on the file extension.
func Parse(filename string, r io.Reader) (Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return Result{}, fmt.Errorf("%w: %q", generic.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseCSV reads comma or semicolon separated input.
func ParseCSV(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	return ParseRows(rows)
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(r io.Reader) (Result, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", generic.ErrUnsupportedFormat, err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return Result{}, fmt.Errorf("no worksheet found")
	}
	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("read worksheet: %w", err)
	}
	return ParseRows(rows)
}

// ParseRows maps a header row plus data rows onto employees.
func ParseRows(rows [][]string) (Result, error) {
	if len(rows) == 0 {
		return Result{}, errors.New("file is empty")
	}
	if len(rows)-1 > MaxRows {
		return Result{}, fmt.Errorf("too many rows: %d (max %d)", len(rows)-1, MaxRows)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ReplaceAll(normalizeHeader(h), " ", "_")
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	var missing []string
	for _, required := range []string{"name", "hire_date"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: missing columns: %s", generic.ErrValidation, strings.Join(missing, ", "))
	}

	var res Result
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		r, err := parseRow(row, cols)
		if err != nil {
			re := RowError{Line: line, Message: err.Error()}
			var verr *generic.ValidationError
			if errors.As(err, &verr) {
				re.Fields = verr.Fields
			}
			res.Errors = append(res.Errors, re)
			continue
		}
		r.Line = line
		res.Rows = append(res.Rows, r)
	}
	return res, nil
}

func parseRow(row []string, cols map[string]int) (Row, error) {
	get := func(col string) string {
		idx, ok := cols[col]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}

	verr := generic.NewValidationError()
	e := hr.Employee{
		Name:     get("name"),
		Email:    strings.ToLower(get("email")),
		Position: get("position"),
		Status:   hr.EmployeeStatus(strings.ToLower(get("status"))),
	}
	if e.Status == "" {
		e.Status = hr.EmployeeActive
	}

	if raw := get("hire_date"); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			verr.Add("hire_date", err.Error())
		}
		e.HireDate = d
	}
	if raw := get("salary"); raw != "" {
		s, err := parseAmount(raw)
		if err != nil {
			verr.Add("salary", "must be a number")
		}
		e.Salary = s
	}

	if err := e.Validate(); err != nil {
		var ev *generic.ValidationError
		if errors.As(err, &ev) {
			for f, m := range ev.Fields {
				verr.Add(f, m)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return Row{}, err
	}
	return Row{Employee: e, Department: get("department")}, nil
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02/01/2006", "2/1/2006"}

// ParseDate accepts the layouts listed in the package doc or an Excel
// serial date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 2958465 {
			return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return generic.TruncateDay(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseAmount accepts "1234.5", "1,234.50" and "1234,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return decimal.NewFromString(s)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
