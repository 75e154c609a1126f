package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/warp/business-admin/importer"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV_CollectsRowErrors(t *testing.T) {
	// GIVEN: a file with two good rows, two bad rows and a blank line
	csv := "Name,E-mail,Position,Department,Hire Date,Status,Salary\n" +
		"Ana Souza,ANA@example.com,Analyst,Finance,2023-02-01,,\"4,500.50\"\n" +
		"Bruno,bruno@,Dev,IT,2023-03-01,active,3000\n" +
		"\n" +
		"Carla,carla@example.com,Manager,,15/04/2022,on_leave,7000\n" +
		",nobody@example.com,,,someday,,\n"

	// WHEN: parsing
	res, err := importer.Parse("staff.CSV", strings.NewReader(csv))

	// THEN: valid rows come back and each bad line is reported once
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total())
	require.Len(t, res.Rows, 2)

	ana := res.Rows[0]
	assert.Equal(t, 2, ana.Line)
	assert.Equal(t, "ana@example.com", ana.Employee.Email)
	assert.Equal(t, "Finance", ana.Department)
	assert.Equal(t, hr.EmployeeActive, ana.Employee.Status)
	assert.True(t, decimal.RequireFromString("4500.50").Equal(ana.Employee.Salary))

	carla := res.Rows[1]
	assert.Equal(t, 5, carla.Line)
	assert.Equal(t, "2022-04-15", generic.FormatDate(carla.Employee.HireDate))

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Fields, "email")
	assert.Equal(t, 6, res.Errors[1].Line)
	assert.Contains(t, res.Errors[1].Fields, "name")
	assert.Contains(t, res.Errors[1].Fields, "hire_date")
}

func TestParseCSV_Semicolons(t *testing.T) {
	res, err := importer.ParseCSV(strings.NewReader("\xef\xbb\xbfname;hire_date;salary\nDiego;2024-01-10;1234,56\n"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Diego", res.Rows[0].Employee.Name)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(res.Rows[0].Employee.Salary))
}

func TestParse_Errors(t *testing.T) {
	_, err := importer.Parse("staff.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, generic.ErrUnsupportedFormat)

	_, err = importer.ParseCSV(strings.NewReader("name,email\nAna,a@b.co\n"))
	assert.ErrorIs(t, err, generic.ErrValidation)
	assert.Contains(t, err.Error(), "hire_date")

	_, err = importer.ParseRows(nil)
	assert.Error(t, err)

	_, err = importer.ParseXLSX(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, generic.ErrUnsupportedFormat)
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-15": "2024-01-15",
		"2024/01/15": "2024-01-15",
		"15/01/2024": "2024-01-15",
		"5/1/2024":   "2024-01-05",
		"45306":      "2024-01-15",
	}
	for in, want := range cases {
		d, err := importer.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, generic.FormatDate(d), in)
	}
	_, err := importer.ParseDate("yesterday")
	assert.Error(t, err)
	_, err = importer.ParseDate("-4")
	assert.Error(t, err)
}

func TestParseXLSX_SerialDates(t *testing.T) {
	// GIVEN: a workbook whose hire date is a numeric Excel date
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Hire_Date", "Salary", "Notes"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Eva", 45306, 5200.25, "ignored"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	// WHEN: importing it
	res, err := importer.Parse("people.xlsx", &buf)

	// THEN: the serial is converted
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2024-01-15", generic.FormatDate(res.Rows[0].Employee.HireDate))
	assert.True(t, decimal.RequireFromString("5200.25").Equal(res.Rows[0].Employee.Salary))
}

func TestExportThenImport(t *testing.T) {
	employees := []hr.Employee{
		{Name: "Ana", Email: "ana@example.com", Position: "Analyst", DepartmentID: "d1",
			HireDate: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Status: hr.EmployeeActive, Salary: decimal.RequireFromString("4500.5")},
		{Name: "Bruno", DepartmentID: "gone",
			HireDate: time.Date(2021, 7, 9, 0, 0, 0, 0, time.UTC), Status: hr.EmployeeOnLeave},
	}

	var buf bytes.Buffer
	require.NoError(t, importer.ExportEmployees(&buf, employees, map[string]string{"d1": "Finance"}))

	res, err := importer.ParseXLSX(&buf)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "Finance", res.Rows[0].Department)
	assert.Equal(t, "gone", res.Rows[1].Department)
	assert.Equal(t, hr.EmployeeOnLeave, res.Rows[1].Employee.Status)
	assert.Equal(t, "2021-07-09", generic.FormatDate(res.Rows[1].Employee.HireDate))
	assert.True(t, decimal.RequireFromString("4500.5").Equal(res.Rows[0].Employee.Salary))
}

func TestResolve_MatchesDepartmentsAndRejectsTakenEmails(t *testing.T) {
	// GIVEN: two departments, one stored employee and four parsed rows
	departments := []hr.Department{
		{ID: "d-fin", Name: "Finance"},
		{ID: "d-it", Name: "IT"},
	}
	existing := []hr.Employee{{ID: "e-1", Name: "Old", Email: "old@example.com"}}
	res := importer.Result{
		Rows: []importer.Row{
			{Line: 2, Employee: hr.Employee{Name: "Ana", Email: "ana@example.com"}, Department: "finance"},
			{Line: 3, Employee: hr.Employee{Name: "Bia", Email: "old@example.com"}, Department: "d-it"},
			{Line: 5, Employee: hr.Employee{Name: "Caio"}, Department: "Marketing"},
			{Line: 6, Employee: hr.Employee{Name: "Duda", Email: "ana@example.com"}},
		},
		Errors: []importer.RowError{{Line: 4, Message: "name: is required"}},
	}

	// WHEN: resolving
	employees, errs := importer.Resolve(res, departments, existing)

	// THEN: only Ana survives, mapped onto the Finance id
	require.Len(t, employees, 1)
	assert.Equal(t, "Ana", employees[0].Name)
	assert.Equal(t, "d-fin", employees[0].DepartmentID)

	// AND: errors are merged in line order
	require.Len(t, errs, 4)
	assert.Equal(t, []int{3, 4, 5, 6}, []int{errs[0].Line, errs[1].Line, errs[2].Line, errs[3].Line})
	assert.Equal(t, "already in use", errs[0].Fields["email"])
	assert.Contains(t, errs[2].Fields["department"], "Marketing")
	assert.Equal(t, "already in use", errs[3].Fields["email"])
}
