package importer

import (
	"fmt"
	"io"

	"github.com/warp/business-admin/generic"
	"github.com/warp/business-admin/hr"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Employees"

var exportHeader = []any{"name", "email", "position", "department", "hire_date", "status", "salary"}

// ExportEmployees writes employees as an XLSX workbook using the import
// column layout, so an export can be re-imported unchanged. departments
// maps department id to name; unknown ids are written as-is.
func ExportEmployees(w io.Writer, employees []hr.Employee, departments map[string]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, e := range employees {
		dept := e.DepartmentID
		if name, ok := departments[dept]; ok {
			dept = name
		}
		row := []any{
			e.Name,
			e.Email,
			e.Position,
			dept,
			generic.FormatDate(e.HireDate),
			string(e.Status),
			e.Salary.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
