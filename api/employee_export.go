package api

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName   = "Employees"
	ContentTypeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFileName    = "employees.xlsx"
	exportTimeLayout  = "2006-01-02 15:04:05"
	exportHeaderColor = "#D9E1F2"
)

// WriteEmployeeWorkbook writes employees as an xlsx workbook. Columns follow
// schema order after the record id; custom values of fields missing from the
// schema are not exported.
func WriteEmployeeWorkbook(w io.Writer, schema []fieldschema.Field, employees []Employee) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(schema)+3)
	header = append(header, "ID")
	for _, field := range schema {
		header = append(header, field.Label)
	}
	header = append(header, "Created By", "Created At")
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{exportHeaderColor}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(exportSheetName, 1, 1, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i := range employees {
		e := &employees[i]
		rec := e.Record()
		row := make([]any, 0, len(header))
		row = append(row, e.ID)
		for _, field := range schema {
			row = append(row, exportCell(rec[field.Name]))
		}
		row = append(row, e.CreatedBy, e.CreatedAt.UTC().Format(exportTimeLayout))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// exportCell keeps numbers and booleans native and joins lists
func exportCell(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, float64, bool:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case json.Number:
		// numeric cell only when a float64 holds every digit
		if d, err := decimal.NewFromString(val.String()); err == nil {
			if f, exact := d.Float64(); exact {
				return f
			}
		}
		return val.String()
	case fieldschema.Value:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
