package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves tables as one sheet each. Numbers are stored as
// numbers, rounded the same way as in the CSV files.
func writeWorkbook(path string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	defaultSheet := f.GetSheetName(0)
	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, table.Sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(table.Sheet); err != nil {
			return err
		}

		header := make([]any, len(table.Headers))
		for j, h := range table.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(table.Sheet, "A1", &header); err != nil {
			return err
		}
		if err := f.SetRowStyle(table.Sheet, 1, 1, bold); err != nil {
			return err
		}

		for r, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for j, v := range row {
				if x, ok := v.(float64); ok {
					v = round2(x)
				}
				values[j] = v
			}
			if err := f.SetSheetRow(table.Sheet, cell, &values); err != nil {
				return fmt.Errorf("sheet %s row %d: %w", table.Sheet, r+2, err)
			}
		}
	}

	return f.SaveAs(path)
}
