// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxMaxSheetNameLength = 31

// WriteXlsx writes the report to an XLSX workbook at the given path. The
// sheet holds the header, the plain cell values (numeric columns as
// numbers), and the totals as label/value pairs below the data.
func WriteXlsx(report *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := report.Name
	if len(sheetName) > xlsxMaxSheetNameLength {
		sheetName = sheetName[:xlsxMaxSheetNameLength]
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rowIdx := 1
	for _, field := range report.Summary {
		if err := setCellPair(f, sheetName, rowIdx, field.Label, field.Value, field.Number, field.Numeric); err != nil {
			return err
		}
		rowIdx++
	}
	if len(report.Summary) > 0 {
		rowIdx++
	}

	for colIdx, col := range report.Columns {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheetName, cell, col.Header); err != nil {
			return err
		}
	}
	rowIdx++
	for _, row := range report.rows {
		for colIdx, c := range row.Cells {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if report.Columns[colIdx].Numeric {
				err = f.SetCellInt(sheetName, cell, int(c.Number))
			} else {
				err = f.SetCellStr(sheetName, cell, c.Plain)
			}
			if err != nil {
				return err
			}
		}
		rowIdx++
	}

	if len(report.Totals) > 0 {
		rowIdx++
		for _, total := range report.Totals {
			label := total.Label
			if total.Unit != "" {
				label = fmt.Sprintf("%s (%s)", total.Label, total.Unit)
			}
			if err := setCellPair(f, sheetName, rowIdx, label, "", total.Number, true); err != nil {
				return err
			}
			rowIdx++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setCellPair(f *excelize.File, sheetName string, rowIdx int, label string, value string, number int64, numeric bool) error {
	labelCell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheetName, labelCell, label); err != nil {
		return err
	}
	valueCell, err := excelize.CoordinatesToCellName(2, rowIdx)
	if err != nil {
		return err
	}
	if numeric {
		return f.SetCellInt(sheetName, valueCell, int(number))
	}
	return f.SetCellStr(sheetName, valueCell, value)
}
