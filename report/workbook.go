package report

import (
	"github.com/xuri/excelize/v2"
)

// WriteAEReport writes an account executive's forecast detail to an Excel
// workbook for attachment to their weekly report.
func WriteAEReport(path string, ae string, rows []Row, year int) error {
	quarters := quarterColumns(year)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := []any{"Customer", "Sector"}
	for _, column := range quarters {
		header = append(header, column)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return Errorf("unable to write report workbook for %s (%v)", ae, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, bold)
	}

	line := 2
	totals := [4]float64{}
	for _, row := range rows {
		if row.AE != ae {
			continue
		}

		record := []any{row.Customer, row.Sector}
		for q := range quarters {
			record = append(record, row.Quarters[q])
			totals[q] += row.Quarters[q]
		}

		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return Errorf("unable to write report workbook for %s (%v)", ae, err)
		}

		line++
	}

	footer := []any{"TOTAL", ""}
	for q := range quarters {
		footer = append(footer, totals[q])
	}

	cell, _ := excelize.CoordinatesToCellName(1, line)
	if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
		return Errorf("unable to write report workbook for %s (%v)", ae, err)
	}

	if err := f.SaveAs(path); err != nil {
		return Errorf("unable to save report workbook for %s (%v)", ae, err)
	}

	return nil
}
