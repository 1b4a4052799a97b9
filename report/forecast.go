package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sector marker for revenue that has not been assigned to a customer team.
// Rows in this sector are excluded from assigned totals and customer counts.
const unassigned = "AAA - UNASSIGNED"

// Row is a single forecast line: one customer/sector entry for an account
// executive with the four quarter revenue figures for the reporting year.
type Row struct {
	AE       string
	Customer string
	Sector   string
	Quarters [4]float64
}

// quarterColumns returns the forecast workbook's quarter column names for the
// reporting year e.g. 26Q1..26Q4 for 2026.
func quarterColumns(year int) [4]string {
	prefix := fmt.Sprintf("%02d", year%100)

	return [4]string{prefix + "Q1", prefix + "Q2", prefix + "Q3", prefix + "Q4"}
}

// LatestForecastFile identifies the most recent forecast workbook in a local
// folder, ignoring Excel lock files.
func LatestForecastFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return "", err
	}

	latest := ""
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), "~") {
			continue
		}

		if latest == "" {
			latest = match
			continue
		}

		current, err := os.Stat(match)
		if err != nil {
			continue
		}

		newest, err := os.Stat(latest)
		if err != nil || newest.ModTime().Before(current.ModTime()) {
			latest = match
		}
	}

	if latest == "" {
		return "", Errorf("no forecast workbooks in %s", dir)
	}

	return latest, nil
}

// ReadForecast loads the forecast rows for the reporting year from the first
// worksheet of the workbook.
func ReadForecast(path string, year int) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Errorf("unable to open forecast workbook %s (%v)", filepath.Base(path), err)
	}

	defer f.Close()

	sheet := f.GetSheetName(0)

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, Errorf("unable to read worksheet '%s' (%v)", sheet, err)
	}

	if len(records) == 0 {
		return nil, Errorf("empty worksheet '%s'", sheet)
	}

	quarters := quarterColumns(year)
	index, err := makeIndex(records[0], quarters)
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}

		row := Row{
			AE:       cell(record, index["ae1"]),
			Customer: cell(record, index["customer"]),
			Sector:   cell(record, index["sector"]),
		}

		if row.AE == "" {
			return nil, Errorf("missing AE in forecast row %d", i+2)
		}

		if row.Customer == "" {
			return nil, Errorf("missing customer in forecast row %d", i+2)
		}

		for q, column := range quarters {
			v := cell(record, index[normalise(column)])
			if v == "" {
				continue
			}

			value, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
			if err != nil {
				return nil, Errorf("non-numeric value '%s' in column %s, row %d", v, column, i+2)
			}

			row.Quarters[q] = value
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// makeIndex builds the column index from the header row and verifies that
// every required column is present.
func makeIndex(header []string, quarters [4]string) (map[string]int, error) {
	index := map[string]int{}
	for i, v := range header {
		k := normalise(v)
		if k == "" {
			continue
		}

		if _, ok := index[k]; ok {
			return nil, Errorf("duplicate column name '%s'", v)
		}

		index[k] = i
	}

	required := []string{"ae1", "customer", "sector"}
	for _, column := range quarters {
		required = append(required, normalise(column))
	}

	missing := []string{}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		return nil, Errorf("missing required columns in forecast data: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

func cell(record []string, ix int) string {
	if ix >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[ix])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
