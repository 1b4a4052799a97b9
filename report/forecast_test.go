package report

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, dir, name string, records [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, record := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			t.Fatalf("Unexpected error writing test workbook (%v)", err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Unexpected error saving test workbook (%v)", err)
	}

	return path
}

func TestReadForecast(t *testing.T) {
	expected := []Row{
		{AE: "house", Customer: "Acme", Sector: "Retail", Quarters: [4]float64{1000, 2000, 0, 500}},
		{AE: "house", Customer: "Initech", Sector: "AAA - UNASSIGNED", Quarters: [4]float64{250, 0, 0, 0}},
	}

	path := workbook(t, t.TempDir(), "2026-08.xlsx", [][]any{
		{"AE1", "Customer", "Sector", "26Q1", "26Q2", "26Q3", "26Q4"},
		{"house", "Acme", "Retail", 1000, 2000, "", 500},
		{"house", "Initech", "AAA - UNASSIGNED", 250, 0, 0, 0},
		{"", "", "", "", "", "", ""},
	})

	rows, err := ReadForecast(path, 2026)
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if !reflect.DeepEqual(rows, expected) {
		t.Fatalf("Incorrect forecast rows\n   expected: %+v\n   got:      %+v", expected, rows)
	}
}

func TestReadForecastWithMissingColumns(t *testing.T) {
	path := workbook(t, t.TempDir(), "2026-08.xlsx", [][]any{
		{"AE1", "Customer", "26Q1", "26Q2", "26Q3", "26Q4"},
		{"house", "Acme", 1000, 2000, 0, 500},
	})

	if _, err := ReadForecast(path, 2026); err == nil {
		t.Fatalf("Expected error reading forecast without a sector column, got:%v", err)
	}
}

func TestReadForecastWithMissingAE(t *testing.T) {
	path := workbook(t, t.TempDir(), "2026-08.xlsx", [][]any{
		{"AE1", "Customer", "Sector", "26Q1", "26Q2", "26Q3", "26Q4"},
		{"", "Acme", "Retail", 1000, 2000, 0, 500},
	})

	_, err := ReadForecast(path, 2026)

	var generation *GenerationError
	if !errors.As(err, &generation) {
		t.Fatalf("Expected generation error for blank AE, got:%v", err)
	}
}

func TestReadForecastWithNonNumericValue(t *testing.T) {
	path := workbook(t, t.TempDir(), "2026-08.xlsx", [][]any{
		{"AE1", "Customer", "Sector", "26Q1", "26Q2", "26Q3", "26Q4"},
		{"house", "Acme", "Retail", "N/A", 2000, 0, 500},
	})

	if _, err := ReadForecast(path, 2026); err == nil {
		t.Fatalf("Expected error for non-numeric quarter value, got:%v", err)
	}
}

func TestLatestForecastFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"2026-07.xlsx", "2026-08.xlsx", "~$2026-08.xlsx", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0660); err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}
	}

	latest := filepath.Join(dir, "2026-08.xlsx")
	if err := os.Chtimes(latest, time.Now(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	path, err := LatestForecastFile(dir)
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if path != latest {
		t.Fatalf("Incorrect forecast file - expected:%v, got:%v", latest, path)
	}
}

func TestLatestForecastFileWithEmptyFolder(t *testing.T) {
	if _, err := LatestForecastFile(t.TempDir()); err == nil {
		t.Fatalf("Expected error for folder without forecast workbooks, got:%v", err)
	}
}
