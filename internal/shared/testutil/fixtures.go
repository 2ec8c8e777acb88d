package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SourceHeader is the header of the curated category spreadsheet.
var SourceHeader = []string{
	"source_id", "category_id", "subcategory_id", "table", "relative_importance", "category", "subcategory",
}

// SampleSourceRecords returns a small two-category taxonomy with one subcategory and one table,
// header first.
func SampleSourceRecords() [][]string {
	return [][]string{
		SourceHeader,
		{"", "01", "", "", "0.12", "Food", ""},
		{"", "02", "", "", "0.3", "Alcohol & Tobacco", ""},
		{"", "01", "0101", "", "0.455", "Food", "Cereals"},
		{"s1", "01", "0101", "rice_prices", "0.2", "Food", "Cereals"},
	}
}

// WriteCSV writes records to name inside a fresh temp dir and returns the path.
func WriteCSV(t *testing.T, name string, records [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteXLSX writes records to sheet of a workbook named name inside a fresh temp dir.
func WriteXLSX(t *testing.T, name, sheet string, records [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if first := f.GetSheetName(0); first != sheet {
		if err := f.SetSheetName(first, sheet); err != nil {
			t.Fatalf("Failed to rename sheet: %v", err)
		}
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Invalid row %d: %v", i, err)
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save %s: %v", path, err)
	}
	return path
}
