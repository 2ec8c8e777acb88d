package exporter

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sourcemaps/pkg/contracts/domain"
)

// Workbook sheet names, matching the CSV table names.
const (
	NodeSheet   = "all_tables"
	StreamSheet = "composed_streams"
)

// StageWorkbook renders both tables into one staged XLSX file, one sheet each.
// Cells hold the same text as the CSV tables except weights, which are numbers.
func StageWorkbook(path string, nodes []domain.Node, edges []domain.StreamEdge) (*StagedFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), NodeSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %s: %w", NodeSheet, err)
	}
	if _, err := f.NewSheet(StreamSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", StreamSheet, err)
	}

	// relative_importance is column 4 of the node table, weight column 3 of the stream table
	if err := writeSheet(f, NodeSheet, domain.NodeTableColumns, NodeRecords(nodes), 3); err != nil {
		return nil, err
	}
	if err := writeSheet(f, StreamSheet, domain.StreamTableColumns, StreamRecords(edges), 2); err != nil {
		return nil, err
	}

	return stage(path, func(out *os.File) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		return nil
	})
}

// writeSheet streams header and records into sheet; the column at numericCol is stored as a number.
func writeSheet(f *excelize.File, sheet string, headers []string, records [][]string, numericCol int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}

	row := func(n int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, values)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := row(1, header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, record := range records {
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if weight, err := strconv.ParseInt(record[numericCol], 10, 64); err == nil {
			values[numericCol] = weight
		}
		if err := row(i+2, values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", sheet, err)
	}
	return nil
}
