package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sourcemaps/internal/infrastructure"
	"sourcemaps/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// requiredColumns must appear in every input header.
var requiredColumns = []string{domain.ColumnRelativeImportance}

// Reader loads source tables from CSV or XLSX files.
type Reader struct {
	sheet    string
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewReader creates a reader. sheet selects the worksheet of XLSX inputs;
// empty means the first sheet.
func NewReader(sheet string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	return &Reader{
		sheet:    sheet,
		logger:   infrastructure.WithComponent(logger, "source"),
		validate: validate,
		tracer:   otel.Tracer("sourcemaps/source"),
	}
}

// Read loads path, choosing the format from its extension.
func (r *Reader) Read(ctx context.Context, path string) (*domain.SourceTable, error) {
	ctx, span := r.tracer.Start(ctx, "source.read", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	var (
		table *domain.SourceTable
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = r.ReadXLSX(path)
	default:
		table, err = r.readCSVFile(path)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(table.Rows)))
	r.logger.InfoContext(ctx, "Source table loaded",
		slog.String("file", path),
		slog.Int("rows", len(table.Rows)),
		slog.Any("columns", table.Columns))
	return table, nil
}

func (r *Reader) readCSVFile(path string) (*domain.SourceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	return r.ReadCSV(f)
}

// ReadCSV parses a CSV stream whose first record is the header.
func (r *Reader) ReadCSV(in io.Reader) (*domain.SourceTable, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &HeaderError{Missing: requiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columnMap, columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	table := &domain.SourceTable{Columns: columns}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		line, _ := cr.FieldPos(0)
		row, ok, err := r.buildRow(line, record, columnMap)
		if err != nil {
			return nil, err
		}
		if ok {
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

// ReadXLSX parses the configured worksheet of a workbook whose first row is the header.
func (r *Reader) ReadXLSX(path string) (*domain.SourceTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &HeaderError{Missing: requiredColumns}
	}

	r.logger.Debug("Reading worksheet", slog.String("sheet", sheet), slog.Int("rows", len(rows)))

	columnMap, columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	table := &domain.SourceTable{Columns: columns}
	for i, record := range rows[1:] {
		// Sheet rows are 1-based and the header occupies row 1.
		row, ok, err := r.buildRow(i+2, record, columnMap)
		if err != nil {
			return nil, err
		}
		if ok {
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

// mapHeader maps known source columns to their positions.
// It returns the known columns in header order.
func mapHeader(header []string) (map[string]int, []string, error) {
	columnMap := make(map[string]int)
	var columns []string

	for i, cell := range header {
		if i == 0 {
			cell = strings.TrimPrefix(cell, utf8BOM)
		}
		name := strings.ToLower(strings.TrimSpace(cell))
		if !isSourceColumn(name) {
			continue
		}
		if _, dup := columnMap[name]; dup {
			return nil, nil, &HeaderError{Duplicate: name}
		}
		columnMap[name] = i
		columns = append(columns, name)
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columnMap[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &HeaderError{Missing: missing}
	}

	return columnMap, columns, nil
}

func isSourceColumn(name string) bool {
	for _, c := range domain.SourceColumns {
		if c == name {
			return true
		}
	}
	return false
}

// buildRow turns a record into a SourceRow. Blank records report ok=false.
func (r *Reader) buildRow(line int, record []string, columnMap map[string]int) (domain.SourceRow, bool, error) {
	cell := func(column string) string {
		idx, ok := columnMap[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := domain.SourceRow{
		Line:               line,
		SourceID:           cell(domain.ColumnSourceID),
		CategoryID:         cell(domain.ColumnCategoryID),
		SubcategoryID:      cell(domain.ColumnSubcategoryID),
		Table:              cell(domain.ColumnTable),
		RelativeImportance: cell(domain.ColumnRelativeImportance),
		Category:           cell(domain.ColumnCategory),
		Subcategory:        cell(domain.ColumnSubcategory),
	}

	if row == (domain.SourceRow{Line: line}) {
		return row, false, nil
	}

	if err := r.validate.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			reason := "is required"
			if verrs[0].Tag() != "required" {
				reason = "failed " + verrs[0].Tag()
			}
			return row, false, &LineError{Line: line, Column: verrs[0].Field(), Reason: reason}
		}
		return row, false, fmt.Errorf("line %d: %w", line, err)
	}

	return row, true, nil
}
