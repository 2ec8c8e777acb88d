package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sourcemaps/internal/config"
	apperrors "sourcemaps/internal/errors"
	"sourcemaps/internal/infrastructure"
	"sourcemaps/internal/shared/testutil"
)

const (
	goldenNodes = "id,name,parent_id,relative_importance,is_primitive,source_database_name,database_name,parent_database_name\n" +
		"0101,Cereals,01,455,False,,cereals,food\n" +
		"rice_prices,rice_prices,0101,200,True,rice_prices,rice_prices,cereals\n" +
		"01,Food,999,120,False,,food,cpi\n" +
		"02,Alcohol & Tobacco,999,300,True,alcohol_tobacco,alcohol_tobacco,cpi\n" +
		"999,CPI,,0,False,,cpi,\n"

	goldenStreams = "parent_stream,stream,weight\n" +
		"food,cereals,455\n" +
		"cereals,rice_prices,200\n" +
		"cpi,food,120\n" +
		"cpi,alcohol_tobacco,300\n" +
		",cpi,0\n"
)

// newTestApplication points the default configuration at input and writes outputs under a temp dir.
func newTestApplication(t *testing.T, input string, mutate func(cfg *config.Config)) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.InputFile = input
	if mutate != nil {
		mutate(cfg)
	}

	logger, handler := testutil.NewTestLogger(t)
	application, err := NewApplication(cfg, config.ResolvePaths(cfg, t.TempDir()), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, application.Stop(context.Background()))
	})
	return application, handler
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestApplication_Run(t *testing.T) {
	input := testutil.WriteCSV(t, "categories-tables-us.csv", testutil.SampleSourceRecords())
	application, handler := newTestApplication(t, input, nil)

	ctx := infrastructure.WithRunID(context.Background(), "run-1")
	require.NoError(t, application.Run(ctx))

	assert.Equal(t, goldenNodes, readFile(t, application.Paths.NodeTable))
	assert.Equal(t, goldenStreams, readFile(t, application.Paths.StreamTable))
	assert.NoFileExists(t, filepath.Join(application.Paths.BaseDir, "taxonomy.xlsx"))

	testutil.AssertNoErrors(t, handler)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pipeline finished")
	testutil.AssertLogAttr(t, handler, "scale_factor", int64(1000))
}

func TestApplication_RunIsIdempotent(t *testing.T) {
	input := testutil.WriteCSV(t, "categories-tables-us.csv", testutil.SampleSourceRecords())
	application, _ := newTestApplication(t, input, nil)

	require.NoError(t, application.Run(context.Background()))
	nodes := readFile(t, application.Paths.NodeTable)
	streams := readFile(t, application.Paths.StreamTable)

	require.NoError(t, application.Run(context.Background()))
	assert.Equal(t, nodes, readFile(t, application.Paths.NodeTable))
	assert.Equal(t, streams, readFile(t, application.Paths.StreamTable))
}

func TestApplication_RunFromWorkbook(t *testing.T) {
	input := testutil.WriteXLSX(t, "categories.xlsx", "weights", testutil.SampleSourceRecords())
	application, _ := newTestApplication(t, input, func(cfg *config.Config) {
		cfg.Paths.InputSheet = "weights"
		cfg.Paths.WorkbookFile = "out/taxonomy.xlsx"
		cfg.Telemetry.TraceFile = "telemetry/trace.jsonl"
		cfg.Telemetry.MetricsFile = "telemetry/sourcemaps.prom"
	})

	require.NoError(t, application.Run(context.Background()))
	assert.Equal(t, goldenNodes, readFile(t, application.Paths.NodeTable))
	assert.Equal(t, goldenStreams, readFile(t, application.Paths.StreamTable))

	f, err := excelize.OpenFile(application.Paths.Workbook)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("composed_streams")
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	require.NoError(t, application.Stop(context.Background()))
	trace := readFile(t, application.Paths.TraceFile)
	assert.Contains(t, trace, "taxonomy.identify")
	assert.Contains(t, trace, `"Key":"streams"`)
	assert.Contains(t, readFile(t, application.Paths.MetricsFile), "sourcemaps_scale_factor")
}

func TestApplication_FailedRunMarksTrace(t *testing.T) {
	input := testutil.WriteCSV(t, "categories.csv", [][]string{
		testutil.SourceHeader,
		{"", "01", "", "", "0.5", "Food", ""},
		{"", "09", "0901", "", "0.5", "Ghost", "Orphan"},
	})
	application, _ := newTestApplication(t, input, func(cfg *config.Config) {
		cfg.Telemetry.TraceFile = "telemetry/trace.jsonl"
	})

	require.Error(t, application.Run(context.Background()))
	require.NoError(t, application.Stop(context.Background()))

	trace := readFile(t, application.Paths.TraceFile)
	assert.Contains(t, trace, `"Code":"Error"`)
	assert.Contains(t, trace, `"Name":"exception"`)
	assert.NotContains(t, trace, `"Key":"streams"`)
}

func TestApplication_RunErrors(t *testing.T) {
	long := strings.Repeat("x", 68)

	tests := []struct {
		name    string
		records [][]string
		want    apperrors.ErrorType
		message string
	}{
		{
			name: "naming collision",
			records: [][]string{
				testutil.SourceHeader,
				{"", "01", "", "", "0.5", long + "az", ""},
				{"", "02", "", "", "0.5", long + "bz", ""},
			},
			want:    apperrors.ErrTypeNaming,
			message: "1 naming collision(s)",
		},
		{
			name: "unresolved parent",
			records: [][]string{
				testutil.SourceHeader,
				{"", "01", "", "", "0.5", "Food", ""},
				{"", "09", "0901", "", "0.5", "Ghost", "Orphan"},
			},
			want:    apperrors.ErrTypeHierarchy,
			message: `parent "09" not found`,
		},
		{
			name: "schema mismatch",
			records: [][]string{
				{"category_id", "relative_importance", "category"},
				{"01", "0.5", "Food"},
			},
			want:    apperrors.ErrTypeSchema,
			message: "schema mismatch",
		},
		{
			name: "unparsable weight",
			records: [][]string{
				testutil.SourceHeader,
				{"", "01", "", "", "heavy", "Food", ""},
			},
			want:    apperrors.ErrTypeValidation,
			message: "not a decimal number",
		},
		{
			name: "missing weight column",
			records: [][]string{
				{"category_id", "category"},
				{"01", "Food"},
			},
			want:    apperrors.ErrTypeParsing,
			message: "missing required column(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testutil.WriteCSV(t, "categories.csv", tt.records)
			application, handler := newTestApplication(t, input, nil)

			err := application.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.TypeOf(err))
			assert.ErrorContains(t, err, tt.message)

			assert.NoFileExists(t, application.Paths.NodeTable)
			assert.NoFileExists(t, application.Paths.StreamTable)
			testutil.AssertLogContains(t, handler, slog.LevelError, "Pipeline failed")
		})
	}
}

func TestApplication_MissingInput(t *testing.T) {
	application, _ := newTestApplication(t, filepath.Join(t.TempDir(), "absent.csv"), nil)

	err := application.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestApplication_RejectsUnsupportedInput(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contains string
	}{
		{"excel lock file", "~$categories.xlsx", "temporary Excel file"},
		{"text file", "categories.txt", "unsupported extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testutil.WriteCSV(t, tt.file, testutil.SampleSourceRecords())
			application, _ := newTestApplication(t, input, nil)

			err := application.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.NoFileExists(t, application.Paths.NodeTable)
		})
	}
}

func TestApplication_UnwritableOutput(t *testing.T) {
	input := testutil.WriteCSV(t, "categories.csv", testutil.SampleSourceRecords())
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	application, _ := newTestApplication(t, input, func(cfg *config.Config) {
		cfg.Paths.NodeTableFile = filepath.Join(blocker, "all_tables.csv")
	})

	err := application.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestApplication_FailedWriteKeepsPreviousOutputs(t *testing.T) {
	tests := []struct {
		name         string
		previousNode string
	}{
		{name: "no previous node table"},
		{name: "previous node table kept", previousNode: "id,name\nold,Old\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testutil.WriteCSV(t, "categories.csv", testutil.SampleSourceRecords())
			application, _ := newTestApplication(t, input, func(cfg *config.Config) {
				cfg.Paths.WorkbookFile = "taxonomy.xlsx"
			})
			if tt.previousNode != "" {
				require.NoError(t, os.WriteFile(application.Paths.NodeTable, []byte(tt.previousNode), 0644))
			}
			// a directory where the stream table belongs makes that write fail
			require.NoError(t, os.Mkdir(application.Paths.StreamTable, 0755))

			err := application.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

			if tt.previousNode == "" {
				assert.NoFileExists(t, application.Paths.NodeTable)
			} else {
				assert.Equal(t, tt.previousNode, readFile(t, application.Paths.NodeTable))
			}
			assert.NoFileExists(t, application.Paths.Workbook)

			entries, err := os.ReadDir(application.Paths.BaseDir)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			want := []string{"composed_streams.csv"}
			if tt.previousNode != "" {
				want = []string{"all_tables.csv", "composed_streams.csv"}
			}
			assert.Equal(t, want, names, "no temp files left behind")
		})
	}
}

func TestNewApplication_InvalidAlternation(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Alternation = "random"

	_, err := NewApplication(cfg, config.ResolvePaths(cfg, t.TempDir()), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}
