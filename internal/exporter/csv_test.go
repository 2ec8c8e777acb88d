package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer := NewCSVWriter(nil)
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "all_tables.csv",
			options: WriteOptions{
				Headers: []string{"id", "name", "parent_id"},
				Records: [][]string{
					{"01", "Food", "999"},
					{"999", "CPI", ""},
				},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "id,name,parent_id\n01,Food,999\n999,CPI,\n", string(content))
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"stream", "weight"},
				Records:   [][]string{{"food", "120"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "stream,weight\nfood,120\n", string(content[3:]))
			},
		},
		{
			name:     "quotes fields with separators",
			filePath: "quoted.csv",
			options: WriteOptions{
				Headers: []string{"name"},
				Records: [][]string{{"Fruits, fresh"}, {`The "best" bread`}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "name\n\"Fruits, fresh\"\n\"The \"\"best\"\" bread\"\n", string(content))
			},
		},
		{
			name:     "empty records",
			filePath: "nested/dir/empty.csv",
			options: WriteOptions{
				Headers: []string{"parent_stream", "stream", "weight"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 1) // only headers
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath := filepath.Join(tempDir, tt.filePath)

			writeCSV(t, writer, fullPath, tt.options)

			content, err := os.ReadFile(fullPath)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "composed_streams.csv")

	require.NoError(t, os.WriteFile(path, []byte("stale,content,that,is,longer\n"), 0644))
	writeCSV(t, writer, path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}})

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestCSVWriter_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	staged, err := NewCSVWriter(nil).StageCSV(filepath.Join(blocker, "out.csv"), WriteOptions{Headers: []string{"a"}})
	assert.ErrorContains(t, err, "failed to create directory")
	assert.Nil(t, staged)
}

func TestCSVWriter_StageLeavesTargetUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_tables.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	staged, err := NewCSVWriter(nil).StageCSV(path, WriteOptions{Headers: []string{"new"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(content))

	staged.Discard()
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func writeCSV(t *testing.T, writer *CSVWriter, path string, options WriteOptions) {
	t.Helper()
	staged, err := writer.StageCSV(path, options)
	require.NoError(t, err)
	require.NoError(t, CommitAll(staged))
}

func TestFormatters(t *testing.T) {
	name := "rice_prices"

	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "-12", formatInt(-12))
	assert.Equal(t, "9223372036854775807", formatInt(1<<63-1))
	assert.Equal(t, "True", formatBool(true))
	assert.Equal(t, "False", formatBool(false))
	assert.Equal(t, "", formatOptional(nil))
	assert.Equal(t, "rice_prices", formatOptional(&name))
}
