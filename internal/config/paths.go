package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// Paths contains every file the pipeline reads or writes, as absolute paths.
// Relative configuration values are resolved against BaseDir.
type Paths struct {
	BaseDir     string
	InputFile   string
	NodeTable   string
	StreamTable string
	Workbook    string
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// GetPaths resolves the configured paths against the working directory
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePaths(cfg, wd), nil
}

// ResolvePaths resolves the configured paths against baseDir.
// Optional outputs that are not configured stay empty.
func ResolvePaths(cfg *Config, baseDir string) *Paths {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:     baseDir,
		InputFile:   resolve(cfg.Paths.InputFile),
		NodeTable:   resolve(cfg.Paths.NodeTableFile),
		StreamTable: resolve(cfg.Paths.StreamTableFile),
		Workbook:    resolve(cfg.Paths.WorkbookFile),
		LogFile:     resolve(cfg.Logging.FilePath),
		TraceFile:   resolve(cfg.Telemetry.TraceFile),
		MetricsFile: resolve(cfg.Telemetry.MetricsFile),
	}
}

// outputs lists the configured output files
func (p *Paths) outputs() []string {
	var outputs []string
	for _, f := range []string{p.NodeTable, p.StreamTable, p.Workbook, p.TraceFile, p.MetricsFile} {
		if f != "" {
			outputs = append(outputs, f)
		}
	}
	return outputs
}

// OutputDirs lists the distinct parent directories of the configured outputs, sorted
func (p *Paths) OutputDirs() []string {
	var dirs []string
	for _, f := range p.outputs() {
		dirs = append(dirs, filepath.Dir(f))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_file", p.InputFile),
		slog.String("node_table", p.NodeTable),
		slog.String("stream_table", p.StreamTable),
		slog.String("workbook", p.Workbook))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
