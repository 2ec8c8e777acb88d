package exporter

import (
	"fmt"
	"log/slog"

	"sourcemaps/internal/infrastructure"
	"sourcemaps/pkg/contracts/domain"
)

// NodeRecords renders nodes as all_tables rows, in the given order.
func NodeRecords(nodes []domain.Node) [][]string {
	records := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		records = append(records, []string{
			n.ID,
			n.Name,
			formatOptional(n.ParentID),
			formatInt(n.Weight),
			formatBool(n.IsPrimitive),
			formatOptional(n.SourceSlug),
			n.ShortID,
			formatOptional(n.ParentShortID),
		})
	}
	return records
}

// StreamRecords renders edges as composed_streams rows, in the given order.
func StreamRecords(edges []domain.StreamEdge) [][]string {
	records := make([][]string, 0, len(edges))
	for _, e := range edges {
		records = append(records, []string{
			formatOptional(e.ParentStream),
			e.Stream,
			formatInt(e.Weight),
		})
	}
	return records
}

// TableExporter writes the node and stream tables
type TableExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewTableExporter creates a new table exporter
func NewTableExporter(logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &TableExporter{
		csvWriter: NewCSVWriter(logger),
		logger:    logger,
	}
}

// StageNodes renders the all_tables node table into a staged file
func (e *TableExporter) StageNodes(path string, nodes []domain.Node) (*StagedFile, error) {
	staged, err := e.csvWriter.StageCSV(path, WriteOptions{
		Headers: domain.NodeTableColumns,
		Records: NodeRecords(nodes),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write node table: %w", err)
	}

	e.logger.Debug("Node table staged",
		slog.String("file", path),
		slog.Int("rows", len(nodes)))
	return staged, nil
}

// StageStreams renders the composed_streams edge table into a staged file
func (e *TableExporter) StageStreams(path string, edges []domain.StreamEdge) (*StagedFile, error) {
	staged, err := e.csvWriter.StageCSV(path, WriteOptions{
		Headers: domain.StreamTableColumns,
		Records: StreamRecords(edges),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write stream table: %w", err)
	}

	e.logger.Debug("Stream table staged",
		slog.String("file", path),
		slog.Int("rows", len(edges)))
	return staged, nil
}
