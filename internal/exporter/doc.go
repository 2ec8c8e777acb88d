// Package exporter writes the normalized taxonomy to disk.
//
// Every output is first rendered to a temporary sibling of its target
// (CSVWriter.StageCSV, TableExporter.StageNodes and StageStreams, StageWorkbook).
// CommitAll then moves all staged files into place together: if any rename
// fails, the targets that were already replaced get their previous content
// back, so a failed run never leaves one table updated and the other stale.
//
// Example usage:
//
//	tables := exporter.NewTableExporter(logger)
//	nodes, err := tables.StageNodes(paths.NodeTable, result.Nodes)
//	if err != nil {
//		return err
//	}
//	streams, err := tables.StageStreams(paths.StreamTable, result.Streams)
//	if err != nil {
//		exporter.DiscardAll(nodes)
//		return err
//	}
//	err = exporter.CommitAll(nodes, streams)
package exporter
