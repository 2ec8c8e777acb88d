// Package app wires one pipeline run together.
//
// An Application is built from a loaded configuration and resolved paths. It owns
// the telemetry providers for the run and connects the source reader, the taxonomy
// pipeline and the table exporter:
//
//	1. Read the source spreadsheet (CSV or XLSX)
//	2. Normalize it into nodes and composed streams
//	3. Write all_tables, composed_streams and the optional workbook
//	4. Record run metrics and flush traces on Stop
//
// # Usage
//
//	application, err := app.NewApplication(cfg, paths, logger)
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(ctx)
//	return application.Run(ctx)
//
// # Error Handling
//
// Run returns *errors.AppError values whose Type tells the operator which part of
// the source data to fix. The app does not call os.Exit() directly, allowing the
// main function to control the exit process.
package app
