// Package source reads the curated category spreadsheet into a domain.SourceTable.
//
// CSV files are read with encoding/csv and workbooks (.xlsx, .xlsm) with excelize.
// Header names are matched case-insensitively after trimming, unknown columns are
// ignored, fully blank rows are skipped and every cell is trimmed. The only column
// that must be present is relative_importance; the remaining columns are optional
// and their absence surfaces later as a schema mismatch in the taxonomy pipeline.
package source
