package domain

// Tier identifies the level of the source hierarchy a row belongs to.
type Tier string

const (
	TierCategory    Tier = "category"
	TierSubcategory Tier = "subcategory"
	TierTable       Tier = "table"
)

// Source column names as they appear in the curated spreadsheet header.
const (
	ColumnSourceID           = "source_id"
	ColumnCategoryID         = "category_id"
	ColumnSubcategoryID      = "subcategory_id"
	ColumnTable              = "table"
	ColumnRelativeImportance = "relative_importance"
	ColumnCategory           = "category"
	ColumnSubcategory        = "subcategory"
)

// SourceColumns lists the input columns in their canonical order.
var SourceColumns = []string{
	ColumnSourceID,
	ColumnCategoryID,
	ColumnSubcategoryID,
	ColumnTable,
	ColumnRelativeImportance,
	ColumnCategory,
	ColumnSubcategory,
}

// SourceRow is one record of the curated category spreadsheet.
// Empty strings stand for absent cells.
type SourceRow struct {
	Line               int    `json:"line"`
	SourceID           string `json:"source_id"`
	CategoryID         string `json:"category_id"`
	SubcategoryID      string `json:"subcategory_id"`
	Table              string `json:"table"`
	RelativeImportance string `json:"relative_importance" validate:"required"`
	Category           string `json:"category"`
	Subcategory        string `json:"subcategory"`
}

// Value returns the cell for a source column name, and whether the column is known.
func (r SourceRow) Value(column string) (string, bool) {
	switch column {
	case ColumnSourceID:
		return r.SourceID, true
	case ColumnCategoryID:
		return r.CategoryID, true
	case ColumnSubcategoryID:
		return r.SubcategoryID, true
	case ColumnTable:
		return r.Table, true
	case ColumnRelativeImportance:
		return r.RelativeImportance, true
	case ColumnCategory:
		return r.Category, true
	case ColumnSubcategory:
		return r.Subcategory, true
	}
	return "", false
}

// SourceTable is the parsed input: the header actually present plus its rows.
type SourceTable struct {
	Columns []string    `json:"columns"`
	Rows    []SourceRow `json:"rows"`
}

// HasColumn reports whether the input header carried the named column.
func (t SourceTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Node is one vertex of the normalized taxonomy.
type Node struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_id,omitempty"`
	RawWeight     string  `json:"-"`
	Weight        int64   `json:"relative_importance"`
	IsPrimitive   bool    `json:"is_primitive"`
	Slug          string  `json:"-"`
	SourceSlug    *string `json:"source_database_name,omitempty"`
	ShortID       string  `json:"database_name"`
	ParentShortID *string `json:"parent_database_name,omitempty"`
	Tier          Tier    `json:"-"`
	Line          int     `json:"-"`
}

// IsRoot reports whether the node is the synthetic root.
func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

// StreamEdge is one row of the composed stream list consumed downstream.
type StreamEdge struct {
	ParentStream *string `json:"parent_stream"`
	Stream       string  `json:"stream"`
	Weight       int64   `json:"weight"`
}

// Canonical node table columns, in output order.
var NodeTableColumns = []string{
	"id",
	"name",
	"parent_id",
	"relative_importance",
	"is_primitive",
	"source_database_name",
	"database_name",
	"parent_database_name",
}

// Canonical edge table columns, in output order.
var StreamTableColumns = []string{"parent_stream", "stream", "weight"}
