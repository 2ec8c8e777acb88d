package taxonomy

import (
	"slices"

	"sourcemaps/pkg/contracts/domain"
)

// Canonical node columns every projected tier must expose, in this order.
const (
	ColumnID                 = "id"
	ColumnName               = "name"
	ColumnParentID           = "parent_id"
	ColumnRelativeImportance = "relative_importance"
)

// CanonicalColumns is the schema shared by all tiers before concatenation.
var CanonicalColumns = []string{ColumnID, ColumnName, ColumnParentID, ColumnRelativeImportance}

// Classification holds the three disjoint tier row sets.
type Classification struct {
	Categories    []domain.SourceRow
	Subcategories []domain.SourceRow
	Tables        []domain.SourceRow
}

// Rows returns the rows classified into tier.
func (c Classification) Rows(tier domain.Tier) []domain.SourceRow {
	switch tier {
	case domain.TierCategory:
		return c.Categories
	case domain.TierSubcategory:
		return c.Subcategories
	case domain.TierTable:
		return c.Tables
	}
	return nil
}

// TierOf decides the tier of a single row. A populated table column wins,
// then a populated subcategory; everything else is a category row.
func TierOf(row domain.SourceRow) domain.Tier {
	switch {
	case row.Table != "":
		return domain.TierTable
	case row.Subcategory != "":
		return domain.TierSubcategory
	default:
		return domain.TierCategory
	}
}

// Classify partitions the source rows by tier, preserving input order.
func Classify(rows []domain.SourceRow) Classification {
	var c Classification
	for _, row := range rows {
		switch TierOf(row) {
		case domain.TierTable:
			c.Tables = append(c.Tables, row)
		case domain.TierSubcategory:
			c.Subcategories = append(c.Subcategories, row)
		default:
			c.Categories = append(c.Categories, row)
		}
	}
	return c
}

// binding maps one canonical column to a source column. An empty source
// binds the canonical column to the root sentinel id.
type binding struct {
	column string
	source string
}

var tierBindings = map[domain.Tier][]binding{
	domain.TierCategory: {
		{ColumnID, domain.ColumnCategoryID},
		{ColumnName, domain.ColumnCategory},
		{ColumnParentID, ""},
		{ColumnRelativeImportance, domain.ColumnRelativeImportance},
	},
	domain.TierSubcategory: {
		{ColumnID, domain.ColumnSubcategoryID},
		{ColumnName, domain.ColumnSubcategory},
		{ColumnParentID, domain.ColumnCategoryID},
		{ColumnRelativeImportance, domain.ColumnRelativeImportance},
	},
	// tables use their own name as id
	domain.TierTable: {
		{ColumnID, domain.ColumnTable},
		{ColumnName, domain.ColumnTable},
		{ColumnParentID, domain.ColumnSubcategoryID},
		{ColumnRelativeImportance, domain.ColumnRelativeImportance},
	},
}

// Tiers lists the tiers in concatenation order.
var Tiers = []domain.Tier{domain.TierCategory, domain.TierSubcategory, domain.TierTable}

// TierFrame is one tier after column selection and renaming.
type TierFrame struct {
	Tier    domain.Tier
	Columns []string
	Nodes   []domain.Node
}

// Project selects and renames the tier's source columns into the node
// schema. Columns whose source is missing from the input header are left
// out of Columns so that CheckSchema can report them.
func Project(tier domain.Tier, rows []domain.SourceRow, header domain.SourceTable, rootID string) TierFrame {
	bindings := tierBindings[tier]
	frame := TierFrame{Tier: tier}
	for _, b := range bindings {
		if b.source == "" || header.HasColumn(b.source) {
			frame.Columns = append(frame.Columns, b.column)
		}
	}

	frame.Nodes = make([]domain.Node, 0, len(rows))
	for _, row := range rows {
		node := domain.Node{Tier: tier, Line: row.Line}
		for _, b := range bindings {
			value := rootID
			if b.source != "" {
				value, _ = row.Value(b.source)
			}
			switch b.column {
			case ColumnID:
				node.ID = value
			case ColumnName:
				node.Name = value
			case ColumnParentID:
				parent := value
				node.ParentID = &parent
			case ColumnRelativeImportance:
				node.RawWeight = value
			}
		}
		frame.Nodes = append(frame.Nodes, node)
	}
	return frame
}

// CheckRows rejects projected nodes missing an id, name or parent id.
// Run it after CheckSchema so a missing column is reported as such.
func CheckRows(frame TierFrame) error {
	bindings := tierBindings[frame.Tier]
	for _, node := range frame.Nodes {
		required := []struct {
			column string
			value  string
		}{
			{bindings[0].source, node.ID},
			{bindings[1].source, node.Name},
			{bindings[2].source, *node.ParentID},
		}
		for _, r := range required {
			if r.value == "" {
				return &RowError{Line: node.Line, Tier: frame.Tier, Column: r.column, Reason: "required for this tier"}
			}
		}
	}
	return nil
}

// CheckSchema verifies every frame exposes CanonicalColumns in order.
func CheckSchema(frames ...TierFrame) error {
	for _, f := range frames {
		if !slices.Equal(f.Columns, CanonicalColumns) {
			return &SchemaMismatchError{Tier: f.Tier, Got: slices.Clone(f.Columns), Want: slices.Clone(CanonicalColumns)}
		}
	}
	return nil
}
