package app

import (
	"errors"

	apperrors "sourcemaps/internal/errors"
	"sourcemaps/internal/source"
	"sourcemaps/internal/taxonomy"
)

// classify maps a run failure onto the application error taxonomy,
// carrying the offending identifiers as context.
func classify(err error) *apperrors.AppError {
	var (
		appErr     *apperrors.AppError
		schema     *taxonomy.SchemaMismatchError
		collision  *taxonomy.NamingCollisionError
		unresolved *taxonomy.UnresolvedParentError
		cycle      *taxonomy.HierarchyCycleError
		empty      *taxonomy.EmptyIdentifierError
		row        *taxonomy.RowError
		header     *source.HeaderError
		line       *source.LineError
		write      *writeError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &schema):
		return apperrors.NewSchemaError("source tiers do not share the node schema", err).
			WithContext("tier", string(schema.Tier)).
			WithContext("got", schema.Got).
			WithContext("want", schema.Want)
	case errors.As(err, &collision):
		e := apperrors.NewNamingError("distinct names collapse onto the same database name", err)
		for _, c := range collision.Collisions {
			e.WithContext(c.ShortID, c.SourceSlugs)
		}
		return e
	case errors.As(err, &unresolved):
		return apperrors.NewHierarchyError("parent reference cannot be resolved", err).
			WithContext("id", unresolved.NodeID).
			WithContext("parent_id", unresolved.ParentID)
	case errors.As(err, &cycle):
		return apperrors.NewHierarchyError("hierarchy does not reach the root", err).
			WithContext("id", cycle.NodeID)
	case errors.As(err, &empty):
		return apperrors.NewValidationError("name has no usable identifier characters", err).
			WithContext("id", empty.NodeID)
	case errors.As(err, &row):
		return apperrors.NewValidationError("source row is invalid", err).
			WithContext("line", row.Line).
			WithContext("column", row.Column)
	case errors.As(err, &line):
		return apperrors.NewParsingError("source row is invalid", err).
			WithContext("line", line.Line).
			WithContext("column", line.Column)
	case errors.As(err, &header):
		return apperrors.NewParsingError("source header is invalid", err)
	case errors.As(err, &write):
		return apperrors.NewStorageError("failed to write output", write.err)
	}
	return apperrors.NewParsingError("failed to read source", err)
}
