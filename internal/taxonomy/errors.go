package taxonomy

import (
	"fmt"
	"strings"

	"sourcemaps/pkg/contracts/domain"
)

// SchemaMismatchError reports a tier whose projected columns differ from the
// canonical node schema, usually because the input lacks a source column.
type SchemaMismatchError struct {
	Tier domain.Tier
	Got  []string
	Want []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s tier: got columns [%s], want [%s]",
		e.Tier, strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}

// Collision is one short identifier claimed by more than one source slug.
type Collision struct {
	ShortID     string   `json:"short_id"`
	SourceSlugs []string `json:"source_slugs"`
}

// NamingCollisionError lists every short identifier that distinct source
// slugs collapsed onto. Collisions are sorted by short id.
type NamingCollisionError struct {
	Collisions []Collision
}

func (e *NamingCollisionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d naming collision(s)", len(e.Collisions))
	for _, c := range e.Collisions {
		fmt.Fprintf(&b, "; %s <- [%s]", c.ShortID, strings.Join(c.SourceSlugs, ", "))
	}
	return b.String()
}

// UnresolvedParentError reports a parent_id that does not match exactly one
// other node. Matches is 0 for a missing parent and >1 for an ambiguous one.
type UnresolvedParentError struct {
	NodeID   string
	ParentID string
	Matches  int
}

func (e *UnresolvedParentError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("node %q: parent %q not found", e.NodeID, e.ParentID)
	}
	return fmt.Sprintf("node %q: parent %q is ambiguous (%d nodes share that id)", e.NodeID, e.ParentID, e.Matches)
}

// HierarchyCycleError reports a node whose ancestry never reaches the root.
type HierarchyCycleError struct {
	NodeID string
}

func (e *HierarchyCycleError) Error() string {
	return fmt.Sprintf("node %q does not reach the root: parent chain loops", e.NodeID)
}

// EmptyIdentifierError reports a display name with nothing usable for a slug.
type EmptyIdentifierError struct {
	NodeID string
	Name   string
}

func (e *EmptyIdentifierError) Error() string {
	return fmt.Sprintf("node %q: name %q yields an empty identifier", e.NodeID, e.Name)
}

// RowError reports a source row that cannot become a node.
type RowError struct {
	Line   int
	Tier   domain.Tier
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("line %d: %s %q: %s", e.Line, e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("line %d (%s): %s %q: %s", e.Line, e.Tier, e.Column, e.Value, e.Reason)
}
