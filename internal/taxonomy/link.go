package taxonomy

import (
	"errors"

	"sourcemaps/pkg/contracts/domain"
)

// Link resolves each node's parent short id, marks primitive nodes and
// keeps SourceSlug only on primitives. Primitive status is decided on raw
// ids since the source table links rows by id.
//
// Every unresolved or ambiguous parent is reported, joined into one error.
func Link(nodes []domain.Node) error {
	byID := make(map[string][]int, len(nodes))
	referenced := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		byID[n.ID] = append(byID[n.ID], i)
		if n.ParentID != nil {
			referenced[*n.ParentID] = true
		}
	}

	parents := make([]int, len(nodes))
	var errs []error
	for i := range nodes {
		n := &nodes[i]
		n.IsPrimitive = !referenced[n.ID]
		n.SourceSlug = nil
		if n.IsPrimitive {
			slug := n.Slug
			n.SourceSlug = &slug
		}

		parents[i] = -1
		n.ParentShortID = nil
		if n.ParentID == nil {
			continue
		}
		matches := byID[*n.ParentID]
		if len(matches) != 1 || matches[0] == i {
			count := len(matches)
			if count == 1 {
				count = 0
			}
			errs = append(errs, &UnresolvedParentError{NodeID: n.ID, ParentID: *n.ParentID, Matches: count})
			continue
		}
		parents[i] = matches[0]
		short := nodes[matches[0]].ShortID
		n.ParentShortID = &short
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return checkAcyclic(nodes, parents)
}

// checkAcyclic walks every parent chain once; reaching a node already on
// the current chain means the chain loops instead of ending at the root.
func checkAcyclic(nodes []domain.Node, parents []int) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(nodes))
	for start := range nodes {
		var path []int
		i := start
		for i >= 0 && state[i] == unvisited {
			state[i] = visiting
			path = append(path, i)
			i = parents[i]
		}
		if i >= 0 && state[i] == visiting {
			return &HierarchyCycleError{NodeID: nodes[i].ID}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}
