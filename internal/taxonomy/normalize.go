package taxonomy

import (
	"sort"

	"sourcemaps/pkg/contracts/domain"
)

// Defaults for the synthetic root that every category hangs from.
const (
	DefaultRootID   = "999"
	DefaultRootName = "CPI"
)

// RootNode builds the synthetic root: no parent and zero weight.
func RootNode(id, name string) domain.Node {
	return domain.Node{ID: id, Name: name, RawWeight: "0"}
}

// Normalize concatenates the root and the tier frames into one collection.
// Duplicates are kept; later stages decide whether they are legal.
func Normalize(root domain.Node, frames ...TierFrame) []domain.Node {
	size := 1
	for _, f := range frames {
		size += len(f.Nodes)
	}
	nodes := make([]domain.Node, 0, size)
	nodes = append(nodes, root)
	for _, f := range frames {
		nodes = append(nodes, f.Nodes...)
	}
	return nodes
}

// SortByParent orders nodes by parent_id ascending with the root last.
// The sort is stable so ties keep concatenation order.
func SortByParent(nodes []domain.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].ParentID, nodes[j].ParentID
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
