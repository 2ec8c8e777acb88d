package taxonomy

import "sourcemaps/pkg/contracts/domain"

// Compose projects every node, internal ones included, into the edge list
// consumed by the stream store.
func Compose(nodes []domain.Node) []domain.StreamEdge {
	edges := make([]domain.StreamEdge, len(nodes))
	for i, n := range nodes {
		edges[i] = domain.StreamEdge{
			ParentStream: n.ParentShortID,
			Stream:       n.ShortID,
			Weight:       n.Weight,
		}
	}
	return edges
}
