package taxonomy

import (
	"sort"

	"sourcemaps/pkg/contracts/domain"
)

// AssignIdentifiers fills Slug and ShortID for every node. It is pure per
// node; uniqueness is checked afterwards over the whole set.
func AssignIdentifiers(nodes []domain.Node, shortener Shortener) error {
	for i := range nodes {
		slug := Slugify(nodes[i].Name)
		short := shortener.Shorten(slug)
		if slug == "" || short == "" {
			return &EmptyIdentifierError{NodeID: nodes[i].ID, Name: nodes[i].Name}
		}
		nodes[i].Slug = slug
		nodes[i].ShortID = short
	}
	return nil
}

// FindCollisions groups the distinct slugs mapped onto each short id and
// returns the short ids claimed by more than one slug, sorted.
func FindCollisions(nodes []domain.Node) []Collision {
	bySlug := make(map[string]string, len(nodes))
	for _, n := range nodes {
		bySlug[n.Slug] = n.ShortID
	}
	byShort := make(map[string][]string)
	for slug, short := range bySlug {
		byShort[short] = append(byShort[short], slug)
	}

	var collisions []Collision
	for short, slugs := range byShort {
		if len(slugs) < 2 {
			continue
		}
		sort.Strings(slugs)
		collisions = append(collisions, Collision{ShortID: short, SourceSlugs: slugs})
	}
	sort.Slice(collisions, func(i, j int) bool { return collisions[i].ShortID < collisions[j].ShortID })
	return collisions
}

// ValidateUniqueness fails with a NamingCollisionError listing every
// collision. There is no automatic disambiguation: the source names must change.
func ValidateUniqueness(nodes []domain.Node) error {
	if collisions := FindCollisions(nodes); len(collisions) > 0 {
		return &NamingCollisionError{Collisions: collisions}
	}
	return nil
}

// SharedShortIDs returns short ids carried by several nodes with the same
// slug, mapped to the ids of those nodes. These are legal but worth a warning.
func SharedShortIDs(nodes []domain.Node) map[string][]string {
	ids := make(map[string][]string)
	for _, n := range nodes {
		ids[n.ShortID] = append(ids[n.ShortID], n.ID)
	}
	for short, owners := range ids {
		if len(owners) < 2 {
			delete(ids, short)
		}
	}
	return ids
}
