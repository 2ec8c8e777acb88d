package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcemaps/pkg/contracts/domain"
)

func ptr(s string) *string { return &s }

func linkedNode(id, parent, short string) domain.Node {
	n := domain.Node{ID: id, Name: id, Slug: short + "_source", ShortID: short}
	if parent != "" {
		n.ParentID = ptr(parent)
	}
	return n
}

func TestLink(t *testing.T) {
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("01", "999", "food"),
		linkedNode("0101", "01", "cereals"),
		linkedNode("rice", "0101", "rice"),
		linkedNode("02", "999", "energy"),
	}
	require.NoError(t, Link(nodes))

	byID := make(map[string]domain.Node)
	for _, n := range nodes {
		byID[n.ID] = n
	}

	assert.Nil(t, byID["999"].ParentShortID)
	assert.Equal(t, "cpi", *byID["01"].ParentShortID)
	assert.Equal(t, "food", *byID["0101"].ParentShortID)
	assert.Equal(t, "cereals", *byID["rice"].ParentShortID)

	for id, want := range map[string]bool{"999": false, "01": false, "0101": false, "rice": true, "02": true} {
		assert.Equal(t, want, byID[id].IsPrimitive, id)
		if want {
			require.NotNil(t, byID[id].SourceSlug, id)
			assert.Equal(t, byID[id].Slug, *byID[id].SourceSlug)
		} else {
			assert.Nil(t, byID[id].SourceSlug, id)
		}
	}
}

func TestLink_PrimitiveUsesRawIDs(t *testing.T) {
	// the child points at the raw id "01", not at the short id "food"
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("01", "999", "food"),
		linkedNode("food", "01", "food_table"),
	}
	require.NoError(t, Link(nodes))
	assert.False(t, nodes[1].IsPrimitive)
	assert.True(t, nodes[2].IsPrimitive)
}

func TestLink_UnresolvedParent(t *testing.T) {
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("01", "999", "food"),
		linkedNode("0101", "07", "cereals"),
		linkedNode("0102", "08", "dairy"),
	}

	err := Link(nodes)
	var unresolved *UnresolvedParentError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "0101", unresolved.NodeID)
	assert.Equal(t, "07", unresolved.ParentID)
	assert.Equal(t, 0, unresolved.Matches)
	assert.Contains(t, err.Error(), `parent "08" not found`)
}

func TestLink_AmbiguousParent(t *testing.T) {
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("01", "999", "food"),
		linkedNode("01", "999", "food_again"),
		linkedNode("0101", "01", "cereals"),
	}

	err := Link(nodes)
	var unresolved *UnresolvedParentError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, 2, unresolved.Matches)
}

func TestLink_Cycle(t *testing.T) {
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("a", "b", "a"),
		linkedNode("b", "a", "b"),
	}

	err := Link(nodes)
	var cycle *HierarchyCycleError
	require.ErrorAs(t, err, &cycle)
}

func TestLink_SelfParent(t *testing.T) {
	nodes := []domain.Node{
		linkedNode("999", "", "cpi"),
		linkedNode("a", "a", "a"),
	}

	err := Link(nodes)
	var unresolved *UnresolvedParentError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "a", unresolved.NodeID)
}
