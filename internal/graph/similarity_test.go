package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityGraph_AddEdgeRejectsSelfLoop(t *testing.T) {
	g := NewSimilarityGraph()
	err := g.AddEdge("a", "a", 100)
	assert.ErrorIs(t, err, ErrSelfLoop)
	assert.Zero(t, g.NodeCount())
}

func TestSimilarityGraph_SingleEdgePerPair(t *testing.T) {
	g := NewSimilarityGraph()
	require.NoError(t, g.AddEdge("a", "b", 60))
	require.NoError(t, g.AddEdge("b", "a", 75))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []Edge{{Source: "a", Target: "b", Weight: 75}}, g.Edges())
}

func TestSimilarityGraph_EdgesNormalizedAndSorted(t *testing.T) {
	g := NewSimilarityGraph()
	require.NoError(t, g.AddEdge("c", "a", 10))
	require.NoError(t, g.AddEdge("b", "a", 20))

	assert.Equal(t, []Edge{
		{Source: "a", Target: "b", Weight: 20},
		{Source: "a", Target: "c", Weight: 10},
	}, g.Edges())
}

func TestSimilarityGraph_Neighbors(t *testing.T) {
	g := NewSimilarityGraph()
	require.NoError(t, g.AddEdge("f", "c", 70))
	require.NoError(t, g.AddEdge("f", "b", 90))
	require.NoError(t, g.AddEdge("f", "a", 70))

	assert.Equal(t, []Neighbor{
		{ID: "b", Weight: 90},
		{ID: "a", Weight: 70},
		{ID: "c", Weight: 70},
	}, g.Neighbors("f"))
	assert.Empty(t, g.Neighbors("missing"))
}

func TestSimilarityGraph_CloneIsDeep(t *testing.T) {
	g := NewSimilarityGraph()
	require.NoError(t, g.AddEdge("a", "b", 50))

	c := g.Clone()
	require.NoError(t, c.AddEdge("a", "b", 99))
	c.AddNode("z")

	w, _ := g.Weight("a", "b")
	assert.Equal(t, 50, w)
	assert.False(t, g.HasNode("z"))
}

func TestFromParts_AddsEdgeEndpoints(t *testing.T) {
	g, err := FromParts([]string{"lonely"}, []Edge{{Source: "a", Target: "b", Weight: 80}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "lonely"}, g.Nodes())
}

func TestFromParts_SelfLoop(t *testing.T) {
	_, err := FromParts(nil, []Edge{{Source: "a", Target: "a", Weight: 80}})
	assert.ErrorIs(t, err, ErrSelfLoop)
}
