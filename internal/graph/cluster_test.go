package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustGraph builds a graph from nodes and edges, failing the test on error.
func mustGraph(t *testing.T, nodes []string, edges []Edge) *SimilarityGraph {
	t.Helper()
	g, err := FromParts(nodes, edges)
	require.NoError(t, err)
	return g
}

// twoFamilies is a graph with components {a,b,c}, {x,y} and isolated z.
func twoFamilies(t *testing.T) *SimilarityGraph {
	t.Helper()
	return mustGraph(t,
		[]string{"a", "b", "c", "x", "y", "z"},
		[]Edge{
			{Source: "a", Target: "b", Weight: 90},
			{Source: "b", Target: "c", Weight: 70},
			{Source: "x", Target: "y", Weight: 100},
		},
	)
}

func TestExtract_ReachableNodesOnly(t *testing.T) {
	g := twoFamilies(t)

	sub, err := Extract(g, "c")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, sub.Nodes())
	assert.Equal(t, []Edge{
		{Source: "a", Target: "b", Weight: 90},
		{Source: "b", Target: "c", Weight: 70},
	}, sub.Edges())
}

func TestExtract_IsolatedNode(t *testing.T) {
	g := twoFamilies(t)

	sub, err := Extract(g, "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, sub.Nodes())
	assert.Zero(t, sub.EdgeCount())
}

func TestExtract_UnknownArtifact(t *testing.T) {
	_, err := Extract(twoFamilies(t), "missing")
	assert.ErrorIs(t, err, ErrUnknownArtifact)
}

func TestExtract_DoesNotAliasSource(t *testing.T) {
	g := twoFamilies(t)
	sub, err := Extract(g, "x")
	require.NoError(t, err)

	require.NoError(t, sub.AddEdge("x", "new", 55))
	require.NoError(t, sub.AddEdge("x", "y", 1))

	assert.False(t, g.HasNode("new"))
	w, ok := g.Weight("x", "y")
	require.True(t, ok)
	assert.Equal(t, 100, w)
	assert.Equal(t, 3, g.EdgeCount())
}

func TestExtract_EveryNodeOfComponentGivesSameSubgraph(t *testing.T) {
	g := twoFamilies(t)
	want, err := Extract(g, "a")
	require.NoError(t, err)

	for _, focus := range []string{"b", "c"} {
		got, err := Extract(g, focus)
		require.NoError(t, err)
		assert.Equal(t, want.Nodes(), got.Nodes())
		assert.Equal(t, want.Edges(), got.Edges())
	}
}

func TestComponents_SkipsSingletonsByDefault(t *testing.T) {
	comps := Components(twoFamilies(t), false)
	require.Len(t, comps, 2)

	assert.Equal(t, []string{"a", "b", "c"}, comps[0].Members)
	assert.Equal(t, 2, comps[0].EdgeCount)
	assert.Equal(t, 90, comps[0].MaxWeight)
	assert.InDelta(t, 80.0, comps[0].MeanWeight, 1e-9)
	assert.InDelta(t, 2.0/3.0, comps[0].Density, 1e-9)

	assert.Equal(t, []string{"x", "y"}, comps[1].Members)
	assert.InDelta(t, 1.0, comps[1].Density, 1e-9)
}

func TestComponents_IncludeSingletons(t *testing.T) {
	comps := Components(twoFamilies(t), true)
	require.Len(t, comps, 3)
	assert.Equal(t, []string{"z"}, comps[2].Members)
	assert.Zero(t, comps[2].EdgeCount)
	assert.Zero(t, comps[2].MeanWeight)
}

func TestComponents_Empty(t *testing.T) {
	assert.Empty(t, Components(NewSimilarityGraph(), true))
}
