package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverse_GlobalWraps(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())

	tests := []struct {
		name    string
		current string
		dir     Direction
		want    string
	}{
		{name: "next from first", current: "file:report", dir: DirectionNext, want: "tag:work"},
		{name: "next from last wraps", current: "tag:2024", dir: DirectionNext, want: "file:report"},
		{name: "prev from first wraps", current: "file:report", dir: DirectionPrev, want: "tag:2024"},
		{name: "prev from middle", current: "tag:work", dir: DirectionPrev, want: "file:report"},
		{name: "next without selection", current: "", dir: DirectionNext, want: "file:report"},
		{name: "prev without selection", current: "", dir: DirectionPrev, want: "tag:2024"},
		{name: "next from unknown", current: "tag:gone", dir: DirectionNext, want: "file:report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Traverse(tt.current, tt.dir, nodes, adj))
		})
	}
}

func TestTraverse_EmptyNodes(t *testing.T) {
	for _, dir := range []Direction{DirectionNext, DirectionPrev, DirectionConnectedNext, DirectionConnectedPrev} {
		assert.Equal(t, "", Traverse("file:1", dir, nil, Adjacency{}))
	}
}

func TestTraverse_ConnectedFallsBackToFirstNode(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())

	assert.Equal(t, "file:report", Traverse("", DirectionConnectedNext, nodes, adj))
	assert.Equal(t, "file:report", Traverse("", DirectionConnectedPrev, nodes, adj))
}

func TestTraverse_ConnectedUsesDisplayOrder(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())

	assert.Equal(t, "tag:work", Traverse("file:report", DirectionConnectedNext, nodes, adj))
	assert.Equal(t, "tag:2024", Traverse("file:report", DirectionConnectedPrev, nodes, adj))
	assert.Equal(t, "file:report", Traverse("tag:work", DirectionConnectedNext, nodes, adj))
}

func TestTraverse_ConnectedWithoutNeighborsKeepsFocus(t *testing.T) {
	nodes := append(scenarioNodes(), Node{ID: "tag:orphan", Kind: NodeKindTag, Name: "orphan"})
	adj := BuildAdjacency(scenarioEdges())

	assert.Equal(t, "tag:orphan", Traverse("tag:orphan", DirectionConnectedNext, nodes, adj))
}

func TestTraverse_ConnectedRecomputesFromAdjacency(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())
	assert.Equal(t, "tag:work", Traverse("file:report", DirectionConnectedNext, nodes, adj))

	adj = BuildAdjacency([]Edge{{Source: "file:report", Target: "tag:2024"}})
	assert.Equal(t, "tag:2024", Traverse("file:report", DirectionConnectedNext, nodes, adj))
}

func TestTraverseWithin_WrapsPairOfNeighbors(t *testing.T) {
	nodes := []Node{{ID: "hub"}, {ID: "a"}, {ID: "b"}}
	adj := BuildAdjacency([]Edge{
		{Source: "hub", Target: "a"},
		{Source: "hub", Target: "b"},
	})

	assert.Equal(t, "b", TraverseWithin("hub", "a", DirectionConnectedNext, nodes, adj))
	assert.Equal(t, "a", TraverseWithin("hub", "b", DirectionConnectedNext, nodes, adj))
	assert.Equal(t, "b", TraverseWithin("hub", "a", DirectionConnectedPrev, nodes, adj))
	assert.Equal(t, "a", TraverseWithin("hub", "b", DirectionConnectedPrev, nodes, adj))
	assert.Equal(t, "x", TraverseWithin("lonely", "x", DirectionConnectedNext, nodes, adj))
}

func TestNavigate_AnchorsOnFirstConnectedStep(t *testing.T) {
	nodes := []Node{{ID: "hub"}, {ID: "a"}, {ID: "b"}, {ID: "c"}}
	adj := BuildAdjacency([]Edge{
		{Source: "hub", Target: "a"},
		{Source: "hub", Target: "b"},
		{Source: "c", Target: "b"},
	})

	pos := Navigate(Position{Current: "hub"}, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "a", Anchor: "hub"}, pos)

	pos = Navigate(pos, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "b", Anchor: "hub"}, pos)

	pos = Navigate(pos, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "a", Anchor: "hub"}, pos)

	pos = Navigate(pos, DirectionNext, nodes, adj)
	assert.Equal(t, Position{Current: "b"}, pos)

	pos = Navigate(pos, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "hub", Anchor: "b"}, pos)
}

func TestNavigate_WithoutSelection(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())

	pos := Navigate(Position{}, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "file:report"}, pos)
}

func TestNavigate_StaleAnchorIsDropped(t *testing.T) {
	nodes := scenarioNodes()
	adj := BuildAdjacency(scenarioEdges())

	pos := Navigate(Position{Current: "tag:work", Anchor: "tag:2024"}, DirectionConnectedNext, nodes, adj)
	assert.Equal(t, Position{Current: "file:report", Anchor: "tag:work"}, pos)
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"next", "prev", "connected-next", "connected-prev"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, Direction(s), d)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
