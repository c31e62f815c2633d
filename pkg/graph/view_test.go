package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/pkg/common"
)

func TestView_HoverIsExclusive(t *testing.T) {
	v := NewView(NewSnapshot(scenarioNodes(), scenarioEdges()))

	v.Hover("tag:work")
	assert.True(t, v.Highlight().HasNode("file:report"))
	assert.False(t, v.Highlight().HasNode("tag:2024"))

	v.Hover("tag:2024")
	assert.Equal(t, "tag:2024", v.Hovered())
	assert.False(t, v.Highlight().HasNode("tag:work"))
	assert.Equal(t, NodeOpacityDimmed, v.NodeOpacity("tag:work"))

	v.Hover("")
	assert.True(t, v.Highlight().Empty())
	assert.Equal(t, NodeOpacityFull, v.NodeOpacity("tag:work"))
	assert.Equal(t, LinkOpacityIdle, v.LinkOpacity("file:report", "tag:work"))
}

func TestView_SelectionDrivesHighlightWhenNotHovering(t *testing.T) {
	v := NewView(NewSnapshot(scenarioNodes(), scenarioEdges()))

	v.Select("tag:work")
	assert.Equal(t, "tag:work", v.Focus())
	assert.Equal(t, LinkOpacityHighlight, v.LinkOpacity("tag:work", "file:report"))
	assert.Equal(t, LinkOpacityDimmed, v.LinkOpacity("file:report", "tag:2024"))

	v.Hover("tag:2024")
	assert.Equal(t, "tag:2024", v.Focus())

	v.Clear()
	assert.Equal(t, "", v.Focus())
	assert.Equal(t, Position{}, v.Position())
}

func TestView_SetSnapshotRebuildsAdjacencyFirst(t *testing.T) {
	v := NewView(NewSnapshot(scenarioNodes(), scenarioEdges()))
	v.Hover("file:report")
	require.True(t, v.Highlight().HasNode("tag:work"))

	v.SetSnapshot(NewSnapshot(scenarioNodes(), []Edge{{Source: "file:report", Target: "tag:2024"}}))
	assert.Equal(t, "file:report", v.Hovered())
	assert.False(t, v.Highlight().HasNode("tag:work"))
	assert.True(t, v.Highlight().HasNode("tag:2024"))
}

func TestView_SetSnapshotDropsVanishedNodes(t *testing.T) {
	v := NewView(NewSnapshot(scenarioNodes(), scenarioEdges()))
	v.Hover("tag:work")
	v.Select("tag:2024")

	v.SetSnapshot(NewSnapshot([]Node{{ID: "file:report", Name: "report.pdf"}}, nil))
	assert.Equal(t, "", v.Hovered())
	assert.Equal(t, "", v.Selected())
	assert.True(t, v.Highlight().Empty())
}

func TestView_NavigateAndSearch(t *testing.T) {
	v := NewView(NewSnapshot(scenarioNodes(), scenarioEdges()))

	assert.Equal(t, "file:report", v.Navigate(DirectionNext))
	assert.Equal(t, "tag:work", v.Navigate(DirectionConnectedNext))
	assert.Equal(t, "file:report", v.Position().Anchor)
	assert.Equal(t, "tag:2024", v.Navigate(DirectionConnectedNext))
	assert.Equal(t, "tag:work", v.Navigate(DirectionConnectedNext))

	res := v.SetQuery("rep")
	assert.True(t, res.Active)
	assert.Equal(t, []string{"file:report"}, res.IDs)

	res = v.SetQuery("")
	assert.False(t, res.Active)
}

func TestView_NilSnapshot(t *testing.T) {
	v := NewView(nil)
	assert.Equal(t, "", v.Navigate(DirectionNext))
	assert.True(t, v.Hover("file:x").HasNode("file:x"))
	assert.False(t, v.Search().Active)
}

func TestBuild_SkipsDeletedFilesAndDanglingLinks(t *testing.T) {
	now := time.Now()
	red := "#ff0000"
	files := []common.File{
		{ID: "f1", Name: "report.pdf"},
		{ID: "f2", Name: "old.png", DeletedAt: &now},
	}
	tags := []common.Tag{
		{ID: "t1", Name: "work", Color: &red},
		{ID: "t2", Name: "2024"},
	}
	links := []common.FileTag{
		{FileID: "f1", TagID: "t1"},
		{FileID: "f1", TagID: "t1"},
		{FileID: "f2", TagID: "t2"},
		{FileID: "f1", TagID: "missing"},
	}

	s := Build(files, tags, links)
	require.Len(t, s.Nodes, 3)
	assert.Equal(t, Node{ID: "file:f1", Kind: NodeKindFile, Name: "report.pdf"}, s.Nodes[0])
	assert.Equal(t, Node{ID: "tag:t1", Kind: NodeKindTag, Name: "work", Color: "#ff0000"}, s.Nodes[1])
	assert.Equal(t, []Edge{{Source: "file:f1", Target: "tag:t1"}}, s.Edges)

	assert.False(t, s.Has("file:f2"))
	_, ok := s.Adjacency["tag:t2"]
	assert.False(t, ok)
	assert.True(t, s.Adjacency.Connected("tag:t1", "file:f1"))
}
