package graph

import "github.com/tagexplorer/backend/pkg/common"

// Snapshot is an immutable view of the graph: nodes in display order, the
// edge list and the adjacency derived from it. A new snapshot is built for
// every change of the underlying records.
type Snapshot struct {
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"links"`
	Adjacency Adjacency `json:"-"`

	index map[string]int
}

// NewSnapshot builds a snapshot from nodes and edges. Edges referencing an
// unknown node and repeated edges, in either direction, are dropped.
func NewSnapshot(nodes []Node, edges []Edge) *Snapshot {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	seen := make(map[string]struct{}, len(edges))
	kept := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := index[e.Source]; !ok {
			continue
		}
		if _, ok := index[e.Target]; !ok {
			continue
		}
		if _, ok := seen[LinkKey(e.Source, e.Target)]; ok {
			continue
		}
		if _, ok := seen[LinkKey(e.Target, e.Source)]; ok {
			continue
		}
		seen[LinkKey(e.Source, e.Target)] = struct{}{}
		kept = append(kept, e)
	}

	return &Snapshot{
		Nodes:     nodes,
		Edges:     kept,
		Adjacency: BuildAdjacency(kept),
		index:     index,
	}
}

// Build derives the graph of live files and all tags. Files come first in
// the given order, followed by tags. Links to soft-deleted files are skipped.
func Build(files []common.File, tags []common.Tag, links []common.FileTag) *Snapshot {
	nodes := make([]Node, 0, len(files)+len(tags))
	for _, f := range files {
		if f.Deleted() {
			continue
		}
		nodes = append(nodes, Node{
			ID:   FileNodeID(f.ID),
			Kind: NodeKindFile,
			Name: f.Name,
		})
	}
	for _, t := range tags {
		n := Node{
			ID:   TagNodeID(t.ID),
			Kind: NodeKindTag,
			Name: t.Name,
		}
		if t.Color != nil {
			n.Color = *t.Color
		}
		nodes = append(nodes, n)
	}

	edges := make([]Edge, 0, len(links))
	for _, l := range links {
		edges = append(edges, Edge{
			Source: FileNodeID(l.FileID),
			Target: TagNodeID(l.TagID),
		})
	}

	return NewSnapshot(nodes, edges)
}

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Has reports whether id is a node of the snapshot.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.Node(id)
	return ok
}
