package graph

import (
	"slices"
	"strings"
)

// NodeKind distinguishes the two vertex types of the file/tag graph.
type NodeKind string

const (
	NodeKindFile NodeKind = "file"
	NodeKindTag  NodeKind = "tag"
)

// Node is a graph vertex. IDs are composites of kind and the underlying
// record id, e.g. "file:abc" or "tag:xyz".
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Name  string   `json:"name"`
	Color string   `json:"color,omitempty"`
}

// Edge connects a file node to a tag node. Edges are treated as undirected
// for every highlight and traversal computation.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Adjacency maps a node id to the set of node ids directly connected to it.
// It is always rebuilt from the full edge list and never patched in place.
type Adjacency map[string]map[string]struct{}

// FileNodeID returns the graph id of a file record.
func FileNodeID(fileID string) string {
	return string(NodeKindFile) + ":" + fileID
}

// TagNodeID returns the graph id of a tag record.
func TagNodeID(tagID string) string {
	return string(NodeKindTag) + ":" + tagID
}

// SplitNodeID splits a graph id into its kind and record id.
// ok is false for ids without a known kind prefix.
func SplitNodeID(nodeID string) (kind NodeKind, id string, ok bool) {
	prefix, rest, found := strings.Cut(nodeID, ":")
	if !found || rest == "" {
		return "", "", false
	}
	switch NodeKind(prefix) {
	case NodeKindFile, NodeKindTag:
		return NodeKind(prefix), rest, true
	}
	return "", "", false
}

// BuildAdjacency derives the undirected adjacency map of the given edges.
// Both endpoints of every edge become keys; nodes without edges are absent.
func BuildAdjacency(edges []Edge) Adjacency {
	adj := make(Adjacency, len(edges))
	for _, e := range edges {
		if _, ok := adj[e.Source]; !ok {
			adj[e.Source] = make(map[string]struct{})
		}
		if _, ok := adj[e.Target]; !ok {
			adj[e.Target] = make(map[string]struct{})
		}
		adj[e.Source][e.Target] = struct{}{}
		adj[e.Target][e.Source] = struct{}{}
	}
	return adj
}

// Connected reports whether a and b share an edge.
func (a Adjacency) Connected(x, y string) bool {
	_, ok := a[x][y]
	return ok
}

// Degree returns the number of distinct neighbors of id.
func (a Adjacency) Degree(id string) int {
	return len(a[id])
}

// Neighbors returns the neighbors of id in lexical order. Absent nodes
// have no neighbors.
func (a Adjacency) Neighbors(id string) []string {
	set := a[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// NeighborsInOrder returns the neighbors of id following the order of nodes.
// Neighbors that are not part of nodes are skipped.
func (a Adjacency) NeighborsInOrder(id string, nodes []Node) []string {
	set := a[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for _, n := range nodes {
		if _, ok := set[n.ID]; ok {
			out = append(out, n.ID)
		}
	}
	return out
}
