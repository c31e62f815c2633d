package graph

const (
	NodeOpacityFull   = 1.0
	NodeOpacityDimmed = 0.3

	LinkOpacityIdle      = 0.5
	LinkOpacityHighlight = 1.0
	LinkOpacityDimmed    = 0.1
)

// Highlight is the set of nodes and link keys emphasized for one hovered node.
type Highlight struct {
	Nodes map[string]struct{}
	Links map[string]struct{}
}

// LinkKey encodes a directed link as "{a}-{b}".
func LinkKey(a, b string) string {
	return a + "-" + b
}

// HighlightFor computes the 1-hop highlight of hovered. An empty hovered id
// means nothing is hovered and yields two empty sets. Link keys are stored
// in both directions so lookups need not know the edge orientation.
func HighlightFor(hovered string, adj Adjacency) Highlight {
	h := Highlight{
		Nodes: make(map[string]struct{}),
		Links: make(map[string]struct{}),
	}
	if hovered == "" {
		return h
	}

	h.Nodes[hovered] = struct{}{}
	for n := range adj[hovered] {
		h.Nodes[n] = struct{}{}
		h.Links[LinkKey(hovered, n)] = struct{}{}
		h.Links[LinkKey(n, hovered)] = struct{}{}
	}
	return h
}

// HasNode reports whether id is highlighted.
func (h Highlight) HasNode(id string) bool {
	_, ok := h.Nodes[id]
	return ok
}

// HasLink reports whether the link between a and b is highlighted in
// either direction.
func (h Highlight) HasLink(a, b string) bool {
	if _, ok := h.Links[LinkKey(a, b)]; ok {
		return true
	}
	_, ok := h.Links[LinkKey(b, a)]
	return ok
}

// Empty reports whether nothing is highlighted.
func (h Highlight) Empty() bool {
	return len(h.Nodes) == 0 && len(h.Links) == 0
}

// NodeOpacity returns full opacity when nothing is hovered or the node is
// highlighted, and the dimmed constant otherwise.
func NodeOpacity(nodeID, hovered string, h Highlight) float64 {
	if hovered == "" || h.HasNode(nodeID) {
		return NodeOpacityFull
	}
	return NodeOpacityDimmed
}

// LinkOpacity returns the idle opacity when nothing is hovered, full opacity
// for a highlighted link, and the dimmed constant otherwise. The result does
// not depend on the argument order of source and target.
func LinkOpacity(source, target, hovered string, h Highlight) float64 {
	if hovered == "" {
		return LinkOpacityIdle
	}
	if h.HasLink(source, target) {
		return LinkOpacityHighlight
	}
	return LinkOpacityDimmed
}
