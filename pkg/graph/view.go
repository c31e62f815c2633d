package graph

// View holds the interaction state of one graph viewer: the hovered node,
// the keyboard position and the search query. Highlights are derived from
// the current snapshot whenever any of them changes.
//
// A View is owned by a single caller and is not safe for concurrent use.
type View struct {
	snapshot  *Snapshot
	hovered   string
	position  Position
	query     string
	highlight Highlight
}

// NewView returns a view over s with nothing hovered or selected.
func NewView(s *Snapshot) *View {
	v := &View{}
	v.SetSnapshot(s)
	return v
}

// Snapshot returns the snapshot the view currently derives from.
func (v *View) Snapshot() *Snapshot {
	return v.snapshot
}

// SetSnapshot swaps in a new snapshot. Hover and selection pointing at nodes
// that no longer exist are dropped, and the highlight is recomputed from the
// new adjacency before it can be observed.
func (v *View) SetSnapshot(s *Snapshot) {
	if s == nil {
		s = NewSnapshot(nil, nil)
	}
	v.snapshot = s

	if !s.Has(v.hovered) {
		v.hovered = ""
	}
	if !s.Has(v.position.Current) {
		v.position = Position{}
	}
	if !s.Has(v.position.Anchor) {
		v.position.Anchor = ""
	}
	v.refresh()
}

// Hover marks id as the hovered node, replacing any previous hover.
// An empty id clears the hover.
func (v *View) Hover(id string) Highlight {
	v.hovered = id
	v.refresh()
	return v.highlight
}

// Hovered returns the hovered node id.
func (v *View) Hovered() string {
	return v.hovered
}

// Select moves the keyboard focus to id and leaves connected mode.
func (v *View) Select(id string) {
	v.position = Position{Current: id}
	v.refresh()
}

// Selected returns the node id that has keyboard focus.
func (v *View) Selected() string {
	return v.position.Current
}

// Position returns the keyboard position including the connected-mode anchor.
func (v *View) Position() Position {
	return v.position
}

// Navigate applies one keyboard step and returns the newly focused node.
func (v *View) Navigate(dir Direction) string {
	v.position = Navigate(v.position, dir, v.snapshot.Nodes, v.snapshot.Adjacency)
	v.refresh()
	return v.position.Current
}

// Clear drops hover and selection.
func (v *View) Clear() {
	v.hovered = ""
	v.position = Position{}
	v.refresh()
}

// Focus is the node the highlight is computed for: the hovered node, or the
// selected one when nothing is hovered.
func (v *View) Focus() string {
	if v.hovered != "" {
		return v.hovered
	}
	return v.position.Current
}

// Highlight returns the highlight of the focused node.
func (v *View) Highlight() Highlight {
	return v.highlight
}

// SetQuery stores the search query and returns its matches. A blank query
// clears the filter.
func (v *View) SetQuery(q string) SearchResult {
	v.query = q
	return v.Search()
}

// Query returns the stored search query.
func (v *View) Query() string {
	return v.query
}

// Search evaluates the stored query against the current snapshot.
func (v *View) Search() SearchResult {
	return Search(v.snapshot.Nodes, v.query)
}

// NodeOpacity returns the render opacity of a node under the current focus.
func (v *View) NodeOpacity(id string) float64 {
	return NodeOpacity(id, v.Focus(), v.highlight)
}

// LinkOpacity returns the render opacity of a link under the current focus.
func (v *View) LinkOpacity(source, target string) float64 {
	return LinkOpacity(source, target, v.Focus(), v.highlight)
}

func (v *View) refresh() {
	v.highlight = HighlightFor(v.Focus(), v.snapshot.Adjacency)
}
