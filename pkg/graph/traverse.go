package graph

import "fmt"

// Direction selects a keyboard traversal mode. Next and Prev cycle through
// the full node list; the connected variants cycle through neighbors.
type Direction string

const (
	DirectionNext          Direction = "next"
	DirectionPrev          Direction = "prev"
	DirectionConnectedNext Direction = "connected-next"
	DirectionConnectedPrev Direction = "connected-prev"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionNext, DirectionPrev, DirectionConnectedNext, DirectionConnectedPrev:
		return d, nil
	}
	return "", fmt.Errorf("unknown traversal direction %q", s)
}

func (d Direction) forward() bool {
	return d == DirectionNext || d == DirectionConnectedNext
}

func (d Direction) connected() bool {
	return d == DirectionConnectedNext || d == DirectionConnectedPrev
}

// Traverse moves the keyboard focus one step from current.
//
// Next and Prev wrap around the node list in display order. An empty or
// unknown current starts at the first node (Next) or the last node (Prev).
//
// The connected modes walk the neighbors of current, ordered as in nodes and
// computed fresh from adj. Without a current node they fall back to the
// first node overall. A node without neighbors keeps the focus.
func Traverse(current string, dir Direction, nodes []Node, adj Adjacency) string {
	if len(nodes) == 0 {
		return ""
	}

	if !dir.connected() {
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		return cycle(ids, current, dir.forward())
	}

	if current == "" {
		return nodes[0].ID
	}
	neighbors := adj.NeighborsInOrder(current, nodes)
	if len(neighbors) == 0 {
		return current
	}
	return cycle(neighbors, current, dir.forward())
}

// TraverseWithin cycles current through the neighbors of anchor, wrapping at
// both ends. With neighbors {a, b}, a moves to b and b moves back to a.
// If anchor has no neighbors current is returned unchanged.
func TraverseWithin(anchor, current string, dir Direction, nodes []Node, adj Adjacency) string {
	neighbors := adj.NeighborsInOrder(anchor, nodes)
	if len(neighbors) == 0 {
		return current
	}
	return cycle(neighbors, current, dir.forward())
}

// Position is the keyboard focus. Anchor is the node whose neighbors are
// being walked by the connected modes; it is empty in global mode.
type Position struct {
	Current string `json:"current"`
	Anchor  string `json:"anchor,omitempty"`
}

// Navigate applies one traversal step to pos.
//
// The first connected step from a node anchors on it and moves to its first
// (or last) neighbor. Further connected steps cycle through the anchor's
// neighbors until a global step drops the anchor.
func Navigate(pos Position, dir Direction, nodes []Node, adj Adjacency) Position {
	if !dir.connected() {
		return Position{Current: Traverse(pos.Current, dir, nodes, adj)}
	}
	if pos.Current == "" {
		return Position{Current: Traverse("", dir, nodes, adj)}
	}
	if pos.Anchor != "" && pos.Anchor != pos.Current && adj.Connected(pos.Anchor, pos.Current) {
		return Position{
			Current: TraverseWithin(pos.Anchor, pos.Current, dir, nodes, adj),
			Anchor:  pos.Anchor,
		}
	}

	next := Traverse(pos.Current, dir, nodes, adj)
	if next == pos.Current {
		return Position{Current: pos.Current}
	}
	return Position{Current: next, Anchor: pos.Current}
}

func cycle(ids []string, current string, forward bool) string {
	n := len(ids)
	idx := -1
	if current != "" {
		for i, id := range ids {
			if id == current {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		if forward {
			return ids[0]
		}
		return ids[n-1]
	}
	if forward {
		return ids[(idx+1)%n]
	}
	return ids[(idx-1+n)%n]
}
