package graph

import "strings"

// SearchResult separates a blank query (Active false, clears any filter)
// from a query without matches (Active true, empty IDs).
type SearchResult struct {
	Active bool     `json:"active"`
	IDs    []string `json:"ids"`
}

// SearchMatches returns the ids of nodes whose name contains query,
// ignoring case, in display order. A blank query returns nil.
func SearchMatches(nodes []Node, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	q := strings.ToLower(query)
	out := make([]string, 0)
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Search wraps SearchMatches into a SearchResult.
func Search(nodes []Node, query string) SearchResult {
	ids := SearchMatches(nodes, query)
	if ids == nil {
		return SearchResult{Active: false, IDs: []string{}}
	}
	return SearchResult{Active: true, IDs: ids}
}
