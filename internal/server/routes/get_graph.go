package routes

import (
	"context"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/graph"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/store"
)

// directionEscape leaves keyboard navigation.
const directionEscape = "escape"

type library struct {
	files []common.File
	tags  []common.Tag
	links []common.FileTag
}

// loadLibrary reads live files, tags and links concurrently.
func loadLibrary(ctx context.Context, s store.Storage) (library, error) {
	var lib library

	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		lib.files, err = s.ListFiles(ectx, false)
		return err
	})
	eg.Go(func() error {
		var err error
		lib.tags, err = s.ListTags(ectx)
		return err
	})
	eg.Go(func() error {
		var err error
		lib.links, err = s.ListFileTags(ectx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return library{}, err
	}
	return lib, nil
}

// LoadSnapshot derives the current graph from the store. Files and tags are
// both laid out in creation order.
func LoadSnapshot(ctx context.Context, s store.Storage) (*graph.Snapshot, error) {
	lib, err := loadLibrary(ctx, s)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(lib.files, func(a, b common.File) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	slices.SortStableFunc(lib.tags, func(a, b common.Tag) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return graph.Build(lib.files, lib.tags, lib.links), nil
}

// knownNode returns id when it is a node of snap and "" otherwise.
func knownNode(snap *graph.Snapshot, id string) string {
	if snap.Has(id) {
		return id
	}
	return ""
}

// GraphHandler returns the nodes and links of the file/tag graph.
func GraphHandler(c echo.Context) error {
	snap, err := LoadSnapshot(c.Request().Context(), appOf(c).Store)
	if err != nil {
		logger.Error("Failed to load graph", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, snap)
}

// HighlightHandler computes the emphasis for a hovered (or, without hover,
// selected) node, including render opacities for every node and link.
// Ids that are not in the graph are ignored.
func HighlightHandler(c echo.Context) error {
	type highlightResponse struct {
		Focus       string             `json:"focus"`
		Nodes       []string           `json:"nodes"`
		Links       []string           `json:"links"`
		NodeOpacity map[string]float64 `json:"node_opacity"`
		LinkOpacity map[string]float64 `json:"link_opacity"`
	}

	snap, err := LoadSnapshot(c.Request().Context(), appOf(c).Store)
	if err != nil {
		logger.Error("Failed to load graph", "err", err)
		return internalError(c)
	}

	view := graph.NewView(snap)
	view.Select(knownNode(snap, c.QueryParam("selected")))
	h := view.Hover(knownNode(snap, c.QueryParam("hovered")))

	resp := highlightResponse{
		Focus:       view.Focus(),
		Nodes:       sortedKeys(h.Nodes),
		Links:       sortedKeys(h.Links),
		NodeOpacity: make(map[string]float64, len(snap.Nodes)),
		LinkOpacity: make(map[string]float64, len(snap.Edges)),
	}
	for _, n := range snap.Nodes {
		resp.NodeOpacity[n.ID] = view.NodeOpacity(n.ID)
	}
	for _, e := range snap.Edges {
		resp.LinkOpacity[graph.LinkKey(e.Source, e.Target)] = view.LinkOpacity(e.Source, e.Target)
	}

	return c.JSON(http.StatusOK, resp)
}

// SearchHandler matches node names against q. A blank q reports an
// inactive search.
func SearchHandler(c echo.Context) error {
	snap, err := LoadSnapshot(c.Request().Context(), appOf(c).Store)
	if err != nil {
		logger.Error("Failed to load graph", "err", err)
		return internalError(c)
	}

	view := graph.NewView(snap)
	return c.JSON(http.StatusOK, view.SetQuery(c.QueryParam("q")))
}

// NavigateHandler applies one keyboard step to the position given by
// current and anchor.
func NavigateHandler(c echo.Context) error {
	raw := c.QueryParam("direction")
	if raw == directionEscape {
		return c.JSON(http.StatusOK, graph.Position{})
	}
	dir, err := graph.ParseDirection(raw)
	if err != nil {
		return invalidParams(c)
	}

	snap, err := LoadSnapshot(c.Request().Context(), appOf(c).Store)
	if err != nil {
		logger.Error("Failed to load graph", "err", err)
		return internalError(c)
	}

	pos := graph.Position{
		Current: c.QueryParam("current"),
		Anchor:  c.QueryParam("anchor"),
	}
	if !snap.Has(pos.Current) {
		pos = graph.Position{}
	}
	if !snap.Has(pos.Anchor) {
		pos.Anchor = ""
	}

	return c.JSON(http.StatusOK, graph.Navigate(pos, dir, snap.Nodes, snap.Adjacency))
}
