package tree

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nikbrunner/bmgrid/internal/model"
)

// Sort orders siblings for display without touching the input.
// SortNone keeps the store order. Otherwise folders come first, then links,
// each group stably sorted by the key. Descending flips the comparison only,
// folders still precede links.
func Sort(nodes []model.Node, state model.SortState) []model.Node {
	if state.Reorderable() {
		return nodes
	}

	folders := make([]model.Node, 0, len(nodes))
	links := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			folders = append(folders, n)
		} else {
			links = append(links, n)
		}
	}

	compare := comparator(state)
	slices.SortStableFunc(folders, compare)
	slices.SortStableFunc(links, compare)

	return append(folders, links...)
}

func comparator(state model.SortState) func(a, b model.Node) int {
	var base func(a, b model.Node) int
	switch state.Key {
	case model.SortDate:
		base = func(a, b model.Node) int {
			return cmp.Compare(a.DateAdded, b.DateAdded)
		}
	default:
		base = func(a, b model.Node) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	}

	if state.Direction == model.Descending {
		return func(a, b model.Node) int {
			return -base(a, b)
		}
	}
	return base
}
