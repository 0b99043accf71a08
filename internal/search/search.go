package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Node           *model.Node
	Path           string // folder titles above the link, "/"-joined
	MatchedIndexes []int
	Score          int
}

// linkTitles implements fuzzy.Source for a slice of links.
type linkTitles []*model.Node

func (lt linkTitles) String(i int) string {
	return lt[i].DisplayTitle()
}

func (lt linkTitles) Len() int {
	return len(lt)
}

// FuzzySearchLinks searches all links under root by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchLinks(root *model.Node, query string) []SearchResult {
	if query == "" || root == nil {
		return nil
	}

	links := linkTitles(tree.Links(root))

	// Run fuzzy matching
	matches := fuzzy.FindFrom(query, links)

	// Convert to SearchResult
	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Node:           links[m.Index],
			Path:           tree.Path(root, links[m.Index].ID),
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
