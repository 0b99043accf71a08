// Package tree holds pure functions over bookmark trees fetched from a store.
package tree

import (
	"strings"

	"github.com/nikbrunner/bmgrid/internal/model"
)

// DefaultBarTitle is the title of the folder shown by default.
const DefaultBarTitle = "Bookmarks Bar"

// Walk visits the subtree rooted at n in depth-first pre-order.
// Returning false from fn stops the walk. Walk reports whether it ran to completion.
func Walk(n *model.Node, fn func(*model.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for i := range n.Children {
		if !Walk(&n.Children[i], fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order that satisfies match.
func Find(root *model.Node, match func(*model.Node) bool) (*model.Node, bool) {
	var found *model.Node
	Walk(root, func(n *model.Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindBar locates the folder whose title equals label, ignoring case.
// Among duplicates the first one in document order wins.
func FindBar(root *model.Node, label string) (*model.Node, bool) {
	return Find(root, func(n *model.Node) bool {
		return n.IsFolder() && strings.EqualFold(n.Title, label)
	})
}

// FindByID locates a node by ID.
func FindByID(root *model.Node, id string) (*model.Node, bool) {
	return Find(root, func(n *model.Node) bool {
		return n.ID == id
	})
}

// Links returns every link under root in pre-order.
func Links(root *model.Node) []*model.Node {
	var links []*model.Node
	Walk(root, func(n *model.Node) bool {
		if n.IsLink() {
			links = append(links, n)
		}
		return true
	})
	return links
}

// Path returns the folder titles from root (exclusive) down to the parent of id,
// joined with "/". Returns "" when id sits directly under root or is unknown.
func Path(root *model.Node, id string) string {
	var titles []string
	var walk func(n *model.Node) bool
	walk = func(n *model.Node) bool {
		for i := range n.Children {
			c := &n.Children[i]
			if c.ID == id {
				return true
			}
			if c.IsFolder() {
				titles = append(titles, c.Title)
				if walk(c) {
					return true
				}
				titles = titles[:len(titles)-1]
			}
		}
		return false
	}
	if root == nil || !walk(root) {
		return ""
	}
	return strings.Join(titles, "/")
}
