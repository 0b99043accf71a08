package model

import (
	"errors"
	"net/url"
)

// ErrLinkWithChildren is returned by Validate for a node that is both a link and a folder.
var ErrLinkWithChildren = errors.New("link node must not have children")

// Node is a single entry of the bookmark tree as reported by a store.
// A node with a URL is a link; a node without one is a folder.
type Node struct {
	ID        string  `json:"id"`
	ParentID  string  `json:"parentId,omitempty"` // empty for the tree root
	Index     int     `json:"index"`              // position among siblings, owned by the store
	Title     string  `json:"title"`
	URL       *string `json:"url,omitempty"`       // nil = folder
	DateAdded int64   `json:"dateAdded,omitempty"` // Unix milliseconds, 0 = unknown
	Children  []Node  `json:"children,omitempty"`
}

// NewLinkParams holds parameters for creating a new link node.
type NewLinkParams struct {
	Title     string
	URL       string
	DateAdded int64
}

// NewLink creates a link Node with a generated UUID.
func NewLink(params NewLinkParams) Node {
	link := params.URL
	return Node{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       &link,
		DateAdded: params.DateAdded,
	}
}

// NewFolderParams holds parameters for creating a new folder node.
type NewFolderParams struct {
	Title     string
	DateAdded int64
	Children  []Node
}

// NewFolder creates a folder Node with a generated UUID.
func NewFolder(params NewFolderParams) Node {
	children := params.Children
	if children == nil {
		children = []Node{}
	}
	return Node{
		ID:        GenerateUUID(),
		Title:     params.Title,
		DateAdded: params.DateAdded,
		Children:  children,
	}
}

// IsFolder returns true if the node is a folder.
func (n Node) IsFolder() bool {
	return n.URL == nil
}

// IsLink returns true if the node is a link.
func (n Node) IsLink() bool {
	return n.URL != nil
}

// Link returns the node URL, or "" for folders.
func (n Node) Link() string {
	if n.URL == nil {
		return ""
	}
	return *n.URL
}

// DisplayTitle returns the title, or for an untitled link the URL host.
func (n Node) DisplayTitle() string {
	if n.Title != "" || n.URL == nil {
		return n.Title
	}
	if u, err := url.Parse(*n.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return *n.URL
}

// Validate checks the link/folder invariant for the whole subtree.
func (n Node) Validate() error {
	if n.IsLink() && len(n.Children) > 0 {
		return ErrLinkWithChildren
	}
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the node and its subtree.
func (n Node) Clone() Node {
	out := n
	if n.URL != nil {
		u := *n.URL
		out.URL = &u
	}
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// CloneNodes deep-copies a slice of nodes.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Changes holds the editable fields of a node.
type Changes struct {
	Title string
}

// Destination is where a node is moved to.
type Destination struct {
	ParentID string
	Index    int
}

// MoveInstruction relocates a node among the siblings of a folder.
type MoveInstruction struct {
	ID          string
	NewParentID string
	NewIndex    int
}

// Destination returns the store destination for the instruction.
func (m MoveInstruction) Destination() Destination {
	return Destination{ParentID: m.NewParentID, Index: m.NewIndex}
}
