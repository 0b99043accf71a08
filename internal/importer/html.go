package importer

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmgrid/internal/model"
)

// entry is a node under construction; children are kept as pointers so the
// folder stack stays valid while siblings are appended.
type entry struct {
	node     model.Node
	children []*entry
}

func (e *entry) build() model.Node {
	n := e.node
	if n.IsFolder() {
		n.Children = make([]model.Node, 0, len(e.children))
		for _, c := range e.children {
			n.Children = append(n.Children, c.build())
		}
	}
	return n
}

// ParseHTMLBookmarks parses Netscape bookmark HTML and returns the top-level
// nodes with their subtrees. ADD_DATE seconds become DateAdded milliseconds.
func ParseHTMLBookmarks(r io.Reader) ([]model.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	top := &entry{}

	// Track current folder stack for hierarchy
	folderStack := []*entry{top}
	var pendingFolder *entry // folder waiting to be pushed on next DL

	current := func() *entry {
		return folderStack[len(folderStack)-1]
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				name := getTextContent(n)
				pendingFolder = nil
				if name != "" {
					folder := &entry{node: model.NewFolder(model.NewFolderParams{
						Title:     name,
						DateAdded: addDate(n),
					})}
					parent := current()
					parent.children = append(parent.children, folder)

					// Mark this folder as pending - will be pushed when we see the next DL
					pendingFolder = folder
				}
				return // Don't recurse into H3

			case "a":
				// A folder header followed by a link had no contents.
				pendingFolder = nil

				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				parent := current()
				parent.children = append(parent.children, &entry{node: model.NewLink(model.NewLinkParams{
					Title:     title,
					URL:       href,
					DateAdded: addDate(n),
				})})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				// If we have a pending folder, push it now
				pushedFolder := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushedFolder = true
				}

				// Process children
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Pop if we pushed
				if pushedFolder {
					folderStack = folderStack[:len(folderStack)-1]
				}
				pendingFolder = nil
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	nodes := make([]model.Node, 0, len(top.children))
	for _, c := range top.children {
		nodes = append(nodes, c.build())
	}
	return nodes, nil
}

// Split sorts imported top-level nodes into the two permanent folders.
// The contents of a top-level folder titled barTitle go to the bar and those
// of one titled otherTitle go to other; everything else goes to the bar.
func Split(nodes []model.Node, barTitle, otherTitle string) (bar, other []model.Node) {
	for _, n := range nodes {
		switch {
		case n.IsFolder() && strings.EqualFold(n.Title, barTitle):
			bar = append(bar, n.Children...)
		case n.IsFolder() && strings.EqualFold(n.Title, otherTitle):
			other = append(other, n.Children...)
		default:
			bar = append(bar, n)
		}
	}
	return bar, other
}

// Count returns the number of links in nodes and their subtrees.
func Count(nodes []model.Node) int {
	total := 0
	for _, n := range nodes {
		if n.IsLink() {
			total++
			continue
		}
		total += Count(n.Children)
	}
	return total
}

// addDate returns ADD_DATE in Unix milliseconds, or 0 when missing.
func addDate(n *html.Node) int64 {
	v := getAttr(n, "add_date")
	if v == "" {
		return 0
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return ts * 1000
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
