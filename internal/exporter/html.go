package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmgrid/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the tree below root to Netscape bookmark HTML format.
// Children keep their store order. The folder with ID toolbarID, if any, is
// marked as the personal toolbar folder.
func ExportHTML(root *model.Node, toolbarID string) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	if root != nil {
		writeItems(&b, root.Children, toolbarID, 1)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes folders and links in sibling order.
func writeItems(b *strings.Builder, nodes []model.Node, toolbarID string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, n := range nodes {
		if n.IsLink() {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(n.Link()),
				n.DateAdded/1000,
				html.EscapeString(n.Title),
			)
			continue
		}

		attrs := fmt.Sprintf(" ADD_DATE=\"%d\"", n.DateAdded/1000)
		if toolbarID != "" && n.ID == toolbarID {
			attrs += " PERSONAL_TOOLBAR_FOLDER=\"true\""
		}

		// Write folder header
		fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, attrs, html.EscapeString(n.Title))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		// Recurse into folder
		writeItems(b, n.Children, toolbarID, indent+1)

		// Close folder
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}
