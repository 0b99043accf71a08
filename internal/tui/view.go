package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmgrid/internal/coordinator"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
	"github.com/nikbrunner/bmgrid/internal/tui/layout"
)

// View renders the application.
func (a App) View() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeMenu, ModeRename, ModeConfirmDelete:
		return a.renderModal()
	}

	sections := []string{
		a.renderHeader(),
		a.renderBody(),
		a.renderHelpBar(),
	}
	return a.styles.App.Render(strings.Join(sections, "\n"))
}

// renderHeader renders the breadcrumb and the sort indicator.
func (a App) renderHeader() string {
	if !a.loaded {
		return a.spinner.View() + " " + a.styles.Status.Render("Loading bookmarks...")
	}

	header := a.styles.Breadcrumb.Render(a.state.Breadcrumb()) +
		"  " + a.styles.Status.Render("[sort:"+sortLabel(a.state.Sort)+"]")
	if a.busy {
		header += " " + a.spinner.View()
	}
	return header + "\n"
}

func sortLabel(s model.SortState) string {
	if s.Reorderable() {
		return "default"
	}
	return string(s.Key) + " " + string(s.Direction)
}

// renderBody renders the grid or an empty-state message.
func (a App) renderBody() string {
	if !a.loaded {
		return ""
	}
	if !a.state.RootFound {
		return a.styles.Empty.Render(fmt.Sprintf("No folder named %q was found.", a.state.RootTitle))
	}

	tiles := a.tiles()
	if len(tiles) == 0 {
		return a.styles.Empty.Render(a.state.RootTitle + " is empty.")
	}

	body := a.renderGrid(tiles)
	if len(tiles) == 1 && tiles[0].back {
		body += "\n" + a.styles.Empty.Render("This folder is empty.")
	}
	return body
}

func (a App) renderGrid(tiles []tile) string {
	g := a.grid()
	rows := g.Rows(len(tiles))
	end := a.offset + g.VisibleRows
	if end > rows {
		end = rows
	}
	gap := strings.Repeat(" ", a.layoutConfig.Grid.Gap)

	lines := make([]string, 0, end-a.offset+1)
	for r := a.offset; r < end; r++ {
		var cells []string
		for c := 0; c < g.Columns; c++ {
			i := r*g.Columns + c
			if i >= len(tiles) {
				break
			}
			if c > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, a.renderTile(tiles[i], i == a.cursor, g))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	if rows > g.VisibleRows {
		lines = append(lines, a.styles.Status.Render(fmt.Sprintf("%d/%d", a.cursor+1, len(tiles))))
	}
	return strings.Join(lines, "\n")
}

// renderTile renders one cell: a title line and a detail line.
func (a App) renderTile(t tile, selected bool, g layout.Grid) string {
	cfg := a.layoutConfig
	width := g.ContentWidth(cfg.Grid)

	var title, detail string
	switch {
	case t.back:
		title, _ = layout.TruncateText("← Back", width, cfg.Text)
		title = a.styles.Back.Render(title)
		detail, _ = layout.TruncateText("to "+a.parentTitle(), width, cfg.Text)
		detail = a.styles.URL.Render(detail)

	case t.node.IsFolder():
		title, _ = layout.TruncateWithPrefixSuffix(t.node.DisplayTitle(), width, "▸ ", "", cfg.Text)
		title = a.styles.Folder.Render(title)
		detail, _ = layout.TruncateText(itemCount(len(t.node.Children)), width, cfg.Text)
		detail = a.styles.URL.Render(detail)

	default:
		title, _ = layout.TruncateText(t.node.DisplayTitle(), width, cfg.Text)
		title = a.styles.Bookmark.Render(title)
		detail, _ = layout.TruncateText(linkHost(t.node.Link()), width, cfg.Text)
		detail = a.styles.URL.Render(detail)
	}

	style := a.styles.Cell
	switch {
	case !t.back && t.node.ID == a.grabbed:
		style = a.styles.CellGrabbed
	case selected:
		style = a.styles.CellSelected
	}
	// Width excludes the border.
	return style.Width(g.CellWidth - 2).Render(title + "\n" + detail)
}

// parentTitle returns the title of the folder the Back tile leads to.
func (a App) parentTitle() string {
	frames := a.state.Stack.Frames()
	if len(frames) < 2 {
		return a.state.RootTitle
	}
	return frames[len(frames)-2].Title
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// linkHost returns the host of raw, or raw itself if it has none.
func linkHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// renderHelpBar renders the message line and the contextual hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Empty line provides the gap when there is no message.
	lines = append(lines, a.renderMessageLine())

	if hints := a.renderHints(a.contextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with a prefix icon for errors.
func (a App) renderMessageLine() string {
	if a.messageText == "" {
		return ""
	}
	if a.messageType == MessageError {
		return a.styles.Error.Render("✗ " + a.messageText)
	}
	return a.styles.Info.Render(a.messageText)
}

// renderModal renders the context menu, rename and delete dialogs.
func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.DefaultWidthPercent, a.layoutConfig.Modal)
	modalStyle := a.styles.Modal.Width(modalWidth)

	switch a.mode {
	case ModeMenu:
		title.WriteString(a.menuTarget.DisplayTitle() + "\n\n")
		start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.MenuMaxVisible, a.menuCursor, len(coordinator.Actions))
		for i := start; i < end; i++ {
			label := coordinator.Actions[i].Label()
			if i == a.menuCursor {
				content.WriteString(a.styles.ItemSelected.Render("▸ " + label))
			} else {
				content.WriteString(a.styles.Item.Render("  " + label))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "enter", Desc: "select"},
			{Key: "esc", Desc: "cancel"},
		}))

	case ModeRename:
		kind := "Bookmark"
		if a.state.Target != nil && a.state.Target.IsFolder() {
			kind = "Folder"
		}
		title.WriteString("Rename " + kind + "\n\n")
		content.WriteString("Title:\n")
		content.WriteString(a.input.View())
		content.WriteString("\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}))

	case ModeConfirmDelete:
		target := model.Node{}
		if a.state.Target != nil {
			target = *a.state.Target
		}
		if target.IsFolder() {
			title.WriteString("Delete Folder?\n\n")
			content.WriteString(fmt.Sprintf("%q", target.DisplayTitle()) + "\n")
			content.WriteString(a.styles.Help.Render(
				fmt.Sprintf("Includes %d bookmarks.", len(tree.Links(&target)))) + "\n\n")
		} else {
			title.WriteString("Delete Bookmark?\n\n")
			content.WriteString(fmt.Sprintf("%q", target.DisplayTitle()) + "\n")
			content.WriteString(a.styles.URL.Render(target.Link()) + "\n\n")
		}
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/enter", Desc: "delete"},
			{Key: "n/esc", Desc: "cancel"},
		}))
	}

	if msg := a.renderMessageLine(); msg != "" {
		content.WriteString("\n\n" + msg)
	}

	modal := modalStyle.Render(a.styles.Title.Render(title.String()) + content.String())
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

// renderHelpOverlay lists every binding, one section per group.
func (a App) renderHelpOverlay() string {
	modalStyle := lipgloss.NewStyle().Padding(1, 2)
	keyCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpKeyColumnWidth)

	var columns []string
	for _, section := range a.helpBindings() {
		var b strings.Builder
		b.WriteString(a.styles.Title.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			b.WriteString(keyCol.Render(h.Key) + h.Desc + "\n")
		}
		columns = append(columns, b.String(), "  ")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	body += "\n" + a.styles.Help.Render("[?/esc] close  [q] quit")

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(body),
	)
}
