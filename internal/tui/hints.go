package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/nikbrunner/bmgrid/internal/tui/layout"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "enter")
	Desc string // Short description (e.g., "move", "open")
}

// hintFor builds a hint from a binding's help text.
func hintFor(b key.Binding) Hint {
	h := b.Help()
	return Hint{Key: h.Key, Desc: h.Desc}
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move -:back enter:open".
// Hints that would overflow the terminal width are dropped from the end.
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	// App style pads two cells on each side.
	avail := a.width - 4
	parts := make([]string, 0, len(allHints))
	used := 0
	for _, h := range allHints {
		part := a.renderHint(h)
		w := layout.VisibleLength(part)
		if len(parts) > 0 {
			w++
		}
		if len(parts) > 0 && used+w > avail {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "enter confirm  esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (hjkl, back)
	Edit   []Hint // Edit hints (rename, delete, grab)
	Action []Hint // Action hints (open, menu)
	System []Hint // System hints (?, q, esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// contextualHints returns the hints for the current mode.
func (a App) contextualHints() HintSet {
	k := a.keys
	switch a.mode {
	case ModeMenu:
		return HintSet{
			Nav:    []Hint{{Key: "j/k", Desc: "move"}},
			Action: []Hint{{Key: "enter", Desc: "select"}},
			System: []Hint{hintFor(k.Cancel)},
		}
	case ModeRename:
		return HintSet{
			Action: []Hint{{Key: "enter", Desc: "save"}},
			System: []Hint{hintFor(k.Cancel)},
		}
	case ModeConfirmDelete:
		return HintSet{
			Action: []Hint{{Key: "y/enter", Desc: "delete"}},
			System: []Hint{{Key: "n/esc", Desc: "cancel"}},
		}
	case ModeHelp:
		return HintSet{
			System: []Hint{{Key: "?/esc", Desc: "close"}, hintFor(k.Quit)},
		}
	}

	if a.grabbed != "" {
		return HintSet{
			Nav:    []Hint{{Key: "hjkl", Desc: "move"}},
			Edit:   []Hint{{Key: "x", Desc: "drop here"}},
			System: []Hint{hintFor(k.Cancel)},
		}
	}

	set := HintSet{
		Nav:    []Hint{{Key: "hjkl", Desc: "move"}},
		Action: []Hint{hintFor(k.Open), hintFor(k.Menu)},
		Edit:   []Hint{hintFor(k.Rename), hintFor(k.Delete), hintFor(k.Yank)},
		System: []Hint{hintFor(k.Sort), hintFor(k.Help), hintFor(k.Quit)},
	}
	if !a.state.AtRoot() {
		set.Nav = append(set.Nav, hintFor(k.Back))
	}
	if a.state.Sort.Reorderable() {
		set.Edit = append(set.Edit, hintFor(k.Grab))
	} else {
		set.System = append([]Hint{hintFor(k.Sort), hintFor(k.SortDirection)}, set.System[1:]...)
	}
	return set
}

// helpBindings lists the bindings shown in the help overlay, by section.
func (a App) helpBindings() []helpSection {
	k := a.keys
	return []helpSection{
		{Title: "nav", Bindings: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom, k.Back}},
		{Title: "open", Bindings: []key.Binding{k.Open, k.OpenNew, k.OpenBackground, k.Manage}},
		{Title: "edit", Bindings: []key.Binding{k.Menu, k.Rename, k.Delete, k.Grab, k.Yank}},
		{Title: "view", Bindings: []key.Binding{k.Sort, k.SortDirection, k.Reload, k.Help, k.Quit}},
	}
}

type helpSection struct {
	Title    string
	Bindings []key.Binding
}
