package coordinator

import (
	"fmt"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/nav"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// Action is a context menu entry.
type Action string

const (
	ActionOpen           Action = "open"
	ActionOpenNew        Action = "open-new"
	ActionOpenBackground Action = "open-background"
	ActionRename         Action = "rename"
	ActionDelete         Action = "delete"
	ActionManage         Action = "manage"
)

// Actions lists the context menu entries in menu order.
var Actions = []Action{
	ActionOpen,
	ActionOpenNew,
	ActionOpenBackground,
	ActionRename,
	ActionDelete,
	ActionManage,
}

// ParseAction parses a context action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Label returns the menu text for the action.
func (a Action) Label() string {
	switch a {
	case ActionOpen:
		return "Open"
	case ActionOpenNew:
		return "Open in new tab"
	case ActionOpenBackground:
		return "Open in background tab"
	case ActionRename:
		return "Rename"
	case ActionDelete:
		return "Delete"
	case ActionManage:
		return "Manage bookmarks"
	}
	return string(a)
}

// ViewState is everything the grid shows. Coordinator methods take a
// ViewState and return a new one; a ViewState is never modified in place.
type ViewState struct {
	Sort model.SortState
	// Stack holds the folders entered below the located root.
	Stack nav.Stack

	// Root is the children of the located root folder as last fetched.
	Root      []model.Node
	RootID    string
	RootTitle string
	// RootFound is false when no folder matched the configured title.
	RootFound bool

	// Target is the node a pending rename or delete applies to.
	Target  *model.Node
	Pending Action
}

// AtRoot returns true if no folder has been entered.
func (s ViewState) AtRoot() bool {
	return s.Stack.AtRoot()
}

// Current returns the children of the displayed folder in store order.
func (s ViewState) Current() []model.Node {
	if f, ok := s.Stack.Top(); ok {
		return f.Children
	}
	return s.Root
}

// Visible returns the displayed children in display order.
func (s ViewState) Visible() []model.Node {
	return tree.Sort(s.Current(), s.Sort)
}

// ParentID returns the ID of the displayed folder.
func (s ViewState) ParentID() string {
	if f, ok := s.Stack.Top(); ok {
		return f.ID
	}
	return s.RootID
}

// Breadcrumb returns the heading for the displayed folder,
// "<root title> / <folder title>" when drilled in.
func (s ViewState) Breadcrumb() string {
	if f, ok := s.Stack.Top(); ok {
		return s.RootTitle + " / " + f.Title
	}
	return s.RootTitle
}

// Dismissed returns the state without a pending action.
func (s ViewState) Dismissed() ViewState {
	s.Target = nil
	s.Pending = ""
	return s
}
