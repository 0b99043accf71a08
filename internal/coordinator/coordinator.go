// Package coordinator drives the bookmark grid: it fetches the tree,
// navigates it and turns user gestures into store mutations, each followed
// by a full re-fetch.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/nikbrunner/bmgrid/internal/apperr"
	"github.com/nikbrunner/bmgrid/internal/browser"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/nav"
	"github.com/nikbrunner/bmgrid/internal/reorder"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// ErrNoOpener is returned by open actions when no browser is configured.
var ErrNoOpener = errors.New("no browser configured")

// Settings persists the sort selection.
type Settings interface {
	SortState() model.SortState
	SetSortState(model.SortState) error
}

// Params holds the collaborators of a Coordinator.
type Params struct {
	Store     storage.Store
	Settings  Settings       // optional
	Opener    browser.Opener // optional
	Logger    *slog.Logger   // optional
	BarTitle  string         // defaults to tree.DefaultBarTitle
	ManageURL string         // defaults to storage.DefaultManageURL
}

// Coordinator issues store mutations and rebuilds the ViewState after each.
// Mutations are serialized: a gesture waits until the previous
// mutation and its reload have finished.
type Coordinator struct {
	store     storage.Store
	settings  Settings
	opener    browser.Opener
	logger    *slog.Logger
	barTitle  string
	manageURL string
	sem       *semaphore.Weighted
}

// New creates a Coordinator.
func New(p Params) *Coordinator {
	c := &Coordinator{
		store:     p.Store,
		settings:  p.Settings,
		opener:    p.Opener,
		logger:    p.Logger,
		barTitle:  p.BarTitle,
		manageURL: p.ManageURL,
		sem:       semaphore.NewWeighted(1),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.barTitle == "" {
		c.barTitle = tree.DefaultBarTitle
	}
	if c.manageURL == "" {
		c.manageURL = storage.DefaultManageURL
	}
	return c
}

// BarTitle returns the title of the folder used as the grid root.
func (c *Coordinator) BarTitle() string {
	return c.barTitle
}

// Load fetches the tree and returns the root state.
// A missing root folder yields a state with RootFound false, not an error.
func (c *Coordinator) Load(ctx context.Context) (ViewState, error) {
	state := ViewState{Sort: model.DefaultSortState()}
	if c.settings != nil {
		state.Sort = c.settings.SortState()
	}
	return c.Reload(ctx, state)
}

// Reload re-fetches the tree and refreshes every level of the stack,
// keeping the user at the same depth where the folders still exist.
func (c *Coordinator) Reload(ctx context.Context, state ViewState) (ViewState, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return state, err
	}
	defer c.sem.Release(1)

	return c.refresh(ctx, state)
}

// refresh fetches the tree and rebuilds state from it. On failure state is
// returned unchanged.
func (c *Coordinator) refresh(ctx context.Context, state ViewState) (ViewState, error) {
	root, err := c.store.GetTree(ctx)
	if err != nil {
		c.logger.Error("fetch failed", slog.Any("error", err))
		return state, &apperr.StoreError{Op: "get tree", Err: err}
	}

	next := state
	bar, ok := tree.FindBar(root, c.barTitle)
	if !ok {
		c.logger.Warn("root folder not found", slog.String("title", c.barTitle))
		next.Root = nil
		next.RootID = ""
		next.RootTitle = c.barTitle
		next.RootFound = false
		next.Stack = nav.Stack{}
		return next, nil
	}

	next.Root = bar.Children
	next.RootID = bar.ID
	next.RootTitle = bar.Title
	next.RootFound = true
	next.Stack = state.Stack.Refresh(root)

	if next.Stack.Depth() < state.Stack.Depth() {
		c.logger.Info("navigation truncated",
			slog.Int("from", state.Stack.Depth()),
			slog.Int("to", next.Stack.Depth()),
		)
	}
	return next, nil
}

// Descend enters folder, showing the children it was fetched with.
func (c *Coordinator) Descend(state ViewState, folder model.Node) (ViewState, error) {
	stack, err := state.Stack.Descend(folder)
	if err != nil {
		return state, fmt.Errorf("descend into %s: %w", folder.ID, err)
	}
	next := state.Dismissed()
	next.Stack = stack
	return next, nil
}

// Ascend leaves the current folder. Leaving the last folder returns to the
// root through a fresh fetch; if that fetch fails the state is unchanged.
func (c *Coordinator) Ascend(ctx context.Context, state ViewState) (ViewState, error) {
	stack, toRoot := state.Stack.Ascend()
	if !toRoot {
		next := state.Dismissed()
		next.Stack = stack
		return next, nil
	}

	next := state.Dismissed()
	next.Stack = stack
	next, err := c.Reload(ctx, next)
	if err != nil {
		return state, err
	}
	return next, nil
}

// SetSort changes the sort selection and persists it. The new sort applies
// to the returned state even if saving it fails.
func (c *Coordinator) SetSort(state ViewState, sort model.SortState) (ViewState, error) {
	next := state
	next.Sort = sort

	if c.settings == nil {
		return next, nil
	}
	if err := c.settings.SetSortState(sort); err != nil {
		c.logger.Error("saving sort failed", slog.Any("error", err))
		return next, fmt.Errorf("save sort: %w", err)
	}
	c.logger.Debug("sort changed",
		slog.String("key", string(sort.Key)),
		slog.String("direction", string(sort.Direction)),
	)
	return next, nil
}

// ContextAction performs action on target. Open actions on a link go to the
// browser; "open" on a folder descends into it and the other open actions
// ignore folders. Rename and delete only record the target; the change
// happens in Rename or ConfirmDelete.
func (c *Coordinator) ContextAction(ctx context.Context, state ViewState, action Action, target model.Node) (ViewState, error) {
	switch action {
	case ActionOpen:
		if target.IsFolder() {
			return c.Descend(state, target)
		}
		return state.Dismissed(), c.open(ctx, target.Link(), browser.Current)

	case ActionOpenNew, ActionOpenBackground:
		if target.IsFolder() {
			return state.Dismissed(), nil
		}
		mode := browser.NewTab
		if action == ActionOpenBackground {
			mode = browser.Background
		}
		return state.Dismissed(), c.open(ctx, target.Link(), mode)

	case ActionRename, ActionDelete:
		t := target.Clone()
		next := state
		next.Target = &t
		next.Pending = action
		return next, nil

	case ActionManage:
		return state.Dismissed(), c.open(ctx, c.manageURL, browser.NewTab)
	}
	return state, fmt.Errorf("unknown action %q", action)
}

func (c *Coordinator) open(ctx context.Context, url string, mode browser.Mode) error {
	if c.opener == nil {
		return ErrNoOpener
	}
	return c.opener.Open(ctx, url, mode)
}

// Dismiss drops the pending action.
func (c *Coordinator) Dismiss(state ViewState) ViewState {
	return state.Dismissed()
}

// Rename sets the title of the pending target. Blank titles are rejected
// without calling the store.
func (c *Coordinator) Rename(ctx context.Context, state ViewState, title string) (ViewState, error) {
	if state.Target == nil || state.Pending != ActionRename {
		return state, apperr.ErrNoTarget
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return state, apperr.ErrEmptyInput
	}

	id := state.Target.ID
	return c.mutate(ctx, state, "update", id, func(ctx context.Context) error {
		return c.store.Update(ctx, id, model.Changes{Title: title})
	})
}

// ConfirmDelete removes the pending target and its whole subtree.
func (c *Coordinator) ConfirmDelete(ctx context.Context, state ViewState) (ViewState, error) {
	if state.Target == nil || state.Pending != ActionDelete {
		return state, apperr.ErrNoTarget
	}

	id := state.Target.ID
	return c.mutate(ctx, state, "remove", id, func(ctx context.Context) error {
		return c.store.RemoveSubtree(ctx, id)
	})
}

// Move applies a planned move.
func (c *Coordinator) Move(ctx context.Context, state ViewState, m model.MoveInstruction) (ViewState, error) {
	return c.mutate(ctx, state, "move", m.ID, func(ctx context.Context) error {
		return c.store.Move(ctx, m.ID, m.Destination())
	})
}

// Drop handles draggedID dropped on targetID among the visible children.
// Rejected drops return an error matching apperr.ErrInvalidDrop and leave
// the state unchanged.
func (c *Coordinator) Drop(ctx context.Context, state ViewState, draggedID, targetID string) (ViewState, error) {
	visible := state.Visible()

	var target model.Node
	found := false
	for _, n := range visible {
		if n.ID == targetID {
			target, found = n, true
			break
		}
	}
	if !found {
		return state, &apperr.DropError{DraggedID: draggedID, TargetID: targetID, Reason: "target is not displayed"}
	}

	m, err := reorder.Plan(draggedID, target, visible, state.Sort)
	if err != nil {
		c.logger.Debug("drop ignored", slog.Any("error", err))
		return state, err
	}

	c.logger.Info("moving node",
		slog.String("id", m.ID),
		slog.String("parent", m.NewParentID),
		slog.Int("index", m.NewIndex),
		slog.String("direction", reorder.DirectionOf(draggedID, targetID, visible).String()),
	)
	return c.Move(ctx, state, m)
}

// mutate runs call and, once it has succeeded, reloads. Waiting for an
// earlier mutation honors ctx; once started a mutation and its reload run
// to completion. On failure the input state is returned.
func (c *Coordinator) mutate(ctx context.Context, state ViewState, op, id string, call func(context.Context) error) (ViewState, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return state, err
	}
	defer c.sem.Release(1)

	ctx = context.WithoutCancel(ctx)
	if err := call(ctx); err != nil {
		c.logger.Error("store mutation failed",
			slog.String("op", op),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return state, &apperr.StoreError{Op: op, ID: id, Err: err}
	}
	c.logger.Info("store mutation applied", slog.String("op", op), slog.String("id", id))

	next, err := c.refresh(ctx, state.Dismissed())
	if err != nil {
		return state, err
	}
	return next, nil
}
