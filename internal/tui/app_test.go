package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmgrid/internal/browser"
	"github.com/nikbrunner/bmgrid/internal/coordinator"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
	"github.com/nikbrunner/bmgrid/internal/tui/layout"
)

type openCall struct {
	URL  string
	Mode browser.Mode
}

type fakeOpener struct {
	calls []openCall
}

func (o *fakeOpener) Open(_ context.Context, url string, mode browser.Mode) error {
	o.calls = append(o.calls, openCall{URL: url, Mode: mode})
	return nil
}

// failingStore rejects renames.
type failingStore struct {
	*storage.MemoryStore
}

func (s failingStore) Update(context.Context, string, model.Changes) error {
	return errors.New("disk full")
}

func link(id, title string) model.Node {
	u := "https://" + id + ".example.com"
	return model.Node{ID: id, Title: title, URL: &u, DateAdded: 1}
}

func folder(id, title string, children ...model.Node) model.Node {
	if children == nil {
		children = []model.Node{}
	}
	return model.Node{ID: id, Title: title, DateAdded: 1, Children: children}
}

// newStore seeds the bar with Work, Docs, Personal and Blog, in that order.
func newStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(nil)
	_, err := store.Insert(context.Background(), storage.BarID, []model.Node{
		folder("work", "Work",
			folder("projects", "Projects", link("rfc", "RFC")),
			link("notes", "Notes"),
		),
		link("docs", "Docs"),
		folder("personal", "Personal", link("recipes", "Recipes")),
		link("blog", "Blog"),
	})
	assert.NilError(t, err)
	return store
}

type testEnv struct {
	store  *storage.MemoryStore
	opener *fakeOpener
	copied []string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp builds an App over store, loads it and sizes it for seven
// columns.
func newTestApp(t *testing.T, store storage.Store, barTitle string) (App, *testEnv) {
	t.Helper()
	env := &testEnv{opener: &fakeOpener{}}
	if mem, ok := store.(*storage.MemoryStore); ok {
		env.store = mem
	}

	coord := coordinator.New(coordinator.Params{
		Store:    store,
		Opener:   env.opener,
		Logger:   discardLogger(),
		BarTitle: barTitle,
	})
	app := NewApp(AppParams{
		Coordinator: coord,
		Logger:      discardLogger(),
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	})

	app = settle(t, app, app.Init())
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), env
}

// settle runs cmd and feeds state results back into the App until no
// command is left. Spinner ticks are dropped.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(stateMsg); !ok {
			continue
		}
		m, next := a.Update(msg)
		a = settle(t, m.(App), next)
	}
	return a
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}
	return msgs
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key and settles the commands it returns.
func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		m, cmd := a.Update(keyMsg(k))
		a = settle(t, m.(App), cmd)
	}
	return a
}

func view(a App) string {
	return layout.StripANSI(a.View())
}

func tileIDs(a App) []string {
	ids := []string{}
	for _, t := range a.tiles() {
		if t.back {
			ids = append(ids, "<back>")
			continue
		}
		ids = append(ids, t.node.ID)
	}
	return ids
}

func titleOf(t *testing.T, store *storage.MemoryStore, id string) string {
	t.Helper()
	root := store.Snapshot()
	n, ok := tree.FindByID(&root, id)
	assert.Assert(t, ok, "node %s not found", id)
	return n.Title
}

func TestApp_LoadShowsRootGrid(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	assert.Assert(t, !app.Busy())
	assert.Equal(t, app.Mode(), ModeNormal)
	assert.DeepEqual(t, tileIDs(app), []string{"work", "docs", "personal", "blog"})

	v := view(app)
	assert.Assert(t, is.Contains(v, "Bookmarks Bar"))
	assert.Assert(t, is.Contains(v, "[sort:default]"))
	assert.Assert(t, is.Contains(v, "▸ Work"))
	assert.Assert(t, is.Contains(v, "Docs"))
	assert.Assert(t, is.Contains(v, "▸ Personal"))
	assert.Assert(t, is.Contains(v, "Blog"))
	assert.Assert(t, !strings.Contains(v, "Back"))
}

func TestApp_Navigation(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "l")
	assert.Equal(t, app.Cursor(), 1)

	// Single row: vertical moves stay put.
	app = press(t, app, "j")
	assert.Equal(t, app.Cursor(), 1)

	app = press(t, app, "G")
	assert.Equal(t, app.Cursor(), 3)

	app = press(t, app, "l")
	assert.Equal(t, app.Cursor(), 3)

	app = press(t, app, "g", "g")
	assert.Equal(t, app.Cursor(), 0)
}

func TestApp_ResizeReflowsGrid(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	m, _ := app.Update(tea.WindowSizeMsg{Width: 40, Height: 40})
	app = m.(App)

	// Two columns fit: Work Docs / Personal Blog.
	app = press(t, app, "j")
	assert.Equal(t, app.Cursor(), 2)
	app = press(t, app, "l")
	assert.Equal(t, app.Cursor(), 3)
}

func TestApp_DescendAndBack(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "l", "enter")
	assert.Equal(t, app.State().Stack.Depth(), 1)
	assert.Equal(t, app.Cursor(), 0)
	assert.DeepEqual(t, tileIDs(app), []string{"<back>", "recipes"})

	v := view(app)
	assert.Assert(t, is.Contains(v, "Bookmarks Bar / Personal"))
	assert.Assert(t, is.Contains(v, "← Back"))
	assert.Assert(t, is.Contains(v, "Recipes"))

	// Back returns to the root with the folder selected.
	app = press(t, app, "-")
	assert.Assert(t, app.State().AtRoot())
	assert.Equal(t, app.Cursor(), 2)

	// The Back tile works like the key.
	app = press(t, app, "enter", "enter")
	assert.Assert(t, app.State().AtRoot())
	assert.Equal(t, app.Cursor(), 2)
}

func TestApp_NestedBreadcrumb(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	// Work, then Projects (after the Back tile).
	app = press(t, app, "enter", "l", "enter")
	assert.Equal(t, app.State().Stack.Depth(), 2)

	v := view(app)
	assert.Assert(t, is.Contains(v, "Bookmarks Bar / Projects"))
	assert.Assert(t, is.Contains(v, "to Work"))

	app = press(t, app, "-")
	assert.Equal(t, app.State().Stack.Depth(), 1)
	assert.DeepEqual(t, tileIDs(app), []string{"<back>", "projects", "notes"})
	assert.Equal(t, app.Cursor(), 1)
}

func TestApp_OpenLink(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "enter")
	app = press(t, app, "t", "T")

	assert.DeepEqual(t, env.opener.calls, []openCall{
		{URL: "https://docs.example.com", Mode: browser.Current},
		{URL: "https://docs.example.com", Mode: browser.NewTab},
		{URL: "https://docs.example.com", Mode: browser.Background},
	})
	assert.Assert(t, is.Contains(view(app), "Opened Docs"))

	// Folders don't open in tabs.
	app = press(t, app, "h", "t")
	assert.Equal(t, len(env.opener.calls), 3)
	assert.Assert(t, is.Contains(view(app), "Only bookmarks open in tabs"))
}

func TestApp_Manage(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	press(t, app, "M")
	assert.DeepEqual(t, env.opener.calls, []openCall{
		{URL: storage.DefaultManageURL, Mode: browser.NewTab},
	})
}

func TestApp_Rename(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "e")
	assert.Equal(t, app.Mode(), ModeRename)
	assert.Equal(t, app.input.Value(), "Docs")
	assert.Assert(t, is.Contains(view(app), "Rename Bookmark"))

	app.input.SetValue("Reference")
	app = press(t, app, "enter")

	assert.Equal(t, app.Mode(), ModeNormal)
	assert.Equal(t, titleOf(t, env.store, "docs"), "Reference")
	assert.Assert(t, is.Contains(view(app), "Reference"))
	assert.Equal(t, app.Cursor(), 1)
}

func TestApp_RenameBlankKeepsDialog(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "e")
	app.input.SetValue("   ")
	app = press(t, app, "enter")

	assert.Equal(t, app.Mode(), ModeRename)
	assert.Assert(t, is.Contains(view(app), "Title can't be empty"))

	app = press(t, app, "esc")
	assert.Equal(t, app.Mode(), ModeNormal)
	assert.Assert(t, app.State().Target == nil)
	assert.Equal(t, titleOf(t, env.store, "docs"), "Docs")
}

func TestApp_RenameStoreFailure(t *testing.T) {
	app, _ := newTestApp(t, failingStore{newStore(t)}, "")

	app = press(t, app, "e")
	app.input.SetValue("Job")
	app = press(t, app, "enter")

	assert.Equal(t, app.Mode(), ModeRename)
	assert.Assert(t, is.Contains(view(app), "disk full"))
	assert.Equal(t, app.input.Value(), "Job")
}

func TestApp_Delete(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "G", "d")
	assert.Equal(t, app.Mode(), ModeConfirmDelete)
	v := view(app)
	assert.Assert(t, is.Contains(v, "Delete Bookmark?"))
	assert.Assert(t, is.Contains(v, `"Blog"`))

	app = press(t, app, "n")
	assert.Equal(t, app.Mode(), ModeNormal)
	assert.DeepEqual(t, tileIDs(app), []string{"work", "docs", "personal", "blog"})

	app = press(t, app, "d", "y")
	assert.Equal(t, app.Mode(), ModeNormal)
	assert.DeepEqual(t, tileIDs(app), []string{"work", "docs", "personal"})
	assert.Equal(t, app.Cursor(), 2)
	assert.Assert(t, is.Contains(view(app), "Deleted Blog"))

	root := env.store.Snapshot()
	_, ok := tree.FindByID(&root, "blog")
	assert.Assert(t, !ok)
}

func TestApp_DeleteFolderNamesContents(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "d")
	v := view(app)
	assert.Assert(t, is.Contains(v, "Delete Folder?"))
	assert.Assert(t, is.Contains(v, "Includes 2 bookmarks."))
}

func TestApp_ContextMenu(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "m")
	assert.Equal(t, app.Mode(), ModeMenu)
	v := view(app)
	for _, action := range coordinator.Actions {
		assert.Assert(t, is.Contains(v, action.Label()))
	}

	app = press(t, app, "j", "enter")
	assert.Equal(t, app.Mode(), ModeNormal)
	assert.DeepEqual(t, env.opener.calls, []openCall{
		{URL: "https://docs.example.com", Mode: browser.NewTab},
	})

	// Rename is the fourth entry.
	app = press(t, app, "m", "j", "j", "j", "enter")
	assert.Equal(t, app.Mode(), ModeRename)
	assert.Equal(t, app.State().Target.ID, "docs")

	app = press(t, app, "esc", "m", "esc")
	assert.Equal(t, app.Mode(), ModeNormal)
}

func TestApp_GrabAndDrop(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "G", "x")
	assert.Equal(t, app.grabbed, "blog")
	assert.Assert(t, is.Contains(view(app), "Moving Blog"))

	app = press(t, app, "h", "h", "x")
	assert.Equal(t, app.grabbed, "")
	assert.DeepEqual(t, tileIDs(app), []string{"work", "blog", "docs", "personal"})
	assert.Equal(t, app.Cursor(), 1)

	root := env.store.Snapshot()
	bar, ok := tree.FindByID(&root, storage.BarID)
	assert.Assert(t, ok)
	assert.Equal(t, bar.Children[1].ID, "blog")
}

func TestApp_DropOnItselfCancels(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "x", "x")
	assert.Equal(t, app.grabbed, "")
	assert.Assert(t, is.Contains(view(app), "Drop cancelled"))
	assert.DeepEqual(t, tileIDs(app), []string{"work", "docs", "personal", "blog"})
}

func TestApp_SortCycle(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "s")
	assert.Equal(t, app.State().Sort.Key, model.SortName)
	assert.DeepEqual(t, tileIDs(app), []string{"personal", "work", "blog", "docs"})
	assert.Assert(t, is.Contains(view(app), "[sort:name asc]"))

	app = press(t, app, "S")
	assert.Equal(t, app.State().Sort.Direction, model.Descending)
	assert.DeepEqual(t, tileIDs(app), []string{"work", "personal", "docs", "blog"})

	// Sorted grids can't be reordered.
	app = press(t, app, "x")
	assert.Equal(t, app.grabbed, "")
	assert.Assert(t, is.Contains(view(app), "Reordering needs the default sort"))
}

func TestApp_DirectionIgnoredForDefaultSort(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "S")
	assert.Equal(t, app.State().Sort, model.DefaultSortState())
	assert.Assert(t, is.Contains(view(app), "Direction applies to name and date sorting"))
}

func TestApp_BusyRefusesGestures(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")
	app.busy = true

	app = press(t, app, "l", "enter")
	assert.Equal(t, app.Cursor(), 0)
	assert.Equal(t, len(env.opener.calls), 0)
	assert.Assert(t, is.Contains(view(app), "Still working..."))
}

func TestApp_Yank(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	app = press(t, app, "l", "y")
	assert.DeepEqual(t, env.copied, []string{"https://docs.example.com"})
	assert.Assert(t, is.Contains(view(app), "Copied https://docs.example.com"))

	app = press(t, app, "h", "y")
	assert.Equal(t, len(env.copied), 1)
	assert.Assert(t, is.Contains(view(app), "Nothing to copy"))
}

func TestApp_YankFailure(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")
	app.copy = func(string) error { return errors.New("no clipboard") }

	app = press(t, app, "l", "y")
	assert.Assert(t, is.Contains(view(app), "no clipboard"))
}

func TestApp_EmptyStates(t *testing.T) {
	t.Run("root folder missing", func(t *testing.T) {
		app, _ := newTestApp(t, newStore(t), "Favorites")
		assert.Assert(t, is.Contains(view(app), `No folder named "Favorites" was found.`))
		assert.DeepEqual(t, tileIDs(app), []string{})
	})

	t.Run("root folder empty", func(t *testing.T) {
		app, _ := newTestApp(t, storage.NewMemoryStore(nil), "")
		assert.Assert(t, is.Contains(view(app), "Bookmarks Bar is empty."))
	})

	t.Run("entered folder empty", func(t *testing.T) {
		store := storage.NewMemoryStore(nil)
		_, err := store.Insert(context.Background(), storage.BarID, []model.Node{folder("empty", "Empty")})
		assert.NilError(t, err)

		app, _ := newTestApp(t, store, "")
		app = press(t, app, "enter")
		assert.Assert(t, is.Contains(view(app), "This folder is empty."))
		assert.DeepEqual(t, tileIDs(app), []string{"<back>"})
	})
}

func TestApp_Reload(t *testing.T) {
	app, env := newTestApp(t, newStore(t), "")

	_, err := env.store.Insert(context.Background(), storage.BarID, []model.Node{link("news", "News")})
	assert.NilError(t, err)

	app = press(t, app, "R")
	assert.DeepEqual(t, tileIDs(app), []string{"work", "docs", "personal", "blog", "news"})
}

func TestApp_Help(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	app = press(t, app, "?")
	assert.Equal(t, app.Mode(), ModeHelp)
	v := view(app)
	assert.Assert(t, is.Contains(v, "grab/drop"))
	assert.Assert(t, is.Contains(v, "background tab"))

	app = press(t, app, "esc")
	assert.Equal(t, app.Mode(), ModeNormal)
}

func TestApp_Quit(t *testing.T) {
	app, _ := newTestApp(t, newStore(t), "")

	_, cmd := app.Update(keyMsg("q"))
	assert.Assert(t, cmd != nil)
	_, ok := cmd().(tea.QuitMsg)
	assert.Assert(t, ok)
}
