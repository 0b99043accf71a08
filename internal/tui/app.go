package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmgrid/internal/apperr"
	"github.com/nikbrunner/bmgrid/internal/coordinator"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tui/layout"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMenu
	ModeRename
	ModeConfirmDelete
	ModeHelp
)

// MessageType determines the styling of status messages.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageError
)

// DefaultColumns is the grid width used when none is configured.
const DefaultColumns = 7

// stateMsg delivers the result of a coordinator call.
type stateMsg struct {
	state coordinator.ViewState
	err   error
	info  string // shown on success
}

// tile is one cell of the grid: a node or the Back tile.
type tile struct {
	back bool
	node model.Node
}

// App is the main Bubble Tea model for the bookmark grid.
type App struct {
	coord  *coordinator.Coordinator
	ctx    context.Context
	state  coordinator.ViewState
	loaded bool

	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	columns      int
	logger       *slog.Logger
	copy         func(string) error

	mode        Mode
	cursor      int
	offset      int // first visible grid row
	lastKeyWasG bool
	menuCursor  int
	menuTarget  model.Node
	input       textinput.Model
	spinner     spinner.Model
	busy        bool
	grabbed     string // ID of the tile being dragged
	focusID     string // tile to select after the next state change

	messageText string
	messageType MessageType

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Coordinator  *coordinator.Coordinator
	Context      context.Context      // optional, defaults to context.Background()
	Columns      int                  // optional, defaults to DefaultColumns
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Clipboard    func(string) error   // optional, defaults to the system clipboard
	Logger       *slog.Logger         // optional
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	columns := params.Columns
	if columns < 1 {
		columns = DefaultColumns
	}

	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.Placeholder = "Title"
	input.CharLimit = layoutConfig.Input.TitleCharLimit
	input.Width = layoutConfig.Input.StandardWidth
	input.Cursor.SetMode(cursor.CursorStatic)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = styles.Title

	return App{
		coord:        params.Coordinator,
		ctx:          ctx,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		columns:      columns,
		logger:       logger,
		copy:         copyFn,
		input:        input,
		spinner:      spin,
		busy:         true,
		width:        100,
		height:       30,
	}
}

// Init loads the bookmark tree.
func (a App) Init() tea.Cmd {
	coord := a.coord
	ctx := a.ctx
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		state, err := coord.Load(ctx)
		return stateMsg{state: state, err: err}
	})
}

// Update handles messages and returns the updated model and command.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.clampCursor()
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case stateMsg:
		return a.applyState(msg), nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// State returns the displayed view state.
func (a App) State() coordinator.ViewState {
	return a.state
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Cursor returns the index of the selected tile.
func (a App) Cursor() int {
	return a.cursor
}

// Busy reports whether a command is in flight.
func (a App) Busy() bool {
	return a.busy
}

// tiles returns the grid cells in display order. A Back tile leads the
// grid when a folder has been entered.
func (a App) tiles() []tile {
	visible := a.state.Visible()
	tiles := make([]tile, 0, len(visible)+1)
	if a.loaded && !a.state.AtRoot() {
		tiles = append(tiles, tile{back: true})
	}
	for _, n := range visible {
		tiles = append(tiles, tile{node: n})
	}
	return tiles
}

// selected returns the tile under the cursor.
func (a App) selected() (tile, bool) {
	tiles := a.tiles()
	if a.cursor < 0 || a.cursor >= len(tiles) {
		return tile{}, false
	}
	return tiles[a.cursor], true
}

func (a App) grid() layout.Grid {
	return layout.CalculateGrid(a.width, a.height, a.columns, a.layoutConfig.Grid)
}

// clampCursor keeps the cursor on a tile and the viewport on the cursor.
func (a *App) clampCursor() {
	n := len(a.tiles())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	g := a.grid()
	a.offset = layout.ViewportOffset(g.RowOf(a.cursor), a.offset, g.VisibleRows)
}

// applyState installs the result of a coordinator call. The mode follows
// the pending action of the new state.
func (a App) applyState(msg stateMsg) App {
	prev := a.state
	next := msg.state

	a.busy = false
	a.loaded = true
	a.state = next

	switch {
	case next.Stack.Depth() > prev.Stack.Depth():
		a.cursor = 0
		a.offset = 0
	case next.Stack.Depth() < prev.Stack.Depth():
		// Select the folder that was left.
		if frames := prev.Stack.Frames(); next.Stack.Depth() < len(frames) && a.focusID == "" {
			a.focusID = frames[next.Stack.Depth()].ID
		}
	}
	if next.ParentID() != prev.ParentID() {
		a.grabbed = ""
	}

	if a.focusID != "" {
		for i, t := range a.tiles() {
			if !t.back && t.node.ID == a.focusID {
				a.cursor = i
				break
			}
		}
		a.focusID = ""
	}
	a.clampCursor()

	prevMode := a.mode
	switch next.Pending {
	case coordinator.ActionRename:
		a.mode = ModeRename
	case coordinator.ActionDelete:
		a.mode = ModeConfirmDelete
	default:
		a.mode = ModeNormal
	}
	if a.mode == ModeRename && prevMode != ModeRename && next.Target != nil {
		a.input.SetValue(next.Target.Title)
		a.input.CursorEnd()
		a.input.Focus()
	}
	if a.mode != ModeRename {
		a.input.Blur()
	}

	switch {
	case msg.err != nil:
		a.setError(msg.err)
	case msg.info != "":
		a.setInfo(msg.info)
	}
	return a
}

func (a *App) setInfo(text string) {
	a.messageText = text
	a.messageType = MessageInfo
}

func (a *App) setError(err error) {
	a.logger.Warn("gesture failed", slog.Any("error", err))
	a.messageText = errorText(err)
	a.messageType = MessageError
}

func (a *App) clearMessage() {
	a.messageText = ""
}

// errorText turns an error into a message line.
func errorText(err error) string {
	var dropErr *apperr.DropError
	switch {
	case errors.Is(err, apperr.ErrEmptyInput):
		return "Title can't be empty"
	case errors.As(err, &dropErr):
		return "Can't drop here: " + dropErr.Reason
	case errors.Is(err, coordinator.ErrNoOpener):
		return "No browser configured"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Cancelled"
	}
	return err.Error()
}

// run executes call off the update loop and delivers its result as a
// stateMsg. The App is busy until then.
func (a App) run(info string, call func(context.Context, coordinator.ViewState) (coordinator.ViewState, error)) (App, tea.Cmd) {
	a.busy = true
	ctx := a.ctx
	state := a.state
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		next, err := call(ctx, state)
		return stateMsg{state: next, err: err, info: info}
	})
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if a.busy {
		a.setInfo("Still working...")
		return a, nil
	}
	a.clearMessage()

	switch a.mode {
	case ModeMenu:
		return a.handleMenuMode(msg)
	case ModeRename:
		return a.handleRenameMode(msg)
	case ModeConfirmDelete:
		return a.handleConfirmDeleteMode(msg)
	case ModeHelp:
		return a.handleHelpMode(msg)
	}
	return a.handleNormalMode(msg)
}

func (a App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// gg needs two presses.
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.cursor = 0
			a.clampCursor()
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	g := a.grid()
	count := len(a.tiles())

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		a.cursor = g.Step(a.cursor, 0, -1, count)
	case key.Matches(msg, a.keys.Down):
		a.cursor = g.Step(a.cursor, 0, 1, count)
	case key.Matches(msg, a.keys.Left):
		a.cursor = g.Step(a.cursor, -1, 0, count)
	case key.Matches(msg, a.keys.Right):
		a.cursor = g.Step(a.cursor, 1, 0, count)
	case key.Matches(msg, a.keys.Bottom):
		a.cursor = count - 1

	case key.Matches(msg, a.keys.Cancel):
		if a.grabbed != "" {
			a.grabbed = ""
			a.setInfo("Drop cancelled")
		}

	case key.Matches(msg, a.keys.Back):
		if a.state.AtRoot() {
			return a, nil
		}
		return a.ascend()

	case key.Matches(msg, a.keys.Open):
		t, ok := a.selected()
		if !ok {
			return a, nil
		}
		if t.back {
			return a.ascend()
		}
		return a.contextAction(coordinator.ActionOpen, t.node)

	case key.Matches(msg, a.keys.OpenNew):
		return a.linkAction(coordinator.ActionOpenNew)

	case key.Matches(msg, a.keys.OpenBackground):
		return a.linkAction(coordinator.ActionOpenBackground)

	case key.Matches(msg, a.keys.Menu):
		t, ok := a.selected()
		if !ok || t.back {
			return a, nil
		}
		a.mode = ModeMenu
		a.menuCursor = 0
		a.menuTarget = t.node
		return a, nil

	case key.Matches(msg, a.keys.Rename):
		if t, ok := a.selected(); ok && !t.back {
			return a.contextAction(coordinator.ActionRename, t.node)
		}

	case key.Matches(msg, a.keys.Delete):
		if t, ok := a.selected(); ok && !t.back {
			return a.contextAction(coordinator.ActionDelete, t.node)
		}

	case key.Matches(msg, a.keys.Grab):
		return a.grabOrDrop()

	case key.Matches(msg, a.keys.Yank):
		a.yank()

	case key.Matches(msg, a.keys.Sort):
		sort := a.state.Sort
		sort.Key = sort.Key.Next()
		a.grabbed = ""
		return a.setSort(sort)

	case key.Matches(msg, a.keys.SortDirection):
		if a.state.Sort.Reorderable() {
			a.setInfo("Direction applies to name and date sorting")
			return a, nil
		}
		sort := a.state.Sort
		sort.Direction = sort.Direction.Toggle()
		return a.setSort(sort)

	case key.Matches(msg, a.keys.Manage):
		return a.contextAction(coordinator.ActionManage, model.Node{})

	case key.Matches(msg, a.keys.Reload):
		coord := a.coord
		return a.run("Reloaded", coord.Reload)

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	a.clampCursor()
	return a, nil
}

func (a App) ascend() (tea.Model, tea.Cmd) {
	a.grabbed = ""
	coord := a.coord
	return a.run("", coord.Ascend)
}

// linkAction runs an open action on the selected tile if it is a link.
func (a App) linkAction(action coordinator.Action) (tea.Model, tea.Cmd) {
	t, ok := a.selected()
	if !ok || t.back || t.node.IsFolder() {
		a.setInfo("Only bookmarks open in tabs")
		return a, nil
	}
	return a.contextAction(action, t.node)
}

// contextAction performs a context menu action on target. Rename and
// delete only record the target, so they apply at once.
func (a App) contextAction(action coordinator.Action, target model.Node) (tea.Model, tea.Cmd) {
	a.grabbed = ""
	coord := a.coord

	if action == coordinator.ActionRename || action == coordinator.ActionDelete {
		next, err := coord.ContextAction(a.ctx, a.state, action, target)
		return a.applyState(stateMsg{state: next, err: err}), nil
	}

	info := ""
	if target.IsLink() {
		info = "Opened " + target.DisplayTitle()
	}
	return a.run(info, func(ctx context.Context, state coordinator.ViewState) (coordinator.ViewState, error) {
		return coord.ContextAction(ctx, state, action, target)
	})
}

func (a App) setSort(sort model.SortState) (tea.Model, tea.Cmd) {
	coord := a.coord
	info := "Sort: " + sortLabel(sort)
	return a.run(info, func(_ context.Context, state coordinator.ViewState) (coordinator.ViewState, error) {
		return coord.SetSort(state, sort)
	})
}

// grabOrDrop picks up the selected tile, or drops the grabbed tile onto it.
func (a App) grabOrDrop() (tea.Model, tea.Cmd) {
	if !a.state.Sort.Reorderable() {
		a.setInfo("Reordering needs the default sort (press s)")
		return a, nil
	}
	t, ok := a.selected()
	if !ok {
		return a, nil
	}

	if a.grabbed == "" {
		if t.back {
			return a, nil
		}
		a.grabbed = t.node.ID
		a.setInfo("Moving " + t.node.DisplayTitle())
		return a, nil
	}

	if t.back {
		a.setInfo("Can't drop on Back")
		return a, nil
	}
	dragged := a.grabbed
	a.grabbed = ""
	if dragged == t.node.ID {
		a.setInfo("Drop cancelled")
		return a, nil
	}

	a.focusID = dragged
	coord := a.coord
	targetID := t.node.ID
	return a.run("", func(ctx context.Context, state coordinator.ViewState) (coordinator.ViewState, error) {
		return coord.Drop(ctx, state, dragged, targetID)
	})
}

// yank copies the selected link's URL to the clipboard.
func (a *App) yank() {
	t, ok := a.selected()
	if !ok || t.back || !t.node.IsLink() {
		a.setInfo("Nothing to copy")
		return
	}
	if err := a.copy(t.node.Link()); err != nil {
		a.setError(fmt.Errorf("copy url: %w", err))
		return
	}
	a.setInfo("Copied " + t.node.Link())
}

func (a App) handleMenuMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Menu):
		a.mode = ModeNormal
	case key.Matches(msg, a.keys.Up):
		if a.menuCursor > 0 {
			a.menuCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.menuCursor < len(coordinator.Actions)-1 {
			a.menuCursor++
		}
	case key.Matches(msg, a.keys.Open):
		a.mode = ModeNormal
		return a.contextAction(coordinator.Actions[a.menuCursor], a.menuTarget)
	}
	return a, nil
}

func (a App) handleRenameMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return a.applyState(stateMsg{state: a.coord.Dismiss(a.state)}), nil
	case tea.KeyEnter:
		coord := a.coord
		title := a.input.Value()
		return a.run("Renamed", func(ctx context.Context, state coordinator.ViewState) (coordinator.ViewState, error) {
			return coord.Rename(ctx, state, title)
		})
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		coord := a.coord
		info := ""
		if a.state.Target != nil {
			info = "Deleted " + a.state.Target.DisplayTitle()
		}
		return a.run(info, coord.ConfirmDelete)
	case key.Matches(msg, a.keys.Cancel), msg.String() == "n":
		return a.applyState(stateMsg{state: a.coord.Dismiss(a.state)}), nil
	}
	return a, nil
}

func (a App) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help), key.Matches(msg, a.keys.Cancel):
		a.mode = ModeNormal
	}
	return a, nil
}
