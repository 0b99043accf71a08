package layout

import "testing"

func TestCalculateGrid(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name          string
		width, height int
		columns       int
		want          Grid
	}{
		{"drops a column below min width", 100, 30, 7, Grid{Columns: 6, CellWidth: 15, VisibleRows: 6}},
		{"wide terminal keeps columns", 200, 40, 7, Grid{Columns: 7, CellWidth: 27, VisibleRows: 8}},
		{"narrow terminal single column", 20, 6, 7, Grid{Columns: 1, CellWidth: 16, VisibleRows: 1}},
		{"zero columns means one", 80, 24, 0, Grid{Columns: 1, CellWidth: 76, VisibleRows: 4}},
		{"tiny terminal clamps", 5, 10, 3, Grid{Columns: 1, CellWidth: 1, VisibleRows: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGrid(tt.width, tt.height, tt.columns, cfg)
			if got != tt.want {
				t.Errorf("CalculateGrid(%d, %d, %d) = %+v, want %+v",
					tt.width, tt.height, tt.columns, got, tt.want)
			}
		})
	}
}

func TestGrid_Rows(t *testing.T) {
	g := Grid{Columns: 3}
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{9, 3},
	}

	for _, tt := range tests {
		if got := g.Rows(tt.count); got != tt.want {
			t.Errorf("Rows(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestGrid_ContentWidth(t *testing.T) {
	cfg := DefaultConfig().Grid

	if got := (Grid{CellWidth: 15}).ContentWidth(cfg); got != 11 {
		t.Errorf("ContentWidth = %d, want 11", got)
	}
	if got := (Grid{CellWidth: 3}).ContentWidth(cfg); got != 1 {
		t.Errorf("ContentWidth of tiny cell = %d, want 1", got)
	}
}

func TestGrid_Step(t *testing.T) {
	// 3 columns, 8 tiles:
	// 0 1 2
	// 3 4 5
	// 6 7
	g := Grid{Columns: 3}

	tests := []struct {
		name   string
		cursor int
		dx, dy int
		want   int
	}{
		{"right", 0, 1, 0, 1},
		{"right at row end", 2, 1, 0, 2},
		{"left at row start", 0, -1, 0, 0},
		{"left", 4, -1, 0, 3},
		{"right past last tile", 7, 1, 0, 7},
		{"down", 1, 0, 1, 4},
		{"down into partial row", 5, 0, 1, 7},
		{"down at bottom", 7, 0, 1, 7},
		{"up at top", 0, 0, -1, 0},
		{"up", 4, 0, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Step(tt.cursor, tt.dx, tt.dy, 8); got != tt.want {
				t.Errorf("Step(%d, %d, %d) = %d, want %d", tt.cursor, tt.dx, tt.dy, got, tt.want)
			}
		})
	}

	if got := g.Step(0, 1, 0, 0); got != 0 {
		t.Errorf("Step on empty grid = %d, want 0", got)
	}
}

func TestViewportOffset(t *testing.T) {
	tests := []struct {
		name                       string
		cursorRow, offset, visible int
		want                       int
	}{
		{"in view", 0, 0, 3, 0},
		{"below view scrolls down", 5, 0, 3, 3},
		{"above view scrolls up", 1, 2, 3, 1},
		{"last visible row", 4, 2, 3, 2},
		{"zero visible rows", 4, 0, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewportOffset(tt.cursorRow, tt.offset, tt.visible)
			if got != tt.want {
				t.Errorf("ViewportOffset(%d, %d, %d) = %d, want %d",
					tt.cursorRow, tt.offset, tt.visible, got, tt.want)
			}
		})
	}
}
