package layout

// Grid holds calculated tile grid dimensions.
type Grid struct {
	Columns     int
	CellWidth   int // outer tile width, borders included
	VisibleRows int
}

// CalculateGrid fits up to columns tiles per row into the terminal.
// Columns are dropped until each tile is at least MinCellWidth wide,
// keeping at least one.
func CalculateGrid(terminalWidth, terminalHeight, columns int, cfg GridConfig) Grid {
	if columns < 1 {
		columns = 1
	}
	available := terminalWidth - cfg.WidthReduction

	width := cellWidth(available, columns, cfg.Gap)
	for columns > 1 && width < cfg.MinCellWidth {
		columns--
		width = cellWidth(available, columns, cfg.Gap)
	}
	if width < 1 {
		width = 1
	}

	rows := 1
	if cfg.CellHeight > 0 {
		rows = (terminalHeight - cfg.HeightReduction) / cfg.CellHeight
	}
	if rows < 1 {
		rows = 1
	}

	return Grid{Columns: columns, CellWidth: width, VisibleRows: rows}
}

func cellWidth(available, columns, gap int) int {
	return (available - gap*(columns-1)) / columns
}

// ContentWidth computes the width available for tile content.
func (g Grid) ContentWidth(cfg GridConfig) int {
	w := g.CellWidth - cfg.CellPadding
	if w < 1 {
		return 1
	}
	return w
}

// Rows returns the number of rows needed for count tiles.
func (g Grid) Rows(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + g.Columns - 1) / g.Columns
}

// RowOf returns the row holding tile index.
func (g Grid) RowOf(index int) int {
	if index < 0 {
		return 0
	}
	return index / g.Columns
}

// Step moves cursor by dx columns and dy rows within count tiles.
// Horizontal steps stay on the current row; vertical steps past the last
// partial row land on the last tile.
func (g Grid) Step(cursor, dx, dy, count int) int {
	if count <= 0 {
		return 0
	}
	row, col := cursor/g.Columns, cursor%g.Columns

	if dx != 0 {
		col += dx
		if col < 0 {
			col = 0
		}
		if col >= g.Columns {
			col = g.Columns - 1
		}
		next := row*g.Columns + col
		if next >= count {
			next = count - 1
		}
		return next
	}

	row += dy
	if row < 0 {
		return cursor
	}
	if row >= g.Rows(count) {
		return cursor
	}
	next := row*g.Columns + col
	if next >= count {
		next = count - 1
	}
	return next
}

// ViewportOffset computes the first visible row so that cursorRow stays
// in view, scrolling as little as possible from offset.
func ViewportOffset(cursorRow, offset, visibleRows int) int {
	if visibleRows < 1 {
		visibleRows = 1
	}
	if cursorRow < offset {
		return cursorRow
	}
	if cursorRow >= offset+visibleRows {
		return cursorRow - visibleRows + 1
	}
	return offset
}
