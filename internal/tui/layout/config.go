package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Grid  GridConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// GridConfig holds tile grid dimension configuration.
type GridConfig struct {
	// HeightReduction is subtracted from terminal height for the grid.
	// Accounts for: app padding (1) + breadcrumb (2) + message line (1) + hints (1) = 5
	HeightReduction int

	// WidthReduction is subtracted from terminal width for the grid.
	// Accounts for app padding on both sides.
	WidthReduction int

	// CellHeight is the number of lines a tile occupies, borders included.
	CellHeight int

	// CellPadding is subtracted from tile width for tile content.
	// Accounts for tile border and padding on each side.
	CellPadding int

	// MinCellWidth is the narrowest tile before columns are dropped.
	MinCellWidth int

	// Gap is the number of blank columns between tiles.
	Gap int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// MenuMaxVisible: max entries shown in the context menu.
	MenuMaxVisible int

	// HelpKeyColumnWidth: width of the key column in the help overlay.
	HelpKeyColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit int
	StandardWidth  int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Grid: GridConfig{
			HeightReduction: 5,
			WidthReduction:  4,
			CellHeight:      4,
			CellPadding:     4,
			MinCellWidth:    14,
			Gap:             1,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			MinWidth:            36,
			MaxWidth:            70,
			MenuMaxVisible:      8,
			HelpKeyColumnWidth:  14,
		},
		Input: InputConfig{
			TitleCharLimit: 200,
			StandardWidth:  40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
