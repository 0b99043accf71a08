package layout

import (
	"regexp"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the number of terminal cells s occupies, excluding
// ANSI codes. Wide runes count as two cells.
func VisibleLength(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// TruncateText shortens text to at most maxWidth cells, ending in the
// ellipsis. Wide runes are never split.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text, false
	}

	// Not enough room for any text + ellipsis
	if runewidth.StringWidth(cfg.Ellipsis) >= maxWidth {
		return runewidth.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return runewidth.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix truncates text while preserving prefix and suffix.
// Example: TruncateWithPrefixSuffix("Development", 10, "▸ ", "", cfg) -> "▸ Devel..."
// Returns the truncated text and whether truncation occurred.
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	combined := prefix + text + suffix
	if runewidth.StringWidth(combined) <= maxWidth {
		return combined, false
	}

	overhead := runewidth.StringWidth(prefix) + runewidth.StringWidth(suffix)
	if overhead+runewidth.StringWidth(cfg.Ellipsis) >= maxWidth {
		// Not even one cell left for text
		return TruncateText(combined, maxWidth, cfg)
	}

	return prefix + runewidth.Truncate(text, maxWidth-overhead, cfg.Ellipsis) + suffix, true
}
