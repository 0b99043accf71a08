package model

import "fmt"

// SortKey selects how siblings are ordered.
type SortKey string

const (
	SortNone SortKey = "none" // store order
	SortName SortKey = "name"
	SortDate SortKey = "date"
)

// SortDirection is the order applied by a SortKey.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortState is the user's current sort selection.
type SortState struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortState keeps the store order.
func DefaultSortState() SortState {
	return SortState{Key: SortNone, Direction: Ascending}
}

// ParseSortKey parses a sort key. "default" is accepted as an alias of "none".
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "none", "default":
		return SortNone, nil
	case "name":
		return SortName, nil
	case "date":
		return SortDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseSortDirection parses a sort direction.
func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// Next cycles none -> name -> date -> none.
func (k SortKey) Next() SortKey {
	switch k {
	case SortNone:
		return SortName
	case SortName:
		return SortDate
	default:
		return SortNone
	}
}

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Reorderable reports whether drag-and-drop positions are meaningful.
func (s SortState) Reorderable() bool {
	return s.Key == SortNone || s.Key == ""
}
