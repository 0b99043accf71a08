// Package reorder turns a drag-and-drop gesture into a store move.
package reorder

import (
	"github.com/nikbrunner/bmgrid/internal/apperr"
	"github.com/nikbrunner/bmgrid/internal/model"
)

// Direction is the visual direction of a drag among siblings.
type Direction int

const (
	Unchanged Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// Plan computes the move for draggedID dropped on target. siblings is the
// order currently on screen. The target's store index is used as-is: the
// dragged node is inserted before whatever currently occupies that slot.
//
// Drops are rejected while a sort key is active, on the dragged node itself,
// and when either node is not part of the displayed siblings.
func Plan(draggedID string, target model.Node, siblings []model.Node, sort model.SortState) (model.MoveInstruction, error) {
	if !sort.Reorderable() {
		return model.MoveInstruction{}, dropError(draggedID, target.ID, "sorted by "+string(sort.Key))
	}
	if draggedID == target.ID {
		return model.MoveInstruction{}, dropError(draggedID, target.ID, "dropped on itself")
	}
	if indexOf(siblings, draggedID) < 0 {
		return model.MoveInstruction{}, dropError(draggedID, target.ID, "dragged item is not displayed")
	}
	if indexOf(siblings, target.ID) < 0 {
		return model.MoveInstruction{}, dropError(draggedID, target.ID, "target is not displayed")
	}

	return model.MoveInstruction{
		ID:          draggedID,
		NewParentID: target.ParentID,
		NewIndex:    target.Index,
	}, nil
}

// DirectionOf reports whether draggedID moves up or down to reach targetID
// in the displayed order.
func DirectionOf(draggedID, targetID string, siblings []model.Node) Direction {
	from := indexOf(siblings, draggedID)
	to := indexOf(siblings, targetID)
	switch {
	case from < 0 || to < 0 || from == to:
		return Unchanged
	case from < to:
		return Down
	default:
		return Up
	}
}

func indexOf(nodes []model.Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func dropError(draggedID, targetID, reason string) error {
	return &apperr.DropError{DraggedID: draggedID, TargetID: targetID, Reason: reason}
}
