// Package nav tracks the folders the user has drilled into.
package nav

import (
	"github.com/nikbrunner/bmgrid/internal/apperr"
	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// Stack is the breadcrumb of folder frames from the root-adjacent level to
// the current one. The zero value is the root state. Stack values are
// immutable: every operation returns a new Stack.
type Stack struct {
	frames []model.Frame
}

// Depth returns the number of pushed frames (0 = root).
func (s Stack) Depth() int {
	return len(s.frames)
}

// AtRoot returns true if no folder has been entered.
func (s Stack) AtRoot() bool {
	return len(s.frames) == 0
}

// Top returns the current frame.
func (s Stack) Top() (model.Frame, bool) {
	if len(s.frames) == 0 {
		return model.Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// Frames returns a copy of the frames, root-adjacent first.
func (s Stack) Frames() []model.Frame {
	out := make([]model.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Descend pushes a frame for folder.
func (s Stack) Descend(folder model.Node) (Stack, error) {
	if !folder.IsFolder() {
		return s, apperr.ErrNotFolder
	}
	frames := make([]model.Frame, len(s.frames), len(s.frames)+1)
	copy(frames, s.frames)
	frames = append(frames, model.Frame{
		ID:       folder.ID,
		Title:    folder.Title,
		Children: folder.Children,
	})
	return Stack{frames: frames}, nil
}

// Ascend pops the current frame. toRoot is true when the pop leaves the
// stack empty; the caller must then re-locate the root from a fresh fetch
// instead of trusting any cached level. Ascend at root is a no-op.
func (s Stack) Ascend() (next Stack, toRoot bool) {
	switch len(s.frames) {
	case 0:
		return s, false
	case 1:
		return Stack{}, true
	}
	frames := make([]model.Frame, len(s.frames)-1)
	copy(frames, s.frames)
	return Stack{frames: frames}, false
}

// Refresh rebuilds every frame from a freshly fetched tree, keyed by folder ID.
// The stack is cut at the first frame whose folder no longer exists.
func (s Stack) Refresh(root *model.Node) Stack {
	frames := make([]model.Frame, 0, len(s.frames))
	for _, f := range s.frames {
		n, ok := tree.FindByID(root, f.ID)
		if !ok || !n.IsFolder() {
			break
		}
		frames = append(frames, model.Frame{
			ID:       n.ID,
			Title:    n.Title,
			Children: n.Children,
		})
	}
	return Stack{frames: frames}
}
