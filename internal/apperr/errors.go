package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for recoverable user-level failures
var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyInput   = errors.New("empty input")
	ErrInvalidDrop  = errors.New("invalid drop")
	ErrStoreFailure = errors.New("store failure")
	ErrNoTarget     = errors.New("no target selected")
	ErrNotFolder    = errors.New("not a folder")
)

// StoreError wraps a failed call to the bookmark store.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// DropError describes why a drag-and-drop gesture was ignored.
type DropError struct {
	DraggedID string
	TargetID  string
	Reason    string
}

func (e *DropError) Error() string {
	return fmt.Sprintf("cannot drop %s on %s: %s", e.DraggedID, e.TargetID, e.Reason)
}

func (e *DropError) Is(target error) bool {
	return target == ErrInvalidDrop
}
