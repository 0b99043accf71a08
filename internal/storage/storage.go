package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// IDs of the permanent nodes every store starts with.
const (
	RootID  = "0"
	BarID   = "1"
	OtherID = "2"
)

// OtherTitle is the title of the second permanent folder.
const OtherTitle = "Other Bookmarks"

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrPermanentNode = errors.New("cannot modify permanent node")
	ErrInvalidMove   = errors.New("invalid move")
)

// Store is the authoritative bookmark tree. Implementations are safe for
// concurrent use and hand out copies, never their internal nodes.
//
// Move follows the browser convention: when a node moves forward within its
// own parent, the index refers to the position before removal, so the node
// lands directly in front of the node that occupied that index.
type Store interface {
	GetTree(ctx context.Context) (*model.Node, error)
	Update(ctx context.Context, id string, changes model.Changes) error
	RemoveSubtree(ctx context.Context, id string) error
	Move(ctx context.Context, id string, dest model.Destination) error
}

// Seeder appends new nodes to a folder. Nodes without an ID get one.
// Returns the number of links inserted.
type Seeder interface {
	Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error)
}

// Backend is a store that lives in a file.
type Backend interface {
	Store
	Seeder
	Path() string
	Close() error
}

// DefaultTree returns an empty tree with the permanent folders.
func DefaultTree(now time.Time) model.Node {
	ms := now.UnixMilli()
	return model.Node{
		ID:        RootID,
		DateAdded: ms,
		Children: []model.Node{
			{ID: BarID, ParentID: RootID, Index: 0, Title: tree.DefaultBarTitle, DateAdded: ms, Children: []model.Node{}},
			{ID: OtherID, ParentID: RootID, Index: 1, Title: OtherTitle, DateAdded: ms, Children: []model.Node{}},
		},
	}
}

// DefaultStorePath returns the default store path: ~/.config/bmgrid/bookmarks.json
func DefaultStorePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmgrid", "bookmarks.json"), nil
}

// Open opens the backend for path. SQLite is used for .db, .sqlite and
// .sqlite3 files, JSON otherwise.
func Open(path string) (Backend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path)
	}
}

// OpenDefault opens the default backend.
// Prefers SQLite if the database file exists, otherwise falls back to JSON.
func OpenDefault() (Backend, error) {
	sqlitePath, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}

	// If SQLite database exists, use it
	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteStore(sqlitePath)
	}

	jsonPath, err := DefaultStorePath()
	if err != nil {
		return nil, err
	}
	return NewJSONStore(jsonPath)
}

// isPermanent reports whether a node with the given id and parent is the
// root or one of the top-level folders.
func isPermanent(id, parentID string) bool {
	return id == RootID || parentID == RootID
}

// resolveIndex applies the move index convention. It returns the final
// position after removal and false when the move is a no-op.
func resolveIndex(sameParent bool, oldIndex, index, childCount int) (int, bool) {
	if index < 0 || index > childCount {
		index = childCount
	}
	if sameParent {
		if index == oldIndex || index == oldIndex+1 {
			return oldIndex, false
		}
		if index > oldIndex {
			index--
		}
	}
	return index, true
}
