package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	seed(t, s)
	assert.NilError(t, s.Move(ctx, "a", model.Destination{ParentID: "f", Index: 0}))
	assert.NilError(t, s.Close())

	// Migrations are idempotent and data survives.
	s, err = storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	assert.DeepEqual(t, childIDs(t, s, storage.BarID), []string{"b", "c", "d"})
	assert.DeepEqual(t, childIDs(t, s, "f"), []string{"a", "x"})

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(root.Children), 2)
}

func TestSQLiteStore_NullableFields(t *testing.T) {
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	defer s.Close()
	ctx := context.Background()

	empty := ""
	_, err = s.Insert(ctx, storage.BarID, []model.Node{
		{ID: "folder", Title: "Folder", DateAdded: 5},
		{ID: "blank", Title: "Blank", URL: &empty, DateAdded: 6},
	})
	assert.NilError(t, err)

	root, err := s.GetTree(ctx)
	assert.NilError(t, err)

	f, ok := tree.FindByID(root, "folder")
	assert.Assert(t, ok)
	assert.Assert(t, f.IsFolder())
	assert.Assert(t, f.Children != nil)
	assert.Equal(t, f.DateAdded, int64(5))

	// An empty URL is still a link.
	b, ok := tree.FindByID(root, "blank")
	assert.Assert(t, ok)
	assert.Assert(t, b.IsLink())
	assert.Assert(t, b.Children == nil)
}

func TestSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("expected path %q, got %q", dbPath, s.Path())
	}
}
