package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

func TestJSONStore_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	// Nested directory that doesn't exist
	path := filepath.Join(tmpDir, "nested", "dir", "bookmarks.json")

	s, err := storage.NewJSONStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if s.Path() != path {
		t.Errorf("expected path %q, got %q", path, s.Path())
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("store file was not created")
	}
}

func TestJSONStore_SharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	ctx := context.Background()

	first, err := storage.NewJSONStore(path)
	assert.NilError(t, err)
	second, err := storage.NewJSONStore(path)
	assert.NilError(t, err)

	_, err = first.Insert(ctx, storage.BarID, []model.Node{link("a", "A")})
	assert.NilError(t, err)

	// A change made through one handle is visible through the other.
	root, err := second.GetTree(ctx)
	assert.NilError(t, err)
	n, ok := tree.FindByID(root, "a")
	assert.Assert(t, ok)
	assert.Equal(t, n.ParentID, storage.BarID)

	assert.NilError(t, second.Update(ctx, "a", model.Changes{Title: "Renamed"}))
	root, err = first.GetTree(ctx)
	assert.NilError(t, err)
	n, _ = tree.FindByID(root, "a")
	assert.Equal(t, n.Title, "Renamed")
}

func TestJSONStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"id":"0","children":[{"id":"1","url":"https://x","children":[{"id":"2"}]}]}`), 0644))

	s, err := storage.NewJSONStore(path)
	assert.NilError(t, err)

	_, err = s.GetTree(context.Background())
	assert.ErrorIs(t, err, model.ErrLinkWithChildren)
}

func TestJSONStore_FailedMutationLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	s, err := storage.NewJSONStore(path)
	assert.NilError(t, err)
	seed(t, s)

	before, err := os.ReadFile(path)
	assert.NilError(t, err)

	err = s.RemoveSubtree(context.Background(), storage.BarID)
	assert.ErrorIs(t, err, storage.ErrPermanentNode)

	after, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(after), string(before))
}

func TestMemoryStore_CopiesInput(t *testing.T) {
	root := storage.DefaultTree(time.Unix(0, 0))
	root.Children[0].Children = []model.Node{link("a", "A")}

	s := storage.NewMemoryStore(&root)
	root.Children[0].Children[0].Title = "changed"

	got, err := s.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, got.Children[0].Children[0].Title, "A")

	// Handed-out trees are copies too.
	got.Children[0].Children[0].Title = "changed"
	again, err := s.GetTree(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, again.Children[0].Children[0].Title, "A")
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := storage.NewMemoryStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetTree(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Move(ctx, "a", model.Destination{ParentID: storage.BarID}), context.Canceled)
}

func TestOpen_PicksBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	b, err := storage.Open(filepath.Join(dir, "bookmarks.db"))
	assert.NilError(t, err)
	defer b.Close()
	if _, ok := b.(*storage.SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore for .db, got %T", b)
	}

	j, err := storage.Open(filepath.Join(dir, "bookmarks.json"))
	assert.NilError(t, err)
	defer j.Close()
	if _, ok := j.(*storage.JSONStore); !ok {
		t.Errorf("expected *JSONStore for .json, got %T", j)
	}
}
