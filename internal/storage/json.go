package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nikbrunner/bmgrid/internal/model"
)

// JSONStore implements Store on top of a JSON file. The file is the
// authority: every call re-reads it, so changes written by other processes
// show up on the next fetch.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a JSONStore with the given file path.
// A missing file is created with the permanent folders.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		root := DefaultTree(time.Now())
		if err := s.save(&root); err != nil {
			return nil, err
		}
		slog.Info("created bookmark store", slog.String("path", path))
	}
	return s, nil
}

// Path returns the storage file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Close implements Backend.
func (s *JSONStore) Close() error {
	return nil
}

// GetTree implements Store.
func (s *JSONStore) GetTree(ctx context.Context) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, err := s.load()
	if err != nil {
		return nil, err
	}
	return mem.GetTree(ctx)
}

// Update implements Store.
func (s *JSONStore) Update(ctx context.Context, id string, changes model.Changes) error {
	return s.mutate(func(mem *MemoryStore) error {
		return mem.Update(ctx, id, changes)
	})
}

// RemoveSubtree implements Store.
func (s *JSONStore) RemoveSubtree(ctx context.Context, id string) error {
	return s.mutate(func(mem *MemoryStore) error {
		return mem.RemoveSubtree(ctx, id)
	})
}

// Move implements Store.
func (s *JSONStore) Move(ctx context.Context, id string, dest model.Destination) error {
	return s.mutate(func(mem *MemoryStore) error {
		return mem.Move(ctx, id, dest)
	})
}

// Insert implements Seeder.
func (s *JSONStore) Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error) {
	var added int
	err := s.mutate(func(mem *MemoryStore) error {
		var err error
		added, err = mem.Insert(ctx, parentID, nodes)
		return err
	})
	return added, err
}

// mutate loads the file, applies fn and writes the result back.
func (s *JSONStore) mutate(fn func(*MemoryStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(mem); err != nil {
		return err
	}
	root := mem.Snapshot()
	return s.save(&root)
}

// load reads the tree from the JSON file.
// Returns the permanent folders only if the file doesn't exist.
func (s *JSONStore) load() (*MemoryStore, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewMemoryStore(nil), nil
		}
		return nil, err
	}

	var root model.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return NewMemoryStore(&root), nil
}

// save writes the tree to the JSON file through a temporary file so readers
// never observe a partial write. Creates the directory if it doesn't exist.
func (s *JSONStore) save(root *model.Node) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
