package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// MemoryStore keeps the whole tree in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	root model.Node
	now  func() time.Time
}

// NewMemoryStore creates a MemoryStore holding a copy of root.
// A nil root starts with the permanent folders only.
func NewMemoryStore(root *model.Node) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	if root == nil {
		s.root = DefaultTree(s.now())
	} else {
		s.root = root.Clone()
	}
	s.root.ParentID = ""
	normalize(&s.root)
	return s
}

// Snapshot returns a copy of the current tree.
func (s *MemoryStore) Snapshot() model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.Clone()
}

// GetTree implements Store.
func (s *MemoryStore) GetTree(ctx context.Context) (*model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := s.Snapshot()
	return &root, nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, changes model.Changes) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := tree.FindByID(&s.root, id)
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNodeNotFound)
	}
	if isPermanent(n.ID, n.ParentID) {
		return fmt.Errorf("update %s: %w", id, ErrPermanentNode)
	}
	n.Title = changes.Title
	return nil
}

// RemoveSubtree implements Store.
func (s *MemoryStore) RemoveSubtree(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := tree.FindByID(&s.root, id)
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}
	if isPermanent(n.ID, n.ParentID) {
		return fmt.Errorf("remove %s: %w", id, ErrPermanentNode)
	}

	parent, ok := tree.FindByID(&s.root, n.ParentID)
	if !ok {
		return fmt.Errorf("remove %s: parent %s: %w", id, n.ParentID, ErrNodeNotFound)
	}
	pos := childPosition(parent, id)
	parent.Children = slices.Delete(parent.Children, pos, pos+1)
	reindex(parent)
	return nil
}

// Move implements Store.
func (s *MemoryStore) Move(ctx context.Context, id string, dest model.Destination) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := tree.FindByID(&s.root, id)
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	if isPermanent(n.ID, n.ParentID) {
		return fmt.Errorf("move %s: %w", id, ErrPermanentNode)
	}
	newParent, ok := tree.FindByID(&s.root, dest.ParentID)
	if !ok {
		return fmt.Errorf("move %s: parent %s: %w", id, dest.ParentID, ErrNodeNotFound)
	}
	if !newParent.IsFolder() {
		return fmt.Errorf("move %s into link %s: %w", id, dest.ParentID, ErrInvalidMove)
	}
	if _, inside := tree.FindByID(n, dest.ParentID); inside {
		return fmt.Errorf("move %s into its own subtree: %w", id, ErrInvalidMove)
	}

	oldParentID := n.ParentID
	oldParent, ok := tree.FindByID(&s.root, oldParentID)
	if !ok {
		return fmt.Errorf("move %s: parent %s: %w", id, oldParentID, ErrNodeNotFound)
	}
	oldIndex := childPosition(oldParent, id)
	index, changed := resolveIndex(oldParentID == dest.ParentID, oldIndex, dest.Index, len(newParent.Children))
	if !changed {
		return nil
	}

	moved := n.Clone()
	oldParent.Children = slices.Delete(oldParent.Children, oldIndex, oldIndex+1)
	reindex(oldParent)

	// Positions in the tree shifted; look the destination up again.
	newParent, _ = tree.FindByID(&s.root, dest.ParentID)
	if index > len(newParent.Children) {
		index = len(newParent.Children)
	}
	newParent.Children = slices.Insert(newParent.Children, index, moved)
	reindex(newParent)
	return nil
}

// Insert implements Seeder.
func (s *MemoryStore) Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := tree.FindByID(&s.root, parentID)
	if !ok {
		return 0, fmt.Errorf("insert into %s: %w", parentID, ErrNodeNotFound)
	}
	if !parent.IsFolder() {
		return 0, fmt.Errorf("insert into link %s: %w", parentID, ErrInvalidMove)
	}

	added := 0
	now := s.now().UnixMilli()
	for _, n := range nodes {
		c := n.Clone()
		added += prepareInsert(&c, now)
		parent.Children = append(parent.Children, c)
	}
	normalize(parent)
	return added, nil
}

// prepareInsert fills in missing IDs and dates and returns the link count.
func prepareInsert(n *model.Node, now int64) int {
	if n.ID == "" {
		n.ID = model.GenerateUUID()
	}
	if n.DateAdded == 0 {
		n.DateAdded = now
	}
	if n.IsLink() {
		n.Children = nil
		return 1
	}
	links := 0
	for i := range n.Children {
		links += prepareInsert(&n.Children[i], now)
	}
	return links
}

// normalize fixes Index and ParentID for the whole subtree and gives every
// folder a non-nil children slice.
func normalize(n *model.Node) {
	if n.IsFolder() && n.Children == nil {
		n.Children = []model.Node{}
	}
	reindex(n)
	for i := range n.Children {
		normalize(&n.Children[i])
	}
}

func reindex(parent *model.Node) {
	for i := range parent.Children {
		parent.Children[i].Index = i
		parent.Children[i].ParentID = parent.ID
	}
}

func childPosition(parent *model.Node, id string) int {
	return slices.IndexFunc(parent.Children, func(c model.Node) bool {
		return c.ID == id
	})
}
