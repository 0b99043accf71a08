package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

const currentSchemaVersion = 2

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLiteStore with the given database path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Pragmas go into the DSN so every pooled connection gets them.
	q := url.Values{}
	for _, pragma := range []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"busy_timeout(5000)",
	} {
		q.Add("_pragma", pragma)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
		slog.Info("sqlite schema migrated",
			slog.String("path", s.path),
			slog.Int("from", version),
			slog.Int("to", currentSchemaVersion),
		)
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			url TEXT,
			date_added INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_position ON nodes(parent_id, position);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 seeds the permanent folders.
func (s *SQLiteStore) migrateV2() error {
	ms := time.Now().UnixMilli()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	seed := []struct {
		id, parent, title string
		position          int
	}{
		{RootID, "", "", 0},
		{BarID, RootID, tree.DefaultBarTitle, 0},
		{OtherID, RootID, OtherTitle, 1},
	}
	for _, n := range seed {
		var parent any
		if n.parent != "" {
			parent = n.parent
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO nodes (id, parent_id, position, title, url, date_added)
			VALUES (?, ?, ?, ?, NULL, ?)
		`, n.id, parent, n.position, n.title, ms); err != nil {
			return err
		}
	}

	if _, err := tx.Exec("UPDATE schema_version SET version = ?", currentSchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTree implements Store.
func (s *SQLiteStore) GetTree(ctx context.Context) (*model.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, position, title, url, date_added
		FROM nodes
		ORDER BY parent_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make(map[string]model.Node)
	children := make(map[string][]string)

	for rows.Next() {
		var n model.Node
		var parentID, link sql.NullString

		if err := rows.Scan(&n.ID, &parentID, &n.Index, &n.Title, &link, &n.DateAdded); err != nil {
			return nil, err
		}
		if parentID.Valid {
			n.ParentID = parentID.String
			children[n.ParentID] = append(children[n.ParentID], n.ID)
		}
		if link.Valid {
			u := link.String
			n.URL = &u
		}
		nodes[n.ID] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, ok := nodes[RootID]; !ok {
		return nil, fmt.Errorf("root %s: %w", RootID, ErrNodeNotFound)
	}

	var build func(id string) model.Node
	build = func(id string) model.Node {
		n := nodes[id]
		if n.IsFolder() {
			n.Children = make([]model.Node, 0, len(children[id]))
			for _, childID := range children[id] {
				n.Children = append(n.Children, build(childID))
			}
		}
		return n
	}

	root := build(RootID)
	return &root, nil
}

// lookup returns the parent and position of a node inside tx.
func lookup(ctx context.Context, tx *sql.Tx, id string) (parentID string, position int, isLink bool, err error) {
	var parent, link sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT parent_id, position, url FROM nodes WHERE id = ?", id,
	).Scan(&parent, &position, &link)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, false, ErrNodeNotFound
	}
	if err != nil {
		return "", 0, false, err
	}
	return parent.String, position, link.Valid, nil
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, id string, changes model.Changes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	parentID, _, _, err := lookup(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if isPermanent(id, parentID) {
		return fmt.Errorf("update %s: %w", id, ErrPermanentNode)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE nodes SET title = ? WHERE id = ?", changes.Title, id); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveSubtree implements Store.
func (s *SQLiteStore) RemoveSubtree(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	parentID, position, _, err := lookup(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	if isPermanent(id, parentID) {
		return fmt.Errorf("remove %s: %w", id, ErrPermanentNode)
	}

	if _, err := tx.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM nodes WHERE id = ?
			UNION ALL
			SELECT n.id FROM nodes n JOIN subtree s ON n.parent_id = s.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)
	`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?",
		parentID, position,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Move implements Store.
func (s *SQLiteStore) Move(ctx context.Context, id string, dest model.Destination) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	oldParentID, oldIndex, _, err := lookup(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("move %s: %w", id, err)
	}
	if isPermanent(id, oldParentID) {
		return fmt.Errorf("move %s: %w", id, ErrPermanentNode)
	}

	_, _, parentIsLink, err := lookup(ctx, tx, dest.ParentID)
	if err != nil {
		return fmt.Errorf("move %s: parent %s: %w", id, dest.ParentID, err)
	}
	if parentIsLink {
		return fmt.Errorf("move %s into link %s: %w", id, dest.ParentID, ErrInvalidMove)
	}

	// Walk up from the destination; meeting the moved node means a cycle.
	var cycles int
	if err := tx.QueryRowContext(ctx, `
		WITH RECURSIVE ancestors(id) AS (
			SELECT ?
			UNION ALL
			SELECT n.parent_id FROM nodes n JOIN ancestors a ON n.id = a.id
			WHERE n.parent_id IS NOT NULL
		)
		SELECT COUNT(*) FROM ancestors WHERE id = ?
	`, dest.ParentID, id).Scan(&cycles); err != nil {
		return err
	}
	if cycles > 0 {
		return fmt.Errorf("move %s into its own subtree: %w", id, ErrInvalidMove)
	}

	var childCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM nodes WHERE parent_id = ?", dest.ParentID,
	).Scan(&childCount); err != nil {
		return err
	}

	index, changed := resolveIndex(oldParentID == dest.ParentID, oldIndex, dest.Index, childCount)
	if !changed {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?",
		oldParentID, oldIndex,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET position = position + 1 WHERE parent_id = ? AND position >= ? AND id <> ?",
		dest.ParentID, index, id,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET parent_id = ?, position = ? WHERE id = ?",
		dest.ParentID, index, id,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Insert implements Seeder.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStore) Insert(ctx context.Context, parentID string, nodes []model.Node) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, _, parentIsLink, err := lookup(ctx, tx, parentID)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", parentID, err)
	}
	if parentIsLink {
		return 0, fmt.Errorf("insert into link %s: %w", parentID, ErrInvalidMove)
	}

	var start int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM nodes WHERE parent_id = ?", parentID,
	).Scan(&start); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, parent_id, position, title, url, date_added)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	added := 0

	var insert func(n model.Node, parent string, position int) error
	insert = func(n model.Node, parent string, position int) error {
		if n.ID == "" {
			n.ID = model.GenerateUUID()
		}
		if n.DateAdded == 0 {
			n.DateAdded = now
		}
		if _, err := stmt.ExecContext(ctx, n.ID, parent, position, n.Title, n.URL, n.DateAdded); err != nil {
			return err
		}
		if n.IsLink() {
			added++
			return nil
		}
		for i, c := range n.Children {
			if err := insert(c, n.ID, i); err != nil {
				return err
			}
		}
		return nil
	}

	for i, n := range nodes {
		if err := insert(n, parentID, start+i); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bmgrid/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmgrid", "bookmarks.db"), nil
}
