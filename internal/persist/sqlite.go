// Package persist is the durable layer under the in-memory graph store.
// Each file node is one row holding the full node as a JSON document, plus
// one aggregate row per project root with the serialized indices. Loss of a
// single row is survivable; only total inability to use the database is
// fatal.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	path    TEXT PRIMARY KEY,
	key     TEXT NOT NULL UNIQUE,
	version INTEGER NOT NULL,
	doc     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS indices (
	root TEXT PRIMARY KEY,
	doc  TEXT NOT NULL
);
`

// SQLite stores file nodes and graph indices in a single database file.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func Open(dbPath string, log *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// pathKey is a filesystem- and key-safe encoding of a repo-relative path,
// matching the flat per-file layout of the JSON export.
func pathKey(path string) string {
	return strings.ReplaceAll(path, "/", "__")
}

// SaveNode writes one node, replacing any previous row for the same path.
func (s *SQLite) SaveNode(ctx context.Context, node graph.FileNode) error {
	doc, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal node %s: %w", node.Path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (path, key, version, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET key = excluded.key, version = excluded.version, doc = excluded.doc`,
		node.Path, pathKey(node.Path), node.Version, string(doc))
	if err != nil {
		return fmt.Errorf("save node %s: %w", node.Path, err)
	}
	return nil
}

// DeleteNode removes the row for path. Deleting an absent path is a no-op.
func (s *SQLite) DeleteNode(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete node %s: %w", path, err)
	}
	return nil
}

// LoadNodes returns every stored node. A row whose document does not decode
// into a valid node is discarded with a warning; the rest still load.
func (s *SQLite) LoadNodes(ctx context.Context) ([]graph.FileNode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, doc FROM nodes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []graph.FileNode
	for rows.Next() {
		var path, doc string
		if err := rows.Scan(&path, &doc); err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}
		var node graph.FileNode
		if err := json.Unmarshal([]byte(doc), &node); err != nil {
			s.log.Warn("discarding unreadable node row", "path", path, "error", err)
			continue
		}
		if node.Path != path || node.Version < 1 {
			s.log.Warn("discarding inconsistent node row", "path", path)
			continue
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	return nodes, nil
}

// KnownPaths returns the stored node paths, sorted.
func (s *SQLite) KnownPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM nodes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("known paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path row: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// indicesDoc is the aggregate row payload: the graph's adjacency without
// the node bodies, which live in their own rows.
type indicesDoc struct {
	Forward map[string][]string `json:"forward_index"`
	Reverse map[string][]string `json:"reverse_index"`
}

// SaveIndices writes the forward and reverse indices of a snapshot as the
// aggregate row for root.
func (s *SQLite) SaveIndices(ctx context.Context, root string, g *graph.Graph) error {
	doc, err := json.Marshal(indicesDoc{Forward: g.Forward, Reverse: g.Reverse})
	if err != nil {
		return fmt.Errorf("marshal indices: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO indices (root, doc) VALUES (?, ?)
		 ON CONFLICT(root) DO UPDATE SET doc = excluded.doc`,
		root, string(doc))
	if err != nil {
		return fmt.Errorf("save indices for %s: %w", root, err)
	}
	return nil
}

// LoadIndices returns the stored indices for root, or empty maps when no
// aggregate row exists or the row is unreadable.
func (s *SQLite) LoadIndices(ctx context.Context, root string) (forward, reverse map[string][]string, err error) {
	var doc string
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM indices WHERE root = ?`, root)
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return map[string][]string{}, map[string][]string{}, nil
		}
		return nil, nil, fmt.Errorf("load indices for %s: %w", root, err)
	}
	var d indicesDoc
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		s.log.Warn("discarding unreadable indices row", "root", root, "error", err)
		return map[string][]string{}, map[string][]string{}, nil
	}
	if d.Forward == nil {
		d.Forward = map[string][]string{}
	}
	if d.Reverse == nil {
		d.Reverse = map[string][]string{}
	}
	return d.Forward, d.Reverse, nil
}
