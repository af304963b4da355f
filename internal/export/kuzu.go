//go:build cgo

package export

import (
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// KuzuMirror materializes a snapshot into an embedded KuzuDB so the graph
// can be explored with Cypher. It requires CGO because the go-kuzu driver
// wraps KuzuDB's C library. The mirror is write-only from codeatlas's point
// of view; the in-memory store stays the source of truth.
type KuzuMirror struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// NewKuzuMirror opens (creating if needed) a file-based KuzuDB at dbPath.
func NewKuzuMirror(dbPath string) (*KuzuMirror, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuMirror{db: db, conn: conn}, nil
}

func (m *KuzuMirror) Close() error {
	if m.conn != nil {
		m.conn.Close()
	}
	if m.db != nil {
		m.db.Close()
	}
	return nil
}

// ddlStatements defines the Cypher DDL for the mirror schema. Node tables
// must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		summary STRING,
		content_hash STRING,
		version INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		name STRING,
		kind STRING,
		signature STRING,
		summary STRING,
		file_path STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM File TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM File TO File, kind STRING)`,
}

// Mirror recreates the schema and writes every node, symbol, and resolved
// file-to-file edge of the snapshot.
func (m *KuzuMirror) Mirror(g *graph.Graph) error {
	for _, stmt := range ddlStatements {
		res, err := m.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}

	seen := make(map[string]bool)
	for path, node := range g.Nodes {
		if err := m.addFile(node); err != nil {
			return err
		}
		for _, sym := range node.Symbols {
			id := symbolID(path, sym.Name)
			if seen[id] {
				continue // same name declared twice in one file
			}
			seen[id] = true
			if err := m.addSymbol(path, sym); err != nil {
				return err
			}
			if err := m.exec(
				`MATCH (a:File {path: $src}), (b:Symbol {id: $dst})
				 CREATE (a)-[:DEFINES]->(b)`,
				map[string]any{"src": path, "dst": id},
			); err != nil {
				return err
			}
		}
	}

	// File-to-file edges second, both endpoints must exist.
	for path, node := range g.Nodes {
		for _, d := range node.Dependencies {
			if _, ok := g.Nodes[d.TargetRef]; !ok {
				continue // unresolved or symbol-level ref
			}
			if err := m.exec(
				`MATCH (a:File {path: $src}), (b:File {path: $dst})
				 CREATE (a)-[:DEPENDS_ON {kind: $kind}]->(b)`,
				map[string]any{"src": path, "dst": d.TargetRef, "kind": string(d.Kind)},
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *KuzuMirror) addFile(node graph.FileNode) error {
	return m.exec(
		`CREATE (f:File {path: $path, language: $lang, summary: $summary, content_hash: $hash, version: $version})`,
		map[string]any{
			"path":    node.Path,
			"lang":    string(node.Language),
			"summary": node.Summary,
			"hash":    node.ContentHash,
			"version": node.Version,
		},
	)
}

func (m *KuzuMirror) addSymbol(filePath string, sym graph.Symbol) error {
	return m.exec(
		`CREATE (s:Symbol {id: $id, name: $name, kind: $kind, signature: $sig, summary: $summary, file_path: $fp})`,
		map[string]any{
			"id":      symbolID(filePath, sym.Name),
			"name":    sym.Name,
			"kind":    string(sym.Kind),
			"sig":     sym.Signature,
			"summary": sym.Summary,
			"fp":      filePath,
		},
	)
}

func symbolID(filePath, name string) string {
	return filePath + "::" + name
}

func (m *KuzuMirror) exec(cypher string, params map[string]any) error {
	stmt, err := m.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := m.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}
