// Package export renders a graph snapshot into external formats: a JSON
// document, a Mermaid dependency diagram, and (with cgo) a KuzuDB mirror for
// ad-hoc Cypher exploration.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Root       string       `json:"root"`
	ExportedAt string       `json:"exportedAt"`
	Stats      graph.Stats  `json:"stats"`
	Graph      *graph.Graph `json:"graph"`
}

// WriteJSON renders a snapshot as an indented JSON document on w.
func WriteJSON(w io.Writer, root string, g *graph.Graph) error {
	export := GraphExport{
		Root:       root,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      g.ComputeStats(),
		Graph:      g,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode graph export: %w", err)
	}
	return nil
}
