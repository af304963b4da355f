package mcptools

import (
	"github.com/dusk-indust/codeatlas/internal/graph"
	"github.com/dusk-indust/codeatlas/internal/mapper"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// MapRepoInput is the input for the map_repo MCP tool.
type MapRepoInput struct {
	RepoPath string `json:"repoPath" jsonschema:"the absolute path to the repository to map"`
}

// MapRepoOutput is the result of the map_repo MCP tool.
type MapRepoOutput struct {
	Report *mapper.Report `json:"report"`
}

// ImpactOfInput is the input for the impact_of MCP tool.
type ImpactOfInput struct {
	Ref      string `json:"ref" jsonschema:"file path or symbol name to compute the impact set for"`
	MaxDepth int    `json:"maxDepth,omitempty" jsonschema:"maximum transitive depth; 0 or absent means unlimited"`
}

// ImpactOfOutput is the result of the impact_of MCP tool.
type ImpactOfOutput struct {
	Entries []graph.ImpactEntry `json:"entries"`
	Total   int                 `json:"total"`
}

// RetrieveContextInput is the input for the retrieve_context MCP tool.
type RetrieveContextInput struct {
	Query       string `json:"query" jsonschema:"natural language task description to select context for"`
	TokenBudget int    `json:"tokenBudget,omitempty" jsonschema:"maximum token cost of the returned files (default: 4000)"`
}

// RetrieveContextOutput is the result of the retrieve_context MCP tool.
type RetrieveContextOutput struct {
	Files []graph.FileNode `json:"files"`
	Total int              `json:"total"`
}

// GetFileInput is the input for the get_file MCP tool.
type GetFileInput struct {
	Path string `json:"path" jsonschema:"repo-relative path of the file node to fetch"`
}

// GetFileOutput is the result of the get_file MCP tool.
type GetFileOutput struct {
	Found bool            `json:"found"`
	Node  *graph.FileNode `json:"node,omitempty"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats graph.Stats `json:"stats"`
}
