// Package mcptools exposes the knowledge graph over the Model Context
// Protocol: mapping runs, impact queries, budgeted context retrieval, and
// node inspection, each as one MCP tool.
package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codeatlas/internal/graph"
	"github.com/dusk-indust/codeatlas/internal/mapper"
)

const defaultTokenBudget = 4000

// AtlasService holds the graph store and mapper used by MCP tool handlers.
// Query handlers read point-in-time snapshots, so a map_repo call running
// concurrently never blocks them.
type AtlasService struct {
	store  *graph.Store
	mapper *mapper.Mapper
}

// NewAtlasService creates an AtlasService. The mapper may be nil for a
// query-only server over restored state.
func NewAtlasService(store *graph.Store, m *mapper.Mapper) *AtlasService {
	return &AtlasService{store: store, mapper: m}
}

// MapRepo runs the mapping pipeline over a repository and returns the run
// report.
func (s *AtlasService) MapRepo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MapRepoInput,
) (*mcp.CallToolResult, MapRepoOutput, error) {
	if input.RepoPath == "" {
		return nil, MapRepoOutput{}, fmt.Errorf("repoPath is required")
	}
	if s.mapper == nil {
		return nil, MapRepoOutput{}, fmt.Errorf("mapping is not enabled on this server")
	}

	report, err := s.mapper.Run(ctx, input.RepoPath)
	if err != nil {
		return nil, MapRepoOutput{}, err
	}
	return nil, MapRepoOutput{Report: report}, nil
}

// ImpactOf returns the files transitively affected by a change to the given
// file or symbol. An unknown ref is an empty result, not an error.
func (s *AtlasService) ImpactOf(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ImpactOfInput,
) (*mcp.CallToolResult, ImpactOfOutput, error) {
	if input.Ref == "" {
		return nil, ImpactOfOutput{}, fmt.Errorf("ref is required")
	}

	entries := s.store.Snapshot().ImpactOf(input.Ref, input.MaxDepth)
	return nil, ImpactOfOutput{Entries: entries, Total: len(entries)}, nil
}

// RetrieveContext selects the most relevant file nodes for a task
// description within a token budget.
func (s *AtlasService) RetrieveContext(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveContextInput,
) (*mcp.CallToolResult, RetrieveContextOutput, error) {
	if input.Query == "" {
		return nil, RetrieveContextOutput{}, fmt.Errorf("query is required")
	}
	budget := input.TokenBudget
	if budget <= 0 {
		budget = defaultTokenBudget
	}

	files := s.store.Snapshot().Select(input.Query, budget)
	return nil, RetrieveContextOutput{Files: files, Total: len(files)}, nil
}

// GetFile returns the stored node for one path. A missing path reports
// found=false, not an error.
func (s *AtlasService) GetFile(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetFileInput,
) (*mcp.CallToolResult, GetFileOutput, error) {
	if input.Path == "" {
		return nil, GetFileOutput{}, fmt.Errorf("path is required")
	}

	node := s.store.Get(input.Path)
	if node == nil {
		return nil, GetFileOutput{Found: false}, nil
	}
	return nil, GetFileOutput{Found: true, Node: node}, nil
}

// GraphStats returns node and edge counts for the current graph.
func (s *AtlasService) GraphStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	return nil, GraphStatsOutput{Stats: s.store.Stats()}, nil
}
