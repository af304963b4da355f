package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewAtlasMCPServer creates an MCP server with all 5 knowledge graph tools
// registered.
func NewAtlasMCPServer(svc *AtlasService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codeatlas",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "map_repo",
		Description: "Map a repository into the knowledge graph. Crawls the file tree, extracts symbols and dependencies per file, optionally enriches them with generated summaries, and checkpoints every node durably.",
	}, svc.MapRepo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "impact_of",
		Description: "Compute the impact set of changing a file or symbol: every file that transitively depends on it, ordered by dependency distance.",
	}, svc.ImpactOf)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Select the most relevant mapped files for a task description, packed greedily under a token budget. Returns whole file nodes with their symbols and summaries.",
	}, svc.RetrieveContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_file",
		Description: "Fetch the stored knowledge graph node for one repo-relative file path, including its symbols, dependencies, and summaries.",
	}, svc.GetFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return file, symbol, and edge counts for the current graph, split into resolved and unresolved edges.",
	}, svc.GraphStats)

	return server
}

// RunHTTP starts an HTTP server exposing the knowledge graph MCP tools.
func RunHTTP(ctx context.Context, svc *AtlasService, addr string) error {
	server := NewAtlasMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunStdio serves the MCP tools over stdin/stdout, the transport MCP
// clients spawn directly.
func RunStdio(ctx context.Context, svc *AtlasService) error {
	return NewAtlasMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
