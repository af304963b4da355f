package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// atlasMCPEntry is the MCP server configuration for the codeatlas binary.
var atlasMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "codeatlas",
  "args": ["serve-mcp"]
}`)

// runInit creates or merges the codeatlas entry into the project's
// .mcp.json. Other entries in an existing file are preserved untouched.
func runInit(projectRoot string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	mcpPath := filepath.Join(abs, ".mcp.json")

	var cfg mcpConfig
	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["codeatlas"]; exists && !force {
		fmt.Println("  skipped .mcp.json codeatlas entry (exists, use --force to overwrite)")
		return nil
	}

	cfg.MCPServers["codeatlas"] = atlasMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	fmt.Printf("  wrote %s\n", mcpPath)
	return nil
}
