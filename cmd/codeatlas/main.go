package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codeatlas/internal/config"
	"github.com/dusk-indust/codeatlas/internal/crawl"
	"github.com/dusk-indust/codeatlas/internal/enrich"
	"github.com/dusk-indust/codeatlas/internal/export"
	"github.com/dusk-indust/codeatlas/internal/extract"
	"github.com/dusk-indust/codeatlas/internal/graph"
	"github.com/dusk-indust/codeatlas/internal/mapper"
	"github.com/dusk-indust/codeatlas/internal/mcptools"
	"github.com/dusk-indust/codeatlas/internal/persist"
)

const defaultDatabase = ".codeatlas/atlas.db"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app bundles the assembled components behind every subcommand.
type app struct {
	cfg    *config.ProjectConfig
	log    *slog.Logger
	store  *graph.Store
	db     *persist.SQLite
	mapper *mapper.Mapper
	root   string
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// newApp loads config from root, opens the durable store, and restores
// previously mapped state into a fresh graph store.
func newApp(root, logLevel string) (*app, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	log := newLogger(logLevel)

	dbPath := cfg.Database
	if dbPath == "" {
		dbPath = defaultDatabase
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(absRoot, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := persist.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	store := graph.NewStore(log)

	var languages []graph.Language
	for _, l := range cfg.Languages {
		languages = append(languages, graph.Language(strings.ToLower(l)))
	}

	var enricher enrich.Enricher
	if cfg.Enrichment.Endpoint != "" {
		enricher = enrich.NewOpenAI(enrich.Options{
			Endpoint: cfg.Enrichment.Endpoint,
			APIKey:   cfg.Enrichment.APIKey,
			Model:    cfg.Enrichment.Model,
			Timeout:  time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second,
			Retries:  cfg.Enrichment.Retries,
		}, log)
	}

	m := mapper.New(
		store,
		crawl.New(languages, cfg.ExcludeDirs, log),
		extract.NewTreeSitter(),
		enricher,
		db,
		cfg.Concurrency,
		log,
	)

	a := &app{cfg: cfg, log: log, store: store, db: db, mapper: m, root: absRoot}
	if n, err := m.Restore(context.Background()); err != nil {
		a.close()
		return nil, err
	} else if n > 0 {
		log.Debug("restored graph from database", "nodes", n)
	}
	return a, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	var (
		root     string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:           "codeatlas",
		Short:         "Codebase knowledge graph engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "Repository root")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Map the repository into the knowledge graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.mapper.Run(cmd.Context(), a.root)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	var (
		impactRef   string
		impactDepth int
	)
	impactCmd := &cobra.Command{
		Use:   "impact",
		Short: "List the files transitively affected by changing a file or symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			entries := a.store.Snapshot().ImpactOf(impactRef, impactDepth)
			return printJSON(entries)
		},
	}
	impactCmd.Flags().StringVar(&impactRef, "ref", "", "File path or symbol name")
	impactCmd.Flags().IntVar(&impactDepth, "max-depth", 0, "Maximum transitive depth (0 = unlimited)")
	_ = impactCmd.MarkFlagRequired("ref")

	var (
		ctxQuery  string
		ctxBudget int
	)
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Select the most relevant files for a task within a token budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			files := a.store.Snapshot().Select(ctxQuery, ctxBudget)
			return printJSON(files)
		},
	}
	contextCmd.Flags().StringVar(&ctxQuery, "query", "", "Task description")
	contextCmd.Flags().IntVar(&ctxBudget, "budget", 4000, "Token budget")
	_ = contextCmd.MarkFlagRequired("query")

	infoCmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show the stored node for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			node := a.store.Get(args[0])
			if node == nil {
				return fmt.Errorf("no node for %s", args[0])
			}
			return printJSON(node)
		},
	}

	var (
		exportFormat string
		exportOut    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the graph as JSON, a Mermaid diagram, or a KuzuDB database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			g := a.store.Snapshot()
			switch exportFormat {
			case "json":
				w := os.Stdout
				if exportOut != "" {
					f, err := os.Create(exportOut)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return export.WriteJSON(w, a.root, g)
			case "mermaid":
				diagram := export.GenerateMermaid(g)
				if exportOut != "" {
					return os.WriteFile(exportOut, []byte(diagram), 0o644)
				}
				fmt.Print(diagram)
				return nil
			case "kuzu":
				if exportOut == "" {
					exportOut = filepath.Join(a.root, ".codeatlas", "kuzu")
				}
				return exportKuzu(g, exportOut)
			default:
				return fmt.Errorf("unknown format %q (json, mermaid, kuzu)", exportFormat)
			}
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json, mermaid, kuzu")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")

	var serveHTTP string
	serveCmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the knowledge graph as MCP tools over stdio or HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			svc := mcptools.NewAtlasService(a.store, a.mapper)
			if serveHTTP != "" {
				a.log.Info("serving MCP over HTTP", "addr", serveHTTP)
				return mcptools.RunHTTP(cmd.Context(), svc, serveHTTP)
			}
			return mcptools.RunStdio(cmd.Context(), svc)
		},
	}
	serveCmd.Flags().StringVar(&serveHTTP, "http", "", "Serve over HTTP on this address instead of stdio")

	var initForce bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Register the codeatlas MCP server in the project's .mcp.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(root, initForce)
		},
	}
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing codeatlas entry")

	rootCmd.AddCommand(mapCmd, impactCmd, contextCmd, infoCmd, exportCmd, serveCmd, initCmd)
	return rootCmd
}
