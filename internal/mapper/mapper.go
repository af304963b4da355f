// Package mapper orchestrates a full mapping run: crawl the repository,
// extract and enrich each file concurrently, and feed the results through
// the graph store with durable checkpoints. Per-file problems surface as
// warnings on the run report; only infrastructure failures abort a run.
package mapper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codeatlas/internal/crawl"
	"github.com/dusk-indust/codeatlas/internal/enrich"
	"github.com/dusk-indust/codeatlas/internal/extract"
	"github.com/dusk-indust/codeatlas/internal/graph"
	"github.com/dusk-indust/codeatlas/internal/persist"
)

const defaultConcurrency = 4

// Report summarizes one mapping run.
type Report struct {
	RunID    string        `json:"runId"`
	Root     string        `json:"root"`
	Duration time.Duration `json:"duration"`
	Mapped   int           `json:"mapped"`
	Removed  int           `json:"removed"`
	Warnings []string      `json:"warnings,omitempty"`
	Stats    graph.Stats   `json:"stats"`
}

// Mapper wires the crawler, extractor, enricher, graph store, and durable
// store into one pipeline. Enricher and DB may be nil: the run is then
// structural-only, or in-memory only.
type Mapper struct {
	store       *graph.Store
	crawler     *crawl.Crawler
	extractor   extract.Extractor
	enricher    enrich.Enricher
	db          *persist.SQLite
	concurrency int
	log         *slog.Logger
}

func New(store *graph.Store, crawler *crawl.Crawler, extractor extract.Extractor, enricher enrich.Enricher, db *persist.SQLite, concurrency int, log *slog.Logger) *Mapper {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Mapper{
		store:       store,
		crawler:     crawler,
		extractor:   extractor,
		enricher:    enricher,
		db:          db,
		concurrency: concurrency,
		log:         log,
	}
}

// Restore loads previously persisted nodes into the graph store. Corrupt
// rows were already discarded by the durable layer.
func (m *Mapper) Restore(ctx context.Context) (int, error) {
	if m.db == nil {
		return 0, nil
	}
	nodes, err := m.db.LoadNodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	for _, n := range nodes {
		m.store.Upsert(n)
	}
	return len(nodes), nil
}

// Run maps the repository at root. Files that disappeared since the last
// run are removed from the graph and durable storage; current files are
// extracted and enriched in parallel, then upserted with a checkpoint after
// each landing.
func (m *Mapper) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString(), Root: root}
	log := m.log.With("run_id", report.RunID)
	log.Info("mapping run started", "root", root)

	files, err := m.crawler.Crawl(root)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	for _, path := range crawl.Diff(m.knownPaths(ctx), files) {
		m.store.Remove(path)
		if m.db != nil {
			if err := m.db.DeleteNode(ctx, path); err != nil {
				return nil, err
			}
		}
		report.Removed++
		log.Info("removed vanished file", "path", path)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	normalizer := extract.NewNormalizer(root, paths)
	builder := graph.NewBuilder(m.store)

	var mu sync.Mutex // serializes upsert+checkpoint and warning collection
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Warn(msg)
		mu.Lock()
		report.Warnings = append(report.Warnings, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, f := range files {
		g.Go(func() error {
			source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
			if err != nil {
				warn("%s: unreadable, skipped: %v", f.Path, err)
				return nil
			}

			facts, err := m.extractor.Extract(gctx, f.Path, source)
			if err != nil {
				warn("%s: extraction failed, skipped: %v", f.Path, err)
				return nil
			}
			facts.Dependencies = normalizer.NormalizeAll(facts.Dependencies, facts.Language)

			var enrichment *graph.Enrichment
			if m.enricher != nil {
				enrichment, err = m.enricher.Enrich(gctx, f.Path, source, facts)
				if err != nil {
					warn("%s: enrichment unavailable: %v", f.Path, err)
					enrichment = nil
				}
			}

			mu.Lock()
			defer mu.Unlock()
			node, buildWarnings := builder.Build(f.Path, source, facts, enrichment)
			report.Warnings = append(report.Warnings, buildWarnings...)
			if !m.store.Upsert(node) {
				return nil // stale version, a newer mapping already landed
			}
			report.Mapped++
			if m.db != nil {
				if err := m.db.SaveNode(gctx, node); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("mapping run %s: %w", report.RunID, err)
	}

	snapshot := m.store.Snapshot()
	if m.db != nil {
		if err := m.db.SaveIndices(ctx, root, snapshot); err != nil {
			return nil, err
		}
	}

	report.Stats = snapshot.ComputeStats()
	report.Duration = time.Since(start)
	log.Info("mapping run complete",
		"mapped", report.Mapped,
		"removed", report.Removed,
		"warnings", len(report.Warnings),
		"duration", report.Duration)
	return report, nil
}

// knownPaths prefers the durable store's path list so deletions survive
// process restarts; without a database the in-memory state is the baseline.
func (m *Mapper) knownPaths(ctx context.Context) []string {
	if m.db != nil {
		if paths, err := m.db.KnownPaths(ctx); err == nil {
			return paths
		}
	}
	return m.store.Paths()
}
