package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StructuralFacts are the per-file facts produced by an extractor: the
// symbols a file declares and the raw dependency references it makes.
type StructuralFacts struct {
	Language     Language     `json:"language,omitempty"`
	Symbols      []Symbol     `json:"symbols,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Enrichment carries semantic annotations produced by the enrichment
// service. Symbol summaries attach by name match only; a name with no
// matching structural symbol is dropped, never fabricated into one.
type Enrichment struct {
	FileSummary     string          `json:"fileSummary,omitempty"`
	SymbolSummaries []SymbolSummary `json:"symbolSummaries,omitempty"`
}

// SymbolSummary pairs a symbol name with its generated summary.
type SymbolSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// VersionSource answers the live version of a path, 0 when none exists.
// *Store satisfies it.
type VersionSource interface {
	Version(path string) int64
}

// Builder converts one file's structural facts plus optional enrichment
// into a validated, immutable FileNode. Builds for different files share no
// mutable state and may run in parallel.
type Builder struct {
	versions VersionSource
}

// NewBuilder returns a Builder that assigns versions against vs.
func NewBuilder(vs VersionSource) *Builder {
	return &Builder{versions: vs}
}

// Build assembles the FileNode for path. source is the raw file content the
// facts were extracted from; its fingerprint becomes the node's
// ContentHash. enrichment may be nil — the node is then valid but carries
// no summaries. The returned warnings describe inputs that were dropped or
// corrected; they never abort the build.
func (b *Builder) Build(path string, source []byte, facts StructuralFacts, enrichment *Enrichment) (FileNode, []string) {
	var warnings []string

	symbols := make([]Symbol, 0, len(facts.Symbols))
	for _, s := range facts.Symbols {
		if s.Name == "" {
			warnings = append(warnings, fmt.Sprintf("%s: dropped symbol with empty name", path))
			continue
		}
		s.Summary = "" // summaries come only from enrichment
		symbols = append(symbols, s)
	}

	deps := make([]Dependency, 0, len(facts.Dependencies))
	for _, d := range facts.Dependencies {
		if d.TargetRef == "" {
			warnings = append(warnings, fmt.Sprintf("%s: dropped dependency with empty target", path))
			continue
		}
		// A node only declares dependencies about itself.
		d.SourceFile = path
		deps = append(deps, d)
	}

	node := FileNode{
		Path:         path,
		Language:     facts.Language,
		Symbols:      symbols,
		Dependencies: deps,
		ContentHash:  HashContent(source),
		Version:      b.versions.Version(path) + 1,
	}

	if enrichment != nil {
		warnings = append(warnings, applyEnrichment(&node, enrichment)...)
	}
	return node, warnings
}

// applyEnrichment attaches summaries to the node and its symbols.
// Enrichment is strictly additive: it can annotate existing symbols but
// never introduce new ones.
func applyEnrichment(node *FileNode, enr *Enrichment) []string {
	var warnings []string
	node.Summary = enr.FileSummary

	for _, ss := range enr.SymbolSummaries {
		matched := false
		for i := range node.Symbols {
			if node.Symbols[i].Name == ss.Name {
				node.Symbols[i].Summary = ss.Summary
				matched = true
			}
		}
		if !matched {
			warnings = append(warnings, fmt.Sprintf(
				"%s: enrichment names unknown symbol %q; dropped", node.Path, ss.Name))
		}
	}
	return warnings
}

// HashContent fingerprints raw file bytes for change detection.
func HashContent(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
