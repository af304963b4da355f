// Package extract produces per-file structural facts: the symbols a source
// file declares and the raw dependency references it makes. It is the
// parsing collaborator of the knowledge graph; the graph core never touches
// source text itself.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// Extractor turns one file's bytes into structural facts. A failed
// extraction yields empty facts and an error the caller records as a
// warning; it never aborts a mapping run.
type Extractor interface {
	Extract(ctx context.Context, path string, source []byte) (graph.StructuralFacts, error)
	Languages() []graph.Language
	Close() error
}

// langExtractor walks a parsed tree and collects symbols and raw
// dependency refs for one grammar.
type langExtractor interface {
	Extract(root *tree_sitter.Node, source []byte, filePath string) ([]graph.Symbol, []graph.Dependency)
}

// extByLanguage maps file extensions to languages.
var extByLanguage = map[string]graph.Language{
	".go":  graph.LangGo,
	".py":  graph.LangPython,
	".ts":  graph.LangTypeScript,
	".tsx": graph.LangTypeScript,
	".rs":  graph.LangRust,
}

// DetectLanguage returns the language for a file path, or "" when the
// extension is not handled.
func DetectLanguage(path string) graph.Language {
	return extByLanguage[filepath.Ext(path)]
}

// TreeSitter implements Extractor with tree-sitter grammars for Go,
// Python, TypeScript, and Rust. A fresh parser is created per Extract
// call, so concurrent calls for different files are safe.
type TreeSitter struct {
	languages  map[graph.Language]*tree_sitter.Language
	extractors map[graph.Language]langExtractor
}

// NewTreeSitter returns a TreeSitter with all supported grammars registered.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{
		languages: map[graph.Language]*tree_sitter.Language{
			graph.LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			graph.LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			graph.LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			graph.LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		extractors: map[graph.Language]langExtractor{
			graph.LangGo:         &goExtractor{},
			graph.LangPython:     &pyExtractor{},
			graph.LangTypeScript: &tsExtractor{},
			graph.LangRust:       &rsExtractor{},
		},
	}
}

// Extract parses path's source and collects its symbols and dependency
// refs. Dependency refs are deduplicated; import specifiers are left raw
// for the caller to normalize against the repository layout.
func (t *TreeSitter) Extract(_ context.Context, path string, source []byte) (graph.StructuralFacts, error) {
	lang := DetectLanguage(path)
	tsLang, ok := t.languages[lang]
	if !ok {
		return graph.StructuralFacts{}, fmt.Errorf("unsupported language for %s", path)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tsLang); err != nil {
		return graph.StructuralFacts{}, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return graph.StructuralFacts{}, fmt.Errorf("parse returned no tree for %s", path)
	}
	defer tree.Close()

	symbols, deps := t.extractors[lang].Extract(tree.RootNode(), source, path)

	return graph.StructuralFacts{
		Language:     lang,
		Symbols:      symbols,
		Dependencies: dedupeDeps(deps),
	}, nil
}

// Languages returns the languages this extractor handles.
func (t *TreeSitter) Languages() []graph.Language {
	out := make([]graph.Language, 0, len(t.languages))
	for l := range t.languages {
		out = append(out, l)
	}
	return out
}

// Close is a no-op because parsers are created per Extract call.
func (t *TreeSitter) Close() error { return nil }

// --- shared extraction helpers ---

// signatureOf returns the declaration header of node: its text up to the
// body field, collapsed onto one line.
func signatureOf(node *tree_sitter.Node, source []byte) string {
	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	start := node.StartByte()
	if start >= end || int(end) > len(source) {
		return ""
	}
	return strings.Join(strings.Fields(string(source[start:end])), " ")
}

// calleeName reduces a call target expression to its trailing identifier,
// the soft symbol ref the graph resolves lazily. "db.save" and
// "store::save" both yield "save".
func calleeName(text string) string {
	for _, sep := range []string{"::", "."} {
		if i := strings.LastIndex(text, sep); i != -1 {
			text = text[i+len(sep):]
		}
	}
	return text
}

// dedupeDeps drops repeated (targetRef, kind) pairs while keeping first-seen
// order.
func dedupeDeps(deps []graph.Dependency) []graph.Dependency {
	seen := make(map[graph.Dependency]struct{}, len(deps))
	out := deps[:0]
	for _, d := range deps {
		key := graph.Dependency{TargetRef: d.TargetRef, Kind: d.Kind}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
