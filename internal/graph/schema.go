package graph

// --- Enums ---

// SymbolKind classifies named units inside a source file.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindClass    SymbolKind = "class"
	SymbolKindMethod   SymbolKind = "method"
	SymbolKindModule   SymbolKind = "module"
)

// DependencyKind classifies directed edges between files.
type DependencyKind string

const (
	DepKindImport   DependencyKind = "import"
	DepKindCall     DependencyKind = "call"
	DepKindInherits DependencyKind = "inherits"
)

// Language identifies a programming language for extraction.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// SupportedLanguages are the languages the bundled extractor handles.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// --- Models ---

// Symbol is a named unit inside a file. Symbols are owned by their parent
// FileNode and are never referenced by identity outside it.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Signature string     `json:"signature,omitempty"`
	Summary   string     `json:"summary,omitempty"` // present only after enrichment
}

// Dependency is a directed edge declared by a FileNode about itself.
// TargetRef is either a file path or a bare symbol name; symbol-level
// edges are soft and resolved lazily against the rest of the graph.
type Dependency struct {
	SourceFile string         `json:"sourceFile"`
	TargetRef  string         `json:"targetRef"`
	Kind       DependencyKind `json:"kind"`
}

// FileNode captures one source file's structural and semantic facts at a
// point in time. Path is the sole identity key; exactly one live FileNode
// exists per path. Nodes are replaced whole on re-analysis, never edited
// in place, and Version strictly increases across replacements.
type FileNode struct {
	Path         string       `json:"path"`
	Language     Language     `json:"language,omitempty"`
	Symbols      []Symbol     `json:"symbols,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	ContentHash  string       `json:"contentHash"`
	Version      int64        `json:"version"`
}

// DefinesSymbol reports whether the node declares a symbol with the given name.
func (n *FileNode) DefinesSymbol(name string) bool {
	for _, s := range n.Symbols {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Graph is a consistent point-in-time view of the knowledge graph.
// Forward maps each file path to the sorted refs it depends on (every
// declared dependency, resolved or not). Reverse maps each ref to the
// sorted file paths that declare a resolved edge targeting it; unresolved
// edges participate in no traversal and therefore never appear in Reverse.
type Graph struct {
	Nodes   map[string]FileNode `json:"nodes"`
	Forward map[string][]string `json:"forward_index"`
	Reverse map[string][]string `json:"reverse_index"`
}

// Stats summarizes a graph snapshot.
type Stats struct {
	FileCount       int `json:"fileCount"`
	SymbolCount     int `json:"symbolCount"`
	EdgeCount       int `json:"edgeCount"`
	ResolvedEdges   int `json:"resolvedEdges"`
	UnresolvedEdges int `json:"unresolvedEdges"`
}

// ComputeStats counts nodes, symbols, and edges in the snapshot. An edge is
// resolved when its target is a node path or a symbol some node defines.
func (g *Graph) ComputeStats() Stats {
	defs := make(map[string]bool)
	for _, n := range g.Nodes {
		for _, s := range n.Symbols {
			defs[s.Name] = true
		}
	}

	st := Stats{FileCount: len(g.Nodes)}
	for _, n := range g.Nodes {
		st.SymbolCount += len(n.Symbols)
		st.EdgeCount += len(n.Dependencies)
		for _, d := range n.Dependencies {
			if _, ok := g.Nodes[d.TargetRef]; ok || defs[d.TargetRef] {
				st.ResolvedEdges++
			} else {
				st.UnresolvedEdges++
			}
		}
	}
	return st
}

// ImpactEntry is one file in an impact set. ViaSymbol names the symbol the
// dependency targeted when the queried ref resolved by symbol name; it is
// empty for file-level refs and for hops past the first layer.
type ImpactEntry struct {
	Path      string `json:"path"`
	Depth     int    `json:"depth"`
	ViaSymbol string `json:"viaSymbol,omitempty"`
}
