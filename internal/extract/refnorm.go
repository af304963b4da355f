package extract

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// Normalizer rewrites raw import specifiers into repo-relative file paths
// matching FileNode paths, so file-level edges resolve by exact path. A
// specifier that cannot be mapped (external package, stdlib, file not yet
// known) is left untouched: the graph keeps it as an unresolved edge rather
// than losing it.
type Normalizer struct {
	fileSet   map[string]bool
	dirIndex  map[string][]string
	goModPath string
}

// NewNormalizer builds a Normalizer from the repository root and the set of
// known repo-relative file paths. The root is scanned for a go.mod so Go
// module-internal imports can be mapped.
func NewNormalizer(repoRoot string, knownFiles []string) *Normalizer {
	n := &Normalizer{
		fileSet:  make(map[string]bool, len(knownFiles)),
		dirIndex: make(map[string][]string),
	}
	for _, f := range knownFiles {
		n.fileSet[f] = true
		dir := filepath.Dir(f)
		n.dirIndex[dir] = append(n.dirIndex[dir], f)
	}
	n.goModPath = readGoModulePath(repoRoot)
	return n
}

// NormalizeAll rewrites the import dependencies in deps in place and
// returns the slice. Non-import edges pass through unchanged.
func (n *Normalizer) NormalizeAll(deps []graph.Dependency, lang graph.Language) []graph.Dependency {
	for i, d := range deps {
		if d.Kind != graph.DepKindImport {
			continue
		}
		if resolved, ok := n.normalize(d.TargetRef, d.SourceFile, lang); ok {
			deps[i].TargetRef = resolved
		}
	}
	return deps
}

func (n *Normalizer) normalize(ref, sourceFile string, lang graph.Language) (string, bool) {
	switch lang {
	case graph.LangGo:
		return n.normalizeGo(ref)
	case graph.LangPython:
		return n.normalizePython(ref, sourceFile)
	case graph.LangTypeScript:
		return n.normalizeTS(ref, sourceFile)
	case graph.LangRust:
		return n.normalizeRust(ref, sourceFile)
	default:
		return "", false
	}
}

// --- Go: module-internal import paths map to the package directory ---

func (n *Normalizer) normalizeGo(importPath string) (string, bool) {
	if n.goModPath == "" || !strings.HasPrefix(importPath, n.goModPath) {
		return "", false // stdlib or external module
	}
	relDir := strings.TrimPrefix(strings.TrimPrefix(importPath, n.goModPath), "/")

	files := append([]string(nil), n.dirIndex[relDir]...)
	sort.Strings(files)
	for _, f := range files {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return f, true
		}
	}
	return "", false
}

// --- Python: relative imports map against the source file's directory ---

func (n *Normalizer) normalizePython(ref, sourceFile string) (string, bool) {
	if !strings.HasPrefix(ref, ".") {
		return "", false // absolute import, external or unresolved package
	}

	dots := 0
	for _, c := range ref {
		if c != '.' {
			break
		}
		dots++
	}
	baseDir := filepath.Dir(sourceFile)
	for i := 1; i < dots; i++ {
		baseDir = filepath.Dir(baseDir)
	}

	modulePart := ref[dots:]
	if modulePart == "" {
		return n.probe(filepath.Join(baseDir, "__init__"), []string{".py"})
	}
	rel := strings.ReplaceAll(modulePart, ".", "/")
	return n.probe(filepath.Join(baseDir, rel), []string{".py", "/__init__.py"})
}

// --- TypeScript: relative specifiers with extension probing ---

var tsExtensions = []string{".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.tsx"}

func (n *Normalizer) normalizeTS(ref, sourceFile string) (string, bool) {
	if !strings.HasPrefix(ref, "./") && !strings.HasPrefix(ref, "../") {
		return "", false // package import
	}
	base := filepath.Clean(filepath.Join(filepath.Dir(sourceFile), ref))
	return n.probe(base, tsExtensions)
}

// --- Rust: crate/self/super module paths ---

func (n *Normalizer) normalizeRust(ref, sourceFile string) (string, bool) {
	if idx := strings.Index(ref, "::{"); idx != -1 {
		ref = ref[:idx]
	}

	switch {
	case strings.HasPrefix(ref, "crate::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(ref, "crate::"), "::", "/")
		for _, base := range []string{filepath.Join("src", rel), rel} {
			if resolved, ok := n.probe(base, []string{".rs", "/mod.rs"}); ok {
				return resolved, true
			}
		}
		return "", false
	case strings.HasPrefix(ref, "self::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(ref, "self::"), "::", "/")
		return n.probe(filepath.Join(filepath.Dir(sourceFile), rel), []string{".rs", "/mod.rs"})
	case strings.HasPrefix(ref, "super::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(ref, "super::"), "::", "/")
		return n.probe(filepath.Join(filepath.Dir(filepath.Dir(sourceFile)), rel), []string{".rs", "/mod.rs"})
	default:
		return "", false // external crate
	}
}

// probe checks basePath with each extension appended against the known file
// set. No filesystem I/O.
func (n *Normalizer) probe(basePath string, extensions []string) (string, bool) {
	if n.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; n.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// readGoModulePath returns the module directive of repoRoot's go.mod, or "".
func readGoModulePath(repoRoot string) string {
	f, err := os.Open(filepath.Join(repoRoot, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module"))
		}
	}
	return ""
}
