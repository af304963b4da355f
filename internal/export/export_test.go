package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

func sampleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: map[string]graph.FileNode{
			"src/a.py": {
				Path:     "src/a.py",
				Language: graph.LangPython,
				Symbols:  []graph.Symbol{{Name: "run", Kind: graph.SymbolKindFunction}},
				Dependencies: []graph.Dependency{
					{SourceFile: "src/a.py", TargetRef: "src/b.py", Kind: graph.DepKindImport},
					{SourceFile: "src/a.py", TargetRef: "numpy", Kind: graph.DepKindImport},
				},
				Version: 1,
			},
			"src/b.py": {Path: "src/b.py", Language: graph.LangPython, Version: 1},
		},
		Forward: map[string][]string{"src/a.py": {"numpy", "src/b.py"}},
		Reverse: map[string][]string{"src/b.py": {"src/a.py"}},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "/repo", sampleGraph()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out GraphExport
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out.Root != "/repo" {
		t.Errorf("root = %q", out.Root)
	}
	if out.Stats.FileCount != 2 {
		t.Errorf("fileCount = %d, want 2", out.Stats.FileCount)
	}
	if out.Stats.UnresolvedEdges != 1 {
		t.Errorf("unresolvedEdges = %d, want 1 (numpy)", out.Stats.UnresolvedEdges)
	}
	if _, ok := out.Graph.Nodes["src/a.py"]; !ok {
		t.Error("nodes missing src/a.py")
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := GenerateMermaid(sampleGraph())

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, `"src/a.py"`) || !strings.Contains(out, `"src/b.py"`) {
		t.Errorf("missing node labels:\n%s", out)
	}
	if !strings.Contains(out, " --> ") {
		t.Errorf("missing import arrow:\n%s", out)
	}
	if strings.Contains(out, "numpy") {
		t.Errorf("unresolved ref should not appear:\n%s", out)
	}

	// Deterministic output.
	if again := GenerateMermaid(sampleGraph()); again != out {
		t.Error("mermaid output is not deterministic")
	}
}
