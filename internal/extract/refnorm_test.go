package extract

import (
	"testing"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

func importDep(src, ref string) graph.Dependency {
	return graph.Dependency{SourceFile: src, TargetRef: ref, Kind: graph.DepKindImport}
}

func TestNormalize_PythonRelative(t *testing.T) {
	n := NewNormalizer("/tmp/fake", []string{
		"pkg/service.py",
		"pkg/models.py",
		"pkg/sub/handler.py",
	})

	tests := []struct {
		name   string
		source string
		ref    string
		want   string
	}{
		{"sibling", "pkg/service.py", ".models", "pkg/models.py"},
		{"parent", "pkg/sub/handler.py", "..models", "pkg/models.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.normalizePython(tt.ref, tt.source)
			if !ok || got != tt.want {
				t.Fatalf("normalizePython(%q) = %q, %v; want %q", tt.ref, got, ok, tt.want)
			}
		})
	}
}

// External references are left to the graph as soft refs, not rewritten.
func TestNormalizeAll_KeepsExternalRefsRaw(t *testing.T) {
	n := NewNormalizer("/tmp/fake", []string{"main.py"})

	deps := n.NormalizeAll([]graph.Dependency{
		importDep("main.py", "numpy"),
		{SourceFile: "main.py", TargetRef: "helper", Kind: graph.DepKindCall},
	}, graph.LangPython)

	if len(deps) != 2 {
		t.Fatalf("deps count = %d, want 2 (nothing dropped)", len(deps))
	}
	if deps[0].TargetRef != "numpy" {
		t.Errorf("external ref rewritten to %q", deps[0].TargetRef)
	}
	if deps[1].TargetRef != "helper" {
		t.Errorf("call edge touched: %q", deps[1].TargetRef)
	}
}

func TestNormalize_TSRelative(t *testing.T) {
	n := NewNormalizer("/tmp/fake", []string{
		"src/app.ts",
		"src/utils.ts",
		"src/components/index.ts",
	})

	if got, ok := n.normalizeTS("./utils", "src/app.ts"); !ok || got != "src/utils.ts" {
		t.Errorf("./utils = %q, %v", got, ok)
	}
	if got, ok := n.normalizeTS("./components", "src/app.ts"); !ok || got != "src/components/index.ts" {
		t.Errorf("./components = %q, %v", got, ok)
	}
	if _, ok := n.normalizeTS("lodash", "src/app.ts"); ok {
		t.Error("package import should stay raw")
	}
}

func TestNormalize_GoModule(t *testing.T) {
	n := NewNormalizer("/tmp/fake", []string{
		"internal/graph/schema.go",
		"internal/graph/store.go",
		"cmd/main.go",
	})
	n.goModPath = "github.com/example/project"

	got, ok := n.normalizeGo("github.com/example/project/internal/graph")
	if !ok || got != "internal/graph/schema.go" {
		t.Fatalf("module import = %q, %v", got, ok)
	}
	if _, ok := n.normalizeGo("fmt"); ok {
		t.Error("stdlib import should stay raw")
	}
	if _, ok := n.normalizeGo("github.com/other/lib"); ok {
		t.Error("external module should stay raw")
	}
}

func TestNormalize_RustCrate(t *testing.T) {
	n := NewNormalizer("/tmp/fake", []string{
		"src/model.rs",
		"src/handlers/mod.rs",
		"src/service.rs",
	})

	if got, ok := n.normalizeRust("crate::model::{Repository, User}", "src/service.rs"); !ok || got != "src/model.rs" {
		t.Errorf("crate::model = %q, %v", got, ok)
	}
	if got, ok := n.normalizeRust("crate::handlers", "src/main.rs"); !ok || got != "src/handlers/mod.rs" {
		t.Errorf("crate::handlers = %q, %v", got, ok)
	}
	if _, ok := n.normalizeRust("std::collections::HashMap", "src/main.rs"); ok {
		t.Error("external crate should stay raw")
	}
}
