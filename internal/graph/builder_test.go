package graph

import (
	"strings"
	"testing"
)

func TestBuild_FirstAndSubsequentVersions(t *testing.T) {
	s := NewStore(nil)
	b := NewBuilder(s)

	node, warnings := b.Build("a.py", []byte("print('hi')\n"), StructuralFacts{Language: LangPython}, nil)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if node.Version != 1 {
		t.Fatalf("first version = %d, want 1", node.Version)
	}
	if node.ContentHash == "" {
		t.Fatal("content hash not set")
	}
	s.Upsert(node)

	renode, _ := b.Build("a.py", []byte("print('hi again')\n"), StructuralFacts{Language: LangPython}, nil)
	if renode.Version != 2 {
		t.Fatalf("re-analysis version = %d, want 2", renode.Version)
	}
	if renode.ContentHash == node.ContentHash {
		t.Fatal("hash unchanged for changed content")
	}
}

func TestBuild_EnrichmentAttachesByName(t *testing.T) {
	b := NewBuilder(NewStore(nil))

	facts := StructuralFacts{
		Language: LangPython,
		Symbols: []Symbol{
			{Name: "foo", Kind: SymbolKindFunction, Signature: "def foo(x)"},
			{Name: "Bar", Kind: SymbolKindClass},
		},
	}
	enr := &Enrichment{
		FileSummary: "utility helpers",
		SymbolSummaries: []SymbolSummary{
			{Name: "foo", Summary: "doubles its input"},
			{Name: "phantom", Summary: "does not exist"},
		},
	}

	node, warnings := b.Build("util.py", []byte("..."), facts, enr)

	if node.Summary != "utility helpers" {
		t.Errorf("file summary = %q", node.Summary)
	}
	if node.Symbols[0].Summary != "doubles its input" {
		t.Errorf("foo summary = %q", node.Symbols[0].Summary)
	}
	if node.Symbols[1].Summary != "" {
		t.Errorf("Bar should stay unenriched, got %q", node.Symbols[1].Summary)
	}
	if len(node.Symbols) != 2 {
		t.Fatalf("enrichment fabricated a symbol: %v", node.Symbols)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "phantom") {
		t.Errorf("warnings = %v, want one about phantom", warnings)
	}
}

// Enrichment absence never blocks node creation.
func TestBuild_WithoutEnrichment(t *testing.T) {
	b := NewBuilder(NewStore(nil))
	node, _ := b.Build("a.py", []byte("x"), StructuralFacts{
		Symbols: []Symbol{{Name: "f", Kind: SymbolKindFunction}},
	}, nil)

	if node.Summary != "" || node.Symbols[0].Summary != "" {
		t.Error("summaries should be empty without enrichment")
	}
	if node.Path != "a.py" || node.Version != 1 {
		t.Errorf("node = %+v", node)
	}
}

func TestBuild_DropsInvalidInputs(t *testing.T) {
	b := NewBuilder(NewStore(nil))
	node, warnings := b.Build("a.py", nil, StructuralFacts{
		Symbols: []Symbol{{Name: "", Kind: SymbolKindFunction}, {Name: "ok"}},
		Dependencies: []Dependency{
			{SourceFile: "someone-else.py", TargetRef: "b.py", Kind: DepKindImport},
			{TargetRef: "", Kind: DepKindImport},
		},
	}, nil)

	if len(node.Symbols) != 1 || node.Symbols[0].Name != "ok" {
		t.Errorf("symbols = %v", node.Symbols)
	}
	if len(node.Dependencies) != 1 {
		t.Fatalf("dependencies = %v", node.Dependencies)
	}
	if node.Dependencies[0].SourceFile != "a.py" {
		t.Errorf("source file not corrected: %q", node.Dependencies[0].SourceFile)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
}

func TestHashContent_Deterministic(t *testing.T) {
	if HashContent([]byte("abc")) != HashContent([]byte("abc")) {
		t.Fatal("hash not deterministic")
	}
	if HashContent([]byte("abc")) == HashContent([]byte("abd")) {
		t.Fatal("distinct content collided")
	}
}
