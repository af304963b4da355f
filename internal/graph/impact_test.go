package graph

import (
	"reflect"
	"testing"
)

func buildStore(t *testing.T, nodes ...FileNode) *Store {
	t.Helper()
	s := NewStore(nil)
	for _, n := range nodes {
		if !s.Upsert(n) {
			t.Fatalf("upsert %s rejected", n.Path)
		}
	}
	return s
}

// Scenario: a.py calls symbol foo, b.py defines foo. The impact of foo is
// a.py at depth 1, attributed to the symbol.
func TestImpactOf_SymbolRef(t *testing.T) {
	s := buildStore(t,
		FileNode{Path: "a.py", Version: 1,
			Symbols:      []Symbol{{Name: "foo", Kind: SymbolKindFunction}},
			Dependencies: []Dependency{dep("a.py", "foo", DepKindCall)},
		},
		FileNode{Path: "b.py", Version: 1,
			Symbols: []Symbol{{Name: "foo", Kind: SymbolKindFunction}},
		},
	)

	got := s.Snapshot().ImpactOf("foo", 0)
	want := []ImpactEntry{{Path: "a.py", Depth: 1, ViaSymbol: "foo"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ImpactOf(foo) = %v, want %v", got, want)
	}
}

func TestImpactOf_TransitiveDepths(t *testing.T) {
	// c -> b -> a, plus d -> a directly.
	s := buildStore(t,
		nodeWithDeps("a.py", 1),
		nodeWithDeps("b.py", 1, dep("b.py", "a.py", DepKindImport)),
		nodeWithDeps("c.py", 1, dep("c.py", "b.py", DepKindImport)),
		nodeWithDeps("d.py", 1, dep("d.py", "a.py", DepKindImport)),
	)

	got := s.Snapshot().ImpactOf("a.py", 0)
	want := []ImpactEntry{
		{Path: "b.py", Depth: 1},
		{Path: "d.py", Depth: 1},
		{Path: "c.py", Depth: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ImpactOf(a.py) = %v, want %v", got, want)
	}
}

// Cycles terminate and report each file at most once, at minimum depth.
func TestImpactOf_Cycle(t *testing.T) {
	s := buildStore(t,
		nodeWithDeps("a.py", 1, dep("a.py", "b.py", DepKindImport)),
		nodeWithDeps("b.py", 1, dep("b.py", "a.py", DepKindImport)),
	)
	g := s.Snapshot()

	for _, ref := range []string{"a.py", "b.py"} {
		got := g.ImpactOf(ref, 0)
		if len(got) != 1 {
			t.Fatalf("ImpactOf(%s) = %v, want exactly one entry", ref, got)
		}
		seen := map[string]int{}
		for _, e := range got {
			seen[e.Path]++
			if seen[e.Path] > 1 {
				t.Fatalf("ImpactOf(%s) reported %s twice", ref, e.Path)
			}
		}
	}
}

func TestImpactOf_MinimumDepthWins(t *testing.T) {
	// c reaches a both directly (depth 1) and through b (depth 2).
	s := buildStore(t,
		nodeWithDeps("a.py", 1),
		nodeWithDeps("b.py", 1, dep("b.py", "a.py", DepKindImport)),
		nodeWithDeps("c.py", 1,
			dep("c.py", "a.py", DepKindImport),
			dep("c.py", "b.py", DepKindImport)),
	)

	got := s.Snapshot().ImpactOf("a.py", 0)
	want := []ImpactEntry{
		{Path: "b.py", Depth: 1},
		{Path: "c.py", Depth: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ImpactOf(a.py) = %v, want %v", got, want)
	}
}

func TestImpactOf_MaxDepth(t *testing.T) {
	s := buildStore(t,
		nodeWithDeps("a.py", 1),
		nodeWithDeps("b.py", 1, dep("b.py", "a.py", DepKindImport)),
		nodeWithDeps("c.py", 1, dep("c.py", "b.py", DepKindImport)),
	)

	got := s.Snapshot().ImpactOf("a.py", 1)
	want := []ImpactEntry{{Path: "b.py", Depth: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ImpactOf(a.py, 1) = %v, want %v", got, want)
	}
}

// Unknown refs yield an empty result; the operation is total.
func TestImpactOf_UnknownRef(t *testing.T) {
	s := buildStore(t, nodeWithDeps("a.py", 1))
	if got := s.Snapshot().ImpactOf("never-heard-of-it", 0); len(got) != 0 {
		t.Fatalf("ImpactOf(unknown) = %v, want empty", got)
	}
}

func TestImpactOf_Deterministic(t *testing.T) {
	s := buildStore(t,
		nodeWithDeps("core.py", 1),
		nodeWithDeps("z.py", 1, dep("z.py", "core.py", DepKindImport)),
		nodeWithDeps("m.py", 1, dep("m.py", "core.py", DepKindImport)),
		nodeWithDeps("a.py", 1, dep("a.py", "core.py", DepKindImport)),
	)
	g := s.Snapshot()

	first := g.ImpactOf("core.py", 0)
	for i := 0; i < 5; i++ {
		if got := g.ImpactOf("core.py", 0); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %v vs %v", i, got, first)
		}
	}
	want := []ImpactEntry{
		{Path: "a.py", Depth: 1},
		{Path: "m.py", Depth: 1},
		{Path: "z.py", Depth: 1},
	}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("ordering = %v, want lexicographic %v", first, want)
	}
}
