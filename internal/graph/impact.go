package graph

import "sort"

// ImpactOf walks the reverse index breadth-first from ref — a file path or a
// symbol name — and returns every file that transitively depends on it.
// Depth 1 holds the files declaring a direct edge into ref; each further
// layer follows the reverse index on the previous layer's file paths. A file
// reachable over several routes is reported once, at its minimum depth.
//
// maxDepth <= 0 means traverse to exhaustion; cycles are bounded by the
// visited set either way. Ordering is ascending depth, then lexicographic
// path within a depth, so identical graph state yields identical output.
// A ref matching nothing in the graph yields an empty result, not an error.
func (g *Graph) ImpactOf(ref string, maxDepth int) []ImpactEntry {
	direct, ok := g.Reverse[ref]
	if !ok {
		return nil
	}

	// When ref resolved by symbol name rather than by file path, the first
	// layer records which symbol carried the dependency.
	via := ""
	if _, isFile := g.Nodes[ref]; !isFile {
		via = ref
	}

	visited := map[string]bool{ref: true}
	frontier := append([]string(nil), direct...)

	var out []ImpactEntry
	for depth := 1; len(frontier) > 0 && (maxDepth <= 0 || depth <= maxDepth); depth++ {
		sort.Strings(frontier)

		var accepted []string
		for _, p := range frontier {
			if visited[p] {
				continue
			}
			visited[p] = true
			entry := ImpactEntry{Path: p, Depth: depth}
			if depth == 1 {
				entry.ViaSymbol = via
			}
			out = append(out, entry)
			accepted = append(accepted, p)
		}

		next := make(map[string]struct{})
		for _, p := range accepted {
			for _, q := range g.Reverse[p] {
				if !visited[q] {
					next[q] = struct{}{}
				}
			}
		}
		frontier = make([]string, 0, len(next))
		for q := range next {
			frontier = append(frontier, q)
		}
	}
	return out
}
