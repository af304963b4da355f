package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a snapshot.
// Files are grouped by top-level directory; import edges become arrows.
// Unresolved references are omitted, the diagram shows file-to-file
// structure only.
func GenerateMermaid(g *graph.Graph) string {
	// Stable node → ID mapping (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(p string) string {
		if id, ok := nodeIDs[p]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[p] = id
		return id
	}

	groups := make(map[string][]string)
	for p := range g.Nodes {
		groups[topDir(p)] = append(groups[topDir(p)], p)
	}
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range groupNames {
		members := groups[name]
		sort.Strings(members)

		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(name+"_dir"), name))
		for _, member := range members {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(member), shortPath(member)))
		}
		sb.WriteString("  end\n")
	}

	srcs := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		srcs = append(srcs, p)
	}
	sort.Strings(srcs)
	for _, src := range srcs {
		seen := make(map[string]bool)
		for _, d := range g.Nodes[src].Dependencies {
			if d.Kind != graph.DepKindImport || seen[d.TargetRef] {
				continue
			}
			if _, ok := g.Nodes[d.TargetRef]; !ok {
				continue
			}
			seen[d.TargetRef] = true
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(src), getID(d.TargetRef)))
		}
	}

	return sb.String()
}

// topDir returns the first path segment, or "." for root-level files.
func topDir(p string) string {
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return "."
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return path.Join(parts[len(parts)-2:]...)
}
