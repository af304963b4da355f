package graph

import (
	"log/slog"
	"sort"
	"sync"
)

// Store is the single shared mutable resource of a mapping run: it owns all
// live FileNodes plus the derived forward and reverse indices. One Store
// exists per mapped project; it is passed by handle to every component, never
// held as an ambient singleton.
//
// Writers (Upsert, Remove) mutate under an exclusive lock, so a node replace
// is visible to readers either fully-before or fully-after. Readers that need
// a stable view take a Snapshot and work on that, so sustained reads never
// hold locks against writers.
type Store struct {
	mu  sync.RWMutex
	log *slog.Logger

	nodes map[string]FileNode

	// forward: file path -> set of refs its dependencies target.
	forward map[string]map[string]struct{}
	// reverse: resolved ref -> set of file paths declaring an edge into it.
	reverse map[string]map[string]struct{}
	// pending: unresolved ref -> set of file paths declaring an edge into it.
	// Pending edges participate in no traversal; they are promoted into
	// reverse automatically when a matching node or symbol appears.
	pending map[string]map[string]struct{}
	// defs: symbol name -> set of file paths defining it.
	defs map[string]map[string]struct{}
}

// NewStore returns an empty Store. A nil logger defaults to slog.Default().
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log:     log,
		nodes:   make(map[string]FileNode),
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
		pending: make(map[string]map[string]struct{}),
		defs:    make(map[string]map[string]struct{}),
	}
}

// Upsert replaces any existing node with the same path atomically and
// reindexes the affected edges. Racing updates for one path resolve by
// version: a node whose Version does not exceed the live node's is
// discarded. Returns true when the node landed.
func (s *Store) Upsert(node FileNode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.nodes[node.Path]; ok {
		if node.Version <= prev.Version {
			s.log.Warn("discarding stale upsert",
				"path", node.Path,
				"version", node.Version,
				"live_version", prev.Version)
			return false
		}
		s.detach(node.Path)
	}

	s.nodes[node.Path] = cloneNode(node)
	s.attach(node.Path)
	return true
}

// Remove deletes the node and all edges it declared. Edges from other files
// that had targeted this node (by path or by one of its symbols) are demoted
// back to unresolved rather than dropped, so a file reappearing under the
// same path reattaches its incoming edges automatically.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[path]; !ok {
		return
	}
	s.detach(path)
	delete(s.nodes, path)
	s.demote(path)
}

// Get returns a copy of the node at path, or nil when no node exists.
// A missing path is not an error.
func (s *Store) Get(path string) *FileNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	if !ok {
		return nil
	}
	c := cloneNode(n)
	return &c
}

// Version returns the live version for path, or 0 when no node exists.
func (s *Store) Version(path string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[path].Version
}

// Paths returns the sorted set of live file paths.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a consistent point-in-time Graph. The returned value
// shares no memory with the store, so readers can traverse it while writers
// keep mutating.
func (s *Store) Snapshot() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := &Graph{
		Nodes:   make(map[string]FileNode, len(s.nodes)),
		Forward: make(map[string][]string, len(s.forward)),
		Reverse: make(map[string][]string, len(s.reverse)),
	}
	for p, n := range s.nodes {
		g.Nodes[p] = cloneNode(n)
	}
	for p, refs := range s.forward {
		g.Forward[p] = sortedKeys(refs)
	}
	for ref, srcs := range s.reverse {
		if len(srcs) == 0 {
			continue
		}
		g.Reverse[ref] = sortedKeys(srcs)
	}
	return g
}

// Stats returns node and edge counts for the current state.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{FileCount: len(s.nodes)}
	for _, n := range s.nodes {
		st.SymbolCount += len(n.Symbols)
		st.EdgeCount += len(n.Dependencies)
	}
	for _, set := range s.reverse {
		st.ResolvedEdges += len(set)
	}
	for _, set := range s.pending {
		st.UnresolvedEdges += len(set)
	}
	return st
}

// --- helpers ---

// cloneNode deep-copies a FileNode so stored and returned values never alias
// caller memory.
func cloneNode(n FileNode) FileNode {
	c := n
	if n.Symbols != nil {
		c.Symbols = make([]Symbol, len(n.Symbols))
		copy(c.Symbols, n.Symbols)
	}
	if n.Dependencies != nil {
		c.Dependencies = make([]Dependency, len(n.Dependencies))
		copy(c.Dependencies, n.Dependencies)
	}
	return c
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
