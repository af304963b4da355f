package graph

// Index maintenance run as part of every Upsert and Remove. All methods in
// this file assume the store's write lock is held.
//
// Resolution order for a Dependency's TargetRef: exact file path match
// first, then symbol-name match against any node's symbols. A ref matching
// neither stays pending until a matching node appears, at which point it is
// promoted retroactively without the declaring node being re-submitted.

// attach indexes the node at path: registers its symbol definitions,
// rebuilds its forward entry, files each declared edge as resolved or
// pending, and promotes any pending edges the node newly satisfies.
func (s *Store) attach(path string) {
	node := s.nodes[path]

	for _, sym := range node.Symbols {
		addToSet(s.defs, sym.Name, path)
	}

	refs := make(map[string]struct{}, len(node.Dependencies))
	for _, dep := range node.Dependencies {
		refs[dep.TargetRef] = struct{}{}
	}
	s.forward[path] = refs

	for ref := range refs {
		if s.resolvable(ref) {
			addToSet(s.reverse, ref, path)
		} else {
			addToSet(s.pending, ref, path)
		}
	}

	// The new node itself and each of its symbols may satisfy edges that
	// arrived before it did.
	s.promote(path)
	for _, sym := range node.Symbols {
		s.promote(sym.Name)
	}
}

// detach removes everything the node at path contributed to the indices:
// its forward entry, its presence in reverse/pending sets, and its symbol
// definitions. Symbols left without any definer demote their edges back to
// pending.
func (s *Store) detach(path string) {
	node := s.nodes[path]

	for ref := range s.forward[path] {
		removeFromSet(s.reverse, ref, path)
		removeFromSet(s.pending, ref, path)
	}
	delete(s.forward, path)

	demoted := make([]string, 0, len(node.Symbols))
	for _, sym := range node.Symbols {
		removeFromSet(s.defs, sym.Name, path)
		if _, still := s.defs[sym.Name]; !still {
			demoted = append(demoted, sym.Name)
		}
	}
	for _, name := range demoted {
		s.demote(name)
	}
}

// resolvable reports whether ref currently matches a known file path or a
// defined symbol name.
func (s *Store) resolvable(ref string) bool {
	if _, ok := s.nodes[ref]; ok {
		return true
	}
	_, ok := s.defs[ref]
	return ok
}

// promote moves pending edges targeting ref into the reverse index if ref
// has become resolvable.
func (s *Store) promote(ref string) {
	set, ok := s.pending[ref]
	if !ok || !s.resolvable(ref) {
		return
	}
	for src := range set {
		addToSet(s.reverse, ref, src)
	}
	delete(s.pending, ref)
}

// demote moves resolved edges targeting ref back to pending if ref is no
// longer resolvable. The edges are retained, not dropped: if a matching
// node reappears they reattach via promote.
func (s *Store) demote(ref string) {
	if s.resolvable(ref) {
		return
	}
	set, ok := s.reverse[ref]
	if !ok {
		return
	}
	for src := range set {
		addToSet(s.pending, ref, src)
	}
	delete(s.reverse, ref)
}

// --- set-of-sets helpers ---

func addToSet(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[member] = struct{}{}
}

func removeFromSet(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, member)
	if len(set) == 0 {
		delete(m, key)
	}
}
