package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// pyExtractor collects symbols and dependency refs from Python source.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]graph.Symbol, []graph.Dependency) {
	var symbols []graph.Symbol
	var deps []graph.Dependency

	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, &symbols, &deps)
	return symbols, deps
}

func (e *pyExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	filePath string,
	symbols *[]graph.Symbol,
	deps *[]graph.Dependency,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		kind := graph.SymbolKindFunction
		if insideClass(node) {
			kind = graph.SymbolKindMethod
		}
		if sym := namedSymbol(node, source, kind); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "class_definition":
		if sym := namedSymbol(node, source, graph.SymbolKindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		// Superclasses become soft inherits edges.
		for _, base := range e.superclasses(node, source) {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: base, Kind: graph.DepKindInherits,
			})
		}

	case "import_statement":
		// import a.b, c — each dotted_name is one module ref.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "dotted_name" {
				if ref := child.Utf8Text(source); ref != "" {
					*deps = append(*deps, graph.Dependency{
						SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindImport,
					})
				}
			}
		}

	case "import_from_statement":
		if ref := e.fromModule(node, source); ref != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindImport,
			})
		}

	case "call":
		if ref := callRef(node, source, "identifier", "attribute"); ref != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindCall,
			})
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, symbols, deps)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, symbols, deps)
		}
		cursor.GotoParent()
	}
}

// fromModule returns the module of a "from X import ..." statement,
// including relative-dot prefixes.
func (e *pyExtractor) fromModule(node *tree_sitter.Node, source []byte) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if k := child.Kind(); k == "dotted_name" || k == "relative_import" {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return ""
	}
	return moduleNode.Utf8Text(source)
}

// superclasses returns the base names listed in a class definition's
// argument list, reduced to trailing identifiers.
func (e *pyExtractor) superclasses(node *tree_sitter.Node, source []byte) []string {
	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child == nil {
			continue
		}
		if k := child.Kind(); k == "identifier" || k == "attribute" {
			if name := calleeName(child.Utf8Text(source)); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// insideClass reports whether a definition sits (possibly via decorators)
// inside a class body.
func insideClass(node *tree_sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "class_definition":
			return true
		case "function_definition":
			return false
		}
	}
	return false
}
