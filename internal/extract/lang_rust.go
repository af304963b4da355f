package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// rsExtractor collects symbols and dependency refs from Rust source.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]graph.Symbol, []graph.Dependency) {
	var symbols []graph.Symbol
	var deps []graph.Dependency

	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, &symbols, &deps)
	return symbols, deps
}

func (e *rsExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	filePath string,
	symbols *[]graph.Symbol,
	deps *[]graph.Dependency,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_item":
		kind := graph.SymbolKindFunction
		if insideImpl(node) {
			kind = graph.SymbolKindMethod
		}
		if sym := namedSymbol(node, source, kind); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "struct_item", "enum_item", "trait_item", "type_item":
		if sym := namedSymbol(node, source, graph.SymbolKindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "impl_item":
		// "impl Trait for Type" declares that Type inherits Trait behavior.
		traitNode := node.ChildByFieldName("trait")
		if traitNode != nil {
			if trait := calleeName(traitNode.Utf8Text(source)); trait != "" {
				*deps = append(*deps, graph.Dependency{
					SourceFile: filePath, TargetRef: trait, Kind: graph.DepKindInherits,
				})
			}
		}

	case "use_declaration":
		if ref := e.usePath(node, source); ref != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindImport,
			})
		}

	case "call_expression":
		if ref := callRef(node, source, "identifier", "scoped_identifier", "field_expression"); ref != "" {
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

// usePath returns the argument of a use declaration as a raw import ref.
func (e *rsExtractor) usePath(node *tree_sitter.Node, source []byte) string {
	if arg := node.ChildByFieldName("argument"); arg != nil {
		return arg.Utf8Text(source)
	}
	return node.Utf8Text(source)
}

// insideImpl reports whether a function item sits in an impl block.
func insideImpl(node *tree_sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "impl_item" {
			return true
		}
	}
	return false
}
