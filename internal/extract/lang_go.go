package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// goExtractor collects symbols and dependency refs from Go source.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]graph.Symbol, []graph.Dependency) {
	var symbols []graph.Symbol
	var deps []graph.Dependency

	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, &symbols, &deps)
	return symbols, deps
}

func (e *goExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	filePath string,
	symbols *[]graph.Symbol,
	deps *[]graph.Dependency,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if sym := namedSymbol(node, source, graph.SymbolKindFunction); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "method_declaration":
		if sym := namedSymbol(node, source, graph.SymbolKindMethod); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "type_declaration":
		// One or more type_spec children; Go types map to the class kind.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil || child.Kind() != "type_spec" {
				continue
			}
			if sym := namedSymbol(child, source, graph.SymbolKindClass); sym != nil {
				*symbols = append(*symbols, *sym)
			}
		}

	case "import_spec":
		if ref := e.importPath(node, source); ref != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindImport,
			})
		}

	case "call_expression":
		if ref := callRef(node, source, "identifier", "selector_expression"); ref != "" {
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

func (e *goExtractor) importPath(node *tree_sitter.Node, source []byte) string {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return ""
	}
	return strings.Trim(pathNode.Utf8Text(source), "\"")
}

// namedSymbol builds a Symbol from any node carrying a "name" field.
func namedSymbol(node *tree_sitter.Node, source []byte, kind graph.SymbolKind) *graph.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &graph.Symbol{
		Name:      nameNode.Utf8Text(source),
		Kind:      kind,
		Signature: signatureOf(node, source),
	}
}

// callRef extracts the soft symbol ref of a call expression whose function
// child is one of the accepted node kinds.
func callRef(node *tree_sitter.Node, source []byte, accepted ...string) string {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return ""
	}
	kind := fnNode.Kind()
	for _, k := range accepted {
		if kind == k {
			return calleeName(fnNode.Utf8Text(source))
		}
	}
	return ""
}
