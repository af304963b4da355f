package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

// tsExtractor collects symbols and dependency refs from TypeScript source.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]graph.Symbol, []graph.Dependency) {
	var symbols []graph.Symbol
	var deps []graph.Dependency

	cursor := root.Walk()
	defer cursor.Close()
	e.walk(cursor, source, filePath, &symbols, &deps)
	return symbols, deps
}

func (e *tsExtractor) walk(
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

	case "method_definition":
		if sym := namedSymbol(node, source, graph.SymbolKindMethod); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "class_declaration":
		if sym := namedSymbol(node, source, graph.SymbolKindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}
		if base := e.heritage(node, source); base != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: base, Kind: graph.DepKindInherits,
			})
		}

	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		if sym := namedSymbol(node, source, graph.SymbolKindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "lexical_declaration":
		*symbols = append(*symbols, e.arrowFunctions(node, source)...)

	case "import_statement":
		if ref := e.importSource(node, source); ref != "" {
			*deps = append(*deps, graph.Dependency{
				SourceFile: filePath, TargetRef: ref, Kind: graph.DepKindImport,
			})
		}

	case "call_expression":
		if ref := callRef(node, source, "identifier", "member_expression"); ref != "" {
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

// arrowFunctions extracts "const foo = () => ..." declarations as function
// symbols.
func (e *tsExtractor) arrowFunctions(node *tree_sitter.Node, source []byte) []graph.Symbol {
	var out []graph.Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		value := child.ChildByFieldName("value")
		if value == nil || value.Kind() != "arrow_function" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, graph.Symbol{
			Name:      nameNode.Utf8Text(source),
			Kind:      graph.SymbolKindFunction,
			Signature: signatureOf(value, source),
		})
	}
	return out
}

// importSource returns the module specifier of an import statement.
func (e *tsExtractor) importSource(node *tree_sitter.Node, source []byte) string {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				srcNode = child
				break
			}
		}
	}
	if srcNode == nil {
		return ""
	}
	return strings.Trim(srcNode.Utf8Text(source), "\"'`")
}

// heritage returns the extended class name from a class_heritage clause.
func (e *tsExtractor) heritage(node *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			clause := child.Child(j)
			if clause == nil || clause.Kind() != "extends_clause" {
				continue
			}
			for k := uint(0); k < clause.ChildCount(); k++ {
				n := clause.Child(k)
				if n == nil {
					continue
				}
				if kd := n.Kind(); kd == "identifier" || kd == "member_expression" {
					return calleeName(n.Utf8Text(source))
				}
			}
		}
	}
	return ""
}
