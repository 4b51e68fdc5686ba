package pyreflect

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// parsedFile is the statically-visible structure of one Python file: its
// module-top-level import declarations and class definitions.
type parsedFile struct {
	path      string
	isPackage bool
	imports   []rawImport
	classes   []classInfo
}

// rawImport is one import declaration before resolution. dots counts the
// leading dots of a relative import (zero for absolute); names lists the
// imported symbols of a from-import (empty for plain imports).
type rawImport struct {
	dots   int
	module string
	names  []string
}

// parseSource extracts top-level imports and class definitions from Python
// source. Only direct children of the module node are inspected: imports
// nested in functions or conditionals are intentionally invisible.
func parseSource(src []byte) (*parsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := &parsedFile{}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "import_statement":
			out.imports = append(out.imports, plainImports(n, src)...)
		case "import_from_statement":
			if imp, ok := fromImport(n, src); ok {
				out.imports = append(out.imports, imp)
			}
		case "class_definition":
			out.classes = append(out.classes, classDefinition(n, src))
		case "decorated_definition":
			if def := n.ChildByFieldName("definition"); def != nil && def.Type() == "class_definition" {
				out.classes = append(out.classes, classDefinition(def, src))
			}
		}
	}
	return out, nil
}

// plainImports handles "import a.b, c as d": one rawImport per target.
func plainImports(n *sitter.Node, src []byte) []rawImport {
	var out []rawImport
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, rawImport{module: child.Content(src)})
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, rawImport{module: name.Content(src)})
			}
		}
	}
	return out
}

// fromImport handles "from X import a, b as c" and relative variants.
// Wildcard imports record the module with no names.
func fromImport(n *sitter.Node, src []byte) (rawImport, bool) {
	modNode := n.ChildByFieldName("module_name")
	if modNode == nil {
		return rawImport{}, false
	}

	var imp rawImport
	switch modNode.Type() {
	case "relative_import":
		text := modNode.Content(src)
		trimmed := strings.TrimLeft(text, ".")
		imp.dots = len(text) - len(trimmed)
		imp.module = trimmed
	default:
		imp.module = modNode.Content(src)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == modNode {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			imp.names = append(imp.names, child.Content(src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imp.names = append(imp.names, name.Content(src))
			}
		}
	}
	return imp, true
}

// classDefinition extracts a class name and its raw base expressions.
// Keyword arguments in the superclass list (metaclass=...) are not bases;
// subscripted bases (Generic[T]) contribute their value part.
func classDefinition(n *sitter.Node, src []byte) classInfo {
	ci := classInfo{}
	if name := n.ChildByFieldName("name"); name != nil {
		ci.name = name.Content(src)
	}
	supers := n.ChildByFieldName("superclasses")
	if supers == nil {
		return ci
	}
	for i := 0; i < int(supers.NamedChildCount()); i++ {
		arg := supers.NamedChild(i)
		switch arg.Type() {
		case "identifier", "attribute", "dotted_name":
			ci.baseNames = append(ci.baseNames, arg.Content(src))
		case "subscript":
			if v := arg.ChildByFieldName("value"); v != nil {
				ci.baseNames = append(ci.baseNames, v.Content(src))
			}
		}
	}
	return ci
}
