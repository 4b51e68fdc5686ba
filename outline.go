package scry

import (
	"bufio"
	"fmt"
	"io"
)

const outlineIndent = "    "

// WriteModuleOutline writes the modules of set sorted by name, each
// followed by the classes defined in it, indented one level. Modules
// defining no classes are not printed.
func WriteModuleOutline(w io.Writer, r Reflector, set *ModuleSet) error {
	byModule, err := ClassesByModule(r, set)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, name := range set.Names() {
		classes, ok := byModule[name]
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "%s\n", name)
		for _, c := range classes {
			fmt.Fprintf(bw, "%s%s\n", outlineIndent, c.Name)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("module outline: %w", err)
	}
	return nil
}

// WriteHierarchyOutline writes the inheritance forest as an indented
// outline, one class name per line, four spaces per depth level. Classes
// with multiple in-scope parents appear once under each parent.
func WriteHierarchyOutline(w io.Writer, root *HierarchyNode) error {
	bw := bufio.NewWriter(w)
	root.Walk(func(n *HierarchyNode, depth int) {
		for i := 0; i < depth; i++ {
			bw.WriteString(outlineIndent)
		}
		fmt.Fprintf(bw, "%s\n", n.Class.Name)
	})
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("hierarchy outline: %w", err)
	}
	return nil
}
