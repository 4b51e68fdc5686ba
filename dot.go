package scry

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// DotOptions configures HierarchyDot output.
type DotOptions struct {
	// GroupByModule clusters classes by their defining module.
	GroupByModule bool
	// RankSep is the vertical distance between diagram ranks. Zero means
	// the default of 3.0.
	RankSep float64
	// Color, when set, supplies the font color for a class's label.
	Color func(Class) string
}

// dotKeywords are names that collide with DOT language keywords and must be
// quoted to parse.
var dotKeywords = map[string]bool{
	"digraph":  true,
	"graph":    true,
	"subgraph": true,
	"node":     true,
	"edge":     true,
	"strict":   true,
}

// HierarchyDot renders the inheritance relations among classes as Graphviz
// DOT text: one node per class, one edge per (parent, child) inheritance
// relation. Unlike the replicated outline, this is the DAG view — a class
// with several parents is a single node with several incoming edges.
//
// Parents outside the class set are shown with their module name beneath
// the class name; edges from the universal root are elided. Output is
// deterministic: modules, classes, and edges are emitted in sorted order.
func HierarchyDot(r Reflector, classes []Class, opts DotOptions) (string, error) {
	ranksep := opts.RankSep
	if ranksep == 0 {
		ranksep = 3.0
	}

	inScope := make(map[Class]bool, len(classes))
	for _, c := range classes {
		inScope[c] = true
	}

	// parent -> children, from declared direct bases.
	edges := make(map[Class][]Class)
	for _, c := range classes {
		bases, err := r.Bases(c)
		if err != nil {
			return "", fmt.Errorf("hierarchy dot: bases of %s: %w", c.QualifiedName(), err)
		}
		for _, b := range bases {
			if b.IsUniversalRoot() {
				continue
			}
			edges[b] = append(edges[b], c)
		}
	}

	lines := []string{
		"digraph {",
		`  node [shape=box, fontname="Arial"];`,
		fmt.Sprintf("  ranksep = %g;", ranksep),
		`  fontname = "Arial";`,
	}

	if opts.GroupByModule {
		lines = append(lines, clusterLines(classes, opts.Color)...)
	} else {
		for _, c := range sortedClasses(classes) {
			lines = append(lines, "  "+nodeLine(c, opts.Color))
		}
	}

	parents := make([]Class, 0, len(edges))
	for p := range edges {
		parents = append(parents, p)
	}
	sort.Slice(parents, func(i, j int) bool {
		return parents[i].QualifiedName() < parents[j].QualifiedName()
	})
	for _, p := range parents {
		children := edges[p]
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = dotName(c.Name)
		}
		parentName := dotName(p.Name)
		if !inScope[p] && p.Module != "" {
			// Out-of-scope parent: show where it comes from.
			parentName = fmt.Sprintf("%q", p.Name+"\n("+p.Module+")")
		}
		lines = append(lines, fmt.Sprintf("  %s -> { %s };", parentName, strings.Join(names, " ")))
	}

	lines = append(lines, "}")
	return strings.Join(lines, "\n") + "\n", nil
}

// clusterLines emits one cluster subgraph per module, containing only node
// declarations. Edges are emitted at the top level.
func clusterLines(classes []Class, color func(Class) string) []string {
	byModule := make(map[string][]Class)
	for _, c := range classes {
		byModule[c.Module] = append(byModule[c.Module], c)
	}
	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	var lines []string
	for _, m := range modules {
		lines = append(lines,
			fmt.Sprintf("  subgraph cluster_%s {", strings.ReplaceAll(m, ".", "_")),
			fmt.Sprintf("    label=%q;", m),
			"    style=filled;",
			"    color=lightgrey;",
			"    node [style=filled, fillcolor=white];",
		)
		for _, c := range sortedClasses(byModule[m]) {
			lines = append(lines, "    "+nodeLine(c, color))
		}
		lines = append(lines, "  }")
	}
	return lines
}

func nodeLine(c Class, color func(Class) string) string {
	clr := ""
	if color != nil {
		if fc := color(c); fc != "" {
			clr = fmt.Sprintf(" [fontcolor=%s]", fc)
		}
	}
	return dotName(c.Name) + clr + ";"
}

// dotName quotes a class name when it would otherwise collide with a DOT
// keyword.
func dotName(name string) string {
	if dotKeywords[strings.ToLower(name)] {
		return fmt.Sprintf("%q", name)
	}
	return name
}

func sortedClasses(classes []Class) []Class {
	out := append([]Class(nil), classes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderImage writes dotSource to fileRoot.dot and shells out to Graphviz
// to produce fileRoot.png. The dot executable must be on PATH.
func RenderImage(dotSource, fileRoot string) error {
	if dir := filepath.Dir(fileRoot); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("render image: %w", err)
		}
	}
	dotFile := fileRoot + ".dot"
	pngFile := fileRoot + ".png"
	if err := os.WriteFile(dotFile, []byte(dotSource), 0o644); err != nil {
		return fmt.Errorf("render image: write %s: %w", dotFile, err)
	}
	cmd := exec.Command("dot", "-Tpng", dotFile, "-o", pngFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("render image: dot: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
