package scry

import (
	"fmt"
	"sort"

	"github.com/jward/scry/internal/model"
)

// BuildHierarchy builds the inheritance forest for the given classes,
// rooted at the universal base type.
//
// For every class, one child node is created under each of its in-scope
// parents: a class with k in-scope parents appears as k separate node
// instances, each expanded along its own path. Replication keeps the result
// a printable tree instead of a DAG. Ancestors outside the input set are
// elided, with the nearest in-scope ancestor (or the universal root, if
// none) used as the attachment point; when several bases elide to the same
// attachment point the class is attached there once. Children within a node
// are sorted by name.
//
// Termination holds because the ancestor relation over a finite class set,
// attached at its tops to one fixed root, cannot cycle.
func BuildHierarchy(r Reflector, classes []Class) (*HierarchyNode, error) {
	inScope := make(map[Class]bool, len(classes))
	for _, c := range classes {
		inScope[c] = true
	}

	root := model.UniversalRoot()
	children := make(map[Class][]Class)
	for _, c := range classes {
		parents, err := attachmentParents(r, c, inScope)
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 {
			parents = []Class{root}
		}
		for _, p := range parents {
			children[p] = append(children[p], c)
		}
	}
	for p := range children {
		cs := children[p]
		model.SortClasses(cs)
		children[p] = cs
	}

	var build func(c Class) *HierarchyNode
	build = func(c Class) *HierarchyNode {
		node := &HierarchyNode{Class: c}
		for _, child := range children[c] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	return build(root), nil
}

// attachmentParents returns the in-scope attachment points for c: each
// declared base that is in scope, or the nearest in-scope ancestors of
// out-of-scope bases. Duplicate attachment points are collapsed.
func attachmentParents(r Reflector, c Class, inScope map[Class]bool) ([]Class, error) {
	bases, err := r.Bases(c)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: bases of %s: %w", c.QualifiedName(), err)
	}
	seen := make(map[Class]bool)
	var parents []Class
	for _, b := range bases {
		attach, err := nearestInScope(r, b, inScope)
		if err != nil {
			return nil, err
		}
		for _, a := range attach {
			if !seen[a] {
				seen[a] = true
				parents = append(parents, a)
			}
		}
	}
	sort.Slice(parents, func(i, j int) bool {
		if parents[i].Name != parents[j].Name {
			return parents[i].Name < parents[j].Name
		}
		return parents[i].Module < parents[j].Module
	})
	return parents, nil
}

// nearestInScope returns the closest in-scope ancestors reachable from c,
// including c itself when in scope. External classes (empty module) have no
// readable bases and terminate the climb.
func nearestInScope(r Reflector, c Class, inScope map[Class]bool) ([]Class, error) {
	if inScope[c] {
		return []Class{c}, nil
	}
	if c.Module == "" {
		return nil, nil
	}
	bases, err := r.Bases(c)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: bases of %s: %w", c.QualifiedName(), err)
	}
	var out []Class
	for _, b := range bases {
		found, err := nearestInScope(r, b, inScope)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
