// Package model defines the structural value types shared across scry:
// classes, module sets, and hierarchy nodes. Modules themselves are
// identified by their fully-qualified dotted names; relations between them
// (imports, defined classes, bases) are served by a Reflector.
package model

import "sort"

// UniversalRootName is the name of the implicit common ancestor of every
// class in the analyzed type system.
const UniversalRootName = "object"

// Class identifies a class by its defining module and unqualified name.
// A Class with an empty Module is outside the analyzed tree (an external
// base, or the universal root).
type Class struct {
	Module string
	Name   string
}

// UniversalRoot returns the implicit common ancestor class.
func UniversalRoot() Class {
	return Class{Name: UniversalRootName}
}

// IsUniversalRoot reports whether c is the universal root.
func (c Class) IsUniversalRoot() bool {
	return c.Module == "" && c.Name == UniversalRootName
}

// QualifiedName returns "module.Name", or just Name for external classes.
func (c Class) QualifiedName() string {
	if c.Module == "" {
		return c.Name
	}
	return c.Module + "." + c.Name
}

// SortClasses orders classes by name, breaking ties by module.
func SortClasses(classes []Class) {
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Name != classes[j].Name {
			return classes[i].Name < classes[j].Name
		}
		return classes[i].Module < classes[j].Module
	})
}

// ModuleSet is the result of import-graph discovery: the unique modules
// reachable from a root after keep/skip filtering, plus any warnings
// recorded along the way.
type ModuleSet struct {
	root     string
	names    map[string]struct{}
	warnings []string
}

// NewModuleSet creates a ModuleSet containing only the root module.
// The root is a member regardless of any filters.
func NewModuleSet(root string) *ModuleSet {
	return &ModuleSet{
		root:  root,
		names: map[string]struct{}{root: {}},
	}
}

// Root returns the name of the root module.
func (s *ModuleSet) Root() string { return s.root }

// Add records a module as a member of the set.
func (s *ModuleSet) Add(name string) {
	s.names[name] = struct{}{}
}

// Contains reports membership.
func (s *ModuleSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of member modules.
func (s *ModuleSet) Len() int { return len(s.names) }

// Names returns the member module names sorted lexicographically.
func (s *ModuleSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Warn records a non-fatal discovery warning.
func (s *ModuleSet) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Warnings returns warnings recorded during discovery, in order.
func (s *ModuleSet) Warnings() []string { return s.warnings }

// HierarchyNode is one node of the inheritance forest. A class with k
// in-scope parents appears as k separate node instances, one per parent.
type HierarchyNode struct {
	Class    Class
	Children []*HierarchyNode
}

// Walk visits the node and its descendants depth-first, passing the depth
// (root = 0) to fn.
func (n *HierarchyNode) Walk(fn func(node *HierarchyNode, depth int)) {
	n.walk(fn, 0)
}

func (n *HierarchyNode) walk(fn func(node *HierarchyNode, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the total number of nodes in the subtree, including n.
func (n *HierarchyNode) Count() int {
	total := 0
	n.Walk(func(*HierarchyNode, int) { total++ })
	return total
}
