// Package scry helps an engineer understand an unfamiliar code base along
// three axes: which modules import which other modules, how classes relate
// through inheritance, and what concrete shapes objects take at runtime when
// static declarations do not guarantee them.
//
// # Static pipeline
//
// The static side is a one-shot, read-only pipeline over a [Reflector]:
//
//	r, err := pyreflect.New("path/to/project")
//	set, err := scry.Discover(r, "myapp", []string{"myapp"}, []string{"test"})
//	classes, err := scry.Classes(r, set)
//	root, err := scry.BuildHierarchy(r, classes)
//
// [Discover] walks statically-declared, module-top-level imports from a root
// module, filtered by substring keep/skip lists (skip wins). [ClassesByModule]
// attributes classes to their point of definition. [BuildHierarchy] builds a
// printable inheritance outline under the universal root; a class with k
// in-scope parents appears k times, once under each parent, so the result is
// a plain tree rather than a DAG.
//
// Results feed [WriteModuleOutline], [WriteHierarchyOutline], and
// [HierarchyDot] (Graphviz output with optional per-module clusters and a
// per-class color hook).
//
// # Type generalization
//
// The dynamic side is a [Tracker]: a stateful session that generalizes the
// runtime shapes of dynamically-typed values (interface{} fields, decoded
// JSON, script results) into structural [Descriptor] trees:
//
//	t := scry.NewTracker()
//	t.Track(Order{}, Customer{})
//	for _, o := range orders {
//		t.ObserveAll(o)
//	}
//	err = t.WriteFile("report.txt")
//
// Each observation classifies a value into a descriptor leaf (primitive,
// class reference, or container) and merges it into the descriptor
// accumulated so far for that (class, attribute) pair. Merge is associative
// and commutative, so the final report is independent of observation order
// and snapshots from independent sessions combine losslessly.
//
// # Reflectors
//
// Host-runtime enumeration is abstracted behind the narrow [Reflector]
// interface. The repo ships two implementations: internal/pyreflect, which
// reads a Python source tree with tree-sitter, and internal/store, which
// serves a previously persisted index from SQLite.
package scry
