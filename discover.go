package scry

import (
	"fmt"
	"strings"

	"github.com/jward/scry/internal/model"
)

// Discover returns the set of modules reachable from root through
// statically-declared imports, filtered by substring keep/skip lists.
//
// A module is retained when its fully-qualified name contains at least one
// keep substring (an empty keep list matches everything) and none of the
// skip substrings; skip always wins when a name matches both. The root is
// always retained regardless of filters. Filtered-out modules are not
// expanded — their own imports are not followed, since filtering marks a
// subtree as irrelevant.
//
// Traversal is breadth-first with a global visited set, so discovery
// terminates on import cycles and the result set does not depend on
// traversal order. Import targets that do not resolve to a concrete module
// are recorded as warnings on the result and skipped; the graph may be
// incomplete by design.
//
// An unresolvable root fails with a *ResolutionError.
func Discover(r Reflector, root string, keep, skip []string) (*ModuleSet, error) {
	if !r.HasModule(root) {
		return nil, &ResolutionError{Module: root}
	}

	set := model.NewModuleSet(root)
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		imports, err := r.Imports(name)
		if err != nil {
			return nil, fmt.Errorf("discover: imports of %s: %w", name, err)
		}
		for _, target := range imports {
			if visited[target] {
				continue
			}
			visited[target] = true
			if !passesFilter(target, keep, skip) {
				continue
			}
			if !r.HasModule(target) {
				set.Warn(fmt.Sprintf("import %q of %s does not resolve to a module", target, name))
				continue
			}
			set.Add(target)
			queue = append(queue, target)
		}
	}
	return set, nil
}

// passesFilter applies the keep/skip substring tests to a module name.
// Skip is evaluated after keep and overrides it.
func passesFilter(name string, keep, skip []string) bool {
	kept := len(keep) == 0
	for _, k := range keep {
		if strings.Contains(name, k) {
			kept = true
			break
		}
	}
	if !kept {
		return false
	}
	for _, s := range skip {
		if strings.Contains(name, s) {
			return false
		}
	}
	return true
}
