package scry

import (
	"fmt"
	"sort"
)

// ClassesByModule maps each module in set to the classes defined in it,
// name-sorted. A class referenced in a module's namespace but defined
// elsewhere is excluded, so no class is counted twice across modules.
// Modules defining no classes are omitted from the result.
func ClassesByModule(r Reflector, set *ModuleSet) (map[string][]Class, error) {
	out := make(map[string][]Class)
	for _, name := range set.Names() {
		classes, err := r.Classes(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: classes of %s: %w", name, err)
		}
		var defined []Class
		for _, c := range classes {
			if c.Module == name {
				defined = append(defined, c)
			}
		}
		if len(defined) == 0 {
			continue
		}
		sort.Slice(defined, func(i, j int) bool { return defined[i].Name < defined[j].Name })
		out[name] = defined
	}
	return out, nil
}

// Classes returns all classes defined across the modules of set,
// deduplicated and sorted by (module, name).
func Classes(r Reflector, set *ModuleSet) ([]Class, error) {
	byModule, err := ClassesByModule(r, set)
	if err != nil {
		return nil, err
	}
	seen := make(map[Class]bool)
	var out []Class
	for _, classes := range byModule {
		for _, c := range classes {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
