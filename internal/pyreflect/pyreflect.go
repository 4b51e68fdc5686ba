// Package pyreflect implements scry's Reflector over a Python source tree.
//
// It discovers .py files under a root directory (honoring .gitignore and
// skipping the usual vendored/cache directories), parses each with
// tree-sitter, and records module-top-level import declarations and class
// definitions with their declared bases. Imports inside function bodies or
// behind conditions are not observed, and dynamically-constructed imports
// cannot be parsed; both are skipped with a recorded warning where
// applicable, so the resulting graph may be incomplete by design.
package pyreflect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/scry/internal/model"
)

// Reflector serves static structure parsed from a Python source tree.
type Reflector struct {
	root     string
	modules  map[string]*moduleInfo
	warnings []string

	// rawFiles holds parsed files between scan and resolveImports.
	rawFiles map[string]*parsedFile
}

type moduleInfo struct {
	path      string // root-relative file path
	isPackage bool   // defined by an __init__.py
	imports   []string
	classes   []classInfo
}

type classInfo struct {
	name      string
	baseNames []string // raw base expressions: "Base", "mod.Base"
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"build":         {},
	"dist":          {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
}

// New scans and parses the Python source tree rooted at dir.
func New(dir string) (*Reflector, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("pyreflect: resolving %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("pyreflect: %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pyreflect: not a directory: %s", abs)
	}

	r := &Reflector{root: abs, modules: make(map[string]*moduleInfo)}
	if err := r.scan(); err != nil {
		return nil, err
	}
	r.resolveImports()
	return r, nil
}

// scan walks the tree and parses every Python file into a module record.
func (r *Reflector) scan() error {
	var gi *ignore.GitIgnore
	if g, err := ignore.CompileIgnoreFile(filepath.Join(r.root, ".gitignore")); err == nil {
		gi = g
	}

	raw := make(map[string]*parsedFile)

	err := filepath.WalkDir(r.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		name := d.Name()
		if d.IsDir() {
			if path == r.root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !strings.HasSuffix(name, ".py") {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("reading %s: %v", rel, err))
			return nil
		}
		parsed, err := parseSource(src)
		if err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("parsing %s: %v", rel, err))
			return nil
		}
		modName, isPackage := moduleName(rel)
		if modName == "" {
			return nil
		}
		parsed.path = rel
		parsed.isPackage = isPackage
		raw[modName] = parsed
		return nil
	})
	if err != nil {
		return fmt.Errorf("pyreflect: walking %s: %w", r.root, err)
	}

	for name, p := range raw {
		r.modules[name] = &moduleInfo{
			path:      p.path,
			isPackage: p.isPackage,
			classes:   p.classes,
		}
	}
	r.rawFiles = raw
	return nil
}

// moduleName converts a root-relative file path to a dotted module name.
// "a/b/c.py" becomes "a.b.c"; "a/b/__init__.py" becomes "a.b".
func moduleName(rel string) (name string, isPackage bool) {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, ".py"))
	if strings.HasSuffix(rel, "/__init__") {
		return strings.ReplaceAll(strings.TrimSuffix(rel, "/__init__"), "/", "."), true
	}
	if rel == "__init__" {
		return "", false
	}
	return strings.ReplaceAll(rel, "/", "."), false
}

// resolveImports turns raw import declarations into absolute module names,
// resolving relative imports against the importing module's package and
// preferring submodule targets for from-imports when they exist.
func (r *Reflector) resolveImports() {
	for modName, p := range r.rawFiles {
		info := r.modules[modName]
		seen := make(map[string]bool)
		add := func(target string) {
			if target != "" && target != modName && !seen[target] {
				seen[target] = true
				info.imports = append(info.imports, target)
			}
		}
		for _, imp := range p.imports {
			base, ok := r.importBase(modName, info.isPackage, imp)
			if !ok {
				r.warnings = append(r.warnings,
					fmt.Sprintf("%s: relative import beyond top-level package", p.path))
				continue
			}
			if len(imp.names) == 0 {
				add(base)
				continue
			}
			// from base import a, b: each name may be a submodule; names
			// that are plain symbols resolve to the base module itself.
			plainSymbol := false
			for _, n := range imp.names {
				if sub := joinModule(base, n); r.modules[sub] != nil {
					add(sub)
				} else {
					plainSymbol = true
				}
			}
			if plainSymbol || base != "" {
				add(base)
			}
		}
	}
	r.rawFiles = nil
}

// importBase resolves an import declaration's base module name. For
// relative imports, one leading dot anchors at the importing module's own
// package and each further dot climbs one level. Reports false when the
// climb leaves the top-level package.
func (r *Reflector) importBase(modName string, isPackage bool, imp rawImport) (string, bool) {
	if imp.dots == 0 {
		return imp.module, true
	}
	pkg := modName
	if !isPackage {
		pkg = parentModule(pkg)
	}
	for i := 1; i < imp.dots; i++ {
		if pkg == "" {
			return "", false
		}
		pkg = parentModule(pkg)
	}
	if imp.module == "" {
		return pkg, true
	}
	return joinModule(pkg, imp.module), true
}

func parentModule(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

func joinModule(base, rest string) string {
	if base == "" {
		return rest
	}
	return base + "." + rest
}

// HasModule reports whether name was found in the source tree.
func (r *Reflector) HasModule(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// Imports returns the resolved top-level import targets of a module.
func (r *Reflector) Imports(module string) ([]string, error) {
	info, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("pyreflect: unknown module %q", module)
	}
	return append([]string(nil), info.imports...), nil
}

// Classes returns the classes defined in a module.
func (r *Reflector) Classes(module string) ([]model.Class, error) {
	info, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("pyreflect: unknown module %q", module)
	}
	out := make([]model.Class, 0, len(info.classes))
	for _, c := range info.classes {
		out = append(out, model.Class{Module: module, Name: c.name})
	}
	return out, nil
}

// Bases returns the declared direct bases of c, resolved against the
// analyzed tree. Bases that cannot be located in the tree come back with an
// empty Module. Explicit "object" bases are dropped: the universal root is
// implicit. Classes outside the tree have no readable bases.
func (r *Reflector) Bases(c model.Class) ([]model.Class, error) {
	info, ok := r.modules[c.Module]
	if !ok {
		return nil, nil
	}
	for _, ci := range info.classes {
		if ci.name != c.Name {
			continue
		}
		var out []model.Class
		for _, raw := range ci.baseNames {
			if raw == model.UniversalRootName {
				continue
			}
			out = append(out, r.resolveBase(c.Module, raw))
		}
		return out, nil
	}
	return nil, nil
}

// resolveBase locates the class a base expression refers to: same module
// first, then the importing module's import targets, then a unique global
// match, and finally an external placeholder.
func (r *Reflector) resolveBase(module, raw string) model.Class {
	name := raw
	prefix := ""
	if i := strings.LastIndex(raw, "."); i >= 0 {
		prefix, name = raw[:i], raw[i+1:]
	}

	if prefix == "" {
		if r.definesClass(module, name) {
			return model.Class{Module: module, Name: name}
		}
		for _, imp := range r.modules[module].imports {
			if r.definesClass(imp, name) {
				return model.Class{Module: imp, Name: name}
			}
		}
	} else {
		if r.definesClass(prefix, name) {
			return model.Class{Module: prefix, Name: name}
		}
		for _, imp := range r.modules[module].imports {
			if (imp == prefix || strings.HasSuffix(imp, "."+prefix)) && r.definesClass(imp, name) {
				return model.Class{Module: imp, Name: name}
			}
		}
	}

	if only, ok := r.uniqueDefiner(name); ok {
		return model.Class{Module: only, Name: name}
	}
	return model.Class{Name: name}
}

func (r *Reflector) definesClass(module, name string) bool {
	info, ok := r.modules[module]
	if !ok {
		return false
	}
	for _, c := range info.classes {
		if c.name == name {
			return true
		}
	}
	return false
}

// uniqueDefiner reports the single module defining a class name, if there
// is exactly one in the tree.
func (r *Reflector) uniqueDefiner(name string) (string, bool) {
	found := ""
	for mod, info := range r.modules {
		for _, c := range info.classes {
			if c.name == name {
				if found != "" {
					return "", false
				}
				found = mod
			}
		}
	}
	return found, found != ""
}

// Modules returns all discovered module names, sorted. Useful for
// diagnostics and tests.
func (r *Reflector) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for m := range r.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Warnings returns the non-fatal problems recorded while scanning.
func (r *Reflector) Warnings() []string { return r.warnings }
