package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/jward/scry/internal/model"
)

// sourceReflector is the slice of the scry Reflector interface the index
// needs while saving. Declared here so the store does not import the root
// package.
type sourceReflector interface {
	Imports(module string) ([]string, error)
	Classes(module string) ([]model.Class, error)
	Bases(c model.Class) ([]model.Class, error)
}

// SaveModuleSet persists a discovered module set together with the imports,
// classes, and base relations read from r. Any previously saved index is
// replaced in the same transaction.
func (s *Store) SaveModuleSet(set *model.ModuleSet, r sourceReflector) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save index: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM modules",
		"DELETE FROM imports",
		"DELETE FROM classes",
		"DELETE FROM bases",
		"DELETE FROM warnings",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("save index: clear: %w", err)
		}
	}
	if _, err := tx.Exec(
		"INSERT INTO meta (key, value) VALUES ('root', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		set.Root(),
	); err != nil {
		return fmt.Errorf("save index: root: %w", err)
	}

	for _, name := range set.Names() {
		if _, err := tx.Exec("INSERT INTO modules (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("save index: module %s: %w", name, err)
		}

		imports, err := r.Imports(name)
		if err != nil {
			return fmt.Errorf("save index: imports of %s: %w", name, err)
		}
		for i, target := range imports {
			if _, err := tx.Exec(
				"INSERT INTO imports (module, target, ordinal) VALUES (?, ?, ?)",
				name, target, i,
			); err != nil {
				return fmt.Errorf("save index: import %s -> %s: %w", name, target, err)
			}
		}

		classes, err := r.Classes(name)
		if err != nil {
			return fmt.Errorf("save index: classes of %s: %w", name, err)
		}
		for _, c := range classes {
			if _, err := tx.Exec(
				"INSERT INTO classes (module, name) VALUES (?, ?)",
				c.Module, c.Name,
			); err != nil {
				return fmt.Errorf("save index: class %s: %w", c.QualifiedName(), err)
			}
			bases, err := r.Bases(c)
			if err != nil {
				return fmt.Errorf("save index: bases of %s: %w", c.QualifiedName(), err)
			}
			for i, b := range bases {
				if _, err := tx.Exec(
					"INSERT INTO bases (class_module, class_name, ordinal, base_module, base_name) VALUES (?, ?, ?, ?, ?)",
					c.Module, c.Name, i, b.Module, b.Name,
				); err != nil {
					return fmt.Errorf("save index: base of %s: %w", c.QualifiedName(), err)
				}
			}
		}
	}

	for _, msg := range set.Warnings() {
		if _, err := tx.Exec("INSERT INTO warnings (message) VALUES (?)", msg); err != nil {
			return fmt.Errorf("save index: warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save index: commit: %w", err)
	}
	return nil
}

// ModuleSet reconstructs the saved module set. Returns ErrNotFound when no
// index has been saved.
func (s *Store) ModuleSet() (*model.ModuleSet, error) {
	var root string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'root'").Scan(&root)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load module set: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load module set: root: %w", err)
	}

	set := model.NewModuleSet(root)
	rows, err := s.db.Query("SELECT name FROM modules")
	if err != nil {
		return nil, fmt.Errorf("load module set: modules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("load module set: scan: %w", err)
		}
		set.Add(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load module set: %w", err)
	}

	wrows, err := s.db.Query("SELECT message FROM warnings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load module set: warnings: %w", err)
	}
	defer wrows.Close()
	for wrows.Next() {
		var msg string
		if err := wrows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("load module set: scan warning: %w", err)
		}
		set.Warn(msg)
	}
	if err := wrows.Err(); err != nil {
		return nil, fmt.Errorf("load module set: %w", err)
	}
	return set, nil
}

// Reflector serves the saved index. It satisfies the root package's
// Reflector interface, so discovery and hierarchy building run off the
// database exactly as they would off live sources.
type Reflector struct {
	modules map[string]*storedModule
}

type storedModule struct {
	imports []string
	classes []model.Class
	bases   map[string][]model.Class // class name -> ordered bases
}

// Reflector loads the saved index into memory. Returns ErrNotFound when no
// index has been saved.
func (s *Store) Reflector() (*Reflector, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM modules").Scan(&n); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("load index: %w", ErrNotFound)
	}

	r := &Reflector{modules: make(map[string]*storedModule, n)}
	get := func(name string) *storedModule {
		m := r.modules[name]
		if m == nil {
			m = &storedModule{bases: make(map[string][]model.Class)}
			r.modules[name] = m
		}
		return m
	}

	rows, err := s.db.Query("SELECT name FROM modules")
	if err != nil {
		return nil, fmt.Errorf("load index: modules: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load index: scan module: %w", err)
		}
		get(name)
	}
	rows.Close()

	rows, err = s.db.Query("SELECT module, target FROM imports ORDER BY module, ordinal")
	if err != nil {
		return nil, fmt.Errorf("load index: imports: %w", err)
	}
	for rows.Next() {
		var module, target string
		if err := rows.Scan(&module, &target); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load index: scan import: %w", err)
		}
		m := get(module)
		m.imports = append(m.imports, target)
	}
	rows.Close()

	rows, err = s.db.Query("SELECT module, name FROM classes ORDER BY module, name")
	if err != nil {
		return nil, fmt.Errorf("load index: classes: %w", err)
	}
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.Module, &c.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load index: scan class: %w", err)
		}
		m := get(c.Module)
		m.classes = append(m.classes, c)
	}
	rows.Close()

	rows, err = s.db.Query(
		"SELECT class_module, class_name, base_module, base_name FROM bases ORDER BY class_module, class_name, ordinal")
	if err != nil {
		return nil, fmt.Errorf("load index: bases: %w", err)
	}
	for rows.Next() {
		var classModule, className string
		var b model.Class
		if err := rows.Scan(&classModule, &className, &b.Module, &b.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load index: scan base: %w", err)
		}
		m := get(classModule)
		m.bases[className] = append(m.bases[className], b)
	}
	rows.Close()

	return r, nil
}

// HasModule reports whether the saved index contains the module.
func (r *Reflector) HasModule(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// Imports returns the saved import targets of a module, in discovery order.
func (r *Reflector) Imports(module string) ([]string, error) {
	m, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("store: unknown module %q", module)
	}
	return append([]string(nil), m.imports...), nil
}

// Classes returns the saved classes of a module.
func (r *Reflector) Classes(module string) ([]model.Class, error) {
	m, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("store: unknown module %q", module)
	}
	return append([]model.Class(nil), m.classes...), nil
}

// Bases returns the saved direct bases of c. Classes outside the saved
// index have no readable bases.
func (r *Reflector) Bases(c model.Class) ([]model.Class, error) {
	m, ok := r.modules[c.Module]
	if !ok {
		return nil, nil
	}
	return append([]model.Class(nil), m.bases[c.Name]...), nil
}

// Modules returns all saved module names, sorted.
func (r *Reflector) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for m := range r.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
