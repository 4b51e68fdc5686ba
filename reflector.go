package scry

import "fmt"

// Reflector is the narrow capability interface through which scry reads a
// host program's static structure. Implementations enumerate a runtime's (or
// a source tree's) modules, their top-level import declarations, the classes
// defined in them, and each class's declared direct bases.
//
// Only statically visible, module-top-level import declarations are
// reported; imports inside function bodies or behind conditions are not
// observed.
type Reflector interface {
	// HasModule reports whether name resolves to a concrete module.
	HasModule(name string) bool

	// Imports returns the fully-qualified names of the modules imported at
	// the top level of the named module.
	Imports(module string) ([]string, error)

	// Classes returns the classes defined (not merely imported) in the
	// named module.
	Classes(module string) ([]Class, error)

	// Bases returns the declared direct bases of c, in declaration order.
	// Bases outside the analyzed tree carry an empty Module. The universal
	// root is implicit and never returned.
	Bases(c Class) ([]Class, error)
}

// ResolutionError reports a root module that could not be resolved to a
// concrete module. It indicates a caller configuration mistake, not a
// recoverable condition.
type ResolutionError struct {
	Module string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve module %q: %v", e.Module, e.Err)
	}
	return fmt.Sprintf("resolve module %q: no such module", e.Module)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
