package scry

import "github.com/jward/scry/internal/model"

// Public type aliases for internal model types used throughout the API.
// These are Go type aliases (=) — identical to the internal types at compile
// time, so internal Reflector implementations satisfy [Reflector] directly.

type Class = model.Class
type ModuleSet = model.ModuleSet
type HierarchyNode = model.HierarchyNode

// UniversalRoot returns the implicit common ancestor of every class.
func UniversalRoot() Class { return model.UniversalRoot() }
