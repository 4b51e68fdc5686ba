package scry

import "reflect"

// Primitive kind names produced by classification. CatchAll covers values
// whose runtime type is neither primitive, container, nor class-like, so
// tracking a large live system never aborts on an exotic value.
const (
	PrimitiveBool    = "bool"
	PrimitiveInt     = "int"
	PrimitiveFloat   = "float"
	PrimitiveComplex = "complex"
	PrimitiveString  = "string"
	PrimitiveBytes   = "bytes"
	CatchAll         = "object"
)

// classify maps a runtime value to a descriptor leaf: a primitive kind, a
// ClassRef for tracked classes (or the nearest tracked embedded ancestor),
// or a container whose element shapes are classified recursively. Absent
// values (nil pointers, nil interfaces, missing attributes) classify as
// Optional[Unknown], which Merge folds into an Optional wrapper.
//
// classify never walks object graphs; recursion stops at class references.
func (t *Tracker) classify(v reflect.Value) *Descriptor {
	if !v.IsValid() {
		return Optional(Unknown())
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return Optional(Unknown())
		}
		return t.classify(v.Elem())

	case reflect.Bool:
		return Primitive(PrimitiveBool)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Primitive(PrimitiveInt)
	case reflect.Float32, reflect.Float64:
		return Primitive(PrimitiveFloat)
	case reflect.Complex64, reflect.Complex128:
		return Primitive(PrimitiveComplex)
	case reflect.String:
		return Primitive(PrimitiveString)

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Primitive(PrimitiveBytes)
		}
		return SequenceOf(t.classifyElements(v))

	case reflect.Map:
		if isSetValued(v.Type()) {
			return SetOf(t.classifyKeys(v))
		}
		return MappingOf(t.classifyKeys(v), t.classifyValues(v))

	case reflect.Struct:
		if name, ok := t.trackedName(v.Type()); ok {
			return ClassRef(name)
		}
		return Primitive(CatchAll)

	default:
		// Func, Chan, UnsafePointer, Uintptr.
		return Primitive(CatchAll)
	}
}

// isSetValued reports whether a map type is a conventional set
// (map[K]struct{}).
func isSetValued(rt reflect.Type) bool {
	elem := rt.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0
}

// classifyElements folds the element-wise union of a sequence's members
// into one descriptor. Empty sequences contribute Unknown.
func (t *Tracker) classifyElements(v reflect.Value) *Descriptor {
	elem := Unknown()
	n := v.Len()
	if t.maxElements > 0 && n > t.maxElements {
		n = t.maxElements
	}
	for i := 0; i < n; i++ {
		elem = Merge(elem, t.classify(v.Index(i)))
	}
	return elem
}

func (t *Tracker) classifyKeys(v reflect.Value) *Descriptor {
	key := Unknown()
	taken := 0
	for it := v.MapRange(); it.Next(); {
		if t.maxElements > 0 && taken >= t.maxElements {
			break
		}
		key = Merge(key, t.classify(it.Key()))
		taken++
	}
	return key
}

func (t *Tracker) classifyValues(v reflect.Value) *Descriptor {
	val := Unknown()
	taken := 0
	for it := v.MapRange(); it.Next(); {
		if t.maxElements > 0 && taken >= t.maxElements {
			break
		}
		val = Merge(val, t.classify(it.Value()))
		taken++
	}
	return val
}

// trackedName resolves a struct type to the class name it is tracked
// under. An untracked type resolves to its nearest tracked embedded
// ancestor, searched breadth-first, so subclasses observed through a base
// registration still record as class references.
func (t *Tracker) trackedName(rt reflect.Type) (string, bool) {
	if name, ok := t.classes[rt]; ok {
		return name, true
	}
	visited := map[reflect.Type]bool{rt: true}
	queue := embeddedStructs(rt)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if name, ok := t.classes[cur]; ok {
			return name, true
		}
		queue = append(queue, embeddedStructs(cur)...)
	}
	return "", false
}

// embeddedStructs returns the struct types embedded in rt, dereferencing
// embedded pointers. These are the Go analogue of declared base classes.
func embeddedStructs(rt reflect.Type) []reflect.Type {
	if rt.Kind() != reflect.Struct {
		return nil
	}
	var out []reflect.Type
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			out = append(out, ft)
		}
	}
	return out
}
