package scry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DescriptorKind tags the variant held by a Descriptor.
type DescriptorKind int

const (
	// KindUnknown marks a descriptor with no observations behind it. It is
	// the identity element for Merge.
	KindUnknown DescriptorKind = iota
	// KindPrimitive is a named scalar kind ("int", "string", ...), or the
	// catch-all "object" for values of unrecognized runtime type.
	KindPrimitive
	// KindClassRef is a reference to a tracked class. The class's own
	// structure is tracked separately, per class, never inline.
	KindClassRef
	// KindContainer is a homogeneous-per-descriptor container; element (and
	// for mappings, key) shapes merge recursively.
	KindContainer
	// KindOptional wraps a non-Optional inner descriptor when at least one
	// observation was absent or nil.
	KindOptional
	// KindUnion holds two or more mutually incompatible alternatives. A
	// union never directly contains another union.
	KindUnion
)

var descriptorKindNames = map[DescriptorKind]string{
	KindUnknown:   "unknown",
	KindPrimitive: "primitive",
	KindClassRef:  "class",
	KindContainer: "container",
	KindOptional:  "optional",
	KindUnion:     "union",
}

func (k DescriptorKind) String() string {
	if n, ok := descriptorKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("DescriptorKind(%d)", int(k))
}

// ContainerKind distinguishes the container shapes a descriptor can take.
type ContainerKind int

const (
	// ContainerSequence is an ordered collection (slice, array, list).
	ContainerSequence ContainerKind = iota
	// ContainerSet is an unordered collection of unique elements.
	ContainerSet
	// ContainerMappingValues is a mapping observed through its values only.
	ContainerMappingValues
	// ContainerMapping is a mapping with both key and value shapes tracked.
	ContainerMapping
)

var containerKindNames = map[ContainerKind]string{
	ContainerSequence:      "sequence",
	ContainerSet:           "set",
	ContainerMappingValues: "mapping-values",
	ContainerMapping:       "mapping",
}

func (k ContainerKind) String() string {
	if n, ok := containerKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ContainerKind(%d)", int(k))
}

// Descriptor is a structural type description generalized over observed
// values: a tagged variant over unknown, primitive, class reference,
// container, optional, and union. Descriptors are immutable once built;
// Merge returns new values and never mutates its inputs.
type Descriptor struct {
	Kind      DescriptorKind
	Name      string        // primitive kind or class name
	Container ContainerKind // valid when Kind == KindContainer
	Key       *Descriptor   // mapping key shape, nil otherwise
	Elem      *Descriptor   // container element, or optional inner
	Alts      []*Descriptor // union alternatives, canonically sorted
}

// Unknown returns the no-observations descriptor.
func Unknown() *Descriptor { return &Descriptor{Kind: KindUnknown} }

// Primitive returns a descriptor for a named scalar kind.
func Primitive(name string) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Name: name}
}

// ClassRef returns a descriptor referencing a tracked class by name.
func ClassRef(name string) *Descriptor {
	return &Descriptor{Kind: KindClassRef, Name: name}
}

// SequenceOf returns a sequence container descriptor.
func SequenceOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindContainer, Container: ContainerSequence, Elem: orUnknown(elem)}
}

// SetOf returns a set container descriptor.
func SetOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindContainer, Container: ContainerSet, Elem: orUnknown(elem)}
}

// MappingOf returns a key-value mapping descriptor.
func MappingOf(key, val *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindContainer, Container: ContainerMapping, Key: orUnknown(key), Elem: orUnknown(val)}
}

// MappingOfValues returns a mapping descriptor tracked through values only.
func MappingOfValues(val *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindContainer, Container: ContainerMappingValues, Elem: orUnknown(val)}
}

// Optional wraps d so that absence is part of the description. Wrapping is
// idempotent: Optional(Optional(x)) == Optional(x).
func Optional(d *Descriptor) *Descriptor {
	d = orUnknown(d)
	if d.Kind == KindOptional {
		return d
	}
	return &Descriptor{Kind: KindOptional, Elem: d}
}

func orUnknown(d *Descriptor) *Descriptor {
	if d == nil {
		return Unknown()
	}
	return d
}

// String renders the descriptor grammar: T, Optional[T], Union[T1, T2, ...],
// Sequence[T], Set[T], Mapping[V] and Mapping[K, V]. Class names render as
// bare identifiers. The rendering is canonical: two descriptors are
// equivalent exactly when their strings match.
func (d *Descriptor) String() string {
	if d == nil {
		return "Unknown"
	}
	switch d.Kind {
	case KindUnknown:
		return "Unknown"
	case KindPrimitive, KindClassRef:
		return d.Name
	case KindOptional:
		return "Optional[" + d.Elem.String() + "]"
	case KindContainer:
		switch d.Container {
		case ContainerSequence:
			return "Sequence[" + d.Elem.String() + "]"
		case ContainerSet:
			return "Set[" + d.Elem.String() + "]"
		case ContainerMappingValues:
			return "Mapping[" + d.Elem.String() + "]"
		case ContainerMapping:
			return "Mapping[" + d.Key.String() + ", " + d.Elem.String() + "]"
		}
	case KindUnion:
		parts := make([]string, len(d.Alts))
		for i, a := range d.Alts {
			parts[i] = a.String()
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	}
	return "Unknown"
}

// Equal reports structural equivalence via the canonical rendering.
func (d *Descriptor) Equal(other *Descriptor) bool {
	return d.String() == other.String()
}

// descriptorJSON is the wire form for descriptor persistence.
type descriptorJSON struct {
	Kind      string        `json:"kind"`
	Name      string        `json:"name,omitempty"`
	Container string        `json:"container,omitempty"`
	Key       *Descriptor   `json:"key,omitempty"`
	Elem      *Descriptor   `json:"elem,omitempty"`
	Alts      []*Descriptor `json:"alts,omitempty"`
}

// MarshalJSON encodes the descriptor as a kind-tagged object.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	out := descriptorJSON{Kind: d.Kind.String(), Name: d.Name, Key: d.Key, Elem: d.Elem, Alts: d.Alts}
	if d.Kind == KindContainer {
		out.Container = d.Container.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a kind-tagged object, re-normalizing unions through
// Merge so the flattening invariants hold even for hand-edited input.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var in descriptorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "unknown":
		*d = Descriptor{Kind: KindUnknown}
	case "primitive":
		*d = Descriptor{Kind: KindPrimitive, Name: in.Name}
	case "class":
		*d = Descriptor{Kind: KindClassRef, Name: in.Name}
	case "optional":
		*d = *Optional(in.Elem)
	case "container":
		kind, ok := containerKindFromName(in.Container)
		if !ok {
			return fmt.Errorf("descriptor: unknown container kind %q", in.Container)
		}
		*d = Descriptor{Kind: KindContainer, Container: kind, Elem: orUnknown(in.Elem)}
		if kind == ContainerMapping {
			d.Key = orUnknown(in.Key)
		}
	case "union":
		merged := Unknown()
		for _, a := range in.Alts {
			merged = Merge(merged, a)
		}
		*d = *merged
	default:
		return fmt.Errorf("descriptor: unknown kind %q", in.Kind)
	}
	return nil
}

func containerKindFromName(name string) (ContainerKind, bool) {
	for k, n := range containerKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// sortAlts orders union alternatives canonically by rendering.
func sortAlts(alts []*Descriptor) {
	sort.Slice(alts, func(i, j int) bool { return alts[i].String() < alts[j].String() })
}
