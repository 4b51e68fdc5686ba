package scry

// Merge combines two descriptors into the smallest descriptor covering both.
//
// Unknown is the identity element. Matching primitives, class references,
// and same-kind containers combine in place (container elements and keys
// merge recursively); everything else widens to a union. Absence observed on
// either side hoists to a single Optional wrapper around the merged inner
// descriptor, so Optional never nests and never appears inside a union.
//
// Merge is associative and commutative and never mutates its arguments.
func Merge(a, b *Descriptor) *Descriptor {
	a, b = orUnknown(a), orUnknown(b)
	if a.Kind == KindUnknown {
		return b
	}
	if b.Kind == KindUnknown {
		return a
	}

	// Hoist optionality so it wraps the final merged shape exactly once.
	if a.Kind == KindOptional || b.Kind == KindOptional {
		return Optional(Merge(unwrapOptional(a), unwrapOptional(b)))
	}

	if a.Kind == KindUnion || b.Kind == KindUnion {
		alts := append([]*Descriptor(nil), alternatives(a)...)
		for _, alt := range alternatives(b) {
			alts = foldAlternative(alts, alt)
		}
		return union(alts)
	}

	if m, ok := combine(a, b); ok {
		return m
	}
	return union(foldAlternative([]*Descriptor{a}, b))
}

// combine merges two non-union, non-optional descriptors without widening
// to a union. Reports false when the pair is incompatible.
func combine(a, b *Descriptor) (*Descriptor, bool) {
	switch {
	case a.Kind == KindPrimitive && b.Kind == KindPrimitive && a.Name == b.Name:
		return a, true
	case a.Kind == KindClassRef && b.Kind == KindClassRef && a.Name == b.Name:
		return a, true
	case a.Kind == KindContainer && b.Kind == KindContainer && a.Container == b.Container:
		merged := &Descriptor{
			Kind:      KindContainer,
			Container: a.Container,
			Elem:      Merge(a.Elem, b.Elem),
		}
		// Only a key-value mapping carries a key shape; a stray Key on any
		// other container kind is dropped to keep the result canonical.
		if a.Container == ContainerMapping {
			merged.Key = Merge(a.Key, b.Key)
		}
		return merged, true
	}
	return nil, false
}

// foldAlternative adds d to a union's alternative list, first trying to
// combine it with each existing member so near-duplicates (notably
// same-kind containers) merge instead of accumulating.
func foldAlternative(alts []*Descriptor, d *Descriptor) []*Descriptor {
	for i, alt := range alts {
		if m, ok := combine(alt, d); ok {
			out := append([]*Descriptor(nil), alts...)
			out[i] = m
			return out
		}
	}
	return append(alts, d)
}

// union builds a canonical union from alternatives, collapsing singletons.
func union(alts []*Descriptor) *Descriptor {
	if len(alts) == 1 {
		return alts[0]
	}
	sorted := append([]*Descriptor(nil), alts...)
	sortAlts(sorted)
	return &Descriptor{Kind: KindUnion, Alts: sorted}
}

// alternatives views d as a list of union members.
func alternatives(d *Descriptor) []*Descriptor {
	if d.Kind == KindUnion {
		return d.Alts
	}
	return []*Descriptor{d}
}

func unwrapOptional(d *Descriptor) *Descriptor {
	if d.Kind == KindOptional {
		return d.Elem
	}
	return d
}
