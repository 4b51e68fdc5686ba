package scry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_UnknownIsIdentity(t *testing.T) {
	t.Parallel()
	for _, d := range []*Descriptor{
		Primitive("int"),
		ClassRef("Foo"),
		SequenceOf(Primitive("int")),
		Optional(Primitive("string")),
		Merge(Primitive("int"), Primitive("string")),
	} {
		assert.Equal(t, d.String(), Merge(Unknown(), d).String())
		assert.Equal(t, d.String(), Merge(d, Unknown()).String())
		assert.Equal(t, d.String(), Merge(nil, d).String())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()
	for _, d := range []*Descriptor{
		Primitive("int"),
		ClassRef("Foo"),
		MappingOf(Primitive("string"), ClassRef("Foo")),
		Optional(Primitive("int")),
		Merge(Primitive("int"), Primitive("string")),
	} {
		assert.Equal(t, d.String(), Merge(d, d).String())
	}
}

func TestMerge_SamePrimitive(t *testing.T) {
	t.Parallel()
	got := Merge(Primitive("int"), Primitive("int"))
	assert.Equal(t, "int", got.String())
}

func TestMerge_DifferentPrimitivesWiden(t *testing.T) {
	t.Parallel()
	got := Merge(Primitive("string"), Primitive("int"))
	assert.Equal(t, "Union[int, string]", got.String())
}

func TestMerge_ClassRefs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Foo", Merge(ClassRef("Foo"), ClassRef("Foo")).String())
	assert.Equal(t, "Union[Bar, Foo]", Merge(ClassRef("Foo"), ClassRef("Bar")).String())
}

func TestMerge_SameKindContainersMergeElementWise(t *testing.T) {
	t.Parallel()
	got := Merge(SequenceOf(Primitive("int")), SequenceOf(Primitive("string")))
	assert.Equal(t, "Sequence[Union[int, string]]", got.String())

	got = Merge(
		MappingOf(Primitive("string"), Primitive("int")),
		MappingOf(Primitive("int"), Primitive("int")),
	)
	assert.Equal(t, "Mapping[Union[int, string], int]", got.String())
}

func TestMerge_DifferentContainerKindsWiden(t *testing.T) {
	t.Parallel()
	got := Merge(SequenceOf(Primitive("int")), SetOf(Primitive("int")))
	assert.Equal(t, "Union[Sequence[int], Set[int]]", got.String())
}

func TestMerge_ValueOnlyMappingStaysKeyless(t *testing.T) {
	t.Parallel()
	// A hand-built value-only mapping can carry a Key the constructors never
	// produce; merging must not let it leak into the result.
	stray := &Descriptor{
		Kind:      KindContainer,
		Container: ContainerMappingValues,
		Key:       Primitive("string"),
		Elem:      Primitive("int"),
	}

	got := Merge(stray, MappingOfValues(Primitive("bool")))
	assert.Nil(t, got.Key)
	assert.Equal(t, "Mapping[Union[bool, int]]", got.String())
}

func TestMerge_EmptyContainerAdoptsElementShape(t *testing.T) {
	t.Parallel()
	// An empty sequence contributes Sequence[Unknown]; merging with a
	// populated one fills in the element.
	got := Merge(SequenceOf(nil), SequenceOf(Primitive("int")))
	assert.Equal(t, "Sequence[int]", got.String())
}

func TestMerge_OptionalHoisting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b *Descriptor
		want string
	}{
		{"optional absorbs same inner", Optional(Primitive("int")), Primitive("int"), "Optional[int]"},
		{"optional with new inner", Optional(Primitive("int")), Primitive("string"), "Optional[Union[int, string]]"},
		{"both optional", Optional(Primitive("int")), Optional(Primitive("string")), "Optional[Union[int, string]]"},
		{"optional with union", Optional(Primitive("int")), Merge(Primitive("string"), Primitive("float")), "Optional[Union[float, int, string]]"},
		{"optional container", Optional(SequenceOf(Primitive("int"))), SequenceOf(Primitive("string")), "Optional[Sequence[Union[int, string]]]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Merge(tt.a, tt.b).String())
			assert.Equal(t, tt.want, Merge(tt.b, tt.a).String())
		})
	}
}

func TestMerge_UnionsFlatten(t *testing.T) {
	t.Parallel()
	ab := Merge(Primitive("int"), Primitive("string"))
	cd := Merge(Primitive("float"), ClassRef("Foo"))

	got := Merge(ab, cd)
	assert.Equal(t, "Union[Foo, float, int, string]", got.String())
	// No nested unions.
	assert.Equal(t, KindUnion, got.Kind)
	for _, alt := range got.Alts {
		assert.NotEqual(t, KindUnion, alt.Kind)
		assert.NotEqual(t, KindOptional, alt.Kind)
	}
}

func TestMerge_UnionAbsorbsCompatibleContainer(t *testing.T) {
	t.Parallel()
	// A sequence joining a union that already holds a sequence merges into
	// that member instead of accumulating a second sequence alternative.
	u := Merge(Primitive("int"), SequenceOf(Primitive("int")))
	got := Merge(u, SequenceOf(Primitive("string")))
	assert.Equal(t, "Union[Sequence[Union[int, string]], int]", got.String())
}

func TestMerge_AssociativeAndCommutative(t *testing.T) {
	t.Parallel()
	triples := [][3]*Descriptor{
		{Primitive("int"), Primitive("string"), Primitive("float")},
		{Primitive("int"), Optional(Primitive("string")), ClassRef("Foo")},
		{SequenceOf(Primitive("int")), SequenceOf(Primitive("string")), SetOf(Primitive("int"))},
		{Optional(SequenceOf(nil)), SequenceOf(ClassRef("Foo")), Unknown()},
		{
			MappingOf(Primitive("string"), Primitive("int")),
			MappingOf(Primitive("string"), ClassRef("Foo")),
			Optional(Primitive("int")),
		},
		{
			Merge(Primitive("int"), Primitive("string")),
			Merge(Primitive("float"), ClassRef("Foo")),
			Optional(ClassRef("Bar")),
		},
	}
	for _, tr := range triples {
		a, b, c := tr[0], tr[1], tr[2]

		assert.Equal(t, Merge(a, b).String(), Merge(b, a).String(),
			"commutativity of %s and %s", a, b)
		assert.Equal(t,
			Merge(Merge(a, b), c).String(),
			Merge(a, Merge(b, c)).String(),
			"associativity of %s, %s, %s", a, b, c)
	}
}

func TestMerge_NeverMutatesInputs(t *testing.T) {
	t.Parallel()
	u := Merge(Primitive("int"), SequenceOf(Primitive("int")))
	before := u.String()

	Merge(u, SequenceOf(Primitive("string")))
	assert.Equal(t, before, u.String())
}
