package scry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cls is shorthand for an in-scope class in module "m".
func cls(name string) Class { return Class{Module: "m", Name: name} }

// outlineOf flattens a hierarchy into "depth:Name" strings for comparison.
func outlineOf(root *HierarchyNode) []string {
	var out []string
	root.Walk(func(n *HierarchyNode, depth int) {
		out = append(out, string(rune('0'+depth))+":"+n.Class.Name)
	})
	return out
}

func TestBuildHierarchy_EmptyInput(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{}

	root, err := BuildHierarchy(r, nil)
	require.NoError(t, err)
	assert.True(t, root.Class.IsUniversalRoot())
	assert.Empty(t, root.Children)
	assert.Equal(t, 1, root.Count())
}

func TestBuildHierarchy_LinearChain(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{bases: map[Class][]Class{
		cls("B"): {cls("A")},
		cls("C"): {cls("B")},
	}}

	root, err := BuildHierarchy(r, []Class{cls("A"), cls("B"), cls("C")})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:object", "1:A", "2:B", "3:C"}, outlineOf(root))
}

func TestBuildHierarchy_MultiParentReplication(t *testing.T) {
	t.Parallel()
	// D inherits from both B and C; it must appear under each.
	r := &fakeReflector{bases: map[Class][]Class{
		cls("D"): {cls("B"), cls("C")},
	}}

	root, err := BuildHierarchy(r, []Class{cls("B"), cls("C"), cls("D")})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:object", "1:B", "2:D", "1:C", "2:D"}, outlineOf(root))
}

func TestBuildHierarchy_ReplicationCopiesSubtrees(t *testing.T) {
	t.Parallel()
	// E hangs off D, so E is replicated along with D.
	r := &fakeReflector{bases: map[Class][]Class{
		cls("D"): {cls("B"), cls("C")},
		cls("E"): {cls("D")},
	}}

	root, err := BuildHierarchy(r, []Class{cls("B"), cls("C"), cls("D"), cls("E")})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"0:object", "1:B", "2:D", "3:E", "1:C", "2:D", "3:E"},
		outlineOf(root))
}

func TestBuildHierarchy_OutOfScopeAncestorElided(t *testing.T) {
	t.Parallel()
	// Mid is not in the input set: C attaches to A, Mid's nearest in-scope
	// ancestor.
	r := &fakeReflector{bases: map[Class][]Class{
		cls("Mid"): {cls("A")},
		cls("C"):   {cls("Mid")},
	}}

	root, err := BuildHierarchy(r, []Class{cls("A"), cls("C")})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:object", "1:A", "2:C"}, outlineOf(root))
}

func TestBuildHierarchy_ExternalBaseAttachesToRoot(t *testing.T) {
	t.Parallel()
	// Thread is outside the analyzed tree (empty module): the climb stops
	// there and Worker attaches to the universal root.
	r := &fakeReflector{bases: map[Class][]Class{
		cls("Worker"): {{Name: "Thread"}},
	}}

	root, err := BuildHierarchy(r, []Class{cls("Worker")})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:object", "1:Worker"}, outlineOf(root))
}

func TestBuildHierarchy_DuplicateAttachmentsCollapse(t *testing.T) {
	t.Parallel()
	// Both of C's out-of-scope bases elide to A; C appears under A once.
	r := &fakeReflector{bases: map[Class][]Class{
		cls("Left"):  {cls("A")},
		cls("Right"): {cls("A")},
		cls("C"):     {cls("Left"), cls("Right")},
	}}

	root, err := BuildHierarchy(r, []Class{cls("A"), cls("C")})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:object", "1:A", "2:C"}, outlineOf(root))
}

func TestBuildHierarchy_ChildrenSortedByName(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{}

	root, err := BuildHierarchy(r, []Class{cls("Gamma"), cls("Alpha"), cls("Beta")})
	require.NoError(t, err)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "Alpha", root.Children[0].Class.Name)
	assert.Equal(t, "Beta", root.Children[1].Class.Name)
	assert.Equal(t, "Gamma", root.Children[2].Class.Name)
}

func TestBuildHierarchy_SameNameDifferentModules(t *testing.T) {
	t.Parallel()
	a := Class{Module: "pkg.a", Name: "Config"}
	b := Class{Module: "pkg.b", Name: "Config"}
	r := &fakeReflector{}

	root, err := BuildHierarchy(r, []Class{b, a})
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, a, root.Children[0].Class)
	assert.Equal(t, b, root.Children[1].Class)
}
