package scry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteModuleOutline(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{
		imports: map[string][]string{"app": nil, "app.shapes": nil, "app.empty": nil},
		classes: map[string][]Class{
			"app":        {{Module: "app", Name: "App"}},
			"app.shapes": {{Module: "app.shapes", Name: "Square"}, {Module: "app.shapes", Name: "Circle"}},
		},
	}
	set := setOf("app", "app.shapes", "app.empty")

	var buf bytes.Buffer
	require.NoError(t, WriteModuleOutline(&buf, r, set))

	want := "app\n" +
		"    App\n" +
		"app.shapes\n" +
		"    Circle\n" +
		"    Square\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteHierarchyOutline_ReplicatesMultiParentClasses(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{bases: map[Class][]Class{
		cls("Bar"):  {cls("Foo")},
		cls("Baz"):  {cls("Foo")},
		cls("Quux"): {cls("Bar"), cls("Baz")},
	}}
	root, err := BuildHierarchy(r, []Class{cls("Foo"), cls("Bar"), cls("Baz"), cls("Quux")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHierarchyOutline(&buf, root))

	want := "object\n" +
		"    Foo\n" +
		"        Bar\n" +
		"            Quux\n" +
		"        Baz\n" +
		"            Quux\n"
	assert.Equal(t, want, buf.String())
}
