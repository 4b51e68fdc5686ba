package scry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scry/internal/model"
)

func setOf(names ...string) *ModuleSet {
	set := model.NewModuleSet(names[0])
	for _, n := range names[1:] {
		set.Add(n)
	}
	return set
}

func TestClassesByModule_DefinedInAttribution(t *testing.T) {
	t.Parallel()
	// app.a re-exports B into its namespace; B is only counted for app.b.
	r := &fakeReflector{
		imports: map[string][]string{"app.a": nil, "app.b": nil},
		classes: map[string][]Class{
			"app.a": {{Module: "app.a", Name: "A"}, {Module: "app.b", Name: "B"}},
			"app.b": {{Module: "app.b", Name: "B"}},
		},
	}

	byModule, err := ClassesByModule(r, setOf("app.a", "app.b"))
	require.NoError(t, err)
	assert.Equal(t, []Class{{Module: "app.a", Name: "A"}}, byModule["app.a"])
	assert.Equal(t, []Class{{Module: "app.b", Name: "B"}}, byModule["app.b"])
}

func TestClassesByModule_OmitsEmptyModules(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{
		imports: map[string][]string{"app": nil, "app.empty": nil},
		classes: map[string][]Class{
			"app": {{Module: "app", Name: "App"}},
		},
	}

	byModule, err := ClassesByModule(r, setOf("app", "app.empty"))
	require.NoError(t, err)
	assert.Contains(t, byModule, "app")
	assert.NotContains(t, byModule, "app.empty")
}

func TestClassesByModule_SortsByName(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{
		imports: map[string][]string{"app": nil},
		classes: map[string][]Class{
			"app": {
				{Module: "app", Name: "Zed"},
				{Module: "app", Name: "Alpha"},
				{Module: "app", Name: "Mid"},
			},
		},
	}

	byModule, err := ClassesByModule(r, setOf("app"))
	require.NoError(t, err)
	require.Len(t, byModule["app"], 3)
	assert.Equal(t, "Alpha", byModule["app"][0].Name)
	assert.Equal(t, "Mid", byModule["app"][1].Name)
	assert.Equal(t, "Zed", byModule["app"][2].Name)
}

func TestClasses_FlattenedAndSorted(t *testing.T) {
	t.Parallel()
	r := &fakeReflector{
		imports: map[string][]string{"app.a": nil, "app.b": nil},
		classes: map[string][]Class{
			"app.a": {{Module: "app.a", Name: "Z"}, {Module: "app.a", Name: "A"}},
			"app.b": {{Module: "app.b", Name: "B"}},
		},
	}

	classes, err := Classes(r, setOf("app.a", "app.b"))
	require.NoError(t, err)
	assert.Equal(t, []Class{
		{Module: "app.a", Name: "A"},
		{Module: "app.a", Name: "Z"},
		{Module: "app.b", Name: "B"},
	}, classes)
}
