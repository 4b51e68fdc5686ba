package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scry/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeSource is an in-memory index source for SaveModuleSet.
type fakeSource struct {
	imports map[string][]string
	classes map[string][]model.Class
	bases   map[model.Class][]model.Class
}

func (f *fakeSource) Imports(module string) ([]string, error) {
	return f.imports[module], nil
}

func (f *fakeSource) Classes(module string) ([]model.Class, error) {
	return f.classes[module], nil
}

func (f *fakeSource) Bases(c model.Class) ([]model.Class, error) {
	return f.bases[c], nil
}

func testSource() (*model.ModuleSet, *fakeSource) {
	set := model.NewModuleSet("app")
	set.Add("app.models")
	set.Warn("import \"os\" of app does not resolve to a module")

	base := model.Class{Module: "app.models", Name: "Base"}
	impl := model.Class{Module: "app.models", Name: "Impl"}
	src := &fakeSource{
		imports: map[string][]string{
			"app":        {"app.models", "os"},
			"app.models": nil,
		},
		classes: map[string][]model.Class{
			"app.models": {base, impl},
		},
		bases: map[model.Class][]model.Class{
			impl: {base, {Name: "Thread"}},
		},
	}
	return set, src
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"meta", "modules", "imports", "classes", "bases", "warnings", "attributes"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

// =============================================================================
// Index persistence
// =============================================================================

func TestSaveModuleSet_Roundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	set, src := testSource()
	require.NoError(t, s.SaveModuleSet(set, src))

	loaded, err := s.ModuleSet()
	require.NoError(t, err)
	assert.Equal(t, "app", loaded.Root())
	assert.Equal(t, []string{"app", "app.models"}, loaded.Names())
	require.Len(t, loaded.Warnings(), 1)
	assert.Contains(t, loaded.Warnings()[0], `"os"`)
}

func TestSaveModuleSet_ReplacesPreviousIndex(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	set, src := testSource()
	require.NoError(t, s.SaveModuleSet(set, src))

	replacement := model.NewModuleSet("other")
	require.NoError(t, s.SaveModuleSet(replacement, &fakeSource{}))

	loaded, err := s.ModuleSet()
	require.NoError(t, err)
	assert.Equal(t, "other", loaded.Root())
	assert.Equal(t, []string{"other"}, loaded.Names())
	assert.Empty(t, loaded.Warnings())
}

func TestModuleSet_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.ModuleSet()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReflector_ServesSavedIndex(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	set, src := testSource()
	require.NoError(t, s.SaveModuleSet(set, src))

	r, err := s.Reflector()
	require.NoError(t, err)

	assert.True(t, r.HasModule("app"))
	assert.False(t, r.HasModule("os"))

	imports, err := r.Imports("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.models", "os"}, imports)

	classes, err := r.Classes("app.models")
	require.NoError(t, err)
	assert.Equal(t, []model.Class{
		{Module: "app.models", Name: "Base"},
		{Module: "app.models", Name: "Impl"},
	}, classes)

	bases, err := r.Bases(model.Class{Module: "app.models", Name: "Impl"})
	require.NoError(t, err)
	assert.Equal(t, []model.Class{
		{Module: "app.models", Name: "Base"},
		{Name: "Thread"},
	}, bases)

	// Classes outside the saved index have no readable bases.
	bases, err = r.Bases(model.Class{Name: "Thread"})
	require.NoError(t, err)
	assert.Nil(t, bases)
}

func TestReflector_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Reflector()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// =============================================================================
// Snapshots
// =============================================================================

func TestSaveSnapshot_Roundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rows := []AttributeRow{
		{Class: "Point", Attribute: "Y", Descriptor: `{"kind":"primitive","name":"int"}`, Observations: 2},
		{Class: "Point", Attribute: "X", Descriptor: `{"kind":"primitive","name":"int"}`, Observations: 3},
	}
	require.NoError(t, s.SaveSnapshot(rows))

	loaded, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Ordered by (class, attribute) regardless of insert order.
	assert.Equal(t, "X", loaded[0].Attribute)
	assert.Equal(t, 3, loaded[0].Observations)
	assert.Equal(t, "Y", loaded[1].Attribute)
}

func TestSaveSnapshot_ReplacesPrevious(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveSnapshot([]AttributeRow{
		{Class: "Old", Attribute: "A", Descriptor: `{"kind":"unknown"}`},
	}))
	require.NoError(t, s.SaveSnapshot([]AttributeRow{
		{Class: "New", Attribute: "B", Descriptor: `{"kind":"unknown"}`},
	}))

	loaded, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "New", loaded[0].Class)
}

func TestSnapshot_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Snapshot()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
