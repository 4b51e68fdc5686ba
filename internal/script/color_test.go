package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/scry/internal/model"
)

func TestColorFunc_UsesNameAndModuleGlobals(t *testing.T) {
	t.Parallel()
	source := `
color := ""
if module == "app.db" {
    color = "blue"
}
if name == "Hot" {
    color = "red"
}
color
`

	color, err := ColorFunc(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, "blue", color(model.Class{Module: "app.db", Name: "Row"}))
	assert.Equal(t, "red", color(model.Class{Module: "app.web", Name: "Hot"}))
	assert.Equal(t, "", color(model.Class{Module: "app.web", Name: "Cold"}))
}

func TestColorFunc_NilResultMeansDefault(t *testing.T) {
	t.Parallel()
	color, err := ColorFunc(context.Background(), `if false { "red" }`)
	require.NoError(t, err)

	assert.Equal(t, "", color(model.Class{Module: "m", Name: "A"}))
}

func TestColorFunc_BadScriptFailsUpFront(t *testing.T) {
	t.Parallel()
	_, err := ColorFunc(context.Background(), `no_such_function()`)
	require.Error(t, err)
}

func TestColorFunc_NonStringResultFailsUpFront(t *testing.T) {
	t.Parallel()
	_, err := ColorFunc(context.Background(), `42`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want string")
}
