// Package script evaluates user-supplied Risor snippets that customize
// scry's output, keeping the library's Go hooks (plain closures) scriptable
// from the CLI.
package script

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/scry/internal/model"
)

// ColorFunc compiles a Risor color script into a per-class color hook for
// DOT rendering. The script is evaluated once per class with the globals
// "name" (unqualified class name) and "module" (defining module, empty for
// external classes); its result is the font color, or the empty string for
// the default.
//
// A probe evaluation against a placeholder class runs before the hook is
// returned, so a script that cannot evaluate at all fails here rather than
// mid-render. Per-class evaluation errors fall back to the default color.
func ColorFunc(ctx context.Context, source string) (func(model.Class) string, error) {
	eval := func(c model.Class) (string, error) {
		result, err := risor.Eval(ctx, source,
			risor.WithGlobal("name", c.Name),
			risor.WithGlobal("module", c.Module),
		)
		if err != nil {
			return "", err
		}
		switch v := result.(type) {
		case *object.String:
			return v.Value(), nil
		case *object.NilType:
			return "", nil
		default:
			return "", fmt.Errorf("color script: result is %s, want string", result.Type())
		}
	}

	if _, err := eval(model.Class{Module: "probe", Name: "Probe"}); err != nil {
		return nil, fmt.Errorf("color script: %w", err)
	}
	return func(c model.Class) string {
		color, err := eval(c)
		if err != nil {
			return ""
		}
		return color
	}, nil
}
