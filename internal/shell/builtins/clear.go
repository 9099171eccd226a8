package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Clear implements `clear`, wiping the screen and overlay/history state.
func Clear(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "clear: too many arguments")
		return shell.EINVAL
	}
	ctx.Term.Clear()
	return shell.OK
}
