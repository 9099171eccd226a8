package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Shutdown implements `shutdown`. On the target firmware this unmounts
// storage and enters deep sleep; on this host build it only reports the
// action, since there is no hardware to tear down.
func Shutdown(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "shutdown: too many arguments")
		return shell.EINVAL
	}
	ctx.Term.WriteLine("Shutting down...")
	return shell.OK
}
