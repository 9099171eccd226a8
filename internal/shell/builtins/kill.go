package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Kill implements `kill PID`. Process termination is not supported by
// this shell; the command validates its arguments and reports
// unsupported rather than silently succeeding.
func Kill(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) < 2 || len(argv) > 2 {
		shell.Errorf(ctx.Term, "kill: usage: kill PID")
		return shell.EINVAL
	}
	shell.Errorf(ctx.Term, "kill: not implemented")
	return shell.ENOTSUP
}
