package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Exit implements `exit [CODE]`. CODE is accepted for compatibility but
// unused — the terminal slot is simply closed.
func Exit(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 2 {
		shell.Errorf(ctx.Term, "exit: too many arguments")
		return shell.EINVAL
	}
	ctx.WM.Close()
	return shell.OK
}
