package builtins

import (
	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/shell"
)

// Passwd implements `passwd`, handing the terminal's key input over to
// the interactive password-change mode.
func Passwd(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) != 1 {
		shell.Errorf(ctx.Term, "passwd: too many arguments")
		return shell.EINVAL
	}
	if !modes.StartPasswd(ctx.Term, ctx.Vfs) {
		shell.Errorf(ctx.Term, "passwd: /etc/passwd not found or invalid")
		return shell.ENOENT
	}
	return shell.OK
}
