package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Reboot implements `reboot`. On the target firmware this unmounts
// storage and restarts the MCU; on this host build it only reports the
// action, since there is no hardware to tear down.
func Reboot(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "reboot: too many arguments")
		return shell.EINVAL
	}
	ctx.Term.WriteLine("Rebooting...")
	return shell.OK
}
