package builtins

import "github.com/tilixi/tilixi/internal/shell"

// Reloader is implemented by the sysconfig loader and supplied via
// ctx.Extra["reload"], keeping this package independent of internal/sysconfig.
type Reloader interface {
	Reload() error
}

// Reload implements `reload`, re-reading /etc/system.conf.
func Reload(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "reload: too many arguments")
		return shell.EINVAL
	}

	r, ok := ctx.Extra["reload"].(Reloader)
	if !ok {
		shell.Errorf(ctx.Term, "reload: not available")
		return shell.ENOTSUP
	}
	if err := r.Reload(); err != nil {
		shell.Errorf(ctx.Term, "reload: %v", err)
		return shell.ERR
	}
	ctx.Term.WriteLine("Reloaded TILIXI config")
	return shell.OK
}
