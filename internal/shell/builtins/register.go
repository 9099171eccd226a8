package builtins

import "github.com/tilixi/tilixi/internal/shell"

// RegisterAll populates r with every built-in command. Callers compose
// the shell.Context passed to Dispatch; Extra["registry"] and
// Extra["reload"] must be set for run and reload to function.
func RegisterAll(r *shell.Registry) {
	r.Register("cd", Cd, "Change directory")
	r.Register("pwd", Pwd, "Print working directory")
	r.Register("ls", Ls, "List directory contents")
	r.Register("cat", Cat, "Display file contents")
	r.Register("touch", Touch, "Create empty file")
	r.Register("mkdir", Mkdir, "Create directories")
	r.Register("rmdir", Rmdir, "Remove empty directories")
	r.Register("rm", Rm, "Remove files")
	r.Register("mv", Mv, "Move or rename files")
	r.Register("echo", Echo, "Echo arguments")
	r.Register("grep", Grep, "Search for PATTERN in files")
	r.Register("wc", Wc, "Count lines, words, and bytes")
	r.Register("kill", Kill, "Kill process")
	r.Register("reboot", Reboot, "Reboot system")
	r.Register("shutdown", Shutdown, "Shutdown system")
	r.Register("reload", Reload, "Reload TILIXI config")
	r.Register("run", Run, "Execute shell script")
	r.Register("clear", Clear, "Clear terminal screen and history")
	r.Register("exit", Exit, "Close the current terminal")
	r.Register("passwd", Passwd, "Change password")
	r.Register("nano", Nano, "Edit files")
	r.Register("qimgv", Qimgv, "Open RGB565 image viewer in a new window")
	r.Register("fastfetch", Fastfetch, "Display system info")
}
