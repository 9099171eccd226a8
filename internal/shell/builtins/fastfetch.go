package builtins

import (
	"fmt"
	"strings"

	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/shell"
)

// Fastfetch implements `fastfetch`. The hardware build additionally
// loads and scales a per-user RGB565 logo from the SD card; this host
// build always renders the text block only, matching the original's
// non-Arduino fallback path (Memory/Disk report "N/A").
func Fastfetch(ctx *shell.Context, argv []string) shell.Code {
	if len(argv) > 1 {
		shell.Errorf(ctx.Term, "fastfetch: too many arguments")
		return shell.EINVAL
	}

	username := "user"
	if u, _, ok := modes.ReadPasswdEntry(ctx.Vfs); ok && u != "" {
		username = u
	}

	userLine := fmt.Sprintf("%s@TILIXI", username)
	lines := []string{
		userLine,
		strings.Repeat("-", len(userLine)),
		"OS:     TILIXI",
		"Host:   ESP32S3",
		"Uptime: 0:00:00",
		"Shell:  damocles",
		"Memory: N/A",
		"Disk:   N/A",
	}

	ctx.Term.Fastfetch.Active = false
	ctx.Term.Fastfetch.ImagePath = ""
	ctx.Term.Fastfetch.LineCount = 0

	ctx.Term.Newline()
	ctx.Term.Fastfetch.StartRow = ctx.Term.CursorRow
	for _, l := range lines {
		ctx.Term.WriteLine(l)
	}
	ctx.Term.Newline()

	return shell.OK
}
