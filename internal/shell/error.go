package shell

import (
	"fmt"
	"strings"

	"github.com/tilixi/tilixi/internal/termui"
)

// Errorf formats msg and writes it to term, appending a trailing
// newline unless the caller already supplied one.
func Errorf(term *termui.Terminal, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	term.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		term.Newline()
	}
}
