// Package script implements the `run` builtin's shell-script
// interpreter: comment/quote-aware line stripping, $var expansion,
// assignment detection, and if/while/for control-flow blocks.
package script

import (
	"strings"
	"unicode"

	"github.com/tilixi/tilixi/internal/shell"
)

// Interpreter holds a script run's variable bindings and loop state.
// A fresh Interpreter is created per `run` invocation.
type Interpreter struct {
	Registry *shell.Registry
	Ctx      *shell.Context

	vars              map[string]string
	loopDepth         int
	breakRequested    bool
	continueRequested bool
}

// New constructs an interpreter that dispatches commands through
// registry against ctx.
func New(registry *shell.Registry, ctx *shell.Context) *Interpreter {
	return &Interpreter{Registry: registry, Ctx: ctx, vars: make(map[string]string)}
}

func (ip *Interpreter) getVar(name string) (string, bool) {
	v, ok := ip.vars[name]
	return v, ok
}

func (ip *Interpreter) setVar(name, value string) {
	if name == "" {
		return
	}
	ip.vars[name] = value
}

// stripCommentsAndTrim removes a trailing '#'-comment (respecting
// single/double quotes and backslash escapes) and trims whitespace.
func stripCommentsAndTrim(line string) string {
	var out strings.Builder
	inSingle, inDouble, escaped := false, false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			out.WriteByte(c)
			escaped = false
			continue
		}
		if !inSingle && c == '\\' {
			escaped = true
			out.WriteByte(c)
			continue
		}
		if !inDouble && c == '\'' {
			inSingle = !inSingle
			out.WriteByte(c)
			continue
		}
		if !inSingle && c == '"' {
			inDouble = !inDouble
			out.WriteByte(c)
			continue
		}
		if !inSingle && !inDouble && c == '#' {
			break
		}
		out.WriteByte(c)
	}
	return strings.TrimSpace(out.String())
}

func isIdentStart(c byte) bool { return unicode.IsLetter(rune(c)) || c == '_' }
func isIdentCont(c byte) bool  { return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_' }

// expandVars substitutes $name, ${name}, and $$ (literal '$') outside
// of single-quoted regions.
func (ip *Interpreter) expandVars(line string) string {
	var out strings.Builder
	inSingle, inDouble, escaped := false, false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			out.WriteByte(c)
			escaped = false
			continue
		}
		if !inSingle && c == '\\' {
			escaped = true
			out.WriteByte(c)
			continue
		}
		if !inDouble && c == '\'' {
			inSingle = !inSingle
			out.WriteByte(c)
			continue
		}
		if !inSingle && c == '"' {
			inDouble = !inDouble
			out.WriteByte(c)
			continue
		}
		if !inSingle && c == '$' && i+1 < len(line) {
			if line[i+1] == '$' {
				out.WriteByte('$')
				i++
				continue
			}
			if line[i+1] == '{' {
				j := i + 2
				for j < len(line) && line[j] != '}' {
					j++
				}
				if j < len(line) {
					name := line[i+2 : j]
					if v, ok := ip.getVar(name); ok {
						out.WriteString(v)
					}
					i = j
					continue
				}
			}
			if isIdentStart(line[i+1]) {
				j := i + 1
				for j < len(line) && isIdentCont(line[j]) {
					j++
				}
				name := line[i+1 : j]
				if v, ok := ip.getVar(name); ok {
					out.WriteString(v)
				}
				i = j - 1
				continue
			}
		}
		out.WriteByte(c)
	}
	return out.String()
}

// isValidName reports whether name is a legal shell variable name.
func isValidName(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentCont(name[i]) {
			return false
		}
	}
	return true
}

// isAssignment reports whether line is a NAME=value assignment with no
// unquoted whitespace before the '='.
func isAssignment(line string) (name, value string, ok bool) {
	inSingle, inDouble, escaped := false, false, false
	eq := -1
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		if !inSingle && c == '\\' {
			escaped = true
			continue
		}
		if !inDouble && c == '\'' {
			inSingle = !inSingle
			continue
		}
		if !inSingle && c == '"' {
			inDouble = !inDouble
			continue
		}
		if !inSingle && !inDouble && unicode.IsSpace(rune(c)) {
			return "", "", false
		}
		if !inSingle && !inDouble && c == '=' && eq < 0 {
			eq = i
		}
	}
	if eq <= 0 {
		return "", "", false
	}
	name = line[:eq]
	if !isValidName(name) {
		return "", "", false
	}
	return name, line[eq+1:], true
}

// extractValue resolves an assignment's right-hand side: a single-quoted
// literal is taken verbatim, a double-quoted string has its interior
// expanded, anything else is expanded directly.
func (ip *Interpreter) extractValue(value string) string {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return ip.expandVars(value[1 : len(value)-1])
	}
	return ip.expandVars(value)
}

// lineIsKeyword reports whether line is exactly kw, optionally followed
// by a ';' and trailing whitespace.
func lineIsKeyword(line, kw string) bool {
	if !strings.HasPrefix(line, kw) {
		return false
	}
	rest := strings.TrimLeft(line[len(kw):], " \t")
	if rest == "" {
		return true
	}
	if rest[0] == ';' {
		return strings.TrimLeft(rest[1:], " \t") == ""
	}
	return false
}

// lineStartsWith reports whether line begins with kw as a whole word,
// returning the (space-trimmed) remainder.
func lineStartsWith(line, kw string) (rest string, ok bool) {
	if !strings.HasPrefix(line, kw) {
		return "", false
	}
	if len(line) > len(kw) && !unicode.IsSpace(rune(line[len(kw)])) {
		return "", false
	}
	return strings.TrimLeft(line[len(kw):], " \t"), true
}

// parseInlineToken splits rest on a top-level ';' and checks whether
// the text after the split is exactly token — the `if COND; then` /
// `while COND; do` inline-keyword form. It returns the command text
// before the split (or all of rest if there's no inline token) and
// whether an inline token was found.
func parseInlineToken(rest, token string) (cmd string, hasInline bool) {
	inSingle, inDouble, escaped := false, false, false
	split := -1
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if escaped {
			escaped = false
			continue
		}
		if !inSingle && c == '\\' {
			escaped = true
			continue
		}
		if !inDouble && c == '\'' {
			inSingle = !inSingle
			continue
		}
		if !inSingle && c == '"' {
			inDouble = !inDouble
			continue
		}
		if !inSingle && !inDouble && c == ';' {
			split = i
			break
		}
	}
	if split >= 0 {
		after := strings.TrimLeft(rest[split+1:], " \t")
		if strings.HasPrefix(after, token) {
			tail := strings.TrimSpace(after[len(token):])
			if tail == "" {
				return strings.TrimSpace(rest[:split]), true
			}
		}
	}
	return rest, false
}

// splitWords tokenizes line on unquoted whitespace, honoring single and
// double quotes and backslash escapes (quote/escape characters are
// stripped from the result, matching the firmware's split_words).
func splitWords(line string) []string {
	var words []string
	var cur strings.Builder
	inSingle, inDouble, escaped := false, false, false
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		if !inSingle && c == '\\' {
			escaped = true
			continue
		}
		if !inDouble && c == '\'' {
			inSingle = !inSingle
			continue
		}
		if !inSingle && c == '"' {
			inDouble = !inDouble
			continue
		}
		if !inSingle && !inDouble && unicode.IsSpace(rune(c)) {
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return words
}
