package script

import (
	"strings"

	"github.com/tilixi/tilixi/internal/shell"
)

// endType identifies which block-terminating keyword execBlockUntil
// stopped on.
type endType int

const (
	endNone endType = iota
	endElse
	endElif
	endFi
	endDone
)

// blockEnd carries the stop keyword's own (stripped) text along so
// callers can re-parse an elif's condition.
type blockEnd struct {
	kind endType
	line string
}

type stopSet int

func stops(kinds ...endType) stopSet {
	var m stopSet
	for _, k := range kinds {
		m |= 1 << uint(k)
	}
	return m
}

func (m stopSet) has(k endType) bool { return m&(1<<uint(k)) != 0 }

// executeCommandString dispatches one already-expanded command line.
func (ip *Interpreter) executeCommandString(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	shell.Execute(ip.Registry, ip.Ctx, line)
}

// executeCondition expands line's variables and dispatches it,
// treating shell.OK as "condition true".
func (ip *Interpreter) executeCondition(line string) bool {
	expanded := ip.expandVars(line)
	if strings.TrimSpace(expanded) == "" {
		return false
	}
	return shell.Execute(ip.Registry, ip.Ctx, expanded) == shell.OK
}

// executeSegment runs one ';'-delimited segment of a simple line:
// break/continue, an assignment, or a command.
func (ip *Interpreter) executeSegment(segment string) {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	if lineIsKeyword(trimmed, "break") {
		if ip.loopDepth == 0 {
			shell.Errorf(ip.Ctx.Term, "run: break outside loop")
			return
		}
		ip.breakRequested = true
		return
	}
	if lineIsKeyword(trimmed, "continue") {
		if ip.loopDepth == 0 {
			shell.Errorf(ip.Ctx.Term, "run: continue outside loop")
			return
		}
		ip.continueRequested = true
		return
	}
	if name, value, ok := isAssignment(trimmed); ok {
		ip.setVar(name, ip.extractValue(value))
		return
	}
	ip.executeCommandString(ip.expandVars(trimmed))
}

// executeSimpleLine splits line on top-level ';' and runs each segment.
func (ip *Interpreter) executeSimpleLine(line string) {
	inSingle, inDouble, escaped := false, false, false
	start := 0
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
		if !inSingle && !inDouble && c == ';' {
			ip.executeSegment(line[start:i])
			start = i + 1
		}
	}
	ip.executeSegment(line[start:])
}

// consumeExpected advances past blank/comment lines looking for a line
// that is exactly expected (e.g. "then", "do").
func consumeExpected(lines []string, idx *int, expected string) bool {
	for *idx < len(lines) {
		line := stripCommentsAndTrim(lines[*idx])
		*idx++
		if line == "" {
			continue
		}
		return lineIsKeyword(line, expected)
	}
	return false
}

// findMatchingDone scans forward from start for the "done" that closes
// the loop opened there, skipping over nested if/while/for blocks.
func findMatchingDone(lines []string, start int) int {
	loopDepth, ifDepth := 0, 0
	for i := start; i < len(lines); i++ {
		line := stripCommentsAndTrim(lines[i])
		if line == "" {
			continue
		}
		switch {
		case hasPrefixWord(line, "if"):
			ifDepth++
		case lineIsKeyword(line, "fi"):
			if ifDepth > 0 {
				ifDepth--
			}
		case hasPrefixWord(line, "while"), hasPrefixWord(line, "for"):
			loopDepth++
		case lineIsKeyword(line, "done"):
			if loopDepth == 0 && ifDepth == 0 {
				return i
			}
			if loopDepth > 0 {
				loopDepth--
			}
		}
	}
	return -1
}

func hasPrefixWord(line, kw string) bool {
	_, ok := lineStartsWith(line, kw)
	return ok
}

// execBlockUntil executes (or skips, if !execute) lines starting at
// *idx, stopping when it hits a keyword in stop or runs out of lines.
func (ip *Interpreter) execBlockUntil(lines []string, limit int, idx *int, execute bool, stop stopSet) blockEnd {
	for *idx < limit {
		if ip.breakRequested || ip.continueRequested {
			return blockEnd{}
		}
		line := stripCommentsAndTrim(lines[*idx])
		*idx++
		if line == "" {
			continue
		}

		switch {
		case lineIsKeyword(line, "else"):
			if stop.has(endElse) {
				return blockEnd{endElse, line}
			}
		case hasPrefixWord(line, "elif"):
			if stop.has(endElif) {
				return blockEnd{endElif, line}
			}
		case lineIsKeyword(line, "fi"):
			if stop.has(endFi) {
				return blockEnd{endFi, line}
			}
		case lineIsKeyword(line, "done"):
			if stop.has(endDone) {
				return blockEnd{endDone, line}
			}
		case hasPrefixWord(line, "if"):
			if execute {
				ip.executeIf(lines, limit, idx, line)
			} else {
				ip.skipIf(lines, limit, idx, line)
			}
		case hasPrefixWord(line, "while"):
			if execute {
				ip.executeWhile(lines, limit, idx, line)
			} else {
				ip.skipWhile(lines, limit, idx, line)
			}
		case hasPrefixWord(line, "for"):
			if execute {
				ip.executeFor(lines, limit, idx, line)
			} else {
				ip.skipFor(lines, limit, idx, line)
			}
		default:
			if execute {
				ip.executeSimpleLine(line)
			}
		}
	}
	return blockEnd{}
}

func parseIfLine(line, keyword string) (cond string, inlineThen bool, ok bool) {
	rest, matched := lineStartsWith(line, keyword)
	if !matched || rest == "" {
		return "", false, false
	}
	cmd, hasInline := parseInlineToken(rest, "then")
	return cmd, hasInline, true
}

func parseWhileLine(line string) (cond string, inlineDo bool, ok bool) {
	rest, matched := lineStartsWith(line, "while")
	if !matched || rest == "" {
		return "", false, false
	}
	cmd, hasInline := parseInlineToken(rest, "do")
	return cmd, hasInline, true
}

func parseForLine(line string) (v string, items []string, inlineDo bool, ok bool) {
	rest, matched := lineStartsWith(line, "for")
	if !matched || rest == "" {
		return "", nil, false, false
	}
	listPart, hasInline := parseInlineToken(rest, "do")
	words := splitWords(listPart)
	if len(words) < 3 || words[1] != "in" {
		return "", nil, false, false
	}
	return words[0], words[2:], hasInline, true
}

func (ip *Interpreter) executeIf(lines []string, limit int, idx *int, line string) blockEnd {
	cond, inlineThen, ok := parseIfLine(line, "if")
	if !ok {
		shell.Errorf(ip.Ctx.Term, "run: malformed if")
		return blockEnd{}
	}
	if !inlineThen && !consumeExpected(lines, idx, "then") {
		shell.Errorf(ip.Ctx.Term, "run: missing then")
		return blockEnd{}
	}

	condTrue := ip.executeCondition(cond)
	var end blockEnd
	if condTrue {
		end = ip.execBlockUntil(lines, limit, idx, true, stops(endElse, endElif, endFi))
	} else {
		end = ip.execBlockUntil(lines, limit, idx, false, stops(endElse, endElif, endFi))
	}

	for end.kind == endElif {
		elifCond, elifInline, pok := parseIfLine(end.line, "elif")
		if !pok {
			break
		}
		if !condTrue && !elifInline && !consumeExpected(lines, idx, "then") {
			shell.Errorf(ip.Ctx.Term, "run: missing then")
			break
		}
		if condTrue {
			end = ip.execBlockUntil(lines, limit, idx, false, stops(endElse, endElif, endFi))
			continue
		}
		elifTrue := ip.executeCondition(elifCond)
		if elifTrue {
			condTrue = true
			end = ip.execBlockUntil(lines, limit, idx, true, stops(endElse, endElif, endFi))
		} else {
			end = ip.execBlockUntil(lines, limit, idx, false, stops(endElse, endElif, endFi))
		}
	}

	if end.kind == endElse {
		end = ip.execBlockUntil(lines, limit, idx, !condTrue, stops(endFi))
	}
	return end
}

func (ip *Interpreter) skipIf(lines []string, limit int, idx *int, line string) {
	_, inlineThen, ok := parseIfLine(line, "if")
	if !ok {
		return
	}
	if !inlineThen {
		consumeExpected(lines, idx, "then")
	}
	end := ip.execBlockUntil(lines, limit, idx, false, stops(endElse, endElif, endFi))
	for end.kind == endElif {
		_, elifInline, pok := parseIfLine(end.line, "elif")
		if !pok {
			break
		}
		if !elifInline {
			consumeExpected(lines, idx, "then")
		}
		end = ip.execBlockUntil(lines, limit, idx, false, stops(endElse, endElif, endFi))
	}
	if end.kind == endElse {
		ip.execBlockUntil(lines, limit, idx, false, stops(endFi))
	}
}

func (ip *Interpreter) executeWhile(lines []string, limit int, idx *int, line string) {
	cond, inlineDo, ok := parseWhileLine(line)
	if !ok {
		shell.Errorf(ip.Ctx.Term, "run: malformed while")
		return
	}
	if !inlineDo && !consumeExpected(lines, idx, "do") {
		shell.Errorf(ip.Ctx.Term, "run: missing do")
		return
	}

	bodyStart := *idx
	bodyEnd := findMatchingDone(lines, bodyStart)
	if bodyEnd < 0 {
		shell.Errorf(ip.Ctx.Term, "run: missing done")
		return
	}

	ip.loopDepth++
	for ip.executeCondition(cond) {
		inner := bodyStart
		ip.execBlockUntil(lines, bodyEnd, &inner, true, 0)
		if ip.breakRequested {
			ip.breakRequested = false
			break
		}
		if ip.continueRequested {
			ip.continueRequested = false
			continue
		}
	}
	ip.loopDepth--
	*idx = bodyEnd + 1
}

func (ip *Interpreter) skipWhile(lines []string, limit int, idx *int, line string) {
	_, inlineDo, ok := parseWhileLine(line)
	if !ok {
		return
	}
	if !inlineDo {
		consumeExpected(lines, idx, "do")
	}
	ip.execBlockUntil(lines, limit, idx, false, stops(endDone))
}

func (ip *Interpreter) executeFor(lines []string, limit int, idx *int, line string) {
	v, items, inlineDo, ok := parseForLine(line)
	if !ok {
		shell.Errorf(ip.Ctx.Term, "run: malformed for")
		return
	}
	if !inlineDo && !consumeExpected(lines, idx, "do") {
		shell.Errorf(ip.Ctx.Term, "run: missing do")
		return
	}

	bodyStart := *idx
	bodyEnd := findMatchingDone(lines, bodyStart)
	if bodyEnd < 0 {
		shell.Errorf(ip.Ctx.Term, "run: missing done")
		return
	}

	ip.loopDepth++
	for _, item := range items {
		ip.setVar(v, ip.expandVars(item))
		inner := bodyStart
		ip.execBlockUntil(lines, bodyEnd, &inner, true, 0)
		if ip.breakRequested {
			ip.breakRequested = false
			break
		}
		if ip.continueRequested {
			ip.continueRequested = false
			continue
		}
	}
	ip.loopDepth--
	*idx = bodyEnd + 1
}

func (ip *Interpreter) skipFor(lines []string, limit int, idx *int, line string) {
	_, _, inlineDo, ok := parseForLine(line)
	if !ok {
		return
	}
	if !inlineDo {
		consumeExpected(lines, idx, "do")
	}
	ip.execBlockUntil(lines, limit, idx, false, stops(endDone))
}

// Run interprets the full script held in lines (already split, one
// entry per source line, '\r' stripped).
func (ip *Interpreter) Run(lines []string) {
	idx := 0
	for idx < len(lines) {
		line := stripCommentsAndTrim(lines[idx])
		idx++
		if line == "" {
			continue
		}
		if idx == 1 && strings.HasPrefix(line, "#!") {
			continue
		}
		switch {
		case hasPrefixWord(line, "if"):
			ip.executeIf(lines, len(lines), &idx, line)
		case hasPrefixWord(line, "while"):
			ip.executeWhile(lines, len(lines), &idx, line)
		case hasPrefixWord(line, "for"):
			ip.executeFor(lines, len(lines), &idx, line)
		case lineIsKeyword(line, "else"), lineIsKeyword(line, "fi"),
			lineIsKeyword(line, "done"), hasPrefixWord(line, "elif"):
			shell.Errorf(ip.Ctx.Term, "run: unexpected control keyword")
		default:
			ip.executeSimpleLine(line)
		}
	}
}
