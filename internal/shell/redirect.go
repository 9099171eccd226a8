package shell

import "errors"

// ErrBadRedirect is returned by SplitRedirect when ">" is present but
// is missing its destination operand or is followed by more than one
// extra argument.
var ErrBadRedirect = errors.New("malformed redirect")

// SplitRedirect scans args for a literal ">" token. If none is present,
// it returns (args, "", false, nil) unchanged. If one is present, it
// returns the operands before it, the single destination path that must
// immediately follow, and (rest, dest, true, nil) — or a non-nil error
// if the destination is missing or extra arguments trail it.
// Redirection never alters pipe-input consumption; callers decide
// separately whether the remaining operands are empty.
func SplitRedirect(args []string) (rest []string, dest string, found bool, err error) {
	for i, a := range args {
		if a != ">" {
			continue
		}
		if i+1 >= len(args) {
			return nil, "", true, ErrBadRedirect
		}
		if i+2 != len(args) {
			return nil, "", true, ErrBadRedirect
		}
		return args[:i], args[i+1], true, nil
	}
	return args, "", false, nil
}
