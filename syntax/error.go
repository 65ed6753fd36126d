package syntax

import "fmt"

// An Error describes a failure to parse a pattern and gives the offending expression.
type Error struct {
	Code ErrorCode
	Pos  int    // byte offset in the pattern
	Expr string // offending part of the pattern; may be empty
}

func (e *Error) Error() string {
	if e.Expr == "" {
		return fmt.Sprintf("error parsing pattern at position %d: %s", e.Pos, e.Code)
	}
	return fmt.Sprintf("error parsing pattern at position %d: %s: `%s`", e.Pos, e.Code, e.Expr)
}

// Is reports whether the target is an error with the same code.
// This makes `errors.Is(err, &syntax.Error{Code: syntax.ErrMissingParen})` work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// An ErrorCode describes a failure to parse a pattern.
type ErrorCode string

const (
	ErrEmptyPattern          ErrorCode = "empty pattern"
	ErrMissingRepeatArgument ErrorCode = "missing argument to repetition operator"
	ErrMissingAlternative    ErrorCode = "missing alternative"
	ErrInvalidEscape         ErrorCode = "invalid escape sequence"
	ErrTrailingBackslash     ErrorCode = "trailing backslash at end of expression"
	ErrMissingParen          ErrorCode = "missing closing )"
	ErrUnexpectedParen       ErrorCode = "unexpected )"
	ErrNestingDepth          ErrorCode = "expression nests too deeply"
)

func (e ErrorCode) String() string {
	return string(e)
}
