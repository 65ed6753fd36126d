package syntax

// maxNesting is the maximum depth of nested groups.
const maxNesting = 1000

// To install stringer: go install golang.org/x/tools/cmd/stringer@latest
//go:generate stringer -type=Op -trimprefix=Op -output=op_string.go

// Op is the operator of a node in the expression tree.
type Op uint8

const (
	OpLiteral   Op = iota + 1 // matches Char
	OpAnyChar                 // matches any character
	OpAlternate               // matches Subs[0] or Subs[1]
	OpQuest                   // matches Subs[0] zero or one times
	OpPlus                    // matches Subs[0] one or more times
	OpStar                    // matches Subs[0] zero or more times
	OpConcat                  // matches Subs in order
)

// IsMeta reports whether the character has a special meaning in a pattern
// and must be escaped with a backslash to be matched literally.
func IsMeta(c rune) bool {
	switch c {
	case '\\', '.', '+', '*', '?', '(', ')', '|':
		return true
	default:
		return false
	}
}

// isRepeat reports whether the character is a postfix repetition operator.
func isRepeat(c rune) bool {
	return c == '?' || c == '*' || c == '+'
}
