package prog

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile error.
// Every kind is an error by itself, so `errors.Is(err, prog.ErrOverflow)` matches any compile error of that kind.
type ErrorKind uint8

const (
	// ErrOverflow reports, that the program does not fit into the address space.
	ErrOverflow ErrorKind = iota + 1

	// The following kinds report an internal inconsistency of the generator:
	// a backpatch site did not hold the instruction the generator had just written there.
	// Each rule has its own kind, so the failing rule can be identified.
	ErrAlternate
	ErrQuest
	ErrPlus
	ErrStar

	// ErrInvalidNode reports an expression tree, that was not built by the parser
	// and contains an unknown operator or a wrong number of subexpressions.
	ErrInvalidNode
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrOverflow:
		return "program counter overflow"
	case ErrAlternate:
		return "failed to patch alternation"
	case ErrQuest:
		return "failed to patch '?' repetition"
	case ErrPlus:
		return "failed to patch '+' repetition"
	case ErrStar:
		return "failed to patch '*' repetition"
	case ErrInvalidNode:
		return "invalid expression node"
	default:
		return fmt.Sprintf("compile error %d", uint8(k))
	}
}

// Internal reports whether the error kind indicates a defect in the generator.
func (k ErrorKind) Internal() bool {
	switch k {
	case ErrAlternate, ErrQuest, ErrPlus, ErrStar:
		return true
	default:
		return false
	}
}

// Error is returned by Compile.
type Error struct {
	Kind ErrorKind
	Addr int // address of the failing instruction slot or the program counter at overflow
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile error at %04d: %s", e.Addr, e.Kind.Error())
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ErrMalformed is wrapped by all errors of Prog.Validate.
var ErrMalformed = errors.New("malformed program")
