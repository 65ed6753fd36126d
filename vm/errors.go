package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned by Recursive, if the recursion depth exceeds the configured maximum.
	ErrStackOverflow = errors.New("vm: stack overflow")

	// ErrStackLimit is returned by Backtrack, if the backtrack stack exceeds the configured maximum.
	ErrStackLimit = errors.New("vm: backtrack stack limit exceeded")

	ErrBadTarget       = errors.New("invalid instruction: target out of range")
	ErrUnknownInst     = errors.New("invalid instruction: unknown operation")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// RuntimeError is an error encountered during the execution of a program.
// It wraps ErrStackOverflow or ErrStackLimit, if an evaluator ran out of stack.
// Corrupt programs, that were neither created by prog.Compile nor checked by
// Prog.Validate, may cause ErrBadTarget and ErrUnknownInst.
type RuntimeError struct {
	Err error
	PC  int // address of the failing instruction
	Pos int // byte offset into the text
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("vm: runtime error at %04d, position %d: %v", e.PC, e.Pos, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
