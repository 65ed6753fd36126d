// Package vm runs compiled programs against a text.
//
// A program matches a text, if some path through the program reaches the
// accept instruction, starting at address 0 and text position 0. Matching is
// anchored at the start of the text but not at its end, so a program for "ab"
// matches "abc".
//
// Two strategies explore the paths: Recursive follows the preferred branch of
// every split with a nested call and Backtrack keeps the pending alternatives
// on an explicit stack. Both explore the paths in the same order and therefore
// report the same results.
package vm

import (
	"fmt"
	"strings"

	"github.com/magnetde/starlark-vmre/prog"
	"github.com/magnetde/starlark-vmre/syntax"
)

// Machine evaluates programs.
type Machine interface {
	// Match reports whether the program matches a prefix of the text.
	Match(p *prog.Prog, text string) (bool, error)
}

// Searcher is implemented by evaluators, that try all start positions of a text in a single evaluation.
type Searcher interface {
	// Search reports whether the program matches at any position of the text.
	Search(p *prog.Prog, text string) (bool, error)
}

// Search reports whether the program matches at any position of `text`.
// The positions are tried from left to right, including the end of `text`.
// The first error of the evaluator stops the search.
func Search(m Machine, p *prog.Prog, text string) (bool, error) {
	if s, ok := m.(Searcher); ok {
		return s.Search(p, text)
	}

	for pos := 0; ; {
		ok, err := m.Match(p, text[pos:])
		if ok || err != nil {
			return ok, err
		}

		_, width := syntax.DecodeChar(text[pos:])
		if width == 0 {
			return false, nil
		}
		pos += width
	}
}

// Strategy selects one of the evaluators.
type Strategy uint8

const (
	StrategyBacktrack Strategy = iota
	StrategyRecursive
)

var strategyNames = [...]string{
	StrategyBacktrack: "backtrack",
	StrategyRecursive: "recursive",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}

	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy returns the strategy with the name `name`. Case is ignored.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return Strategy(i), nil
		}
	}

	return 0, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}

// New returns an evaluator with the default settings of the strategy.
func New(s Strategy) (Machine, error) {
	switch s {
	case StrategyBacktrack:
		return &Backtrack{}, nil
	case StrategyRecursive:
		return &Recursive{}, nil
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownStrategy, s)
	}
}

// Run evaluates the program `p` against `text` with the default evaluator of the strategy `s`.
func Run(p *prog.Prog, text string, s Strategy) (bool, error) {
	m, err := New(s)
	if err != nil {
		return false, err
	}

	return m.Match(p, text)
}

// step executes a single character consuming instruction.
// It returns the new text position and whether the instruction matched.
func step(inst *prog.Inst, text string, pos int) (int, bool) {
	c, width := syntax.DecodeChar(text[pos:])
	if width == 0 {
		return pos, false
	}

	if inst.Op == prog.InstChar && c != inst.Char {
		return pos, false
	}

	return pos + width, true
}

// fetch returns the instruction at `pc` or a runtime error, if there is none.
func fetch(p *prog.Prog, pc, pos int) (*prog.Inst, error) {
	if pc < 0 || pc >= len(p.Inst) {
		return nil, &RuntimeError{Err: ErrBadTarget, PC: pc, Pos: pos}
	}

	return &p.Inst[pc], nil
}
