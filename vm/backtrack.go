package vm

import (
	"github.com/magnetde/starlark-vmre/prog"
	"github.com/magnetde/starlark-vmre/syntax"
	"github.com/magnetde/starlark-vmre/util"
)

// Backtrack evaluates a program with an explicit stack of pending alternatives.
// Every split pushes its fallback branch and continues with the preferred
// branch. When a path fails, the most recently pushed alternative is resumed.
// The stack lives on the heap, so the call stack never grows with the text.
type Backtrack struct {
	// MaxStack is the maximum number of pending alternatives. Zero means no limit.
	// Exceeding the limit fails with ErrStackLimit.
	MaxStack int

	// Memoize records every visited (instruction, position) state and skips
	// states, that were already explored. This does not change any result,
	// because a state that is visited again already failed or is part of a
	// loop, that did not consume any text. It bounds the work to the product
	// of the program and text lengths, and makes loops over empty
	// expressions like "()*" terminate.
	Memoize bool
}

// frame is a pending alternative.
type frame struct {
	pc  int
	pos int
}

// backtracker is the state of a single evaluation.
type backtracker struct {
	p    *prog.Prog
	text string

	pc  int // address of the next instruction
	pos int // byte offset of the next character

	stack    []frame
	maxStack int

	visited *util.BitSet // nil without memoization
}

var (
	_ Machine  = (*Backtrack)(nil)
	_ Searcher = (*Backtrack)(nil)
)

// Match implements Machine.
func (b *Backtrack) Match(p *prog.Prog, text string) (bool, error) {
	x := b.newBacktracker(p, text)
	return x.runAt(0)
}

// Search implements Searcher. With memoization, all start positions share
// one set of visited states, indexed by the absolute text position: a state,
// that failed from an earlier start, fails again, so the work stays bounded by
// the product of the program and text lengths.
func (b *Backtrack) Search(p *prog.Prog, text string) (bool, error) {
	x := b.newBacktracker(p, text)

	for pos := 0; ; {
		ok, err := x.runAt(pos)
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

func (b *Backtrack) newBacktracker(p *prog.Prog, text string) *backtracker {
	x := backtracker{
		p:        p,
		text:     text,
		maxStack: b.MaxStack,
	}

	if b.Memoize {
		x.visited = util.NewBitSet(len(p.Inst) * (len(text) + 1))
	}

	return &x
}

// runAt starts the evaluation at address 0 and text position `pos`.
func (x *backtracker) runAt(pos int) (bool, error) {
	x.pc = 0
	x.pos = pos
	x.stack = x.stack[:0]

	return x.run()
}

// fail resumes the most recent alternative. It returns false, if there is none left.
func (x *backtracker) fail() bool {
	n := len(x.stack)
	if n == 0 {
		return false
	}

	fr := x.stack[n-1]
	x.stack = x.stack[:n-1]

	x.pc = fr.pc
	x.pos = fr.pos
	return true
}

func (x *backtracker) push(pc, pos int) error {
	if x.maxStack > 0 && len(x.stack) >= x.maxStack {
		return &RuntimeError{Err: ErrStackLimit, PC: x.pc, Pos: x.pos}
	}

	x.stack = append(x.stack, frame{pc: pc, pos: pos})
	return nil
}

// seen marks the current state as visited and reports whether it was visited before.
func (x *backtracker) seen() bool {
	if x.visited == nil || x.pc < 0 || x.pc >= len(x.p.Inst) {
		return false
	}

	return x.visited.TestAndSet(x.pc*(len(x.text)+1) + x.pos)
}

func (x *backtracker) run() (bool, error) {
	for {
		if x.seen() {
			if !x.fail() {
				return false, nil
			}
			continue
		}

		inst, err := fetch(x.p, x.pc, x.pos)
		if err != nil {
			return false, err
		}

		switch inst.Op {
		case prog.InstChar, prog.InstAny:
			next, ok := step(inst, x.text, x.pos)
			if !ok {
				if !x.fail() {
					return false, nil
				}
				continue
			}
			x.pos = next
			x.pc++

		case prog.InstJump:
			x.pc = inst.X

		case prog.InstSplit:
			if err := x.push(inst.Y, x.pos); err != nil {
				return false, err
			}
			x.pc = inst.X

		case prog.InstAccept:
			return true, nil

		default:
			return false, &RuntimeError{Err: ErrUnknownInst, PC: x.pc, Pos: x.pos}
		}
	}
}
