package vm

import "github.com/magnetde/starlark-vmre/prog"

// DefaultMaxDepth is the recursion depth of Recursive, if no other depth was set.
const DefaultMaxDepth = 100000

// Recursive evaluates a program on the call stack.
// Every split calls the evaluator recursively for the preferred branch and
// continues with the fallback branch, if the call did not reach an accept.
// The depth of these calls grows with the number of splits passed on a path,
// which for loops is proportional to the length of the text.
type Recursive struct {
	// MaxDepth is the maximum number of nested calls. Deeper paths fail with
	// ErrStackOverflow. Zero or a negative value selects DefaultMaxDepth.
	MaxDepth int
}

var _ Machine = (*Recursive)(nil)

// Match implements Machine.
func (r *Recursive) Match(p *prog.Prog, text string) (bool, error) {
	limit := r.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	e := recursion{p: p, text: text, maxDepth: limit}
	return e.run(0, 0, 0)
}

type recursion struct {
	p        *prog.Prog
	text     string
	maxDepth int
}

func (e *recursion) run(pc, pos, depth int) (bool, error) {
	for {
		inst, err := fetch(e.p, pc, pos)
		if err != nil {
			return false, err
		}

		switch inst.Op {
		case prog.InstChar, prog.InstAny:
			next, ok := step(inst, e.text, pos)
			if !ok {
				return false, nil
			}
			pos = next
			pc++

		case prog.InstJump:
			pc = inst.X

		case prog.InstSplit:
			if depth >= e.maxDepth {
				return false, &RuntimeError{Err: ErrStackOverflow, PC: pc, Pos: pos}
			}

			ok, err := e.run(inst.X, pos, depth+1)
			if ok || err != nil {
				return ok, err
			}
			pc = inst.Y

		case prog.InstAccept:
			return true, nil

		default:
			return false, &RuntimeError{Err: ErrUnknownInst, PC: pc, Pos: pos}
		}
	}
}
