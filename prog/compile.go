package prog

import (
	"github.com/magnetde/starlark-vmre/syntax"
	"github.com/magnetde/starlark-vmre/util"
)

// generator translates an expression tree into instructions in a single pass.
// Forward references are written with a placeholder target and patched,
// once the target address is known.
type generator struct {
	pc    int // address of the next instruction; always equal to len(insts)
	limit int // maximum program length; negative for the native address width
	insts []Inst
}

// Compile compiles an expression tree into a program.
// It fails only if the program does not fit into the address space;
// in that case no program is returned.
func Compile(n *syntax.Node) (*Prog, error) {
	return compile(n, -1)
}

// compile is Compile with a custom maximum program length.
func compile(n *syntax.Node, limit int) (*Prog, error) {
	g := generator{limit: limit}
	if err := g.genCode(n); err != nil {
		return nil, err
	}

	return &Prog{Inst: g.insts}, nil
}

// genCode is the entry point of the generator. The final Accept is only emitted here.
func (g *generator) genCode(n *syntax.Node) error {
	if err := g.genExpr(n); err != nil {
		return err
	}

	if err := g.incPC(); err != nil {
		return err
	}
	g.emit(Inst{Op: InstAccept})

	return nil
}

func (g *generator) genExpr(n *syntax.Node) error {
	if n == nil {
		return &Error{Kind: ErrInvalidNode, Addr: g.pc}
	}

	switch n.Op {
	case syntax.OpLiteral:
		return g.genConsume(Inst{Op: InstChar, Char: n.Char})
	case syntax.OpAnyChar:
		return g.genConsume(Inst{Op: InstAny})
	case syntax.OpAlternate:
		if len(n.Subs) != 2 {
			return &Error{Kind: ErrInvalidNode, Addr: g.pc}
		}
		return g.genAlternate(n.Subs[0], n.Subs[1])
	case syntax.OpQuest, syntax.OpPlus, syntax.OpStar:
		if len(n.Subs) != 1 {
			return &Error{Kind: ErrInvalidNode, Addr: g.pc}
		}

		switch n.Op {
		case syntax.OpQuest:
			return g.genQuest(n.Subs[0])
		case syntax.OpPlus:
			return g.genPlus(n.Subs[0])
		default:
			return g.genStar(n.Subs[0])
		}
	case syntax.OpConcat:
		return g.genConcat(n.Subs)
	default:
		return &Error{Kind: ErrInvalidNode, Addr: g.pc}
	}
}

// genConsume emits a single character consuming instruction.
func (g *generator) genConsume(inst Inst) error {
	g.emit(inst)
	return g.incPC()
}

// genAlternate generates the code:
//
//	    split L1, L2
//	L1: code of e1
//	    jmp L3
//	L2: code of e2
//	L3:
func (g *generator) genAlternate(e1, e2 *syntax.Node) error {
	splitAddr := g.pc
	if err := g.incPC(); err != nil {
		return err
	}
	g.emit(Inst{Op: InstSplit, X: g.pc}) // L2 is patched below

	if err := g.genExpr(e1); err != nil {
		return err
	}

	jmpAddr := g.pc
	g.emit(Inst{Op: InstJump}) // L3 is patched below
	if err := g.incPC(); err != nil {
		return err
	}

	split, err := g.patchSite(splitAddr, InstSplit, ErrAlternate)
	if err != nil {
		return err
	}
	split.Y = g.pc

	if err := g.genExpr(e2); err != nil {
		return err
	}

	jmp, err := g.patchSite(jmpAddr, InstJump, ErrAlternate)
	if err != nil {
		return err
	}
	jmp.X = g.pc

	return nil
}

// genQuest generates the code:
//
//	    split L1, L2
//	L1: code of e
//	L2:
//
// The body is the preferred branch, which makes the repetition greedy.
func (g *generator) genQuest(e *syntax.Node) error {
	splitAddr := g.pc
	if err := g.incPC(); err != nil {
		return err
	}
	g.emit(Inst{Op: InstSplit, X: g.pc})

	if err := g.genExpr(e); err != nil {
		return err
	}

	split, err := g.patchSite(splitAddr, InstSplit, ErrQuest)
	if err != nil {
		return err
	}
	split.Y = g.pc

	return nil
}

// genPlus generates the code:
//
//	L1: code of e
//	    split L1, L2
//	L2:
func (g *generator) genPlus(e *syntax.Node) error {
	l1 := g.pc

	if err := g.genExpr(e); err != nil {
		return err
	}

	splitAddr := g.pc
	if err := g.incPC(); err != nil {
		return err
	}
	g.emit(Inst{Op: InstSplit, X: l1})

	split, err := g.patchSite(splitAddr, InstSplit, ErrPlus)
	if err != nil {
		return err
	}
	split.Y = g.pc

	return nil
}

// genStar generates the code:
//
//	L1: split L2, L3
//	L2: code of e
//	    jmp L1
//	L3:
func (g *generator) genStar(e *syntax.Node) error {
	l1 := g.pc
	if err := g.incPC(); err != nil {
		return err
	}
	g.emit(Inst{Op: InstSplit, X: g.pc})

	if err := g.genExpr(e); err != nil {
		return err
	}

	g.emit(Inst{Op: InstJump, X: l1})
	if err := g.incPC(); err != nil {
		return err
	}

	split, err := g.patchSite(l1, InstSplit, ErrStar)
	if err != nil {
		return err
	}
	split.Y = g.pc

	return nil
}

// genConcat generates the code of all subexpressions in order.
func (g *generator) genConcat(subs []*syntax.Node) error {
	for _, e := range subs {
		if err := g.genExpr(e); err != nil {
			return err
		}
	}

	return nil
}

func (g *generator) emit(inst Inst) {
	g.insts = append(g.insts, inst)
}

// incPC increments the program counter.
func (g *generator) incPC() error {
	pc, ok := util.AddInt(g.pc, 1, g.limit)
	if !ok {
		return &Error{Kind: ErrOverflow, Addr: g.pc}
	}

	g.pc = pc
	return nil
}

// patchSite returns the instruction at `addr` for backpatching.
// The instruction must have the operation `op`, or else an error of kind `kind` is returned.
// The returned pointer is only valid until the next call of emit.
func (g *generator) patchSite(addr int, op InstOp, kind ErrorKind) (*Inst, error) {
	if addr < 0 || addr >= len(g.insts) || g.insts[addr].Op != op {
		return nil, &Error{Kind: kind, Addr: addr}
	}

	return &g.insts[addr], nil
}
