// Package prog compiles expression trees into bytecode for the backtracking machine.
package prog

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/magnetde/starlark-vmre/util"
)

// To install stringer: go install golang.org/x/tools/cmd/stringer@latest
//go:generate stringer -type=InstOp -trimprefix=Inst -output=instop_string.go

// InstOp is the operation of a single instruction.
type InstOp uint8

const (
	InstChar   InstOp = iota + 1 // consume one character equal to Char
	InstAny                      // consume any one character
	InstJump                     // continue at X
	InstSplit                    // continue at X; on failure backtrack to Y
	InstAccept                   // the whole expression has matched
)

// Inst is a single instruction of a program.
type Inst struct {
	Op   InstOp
	Char rune // character of InstChar
	X    int  // target of InstJump; preferred target of InstSplit
	Y    int  // fallback target of InstSplit
}

// Prog is a compiled program.
// A program is never modified after compilation, so it may be shared by concurrent evaluations.
type Prog struct {
	Inst []Inst
}

// Len returns the number of instructions.
func (p *Prog) Len() int {
	return len(p.Inst)
}

// mnemonic returns the assembler name of the instruction.
func (i *Inst) mnemonic() string {
	switch i.Op {
	case InstChar:
		return "char"
	case InstAny:
		return "any"
	case InstJump:
		return "jmp"
	case InstSplit:
		return "split"
	case InstAccept:
		return "match"
	default:
		return i.Op.String()
	}
}

// String returns the instruction in assembler notation, e.g. "split 0001, 0003".
func (i Inst) String() string {
	var b strings.Builder
	i.write(&b)
	return b.String()
}

func (i *Inst) write(w io.StringWriter) {
	_, _ = w.WriteString(i.mnemonic())

	switch i.Op {
	case InstChar:
		_, _ = w.WriteString(" ")
		_, _ = w.WriteString(util.QuoteRune(i.Char))
	case InstJump:
		_, _ = w.WriteString(fmt.Sprintf(" %04d", i.X))
	case InstSplit:
		_, _ = w.WriteString(fmt.Sprintf(" %04d, %04d", i.X, i.Y))
	}
}

// Dump writes a listing of the program to `w`, one instruction per line, prefixed by its address:
//
//	0000: char 'a'
//	0001: split 0002, 0004
//	0002: any
//	0003: jmp 0001
//	0004: char 'b'
//	0005: match
func (p *Prog) Dump(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	for pc := range p.Inst {
		fmt.Fprintf(&buf, "%04d: ", pc)
		p.Inst[pc].write(&buf)
		buf.WriteByte('\n')

		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// String returns the listing written by Dump.
func (p *Prog) String() string {
	var b strings.Builder
	_, _ = p.Dump(&b)
	return b.String()
}
