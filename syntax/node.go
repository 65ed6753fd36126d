package syntax

import (
	"slices"
	"strings"
)

// Node is a node in a parsed expression tree.
// Each node exclusively owns its children; trees never share nodes.
type Node struct {
	Op   Op
	Char rune    // character of a literal
	Subs []*Node // subexpressions; two for OpAlternate, one for the repetitions
}

// Literal creates a node, that matches exactly the character `c`.
func Literal(c rune) *Node {
	return &Node{Op: OpLiteral, Char: c}
}

// AnyChar creates a node, that matches any single character.
func AnyChar() *Node {
	return &Node{Op: OpAnyChar}
}

// Alternate creates a node, that matches `left` or `right`. The left branch is preferred.
func Alternate(left, right *Node) *Node {
	return &Node{Op: OpAlternate, Subs: []*Node{left, right}}
}

// Quest creates a node, that matches `n` zero or one times.
func Quest(n *Node) *Node {
	return &Node{Op: OpQuest, Subs: []*Node{n}}
}

// Plus creates a node, that matches `n` one or more times.
func Plus(n *Node) *Node {
	return &Node{Op: OpPlus, Subs: []*Node{n}}
}

// Star creates a node, that matches `n` zero or more times.
func Star(n *Node) *Node {
	return &Node{Op: OpStar, Subs: []*Node{n}}
}

// Concat creates a node, that matches all subexpressions in order.
func Concat(subs ...*Node) *Node {
	return &Node{Op: OpConcat, Subs: subs}
}

// newRepeat wraps `n` into the repetition node for the operator character `c`.
func newRepeat(c rune, n *Node) *Node {
	switch c {
	case '?':
		return Quest(n)
	case '*':
		return Star(n)
	default:
		return Plus(n)
	}
}

// Equal reports whether `n` and `o` are structurally equal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Op != o.Op {
		return false
	}

	switch n.Op {
	case OpLiteral:
		return n.Char == o.Char
	case OpAnyChar:
		return true
	}

	return slices.EqualFunc(n.Subs, o.Subs, func(x, y *Node) bool {
		return x.Equal(y)
	})
}

// String returns a pattern, that parses to a tree equal to `n`.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch n.Op {
	case OpLiteral:
		if IsMeta(n.Char) {
			b.WriteByte('\\')
		}
		b.WriteRune(n.Char)
	case OpAnyChar:
		b.WriteByte('.')
	case OpAlternate:
		writeSub(b, n.Subs[0], OpAlternate)
		b.WriteByte('|')
		writeNode(b, n.Subs[1])
	case OpQuest, OpStar, OpPlus:
		writeSub(b, n.Subs[0], OpQuest)
		switch n.Op {
		case OpQuest:
			b.WriteByte('?')
		case OpStar:
			b.WriteByte('*')
		default:
			b.WriteByte('+')
		}
	case OpConcat:
		if len(n.Subs) == 0 {
			b.WriteString("()")
			return
		}
		for _, sub := range n.Subs {
			writeSub(b, sub, OpConcat)
		}
	}
}

// writeSub writes a subexpression of a node with operator `parent`
// and adds parentheses, if the subexpression would bind weaker than its parent.
func writeSub(b *strings.Builder, sub *Node, parent Op) {
	paren := false

	switch sub.Op {
	case OpAlternate:
		paren = true
	case OpConcat:
		// A concatenation inside an alternation needs no parentheses;
		// empty concatenations are always written as "()".
		paren = parent != OpAlternate && len(sub.Subs) > 0
	}

	if paren {
		b.WriteByte('(')
	}
	writeNode(b, sub)
	if paren {
		b.WriteByte(')')
	}
}
