package vmre

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/magnetde/starlark-vmre/syntax"
)

// Reference matches an expression with the regexp2 engine.
// It implements the same matching semantics as a Regexp and is used to cross-check the evaluators.
// Texts with invalid UTF-8 are not supported, because regexp2 decodes invalid bytes as U+FFFD.
type Reference struct {
	anchored *regexp2.Regexp
	floating *regexp2.Regexp
}

// NewReference translates an expression tree into a regexp2 pattern and compiles it.
func NewReference(n *syntax.Node) (*Reference, error) {
	var b strings.Builder
	if err := translate(&b, n); err != nil {
		return nil, err
	}

	s := b.String()

	// Singleline makes "." match newlines.
	options := regexp2.None | regexp2.RE2 | regexp2.Singleline

	anchored, err := regexp2.Compile(`\A(?:`+s+`)`, options)
	if err != nil {
		return nil, err
	}

	floating, err := regexp2.Compile(s, options)
	if err != nil {
		return nil, err
	}

	r := Reference{
		anchored: anchored,
		floating: floating,
	}

	return &r, nil
}

// Reference returns the reference matcher of the expression.
// It fails for a Regexp created by Load, because there is no expression tree.
func (re *Regexp) Reference() (*Reference, error) {
	if re.tree == nil {
		return nil, errNoTree
	}

	return NewReference(re.tree)
}

// MatchString reports whether the expression matches a prefix of `s`.
func (r *Reference) MatchString(s string) (bool, error) {
	return r.anchored.MatchString(s)
}

// SearchString reports whether the expression matches at any position of `s`.
func (r *Reference) SearchString(s string) (bool, error) {
	return r.floating.MatchString(s)
}

// String returns the translated regexp2 pattern.
func (r *Reference) String() string {
	return r.floating.String()
}

// translate writes the regexp2 pattern of a node.
// All compound nodes are wrapped in non-capturing groups, so no precedence rules apply.
func translate(b *strings.Builder, n *syntax.Node) error {
	if n == nil {
		return errInvalidTree
	}

	switch n.Op {
	case syntax.OpLiteral:
		b.WriteString(regexp.QuoteMeta(string(n.Char)))
	case syntax.OpAnyChar:
		b.WriteByte('.')
	case syntax.OpAlternate:
		if len(n.Subs) != 2 {
			return errInvalidTree
		}

		b.WriteString("(?:")
		if err := translate(b, n.Subs[0]); err != nil {
			return err
		}
		b.WriteByte('|')
		if err := translate(b, n.Subs[1]); err != nil {
			return err
		}
		b.WriteByte(')')
	case syntax.OpQuest, syntax.OpStar, syntax.OpPlus:
		if len(n.Subs) != 1 {
			return errInvalidTree
		}

		b.WriteString("(?:")
		if err := translate(b, n.Subs[0]); err != nil {
			return err
		}
		b.WriteByte(')')

		switch n.Op {
		case syntax.OpQuest:
			b.WriteByte('?')
		case syntax.OpStar:
			b.WriteByte('*')
		default:
			b.WriteByte('+')
		}
	case syntax.OpConcat:
		b.WriteString("(?:")
		for _, sub := range n.Subs {
			if err := translate(b, sub); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	default:
		return errInvalidTree
	}

	return nil
}
