package syntax

import "strconv"

// parser holds the state of a single Parse call.
type parser struct {
	src     source
	nesting int
}

// Parse parses a pattern and returns its expression tree.
//
// The grammar is:
//
//	alternate := concat ('|' alternate)?
//	concat    := (atom ('?' | '*' | '+')*)*
//	atom      := char | '.' | '(' alternate ')' | '\' meta
//
// Alternations fold to the right, so `a|b|c` is parsed as `a|(b|c)`.
// Every alternative must contain at least one atom; a group may be empty.
func Parse(pattern string) (*Node, error) {
	if pattern == "" {
		return nil, &Error{Code: ErrEmptyPattern}
	}

	var p parser
	p.src.init(pattern)

	n, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}

	// The only character, that stops the top-level alternation, is a closing parenthesis.
	if _, ok := p.src.peek(); ok {
		return nil, &Error{Code: ErrUnexpectedParen, Pos: p.src.tell(), Expr: ")"}
	}

	return n, nil
}

// MustParse is like Parse but panics if the pattern cannot be parsed.
func MustParse(pattern string) *Node {
	n, err := Parse(pattern)
	if err != nil {
		panic(`syntax: Parse(` + strconv.Quote(pattern) + `): ` + err.Error())
	}
	return n
}

func (p *parser) parseAlternate() (*Node, error) {
	start := p.src.tell()

	left, atoms, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	pos := p.src.tell()
	if !p.src.match('|') {
		return left, nil
	}

	if atoms == 0 {
		return nil, &Error{Code: ErrMissingAlternative, Pos: start, Expr: "|"}
	}

	right, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}

	if p.src.tell() == pos+1 { // nothing after the '|'
		return nil, &Error{Code: ErrMissingAlternative, Pos: pos, Expr: "|"}
	}

	return Alternate(left, right), nil
}

// parseConcat parses a sequence of atoms up to the next '|' or ')' and returns
// the sequence together with the number of atoms read.
// A sequence of exactly one atom is returned as the atom itself.
func (p *parser) parseConcat() (*Node, int, error) {
	var subs []*Node

	for {
		c, ok := p.src.peek()
		if !ok || c == '|' || c == ')' {
			break
		}

		pos := p.src.tell()
		p.src.read()

		switch {
		case isRepeat(c):
			if len(subs) == 0 {
				return nil, 0, &Error{Code: ErrMissingRepeatArgument, Pos: pos, Expr: string(c)}
			}

			last := len(subs) - 1
			subs[last] = newRepeat(c, subs[last])
		case c == '.':
			subs = append(subs, AnyChar())
		case c == '(':
			group, err := p.parseGroup(pos)
			if err != nil {
				return nil, 0, err
			}

			subs = append(subs, group)
		case c == '\\':
			e, ok := p.src.read()
			if !ok {
				return nil, 0, &Error{Code: ErrTrailingBackslash, Pos: pos, Expr: `\`}
			}
			if !IsMeta(e) {
				return nil, 0, &Error{Code: ErrInvalidEscape, Pos: pos, Expr: `\` + string(e)}
			}

			subs = append(subs, Literal(e))
		default:
			subs = append(subs, Literal(c))
		}
	}

	if len(subs) == 1 {
		return subs[0], 1, nil
	}

	return Concat(subs...), len(subs), nil
}

// parseGroup parses the rest of a group, whose opening parenthesis is at `pos`.
func (p *parser) parseGroup(pos int) (*Node, error) {
	p.nesting++
	defer func() { p.nesting-- }()

	if p.nesting > maxNesting {
		return nil, &Error{Code: ErrNestingDepth, Pos: pos}
	}

	n, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}

	if !p.src.match(')') {
		return nil, &Error{Code: ErrMissingParen, Pos: pos, Expr: p.src.orig[pos:]}
	}

	return n, nil
}
