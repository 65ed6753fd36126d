// Package vmre implements regular expressions, that are compiled to bytecode and
// run on a backtracking virtual machine.
//
// The pattern language consists of literal characters, the wildcard ".",
// alternation "|", the repetitions "?", "*" and "+", and groups "(...)".
// Metacharacters are matched literally, if they are escaped with a backslash.
// All repetitions are greedy.
//
// Besides the Go API, the package provides a Starlark module (see NewModule).
package vmre

import (
	"errors"
	"strconv"

	"github.com/magnetde/starlark-vmre/prog"
	"github.com/magnetde/starlark-vmre/syntax"
	"github.com/magnetde/starlark-vmre/vm"
)

var (
	errNoTree      = errors.New("vmre: no expression tree")
	errInvalidTree = errors.New("vmre: invalid expression tree")
)

// Regexp is a compiled regular expression.
// A Regexp is safe for concurrent use by multiple goroutines.
type Regexp struct {
	expr string
	tree *syntax.Node
	prog *prog.Prog
	m    vm.Machine
}

// Option configures a Regexp.
type Option func(re *Regexp) error

// WithStrategy selects the evaluator with its default settings.
func WithStrategy(s vm.Strategy) Option {
	return func(re *Regexp) error {
		m, err := vm.New(s)
		if err != nil {
			return err
		}

		re.m = m
		return nil
	}
}

// WithMachine sets the evaluator.
func WithMachine(m vm.Machine) Option {
	return func(re *Regexp) error {
		re.m = m
		return nil
	}
}

// Compile parses a regular expression and compiles it to a program.
// Without options, the program is run by a vm.Backtrack evaluator.
func Compile(expr string, opts ...Option) (*Regexp, error) {
	tree, err := syntax.Parse(expr)
	if err != nil {
		return nil, err
	}

	p, err := prog.Compile(tree)
	if err != nil {
		return nil, err
	}

	re := &Regexp{
		expr: expr,
		tree: tree,
		prog: p,
	}

	if err := re.apply(opts); err != nil {
		return nil, err
	}

	return re, nil
}

// MustCompile is like Compile but panics, if the expression cannot be compiled.
func MustCompile(expr string, opts ...Option) *Regexp {
	re, err := Compile(expr, opts...)
	if err != nil {
		panic(`vmre: Compile(` + strconv.Quote(expr) + `): ` + err.Error())
	}

	return re
}

// Load creates a Regexp from a serialized program (see prog.Marshal).
// The returned Regexp has no source expression and no expression tree.
func Load(data []byte, opts ...Option) (*Regexp, error) {
	p, err := prog.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	re := &Regexp{prog: p}
	if err := re.apply(opts); err != nil {
		return nil, err
	}

	return re, nil
}

func (re *Regexp) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(re); err != nil {
			return err
		}
	}

	if re.m == nil {
		re.m = &vm.Backtrack{}
	}

	return nil
}

// String returns the source text used to compile the regular expression.
func (re *Regexp) String() string {
	return re.expr
}

// Tree returns the parsed expression. It must not be modified.
func (re *Regexp) Tree() *syntax.Node {
	return re.tree
}

// Prog returns the compiled program. It must not be modified.
func (re *Regexp) Prog() *prog.Prog {
	return re.prog
}

// Machine returns the evaluator.
func (re *Regexp) Machine() vm.Machine {
	return re.m
}

// MatchString reports whether the regular expression matches a prefix of `s`.
func (re *Regexp) MatchString(s string) (bool, error) {
	return re.m.Match(re.prog, s)
}

// Match reports whether the regular expression matches a prefix of `b`.
func (re *Regexp) Match(b []byte) (bool, error) {
	return re.MatchString(string(b))
}

// SearchString reports whether the regular expression matches at any position of `s`.
// The positions are tried from left to right, including the end of `s`.
// The first error of the evaluator stops the search.
func (re *Regexp) SearchString(s string) (bool, error) {
	return vm.Search(re.m, re.prog, s)
}

// Search reports whether the regular expression matches at any position of `b`.
func (re *Regexp) Search(b []byte) (bool, error) {
	return re.SearchString(string(b))
}
