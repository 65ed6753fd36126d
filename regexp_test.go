package vmre

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/starlark-vmre/prog"
	"github.com/magnetde/starlark-vmre/syntax"
	"github.com/magnetde/starlark-vmre/vm"
)

var strategies = []vm.Strategy{vm.StrategyBacktrack, vm.StrategyRecursive}

func TestSearch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		match   bool
		search  bool
	}{
		{"abc?", "acb", false, false},
		{"abc?", "xxabx", false, true},
		{"b", "ab", false, true},
		{"a*", "", true, true},
		{"x+", "", false, false},
		{"c|d", "abd", false, true},
		{"é", "aé", false, true},
		{".b", "\xffb", true, true},
		{"b", "\xffb", false, true},
	}

	for _, s := range strategies {
		for _, tt := range tests {
			re := MustCompile(tt.pattern, WithStrategy(s))

			if got, err := re.MatchString(tt.text); err != nil || got != tt.match {
				t.Errorf("%v: MatchString(%q, %q) = (%v, %v), want %v", s, tt.pattern, tt.text, got, err, tt.match)
			}
			if got, err := re.Match([]byte(tt.text)); err != nil || got != tt.match {
				t.Errorf("%v: Match(%q, %q) = (%v, %v), want %v", s, tt.pattern, tt.text, got, err, tt.match)
			}
			if got, err := re.SearchString(tt.text); err != nil || got != tt.search {
				t.Errorf("%v: SearchString(%q, %q) = (%v, %v), want %v", s, tt.pattern, tt.text, got, err, tt.search)
			}
			if got, err := re.Search([]byte(tt.text)); err != nil || got != tt.search {
				t.Errorf("%v: Search(%q, %q) = (%v, %v), want %v", s, tt.pattern, tt.text, got, err, tt.search)
			}
		}
	}
}

func TestSearch_Error(t *testing.T) {
	re := MustCompile("a*b", WithMachine(&vm.Recursive{MaxDepth: 5}))

	ok, err := re.SearchString("x" + strings.Repeat("a", 20))
	if ok || !errors.Is(err, vm.ErrStackOverflow) {
		t.Errorf("got (%v, %v), want stack overflow", ok, err)
	}
}

func TestCompile(t *testing.T) {
	re, err := Compile("a(b|c)*")
	if err != nil {
		t.Fatal(err)
	}

	if re.String() != "a(b|c)*" {
		t.Errorf("String() = %q", re.String())
	}
	if _, ok := re.Machine().(*vm.Backtrack); !ok {
		t.Errorf("default machine is %T, want *vm.Backtrack", re.Machine())
	}

	want := syntax.Concat(syntax.Literal('a'), syntax.Star(syntax.Alternate(syntax.Literal('b'), syntax.Literal('c'))))
	if d := cmp.Diff(want, re.Tree()); d != "" {
		t.Errorf("Tree() (-want +got):\n%s", d)
	}

	p, err := prog.Compile(want)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(p, re.Prog()); d != "" {
		t.Errorf("Prog() (-want +got):\n%s", d)
	}

	re, err = Compile("a", WithStrategy(vm.StrategyRecursive))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := re.Machine().(*vm.Recursive); !ok {
		t.Errorf("machine is %T, want *vm.Recursive", re.Machine())
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, pattern := range []string{"+b", "*b", "|b", "?b", "(a", "a)", `\x`, `a\`, ""} {
		re, err := Compile(pattern)

		var e *syntax.Error
		if re != nil || !errors.As(err, &e) {
			t.Errorf("Compile(%q) = (%v, %v), want syntax error", pattern, re, err)
		}
	}

	if _, err := Compile("a", WithStrategy(vm.Strategy(9))); !errors.Is(err, vm.ErrUnknownStrategy) {
		t.Errorf("got %v, want unknown strategy", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile("(")
}

func TestLoad(t *testing.T) {
	re := MustCompile("(ab|cd)+")

	data, err := prog.Marshal(re.Prog())
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(data, WithStrategy(vm.StrategyRecursive))
	if err != nil {
		t.Fatal(err)
	}

	if d := cmp.Diff(re.Prog(), loaded.Prog()); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
	if ok, err := loaded.MatchString("abcdcd"); !ok || err != nil {
		t.Errorf("MatchString = (%v, %v)", ok, err)
	}
	if loaded.Tree() != nil || loaded.String() != "" {
		t.Error("loaded regexp must not have a source")
	}
	if _, err := loaded.Reference(); err == nil {
		t.Error("Reference of a loaded regexp must fail")
	}

	if _, err := Load([]byte("junk")); err == nil {
		t.Error("Load(junk) did not fail")
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", ""},
		{"abc", "abc"},
		{"a.b", `a\.b`},
		{`\.+*?()|`, `\\\.\+\*\?\(\)\|`},
		{"[a]{1}^$", "[a]{1}^$"},
		{"é*", `é\*`},
	}

	for _, tt := range tests {
		if got := QuoteMeta(tt.in); got != tt.out {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.in, got, tt.out)
		}

		if tt.in == "" {
			continue
		}

		ok, err := MustCompile(QuoteMeta(tt.in)).MatchString(tt.in)
		if !ok || err != nil {
			t.Errorf("quoted %q does not match itself: (%v, %v)", tt.in, ok, err)
		}
	}

	for b := 0; b < 0x80; b++ {
		if special(byte(b)) != syntax.IsMeta(rune(b)) {
			t.Errorf("special(%q) = %v, differs from syntax.IsMeta", rune(b), special(byte(b)))
		}
	}
}
