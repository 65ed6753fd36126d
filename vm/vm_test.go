package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/magnetde/starlark-vmre/prog"
	"github.com/magnetde/starlark-vmre/syntax"
)

func compile(t *testing.T, pattern string) *prog.Prog {
	t.Helper()

	n, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}

	p, err := prog.Compile(n)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}

	return p
}

// machines returns all evaluators, that are checked by the tests.
func machines() map[string]Machine {
	return map[string]Machine{
		"recursive":      &Recursive{},
		"backtrack":      &Backtrack{},
		"backtrack-memo": &Backtrack{Memoize: true},
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		// greedy repetitions
		{"a.*b", "acccb", true},
		{"a.*.+b", "ab", false},
		{"a.*.+b", "acb", true},

		// alternation
		{"abc|def", "def", true},
		{"abc|def", "abc", true},
		{"abc|def", "efa", false},
		{"a|b|c", "c", true},

		// anchored at the start of the text
		{"abc?", "acb", false},
		{"b", "ab", false},

		// prefix match
		{"ab", "abc", true},
		{"a*", "", true},
		{"a*", "bbb", true},

		{"(abc)*", "abcabc", true},
		{"(ab|cd)+", "abcdcd", true},
		{"(ab|cd)+", "", false},
		{"(ab|cd)+", "ef", false},
		{"abc?", "ab", true},
		{"abc?", "abc", true},
		{"a.+b", "ab", false},
		{"a.+b", "acb", true},
		{"a?.*.+b", "b", false},
		{"a?.*.+b", "acb", true},
		{"a?.*.+b", "accb", true},

		{"a", "", false},
		{".", "", false},
		{".", "\n", true},
		{"a.c", "aéc", true},
		{"é+", "ééx", true},
		{"a.c", "a\xffc", true},
		{"\xff", "\xff", true},
		{"()", "", true},
		{`\.\*`, ".*", true},
		{`\.\*`, "ab", false},
		{"((a|b)*c)+|d?", "ababcbc", true},
		{"((a|b)*c)+|d?", "x", true},
	}

	for name, m := range machines() {
		for _, tt := range tests {
			p := compile(t, tt.pattern)

			got, err := m.Match(p, tt.text)
			if err != nil {
				t.Errorf("%s: Match(%q, %q): %v", name, tt.pattern, tt.text, err)
				continue
			}
			if got != tt.want {
				t.Errorf("%s: Match(%q, %q) = %v, want %v", name, tt.pattern, tt.text, got, tt.want)
			}
		}
	}
}

func TestStrategyEquivalence(t *testing.T) {
	patterns := []string{
		"a", ".", "abc", "abc|def", "(abc)*", "(ab|cd)+", "abc?",
		"a.*b", "a.+b", "a.*.+b", "a?.*.+b", "((a|b)*c)+|d?",
		"(a|ab)(c|bcd)d", "(a+|b)+c", "a?a?a?aaa",
	}
	texts := []string{
		"", "a", "b", "ab", "abc", "abcabc", "abcdcd", "acb", "accb",
		"aaa", "aaaa", "abcd", "abcdd", "aabbc", "def", "efa", "xyz",
	}

	ms := machines()
	for _, pattern := range patterns {
		p := compile(t, pattern)

		for _, text := range texts {
			var want bool
			for i, name := range []string{"recursive", "backtrack", "backtrack-memo"} {
				got, err := ms[name].Match(p, text)
				if err != nil {
					t.Fatalf("%s: Match(%q, %q): %v", name, pattern, text, err)
				}

				if i == 0 {
					want = got
				} else if got != want {
					t.Errorf("Match(%q, %q): %s returned %v, recursive returned %v", pattern, text, name, got, want)
				}
			}
		}
	}
}

func TestRecursive_StackOverflow(t *testing.T) {
	p := compile(t, "a*b")
	text := strings.Repeat("a", 100) + "b"

	r := &Recursive{MaxDepth: 10}
	ok, err := r.Match(p, text)
	if ok || !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("got (%v, %v), want stack overflow", ok, err)
	}

	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("got %T, want *RuntimeError", err)
	}

	// The explicit stack is not bounded by the depth.
	ok, err = (&Backtrack{}).Match(p, text)
	if !ok || err != nil {
		t.Fatalf("backtrack: got (%v, %v), want match", ok, err)
	}

	r.MaxDepth = 200
	ok, err = r.Match(p, text)
	if !ok || err != nil {
		t.Fatalf("recursive: got (%v, %v), want match", ok, err)
	}
}

func TestRecursive_EmptyLoop(t *testing.T) {
	p := compile(t, "()*b")

	_, err := (&Recursive{MaxDepth: 1000}).Match(p, "a")
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("got %v, want stack overflow", err)
	}
}

func TestBacktrack_StackLimit(t *testing.T) {
	p := compile(t, "a*b")
	text := strings.Repeat("a", 100)

	b := &Backtrack{MaxStack: 10}
	ok, err := b.Match(p, text)
	if ok || !errors.Is(err, ErrStackLimit) {
		t.Fatalf("got (%v, %v), want stack limit", ok, err)
	}

	b.MaxStack = 0
	ok, err = b.Match(p, text)
	if ok || err != nil {
		t.Fatalf("got (%v, %v), want no match", ok, err)
	}
}

func TestBacktrack_Memoize(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"()*", "", true},
		{"()*b", "aaa", false},
		{"(a*)*b", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"(a*)*b", "aaab", true},
		{"(a?)*c", "aaaa", false},
		{"(a|())+c", "aac", true},
		{"(.*)*x", strings.Repeat("y", 50), false},
	}

	b := &Backtrack{Memoize: true}
	for _, tt := range tests {
		p := compile(t, tt.pattern)

		got, err := b.Match(p, tt.text)
		if err != nil {
			t.Errorf("Match(%q, %q): %v", tt.pattern, tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"abc?", "xxabx", true},
		{"abc?", "acb", false},
		{"b", "ab", true},
		{"a*", "", true},
		{"x+", "", false},
		{"(a|ab)(c|bcd)d", "xabcdd", true},
		{"(ab|cd)+x", "abcdabx", true},
		{"(ab|cd)+x", "abcdab", false},
		{"é.", "aaéx", true},
		{"b", "\xffb", true},
	}

	for name, m := range machines() {
		for _, tt := range tests {
			p := compile(t, tt.pattern)

			got, err := Search(m, p, tt.text)
			if err != nil {
				t.Errorf("%s: Search(%q, %q): %v", name, tt.pattern, tt.text, err)
				continue
			}
			if got != tt.want {
				t.Errorf("%s: Search(%q, %q) = %v, want %v", name, tt.pattern, tt.text, got, tt.want)
			}
		}
	}
}

// A memoized search keeps the states, that failed from earlier start
// positions, so a state is never explored twice in the whole text.
func TestBacktrack_SearchMemoize(t *testing.T) {
	b := &Backtrack{Memoize: true}

	p := compile(t, "(ab|cd)+x")
	text := strings.Repeat("y", 2000)

	allocs := testing.AllocsPerRun(3, func() {
		ok, err := b.Search(p, text)
		if ok || err != nil {
			t.Fatalf("got (%v, %v), want no match", ok, err)
		}
	})
	if allocs > 10 {
		t.Errorf("search allocated %v times, want a single set of visited states", allocs)
	}

	// Loops over empty expressions fail at every start position.
	p = compile(t, "(a*)*b")
	ok, err := b.Search(p, strings.Repeat("a", 200)+"c")
	if ok || err != nil {
		t.Errorf("got (%v, %v), want no match", ok, err)
	}

	ok, err = b.Search(p, "ccaab")
	if !ok || err != nil {
		t.Errorf("got (%v, %v), want match", ok, err)
	}
}

func TestMalformed(t *testing.T) {
	progs := []struct {
		name string
		p    *prog.Prog
		err  error
	}{
		{"empty", &prog.Prog{}, ErrBadTarget},
		{"jump", &prog.Prog{Inst: []prog.Inst{{Op: prog.InstJump, X: 7}}}, ErrBadTarget},
		{"split", &prog.Prog{Inst: []prog.Inst{{Op: prog.InstSplit, X: 1, Y: -1}, {Op: prog.InstChar, Char: 'x'}}}, ErrBadTarget},
		{"fall through", &prog.Prog{Inst: []prog.Inst{{Op: prog.InstAny}}}, ErrBadTarget},
		{"unknown", &prog.Prog{Inst: []prog.Inst{{Op: prog.InstOp(42)}}}, ErrUnknownInst},
	}

	for name, m := range machines() {
		for _, tt := range progs {
			ok, err := m.Match(tt.p, "a")

			var re *RuntimeError
			if ok || !errors.As(err, &re) || !errors.Is(err, tt.err) {
				t.Errorf("%s/%s: got (%v, %v), want %v", name, tt.name, ok, err, tt.err)
			}
		}
	}
}

func TestStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyBacktrack, StrategyRecursive} {
		got, err := ParseStrategy(strings.ToUpper(s.String()))
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = (%v, %v)", s.String(), got, err)
		}

		m, err := New(s)
		if err != nil || m == nil {
			t.Errorf("New(%v) = (%v, %v)", s, m, err)
		}
	}

	if _, err := ParseStrategy("dfa"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("ParseStrategy(dfa): got %v", err)
	}
	if _, err := New(Strategy(9)); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("New(9): got %v", err)
	}
	if got := Strategy(9).String(); got != "Strategy(9)" {
		t.Errorf("got %q", got)
	}

	ok, err := Run(compile(t, "ab"), "abc", StrategyRecursive)
	if !ok || err != nil {
		t.Errorf("Run: got (%v, %v)", ok, err)
	}
}
