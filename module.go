package vmre

import (
	"container/list"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/starlark-vmre/util"
	"github.com/magnetde/starlark-vmre/vm"
)

const (
	// Maximum cache size; 32 should be more than enough, because Starlark scripts stay relatively small.
	maxRegexpCacheSize = 32

	// Maximum possible value of a position.
	// Should be used as the default value of `endpos`, because the position parameters always get clamped.
	// See also `clamp()`.
	posMax = math.MaxInt
)

// Module is the Starlark module of the regular expression engine.
// A new type is implemented instead of using the `starlarkstruct.Module` type,
// since the module contains a LRU cache for compiled patterns.
// The cache is implemented with a map and a linked list.
// When the cache exceeds the maximum size, the least recently used element is purged.
// The cache is not synchronized, so a module must not be shared between concurrently running threads.
type Module struct {
	members starlark.StringDict

	list  *list.List                 // least recently used patterns
	cache map[cacheKey]*list.Element // mapping of patterns to list elements
}

// cacheKey is the key of a cached pattern.
type cacheKey struct {
	pattern  string
	isStr    bool
	strategy vm.Strategy
}

// Is necessary, because each list element needs to store the key in the map.
type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates a new vmre module.
func NewModule() *Module {
	members := starlark.StringDict{
		"RECURSIVE": starlark.String(vm.StrategyRecursive.String()),
		"BACKTRACK": starlark.String(vm.StrategyBacktrack.String()),

		"compile": starlark.NewBuiltin("compile", reCompile),
		"purge":   starlark.NewBuiltin("purge", rePurge),

		"match":  starlark.NewBuiltin("match", reMatch),
		"search": starlark.NewBuiltin("search", reSearch),
		"escape": starlark.NewBuiltin("escape", reEscape),
		"dump":   starlark.NewBuiltin("dump", reDump),
	}

	m := Module{
		members: members,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}

	return &m
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module vmre>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}

		return v, nil
	}

	return nil, nil
}

func (m *Module) AttrNames() []string { return m.members.Keys() }

// compile compiles a pattern. If the pattern is already in the cache,
// the compiled pattern is returned from the cache.
// Else, the pattern is compiled and then added to the cache.
// If the cache exceeds a certain size (`maxRegexpCacheSize`), the least recently used element is purged from the cache.
func (m *Module) compile(pattern strOrBytes, strategy vm.Strategy) (*Pattern, error) {
	key := cacheKey{
		pattern.value,
		pattern.isString,
		strategy,
	}

	if e, ok := m.cache[key]; ok { // pattern found in the cache
		m.list.MoveToFront(e) // "refresh" the pattern in the linked list
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := newPattern(pattern, strategy)
	if err != nil {
		return nil, err
	}

	// purge elements, if the size exceeds a certain threshold
	if m.list.Len() >= maxRegexpCacheSize {
		last := m.list.Back() // determine the oldest element
		lastKey := last.Value.(*cacheValue).key

		// Delete from map and list
		delete(m.cache, lastKey)
		m.list.Remove(last)
	}

	v := &cacheValue{
		pattern: p,
		key:     key,
	}

	m.cache[key] = m.list.PushFront(v)

	return p, nil
}

// purge clears the pattern cache.
func (m *Module) purge() {
	m.list.Init()
	clear(m.cache)
}

// cached returns the number of cached patterns.
func (m *Module) cached() int {
	return m.list.Len()
}

// reCompile precompiles a pattern into a pattern object,
// which can be used for matching using its `match` and `search` methods.
// Because all member functions of the module cache compiled patterns,
// this function is only necessary, if the number of patterns exceeds the maximum cache size (`maxRegexpCacheSize`).
func reCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern  patternParam
		strategy strategyParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "strategy?", &strategy); err != nil {
		return nil, err
	}

	return compilePattern(b, pattern, strategy)
}

// rePurge clears the pattern cache.
func rePurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m := b.Receiver().(*Module)
	m.purge()

	return starlark.None, nil
}

// reMatch reports whether the pattern matches at the start of the string.
func reMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern  patternParam
		str      strOrBytes
		strategy strategyParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "strategy?", &strategy); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, strategy)
	if err != nil {
		return nil, err
	}

	return regexpMatch(p, str, 0, posMax)
}

// regexpMatch - see `reMatch`.
func regexpMatch(p *Pattern, str strOrBytes, pos, endpos int) (starlark.Value, error) {
	s, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	ok, err := p.re.MatchString(s)
	if err != nil {
		return nil, err
	}

	return starlark.Bool(ok), nil
}

// reSearch scans through the string looking for the first location where the pattern matches.
func reSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern  patternParam
		str      strOrBytes
		strategy strategyParam
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &str, "strategy?", &strategy); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, strategy)
	if err != nil {
		return nil, err
	}

	return regexpSearch(p, str, 0, posMax)
}

// regexpSearch - see `reSearch`.
func regexpSearch(p *Pattern, str strOrBytes, pos, endpos int) (starlark.Value, error) {
	s, err := checkParams(p, str, pos, endpos)
	if err != nil {
		return nil, err
	}

	ok, err := p.re.SearchString(s)
	if err != nil {
		return nil, err
	}

	return starlark.Bool(ok), nil
}

// checkParams checks, if the parameter `str` matches the type of the pattern.
// If not, an error is returned.
// Also, the parameters `pos` and `endpos` get clamped in range [0, n], where n is the length of `str`.
// This function returns `s[pos:endpos]`.
func checkParams(p *Pattern, str strOrBytes, pos, endpos int) (string, error) {
	if err := p.pattern.sameType(str); err != nil {
		return "", err
	}

	n := len(str.value)
	pos = clamp(pos, n)
	endpos = clamp(endpos, n)

	if pos > endpos {
		return "", nil
	}

	return str.value[pos:endpos], nil
}

// clamp clamps `pos` between 0 and `length`.
func clamp(pos, length int) int {
	return min(max(pos, 0), length)
}

// reEscape escapes all metacharacters in the pattern.
// This is useful if you want to match an arbitrary literal string that may have metacharacters in it.
func reEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern strOrBytes
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	return pattern.asType(QuoteMeta(pattern.value)), nil
}

// reDump returns the disassembled program of a pattern.
func reDump(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern patternParam
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	p, err := compilePattern(b, pattern, strategyParam{})
	if err != nil {
		return nil, err
	}

	return p.dump(), nil
}

// Parameters

// patternParam is a Starlark type, representing the possible types of the pattern parameter.
type patternParam struct {
	compiled *Pattern
	raw      strOrBytes
}

type strOrBytes struct {
	value    string
	isString bool
}

// strategyParam is the optional strategy parameter.
type strategyParam struct {
	value vm.Strategy
	set   bool
}

var (
	_ starlark.Unpacker = (*strOrBytes)(nil)
	_ starlark.Unpacker = (*patternParam)(nil)
	_ starlark.Unpacker = (*strategyParam)(nil)
)

func (p *patternParam) Unpack(v starlark.Value) error {
	if c, ok := v.(*Pattern); ok {
		p.compiled = c
		return nil
	}

	if err := p.raw.Unpack(v); err != nil {
		return errors.New("first argument must be string or compiled pattern")
	}

	return nil
}

func (s *strOrBytes) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case starlark.String:
		s.value = string(t)
		s.isString = true
	case starlark.Bytes:
		s.value = string(t)
		s.isString = false
	default:
		return fmt.Errorf("got %s, want str or bytes", v.Type())
	}

	return nil
}

func (s *strOrBytes) sameType(v strOrBytes) error {
	if s.isString != v.isString {
		return fmt.Errorf("got %s, want %s", v.typeString(), s.typeString())
	}

	return nil
}

func (s *strOrBytes) typeString() string {
	if s.isString {
		return "str"
	}

	return "bytes"
}

func (s *strOrBytes) asType(v string) starlark.Value {
	if s.isString {
		return starlark.String(v)
	}

	return starlark.Bytes(v)
}

// repr returns the quoted string, with a "b" prefix for bytes.
func (s *strOrBytes) repr() string {
	r := util.Repr(s.value)
	if !s.isString {
		r = "b" + r
	}

	return r
}

func (s *strategyParam) Unpack(v starlark.Value) error {
	name, ok := starlark.AsString(v)
	if !ok {
		return fmt.Errorf("got %s, want str", v.Type())
	}

	strategy, err := vm.ParseStrategy(name)
	if err != nil {
		return err
	}

	s.value = strategy
	s.set = true
	return nil
}

// compilePattern compiles a pattern by using the pattern cache.
// The builtin receiver of the first parameter must be of type `*Module`.
// See also `Module.compile`.
func compilePattern(b *starlark.Builtin, p patternParam, strategy strategyParam) (*Pattern, error) {
	if p.compiled != nil {
		if strategy.set && strategy.value != p.compiled.strategy {
			return nil, errors.New("cannot change the strategy of a compiled pattern")
		}

		return p.compiled, nil
	}

	return b.Receiver().(*Module).compile(p.raw, strategy.value)
}

// Compiled pattern

// Pattern is a Starlark representation of a compiled regular expression.
type Pattern struct {
	re       *Regexp
	pattern  strOrBytes
	strategy vm.Strategy
}

// newPattern creates a new pattern object, which is also a Starlark value.
func newPattern(pattern strOrBytes, strategy vm.Strategy) (*Pattern, error) {
	re, err := Compile(pattern.value, WithMachine(scriptMachine(strategy)))
	if err != nil {
		return nil, err
	}

	p := Pattern{
		re:       re,
		pattern:  pattern,
		strategy: strategy,
	}

	return &p, nil
}

// scriptMachine returns the evaluator for patterns of scripts.
// Scripts may contain loops over empty expressions, so the backtracking evaluator memoizes.
func scriptMachine(s vm.Strategy) vm.Machine {
	if s == vm.StrategyRecursive {
		return &vm.Recursive{}
	}

	return &vm.Backtrack{Memoize: true}
}

// Check, if the type satisfies the interfaces.
var (
	_ starlark.Value      = (*Pattern)(nil)
	_ starlark.HasAttrs   = (*Pattern)(nil)
	_ starlark.Comparable = (*Pattern)(nil)
)

func (p *Pattern) String() string {
	r := p.pattern.repr()
	if len(r) > 200 {
		r = r[:200]
	}

	var b strings.Builder
	b.WriteString("vmre.compile(")
	b.WriteString(r)
	if p.strategy != vm.StrategyBacktrack {
		b.WriteString(", vmre.")
		b.WriteString(strings.ToUpper(p.strategy.String()))
	}
	b.WriteByte(')')
	return b.String()
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return true }
func (p *Pattern) Hash() (uint32, error) { return starlark.String(p.pattern.value).Hash() }

// dump returns the disassembled program.
func (p *Pattern) dump() starlark.String {
	return starlark.String(p.re.Prog().String())
}

// Methods of the pattern object.
var patternMethods = map[string]*starlark.Builtin{
	"match":  starlark.NewBuiltin("match", patternMatch),
	"search": starlark.NewBuiltin("search", patternSearch),
	"dump":   starlark.NewBuiltin("dump", patternDump),
}

// patternMembers contains members of the pattern object.
var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"pattern":  func(p *Pattern) starlark.Value { return p.pattern.asType(p.pattern.value) },
	"strategy": func(p *Pattern) starlark.Value { return starlark.String(p.strategy.String()) },
}

// Attr gets a value for a string attribute.
func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if o, ok := patternMethods[name]; ok {
		return o.BindReceiver(p), nil
	}

	if o, ok := patternMembers[name]; ok {
		return o(p), nil
	}

	return nil, nil
}

// AttrNames lists available dot expression strings.
func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))

	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (p *Pattern) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Pattern)

	switch op {
	case syntax.EQL:
		return patternEquals(p, o), nil
	case syntax.NEQ:
		return !patternEquals(p, o), nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, o.Type())
	}
}

func patternEquals(x, y *Pattern) bool {
	return x.pattern == y.pattern && x.strategy == y.strategy
}

// patternMatch - see `reMatch`.
func patternMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return regexpMatch(p, str, pos, endpos)
}

// patternSearch - see `reSearch`.
func patternSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		str    strOrBytes
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &str, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return regexpSearch(p, str, pos, endpos)
}

// patternDump - see `reDump`.
func patternDump(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	p := b.Receiver().(*Pattern)
	return p.dump(), nil
}
