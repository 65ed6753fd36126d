// vmgrep prints the lines of its input, that contain a match of a pattern.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"

	vmre "github.com/magnetde/starlark-vmre"
	"github.com/magnetde/starlark-vmre/prog"
)

// Exit codes.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

// maxLineSize is the maximum length of an input line.
const maxLineSize = 16 << 20

var log = commonlog.GetLogger("vmgrep")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// verbosity is a flag, that counts how often it was given.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(s string) error {
	ok, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if ok {
		*v++
	}
	return nil
}

// options are the command line flags.
type options struct {
	strategy   string
	maxDepth   int
	memoize    bool
	dump       bool
	emit       string
	load       string
	verify     bool
	configPath string
	verbose    verbosity
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("vmgrep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.strategy, "strategy", "", "Evaluation strategy: recursive or backtrack")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum recursion depth of the recursive strategy")
	fs.BoolVar(&opts.memoize, "memo", false, "Skip already explored states in the backtrack strategy")
	fs.BoolVar(&opts.dump, "dump", false, "Print the compiled program before matching")
	fs.StringVar(&opts.emit, "emit", "", "Write the compiled program to `file` and exit")
	fs.StringVar(&opts.load, "load", "", "Read the compiled program from `file` instead of compiling a pattern")
	fs.BoolVar(&opts.verify, "verify", false, "Cross-check every line with the regexp2 engine")
	fs.StringVar(&opts.configPath, "config", "", "Read the configuration from `file` (default ./"+configName+")")
	fs.Var(&opts.verbose, "v", "Verbose output; repeat for debug output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vmgrep [options] PATTERN [FILE...]\n")
		fmt.Fprintf(stderr, "       vmgrep [options] -load PROGRAM [FILE...]\n\n")
		fmt.Fprintf(stderr, "Prints the lines, that contain a match of PATTERN. Reads standard input, if no file is given.\n")
	fmt.Fprintf(stderr, "The end of a line is a match position too, so a PATTERN like 'a*', that matches the\n")
	fmt.Fprintf(stderr, "empty string, prints every line, including empty ones.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  vmgrep 'ab(c|d)*' input.txt           # Print matching lines\n")
		fmt.Fprintf(stderr, "  vmgrep -dump 'a.*b' < /dev/null        # Print the compiled program\n")
		fmt.Fprintf(stderr, "  vmgrep -emit prog.cbor 'a+b'           # Compile to a file\n")
		fmt.Fprintf(stderr, "  vmgrep -load prog.cbor input.txt       # Match with a compiled program\n")
		fmt.Fprintf(stderr, "\nExit status is 0 if a line matched, 1 if no line matched and 2 if an error occurred.\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		return exitError
	}

	configureLogging(int(opts.verbose))

	g, err := newGrep(fs, &opts, stdout)
	if err != nil {
		log.Error(err.Error())
		return exitError
	}

	if g == nil { // program emitted
		return exitMatch
	}

	matched, err := g.run(stdin)
	if err != nil {
		log.Error(err.Error())
		return exitError
	}

	if !matched {
		return exitNoMatch
	}

	return exitMatch
}

// configureLogging writes unbuffered log messages to stderr, because the process exits with os.Exit.
func configureLogging(verbose int) {
	backend := simple.NewBackend()
	backend.Buffered = false
	commonlog.SetBackend(backend)
	commonlog.Configure(verbose, nil)
}

// grep scans inputs for lines, that match a regular expression.
type grep struct {
	re        *vmre.Regexp
	ref       *vmre.Reference // nil without -verify
	files     []string
	filenames bool
	out       *bufio.Writer
}

// newGrep evaluates the flags and configuration, and compiles the pattern.
// It returns nil without an error, if the program was written with -emit.
func newGrep(fs *flag.FlagSet, opts *options, stdout io.Writer) (*grep, error) {
	c, path, err := FindConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		log.Debugf("configuration read from %s", path)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			c.Engine.Strategy = opts.strategy
		case "max-depth":
			c.Engine.MaxDepth = opts.maxDepth
		case "memo":
			c.Engine.Memoize = opts.memoize
		case "dump":
			c.Output.Dump = opts.dump
		}
	})

	if err := c.Validate(); err != nil {
		return nil, err
	}

	m, err := c.Machine()
	if err != nil {
		return nil, err
	}

	log.Debugf("strategy %s, max-depth %d, max-stack %d, memoize %t",
		c.Engine.Strategy, c.Engine.MaxDepth, c.Engine.MaxStack, c.Engine.Memoize)

	args := fs.Args()

	var re *vmre.Regexp
	if opts.load != "" {
		data, err := os.ReadFile(opts.load)
		if err != nil {
			return nil, err
		}

		re, err = vmre.Load(data, vmre.WithMachine(m))
		if err != nil {
			return nil, fmt.Errorf("cannot load %s: %w", opts.load, err)
		}
	} else {
		if len(args) == 0 {
			fs.Usage()
			return nil, errors.New("missing pattern")
		}

		re, err = vmre.Compile(args[0], vmre.WithMachine(m))
		if err != nil {
			return nil, err
		}

		args = args[1:]
	}

	log.Infof("compiled program has %d instructions", re.Prog().Len())

	w := bufio.NewWriter(stdout)

	if c.Output.Dump {
		if _, err := re.Prog().Dump(w); err != nil {
			return nil, err
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
	}

	if opts.emit != "" {
		data, err := prog.Marshal(re.Prog())
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.emit, data, 0o644); err != nil {
			return nil, err
		}

		log.Infof("program written to %s", opts.emit)
		return nil, nil
	}

	g := grep{
		re:        re,
		files:     args,
		filenames: c.showFilenames(len(args)),
		out:       w,
	}

	if opts.verify {
		g.ref, err = re.Reference()
		if err != nil {
			return nil, fmt.Errorf("-verify needs a pattern: %w", err)
		}

		log.Debugf("reference pattern %s", g.ref)
	}

	return &g, nil
}

// run scans all inputs and reports whether any line matched.
func (g *grep) run(stdin io.Reader) (bool, error) {
	defer g.out.Flush()

	if len(g.files) == 0 {
		return g.scan(stdin, "(standard input)")
	}

	matched := false
	for _, name := range g.files {
		ok, err := g.scanFile(name)
		if err != nil {
			return matched, err
		}

		matched = matched || ok
	}

	return matched, nil
}

func (g *grep) scanFile(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return g.scan(f, name)
}

// scan prints the matching lines of `r`.
func (g *grep) scan(r io.Reader, name string) (bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	matched := false
	for lineno := 1; sc.Scan(); lineno++ {
		line := sc.Text()

		ok, err := g.re.SearchString(line)
		if err != nil {
			return matched, fmt.Errorf("%s:%d: %w", name, lineno, err)
		}

		if g.ref != nil {
			g.verify(name, lineno, line, ok)
		}

		if !ok {
			continue
		}

		matched = true

		if g.filenames {
			g.out.WriteString(name)
			g.out.WriteByte(':')
		}
		g.out.WriteString(line)
		if err := g.out.WriteByte('\n'); err != nil {
			return matched, err
		}
	}

	if err := sc.Err(); err != nil {
		return matched, fmt.Errorf("%s: %w", name, err)
	}

	return matched, nil
}

// verify compares the result of a line with the reference engine and logs disagreements.
func (g *grep) verify(name string, lineno int, line string, got bool) {
	want, err := g.ref.SearchString(line)
	if err != nil {
		log.Warningf("%s:%d: reference engine failed: %s", name, lineno, err)
		return
	}

	if got != want {
		log.Warningf("%s:%d: result %t differs from the reference result %t for line %q", name, lineno, got, want, line)
	}
}
