// Package driver wires the front end (lexer/parser), translate, and emit
// packages into the actual command-line tool: read a .py file, translate
// it to C++, hand the result to g++, and optionally run the result.
//
// It plays the role the teacher's main.go/repl.go pair played for Kong:
// main.go's executeFile drove lexer -> parser -> compiler -> vm in a
// straight line with explicit os.Exit codes on failure; Run here drives
// lexer -> parser -> translate -> emit -> g++ -> exec the same way, with
// the teacher's repl.model taking over only when -v asks for the
// Bubble Tea progress display instead of plain stderr lines.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/emit"
	"github.com/dr8co/pythonc/lexer"
	"github.com/dr8co/pythonc/parser"
	"github.com/dr8co/pythonc/translate"
)

// Options holds the flags and positional arguments cmd/pythonc parses.
type Options struct {
	Input       string   // path to the entry-point .py file
	Output      string   // -o: override the compiled binary's path
	Optimize    bool     // -O: pass -O3 to the C++ compiler
	CompileOnly bool     // -c: stop after producing the binary
	Verbose     bool     // -v: show per-phase timing
	Args        []string // forwarded to the compiled program's argv
}

// TranslateError reports a failure at a specific source position, the
// position shaped the way token.Token's Line field already is.
type TranslateError struct {
	Line int
	Msg  string
}

func (e *TranslateError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// phaseNames is the fixed phase list the progress UI and plain reporter
// both walk in order.
var phaseNames = []string{
	"parse",
	"translate (flatten + reduce)",
	"emit (scope analysis + codegen)",
	"compile (g++)",
	"run",
}

// Run executes the full pipeline described by opts: parse, translate,
// emit, compile, and (unless opts.CompileOnly) run. Phase completions are
// reported through report, a channel this function closes when done;
// the caller (Start, or the progress UI in progress.go) drains it.
func Run(opts Options, report chan<- phaseReport) error {
	defer close(report)

	src, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("pythonc: reading %s: %w", opts.Input, err)
	}

	moduleName := moduleNameFor(opts.Input)
	entryDir := filepath.Dir(absPath(opts.Input))

	var mod *ctx.Context

	start := time.Now()
	l := lexer.New(string(src))
	p := parser.New(l)
	astMod := p.ParseModule()
	if errs := p.Errors(); len(errs) != 0 {
		err := &TranslateError{Msg: "parse errors:\n  " + strings.Join(errs, "\n  ")}
		report <- phaseReport{name: phaseNames[0], dur: time.Since(start), err: err}
		return err
	}
	report <- phaseReport{name: phaseNames[0], dur: time.Since(start)}

	start = time.Now()
	tr := translate.New(entryDir)
	mod, err = tr.TranslateModule(astMod, moduleName)
	if err != nil {
		report <- phaseReport{name: phaseNames[1], dur: time.Since(start), err: err}
		return err
	}
	report <- phaseReport{name: phaseNames[1], dur: time.Since(start)}

	dumpDot(mod)

	start = time.Now()
	cppSrc, err := emit.Emit(mod)
	if err != nil {
		report <- phaseReport{name: phaseNames[2], dur: time.Since(start), err: err}
		return err
	}
	report <- phaseReport{name: phaseNames[2], dur: time.Since(start)}

	binPath := opts.Output
	if binPath == "" {
		binPath = moduleName
	}
	cppPath := binPath + ".cpp"
	if err := os.WriteFile(cppPath, []byte(cppSrc), 0o644); err != nil {
		err = fmt.Errorf("pythonc: writing %s: %w", cppPath, err)
		report <- phaseReport{name: phaseNames[3], err: err}
		return err
	}

	start = time.Now()
	if err := compile(cppPath, binPath, opts.Optimize); err != nil {
		report <- phaseReport{name: phaseNames[3], dur: time.Since(start), err: err}
		return err
	}
	report <- phaseReport{name: phaseNames[3], dur: time.Since(start)}

	if opts.CompileOnly {
		return nil
	}

	start = time.Now()
	runErr := runBinary(binPath, opts.Args)
	report <- phaseReport{name: phaseNames[4], dur: time.Since(start), err: runErr}
	return runErr
}

// moduleNameFor derives a C++-safe module name from a .py file path: its
// base name with the extension stripped, matching the "entry module is
// named after its file" rule import resolution also relies on.
func moduleNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Start runs the pipeline and reports progress through the Bubble Tea UI
// when opts.Verbose is set, plain stderr lines otherwise, the same split
// repl.model.applyStyle draws between colored and NoColor output. It
// returns the pipeline's error, if any.
func Start(opts Options) error {
	reports := make(chan phaseReport)

	var pipelineErr error
	done := make(chan struct{})
	go func() {
		pipelineErr = Run(opts, reports)
		close(done)
	}()

	var reportErr error
	if opts.Verbose {
		reportErr = runProgressUI(reports)
	} else {
		reportErr = runPlainReporter(reports)
	}
	<-done

	if pipelineErr != nil {
		return pipelineErr
	}
	return reportErr
}
