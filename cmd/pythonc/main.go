// pythonc translates a Python-subset source file into C++, compiles it
// with the host toolchain, and runs the result.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dr8co/pythonc/driver"
)

const version = "0.1.0"

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `pythonc v%s

USAGE:
    %s [OPTIONS] <input.py> [program-args...]

DESCRIPTION:
    pythonc translates a Python-subset source file to C++, compiles it
    with g++ (or $CXX), and runs the resulting binary.

OPTIONS:
    -O, --optimize          Build with optimizations (-O3) instead of -O0 -g
    -c, --compile-only      Compile but don't run the resulting binary
    -o, --output <path>     Write the binary (and <path>.cpp) to path
    -v, --verbose           Show a live per-phase progress display
    -h, --help              Show this help message

EXAMPLES:
    %s script.py
    %s -O -o bin/script script.py
    %s -c script.py
    %s -v script.py arg1 arg2

ENVIRONMENT:
    CXX              C++ compiler to invoke (default: g++, falling back to c++)
    PYTHONC_DOT_CMD  if set, shells out a Graphviz dump of the syntax graph
`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	optimizeFlag := flag.Bool("optimize", false, "Build with optimizations")
	compileOnlyFlag := flag.Bool("compile-only", false, "Compile but don't run")
	outputFlag := flag.String("output", "", "Override the output path")
	verboseFlag := flag.Bool("verbose", false, "Show per-phase progress")

	flag.BoolVar(optimizeFlag, "O", false, "Build with optimizations")
	flag.BoolVar(compileOnlyFlag, "c", false, "Compile but don't run")
	flag.StringVar(outputFlag, "o", "", "Override the output path")
	flag.BoolVar(verboseFlag, "v", false, "Show per-phase progress")

	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	opts := driver.Options{
		Input:       args[0],
		Output:      *outputFlag,
		Optimize:    *optimizeFlag,
		CompileOnly: *compileOnlyFlag,
		Verbose:     *verboseFlag,
		Args:        args[1:],
	}

	if err := driver.Start(opts); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "pythonc: %s\n", err)
		os.Exit(1)
	}
}
