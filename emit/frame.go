// Package emit serializes a translated, flattened, scope-analyzed
// [ctx.Context] tree into a single C++ translation unit: an arena
// allocator section and the hand-written object model (package runtime),
// followed by per-module constant definitions, function/class bodies, and
// a main() that drives the root module.
//
// It plays the role the teacher's vm package played for executing
// compiled bytecode, but the target here is a text file rather than a
// running frame stack: where vm.Run walks code.Instructions dispatching
// on opcode, Emit walks graph.Node trees dispatching on [graph.Kind] and
// writes the equivalent C++ statement or expression directly, the same
// shape other_examples' codegen.go/c_ast_translator.go use for walking a
// typed node tree into indented target-language text through a
// strings.Builder.
package emit

import (
	"fmt"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
	"github.com/dr8co/pythonc/scope"
)

// moduleState is the per-Context scope-analysis result the emitter needs
// while walking that module's functions and top-level statements.
type moduleState struct {
	ctx        *ctx.Context
	mod        *scope.ModuleScope
	funcScopes map[string]*scope.FunctionScope // keyed by FunctionInfo.CName
}

// frame carries the resolution context for one statement/expression walk:
// which module's constant tables to name symbols against, and which
// function scope (nil at module or class-body level) classifies Load/Store
// names as local vs. global.
type frame struct {
	c   *ctx.Context
	fs  *scope.FunctionScope
	mod *scope.ModuleScope
}

// resolveName renders the C++ lvalue a Load or Store of name compiles to:
// a function local lives in the frame's own ctx->locals, everything else
// is a module global on globals->locals. Both variables are always in
// scope by construction — every generated function parameter, and every
// generated main()/module-init block, binds local names ctx and globals
// to the right pair of frames.
func resolveName(fr frame, name string) string {
	b := scope.Resolve(name, fr.fs, fr.mod)
	if b.Kind == scope.Local {
		return fmt.Sprintf("ctx->locals[%d]", b.Index)
	}
	return fmt.Sprintf("globals->locals[%d]", b.Index)
}

// explicitGlobals collects the names a function body declares global via
// a top-level `global x, y` statement.
func explicitGlobals(body []*graph.Node) []string {
	var names []string
	for _, stmt := range body {
		if stmt.Kind != graph.Global {
			continue
		}
		if ns, ok := stmt.Attr("names").([]string); ok {
			names = append(names, ns...)
		}
	}
	return names
}

// analyzeContext runs the two-pass scope analysis over c: pass 1 over
// every function body, pass 2 (ModuleScope.Finalize) over c's own
// top-level statements plus every function's surfaced globals. It also
// fills in FunctionInfo.LocalCount/UsesGlobals and c.Globals, which
// nothing populated before the emitter ran.
func analyzeContext(c *ctx.Context) *moduleState {
	ms := &moduleState{ctx: c, funcScopes: map[string]*scope.FunctionScope{}}
	allFS := make([]*scope.FunctionScope, 0, len(c.Functions))
	for _, fi := range c.Functions {
		body := fi.Node.Block("body")
		fs := scope.AnalyzeFunction(body, explicitGlobals(body))
		fi.LocalCount = len(fs.Locals)
		fi.UsesGlobals = fs.UsesGlobals
		ms.funcScopes[fi.CName] = fs
		allFS = append(allFS, fs)
	}
	mod := scope.NewModuleScope()
	c.Globals = mod.Finalize(c.Statements(), allFS)
	ms.mod = mod
	return ms
}
