// Package emit turns a flattened, scope-analyzed translation (package ctx)
// into a single C++ translation unit string, ready to hand to a C++
// compiler. See frame.go for how it plays the teacher's vm role.
package emit

import (
	"strings"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/runtime"
)

const includes = `#include <cassert>
#include <cinttypes>
#include <cstdarg>
#include <cstddef>
#include <cstdint>
#include <cstdio>
#include <cstdlib>
#include <cstring>
#include <cctype>
#include <algorithm>
#include <map>
#include <set>
#include <sstream>
#include <vector>

struct node;
struct tuple;
struct dict;
struct context;

`

// Emit renders root, and every sub-module it transitively imports, as one
// complete C++ source file: the arena allocator and hand-written object
// model, the built-in function/module preamble, every function and class
// body in the program, then main().
func Emit(root *ctx.Context) (string, error) {
	p := collectProgram(root)

	var b strings.Builder
	b.WriteString(includes)
	b.WriteString(runtime.Source())
	b.WriteString("\n")

	writeBuiltinWrappers(&b)
	writeBuiltinModules(&b)

	writePrototypes(&b, p)
	writeConstants(&b, p)

	if err := writeClasses(&b, p); err != nil {
		return "", err
	}
	if err := writeFunctions(&b, p); err != nil {
		return "", err
	}
	if err := writeModuleInits(&b, p, root); err != nil {
		return "", err
	}
	if err := writeMain(&b, p, root); err != nil {
		return "", err
	}

	return b.String(), nil
}
