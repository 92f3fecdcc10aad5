package emit

import (
	"fmt"
	"strings"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
)

// program collects every module reachable from the root, recursively, so
// forward declarations and constant/function definitions can be written
// once across the whole flat translation unit rather than per module.
type program struct {
	order []*ctx.Context
	seen  map[*ctx.Context]bool
	state map[*ctx.Context]*moduleState
}

func collectProgram(root *ctx.Context) *program {
	p := &program{seen: map[*ctx.Context]bool{}, state: map[*ctx.Context]*moduleState{}}
	p.visit(root)
	return p
}

func (p *program) visit(c *ctx.Context) {
	if p.seen[c] {
		return
	}
	p.seen[c] = true
	for _, mi := range c.Modules {
		p.visit(mi.Context)
	}
	collectConstants(c)
	p.state[c] = analyzeContext(c)
	p.order = append(p.order, c)
}

// writePrototypes forward-declares every function across the program so
// mutual recursion and forward references between functions (and across
// modules, once all compile into one translation unit) resolve regardless
// of definition order.
func writePrototypes(b *strings.Builder, p *program) {
	for _, c := range p.order {
		for _, fi := range c.Functions {
			fmt.Fprintf(b, "static node* %s(context* globals, const std::vector<node*>& args);\n", fi.CName)
		}
	}
	b.WriteByte('\n')
}

// writeConstants emits the interned literal tables for every module, named
// with that module's prefix so identical literals in different modules
// don't collide at file scope.
func writeConstants(b *strings.Builder, p *program) {
	for _, c := range p.order {
		for _, v := range c.Ints.Values() {
			fmt.Fprintf(b, "static node* %s = make_int(%d);\n", intSym(c, v), v)
		}
		for _, s := range c.Strings.Values() {
			e, _ := c.Strings.Entry(s)
			fmt.Fprintf(b, "static node* %s_%s = make_str(%s);\n", modPrefix(c), e.Symbol(), cstr(s))
		}
		for i, bts := range c.Bytes.Values() {
			fmt.Fprintf(b, "static node* %s = make_bytes(std::string(%s, %d));\n",
				fmt.Sprintf("%s_bytes_singleton_%d", modPrefix(c), i), bytesLiteral(bts), len(bts))
		}
	}
	b.WriteByte('\n')
}

// bytesLiteral renders b as a C string literal suitable for
// std::string's (const char*, size_t) constructor, escaping every byte so
// embedded NULs and non-ASCII bytes survive.
func bytesLiteral(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, by := range b {
		fmt.Fprintf(&sb, "\\x%02x", by)
	}
	sb.WriteByte('"')
	return sb.String()
}

// writeFunctions emits every function body in the program.
func writeFunctions(b *strings.Builder, p *program) error {
	for _, c := range p.order {
		ms := p.state[c]
		for _, fi := range c.Functions {
			if err := writeFunction(b, c, ms, fi); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFunction(b *strings.Builder, c *ctx.Context, ms *moduleState, fi *ctx.FunctionInfo) error {
	fs := ms.funcScopes[fi.CName]
	fr := frame{c: c, fs: fs, mod: ms.mod}

	argsNode := fi.Node.Edge("args").Value()
	var params []string
	var defaults []*graph.Node
	var vararg, kwarg string
	if argsNode != nil {
		if p, ok := argsNode.Attr("params").([]string); ok {
			params = p
		}
		if d, ok := argsNode.Attr("defaults").([]*graph.Node); ok {
			defaults = d
		}
		vararg, _ = argsNode.Attr("vararg").(string)
		kwarg, _ = argsNode.Attr("kwarg").(string)
	}

	fmt.Fprintf(b, "static node* %s(context* globals, const std::vector<node*>& args) {\n", fi.CName)
	fmt.Fprintf(b, "    context* ctx = alloc_context_cell();\n")
	fmt.Fprintf(b, "    node* ctx_locals[%d];\n", max(fi.LocalCount, 1))
	fmt.Fprintf(b, "    ctx->locals = ctx_locals;\n")
	fmt.Fprintf(b, "    ctx->nlocals = %d;\n", fi.LocalCount)
	fmt.Fprintf(b, "    for (int i = 0; i < %d; i++) ctx->locals[i] = make_none();\n", fi.LocalCount)
	fmt.Fprintf(b, "    ctx->globals = globals;\n")
	fmt.Fprintf(b, "    ctx->parent = nullptr;\n")

	nreq := len(params) - len(defaults)
	if nreq < 0 {
		nreq = 0
	}
	if vararg == "" {
		fmt.Fprintf(b, "    if (args.size() < %d || args.size() > %d) error(\"%s() takes between %d and %d arguments\");\n",
			nreq, len(params), fi.Name, nreq, len(params))
	} else {
		fmt.Fprintf(b, "    if (args.size() < %d) error(\"%s() takes at least %d arguments\");\n", nreq, fi.Name, nreq)
	}

	for i, pname := range params {
		idx := fs.Locals[pname]
		if i < nreq {
			fmt.Fprintf(b, "    ctx->locals[%d] = args[%d];\n", idx, i)
			continue
		}
		def := defaults[i-nreq]
		defExpr, err := exprString(def, fr)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "    ctx->locals[%d] = args.size() > %d ? args[%d] : %s;\n", idx, i, i, defExpr)
	}
	if vararg != "" {
		idx := fs.Locals[vararg]
		fmt.Fprintf(b, "    ctx->locals[%d] = make_list(std::vector<node*>(args.begin() + %d, args.end()));\n", idx, len(params))
	}
	if kwarg != "" {
		idx := fs.Locals[kwarg]
		fmt.Fprintf(b, "    ctx->locals[%d] = make_dict();\n", idx)
	}

	w := &stmtWriter{indent: 1}
	if err := emitBlock(w, fi.Node.Block("body"), fr); err != nil {
		return err
	}
	b.WriteString(w.b.String())
	b.WriteString("    return make_none();\n")
	b.WriteString("}\n\n")
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// writeClasses emits one init_<InstanceName> function per class, building
// a class_data with its method table populated from every Store the class
// body left behind (a FunctionDef nested in a class body reduces to
// Store(name, Ref{type:"function",...}) exactly like a module-level def).
// Classes are constructed unconditionally before any module statement
// runs, rather than at the ClassDef's original lexical position -- Python's
// dynamic class-creation-at-statement-position semantics aren't replicated.
func writeClasses(b *strings.Builder, p *program) error {
	for _, c := range p.order {
		ms := p.state[c]
		fr := frame{c: c, fs: nil, mod: ms.mod}
		for _, ci := range c.Classes {
			fmt.Fprintf(b, "static node* %s;\n", ci.InstanceName)
			fmt.Fprintf(b, "static void init_%s(context* globals) {\n", ci.InstanceName)
			fmt.Fprintf(b, "    auto* methods = new std::map<std::string, node*>();\n")
			fmt.Fprintf(b, "    context* ctx = globals;\n")
			for _, stmt := range ci.Node.Block("body") {
				if stmt.Kind != graph.Store {
					continue
				}
				name, _ := stmt.Attr("name").(string)
				expr, err := exprString(stmt.Edge("expr").Value(), fr)
				if err != nil {
					return err
				}
				fmt.Fprintf(b, "    (*methods)[%s] = %s;\n", cstr(name), expr)
			}
			fmt.Fprintf(b, "    auto* cd = new class_data{%s, methods, nullptr};\n", cstr(ci.Name))
			fmt.Fprintf(b, "    node* cls = alloc_node();\n")
			fmt.Fprintf(b, "    cls->tag = tag_t::tag_class;\n")
			fmt.Fprintf(b, "    cls->payload.ptr = cd;\n")
			fmt.Fprintf(b, "    %s = cls;\n", ci.InstanceName)
			b.WriteString("}\n\n")
		}
	}
	return nil
}

// writeModuleInits emits a recursive init_mod_<module name> per imported
// sub-module: it runs that module's own top-level statements against a
// fresh context, then publishes every module-level global through a
// name -> node* exports map so py_getattr on the resulting module object
// is a genuine runtime lookup rather than a compile-time-resolved slot.
func writeModuleInits(b *strings.Builder, p *program, root *ctx.Context) error {
	for _, c := range p.order {
		if c == root {
			continue
		}
		ms := p.state[c]
		fr := frame{c: c, fs: nil, mod: ms.mod}
		nlocals := len(c.Globals) + 1

		fmt.Fprintf(b, "static node* module_obj_mod_%s;\n", sanitizeIdent(c.ModuleName))
		fmt.Fprintf(b, "static void init_mod_%s(int argc, char** argv) {\n", sanitizeIdent(c.ModuleName))
		for _, mi := range c.Modules {
			fmt.Fprintf(b, "    init_mod_%s(argc, argv);\n", sanitizeIdent(mi.Name))
		}
		// The module's context, and its locals backing array, must outlive
		// this init function -- module attribute access can run at any
		// later point in the program -- so both are heap-allocated rather
		// than stack-local, unlike a regular function call frame. Classes
		// are initialized against this context (rather than nullptr) so a
		// method body's Ref{type:"function"} can close over the module's
		// actual globals.
		fmt.Fprintf(b, "    context* ctx_%s = alloc_context_cell();\n", sanitizeIdent(c.ModuleName))
		fmt.Fprintf(b, "    ctx_%s->locals = new node*[%d];\n", sanitizeIdent(c.ModuleName), nlocals)
		fmt.Fprintf(b, "    ctx_%s->nlocals = %d;\n", sanitizeIdent(c.ModuleName), nlocals)
		fmt.Fprintf(b, "    for (int i = 0; i < %d; i++) ctx_%s->locals[i] = make_none();\n", nlocals, sanitizeIdent(c.ModuleName))
		fmt.Fprintf(b, "    ctx_%s->globals = ctx_%s;\n", sanitizeIdent(c.ModuleName), sanitizeIdent(c.ModuleName))
		fmt.Fprintf(b, "    ctx_%s->parent = nullptr;\n", sanitizeIdent(c.ModuleName))
		for _, ci := range c.Classes {
			fmt.Fprintf(b, "    init_%s(ctx_%s);\n", ci.InstanceName, sanitizeIdent(c.ModuleName))
		}
		fmt.Fprintf(b, "    { context* ctx = ctx_%s; context* globals = ctx_%s;\n", sanitizeIdent(c.ModuleName), sanitizeIdent(c.ModuleName))
		w := &stmtWriter{indent: 2}
		if err := emitBlock(w, c.Statements(), fr); err != nil {
			return err
		}
		b.WriteString(w.b.String())
		b.WriteString("    }\n")
		fmt.Fprintf(b, "    auto* exports = new std::map<std::string, node*>();\n")
		for name, idx := range c.Globals {
			fmt.Fprintf(b, "    (*exports)[%s] = ctx_%s->locals[%d];\n", cstr(name), sanitizeIdent(c.ModuleName), idx)
		}
		fmt.Fprintf(b, "    module_obj_mod_%s = make_module(%s, ctx_%s, exports);\n",
			sanitizeIdent(c.ModuleName), cstr(c.ModuleName), sanitizeIdent(c.ModuleName))
		b.WriteString("}\n\n")
	}
	return nil
}

// writeMain emits the program entry point: every root-level sub-module is
// initialized first, then sys is populated from argv, then main's context
// is set up and the root module's classes are initialized against it, then
// the root module's own flattened statements run directly against main's
// frame (there is no separate "call the root module" indirection - main
// IS the root module's body).
func writeMain(b *strings.Builder, p *program, root *ctx.Context) error {
	ms := p.state[root]
	fr := frame{c: root, fs: nil, mod: ms.mod}
	nlocals := len(root.Globals) + 1

	b.WriteString("int main(int argc, char** argv) {\n")
	for _, mi := range root.Modules {
		fmt.Fprintf(b, "    init_mod_%s(argc, argv);\n", sanitizeIdent(mi.Name))
	}
	b.WriteString("    init_module_sys(argc, argv);\n")
	b.WriteString("    context root_ctx_cell;\n")
	fmt.Fprintf(b, "    node* root_locals[%d];\n", nlocals)
	b.WriteString("    context* ctx_main = &root_ctx_cell;\n")
	b.WriteString("    ctx_main->locals = root_locals;\n")
	fmt.Fprintf(b, "    ctx_main->nlocals = %d;\n", nlocals)
	fmt.Fprintf(b, "    for (int i = 0; i < %d; i++) ctx_main->locals[i] = make_none();\n", nlocals)
	b.WriteString("    ctx_main->globals = ctx_main;\n")
	b.WriteString("    ctx_main->parent = nullptr;\n")
	for _, ci := range root.Classes {
		fmt.Fprintf(b, "    init_%s(ctx_main);\n", ci.InstanceName)
	}
	b.WriteString("    context* ctx = ctx_main;\n")
	b.WriteString("    context* globals = ctx_main;\n")

	w := &stmtWriter{indent: 1}
	if err := emitBlock(w, root.Statements(), fr); err != nil {
		return err
	}
	b.WriteString(w.b.String())
	b.WriteString("    return 0;\n")
	b.WriteString("}\n")
	return nil
}
