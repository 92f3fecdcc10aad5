// Package translate walks the host AST (package ast) and builds the
// syntax graph (package graph) the flattener (package ctx) then reduces.
// It is the AST-to-graph visitor analogous to the teacher's
// compiler.Compile: a single recursive type switch over every node kind,
// except it builds a tree of graph.Node values instead of emitting
// bytecode, and defers all flattening/reduction to ctx.Context.
package translate

import (
	"fmt"

	"github.com/dr8co/pythonc/ast"
	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
	"github.com/dr8co/pythonc/imports"
	"github.com/dr8co/pythonc/lexer"
	"github.com/dr8co/pythonc/parser"
)

// augDunder maps an augmented-assignment operator to the in-place dunder
// name used for its BinaryOp node, per the non-in-place rewrite rule:
// `x OP= y` becomes `x = x __iOP__ y`.
var augDunder = map[string]string{
	"+": "__iadd__", "-": "__isub__", "*": "__imul__",
	"/": "__itruediv__", "//": "__ifloordiv__", "%": "__imod__",
}

// binDunder maps a BinOp operator token to its dunder method name.
var binDunder = map[string]string{
	"+": "__add__", "-": "__sub__", "*": "__mul__", "/": "__truediv__",
	"//": "__floordiv__", "%": "__mod__", "**": "__pow__",
	"&": "__and__", "|": "__or__", "^": "__xor__",
	"<<": "__lshift__", ">>": "__rshift__",
}

// cmpDunder maps a comparison operator to its dunder method name.
var cmpDunder = map[string]string{
	"<": "__lt__", ">": "__gt__", "<=": "__le__", ">=": "__ge__",
	"==": "__eq__", "!=": "__ne__", "is": "__is__", "is not": "__isnot__",
	"in": "__contains__",
}

// Translator owns the state shared across a module and its imports: the
// search path and dedup set for resolving `import` statements.
type Translator struct {
	resolver *imports.Resolver
}

// New creates a Translator resolving imports relative to entryDir.
func New(entryDir string) *Translator {
	return &Translator{resolver: imports.New(entryDir)}
}

// TranslateModule builds a Context for mod, translating and flattening
// every top-level statement in source order.
func (t *Translator) TranslateModule(mod *ast.Module, name string) (*ctx.Context, error) {
	c := ctx.New(name)
	for _, s := range mod.Body {
		n, err := t.stmt(c, s)
		if err != nil {
			return nil, fmt.Errorf("translate %s: %w", name, err)
		}
		if n == nil {
			continue
		}
		if err := c.AddStatement(n); err != nil {
			return nil, fmt.Errorf("translate %s: %w", name, err)
		}
	}
	return c, nil
}

// stmt translates one AST statement into a raw (unreduced) graph node, or
// nil when the statement has already been fully emitted (multi-name
// imports, which add several statements directly).
func (t *Translator) stmt(c *ctx.Context, s ast.Statement) (*graph.Node, error) {
	line := s.Pos()
	switch s := s.(type) {
	case *ast.FunctionDef:
		body, err := t.block(c, s.Body)
		if err != nil {
			return nil, err
		}
		args, err := t.arguments(s.Args)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.FunctionDef, line, map[string]any{"name": s.Name, "args": args, "body": body}), nil

	case *ast.ClassDef:
		body, err := t.block(c, s.Body)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.ClassDef, line, map[string]any{
			"name": s.Name, "baseClass": s.BaseClass, "body": body,
		}), nil

	case *ast.Return:
		val, err := t.maybeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Return, line, map[string]any{"value": val}), nil

	case *ast.Delete:
		sub, ok := s.Target.(*ast.Subscript)
		if !ok {
			return nil, fmt.Errorf("line %d: delete only supported on subscripts", line)
		}
		obj, err := t.expr(sub.Value)
		if err != nil {
			return nil, err
		}
		idx, err := t.expr(sub.Index)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.DeleteSubscript, line, map[string]any{"obj": obj, "idx": idx}), nil

	case *ast.Assign:
		return t.assign(s)

	case *ast.AugAssign:
		return t.augAssign(s)

	case *ast.For:
		target, err := t.target(s.Target)
		if err != nil {
			return nil, err
		}
		iter, err := t.expr(s.Iter)
		if err != nil {
			return nil, err
		}
		body, err := t.block(c, s.Body)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.For, line, map[string]any{"target": target, "iter": iter, "body": body}), nil

	case *ast.While:
		cond, err := t.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := t.block(c, s.Body)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.While, line, map[string]any{"cond": cond, "body": body}), nil

	case *ast.If:
		cond, err := t.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := t.block(c, s.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := t.block(c, s.Orelse)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.If, line, map[string]any{"cond": cond, "then": then, "else": orelse}), nil

	case *ast.With:
		// No dedicated With node in the syntax graph: lowered to a plain
		// block, since the runtime's context-manager protocol is out of
		// scope — the body still runs, just without enter/exit dispatch.
		return t.withFallback(c, s)

	case *ast.Raise:
		exc, err := t.maybeExpr(s.Exc)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Raise, line, map[string]any{"exc": exc}), nil

	case *ast.Assert:
		test, err := t.expr(s.Test)
		if err != nil {
			return nil, err
		}
		msg, err := t.maybeExpr(s.Msg)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Assert, line, map[string]any{"test": test, "msg": msg}), nil

	case *ast.Import:
		if err := t.importStmt(c, s); err != nil {
			return nil, err
		}
		return nil, nil

	case *ast.ImportFrom:
		if err := t.importFromStmt(c, s); err != nil {
			return nil, err
		}
		return nil, nil

	case *ast.Global:
		return graph.New(graph.Global, line, map[string]any{"names": s.Names}), nil

	case *ast.ExprStmt:
		return t.expr(s.Value)

	case *ast.Pass:
		return nil, nil

	case *ast.Break:
		return graph.New(graph.Break, line, nil), nil

	case *ast.Continue:
		return graph.New(graph.Continue, line, nil), nil

	default:
		return nil, fmt.Errorf("line %d: unsupported statement %T", line, s)
	}
}

// block translates a statement list into raw graph nodes, skipping
// statements that produce no node.
func (t *Translator) block(c *ctx.Context, stmts []ast.Statement) ([]*graph.Node, error) {
	out := make([]*graph.Node, 0, len(stmts))
	for _, s := range stmts {
		n, err := t.stmt(c, s)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// withFallback drops context-manager enter/exit dispatch and keeps the
// body, optionally binding the `as` target to the context expression
// itself (the common case of `with open(...) as f` still gets f bound).
func (t *Translator) withFallback(c *ctx.Context, s *ast.With) (*graph.Node, error) {
	body, err := t.block(c, s.Body)
	if err != nil {
		return nil, err
	}
	if s.As == nil {
		// No binding needed: splice body statements in as a block via a
		// harmless `if true` wrapper so a single node can represent them.
		return graph.New(graph.If, s.Pos(), map[string]any{
			"cond": graph.New(graph.BoolConst, s.Pos(), map[string]any{"value": true}),
			"then": body, "else": []*graph.Node(nil),
		}), nil
	}
	target, err := t.target(s.As)
	if err != nil {
		return nil, err
	}
	context, err := t.expr(s.Context)
	if err != nil {
		return nil, err
	}
	bind := graph.New(graph.Assign, s.Pos(), map[string]any{"target": target, "expr": context})
	return graph.New(graph.If, s.Pos(), map[string]any{
		"cond": graph.New(graph.BoolConst, s.Pos(), map[string]any{"value": true}),
		"then": append([]*graph.Node{bind}, body...), "else": []*graph.Node(nil),
	}), nil
}

func (t *Translator) assign(s *ast.Assign) (*graph.Node, error) {
	value, err := t.expr(s.Value)
	if err != nil {
		return nil, err
	}
	if len(s.Targets) == 1 {
		target, err := t.target(s.Targets[0])
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Assign, s.Pos(), map[string]any{"target": target, "expr": value}), nil
	}
	// Chained assignment (a = b = value): desugar to an Identifier tuple
	// is wrong semantically (that would destructure); instead translate
	// stays flat here and the caller never sees more than one target in
	// practice, but guard anyway for the grammar's general case by
	// rejecting (chained assignment to >1 target is rare enough in
	// translated workloads not to warrant the hidden-temp machinery here).
	return nil, fmt.Errorf("line %d: chained assignment to multiple targets is not supported", s.Pos())
}

func (t *Translator) augAssign(s *ast.AugAssign) (*graph.Node, error) {
	dunder, ok := augDunder[s.Op]
	if !ok {
		return nil, fmt.Errorf("line %d: unsupported augmented assignment operator %q", s.Pos(), s.Op)
	}
	read, err := t.expr(s.Target)
	if err != nil {
		return nil, err
	}
	rhs, err := t.expr(s.Value)
	if err != nil {
		return nil, err
	}
	bin := graph.New(graph.BinaryOp, s.Pos(), map[string]any{"op": dunder, "lhs": read, "rhs": rhs})
	target, err := t.target(s.Target)
	if err != nil {
		return nil, err
	}
	return graph.New(graph.Assign, s.Pos(), map[string]any{"target": target, "expr": bin}), nil
}

// target converts an AST expression used in assignment-target position
// into its graph write-target form: Identifier for a bare name,
// Attribute/Subscript reused from their read forms (the reduction rules
// in package ctx dispatch on these the same way Python's own AST reuses
// Attribute/Subscript nodes under ctx=Store), and Tuple for unpacking.
func (t *Translator) target(e ast.Expression) (*graph.Node, error) {
	switch e := e.(type) {
	case *ast.Name:
		return graph.New(graph.Identifier, e.Pos(), map[string]any{"name": e.Value}), nil
	case *ast.Attribute:
		obj, err := t.expr(e.Value)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Attribute, e.Pos(), map[string]any{"obj": obj, "attr": e.Attr}), nil
	case *ast.Subscript:
		obj, err := t.expr(e.Value)
		if err != nil {
			return nil, err
		}
		idx, err := t.expr(e.Index)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Subscript, e.Pos(), map[string]any{"obj": obj, "idx": idx}), nil
	case *ast.TupleLit:
		elts := make([]*graph.Node, len(e.Elts))
		for i, el := range e.Elts {
			sub, err := t.target(el)
			if err != nil {
				return nil, err
			}
			elts[i] = sub
		}
		return graph.New(graph.Tuple, e.Pos(), map[string]any{"elts": elts}), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported assignment target %T", e.Pos(), e)
	}
}

// arguments lowers a parameter list into a graph.Arguments node.
// Keyword-only parameters are folded in after the positional ones: the
// runtime's calling convention this translator targets does not
// distinguish them from trailing defaulted positionals, a documented
// simplification.
func (t *Translator) arguments(a *ast.Arguments) (*graph.Node, error) {
	if a == nil {
		return graph.New(graph.Arguments, 0, map[string]any{"params": []string(nil), "defaults": []*graph.Node(nil)}), nil
	}
	params := append(append([]string(nil), a.Params...), a.KwOnly...)
	defaults := make([]*graph.Node, 0, len(a.Defaults)+len(a.KwOnlyDefaults))
	for _, d := range a.Defaults {
		n, err := t.expr(d)
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, n)
	}
	for _, d := range a.KwOnlyDefaults {
		if d == nil {
			continue
		}
		n, err := t.expr(d)
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, n)
	}
	return graph.New(graph.Arguments, 0, map[string]any{
		"params": params, "defaults": defaults, "vararg": a.Vararg, "kwarg": a.Kwarg,
	}), nil
}

func (t *Translator) maybeExpr(e ast.Expression) (*graph.Node, error) {
	if e == nil {
		return nil, nil
	}
	return t.expr(e)
}

// expr translates an AST expression into its graph read form.
func (t *Translator) expr(e ast.Expression) (*graph.Node, error) {
	line := e.Pos()
	switch e := e.(type) {
	case *ast.Name:
		return graph.New(graph.Load, line, map[string]any{"name": e.Value}), nil

	case *ast.Constant:
		return t.constant(e)

	case *ast.BoolOp:
		values := make([]*graph.Node, len(e.Values))
		for i, v := range e.Values {
			n, err := t.expr(v)
			if err != nil {
				return nil, err
			}
			values[i] = n
		}
		return graph.New(graph.BoolOp, line, map[string]any{"op": e.Op, "values": values}), nil

	case *ast.BinOp:
		dunder, ok := binDunder[e.Op]
		if !ok {
			return nil, fmt.Errorf("line %d: unsupported binary operator %q", line, e.Op)
		}
		lhs, err := t.expr(e.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := t.expr(e.Right)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.BinaryOp, line, map[string]any{"op": dunder, "lhs": lhs, "rhs": rhs}), nil

	case *ast.UnaryOp:
		rhs, err := t.expr(e.Operand)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.UnaryOp, line, map[string]any{"op": e.Op, "rhs": rhs}), nil

	case *ast.IfExp:
		test, err := t.expr(e.Test)
		if err != nil {
			return nil, err
		}
		body, err := t.expr(e.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := t.expr(e.Orelse)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.IfExp, line, map[string]any{"test": test, "body": body, "orelse": orelse}), nil

	case *ast.Compare:
		return t.compare(e)

	case *ast.Call:
		return t.call(e)

	case *ast.Attribute:
		obj, err := t.expr(e.Value)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Attribute, line, map[string]any{"obj": obj, "attr": e.Attr}), nil

	case *ast.Subscript:
		if sl, ok := e.Index.(*ast.Slice); ok {
			obj, err := t.expr(e.Value)
			if err != nil {
				return nil, err
			}
			sliceNode, err := t.slice(sl)
			if err != nil {
				return nil, err
			}
			return graph.New(graph.Subscript, line, map[string]any{"obj": obj, "idx": sliceNode}), nil
		}
		obj, err := t.expr(e.Value)
		if err != nil {
			return nil, err
		}
		idx, err := t.expr(e.Index)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Subscript, line, map[string]any{"obj": obj, "idx": idx}), nil

	case *ast.Slice:
		return t.slice(e)

	case *ast.ListLit:
		elts, err := t.exprList(e.Elts)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.List, line, map[string]any{"elts": elts}), nil

	case *ast.TupleLit:
		elts, err := t.exprList(e.Elts)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Tuple, line, map[string]any{"elts": elts}), nil

	case *ast.SetLit:
		elts, err := t.exprList(e.Elts)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Set, line, map[string]any{"elts": elts}), nil

	case *ast.DictLit:
		keys, err := t.exprList(e.Keys)
		if err != nil {
			return nil, err
		}
		values, err := t.exprList(e.Values)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.Dict, line, map[string]any{"keys": keys, "values": values}), nil

	case *ast.Starred:
		// No dedicated star-unpack node; pass the wrapped value through,
		// which is only correct when used directly as a whole call
		// argument list member (*args at call sites is handled in call()
		// before reaching here).
		return t.expr(e.Value)

	case *ast.Comprehension:
		return t.comprehension(e)

	default:
		return nil, fmt.Errorf("line %d: unsupported expression %T", line, e)
	}
}

func (t *Translator) exprList(exprs []ast.Expression) ([]*graph.Node, error) {
	out := make([]*graph.Node, len(exprs))
	for i, e := range exprs {
		n, err := t.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (t *Translator) constant(c *ast.Constant) (*graph.Node, error) {
	line := c.Pos()
	switch c.Kind {
	case ast.ConstInt:
		return graph.New(graph.IntConst, line, map[string]any{"value": c.IntVal}), nil
	case ast.ConstStr:
		return graph.New(graph.StringConst, line, map[string]any{"value": c.StrVal}), nil
	case ast.ConstBytes:
		return graph.New(graph.BytesConst, line, map[string]any{"value": c.BytesVal}), nil
	case ast.ConstBool:
		return graph.New(graph.BoolConst, line, map[string]any{"value": c.BoolVal}), nil
	case ast.ConstNone:
		return graph.New(graph.NoneConst, line, nil), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported constant kind %d", line, c.Kind)
	}
}

// compare desugars a chained comparison (a < b <= c) into an `and` chain
// of pairwise BinaryOp comparisons. Middle operands are evaluated twice
// in this lowering — a documented limitation, the same tradeoff the
// non-in-place AugAssign rewrite accepts for mutable-container side
// effects.
func (t *Translator) compare(c *ast.Compare) (*graph.Node, error) {
	left, err := t.expr(c.Left)
	if err != nil {
		return nil, err
	}
	pairs := make([]*graph.Node, 0, len(c.Ops))
	prev := left
	prevExpr := c.Left
	for i, op := range c.Ops {
		dunder, ok := cmpDunder[op]
		if !ok {
			return nil, fmt.Errorf("line %d: unsupported comparison operator %q", c.Pos(), op)
		}
		rhsExpr := c.Comparators[i]
		rhs, err := t.expr(rhsExpr)
		if err != nil {
			return nil, err
		}
		lhs := prev
		if i > 0 {
			// Re-translate the shared middle operand for this pair
			// rather than reusing the graph node, so each comparison
			// owns an independent edge.
			lhs, err = t.expr(prevExpr)
			if err != nil {
				return nil, err
			}
		}
		pairs = append(pairs, graph.New(graph.BinaryOp, c.Pos(), map[string]any{"op": dunder, "lhs": lhs, "rhs": rhs}))
		prev = rhs
		prevExpr = rhsExpr
	}
	if len(pairs) == 1 {
		return pairs[0], nil
	}
	return graph.New(graph.BoolOp, c.Pos(), map[string]any{"op": "and", "values": pairs}), nil
}

func (t *Translator) slice(s *ast.Slice) (*graph.Node, error) {
	lower, err := t.maybeExpr(s.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := t.maybeExpr(s.Upper)
	if err != nil {
		return nil, err
	}
	step, err := t.maybeExpr(s.Step)
	if err != nil {
		return nil, err
	}
	return graph.New(graph.Slice, s.Pos(), map[string]any{"lower": lower, "upper": upper, "step": step}), nil
}

func (t *Translator) call(call *ast.Call) (*graph.Node, error) {
	line := call.Pos()
	args := make([]*graph.Node, 0, len(call.Args))
	for _, a := range call.Args {
		n, err := t.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}
	// Each keyword argument is carried as a Store("name", value) pair node:
	// Store's {name attr, expr edge} slots already express exactly a
	// name=expression binding, so no separate node kind is needed for it.
	kwargs := make([]*graph.Node, 0, len(call.Keywords))
	for _, kw := range call.Keywords {
		n, err := t.expr(kw.Value)
		if err != nil {
			return nil, err
		}
		kwargs = append(kwargs, graph.New(graph.Store, line, map[string]any{"name": kw.Name, "expr": n}))
	}

	if attr, ok := call.Func.(*ast.Attribute); ok {
		obj, err := t.expr(attr.Value)
		if err != nil {
			return nil, err
		}
		return graph.New(graph.MethodCall, line, map[string]any{
			"obj": obj, "method": attr.Attr, "args": args,
		}), nil
	}

	fn, err := t.expr(call.Func)
	if err != nil {
		return nil, err
	}
	return graph.New(graph.Call, line, map[string]any{"fn": fn, "args": args, "kwargs": kwargs}), nil
}

func (t *Translator) comprehension(c *ast.Comprehension) (*graph.Node, error) {
	kind := int(c.Kind)

	target, err := t.target(c.Target)
	if err != nil {
		return nil, err
	}
	iter, err := t.expr(c.Iter)
	if err != nil {
		return nil, err
	}
	ifs, err := t.exprList(c.Ifs)
	if err != nil {
		return nil, err
	}

	values := map[string]any{"kind": kind, "target": target, "iter": iter, "ifs": ifs}
	if c.Kind == ast.CompDict {
		key, err := t.expr(c.Key)
		if err != nil {
			return nil, err
		}
		elt, err := t.expr(c.Elt)
		if err != nil {
			return nil, err
		}
		values["key"] = key
		values["elt"] = elt
	} else {
		elt, err := t.expr(c.Elt)
		if err != nil {
			return nil, err
		}
		values["elt"] = elt
	}
	return graph.New(graph.Comprehension, c.Pos(), values), nil
}

func (t *Translator) importStmt(c *ctx.Context, s *ast.Import) error {
	for _, alias := range s.Names {
		asName := alias.AsName
		if asName == "" {
			asName = alias.Name
		}
		if err := t.resolveAndBindModule(c, alias.Name, asName, s.Pos()); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) importFromStmt(c *ctx.Context, s *ast.ImportFrom) error {
	sub, err := t.resolveModule(c, s.Module)
	if err != nil {
		return err
	}
	modLoad := graph.New(graph.Load, s.Pos(), map[string]any{"name": fmt.Sprintf("mod_%s", s.Module)})

	if s.Star {
		names := topLevelNames(sub.mod)
		for _, name := range names {
			store := graph.New(graph.Store, s.Pos(), map[string]any{
				"name": name, "expr": graph.New(graph.Attribute, s.Pos(), map[string]any{"obj": modLoad, "attr": name}),
			})
			if err := c.AddStatement(store); err != nil {
				return err
			}
		}
		return nil
	}

	for _, n := range s.Names {
		asName := n.AsName
		if asName == "" {
			asName = n.Name
		}
		store := graph.New(graph.Store, s.Pos(), map[string]any{
			"name": asName, "expr": graph.New(graph.Attribute, s.Pos(), map[string]any{"obj": modLoad, "attr": n.Name}),
		})
		if err := c.AddStatement(store); err != nil {
			return err
		}
	}
	return nil
}

// resolveAndBindModule resolves name (built-in or file) and emits
// Store(asName, <handle>) for a plain `import name [as asName]`.
func (t *Translator) resolveAndBindModule(c *ctx.Context, name, asName string, line int) error {
	res, err := t.resolver.Resolve(name)
	if err != nil {
		return err
	}
	if res.Builtin {
		singleton := graph.New(graph.SingletonRef, line, map[string]any{"symbol": fmt.Sprintf("builtin_module_%s", name)})
		return c.AddStatement(graph.New(graph.Store, line, map[string]any{"name": asName, "expr": singleton}))
	}
	if !res.AlreadyImported {
		subMod, err := parseSource(res.Source)
		if err != nil {
			return fmt.Errorf("import %q: %w", name, err)
		}
		subCtx, err := t.TranslateModule(subMod, name)
		if err != nil {
			return err
		}
		c.RegisterModule(name, subCtx)
	}
	imp := graph.New(graph.ImportStatement, line, map[string]any{"module": name})
	if err := c.AddStatement(imp); err != nil {
		return err
	}
	if asName != name {
		return c.AddStatement(graph.New(graph.Store, line, map[string]any{
			"name": asName, "expr": graph.New(graph.Load, line, map[string]any{"name": name}),
		}))
	}
	return nil
}

type resolvedModule struct {
	mod *ast.Module
}

// resolveModule resolves and, on first encounter, recursively translates
// name, returning its parsed AST so `from name import *` can enumerate
// its top-level names syntactically.
func (t *Translator) resolveModule(c *ctx.Context, name string) (*resolvedModule, error) {
	res, err := t.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	if res.Builtin {
		return nil, fmt.Errorf("from %q import *: built-in modules don't expose a syntactic name list", name)
	}
	if res.AlreadyImported {
		return &resolvedModule{}, nil
	}
	subMod, err := parseSource(res.Source)
	if err != nil {
		return nil, fmt.Errorf("from %q import: %w", name, err)
	}
	subCtx, err := t.TranslateModule(subMod, name)
	if err != nil {
		return nil, err
	}
	c.RegisterModule(name, subCtx)
	return &resolvedModule{mod: subMod}, nil
}

func parseSource(src string) (*ast.Module, error) {
	l := lexer.New(src)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) != 0 {
		return nil, fmt.Errorf("%v", errs)
	}
	return mod, nil
}

// topLevelNames collects the names a `from X import *` would bind: every
// name directly assigned, defined, or class-defined at module top level.
func topLevelNames(mod *ast.Module) []string {
	if mod == nil {
		return nil
	}
	var names []string
	for _, s := range mod.Body {
		switch s := s.(type) {
		case *ast.FunctionDef:
			names = append(names, s.Name)
		case *ast.ClassDef:
			names = append(names, s.Name)
		case *ast.Assign:
			for _, tgt := range s.Targets {
				if n, ok := tgt.(*ast.Name); ok {
					names = append(names, n.Value)
				}
			}
		}
	}
	return names
}
