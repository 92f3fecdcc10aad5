package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dr8co/pythonc/builtin"
	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
)

// builtinWrapperCallName returns the C++ function a bare-name Call
// invokes: the arity-checked wrapper for a registered builtin, or the name
// itself for anything else (a module-level function bound through the
// same Identifier-fn shape reduceFor/reduceComprehension use for "iter").
func builtinWrapperCallName(name string) string {
	if _, ok := builtin.LookupFunction(name); ok {
		return builtin.WrapperName(name)
	}
	return name
}

// definesName reports whether c's own module body defines name as a
// function or class, i.e. whether a same-named builtin would be shadowed.
// Shadowing from an enclosing or imported scope isn't tracked -- an
// accepted simplification, since redefining a builtin name is rare.
func definesName(c *ctx.Context, name string) bool {
	for _, fi := range c.Functions {
		if fi.Name == name {
			return true
		}
	}
	for _, ci := range c.Classes {
		if ci.Name == name {
			return true
		}
	}
	return false
}

// exprString renders n, an atom or operator node appearing in expression
// position, as the C++ expression that computes it. Every operand here is
// already an atom (a Load, a constant, or a Ref) per the flattener's
// no_flatten contract — reduce.go hoists anything else into a temp and
// leaves a Load in its place — so this never needs to emit statements of
// its own.
func exprString(n *graph.Node, fr frame) (string, error) {
	if n == nil {
		return "make_none()", nil
	}
	switch n.Kind {
	case graph.Load:
		name, _ := n.Attr("name").(string)
		return resolveName(fr, name), nil
	case graph.NoneConst:
		return "make_none()", nil
	case graph.NullConst:
		return "((node*)nullptr)", nil
	case graph.BoolConst:
		v, _ := n.Attr("value").(bool)
		if v {
			return "make_bool(true)", nil
		}
		return "make_bool(false)", nil
	case graph.IntConst:
		v, _ := n.Attr("value").(int64)
		return intSym(fr.c, v), nil
	case graph.IntLiteral:
		v, _ := n.Attr("value").(int64)
		return fmt.Sprintf("make_int(%d)", v), nil
	case graph.StringConst:
		s, _ := n.Attr("value").(string)
		return strSym(fr.c, s), nil
	case graph.BytesConst:
		b, _ := n.Attr("value").([]byte)
		return bytesSym(fr.c, b), nil
	case graph.SingletonRef:
		sym, _ := n.Attr("symbol").(string)
		if name, ok := strings.CutPrefix(sym, "builtin_module_"); ok {
			return "module_singleton_" + name, nil
		}
		return sym, nil
	case graph.Ref:
		return refString(n, fr)
	case graph.Attribute:
		obj, err := exprString(n.Edge("obj").Value(), fr)
		if err != nil {
			return "", err
		}
		attr, _ := n.Attr("attr").(string)
		return fmt.Sprintf("py_getattr(%s, %s)", obj, cstr(attr)), nil
	case graph.Subscript:
		obj, err := exprString(n.Edge("obj").Value(), fr)
		if err != nil {
			return "", err
		}
		idx, err := exprString(n.Edge("idx").Value(), fr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("py_getitem(%s, %s)", obj, idx), nil
	case graph.Slice:
		lo, err := exprOrNull(n.Edge("lower").Value(), fr)
		if err != nil {
			return "", err
		}
		hi, err := exprOrNull(n.Edge("upper").Value(), fr)
		if err != nil {
			return "", err
		}
		st, err := exprOrNull(n.Edge("step").Value(), fr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("make_slice(%s, %s, %s)", lo, hi, st), nil
	case graph.UnaryOp:
		op, _ := n.Attr("op").(string)
		rhs, err := exprString(n.Edge("rhs").Value(), fr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("py_unaryop(%s, %s)", cstr(op), rhs), nil
	case graph.BinaryOp:
		op, _ := n.Attr("op").(string)
		lhs, err := exprString(n.Edge("lhs").Value(), fr)
		if err != nil {
			return "", err
		}
		rhs, err := exprString(n.Edge("rhs").Value(), fr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("py_binop(%s, %s, %s)", cstr(op), lhs, rhs), nil
	case graph.Test, graph.TestNonNull:
		v, err := exprString(n.Edge("value").Value(), fr)
		if err != nil {
			return "", err
		}
		if n.Kind == graph.TestNonNull {
			return fmt.Sprintf("(%s != nullptr)", v), nil
		}
		return fmt.Sprintf("py_truth(%s)", v), nil
	case graph.Call:
		return callString(n, fr)
	case graph.MethodCall:
		return methodCallString(n, fr)
	case graph.TupleFromIter:
		iter, err := exprString(n.Edge("iter").Value(), fr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("make_tuple(%s)", iter), nil
	default:
		return "", fmt.Errorf("emit: unsupported expression kind %d (%s)", n.Kind, n.String())
	}
}

func exprOrNull(n *graph.Node, fr frame) (string, error) {
	if n == nil {
		return "((node*)nullptr)", nil
	}
	return exprString(n, fr)
}

func cstr(s string) string {
	return strconv.Quote(s)
}

func refString(n *graph.Node, fr frame) (string, error) {
	typ, _ := n.Attr("type").(string)
	handle, _ := n.Attr("handle").(string)
	switch typ {
	case "list":
		return "make_list({})", nil
	case "tuple":
		return "make_tuple({})", nil
	case "set":
		return "make_set({})", nil
	case "dict":
		return "make_dict()", nil
	case "function":
		return fmt.Sprintf("make_function(%s, &%s, globals)", cstr(handle), handle), nil
	case "class":
		return handle, nil
	case "module":
		return "module_obj_" + handle, nil
	default:
		return "", fmt.Errorf("emit: unsupported ref type %q", typ)
	}
}

// argVector renders an edge-list of already-atomic argument expressions
// as a braced std::vector<node*> initializer.
func argVector(nodes []*graph.Node, fr frame) (string, error) {
	parts := make([]string, len(nodes))
	for i, a := range nodes {
		s, err := exprString(a, fr)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return fmt.Sprintf("std::vector<node*>{%s}", strings.Join(parts, ", ")), nil
}

func callString(n *graph.Node, fr frame) (string, error) {
	fn := n.Edge("fn").Value()
	args, err := argVector(n.EdgeList("args"), fr)
	if err != nil {
		return "", err
	}
	// Keyword arguments carried as name=value Store-shaped nodes are
	// evaluated for identifier resolution up front by the flattener, but
	// this runtime's calling convention is positional-only — see
	// DESIGN.md's emit section for the same tradeoff accepted at
	// the MethodCall site.
	// A synthetic Identifier("iter") inserted by the for/comprehension
	// reduction rules is always a builtin name, never a variable.
	if fn.Kind == graph.Identifier {
		name, _ := fn.Attr("name").(string)
		return fmt.Sprintf("%s(%s)", builtinWrapperCallName(name), args), nil
	}
	// An ordinary call to a bare name (`len(x)`) flattens to Call{fn:
	// Load(name)} rather than Identifier, since the translator can't tell
	// at that point whether the name is a builtin or a shadowing local
	// binding. Resolve it as a builtin unless this module itself defines
	// a function or class of that name.
	if fn.Kind == graph.Load {
		name, _ := fn.Attr("name").(string)
		if !definesName(fr.c, name) {
			if _, ok := builtin.LookupFunction(name); ok {
				return fmt.Sprintf("%s(%s)", builtin.WrapperName(name), args), nil
			}
		}
	}
	fnExpr, err := exprString(fn, fr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("py_call(%s, %s, globals)", fnExpr, args), nil
}

func methodCallString(n *graph.Node, fr frame) (string, error) {
	obj, err := exprString(n.Edge("obj").Value(), fr)
	if err != nil {
		return "", err
	}
	method, _ := n.Attr("method").(string)
	args, err := argVector(n.EdgeList("args"), fr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("call_method(%s, %s, %s)", obj, cstr(method), args), nil
}
