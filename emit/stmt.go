package emit

import (
	"fmt"
	"strings"

	"github.com/dr8co/pythonc/graph"
)

// stmtWriter accumulates indented C++ statement lines for one function,
// class-init, or module body.
type stmtWriter struct {
	b      strings.Builder
	indent int
}

func (w *stmtWriter) pad() string { return strings.Repeat("    ", w.indent) }

func (w *stmtWriter) line(format string, args ...any) {
	w.b.WriteString(w.pad())
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *stmtWriter) raw(s string) {
	w.b.WriteString(w.pad())
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

// emitBlock writes every statement of body, in order, at the writer's
// current indent depth.
func emitBlock(w *stmtWriter, body []*graph.Node, fr frame) error {
	for _, n := range body {
		if err := emitStmt(w, n, fr); err != nil {
			return err
		}
	}
	return nil
}

func emitStmt(w *stmtWriter, n *graph.Node, fr frame) error {
	switch n.Kind {
	case graph.Store:
		name, _ := n.Attr("name").(string)
		expr, err := exprString(n.Edge("expr").Value(), fr)
		if err != nil {
			return err
		}
		w.line("%s = %s;", resolveName(fr, name), expr)
	case graph.StoreAttr:
		obj, err := exprString(n.Edge("obj").Value(), fr)
		if err != nil {
			return err
		}
		expr, err := exprString(n.Edge("expr").Value(), fr)
		if err != nil {
			return err
		}
		attr, _ := n.Attr("attr").(string)
		w.line("py_setattr(%s, %s, %s);", obj, cstr(attr), expr)
	case graph.StoreSubscript, graph.StoreSubscriptDirect:
		obj, err := exprString(n.Edge("obj").Value(), fr)
		if err != nil {
			return err
		}
		idx, err := exprString(n.Edge("idx").Value(), fr)
		if err != nil {
			return err
		}
		expr, err := exprString(n.Edge("expr").Value(), fr)
		if err != nil {
			return err
		}
		w.line("py_setitem(%s, %s, %s);", obj, idx, expr)
	case graph.DeleteSubscript:
		obj, err := exprString(n.Edge("obj").Value(), fr)
		if err != nil {
			return err
		}
		idx, err := exprString(n.Edge("idx").Value(), fr)
		if err != nil {
			return err
		}
		w.line("py_delitem(%s, %s);", obj, idx)
	case graph.If:
		cond, err := exprString(n.Edge("cond").Value(), fr)
		if err != nil {
			return err
		}
		w.line("if (%s) {", cond)
		w.indent++
		if err := emitBlock(w, n.Block("then"), fr); err != nil {
			return err
		}
		w.indent--
		if els := n.Block("else"); len(els) > 0 {
			w.line("} else {")
			w.indent++
			if err := emitBlock(w, els, fr); err != nil {
				return err
			}
			w.indent--
		}
		w.line("}")
	case graph.While:
		cond, err := exprString(n.Edge("cond").Value(), fr)
		if err != nil {
			return err
		}
		w.line("while (%s) {", cond)
		w.indent++
		if err := emitBlock(w, n.Block("body"), fr); err != nil {
			return err
		}
		w.indent--
		w.line("}")
	case graph.Break:
		w.line("break;")
	case graph.Continue:
		w.line("continue;")
	case graph.Return:
		if v := n.Edge("value").Value(); v != nil {
			expr, err := exprString(v, fr)
			if err != nil {
				return err
			}
			w.line("return %s;", expr)
		} else {
			w.line("return make_none();")
		}
	case graph.Assert:
		test, err := exprString(n.Edge("test").Value(), fr)
		if err != nil {
			return err
		}
		msg := `"assertion failed"`
		if m := n.Edge("msg").Value(); m != nil {
			str, err := exprString(m, fr)
			if err != nil {
				return err
			}
			w.line("if (!py_truth(%s)) { print_node(%s, stderr); error(\"AssertionError\"); }", test, str)
			return nil
		}
		w.line("if (!py_truth(%s)) error(%s);", test, msg)
	case graph.Raise:
		if exc := n.Edge("exc").Value(); exc != nil {
			expr, err := exprString(exc, fr)
			if err != nil {
				return err
			}
			w.line("{ node* exc_val = %s; print_node(exc_val, stderr); error(\"exception raised\"); }", expr)
		} else {
			w.line("error(\"exception raised\");")
		}
	case graph.Global:
		// No runtime effect: Global only informed scope analysis, which
		// already ran over the whole function body before emission.
	case graph.PushTemp:
		expr, err := exprString(n.Edge("value").Value(), fr)
		if err != nil {
			return err
		}
		w.line("gc_push(%s);", expr)
	case graph.PopTemp:
		w.line("gc_pop();")
	case graph.CollectGarbage:
		w.line("gc_collect();")
	case graph.Call, graph.MethodCall:
		expr, err := exprString(n, fr)
		if err != nil {
			return err
		}
		w.line("%s;", expr)
	default:
		return fmt.Errorf("emit: unsupported statement kind %d (%s)", n.Kind, n.String())
	}
	return nil
}
