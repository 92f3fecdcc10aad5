package translate

import (
	"testing"

	"github.com/dr8co/pythonc/ast"
	"github.com/dr8co/pythonc/graph"
	"github.com/dr8co/pythonc/lexer"
	"github.com/dr8co/pythonc/parser"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return mod
}

func TestTranslateModuleRegistersFunctionDef(t *testing.T) {
	mod := mustParse(t, "def f(x):\n    return x\n")
	tr := New(t.TempDir())

	c, err := tr.TranslateModule(mod, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Functions) != 1 || c.Functions[0].Name != "f" {
		t.Fatalf("expected function f registered, got %#v", c.Functions)
	}
}

func TestTranslateModuleFlattensNestedBinOp(t *testing.T) {
	mod := mustParse(t, "x = 1 + 2 * 3\n")
	tr := New(t.TempDir())

	c, err := tr.TranslateModule(mod, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Constant folding collapses the whole expression to a single Store of 7.
	if len(c.Ints.Values()) == 0 {
		t.Fatalf("expected interned int constants from folding")
	}
}

func TestTranslateCompareChainDesugarsToBoolOp(t *testing.T) {
	mod := mustParse(t, "y = a < b < c\n")
	tr := New(t.TempDir())
	if _, err := tr.TranslateModule(mod, "m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranslateListAssignStoresDirectSlots(t *testing.T) {
	mod := mustParse(t, "xs = [1, 2, 3]\n")
	tr := New(t.TempDir())
	if _, err := tr.TranslateModule(mod, "m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranslateAugAssignDesugarsToInPlaceBinOp(t *testing.T) {
	mod := mustParse(t, "x = 0\nx += 1\n")
	tr := New(t.TempDir())
	if _, err := tr.TranslateModule(mod, "m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTargetRejectsUnsupportedExpression(t *testing.T) {
	tr := New(t.TempDir())
	_, err := tr.target(&ast.Constant{Kind: ast.ConstInt, IntVal: 1})
	if err == nil {
		t.Fatalf("expected an error assigning to a constant")
	}
}

func TestArgumentsFoldsKwOnlyAfterPositional(t *testing.T) {
	tr := New(t.TempDir())
	args := &ast.Arguments{
		Params: []string{"a"},
		KwOnly: []string{"b"},
	}
	n, err := tr.arguments(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params, _ := n.Attr("params").([]string)
	if len(params) != 2 || params[0] != "a" || params[1] != "b" {
		t.Fatalf("expected params [a b], got %v", params)
	}
	if n.Kind != graph.Arguments {
		t.Fatalf("expected an Arguments node, got %v", n.Kind)
	}
}
