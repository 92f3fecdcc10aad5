package parser

import (
	"testing"

	"github.com/dr8co/pythonc/ast"
	"github.com/dr8co/pythonc/lexer"
)

func parseModule(t *testing.T, input string) *ast.Module {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return mod
}

func TestParseAssignAndBinOp(t *testing.T) {
	mod := parseModule(t, "x = 1 + 2 * 3\n")
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}
	assign, ok := mod.Body[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", mod.Body[0])
	}
	bin, ok := assign.Value.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected *ast.BinOp, got %T", assign.Value)
	}
	if bin.Op != "+" {
		t.Fatalf("expected top-level op '+', got %q", bin.Op)
	}
	right, ok := bin.Right.(*ast.BinOp)
	if !ok || right.Op != "*" {
		t.Fatalf("expected '*' to bind tighter than '+', got %#v", bin.Right)
	}
}

func TestParseTupleAssignment(t *testing.T) {
	mod := parseModule(t, "a, b = (1, 2)\n")
	assign := mod.Body[0].(*ast.Assign)
	if len(assign.Targets) != 1 {
		t.Fatalf("expected a single tuple target, got %d targets", len(assign.Targets))
	}
	tup, ok := assign.Targets[0].(*ast.TupleLit)
	if !ok || len(tup.Elts) != 2 {
		t.Fatalf("expected a 2-element tuple target, got %#v", assign.Targets[0])
	}
}

func TestParseIfElif(t *testing.T) {
	mod := parseModule(t, "if x:\n    pass\nelif y:\n    pass\nelse:\n    pass\n")
	stmt := mod.Body[0].(*ast.If)
	if len(stmt.Orelse) != 1 {
		t.Fatalf("expected elif to lower to a single nested If, got %d", len(stmt.Orelse))
	}
	if _, ok := stmt.Orelse[0].(*ast.If); !ok {
		t.Fatalf("expected nested *ast.If for elif, got %T", stmt.Orelse[0])
	}
}

func TestParseFunctionDefWithDefaults(t *testing.T) {
	mod := parseModule(t, "def f(a, b=2):\n    return a + b\n")
	fn := mod.Body[0].(*ast.FunctionDef)
	if fn.Name != "f" {
		t.Fatalf("expected function name f, got %q", fn.Name)
	}
	if len(fn.Args.Params) != 2 || len(fn.Args.Defaults) != 1 {
		t.Fatalf("expected 2 params and 1 default, got %#v", fn.Args)
	}
}

func TestParseListComprehension(t *testing.T) {
	mod := parseModule(t, "x = [i * i for i in range(3) if i]\n")
	assign := mod.Body[0].(*ast.Assign)
	comp, ok := assign.Value.(*ast.Comprehension)
	if !ok {
		t.Fatalf("expected *ast.Comprehension, got %T", assign.Value)
	}
	if comp.Kind != ast.CompList {
		t.Fatalf("expected CompList, got %v", comp.Kind)
	}
	if len(comp.Ifs) != 1 {
		t.Fatalf("expected one if-filter, got %d", len(comp.Ifs))
	}
}

func TestParseDictComprehension(t *testing.T) {
	mod := parseModule(t, "x = {i: i * i for i in range(3)}\n")
	assign := mod.Body[0].(*ast.Assign)
	comp, ok := assign.Value.(*ast.Comprehension)
	if !ok || comp.Kind != ast.CompDict {
		t.Fatalf("expected dict comprehension, got %#v", assign.Value)
	}
	if comp.Key == nil {
		t.Fatalf("expected a key expression for a dict comprehension")
	}
}

func TestParseChainedComparison(t *testing.T) {
	mod := parseModule(t, "x = a < b <= c\n")
	assign := mod.Body[0].(*ast.Assign)
	cmp, ok := assign.Value.(*ast.Compare)
	if !ok {
		t.Fatalf("expected *ast.Compare, got %T", assign.Value)
	}
	if len(cmp.Ops) != 2 || cmp.Ops[0] != "<" || cmp.Ops[1] != "<=" {
		t.Fatalf("unexpected comparison chain: %#v", cmp.Ops)
	}
}

func TestParseAugAssign(t *testing.T) {
	mod := parseModule(t, "x += 1\n")
	aug, ok := mod.Body[0].(*ast.AugAssign)
	if !ok || aug.Op != "+" {
		t.Fatalf("expected AugAssign with op '+', got %#v", mod.Body[0])
	}
}

func TestParseImportFrom(t *testing.T) {
	mod := parseModule(t, "from sys import argv as av\n")
	imp, ok := mod.Body[0].(*ast.ImportFrom)
	if !ok || imp.Module != "sys" {
		t.Fatalf("expected ImportFrom(sys), got %#v", mod.Body[0])
	}
	if len(imp.Names) != 1 || imp.Names[0].Name != "argv" || imp.Names[0].AsName != "av" {
		t.Fatalf("unexpected import names: %#v", imp.Names)
	}
}

func TestParseIfExp(t *testing.T) {
	mod := parseModule(t, "x = a if cond else b\n")
	assign := mod.Body[0].(*ast.Assign)
	ifexp, ok := assign.Value.(*ast.IfExp)
	if !ok {
		t.Fatalf("expected *ast.IfExp, got %T", assign.Value)
	}
	if _, ok := ifexp.Test.(*ast.Name); !ok {
		t.Fatalf("expected test to be a Name, got %T", ifexp.Test)
	}
}

func TestParseDeleteRequiresSubscript(t *testing.T) {
	l := lexer.New("del x\n")
	p := New(l)
	p.ParseModule()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected an error deleting a bare name, got none")
	}
}
