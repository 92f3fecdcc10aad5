package scope

import (
	"testing"

	"github.com/dr8co/pythonc/graph"
)

func TestAnalyzeFunctionSeparatesLocalsFromGlobals(t *testing.T) {
	// def f(): x = 1; return x + y   (y is read but never stored -> global)
	store := graph.New(graph.Store, 1, map[string]any{
		"name": "x", "expr": graph.New(graph.IntConst, 1, map[string]any{"value": int64(1)}),
	})
	loadX := graph.New(graph.Load, 1, map[string]any{"name": "x"})
	loadY := graph.New(graph.Load, 1, map[string]any{"name": "y"})
	ret := graph.New(graph.Return, 1, map[string]any{
		"value": graph.New(graph.BinaryOp, 1, map[string]any{"op": "__add__", "lhs": loadX, "rhs": loadY}),
	})

	fs := AnalyzeFunction([]*graph.Node{store, ret}, nil)
	if _, ok := fs.Locals["x"]; !ok {
		t.Fatalf("expected x to be local, got %#v", fs.Locals)
	}
	if !fs.Globals["y"] {
		t.Fatalf("expected y to be inferred global, got %#v", fs.Globals)
	}
	if fs.Locals["x"] != 0 {
		t.Fatalf("expected x to get local index 0, got %d", fs.Locals["x"])
	}
}

func TestAnalyzeFunctionHonorsExplicitGlobal(t *testing.T) {
	store := graph.New(graph.Store, 1, map[string]any{
		"name": "counter", "expr": graph.New(graph.IntConst, 1, map[string]any{"value": int64(1)}),
	})
	fs := AnalyzeFunction([]*graph.Node{store}, []string{"counter"})
	if _, ok := fs.Locals["counter"]; ok {
		t.Fatalf("expected counter to be excluded from locals due to explicit global")
	}
	if !fs.Globals["counter"] {
		t.Fatalf("expected counter to be in globals set")
	}
}

func TestModuleScopeFinalizeReservesIndexZero(t *testing.T) {
	store := graph.New(graph.Store, 1, map[string]any{
		"name": "a", "expr": graph.New(graph.IntConst, 1, map[string]any{"value": int64(1)}),
	})
	m := NewModuleScope()
	globals := m.Finalize([]*graph.Node{store}, nil)
	if globals["a"] == 0 {
		t.Fatalf("expected index 0 to remain reserved for undefined, got a=%d", globals["a"])
	}
}

func TestAnalyzeClassCollectsDirectStoresAsAttrs(t *testing.T) {
	store := graph.New(graph.Store, 1, map[string]any{
		"name": "version", "expr": graph.New(graph.IntConst, 1, map[string]any{"value": int64(2)}),
	})
	cs := AnalyzeClass([]*graph.Node{store})
	if !cs.Attrs["version"] {
		t.Fatalf("expected version to be a class attribute, got %#v", cs.Attrs)
	}
}

func TestResolvePrefersLocalOverGlobal(t *testing.T) {
	fs := &FunctionScope{Locals: map[string]int{"x": 3}}
	mod := &ModuleScope{Globals: map[string]int{"x": 7}}
	b := Resolve("x", fs, mod)
	if b.Kind != Local || b.Index != 3 {
		t.Fatalf("expected local binding at index 3, got %#v", b)
	}
}
