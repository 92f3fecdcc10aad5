package ctx

import (
	"testing"

	"github.com/dr8co/pythonc/graph"
)

func TestFlattenEdgeHoistsNonAtom(t *testing.T) {
	c := New("m")
	lhs := graph.New(graph.Load, 1, map[string]any{"name": "x"})
	rhs := graph.New(graph.Load, 1, map[string]any{"name": "y"})
	bin := graph.New(graph.BinaryOp, 1, map[string]any{"op": "__add__", "lhs": lhs, "rhs": rhs})

	flat, err := c.FlattenEdge(bin, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat.Kind != graph.Load {
		t.Fatalf("expected hoisted BinaryOp to flatten to a Load, got %v", flat.Kind)
	}
	if len(c.buf()) != 1 {
		t.Fatalf("expected one Store statement emitted, got %d", len(c.buf()))
	}
	if c.buf()[0].Kind != graph.Store {
		t.Fatalf("expected a Store statement, got %v", c.buf()[0].Kind)
	}
}

func TestFlattenEdgeLeavesAtomAlone(t *testing.T) {
	c := New("m")
	load := graph.New(graph.Load, 1, map[string]any{"name": "x"})
	flat, err := c.FlattenEdge(load, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat != load {
		t.Fatalf("expected an atom to pass through unchanged")
	}
	if len(c.buf()) != 0 {
		t.Fatalf("expected no statements emitted for an atom, got %d", len(c.buf()))
	}
}

func TestReduceListLiteralEmitsDirectStores(t *testing.T) {
	c := New("m")
	elt0 := graph.New(graph.IntConst, 1, map[string]any{"value": int64(1)})
	elt1 := graph.New(graph.IntConst, 1, map[string]any{"value": int64(2)})
	lst := graph.New(graph.List, 1, map[string]any{"elts": []*graph.Node{elt0, elt1}})

	result, err := c.Reduce(lst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != graph.Load {
		t.Fatalf("expected list literal to reduce to a Load of its temp, got %v", result.Kind)
	}
	if len(c.buf()) != 3 {
		t.Fatalf("expected temp store + 2 direct-slot stores, got %d", len(c.buf()))
	}
	if c.buf()[0].Kind != graph.Store {
		t.Fatalf("expected the temp store first, got %v", c.buf()[0].Kind)
	}
	for _, s := range c.buf()[1:] {
		if s.Kind != graph.StoreSubscriptDirect {
			t.Fatalf("expected StoreSubscriptDirect, got %v", s.Kind)
		}
	}
}

func TestReduceBinaryOpConstantFolding(t *testing.T) {
	c := New("m")
	lhs := graph.New(graph.IntConst, 1, map[string]any{"value": int64(2)})
	rhs := graph.New(graph.IntConst, 1, map[string]any{"value": int64(3)})
	bin := graph.New(graph.BinaryOp, 1, map[string]any{"op": "__add__", "lhs": lhs, "rhs": rhs})

	result, err := c.Reduce(bin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != graph.IntConst {
		t.Fatalf("expected constant folding to produce an IntConst, got %v", result.Kind)
	}
	if result.Attr("value").(int64) != 5 {
		t.Fatalf("expected folded value 5, got %v", result.Attr("value"))
	}
}

func TestReduceFunctionDefRegistersAndReplacesWithStore(t *testing.T) {
	c := New("m")
	fn := graph.New(graph.FunctionDef, 1, map[string]any{"name": "f", "body": []*graph.Node{}})

	result, err := c.Reduce(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Functions) != 1 || c.Functions[0].Name != "f" {
		t.Fatalf("expected function f to be registered, got %#v", c.Functions)
	}
	if result.Kind != graph.Store {
		t.Fatalf("expected FunctionDef to reduce to a Store, got %v", result.Kind)
	}
}

func TestReduceTupleAssignRecursesPerElement(t *testing.T) {
	c := New("m")
	a := graph.New(graph.Identifier, 1, map[string]any{"name": "a"})
	b := graph.New(graph.Identifier, 1, map[string]any{"name": "b"})
	target := graph.New(graph.Tuple, 1, map[string]any{"elts": []*graph.Node{a, b}})
	value := graph.New(graph.Load, 1, map[string]any{"name": "pair"})
	assign := graph.New(graph.Assign, 1, map[string]any{"target": target, "expr": value})

	if err := c.AddStatement(assign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.buf()) != 3 {
		t.Fatalf("expected temp store + 2 element assigns, got %d statements", len(c.buf()))
	}
}
