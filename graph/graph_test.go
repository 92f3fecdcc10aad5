package graph

import "testing"

func TestNewBinaryOpWiresEdges(t *testing.T) {
	lhs := New(IntConst, 1, map[string]any{"value": int64(1)})
	rhs := New(IntConst, 1, map[string]any{"value": int64(2)})
	n := New(BinaryOp, 1, map[string]any{"op": "__add__", "lhs": lhs, "rhs": rhs})

	if n.Edge("lhs").Value() != lhs {
		t.Fatalf("lhs edge not wired to lhs node")
	}
	if n.Edge("rhs").Value() != rhs {
		t.Fatalf("rhs edge not wired to rhs node")
	}
	if len(lhs.Uses()) != 1 {
		t.Fatalf("expected lhs to have one use, got %d", len(lhs.Uses()))
	}
}

func TestForwardRedirectsAllUses(t *testing.T) {
	old := New(IntConst, 1, map[string]any{"value": int64(1)})
	store1 := New(Store, 1, map[string]any{"name": "a", "expr": old})
	store2 := New(Store, 1, map[string]any{"name": "b", "expr": old})

	folded := New(IntConst, 1, map[string]any{"value": int64(1)})
	old.Forward(folded)

	if store1.Edge("expr").Value() != folded {
		t.Fatalf("store1 not redirected to folded node")
	}
	if store2.Edge("expr").Value() != folded {
		t.Fatalf("store2 not redirected to folded node")
	}
	if len(old.Uses()) != 0 {
		t.Fatalf("expected old node to have no remaining uses, got %d", len(old.Uses()))
	}
	if len(folded.Uses()) != 2 {
		t.Fatalf("expected folded node to inherit both uses, got %d", len(folded.Uses()))
	}
}

func TestSetEdgeUpdatesUseLists(t *testing.T) {
	a := New(IntConst, 1, map[string]any{"value": int64(1)})
	b := New(IntConst, 1, map[string]any{"value": int64(2)})
	ret := New(Return, 1, map[string]any{"value": a})

	ret.SetEdge("value", b)

	if len(a.Uses()) != 0 {
		t.Fatalf("expected a's use to be removed after SetEdge, got %d", len(a.Uses()))
	}
	if len(b.Uses()) != 1 {
		t.Fatalf("expected b to gain one use after SetEdge, got %d", len(b.Uses()))
	}
}

func TestIsAtom(t *testing.T) {
	atom := New(Load, 1, map[string]any{"name": "x"})
	if !atom.IsAtom() {
		t.Fatalf("Load should be an atom")
	}
	compound := New(BinaryOp, 1, map[string]any{
		"op":  "__add__",
		"lhs": New(Load, 1, map[string]any{"name": "x"}),
		"rhs": New(Load, 1, map[string]any{"name": "y"}),
	})
	if compound.IsAtom() {
		t.Fatalf("BinaryOp with edges should not be an atom")
	}
}

func TestIterateSubtreeVisitsAllDescendants(t *testing.T) {
	inner := New(IntConst, 1, map[string]any{"value": int64(3)})
	outer := New(List, 1, map[string]any{"elts": []*Node{inner, inner}})

	var visited []Kind
	outer.IterateSubtree(func(n *Node) { visited = append(visited, n.Kind) })

	if len(visited) != 3 {
		t.Fatalf("expected 3 visits (list + 2 elements), got %d", len(visited))
	}
	if visited[0] != List {
		t.Fatalf("expected root visit first, got kind %d", visited[0])
	}
}

func TestLookupUnknownKind(t *testing.T) {
	if _, err := Lookup(Kind(-1)); err == nil {
		t.Fatalf("expected an error looking up an undefined kind")
	}
}
