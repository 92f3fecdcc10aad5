package ctx

import (
	"fmt"

	"github.com/dr8co/pythonc/graph"
)

// Reduce applies the rewrite rule for n's kind, if any, and re-reduces the
// result until it stabilizes (a rule that returns a node of a kind with no
// further rule is the fixed point). Nodes with no applicable rule are
// returned unchanged.
func (c *Context) Reduce(n *graph.Node) (*graph.Node, error) {
	if n == nil {
		return nil, nil
	}
	for {
		next, changed, err := c.reduceOnce(n)
		if err != nil {
			return nil, err
		}
		if !changed {
			return next, nil
		}
		n = next
	}
}

func (c *Context) reduceOnce(n *graph.Node) (*graph.Node, bool, error) {
	switch n.Kind {
	case graph.List, graph.Tuple, graph.Set, graph.Dict:
		return c.reduceCollectionLiteral(n)
	case graph.Comprehension:
		return c.reduceComprehension(n)
	case graph.For:
		return c.reduceFor(n)
	case graph.While:
		return c.reduceWhile(n)
	case graph.IfExp, graph.BoolOp:
		return c.reduceIfExpOrBoolOp(n)
	case graph.Assign:
		return c.reduceAssign(n)
	case graph.BinaryOp:
		return c.reduceBinaryOpFold(n)
	case graph.FunctionDef:
		return c.reduceFunctionDef(n)
	case graph.ClassDef:
		return c.reduceClassDef(n)
	case graph.ImportStatement:
		return c.reduceImportStatement(n)
	default:
		return c.reduceChildrenGenerically(n)
	}
}

// reduceChildrenGenerically is the fallback for every node kind without a
// dedicated rewrite rule: it recursively reduces single-child edges in
// place (the no_flatten path — a direct child need not itself be hoisted
// to a temp, only its own non-atom operands must be), flattens edge-list
// slots element by element with hoisting (the ordering guarantee for call
// arguments, dict pairs, and similar lists), and flattens block slots as
// independent statement sequences.
func (c *Context) reduceChildrenGenerically(n *graph.Node) (*graph.Node, bool, error) {
	def, err := graph.Lookup(n.Kind)
	if err != nil {
		return n, false, nil
	}
	for _, slot := range def.Slots {
		switch slot.Kind {
		case graph.SlotEdge:
			child := n.Edge(slot.Name).Value()
			if child == nil {
				continue
			}
			reduced, err := c.Reduce(child)
			if err != nil {
				return nil, false, err
			}
			n.SetEdge(slot.Name, reduced)
		case graph.SlotEdgeList:
			flat, err := c.flattenEdges(n.EdgeList(slot.Name))
			if err != nil {
				return nil, false, err
			}
			for i, v := range flat {
				n.Lists[slot.Name][i].Set(v)
			}
		case graph.SlotBlock:
			flat, err := c.FlattenList(n.Block(slot.Name))
			if err != nil {
				return nil, false, err
			}
			n.SetBlock(slot.Name, flat)
		}
	}
	return n, false, nil
}

// reduceCollectionLiteral implements: allocate a fresh temp
// T = Ref(kind, [n]), emit direct-slot stores for each element, return T.
// Insertion order is preserved for Dict.
func (c *Context) reduceCollectionLiteral(n *graph.Node) (*graph.Node, bool, error) {
	kindName := map[graph.Kind]string{
		graph.List: "list", graph.Tuple: "tuple", graph.Set: "set", graph.Dict: "dict",
	}[n.Kind]

	temp := c.GetTemp()
	c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{
		"name": temp, "expr": graph.New(graph.Ref, n.Line, map[string]any{"type": kindName}),
	}))
	ref := graph.New(graph.Load, n.Line, map[string]any{"name": temp})

	if n.Kind == graph.Dict {
		flatKeys, err := c.flattenEdges(n.EdgeList("keys"))
		if err != nil {
			return nil, false, err
		}
		flatVals, err := c.flattenEdges(n.EdgeList("values"))
		if err != nil {
			return nil, false, err
		}
		for i := range flatKeys {
			store := graph.New(graph.StoreSubscriptDirect, n.Line, map[string]any{
				"obj": ref, "idx": flatKeys[i], "expr": flatVals[i],
			})
			c.emitStatement(store)
		}
		return ref, false, nil
	}

	flatElts, err := c.flattenEdges(n.EdgeList("elts"))
	if err != nil {
		return nil, false, err
	}
	for i, el := range flatElts {
		idx := graph.New(graph.IntConst, n.Line, map[string]any{"value": int64(i)})
		store := graph.New(graph.StoreSubscriptDirect, n.Line, map[string]any{
			"obj": ref, "idx": idx, "expr": el,
		})
		c.emitStatement(store)
	}
	return ref, false, nil
}

// reduceComprehension lowers list/set/dict/generator comprehensions into
// an iterator-driven while(true) loop with PushTemp/PopTemp GC rooting
// around the iterator, per the comprehension reduction rule.
func (c *Context) reduceComprehension(n *graph.Node) (*graph.Node, bool, error) {
	kind, _ := n.Attr("kind").(int)
	containerName := map[int]string{0: "list", 1: "set", 2: "dict", 3: "list"}[kind]

	resultTemp := c.GetTemp()
	c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{
		"name": resultTemp, "expr": graph.New(graph.Ref, n.Line, map[string]any{"type": containerName}),
	}))
	result := graph.New(graph.Load, n.Line, map[string]any{"name": resultTemp})

	iterSrc, err := c.FlattenEdge(n.Edge("iter").Value(), false)
	if err != nil {
		return nil, false, err
	}
	itTemp := c.GetTemp()
	itCall := graph.New(graph.Call, n.Line, map[string]any{
		"fn":   graph.New(graph.Identifier, n.Line, map[string]any{"name": "iter"}),
		"args": []*graph.Node{iterSrc},
	})
	c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{"name": itTemp, "expr": itCall}))
	itLoad := graph.New(graph.Load, n.Line, map[string]any{"name": itTemp})
	c.emitStatement(graph.New(graph.PushTemp, n.Line, map[string]any{"value": itLoad}))

	itemTemp := c.GetTemp()
	nextCall := graph.New(graph.MethodCall, n.Line, map[string]any{
		"obj": itLoad, "method": "next", "args": []*graph.Node{},
	})
	bodyStmts := []*graph.Node{
		graph.New(graph.Store, n.Line, map[string]any{"name": itemTemp, "expr": nextCall}),
		graph.New(graph.If, n.Line, map[string]any{
			"cond": graph.New(graph.UnaryOp, n.Line, map[string]any{
				"op": "not", "rhs": graph.New(graph.TestNonNull, n.Line, map[string]any{
					"value": graph.New(graph.Load, n.Line, map[string]any{"name": itemTemp}),
				}),
			}),
			"then": []*graph.Node{graph.New(graph.Break, n.Line, nil)},
			"else": []*graph.Node(nil),
		}),
	}

	if target := n.Edge("target").Value(); target != nil {
		bodyStmts = append(bodyStmts, graph.New(graph.Assign, n.Line, map[string]any{
			"target": target, "expr": graph.New(graph.Load, n.Line, map[string]any{"name": itemTemp}),
		}))
	}

	for _, ifCond := range n.EdgeList("ifs") {
		bodyStmts = append(bodyStmts, graph.New(graph.If, n.Line, map[string]any{
			"cond": graph.New(graph.UnaryOp, n.Line, map[string]any{"op": "not", "rhs": ifCond}),
			"then": []*graph.Node{graph.New(graph.Continue, n.Line, nil)},
			"else": []*graph.Node(nil),
		}))
	}

	switch kind {
	case 2: // dict
		bodyStmts = append(bodyStmts, graph.New(graph.StoreSubscript, n.Line, map[string]any{
			"obj": result, "idx": n.Edge("key").Value(), "expr": n.Edge("elt").Value(),
		}))
	default:
		bodyStmts = append(bodyStmts, graph.New(graph.MethodCall, n.Line, map[string]any{
			"obj": result, "method": "append", "args": []*graph.Node{n.Edge("elt").Value()},
		}))
	}

	flatBody, err := c.FlattenList(bodyStmts)
	if err != nil {
		return nil, false, err
	}
	loop := graph.New(graph.While, n.Line, map[string]any{
		"cond": graph.New(graph.BoolConst, n.Line, map[string]any{"value": true}),
		"body": flatBody,
	})
	c.emitStatement(loop)
	c.emitStatement(graph.New(graph.PopTemp, n.Line, nil))

	return result, false, nil
}

// reduceFor applies the same iterator/while lowering as comprehensions, as
// a statement: it returns nil since the loop has already been emitted.
func (c *Context) reduceFor(n *graph.Node) (*graph.Node, bool, error) {
	iterSrc, err := c.FlattenEdge(n.Edge("iter").Value(), false)
	if err != nil {
		return nil, false, err
	}
	itTemp := c.GetTemp()
	itCall := graph.New(graph.Call, n.Line, map[string]any{
		"fn":   graph.New(graph.Identifier, n.Line, map[string]any{"name": "iter"}),
		"args": []*graph.Node{iterSrc},
	})
	c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{"name": itTemp, "expr": itCall}))
	itLoad := graph.New(graph.Load, n.Line, map[string]any{"name": itTemp})
	c.emitStatement(graph.New(graph.PushTemp, n.Line, map[string]any{"value": itLoad}))

	itemTemp := c.GetTemp()
	nextCall := graph.New(graph.MethodCall, n.Line, map[string]any{
		"obj": itLoad, "method": "next", "args": []*graph.Node{},
	})
	loopBody := []*graph.Node{
		graph.New(graph.Store, n.Line, map[string]any{"name": itemTemp, "expr": nextCall}),
		graph.New(graph.If, n.Line, map[string]any{
			"cond": graph.New(graph.UnaryOp, n.Line, map[string]any{
				"op": "not", "rhs": graph.New(graph.TestNonNull, n.Line, map[string]any{
					"value": graph.New(graph.Load, n.Line, map[string]any{"name": itemTemp}),
				}),
			}),
			"then": []*graph.Node{graph.New(graph.Break, n.Line, nil)},
			"else": []*graph.Node(nil),
		}),
		graph.New(graph.Assign, n.Line, map[string]any{
			"target": n.Edge("target").Value(),
			"expr":   graph.New(graph.Load, n.Line, map[string]any{"name": itemTemp}),
		}),
	}
	loopBody = append(loopBody, n.Block("body")...)

	flatBody, err := c.FlattenList(loopBody)
	if err != nil {
		return nil, false, err
	}
	loop := graph.New(graph.While, n.Line, map[string]any{
		"cond": graph.New(graph.BoolConst, n.Line, map[string]any{"value": true}),
		"body": flatBody,
	})
	c.emitStatement(loop)
	c.emitStatement(graph.New(graph.PopTemp, n.Line, nil))
	c.emitStatement(graph.New(graph.CollectGarbage, n.Line, nil))
	return nil, false, nil
}

// reduceWhile rewrites the loop top into `if(!cond) break` and appends a
// trailing CollectGarbage.
func (c *Context) reduceWhile(n *graph.Node) (*graph.Node, bool, error) {
	guard := graph.New(graph.If, n.Line, map[string]any{
		"cond": graph.New(graph.Test, n.Line, map[string]any{
			"value": graph.New(graph.UnaryOp, n.Line, map[string]any{"op": "not", "rhs": n.Edge("cond").Value()}),
		}),
		"then": []*graph.Node{graph.New(graph.Break, n.Line, nil)},
		"else": []*graph.Node(nil),
	})
	body := append([]*graph.Node{guard}, n.Block("body")...)
	flatBody, err := c.FlattenList(body)
	if err != nil {
		return nil, false, err
	}
	loop := graph.New(graph.While, n.Line, map[string]any{
		"cond": graph.New(graph.BoolConst, n.Line, map[string]any{"value": true}),
		"body": flatBody,
	})
	c.emitStatement(loop)
	c.emitStatement(graph.New(graph.CollectGarbage, n.Line, nil))
	return nil, false, nil
}

// reduceIfExpOrBoolOp materializes a temp initialized to None (or to lhs
// for BoolOp), then an If that writes the chosen branch. `or` swaps the
// test's true/false branches.
func (c *Context) reduceIfExpOrBoolOp(n *graph.Node) (*graph.Node, bool, error) {
	temp := c.GetTemp()

	if n.Kind == graph.IfExp {
		c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{
			"name": temp, "expr": graph.New(graph.NoneConst, n.Line, nil),
		}))
		thenStore := graph.New(graph.Store, n.Line, map[string]any{"name": temp, "expr": n.Edge("body").Value()})
		elseStore := graph.New(graph.Store, n.Line, map[string]any{"name": temp, "expr": n.Edge("orelse").Value()})
		thenFlat, err := c.FlattenList([]*graph.Node{thenStore})
		if err != nil {
			return nil, false, err
		}
		elseFlat, err := c.FlattenList([]*graph.Node{elseStore})
		if err != nil {
			return nil, false, err
		}
		flatTest, err := c.FlattenEdge(n.Edge("test").Value(), true)
		if err != nil {
			return nil, false, err
		}
		c.emitStatement(graph.New(graph.If, n.Line, map[string]any{
			"cond": graph.New(graph.Test, n.Line, map[string]any{"value": flatTest}),
			"then": thenFlat, "else": elseFlat,
		}))
		return graph.New(graph.Load, n.Line, map[string]any{"name": temp}), false, nil
	}

	// BoolOp: n-ary and/or chain, left-associated pairwise.
	op, _ := n.Attr("op").(string)
	values := n.EdgeList("values")
	cur := values[0]
	for _, rhs := range values[1:] {
		flatLhs, err := c.FlattenEdge(cur, false)
		if err != nil {
			return nil, false, err
		}
		c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{"name": temp, "expr": flatLhs}))
		rhsStore := graph.New(graph.Store, n.Line, map[string]any{"name": temp, "expr": rhs})
		rhsFlat, err := c.FlattenList([]*graph.Node{rhsStore})
		if err != nil {
			return nil, false, err
		}
		testNode := graph.New(graph.Test, n.Line, map[string]any{
			"value": graph.New(graph.Load, n.Line, map[string]any{"name": temp}),
		})
		var thenBlk, elseBlk []*graph.Node
		if op == "or" {
			thenBlk, elseBlk = nil, rhsFlat
		} else {
			thenBlk, elseBlk = rhsFlat, nil
		}
		c.emitStatement(graph.New(graph.If, n.Line, map[string]any{
			"cond": testNode, "then": thenBlk, "else": elseBlk,
		}))
		cur = graph.New(graph.Load, n.Line, map[string]any{"name": temp})
	}
	return cur, false, nil
}

// reduceAssign recurses a tuple target into per-element subscript
// assignments off a hidden temp, and otherwise lowers target = expr into
// the Store/StoreAttr/StoreSubscript form the emitter expects. The rhs is
// reduced but not force-hoisted to a temp (the no_flatten rule for a
// Store's right-hand side): the assignment itself is already the
// operation that writes the value, so it need not write through a
// throwaway temporary first.
func (c *Context) reduceAssign(n *graph.Node) (*graph.Node, bool, error) {
	target := n.Edge("target").Value()

	if target != nil && target.Kind == graph.Tuple {
		value, err := c.FlattenEdge(n.Edge("expr").Value(), false)
		if err != nil {
			return nil, false, err
		}
		temp := c.GetTemp()
		c.emitStatement(graph.New(graph.Store, n.Line, map[string]any{"name": temp, "expr": value}))
		tempLoad := graph.New(graph.Load, n.Line, map[string]any{"name": temp})
		for i, el := range target.EdgeList("elts") {
			idx := graph.New(graph.IntConst, n.Line, map[string]any{"value": int64(i)})
			item := graph.New(graph.Subscript, n.Line, map[string]any{"obj": tempLoad, "idx": idx})
			if err := c.AddStatement(graph.New(graph.Assign, n.Line, map[string]any{
				"target": el, "expr": item,
			})); err != nil {
				return nil, false, err
			}
		}
		return nil, false, nil
	}

	flatExpr, err := c.Reduce(n.Edge("expr").Value())
	if err != nil {
		return nil, false, err
	}

	switch target.Kind {
	case graph.Identifier:
		name, _ := target.Attr("name").(string)
		return graph.New(graph.Store, n.Line, map[string]any{"name": name, "expr": flatExpr}), false, nil
	case graph.Attribute:
		obj, err := c.FlattenEdge(target.Edge("obj").Value(), false)
		if err != nil {
			return nil, false, err
		}
		attr, _ := target.Attr("attr").(string)
		return graph.New(graph.StoreAttr, n.Line, map[string]any{"obj": obj, "attr": attr, "expr": flatExpr}), false, nil
	case graph.Subscript:
		obj, err := c.FlattenEdge(target.Edge("obj").Value(), false)
		if err != nil {
			return nil, false, err
		}
		idx, err := c.FlattenEdge(target.Edge("idx").Value(), false)
		if err != nil {
			return nil, false, err
		}
		return graph.New(graph.StoreSubscript, n.Line, map[string]any{"obj": obj, "idx": idx, "expr": flatExpr}), false, nil
	default:
		return nil, false, fmt.Errorf("ctx: unsupported assignment target kind %d", target.Kind)
	}
}

// reduceBinaryOpFold evaluates a BinaryOp at translate time when both
// operands are IntConst and the operator is __add__, __sub__ or __mul__,
// using host int64 arithmetic; no other operator and no other constant
// type (str, bytes, bool) is folded. When folding doesn't apply, its
// operands are still flattened to atoms (an operator's arguments must
// always be atoms even though the operator expression itself may remain a
// Store's direct rhs). If flattening has just turned both operands into
// IntConst, the rule runs again so the enclosing operator folds too.
func (c *Context) reduceBinaryOpFold(n *graph.Node) (*graph.Node, bool, error) {
	lhs := n.Edge("lhs").Value()
	rhs := n.Edge("rhs").Value()
	if lhs != nil && rhs != nil && lhs.Kind == graph.IntConst && rhs.Kind == graph.IntConst {
		op, _ := n.Attr("op").(string)
		a, _ := lhs.Attr("value").(int64)
		b, _ := rhs.Attr("value").(int64)
		var result int64
		var folds bool
		switch op {
		case "__add__":
			result, folds = a+b, true
		case "__sub__":
			result, folds = a-b, true
		case "__mul__":
			result, folds = a*b, true
		}
		if folds {
			c.Ints.Intern(result)
			return graph.New(graph.IntConst, n.Line, map[string]any{"value": result}), false, nil
		}
	}

	flatLhs, err := c.FlattenEdge(lhs, false)
	if err != nil {
		return nil, false, err
	}
	flatRhs, err := c.FlattenEdge(rhs, false)
	if err != nil {
		return nil, false, err
	}
	n.SetEdge("lhs", flatLhs)
	n.SetEdge("rhs", flatRhs)
	if (flatLhs != lhs || flatRhs != rhs) && flatLhs != nil && flatRhs != nil &&
		flatLhs.Kind == graph.IntConst && flatRhs.Kind == graph.IntConst {
		return n, true, nil
	}
	return n, false, nil
}

// reduceFunctionDef flattens the function's body with its own statement
// buffer, registers the def with the Context, and replaces it in
// statement position with Store(name, <handle>).
func (c *Context) reduceFunctionDef(n *graph.Node) (*graph.Node, bool, error) {
	flatBody, err := c.FlattenList(n.Block("body"))
	if err != nil {
		return nil, false, err
	}
	n.SetBlock("body", flatBody)

	info := c.registerFunction(n)
	handle := graph.New(graph.Ref, n.Line, map[string]any{"type": "function", "handle": info.CName})
	return graph.New(graph.Store, n.Line, map[string]any{"name": info.Name, "expr": handle}), false, nil
}

// reduceClassDef flattens the class body, registers the class with the
// Context, and replaces it in statement position with Store(name, <handle>).
func (c *Context) reduceClassDef(n *graph.Node) (*graph.Node, bool, error) {
	flatBody, err := c.FlattenList(n.Block("body"))
	if err != nil {
		return nil, false, err
	}
	n.SetBlock("body", flatBody)

	info := c.registerClass(n)
	handle := graph.New(graph.Ref, n.Line, map[string]any{"type": "class", "handle": info.InstanceName})
	return graph.New(graph.Store, n.Line, map[string]any{"name": info.Name, "expr": handle}), false, nil
}

// reduceImportStatement registers the import and replaces it with a Store
// of the resolved module handle. Actual file resolution is the job of
// package imports; by the time this rule runs the import has already been
// recursively translated and attached to the Context via RegisterModule.
func (c *Context) reduceImportStatement(n *graph.Node) (*graph.Node, bool, error) {
	name, _ := n.Attr("module").(string)
	if name == "" {
		return nil, false, fmt.Errorf("import statement missing module name")
	}
	handle := graph.New(graph.Ref, n.Line, map[string]any{"type": "module", "handle": fmt.Sprintf("mod_%s", sanitizeIdent(name))})
	return graph.New(graph.Store, n.Line, map[string]any{"name": name, "expr": handle}), false, nil
}
