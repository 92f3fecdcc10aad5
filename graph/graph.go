// Package graph implements the intermediate syntax graph: the typed node
// representation the translator builds from the host AST and the
// flattener (package ctx) reduces into an atomic, statement-ordered form.
//
// Every node is tagged with a [Kind] and describes its children through a
// small set of slot shapes: a plain attribute (opaque Go value carried on
// the node, e.g. an operator string or a literal), a single-child edge, a
// list of edges, or a block (a nested statement sequence with its own
// scope). An edge tracks a back-pointer on the node it targets — its use
// list — so [Node.Forward] can redirect every use of a node to a
// replacement in one step.
//
// This mirrors the teacher's bytecode Definition/Lookup/Make machinery
// (opcode name + operand widths driving generic encode/decode) but
// repurposed for a tree of interior-mutable nodes rather than a flat
// instruction stream: [Definition] here names a node kind's ordered slot
// list instead of operand byte widths, and [New] fills a node's slots from
// it. New panics on an unknown kind; it does not check the values map
// against the slot list (names that are not slots are ignored).
package graph

import "fmt"

// Kind tags the variant of a syntax-graph node.
type Kind int

//nolint:revive
const (
	// Constants.
	NullConst Kind = iota
	NoneConst
	BoolConst
	IntConst
	StringConst
	BytesConst
	IntLiteral

	// References.
	Identifier
	SingletonRef
	Ref

	// Access.
	Load
	Store
	StoreAttr
	StoreSubscript
	StoreSubscriptDirect
	DeleteSubscript
	Subscript
	Attribute
	Slice

	// Operators.
	UnaryOp
	BinaryOp

	// Control.
	If
	While
	For
	Break
	Continue
	Return
	Assert
	Raise

	// Derived.
	IfExp
	BoolOp
	Comprehension
	Test
	TestNonNull

	// Collections.
	List
	Tuple
	TupleFromIter
	Dict
	Set

	// Call.
	Call
	MethodCall

	// Defs.
	FunctionDef
	ClassDef
	ImportStatement
	Arguments
	Global
	Assign
	PushTemp
	PopTemp
	CollectGarbage
)

// SlotKind classifies how a node's child slot is stored.
type SlotKind int

const (
	// SlotAttr is an opaque Go value carried directly on the node
	// (operator name, literal, identifier string, index).
	SlotAttr SlotKind = iota
	// SlotEdge is a single child node, tracked with a back-pointer.
	SlotEdge
	// SlotEdgeList is an ordered list of child nodes.
	SlotEdgeList
	// SlotBlock is a nested statement sequence (its own flattened scope).
	SlotBlock
)

// SlotDef names one slot in a node kind's declared shape.
type SlotDef struct {
	Name string
	Kind SlotKind
}

// Definition describes a node kind: its display name and its slots in
// declared order. [Node.IterateSubtree] and [New]'s slot handling both
// walk slots in this order, so it must stay stable.
type Definition struct {
	Name  string
	Slots []SlotDef
}

// definitions maps each Kind to its Definition. Slot presence here is the
// single source of truth translate and emit build against: translate
// passes children by slot name via New, emit reads them back the same
// way.
var definitions = map[Kind]*Definition{
	NullConst:   {"NullConst", nil},
	NoneConst:   {"NoneConst", nil},
	BoolConst:   {"BoolConst", []SlotDef{{"value", SlotAttr}}},
	IntConst:    {"IntConst", []SlotDef{{"value", SlotAttr}}},
	StringConst: {"StringConst", []SlotDef{{"value", SlotAttr}}},
	BytesConst:  {"BytesConst", []SlotDef{{"value", SlotAttr}}},
	IntLiteral:  {"IntLiteral", []SlotDef{{"value", SlotAttr}}},

	Identifier:   {"Identifier", []SlotDef{{"name", SlotAttr}}},
	SingletonRef: {"SingletonRef", []SlotDef{{"symbol", SlotAttr}}},
	Ref:          {"Ref", []SlotDef{{"type", SlotAttr}, {"handle", SlotAttr}, {"args", SlotEdgeList}}},

	Load:                 {"Load", []SlotDef{{"name", SlotAttr}}},
	Store:                {"Store", []SlotDef{{"name", SlotAttr}, {"expr", SlotEdge}}},
	StoreAttr:            {"StoreAttr", []SlotDef{{"obj", SlotEdge}, {"attr", SlotAttr}, {"expr", SlotEdge}}},
	StoreSubscript:       {"StoreSubscript", []SlotDef{{"obj", SlotEdge}, {"idx", SlotEdge}, {"expr", SlotEdge}}},
	StoreSubscriptDirect: {"StoreSubscriptDirect", []SlotDef{{"obj", SlotEdge}, {"idx", SlotEdge}, {"expr", SlotEdge}}},
	DeleteSubscript:      {"DeleteSubscript", []SlotDef{{"obj", SlotEdge}, {"idx", SlotEdge}}},
	Subscript:            {"Subscript", []SlotDef{{"obj", SlotEdge}, {"idx", SlotEdge}}},
	Attribute:            {"Attribute", []SlotDef{{"obj", SlotEdge}, {"attr", SlotAttr}}},
	Slice:                {"Slice", []SlotDef{{"lower", SlotEdge}, {"upper", SlotEdge}, {"step", SlotEdge}}},

	UnaryOp:  {"UnaryOp", []SlotDef{{"op", SlotAttr}, {"rhs", SlotEdge}}},
	BinaryOp: {"BinaryOp", []SlotDef{{"op", SlotAttr}, {"lhs", SlotEdge}, {"rhs", SlotEdge}}},

	If:       {"If", []SlotDef{{"cond", SlotEdge}, {"then", SlotBlock}, {"else", SlotBlock}}},
	While:    {"While", []SlotDef{{"cond", SlotEdge}, {"body", SlotBlock}}},
	For:      {"For", []SlotDef{{"target", SlotEdge}, {"iter", SlotEdge}, {"body", SlotBlock}}},
	Break:    {"Break", nil},
	Continue: {"Continue", nil},
	Return:   {"Return", []SlotDef{{"value", SlotEdge}}},
	Assert:   {"Assert", []SlotDef{{"test", SlotEdge}, {"msg", SlotEdge}}},
	Raise:    {"Raise", []SlotDef{{"exc", SlotEdge}}},

	IfExp:         {"IfExp", []SlotDef{{"test", SlotEdge}, {"body", SlotEdge}, {"orelse", SlotEdge}}},
	BoolOp:        {"BoolOp", []SlotDef{{"op", SlotAttr}, {"values", SlotEdgeList}}},
	Comprehension: {"Comprehension", []SlotDef{{"kind", SlotAttr}, {"elt", SlotEdge}, {"key", SlotEdge}, {"target", SlotEdge}, {"iter", SlotEdge}, {"ifs", SlotEdgeList}}},
	Test:          {"Test", []SlotDef{{"value", SlotEdge}}},
	TestNonNull:   {"TestNonNull", []SlotDef{{"value", SlotEdge}}},

	List:          {"List", []SlotDef{{"elts", SlotEdgeList}}},
	Tuple:         {"Tuple", []SlotDef{{"elts", SlotEdgeList}}},
	TupleFromIter: {"TupleFromIter", []SlotDef{{"iter", SlotEdge}}},
	Dict:          {"Dict", []SlotDef{{"keys", SlotEdgeList}, {"values", SlotEdgeList}}},
	Set:           {"Set", []SlotDef{{"elts", SlotEdgeList}}},

	Call:       {"Call", []SlotDef{{"fn", SlotEdge}, {"args", SlotEdgeList}, {"kwargs", SlotEdgeList}}},
	MethodCall: {"MethodCall", []SlotDef{{"obj", SlotEdge}, {"method", SlotAttr}, {"args", SlotEdgeList}}},

	FunctionDef:     {"FunctionDef", []SlotDef{{"name", SlotAttr}, {"args", SlotEdge}, {"body", SlotBlock}}},
	ClassDef:        {"ClassDef", []SlotDef{{"name", SlotAttr}, {"baseClass", SlotAttr}, {"body", SlotBlock}}},
	ImportStatement: {"ImportStatement", []SlotDef{{"module", SlotAttr}, {"names", SlotAttr}}},
	Arguments:       {"Arguments", []SlotDef{{"params", SlotAttr}, {"defaults", SlotEdgeList}, {"vararg", SlotAttr}, {"kwarg", SlotAttr}}},
	Global:          {"Global", []SlotDef{{"names", SlotAttr}}},
	Assign:          {"Assign", []SlotDef{{"target", SlotEdge}, {"expr", SlotEdge}, {"targetType", SlotAttr}}},
	PushTemp:        {"PushTemp", []SlotDef{{"value", SlotEdge}}},
	PopTemp:         {"PopTemp", nil},
	CollectGarbage:  {"CollectGarbage", nil},
}

// Lookup returns the Definition for k.
func Lookup(k Kind) (*Definition, error) {
	def, ok := definitions[k]
	if !ok {
		return nil, fmt.Errorf("graph: kind %d undefined", k)
	}
	return def, nil
}

// Edge is a single child slot: it holds the current target, tracked so
// the target's use list can be maintained as the edge is retargeted.
type Edge struct {
	value *Node
}

// Value returns the edge's current target.
func (e *Edge) Value() *Node { return e.value }

// Set retargets the edge to v, updating use lists on both the old and new
// targets.
func (e *Edge) Set(v *Node) {
	if e.value != nil {
		e.value.removeUse(e)
	}
	e.value = v
	if v != nil {
		v.addUse(e)
	}
}

// Node is one syntax-graph node: a Kind tag plus its slots, addressed by
// name per the Kind's Definition.
type Node struct {
	Kind   Kind
	Attrs  map[string]any
	Edges  map[string]*Edge
	Lists  map[string][]*Edge
	Blocks map[string][]*Node

	// Line is the originating source line, carried through for
	// diagnostics raised during flattening or emission.
	Line int

	uses []*Edge
}

// New constructs a node of kind k. values supplies slot-name -> value
// pairs; edge slots take a *Node (or nil), edge-list slots take []*Node,
// block slots take []*Node (statements), attribute slots take any
// concrete Go value. Slots absent from values are left zero.
func New(k Kind, line int, values map[string]any) *Node {
	def, err := Lookup(k)
	if err != nil {
		panic(err)
	}
	n := &Node{
		Kind:   k,
		Attrs:  map[string]any{},
		Edges:  map[string]*Edge{},
		Lists:  map[string][]*Edge{},
		Blocks: map[string][]*Node{},
		Line:   line,
	}
	for _, slot := range def.Slots {
		v, present := values[slot.Name]
		switch slot.Kind {
		case SlotAttr:
			if present {
				n.Attrs[slot.Name] = v
			}
		case SlotEdge:
			e := &Edge{}
			if present && v != nil {
				e.Set(v.(*Node))
			}
			n.Edges[slot.Name] = e
		case SlotEdgeList:
			var children []*Node
			if present {
				children, _ = v.([]*Node)
			}
			edges := make([]*Edge, len(children))
			for i, c := range children {
				e := &Edge{}
				e.Set(c)
				edges[i] = e
			}
			n.Lists[slot.Name] = edges
		case SlotBlock:
			var body []*Node
			if present {
				body, _ = v.([]*Node)
			}
			n.Blocks[slot.Name] = body
		}
	}
	return n
}

func (n *Node) addUse(e *Edge) { n.uses = append(n.uses, e) }

func (n *Node) removeUse(e *Edge) {
	for i, u := range n.uses {
		if u == e {
			n.uses = append(n.uses[:i], n.uses[i+1:]...)
			return
		}
	}
}

// Uses returns the edges currently pointing at n.
func (n *Node) Uses() []*Edge { return n.uses }

// Forward redirects every edge currently pointing at n to target instead.
// Used when a reduction rule produces a direct substitute for a node that
// may already be referenced elsewhere in the graph.
func (n *Node) Forward(target *Node) {
	uses := n.uses
	n.uses = nil
	for _, e := range uses {
		e.value = target
		if target != nil {
			target.addUse(e)
		}
	}
}

// Edge returns the named single-child edge, or nil if the kind has no
// such slot.
func (n *Node) Edge(name string) *Edge { return n.Edges[name] }

// SetEdge retargets the named single-child slot to v.
func (n *Node) SetEdge(name string, v *Node) {
	e, ok := n.Edges[name]
	if !ok {
		e = &Edge{}
		n.Edges[name] = e
	}
	e.Set(v)
}

// EdgeList returns the named edge-list slot's current values.
func (n *Node) EdgeList(name string) []*Node {
	edges := n.Lists[name]
	out := make([]*Node, len(edges))
	for i, e := range edges {
		out[i] = e.Value()
	}
	return out
}

// Block returns the named statement-block slot.
func (n *Node) Block(name string) []*Node { return n.Blocks[name] }

// SetBlock replaces the named statement-block slot, used when flattening
// rewrites a function/class/if/while/for body.
func (n *Node) SetBlock(name string, body []*Node) { n.Blocks[name] = body }

// Attr returns the named attribute slot.
func (n *Node) Attr(name string) any { return n.Attrs[name] }

// IsAtom reports whether every slot on n is a plain attribute: such a
// node may appear directly as an operand of an emitted C++ expression
// without first being hoisted into a temporary.
func (n *Node) IsAtom() bool {
	return len(n.Edges) == 0 && len(n.Lists) == 0 && len(n.Blocks) == 0
}

// IterateSubtree yields n and every descendant reachable through edge,
// edge-list, and block slots, in a stable, declaration order.
func (n *Node) IterateSubtree(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	def, err := Lookup(n.Kind)
	if err != nil {
		return
	}
	for _, slot := range def.Slots {
		switch slot.Kind {
		case SlotEdge:
			if e, ok := n.Edges[slot.Name]; ok && e.Value() != nil {
				e.Value().IterateSubtree(visit)
			}
		case SlotEdgeList:
			for _, e := range n.Lists[slot.Name] {
				if e.Value() != nil {
					e.Value().IterateSubtree(visit)
				}
			}
		case SlotBlock:
			for _, stmt := range n.Blocks[slot.Name] {
				stmt.IterateSubtree(visit)
			}
		}
	}
}

// String gives a debug representation naming the kind and any attribute
// values, used by translator/flattener tests and dot-graph dumps.
func (n *Node) String() string {
	def, err := Lookup(n.Kind)
	name := "?"
	if err == nil {
		name = def.Name
	}
	if len(n.Attrs) == 0 {
		return name
	}
	return fmt.Sprintf("%s%v", name, n.Attrs)
}
