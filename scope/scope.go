// Package scope implements the two-pass binding analysis that runs after
// flattening: it walks each function and class body to classify every
// Load/Store as global, local, or class-attribute, then assigns module-
// level globals a dense index.
//
// It plays the role the teacher's SymbolTable played for bytecode
// compilation (name -> scope + index resolution with an Outer chain for
// nesting), but python functions here don't close over enclosing locals
// the way Monkey closures do — a Python function body only ever resolves
// a name to "local to this function", "class attribute of the enclosing
// class", or "module global" — so there is no FreeScope/closure capture
// to mirror; the two passes below replace SymbolTable.Resolve's recursive
// outer walk with an explicit two-pass collection over the whole subtree.
package scope

import (
	"sort"

	"github.com/dr8co/pythonc/graph"
)

// Kind is the binding scope assigned to a name.
type Kind int

const (
	// Global names resolve through the module's globals table.
	Global Kind = iota
	// Local names resolve through the enclosing function's locals.
	Local
	// ClassAttr names resolve through `this->getattr/setattr`.
	ClassAttr
)

// Binding is the resolved scope and index/name for one Load or Store.
type Binding struct {
	Kind Kind
	// Index is the dense local or global slot. Unused for ClassAttr.
	Index int
}

// FunctionScope is the result of analyzing one function body: its local
// name -> index table, the set of names it declared global, and whether
// it references any module global at all (used by the emitter to decide
// whether the generated function needs a globals-table parameter).
type FunctionScope struct {
	Locals      map[string]int
	Globals     map[string]bool
	UsesGlobals bool
}

// ClassScope is the result of analyzing one class body: names stored
// directly in the class body become attributes rather than locals.
type ClassScope struct {
	Attrs map[string]bool
}

// ModuleScope accumulates every module-level global, across both direct
// module statements and every function/class's surfaced globals.
type ModuleScope struct {
	Globals map[string]int
}

// AnalyzeFunction performs pass 1 for a single function body: collects
// all_globals = {explicit Global declarations} ∪ (loads − stores), then
// all_locals = (loads ∪ stores) − all_globals, and assigns local indices
// by sorted name.
func AnalyzeFunction(body []*graph.Node, explicitGlobals []string) *FunctionScope {
	loads := map[string]bool{}
	stores := map[string]bool{}
	walkNames(body, loads, stores)

	allGlobals := map[string]bool{}
	for _, g := range explicitGlobals {
		allGlobals[g] = true
	}
	for name := range loads {
		if !stores[name] {
			allGlobals[name] = true
		}
	}

	allLocals := map[string]bool{}
	for name := range loads {
		if !allGlobals[name] {
			allLocals[name] = true
		}
	}
	for name := range stores {
		if !allGlobals[name] {
			allLocals[name] = true
		}
	}

	names := make([]string, 0, len(allLocals))
	for name := range allLocals {
		names = append(names, name)
	}
	sort.Strings(names)

	locals := make(map[string]int, len(names))
	for i, name := range names {
		locals[name] = i
	}

	return &FunctionScope{
		Locals:      locals,
		Globals:     allGlobals,
		UsesGlobals: len(allGlobals) > 0,
	}
}

// AnalyzeClass performs pass 1 for a class body: every name stored
// directly in the class body (not inside a nested FunctionDef, which gets
// its own FunctionScope) becomes a class attribute.
func AnalyzeClass(body []*graph.Node) *ClassScope {
	attrs := map[string]bool{}
	for _, stmt := range body {
		if stmt.Kind == graph.Store {
			if name, ok := stmt.Attr("name").(string); ok {
				attrs[name] = true
			}
		}
	}
	return &ClassScope{Attrs: attrs}
}

// NewModuleScope creates an empty ModuleScope with index 0 reserved for
// "undefined".
func NewModuleScope() *ModuleScope {
	return &ModuleScope{Globals: map[string]int{}}
}

// Finalize performs pass 2: accumulates names from module-level statements
// and from every function/class's surfaced globals, then assigns global
// indices by sorted name starting at 1 (index 0 is reserved).
func (m *ModuleScope) Finalize(moduleBody []*graph.Node, funcScopes []*FunctionScope) map[string]int {
	loads := map[string]bool{}
	stores := map[string]bool{}
	walkNames(moduleBody, loads, stores)

	all := map[string]bool{}
	for name := range loads {
		all[name] = true
	}
	for name := range stores {
		all[name] = true
	}
	for _, fs := range funcScopes {
		for name := range fs.Globals {
			all[name] = true
		}
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	m.Globals = map[string]int{}
	for i, name := range names {
		m.Globals[name] = i + 1
	}
	return m.Globals
}

// Resolve classifies name within a function analyzed as fs, given the
// enclosing module's finalized global table.
func Resolve(name string, fs *FunctionScope, mod *ModuleScope) Binding {
	if fs != nil {
		if idx, ok := fs.Locals[name]; ok {
			return Binding{Kind: Local, Index: idx}
		}
	}
	return Binding{Kind: Global, Index: mod.Globals[name]}
}

// walkNames collects every Load/Store name reachable in body's subtrees,
// not descending into nested FunctionDef/ClassDef bodies (those get their
// own independent scope analysis).
func walkNames(body []*graph.Node, loads, stores map[string]bool) {
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case graph.Load:
			if name, ok := n.Attr("name").(string); ok {
				loads[name] = true
			}
			return
		case graph.Store:
			if name, ok := n.Attr("name").(string); ok {
				stores[name] = true
			}
			if e := n.Edge("expr"); e != nil {
				visit(e.Value())
			}
			return
		case graph.FunctionDef, graph.ClassDef:
			// Nested defs get their own scope pass; don't descend.
			return
		}

		def, err := graph.Lookup(n.Kind)
		if err != nil {
			return
		}
		for _, slot := range def.Slots {
			switch slot.Kind {
			case graph.SlotEdge:
				if e, ok := n.Edges[slot.Name]; ok {
					visit(e.Value())
				}
			case graph.SlotEdgeList:
				for _, v := range n.EdgeList(slot.Name) {
					visit(v)
				}
			case graph.SlotBlock:
				for _, stmt := range n.Block(slot.Name) {
					visit(stmt)
				}
			}
		}
	}
	for _, stmt := range body {
		visit(stmt)
	}
}
