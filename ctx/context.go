// Package ctx implements the per-module flattening state: the Context
// described by the data model as owning a module's statement buffer,
// temporary counter, and the ordered lists of functions, classes, and
// imported sub-modules a module defines.
//
// Context plays the role the teacher's compiler.Compiler played for
// bytecode: Compile walked an AST emitting opcodes into a scope stack;
// Context.AddStatement walks a syntax graph, reducing each statement into
// flat, atom-only form and collecting function/class/module definitions
// for the emitter, the same "traverse once, accumulate state" shape.
package ctx

import (
	"fmt"

	"github.com/dr8co/pythonc/graph"
	"github.com/dr8co/pythonc/intern"
)

// FunctionInfo is a FunctionDef definition collected by a Context during
// flattening, kept apart from statement position per the reduction rule
// in §4.3 (FunctionDef registers, then is replaced in place by a Store).
type FunctionInfo struct {
	Node        *graph.Node
	Name        string
	CName       string
	LocalCount  int
	UsesGlobals bool
}

// ClassInfo is a ClassDef definition collected by a Context.
type ClassInfo struct {
	Node         *graph.Node
	Name         string
	CName        string
	InstanceName string
}

// ModuleInfo is an imported sub-module collected by a Context. Context is
// filled in once the import has been resolved and recursively translated.
type ModuleInfo struct {
	Name    string
	CName   string
	Context *Context
}

// Context represents one module's translation state.
type Context struct {
	ModuleName string

	Functions []*FunctionInfo
	Classes   []*ClassInfo
	Modules   []*ModuleInfo

	Ints    *intern.IntTable
	Strings *intern.StringTable
	Bytes   *intern.BytesTable

	// Globals maps a module-level symbol name to its dense index, filled
	// in by the scope analyzer after flattening completes. Index 0 is
	// reserved for "undefined".
	Globals map[string]int

	tempCounter int
	funcSeq     int
	classSeq    int

	bufStack [][]*graph.Node
}

// New creates an empty Context for a module named name.
func New(name string) *Context {
	return &Context{
		ModuleName: name,
		Ints:       intern.NewIntTable(),
		Strings:    intern.NewStringTable(),
		Bytes:      intern.NewBytesTable(),
		Globals:    map[string]int{},
		bufStack:   [][]*graph.Node{{}},
	}
}

// buf returns the statement buffer currently being built.
func (c *Context) buf() []*graph.Node { return c.bufStack[len(c.bufStack)-1] }

func (c *Context) setBuf(b []*graph.Node) { c.bufStack[len(c.bufStack)-1] = b }

// pushBuf starts a fresh statement buffer, saving the current one.
func (c *Context) pushBuf() { c.bufStack = append(c.bufStack, []*graph.Node{}) }

// popBuf restores the previously saved statement buffer and returns the
// one being discarded.
func (c *Context) popBuf() []*graph.Node {
	top := c.buf()
	c.bufStack = c.bufStack[:len(c.bufStack)-1]
	return top
}

// emitStatement appends n to the current buffer directly, bypassing
// reduction. Used by reduction rules to emit auxiliary statements.
func (c *Context) emitStatement(n *graph.Node) { c.setBuf(append(c.buf(), n)) }

// Statements returns the module's top-level flattened statement buffer.
// Valid once every top-level AddStatement call for this Context has
// returned; used by the emitter to walk the root and each sub-module's
// inlined init code.
func (c *Context) Statements() []*graph.Node { return c.bufStack[0] }

// GetTemp returns a fresh, monotonically increasing temporary name.
func (c *Context) GetTemp() string {
	name := fmt.Sprintf("temp_%02d", c.tempCounter)
	c.tempCounter++
	return name
}

// AddStatement reduces s and appends the result to the current statement
// buffer.
func (c *Context) AddStatement(s *graph.Node) error {
	reduced, err := c.Reduce(s)
	if err != nil {
		return err
	}
	if reduced != nil {
		c.emitStatement(reduced)
	}
	return nil
}

// FlattenList saves the current buffer, flattens each statement of block
// into a fresh buffer, then restores the saved buffer and returns the new
// block.
func (c *Context) FlattenList(block []*graph.Node) ([]*graph.Node, error) {
	c.pushBuf()
	for _, s := range block {
		if err := c.AddStatement(s); err != nil {
			c.popBuf()
			return nil, err
		}
	}
	return c.popBuf(), nil
}

// FlattenEdge reduces child and, unless forceAtom is set or the reduced
// child is already an atom, hoists it into a freshly named temporary:
// emits Store(T, child) into the current buffer and returns Load(T).
func (c *Context) FlattenEdge(child *graph.Node, forceAtom bool) (*graph.Node, error) {
	reduced, err := c.Reduce(child)
	if err != nil {
		return nil, err
	}
	if reduced == nil {
		return nil, nil
	}
	if forceAtom || reduced.IsAtom() {
		return reduced, nil
	}
	name := c.GetTemp()
	store := graph.New(graph.Store, reduced.Line, map[string]any{"name": name, "expr": reduced})
	c.emitStatement(store)
	return graph.New(graph.Load, reduced.Line, map[string]any{"name": name}), nil
}

// flattenEdges flattens each element of edges in source order, hoisting
// every non-atom sibling before the next is visited, preserving Python's
// left-to-right evaluation order.
func (c *Context) flattenEdges(edges []*graph.Node) ([]*graph.Node, error) {
	out := make([]*graph.Node, len(edges))
	for i, e := range edges {
		flat, err := c.FlattenEdge(e, false)
		if err != nil {
			return nil, err
		}
		out[i] = flat
	}
	return out, nil
}

// registerFunction records a FunctionDef in the Context's function list and
// returns a handle name for it.
func (c *Context) registerFunction(n *graph.Node) *FunctionInfo {
	name, _ := n.Attr("name").(string)
	c.funcSeq++
	info := &FunctionInfo{
		Node:  n,
		Name:  name,
		CName: fmt.Sprintf("pyfunc_%s_%s_%d", sanitizeIdent(c.ModuleName), sanitizeIdent(name), c.funcSeq),
	}
	c.Functions = append(c.Functions, info)
	return info
}

// registerClass records a ClassDef in the Context's class list and returns
// a handle for it.
func (c *Context) registerClass(n *graph.Node) *ClassInfo {
	name, _ := n.Attr("name").(string)
	c.classSeq++
	info := &ClassInfo{
		Node:         n,
		Name:         name,
		CName:        fmt.Sprintf("PyClass_%s_%s_%d", sanitizeIdent(c.ModuleName), sanitizeIdent(name), c.classSeq),
		InstanceName: fmt.Sprintf("class_singleton_%s_%s_%d", sanitizeIdent(c.ModuleName), sanitizeIdent(name), c.classSeq),
	}
	c.Classes = append(c.Classes, info)
	return info
}

// RegisterModule records an already-resolved sub-module import.
func (c *Context) RegisterModule(name string, sub *Context) *ModuleInfo {
	info := &ModuleInfo{Name: name, CName: fmt.Sprintf("mod_%s", sanitizeIdent(name)), Context: sub}
	c.Modules = append(c.Modules, info)
	return info
}

func sanitizeIdent(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "m"
	}
	return string(out)
}
