package emit

import (
	"fmt"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
	"github.com/dr8co/pythonc/intern"
)

// sanitizeIdent turns s into a valid C++ identifier fragment, the same
// substitution ctx.sanitizeIdent performs but duplicated here since that
// helper is unexported: every emitted symbol that embeds a module or
// function name needs it, and emit has no other dependency on ctx's
// internals worth exporting one function for.
func sanitizeIdent(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "m"
	}
	return string(out)
}

// modPrefix namespaces a module's interned-constant symbols so two
// modules that happen to intern the same literal (e.g. both use the
// integer 0) don't collide at C++ file scope — intern.Symbol/BytesSymbol
// name singletons by value alone, with no notion of which module's table
// they came from.
func modPrefix(c *ctx.Context) string { return sanitizeIdent(c.ModuleName) }

func intSym(c *ctx.Context, v int64) string {
	return fmt.Sprintf("%s_%s", modPrefix(c), intern.Symbol(v))
}

func strSym(c *ctx.Context, s string) string {
	e, _ := c.Strings.Entry(s)
	return fmt.Sprintf("%s_%s", modPrefix(c), e.Symbol())
}

func bytesSym(c *ctx.Context, b []byte) string {
	id := c.Bytes.Intern(b)
	return fmt.Sprintf("%s_%s", modPrefix(c), intern.BytesSymbol(id))
}

// collectConstants walks every function/class body and every top-level
// statement of c, interning each literal it finds. It must run before
// c's constant-definition section is written, since that section needs
// the tables' final contents (Values()), and before any expression
// referencing a constant is emitted, since strSym looks an entry up
// rather than creating one.
func collectConstants(c *ctx.Context) {
	visit := func(n *graph.Node) {
		switch n.Kind {
		case graph.IntConst:
			if v, ok := n.Attr("value").(int64); ok {
				c.Ints.Intern(v)
			}
		case graph.StringConst:
			if s, ok := n.Attr("value").(string); ok {
				c.Strings.Intern(s)
			}
		case graph.BytesConst:
			if b, ok := n.Attr("value").([]byte); ok {
				c.Bytes.Intern(b)
			}
		}
	}
	for _, fi := range c.Functions {
		fi.Node.IterateSubtree(visit)
	}
	for _, ci := range c.Classes {
		ci.Node.IterateSubtree(visit)
	}
	for _, s := range c.Statements() {
		s.IterateSubtree(visit)
	}
}
