package driver

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dr8co/pythonc/ctx"
	"github.com/dr8co/pythonc/graph"
)

// dumpDot writes a Graphviz dump of mod's syntax graph (and every
// function/class body it registered) and shells out to PYTHONC_DOT_CMD
// with it, when that variable is set. Grounded in breadchris-yaegi's
// YAEGI_DOT_CMD/opt.dotCmd hook: a debug aid with no effect on
// translation, silently skipped when unset.
func dumpDot(mod *ctx.Context) {
	cmdLine := os.Getenv("PYTHONC_DOT_CMD")
	if cmdLine == "" {
		return
	}

	var b strings.Builder
	b.WriteString("digraph syntax {\n")
	ids := map[*graph.Node]int{}
	next := 0
	nodeID := func(n *graph.Node) int {
		if id, ok := ids[n]; ok {
			return id
		}
		id := next
		next++
		ids[n] = id
		return id
	}
	emitNode := func(n *graph.Node) {
		fmt.Fprintf(&b, "  n%d [label=%q];\n", nodeID(n), n.String())
	}

	for _, stmt := range mod.Statements() {
		stmt.IterateSubtree(emitNode)
	}
	for _, fi := range mod.Functions {
		fi.Node.IterateSubtree(emitNode)
	}
	for _, ci := range mod.Classes {
		ci.Node.IterateSubtree(emitNode)
	}
	b.WriteString("}\n")

	fields := strings.Fields(cmdLine)
	if len(fields) == 0 {
		return
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(b.String())
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	_ = cmd.Run()
}
