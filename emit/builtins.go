package emit

import (
	"fmt"
	"strings"

	"github.com/dr8co/pythonc/builtin"
	"github.com/dr8co/pythonc/intern"
)

// writeBuiltinWrappers emits one wrapped_builtin_<name> per builtin.Functions
// entry: an arity check against the call site's argument count, followed by
// a call into the hand-written call_builtin dispatcher. This is the same
// validate-then-dispatch split the teacher's vm used between an opcode's
// fixed operand width and its OpXxx handler — arity lives in data
// (builtin.Arity), dispatch logic lives in runtime/backend.cpp.
func writeBuiltinWrappers(b *strings.Builder) {
	for _, name := range intern.SortedKeys(builtin.Functions) {
		a := builtin.Functions[name]
		fmt.Fprintf(b, "static node* %s(std::vector<node*> args) {\n", builtin.WrapperName(name))
		writeArityCheck(b, name, a)
		fmt.Fprintf(b, "    return call_builtin(%s, args);\n", cstr(name))
		b.WriteString("}\n\n")
	}
}

func writeArityCheck(b *strings.Builder, name string, a builtin.Arity) {
	if a.Max < 0 {
		fmt.Fprintf(b, "    if (args.size() < %d) error(\"%s() takes at least %d arguments\");\n", a.Min, name, a.Min)
		return
	}
	if a.Min == a.Max {
		fmt.Fprintf(b, "    if (args.size() != %d) error(\"%s() takes exactly %d arguments\");\n", a.Min, name, a.Min)
		return
	}
	fmt.Fprintf(b, "    if (args.size() < %d || args.size() > %d) error(\"%s() takes between %d and %d arguments\");\n",
		a.Min, a.Max, name, a.Min, a.Max)
}

// writeBuiltinModules emits an init_module_<name> function per
// builtin.Modules entry, building the module_data exports map from each
// attribute's literal C++ initializer expression, plus the module_singleton
// global SingletonRef resolves to.
func writeBuiltinModules(b *strings.Builder) {
	for _, name := range intern.SortedKeys(builtin.Modules) {
		attrs := builtin.Modules[name]
		sanitized := sanitizeIdent(name)
		fmt.Fprintf(b, "static node* module_singleton_%s;\n", sanitized)
		fmt.Fprintf(b, "static void init_module_%s(int argc, char** argv) {\n", sanitized)
		fmt.Fprintf(b, "    auto* exports = new std::map<std::string, node*>();\n")
		for _, attr := range attrs {
			fmt.Fprintf(b, "    (*exports)[%s] = %s;\n", cstr(attr.Name), attr.Init)
		}
		fmt.Fprintf(b, "    module_singleton_%s = make_module(%s, nullptr, exports);\n", sanitized, cstr(name))
		b.WriteString("}\n\n")
	}
}
