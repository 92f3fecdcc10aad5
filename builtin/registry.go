// Package builtin holds the static, hand-maintained description of every
// name the runtime exposes without an import: free functions, per-class
// methods, constructible classes, classes `type(x)` can report but that
// can't be constructed directly, and built-in modules.
//
// It plays the role the teacher's object.Builtins slice played (a static
// table plus a GetBuiltinByName lookup), generalized from a flat function
// list into the five-way table the emitter needs to generate
// wrapped_builtin_<name> wrappers, per-class __call__ dispatch, and
// built-in module classes.
package builtin

import "fmt"

// Arity describes how many positional arguments a callable accepts.
// Min == Max is a fixed arity; Max < 0 marks a variadic callable (no
// upper bound beyond Min).
type Arity struct {
	Min int
	Max int // -1 means unbounded
}

// Fixed returns an Arity requiring exactly n arguments.
func Fixed(n int) Arity { return Arity{Min: n, Max: n} }

// Variadic returns an Arity requiring at least min arguments with no
// upper bound.
func Variadic(min int) Arity { return Arity{Min: min, Max: -1} }

// Range returns an Arity accepting between min and max arguments.
func Range(min, max int) Arity { return Arity{Min: min, Max: max} }

// Accepts reports whether n positional arguments satisfy a.
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max < 0 || n <= a.Max
}

// Functions maps every free built-in function name to its arity.
var Functions = map[string]Arity{
	"len":      Fixed(1),
	"print":    Variadic(0),
	"range":    Range(1, 3),
	"iter":     Fixed(1),
	"next":     Range(1, 2),
	"abs":      Fixed(1),
	"min":      Variadic(1),
	"max":      Variadic(1),
	"sum":      Range(1, 2),
	"sorted":   Range(1, 1),
	"list":     Range(0, 1),
	"tuple":    Range(0, 1),
	"set":      Range(0, 1),
	"dict":     Range(0, 1),
	"str":      Range(0, 1),
	"int":      Range(0, 2),
	"bool":     Range(0, 1),
	"bytes":    Range(0, 1),
	"repr":     Fixed(1),
	"id":       Fixed(1),
	"type":     Fixed(1),
	"isinstance": Fixed(2),
	"hasattr":  Fixed(2),
	"getattr":  Range(2, 3),
	"setattr":  Fixed(3),
	"enumerate": Range(1, 2),
	"zip":      Variadic(0),
	"map":      Variadic(2),
	"filter":   Fixed(2),
	"input":    Range(0, 1),
	"ord":      Fixed(1),
	"chr":      Fixed(1),
}

// Methods maps a built-in class name to its method table (method name ->
// arity, counting the receiver implicitly — arity here is the argument
// count after `self`).
var Methods = map[string]map[string]Arity{
	"list": {
		"append": Fixed(1),
		"extend": Fixed(1),
		"pop":    Range(0, 1),
		"index":  Fixed(1),
		"count":  Fixed(1),
		"sort":   Fixed(0),
		"reverse": Fixed(0),
		"insert": Fixed(2),
		"remove": Fixed(1),
	},
	"dict": {
		"get":    Range(1, 2),
		"keys":   Fixed(0),
		"values": Fixed(0),
		"items":  Fixed(0),
		"pop":    Range(1, 2),
		"update": Fixed(1),
		"setdefault": Range(1, 2),
	},
	"set": {
		"add":    Fixed(1),
		"remove": Fixed(1),
		"discard": Fixed(1),
		"union":  Variadic(1),
		"intersection": Variadic(1),
	},
	"str": {
		"join":       Fixed(1),
		"split":      Range(0, 1),
		"strip":      Range(0, 1),
		"upper":      Fixed(0),
		"lower":      Fixed(0),
		"startswith": Fixed(1),
		"endswith":   Fixed(1),
		"replace":    Fixed(2),
		"format":     Variadic(0),
		"encode":     Range(0, 1),
	},
	"tuple": {
		"index": Fixed(1),
		"count": Fixed(1),
	},
	"file": {
		"read":     Range(0, 1),
		"readline": Fixed(0),
		"readlines": Fixed(0),
		"write":    Fixed(1),
		"close":    Fixed(0),
	},
}

// Classes maps a directly constructible built-in class name to its
// constructor arity.
var Classes = map[string]Arity{
	"list":  Range(0, 1),
	"tuple": Range(0, 1),
	"dict":  Range(0, 1),
	"set":   Range(0, 1),
	"str":   Range(0, 1),
	"int":   Range(0, 2),
	"bool":  Range(0, 1),
	"bytes": Range(0, 1),
	"file":  Range(1, 2),
	"object": Fixed(0),
}

// HiddenClasses lists class names `type(x)` can report that aren't
// directly constructible from Python source.
var HiddenClasses = []string{
	"function", "module", "NoneType", "iterator", "range_iterator", "method",
}

// ModuleAttr is one attribute a built-in module exposes, given as the
// runtime C++ expression that initializes it.
type ModuleAttr struct {
	Name string
	Init string
}

// Modules maps a built-in module name to its attribute table. sys is the
// only built-in module, exposing argv, stdin, stdout, and stderr.
var Modules = map[string][]ModuleAttr{
	"sys": {
		{Name: "argv", Init: "make_argv_list(argc, argv)"},
		{Name: "stdin", Init: "make_file_object(stdin, \"r\")"},
		{Name: "stdout", Init: "make_file_object(stdout, \"w\")"},
		{Name: "stderr", Init: "make_file_object(stderr, \"w\")"},
	},
}

// IsBuiltinModule reports whether name names a built-in module.
func IsBuiltinModule(name string) bool {
	_, ok := Modules[name]
	return ok
}

// WrapperName returns the C++ identifier the emitter writes for the
// validating wrapper around a built-in function.
func WrapperName(name string) string {
	return fmt.Sprintf("wrapped_builtin_%s", name)
}

// LookupFunction returns the arity of a built-in free function.
func LookupFunction(name string) (Arity, bool) {
	a, ok := Functions[name]
	return a, ok
}

// LookupMethod returns the arity of className.methodName, if the method
// exists on a built-in class.
func LookupMethod(className, methodName string) (Arity, bool) {
	methods, ok := Methods[className]
	if !ok {
		return Arity{}, false
	}
	a, ok := methods[methodName]
	return a, ok
}
