// Package imports implements module search and the process-wide import
// dedup set described by the import-resolution contract: `import X`
// either resolves to a built-in module singleton or is looked up as
// X.py on a small search path; repeated imports of the same absolute
// path are deduplicated so a module's top-level statements run once.
//
// Recursive translation of a resolved file back into a syntax graph is
// left to package translate, which already owns the AST-walking
// machinery needed to produce one — this package only answers "where is
// X, and have we already processed it".
package imports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dr8co/pythonc/builtin"
)

// Resolution describes the outcome of resolving one `import X`.
type Resolution struct {
	// Builtin is true when X names a built-in module; no file is read.
	Builtin bool
	// AbsPath is the resolved absolute path for a file-backed import.
	AbsPath string
	// Source is the file's contents, read once per absolute path.
	Source string
	// AlreadyImported is true when AbsPath was resolved by an earlier
	// call; the caller should skip re-running the module's statements
	// but may still need the handle for `from X import ...`.
	AlreadyImported bool
}

// Resolver searches a fixed module path for `<name>.py`, in order, and
// tracks which absolute paths have already been imported.
type Resolver struct {
	SearchPath []string
	seen       map[string]bool
}

// New creates a Resolver searching dir (typically the directory holding
// the entry-point script) followed by the current directory, matching
// sys.path[0] and "." from the import-resolution contract.
func New(entryDir string) *Resolver {
	return &Resolver{
		SearchPath: []string{entryDir, "."},
		seen:       map[string]bool{},
	}
}

// Resolve resolves a single `import name`.
func (r *Resolver) Resolve(name string) (Resolution, error) {
	if builtin.IsBuiltinModule(name) {
		return Resolution{Builtin: true}, nil
	}

	for _, dir := range r.SearchPath {
		candidate := filepath.Join(dir, name+".py")
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return Resolution{}, err
		}
		already := r.seen[abs]
		r.seen[abs] = true
		if already {
			return Resolution{AbsPath: abs, AlreadyImported: true}, nil
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{AbsPath: abs, Source: string(data)}, nil
	}
	return Resolution{}, fmt.Errorf("imports: module %q not found on search path %v", name, r.SearchPath)
}
