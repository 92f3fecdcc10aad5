package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveBuiltinModule(t *testing.T) {
	r := New(t.TempDir())
	res, err := r.Resolve("sys")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Builtin {
		t.Fatalf("expected sys to resolve as a built-in module")
	}
}

func TestResolveFileModuleDedups(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "helper.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r := New(dir)

	first, err := r.Resolve("helper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AlreadyImported || first.Source == "" {
		t.Fatalf("expected first resolution to read source, got %#v", first)
	}

	second, err := r.Resolve("helper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.AlreadyImported {
		t.Fatalf("expected second resolution of the same module to be marked already imported")
	}
}

func TestResolveMissingModule(t *testing.T) {
	r := New(t.TempDir())
	if _, err := r.Resolve("does_not_exist"); err == nil {
		t.Fatalf("expected an error resolving a missing module")
	}
}
