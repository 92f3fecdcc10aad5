package driver

import "testing"

func TestModuleNameForStripsExtension(t *testing.T) {
	got := moduleNameFor("/tmp/scripts/hello.py")
	if got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestModuleNameForNoExtension(t *testing.T) {
	got := moduleNameFor("script")
	if got != "script" {
		t.Fatalf("expected script, got %q", got)
	}
}

func TestTranslateErrorFormatsWithLine(t *testing.T) {
	err := &TranslateError{Line: 12, Msg: "bad thing"}
	if got, want := err.Error(), "12: bad thing"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTranslateErrorFormatsWithoutLine(t *testing.T) {
	err := &TranslateError{Msg: "bad thing"}
	if got, want := err.Error(), "bad thing"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
