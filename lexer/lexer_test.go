package lexer

import (
	"testing"

	"github.com/dr8co/pythonc/token"
)

// TestNextTokenSimple walks a short assignment + call program and checks
// that indentation is NOT introduced for a single flat block.
func TestNextTokenSimple(t *testing.T) {
	input := "x = 5\nprint(x + 1)\n"

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tt.expectedType != token.EOF && tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestNextTokenIndentation checks that a nested block produces matching
// Indent/Dedent tokens around its body.
func TestNextTokenIndentation(t *testing.T) {
	input := "if x:\n    y = 1\n    z = 2\nw = 3\n"

	expected := []token.Type{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("test[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

// TestNextTokenStringsAndOperators exercises string/bytes literals and the
// augmented-assignment / comparison operator set.
func TestNextTokenStringsAndOperators(t *testing.T) {
	input := `s = "a\nb"
t = b'raw'
x += 1
y //= 2
z == w != 1 <= 2 >= 3
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENT, "s"},
		{token.ASSIGN, "="},
		{token.STRING, "a\nb"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "t"},
		{token.ASSIGN, "="},
		{token.BYTES, "raw"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "x"},
		{token.PLUS_EQ, "+="},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "y"},
		{token.DSLASH_EQ, "//="},
		{token.INT, "2"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "z"},
		{token.EQ, "=="},
		{token.IDENT, "w"},
		{token.NOT_EQ, "!="},
		{token.INT, "1"},
		{token.LTE, "<="},
		{token.INT, "2"},
		{token.GTE, ">="},
		{token.INT, "3"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tt.expectedType != token.EOF && tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestNextTokenComments checks comment-only and blank lines don't disturb
// indentation tracking.
func TestNextTokenComments(t *testing.T) {
	input := "x = 1  # trailing\n# full line\n\ny = 2\n"
	expected := []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("test[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}
