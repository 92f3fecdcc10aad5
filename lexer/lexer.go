// Package lexer implements the lexical analyzer for the pythonc front end.
//
// The lexer reads Python source byte by byte and produces a stream of
// tokens for the parser. Python's grammar is indentation-sensitive, so
// besides the usual keyword/operator/literal tokenization this lexer
// tracks a stack of indentation widths and synthesizes Indent, Dedent and
// Newline tokens around each logical line, the way CPython's own
// tokenizer does. Line joining inside parentheses/brackets/braces and
// trailing-backslash continuation are both handled by suppressing Newline
// while a bracket nesting counter is non-zero.
package lexer

import (
	"strings"

	"github.com/dr8co/pythonc/token"
)

// Lexer tokenizes pythonc's supported source subset.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int

	// parenDepth counts open ( [ { not yet closed; while positive, newlines
	// are treated as whitespace (implicit line joining).
	parenDepth int

	// indents is the stack of indentation widths seen so far; it always
	// starts at [0].
	indents []int

	// atLineStart is true when the next token should be preceded by
	// indentation measurement.
	atLineStart bool

	// pending holds Dedent/Newline tokens queued up during indentation
	// processing, returned one at a time by NextToken.
	pending []token.Token

	// emittedFinalNewline guards against emitting more than one synthetic
	// trailing Newline at EOF.
	emittedFinalNewline bool
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		indents:     []int{0},
		atLineStart: true,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.atLineStart && l.parenDepth == 0 {
		if tok, emitted := l.consumeIndentation(); emitted {
			return tok
		}
	}

	l.skipBlankAndComment()

	line := l.line
	switch l.ch {
	case '\n':
		l.readChar()
		l.atLineStart = true
		return token.Token{Type: token.NEWLINE, Literal: "\\n", Line: line}
	case '\\':
		if l.peekChar() == '\n' {
			l.readChar()
			l.readChar()
			return l.NextToken()
		}
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: "\\", Line: line}
	case 0:
		return l.atEOF()
	}

	return l.scanToken(line)
}

// atEOF flushes any remaining Dedents (and a final Newline, if the source
// did not end with one) once the input is exhausted.
func (l *Lexer) atEOF() token.Token {
	if l.emittedFinalNewline {
		return token.Token{Type: token.EOF, Line: l.line}
	}
	l.emittedFinalNewline = true

	for i := len(l.indents) - 1; i > 0; i-- {
		l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: l.line})
	}
	l.indents = l.indents[:1]

	if l.atLineStart {
		// The last real token already terminated a logical line (or the
		// source was empty); no synthetic Newline is needed.
		return l.NextToken()
	}
	return token.Token{Type: token.NEWLINE, Literal: "\\n", Line: l.line}
}

// consumeIndentation measures the indentation of a new logical line,
// skipping blank and comment-only lines, and returns an Indent or Dedent
// token when the level changes. ok is false when no structural token was
// produced (matched the current level) and normal tokenization should
// proceed.
func (l *Lexer) consumeIndentation() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += 8 - (width % 8)
			} else {
				width++
			}
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == 0 {
			return token.Token{}, false
		}

		l.atLineStart = false
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			return token.Token{Type: token.INDENT, Line: l.line}, true
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: l.line})
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		default:
			return token.Token{}, false
		}
	}
}

// skipBlankAndComment skips spaces/tabs and a trailing comment on the
// current line, without crossing a newline (that is consumeIndentation's
// job when parenDepth == 0, and plain whitespace-skipping otherwise).
func (l *Lexer) skipBlankAndComment() {
	for {
		if l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
			continue
		}
		if l.parenDepth > 0 && l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func (l *Lexer) scanToken(line int) token.Token {
	mk := func(t token.Type, lit string) token.Token { return token.Token{Type: t, Literal: lit, Line: line} }

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.EQ, "==")
		}
		l.readChar()
		return mk(token.ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.NOT_EQ, "!=")
		}
		l.readChar()
		return mk(token.BANG, "!")
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.PLUS_EQ, "+=")
		}
		l.readChar()
		return mk(token.PLUS, "+")
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.MINUS_EQ, "-=")
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return mk(token.ARROW, "->")
		}
		l.readChar()
		return mk(token.MINUS, "-")
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			return mk(token.DSTAR, "**")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.STAR_EQ, "*=")
		}
		l.readChar()
		return mk(token.STAR, "*")
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return mk(token.DSLASH_EQ, "//=")
			}
			return mk(token.DSLASH, "//")
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.SLASH_EQ, "/=")
		}
		l.readChar()
		return mk(token.SLASH, "/")
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.PCT_EQ, "%=")
		}
		l.readChar()
		return mk(token.PERCENT, "%")
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.LTE, "<=")
		}
		l.readChar()
		return mk(token.LT, "<")
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(token.GTE, ">=")
		}
		l.readChar()
		return mk(token.GT, ">")
	case ',':
		l.readChar()
		return mk(token.COMMA, ",")
	case ':':
		l.readChar()
		return mk(token.COLON, ":")
	case ';':
		l.readChar()
		return mk(token.SEMICOLON, ";")
	case '.':
		l.readChar()
		return mk(token.DOT, ".")
	case '@':
		l.readChar()
		return mk(token.AT, "@")
	case '(':
		l.parenDepth++
		l.readChar()
		return mk(token.LPAREN, "(")
	case ')':
		l.parenDepth--
		l.readChar()
		return mk(token.RPAREN, ")")
	case '[':
		l.parenDepth++
		l.readChar()
		return mk(token.LBRACKET, "[")
	case ']':
		l.parenDepth--
		l.readChar()
		return mk(token.RBRACKET, "]")
	case '{':
		l.parenDepth++
		l.readChar()
		return mk(token.LBRACE, "{")
	case '}':
		l.parenDepth--
		l.readChar()
		return mk(token.RBRACE, "}")
	case '"', '\'':
		return l.readStringOrBytes(line, false)
	}

	if l.ch == 'b' && (l.peekChar() == '"' || l.peekChar() == '\'') {
		l.readChar()
		return l.readStringOrBytes(line, true)
	}
	if isLetter(l.ch) {
		lit := l.readIdentifier()
		return mk(token.LookupIdent(lit), lit)
	}
	if isDigit(l.ch) {
		lit, isFloat := l.readNumber()
		if isFloat {
			return mk(token.FLOAT, lit)
		}
		return mk(token.INT, lit)
	}

	lit := string(l.ch)
	l.readChar()
	return mk(token.ILLEGAL, lit)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads a decimal integer or float literal, reporting whether a
// '.' was present (floats are rejected later, at translate time).
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readStringOrBytes reads a (possibly triple-quoted) string or bytes
// literal starting at the current quote character.
func (l *Lexer) readStringOrBytes(line int, isBytes bool) token.Token {
	quote := l.ch
	triple := l.peekAhead(1) == quote && l.peekAhead(2) == quote
	width := 1
	if triple {
		width = 3
	}
	for i := 0; i < width; i++ {
		l.readChar()
	}

	var b strings.Builder
	for {
		if l.ch == 0 {
			var typ token.Type = token.STRING
			if isBytes {
				typ = token.BYTES
			}
			return token.Token{Type: typ, Literal: b.String(), Line: line}
		}
		if l.ch == quote {
			if !triple {
				l.readChar()
				break
			}
			if l.peekAhead(1) == quote && l.peekAhead(2) == quote {
				l.readChar()
				l.readChar()
				l.readChar()
				break
			}
			b.WriteByte(l.ch)
			l.readChar()
			continue
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}
		b.WriteByte(l.ch)
		l.readChar()
	}

	var typ token.Type = token.STRING
	if isBytes {
		typ = token.BYTES
	}
	return token.Token{Type: typ, Literal: b.String(), Line: line}
}

// peekAhead returns the byte n positions ahead of the current character
// (n=0 is the current character's successor already held in l.ch's slot).
func (l *Lexer) peekAhead(n int) byte {
	idx := l.position + n
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}
