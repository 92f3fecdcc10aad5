// Package parser implements the front end's syntactic analyzer.
//
// The parser takes the token stream produced by package lexer and builds
// the host AST defined in package ast. It is a recursive-descent parser
// for the statement grammar (Python's indentation-delimited blocks map
// directly onto the synthetic Indent/Dedent/Newline tokens the lexer
// emits) with a precedence-climbing expression parser for the supported
// operator subset: boolean chains, chained comparisons, the four
// arithmetic levels, unary +/-/not, `**`, and the call/subscript/
// attribute trailers.
//
// The main entry point is [New], followed by [Parser.ParseModule]. Check
// [Parser.Errors] afterward for any recovered syntax errors.
package parser

import (
	"fmt"
	"strconv"

	"github.com/dr8co/pythonc/ast"
	"github.com/dr8co/pythonc/lexer"
	"github.com/dr8co/pythonc/token"
)

// Precedence levels for the arithmetic/power/trailer portion of
// expression parsing. Boolean chains and comparisons are handled by
// dedicated recursive-descent levels above this table, mirroring
// Python's own grammar stratification.
const (
	_ int = iota
	Lowest
	Sum     // + -
	Product // * / // %
	Unary   // unary - +
	Power   // ** (right-associative)
	Trailer // call() , subscript[] , .attr
)

var precedences = map[token.Type]int{
	token.PLUS:     Sum,
	token.MINUS:    Sum,
	token.STAR:     Product,
	token.SLASH:    Product,
	token.DSLASH:   Product,
	token.PERCENT:  Product,
	token.DSTAR:    Power,
	token.LPAREN:   Trailer,
	token.LBRACKET: Trailer,
	token.DOT:      Trailer,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser holds the state for a single parse of one source file.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	currentToken token.Token
	peekToken    token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BYTES, p.parseBytesLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.NONE, p.parseNoneLiteral)
	p.registerPrefix(token.MINUS, p.parseUnaryExpression)
	p.registerPrefix(token.PLUS, p.parseUnaryExpression)
	p.registerPrefix(token.LPAREN, p.parseParenOrTuple)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseSetOrDictLiteral)
	p.registerPrefix(token.STAR, p.parseStarred)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	p.registerInfix(token.PLUS, p.parseBinaryExpression)
	p.registerInfix(token.MINUS, p.parseBinaryExpression)
	p.registerInfix(token.STAR, p.parseBinaryExpression)
	p.registerInfix(token.SLASH, p.parseBinaryExpression)
	p.registerInfix(token.DSLASH, p.parseBinaryExpression)
	p.registerInfix(token.PERCENT, p.parseBinaryExpression)
	p.registerInfix(token.DSTAR, p.parsePowerExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseSubscriptExpression)
	p.registerInfix(token.DOT, p.parseAttributeExpression)

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the syntax errors recovered while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) currentTokenIs(t token.Type) bool { return p.currentToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool    { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: expected next token to be %s, got %s (%q) instead",
		p.peekToken.Line, t, p.peekToken.Type, p.peekToken.Literal))
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: ", p.currentToken.Line)+fmt.Sprintf(format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.currentToken.Type]; ok {
		return pr
	}
	return Lowest
}

// ParseModule parses an entire source file into a *ast.Module. Check
// Errors() afterward to see whether the result is usable.
func (p *Parser) ParseModule() *ast.Module {
	mod := &ast.Module{}
	for !p.currentTokenIs(token.EOF) {
		if p.currentTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Body = append(mod.Body, stmt)
		}
	}
	return mod
}

// ---- statements ----

func (p *Parser) parseBlock() []ast.Statement {
	if !p.expectPeek(token.COLON) {
		return nil
	}
	// Two forms: `COLON NEWLINE INDENT stmt+ DEDENT` or a single simple
	// statement on the same line (`if x: return 1`).
	if p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
		if !p.expectPeek(token.INDENT) {
			return nil
		}
		p.nextToken()
		var body []ast.Statement
		for !p.currentTokenIs(token.DEDENT) && !p.currentTokenIs(token.EOF) {
			if p.currentTokenIs(token.NEWLINE) {
				p.nextToken()
				continue
			}
			stmt := p.parseStatement()
			if stmt != nil {
				body = append(body, stmt)
			}
		}
		return body
	}
	p.nextToken()
	stmt := p.parseSimpleStatement()
	p.expectStatementEnd()
	if stmt == nil {
		return nil
	}
	return []ast.Statement{stmt}
}

func (p *Parser) expectStatementEnd() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	// A compound statement's block ends on the DEDENT that closes it; step
	// past it so the enclosing loop resumes at the next statement.
	defer func() {
		if p.currentTokenIs(token.DEDENT) {
			p.nextToken()
		}
	}()
	switch p.currentToken.Type {
	case token.DEF:
		return p.parseFunctionDef(nil)
	case token.CLASS:
		return p.parseClassDef()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.WITH:
		return p.parseWith()
	case token.AT:
		return p.parseDecorated()
	case token.TRY:
		p.errorf("try/except is not supported")
		p.skipLine()
		return nil
	default:
		stmt := p.parseSimpleStatement()
		p.expectStatementEnd()
		return stmt
	}
}

func (p *Parser) skipLine() {
	for !p.currentTokenIs(token.NEWLINE) && !p.currentTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.currentTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) parseDecorated() ast.Statement {
	var names []string
	for p.currentTokenIs(token.AT) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		names = append(names, p.currentToken.Literal)
		if !p.expectPeek(token.NEWLINE) {
			return nil
		}
		p.nextToken()
	}
	if !p.currentTokenIs(token.DEF) {
		p.errorf("expected def after decorator")
		return nil
	}
	return p.parseFunctionDef(names)
}

func (p *Parser) parseFunctionDef(decorators []string) ast.Statement {
	fn := &ast.FunctionDef{Base: ast.Base{Line: p.currentToken.Line}, Decorators: decorators}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = p.currentToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Args = p.parseArguments()
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseArguments() *ast.Arguments {
	args := &ast.Arguments{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	seenKwOnly := false
	for {
		p.nextToken()
		switch {
		case p.currentTokenIs(token.STAR):
			p.nextToken()
			args.Vararg = p.currentToken.Literal
			seenKwOnly = true
		case p.currentTokenIs(token.DSTAR):
			p.nextToken()
			args.Kwarg = p.currentToken.Literal
		default:
			name := p.currentToken.Literal
			var def ast.Expression
			if p.peekTokenIs(token.ASSIGN) {
				p.nextToken()
				p.nextToken()
				def = p.parseExpression(Lowest)
			}
			if seenKwOnly {
				args.KwOnly = append(args.KwOnly, name)
				args.KwOnlyDefaults = append(args.KwOnlyDefaults, def)
			} else {
				args.Params = append(args.Params, name)
				if def != nil {
					args.Defaults = append(args.Defaults, def)
				}
			}
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseClassDef() ast.Statement {
	cls := &ast.ClassDef{Base: ast.Base{Line: p.currentToken.Line}}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	cls.Name = p.currentToken.Literal
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		if !p.peekTokenIs(token.RPAREN) {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			cls.BaseClass = p.currentToken.Literal
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	cls.Body = p.parseBlock()
	return cls
}

func (p *Parser) parseIf() ast.Statement {
	stmt := &ast.If{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	stmt.Cond = p.parseExpression(Lowest)
	stmt.Body = p.parseBlock()
	if p.peekTokenIs(token.ELIF) {
		p.nextToken()
		stmt.Orelse = []ast.Statement{p.parseIf()}
	} else if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		stmt.Orelse = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	stmt := &ast.While{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	stmt.Cond = p.parseExpression(Lowest)
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseFor() ast.Statement {
	stmt := &ast.For{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	stmt.Target = p.parseTargetList(Power)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iter = p.parseExpression(Lowest)
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseWith() ast.Statement {
	stmt := &ast.With{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	stmt.Context = p.parseExpression(Lowest)
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		p.nextToken()
		stmt.As = p.parseExpression(Trailer)
	}
	stmt.Body = p.parseBlock()
	return stmt
}

// parseTargetList parses one expression at the given precedence, or a bare
// comma-separated tuple of them written without parens (`a, b = ...`).
func (p *Parser) parseTargetList(precedence int) ast.Expression {
	first := p.parseExpression(precedence)
	if !p.peekTokenIs(token.COMMA) {
		return first
	}
	elts := []ast.Expression{first}
	line := p.currentToken.Line
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.IN) || p.peekTokenIs(token.ASSIGN) {
			break
		}
		p.nextToken()
		elts = append(elts, p.parseExpression(precedence))
	}
	return &ast.TupleLit{Base: ast.Base{Line: line}, Elts: elts}
}

func (p *Parser) parseSimpleStatement() ast.Statement {
	switch p.currentToken.Type {
	case token.RETURN:
		return p.parseReturn()
	case token.PASS:
		return &ast.Pass{Base: ast.Base{Line: p.currentToken.Line}}
	case token.BREAK:
		return &ast.Break{Base: ast.Base{Line: p.currentToken.Line}}
	case token.CONTINUE:
		return &ast.Continue{Base: ast.Base{Line: p.currentToken.Line}}
	case token.DEL:
		return p.parseDelete()
	case token.GLOBAL:
		return p.parseGlobal()
	case token.ASSERT:
		return p.parseAssert()
	case token.RAISE:
		return p.parseRaise()
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseImportFrom()
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) parseReturn() ast.Statement {
	stmt := &ast.Return{Base: ast.Base{Line: p.currentToken.Line}}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(Lowest)
	return stmt
}

func (p *Parser) parseDelete() ast.Statement {
	stmt := &ast.Delete{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	target := p.parseExpression(Lowest)
	if _, ok := target.(*ast.Subscript); !ok {
		p.errorf("del is only supported on subscript targets")
	}
	stmt.Target = target
	return stmt
}

func (p *Parser) parseGlobal() ast.Statement {
	stmt := &ast.Global{Base: ast.Base{Line: p.currentToken.Line}}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Names = append(stmt.Names, p.currentToken.Literal)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Names = append(stmt.Names, p.currentToken.Literal)
	}
	return stmt
}

func (p *Parser) parseAssert() ast.Statement {
	stmt := &ast.Assert{Base: ast.Base{Line: p.currentToken.Line}}
	p.nextToken()
	stmt.Test = p.parseExpression(Lowest)
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Msg = p.parseExpression(Lowest)
	}
	return stmt
}

func (p *Parser) parseRaise() ast.Statement {
	stmt := &ast.Raise{Base: ast.Base{Line: p.currentToken.Line}}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		p.errorf("bare raise is not supported")
		return stmt
	}
	p.nextToken()
	stmt.Exc = p.parseExpression(Lowest)
	return stmt
}

func (p *Parser) parseImport() ast.Statement {
	stmt := &ast.Import{Base: ast.Base{Line: p.currentToken.Line}}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		alias := ast.Alias{Name: p.currentToken.Literal}
		if p.peekTokenIs(token.AS) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			alias.AsName = p.currentToken.Literal
		}
		stmt.Names = append(stmt.Names, alias)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseImportFrom() ast.Statement {
	stmt := &ast.ImportFrom{Base: ast.Base{Line: p.currentToken.Line}}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Module = p.currentToken.Literal
	if !p.expectPeek(token.IMPORT) {
		return nil
	}
	if p.peekTokenIs(token.STAR) {
		p.nextToken()
		stmt.Star = true
		return stmt
	}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		alias := ast.Alias{Name: p.currentToken.Literal}
		if p.peekTokenIs(token.AS) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			alias.AsName = p.currentToken.Literal
		}
		stmt.Names = append(stmt.Names, alias)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return stmt
}

// parseExprOrAssign handles plain expression statements, single and
// chained assignment, tuple-target assignment, and augmented assignment.
func (p *Parser) parseExprOrAssign() ast.Statement {
	line := p.currentToken.Line
	first := p.parseTargetList(Lowest)

	if op, ok := augOp(p.peekToken.Type); ok {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(Lowest)
		return &ast.AugAssign{Base: ast.Base{Line: line}, Target: first, Op: op, Value: value}
	}

	if !p.peekTokenIs(token.ASSIGN) {
		return &ast.ExprStmt{Base: ast.Base{Line: line}, Value: first}
	}

	targets := []ast.Expression{first}
	for p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		next := p.parseTargetList(Lowest)
		targets = append(targets, next)
	}
	value := targets[len(targets)-1]
	targets = targets[:len(targets)-1]
	return &ast.Assign{Base: ast.Base{Line: line}, Targets: targets, Value: value}
}

func augOp(t token.Type) (string, bool) {
	switch t {
	case token.PLUS_EQ:
		return "+", true
	case token.MINUS_EQ:
		return "-", true
	case token.STAR_EQ:
		return "*", true
	case token.SLASH_EQ:
		return "/", true
	case token.DSLASH_EQ:
		return "//", true
	case token.PCT_EQ:
		return "%", true
	default:
		return "", false
	}
}

// ---- expressions ----

// parseExpression implements `test`: an or_test, optionally wrapped in an
// IfExp, threaded through precedence-climbing for everything below the
// `or`/`and`/`not`/comparison levels.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	if precedence <= Lowest {
		return p.parseTest()
	}
	return p.parseBinary(precedence)
}

func (p *Parser) parseTest() ast.Expression {
	line := p.currentToken.Line
	body := p.parseOr()
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		p.nextToken()
		test := p.parseOr()
		if !p.expectPeek(token.ELSE) {
			return body
		}
		p.nextToken()
		orelse := p.parseTest()
		return &ast.IfExp{Base: ast.Base{Line: line}, Test: test, Body: body, Orelse: orelse}
	}
	return body
}

func (p *Parser) parseOr() ast.Expression {
	line := p.currentToken.Line
	left := p.parseAnd()
	if !p.peekTokenIs(token.OR) {
		return left
	}
	values := []ast.Expression{left}
	for p.peekTokenIs(token.OR) {
		p.nextToken()
		p.nextToken()
		values = append(values, p.parseAnd())
	}
	return &ast.BoolOp{Base: ast.Base{Line: line}, Op: "or", Values: values}
}

func (p *Parser) parseAnd() ast.Expression {
	line := p.currentToken.Line
	left := p.parseNot()
	if !p.peekTokenIs(token.AND) {
		return left
	}
	values := []ast.Expression{left}
	for p.peekTokenIs(token.AND) {
		p.nextToken()
		p.nextToken()
		values = append(values, p.parseNot())
	}
	return &ast.BoolOp{Base: ast.Base{Line: line}, Op: "and", Values: values}
}

func (p *Parser) parseNot() ast.Expression {
	if p.currentTokenIs(token.NOT) {
		line := p.currentToken.Line
		p.nextToken()
		return &ast.UnaryOp{Base: ast.Base{Line: line}, Op: "not", Operand: p.parseNot()}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expression {
	line := p.currentToken.Line
	left := p.parseBinary(Lowest)
	var ops []string
	var comparators []ast.Expression
	for {
		op, ok := p.consumeCompareOp()
		if !ok {
			break
		}
		p.nextToken()
		comparators = append(comparators, p.parseBinary(Lowest))
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return left
	}
	return &ast.Compare{Base: ast.Base{Line: line}, Left: left, Ops: ops, Comparators: comparators}
}

// consumeCompareOp recognizes a comparison operator at the peek position,
// including the two-word form `is not` (`not in` is not recognized), and
// advances past it, leaving currentToken on its last word; the caller
// advances to the comparator before parsing it.
func (p *Parser) consumeCompareOp() (string, bool) {
	switch p.peekToken.Type {
	case token.LT:
		p.nextToken()
		return "<", true
	case token.GT:
		p.nextToken()
		return ">", true
	case token.LTE:
		p.nextToken()
		return "<=", true
	case token.GTE:
		p.nextToken()
		return ">=", true
	case token.EQ:
		p.nextToken()
		return "==", true
	case token.NOT_EQ:
		p.nextToken()
		return "!=", true
	case token.IN:
		p.nextToken()
		return "in", true
	case token.IS:
		p.nextToken()
		if p.peekTokenIs(token.NOT) {
			p.nextToken()
			return "is not", true
		}
		return "is", true
	default:
		return "", false
	}
}

func (p *Parser) parseBinary(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.currentToken.Type]
	if prefix == nil {
		p.errorf("no prefix parse function for %s (%q)", p.currentToken.Type, p.currentToken.Literal)
		return nil
	}
	left := prefix()
	for !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Name{Base: ast.Base{Line: p.currentToken.Line}, Value: p.currentToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, err := strconv.ParseInt(p.currentToken.Literal, 0, 64)
	if err != nil {
		p.errorf("could not parse %q as an integer literal", p.currentToken.Literal)
		return nil
	}
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstInt, IntVal: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	p.errorf("float literals are not supported")
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstInt}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstStr, StrVal: p.currentToken.Literal}
}

func (p *Parser) parseBytesLiteral() ast.Expression {
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstBytes, BytesVal: []byte(p.currentToken.Literal)}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstBool, BoolVal: p.currentTokenIs(token.TRUE)}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	return &ast.Constant{Base: ast.Base{Line: p.currentToken.Line}, Kind: ast.ConstNone}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	op := p.currentToken.Literal
	line := p.currentToken.Line
	p.nextToken()
	operand := p.parseBinary(Unary)
	return &ast.UnaryOp{Base: ast.Base{Line: line}, Op: op, Operand: operand}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	op := p.currentToken.Literal
	line := p.currentToken.Line
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseBinary(precedence)
	return &ast.BinOp{Base: ast.Base{Line: line}, Left: left, Op: op, Right: right}
}

// parsePowerExpression handles `**`, which is right-associative in
// Python: `2 ** 3 ** 2 == 2 ** (3 ** 2)`.
func (p *Parser) parsePowerExpression(left ast.Expression) ast.Expression {
	line := p.currentToken.Line
	p.nextToken()
	right := p.parseBinary(Power - 1)
	return &ast.BinOp{Base: ast.Base{Line: line}, Left: left, Op: "**", Right: right}
}

func (p *Parser) parseStarred() ast.Expression {
	line := p.currentToken.Line
	p.nextToken()
	return &ast.Starred{Base: ast.Base{Line: line}, Value: p.parseBinary(Unary)}
}

// parseParenOrTuple handles `(expr)`, `()`, `(a,)`, and `(a, b, ...)`.
func (p *Parser) parseParenOrTuple() ast.Expression {
	line := p.currentToken.Line
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.TupleLit{Base: ast.Base{Line: line}}
	}
	p.nextToken()
	first := p.parseExpression(Lowest)
	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return first
	}
	elts := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
		p.nextToken()
		elts = append(elts, p.parseExpression(Lowest))
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.TupleLit{Base: ast.Base{Line: line}, Elts: elts}
}

func (p *Parser) parseListLiteral() ast.Expression {
	line := p.currentToken.Line
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ListLit{Base: ast.Base{Line: line}}
	}
	p.nextToken()
	first := p.parseExpression(Lowest)
	if p.peekTokenIs(token.FOR) {
		return p.parseComprehensionTail(ast.CompList, first, nil, token.RBRACKET, line)
	}
	elts := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RBRACKET) {
			break
		}
		p.nextToken()
		elts = append(elts, p.parseExpression(Lowest))
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.ListLit{Base: ast.Base{Line: line}, Elts: elts}
}

// parseSetOrDictLiteral handles `{...}`: empty dict, set literal, dict
// literal, set comprehension, or dict comprehension.
func (p *Parser) parseSetOrDictLiteral() ast.Expression {
	line := p.currentToken.Line
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return &ast.DictLit{Base: ast.Base{Line: line}}
	}
	p.nextToken()
	firstKeyOrElt := p.parseExpression(Lowest)
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		firstVal := p.parseExpression(Lowest)
		if p.peekTokenIs(token.FOR) {
			return p.parseComprehensionTail(ast.CompDict, firstVal, firstKeyOrElt, token.RBRACE, line)
		}
		keys := []ast.Expression{firstKeyOrElt}
		vals := []ast.Expression{firstVal}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACE) {
				break
			}
			p.nextToken()
			k := p.parseExpression(Lowest)
			if !p.expectPeek(token.COLON) {
				return nil
			}
			p.nextToken()
			v := p.parseExpression(Lowest)
			keys = append(keys, k)
			vals = append(vals, v)
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
		return &ast.DictLit{Base: ast.Base{Line: line}, Keys: keys, Values: vals}
	}
	if p.peekTokenIs(token.FOR) {
		return p.parseComprehensionTail(ast.CompSet, firstKeyOrElt, nil, token.RBRACE, line)
	}
	elts := []ast.Expression{firstKeyOrElt}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RBRACE) {
			break
		}
		p.nextToken()
		elts = append(elts, p.parseExpression(Lowest))
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return &ast.SetLit{Base: ast.Base{Line: line}, Elts: elts}
}

// parseComprehensionTail parses the single `for target in iter (if cond)*`
// clause shared by list/set/dict/generator comprehensions; only one `for`
// clause is supported, matching the single-iterator lowering.
func (p *Parser) parseComprehensionTail(kind ast.CompKind, elt, key ast.Expression, closer token.Type, line int) ast.Expression {
	p.nextToken() // consume FOR
	p.nextToken()
	target := p.parseTargetList(Power)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	iter := p.parseBinary(Lowest)
	var ifs []ast.Expression
	for p.peekTokenIs(token.IF) {
		p.nextToken()
		p.nextToken()
		ifs = append(ifs, p.parseOr())
	}
	if !p.expectPeek(closer) {
		return nil
	}
	return &ast.Comprehension{Base: ast.Base{Line: line}, Kind: kind, Elt: elt, Key: key, Target: target, Iter: iter, Ifs: ifs}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	line := p.currentToken.Line
	call := &ast.Call{Base: ast.Base{Line: line}, Func: fn}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	for {
		p.nextToken()
		switch {
		case p.currentTokenIs(token.STAR):
			p.nextToken()
			call.StarArgs = p.parseExpression(Lowest)
		case p.currentTokenIs(token.DSTAR):
			p.nextToken()
			call.StarKw = p.parseExpression(Lowest)
		case p.currentTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN):
			name := p.currentToken.Literal
			p.nextToken()
			p.nextToken()
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name, Value: p.parseExpression(Lowest)})
		default:
			call.Args = append(call.Args, p.parseExpression(Lowest))
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseSubscriptExpression(left ast.Expression) ast.Expression {
	line := p.currentToken.Line
	p.nextToken()
	index := p.parseSliceOrExpr()
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.Subscript{Base: ast.Base{Line: line}, Value: left, Index: index}
}

// parseSliceOrExpr parses either a plain index expression or a
// `lower:upper:step` slice, each component optional.
func (p *Parser) parseSliceOrExpr() ast.Expression {
	line := p.currentToken.Line
	var lower ast.Expression
	if !p.currentTokenIs(token.COLON) {
		lower = p.parseExpression(Lowest)
	}
	if !p.peekTokenIs(token.COLON) {
		return lower
	}
	p.nextToken()
	var upper, step ast.Expression
	if !p.peekTokenIs(token.COLON) && !p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		upper = p.parseExpression(Lowest)
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			step = p.parseExpression(Lowest)
		}
	}
	return &ast.Slice{Base: ast.Base{Line: line}, Lower: lower, Upper: upper, Step: step}
}

func (p *Parser) parseAttributeExpression(left ast.Expression) ast.Expression {
	line := p.currentToken.Line
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.Attribute{Base: ast.Base{Line: line}, Value: left, Attr: p.currentToken.Literal}
}

