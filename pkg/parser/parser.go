package parser

import (
	"github.com/zaharidichev/rlox/pkg/ast"
)

// Parser is a recursive descent parser over the scanned token stream.
//
// The grammar, straight from Crafting Interpreters:
//
//	program    → declaration* EOF
//	declaration → classDecl | funDecl | varDecl | statement
//	statement  → exprStmt | forStmt | ifStmt | printStmt | returnStmt
//	           | whileStmt | block
//	expression → assignment
//	assignment → ( call "." )? IDENTIFIER "=" assignment | logic_or
//	logic_or   → logic_and ( "or" logic_and )*
//	logic_and  → equality ( "and" equality )*
//	equality   → comparison ( ( "!=" | "==" ) comparison )*
//	comparison → term ( ( ">" | ">=" | "<" | "<=" ) term )*
//	term       → factor ( ( "-" | "+" ) factor )*
//	factor     → unary ( ( "/" | "*" ) unary )*
//	unary      → ( "!" | "-" ) unary | call
//	call       → primary ( "(" arguments? ")" | "." IDENTIFIER )*
//	primary    → NUMBER | STRING | "false" | "true" | "nil" | "this"
//	           | "(" expression ")" | "super" "." IDENTIFIER | IDENTIFIER
type Parser struct {
	tokens  []Token
	current int
	errs    ErrorList
}

// Parse scans and parses a whole program. The statement list holds every
// declaration that parsed cleanly; the error list carries one entry per scan
// or parse failure, recovered at statement boundaries.
func Parse(src string) ([]ast.Stmt, ErrorList) {
	tokens, errs := ScanTokens(src)
	p := &Parser{tokens: tokens, errs: errs}
	return p.parse()
}

// ParseExpression parses src as a single expression with nothing trailing.
func ParseExpression(src string) (ast.Expr, ErrorList) {
	tokens, errs := ScanTokens(src)
	if len(errs) > 0 {
		return nil, errs
	}
	p := &Parser{tokens: tokens}
	expr, err := p.expression()
	if err != nil {
		return nil, ErrorList{err}
	}
	if !p.atEnd() {
		return nil, ErrorList{syntaxErrorf(p.peek().Line, "Unexpected %s after expression.", p.peekType())}
	}
	return expr, nil
}

// program → declaration* EOF
func (p *Parser) parse() ([]ast.Stmt, ErrorList) {
	var statements []ast.Stmt
	for !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			p.errs = append(p.errs, err)
			p.synchronize()
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, p.errs
}

// declaration → classDecl | funDecl | varDecl | statement
func (p *Parser) declaration() (ast.Stmt, *SyntaxError) {
	switch p.peekType() {
	case KeywordClass:
		p.advance()
		return p.classDecl()
	case KeywordFun:
		p.advance()
		return p.funDecl("function")
	case KeywordVar:
		p.advance()
		return p.varDecl()
	}
	return p.statement()
}

// classDecl → "class" IDENTIFIER ( "<" IDENTIFIER )? "{" function* "}"
func (p *Parser) classDecl() (ast.Stmt, *SyntaxError) {
	name, err := p.expectMsg(Identifier, "Expected class name.")
	if err != nil {
		return nil, err
	}
	var superclass *ast.Var
	if p.peekType() == LessThan {
		p.advance()
		super, err := p.expectMsg(Identifier, "Expected superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = &ast.Var{Name: super.Lexeme, Line: super.Line}
	}
	if _, err := p.expectMsg(LeftBrace, "Expected '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*ast.Function
	for p.peekType() != RightBrace && !p.atEnd() {
		method, err := p.funDecl("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method.(*ast.Function))
	}
	if _, err := p.expectMsg(RightBrace, "Expected '}' after class body."); err != nil {
		return nil, err
	}
	return &ast.Class{Name: name.Lexeme, Superclass: superclass, Methods: methods, Line: name.Line}, nil
}

// funDecl → IDENTIFIER "(" parameters? ")" block
func (p *Parser) funDecl(kind string) (ast.Stmt, *SyntaxError) {
	name, err := p.expectMsg(Identifier, "Expected "+kind+" name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LeftParen, kind+" name"); err != nil {
		return nil, err
	}
	var params []ast.Param
	if p.peekType() != RightParen {
		for {
			param, err := p.expectMsg(Identifier, "Expected parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: param.Lexeme, Line: param.Line})
			if p.peekType() != Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RightParen, "parameters"); err != nil {
		return nil, err
	}
	if _, err := p.expectMsg(LeftBrace, "Expected '{' before "+kind+" body."); err != nil {
		return nil, err
	}
	body, err := p.blockStmts()
	if err != nil {
		return nil, err
	}
	decl := &ast.FunctionDecl{Params: params, Body: body}
	return &ast.Function{Name: name.Lexeme, Decl: decl, Line: name.Line}, nil
}

// varDecl → "var" IDENTIFIER ( "=" expression )? ";"
func (p *Parser) varDecl() (ast.Stmt, *SyntaxError) {
	ident, err := p.expect(Identifier, "keyword 'var'")
	if err != nil {
		return nil, err
	}
	var initializer ast.Expr
	if p.peekType() == Equal {
		p.advance()
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(Semicolon, "variable declaration"); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Name: ident.Lexeme, Init: initializer, Line: ident.Line}, nil
}

// statement → exprStmt | forStmt | ifStmt | printStmt | returnStmt
//           | whileStmt | block
func (p *Parser) statement() (ast.Stmt, *SyntaxError) {
	switch p.peekType() {
	case KeywordWhile:
		p.advance()
		return p.whileStatement()
	case KeywordPrint:
		p.advance()
		return p.printStatement()
	case KeywordIf:
		p.advance()
		return p.ifStatement()
	case KeywordFor:
		p.advance()
		return p.forStatement()
	case KeywordReturn:
		p.advance()
		return p.returnStatement()
	case LeftBrace:
		p.advance()
		stmts, err := p.blockStmts()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	}
	return p.expressionStatement()
}

func (p *Parser) printStatement() (ast.Stmt, *SyntaxError) {
	line := p.previous().Line
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Semicolon, "value"); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: value, Line: line}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, *SyntaxError) {
	line := p.previous().Line
	var value ast.Expr
	if p.peekType() != Semicolon {
		var err *SyntaxError
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(Semicolon, "return value"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: value, Line: line}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, *SyntaxError) {
	if _, err := p.expect(LeftParen, "'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RightParen, "if condition"); err != nil {
		return nil, err
	}
	thenClause, err := p.declaration()
	if err != nil {
		return nil, err
	}
	if p.peekType() == KeywordElse {
		p.advance()
		elseClause, err := p.declaration()
		if err != nil {
			return nil, err
		}
		return ast.IfElseStmt(cond, thenClause, elseClause), nil
	}
	return ast.IfStmt(cond, thenClause), nil
}

func (p *Parser) whileStatement() (ast.Stmt, *SyntaxError) {
	if _, err := p.expect(LeftParen, "'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RightParen, "while condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// forStmt → "for" "(" ( varDecl | exprStmt | ";" ) expression? ";"
//           expression? ")" statement
//
// Desugared into a while loop at parse time; the evaluator and the compiler
// never see a for node.
func (p *Parser) forStatement() (ast.Stmt, *SyntaxError) {
	if _, err := p.expect(LeftParen, "'for'"); err != nil {
		return nil, err
	}

	var init ast.Stmt
	switch p.peekType() {
	case Semicolon:
		p.advance()
	case KeywordVar:
		p.advance()
		decl, err := p.varDecl()
		if err != nil {
			return nil, err
		}
		init = decl
	default:
		stmt, err := p.expressionStatement()
		if err != nil {
			return nil, err
		}
		init = stmt
	}

	var cond ast.Expr = ast.TrueLit()
	if p.peekType() != Semicolon {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = expr
	}
	if _, err := p.expect(Semicolon, "for condition"); err != nil {
		return nil, err
	}

	var increment ast.Expr
	if p.peekType() != RightParen {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		increment = expr
	}
	if _, err := p.expect(RightParen, "for clause"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: increment}}}
	}
	loop := &ast.While{Cond: cond, Body: body}
	if init != nil {
		return &ast.Block{Stmts: []ast.Stmt{init, loop}}, nil
	}
	return loop, nil
}

// block → "{" declaration* "}"
func (p *Parser) blockStmts() ([]ast.Stmt, *SyntaxError) {
	var stmts []ast.Stmt
	for {
		if p.peekType() == RightBrace {
			p.advance()
			return stmts, nil
		}
		if p.atEnd() {
			return nil, syntaxErrorf(p.peek().Line, "Expected '}' after block.")
		}
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) expressionStatement() (ast.Stmt, *SyntaxError) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Semicolon, "value"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

// expression → assignment
func (p *Parser) expression() (ast.Expr, *SyntaxError) {
	return p.assignment()
}

// assignment → ( call "." )? IDENTIFIER "=" assignment | logic_or
func (p *Parser) assignment() (ast.Expr, *SyntaxError) {
	expr, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.peekType() == Equal {
		eq := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.Var:
			return &ast.Assign{Name: target.Name, Value: value, Line: target.Line}, nil
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value, Line: target.Line}, nil
		}
		return nil, syntaxErrorf(eq.Line, "Invalid assignment target.")
	}
	return expr, nil
}

var logicalOps = map[TokenType]ast.LogicalOp{
	KeywordOr:  ast.OpOr,
	KeywordAnd: ast.OpAnd,
}

// logic_or → logic_and ( "or" logic_and )*
func (p *Parser) logicalOr() (ast.Expr, *SyntaxError) {
	return p.logicalRule(p.logicalAnd, KeywordOr)
}

// logic_and → equality ( "and" equality )*
func (p *Parser) logicalAnd() (ast.Expr, *SyntaxError) {
	return p.logicalRule(p.equality, KeywordAnd)
}

func (p *Parser) logicalRule(inner func() (ast.Expr, *SyntaxError), ty TokenType) (ast.Expr, *SyntaxError) {
	expr, err := inner()
	if err != nil {
		return nil, err
	}
	for p.peekType() == ty {
		tok := p.advance()
		rhs, err := inner()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Op: logicalOps[ty], LHS: expr, RHS: rhs, Line: tok.Line}
	}
	return expr, nil
}

// Encapsulates rules with the form:
// name → inner ( ( opA | opB | ... ) inner )*
func (p *Parser) binaryRule(inner func() (ast.Expr, *SyntaxError), ops map[TokenType]ast.BinaryOp) (ast.Expr, *SyntaxError) {
	expr, err := inner()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peekType()]
		if !ok {
			break
		}
		tok := p.advance()
		rhs, err := inner()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Op: op, LHS: expr, RHS: rhs, Line: tok.Line}
	}
	return expr, nil
}

var (
	equalityOps = map[TokenType]ast.BinaryOp{
		BangEq:  ast.OpBangEq,
		EqualEq: ast.OpEqual,
	}
	comparisonOps = map[TokenType]ast.BinaryOp{
		GreaterThan:   ast.OpGreaterThan,
		GreaterThanEq: ast.OpGreaterThanEq,
		LessThan:      ast.OpLessThan,
		LessThanEq:    ast.OpLessThanEq,
	}
	termOps = map[TokenType]ast.BinaryOp{
		Plus:  ast.OpPlus,
		Minus: ast.OpMinus,
	}
	factorOps = map[TokenType]ast.BinaryOp{
		Slash: ast.OpSlash,
		Star:  ast.OpStar,
	}
)

// equality → comparison ( ( "!=" | "==" ) comparison )*
func (p *Parser) equality() (ast.Expr, *SyntaxError) {
	return p.binaryRule(p.comparison, equalityOps)
}

// comparison → term ( ( ">" | ">=" | "<" | "<=" ) term )*
func (p *Parser) comparison() (ast.Expr, *SyntaxError) {
	return p.binaryRule(p.term, comparisonOps)
}

// term → factor ( ( "-" | "+" ) factor )*
func (p *Parser) term() (ast.Expr, *SyntaxError) {
	return p.binaryRule(p.factor, termOps)
}

// factor → unary ( ( "/" | "*" ) unary )*
func (p *Parser) factor() (ast.Expr, *SyntaxError) {
	return p.binaryRule(p.unary, factorOps)
}

// unary → ( "!" | "-" ) unary | call
func (p *Parser) unary() (ast.Expr, *SyntaxError) {
	switch p.peekType() {
	case Bang:
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNot, Expr: operand, Line: tok.Line}, nil
	case Minus:
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNegate, Expr: operand, Line: tok.Line}, nil
	}
	return p.call()
}

// call → primary ( "(" arguments? ")" | "." IDENTIFIER )*
func (p *Parser) call() (ast.Expr, *SyntaxError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekType() {
		case LeftParen:
			paren := p.advance()
			var args []ast.Expr
			if p.peekType() != RightParen {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peekType() != Comma {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(RightParen, "arguments"); err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args, Line: paren.Line}
		case Dot:
			p.advance()
			name, err := p.expectMsg(Identifier, "Expected property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &ast.Get{Object: expr, Name: name.Lexeme, Line: name.Line}
		default:
			return expr, nil
		}
	}
}

// primary → NUMBER | STRING | "false" | "true" | "nil" | "this"
//         | "(" expression ")" | "super" "." IDENTIFIER | IDENTIFIER
func (p *Parser) primary() (ast.Expr, *SyntaxError) {
	switch p.peekType() {
	case KeywordNil:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitNil, Line: tok.Line}, nil
	case KeywordTrue:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitTrue, Line: tok.Line}, nil
	case KeywordFalse:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitFalse, Line: tok.Line}, nil
	case String:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitString, Text: tok.Text, Line: tok.Line}, nil
	case Number:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitNumber, Number: tok.Number, Line: tok.Line}, nil
	case LeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RightParen, "expression"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expr: expr}, nil
	case KeywordThis:
		tok := p.advance()
		return &ast.This{Line: tok.Line}, nil
	case KeywordSuper:
		tok := p.advance()
		if _, err := p.expectMsg(Dot, "Expected '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.expectMsg(Identifier, "Expected superclass method name.")
		if err != nil {
			return nil, err
		}
		return &ast.Super{Method: method.Lexeme, Line: tok.Line}, nil
	case Identifier:
		tok := p.advance()
		return &ast.Var{Name: tok.Lexeme, Line: tok.Line}, nil
	case EOF:
		return nil, syntaxErrorf(p.peek().Line, "Unexpected end of input.")
	}
	return nil, syntaxErrorf(p.peek().Line, "Expected a literal or parenthesized expression.")
}

// Discards tokens until a statement or expression boundary.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.peekType() {
		case Semicolon:
			p.advance()
			return
		case KeywordClass, KeywordFun, KeywordVar, KeywordFor,
			KeywordIf, KeywordWhile, KeywordReturn, KeywordPrint:
			return
		}
		p.advance()
	}
}

func (p *Parser) expect(ty TokenType, before string) (Token, *SyntaxError) {
	if p.peekType() == ty {
		return p.advance(), nil
	}
	return Token{}, syntaxErrorf(p.peek().Line, "Expected %s after %s.", ty, before)
}

func (p *Parser) expectMsg(ty TokenType, msg string) (Token, *SyntaxError) {
	if p.peekType() == ty {
		return p.advance(), nil
	}
	return Token{}, syntaxErrorf(p.peek().Line, "%s", msg)
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != EOF {
		p.current++
	}
	return tok
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekType() TokenType {
	return p.tokens[p.current].Type
}

func (p *Parser) atEnd() bool {
	return p.peekType() == EOF
}
