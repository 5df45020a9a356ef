package parser

import (
	"fmt"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/lexer"
	"github.com/orizon-lang/rangeopt/internal/position"
)

// maxErrors bounds error collection for badly broken input.
const maxErrors = 50

// Parser represents the recursive descent parser
type Parser struct {
	lexer   *lexer.Lexer
	current lexer.Token
	peek    lexer.Token
	errors  []error

	filename string
	depth    int // open parentheses; newlines are insignificant inside them
}

// NewParser creates a new parser instance
func NewParser(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{
		lexer:    l,
		filename: filename,
		errors:   make([]error, 0),
	}

	// Read the first two tokens
	p.nextToken()
	p.nextToken()

	return p
}

// ParseSource parses a whole compilation unit.
func ParseSource(source, filename string) (*Program, []error) {
	return NewParser(lexer.NewWithFilename(source, filename), filename).Parse()
}

// Parse parses the input and returns an AST
func (p *Parser) Parse() (*Program, []error) {
	program := p.parseProgram()
	return program, p.errors
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// nextToken advances the parser to the next token
func (p *Parser) nextToken() {
	p.current = p.peek

	switch p.current.Type {
	case lexer.TokenLParen:
		p.depth++
	case lexer.TokenRParen:
		if p.depth > 0 {
			p.depth--
		}
	}

	p.peek = p.scan()
}

// scan returns the next significant token, reporting lexical errors.
func (p *Parser) scan() lexer.Token {
	for {
		tok := p.lexer.NextToken()
		if tok.Type == lexer.TokenError {
			p.addError(tok.Span.Start, tok.Literal)
			continue
		}
		if tok.Type == lexer.TokenNewline && p.depth > 0 {
			continue
		}
		return tok
	}
}

// currentTokenIs checks if the current token is of the given type
func (p *Parser) currentTokenIs(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

// peekTokenIs checks if the peek token is of the given type
func (p *Parser) peekTokenIs(tokenType lexer.TokenType) bool {
	return p.peek.Type == tokenType
}

// expectPeek advances if the peek token matches the expected type
func (p *Parser) expectPeek(tokenType lexer.TokenType) bool {
	if p.peekTokenIs(tokenType) {
		p.nextToken()
		return true
	}
	p.peekError(tokenType)
	return false
}

func (p *Parser) peekError(tokenType lexer.TokenType) {
	p.addError(p.peek.Span.Start,
		fmt.Sprintf("expected next token to be %s, got %s instead", tokenType, p.peek.Type))
}

func (p *Parser) addError(pos position.Position, message string) {
	if len(p.errors) >= maxErrors {
		return
	}
	p.errors = append(p.errors, errors.SyntaxError(pos, message))
}

func (p *Parser) spanFrom(start position.Position) position.Span {
	return position.Span{Start: start, End: p.current.Span.End}
}

// atStatementEnd reports whether the peek token may follow a statement.
func (p *Parser) atStatementEnd() bool {
	switch p.peek.Type {
	case lexer.TokenNewline, lexer.TokenSemicolon, lexer.TokenRBrace, lexer.TokenEOF:
		return true
	}
	return false
}

func (p *Parser) skipNewlines() {
	for p.currentTokenIs(lexer.TokenNewline) {
		p.nextToken()
	}
}

// ====== Declarations ======

func (p *Parser) parseProgram() *Program {
	program := &Program{Declarations: make([]Declaration, 0)}
	start := p.current.Span.Start

	for !p.currentTokenIs(lexer.TokenEOF) {
		switch p.current.Type {
		case lexer.TokenNewline, lexer.TokenSemicolon:
		case lexer.TokenFun:
			if fn := p.parseFunctionDeclaration(); fn != nil {
				program.Declarations = append(program.Declarations, fn)
			} else {
				p.synchronizeTopLevel()
			}
		case lexer.TokenConst:
			if c := p.parseConstDeclaration(); c != nil {
				program.Declarations = append(program.Declarations, c)
			} else {
				p.synchronizeTopLevel()
			}
		default:
			p.addError(p.current.Span.Start,
				fmt.Sprintf("expected a top-level declaration, got %s", p.current.Type))
			p.synchronizeTopLevel()
		}
		p.nextToken()
	}

	program.Span = position.Span{Start: start, End: p.current.Span.End}
	return program
}

// synchronizeTopLevel skips tokens until the next declaration keyword.
func (p *Parser) synchronizeTopLevel() {
	for !p.peekTokenIs(lexer.TokenEOF) && !p.peekTokenIs(lexer.TokenFun) && !p.peekTokenIs(lexer.TokenConst) {
		p.nextToken()
	}
}

// parseFunctionDeclaration parses `fun name(params): Type { ... }`
func (p *Parser) parseFunctionDeclaration() *FunctionDeclaration {
	start := p.current.Span.Start

	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := &Identifier{Span: p.current.Span, Value: p.current.Literal}

	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}

	params, ok := p.parseParameters()
	if !ok {
		return nil
	}

	var ret *TypeName
	if p.peekTokenIs(lexer.TokenColon) {
		p.nextToken()
		if ret = p.parseTypeName(); ret == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenLBrace) {
		return nil
	}

	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}

	return &FunctionDeclaration{
		Span:       p.spanFrom(start),
		Name:       name,
		Parameters: params,
		ReturnType: ret,
		Body:       body,
	}
}

// parseParameters parses a parameter list; current is '('.
func (p *Parser) parseParameters() ([]*Parameter, bool) {
	params := make([]*Parameter, 0)

	if p.peekTokenIs(lexer.TokenRParen) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(lexer.TokenIdentifier) {
			return nil, false
		}
		start := p.current.Span.Start
		name := &Identifier{Span: p.current.Span, Value: p.current.Literal}

		if !p.expectPeek(lexer.TokenColon) {
			return nil, false
		}
		typ := p.parseTypeName()
		if typ == nil {
			return nil, false
		}

		params = append(params, &Parameter{Span: p.spanFrom(start), Name: name, Type: typ})

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil, false
	}
	return params, true
}

// parseTypeName parses the identifier following a ':'.
func (p *Parser) parseTypeName() *TypeName {
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	return &TypeName{Span: p.current.Span, Name: p.current.Literal}
}

// parseConstDeclaration parses `const val NAME[: Type] = expr`
func (p *Parser) parseConstDeclaration() *ConstDeclaration {
	start := p.current.Span.Start

	if !p.expectPeek(lexer.TokenVal) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := &Identifier{Span: p.current.Span, Value: p.current.Literal}

	var typ *TypeName
	if p.peekTokenIs(lexer.TokenColon) {
		p.nextToken()
		if typ = p.parseTypeName(); typ == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenAssign) {
		return nil
	}
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	return &ConstDeclaration{Span: p.spanFrom(start), Name: name, Type: typ, Value: value}
}

// ====== Statements ======

// parseBlockStatement parses `{ ... }`; current is '{'.
func (p *Parser) parseBlockStatement() *BlockStatement {
	start := p.current.Span.Start
	block := &BlockStatement{Statements: make([]Statement, 0)}

	p.nextToken()

	for !p.currentTokenIs(lexer.TokenRBrace) {
		if p.currentTokenIs(lexer.TokenEOF) {
			p.addError(p.current.Span.Start, "unexpected end of input, expected }")
			return nil
		}

		if p.currentTokenIs(lexer.TokenNewline) || p.currentTokenIs(lexer.TokenSemicolon) {
			p.nextToken()
			continue
		}

		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}

		if !p.atStatementEnd() {
			p.addError(p.peek.Span.Start,
				fmt.Sprintf("unexpected %s after statement", p.peek.Type))
			for !p.atStatementEnd() {
				p.nextToken()
			}
		}
		p.nextToken()
	}

	block.Span = p.spanFrom(start)
	return block
}

// parseStatement dispatches on the current token.
func (p *Parser) parseStatement() Statement {
	switch p.current.Type {
	case lexer.TokenVal, lexer.TokenVar:
		if s := p.parseVariableDeclaration(); s != nil {
			return s
		}
	case lexer.TokenIf:
		if s := p.parseIfStatement(); s != nil {
			return s
		}
	case lexer.TokenWhile:
		if s := p.parseWhileStatement(); s != nil {
			return s
		}
	case lexer.TokenFor:
		if s := p.parseForInStatement(); s != nil {
			return s
		}
	case lexer.TokenBreak:
		return &BreakStatement{Span: p.current.Span}
	case lexer.TokenContinue:
		return &ContinueStatement{Span: p.current.Span}
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenLBrace:
		if s := p.parseBlockStatement(); s != nil {
			return s
		}
	default:
		return p.parseExpressionOrAssignment()
	}
	return nil
}

// parseBody parses a loop or branch body: a block or a single statement.
func (p *Parser) parseBody() Statement {
	p.nextToken()
	p.skipNewlines()
	return p.parseStatement()
}

func (p *Parser) parseVariableDeclaration() *VariableDeclaration {
	start := p.current.Span.Start
	mutable := p.currentTokenIs(lexer.TokenVar)

	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	name := &Identifier{Span: p.current.Span, Value: p.current.Literal}

	var typ *TypeName
	if p.peekTokenIs(lexer.TokenColon) {
		p.nextToken()
		if typ = p.parseTypeName(); typ == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenAssign) {
		return nil
	}
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	return &VariableDeclaration{
		Span:    p.spanFrom(start),
		Name:    name,
		Type:    typ,
		Value:   value,
		Mutable: mutable,
	}
}

// parseIfStatement parses an if statement
func (p *Parser) parseIfStatement() *IfStatement {
	start := p.current.Span.Start

	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}
	p.nextToken()

	condition := p.parseExpression(LOWEST)
	if condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil
	}

	then := p.parseBody()
	if then == nil {
		return nil
	}

	var elseStmt Statement
	if p.peekTokenIs(lexer.TokenElse) {
		p.nextToken()
		if elseStmt = p.parseBody(); elseStmt == nil {
			return nil
		}
	}

	return &IfStatement{
		Span:      p.spanFrom(start),
		Condition: condition,
		Then:      then,
		Else:      elseStmt,
	}
}

// parseWhileStatement parses a while statement
func (p *Parser) parseWhileStatement() *WhileStatement {
	start := p.current.Span.Start

	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}
	p.nextToken()

	condition := p.parseExpression(LOWEST)
	if condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil
	}

	body := p.parseBody()
	if body == nil {
		return nil
	}

	return &WhileStatement{Span: p.spanFrom(start), Condition: condition, Body: body}
}

// parseForInStatement parses `for (x in iterable) body`
func (p *Parser) parseForInStatement() *ForInStatement {
	start := p.current.Span.Start

	if !p.expectPeek(lexer.TokenLParen) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}
	variable := &Identifier{Span: p.current.Span, Value: p.current.Literal}

	if !p.expectPeek(lexer.TokenIn) {
		return nil
	}
	p.nextToken()

	iterable := p.parseExpression(LOWEST)
	if iterable == nil {
		return nil
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil
	}

	body := p.parseBody()
	if body == nil {
		return nil
	}

	return &ForInStatement{
		Span:     p.spanFrom(start),
		Variable: variable,
		Iterable: iterable,
		Body:     body,
	}
}

// parseReturnStatement parses a return statement
func (p *Parser) parseReturnStatement() Statement {
	start := p.current.Span.Start

	var value Expression
	if !p.atStatementEnd() {
		p.nextToken()
		if value = p.parseExpression(LOWEST); value == nil {
			return nil
		}
	}

	return &ReturnStatement{Span: p.spanFrom(start), Value: value}
}

var assignOperators = map[lexer.TokenType]bool{
	lexer.TokenAssign:      true,
	lexer.TokenPlusAssign:  true,
	lexer.TokenMinusAssign: true,
	lexer.TokenMulAssign:   true,
}

// parseExpressionOrAssignment parses an expression statement, or an
// assignment when the expression is followed by an assignment operator.
func (p *Parser) parseExpressionOrAssignment() Statement {
	start := p.current.Span.Start

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if !assignOperators[p.peek.Type] {
		return &ExpressionStatement{Span: p.spanFrom(start), Expression: expr}
	}

	target, ok := expr.(*Identifier)
	if !ok {
		p.addError(p.peek.Span.Start, fmt.Sprintf("cannot assign to %s", expr))
		return nil
	}

	p.nextToken()
	op := p.current.Literal
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	return &AssignStatement{Span: p.spanFrom(start), Target: target, Operator: op, Value: value}
}

// ====== Expression Parsing (Pratt Parser) ======

// Precedence levels for operators
type Precedence int

const (
	_ Precedence = iota
	LOWEST
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	INFIX_CALL  // downTo step
	RANGE       // ..
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X !X
	CALL        // f(X) X.Y
)

// precedences maps token types to their precedence levels
var precedences = map[lexer.TokenType]Precedence{
	lexer.TokenOr:  LOGICAL_OR,
	lexer.TokenAnd: LOGICAL_AND,

	lexer.TokenEq: EQUALS,
	lexer.TokenNe: EQUALS,
	lexer.TokenLt: LESSGREATER,
	lexer.TokenLe: LESSGREATER,
	lexer.TokenGt: LESSGREATER,
	lexer.TokenGe: LESSGREATER,

	lexer.TokenRange: RANGE,

	lexer.TokenPlus:  SUM,
	lexer.TokenMinus: SUM,

	lexer.TokenMul: PRODUCT,
	lexer.TokenDiv: PRODUCT,
	lexer.TokenMod: PRODUCT,

	lexer.TokenLParen: CALL,
	lexer.TokenDot:    CALL,
}

// infixFunctions are identifiers usable as named infix operators.
var infixFunctions = map[string]bool{
	"downTo": true,
	"step":   true,
}

func precedenceOf(tok lexer.Token) Precedence {
	if tok.Type == lexer.TokenIdentifier && infixFunctions[tok.Literal] {
		return INFIX_CALL
	}
	if p, ok := precedences[tok.Type]; ok {
		return p
	}
	return LOWEST
}

// peekPrecedence returns the precedence of the peek token
func (p *Parser) peekPrecedence() Precedence {
	return precedenceOf(p.peek)
}

// currentPrecedence returns the precedence of the current token
func (p *Parser) currentPrecedence() Precedence {
	return precedenceOf(p.current)
}

// parseExpression parses expressions using Pratt parsing. All binary
// operators are left associative.
func (p *Parser) parseExpression(precedence Precedence) Expression {
	// a line break is allowed right after a binary operator
	p.skipNewlines()

	left := p.parsePrefixExpression()
	if left == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.TokenSemicolon) && precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfixExpression(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// parsePrefixExpression parses prefix expressions
func (p *Parser) parsePrefixExpression() Expression {
	switch p.current.Type {
	case lexer.TokenIdentifier:
		return &Identifier{Span: p.current.Span, Value: p.current.Literal}
	case lexer.TokenInteger:
		return p.parseIntegerLiteral()
	case lexer.TokenChar:
		return p.parseCharLiteral()
	case lexer.TokenBool:
		return &BooleanLiteral{Span: p.current.Span, Value: p.current.Literal == "true"}
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot:
		return p.parseUnaryExpression()
	case lexer.TokenLParen:
		return p.parseGroupedExpression()
	default:
		p.addError(p.current.Span.Start,
			fmt.Sprintf("no prefix parse function for %s", p.current.Type))
		return nil
	}
}

// parseIntegerLiteral parses an integer literal
func (p *Parser) parseIntegerLiteral() Expression {
	value, long, err := lexer.ParseInteger(p.current.Literal)
	if err != nil {
		p.addError(p.current.Span.Start, err.Error())
		return nil
	}

	return &IntegerLiteral{Span: p.current.Span, Raw: p.current.Literal, Value: value, Long: long}
}

// parseCharLiteral parses a character literal
func (p *Parser) parseCharLiteral() Expression {
	value, err := lexer.DecodeChar(p.current.Literal)
	if err != nil {
		p.addError(p.current.Span.Start, err.Error())
		return nil
	}

	return &CharLiteral{Span: p.current.Span, Raw: p.current.Literal, Value: value}
}

// parseUnaryExpression parses unary expressions
func (p *Parser) parseUnaryExpression() Expression {
	start := p.current.Span.Start
	operator := p.current.Literal

	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}

	return &UnaryExpression{Span: p.spanFrom(start), Operator: operator, Operand: operand}
}

// parseGroupedExpression parses grouped expressions
func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil
	}

	return exp
}

// parseInfixExpression parses the operator in current applied to left
func (p *Parser) parseInfixExpression(left Expression) Expression {
	switch p.current.Type {
	case lexer.TokenLParen:
		return p.parseCallExpression(left)
	case lexer.TokenDot:
		return p.parseMemberExpression(left)
	case lexer.TokenRange:
		start := left.GetSpan().Start
		p.nextToken()
		end := p.parseExpression(RANGE)
		if end == nil {
			return nil
		}
		return &RangeExpression{Span: p.spanFrom(start), Start: left, End: end}
	case lexer.TokenIdentifier:
		start := left.GetSpan().Start
		name := p.current.Literal
		p.nextToken()
		right := p.parseExpression(INFIX_CALL)
		if right == nil {
			return nil
		}
		return &InfixCallExpression{Span: p.spanFrom(start), Left: left, Name: name, Right: right}
	default:
		return p.parseBinaryExpression(left)
	}
}

// parseBinaryExpression parses binary expressions
func (p *Parser) parseBinaryExpression(left Expression) Expression {
	start := left.GetSpan().Start
	operator := p.current.Literal
	precedence := p.currentPrecedence()

	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return &BinaryExpression{
		Span:     p.spanFrom(start),
		Left:     left,
		Operator: operator,
		Right:    right,
	}
}

// parseCallExpression parses function call expressions
func (p *Parser) parseCallExpression(function Expression) Expression {
	start := function.GetSpan().Start

	arguments, ok := p.parseCallArguments()
	if !ok {
		return nil
	}

	return &CallExpression{Span: p.spanFrom(start), Function: function, Arguments: arguments}
}

// parseCallArguments parses function call arguments
func (p *Parser) parseCallArguments() ([]Expression, bool) {
	args := make([]Expression, 0)

	if p.peekTokenIs(lexer.TokenRParen) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.TokenComma) {
		p.nextToken()
		p.nextToken()
		if arg = p.parseExpression(LOWEST); arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.TokenRParen) {
		return nil, false
	}

	return args, true
}

// parseMemberExpression parses `object.member`
func (p *Parser) parseMemberExpression(object Expression) Expression {
	start := object.GetSpan().Start

	if !p.expectPeek(lexer.TokenIdentifier) {
		return nil
	}

	return &MemberExpression{
		Span:   p.spanFrom(start),
		Object: object,
		Member: &Identifier{Span: p.current.Span, Value: p.current.Literal},
	}
}
