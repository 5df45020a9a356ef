// Package parser implements the rangeopt language parser and AST definitions
package parser

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/position"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() position.Span
	// String returns a string representation of the node
	String() string
}

// Statement represents all statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Declaration represents all top-level declaration nodes
type Declaration interface {
	Node
	declarationNode()
}

// ====== Program Structure ======

// Program represents the root of the AST
type Program struct {
	Span         position.Span
	Declarations []Declaration
}

func (p *Program) GetSpan() position.Span { return p.Span }
func (p *Program) String() string {
	parts := make([]string, 0, len(p.Declarations))
	for _, d := range p.Declarations {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "\n")
}

// Functions returns the function declarations in source order.
func (p *Program) Functions() []*FunctionDeclaration {
	var out []*FunctionDeclaration
	for _, d := range p.Declarations {
		if fn, ok := d.(*FunctionDeclaration); ok {
			out = append(out, fn)
		}
	}
	return out
}

// ====== Declarations ======

// FunctionDeclaration represents a function declaration
type FunctionDeclaration struct {
	Span       position.Span
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *TypeName // nil means Unit
	Body       *BlockStatement
}

func (f *FunctionDeclaration) GetSpan() position.Span { return f.Span }
func (f *FunctionDeclaration) String() string {
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}
	ret := ""
	if f.ReturnType != nil {
		ret = ": " + f.ReturnType.Name
	}
	return fmt.Sprintf("fun %s(%s)%s %s", f.Name.Value, strings.Join(params, ", "), ret, f.Body)
}
func (f *FunctionDeclaration) declarationNode() {}

// Parameter represents a function parameter
type Parameter struct {
	Span position.Span
	Name *Identifier
	Type *TypeName
}

func (p *Parameter) GetSpan() position.Span { return p.Span }
func (p *Parameter) String() string         { return p.Name.Value + ": " + p.Type.Name }

// TypeName is a reference to one of the builtin primitive types.
type TypeName struct {
	Span position.Span
	Name string
}

func (t *TypeName) GetSpan() position.Span { return t.Span }
func (t *TypeName) String() string         { return t.Name }

// ConstDeclaration represents a top-level `const val`
type ConstDeclaration struct {
	Span  position.Span
	Name  *Identifier
	Type  *TypeName
	Value Expression
}

func (c *ConstDeclaration) GetSpan() position.Span { return c.Span }
func (c *ConstDeclaration) String() string {
	return fmt.Sprintf("const val %s = %s", c.Name.Value, c.Value)
}
func (c *ConstDeclaration) declarationNode() {}

// ====== Statements ======

// VariableDeclaration represents `val` and `var` declarations
type VariableDeclaration struct {
	Span    position.Span
	Name    *Identifier
	Type    *TypeName
	Value   Expression
	Mutable bool
}

func (v *VariableDeclaration) GetSpan() position.Span { return v.Span }
func (v *VariableDeclaration) String() string {
	kw := "val"
	if v.Mutable {
		kw = "var"
	}
	if v.Type != nil {
		return fmt.Sprintf("%s %s: %s = %s", kw, v.Name.Value, v.Type.Name, v.Value)
	}
	return fmt.Sprintf("%s %s = %s", kw, v.Name.Value, v.Value)
}
func (v *VariableDeclaration) statementNode() {}

// AssignStatement represents `x = e` and compound assignments
type AssignStatement struct {
	Span     position.Span
	Target   *Identifier
	Operator string // "=", "+=", "-=" or "*="
	Value    Expression
}

func (a *AssignStatement) GetSpan() position.Span { return a.Span }
func (a *AssignStatement) String() string {
	return fmt.Sprintf("%s %s %s", a.Target.Value, a.Operator, a.Value)
}
func (a *AssignStatement) statementNode() {}

// IfStatement represents an if statement
type IfStatement struct {
	Span      position.Span
	Condition Expression
	Then      Statement
	Else      Statement
}

func (i *IfStatement) GetSpan() position.Span { return i.Span }
func (i *IfStatement) String() string {
	if i.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", i.Condition, i.Then, i.Else)
	}
	return fmt.Sprintf("if (%s) %s", i.Condition, i.Then)
}
func (i *IfStatement) statementNode() {}

// WhileStatement represents a while loop
type WhileStatement struct {
	Span      position.Span
	Condition Expression
	Body      Statement
}

func (w *WhileStatement) GetSpan() position.Span { return w.Span }
func (w *WhileStatement) String() string {
	return fmt.Sprintf("while (%s) %s", w.Condition, w.Body)
}
func (w *WhileStatement) statementNode() {}

// ForInStatement represents `for (x in iterable) body`
type ForInStatement struct {
	Span     position.Span
	Variable *Identifier
	Iterable Expression
	Body     Statement
}

func (f *ForInStatement) GetSpan() position.Span { return f.Span }
func (f *ForInStatement) String() string {
	return fmt.Sprintf("for (%s in %s) %s", f.Variable.Value, f.Iterable, f.Body)
}
func (f *ForInStatement) statementNode() {}

// BreakStatement represents break
type BreakStatement struct {
	Span position.Span
}

func (b *BreakStatement) GetSpan() position.Span { return b.Span }
func (b *BreakStatement) String() string         { return "break" }
func (b *BreakStatement) statementNode()         {}

// ContinueStatement represents continue
type ContinueStatement struct {
	Span position.Span
}

func (c *ContinueStatement) GetSpan() position.Span { return c.Span }
func (c *ContinueStatement) String() string         { return "continue" }
func (c *ContinueStatement) statementNode()         {}

// ReturnStatement represents a return statement
type ReturnStatement struct {
	Span  position.Span
	Value Expression
}

func (r *ReturnStatement) GetSpan() position.Span { return r.Span }
func (r *ReturnStatement) String() string {
	if r.Value != nil {
		return "return " + r.Value.String()
	}
	return "return"
}
func (r *ReturnStatement) statementNode() {}

// ExpressionStatement represents an expression used as a statement
type ExpressionStatement struct {
	Span       position.Span
	Expression Expression
}

func (e *ExpressionStatement) GetSpan() position.Span { return e.Span }
func (e *ExpressionStatement) String() string         { return e.Expression.String() }
func (e *ExpressionStatement) statementNode()         {}

// BlockStatement represents a block of statements
type BlockStatement struct {
	Span       position.Span
	Statements []Statement
}

func (b *BlockStatement) GetSpan() position.Span { return b.Span }
func (b *BlockStatement) String() string {
	parts := make([]string, 0, len(b.Statements))
	for _, s := range b.Statements {
		parts = append(parts, s.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (b *BlockStatement) statementNode() {}

// ====== Expressions ======

// Identifier represents an identifier
type Identifier struct {
	Span  position.Span
	Value string
}

func (i *Identifier) GetSpan() position.Span { return i.Span }
func (i *Identifier) String() string         { return i.Value }
func (i *Identifier) expressionNode()        {}

// IntegerLiteral represents an integer literal; Long is set by an L suffix.
type IntegerLiteral struct {
	Span  position.Span
	Raw   string
	Value int64
	Long  bool
}

func (l *IntegerLiteral) GetSpan() position.Span { return l.Span }
func (l *IntegerLiteral) String() string         { return l.Raw }
func (l *IntegerLiteral) expressionNode()        {}

// CharLiteral represents a character literal holding a UTF-16 code unit
type CharLiteral struct {
	Span  position.Span
	Raw   string
	Value uint16
}

func (c *CharLiteral) GetSpan() position.Span { return c.Span }
func (c *CharLiteral) String() string         { return "'" + c.Raw + "'" }
func (c *CharLiteral) expressionNode()        {}

// BooleanLiteral represents true or false
type BooleanLiteral struct {
	Span  position.Span
	Value bool
}

func (b *BooleanLiteral) GetSpan() position.Span { return b.Span }
func (b *BooleanLiteral) String() string         { return fmt.Sprintf("%t", b.Value) }
func (b *BooleanLiteral) expressionNode()        {}

// UnaryExpression represents a prefix operator application
type UnaryExpression struct {
	Span     position.Span
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) GetSpan() position.Span { return u.Span }
func (u *UnaryExpression) String() string         { return fmt.Sprintf("(%s%s)", u.Operator, u.Operand) }
func (u *UnaryExpression) expressionNode()        {}

// BinaryExpression represents an arithmetic, comparison or logical operator
type BinaryExpression struct {
	Span     position.Span
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) GetSpan() position.Span { return b.Span }
func (b *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator, b.Right)
}
func (b *BinaryExpression) expressionNode() {}

// RangeExpression represents `start..end`
type RangeExpression struct {
	Span  position.Span
	Start Expression
	End   Expression
}

func (r *RangeExpression) GetSpan() position.Span { return r.Span }
func (r *RangeExpression) String() string         { return fmt.Sprintf("(%s..%s)", r.Start, r.End) }
func (r *RangeExpression) expressionNode()        {}

// InfixCallExpression represents a named infix call such as `a downTo b`
// or `r step 2`.
type InfixCallExpression struct {
	Span  position.Span
	Left  Expression
	Name  string
	Right Expression
}

func (i *InfixCallExpression) GetSpan() position.Span { return i.Span }
func (i *InfixCallExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", i.Left, i.Name, i.Right)
}
func (i *InfixCallExpression) expressionNode() {}

// CallExpression represents a call; Function is an Identifier for free
// functions or a MemberExpression for method-style calls.
type CallExpression struct {
	Span      position.Span
	Function  Expression
	Arguments []Expression
}

func (c *CallExpression) GetSpan() position.Span { return c.Span }
func (c *CallExpression) String() string {
	args := make([]string, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s(%s)", c.Function, strings.Join(args, ", "))
}
func (c *CallExpression) expressionNode() {}

// MemberExpression represents `object.member`
type MemberExpression struct {
	Span   position.Span
	Object Expression
	Member *Identifier
}

func (m *MemberExpression) GetSpan() position.Span { return m.Span }
func (m *MemberExpression) String() string         { return fmt.Sprintf("%s.%s", m.Object, m.Member.Value) }
func (m *MemberExpression) expressionNode()        {}
