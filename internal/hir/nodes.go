// HIR node implementations for the rangeopt language.
// Nodes carry resolved symbols and types; every implicit conversion is explicit
// in the tree so later phases never need to re-derive typing rules.

package hir

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/position"
)

// NodeID uniquely identifies an HIR node within a program.
type NodeID uint64

// HIRNode is implemented by every node of the tree.
type HIRNode interface {
	// GetID returns the unique identifier for this node.
	GetID() NodeID
	// GetSpan returns the source span covered by this node.
	GetSpan() position.Span
	// GetType returns the type of the node; statements are Unit.
	GetType() TypeKind
	String() string
}

// HIRStatement represents all statement nodes in the HIR.
type HIRStatement interface {
	HIRNode
	hirStatementNode()
}

// HIRExpression represents all expression nodes in the HIR.
type HIRExpression interface {
	HIRNode
	hirExpressionNode()
}

// =============================================================================
// Symbols
// =============================================================================

// SymbolKind classifies named entities.
type SymbolKind int

const (
	SymbolParameter SymbolKind = iota
	SymbolLocal
	SymbolLoopVariable
	SymbolConstant
	SymbolBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	case SymbolLoopVariable:
		return "loop variable"
	case SymbolConstant:
		return "constant"
	case SymbolBuiltin:
		return "builtin"
	}
	return "symbol"
}

// Symbol is a resolved name.
type Symbol struct {
	ID      int
	Name    string
	Kind    SymbolKind
	Type    TypeKind
	Mutable bool
	Span    position.Span
	// Value is the initializer of constants and builtins.
	Value HIRExpression
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s", s.Kind, s.Name, s.Type)
}

// =============================================================================
// Program structure
// =============================================================================

// HIRProgram is a resolved compilation unit.
type HIRProgram struct {
	Filename  string
	Constants []*Symbol
	Functions []*HIRFunction
}

// Function returns the function with the given name.
func (p *HIRProgram) Function(name string) *HIRFunction {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// HIRFunction represents a function declaration in HIR
type HIRFunction struct {
	ID         NodeID
	Name       string
	Parameters []*Symbol
	ReturnType TypeKind
	Body       *HIRBlockStatement
	Span       position.Span
}

func (fd *HIRFunction) GetID() NodeID          { return fd.ID }
func (fd *HIRFunction) GetSpan() position.Span { return fd.Span }
func (fd *HIRFunction) GetType() TypeKind      { return fd.ReturnType }
func (fd *HIRFunction) String() string {
	return fmt.Sprintf("HIRFunction{%s: %d params}", fd.Name, len(fd.Parameters))
}

// =============================================================================
// HIR Statements
// =============================================================================

// HIRBlockStatement represents a block statement in HIR
type HIRBlockStatement struct {
	ID         NodeID
	Statements []HIRStatement
	Span       position.Span
}

func (bs *HIRBlockStatement) GetID() NodeID          { return bs.ID }
func (bs *HIRBlockStatement) GetSpan() position.Span { return bs.Span }
func (bs *HIRBlockStatement) GetType() TypeKind      { return TypeKindUnit }
func (bs *HIRBlockStatement) hirStatementNode()      {}
func (bs *HIRBlockStatement) String() string {
	parts := make([]string, 0, len(bs.Statements))
	for _, s := range bs.Statements {
		parts = append(parts, s.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// HIRVariableDeclaration introduces a local
type HIRVariableDeclaration struct {
	ID     NodeID
	Symbol *Symbol
	Value  HIRExpression
	Span   position.Span
}

func (vd *HIRVariableDeclaration) GetID() NodeID          { return vd.ID }
func (vd *HIRVariableDeclaration) GetSpan() position.Span { return vd.Span }
func (vd *HIRVariableDeclaration) GetType() TypeKind      { return TypeKindUnit }
func (vd *HIRVariableDeclaration) hirStatementNode()      {}
func (vd *HIRVariableDeclaration) String() string {
	return fmt.Sprintf("%s = %s", vd.Symbol, vd.Value)
}

// HIRAssignStatement stores into a mutable local. Compound assignments are
// desugared into plain ones.
type HIRAssignStatement struct {
	ID     NodeID
	Symbol *Symbol
	Value  HIRExpression
	Span   position.Span
}

func (as *HIRAssignStatement) GetID() NodeID          { return as.ID }
func (as *HIRAssignStatement) GetSpan() position.Span { return as.Span }
func (as *HIRAssignStatement) GetType() TypeKind      { return TypeKindUnit }
func (as *HIRAssignStatement) hirStatementNode()      {}
func (as *HIRAssignStatement) String() string {
	return fmt.Sprintf("%s = %s", as.Symbol.Name, as.Value)
}

// HIRExpressionStatement represents an expression statement in HIR
type HIRExpressionStatement struct {
	ID         NodeID
	Expression HIRExpression
	Span       position.Span
}

func (es *HIRExpressionStatement) GetID() NodeID          { return es.ID }
func (es *HIRExpressionStatement) GetSpan() position.Span { return es.Span }
func (es *HIRExpressionStatement) GetType() TypeKind      { return TypeKindUnit }
func (es *HIRExpressionStatement) hirStatementNode()      {}
func (es *HIRExpressionStatement) String() string         { return es.Expression.String() }

// HIRReturnStatement represents a return statement in HIR
type HIRReturnStatement struct {
	ID    NodeID
	Value HIRExpression // nil in Unit functions
	Span  position.Span
}

func (rs *HIRReturnStatement) GetID() NodeID          { return rs.ID }
func (rs *HIRReturnStatement) GetSpan() position.Span { return rs.Span }
func (rs *HIRReturnStatement) GetType() TypeKind      { return TypeKindUnit }
func (rs *HIRReturnStatement) hirStatementNode()      {}
func (rs *HIRReturnStatement) String() string {
	if rs.Value != nil {
		return "return " + rs.Value.String()
	}
	return "return"
}

// HIRIfStatement represents an if statement in HIR
type HIRIfStatement struct {
	ID        NodeID
	Condition HIRExpression
	Then      HIRStatement
	Else      HIRStatement // may be nil
	Span      position.Span
}

func (is *HIRIfStatement) GetID() NodeID          { return is.ID }
func (is *HIRIfStatement) GetSpan() position.Span { return is.Span }
func (is *HIRIfStatement) GetType() TypeKind      { return TypeKindUnit }
func (is *HIRIfStatement) hirStatementNode()      {}
func (is *HIRIfStatement) String() string {
	if is.Else != nil {
		return fmt.Sprintf("if %s %s else %s", is.Condition, is.Then, is.Else)
	}
	return fmt.Sprintf("if %s %s", is.Condition, is.Then)
}

// HIRWhileStatement represents a while loop in HIR
type HIRWhileStatement struct {
	ID        NodeID
	Condition HIRExpression
	Body      HIRStatement
	Span      position.Span
}

func (ws *HIRWhileStatement) GetID() NodeID          { return ws.ID }
func (ws *HIRWhileStatement) GetSpan() position.Span { return ws.Span }
func (ws *HIRWhileStatement) GetType() TypeKind      { return TypeKindUnit }
func (ws *HIRWhileStatement) hirStatementNode()      {}
func (ws *HIRWhileStatement) String() string {
	return fmt.Sprintf("while %s %s", ws.Condition, ws.Body)
}

// HIRForInStatement iterates a progression. Variable is an immutable loop
// variable of the progression's element type.
type HIRForInStatement struct {
	ID       NodeID
	Variable *Symbol
	Iterable HIRExpression
	Body     HIRStatement
	Span     position.Span
}

func (fs *HIRForInStatement) GetID() NodeID          { return fs.ID }
func (fs *HIRForInStatement) GetSpan() position.Span { return fs.Span }
func (fs *HIRForInStatement) GetType() TypeKind      { return TypeKindUnit }
func (fs *HIRForInStatement) hirStatementNode()      {}
func (fs *HIRForInStatement) String() string {
	return fmt.Sprintf("for %s in %s %s", fs.Variable.Name, fs.Iterable, fs.Body)
}

// HIRBreakStatement exits the innermost loop
type HIRBreakStatement struct {
	ID   NodeID
	Span position.Span
}

func (bs *HIRBreakStatement) GetID() NodeID          { return bs.ID }
func (bs *HIRBreakStatement) GetSpan() position.Span { return bs.Span }
func (bs *HIRBreakStatement) GetType() TypeKind      { return TypeKindUnit }
func (bs *HIRBreakStatement) hirStatementNode()      {}
func (bs *HIRBreakStatement) String() string         { return "break" }

// HIRContinueStatement starts the next iteration of the innermost loop
type HIRContinueStatement struct {
	ID   NodeID
	Span position.Span
}

func (cs *HIRContinueStatement) GetID() NodeID          { return cs.ID }
func (cs *HIRContinueStatement) GetSpan() position.Span { return cs.Span }
func (cs *HIRContinueStatement) GetType() TypeKind      { return TypeKindUnit }
func (cs *HIRContinueStatement) hirStatementNode()      {}
func (cs *HIRContinueStatement) String() string         { return "continue" }

// =============================================================================
// HIR Expressions
// =============================================================================

// HIRLiteral is an integer, character or boolean literal. Value holds the
// integer value, the character ordinal, or 0/1.
type HIRLiteral struct {
	ID    NodeID
	Kind  TypeKind
	Value int64
	Span  position.Span
}

func (l *HIRLiteral) GetID() NodeID          { return l.ID }
func (l *HIRLiteral) GetSpan() position.Span { return l.Span }
func (l *HIRLiteral) GetType() TypeKind      { return l.Kind }
func (l *HIRLiteral) hirExpressionNode()     {}
func (l *HIRLiteral) String() string {
	switch l.Kind {
	case TypeKindBoolean:
		return fmt.Sprintf("%t", l.Value != 0)
	case TypeKindChar:
		return fmt.Sprintf("'\\u%04X'", l.Value)
	case TypeKindLong:
		return fmt.Sprintf("%dL", l.Value)
	}
	return fmt.Sprintf("%d", l.Value)
}

// HIRIdentifier is a reference to a resolved symbol
type HIRIdentifier struct {
	ID     NodeID
	Symbol *Symbol
	Span   position.Span
}

func (i *HIRIdentifier) GetID() NodeID          { return i.ID }
func (i *HIRIdentifier) GetSpan() position.Span { return i.Span }
func (i *HIRIdentifier) GetType() TypeKind      { return i.Symbol.Type }
func (i *HIRIdentifier) hirExpressionNode()     {}
func (i *HIRIdentifier) String() string         { return i.Symbol.Name }

// HIRUnaryExpression applies "-" to Int/Long or "!" to Boolean
type HIRUnaryExpression struct {
	ID       NodeID
	Operator string
	Operand  HIRExpression
	Type     TypeKind
	Span     position.Span
}

func (u *HIRUnaryExpression) GetID() NodeID          { return u.ID }
func (u *HIRUnaryExpression) GetSpan() position.Span { return u.Span }
func (u *HIRUnaryExpression) GetType() TypeKind      { return u.Type }
func (u *HIRUnaryExpression) hirExpressionNode()     {}
func (u *HIRUnaryExpression) String() string         { return fmt.Sprintf("(%s%s)", u.Operator, u.Operand) }

// HIRBinaryExpression is an operator whose operands have the same type, one
// of Int, Long or Boolean. Comparisons yield Boolean.
type HIRBinaryExpression struct {
	ID       NodeID
	Operator string
	Left     HIRExpression
	Right    HIRExpression
	Type     TypeKind
	Span     position.Span
}

func (b *HIRBinaryExpression) GetID() NodeID          { return b.ID }
func (b *HIRBinaryExpression) GetSpan() position.Span { return b.Span }
func (b *HIRBinaryExpression) GetType() TypeKind      { return b.Type }
func (b *HIRBinaryExpression) hirExpressionNode()     {}
func (b *HIRBinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator, b.Right)
}

// OperandType returns the common type of both operands.
func (b *HIRBinaryExpression) OperandType() TypeKind {
	return b.Left.GetType()
}

// IsComparison reports whether the operator yields a Boolean from numbers.
func (b *HIRBinaryExpression) IsComparison() bool {
	switch b.Operator {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

// HIRConversion converts between integral kinds. Implicit widenings inserted
// by the resolver have Explicit unset.
type HIRConversion struct {
	ID       NodeID
	Operand  HIRExpression
	Type     TypeKind
	Explicit bool
	Span     position.Span
}

func (c *HIRConversion) GetID() NodeID          { return c.ID }
func (c *HIRConversion) GetSpan() position.Span { return c.Span }
func (c *HIRConversion) GetType() TypeKind      { return c.Type }
func (c *HIRConversion) hirExpressionNode()     {}
func (c *HIRConversion) String() string {
	if c.Explicit {
		return fmt.Sprintf("%s.to%s()", c.Operand, c.Type)
	}
	return c.Operand.String()
}

// Intrinsic identifies a language-provided callee.
type Intrinsic int

const (
	// IntrinsicNone marks a call to a user function.
	IntrinsicNone Intrinsic = iota
	// IntrinsicRangeTo is `a..b`.
	IntrinsicRangeTo
	// IntrinsicDownTo is `a downTo b`.
	IntrinsicDownTo
	// IntrinsicStep is `p step n`.
	IntrinsicStep
	// IntrinsicReversed is `p.reversed()`.
	IntrinsicReversed
	// IntrinsicEmit appends its argument to the observable trace.
	IntrinsicEmit
	// IntrinsicPrintln prints its argument.
	IntrinsicPrintln
)

func (i Intrinsic) String() string {
	switch i {
	case IntrinsicNone:
		return "call"
	case IntrinsicRangeTo:
		return "rangeTo"
	case IntrinsicDownTo:
		return "downTo"
	case IntrinsicStep:
		return "step"
	case IntrinsicReversed:
		return "reversed"
	case IntrinsicEmit:
		return "emit"
	case IntrinsicPrintln:
		return "println"
	}
	return "intrinsic"
}

// IsRangeLiteral reports whether the intrinsic builds a progression from bounds.
func (i Intrinsic) IsRangeLiteral() bool {
	return i == IntrinsicRangeTo || i == IntrinsicDownTo
}

// HIRCallExpression is a resolved call. Receiver is set for member-style and
// infix intrinsics; range intrinsics have the start as Receiver and the end as
// the single argument. Callee names the user function when Intrinsic is
// IntrinsicNone.
type HIRCallExpression struct {
	ID        NodeID
	Intrinsic Intrinsic
	Callee    string
	Receiver  HIRExpression
	Arguments []HIRExpression
	Type      TypeKind
	Span      position.Span
}

func (c *HIRCallExpression) GetID() NodeID          { return c.ID }
func (c *HIRCallExpression) GetSpan() position.Span { return c.Span }
func (c *HIRCallExpression) GetType() TypeKind      { return c.Type }
func (c *HIRCallExpression) hirExpressionNode()     {}
func (c *HIRCallExpression) String() string {
	args := make([]string, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}

	switch c.Intrinsic {
	case IntrinsicRangeTo:
		return fmt.Sprintf("(%s..%s)", c.Receiver, strings.Join(args, ", "))
	case IntrinsicDownTo, IntrinsicStep:
		return fmt.Sprintf("(%s %s %s)", c.Receiver, c.Intrinsic, strings.Join(args, ", "))
	case IntrinsicReversed:
		return fmt.Sprintf("%s.reversed()", c.Receiver)
	case IntrinsicNone:
		return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", c.Intrinsic, strings.Join(args, ", "))
}

// Argument returns the sole argument of a call, or nil when the call does not
// have exactly one.
func (c *HIRCallExpression) Argument() HIRExpression {
	if len(c.Arguments) != 1 {
		return nil
	}
	return c.Arguments[0]
}
