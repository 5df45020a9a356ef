package hir

import (
	"fmt"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/parser"
	"github.com/orizon-lang/rangeopt/internal/position"
)

// signature is the resolved type of a user function.
type signature struct {
	params []TypeKind
	ret    TypeKind
}

// Resolver converts a parsed program into HIR, resolving names and types.
type Resolver struct {
	filename   string
	errors     []error
	nextID     NodeID
	nextSymbol int

	builtins  map[string]*Symbol
	constants map[string]*Symbol
	functions map[string]signature
	scopes    []map[string]*Symbol

	returnType TypeKind
	loopDepth  int
}

// NewResolver creates a resolver for one compilation unit.
func NewResolver(filename string) *Resolver {
	return &Resolver{
		filename:  filename,
		builtins:  newBuiltins(),
		constants: make(map[string]*Symbol),
		functions: make(map[string]signature),
	}
}

// Resolve converts prog into HIR. The returned program is complete only when
// no errors are reported.
func Resolve(prog *parser.Program, filename string) (*HIRProgram, []error) {
	return NewResolver(filename).Resolve(prog)
}

// Resolve converts prog into HIR.
func (r *Resolver) Resolve(prog *parser.Program) (*HIRProgram, []error) {
	out := &HIRProgram{Filename: r.filename}

	// Signatures first so functions may call each other in any order.
	for _, fn := range prog.Functions() {
		r.declareFunction(fn)
	}

	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *parser.ConstDeclaration:
			if sym := r.resolveConstant(d); sym != nil {
				out.Constants = append(out.Constants, sym)
			}
		case *parser.FunctionDeclaration:
			if fn := r.resolveFunction(d); fn != nil {
				out.Functions = append(out.Functions, fn)
			}
		}
	}

	return out, r.errors
}

func (r *Resolver) id() NodeID {
	r.nextID++
	return r.nextID
}

func (r *Resolver) errorf(span position.Span, format string, args ...interface{}) {
	r.errors = append(r.errors, errors.InvalidConstruct(span.Start, fmt.Sprintf(format, args...)))
}

func (r *Resolver) mismatch(span position.Span, format string, args ...interface{}) {
	r.errors = append(r.errors, errors.TypeMismatch(span.Start, fmt.Sprintf(format, args...)))
}

// ====== Scopes ======

func (r *Resolver) pushScope() { r.scopes = append(r.scopes, make(map[string]*Symbol)) }
func (r *Resolver) popScope()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name string, kind SymbolKind, typ TypeKind, mutable bool, span position.Span) *Symbol {
	scope := r.scopes[len(r.scopes)-1]
	if prev, ok := scope[name]; ok {
		r.errorf(span, "conflicting declarations: %s (previous at %s)", name, prev.Span.Start)
	}

	r.nextSymbol++
	sym := &Symbol{ID: r.nextSymbol, Name: name, Kind: kind, Type: typ, Mutable: mutable, Span: span}
	scope[name] = sym
	return sym
}

func (r *Resolver) lookup(name string) *Symbol {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if sym, ok := r.scopes[i][name]; ok {
			return sym
		}
	}
	return r.constants[name]
}

func (r *Resolver) resolveTypeName(t *parser.TypeName) TypeKind {
	kind, ok := LookupType(t.Name)
	if !ok {
		r.errors = append(r.errors, errors.UnresolvedName(t.Span.Start, t.Name))
		return TypeKindInvalid
	}
	return kind
}

// ====== Declarations ======

func (r *Resolver) declareFunction(fn *parser.FunctionDeclaration) {
	name := fn.Name.Value
	if _, ok := intrinsicFunctions[name]; ok {
		r.errorf(fn.Name.Span, "%s is a reserved function name", name)
		return
	}
	if _, ok := r.functions[name]; ok {
		r.errorf(fn.Name.Span, "conflicting overloads: %s", name)
		return
	}

	sig := signature{ret: TypeKindUnit}
	for _, p := range fn.Parameters {
		sig.params = append(sig.params, r.resolveTypeName(p.Type))
	}
	if fn.ReturnType != nil {
		sig.ret = r.resolveTypeName(fn.ReturnType)
	}

	r.functions[name] = sig
}

func (r *Resolver) resolveConstant(d *parser.ConstDeclaration) *Symbol {
	name := d.Name.Value
	if _, ok := r.constants[name]; ok {
		r.errorf(d.Name.Span, "conflicting declarations: %s", name)
		return nil
	}

	declared := TypeKindInvalid
	if d.Type != nil {
		if declared = r.resolveTypeName(d.Type); declared == TypeKindInvalid {
			return nil
		}
	}

	value := r.expression(d.Value, declared)
	if value == nil {
		return nil
	}

	typ := value.GetType()
	if declared != TypeKindInvalid {
		if value = r.coerce(value, declared); value == nil {
			return nil
		}
		typ = declared
	}

	if !typ.IsIntegral() && typ != TypeKindBoolean {
		r.mismatch(d.Span, "const val has type %s, which is not a primitive", typ)
		return nil
	}

	r.nextSymbol++
	sym := &Symbol{
		ID:    r.nextSymbol,
		Name:  name,
		Kind:  SymbolConstant,
		Type:  typ,
		Span:  d.Name.Span,
		Value: value,
	}
	r.constants[name] = sym
	return sym
}

func (r *Resolver) resolveFunction(d *parser.FunctionDeclaration) *HIRFunction {
	sig, ok := r.functions[d.Name.Value]
	if !ok {
		return nil
	}

	fn := &HIRFunction{
		ID:         r.id(),
		Name:       d.Name.Value,
		ReturnType: sig.ret,
		Span:       d.Span,
	}

	r.scopes = nil
	r.pushScope()
	defer r.popScope()

	for i, p := range d.Parameters {
		fn.Parameters = append(fn.Parameters,
			r.declare(p.Name.Value, SymbolParameter, sig.params[i], false, p.Span))
	}

	r.returnType = sig.ret
	r.loopDepth = 0
	fn.Body = r.block(d.Body, false)

	if sig.ret != TypeKindUnit && !terminates(fn.Body) {
		r.errorf(d.Body.Span, "a 'return' expression is required in function %s with return type %s", fn.Name, sig.ret)
	}

	return fn
}

// terminates reports whether control never falls off the end of s.
func terminates(s HIRStatement) bool {
	switch s := s.(type) {
	case *HIRReturnStatement:
		return true
	case *HIRBlockStatement:
		for _, inner := range s.Statements {
			if terminates(inner) {
				return true
			}
		}
	case *HIRIfStatement:
		return s.Else != nil && terminates(s.Then) && terminates(s.Else)
	}
	return false
}

// ====== Statements ======

func (r *Resolver) block(b *parser.BlockStatement, scoped bool) *HIRBlockStatement {
	if scoped {
		r.pushScope()
		defer r.popScope()
	}

	out := &HIRBlockStatement{ID: r.id(), Span: b.Span}
	for _, s := range b.Statements {
		if stmt := r.statement(s); stmt != nil {
			out.Statements = append(out.Statements, stmt)
		}
	}
	return out
}

// body resolves a branch or loop body in its own scope.
func (r *Resolver) body(s parser.Statement) HIRStatement {
	if b, ok := s.(*parser.BlockStatement); ok {
		return r.block(b, true)
	}

	r.pushScope()
	defer r.popScope()

	stmt := r.statement(s)
	if stmt == nil {
		return &HIRBlockStatement{ID: r.id(), Span: s.GetSpan()}
	}
	return stmt
}

func (r *Resolver) statement(s parser.Statement) HIRStatement {
	switch s := s.(type) {
	case *parser.BlockStatement:
		return r.block(s, true)
	case *parser.VariableDeclaration:
		return r.variableDeclaration(s)
	case *parser.AssignStatement:
		return r.assignment(s)
	case *parser.IfStatement:
		cond := r.condition(s.Condition)
		then := r.body(s.Then)
		var elseStmt HIRStatement
		if s.Else != nil {
			elseStmt = r.body(s.Else)
		}
		if cond == nil {
			return nil
		}
		return &HIRIfStatement{ID: r.id(), Condition: cond, Then: then, Else: elseStmt, Span: s.Span}
	case *parser.WhileStatement:
		cond := r.condition(s.Condition)
		r.loopDepth++
		body := r.body(s.Body)
		r.loopDepth--
		if cond == nil {
			return nil
		}
		return &HIRWhileStatement{ID: r.id(), Condition: cond, Body: body, Span: s.Span}
	case *parser.ForInStatement:
		return r.forIn(s)
	case *parser.BreakStatement:
		if r.loopDepth == 0 {
			r.errorf(s.Span, "'break' and 'continue' are only allowed inside a loop")
			return nil
		}
		return &HIRBreakStatement{ID: r.id(), Span: s.Span}
	case *parser.ContinueStatement:
		if r.loopDepth == 0 {
			r.errorf(s.Span, "'break' and 'continue' are only allowed inside a loop")
			return nil
		}
		return &HIRContinueStatement{ID: r.id(), Span: s.Span}
	case *parser.ReturnStatement:
		return r.returnStatement(s)
	case *parser.ExpressionStatement:
		expr := r.expression(s.Expression, TypeKindInvalid)
		if expr == nil {
			return nil
		}
		return &HIRExpressionStatement{ID: r.id(), Expression: expr, Span: s.Span}
	}

	r.errorf(s.GetSpan(), "unsupported statement %s", s)
	return nil
}

func (r *Resolver) condition(e parser.Expression) HIRExpression {
	cond := r.expression(e, TypeKindBoolean)
	if cond == nil {
		return nil
	}
	if cond.GetType() != TypeKindBoolean {
		r.mismatch(e.GetSpan(), "condition has type %s, Boolean was expected", cond.GetType())
		return nil
	}
	return cond
}

func (r *Resolver) variableDeclaration(s *parser.VariableDeclaration) HIRStatement {
	declared := TypeKindInvalid
	if s.Type != nil {
		declared = r.resolveTypeName(s.Type)
	}

	value := r.expression(s.Value, declared)
	if value != nil && declared != TypeKindInvalid {
		value = r.coerce(value, declared)
	}

	typ := declared
	if typ == TypeKindInvalid && value != nil {
		typ = value.GetType()
	}
	if typ == TypeKindUnit {
		r.mismatch(s.Span, "variable %s cannot have type Unit", s.Name.Value)
		value = nil
	}

	// Declared even on error so later uses do not cascade.
	sym := r.declare(s.Name.Value, SymbolLocal, typ, s.Mutable, s.Name.Span)
	if value == nil {
		return nil
	}

	return &HIRVariableDeclaration{ID: r.id(), Symbol: sym, Value: value, Span: s.Span}
}

var compoundOperators = map[string]string{
	"+=": "+",
	"-=": "-",
	"*=": "*",
}

func (r *Resolver) assignment(s *parser.AssignStatement) HIRStatement {
	sym := r.lookup(s.Target.Value)
	if sym == nil {
		r.errors = append(r.errors, errors.UnresolvedName(s.Target.Span.Start, s.Target.Value))
		return nil
	}
	if sym.Kind != SymbolLocal || !sym.Mutable {
		r.errorf(s.Span, "%s %s cannot be reassigned", sym.Kind, sym.Name)
		return nil
	}

	valueExpr := s.Value
	if op, ok := compoundOperators[s.Operator]; ok {
		valueExpr = &parser.BinaryExpression{Span: s.Span, Left: s.Target, Operator: op, Right: s.Value}
	}

	value := r.expression(valueExpr, sym.Type)
	if value == nil {
		return nil
	}
	if value = r.coerce(value, sym.Type); value == nil {
		return nil
	}

	return &HIRAssignStatement{ID: r.id(), Symbol: sym, Value: value, Span: s.Span}
}

func (r *Resolver) forIn(s *parser.ForInStatement) HIRStatement {
	iterable := r.expression(s.Iterable, TypeKindInvalid)
	if iterable != nil && !iterable.GetType().IsProgression() {
		r.mismatch(s.Iterable.GetSpan(), "for-loop range must have an 'iterator()' method, got %s", iterable.GetType())
		iterable = nil
	}

	elem := TypeKindInvalid
	if iterable != nil {
		elem = iterable.GetType().ElementKind()
	}

	r.pushScope()
	defer r.popScope()

	variable := r.declare(s.Variable.Value, SymbolLoopVariable, elem, false, s.Variable.Span)

	r.loopDepth++
	body := r.body(s.Body)
	r.loopDepth--

	if iterable == nil {
		return nil
	}

	return &HIRForInStatement{ID: r.id(), Variable: variable, Iterable: iterable, Body: body, Span: s.Span}
}

func (r *Resolver) returnStatement(s *parser.ReturnStatement) HIRStatement {
	if s.Value == nil {
		if r.returnType != TypeKindUnit {
			r.mismatch(s.Span, "this function must return a value of type %s", r.returnType)
			return nil
		}
		return &HIRReturnStatement{ID: r.id(), Span: s.Span}
	}

	if r.returnType == TypeKindUnit {
		r.mismatch(s.Span, "a Unit function cannot return a value")
		return nil
	}

	value := r.expression(s.Value, r.returnType)
	if value == nil {
		return nil
	}
	if value = r.coerce(value, r.returnType); value == nil {
		return nil
	}

	return &HIRReturnStatement{ID: r.id(), Value: value, Span: s.Span}
}

// ====== Expressions ======

// coerce converts e to target: integer literals retype when they fit, and
// integral values widen implicitly. Anything else is a type mismatch.
func (r *Resolver) coerce(e HIRExpression, target TypeKind) HIRExpression {
	from := e.GetType()
	if from == target || target == TypeKindInvalid {
		return e
	}

	if lit, ok := e.(*HIRLiteral); ok && lit.Kind == TypeKindInt && target.IsNumeric() && target.Fits(lit.Value) {
		return &HIRLiteral{ID: lit.ID, Kind: target, Value: lit.Value, Span: lit.Span}
	}

	if from.IsNumeric() && target.IsNumeric() && target.Bits() > from.Bits() {
		return r.convert(e, target)
	}

	r.mismatch(e.GetSpan(), "type mismatch: inferred type is %s but %s was expected", from, target)
	return nil
}

// convert wraps e in an implicit conversion unless it already has type to.
func (r *Resolver) convert(e HIRExpression, to TypeKind) HIRExpression {
	if e.GetType() == to {
		return e
	}
	return &HIRConversion{ID: r.id(), Operand: e, Type: to, Span: e.GetSpan()}
}

// expression resolves e. expected guides the typing of integer literals and
// may be TypeKindInvalid.
func (r *Resolver) expression(e parser.Expression, expected TypeKind) HIRExpression {
	switch e := e.(type) {
	case *parser.IntegerLiteral:
		return r.integerLiteral(e.Value, e.Long, e.Span)
	case *parser.CharLiteral:
		return &HIRLiteral{ID: r.id(), Kind: TypeKindChar, Value: int64(e.Value), Span: e.Span}
	case *parser.BooleanLiteral:
		v := int64(0)
		if e.Value {
			v = 1
		}
		return &HIRLiteral{ID: r.id(), Kind: TypeKindBoolean, Value: v, Span: e.Span}
	case *parser.Identifier:
		sym := r.lookup(e.Value)
		if sym == nil {
			r.errors = append(r.errors, errors.UnresolvedName(e.Span.Start, e.Value))
			return nil
		}
		if sym.Type == TypeKindInvalid {
			return nil
		}
		return &HIRIdentifier{ID: r.id(), Symbol: sym, Span: e.Span}
	case *parser.UnaryExpression:
		return r.unary(e, expected)
	case *parser.BinaryExpression:
		return r.binary(e)
	case *parser.RangeExpression:
		return r.rangeLiteral(IntrinsicRangeTo, e.Start, e.End, e.Span)
	case *parser.InfixCallExpression:
		return r.infixCall(e)
	case *parser.CallExpression:
		return r.call(e)
	case *parser.MemberExpression:
		return r.member(e)
	}

	r.errorf(e.GetSpan(), "unsupported expression %s", e)
	return nil
}

// integerLiteral types a literal as Int unless it is L-suffixed or does not
// fit in 32 bits.
func (r *Resolver) integerLiteral(v int64, long bool, span position.Span) HIRExpression {
	kind := TypeKindInt
	if long || !TypeKindInt.Fits(v) {
		kind = TypeKindLong
	}
	return &HIRLiteral{ID: r.id(), Kind: kind, Value: v, Span: span}
}

func (r *Resolver) unary(e *parser.UnaryExpression, expected TypeKind) HIRExpression {
	// -2147483648 is an Int literal even though 2147483648 alone is a Long.
	if lit, ok := e.Operand.(*parser.IntegerLiteral); ok && e.Operator == "-" {
		return r.integerLiteral(-lit.Value, lit.Long, e.Span)
	}

	operand := r.expression(e.Operand, expected)
	if operand == nil {
		return nil
	}
	typ := operand.GetType()

	switch e.Operator {
	case "!":
		if typ != TypeKindBoolean {
			r.mismatch(e.Span, "operator '!' cannot be applied to %s", typ)
			return nil
		}
		return &HIRUnaryExpression{ID: r.id(), Operator: "!", Operand: operand, Type: TypeKindBoolean, Span: e.Span}
	case "-", "+":
		if !typ.IsNumeric() {
			r.mismatch(e.Span, "operator '%s' cannot be applied to %s", e.Operator, typ)
			return nil
		}
		if typ != TypeKindLong {
			operand = r.convert(operand, TypeKindInt)
			typ = TypeKindInt
		}
		if e.Operator == "+" {
			return operand
		}
		return &HIRUnaryExpression{ID: r.id(), Operator: "-", Operand: operand, Type: typ, Span: e.Span}
	}

	r.errorf(e.Span, "unknown operator %s", e.Operator)
	return nil
}

// commonNumeric returns Long when either side is Long and Int otherwise.
func commonNumeric(a, b TypeKind) TypeKind {
	if a == TypeKindLong || b == TypeKindLong {
		return TypeKindLong
	}
	return TypeKindInt
}

func (r *Resolver) binary(e *parser.BinaryExpression) HIRExpression {
	left := r.expression(e.Left, TypeKindInvalid)
	right := r.expression(e.Right, TypeKindInvalid)
	if left == nil || right == nil {
		return nil
	}
	lt, rt := left.GetType(), right.GetType()

	node := func(op string, l, rr HIRExpression, typ TypeKind) *HIRBinaryExpression {
		return &HIRBinaryExpression{ID: r.id(), Operator: op, Left: l, Right: rr, Type: typ, Span: e.Span}
	}
	invalid := func() HIRExpression {
		r.mismatch(e.Span, "operator '%s' cannot be applied to %s and %s", e.Operator, lt, rt)
		return nil
	}

	switch e.Operator {
	case "&&", "||":
		if lt != TypeKindBoolean || rt != TypeKindBoolean {
			return invalid()
		}
		return node(e.Operator, left, right, TypeKindBoolean)

	case "==", "!=", "<", "<=", ">", ">=":
		switch {
		case lt == TypeKindBoolean && rt == TypeKindBoolean && (e.Operator == "==" || e.Operator == "!="):
			return node(e.Operator, left, right, TypeKindBoolean)
		case lt == TypeKindChar && rt == TypeKindChar:
			// Ordinals fit in Int, so a signed Int comparison orders chars.
			return node(e.Operator, r.convert(left, TypeKindInt), r.convert(right, TypeKindInt), TypeKindBoolean)
		case lt.IsNumeric() && rt.IsNumeric():
			common := commonNumeric(lt, rt)
			return node(e.Operator, r.convert(left, common), r.convert(right, common), TypeKindBoolean)
		}
		return invalid()

	case "+", "-", "*", "/", "%":
		switch {
		case lt == TypeKindChar && rt.IsIntLike() && (e.Operator == "+" || e.Operator == "-"):
			sum := node(e.Operator, r.convert(left, TypeKindInt), r.convert(right, TypeKindInt), TypeKindInt)
			return r.convert(sum, TypeKindChar)
		case lt == TypeKindChar && rt == TypeKindChar && e.Operator == "-":
			return node("-", r.convert(left, TypeKindInt), r.convert(right, TypeKindInt), TypeKindInt)
		case lt.IsNumeric() && rt.IsNumeric():
			common := commonNumeric(lt, rt)
			return node(e.Operator, r.convert(left, common), r.convert(right, common), common)
		}
		return invalid()
	}

	r.errorf(e.Span, "unknown operator %s", e.Operator)
	return nil
}

// rangeLiteral resolves `start..end` and `start downTo end`.
func (r *Resolver) rangeLiteral(intrinsic Intrinsic, startExpr, endExpr parser.Expression, span position.Span) HIRExpression {
	start := r.expression(startExpr, TypeKindInvalid)
	end := r.expression(endExpr, TypeKindInvalid)
	if start == nil || end == nil {
		return nil
	}
	st, et := start.GetType(), end.GetType()

	var elem TypeKind
	switch {
	case st == TypeKindChar && et == TypeKindChar:
		elem = TypeKindChar
	case st.IsNumeric() && et.IsNumeric():
		elem = commonNumeric(st, et)
	default:
		r.mismatch(span, "%s is not defined for %s and %s", intrinsic, st, et)
		return nil
	}

	return &HIRCallExpression{
		ID:        r.id(),
		Intrinsic: intrinsic,
		Receiver:  r.convert(start, elem),
		Arguments: []HIRExpression{r.convert(end, elem)},
		Type:      ProgressionOf(elem),
		Span:      span,
	}
}

func (r *Resolver) infixCall(e *parser.InfixCallExpression) HIRExpression {
	switch e.Name {
	case "downTo":
		return r.rangeLiteral(IntrinsicDownTo, e.Left, e.Right, e.Span)
	case "step":
		progression := r.expression(e.Left, TypeKindInvalid)
		if progression == nil {
			return nil
		}
		typ := progression.GetType()
		if !typ.IsProgression() {
			r.mismatch(e.Span, "step is not defined for %s", typ)
			return nil
		}

		step := r.expression(e.Right, typ.StepKind())
		if step == nil {
			return nil
		}
		if step = r.coerce(step, typ.StepKind()); step == nil {
			return nil
		}

		return &HIRCallExpression{
			ID:        r.id(),
			Intrinsic: IntrinsicStep,
			Receiver:  progression,
			Arguments: []HIRExpression{step},
			Type:      typ,
			Span:      e.Span,
		}
	}

	r.errors = append(r.errors, errors.UnresolvedName(e.Span.Start, e.Name))
	return nil
}

func (r *Resolver) call(e *parser.CallExpression) HIRExpression {
	switch fn := e.Function.(type) {
	case *parser.Identifier:
		if intrinsic, ok := intrinsicFunctions[fn.Value]; ok {
			return r.intrinsicCall(intrinsic, fn.Value, e)
		}

		sig, ok := r.functions[fn.Value]
		if !ok {
			r.errors = append(r.errors, errors.UnresolvedName(fn.Span.Start, fn.Value))
			return nil
		}

		if len(e.Arguments) != len(sig.params) {
			r.mismatch(e.Span, "%s expects %d arguments, got %d", fn.Value, len(sig.params), len(e.Arguments))
			return nil
		}

		args := make([]HIRExpression, 0, len(e.Arguments))
		for i, a := range e.Arguments {
			arg := r.expression(a, sig.params[i])
			if arg == nil {
				return nil
			}
			if arg = r.coerce(arg, sig.params[i]); arg == nil {
				return nil
			}
			args = append(args, arg)
		}

		return &HIRCallExpression{
			ID:        r.id(),
			Intrinsic: IntrinsicNone,
			Callee:    fn.Value,
			Arguments: args,
			Type:      sig.ret,
			Span:      e.Span,
		}

	case *parser.MemberExpression:
		receiver := r.expression(fn.Object, TypeKindInvalid)
		if receiver == nil {
			return nil
		}
		typ := receiver.GetType()
		name := fn.Member.Value

		if len(e.Arguments) != 0 {
			r.mismatch(e.Span, "%s takes no arguments", name)
			return nil
		}

		if to, ok := conversionMembers[name]; ok && typ.IsIntegral() {
			return &HIRConversion{ID: r.id(), Operand: receiver, Type: to, Explicit: true, Span: e.Span}
		}

		if name == "reversed" && typ.IsProgression() {
			return &HIRCallExpression{
				ID:        r.id(),
				Intrinsic: IntrinsicReversed,
				Receiver:  receiver,
				Type:      typ,
				Span:      e.Span,
			}
		}

		r.errors = append(r.errors, errors.UnresolvedName(fn.Member.Span.Start, fmt.Sprintf("%s.%s", typ, name)))
		return nil
	}

	r.errorf(e.Span, "expression %s cannot be invoked as a function", e.Function)
	return nil
}

func (r *Resolver) intrinsicCall(intrinsic Intrinsic, name string, e *parser.CallExpression) HIRExpression {
	if len(e.Arguments) != 1 {
		r.mismatch(e.Span, "%s expects 1 argument, got %d", name, len(e.Arguments))
		return nil
	}

	arg := r.expression(e.Arguments[0], TypeKindInvalid)
	if arg == nil {
		return nil
	}
	if typ := arg.GetType(); !typ.IsIntegral() && typ != TypeKindBoolean {
		r.mismatch(e.Span, "%s is not defined for %s", name, typ)
		return nil
	}

	return &HIRCallExpression{
		ID:        r.id(),
		Intrinsic: intrinsic,
		Callee:    name,
		Arguments: []HIRExpression{arg},
		Type:      TypeKindUnit,
		Span:      e.Span,
	}
}

func (r *Resolver) member(e *parser.MemberExpression) HIRExpression {
	// Type companions such as Int.MAX_VALUE, unless the type name is shadowed.
	if obj, ok := e.Object.(*parser.Identifier); ok && r.lookup(obj.Value) == nil {
		name := obj.Value + "." + e.Member.Value
		if sym, ok := r.builtins[name]; ok {
			return &HIRIdentifier{ID: r.id(), Symbol: sym, Span: e.Span}
		}
		r.errors = append(r.errors, errors.UnresolvedName(e.Span.Start, name))
		return nil
	}

	receiver := r.expression(e.Object, TypeKindInvalid)
	if receiver == nil {
		return nil
	}

	if e.Member.Value == "code" && receiver.GetType() == TypeKindChar {
		return &HIRConversion{ID: r.id(), Operand: receiver, Type: TypeKindInt, Explicit: true, Span: e.Span}
	}

	r.errors = append(r.errors, errors.UnresolvedName(e.Member.Span.Start,
		fmt.Sprintf("%s.%s", receiver.GetType(), e.Member.Value)))
	return nil
}
