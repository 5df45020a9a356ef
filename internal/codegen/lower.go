// Package codegen wires HIR -> MIR -> LIR lowering stages.
package codegen

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/constant"
	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/hir"
	"github.com/orizon-lang/rangeopt/internal/mir"
	"github.com/orizon-lang/rangeopt/internal/position"
	"github.com/orizon-lang/rangeopt/internal/rangeloop"
)

// Options controls lowering.
type Options struct {
	// Loops selects the range-loop generators that may be used.
	Loops rangeloop.Options
}

// DefaultOptions enables every range-loop generator.
func DefaultOptions() Options {
	return Options{Loops: rangeloop.DefaultOptions()}
}

// LoopDecision records how one for-loop was lowered.
type LoopDecision struct {
	Function string
	Variable string
	Span     position.Span
	Strategy rangeloop.Strategy
	Reason   string
}

func (d LoopDecision) String() string {
	return fmt.Sprintf("%s: %s: for %s: %s (%s)", d.Span, d.Function, d.Variable, d.Strategy, d.Reason)
}

// Report lists the loop decisions of a lowering in program order.
type Report struct {
	Decisions []LoopDecision
}

// Count returns the number of loops lowered with strategy s.
func (r *Report) Count(s rangeloop.Strategy) int {
	n := 0
	for _, d := range r.Decisions {
		if d.Strategy == s {
			n++
		}
	}
	return n
}

func (r *Report) String() string {
	var b strings.Builder
	for _, d := range r.Decisions {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// LowerProgram lowers every function of p to MIR.
func LowerProgram(p *hir.HIRProgram, opts Options) (*mir.Module, *Report, error) {
	report := &Report{}
	if p == nil {
		return &mir.Module{Name: "<nil>"}, report, nil
	}

	// one folder per program so constants are folded once
	if opts.Loops.Evaluator == nil {
		opts.Loops.Evaluator = constant.NewFolder()
	}

	m := &mir.Module{Name: moduleName(p.Filename)}
	for _, fn := range p.Functions {
		f, err := lowerFunction(fn, opts, report)
		if err != nil {
			return nil, nil, err
		}
		if err := mir.Verify(f); err != nil {
			return nil, nil, errors.Lowering(fn.Name, err.Error())
		}
		m.Functions = append(m.Functions, f)
	}

	return m, report, nil
}

func moduleName(filename string) string {
	if filename == "" {
		return "main"
	}
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".kt")
}

// retClass maps a return type to the class of returned values; Unit
// functions return nothing.
func retClass(t hir.TypeKind) mir.ValueClass {
	if t == hir.TypeKindUnit {
		return mir.ClassUnknown
	}
	return rangeloop.ClassOf(t)
}

// lowerer holds the state of one function. It implements
// rangeloop.ExprLowerer.
type lowerer struct {
	fn     *hir.HIRFunction
	b      *mir.Builder
	opts   Options
	report *Report
	slots  map[*hir.Symbol]mir.Value
	loops  []rangeloop.Targets
	err    error
}

func lowerFunction(fn *hir.HIRFunction, opts Options, report *Report) (*mir.Function, error) {
	l := &lowerer{
		fn:     fn,
		b:      mir.NewBuilder(fn.Name, retClass(fn.ReturnType)),
		opts:   opts,
		report: report,
		slots:  make(map[*hir.Symbol]mir.Value),
	}

	// parameters are copied to slots so every symbol is read through a load
	for _, p := range fn.Parameters {
		c := rangeloop.ClassOf(p.Type)
		v := l.b.AddParam(p.Name, c)
		slot := l.b.Alloca(p.Name, c)
		l.b.Store(slot, v)
		l.slots[p] = slot
	}

	if fn.Body != nil {
		l.block(fn.Body)
	}

	if l.err != nil {
		return nil, l.err
	}
	return l.b.Finish(), nil
}

func (l *lowerer) fail(format string, args ...interface{}) {
	if l.err == nil {
		l.err = errors.Lowering(l.fn.Name, fmt.Sprintf(format, args...))
	}
}

// Bind implements rangeloop.ExprLowerer.
func (l *lowerer) Bind(sym *hir.Symbol, slot mir.Value) {
	l.slots[sym] = slot
}

func (l *lowerer) block(bs *hir.HIRBlockStatement) {
	for _, s := range bs.Statements {
		l.stmt(s)
	}
}

func (l *lowerer) stmt(st hir.HIRStatement) {
	switch s := st.(type) {
	case *hir.HIRBlockStatement:
		l.block(s)

	case *hir.HIRVariableDeclaration:
		c := rangeloop.ClassOf(s.Symbol.Type)
		v := l.Expr(s.Value)
		slot := l.b.Alloca(s.Symbol.Name, c)
		l.b.Store(slot, l.b.Conv(v, c))
		l.slots[s.Symbol] = slot

	case *hir.HIRAssignStatement:
		slot, ok := l.slots[s.Symbol]
		if !ok {
			l.fail("assignment to unbound %s", s.Symbol.Name)
			return
		}
		l.b.Store(slot, l.b.Conv(l.Expr(s.Value), slot.Class))

	case *hir.HIRExpressionStatement:
		l.Expr(s.Expression)

	case *hir.HIRReturnStatement:
		if s.Value == nil {
			l.b.Ret(nil)
			return
		}
		v := l.b.Conv(l.Expr(s.Value), retClass(l.fn.ReturnType))
		l.b.Ret(&v)

	case *hir.HIRIfStatement:
		then := l.b.NewBlock("if_then")
		end := l.b.NewBlock("if_end")
		els := end
		if s.Else != nil {
			els = l.b.NewBlock("if_else")
		}

		l.b.CondBr(l.Expr(s.Condition), then, els)

		l.b.Place(then)
		l.stmt(s.Then)
		l.jumpTo(end)

		if s.Else != nil {
			l.b.Place(els)
			l.stmt(s.Else)
			l.jumpTo(end)
		}

		l.b.Place(end)

	case *hir.HIRWhileStatement:
		head := l.b.NewBlock("while_head")
		body := l.b.NewBlock("while_body")
		end := l.b.NewBlock("while_end")

		l.b.Br(head)
		l.b.Place(head)
		l.b.CondBr(l.Expr(s.Condition), body, end)

		l.b.Place(body)
		l.loops = append(l.loops, rangeloop.Targets{Continue: head, Break: end})
		l.stmt(s.Body)
		l.loops = l.loops[:len(l.loops)-1]
		l.jumpTo(head)

		l.b.Place(end)

	case *hir.HIRForInStatement:
		l.forIn(s)

	case *hir.HIRBreakStatement:
		if len(l.loops) == 0 {
			l.fail("break outside a loop")
			return
		}
		l.b.Br(l.loops[len(l.loops)-1].Break)

	case *hir.HIRContinueStatement:
		if len(l.loops) == 0 {
			l.fail("continue outside a loop")
			return
		}
		l.b.Br(l.loops[len(l.loops)-1].Continue)

	default:
		l.fail("unsupported statement %T", st)
	}
}

func (l *lowerer) jumpTo(next *mir.BasicBlock) {
	if !l.b.Terminated() {
		l.b.Br(next)
	}
}

// forIn lowers a for-loop with the generator the range-loop selector picks.
func (l *lowerer) forIn(s *hir.HIRForInStatement) {
	g := rangeloop.Plan(s.Iterable, l.opts.Loops)

	choice := g.Choice()
	l.report.Decisions = append(l.report.Decisions, LoopDecision{
		Function: l.fn.Name,
		Variable: s.Variable.Name,
		Span:     s.Span,
		Strategy: choice.Strategy(),
		Reason:   choice.Reason(),
	})

	g.Emit(l.b, l, s.Variable, func(t rangeloop.Targets) {
		l.loops = append(l.loops, t)
		l.stmt(s.Body)
		l.loops = l.loops[:len(l.loops)-1]
	})
}

// Expr implements rangeloop.ExprLowerer.
func (l *lowerer) Expr(e hir.HIRExpression) mir.Value {
	switch e := e.(type) {
	case *hir.HIRLiteral:
		return mir.ConstInt(e.Value, rangeloop.ClassOf(e.Kind))

	case *hir.HIRIdentifier:
		switch e.Symbol.Kind {
		case hir.SymbolConstant, hir.SymbolBuiltin:
			v, ok := l.opts.Loops.Evaluator.Evaluate(e)
			if !ok {
				l.fail("constant %s does not fold", e.Symbol.Name)
				return mir.ConstInt(0, rangeloop.ClassOf(e.Symbol.Type))
			}
			return mir.ConstInt(v.Raw, rangeloop.ClassOf(e.Symbol.Type))
		}

		slot, ok := l.slots[e.Symbol]
		if !ok {
			l.fail("use of unbound %s", e.Symbol.Name)
			return mir.ConstInt(0, rangeloop.ClassOf(e.Symbol.Type))
		}
		return l.b.Load(slot)

	case *hir.HIRConversion:
		return l.b.Conv(l.Expr(e.Operand), rangeloop.ClassOf(e.Type))

	case *hir.HIRUnaryExpression:
		v := l.Expr(e.Operand)
		c := rangeloop.ClassOf(e.Type)
		if e.Operator == "!" {
			return l.b.Cmp(mir.CmpEQ, v, mir.ConstInt(0, mir.ClassBool))
		}
		return l.b.BinOp(mir.OpSub, c, mir.ConstInt(0, c), v)

	case *hir.HIRBinaryExpression:
		return l.binary(e)

	case *hir.HIRCallExpression:
		return l.call(e)
	}

	l.fail("unsupported expression %T", e)
	return mir.Value{}
}

var binOps = map[string]mir.BinOpKind{
	"+": mir.OpAdd,
	"-": mir.OpSub,
	"*": mir.OpMul,
	"/": mir.OpDiv,
	"%": mir.OpRem,
}

var cmpPreds = map[string]mir.CmpPred{
	"==": mir.CmpEQ,
	"!=": mir.CmpNE,
	"<":  mir.CmpSLT,
	"<=": mir.CmpSLE,
	">":  mir.CmpSGT,
	">=": mir.CmpSGE,
}

func (l *lowerer) binary(e *hir.HIRBinaryExpression) mir.Value {
	if e.Operator == "&&" || e.Operator == "||" {
		return l.shortCircuit(e)
	}

	lhs := l.Expr(e.Left)
	rhs := l.Expr(e.Right)

	if pred, ok := cmpPreds[e.Operator]; ok {
		return l.b.Cmp(pred, lhs, rhs)
	}
	if op, ok := binOps[e.Operator]; ok {
		return l.b.BinOp(op, rangeloop.ClassOf(e.Type), lhs, rhs)
	}

	l.fail("unsupported operator %s", e.Operator)
	return mir.Value{}
}

// shortCircuit evaluates the right operand only when the left one does not
// decide the result.
func (l *lowerer) shortCircuit(e *hir.HIRBinaryExpression) mir.Value {
	res := l.b.Alloca("cond", mir.ClassBool)
	rhs := l.b.NewBlock("cond_rhs")
	short := l.b.NewBlock("cond_short")
	end := l.b.NewBlock("cond_end")

	lhs := l.Expr(e.Left)
	if e.Operator == "&&" {
		l.b.CondBr(lhs, rhs, short)
	} else {
		l.b.CondBr(lhs, short, rhs)
	}

	l.b.Place(short)
	decided := int64(0)
	if e.Operator == "||" {
		decided = 1
	}
	l.b.Store(res, mir.ConstInt(decided, mir.ClassBool))
	l.b.Br(end)

	l.b.Place(rhs)
	l.b.Store(res, l.Expr(e.Right))
	l.b.Br(end)

	l.b.Place(end)
	return l.b.Load(res)
}

var intrinsicCallees = map[hir.Intrinsic]string{
	hir.IntrinsicRangeTo:  mir.RuntimeRangeTo,
	hir.IntrinsicDownTo:   mir.RuntimeDownTo,
	hir.IntrinsicStep:     mir.RuntimeStep,
	hir.IntrinsicReversed: mir.RuntimeReversed,
	hir.IntrinsicEmit:     mir.RuntimeEmit,
	hir.IntrinsicPrintln:  mir.RuntimePrintln,
}

func (l *lowerer) call(e *hir.HIRCallExpression) mir.Value {
	var args []mir.Value
	if e.Receiver != nil {
		args = append(args, l.Expr(e.Receiver))
	}
	for _, a := range e.Arguments {
		args = append(args, l.Expr(a))
	}

	callee := e.Callee
	if e.Intrinsic != hir.IntrinsicNone {
		name, ok := intrinsicCallees[e.Intrinsic]
		if !ok {
			l.fail("unsupported intrinsic %s", e.Intrinsic)
			return mir.Value{}
		}
		callee = name
	}

	return l.b.Call(callee, retClass(e.Type), args...)
}
