package rangeloop

import (
	"fmt"
	"math"

	"github.com/orizon-lang/rangeopt/internal/constant"
	"github.com/orizon-lang/rangeopt/internal/hir"
)

// Width is the storage width of an end literal.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// EndLiteral is a compile-time end bound widened to its native loop width:
// byte, short, int and char (by its unsigned ordinal) to 32 bits, long to 64.
type EndLiteral struct {
	Kind  constant.Kind
	Width Width
	Value int64
}

func (l EndLiteral) String() string {
	return constant.Make(l.Kind, l.Value).String()
}

// endLiteral converts a constant to an end literal. Boolean is the only kind
// that is not an integer literal.
func endLiteral(v constant.Value) (EndLiteral, bool) {
	switch v.Kind {
	case constant.KindByte, constant.KindShort, constant.KindInt:
		return EndLiteral{Kind: v.Kind, Width: Width32, Value: int64(int32(v.Raw))}, true
	case constant.KindChar:
		return EndLiteral{Kind: v.Kind, Width: Width32, Value: int64(uint16(v.Raw))}, true
	case constant.KindLong:
		return EndLiteral{Kind: v.Kind, Width: Width64, Value: v.Raw}, true
	case constant.KindBoolean:
		return EndLiteral{}, false
	}
	return EndLiteral{}, false
}

// limits returns the values a counted loop of this kind can never step past.
// Byte and short loops run on an Int induction variable.
func (l EndLiteral) limits() (lo, hi int64) {
	switch l.Kind {
	case constant.KindChar:
		return 0, math.MaxUint16
	case constant.KindLong:
		return math.MinInt64, math.MaxInt64
	}
	return math.MinInt32, math.MaxInt32
}

// Prohibited reports whether a unit step in direction d would have to move
// past the literal's representable range to leave the loop.
func (l EndLiteral) Prohibited(d Direction) bool {
	lo, hi := l.limits()
	if d == Ascending {
		return l.Value == hi
	}
	return l.Value == lo
}

// Strategy names a loop generator.
type Strategy int

const (
	StrategyGeneric Strategy = iota
	StrategyDefinitelySafe
	StrategyConstBounded
)

func (s Strategy) String() string {
	switch s {
	case StrategyConstBounded:
		return "const-bounded"
	case StrategyDefinitelySafe:
		return "definitely-safe"
	}
	return "generic"
}

// Choice is the outcome of classifying one loop. It is one of
// ConstBoundedLoop, DefinitelySafeProgressionLoop or GenericProgressionLoop.
type Choice interface {
	Strategy() Strategy
	// Reason explains the choice for reports.
	Reason() string
	isChoice()
}

// ConstBoundedLoop iterates from Start to the literal End by Step.
type ConstBoundedLoop struct {
	Start   hir.HIRExpression
	End     EndLiteral
	Step    Direction
	Element hir.TypeKind
}

// DefinitelySafeProgressionLoop iterates over Bounds by Step with a run-time
// end value.
type DefinitelySafeProgressionLoop struct {
	Bounds  BoundedValue
	Step    Direction
	Element hir.TypeKind
	Why     string
}

// GenericProgressionLoop iterates a progression object built at run time
// from Iterable, reversed first when Reversed is set.
type GenericProgressionLoop struct {
	Iterable hir.HIRExpression
	Reversed bool
	Element  hir.TypeKind
	Why      string
}

func (ConstBoundedLoop) Strategy() Strategy              { return StrategyConstBounded }
func (DefinitelySafeProgressionLoop) Strategy() Strategy { return StrategyDefinitelySafe }
func (GenericProgressionLoop) Strategy() Strategy        { return StrategyGeneric }

func (ConstBoundedLoop) isChoice()              {}
func (DefinitelySafeProgressionLoop) isChoice() {}
func (GenericProgressionLoop) isChoice()        {}

func (c ConstBoundedLoop) Reason() string {
	return fmt.Sprintf("%s to constant %s", c.Step, c.End)
}

func (c DefinitelySafeProgressionLoop) Reason() string { return c.Why }
func (c GenericProgressionLoop) Reason() string        { return c.Why }

// Options switches individual generators off. Disabling a generator moves
// its loops to the next more general one.
type Options struct {
	// Evaluator answers constant queries; a fresh constant.Folder is used
	// when nil.
	Evaluator         constant.Evaluator
	ConstBounded      bool
	SimpleProgression bool
	// Reversed enables specialization of Backward traversals.
	Reversed bool
}

// DefaultOptions enables every generator.
func DefaultOptions() Options {
	return Options{ConstBounded: true, SimpleProgression: true, Reversed: true}
}

func (o Options) evaluator() constant.Evaluator {
	if o.Evaluator == nil {
		return constant.NewFolder()
	}
	return o.Evaluator
}

// Classify decides how to lower traversal t of rc.
func Classify(rc *RangeConstruct, t Traversal, opts Options) Choice {
	generic := GenericProgressionLoop{
		Iterable: rc.Source,
		Reversed: (t == Backward) != rc.SourceReversed,
		Element:  rc.Element,
	}

	bounds, ok := rc.Bounds(t)
	if !ok {
		generic.Why = "range call has no end bound"
		return generic
	}

	if t == Backward && !opts.Reversed {
		generic.Why = "reversed loops are not specialized"
		return generic
	}

	ev := opts.evaluator()
	if why, ok := unitSteps(rc, ev); !ok {
		generic.Why = why
		return generic
	}

	dir := rc.Direction(t)

	if opts.ConstBounded {
		lit, why := constantEnd(rc, t, dir, ev)
		if why == "" {
			return ConstBoundedLoop{Start: bounds.Start, End: lit, Step: dir, Element: rc.Element}
		}
		if opts.SimpleProgression {
			return DefinitelySafeProgressionLoop{Bounds: bounds, Step: dir, Element: rc.Element, Why: why}
		}
	}

	if opts.SimpleProgression {
		return DefinitelySafeProgressionLoop{Bounds: bounds, Step: dir, Element: rc.Element, Why: "const-bounded loops are disabled"}
	}

	generic.Why = "simple progression loops are disabled"
	return generic
}

// unitSteps checks that every step applied to the range is the constant 1.
func unitSteps(rc *RangeConstruct, ev constant.Evaluator) (string, bool) {
	for _, s := range rc.Steps {
		v, ok := ev.Evaluate(s)
		if !ok {
			return "step is not a compile-time constant", false
		}
		if !v.IsInteger() || v.Raw != 1 {
			return fmt.Sprintf("step %s is not 1", v), false
		}
	}
	return "", true
}

// constantEnd returns the end literal of traversal t, or a non-empty reason
// why the const-bounded generator does not apply.
func constantEnd(rc *RangeConstruct, t Traversal, dir Direction, ev constant.Evaluator) (EndLiteral, string) {
	end, ok := rc.endBound(t)
	if !ok {
		return EndLiteral{}, "range call has no end bound"
	}

	v, ok := ev.Evaluate(end)
	if !ok {
		return EndLiteral{}, "end bound is not a compile-time constant"
	}

	lit, ok := endLiteral(v)
	if !ok {
		return EndLiteral{}, fmt.Sprintf("end bound %s is not an integer literal", v)
	}

	if lit.Prohibited(dir) {
		return EndLiteral{}, fmt.Sprintf("end bound %s is the %s limit of %s", lit, boundName(dir), lit.Kind)
	}

	return lit, ""
}

func boundName(d Direction) string {
	if d == Ascending {
		return "upper"
	}
	return "lower"
}
