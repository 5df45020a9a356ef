package rangeloop

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/orizon-lang/rangeopt/internal/constant"
	"github.com/orizon-lang/rangeopt/internal/hir"
	"github.com/orizon-lang/rangeopt/internal/parser"
)

// forLoop resolves a main function looping over iterable. Top-level const
// declarations in decls precede main; anything else is a local of main.
func forLoop(t *testing.T, decls, iterable string) *hir.HIRForInStatement {
	t.Helper()

	top, locals := "", decls
	if strings.HasPrefix(decls, "const ") {
		top, locals = decls, ""
	}

	src := top + "\nfun main(n: Int) {\n    val someVar = 'q'\n    val p = 0..10\n    " + locals +
		"\n    for (x in " + iterable + ") emit(x)\n}\n"
	prog, errs := parser.ParseSource(src, "loop.kt")
	if len(errs) > 0 {
		t.Fatalf("Unexpected parse errors: %v", errs)
	}

	h, errs := hir.Resolve(prog, "loop.kt")
	if len(errs) > 0 {
		t.Fatalf("Unexpected resolve errors: %v", errs)
	}

	for _, s := range h.Function("main").Body.Statements {
		if loop, ok := s.(*hir.HIRForInStatement); ok {
			return loop
		}
	}
	t.Fatalf("no for-in statement")
	return nil
}

func TestPlanScenarios(t *testing.T) {
	tests := []struct {
		name     string
		decls    string
		iterable string
		strategy Strategy
		end      string
		step     Direction
		reason   string
	}{
		{"int literal end", "", "0..10", StrategyConstBounded, "10", Ascending, ""},
		{"int max end", "", "0..Int.MAX_VALUE", StrategyDefinitelySafe, "", Ascending, "upper limit"},
		{"downTo zero", "", "5 downTo 0", StrategyConstBounded, "0", Descending, ""},
		{"downTo int min", "", "10 downTo Int.MIN_VALUE", StrategyDefinitelySafe, "", Descending, "lower limit"},
		{"char to variable", "", "'a'..someVar", StrategyDefinitelySafe, "", Ascending, "not a compile-time constant"},
		{"long max end", "", "0L..Long.MAX_VALUE", StrategyDefinitelySafe, "", Ascending, "upper limit"},
		{"long min end", "", "10L downTo Long.MIN_VALUE", StrategyDefinitelySafe, "", Descending, "lower limit"},
		{"long literal end", "", "0L..100L", StrategyConstBounded, "100L", Ascending, ""},
		{"char literal end", "", "'a'..'z'", StrategyConstBounded, "'z'", Ascending, ""},
		{"char max end", "", "'a'..Char.MAX_VALUE", StrategyDefinitelySafe, "", Ascending, "upper limit"},
		{"char min end", "", "'z' downTo Char.MIN_VALUE", StrategyDefinitelySafe, "", Descending, "lower limit"},
		{"byte max is not int max", "val b: Byte = 0", "b..Byte.MAX_VALUE", StrategyConstBounded, "127", Ascending, ""},
		{"int max start is fine", "", "Int.MAX_VALUE downTo 0", StrategyConstBounded, "0", Descending, ""},
		{"const val end", "const val N = 100", "0..N", StrategyConstBounded, "100", Ascending, ""},
		{"parameter end", "", "0..n", StrategyDefinitelySafe, "", Ascending, "not a compile-time constant"},
		{"reversed range", "", "(0..10).reversed()", StrategyConstBounded, "0", Descending, ""},
		{"reversed to int min", "", "(Int.MIN_VALUE..5).reversed()", StrategyDefinitelySafe, "", Descending, "lower limit"},
		{"reversed downTo", "", "(5 downTo n).reversed()", StrategyConstBounded, "5", Ascending, ""},
		{"double reversal", "", "(0..10).reversed().reversed()", StrategyConstBounded, "10", Ascending, ""},
		{"step one", "", "0..10 step 1", StrategyConstBounded, "10", Ascending, ""},
		{"reversed step one", "", "(0..10 step 1).reversed()", StrategyConstBounded, "0", Descending, ""},
		{"step two", "", "0..10 step 2", StrategyGeneric, "", Ascending, "step 2 is not 1"},
		{"variable step", "", "0..10 step n", StrategyGeneric, "", Ascending, "step is not a compile-time constant"},
		{"progression variable", "", "p", StrategyGeneric, "", Ascending, "not a range literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := forLoop(t, tt.decls, tt.iterable)
			g := Plan(loop.Iterable, DefaultOptions())
			c := g.Choice()

			if c.Strategy() != tt.strategy {
				t.Fatalf("Expected %s, got %s (%s)", tt.strategy, c.Strategy(), c.Reason())
			}

			if tt.reason != "" && !strings.Contains(c.Reason(), tt.reason) {
				t.Errorf("Expected reason containing %q, got %q", tt.reason, c.Reason())
			}

			switch c := c.(type) {
			case ConstBoundedLoop:
				if got := c.End.String(); got != tt.end {
					t.Errorf("Expected end %s, got %s", tt.end, got)
				}
				if c.Step != tt.step {
					t.Errorf("Expected %s, got %s", tt.step, c.Step)
				}
			case DefinitelySafeProgressionLoop:
				if c.Step != tt.step {
					t.Errorf("Expected %s, got %s", tt.step, c.Step)
				}
				if !c.Bounds.StartInclusive || !c.Bounds.EndInclusive {
					t.Errorf("Expected inclusive bounds, got %+v", c.Bounds)
				}
			}
		})
	}
}

func TestProhibitedBoundary(t *testing.T) {
	tests := []struct {
		kind   constant.Kind
		lo, hi int64
	}{
		{constant.KindByte, math.MinInt32, math.MaxInt32},
		{constant.KindShort, math.MinInt32, math.MaxInt32},
		{constant.KindInt, math.MinInt32, math.MaxInt32},
		{constant.KindChar, 0, math.MaxUint16},
		{constant.KindLong, math.MinInt64, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			lit := func(v int64) EndLiteral { return EndLiteral{Kind: tt.kind, Value: v} }

			if !lit(tt.hi).Prohibited(Ascending) {
				t.Errorf("Expected %d to be prohibited ascending", tt.hi)
			}
			if !lit(tt.lo).Prohibited(Descending) {
				t.Errorf("Expected %d to be prohibited descending", tt.lo)
			}
			if lit(tt.hi).Prohibited(Descending) || lit(tt.lo).Prohibited(Ascending) {
				t.Errorf("Expected the opposite limit to be allowed")
			}
			if lit(tt.hi-1).Prohibited(Ascending) || lit(tt.lo+1).Prohibited(Descending) {
				t.Errorf("Expected values next to the limit to be allowed")
			}
		})
	}
}

func TestEndLiteralWidening(t *testing.T) {
	tests := []struct {
		value    constant.Value
		width    Width
		expected int64
	}{
		{constant.Make(constant.KindByte, -128), Width32, -128},
		{constant.Make(constant.KindShort, 32767), Width32, 32767},
		{constant.Make(constant.KindChar, 0xFFFF), Width32, 65535},
		{constant.Make(constant.KindInt, -1), Width32, -1},
		{constant.Make(constant.KindLong, math.MaxInt64), Width64, math.MaxInt64},
	}

	for _, tt := range tests {
		lit, ok := endLiteral(tt.value)
		if !ok {
			t.Fatalf("Expected %v to be an integer literal", tt.value)
		}
		if lit.Width != tt.width || lit.Value != tt.expected {
			t.Errorf("%v: expected %d-bit %d, got %d-bit %d", tt.value, tt.width, tt.expected, lit.Width, lit.Value)
		}
	}

	if _, ok := endLiteral(constant.Make(constant.KindBoolean, 1)); ok {
		t.Error("Expected Boolean not to be an integer literal")
	}
}

// rangeCall builds `start..end` (or downTo) over literals of elem.
func rangeCall(intrinsic hir.Intrinsic, elem hir.TypeKind, start, end int64) *hir.HIRCallExpression {
	return &hir.HIRCallExpression{
		ID:        3,
		Intrinsic: intrinsic,
		Receiver:  &hir.HIRLiteral{ID: 1, Kind: elem, Value: start},
		Arguments: []hir.HIRExpression{&hir.HIRLiteral{ID: 2, Kind: elem, Value: end}},
		Type:      hir.ProgressionOf(elem),
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := NewMockEvaluator(ctrl)

	call := rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, 0, 10)
	rc, ok := NewRangeConstruct(call)
	if !ok {
		t.Fatal("Expected a range construct")
	}

	ev.EXPECT().Evaluate(call.Argument()).Return(constant.Make(constant.KindInt, 10), true).Times(2)

	opts := DefaultOptions()
	opts.Evaluator = ev

	first := Classify(rc, Forward, opts)
	second := Classify(rc, Forward, opts)

	if first != second {
		t.Errorf("Expected identical choices, got %#v and %#v", first, second)
	}

	if first.Strategy() != StrategyConstBounded {
		t.Errorf("Expected const-bounded, got %s", first.Strategy())
	}
}

func TestClassifyQueriesReceiverWhenReversed(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := NewMockEvaluator(ctrl)

	call := rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, math.MinInt32, 5)
	rc, _ := NewRangeConstruct(call)

	ev.EXPECT().Evaluate(call.Receiver).Return(constant.Make(constant.KindInt, math.MinInt32), true)

	opts := DefaultOptions()
	opts.Evaluator = ev

	c := Classify(rc, Backward, opts)
	safe, ok := c.(DefinitelySafeProgressionLoop)
	if !ok {
		t.Fatalf("Expected definitely-safe, got %s", c.Strategy())
	}

	if safe.Step != Descending || safe.Bounds.Start != call.Argument() || safe.Bounds.End != call.Receiver {
		t.Errorf("Expected descending bounds from argument to receiver, got %+v", safe)
	}
	if !safe.Bounds.Swapped {
		t.Errorf("Expected reversed bounds to be marked as swapped")
	}
}

func TestMalformedCallIsNotSpecialized(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := NewMockEvaluator(ctrl)

	call := rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, 0, 10)
	call.Arguments = nil
	rc, _ := NewRangeConstruct(call)

	opts := DefaultOptions()
	opts.Evaluator = ev

	if c := Classify(rc, Forward, opts); c.Strategy() != StrategyGeneric {
		t.Errorf("Expected generic, got %s", c.Strategy())
	}
}

func TestNonIntegerConstantFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := NewMockEvaluator(ctrl)
	ev.EXPECT().Evaluate(gomock.Any()).Return(constant.Make(constant.KindBoolean, 1), true)

	rc, _ := NewRangeConstruct(rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, 0, 10))

	opts := DefaultOptions()
	opts.Evaluator = ev

	c := Classify(rc, Forward, opts)
	if c.Strategy() != StrategyDefinitelySafe || !strings.Contains(c.Reason(), "not an integer literal") {
		t.Errorf("Expected definitely-safe for a non-integer end, got %s (%s)", c.Strategy(), c.Reason())
	}
}

func TestOptionsGating(t *testing.T) {
	rc, _ := NewRangeConstruct(rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, 0, 10))

	tests := []struct {
		name     string
		opts     Options
		t        Traversal
		expected Strategy
	}{
		{"everything", DefaultOptions(), Forward, StrategyConstBounded},
		{"no const-bounded", Options{SimpleProgression: true, Reversed: true}, Forward, StrategyDefinitelySafe},
		{"only const-bounded", Options{ConstBounded: true}, Forward, StrategyConstBounded},
		{"nothing", Options{}, Forward, StrategyGeneric},
		{"reversed disabled", Options{ConstBounded: true, SimpleProgression: true}, Backward, StrategyGeneric},
		{"reversed enabled", DefaultOptions(), Backward, StrategyConstBounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(rc, tt.t, tt.opts).Strategy(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestConstBoundedAndDefinitelySafeDoNotOverlap(t *testing.T) {
	ends := []int64{math.MinInt32, math.MinInt32 + 1, -1, 0, 1, math.MaxInt32 - 1, math.MaxInt32}

	for _, end := range ends {
		for _, tr := range []Traversal{Forward, Backward} {
			rc, _ := NewRangeConstruct(rangeCall(hir.IntrinsicRangeTo, hir.TypeKindInt, end, end))
			c := Classify(rc, tr, DefaultOptions())

			switch c.(type) {
			case ConstBoundedLoop:
				lit := EndLiteral{Kind: constant.KindInt, Width: Width32, Value: end}
				if lit.Prohibited(rc.Direction(tr)) {
					t.Errorf("%d %s: const-bounded chosen for a prohibited end", end, tr)
				}
			case DefinitelySafeProgressionLoop:
				lit := EndLiteral{Kind: constant.KindInt, Width: Width32, Value: end}
				if !lit.Prohibited(rc.Direction(tr)) {
					t.Errorf("%d %s: definitely-safe chosen for a literal end", end, tr)
				}
			default:
				t.Errorf("%d %s: unexpected %s", end, tr, c.Strategy())
			}
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		iterable  string
		traversal Traversal
		steps     int
		reversed  bool
	}{
		{"0..10", Forward, 0, false},
		{"(0..10).reversed()", Backward, 0, true},
		{"((0..10) step 1).reversed() step 1", Backward, 2, true},
		{"(10 downTo 0).reversed().reversed()", Forward, 0, false},
	}

	for _, tt := range tests {
		loop := forLoop(t, "", tt.iterable)
		rc, tr, ok := Extract(loop.Iterable)
		if !ok {
			t.Fatalf("%s: expected a range construct", tt.iterable)
		}

		if tr != tt.traversal || len(rc.Steps) != tt.steps || rc.SourceReversed != tt.reversed {
			t.Errorf("%s: got traversal=%s steps=%d reversed=%v", tt.iterable, tr, len(rc.Steps), rc.SourceReversed)
		}

		if rc.Source != loop.Iterable {
			t.Errorf("%s: expected the source to be the full iterable", tt.iterable)
		}
	}

	if _, _, ok := Extract(forLoop(t, "", "p").Iterable); ok {
		t.Error("Expected a progression variable not to be extracted")
	}
}
