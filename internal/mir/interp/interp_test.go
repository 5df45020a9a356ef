package interp

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

func i32(v int64) mir.Value { return mir.ConstInt(v, mir.ClassI32) }

// progressionLoop builds main() iterating build(b) through the runtime
// iterator protocol and emitting every element.
func progressionLoop(elem mir.ValueClass, build func(b *mir.Builder) mir.Value) *mir.Module {
	b := mir.NewBuilder("main", mir.ClassUnknown)
	it := b.Call(mir.RuntimeIterator, mir.ClassHandle, build(b))

	head := b.NewBlock("head")
	body := b.NewBlock("body")
	exit := b.NewBlock("exit")

	b.Br(head)
	b.Place(head)
	b.CondBr(b.Call(mir.RuntimeHasNext, mir.ClassBool, it), body, exit)

	b.Place(body)
	b.Call(mir.RuntimeEmit, mir.ClassUnknown, b.Call(mir.RuntimeNext, elem, it))
	b.Br(head)

	b.Place(exit)
	b.Ret(nil)

	return &mir.Module{Name: "test", Functions: []*mir.Function{b.Finish()}}
}

func TestProgressions(t *testing.T) {
	tests := []struct {
		name     string
		elem     mir.ValueClass
		build    func(b *mir.Builder) mir.Value
		expected string
	}{
		{
			"rangeTo",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value { return b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(1), i32(4)) },
			"1 2 3 4",
		},
		{
			"empty rangeTo",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value { return b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(4), i32(1)) },
			"",
		},
		{
			"downTo",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value { return b.Call(mir.RuntimeDownTo, mir.ClassHandle, i32(3), i32(0)) },
			"3 2 1 0",
		},
		{
			"step aligns last",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value {
				p := b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(0), i32(10))
				return b.Call(mir.RuntimeStep, mir.ClassHandle, p, i32(3))
			},
			"0 3 6 9",
		},
		{
			"downTo step",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value {
				p := b.Call(mir.RuntimeDownTo, mir.ClassHandle, i32(10), i32(1))
				return b.Call(mir.RuntimeStep, mir.ClassHandle, p, i32(4))
			},
			"10 6 2",
		},
		{
			"reversed step starts from aligned last",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value {
				p := b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(0), i32(10))
				p = b.Call(mir.RuntimeStep, mir.ClassHandle, p, i32(3))
				return b.Call(mir.RuntimeReversed, mir.ClassHandle, p)
			},
			"9 6 3 0",
		},
		{
			"chars",
			mir.ClassU16,
			func(b *mir.Builder) mir.Value {
				return b.Call(mir.RuntimeRangeTo, mir.ClassHandle, mir.ConstInt('a', mir.ClassU16), mir.ConstInt('d', mir.ClassU16))
			},
			"a b c d",
		},
		{
			"int max boundary",
			mir.ClassI32,
			func(b *mir.Builder) mir.Value {
				return b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(2147483646), i32(2147483647))
			},
			"2147483646 2147483647",
		},
		{
			"long min boundary",
			mir.ClassI64,
			func(b *mir.Builder) mir.Value {
				lo := int64(-1 << 63)
				return b.Call(mir.RuntimeDownTo, mir.ClassHandle, mir.ConstInt(lo+1, mir.ClassI64), mir.ConstInt(lo, mir.ClassI64))
			},
			"-9223372036854775807 -9223372036854775808",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := progressionLoop(tt.elem, tt.build)
			if err := mir.VerifyModule(mod); err != nil {
				t.Fatalf("Unexpected verify error: %v", err)
			}

			res, err := Run(context.Background(), mod, "main", nil, Options{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if got := strings.Join(res.Trace, " "); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLastElement(t *testing.T) {
	tests := []struct {
		start, end, step int64
		expected         int64
	}{
		{0, 10, 3, 9},
		{0, 9, 3, 9},
		{10, 0, 3, 0},
		{10, 1, -4, 2},
		{-5, 5, 4, 3},
		{1, 1, -7, 1},
		{0, 9223372036854775807, 2, 9223372036854775806},
	}

	for _, tt := range tests {
		if got := lastElement(tt.start, tt.end, tt.step); got != tt.expected {
			t.Errorf("lastElement(%d, %d, %d): expected %d, got %d", tt.start, tt.end, tt.step, tt.expected, got)
		}
	}
}

func TestNonPositiveStep(t *testing.T) {
	mod := progressionLoop(mir.ClassI32, func(b *mir.Builder) mir.Value {
		p := b.Call(mir.RuntimeRangeTo, mir.ClassHandle, i32(0), i32(10))
		return b.Call(mir.RuntimeStep, mir.ClassHandle, p, i32(0))
	})

	_, err := Run(context.Background(), mod, "main", nil, Options{})
	if !stderrors.Is(err, errors.ErrNonPositiveStep) {
		t.Fatalf("Expected non-positive step error, got %v", err)
	}

	if !strings.Contains(err.Error(), "Step must be positive, was: 0") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func infiniteLoop() *mir.Module {
	b := mir.NewBuilder("spin", mir.ClassUnknown)
	loop := b.NewBlock("loop")
	b.Br(loop)
	b.Place(loop)
	b.Br(loop)
	return &mir.Module{Name: "spin", Functions: []*mir.Function{b.Finish()}}
}

func TestStepBudget(t *testing.T) {
	_, err := Run(context.Background(), infiniteLoop(), "spin", nil, Options{MaxSteps: 1000})
	if !stderrors.Is(err, errors.ErrStepBudgetExceeded) {
		t.Fatalf("Expected step budget error, got %v", err)
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, infiniteLoop(), "spin", nil, Options{})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestArithmeticWraps(t *testing.T) {
	b := mir.NewBuilder("main", mir.ClassI32)
	v := b.BinOp(mir.OpAdd, mir.ClassI32, i32(2147483647), i32(1))
	b.Ret(&v)
	mod := &mir.Module{Functions: []*mir.Function{b.Finish()}}

	res, err := Run(context.Background(), mod, "main", nil, Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if res.Return == nil || *res.Return != -2147483648 {
		t.Errorf("Expected Int.MIN_VALUE, got %v", res.Return)
	}
}

func TestDivisionByZero(t *testing.T) {
	b := mir.NewBuilder("main", mir.ClassI32)
	p := b.AddParam("d", mir.ClassI32)
	v := b.BinOp(mir.OpDiv, mir.ClassI32, i32(1), p)
	b.Ret(&v)
	mod := &mir.Module{Functions: []*mir.Function{b.Finish()}}

	_, err := Run(context.Background(), mod, "main", []int64{0}, Options{})
	if !stderrors.Is(err, errors.ErrDivisionByZero) {
		t.Fatalf("Expected division by zero, got %v", err)
	}
}

func TestUserCallsAndPrintln(t *testing.T) {
	sq := mir.NewBuilder("square", mir.ClassI64)
	x := sq.AddParam("x", mir.ClassI64)
	r := sq.BinOp(mir.OpMul, mir.ClassI64, x, x)
	sq.Ret(&r)

	main := mir.NewBuilder("main", mir.ClassUnknown)
	v := main.Call("square", mir.ClassI64, mir.ConstInt(12, mir.ClassI64))
	main.Call(mir.RuntimePrintln, mir.ClassUnknown, v)
	main.Call(mir.RuntimeEmit, mir.ClassUnknown, mir.ConstInt(1, mir.ClassBool))
	main.Ret(nil)

	mod := &mir.Module{Functions: []*mir.Function{sq.Finish(), main.Finish()}}

	var out bytes.Buffer
	res, err := Run(context.Background(), mod, "main", nil, Options{Stdout: &out})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if out.String() != "144\n" {
		t.Errorf("Expected 144, got %q", out.String())
	}

	if len(res.Trace) != 1 || res.Trace[0] != "true" {
		t.Errorf("Expected [true], got %v", res.Trace)
	}

	if res.Return != nil {
		t.Errorf("Expected no return value, got %d", *res.Return)
	}
}

func TestUnknownCallee(t *testing.T) {
	b := mir.NewBuilder("main", mir.ClassUnknown)
	b.Call("missing", mir.ClassUnknown)
	b.Ret(nil)
	mod := &mir.Module{Functions: []*mir.Function{b.Finish()}}

	_, err := Run(context.Background(), mod, "main", nil, Options{})
	if !stderrors.Is(err, errors.ErrUnknownCallee) {
		t.Fatalf("Expected unknown callee, got %v", err)
	}

	if _, err := Run(context.Background(), mod, "nope", nil, Options{}); !stderrors.Is(err, errors.ErrUnknownCallee) {
		t.Errorf("Expected unknown entry point error, got %v", err)
	}
}
