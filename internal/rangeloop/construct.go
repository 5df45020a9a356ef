// Package rangeloop specializes for-loops over primitive ranges.
//
// A loop over `a..b`, `a downTo b`, their `.reversed()` forms and `step 1`
// variants is lowered to a counted loop instead of a runtime progression
// object whenever its bounds allow it. Three generators share one interface:
//
//   - const-bounded: the end is a compile-time literal that is not the
//     extremal value of its kind in the iteration direction; the head compares
//     against the literal.
//   - definitely-safe: the end is only known at run time; it is stored in its
//     own slot and the loop exits on equality, so it is safe at every bound.
//   - generic: anything else; iterates a runtime progression.
//
// Selection is decided before any code is emitted and only ever falls back
// towards the generic generator, so specializing never changes which values a
// loop visits.
package rangeloop

import (
	"github.com/orizon-lang/rangeopt/internal/hir"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

// Traversal selects which end of a range construct iteration starts from.
type Traversal int

const (
	// Forward iterates from the receiver to the argument.
	Forward Traversal = iota
	// Backward iterates from the argument to the receiver, as `.reversed()` does.
	Backward
)

func (t Traversal) String() string {
	if t == Backward {
		return "reversed"
	}
	return "forward"
}

// Direction is the sign of the unit step.
type Direction int64

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// RangeConstruct is a range-producing call found as the iterable of a
// for-loop, together with the `step` arguments applied to it.
type RangeConstruct struct {
	// Call is the `..` or `downTo` call; Receiver is its start and the sole
	// argument its end.
	Call *hir.HIRCallExpression
	// Steps holds the argument of every `step` applied to the range. Only
	// constant 1 steps keep the construct specializable.
	Steps []hir.HIRExpression
	// Element is the element type of the progression.
	Element hir.TypeKind
	// Natural is the direction of Forward traversal.
	Natural Direction

	// Source is the iterable as written and SourceReversed whether it
	// includes an odd number of reversals; the generic generator iterates it.
	Source         hir.HIRExpression
	SourceReversed bool
}

// NewRangeConstruct wraps a range literal call. It reports false for any
// other expression.
func NewRangeConstruct(call *hir.HIRCallExpression) (*RangeConstruct, bool) {
	if call == nil || !call.Intrinsic.IsRangeLiteral() || !call.Type.IsProgression() {
		return nil, false
	}

	natural := Ascending
	if call.Intrinsic == hir.IntrinsicDownTo {
		natural = Descending
	}

	return &RangeConstruct{
		Call:    call,
		Element: call.Type.ElementKind(),
		Natural: natural,
		Source:  call,
	}, true
}

// Extract peels `.reversed()` and `step` calls off iterable down to a range
// literal. The returned traversal accounts for every reversal peeled.
func Extract(iterable hir.HIRExpression) (*RangeConstruct, Traversal, bool) {
	var steps []hir.HIRExpression
	reversed := false

	e := iterable
	for {
		call, ok := e.(*hir.HIRCallExpression)
		if !ok {
			return nil, Forward, false
		}

		switch call.Intrinsic {
		case hir.IntrinsicReversed:
			reversed = !reversed
			e = call.Receiver

		case hir.IntrinsicStep:
			arg := call.Argument()
			if arg == nil {
				return nil, Forward, false
			}
			steps = append(steps, arg)
			e = call.Receiver

		default:
			rc, ok := NewRangeConstruct(call)
			if !ok {
				return nil, Forward, false
			}
			rc.Steps = steps
			rc.Source = iterable
			rc.SourceReversed = reversed

			if reversed {
				return rc, Backward, true
			}
			return rc, Forward, true
		}
	}
}

// Direction returns the step sign of traversal t.
func (rc *RangeConstruct) Direction(t Traversal) Direction {
	if t == Backward {
		return -rc.Natural
	}
	return rc.Natural
}

// BoundedValue is a start/end pair. Both ends are inclusive for every range
// this package builds. Swapped is set when End appears before Start in the
// source, which is the case for a reversed traversal.
type BoundedValue struct {
	Start          hir.HIRExpression
	End            hir.HIRExpression
	StartInclusive bool
	EndInclusive   bool
	Swapped        bool
}

// Bounds returns the start and end of traversal t, or false when the call
// does not have the expected shape.
func (rc *RangeConstruct) Bounds(t Traversal) (BoundedValue, bool) {
	if rc.Call == nil {
		return BoundedValue{}, false
	}

	receiver, argument := rc.Call.Receiver, rc.Call.Argument()
	if receiver == nil || argument == nil {
		return BoundedValue{}, false
	}

	bv := BoundedValue{Start: receiver, End: argument, StartInclusive: true, EndInclusive: true}
	if t == Backward {
		bv.Start, bv.End = argument, receiver
		bv.Swapped = true
	}
	return bv, true
}

// endBound is the expression the loop terminates on for traversal t.
func (rc *RangeConstruct) endBound(t Traversal) (hir.HIRExpression, bool) {
	bv, ok := rc.Bounds(t)
	if !ok {
		return nil, false
	}
	return bv.End, true
}

// ClassOf maps a HIR type to the MIR class its values are computed in.
func ClassOf(t hir.TypeKind) mir.ValueClass {
	switch t {
	case hir.TypeKindByte:
		return mir.ClassI8
	case hir.TypeKindShort:
		return mir.ClassI16
	case hir.TypeKindInt:
		return mir.ClassI32
	case hir.TypeKindChar:
		return mir.ClassU16
	case hir.TypeKindLong:
		return mir.ClassI64
	case hir.TypeKindBoolean:
		return mir.ClassBool
	}
	if t.IsProgression() {
		return mir.ClassHandle
	}
	return mir.ClassUnknown
}
