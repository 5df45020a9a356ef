package interp

import (
	"fmt"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

// progression is an arithmetic progression with last aligned to the step, so
// iteration can stop on equality.
type progression struct {
	class mir.ValueClass
	first int64
	last  int64
	step  int64
}

func fromClosedRange(c mir.ValueClass, start, end, step int64) *progression {
	return &progression{class: c, first: start, last: lastElement(start, end, step), step: step}
}

func (p *progression) isEmpty() bool {
	if p.step > 0 {
		return p.first > p.last
	}
	return p.first < p.last
}

func (p *progression) String() string {
	if p.step > 0 {
		return fmt.Sprintf("%s..%s step %d", format(p.first, p.class), format(p.last, p.class), p.step)
	}
	return fmt.Sprintf("%s downTo %s step %d", format(p.first, p.class), format(p.last, p.class), -p.step)
}

func mod(a, b int64) int64 {
	m := a % b
	if m >= 0 {
		return m
	}
	return m + b
}

func differenceModulo(a, b, c int64) int64 {
	return mod(mod(a, c)-mod(b, c), c)
}

// lastElement returns the last value reachable from start towards end.
func lastElement(start, end, step int64) int64 {
	switch {
	case step > 0:
		if start >= end {
			return end
		}
		return end - differenceModulo(end, start, step)
	case step < 0:
		if start <= end {
			return end
		}
		return end + differenceModulo(start, end, -step)
	}
	return end
}

type iterator struct {
	step    int64
	final   int64
	next    int64
	hasNext bool
}

func newIterator(p *progression) *iterator {
	return &iterator{
		step:    p.step,
		final:   p.last,
		next:    p.first,
		hasNext: !p.isEmpty(),
	}
}

func (it *iterator) nextValue() (int64, bool) {
	if !it.hasNext {
		return 0, false
	}
	v := it.next
	if v == it.final {
		it.hasNext = false
	} else {
		it.next += it.step
	}
	return v, true
}

func (m *machine) alloc(obj any) int64 {
	m.heap = append(m.heap, obj)
	return int64(len(m.heap) - 1)
}

func (m *machine) progression(fn string, h int64) (*progression, error) {
	if h >= 0 && h < int64(len(m.heap)) {
		if p, ok := m.heap[h].(*progression); ok {
			return p, nil
		}
	}
	return nil, errors.Trap(fn, fmt.Sprintf("handle %d is not a progression", h))
}

func (m *machine) iterator(fn string, h int64) (*iterator, error) {
	if h >= 0 && h < int64(len(m.heap)) {
		if it, ok := m.heap[h].(*iterator); ok {
			return it, nil
		}
	}
	return nil, errors.Trap(fn, fmt.Sprintf("handle %d is not an iterator", h))
}

var builtinArity = map[string]int{
	mir.RuntimeRangeTo:  2,
	mir.RuntimeDownTo:   2,
	mir.RuntimeStep:     2,
	mir.RuntimeReversed: 1,
	mir.RuntimeIterator: 1,
	mir.RuntimeHasNext:  1,
	mir.RuntimeNext:     1,
	mir.RuntimeEmit:     1,
	mir.RuntimePrintln:  1,
}

// builtin runs a runtime call. The boolean result is false when callee is
// not a runtime function.
func (m *machine) builtin(fn string, callee string, args []mir.Value, vals []int64) (int64, bool, error) {
	n, ok := builtinArity[callee]
	if !ok {
		return 0, false, nil
	}
	if len(vals) != n {
		return 0, true, errors.Trap(fn, fmt.Sprintf("%s expects %d arguments, got %d", callee, n, len(vals)))
	}

	switch callee {
	case mir.RuntimeRangeTo:
		return m.alloc(fromClosedRange(args[0].Class, vals[0], vals[1], 1)), true, nil

	case mir.RuntimeDownTo:
		return m.alloc(fromClosedRange(args[0].Class, vals[0], vals[1], -1)), true, nil

	case mir.RuntimeStep:
		p, err := m.progression(fn, vals[0])
		if err != nil {
			return 0, true, err
		}
		s := vals[1]
		if s <= 0 {
			return 0, true, errors.NonPositiveStep(s)
		}
		if p.step < 0 {
			s = -s
		}
		return m.alloc(fromClosedRange(p.class, p.first, p.last, s)), true, nil

	case mir.RuntimeReversed:
		p, err := m.progression(fn, vals[0])
		if err != nil {
			return 0, true, err
		}
		return m.alloc(fromClosedRange(p.class, p.last, p.first, -p.step)), true, nil

	case mir.RuntimeIterator:
		p, err := m.progression(fn, vals[0])
		if err != nil {
			return 0, true, err
		}
		return m.alloc(newIterator(p)), true, nil

	case mir.RuntimeHasNext:
		it, err := m.iterator(fn, vals[0])
		if err != nil {
			return 0, true, err
		}
		if it.hasNext {
			return 1, true, nil
		}
		return 0, true, nil

	case mir.RuntimeNext:
		it, err := m.iterator(fn, vals[0])
		if err != nil {
			return 0, true, err
		}
		v, ok := it.nextValue()
		if !ok {
			return 0, true, errors.Trap(fn, "next() called on an exhausted iterator")
		}
		return v, true, nil

	case mir.RuntimeEmit:
		m.trace = append(m.trace, m.format(args[0], vals[0]))
		return 0, true, nil

	case mir.RuntimePrintln:
		if m.opts.Stdout != nil {
			fmt.Fprintln(m.opts.Stdout, m.format(args[0], vals[0]))
		}
		return 0, true, nil
	}

	return 0, false, nil
}

func (m *machine) format(v mir.Value, raw int64) string {
	if v.Class == mir.ClassHandle && raw >= 0 && raw < int64(len(m.heap)) {
		if s, ok := m.heap[raw].(fmt.Stringer); ok {
			return s.String()
		}
	}
	return format(raw, v.Class)
}

// format renders a value the way the source language prints it.
func format(v int64, c mir.ValueClass) string {
	switch c {
	case mir.ClassU16:
		return string(rune(v))
	case mir.ClassBool:
		if v != 0 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%d", v)
}
