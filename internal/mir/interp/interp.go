// Package interp executes MIR modules. It is the reference semantics used to
// check that every loop lowering strategy visits the same values.
package interp

import (
	"context"
	"fmt"
	"io"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

// DefaultMaxSteps bounds execution when Options.MaxSteps is zero.
const DefaultMaxSteps int64 = 50_000_000

const (
	maxCallDepth = 512
	// context is polled once per this many instructions
	cancelCheckInterval = 4096
)

// Options controls a run.
type Options struct {
	MaxSteps int64
	Stdout   io.Writer
}

// Result is the observable outcome of a run.
type Result struct {
	// Trace holds every value passed to emit, in order.
	Trace []string
	// Return is nil for Unit functions.
	Return *int64
	Steps  int64
}

type machine struct {
	ctx    context.Context
	mod    *mir.Module
	opts   Options
	budget int64
	steps  int64
	depth  int
	heap   []any
	trace  []string
	labels map[*mir.Function]map[string]*mir.BasicBlock
}

type frame struct {
	fn    *mir.Function
	regs  map[string]int64
	slots map[string]int64
}

// Run calls fn in mod with the given arguments.
func Run(ctx context.Context, mod *mir.Module, fn string, args []int64, opts Options) (*Result, error) {
	budget := opts.MaxSteps
	if budget <= 0 {
		budget = DefaultMaxSteps
	}

	m := &machine{
		ctx:    ctx,
		mod:    mod,
		opts:   opts,
		budget: budget,
		labels: make(map[*mir.Function]map[string]*mir.BasicBlock),
	}

	f := mod.Function(fn)
	if f == nil {
		return nil, errors.UnknownCallee(fn)
	}

	ret, hasRet, err := m.call(f, args)
	res := &Result{Trace: m.trace, Steps: m.steps}
	if hasRet {
		res.Return = &ret
	}
	return res, err
}

func (m *machine) block(f *mir.Function, name string) *mir.BasicBlock {
	idx, ok := m.labels[f]
	if !ok {
		idx = make(map[string]*mir.BasicBlock, len(f.Blocks))
		for _, bb := range f.Blocks {
			idx[bb.Name] = bb
		}
		m.labels[f] = idx
	}
	return idx[name]
}

func (m *machine) call(f *mir.Function, args []int64) (int64, bool, error) {
	if len(args) != len(f.Parameters) {
		return 0, false, errors.Trap(f.Name, fmt.Sprintf("expects %d arguments, got %d", len(f.Parameters), len(args)))
	}
	if len(f.Blocks) == 0 {
		return 0, false, errors.Trap(f.Name, "function has no blocks")
	}

	m.depth++
	defer func() { m.depth-- }()
	if m.depth > maxCallDepth {
		return 0, false, errors.Trap(f.Name, fmt.Sprintf("call depth exceeds %d", maxCallDepth))
	}

	fr := &frame{
		fn:    f,
		regs:  make(map[string]int64),
		slots: make(map[string]int64),
	}
	for i, p := range f.Parameters {
		fr.regs[p.Ref] = p.Class.Wrap(args[i])
	}

	bb := f.Blocks[0]
	for {
		var next *mir.BasicBlock

		for _, in := range bb.Instr {
			if err := m.tick(f); err != nil {
				return 0, false, err
			}

			switch i := in.(type) {
			case mir.Ret:
				if i.Val == nil {
					return 0, false, nil
				}
				v, err := fr.eval(*i.Val)
				return v, err == nil, err

			case mir.Br:
				next = m.block(f, i.Target)
				if next == nil {
					return 0, false, errors.Trap(f.Name, "unknown block "+i.Target)
				}

			case mir.CondBr:
				c, err := fr.eval(i.Cond)
				if err != nil {
					return 0, false, err
				}
				target := i.False
				if c != 0 {
					target = i.True
				}
				next = m.block(f, target)
				if next == nil {
					return 0, false, errors.Trap(f.Name, "unknown block "+target)
				}

			default:
				if err := m.exec(fr, in); err != nil {
					return 0, false, err
				}
			}
		}

		if next == nil {
			return 0, false, errors.Trap(f.Name, fmt.Sprintf("block %s falls off its end", bb.Name))
		}
		bb = next
	}
}

func (m *machine) tick(f *mir.Function) error {
	m.steps++
	if m.steps > m.budget {
		return errors.StepBudgetExceeded(f.Name, m.budget)
	}
	if m.steps%cancelCheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("interp: %s: %w", f.Name, err)
		}
	}
	return nil
}

func (fr *frame) eval(v mir.Value) (int64, error) {
	switch v.Kind {
	case mir.ValConstInt:
		return v.Int64, nil
	case mir.ValRef:
		if x, ok := fr.regs[v.Ref]; ok {
			return x, nil
		}
		return 0, errors.Trap(fr.fn.Name, "use of undefined value "+v.Ref)
	}
	return 0, errors.Trap(fr.fn.Name, "invalid operand")
}

func (m *machine) exec(fr *frame, in mir.Instr) error {
	name := fr.fn.Name

	switch i := in.(type) {
	case mir.Alloca:
		fr.slots[i.Dst] = 0

	case mir.Load:
		v, ok := fr.slots[i.Addr.Ref]
		if !ok {
			return errors.Trap(name, "load from unallocated slot "+i.Addr.Ref)
		}
		fr.regs[i.Dst] = v

	case mir.Store:
		if _, ok := fr.slots[i.Addr.Ref]; !ok {
			return errors.Trap(name, "store to unallocated slot "+i.Addr.Ref)
		}
		v, err := fr.eval(i.Val)
		if err != nil {
			return err
		}
		fr.slots[i.Addr.Ref] = v

	case mir.BinOp:
		l, err := fr.eval(i.LHS)
		if err != nil {
			return err
		}
		r, err := fr.eval(i.RHS)
		if err != nil {
			return err
		}
		v, err := arith(name, i.Op, l, r)
		if err != nil {
			return err
		}
		fr.regs[i.Dst] = i.Class.Wrap(v)

	case mir.Conv:
		v, err := fr.eval(i.Val)
		if err != nil {
			return err
		}
		fr.regs[i.Dst] = i.To.Wrap(v)

	case mir.Cmp:
		l, err := fr.eval(i.LHS)
		if err != nil {
			return err
		}
		r, err := fr.eval(i.RHS)
		if err != nil {
			return err
		}
		if i.Pred.Eval(l, r, i.LHS.Class) {
			fr.regs[i.Dst] = 1
		} else {
			fr.regs[i.Dst] = 0
		}

	case mir.Call:
		vals := make([]int64, len(i.Args))
		for k, a := range i.Args {
			v, err := fr.eval(a)
			if err != nil {
				return err
			}
			vals[k] = v
		}

		v, handled, err := m.builtin(name, i.Callee, i.Args, vals)
		if err != nil {
			return err
		}
		if !handled {
			callee := m.mod.Function(i.Callee)
			if callee == nil {
				return errors.UnknownCallee(i.Callee)
			}
			if v, _, err = m.call(callee, vals); err != nil {
				return err
			}
		}
		if i.Dst != "" {
			fr.regs[i.Dst] = i.RetClass.Wrap(v)
		}

	default:
		return errors.Trap(name, fmt.Sprintf("unsupported instruction %T", in))
	}

	return nil
}

// arith computes on 64 bits; the caller wraps to the operation class.
func arith(fn string, op mir.BinOpKind, l, r int64) (int64, error) {
	switch op {
	case mir.OpAdd:
		return l + r, nil
	case mir.OpSub:
		return l - r, nil
	case mir.OpMul:
		return l * r, nil
	case mir.OpDiv:
		if r == 0 {
			return 0, errors.DivisionByZero(fn)
		}
		return l / r, nil
	case mir.OpRem:
		if r == 0 {
			return 0, errors.DivisionByZero(fn)
		}
		return l % r, nil
	}
	return 0, errors.Trap(fn, "unknown operator "+op.String())
}
