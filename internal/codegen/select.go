package codegen

import (
	"github.com/orizon-lang/rangeopt/internal/lir"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

// SelectToLIR performs naive selection from MIR to target-agnostic LIR.
func SelectToLIR(m *mir.Module) *lir.Module {
	lm := &lir.Module{Name: m.Name}

	for _, f := range m.Functions {
		lf := &lir.Function{Name: f.Name}
		for _, p := range f.Parameters {
			lf.Params = append(lf.Params, p.String())
		}

		for _, bb := range f.Blocks {
			lb := &lir.BasicBlock{Label: bb.Name}

			for _, in := range bb.Instr {
				if insn := selectInsn(in); insn != nil {
					lb.Insns = append(lb.Insns, insn)
				}
			}

			lf.Blocks = append(lf.Blocks, lb)
		}

		lm.Functions = append(lm.Functions, lf)
	}

	return lm
}

var arithKinds = map[mir.BinOpKind]string{
	mir.OpAdd: lir.OpAdd,
	mir.OpSub: lir.OpSub,
	mir.OpMul: lir.OpMul,
	mir.OpDiv: lir.OpDiv,
	mir.OpRem: lir.OpRem,
}

func selectInsn(in mir.Instr) lir.Insn {
	switch v := in.(type) {
	case mir.Ret:
		var src string
		if v.Val != nil {
			src = v.Val.String()
		}

		return lir.Ret{Src: src}
	case mir.BinOp:
		if kind, ok := arithKinds[v.Op]; ok {
			return lir.Arith{Kind: kind, Class: v.Class.String(), Dst: v.Dst, LHS: v.LHS.String(), RHS: v.RHS.String()}
		}
	case mir.Conv:
		return lir.Conv{Kind: convKind(v.From, v.To), Dst: v.Dst, Src: v.Val.String(), From: v.From.String(), To: v.To.String()}
	case mir.Call:
		args := make([]string, 0, len(v.Args))
		argClasses := make([]string, 0, len(v.Args))

		for _, a := range v.Args {
			args = append(args, a.String())
			argClasses = append(argClasses, a.Class.String())
		}

		var retClass string
		if v.RetClass != mir.ClassUnknown {
			retClass = v.RetClass.String()
		}

		return lir.Call{Dst: v.Dst, Callee: v.Callee, Args: args, ArgClasses: argClasses, RetClass: retClass}
	case mir.Alloca:
		return lir.Alloc{Dst: v.Dst, Name: v.Name, Size: slotSize(v.Class)}
	case mir.Load:
		return lir.Load{Dst: v.Dst, Addr: v.Addr.String()}
	case mir.Store:
		return lir.Store{Addr: v.Addr.String(), Val: v.Val.String()}
	case mir.Cmp:
		return lir.Cmp{Dst: v.Dst, Pred: v.Pred.String(), LHS: v.LHS.String(), RHS: v.RHS.String()}
	case mir.Br:
		return lir.Br{Target: v.Target}
	case mir.CondBr:
		return lir.BrCond{Cond: v.Cond.String(), True: v.True, False: v.False}
	}

	return nil
}

func classBits(c mir.ValueClass) int {
	switch c {
	case mir.ClassBool, mir.ClassI8:
		return 8
	case mir.ClassI16, mir.ClassU16:
		return 16
	case mir.ClassI32:
		return 32
	}
	return 64
}

func slotSize(c mir.ValueClass) int { return classBits(c) / 8 }

// convKind picks the widening or narrowing instruction for a conversion.
func convKind(from, to mir.ValueClass) string {
	switch {
	case classBits(to) < classBits(from):
		return "trunc"
	case classBits(to) == classBits(from):
		// i16 <-> u16 only reinterprets the bits
		return "mov"
	case from.Signed():
		return "sext"
	}
	return "zext"
}
