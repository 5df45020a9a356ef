package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orizon-lang/rangeopt/internal/lir"
)

// argRegs are the System V integer argument registers.
var argRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// EmitX64 renders LIR as an Intel-syntax x86-64 listing.
// Every parameter, temporary and alloca gets its own 8-byte stack slot and
// RAX/R10 are the scratch registers. Values are kept sign or zero extended
// to 64 bits according to their class, so arithmetic re-extends its result
// to wrap at the class width.
// The listing is for inspection; runtime calls are left as external symbols.
func EmitX64(m *lir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %s\n", m.Name)
	b.WriteString(".intel_syntax noprefix\n.text\n")
	for _, f := range m.Functions {
		emitFunc(&b, f)
	}
	return b.String()
}

func blockLabel(fn, label string) string {
	return ".L" + fn + "." + label
}

func emitFunc(b *strings.Builder, f *lir.Function) {
	fmt.Fprintf(b, "\n.globl %s\n%s:\n", f.Name, f.Name)

	slots := collectSlots(f)
	frameSize := int64(len(slots)) * 8
	if rem := frameSize % 16; rem != 0 {
		frameSize += 16 - rem
	}

	b.WriteString("  push rbp\n")
	b.WriteString("  mov rbp, rsp\n")
	if frameSize > 0 {
		fmt.Fprintf(b, "  sub rsp, %d\n", frameSize)
	}
	for i, p := range f.Params {
		if i < len(argRegs) {
			storeValue(b, slots, p, argRegs[i])
			continue
		}
		// stack arguments sit above the saved rbp and return address
		fmt.Fprintf(b, "  mov rax, qword ptr [rbp+%d]\n", 16+(i-len(argRegs))*8)
		storeValue(b, slots, p, "rax")
	}

	for _, bb := range f.Blocks {
		if bb.Label != "" {
			fmt.Fprintf(b, "%s:\n", blockLabel(f.Name, bb.Label))
		}
		for _, ins := range bb.Insns {
			emitInsn(b, f.Name, slots, ins)
		}
	}

	if !endsWithRet(f) {
		emitEpilogue(b)
	}
}

func emitInsn(b *strings.Builder, fn string, slots map[string]int64, ins lir.Insn) {
	switch v := ins.(type) {
	case lir.Arith:
		loadValue(b, slots, v.LHS, "rax")
		loadValue(b, slots, v.RHS, "r10")
		fmt.Fprintf(b, "  %s\n", arithOps[v.Kind])
		if ext := extendTo(v.Class); ext != "" {
			fmt.Fprintf(b, "  %s\n", ext)
		}
		storeValue(b, slots, v.Dst, "rax")
	case lir.Conv:
		loadValue(b, slots, v.Src, "rax")
		class := v.To
		if v.Kind == "sext" || v.Kind == "zext" {
			class = v.From
		}
		if ext := extendTo(class); ext != "" {
			fmt.Fprintf(b, "  %s\n", ext)
		}
		storeValue(b, slots, v.Dst, "rax")
	case lir.Load:
		loadValue(b, slots, v.Addr, "rax")
		storeValue(b, slots, v.Dst, "rax")
	case lir.Store:
		loadValue(b, slots, v.Val, "rax")
		storeValue(b, slots, v.Addr, "rax")
	case lir.Cmp:
		loadValue(b, slots, v.LHS, "rax")
		loadValue(b, slots, v.RHS, "r10")
		b.WriteString("  cmp rax, r10\n")
		fmt.Fprintf(b, "  %s al\n", mapCmpToSetcc(v.Pred))
		b.WriteString("  movzx eax, al\n")
		storeValue(b, slots, v.Dst, "rax")
	case lir.Br:
		fmt.Fprintf(b, "  jmp %s\n", blockLabel(fn, v.Target))
	case lir.BrCond:
		loadValue(b, slots, v.Cond, "rax")
		b.WriteString("  test rax, rax\n")
		fmt.Fprintf(b, "  jnz %s\n", blockLabel(fn, v.True))
		fmt.Fprintf(b, "  jmp %s\n", blockLabel(fn, v.False))
	case lir.Call:
		emitCall(b, slots, v)
	case lir.Ret:
		if v.Src != "" {
			loadValue(b, slots, v.Src, "rax")
		}
		emitEpilogue(b)
	case lir.Alloc:
		fmt.Fprintf(b, "  ; alloca %s -> %s (%d bytes)\n", v.Name, v.Dst, v.Size)
	default:
		if s, ok := any(ins).(fmt.Stringer); ok {
			fmt.Fprintf(b, "  ; unknown: %s\n", s.String())
		} else {
			fmt.Fprintf(b, "  ; unknown op %s\n", ins.Op())
		}
	}
}

var arithOps = map[string]string{
	lir.OpAdd: "add rax, r10",
	lir.OpSub: "sub rax, r10",
	lir.OpMul: "imul rax, r10",
	lir.OpDiv: "cqo\n  idiv r10",
	lir.OpRem: "cqo\n  idiv r10\n  mov rax, rdx",
}

// emitCall passes the first six arguments in registers and the rest on a
// 16-byte aligned stack area.
func emitCall(b *strings.Builder, slots map[string]int64, v lir.Call) {
	stackArgs := 0
	if len(v.Args) > len(argRegs) {
		stackArgs = len(v.Args) - len(argRegs)
	}
	reserve := int64(stackArgs * 8)
	if rem := reserve % 16; rem != 0 {
		reserve += 16 - rem
	}
	if reserve > 0 {
		fmt.Fprintf(b, "  sub rsp, %d\n", reserve)
	}
	for i := len(argRegs); i < len(v.Args); i++ {
		loadValue(b, slots, v.Args[i], "rax")
		fmt.Fprintf(b, "  mov qword ptr [rsp+%d], rax\n", (i-len(argRegs))*8)
	}
	for i := 0; i < len(v.Args) && i < len(argRegs); i++ {
		loadValue(b, slots, v.Args[i], argRegs[i])
	}

	fmt.Fprintf(b, "  call %s\n", v.Callee)
	if reserve > 0 {
		fmt.Fprintf(b, "  add rsp, %d\n", reserve)
	}
	if v.Dst != "" {
		if ext := extendTo(v.RetClass); ext != "" {
			fmt.Fprintf(b, "  %s\n", ext)
		}
		storeValue(b, slots, v.Dst, "rax")
	}
}

func emitEpilogue(b *strings.Builder) {
	b.WriteString("  mov rsp, rbp\n")
	b.WriteString("  pop rbp\n")
	b.WriteString("  ret\n")
}

func endsWithRet(f *lir.Function) bool {
	for i := len(f.Blocks) - 1; i >= 0; i-- {
		insns := f.Blocks[i].Insns
		if len(insns) == 0 {
			continue
		}
		_, ok := insns[len(insns)-1].(lir.Ret)
		return ok
	}
	return false
}

// extendTo returns the instruction that brings RAX back to the canonical
// 64-bit form of class, or "" when nothing is needed.
func extendTo(class string) string {
	switch class {
	case "i8":
		return "movsx rax, al"
	case "i16":
		return "movsx rax, ax"
	case "i32":
		return "movsxd rax, eax"
	case "u16":
		return "movzx eax, ax"
	case "bool":
		return "movzx eax, al"
	}
	return ""
}

func collectSlots(f *lir.Function) map[string]int64 {
	slots := make(map[string]int64)
	next := int64(8)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := slots[name]; ok {
			return
		}
		slots[name] = next
		next += 8
	}
	for _, p := range f.Params {
		add(p)
	}
	for _, bb := range f.Blocks {
		for _, ins := range bb.Insns {
			switch v := ins.(type) {
			case lir.Arith:
				add(v.Dst)
			case lir.Conv:
				add(v.Dst)
			case lir.Load:
				add(v.Dst)
			case lir.Cmp:
				add(v.Dst)
			case lir.Call:
				add(v.Dst)
			case lir.Alloc:
				add(v.Dst)
			}
		}
	}
	return slots
}

func loadValue(b *strings.Builder, slots map[string]int64, src, reg string) {
	if src == "" {
		fmt.Fprintf(b, "  xor %s, %s\n", reg, reg)
		return
	}
	if isImmediateInt(src) {
		fmt.Fprintf(b, "  mov %s, %s\n", reg, src)
		return
	}
	if off, ok := slots[src]; ok {
		fmt.Fprintf(b, "  mov %s, qword ptr [rbp-%d]\n", reg, off)
		return
	}
	fmt.Fprintf(b, "  mov %s, qword ptr [%s]\n", reg, src)
}

func storeValue(b *strings.Builder, slots map[string]int64, dst, reg string) {
	if dst == "" {
		return
	}
	if off, ok := slots[dst]; ok {
		fmt.Fprintf(b, "  mov qword ptr [rbp-%d], %s\n", off, reg)
		return
	}
	fmt.Fprintf(b, "  mov qword ptr [%s], %s\n", dst, reg)
}

func isImmediateInt(s string) bool {
	if len(s) == 0 {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func mapCmpToSetcc(pred string) string {
	switch pred {
	case "eq":
		return "sete"
	case "ne":
		return "setne"
	case "slt":
		return "setl"
	case "sle":
		return "setle"
	case "sgt":
		return "setg"
	case "sge":
		return "setge"
	case "ult":
		return "setb" // below (unsigned <)
	case "ule":
		return "setbe"
	case "ugt":
		return "seta" // above (unsigned >)
	case "uge":
		return "setae"
	}
	return "sete"
}
