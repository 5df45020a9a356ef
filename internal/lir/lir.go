// Package lir defines a low-level IR close to the target ISA. Every value is
// a named 64-bit temporary or a decimal immediate; classes only describe the
// width a value has to be wrapped to.
package lir

import (
	"fmt"
	"strings"
)

// Module bundles functions for one object file.
type Module struct {
	Name      string
	Functions []*Function
}

// Function is a sequence of basic blocks of target-like instructions.
type Function struct {
	Name   string
	Params []string
	Blocks []*BasicBlock
}

// BasicBlock contains a linear list of target-like instructions.
type BasicBlock struct {
	Label string
	Insns []Insn
}

// Insn is a target-agnostic instruction representation.
type Insn interface{ Op() string }

// Arithmetic operators.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpDiv = "div"
	OpRem = "rem"
)

// Arith applies Kind to LHS and RHS and wraps the result to Class.
type Arith struct {
	Kind, Class   string
	Dst, LHS, RHS string
}

func (a Arith) Op() string { return a.Kind }
func (a Arith) String() string {
	return fmt.Sprintf("%s = %s.%s %s, %s", a.Dst, a.Kind, a.Class, a.LHS, a.RHS)
}

// Conv is a sign extension (sext), zero extension (zext), truncation (trunc)
// or reinterpretation (mov) between integer classes.
type Conv struct{ Kind, Dst, Src, From, To string }

func (c Conv) Op() string { return c.Kind }
func (c Conv) String() string {
	return fmt.Sprintf("%s = %s %s ; %s->%s", c.Dst, c.Kind, c.Src, c.From, c.To)
}

type Ret struct{ Src string }

func (Ret) Op() string { return "ret" }
func (r Ret) String() string {
	if r.Src == "" {
		return "ret"
	}
	return "ret " + r.Src
}

// Call invokes a user function or a runtime symbol. Dst is empty when the
// result is discarded.
type Call struct {
	Dst        string
	Callee     string
	RetClass   string
	Args       []string
	ArgClasses []string
}

func (Call) Op() string { return "call" }
func (c Call) String() string {
	var b strings.Builder
	if c.Dst != "" {
		fmt.Fprintf(&b, "%s = ", c.Dst)
	}
	fmt.Fprintf(&b, "call %s(%s)", c.Callee, strings.Join(c.Args, ", "))

	var notes []string
	if len(c.ArgClasses) > 0 {
		notes = append(notes, "args:"+strings.Join(c.ArgClasses, ","))
	}
	if c.RetClass != "" {
		notes = append(notes, "ret:"+c.RetClass)
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, " ; %s", strings.Join(notes, " "))
	}
	return b.String()
}

// Cmp sets Dst to 1 when Pred holds and 0 otherwise.
type Cmp struct{ Dst, Pred, LHS, RHS string }

func (Cmp) Op() string { return "cmp" }
func (c Cmp) String() string {
	return fmt.Sprintf("%s = cmp.%s %s, %s", c.Dst, c.Pred, c.LHS, c.RHS)
}

type Br struct{ Target string }

func (Br) Op() string       { return "br" }
func (b Br) String() string { return "br " + b.Target }

type BrCond struct{ Cond, True, False string }

func (BrCond) Op() string { return "brcond" }
func (b BrCond) String() string {
	return fmt.Sprintf("brcond %s, %s, %s", b.Cond, b.True, b.False)
}

// Alloc reserves a named local slot. Size is its width in bytes.
type Alloc struct {
	Dst, Name string
	Size      int
}

func (Alloc) Op() string { return "alloca" }
func (a Alloc) String() string {
	return fmt.Sprintf("%s = alloca %s, %d", a.Dst, a.Name, a.Size)
}

type Load struct{ Dst, Addr string }

func (Load) Op() string       { return "load" }
func (l Load) String() string { return fmt.Sprintf("%s = load %s", l.Dst, l.Addr) }

type Store struct{ Addr, Val string }

func (Store) Op() string       { return "store" }
func (s Store) String() string { return fmt.Sprintf("store %s, %s", s.Addr, s.Val) }

func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(%s) {\n", f.Name, strings.Join(f.Params, ", "))
	for _, bb := range f.Blocks {
		if bb.Label != "" {
			fmt.Fprintf(&b, "%s:\n", bb.Label)
		}
		for _, ins := range bb.Insns {
			if s, ok := ins.(fmt.Stringer); ok {
				fmt.Fprintf(&b, "  %s\n", s)
			} else {
				fmt.Fprintf(&b, "  %s\n", ins.Op())
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
