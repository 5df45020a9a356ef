// Package mir defines a Mid-level IR used between HIR and LIR.
// It is SSA-lite: locals live in alloca slots, temporaries are assigned once,
// and every value carries the integer class it is computed in.
package mir

import (
	"fmt"
	"strings"
)

// Module is a compilation unit of MIR.
type Module struct {
	Name      string
	Functions []*Function
}

// Function returns the function with the given name.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Function is a collection of basic blocks. The first block is the entry.
type Function struct {
	Name       string
	Parameters []Value
	RetClass   ValueClass // ClassUnknown for Unit functions
	Blocks     []*BasicBlock
}

// Block returns the block with the given label.
func (f *Function) Block(name string) *BasicBlock {
	for _, bb := range f.Blocks {
		if bb.Name == name {
			return bb
		}
	}
	return nil
}

// BasicBlock is a sequence of instructions ending with a terminator.
type BasicBlock struct {
	Name  string
	Instr []Instr
}

// Terminator returns the last instruction if it ends the block.
func (bb *BasicBlock) Terminator() Instr {
	if len(bb.Instr) == 0 {
		return nil
	}
	last := bb.Instr[len(bb.Instr)-1]
	if IsTerminator(last) {
		return last
	}
	return nil
}

// Value represents an SSA-like value produced by an instruction or parameter.
type Value struct {
	Kind ValueKind
	// For constants
	Int64 int64
	// For instruction results and parameters
	Ref string
	// Integer class the value is computed in
	Class ValueClass
}

// ValueKind classifies the value category.
type ValueKind int

const (
	ValInvalid ValueKind = iota
	ValConstInt
	ValRef
)

// ConstInt returns an integer constant of class c, wrapped to its width.
func ConstInt(v int64, c ValueClass) Value {
	return Value{Kind: ValConstInt, Int64: c.Wrap(v), Class: c}
}

// Ref returns a reference to a named value of class c.
func Ref(name string, c ValueClass) Value {
	return Value{Kind: ValRef, Ref: name, Class: c}
}

// Instr is implemented by all MIR instructions.
type Instr interface{ isInstr() }

// BinOp represents a wrapping arithmetic operation in Class.
type BinOp struct {
	Dst   string
	Op    BinOpKind
	Class ValueClass
	LHS   Value
	RHS   Value
}

// Conv converts between integer classes: sign or zero extension by the
// signedness of From, truncation to To.
type Conv struct {
	Dst  string
	From ValueClass
	To   ValueClass
	Val  Value
}

// Ret returns from the current function with an optional value.
type Ret struct{ Val *Value }

// Call represents a call to a function of the module or to the runtime.
type Call struct {
	Dst      string
	Callee   string
	Args     []Value
	RetClass ValueClass // ClassUnknown when the result is unused
}

// Alloca allocates a local stack slot and returns its address (by reference name).
type Alloca struct {
	Dst   string // reference name for the slot address (e.g., %x.addr)
	Name  string // optional source name for readability
	Class ValueClass
}

// Load loads from an address into a destination value.
type Load struct {
	Dst  string
	Addr Value // expected to be a reference to an address
}

// Store stores a value into an address.
type Store struct {
	Addr Value
	Val  Value
}

// Cmp represents a comparison producing a Bool value (0/1).
type Cmp struct {
	Dst  string
	Pred CmpPred
	LHS  Value
	RHS  Value
}

// Unconditional branch to a target basic block label.
type Br struct{ Target string }

// Conditional branch based on a Bool value.
type CondBr struct {
	Cond  Value
	True  string
	False string
}

// BinOpKind enumerates supported binary operations at MIR level.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

func (BinOp) isInstr()  {}
func (Conv) isInstr()   {}
func (Ret) isInstr()    {}
func (Call) isInstr()   {}
func (Alloca) isInstr() {}
func (Load) isInstr()   {}
func (Store) isInstr()  {}
func (Cmp) isInstr()    {}
func (Br) isInstr()     {}
func (CondBr) isInstr() {}

// IsTerminator reports whether in ends a basic block.
func IsTerminator(in Instr) bool {
	switch in.(type) {
	case Ret, Br, CondBr:
		return true
	}
	return false
}

// ValueClass is the integer class a value is computed in.
type ValueClass int

const (
	ClassUnknown ValueClass = iota
	ClassI8
	ClassI16
	ClassI32
	ClassI64
	ClassU16
	ClassBool
	ClassHandle // opaque runtime object (progressions, iterators)
)

func (c ValueClass) String() string {
	switch c {
	case ClassI8:
		return "i8"
	case ClassI16:
		return "i16"
	case ClassI32:
		return "i32"
	case ClassI64:
		return "i64"
	case ClassU16:
		return "u16"
	case ClassBool:
		return "bool"
	case ClassHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Signed reports whether comparisons on c use signed predicates.
func (c ValueClass) Signed() bool {
	return c != ClassU16 && c != ClassBool
}

// Wrap normalizes v to the width and signedness of c.
func (c ValueClass) Wrap(v int64) int64 {
	switch c {
	case ClassI8:
		return int64(int8(v))
	case ClassI16:
		return int64(int16(v))
	case ClassI32:
		return int64(int32(v))
	case ClassU16:
		return int64(uint16(v))
	case ClassBool:
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}

// Bounds returns the inclusive value range of an integer class.
func (c ValueClass) Bounds() (lo, hi int64) {
	switch c {
	case ClassI8:
		return -1 << 7, 1<<7 - 1
	case ClassI16:
		return -1 << 15, 1<<15 - 1
	case ClassI32:
		return -1 << 31, 1<<31 - 1
	case ClassU16:
		return 0, 1<<16 - 1
	case ClassBool:
		return 0, 1
	}
	return -1 << 63, 1<<63 - 1
}

func (m *Module) String() string {
	if m == nil {
		return "<nil-mir-module>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Function) String() string {
	if f == nil {
		return "<nil-func>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(", f.Name)
	for i := range f.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", f.Parameters[i].Class, valString(f.Parameters[i]))
	}
	b.WriteString(")")
	if f.RetClass != ClassUnknown {
		fmt.Fprintf(&b, " %s", f.RetClass)
	}
	b.WriteString(" {\n")
	for _, bb := range f.Blocks {
		b.WriteString(bb.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (bb *BasicBlock) String() string {
	if bb == nil {
		return ""
	}
	var b strings.Builder
	if bb.Name != "" {
		fmt.Fprintf(&b, "%s:\n", bb.Name)
	}
	for _, in := range bb.Instr {
		b.WriteString("  ")
		if s, ok := any(in).(fmt.Stringer); ok {
			b.WriteString(s.String())
		} else {
			b.WriteString("<instr>")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (v Value) String() string { return valString(v) }

func valString(v Value) string {
	switch v.Kind {
	case ValConstInt:
		return fmt.Sprintf("%d", v.Int64)
	case ValRef:
		if v.Ref == "" {
			return "%ref?"
		}
		return v.Ref
	default:
		return "<invalid>"
	}
}

func (i BinOp) String() string {
	return fmt.Sprintf("%s = %s.%s %s, %s", i.Dst, i.Op, i.Class, i.LHS, i.RHS)
}

func (i Conv) String() string {
	return fmt.Sprintf("%s = conv.%s.%s %s", i.Dst, i.From, i.To, i.Val)
}

func (i Ret) String() string {
	if i.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", i.Val.String())
}

func (i Call) String() string {
	var b strings.Builder
	if i.Dst != "" {
		fmt.Fprintf(&b, "%s = ", i.Dst)
	}
	fmt.Fprintf(&b, "call %s(", i.Callee)
	for idx, a := range i.Args {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString(")")
	// Annotate classes for diagnostics
	if len(i.Args) > 0 || i.RetClass != ClassUnknown {
		b.WriteString(" ;")
		if len(i.Args) > 0 {
			b.WriteString(" args:")
			for j, a := range i.Args {
				if j > 0 {
					b.WriteString(",")
				}
				b.WriteString(a.Class.String())
			}
		}
		if i.RetClass != ClassUnknown {
			fmt.Fprintf(&b, " ret:%s", i.RetClass)
		}
	}
	return b.String()
}

func (i Alloca) String() string {
	if i.Name != "" {
		return fmt.Sprintf("%s = alloca %s %s", i.Dst, i.Class, i.Name)
	}
	return fmt.Sprintf("%s = alloca %s", i.Dst, i.Class)
}

func (i Load) String() string {
	return fmt.Sprintf("%s = load %s", i.Dst, i.Addr.String())
}

func (i Store) String() string {
	return fmt.Sprintf("store %s, %s", i.Addr.String(), i.Val.String())
}

// CmpPred enumerates compare predicates.
type CmpPred int

const (
	// Generic equality
	CmpEQ CmpPred = iota
	CmpNE
	// Signed integer comparisons
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
	// Unsigned integer comparisons
	CmpULT
	CmpULE
	CmpUGT
	CmpUGE
)

func (p CmpPred) String() string {
	switch p {
	case CmpEQ:
		return "eq"
	case CmpNE:
		return "ne"
	case CmpSLT:
		return "slt"
	case CmpSLE:
		return "sle"
	case CmpSGT:
		return "sgt"
	case CmpSGE:
		return "sge"
	case CmpULT:
		return "ult"
	case CmpULE:
		return "ule"
	case CmpUGT:
		return "ugt"
	case CmpUGE:
		return "uge"
	default:
		return "cmp?"
	}
}

// Unsigned returns the unsigned counterpart of a signed ordering predicate.
func (p CmpPred) Unsigned() CmpPred {
	switch p {
	case CmpSLT:
		return CmpULT
	case CmpSLE:
		return CmpULE
	case CmpSGT:
		return CmpUGT
	case CmpSGE:
		return CmpUGE
	}
	return p
}

// Eval applies the predicate to two values normalized to class c.
func (p CmpPred) Eval(a, b int64, c ValueClass) bool {
	if !c.Signed() {
		p = p.Unsigned()
	}
	switch p {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpSLT:
		return a < b
	case CmpSLE:
		return a <= b
	case CmpSGT:
		return a > b
	case CmpSGE:
		return a >= b
	case CmpULT:
		return uint64(a) < uint64(b)
	case CmpULE:
		return uint64(a) <= uint64(b)
	case CmpUGT:
		return uint64(a) > uint64(b)
	case CmpUGE:
		return uint64(a) >= uint64(b)
	}
	return false
}

func (i Cmp) String() string {
	return fmt.Sprintf("%s = cmp.%s %s, %s", i.Dst, i.Pred, i.LHS, i.RHS)
}

func (i Br) String() string { return fmt.Sprintf("br %s", i.Target) }

func (i CondBr) String() string {
	return fmt.Sprintf("brcond %s, %s, %s", i.Cond.String(), i.True, i.False)
}

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpRem:
		return "rem"
	default:
		return "binop?"
	}
}
