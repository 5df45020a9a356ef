package mir

import "fmt"

// Builder appends instructions to a function in program order.
//
// Blocks are created detached with NewBlock and attached to the function when
// they are placed, so the printed layout follows emission order.
type Builder struct {
	fn    *Function
	cur   *BasicBlock
	temp  int
	slots map[string]ValueClass
}

// NewBuilder starts a function with an entry block.
func NewBuilder(name string, ret ValueClass) *Builder {
	b := &Builder{
		fn:    &Function{Name: name, RetClass: ret},
		slots: make(map[string]ValueClass),
	}
	b.Place(&BasicBlock{Name: "entry"})
	return b
}

// Function returns the function being built.
func (b *Builder) Function() *Function { return b.fn }

// Current returns the block instructions are appended to.
func (b *Builder) Current() *BasicBlock { return b.cur }

// AddParam declares a parameter of class c and returns a reference to it.
func (b *Builder) AddParam(name string, c ValueClass) Value {
	v := Ref("%"+name, c)
	b.fn.Parameters = append(b.fn.Parameters, v)
	return v
}

func (b *Builder) newTemp() string {
	t := fmt.Sprintf("%%t%d", b.temp)
	b.temp++
	return t
}

// NewBlock creates a detached block with a unique label derived from prefix.
func (b *Builder) NewBlock(prefix string) *BasicBlock {
	t := b.temp
	b.temp++
	return &BasicBlock{Name: fmt.Sprintf("%s_t%d", prefix, t)}
}

// Place attaches bb to the function and makes it current.
func (b *Builder) Place(bb *BasicBlock) {
	b.fn.Blocks = append(b.fn.Blocks, bb)
	b.cur = bb
}

// Terminated reports whether the current block already ends with a terminator.
func (b *Builder) Terminated() bool {
	return b.cur.Terminator() != nil
}

// emit appends in to the current block. Instructions following a terminator
// land in a fresh unreachable block.
func (b *Builder) emit(in Instr) {
	if b.Terminated() {
		b.Place(b.NewBlock("cont"))
	}
	b.cur.Instr = append(b.cur.Instr, in)
}

// Alloca reserves a named slot of class c.
func (b *Builder) Alloca(name string, c ValueClass) Value {
	dst := fmt.Sprintf("%%%s.addr", name)
	if _, taken := b.slots[dst]; taken {
		dst = fmt.Sprintf("%%%s.addr%d", name, b.temp)
		b.temp++
	}
	b.slots[dst] = c
	b.emit(Alloca{Dst: dst, Name: name, Class: c})
	return Ref(dst, c)
}

// Load reads a slot created by Alloca.
func (b *Builder) Load(addr Value) Value {
	dst := b.newTemp()
	b.emit(Load{Dst: dst, Addr: addr})
	return Ref(dst, b.slots[addr.Ref])
}

// Store writes v into a slot.
func (b *Builder) Store(addr, v Value) {
	b.emit(Store{Addr: addr, Val: v})
}

// BinOp emits a wrapping arithmetic operation in class c.
func (b *Builder) BinOp(op BinOpKind, c ValueClass, lhs, rhs Value) Value {
	dst := b.newTemp()
	b.emit(BinOp{Dst: dst, Op: op, Class: c, LHS: lhs, RHS: rhs})
	return Ref(dst, c)
}

// Conv converts v to class to. Constants are converted in place and a
// conversion to the same class is a no-op.
func (b *Builder) Conv(v Value, to ValueClass) Value {
	if v.Class == to {
		return v
	}
	if v.Kind == ValConstInt {
		return ConstInt(v.Int64, to)
	}
	dst := b.newTemp()
	b.emit(Conv{Dst: dst, From: v.Class, To: to, Val: v})
	return Ref(dst, to)
}

// Cmp emits a comparison. Ordering predicates on unsigned operands are
// switched to their unsigned form.
func (b *Builder) Cmp(pred CmpPred, lhs, rhs Value) Value {
	if !lhs.Class.Signed() {
		pred = pred.Unsigned()
	}
	dst := b.newTemp()
	b.emit(Cmp{Dst: dst, Pred: pred, LHS: lhs, RHS: rhs})
	return Ref(dst, ClassBool)
}

// Call emits a call. A ClassUnknown return class discards the result.
func (b *Builder) Call(callee string, ret ValueClass, args ...Value) Value {
	in := Call{Callee: callee, Args: args, RetClass: ret}
	if ret != ClassUnknown {
		in.Dst = b.newTemp()
	}
	b.emit(in)
	if in.Dst == "" {
		return Value{}
	}
	return Ref(in.Dst, ret)
}

// Br ends the current block with a jump.
func (b *Builder) Br(target *BasicBlock) {
	b.emit(Br{Target: target.Name})
}

// CondBr ends the current block with a two-way branch.
func (b *Builder) CondBr(cond Value, t, f *BasicBlock) {
	b.emit(CondBr{Cond: cond, True: t.Name, False: f.Name})
}

// Ret ends the current block with a return; v may be nil.
func (b *Builder) Ret(v *Value) {
	b.emit(Ret{Val: v})
}

// Finish closes every open block and returns the function. Blocks left open
// are either the natural end of a Unit function or unreachable.
func (b *Builder) Finish() *Function {
	for _, bb := range b.fn.Blocks {
		if bb.Terminator() != nil {
			continue
		}
		if b.fn.RetClass == ClassUnknown {
			bb.Instr = append(bb.Instr, Ret{})
			continue
		}
		zero := ConstInt(0, b.fn.RetClass)
		bb.Instr = append(bb.Instr, Ret{Val: &zero})
	}
	return b.fn
}
