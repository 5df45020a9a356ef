package rangeloop

import (
	"github.com/orizon-lang/rangeopt/internal/hir"
	"github.com/orizon-lang/rangeopt/internal/mir"
)

// Targets are the blocks `continue` and `break` jump to inside a loop body.
type Targets struct {
	Continue *mir.BasicBlock
	Break    *mir.BasicBlock
}

// BodyFunc emits the loop body into the builder's current block.
type BodyFunc func(Targets)

// ExprLowerer is the part of the statement generator loops call back into.
type ExprLowerer interface {
	// Expr emits e into the current block and returns its value.
	Expr(e hir.HIRExpression) mir.Value
	// Bind makes slot the storage of the loop variable sym inside the body.
	Bind(sym *hir.Symbol, slot mir.Value)
}

// Generator emits one for-loop.
type Generator interface {
	Choice() Choice
	// Emit appends the loop at the builder's current block and leaves the
	// builder positioned on the loop exit.
	Emit(b *mir.Builder, lower ExprLowerer, v *hir.Symbol, body BodyFunc)
}

// generatorFor returns the generator implementing c.
func generatorFor(c Choice) Generator {
	switch c := c.(type) {
	case ConstBoundedLoop:
		return &constBoundedGenerator{loop: c}
	case DefinitelySafeProgressionLoop:
		return &definitelySafeGenerator{loop: c}
	case GenericProgressionLoop:
		return &genericGenerator{loop: c}
	}
	panic("rangeloop: unknown choice")
}

func unit(c mir.ValueClass) mir.Value { return mir.ConstInt(1, c) }

func stepOp(d Direction) mir.BinOpKind {
	if d == Descending {
		return mir.OpSub
	}
	return mir.OpAdd
}

// lowerBounds evaluates both ends in source order, receiver first.
func lowerBounds(b *mir.Builder, lower ExprLowerer, bv BoundedValue, c mir.ValueClass) (start, end mir.Value) {
	if bv.Swapped {
		end = b.Conv(lower.Expr(bv.End), c)
		start = b.Conv(lower.Expr(bv.Start), c)
		return start, end
	}
	start = b.Conv(lower.Expr(bv.Start), c)
	end = b.Conv(lower.Expr(bv.End), c)
	return start, end
}

// runBody emits the body block and falls through to next.
func runBody(b *mir.Builder, body BodyFunc, t Targets, next *mir.BasicBlock) {
	body(t)
	if !b.Terminated() {
		b.Br(next)
	}
}

type constBoundedGenerator struct{ loop ConstBoundedLoop }

func (g *constBoundedGenerator) Choice() Choice { return g.loop }

//	slot = start
//	head: if !(slot <= END) goto exit
//	body: ...
//	step: slot += 1; goto head
func (g *constBoundedGenerator) Emit(b *mir.Builder, lower ExprLowerer, v *hir.Symbol, body BodyFunc) {
	c := ClassOf(g.loop.Element)

	start := b.Conv(lower.Expr(g.loop.Start), c)
	slot := b.Alloca(v.Name, c)
	b.Store(slot, start)
	lower.Bind(v, slot)

	head := b.NewBlock("for_head")
	loop := b.NewBlock("for_body")
	step := b.NewBlock("for_step")
	exit := b.NewBlock("for_end")

	pred := mir.CmpSLE
	if g.loop.Step == Descending {
		pred = mir.CmpSGE
	}

	b.Br(head)
	b.Place(head)
	b.CondBr(b.Cmp(pred, b.Load(slot), mir.ConstInt(g.loop.End.Value, c)), loop, exit)

	b.Place(loop)
	runBody(b, body, Targets{Continue: step, Break: exit}, step)

	b.Place(step)
	b.Store(slot, b.BinOp(stepOp(g.loop.Step), c, b.Load(slot), unit(c)))
	b.Br(head)

	b.Place(exit)
}

type definitelySafeGenerator struct{ loop DefinitelySafeProgressionLoop }

func (g *definitelySafeGenerator) Choice() Choice { return g.loop }

//	slot = start; end = END
//	if start > end goto exit
//	body: ...
//	step: if slot == end goto exit
//	      slot += 1; goto body
func (g *definitelySafeGenerator) Emit(b *mir.Builder, lower ExprLowerer, v *hir.Symbol, body BodyFunc) {
	c := ClassOf(g.loop.Element)

	start, end := lowerBounds(b, lower, g.loop.Bounds, c)

	slot := b.Alloca(v.Name, c)
	b.Store(slot, start)
	lower.Bind(v, slot)

	endSlot := b.Alloca(v.Name+".end", c)
	b.Store(endSlot, end)

	loop := b.NewBlock("for_body")
	step := b.NewBlock("for_step")
	incr := b.NewBlock("for_incr")
	exit := b.NewBlock("for_end")

	empty := mir.CmpSGT
	if g.loop.Step == Descending {
		empty = mir.CmpSLT
	}
	b.CondBr(b.Cmp(empty, start, end), exit, loop)

	b.Place(loop)
	runBody(b, body, Targets{Continue: step, Break: exit}, step)

	b.Place(step)
	cur := b.Load(slot)
	b.CondBr(b.Cmp(mir.CmpEQ, cur, b.Load(endSlot)), exit, incr)

	b.Place(incr)
	b.Store(slot, b.BinOp(stepOp(g.loop.Step), c, cur, unit(c)))
	b.Br(loop)

	b.Place(exit)
}

type genericGenerator struct{ loop GenericProgressionLoop }

func (g *genericGenerator) Choice() Choice { return g.loop }

//	it = iterator(progression)
//	head: if !hasNext(it) goto exit
//	body: slot = next(it); ...; goto head
func (g *genericGenerator) Emit(b *mir.Builder, lower ExprLowerer, v *hir.Symbol, body BodyFunc) {
	c := ClassOf(g.loop.Element)

	p := lower.Expr(g.loop.Iterable)
	if g.loop.Reversed {
		p = b.Call(mir.RuntimeReversed, mir.ClassHandle, p)
	}
	it := b.Call(mir.RuntimeIterator, mir.ClassHandle, p)

	slot := b.Alloca(v.Name, c)
	lower.Bind(v, slot)

	head := b.NewBlock("for_head")
	loop := b.NewBlock("for_body")
	exit := b.NewBlock("for_end")

	b.Br(head)
	b.Place(head)
	b.CondBr(b.Call(mir.RuntimeHasNext, mir.ClassBool, it), loop, exit)

	b.Place(loop)
	b.Store(slot, b.Call(mir.RuntimeNext, c, it))
	runBody(b, body, Targets{Continue: head, Break: exit}, head)

	b.Place(exit)
}
