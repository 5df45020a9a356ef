// Package constant evaluates HIR expressions to compile-time literals.
//
// Only literals, builtin companions (Int.MAX_VALUE and friends), references to
// `const val` declarations and operators over those are constant. Locals,
// parameters and calls never are, mirroring how the source language defines
// constant expressions.
package constant

import (
	"fmt"

	"github.com/orizon-lang/rangeopt/internal/hir"
)

// Kind is the type tag of a constant.
type Kind int

const (
	KindByte Kind = iota
	KindShort
	KindInt
	KindChar
	KindLong
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindChar:
		return "Char"
	case KindLong:
		return "Long"
	case KindBoolean:
		return "Boolean"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf maps a primitive type to its constant kind.
func KindOf(t hir.TypeKind) (Kind, bool) {
	switch t {
	case hir.TypeKindByte:
		return KindByte, true
	case hir.TypeKindShort:
		return KindShort, true
	case hir.TypeKindInt:
		return KindInt, true
	case hir.TypeKindChar:
		return KindChar, true
	case hir.TypeKindLong:
		return KindLong, true
	case hir.TypeKindBoolean:
		return KindBoolean, true
	}
	return 0, false
}

// TypeKind returns the HIR type of k.
func (k Kind) TypeKind() hir.TypeKind {
	switch k {
	case KindByte:
		return hir.TypeKindByte
	case KindShort:
		return hir.TypeKindShort
	case KindInt:
		return hir.TypeKindInt
	case KindChar:
		return hir.TypeKindChar
	case KindLong:
		return hir.TypeKindLong
	case KindBoolean:
		return hir.TypeKindBoolean
	}
	return hir.TypeKindInvalid
}

// Value is a typed compile-time constant. Raw holds the integer value
// already wrapped to the width of Kind; characters hold their unsigned
// ordinal and booleans 0 or 1.
type Value struct {
	Kind Kind
	Raw  int64
}

// Make builds a value of kind k, wrapping raw to its width.
func Make(k Kind, raw int64) Value {
	return Value{Kind: k, Raw: k.TypeKind().Wrap(raw)}
}

// IsInteger reports whether v is one of the integer kinds, Char included.
func (v Value) IsInteger() bool {
	return v.Kind != KindBoolean
}

// Bool returns the truth value of a Boolean constant.
func (v Value) Bool() bool {
	return v.Raw != 0
}

func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool())
	case KindChar:
		if v.Raw >= 0x20 && v.Raw < 0x7f && v.Raw != '\'' && v.Raw != '\\' {
			return fmt.Sprintf("'%c'", rune(v.Raw))
		}
		return fmt.Sprintf("'\\u%04X'", v.Raw)
	case KindLong:
		return fmt.Sprintf("%dL", v.Raw)
	}
	return fmt.Sprintf("%d", v.Raw)
}

// Evaluator maps an expression to its constant value. Implementations must be
// pure: asking twice about the same node yields the same answer.
type Evaluator interface {
	Evaluate(expr hir.HIRExpression) (Value, bool)
}

// Folder is the default Evaluator. It memoizes per node and is meant to be
// used by one compilation at a time.
type Folder struct {
	memo map[hir.NodeID]result
}

type result struct {
	value Value
	ok    bool
}

// NewFolder creates an empty Folder.
func NewFolder() *Folder {
	return &Folder{memo: make(map[hir.NodeID]result)}
}

// Evaluate implements Evaluator.
func (f *Folder) Evaluate(expr hir.HIRExpression) (Value, bool) {
	if expr == nil {
		return Value{}, false
	}

	id := expr.GetID()
	if id != 0 {
		if r, ok := f.memo[id]; ok {
			return r.value, r.ok
		}
	}

	v, ok := f.fold(expr)
	if id != 0 {
		f.memo[id] = result{value: v, ok: ok}
	}
	return v, ok
}

func (f *Folder) fold(expr hir.HIRExpression) (Value, bool) {
	switch e := expr.(type) {
	case *hir.HIRLiteral:
		k, ok := KindOf(e.Kind)
		if !ok {
			return Value{}, false
		}
		return Make(k, e.Value), true

	case *hir.HIRIdentifier:
		switch e.Symbol.Kind {
		case hir.SymbolConstant, hir.SymbolBuiltin:
			return f.Evaluate(e.Symbol.Value)
		}
		return Value{}, false

	case *hir.HIRConversion:
		v, ok := f.Evaluate(e.Operand)
		if !ok {
			return Value{}, false
		}
		k, ok := KindOf(e.Type)
		if !ok || !v.IsInteger() {
			return Value{}, false
		}
		return Make(k, v.Raw), true

	case *hir.HIRUnaryExpression:
		v, ok := f.Evaluate(e.Operand)
		if !ok {
			return Value{}, false
		}
		switch e.Operator {
		case "-":
			return Make(v.Kind, -v.Raw), true
		case "!":
			return Make(KindBoolean, 1-v.Raw), true
		}
		return Value{}, false

	case *hir.HIRBinaryExpression:
		return f.binary(e)
	}

	return Value{}, false
}

func (f *Folder) binary(e *hir.HIRBinaryExpression) (Value, bool) {
	l, ok := f.Evaluate(e.Left)
	if !ok {
		return Value{}, false
	}

	// Short-circuit operators only need the right side when it matters.
	switch e.Operator {
	case "&&":
		if !l.Bool() {
			return Make(KindBoolean, 0), true
		}
		return f.Evaluate(e.Right)
	case "||":
		if l.Bool() {
			return Make(KindBoolean, 1), true
		}
		return f.Evaluate(e.Right)
	}

	r, ok := f.Evaluate(e.Right)
	if !ok {
		return Value{}, false
	}

	if e.IsComparison() {
		return Make(KindBoolean, boolRaw(Compare(e.Operator, l.Raw, r.Raw))), true
	}

	raw, ok := Arith(e.Operator, l.Raw, r.Raw)
	if !ok {
		return Value{}, false
	}
	return Make(l.Kind, raw), true
}

func boolRaw(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Compare applies a comparison operator to two integers of the same kind.
func Compare(op string, a, b int64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// Arith applies an arithmetic operator with 64-bit wrapping semantics; the
// caller narrows the result to the operand kind. Division by zero is not
// constant.
func Arith(op string, a, b int64) (int64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return -a, true
		}
		return a / b, true
	case "%":
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return 0, true
		}
		return a % b, true
	}
	return 0, false
}
