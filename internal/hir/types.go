package hir

import "fmt"

// TypeKind classifies the types of the source language. Every value in the
// language is a primitive or a primitive progression.
type TypeKind int

const (
	TypeKindInvalid TypeKind = iota
	TypeKindUnit
	TypeKindBoolean
	TypeKindByte
	TypeKindShort
	TypeKindInt
	TypeKindChar
	TypeKindLong
	TypeKindIntProgression
	TypeKindCharProgression
	TypeKindLongProgression
)

var typeKindNames = map[TypeKind]string{
	TypeKindInvalid:         "<invalid>",
	TypeKindUnit:            "Unit",
	TypeKindBoolean:         "Boolean",
	TypeKindByte:            "Byte",
	TypeKindShort:           "Short",
	TypeKindInt:             "Int",
	TypeKindChar:            "Char",
	TypeKindLong:            "Long",
	TypeKindIntProgression:  "IntProgression",
	TypeKindCharProgression: "CharProgression",
	TypeKindLongProgression: "LongProgression",
}

// String returns the source-level name of the type
func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// typesByName maps type annotations to kinds.
var typesByName = map[string]TypeKind{
	"Unit":    TypeKindUnit,
	"Boolean": TypeKindBoolean,
	"Byte":    TypeKindByte,
	"Short":   TypeKindShort,
	"Int":     TypeKindInt,
	"Char":    TypeKindChar,
	"Long":    TypeKindLong,
}

// LookupType resolves a type annotation.
func LookupType(name string) (TypeKind, bool) {
	k, ok := typesByName[name]
	return k, ok
}

// IsIntegral reports whether values of k are integers (including Char).
func (k TypeKind) IsIntegral() bool {
	switch k {
	case TypeKindByte, TypeKindShort, TypeKindInt, TypeKindChar, TypeKindLong:
		return true
	}
	return false
}

// IsIntLike reports whether k promotes to Int in arithmetic.
func (k TypeKind) IsIntLike() bool {
	return k == TypeKindByte || k == TypeKindShort || k == TypeKindInt
}

// IsNumeric reports whether k participates in arithmetic.
func (k TypeKind) IsNumeric() bool {
	return k.IsIntLike() || k == TypeKindLong
}

// IsProgression reports whether k is a progression type.
func (k TypeKind) IsProgression() bool {
	switch k {
	case TypeKindIntProgression, TypeKindCharProgression, TypeKindLongProgression:
		return true
	}
	return false
}

// ElementKind returns the element type of a progression.
func (k TypeKind) ElementKind() TypeKind {
	switch k {
	case TypeKindIntProgression:
		return TypeKindInt
	case TypeKindCharProgression:
		return TypeKindChar
	case TypeKindLongProgression:
		return TypeKindLong
	}
	return TypeKindInvalid
}

// StepKind returns the type of the step of a progression: Long for
// LongProgression, Int otherwise.
func (k TypeKind) StepKind() TypeKind {
	if k == TypeKindLongProgression {
		return TypeKindLong
	}
	return TypeKindInt
}

// ProgressionOf returns the progression type whose elements are elem.
func ProgressionOf(elem TypeKind) TypeKind {
	switch {
	case elem == TypeKindChar:
		return TypeKindCharProgression
	case elem == TypeKindLong:
		return TypeKindLongProgression
	case elem.IsIntLike():
		return TypeKindIntProgression
	}
	return TypeKindInvalid
}

// Bits returns the width of an integral kind.
func (k TypeKind) Bits() int {
	switch k {
	case TypeKindByte:
		return 8
	case TypeKindShort, TypeKindChar:
		return 16
	case TypeKindInt:
		return 32
	case TypeKindLong:
		return 64
	case TypeKindBoolean:
		return 1
	}
	return 0
}

// Range returns the inclusive bounds of an integral kind.
func (k TypeKind) Range() (lo, hi int64) {
	switch k {
	case TypeKindByte:
		return -1 << 7, 1<<7 - 1
	case TypeKindShort:
		return -1 << 15, 1<<15 - 1
	case TypeKindInt:
		return -1 << 31, 1<<31 - 1
	case TypeKindChar:
		return 0, 1<<16 - 1
	case TypeKindLong:
		return -1 << 63, 1<<63 - 1
	}
	return 0, 0
}

// Fits reports whether v is representable in kind k.
func (k TypeKind) Fits(v int64) bool {
	lo, hi := k.Range()
	return k.IsIntegral() && lo <= v && v <= hi
}

// Wrap truncates v to the width of k with the signedness of k.
func (k TypeKind) Wrap(v int64) int64 {
	switch k {
	case TypeKindByte:
		return int64(int8(v))
	case TypeKindShort:
		return int64(int16(v))
	case TypeKindInt:
		return int64(int32(v))
	case TypeKindChar:
		return int64(uint16(v))
	case TypeKindBoolean:
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}
