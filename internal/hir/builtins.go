package hir

// builtinConstants are the MIN_VALUE/MAX_VALUE companions of the primitive types.
var builtinConstants = []struct {
	name string
	kind TypeKind
}{
	{"Byte", TypeKindByte},
	{"Short", TypeKindShort},
	{"Int", TypeKindInt},
	{"Char", TypeKindChar},
	{"Long", TypeKindLong},
}

// newBuiltins creates the builtin symbol table, keyed by "Type.NAME".
func newBuiltins() map[string]*Symbol {
	out := make(map[string]*Symbol, 2*len(builtinConstants))
	id := -1

	for _, b := range builtinConstants {
		lo, hi := b.kind.Range()
		for _, c := range []struct {
			suffix string
			value  int64
		}{{"MIN_VALUE", lo}, {"MAX_VALUE", hi}} {
			name := b.name + "." + c.suffix
			out[name] = &Symbol{
				ID:    id,
				Name:  name,
				Kind:  SymbolBuiltin,
				Type:  b.kind,
				Value: &HIRLiteral{Kind: b.kind, Value: c.value},
			}
			id--
		}
	}

	return out
}

// conversionMembers maps conversion method names to their target types.
var conversionMembers = map[string]TypeKind{
	"toByte":  TypeKindByte,
	"toShort": TypeKindShort,
	"toInt":   TypeKindInt,
	"toChar":  TypeKindChar,
	"toLong":  TypeKindLong,
}

// intrinsicFunctions are the free functions provided by the language.
var intrinsicFunctions = map[string]Intrinsic{
	"emit":    IntrinsicEmit,
	"println": IntrinsicPrintln,
}
