package mir

// Callees provided by the runtime rather than by the module. Progressions and
// iterators are passed around as ClassHandle values.
const (
	RuntimeRangeTo  = "rt.rangeTo"
	RuntimeDownTo   = "rt.downTo"
	RuntimeStep     = "rt.step"
	RuntimeReversed = "rt.reversed"
	RuntimeIterator = "rt.iterator"
	RuntimeHasNext  = "rt.hasNext"
	RuntimeNext     = "rt.next"
	RuntimeEmit     = "emit"
	RuntimePrintln  = "println"
)
