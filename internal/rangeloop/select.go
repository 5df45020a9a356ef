package rangeloop

import "github.com/orizon-lang/rangeopt/internal/hir"

// ForLoopGenerator selects the generator for iterating rc from its receiver
// to its argument.
func ForLoopGenerator(rc *RangeConstruct, opts Options) Generator {
	return generatorFor(Classify(rc, Forward, opts))
}

// ReversedLoopGenerator selects the generator for iterating rc from its
// argument back to its receiver.
func ReversedLoopGenerator(rc *RangeConstruct, opts Options) Generator {
	return generatorFor(Classify(rc, Backward, opts))
}

// Plan selects the generator for an arbitrary for-loop iterable. Iterables
// that are not built from a range literal always use the generic generator.
func Plan(iterable hir.HIRExpression, opts Options) Generator {
	rc, t, ok := Extract(iterable)
	if !ok {
		return generatorFor(GenericProgressionLoop{
			Iterable: iterable,
			Element:  iterable.GetType().ElementKind(),
			Why:      "iterable is not a range literal",
		})
	}

	if t == Backward {
		return ReversedLoopGenerator(rc, opts)
	}
	return ForLoopGenerator(rc, opts)
}
