// Package features maps a language version to the loop generators it enables.
package features

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/rangeopt/internal/rangeloop"
)

// Feature names a version-gated behavior of the lowering.
type Feature string

const (
	ConstBoundedRangeLoops Feature = "const-bounded-range-loops"
	SimpleProgressionLoops Feature = "simple-progression-loops"
	ReversedRangeLoops     Feature = "reversed-range-loops"
)

// LatestVersion is the language version assumed when none is configured.
const LatestVersion = "1.1.0"

var since = map[Feature]string{
	SimpleProgressionLoops: ">= 1.0.0",
	ConstBoundedRangeLoops: ">= 1.1.0",
	ReversedRangeLoops:     ">= 1.1.0",
}

// Set is the collection of features enabled for one language version.
type Set struct {
	Version *semver.Version
	enabled map[Feature]bool
}

// ForVersion resolves the features of a language version such as "1.1" or
// "1.0.3". An empty string selects LatestVersion.
func ForVersion(v string) (*Set, error) {
	if v == "" {
		v = LatestVersion
	}

	ver, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid language version %q: %w", v, err)
	}

	s := &Set{Version: ver, enabled: make(map[Feature]bool, len(since))}
	for f, expr := range since {
		c, err := semver.NewConstraint(expr)
		if err != nil {
			return nil, err
		}
		s.enabled[f] = c.Check(ver)
	}
	return s, nil
}

// Enabled reports whether f is available.
func (s *Set) Enabled(f Feature) bool { return s.enabled[f] }

// Disable switches f off regardless of the version.
func (s *Set) Disable(f Feature) { s.enabled[f] = false }

// List returns the enabled features in name order.
func (s *Set) List() []Feature {
	var out []Feature
	for f, on := range s.enabled {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LoopOptions converts the set to generator switches.
func (s *Set) LoopOptions() rangeloop.Options {
	return rangeloop.Options{
		ConstBounded:      s.Enabled(ConstBoundedRangeLoops),
		SimpleProgression: s.Enabled(SimpleProgressionLoops),
		Reversed:          s.Enabled(ReversedRangeLoops),
	}
}
