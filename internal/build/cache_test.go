package build

import (
	"testing"

	"github.com/orizon-lang/rangeopt/internal/codegen"
)

func TestCache_Basic(t *testing.T) {
	c := NewCache(2)
	u1, u2, u3 := &Unit{Filename: "a"}, &Unit{Filename: "b"}, &Unit{Filename: "c"}
	c.Put("k1", u1)
	c.Put("k2", u2)
	if got, ok := c.Get("k1"); !ok || got != u1 {
		t.Fatalf("expected hit k1")
	}
	c.Put("k3", u3) // should evict k2
	if _, ok := c.Get("k2"); ok {
		t.Fatalf("expected eviction of k2")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Fatalf("expected hit k3")
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Evictions != 1 || st.Entries != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}

	c.Invalidate("k1")
	if _, ok := c.Get("k1"); ok {
		t.Fatalf("expected k1 to be invalidated")
	}
}

func TestKeyFor_DependsOnOptions(t *testing.T) {
	src := "fun main() {}"
	on := KeyFor("a.kt", src, codegen.DefaultOptions())
	off := KeyFor("a.kt", src, codegen.Options{})

	if on == off {
		t.Fatalf("expected different keys for different generator switches")
	}
	if on != KeyFor("a.kt", src, codegen.DefaultOptions()) {
		t.Fatalf("expected stable keys")
	}
	if on == KeyFor("b.kt", src, codegen.DefaultOptions()) {
		t.Fatalf("expected the file name to be part of the key")
	}
}

func TestCache_CompileReusesUnits(t *testing.T) {
	c := NewCache(0)
	src := "fun main() {\n    for (i in 0..3) emit(i)\n}\n"

	first, err := c.Compile("loop.kt", src, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := c.Compile("loop.kt", src, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("expected the second compile to hit the cache")
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCache_CompileErrorsAreNotCached(t *testing.T) {
	c := NewCache(0)

	if _, err := c.Compile("bad.kt", "fun main( {", codegen.DefaultOptions()); err == nil {
		t.Fatalf("expected a parse error")
	}
	if st := c.Stats(); st.Entries != 0 {
		t.Fatalf("expected no cached entries, got %d", st.Entries)
	}
}
