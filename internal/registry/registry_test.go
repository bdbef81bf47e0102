package registry_test

import (
	"reflect"
	"testing"

	"github.com/jpetrucciani/epimetheus/internal/flatten"
	"github.com/jpetrucciani/epimetheus/internal/registry"
)

func pairs(kv ...any) []flatten.Pair {
	out := make([]flatten.Pair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, flatten.Pair{Name: kv[i].(string), Value: kv[i+1].(float64)})
	}
	return out
}

func TestCommitAndSnapshot(t *testing.T) {
	r := registry.New()
	r.Commit("s1", pairs("b", 2.0, "a", 1.0))

	got := r.Snapshot()
	want := pairs("a", 1.0, "b", 2.0) // sorted by name
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCommitEvictsStaleNames(t *testing.T) {
	r := registry.New()
	r.Commit("s1", pairs("a", 1.0, "b", 2.0))
	r.Commit("s1", pairs("b", 3.0))

	got := r.Snapshot()
	want := pairs("b", 3.0)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCommitEmptyRemovesAllOwnedNames(t *testing.T) {
	r := registry.New()
	r.Commit("s1", pairs("a", 1.0, "b", 2.0))
	r.Commit("s1", nil)

	if got := r.Len(); got != 0 {
		t.Errorf("expected empty registry, got %d entries", got)
	}
}

func TestEvictionIsScopedPerSource(t *testing.T) {
	r := registry.New()
	r.Commit("s1", pairs("a", 1.0))
	r.Commit("s2", pairs("b", 2.0))
	r.Commit("s1", pairs("c", 3.0))

	got := r.Snapshot()
	want := pairs("b", 2.0, "c", 3.0)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCrossSourceTakeoverLastCommitterWins(t *testing.T) {
	r := registry.New()
	r.Commit("s1", pairs("shared", 1.0))
	r.Commit("s2", pairs("shared", 2.0))

	if v, ok := r.Get("shared"); !ok || v != 2.0 {
		t.Fatalf("got (%v, %v), want (2, true)", v, ok)
	}

	// s1 no longer owns the name; emptying s1 must not evict it.
	r.Commit("s1", nil)
	if _, ok := r.Get("shared"); !ok {
		t.Error("takeover victim's empty commit evicted another source's metric")
	}
}

func TestGetAndLen(t *testing.T) {
	r := registry.New()
	if _, ok := r.Get("missing"); ok {
		t.Error("Get on empty registry reported a hit")
	}

	r.Commit("s1", pairs("a", 1.5))
	if v, ok := r.Get("a"); !ok || v != 1.5 {
		t.Errorf("got (%v, %v), want (1.5, true)", v, ok)
	}
	if got := r.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
