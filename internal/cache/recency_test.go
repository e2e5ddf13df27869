package cache

import (
	"errors"
	"reflect"
	"testing"
)

func TestRecencyListOrdering(t *testing.T) {
	r := newRecencyList()
	for _, key := range []string{"a", "b", "c"} {
		if err := r.insertFront(key, key+"-value"); err != nil {
			t.Fatalf("insert %s: %v", key, err)
		}
	}
	if got := r.keys(); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("keys = %v", got)
	}

	if !r.moveToFront("a") {
		t.Fatal("expected a to be resident")
	}
	if got := r.keys(); !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Fatalf("keys after move = %v", got)
	}

	// Already at front: order is unchanged.
	r.moveToFront("a")
	if got := r.keys(); !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Fatalf("keys after second move = %v", got)
	}

	if r.moveToFront("missing") {
		t.Fatal("expected missing key to report false")
	}
}

func TestRecencyListInsertDuplicate(t *testing.T) {
	r := newRecencyList()
	if err := r.insertFront("a", "1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := r.insertFront("a", "2"); !errors.Is(err, errDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
	if value, _ := r.lookup("a"); value != "1" {
		t.Fatalf("value = %q, want original", value)
	}
	if r.len() != 1 {
		t.Fatalf("len = %d, want 1", r.len())
	}
}

func TestRecencyListRemoveLeastRecent(t *testing.T) {
	r := newRecencyList()
	if _, ok := r.removeLeastRecent(); ok {
		t.Fatal("expected empty list to report false")
	}

	_ = r.insertFront("a", "1")
	_ = r.insertFront("b", "2")

	e, ok := r.removeLeastRecent()
	if !ok {
		t.Fatal("expected an entry")
	}
	if e.key != "a" || e.value != "1" {
		t.Fatalf("removed %+v, want a=1", e)
	}
	if r.contains("a") {
		t.Fatal("expected a to leave the index")
	}
	assertBijection(t, r)
}

func TestRecencyListRemoveArbitrary(t *testing.T) {
	r := newRecencyList()
	for _, key := range []string{"a", "b", "c"} {
		_ = r.insertFront(key, key)
	}

	e, ok := r.remove("b")
	if !ok || e.key != "b" {
		t.Fatalf("remove b = (%+v, %v)", e, ok)
	}
	if _, ok := r.remove("b"); ok {
		t.Fatal("expected second remove to report false")
	}
	if got := r.keys(); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("keys = %v", got)
	}
	assertBijection(t, r)
}

func TestDirtyTracker(t *testing.T) {
	d := make(dirtyTracker)
	if d.isDirty("k") {
		t.Fatal("absent key must be clean")
	}
	d.markDirty("k")
	if !d.isDirty("k") {
		t.Fatal("expected dirty")
	}
	d.markClean("k")
	if d.isDirty("k") {
		t.Fatal("expected clean")
	}
	d.markDirty("k")
	d.markDirty("j")
	if d.count() != 2 {
		t.Fatalf("count = %d, want 2", d.count())
	}
	d.clear("k")
	if d.isDirty("k") {
		t.Fatal("expected cleared key to be clean")
	}
	if _, ok := d["k"]; ok {
		t.Fatal("expected clear to drop bookkeeping")
	}
}

func assertBijection(t *testing.T, r *recencyList) {
	t.Helper()
	if r.order.Len() != len(r.index) {
		t.Fatalf("list has %d entries, index has %d", r.order.Len(), len(r.index))
	}
	for el := r.order.Front(); el != nil; el = el.Next() {
		key := el.Value.(*entry).key
		if r.index[key] != el {
			t.Fatalf("index for %q does not point at its list node", key)
		}
	}
}
