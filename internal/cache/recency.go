package cache

import (
	"container/list"
	"errors"
)

var errDuplicateKey = errors.New("key already resident")

// entry is the value stored in the recency list elements. The key is kept
// here because eviction starts from list nodes.
type entry struct {
	key   string
	value string
}

// recencyList orders resident entries from most recently used (front) to
// least recently used (back). index holds exactly the keys in order; every
// method updates both before returning.
type recencyList struct {
	order *list.List
	index map[string]*list.Element
}

func newRecencyList() *recencyList {
	return &recencyList{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// lookup returns the value for key without changing its position.
func (r *recencyList) lookup(key string) (string, bool) {
	el, ok := r.index[key]
	if !ok {
		return "", false
	}
	return el.Value.(*entry).value, true
}

// moveToFront marks key as most recently used. It reports whether key was
// resident.
func (r *recencyList) moveToFront(key string) bool {
	el, ok := r.index[key]
	if !ok {
		return false
	}
	r.order.MoveToFront(el)
	return true
}

// insertFront adds a new entry as the most recently used. Callers must remove
// an existing entry for key first.
func (r *recencyList) insertFront(key, value string) error {
	if _, ok := r.index[key]; ok {
		return errDuplicateKey
	}
	r.index[key] = r.order.PushFront(&entry{key: key, value: value})
	return nil
}

// removeLeastRecent removes and returns the back entry.
func (r *recencyList) removeLeastRecent() (entry, bool) {
	el := r.order.Back()
	if el == nil {
		return entry{}, false
	}
	e := el.Value.(*entry)
	delete(r.index, e.key)
	r.order.Remove(el)
	return *e, true
}

// remove drops key from anywhere in the order.
func (r *recencyList) remove(key string) (entry, bool) {
	el, ok := r.index[key]
	if !ok {
		return entry{}, false
	}
	delete(r.index, key)
	r.order.Remove(el)
	return *el.Value.(*entry), true
}

func (r *recencyList) len() int {
	return len(r.index)
}

func (r *recencyList) contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

// each visits entries from most to least recently used.
func (r *recencyList) each(fn func(key, value string)) {
	for el := r.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		fn(e.key, e.value)
	}
}

// keys returns resident keys from most to least recently used.
func (r *recencyList) keys() []string {
	out := make([]string, 0, r.order.Len())
	r.each(func(key, _ string) {
		out = append(out, key)
	})
	return out
}
