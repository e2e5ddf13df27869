package cache

// dirtyTracker records which resident keys differ from their last persisted
// value. A key without an entry is clean.
type dirtyTracker map[string]bool

func (d dirtyTracker) markDirty(key string) {
	d[key] = true
}

func (d dirtyTracker) markClean(key string) {
	d[key] = false
}

func (d dirtyTracker) isDirty(key string) bool {
	return d[key]
}

// clear drops all bookkeeping for key, used once an entry leaves the cache.
func (d dirtyTracker) clear(key string) {
	delete(d, key)
}

func (d dirtyTracker) count() int {
	n := 0
	for _, dirty := range d {
		if dirty {
			n++
		}
	}
	return n
}
