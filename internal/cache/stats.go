package cache

// Stats counts cache activity since construction.
type Stats struct {
	Hits              uint64
	Misses            uint64
	Loads             uint64 // misses satisfied by the store
	LoadFailures      uint64
	Evictions         uint64
	WriteBacks        uint64 // dirty evictions saved successfully
	WriteBackFailures uint64
	Flushes           uint64 // batched flushes issued by Flush or Close
}

// HitRatio returns hits over lookups, or 0 before any Get.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
