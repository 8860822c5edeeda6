package memory

import (
	"sync"
	"time"
)

// Tracker records every Mat allocated through the safe package so that
// leaks surface as a non-zero active count.
type Tracker struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
}

func NewTracker() *Tracker {
	return &Tracker{
		allocations: make(map[uint64]*AllocationRecord),
	}
}

func (t *Tracker) TrackAllocation(id uint64, size int64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	t.stats.TotalAllocated += size
	t.stats.ActiveMats++
}

func (t *Tracker) TrackDeallocation(id uint64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists := t.allocations[id]
	if !exists {
		return
	}

	delete(t.allocations, id)
	t.stats.TotalReleased += record.Size
	t.stats.ActiveMats--
}

func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.stats
}

// Active lists the tags of Mats that are still open.
func (t *Tracker) Active() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tags := make([]string, 0, len(t.allocations))
	for _, record := range t.allocations {
		tags = append(tags, record.Tag)
	}
	return tags
}
