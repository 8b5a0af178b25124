package cadence

import (
	"sync"
	"time"
)

// StopRecord describes one forced stop of a channel.
type StopRecord struct {
	Action string
	Reason StopReason
	At     time.Time
}

// stopRing is a thread-safe ring buffer of recent forced stops.
type stopRing struct {
	mu      sync.RWMutex
	records []StopRecord
	size    int
	head    int
	count   int
}

// newStopRing creates a stop ring with the given capacity.
// If size is 0, the ring buffer is disabled.
func newStopRing(size int) *stopRing {
	if size <= 0 {
		return nil
	}
	return &stopRing{
		records: make([]StopRecord, size),
		size:    size,
	}
}

// push adds a record to the ring buffer.
func (r *stopRing) push(rec StopRecord) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[r.head] = rec
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// all returns the buffered records, oldest first.
func (r *stopRing) all() []StopRecord {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]StopRecord, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.records[(start+i)%r.size]
	}
	return result
}
