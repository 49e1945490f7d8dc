package frame

import (
	"sync"
	"time"
)

const (
	DefaultDedupSize = 1000
	DefaultDedupTTL  = 5 * time.Minute
)

// dedupEntry tracks a seen message ID.
type dedupEntry struct {
	id   string
	seen time.Time
}

// DedupWindow is a sliding window deduplicator for chat message ids.
// It remembers up to size ids or ttl, whichever is reached first.
type DedupWindow struct {
	mu      sync.Mutex
	size    int
	ttl     time.Duration
	entries []dedupEntry
	now     func() time.Time
}

// NewDedupWindow creates a window. Non-positive arguments fall back to the
// defaults.
func NewDedupWindow(size int, ttl time.Duration) *DedupWindow {
	if size <= 0 {
		size = DefaultDedupSize
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupWindow{
		size:    size,
		ttl:     ttl,
		entries: make([]dedupEntry, 0, size),
		now:     time.Now,
	}
}

// IsDuplicate returns true if id has already been seen.
// If not a duplicate, it records the id. Empty ids are never duplicates.
func (d *DedupWindow) IsDuplicate(id string) bool {
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()

	// Evict expired entries
	cutoff := now.Add(-d.ttl)
	start := 0
	for start < len(d.entries) && d.entries[start].seen.Before(cutoff) {
		start++
	}
	if start > 0 {
		d.entries = d.entries[start:]
	}

	for _, e := range d.entries {
		if e.id == id {
			return true
		}
	}

	if len(d.entries) >= d.size {
		d.entries = d.entries[1:]
	}

	d.entries = append(d.entries, dedupEntry{id: id, seen: now})
	return false
}

// Len returns the current number of tracked IDs.
func (d *DedupWindow) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
