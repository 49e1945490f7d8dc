package frame

import (
	"strconv"
	"sync"
	"time"
)

// IDGen hands out monotonic numeric request ids for the "id" field of
// outbound frames. Thread-safe via mutex.
type IDGen struct {
	mu   sync.Mutex
	last uint64
}

// NewIDGen creates a generator seeded from the current millisecond clock so
// ids from consecutive processes do not collide.
func NewIDGen() *IDGen {
	return &IDGen{last: uint64(time.Now().UnixMilli()) % 1_000_000_000}
}

// Next returns the next id as a decimal string.
func (g *IDGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return strconv.FormatUint(g.last, 10)
}
