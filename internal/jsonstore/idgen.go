package jsonstore

import (
	"sync"
	"time"
)

// IDGenerator hands out strictly increasing ids seeded from the wall clock
// in milliseconds. Ids stay ahead of anything already persisted, so a
// restart with a slower clock still never repeats one.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns an id greater than floor and than every id returned before.
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}
