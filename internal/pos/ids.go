package pos

import (
	"sync"
	"time"
)

// IDSequence hands out order ids. Ids follow the wall clock in milliseconds
// but are strictly increasing: two orders finalized within the same
// millisecond, or after the clock steps back, still get distinct ids.
type IDSequence struct {
	mu   sync.Mutex
	last int64
}

func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

// Observe records an id already in use so later ids are greater.
func (s *IDSequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}

func (s *IDSequence) Next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := now.UnixMilli()
	if next <= s.last {
		next = s.last + 1
	}
	s.last = next
	return next
}

func (s *IDSequence) Last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}
