package notes

import "time"

// Sequence hands out note ids derived from the wall clock in milliseconds,
// bumped past the previous id so rapid creation never collides.
type Sequence struct {
	last int64
}

// Next returns an id strictly greater than every id issued or observed.
func (s *Sequence) Next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe records an existing id so later ids stay above it.
func (s *Sequence) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
