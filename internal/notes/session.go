package notes

import "time"

// Session identifies who is writing and supplies the clock. It is passed into
// every call that stamps a note.
type Session struct {
	Author string
	Now    func() time.Time
}

func (s Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
