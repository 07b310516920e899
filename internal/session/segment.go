package session

import "time"

// Duration returns the segment length. An open segment is measured up to now.
func (s *SegmentRecord) Duration(now time.Time) time.Duration {
	end := s.EndTime
	if end.IsZero() {
		if now.IsZero() {
			now = time.Now()
		}
		end = now
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

func (s *SegmentRecord) IsActive() bool {
	return s.EndTime.IsZero()
}
