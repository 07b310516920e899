package session

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/duration"
)

// New returns a pending session. Strategy-specific fields are attached by the
// caller before Start.
func New(id, userID string, strategy Strategy) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		Strategy: strategy,
		Status:   StatusPending,
	}
}

// Start moves a pending session to running and opens the first segment.
func (s *Session) Start(now time.Time) error {
	if s.Status != StatusPending {
		return fmt.Errorf("start from %s: %w", s.Status, ErrInvalidState)
	}
	if now.IsZero() {
		now = time.Now()
	}
	s.StartedAt = now
	s.Status = StatusRunning
	s.addSegment(now)
	return nil
}

// Pause moves running to paused. Any other status is left untouched and
// false is returned, so duplicate calls are harmless.
func (s *Session) Pause(now time.Time) bool {
	if s.Status != StatusRunning {
		return false
	}
	s.Status = StatusPaused
	s.endSegment(now, "pause")
	return true
}

// Resume moves paused to running. Any other status is left untouched.
func (s *Session) Resume(now time.Time) bool {
	if s.Status != StatusPaused {
		return false
	}
	if now.IsZero() {
		now = time.Now()
	}
	s.Status = StatusRunning
	s.addSegment(now)
	return true
}

// Finish records the terminal transition. It returns false if the session
// already ended; the first outcome wins.
func (s *Session) Finish(now time.Time, status Status, actualMinutes int) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("finish with %s: %w", status, ErrInvalidState)
	}
	if s.Status.Terminal() {
		return false, nil
	}
	if s.Status == StatusPending {
		return false, fmt.Errorf("finish from %s: %w", s.Status, ErrInvalidState)
	}
	if now.IsZero() {
		now = time.Now()
	}
	s.endSegment(now, string(status))
	s.EndedAt = now
	s.Status = status
	actual := actualMinutes
	s.ActualDuration = &actual
	return true, nil
}

func (s *Session) IsTerminal() bool {
	return s.Status.Terminal()
}

// WorkedDuration sums the running segments. Open segments count up to now.
func (s *Session) WorkedDuration(now time.Time) time.Duration {
	var total time.Duration
	for i := range s.Segments {
		total += s.Segments[i].Duration(now)
	}
	return total
}

// WorkedMinutes is WorkedDuration in whole minutes.
func (s *Session) WorkedMinutes(now time.Time) int {
	return duration.Minutes(s.WorkedDuration(now))
}

// WallMinutes is the whole minutes between start and end (or now while the
// session is still open).
func (s *Session) WallMinutes(now time.Time) int {
	end := s.EndedAt
	if end.IsZero() {
		end = now
	}
	return duration.WallMinutes(s.StartedAt, end)
}

// Validate checks the record-level invariants.
func (s *Session) Validate() error {
	if s.ID == "" {
		return NewValidationError("id", "empty")
	}
	if s.UserID == "" {
		return NewValidationError("user", "empty")
	}
	if !s.Strategy.Valid() {
		return NewValidationError("strategy", fmt.Sprintf("unknown %q", s.Strategy))
	}
	terminal := s.Status.Terminal()
	if terminal != (s.ActualDuration != nil) {
		return NewValidationError("actualDuration", "set iff terminal")
	}
	if terminal != !s.EndedAt.IsZero() {
		return NewValidationError("endedAt", "set iff terminal")
	}
	if (s.Status != StatusPending) != !s.StartedAt.IsZero() {
		return NewValidationError("startedAt", "set iff started")
	}
	if (s.Strategy == StrategyPomodoro) != (s.Pomodoro != nil) {
		return NewValidationError("pomodoro", "fields do not match strategy")
	}
	if (s.Strategy == StrategyFlowtime) != (s.Flowtime != nil) {
		return NewValidationError("flowtime", "fields do not match strategy")
	}
	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.ActualDuration != nil {
		v := *s.ActualDuration
		c.ActualDuration = &v
	}
	if s.Segments != nil {
		c.Segments = append([]SegmentRecord(nil), s.Segments...)
	}
	if s.Pomodoro != nil {
		p := *s.Pomodoro
		if s.Pomodoro.BreakTaken != nil {
			v := *s.Pomodoro.BreakTaken
			p.BreakTaken = &v
		}
		c.Pomodoro = &p
	}
	if s.Flowtime != nil {
		f := *s.Flowtime
		if s.Flowtime.SuggestedBreakDuration != nil {
			v := *s.Flowtime.SuggestedBreakDuration
			f.SuggestedBreakDuration = &v
		}
		c.Flowtime = &f
	}
	return &c
}

func (s *Session) addSegment(start time.Time) {
	if n := len(s.Segments); n > 0 && s.Segments[n-1].IsActive() {
		return
	}
	s.Segments = append(s.Segments, SegmentRecord{StartTime: start})
}

func (s *Session) endSegment(end time.Time, reason string) {
	n := len(s.Segments)
	if n == 0 || !s.Segments[n-1].IsActive() {
		return
	}
	if end.IsZero() {
		end = time.Now()
	}
	s.Segments[n-1].EndTime = end
	s.Segments[n-1].Reason = reason
}
