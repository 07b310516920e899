package session

import "time"

// Strategy tags the work-tracking variant of a session.
type Strategy string

const (
	StrategyPomodoro Strategy = "pomodoro"
	StrategyFlowtime Strategy = "flowtime"
	StrategyFree     Strategy = "free_session"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyPomodoro, StrategyFlowtime, StrategyFree:
		return true
	}
	return false
}

// Status is a state of the session lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusPaused      Status = "paused"
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
)

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusInterrupted
}

// SegmentRecord is one running interval of a session. Pauses close the
// current segment, resumes open a new one.
type SegmentRecord struct {
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"stop"`
	Reason    string    `json:"reason,omitempty"`
}

// PomodoroFields holds the Pomodoro-only part of a session.
type PomodoroFields struct {
	TargetDuration int  `json:"target_duration"`
	PauseDuration  int  `json:"pause_duration"`
	PauseCount     int  `json:"pause_count"`
	BreakDuration  int  `json:"break_duration,omitempty"`
	BreakTaken     *int `json:"break_taken,omitempty"`
}

// FlowtimeFields holds the Flowtime-only part of a session.
type FlowtimeFields struct {
	BreakRatio             int  `json:"break_ratio"`
	SuggestedBreakDuration *int `json:"suggested_break_duration,omitempty"`
}

// Session is a single tracked work interval. Durations are whole minutes.
// EndedAt and ActualDuration are only set once the session is terminal.
type Session struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Strategy       Strategy        `json:"strategy"`
	Goal           string          `json:"goal,omitempty"`
	TaskRef        string          `json:"task_ref,omitempty"`
	EventRef       string          `json:"event_ref,omitempty"`
	Status         Status          `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        time.Time       `json:"ended_at"`
	ActualDuration *int            `json:"actual_duration,omitempty"`
	Segments       []SegmentRecord `json:"segments,omitempty"`

	Pomodoro *PomodoroFields `json:"pomodoro,omitempty"`
	Flowtime *FlowtimeFields `json:"flowtime,omitempty"`
}
