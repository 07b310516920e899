package service

import (
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// StartRequest is the payload of a start operation.
type StartRequest struct {
	Strategy       session.Strategy `json:"strategy"`
	CustomGoal     string           `json:"customGoal,omitempty"`
	TaskRef        string           `json:"taskRef,omitempty"`
	EventRef       string           `json:"eventRef,omitempty"`
	TargetDuration *int             `json:"targetDuration,omitempty"`
	BreakRatio     *int             `json:"breakRatio,omitempty"`
}

// Snapshot is the caller-facing view of a session. Fields that do not apply
// to the session's strategy are omitted.
type Snapshot struct {
	ID             string           `json:"id"`
	Type           session.Strategy `json:"type"`
	Status         session.Status   `json:"status"`
	CustomGoal     string           `json:"customGoal,omitempty"`
	TaskRef        string           `json:"taskRef,omitempty"`
	EventRef       string           `json:"eventRef,omitempty"`
	StartedAt      *time.Time       `json:"startedAt,omitempty"`
	EndedAt        *time.Time       `json:"endedAt,omitempty"`
	ActualDuration *int             `json:"actualDuration,omitempty"`
	WorkedSeconds  int              `json:"workedSeconds"`

	TargetDuration *int `json:"targetDuration,omitempty"`
	PauseCount     *int `json:"pauseCount,omitempty"`
	PauseDuration  *int `json:"pauseDuration,omitempty"`
	BreakDuration  *int `json:"breakDuration,omitempty"`
	BreakTaken     *int `json:"breakTaken,omitempty"`

	BreakRatio             *int `json:"breakRatio,omitempty"`
	SuggestedBreakDuration *int `json:"suggestedBreakDuration,omitempty"`

	// Discarded is set when the session was too short and was not kept.
	Discarded bool `json:"discarded,omitempty"`
}

// NewSnapshot shapes s for callers. WorkedSeconds is the server-tracked
// running time up to now.
func NewSnapshot(s *session.Session, now time.Time) Snapshot {
	snap := Snapshot{
		ID:             s.ID,
		Type:           s.Strategy,
		Status:         s.Status,
		CustomGoal:     s.Goal,
		TaskRef:        s.TaskRef,
		EventRef:       s.EventRef,
		ActualDuration: copyInt(s.ActualDuration),
		WorkedSeconds:  int(s.WorkedDuration(now) / time.Second),
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		snap.StartedAt = &t
	}
	if !s.EndedAt.IsZero() {
		t := s.EndedAt
		snap.EndedAt = &t
	}

	if p := s.Pomodoro; p != nil {
		snap.TargetDuration = intPtr(p.TargetDuration)
		snap.PauseCount = intPtr(p.PauseCount)
		snap.BreakTaken = copyInt(p.BreakTaken)
		if s.IsTerminal() {
			snap.PauseDuration = intPtr(p.PauseDuration)
		}
		if s.Status == session.StatusCompleted && p.BreakDuration > 0 {
			snap.BreakDuration = intPtr(p.BreakDuration)
		}
	}
	if f := s.Flowtime; f != nil {
		snap.BreakRatio = intPtr(f.BreakRatio)
		snap.SuggestedBreakDuration = copyInt(f.SuggestedBreakDuration)
	}
	return snap
}

func intPtr(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}
