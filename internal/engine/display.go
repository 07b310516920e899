package engine

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// Display is the engine's local view of one session. It is reset whenever
// the engine attaches to a different session.
type Display struct {
	SessionID string
	Strategy  session.Strategy
	Status    session.Status
	Goal      string

	ElapsedSeconds int
	TargetSeconds  int // 0 for open-ended strategies

	ActualDuration *int
	Discarded      bool

	BreakMinutes   int // proposed by the server after a completed session
	BreakRemaining int // seconds
	OnBreak        bool

	LastError error
}

func newDisplay(snap service.Snapshot) Display {
	d := Display{
		SessionID:      snap.ID,
		Strategy:       snap.Type,
		Status:         snap.Status,
		Goal:           snap.CustomGoal,
		ElapsedSeconds: snap.WorkedSeconds,
	}
	if snap.TargetDuration != nil {
		d.TargetSeconds = *snap.TargetDuration * 60
	}
	d.adopt(snap)
	return d
}

// adopt takes the server's word for the fields it owns.
func (d *Display) adopt(snap service.Snapshot) {
	d.Status = snap.Status
	d.Discarded = snap.Discarded
	if snap.ActualDuration != nil {
		v := *snap.ActualDuration
		d.ActualDuration = &v
		d.ElapsedSeconds = v * 60
	}
	switch {
	case snap.BreakDuration != nil:
		d.BreakMinutes = *snap.BreakDuration
	case snap.SuggestedBreakDuration != nil:
		d.BreakMinutes = *snap.SuggestedBreakDuration
	}
	if d.BreakMinutes > 0 && !d.OnBreak {
		d.BreakRemaining = d.BreakMinutes * 60
	}
}

// Terminal reports whether the session has ended.
func (d Display) Terminal() bool {
	return d.Status.Terminal()
}

// RemainingSeconds counts down to the target; 0 when there is none.
func (d Display) RemainingSeconds() int {
	if d.TargetSeconds == 0 || d.ElapsedSeconds >= d.TargetSeconds {
		return 0
	}
	return d.TargetSeconds - d.ElapsedSeconds
}

// Progress is the share of the target already worked, in [0, 1].
func (d Display) Progress() float64 {
	if d.TargetSeconds == 0 {
		return 0
	}
	p := float64(d.ElapsedSeconds) / float64(d.TargetSeconds)
	if p > 1 {
		return 1
	}
	return p
}

// Clock renders seconds as mm:ss, or h:mm:ss past an hour.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatMinutes renders a duration for notification text.
func formatMinutes(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d hour(s) %d minute(s)", hours, minutes)
	}
	return fmt.Sprintf("%d minute(s)", minutes)
}
