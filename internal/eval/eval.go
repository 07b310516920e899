// Package eval decides break lengths from a user's completed-session history.
package eval

import (
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/duration"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// Cadence is the short/long break rule for Pomodoro, in minutes.
type Cadence struct {
	ShortBreak     int
	LongBreak      int
	LongBreakEvery int
}

func DefaultCadence() Cadence {
	return Cadence{ShortBreak: 5, LongBreak: 15, LongBreakEvery: 4}
}

func CadenceFromConfig(cfg config.PomodoroConfig) Cadence {
	c := Cadence{
		ShortBreak:     cfg.ShortBreak.Minutes(),
		LongBreak:      cfg.LongBreak.Minutes(),
		LongBreakEvery: cfg.LongBreakEvery,
	}
	if c.LongBreakEvery <= 0 {
		c.LongBreakEvery = DefaultCadence().LongBreakEvery
	}
	return c
}

// CyclePosition is (completedToday + 1) mod every; 0 marks a long-break slot.
func CyclePosition(completedToday, every int) int {
	if every <= 0 {
		every = DefaultCadence().LongBreakEvery
	}
	return (completedToday + 1) % every
}

// BreakFor returns the break earned by the session that is completing,
// given how many completed today before it.
func (c Cadence) BreakFor(completedToday int) int {
	if CyclePosition(completedToday, c.LongBreakEvery) == 0 {
		return c.LongBreak
	}
	return c.ShortBreak
}

// CompletedToday counts the user's completed Pomodoros that ended on the
// calendar day of now.
func CompletedToday(tx store.Tx, userID string, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now()
	}
	from, to := duration.DayBounds(now)
	return tx.CountCompleted(userID, session.StrategyPomodoro, from, to)
}

// NextPomodoroBreak evaluates the cadence for a Pomodoro completing at now.
// It must run before the completing session is stored as completed.
func NextPomodoroBreak(tx store.Tx, userID string, c Cadence, now time.Time) (int, error) {
	completed, err := CompletedToday(tx, userID, now)
	if err != nil {
		return 0, err
	}
	return c.BreakFor(completed), nil
}

// FlowtimeBreak returns ceil(actual / ratio). ok is false when nothing was
// worked, in which case no break is suggested.
func FlowtimeBreak(actualMinutes, ratio int) (int, bool) {
	if actualMinutes <= 0 || ratio <= 0 {
		return 0, false
	}
	return duration.CeilDiv(actualMinutes, ratio), true
}
