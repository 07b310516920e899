package strategy

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/duration"
	"github.com/SoarinFerret/FocusWarden/internal/eval"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// Pomodoro is a fixed-target session with pauses and a cadence-driven break.
type Pomodoro struct {
	base
}

var _ Policy = (*Pomodoro)(nil)

func NewPomodoro(opts Options, now Clock) *Pomodoro {
	return &Pomodoro{base: newBase(opts, now)}
}

func (p *Pomodoro) Strategy() session.Strategy {
	return session.StrategyPomodoro
}

func (p *Pomodoro) Start(tx store.Tx, params StartParams) (*session.Session, error) {
	target := p.opts.DefaultTarget
	if params.TargetDuration != nil {
		target = *params.TargetDuration
	}
	if target < p.opts.MinTarget || target > p.opts.MaxTarget {
		return nil, session.NewValidationError("targetDuration",
			fmt.Sprintf("%d is outside [%d, %d]", target, p.opts.MinTarget, p.opts.MaxTarget))
	}
	return p.open(tx, session.StrategyPomodoro, params, func(s *session.Session) {
		s.Pomodoro = &session.PomodoroFields{TargetDuration: target}
	})
}

// Pause is idempotent; a session that is not running comes back unchanged.
func (p *Pomodoro) Pause(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := p.check(s, session.StrategyPomodoro); err != nil {
		return nil, err
	}
	if !s.Pause(p.now()) {
		return s, nil
	}
	s.Pomodoro.PauseCount++
	if err := tx.Update(s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

// Resume is idempotent; a session that is not paused comes back unchanged.
func (p *Pomodoro) Resume(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := p.check(s, session.StrategyPomodoro); err != nil {
		return nil, err
	}
	if !s.Resume(p.now()) {
		return s, nil
	}
	if err := tx.Update(s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

// Complete requires the client-measured duration. The break is evaluated
// against the day's history before this session is counted in it.
func (p *Pomodoro) Complete(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := p.check(s, session.StrategyPomodoro); err != nil {
		return Result{}, err
	}
	if actual == nil && !s.IsTerminal() {
		return Result{}, session.NewValidationError("actualDuration", "required to complete a pomodoro")
	}
	return p.finish(tx, s, session.StatusCompleted, actual, func(s *session.Session, minutes int, now time.Time) error {
		brk, err := eval.NextPomodoroBreak(tx, s.UserID, p.opts.Cadence, now)
		if err != nil {
			return fmt.Errorf("evaluate break: %w", err)
		}
		s.Pomodoro.BreakDuration = brk
		s.Pomodoro.PauseDuration = pauseMinutes(s, minutes, now)
		return nil
	})
}

// Interrupt falls back to the tracked running time when the client does not
// report one.
func (p *Pomodoro) Interrupt(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := p.check(s, session.StrategyPomodoro); err != nil {
		return Result{}, err
	}
	return p.finish(tx, s, session.StatusInterrupted, actual, func(s *session.Session, minutes int, now time.Time) error {
		s.Pomodoro.PauseDuration = pauseMinutes(s, minutes, now)
		return nil
	})
}

// Continue starts a fresh Pomodoro with the previous one's target and refs.
func (p *Pomodoro) Continue(tx store.Tx, previous *session.Session) (*session.Session, error) {
	if err := p.check(previous, session.StrategyPomodoro); err != nil {
		return nil, err
	}
	target := previous.Pomodoro.TargetDuration
	return p.Start(tx, StartParams{
		UserID:         previous.UserID,
		Goal:           previous.Goal,
		TaskRef:        previous.TaskRef,
		EventRef:       previous.EventRef,
		TargetDuration: &target,
	})
}

// RecordBreak stores how long the user actually rested after a completed
// Pomodoro.
func (p *Pomodoro) RecordBreak(tx store.Tx, s *session.Session, minutes int) (*session.Session, error) {
	if err := p.check(s, session.StrategyPomodoro); err != nil {
		return nil, err
	}
	if s.Status != session.StatusCompleted {
		return nil, session.NewValidationError("breakTaken", fmt.Sprintf("session is %s, not completed", s.Status))
	}
	if minutes < 0 {
		return nil, session.NewValidationError("breakTaken", "must not be negative")
	}
	taken := minutes
	s.Pomodoro.BreakTaken = &taken
	if err := tx.Update(s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

// pauseMinutes is the wall time not spent working, never negative.
func pauseMinutes(s *session.Session, actual int, now time.Time) int {
	wall := duration.WallMinutes(s.StartedAt, now)
	if wall < actual {
		return 0
	}
	return wall - actual
}
