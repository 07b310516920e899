package strategy

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/eval"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// Flowtime is an open-ended session whose break is proportional to the work.
// It has no pause.
type Flowtime struct {
	base
}

var _ Policy = (*Flowtime)(nil)

func NewFlowtime(opts Options, now Clock) *Flowtime {
	return &Flowtime{base: newBase(opts, now)}
}

func (f *Flowtime) Strategy() session.Strategy {
	return session.StrategyFlowtime
}

func (f *Flowtime) Start(tx store.Tx, params StartParams) (*session.Session, error) {
	ratio := f.opts.BreakRatio
	if params.BreakRatio != nil {
		ratio = *params.BreakRatio
	}
	if ratio < 1 {
		return nil, session.NewValidationError("breakRatio", fmt.Sprintf("%d is below 1", ratio))
	}
	return f.open(tx, session.StrategyFlowtime, params, func(s *session.Session) {
		s.Flowtime = &session.FlowtimeFields{BreakRatio: ratio}
	})
}

func (f *Flowtime) Pause(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := f.check(s, session.StrategyFlowtime); err != nil {
		return nil, err
	}
	return nil, session.Unsupported("pause", session.StrategyFlowtime)
}

func (f *Flowtime) Resume(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := f.check(s, session.StrategyFlowtime); err != nil {
		return nil, err
	}
	return nil, session.Unsupported("resume", session.StrategyFlowtime)
}

func (f *Flowtime) Complete(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := f.check(s, session.StrategyFlowtime); err != nil {
		return Result{}, err
	}
	return f.finish(tx, s, session.StatusCompleted, actual, func(s *session.Session, minutes int, _ time.Time) error {
		if brk, ok := eval.FlowtimeBreak(minutes, s.Flowtime.BreakRatio); ok {
			s.Flowtime.SuggestedBreakDuration = &brk
		}
		return nil
	})
}

func (f *Flowtime) Interrupt(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := f.check(s, session.StrategyFlowtime); err != nil {
		return Result{}, err
	}
	return f.finish(tx, s, session.StatusInterrupted, actual, nil)
}

// Continue starts a new Flowtime session carrying the refs and ratio.
func (f *Flowtime) Continue(tx store.Tx, previous *session.Session) (*session.Session, error) {
	if err := f.check(previous, session.StrategyFlowtime); err != nil {
		return nil, err
	}
	ratio := previous.Flowtime.BreakRatio
	return f.Start(tx, StartParams{
		UserID:     previous.UserID,
		Goal:       previous.Goal,
		TaskRef:    previous.TaskRef,
		EventRef:   previous.EventRef,
		BreakRatio: &ratio,
	})
}
