package strategy

import (
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// Free tracks time with no target, no pause and no break.
type Free struct {
	base
}

var _ Policy = (*Free)(nil)

func NewFree(opts Options, now Clock) *Free {
	return &Free{base: newBase(opts, now)}
}

func (f *Free) Strategy() session.Strategy {
	return session.StrategyFree
}

func (f *Free) Start(tx store.Tx, params StartParams) (*session.Session, error) {
	return f.open(tx, session.StrategyFree, params, nil)
}

func (f *Free) Pause(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := f.check(s, session.StrategyFree); err != nil {
		return nil, err
	}
	return nil, session.Unsupported("pause", session.StrategyFree)
}

func (f *Free) Resume(tx store.Tx, s *session.Session) (*session.Session, error) {
	if err := f.check(s, session.StrategyFree); err != nil {
		return nil, err
	}
	return nil, session.Unsupported("resume", session.StrategyFree)
}

func (f *Free) Complete(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := f.check(s, session.StrategyFree); err != nil {
		return Result{}, err
	}
	return f.finish(tx, s, session.StatusCompleted, actual, nil)
}

func (f *Free) Interrupt(tx store.Tx, s *session.Session, actual *int) (Result, error) {
	if err := f.check(s, session.StrategyFree); err != nil {
		return Result{}, err
	}
	return f.finish(tx, s, session.StatusInterrupted, actual, nil)
}

func (f *Free) Continue(tx store.Tx, previous *session.Session) (*session.Session, error) {
	if err := f.check(previous, session.StrategyFree); err != nil {
		return nil, err
	}
	return f.Start(tx, StartParams{
		UserID:   previous.UserID,
		Goal:     previous.Goal,
		TaskRef:  previous.TaskRef,
		EventRef: previous.EventRef,
	})
}
