// Package service is the operation surface over the session store: every
// call is checked against the caller's identity and runs as one store
// transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/duration"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
	"github.com/SoarinFerret/FocusWarden/internal/strategy"
)

type Service struct {
	store    store.Store
	policies *strategy.Registry
	opts     strategy.Options
	now      strategy.Clock
}

// New builds a Service with the default strategy set. A nil now uses the
// wall clock.
func New(st store.Store, opts strategy.Options, now strategy.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    st,
		policies: strategy.NewDefaultRegistry(opts, now),
		opts:     opts,
		now:      now,
	}
}

// Check confirms the caller is identified.
func (s *Service) Check(ctx context.Context, user string) error {
	if user == "" {
		return session.ErrNotAuthenticated
	}
	return ctx.Err()
}

func (s *Service) Start(ctx context.Context, user string, req StartRequest) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	if req.Strategy == "" {
		return Snapshot{}, session.NewValidationError("strategy", "required")
	}
	policy, err := s.policies.For(req.Strategy)
	if err != nil {
		return Snapshot{}, err
	}

	params := strategy.StartParams{
		UserID:     user,
		Goal:       req.CustomGoal,
		TaskRef:    req.TaskRef,
		EventRef:   req.EventRef,
		BreakRatio: req.BreakRatio,
	}
	if req.Strategy == session.StrategyPomodoro {
		target := s.opts.DefaultTarget
		if req.TargetDuration != nil {
			target = duration.Clamp(*req.TargetDuration, s.opts.MinTarget, s.opts.MaxTarget)
		}
		params.TargetDuration = &target
	}

	var started *session.Session
	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		started, err = policy.Start(tx, params)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	log.Printf("Started %s session %s for %s", started.Strategy, started.ID, user)
	return NewSnapshot(started, s.now()), nil
}

func (s *Service) Pause(ctx context.Context, user, id string) (Snapshot, error) {
	return s.transition(ctx, user, id, "pause", func(tx store.Tx, p strategy.Policy, sess *session.Session) (*session.Session, error) {
		return p.Pause(tx, sess)
	})
}

func (s *Service) Resume(ctx context.Context, user, id string) (Snapshot, error) {
	return s.transition(ctx, user, id, "resume", func(tx store.Tx, p strategy.Policy, sess *session.Session) (*session.Session, error) {
		return p.Resume(tx, sess)
	})
}

// End completes the session with the caller's measured minutes.
func (s *Service) End(ctx context.Context, user, id string, actual *int) (Snapshot, error) {
	return s.finish(ctx, user, id, "end", actual, strategy.Policy.Complete)
}

// Interrupt abandons the session. actual may be nil.
func (s *Service) Interrupt(ctx context.Context, user, id string, actual *int) (Snapshot, error) {
	return s.finish(ctx, user, id, "interrupt", actual, strategy.Policy.Interrupt)
}

// Continue starts a new session configured like id.
func (s *Service) Continue(ctx context.Context, user, id string) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	var next *session.Session
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		prev, policy, err := s.owned(tx, user, id)
		if err != nil {
			return err
		}
		next, err = policy.Continue(tx, prev)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	log.Printf("Continued session %s as %s session %s for %s", id, next.Strategy, next.ID, user)
	return NewSnapshot(next, s.now()), nil
}

func (s *Service) Get(ctx context.Context, user, id string) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err := s.store.View(ctx, func(tx store.Tx) error {
		sess, _, err := s.owned(tx, user, id)
		if err != nil {
			return err
		}
		snap = NewSnapshot(sess, s.now())
		return nil
	})
	return snap, err
}

// Active returns the caller's running or paused session.
func (s *Service) Active(ctx context.Context, user string) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err := s.store.View(ctx, func(tx store.Tx) error {
		sess, err := tx.Active(user)
		if err != nil {
			return notFound(err, "active")
		}
		snap = NewSnapshot(sess, s.now())
		return nil
	})
	return snap, err
}

// Today lists the caller's sessions started or ended on the current day.
func (s *Service) Today(ctx context.Context, user string) ([]Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := duration.DayBounds(now)
	var out []Snapshot
	err := s.store.View(ctx, func(tx store.Tx) error {
		list, err := tx.ListByUser(user, from, to)
		if err != nil {
			return err
		}
		out = make([]Snapshot, 0, len(list))
		for _, sess := range list {
			out = append(out, NewSnapshot(sess, now))
		}
		return nil
	})
	return out, err
}

// RecordBreak stores the minutes actually rested after a completed Pomodoro.
func (s *Service) RecordBreak(ctx context.Context, user, id string, minutes int) (Snapshot, error) {
	pom, err := s.policies.Pomodoro()
	if err != nil {
		return Snapshot{}, err
	}
	return s.transition(ctx, user, id, "break", func(tx store.Tx, _ strategy.Policy, sess *session.Session) (*session.Session, error) {
		return pom.RecordBreak(tx, sess, minutes)
	})
}

// PauseActive pauses the user's running Pomodoro, if any. It reports whether
// a session was paused.
func (s *Service) PauseActive(ctx context.Context, user string) (bool, error) {
	if err := s.Check(ctx, user); err != nil {
		return false, err
	}
	paused := false
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		sess, err := tx.Active(user)
		if store.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if sess.Strategy != session.StrategyPomodoro || sess.Status != session.StatusRunning {
			return nil
		}
		policy, err := s.policies.For(sess.Strategy)
		if err != nil {
			return err
		}
		if _, err := policy.Pause(tx, sess); err != nil {
			return err
		}
		paused = true
		log.Printf("Paused session %s for %s", sess.ID, user)
		return nil
	})
	return paused, err
}

// owned loads id and checks it belongs to user.
func (s *Service) owned(tx store.Tx, user, id string) (*session.Session, strategy.Policy, error) {
	if id == "" {
		return nil, nil, session.NewValidationError("id", "required")
	}
	sess, err := tx.Get(id)
	if err != nil {
		return nil, nil, notFound(err, id)
	}
	if sess.UserID != user {
		return nil, nil, fmt.Errorf("session %s: %w", id, session.ErrAccessDenied)
	}
	policy, err := s.policies.For(sess.Strategy)
	if err != nil {
		return nil, nil, err
	}
	return sess, policy, nil
}

type transitionFunc func(tx store.Tx, p strategy.Policy, sess *session.Session) (*session.Session, error)

func (s *Service) transition(ctx context.Context, user, id, op string, fn transitionFunc) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	var out *session.Session
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		sess, policy, err := s.owned(tx, user, id)
		if err != nil {
			return err
		}
		out, err = fn(tx, policy, sess)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	log.Printf("Session %s %s by %s: %s", out.ID, op, user, out.Status)
	return NewSnapshot(out, s.now()), nil
}

type finishFunc func(p strategy.Policy, tx store.Tx, sess *session.Session, actual *int) (strategy.Result, error)

func (s *Service) finish(ctx context.Context, user, id, op string, actual *int, fn finishFunc) (Snapshot, error) {
	if err := s.Check(ctx, user); err != nil {
		return Snapshot{}, err
	}
	var res strategy.Result
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		sess, policy, err := s.owned(tx, user, id)
		if err != nil {
			return err
		}
		res, err = fn(policy, tx, sess, actual)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap := NewSnapshot(res.Session, s.now())
	snap.Discarded = res.Discarded
	if !res.Discarded {
		log.Printf("Session %s %s by %s: %s after %d minute(s)", snap.ID, op, user, snap.Status, *snap.ActualDuration)
	}
	return snap, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", id, session.ErrNotFound)
	}
	return err
}
