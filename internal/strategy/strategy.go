// Package strategy implements the per-strategy session transitions. Every
// operation runs inside the caller's store transaction.
package strategy

import (
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/eval"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// Options are the policy knobs, all in minutes.
type Options struct {
	MinDuration   int
	DefaultTarget int
	MinTarget     int
	MaxTarget     int
	BreakRatio    int
	Cadence       eval.Cadence
}

func DefaultOptions() Options {
	return Options{
		MinDuration:   1,
		DefaultTarget: 25,
		MinTarget:     1,
		MaxTarget:     120,
		BreakRatio:    5,
		Cadence:       eval.DefaultCadence(),
	}
}

// OptionsFromConfig converts cfg to minutes. The minimum duration and the
// target bounds never drop below one minute, even for an unvalidated cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MinDuration:   atLeastOne(cfg.Policy.MinDuration.Minutes()),
		DefaultTarget: atLeastOne(cfg.Pomodoro.DefaultTarget.Minutes()),
		MinTarget:     atLeastOne(cfg.Pomodoro.MinTarget.Minutes()),
		MaxTarget:     atLeastOne(cfg.Pomodoro.MaxTarget.Minutes()),
		BreakRatio:    cfg.Flowtime.BreakRatio,
		Cadence:       eval.CadenceFromConfig(cfg.Pomodoro),
	}
}

func atLeastOne(minutes int) int {
	if minutes < 1 {
		return 1
	}
	return minutes
}

// StartParams describe a new session. Optional numbers are nil when absent.
type StartParams struct {
	UserID         string
	Goal           string
	TaskRef        string
	EventRef       string
	TargetDuration *int
	BreakRatio     *int
}

// Result is the outcome of a terminal operation. A discarded session was
// removed from the store because it was shorter than the minimum.
type Result struct {
	Session   *session.Session
	Discarded bool
}

// Policy is the capability set shared by all strategies.
type Policy interface {
	Strategy() session.Strategy
	Start(tx store.Tx, p StartParams) (*session.Session, error)
	Pause(tx store.Tx, s *session.Session) (*session.Session, error)
	Resume(tx store.Tx, s *session.Session) (*session.Session, error)
	Complete(tx store.Tx, s *session.Session, actual *int) (Result, error)
	Interrupt(tx store.Tx, s *session.Session, actual *int) (Result, error)
	Continue(tx store.Tx, previous *session.Session) (*session.Session, error)
}

// Clock returns the current time.
type Clock func() time.Time

type base struct {
	opts  Options
	now   Clock
	newID func() string
}

func newBase(opts Options, now Clock) base {
	if now == nil {
		now = time.Now
	}
	return base{
		opts:  opts,
		now:   now,
		newID: func() string { return ulid.Make().String() },
	}
}

func (b base) check(s *session.Session, want session.Strategy) error {
	if s == nil {
		return session.ErrNotFound
	}
	if s.Strategy != want {
		return fmt.Errorf("%s session %s used as %s: %w", s.Strategy, s.ID, want, session.ErrStrategyMismatch)
	}
	return nil
}

// open creates, starts and inserts a session. fill attaches the
// strategy-specific fields.
func (b base) open(tx store.Tx, strategy session.Strategy, p StartParams, fill func(*session.Session)) (*session.Session, error) {
	if p.UserID == "" {
		return nil, session.ErrNotAuthenticated
	}
	s := session.New(b.newID(), p.UserID, strategy)
	s.Goal = p.Goal
	s.TaskRef = p.TaskRef
	s.EventRef = p.EventRef
	if fill != nil {
		fill(s)
	}
	if err := s.Start(b.now()); err != nil {
		return nil, err
	}
	if err := tx.Insert(s); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// worked resolves the minutes to record: the caller's value when given,
// otherwise the server-tracked running segments.
func (b base) worked(s *session.Session, actual *int, now time.Time) (int, error) {
	if actual == nil {
		return s.WorkedMinutes(now), nil
	}
	if *actual < 0 {
		return 0, session.NewValidationError("actualDuration", "must not be negative")
	}
	return *actual, nil
}

// discard removes a session that is too short to count. The returned copy
// carries the terminal status the caller asked for; it is not stored.
func (b base) discard(tx store.Tx, s *session.Session, status session.Status, minutes int, now time.Time) (Result, error) {
	if err := tx.Delete(s.ID); err != nil {
		return Result{}, fmt.Errorf("discard session: %w", err)
	}
	log.Printf("Discarded %s session %s: %d minute(s) is under the %d minute minimum",
		s.Strategy, s.ID, minutes, b.opts.MinDuration)
	if _, err := s.Finish(now, status, minutes); err != nil {
		return Result{}, err
	}
	return Result{Session: s, Discarded: true}, nil
}

// finish applies the terminal transition common to all strategies and lets
// the strategy fill its extra fields before the update.
func (b base) finish(tx store.Tx, s *session.Session, status session.Status, actual *int, extra func(s *session.Session, minutes int, now time.Time) error) (Result, error) {
	if s.IsTerminal() {
		return Result{Session: s}, nil
	}
	now := b.now()
	minutes, err := b.worked(s, actual, now)
	if err != nil {
		return Result{}, err
	}
	if minutes < b.opts.MinDuration {
		return b.discard(tx, s, status, minutes, now)
	}
	if extra != nil {
		if err := extra(s, minutes, now); err != nil {
			return Result{}, err
		}
	}
	if _, err := s.Finish(now, status, minutes); err != nil {
		return Result{}, err
	}
	if err := tx.Update(s); err != nil {
		return Result{}, fmt.Errorf("update session: %w", err)
	}
	return Result{Session: s}, nil
}

// Registry dispatches by strategy tag.
type Registry struct {
	policies map[session.Strategy]Policy
}

func NewRegistry(policies ...Policy) *Registry {
	r := &Registry{policies: make(map[session.Strategy]Policy, len(policies))}
	for _, p := range policies {
		r.policies[p.Strategy()] = p
	}
	return r
}

// NewDefaultRegistry wires the three built-in strategies.
func NewDefaultRegistry(opts Options, now Clock) *Registry {
	return NewRegistry(
		NewPomodoro(opts, now),
		NewFlowtime(opts, now),
		NewFree(opts, now),
	)
}

func (r *Registry) For(strategy session.Strategy) (Policy, error) {
	p, ok := r.policies[strategy]
	if !ok {
		return nil, session.NewValidationError("strategy", fmt.Sprintf("unknown %q", strategy))
	}
	return p, nil
}

// Pomodoro returns the Pomodoro policy for its extra operations.
func (r *Registry) Pomodoro() (*Pomodoro, error) {
	p, err := r.For(session.StrategyPomodoro)
	if err != nil {
		return nil, err
	}
	pom, ok := p.(*Pomodoro)
	if !ok {
		return nil, fmt.Errorf("pomodoro policy has type %T", p)
	}
	return pom, nil
}
