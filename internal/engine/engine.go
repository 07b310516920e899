// Package engine is the client-side timer. It ticks a local counter once a
// second, completes a Pomodoro when its target is reached and adopts whatever
// the server answers.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/duration"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// ErrInFlight is returned when another operation is still waiting on the
// server. The action was not sent.
var ErrInFlight = errors.New("operation in flight")

// ErrNoSession is returned by actions before a session is attached.
var ErrNoSession = errors.New("no session attached")

// Backend is the server side of a session the engine drives.
type Backend interface {
	Pause(ctx context.Context, id string) (service.Snapshot, error)
	Resume(ctx context.Context, id string) (service.Snapshot, error)
	End(ctx context.Context, id string, actual *int) (service.Snapshot, error)
	Interrupt(ctx context.Context, id string, actual *int) (service.Snapshot, error)
}

// Notifier delivers the end-of-break cue.
type Notifier interface {
	Notify(summary, body string) error
}

// Engine drives one session at a time.
type Engine struct {
	backend  Backend
	notifier Notifier

	mu      sync.Mutex
	display Display
	subs    []chan Display

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

func New(backend Backend, notifier Notifier) *Engine {
	return &Engine{backend: backend, notifier: notifier}
}

// Attach resets the local state to snap.
func (e *Engine) Attach(snap service.Snapshot) {
	e.mu.Lock()
	e.display = newDisplay(snap)
	d := e.display
	e.mu.Unlock()
	e.emit(d)
}

// Display returns a copy of the current local state.
func (e *Engine) Display() Display {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.display
}

// Subscribe registers an observer. Slow observers miss updates rather than
// block the timer.
func (e *Engine) Subscribe(buffer int) <-chan Display {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Display, buffer)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) emit(d Display) {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Tick advances the local clock by one second.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	d := &e.display
	cue := false
	autoComplete := false
	var id string
	var actual int

	if d.OnBreak && d.BreakRemaining > 0 {
		d.BreakRemaining--
		if d.BreakRemaining == 0 {
			d.OnBreak = false
			cue = true
		}
	}
	if d.SessionID != "" && d.Status == session.StatusRunning {
		d.ElapsedSeconds++
		// the flag is claimed under mu: once an End has settled the status is
		// no longer running, so a late tick cannot send a second one
		if d.Strategy == session.StrategyPomodoro && d.TargetSeconds > 0 && d.ElapsedSeconds >= d.TargetSeconds &&
			e.inFlight.CompareAndSwap(false, true) {
			autoComplete = true
			e.wg.Add(1)
			id = d.SessionID
			actual = duration.SecondsToMinutes(d.ElapsedSeconds)
			if target := d.TargetSeconds / 60; actual > target {
				actual = target
			}
		}
	}
	breakMinutes := d.BreakMinutes
	snapshot := *d
	e.mu.Unlock()

	e.emit(snapshot)
	if cue {
		e.cue(breakMinutes)
	}
	if autoComplete {
		go func() {
			defer e.wg.Done()
			defer e.inFlight.Store(false)
			snap, err := e.backend.End(ctx, id, &actual)
			e.settle(id, snap, err)
		}()
	}
}

// Pause asks the server to pause a running Pomodoro.
func (e *Engine) Pause(ctx context.Context) error {
	return e.do(ctx, func(d Display) (service.Snapshot, error) {
		if d.Strategy != session.StrategyPomodoro {
			return service.Snapshot{}, session.Unsupported("pause", d.Strategy)
		}
		return e.backend.Pause(ctx, d.SessionID)
	})
}

func (e *Engine) Resume(ctx context.Context) error {
	return e.do(ctx, func(d Display) (service.Snapshot, error) {
		if d.Strategy != session.StrategyPomodoro {
			return service.Snapshot{}, session.Unsupported("resume", d.Strategy)
		}
		return e.backend.Resume(ctx, d.SessionID)
	})
}

// Complete ends the session now, reporting the locally counted minutes.
func (e *Engine) Complete(ctx context.Context) error {
	return e.do(ctx, func(d Display) (service.Snapshot, error) {
		actual := duration.SecondsToMinutes(d.ElapsedSeconds)
		return e.backend.End(ctx, d.SessionID, &actual)
	})
}

func (e *Engine) Interrupt(ctx context.Context) error {
	return e.do(ctx, func(d Display) (service.Snapshot, error) {
		actual := duration.SecondsToMinutes(d.ElapsedSeconds)
		return e.backend.Interrupt(ctx, d.SessionID, &actual)
	})
}

// do runs a user action under the in-flight guard.
func (e *Engine) do(ctx context.Context, call func(d Display) (service.Snapshot, error)) error {
	d := e.Display()
	if d.SessionID == "" {
		return ErrNoSession
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer e.inFlight.Store(false)

	snap, err := call(d)
	e.settle(d.SessionID, snap, err)
	return err
}

// settle adopts a server answer for id. Answers for a session the engine has
// since left are dropped.
func (e *Engine) settle(id string, snap service.Snapshot, err error) {
	e.mu.Lock()
	if e.display.SessionID != id {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.display.LastError = err
		e.mu.Unlock()
		log.Printf("Session %s: %v", id, err)
		return
	}
	e.display.LastError = nil
	e.display.adopt(snap)
	d := e.display
	e.mu.Unlock()
	e.emit(d)
}

// StartBreak begins the proposed break countdown.
func (e *Engine) StartBreak() bool {
	e.mu.Lock()
	d := &e.display
	if !d.Terminal() || d.BreakRemaining <= 0 || d.OnBreak {
		e.mu.Unlock()
		return false
	}
	d.OnBreak = true
	snapshot := *d
	e.mu.Unlock()
	e.emit(snapshot)
	return true
}

// SkipBreak drops the break without a cue.
func (e *Engine) SkipBreak() {
	e.mu.Lock()
	e.display.OnBreak = false
	e.display.BreakRemaining = 0
	d := e.display
	e.mu.Unlock()
	e.emit(d)
}

func (e *Engine) cue(minutes int) {
	if e.notifier == nil {
		return
	}
	body := "Your " + formatMinutes(time.Duration(minutes)*time.Minute) + " break is over"
	if err := e.notifier.Notify("Break over", body); err != nil {
		log.Printf("Failed to deliver break cue: %v", err)
	}
}

// Busy reports whether a server call is outstanding.
func (e *Engine) Busy() bool {
	return e.inFlight.Load()
}

// Wait blocks until background completions have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Run ticks once a second until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer e.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}
