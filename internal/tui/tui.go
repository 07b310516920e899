// Package tui is the fwctl timer screen. It drives an engine.Engine once a
// second and maps keys onto session actions.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// Backend is what the timer screen needs from the daemon.
type Backend interface {
	engine.Backend
	Continue(ctx context.Context, id string) (service.Snapshot, error)
	RecordBreak(ctx context.Context, id string, minutes int) (service.Snapshot, error)
}

// Model is the timer screen.
type Model struct {
	ctx     context.Context
	engine  *engine.Engine
	backend Backend

	display  engine.Display
	progress progress.Model
	notice   string
	err      error
	width    int
	quitting bool
}

// Message types
type tickMsg time.Time

type actionMsg struct {
	name string
	err  error
}

type continuedMsg struct {
	snap service.Snapshot
	err  error
}

// New builds the screen around an engine already attached to a session.
func New(ctx context.Context, e *engine.Engine, backend Backend) Model {
	return Model{
		ctx:      ctx,
		engine:   e,
		backend:  backend,
		display:  e.Display(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = clampWidth(msg.Width - 4)
		return m, nil

	case tickMsg:
		m.engine.Tick(m.ctx)
		m.display = m.engine.Display()
		return m, tickCmd()

	case actionMsg:
		m.display = m.engine.Display()
		m.err = msg.err
		if msg.err == nil {
			m.notice = msg.name
		}
		return m, nil

	case continuedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.engine.Attach(msg.snap)
		m.display = m.engine.Display()
		m.err = nil
		m.notice = "continued"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "p":
		return m, m.action("paused", m.engine.Pause)
	case "r":
		return m, m.action("resumed", m.engine.Resume)
	case "c":
		return m, m.action("completed", m.engine.Complete)
	case "i":
		return m, m.action("interrupted", m.engine.Interrupt)
	case "b":
		if !m.engine.StartBreak() {
			return m, nil
		}
		m.display = m.engine.Display()
		return m, m.recordBreak(m.display)
	case "s":
		m.engine.SkipBreak()
		m.display = m.engine.Display()
		return m, nil
	case "n":
		if !m.display.Terminal() {
			return m, nil
		}
		return m, m.continueSession(m.display.SessionID)
	}
	return m, nil
}

func (m Model) action(name string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{name: name, err: fn(ctx)}
	}
}

// recordBreak tells the daemon a proposed Pomodoro break was taken.
func (m Model) recordBreak(d engine.Display) tea.Cmd {
	if d.Strategy != session.StrategyPomodoro || d.Status != session.StatusCompleted {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		_, err := backend.RecordBreak(ctx, d.SessionID, d.BreakMinutes)
		return actionMsg{name: "on break", err: err}
	}
}

func (m Model) continueSession(id string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		snap, err := backend.Continue(ctx, id)
		return continuedMsg{snap: snap, err: err}
	}
}

func clampWidth(w int) int {
	switch {
	case w < 10:
		return 10
	case w > 60:
		return 60
	}
	return w
}
