package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

type fakeBackend struct {
	pauses    int
	breaks    []int
	continues []string
}

func (b *fakeBackend) Pause(ctx context.Context, id string) (service.Snapshot, error) {
	b.pauses++
	return service.Snapshot{ID: id, Type: session.StrategyPomodoro, Status: session.StatusPaused}, nil
}

func (b *fakeBackend) Resume(ctx context.Context, id string) (service.Snapshot, error) {
	return service.Snapshot{ID: id, Type: session.StrategyPomodoro, Status: session.StatusRunning}, nil
}

func (b *fakeBackend) End(ctx context.Context, id string, actual *int) (service.Snapshot, error) {
	brk := 5
	v := *actual
	return service.Snapshot{ID: id, Type: session.StrategyPomodoro, Status: session.StatusCompleted, ActualDuration: &v, BreakDuration: &brk}, nil
}

func (b *fakeBackend) Interrupt(ctx context.Context, id string, actual *int) (service.Snapshot, error) {
	v := *actual
	return service.Snapshot{ID: id, Type: session.StrategyPomodoro, Status: session.StatusInterrupted, ActualDuration: &v}, nil
}

func (b *fakeBackend) Continue(ctx context.Context, id string) (service.Snapshot, error) {
	b.continues = append(b.continues, id)
	target := 25
	return service.Snapshot{ID: id + "-next", Type: session.StrategyPomodoro, Status: session.StatusRunning, TargetDuration: &target}, nil
}

func (b *fakeBackend) RecordBreak(ctx context.Context, id string, minutes int) (service.Snapshot, error) {
	b.breaks = append(b.breaks, minutes)
	return service.Snapshot{ID: id, Type: session.StrategyPomodoro, Status: session.StatusCompleted}, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs whatever command it produced.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(key(s))
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func newModel(backend *fakeBackend) (Model, *engine.Engine) {
	e := engine.New(backend, nil)
	target := 1
	e.Attach(service.Snapshot{ID: "s1", Type: session.StrategyPomodoro, Status: session.StatusRunning, TargetDuration: &target, CustomGoal: "draft"})
	return New(context.Background(), e, backend), e
}

func TestModel_TickAdvancesClock(t *testing.T) {
	m, _ := newModel(&fakeBackend{})
	next, cmd := m.Update(tickMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd, "ticks reschedule themselves")
	assert.Equal(t, 1, m.display.ElapsedSeconds)
	assert.Contains(t, m.View(), "00:59")
	assert.Contains(t, m.View(), "draft")
}

func TestModel_PauseKey(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newModel(backend)
	m = press(t, m, "p")
	assert.Equal(t, 1, backend.pauses)
	assert.Equal(t, session.StatusPaused, m.display.Status)
	assert.NoError(t, m.err)
	assert.Contains(t, m.View(), "r resume")
}

func TestModel_CompleteBreakContinue(t *testing.T) {
	backend := &fakeBackend{}
	m, e := newModel(backend)

	m = press(t, m, "c")
	assert.Equal(t, session.StatusCompleted, m.display.Status)
	assert.Contains(t, m.View(), "5 min break proposed")

	m = press(t, m, "b")
	assert.True(t, m.display.OnBreak)
	assert.Equal(t, []int{5}, backend.breaks)

	m = press(t, m, "n")
	assert.Equal(t, []string{"s1"}, backend.continues)
	assert.Equal(t, "s1-next", e.Display().SessionID)
	assert.Equal(t, session.StatusRunning, m.display.Status)
}

func TestModel_ContinueNeedsEndedSession(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newModel(backend)
	_, cmd := m.Update(key("n"))
	assert.Nil(t, cmd)
	assert.Empty(t, backend.continues)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(&fakeBackend{})
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(Model).View())
}
