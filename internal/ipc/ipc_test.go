package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/state"
	"github.com/SoarinFerret/FocusWarden/internal/strategy"
)

func TestErrorNamesSurviveTheBus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []error
	}{
		{"NotAuthenticated", session.ErrNotAuthenticated, []error{session.ErrNotAuthenticated}},
		{"Validation", session.NewValidationError("actualDuration", "required"), []error{session.ErrValidation}},
		{"AccessDenied", fmt.Errorf("s1: %w", session.ErrAccessDenied), []error{session.ErrAccessDenied}},
		{"NotFound", fmt.Errorf("s1: %w", session.ErrNotFound), []error{session.ErrNotFound}},
		{"StrategyMismatch", session.ErrStrategyMismatch, []error{session.ErrStrategyMismatch}},
		{"Unsupported", session.Unsupported("pause", session.StrategyFlowtime), []error{session.ErrUnsupported, session.ErrStrategyMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := toDBusError(tt.err)
			require.NotNil(t, derr)
			assert.Equal(t, ErrorPrefix+tt.name, derr.Name)

			// replies arrive as a value, not a pointer
			back := fromDBusError(*derr)
			for _, w := range tt.want {
				assert.ErrorIs(t, back, w)
			}
			assert.Contains(t, back.Error(), tt.err.Error())
		})
	}
}

func TestUnknownErrorsStayOpaque(t *testing.T) {
	derr := toDBusError(errors.New("disk full"))
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", derr.Name)
	assert.Nil(t, toDBusError(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, fromDBusError(plain))
}

func TestDurationArg(t *testing.T) {
	arg, err := durationArg(nil)
	require.NoError(t, err)
	assert.Equal(t, NoDuration, arg)

	v := 25
	arg, err = durationArg(&v)
	require.NoError(t, err)
	assert.Equal(t, int32(25), arg)

	assert.Nil(t, durationFromArg(NoDuration))
	assert.Equal(t, 0, *durationFromArg(0))
}

func TestDurationArgRejectsValuesTheWireCannotCarry(t *testing.T) {
	tests := []struct {
		name  string
		value int
	}{
		{"negative collides with absent", -1},
		{"other negative", -30},
		{"above int32", math.MaxInt32 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := durationArg(&tt.value)
			assert.ErrorIs(t, err, session.ErrValidation)
		})
	}

	_, err := minutesArg("breakTaken", math.MaxInt32+1)
	assert.ErrorIs(t, err, session.ErrValidation)
	arg, err := minutesArg("breakTaken", math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), arg)
}

func TestGetStatus(t *testing.T) {
	m := newManager(t)
	status, derr := m.GetStatus()
	assert.Nil(t, derr)
	assert.Equal(t, "Service is running", status)
}

func newManager(t *testing.T) *SessionManager {
	m, err := state.NewManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	users := map[dbus.Sender]string{":1.10": "alice", ":1.11": "bob"}
	return &SessionManager{
		Sessions: service.New(m, strategy.DefaultOptions(), nil),
		Identify: func(sender dbus.Sender) (string, error) {
			if u, ok := users[sender]; ok {
				return u, nil
			}
			return "", errors.New("unknown sender")
		},
	}
}

func decodeSnapshot(t *testing.T, raw string) service.Snapshot {
	t.Helper()
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	return snap
}

func TestSessionManager_ActsForCaller(t *testing.T) {
	sm := newManager(t)

	name, derr := sm.Check(":1.10")
	require.Nil(t, derr)
	assert.Equal(t, "alice", name)

	_, derr = sm.Check(":1.99")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorPrefix+"NotAuthenticated", derr.Name)

	raw, derr := sm.Start(":1.10", `{"strategy":"pomodoro","targetDuration":15}`)
	require.Nil(t, derr)
	snap := decodeSnapshot(t, raw)
	assert.Equal(t, 15, *snap.TargetDuration)

	_, derr = sm.Pause(":1.11", snap.ID)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorPrefix+"AccessDenied", derr.Name)

	raw, derr = sm.Pause(":1.10", snap.ID)
	require.Nil(t, derr)
	assert.Equal(t, session.StatusPaused, decodeSnapshot(t, raw).Status)

	_, derr = sm.End(":1.10", snap.ID, NoDuration)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorPrefix+"Validation", derr.Name)

	raw, derr = sm.Interrupt(":1.10", snap.ID, 0)
	require.Nil(t, derr)
	assert.True(t, decodeSnapshot(t, raw).Discarded)

	_, derr = sm.Get(":1.10", snap.ID)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorPrefix+"NotFound", derr.Name)

	raw, derr = sm.Today(":1.10")
	require.Nil(t, derr)
	assert.Equal(t, "[]", raw)

	_, derr = sm.Start(":1.10", `not json`)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorPrefix+"Validation", derr.Name)
}
