package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

func tempStateFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "state.json")
}

func runningSession(id, user string, start time.Time) *session.Session {
	s := session.New(id, user, session.StrategyPomodoro)
	s.Pomodoro = &session.PomodoroFields{TargetDuration: 25}
	if err := s.Start(start); err != nil {
		panic(err)
	}
	return s
}

func completedSession(id, user string, start time.Time, minutes int) *session.Session {
	s := runningSession(id, user, start)
	if _, err := s.Finish(start.Add(time.Duration(minutes)*time.Minute), session.StatusCompleted, minutes); err != nil {
		panic(err)
	}
	return s
}

func TestNewManager_CreatesFileIfNotExist(t *testing.T) {
	path := tempStateFile(t)

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NotNil(t, m.state)
	_, err = os.Stat(path)
	assert.NoError(t, err, "state file not created")
}

func TestManager_AtomicPersists(t *testing.T) {
	path := tempStateFile(t)
	ctx := context.Background()

	m, err := NewManager(path)
	require.NoError(t, err)
	start := time.Now().Add(-time.Hour)
	require.NoError(t, m.Atomic(ctx, func(tx store.Tx) error {
		return tx.Insert(runningSession("s1", "alice", start))
	}))

	m2, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m2.View(ctx, func(tx store.Tx) error {
		s, err := tx.Get("s1")
		require.NoError(t, err)
		assert.Equal(t, "alice", s.UserID)
		assert.Equal(t, session.StatusRunning, s.Status)
		assert.True(t, s.StartedAt.Equal(start))
		return nil
	}))
}

func TestManager_AtomicDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.Atomic(ctx, func(tx store.Tx) error {
		if err := tx.Insert(runningSession("s1", "alice", time.Now())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = m.View(ctx, func(tx store.Tx) error {
		_, err := tx.Get("s1")
		return err
	})
	assert.True(t, store.IsNotFound(err))
}

func TestManager_TxSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)
	now := time.Now()

	require.NoError(t, m.Atomic(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Insert(completedSession("a", "alice", now.Add(-time.Hour), 25)))
		n, err := tx.CountCompleted("alice", session.StrategyPomodoro, now.Add(-2*time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, tx.Delete("a"))
		_, err = tx.Get("a")
		assert.True(t, store.IsNotFound(err))
		return nil
	}))
}

func TestManager_ViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)

	err = m.View(ctx, func(tx store.Tx) error {
		return tx.Insert(runningSession("s1", "alice", time.Now()))
	})
	assert.Error(t, err)
}

func TestManager_InsertDuplicateAndUpdateMissing(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)
	s := runningSession("s1", "alice", time.Now())

	require.NoError(t, m.Atomic(ctx, func(tx store.Tx) error { return tx.Insert(s) }))
	err = m.Atomic(ctx, func(tx store.Tx) error { return tx.Insert(s) })
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	err = m.Atomic(ctx, func(tx store.Tx) error { return tx.Update(runningSession("nope", "alice", time.Now())) })
	assert.True(t, store.IsNotFound(err))
}

func TestManager_ClosedRejects(t *testing.T) {
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	err = m.View(context.Background(), func(tx store.Tx) error { return nil })
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestManager_Heartbeat(t *testing.T) {
	m, err := NewManager(tempStateFile(t))
	require.NoError(t, err)
	oldTime := m.state.HeartBeat
	time.Sleep(10 * time.Millisecond)
	m.Heartbeat()
	assert.True(t, m.state.HeartBeat.After(oldTime), "Heartbeat did not update HeartBeat time")
}

func TestManager_StartUpChecksSplitsSegmentsAfterDowntime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	uptime := filepath.Join(dir, "uptime")
	require.NoError(t, os.WriteFile(uptime, []byte("60.00 120.00\n"), 0644))
	old := uptimeFile
	uptimeFile = uptime
	defer func() { uptimeFile = old }()

	ctx := context.Background()
	m, err := NewManager(path)
	require.NoError(t, err)
	start := time.Now().Add(-3 * time.Hour)
	require.NoError(t, m.Atomic(ctx, func(tx store.Tx) error {
		return tx.Insert(runningSession("s1", "alice", start))
	}))

	// pretend the daemon last wrote the file two hours ago, before the reboot
	lastBeat := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, lastBeat, lastBeat))

	m2, err := NewManager(path)
	require.NoError(t, err)
	s := m2.GetState().Sessions["s1"]
	require.Len(t, s.Segments, 2)
	assert.Equal(t, "system down", s.Segments[0].Reason)
	assert.Equal(t, session.StatusRunning, s.Status)
	assert.InDelta(t, 60, s.WorkedDuration(time.Now()).Minutes(), 1)
}
