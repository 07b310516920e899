package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

func TestState_GetSession(t *testing.T) {
	st := newState()
	st.Sessions["s1"] = runningSession("s1", "alice", time.Now().Add(-time.Hour))

	s, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.UserID)

	_, err = st.GetSession("missing")
	assert.True(t, store.IsNotFound(err))
}

func TestTx_ListByUserAndActive(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	st := newState()
	st.Sessions["yesterday"] = completedSession("yesterday", "alice", day.Add(-2*time.Hour), 30)
	st.Sessions["morning"] = completedSession("morning", "alice", day.Add(9*time.Hour), 25)
	st.Sessions["now"] = runningSession("now", "alice", day.Add(11*time.Hour))
	st.Sessions["bob"] = runningSession("bob", "bob", day.Add(10*time.Hour))

	tx := newTx(st, true)
	list, err := tx.ListByUser("alice", day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "morning", list[0].ID)
	assert.Equal(t, "now", list[1].ID)

	active, err := tx.Active("alice")
	require.NoError(t, err)
	assert.Equal(t, "now", active.ID)

	_, err = tx.Active("carol")
	assert.True(t, store.IsNotFound(err))
}

func TestState_SplitOpenSegments(t *testing.T) {
	now := time.Now()
	st := newState()
	st.Sessions["open"] = runningSession("open", "alice", now.Add(-time.Hour))
	st.Sessions["done"] = completedSession("done", "alice", now.Add(-3*time.Hour), 25)

	n := st.SplitOpenSegments(now.Add(-30*time.Minute), now, "system down")
	assert.Equal(t, 1, n)
	open := st.Sessions["open"]
	require.Len(t, open.Segments, 2)
	assert.False(t, open.Segments[0].IsActive())
	assert.True(t, open.Segments[1].IsActive())
	assert.Len(t, st.Sessions["done"].Segments, 1)
	assert.Equal(t, session.StatusRunning, open.Status)
}

func TestTx_GetReadsCommittedThenBufferedWrites(t *testing.T) {
	st := newState()
	st.Sessions["s1"] = runningSession("s1", "alice", time.Now().Add(-time.Hour))

	tx := newTx(st, false)
	s, err := tx.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.UserID)

	require.NoError(t, tx.Delete("s1"))
	_, err = tx.Get("s1")
	assert.True(t, store.IsNotFound(err), "buffered delete hides the committed session")
	_, err = tx.Get("missing")
	assert.True(t, store.IsNotFound(err))
	assert.Contains(t, st.Sessions, "s1", "nothing committed yet")
}
