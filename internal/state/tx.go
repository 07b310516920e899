package state

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// tx buffers writes over the committed state. A nil entry in writes marks a
// delete.
type tx struct {
	base     *State
	writes   map[string]*session.Session
	readOnly bool
}

var _ store.Tx = (*tx)(nil)

func newTx(base *State, readOnly bool) *tx {
	return &tx{base: base, writes: make(map[string]*session.Session), readOnly: readOnly}
}

func (t *tx) lookup(id string) (*session.Session, bool) {
	if s, ok := t.writes[id]; ok {
		return s, s != nil
	}
	s, err := t.base.GetSession(id)
	return s, err == nil
}

// each visits the merged view of committed and buffered sessions.
func (t *tx) each(fn func(*session.Session)) {
	for id, s := range t.base.Sessions {
		if _, overlaid := t.writes[id]; overlaid {
			continue
		}
		fn(s)
	}
	for _, s := range t.writes {
		if s != nil {
			fn(s)
		}
	}
}

func (t *tx) Get(id string) (*session.Session, error) {
	s, ok := t.lookup(id)
	if !ok {
		return nil, store.NewNotFoundError("session", id)
	}
	return s.Clone(), nil
}

func (t *tx) Insert(s *session.Session) error {
	if t.readOnly {
		return fmt.Errorf("insert in read-only transaction")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if _, ok := t.lookup(s.ID); ok {
		return fmt.Errorf("session %s: %w", s.ID, store.ErrAlreadyExists)
	}
	t.writes[s.ID] = s.Clone()
	return nil
}

func (t *tx) Update(s *session.Session) error {
	if t.readOnly {
		return fmt.Errorf("update in read-only transaction")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if _, ok := t.lookup(s.ID); !ok {
		return store.NewNotFoundError("session", s.ID)
	}
	t.writes[s.ID] = s.Clone()
	return nil
}

func (t *tx) Delete(id string) error {
	if t.readOnly {
		return fmt.Errorf("delete in read-only transaction")
	}
	if _, ok := t.lookup(id); !ok {
		return store.NewNotFoundError("session", id)
	}
	t.writes[id] = nil
	return nil
}

func (t *tx) CountCompleted(userID string, strategy session.Strategy, from, to time.Time) (int, error) {
	count := 0
	t.each(func(s *session.Session) {
		if s.UserID != userID || s.Strategy != strategy || s.Status != session.StatusCompleted {
			return
		}
		if !s.EndedAt.Before(from) && s.EndedAt.Before(to) {
			count++
		}
	})
	return count, nil
}

func (t *tx) ListByUser(userID string, from, to time.Time) ([]*session.Session, error) {
	var out []*session.Session
	t.each(func(s *session.Session) {
		if s.UserID != userID {
			return
		}
		if inWindow(s.StartedAt, from, to) || inWindow(s.EndedAt, from, to) {
			out = append(out, s.Clone())
		}
	})
	sortByStart(out)
	return out, nil
}

func (t *tx) Active(userID string) (*session.Session, error) {
	var latest *session.Session
	t.each(func(s *session.Session) {
		if s.UserID != userID {
			return
		}
		if s.Status != session.StatusRunning && s.Status != session.StatusPaused {
			return
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	})
	if latest == nil {
		return nil, store.NewNotFoundError("active session for user", userID)
	}
	return latest.Clone(), nil
}

// commit applies buffered writes to the base state.
func (t *tx) commit() {
	for id, s := range t.writes {
		if s == nil {
			delete(t.base.Sessions, id)
			continue
		}
		t.base.Sessions[id] = s
	}
}

// rollback restores the base to what it was before commit.
func (t *tx) rollback(previous map[string]*session.Session) {
	for id := range t.writes {
		if old, ok := previous[id]; ok {
			t.base.Sessions[id] = old
		} else {
			delete(t.base.Sessions, id)
		}
	}
}

func inWindow(ts, from, to time.Time) bool {
	return !ts.IsZero() && !ts.Before(from) && ts.Before(to)
}
