package state

import (
	"sort"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

// State is the top-level structure stored in the state.json file.
type State struct {
	Sessions  map[string]*session.Session `json:"sessions"`
	Version   int                         `json:"version"`
	HeartBeat time.Time                   `json:"-"` // not stored in JSON
}

func newState() *State {
	return &State{
		Sessions:  make(map[string]*session.Session),
		HeartBeat: time.Now(),
		Version:   1,
	}
}

// GetSession returns the committed session with id.
func (s *State) GetSession(id string) (*session.Session, error) {
	sess, exists := s.Sessions[id]
	if !exists {
		return nil, store.NewNotFoundError("session", id)
	}
	return sess, nil
}

// SplitOpenSegments closes every open segment at from and reopens it at to,
// so time the daemon could not observe is not counted as worked.
func (s *State) SplitOpenSegments(from, to time.Time, reason string) int {
	n := 0
	for _, sess := range s.Sessions {
		last := len(sess.Segments) - 1
		if last < 0 || !sess.Segments[last].IsActive() || sess.IsTerminal() {
			continue
		}
		if from.Before(sess.Segments[last].StartTime) {
			continue
		}
		sess.Segments[last].EndTime = from
		sess.Segments[last].Reason = reason
		sess.Segments = append(sess.Segments, session.SegmentRecord{StartTime: to})
		n++
	}
	return n
}

func sortByStart(sessions []*session.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
}
