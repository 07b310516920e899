package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

var uptimeFile = "/proc/uptime"

// Manager handles reading and writing state.json safely. It is the JSON-file
// implementation of store.Store.
type Manager struct {
	path   string
	mu     sync.RWMutex
	state  *State
	closed bool
}

var _ store.Store = (*Manager)(nil)

// NewManager loads or initializes a new state manager.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}

	if err := m.load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.state = newState()
			if err := m.save(); err != nil {
				return nil, err
			}
			return m, nil
		}
		return nil, err
	}
	m.startUpChecks()

	return m, nil
}

// load reads the state file into memory.
func (m *Manager) load() error {
	var s State

	// read mtime of file to set heartbeat
	info, err := os.Stat(m.path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse %s: %w", m.path, err)
	}
	if s.Sessions == nil {
		s.Sessions = make(map[string]*session.Session)
	}
	s.HeartBeat = info.ModTime()

	m.state = &s
	return nil
}

func (m *Manager) Heartbeat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := time.Now()
	os.Chtimes(m.path, t, t)
	m.state.HeartBeat = t
}

// save atomically writes the state file to disk.
func (m *Manager) save() error {
	tmp := m.path + ".tmp"
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, m.path)
}

// startUpChecks detects that the daemon was down while sessions were running
// and keeps that gap out of their server-tracked work segments.
func (m *Manager) startUpChecks() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	defer func() { m.state.HeartBeat = now }()

	uptime, err := os.ReadFile(uptimeFile)
	if err != nil {
		return
	}

	var upSeconds float64
	_, err = fmt.Sscanf(string(uptime), "%f", &upSeconds)
	if err != nil {
		return
	}

	lastHeartbeat := m.state.HeartBeat
	if now.Sub(lastHeartbeat) <= time.Duration(upSeconds)*time.Second {
		return
	}
	if n := m.state.SplitOpenSegments(lastHeartbeat, now, "system down"); n > 0 {
		log.Printf("Closed %d open segment(s) at last heartbeat %s", n, lastHeartbeat.Format(time.RFC3339))
		if err := m.save(); err != nil {
			log.Println("Failed to save state after startup checks:", err)
		}
	}
}

// Atomic runs fn against a buffered view and persists its writes in one
// atomic file replace. Nothing is kept if fn or the write fails.
func (m *Manager) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return store.ErrClosed
	}

	t := newTx(m.state, false)
	if err := fn(t); err != nil {
		return err
	}
	if len(t.writes) == 0 {
		return nil
	}

	previous := make(map[string]*session.Session, len(t.writes))
	for id := range t.writes {
		if old, ok := m.state.Sessions[id]; ok {
			previous[id] = old
		}
	}
	t.commit()
	if err := m.save(); err != nil {
		t.rollback(previous)
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// View runs fn against the committed state without allowing writes.
func (m *Manager) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return store.ErrClosed
	}
	return fn(newTx(m.state, true))
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetState returns a snapshot copy of the current state.
func (m *Manager) GetState() *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := &State{
		Sessions:  make(map[string]*session.Session, len(m.state.Sessions)),
		Version:   m.state.Version,
		HeartBeat: m.state.HeartBeat,
	}
	for id, s := range m.state.Sessions {
		cp.Sessions[id] = s.Clone()
	}
	return cp
}
