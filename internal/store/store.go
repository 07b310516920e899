// Package store defines the session store contract shared by the JSON-file
// and SQLite backends.
package store

import (
	"context"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// Tx is the view of the store inside one unit of work. Sessions handed out
// are copies; changes reach the store only through Insert and Update.
type Tx interface {
	// Get returns the session with id or a NotFoundError.
	Get(id string) (*session.Session, error)
	// Insert stores a new session.
	Insert(s *session.Session) error
	// Update replaces an existing session.
	Update(s *session.Session) error
	// Delete removes a session. Deleting a missing id is a NotFoundError.
	Delete(id string) error
	// CountCompleted counts the user's completed sessions of strategy whose
	// end falls in [from, to).
	CountCompleted(userID string, strategy session.Strategy, from, to time.Time) (int, error)
	// ListByUser returns the user's sessions started or ended in [from, to),
	// oldest first.
	ListByUser(userID string, from, to time.Time) ([]*session.Session, error)
	// Active returns the user's most recently started running or paused
	// session, or a NotFoundError.
	Active(userID string) (*session.Session, error)
}

// Store runs units of work. Atomic commits only when fn returns nil; no
// partial write of a failed fn is ever observable.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
