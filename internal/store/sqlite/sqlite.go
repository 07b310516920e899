// Package sqlite is the SQLite implementation of store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/store"
)

type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

var _ store.Store = (*Store)(nil)

// New opens (and creates if needed) the database at path.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time; transactions queue in the pool instead of
	// failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		strategy TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL DEFAULT 0,
		ended_at INTEGER NOT NULL DEFAULT 0,
		body_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions(user_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_ended ON sessions(user_id, status, ended_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

// Atomic runs fn in one SQL transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.run(ctx, false, fn)
}

// View runs fn in a transaction that is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx store.Tx) error) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	t := &tx{ctx: ctx, tx: sqlTx, readOnly: readOnly}

	if err := fn(t); err != nil {
		sqlTx.Rollback()
		return err
	}
	if readOnly {
		return sqlTx.Rollback()
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type tx struct {
	ctx      context.Context
	tx       *sql.Tx
	readOnly bool
}

var _ store.Tx = (*tx)(nil)

const selectColumns = `SELECT body_json FROM sessions`

func (t *tx) Get(id string) (*session.Session, error) {
	row := t.tx.QueryRowContext(t.ctx, selectColumns+` WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewNotFoundError("session", id)
	}
	return s, err
}

func (t *tx) Insert(s *session.Session) error {
	if t.readOnly {
		return fmt.Errorf("insert in read-only transaction")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO sessions (id, user_id, strategy, status, started_at, ended_at, body_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, string(s.Strategy), string(s.Status), unixNano(s.StartedAt), unixNano(s.EndedAt), string(body))
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return fmt.Errorf("session %s: %w", s.ID, store.ErrAlreadyExists)
	}
	return err
}

func (t *tx) Update(s *session.Session) error {
	if t.readOnly {
		return fmt.Errorf("update in read-only transaction")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE sessions SET user_id = ?, strategy = ?, status = ?, started_at = ?, ended_at = ?, body_json = ?
		WHERE id = ?
	`, s.UserID, string(s.Strategy), string(s.Status), unixNano(s.StartedAt), unixNano(s.EndedAt), string(body), s.ID)
	if err != nil {
		return err
	}
	return expectOne(res, s.ID)
}

func (t *tx) Delete(id string) error {
	if t.readOnly {
		return fmt.Errorf("delete in read-only transaction")
	}
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

func (t *tx) CountCompleted(userID string, strategy session.Strategy, from, to time.Time) (int, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = ? AND strategy = ? AND status = ? AND ended_at >= ? AND ended_at < ?
	`, userID, string(strategy), string(session.StatusCompleted), unixNano(from), unixNano(to)).Scan(&n)
	return n, err
}

func (t *tx) ListByUser(userID string, from, to time.Time) ([]*session.Session, error) {
	lo, hi := unixNano(from), unixNano(to)
	rows, err := t.tx.QueryContext(t.ctx, selectColumns+`
		WHERE user_id = ?
		  AND ((started_at >= ? AND started_at < ?) OR (ended_at >= ? AND ended_at < ?))
		ORDER BY started_at ASC, id ASC
	`, userID, lo, hi, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *tx) Active(userID string) (*session.Session, error) {
	row := t.tx.QueryRowContext(t.ctx, selectColumns+`
		WHERE user_id = ? AND status IN (?, ?)
		ORDER BY started_at DESC LIMIT 1
	`, userID, string(session.StatusRunning), string(session.StatusPaused))
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewNotFoundError("active session for user", userID)
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*session.Session, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		return nil, err
	}
	var s session.Session
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NewNotFoundError("session", id)
	}
	return nil
}

// unixNano keeps unset timestamps at 0 so they never fall in a window.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
