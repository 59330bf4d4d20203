package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS style_cache (
	key TEXT PRIMARY KEY,
	css TEXT NOT NULL
)`

// ErrClosed is returned by a SQLite cache after Close.
var ErrClosed = errors.New("cache: sqlite cache closed")

// SQLite persists compiled stylesheets in a single table. A connection is not
// safe for concurrent use, so every call holds the cache mutex.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL}
	if path == ":memory:" || path == "" {
		path = ":memory:"
		flags = []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenMemory}
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, sqliteSchema, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return "", false, err
	}
	var (
		css   string
		found bool
	)
	err := sqlitex.Execute(s.conn, `SELECT css FROM style_cache WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				css = stmt.ColumnText(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return css, found, nil
}

func (s *SQLite) Set(ctx context.Context, key, css string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}
	err := sqlitex.Execute(s.conn,
		`INSERT INTO style_cache (key, css) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET css = excluded.css`,
		&sqlitex.ExecOptions{Args: []any{key, css}})
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Invalidate(ctx context.Context, keyOrPrefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}
	// substr avoids LIKE wildcard escaping for keys containing % or _.
	err := sqlitex.Execute(s.conn,
		`DELETE FROM style_cache WHERE substr(key, 1, length(?1)) = ?1`,
		&sqlitex.ExecOptions{Args: []any{keyOrPrefix}})
	if err != nil {
		return fmt.Errorf("invalidate %q: %w", keyOrPrefix, err)
	}
	return nil
}

// Len reports the number of stored entries.
func (s *SQLite) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return 0, ErrClosed
	}
	var n int
	err := sqlitex.Execute(s.conn, `SELECT count(*) FROM style_cache`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}})
	return n, err
}

// Close releases the underlying connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *SQLite) ready(ctx context.Context) error {
	if s.conn == nil {
		return ErrClosed
	}
	return ctx.Err()
}
