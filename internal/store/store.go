// Package store caches outline results, keyed by document content hash and
// classifier fingerprint. The cache lives in SQLite by default; a postgres://
// DSN shares one cache between several server instances.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"

	"github.com/dgallion1/docoutline/internal/outline"
)

const schema = `
CREATE TABLE IF NOT EXISTS outlines (
	cache_key  TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a result cache. A nil *Store is a valid, always-missing cache.
type Store struct {
	db       *sql.DB
	postgres bool
}

// IsPostgresDSN reports whether target names a Postgres server rather than
// a SQLite file.
func IsPostgresDSN(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// Open opens or creates the cache at target: a SQLite file path, ":memory:"
// for a throwaway cache, or a postgres:// DSN.
func Open(target string) (*Store, error) {
	if IsPostgresDSN(target) {
		return openPostgres(target)
	}
	return openSQLite(target)
}

func openPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: exec schema: %w", err)
	}
	return &Store{db: db, postgres: true}, nil
}

func openSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: exec schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the cached result for key. The bool is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (outline.Result, bool, error) {
	if s == nil {
		return outline.Result{}, false, nil
	}
	var raw string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT result FROM outlines WHERE cache_key = ?`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return outline.Result{}, false, nil
	}
	if err != nil {
		return outline.Result{}, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	var res outline.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return outline.Result{}, false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	if res.Outline == nil {
		res.Outline = []outline.Entry{}
	}
	return res, true, nil
}

// Put stores res under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key, filename string, res outline.Result) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.bind(
		`INSERT INTO outlines (cache_key, filename, result, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET filename = excluded.filename, result = excluded.result, created_at = excluded.created_at`),
		key, filename, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Count returns the number of cached results.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outlines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// bind rewrites ? placeholders to $n for Postgres.
func (s *Store) bind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
