// Package sqlite implements storage.Storage on top of an embedded,
// pure-Go SQLite (github.com/ncruces/go-sqlite3), the same engine and
// wazero runtime the teacher project uses for its own issue database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver" // registers the "sqlite3" database/sql driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the WASM SQLite binary
	"github.com/tetratelabs/wazero"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/storage/sqlite/migrations"
	"github.com/nsyout/overseer/internal/types"
)

// DefaultBusyTimeout is the wait SQLite applies before giving up on a
// locked database, allowing readers to coexist with the single writer
// (spec §5).
const DefaultBusyTimeout = 30 * time.Second

func init() {
	// Cache compiled WASM across process invocations; without it every CLI
	// call pays ~200ms of JIT compilation before touching the database.
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "overseer", "wasm")
	}
	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}
	if cache == nil {
		cache = wazero.NewCompilationCache()
	}
	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
}

// Storage implements storage.Storage.
type Storage struct {
	*taskStore
	db          *sql.DB
	dbPath      string
	busyTimeout time.Duration
	closed      atomic.Bool
}

// New opens (creating if necessary) a SQLite-backed store at path, with
// the default busy timeout.
func New(ctx context.Context, path string) (*Storage, error) {
	return NewWithTimeout(ctx, path, DefaultBusyTimeout)
}

// NewWithTimeout opens a store with a configurable busy timeout. A timeout
// of 0 means fail immediately if the database is locked.
func NewWithTimeout(ctx context.Context, path string, busyTimeout time.Duration) (*Storage, error) {
	timeoutMs := int64(busyTimeout / time.Millisecond)

	isInMemory := path == ":memory:"
	var connStr string
	if isInMemory {
		// Each in-memory store gets its own shared-cache name so independent
		// New(ctx, ":memory:") calls (as in tests) never see each other's data.
		connStr = fmt.Sprintf("file:memdb-%d?mode=memory&cache=shared&_txlock=immediate&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)", time.Now().UnixNano(), timeoutMs)
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, types.Errorf(types.KindStoreError, err, "create database directory %s", dir)
			}
		}
		connStr = fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)", path, timeoutMs)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, types.Errorf(types.KindStoreError, err, "open database")
	}

	if isInMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		maxConns := runtime.NumCPU() + 1 // one writer, N readers
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)

		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return nil, types.Errorf(types.KindStoreError, err, "enable WAL mode")
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, types.Errorf(types.KindStoreError, err, "ping database")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, types.Errorf(types.KindStoreError, err, "initialize schema")
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, err
	}

	absPath := path
	if !isInMemory {
		if absPath, err = filepath.Abs(path); err != nil {
			return nil, types.Errorf(types.KindStoreError, err, "resolve database path")
		}
	}

	return &Storage{
		taskStore:   &taskStore{exec: db},
		db:          db,
		dbPath:      absPath,
		busyTimeout: busyTimeout,
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	var versionStr string
	row := db.QueryRowContext(ctx, `SELECT value FROM schema_meta WHERE key = 'schema_version'`)
	if err := row.Scan(&versionStr); err != nil {
		return types.Errorf(types.KindStoreError, err, "read schema_version")
	}
	current, err := strconv.Atoi(versionStr)
	if err != nil {
		return types.Errorf(types.KindStoreError, err, "parse schema_version %q", versionStr)
	}
	if _, err := migrations.Run(db, current); err != nil {
		return types.Errorf(types.KindStoreError, err, "run migrations")
	}
	return nil
}

// SchemaVersion returns the current schema_version counter (spec §6).
func (s *Storage) SchemaVersion(ctx context.Context) (int, error) {
	var v string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM schema_meta WHERE key = 'schema_version'`)
	if err := row.Scan(&v); err != nil {
		return 0, wrapDBError("read schema version", err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, types.Errorf(types.KindStoreError, err, "parse schema version %q", v)
	}
	return n, nil
}

// Probe does a cheap round-trip to verify the store is reachable and the
// schema is at least as new as this build expects.
func (s *Storage) Probe(ctx context.Context) error {
	if s.closed.Load() {
		return types.NewError(types.KindStoreError, "storage is closed", nil)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return types.Errorf(types.KindStoreError, err, "ping database")
	}
	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version < migrations.CurrentVersion() {
		return types.Errorf(types.KindStoreError, nil,
			"database schema version %d is older than expected %d; migrations did not run", version, migrations.CurrentVersion())
	}
	return nil
}

// RunInTransaction executes fn within a single database transaction using
// BEGIN IMMEDIATE semantics (acquiring the write lock up front, the same
// choice beads documents for its own RunInTransaction to avoid
// lock-upgrade deadlocks under concurrent writers).
func (s *Storage) RunInTransaction(ctx context.Context, fn func(tx storage.TaskStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&taskStore{exec: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transaction", err)
	}
	committed = true
	return nil
}

// Close flushes the WAL and closes the database connection.
func (s *Storage) Close() error {
	s.closed.Store(true)
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the absolute path to the database file (":memory:" is
// returned unchanged for in-memory databases).
func (s *Storage) Path() string { return s.dbPath }
