package store

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/tododos/tododos/internal/todo"
)

// changelogName is the marker file bumped on every write. Watchers in
// this and other processes use it to detect changes without polling
// the database itself.
const changelogName = "changelog"

// SQLiteConfig holds configuration for the SQLite document store.
type SQLiteConfig struct {
	// Path is the database file location, e.g. ~/.tododos/lists.db.
	Path string

	// PushAddr, when non-empty, is the address of a running push hub
	// (see internal/push). Subscribe will receive change payloads
	// over WebSocket instead of watching the data directory.
	PushAddr string

	// Logger for store activity. nil means a default stderr logger.
	Logger *log.Logger
}

// SQLiteStore persists each list as one JSON document row.
//
// The database is opened in embedded mode with WAL for concurrent
// reads, so several processes can share one data directory. The
// collection order is maintained by the updated_at column.
type SQLiteStore struct {
	conn    *sql.DB
	path    string
	dataDir string

	pushAddr string
	logger   *log.Logger

	mu         sync.Mutex
	subscribed bool
}

// OpenSQLite opens (creating if needed) the document database.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	st, err := store.OpenSQLite(store.SQLiteConfig{Path: ".tododos/lists.db"})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageErr("create data directory", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+cfg.Path)
	if err != nil {
		return nil, storageErr("open database", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, storageErr("ping database", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	st := &SQLiteStore{
		conn:     conn,
		path:     cfg.Path,
		dataDir:  dir,
		pushAddr: cfg.PushAddr,
		logger:   cfg.Logger,
	}

	// WAL for concurrent readers during writes.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := st.conn.Exec(pragma); err != nil {
			_ = st.Close()
			return nil, storageErr("configure database", err)
		}
	}

	if err := st.initSchema(); err != nil {
		_ = st.Close()
		return nil, err
	}

	return st, nil
}

// initSchema creates the lists table if it doesn't exist. Idempotent.
func (st *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lists_updated ON lists(updated_at DESC);
	`
	if _, err := st.conn.Exec(schema); err != nil {
		return storageErr("initialize schema", err)
	}
	return nil
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (st *SQLiteStore) Close() error {
	if st.conn == nil {
		return nil
	}
	if _, err := st.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		st.logger.Printf("Warning: failed to checkpoint WAL: %v", err)
	}
	if err := st.conn.Close(); err != nil {
		return storageErr("close database", err)
	}
	st.conn = nil
	return nil
}

// LoadAll implements Store.LoadAll.
func (st *SQLiteStore) LoadAll(ctx context.Context) ([]todo.List, error) {
	rows, err := st.conn.QueryContext(ctx,
		"SELECT id, doc FROM lists ORDER BY updated_at DESC")
	if err != nil {
		return nil, storageErr("query lists", err)
	}
	defer rows.Close()

	var lists []todo.List
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, storageErr("scan list row", err)
		}
		list, err := todo.UnmarshalDocument(id, []byte(doc))
		if err != nil {
			return nil, storageErr("decode list document", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate lists", err)
	}
	return lists, nil
}

// Create implements Store.Create. The new list is assigned a fresh
// identifier; the id on the passed list is ignored.
func (st *SQLiteStore) Create(ctx context.Context, list todo.List) (string, error) {
	id := todo.NewID()
	list.ID = id
	if err := list.Validate(); err != nil {
		return "", err
	}

	doc, err := todo.MarshalDocument(list)
	if err != nil {
		return "", storageErr("encode list document", err)
	}

	_, err = st.conn.ExecContext(ctx,
		"INSERT INTO lists (id, doc, updated_at) VALUES (?, ?, ?)",
		id, string(doc), list.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", storageErr("insert list", err)
	}

	st.bumpChangelog()
	return id, nil
}

// Update implements Store.Update as a full-document replace.
// Concurrent updates resolve last-write-wins; there is no merge.
func (st *SQLiteStore) Update(ctx context.Context, list todo.List) error {
	if err := list.Validate(); err != nil {
		return err
	}

	doc, err := todo.MarshalDocument(list)
	if err != nil {
		return storageErr("encode list document", err)
	}

	query := `
	INSERT INTO lists (id, doc, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		doc = excluded.doc,
		updated_at = excluded.updated_at
	`
	_, err = st.conn.ExecContext(ctx, query,
		list.ID, string(doc), list.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storageErr("update list", err)
	}

	st.bumpChangelog()
	return nil
}

// Delete implements Store.Delete. Deleting a missing id is a no-op.
func (st *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := st.conn.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id)
	if err != nil {
		return storageErr("delete list", err)
	}
	st.bumpChangelog()
	return nil
}

// bumpChangelog rewrites the changelog marker so directory watchers
// (in this process and others sharing the data dir) wake up.
func (st *SQLiteStore) bumpChangelog() {
	path := filepath.Join(st.dataDir, changelogName)
	stamp := time.Now().UTC().Format(time.RFC3339Nano) + "\n"
	if err := os.WriteFile(path, []byte(stamp), 0644); err != nil {
		st.logger.Printf("Warning: failed to bump changelog: %v", err)
	}
}
