package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/matheus3301/msgarchive/internal/contacts"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// DefaultTextCacheSize is the number of recovered message texts kept in
	// memory.
	DefaultTextCacheSize = 4096
)

// ErrClosed is returned for queries issued after Close.
var ErrClosed = errors.New("archive is closed")

// ErrNotArchive is returned when the archive path is not a regular file.
var ErrNotArchive = errors.New("not a database file")

// DB is a read-only view of the message archive. The underlying connection
// is opened on first use and kept until Close. All queries are serialized on
// that single connection.
type DB struct {
	path     string
	logger   *zap.Logger
	contacts contacts.Resolver

	mu     sync.Mutex
	conn   *sql.DB
	closed bool

	cacheSize int
	texts     *lru.Cache[int64, string]
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// WithContactResolver sets the resolver used for contact-name filters.
func WithContactResolver(r contacts.Resolver) Option {
	return func(db *DB) { db.contacts = r }
}

// WithTextCacheSize sets how many recovered texts are cached. Zero disables
// the cache.
func WithTextCacheSize(n int) Option {
	return func(db *DB) { db.cacheSize = n }
}

// New returns a DB for the archive at path. No file is touched until the
// first query.
func New(path string, opts ...Option) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("archive path is required")
	}
	db := &DB{path: path, logger: zap.NewNop(), cacheSize: DefaultTextCacheSize}
	for _, opt := range opts {
		opt(db)
	}
	if db.cacheSize > 0 {
		cache, err := lru.New[int64, string](db.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("text cache: %w", err)
		}
		db.texts = cache
	}
	return db, nil
}

// Path returns the archive file path.
func (db *DB) Path() string {
	return db.path
}

// Ping opens the archive if needed and verifies it can be read.
func (db *DB) Ping(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.connLocked(ctx)
	return err
}

// Close releases the connection. Safe to call more than once.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// connLocked returns the shared connection, opening it on first use.
// db.mu must be held.
func (db *DB) connLocked(ctx context.Context) (*sql.DB, error) {
	if db.closed {
		return nil, ErrClosed
	}
	if db.conn != nil {
		return db.conn, nil
	}

	if err := checkReadable(db.path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", db.path))
	if err != nil {
		return nil, classifyOpenError(db.path, err)
	}
	conn.SetMaxOpenConns(1)

	// The driver opens lazily; reading the schema forces the file open.
	var tables int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tables); err != nil {
		_ = conn.Close()
		return nil, classifyOpenError(db.path, err)
	}

	db.logger.Info("archive opened", zap.String("path", db.path), zap.Int("tables", tables))
	db.conn = conn
	return conn, nil
}

// checkReadable opens the archive file directly so permission failures surface
// as fs.ErrPermission before sqlite reports them as a generic CANTOPEN.
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return classifyOpenError(path, err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return classifyOpenError(path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("open archive %s: %w", path, ErrNotArchive)
	}
	return nil
}

// ParseID parses a record identifier as exposed to callers.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
