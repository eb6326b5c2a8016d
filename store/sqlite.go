package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/finance/internal/logging"
)

// DBFile is the single database file shared by every store.
const DBFile = "finance.db"

var (
	// ErrIO reports a failure creating the data directory or database file.
	ErrIO = errors.New("io error")
	// ErrSchema reports a failure ensuring a table schema.
	ErrSchema = errors.New("schema error")
	// ErrStorage reports a failed query or statement.
	ErrStorage = errors.New("storage error")
)

// Opener hands out one Handle per operation. Handles are serialized: a
// second Open blocks until the previous Handle is closed.
type Opener struct {
	dir    string
	logger *logging.Logger
	mu     sync.Mutex
}

// Option configures an Opener
type Option func(*Opener)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Opener) {
		o.logger = l
	}
}

// NewOpener returns an Opener for the database in dir.
func NewOpener(dir string, opts ...Option) *Opener {
	o := &Opener{
		dir:    dir,
		logger: logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dir is the data directory.
func (o *Opener) Dir() string { return o.dir }

// Path is the full database file path.
func (o *Opener) Path() string { return filepath.Join(o.dir, DBFile) }

// Open creates the data directory if needed, opens the database and runs
// every schema given. The caller must Close the returned Handle.
func (o *Opener) Open(ctx context.Context, schemas ...string) (*Handle, error) {
	o.mu.Lock()

	h, err := o.open(ctx, schemas)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	h.release = o.mu.Unlock
	return h, nil
}

func (o *Opener) open(ctx context.Context, schemas []string) (*Handle, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", ErrIO, o.dir, err)
	}

	path := o.Path()
	o.logger.Debug().Str("path", path).Msg("using db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	for _, schema := range schemas {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
	}

	return &Handle{db: db}, nil
}

// Handle is one open connection to the database, scoped to a single
// operation.
type Handle struct {
	db      *sql.DB
	release func()
	once    sync.Once
}

// DB exposes the underlying database.
func (h *Handle) DB() *sql.DB { return h.db }

// Exec runs a statement and reports the rows affected.
func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := h.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return res, nil
}

// Insert runs an INSERT and returns the new row id.
func (h *Handle) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := h.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return id, nil
}

// Query runs fn for each row returned by query.
func (h *Handle) Query(ctx context.Context, fn func(*sql.Rows) error, query string, args ...any) error {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Close releases the connection and lets the next Open proceed. It is
// safe to call more than once.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		err = h.db.Close()
		if h.release != nil {
			h.release()
		}
	})
	return err
}
