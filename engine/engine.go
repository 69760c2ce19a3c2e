// Package engine is the data-access layer: it prepares templated queries,
// executes them and keeps buffered result sets under named handles.
package engine

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/sqlprep/cache"
	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/database"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
	"github.com/Konsultn-Engineering/sqlprep/prepare"
)

type Engine struct {
	conn    connector.Connection
	db      database.Database
	dialect dialect.Dialect
	prep    *prepare.Engine
	strict  bool
	timeout time.Duration
	logger  *zap.Logger
	handles *cache.HandleCache[*resultSet]

	idMu    sync.Mutex
	entropy io.Reader

	mu       sync.Mutex
	affected int64
	insertID int64
}

type options struct {
	prefix          prepare.Prefix
	stripSlashes    bool
	strict          bool
	logger          *zap.Logger
	handleCacheSize int
	queryTimeout    time.Duration
}

type Option func(*options)

// WithPrefix sets the table prefix used by %t placeholders.
func WithPrefix(p prepare.Prefix) Option {
	return func(o *options) { o.prefix = p }
}

// WithStripSlashes strips backslash escaping from string arguments first.
func WithStripSlashes(on bool) Option {
	return func(o *options) { o.stripSlashes = on }
}

// WithStrict makes the statement helpers fail when placeholders and
// arguments do not pair up instead of running a partial query.
func WithStrict(on bool) Option {
	return func(o *options) { o.strict = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHandleCacheSize bounds the number of result sets kept at once.
func WithHandleCacheSize(n int) Option {
	return func(o *options) { o.handleCacheSize = n }
}

// WithQueryTimeout bounds every statement unless ctx already has a deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

func New(conn connector.Connection, opts ...Option) *Engine {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	d := conn.Dialect()
	e := &Engine{
		conn:    conn,
		db:      conn.Database(),
		dialect: d,
		prep: prepare.New(
			prepare.WithPrefix(o.prefix),
			prepare.WithEscaper(d),
			prepare.WithStripSlashes(o.stripSlashes),
		),
		strict:  o.strict,
		timeout: o.queryTimeout,
		logger:  o.logger.With(zap.String("dialect", d.Name())),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	e.handles = cache.NewHandleCache(o.handleCacheSize, func(name string, _ *resultSet) {
		e.logger.Debug("result handle released", zap.String("handle", name))
	})
	return e
}

func (e *Engine) Dialect() dialect.Dialect {
	return e.dialect
}

// Prepare substitutes args into query with the connection's escaping rules.
func (e *Engine) Prepare(query string, args ...any) string {
	return e.prep.Substitute(query, args)
}

// PrepareStrict is Prepare that reports unpaired placeholders or arguments.
func (e *Engine) PrepareStrict(query string, args ...any) (string, error) {
	return e.prep.SubstituteStrict(query, args)
}

// AffectedRows returns the rows affected by the last statement run through
// Query. For statements returning rows it is the number of rows read.
func (e *Engine) AffectedRows() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.affected
}

// InsertID returns the id generated by the last INSERT.
func (e *Engine) InsertID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insertID
}

func (e *Engine) Health(ctx context.Context) error {
	return e.conn.Health(ctx)
}

// Close releases every result handle and the connection.
func (e *Engine) Close() error {
	e.handles.Purge()
	return e.conn.Close()
}

// build prepares a statement assembled by the helpers, honouring strict mode.
func (e *Engine) build(query string, args []any) (string, error) {
	if e.strict {
		return e.prep.SubstituteStrict(query, args)
	}
	return e.prep.Substitute(query, args), nil
}

func (e *Engine) newQueryID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), e.entropy)
	if err != nil {
		return ""
	}
	return id.String()
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}
