package sqlite

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

type Provider struct{}

func init() {
	connector.Register("sqlite", &Provider{})
}

// Connect opens cfg.Database as a file path or ":memory:". An in-memory
// database lives on a single connection, so the pool is pinned to one.
func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}

	pool := cfg.Pool.WithPoolDefaults()
	if cfg.Database == ":memory:" {
		pool.MaxOpen = 1
		pool.MaxIdle = 1
		pool.MaxLifetime = 0
		pool.MaxIdleTime = 0
	}
	conn, err := connector.OpenSQL(ctx, "sqlite", cfg.Database, pool, p.Dialect())
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}
