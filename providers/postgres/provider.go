package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/database"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

// BuildDSN creates a PostgreSQL connection string.
func BuildDSN(cfg connector.Config) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	b := connector.NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params)
	if cfg.ConnectTimeout >= time.Second {
		b.DefaultParam("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout/time.Second)))
	}
	b.DefaultParam("sslmode", "prefer").
		DefaultParam("connect_timeout", "10")
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b.Build(), nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pool := cfg.Pool.WithPoolDefaults()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = int32(pool.MaxOpen)
	// Only an explicit idle count keeps connections warm.
	poolCfg.MinConns = int32(min(max(cfg.Pool.MaxIdle, 0), pool.MaxOpen))
	poolCfg.MaxConnLifetime = pool.MaxLifetime
	poolCfg.MaxConnIdleTime = pool.MaxIdleTime
	if pool.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = pool.HealthCheckFreq
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &connection{pool: pgPool, dialect: dialect.NewPostgresDialect()}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

type connection struct {
	pool    *pgxpool.Pool
	dialect dialect.Dialect
}

func (c *connection) Database() database.Database {
	return database.NewPgxDatabase(c.pool)
}

func (c *connection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *connection) Close() error {
	c.pool.Close()
	return nil
}
