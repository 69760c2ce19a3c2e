package connector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqlprep/database"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

// SQLConnection is a Connection over a database/sql pool, shared by the
// providers whose drivers register with database/sql.
type SQLConnection struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// OpenSQL opens driverName, applies the pool settings and pings once.
func OpenSQL(ctx context.Context, driverName, dsn string, pool PoolConfig, d dialect.Dialect) (*SQLConnection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	return &SQLConnection{db: db, dialect: d}, nil
}

// DB returns the underlying *sql.DB instance.
func (c *SQLConnection) DB() *sql.DB {
	return c.db
}

func (c *SQLConnection) Database() database.Database {
	return database.NewSqlDatabase(c.db)
}

func (c *SQLConnection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *SQLConnection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLConnection) Stats() ConnectionStats {
	s := c.db.Stats()
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}

func (c *SQLConnection) Close() error {
	return c.db.Close()
}
