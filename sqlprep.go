// Package sqlprep connects to a configured store and returns a ready
// data-access engine.
package sqlprep

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/sqlprep/config"
	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/engine"

	_ "github.com/Konsultn-Engineering/sqlprep/providers/mysql"
	_ "github.com/Konsultn-Engineering/sqlprep/providers/postgres"
	_ "github.com/Konsultn-Engineering/sqlprep/providers/sqlite"
)

type (
	Config = config.Config
	Engine = engine.Engine
	Table  = engine.Table
	Field  = engine.Field
)

// Connect opens the store named by cfg.Driver and wraps it in an engine.
// A nil logger disables logging. The top-level query timeout wins over the
// one set under database.
func Connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := connector.New(cfg.Driver, cfg.Database)
	if err != nil {
		return nil, err
	}
	conn, err := c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	logger.Info("connected",
		zap.String("driver", cfg.Driver),
		zap.String("dialect", conn.Dialect().Name()))

	timeout := cfg.QueryTimeout
	if timeout == 0 {
		timeout = cfg.Database.QueryTimeout
	}

	return engine.New(conn,
		engine.WithPrefix(cfg.Prefix.Resolve()),
		engine.WithStripSlashes(cfg.StripSlashes),
		engine.WithStrict(cfg.Strict),
		engine.WithHandleCacheSize(cfg.HandleCacheSize),
		engine.WithQueryTimeout(timeout),
		engine.WithLogger(logger),
	), nil
}
