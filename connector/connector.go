package connector

import (
	"context"

	"github.com/Konsultn-Engineering/sqlprep/database"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

type Connection interface {
	Database() database.Database
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error)
	Config() Config
}
