package mysql

import (
	"context"
	"fmt"
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"

	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

type Provider struct{}

func init() {
	connector.Register("mysql", &Provider{})
}

// BuildDSN formats cfg for go-sql-driver/mysql.
func BuildDSN(cfg connector.Config) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := driver.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	if cfg.SSLMode != "" && cfg.SSLMode != "disable" {
		mc.TLSConfig = "true"
	}
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN(), nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	conn, err := connector.OpenSQL(ctx, "mysql", dsn, cfg.Pool.WithPoolDefaults(), p.Dialect())
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewMySQLDialect()
}
