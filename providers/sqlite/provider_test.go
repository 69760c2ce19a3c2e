package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqlprep/connector"
)

func TestConnectInMemory(t *testing.T) {
	c, err := connector.New("sqlite", connector.Config{Database: ":memory:"})
	require.NoError(t, err)

	conn, err := c.Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Health(context.Background()))
	assert.Equal(t, "sqlite", conn.Dialect().Name())

	db := conn.Database()
	_, err = db.ExecContext(context.Background(), "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	res, err := db.ExecContext(context.Background(), "INSERT INTO t (name) VALUES ('a')")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	assert.LessOrEqual(t, conn.Stats().OpenConnections, 1)
}

func TestConnectRequiresPath(t *testing.T) {
	_, err := (&Provider{}).Connect(context.Background(), connector.Config{})
	assert.Error(t, err)
}
