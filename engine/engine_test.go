package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Konsultn-Engineering/sqlprep/connector"
	"github.com/Konsultn-Engineering/sqlprep/prepare"
	_ "github.com/Konsultn-Engineering/sqlprep/providers/sqlite"
)

const usersDDL = `CREATE TABLE wp_users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	score REAL NOT NULL DEFAULT 0
)`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	c, err := connector.New("sqlite", connector.Config{Database: ":memory:"})
	require.NoError(t, err)
	conn, err := c.Connect(context.Background())
	require.NoError(t, err)

	opts = append([]Option{WithPrefix(prepare.SinglePrefix("wp_"))}, opts...)
	e := New(conn, opts...)
	t.Cleanup(func() { _ = e.Close() })

	_, err = e.Query(context.Background(), usersDDL, "")
	require.NoError(t, err)
	return e
}

func seedUsers(t *testing.T, e *Engine, names ...string) {
	t.Helper()
	for i, name := range names {
		_, err := e.Insert(context.Background(), Table{Name: "users"}, []Field{
			{Column: "name", Value: name},
			{Column: "age", Value: 20 + i, Format: "%d"},
		})
		require.NoError(t, err)
	}
}

func TestPrepareUsesConnectionDialect(t *testing.T) {
	e := newTestEngine(t)

	got := e.Prepare("SELECT * FROM %t WHERE name = %s AND age > %d", "users", "O'Brien", "30 years")
	assert.Equal(t, "SELECT * FROM wp_users WHERE name = 'O''Brien' AND age > 30", got)
	assert.Equal(t, "sqlite", e.Dialect().Name())
}

func TestPrepareStrict(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.PrepareStrict("SELECT %d, %d", 1)
	assert.ErrorIs(t, err, prepare.ErrUnresolvedPlaceholder)

	got, err := e.PrepareStrict("SELECT %d", 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got)
}

func TestInsertAndFetch(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	res, err := e.Insert(ctx, Table{Name: "users"}, []Field{
		{Column: "name", Value: "100% 'real'"},
		{Column: "age", Value: 41, Format: "%d"},
		{Column: "score", Value: 9.876, Format: "%2f"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatementInsert, res.Kind)
	assert.Equal(t, int64(1), res.InsertID)
	assert.Equal(t, int64(1), res.Value())
	assert.Equal(t, int64(1), e.InsertID())
	assert.Equal(t, int64(1), e.AffectedRows())

	res, err = e.Query(ctx, e.Prepare("SELECT name, age, score FROM %t", "users"), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Value())

	row, ok := e.FetchRow("", true)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "age", "score"}, row.Columns)
	assert.Equal(t, "100% 'real'", row.Values[0])
	assert.Equal(t, int64(41), row.Values[1])
	assert.InDelta(t, 9.87, row.Values[2], 1e-9)

	name, ok := row.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "100% 'real'", name)
	_, ok = row.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"name": "100% 'real'", "age": int64(41), "score": row.Values[2]}, row.Map())

	_, ok = e.FetchRow("", true)
	assert.False(t, ok)
	_, err = e.NumRows("")
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestNamedHandlesAreIndependent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seedUsers(t, e, "ann", "bob", "cid")

	_, err := e.Query(ctx, "SELECT name FROM wp_users ORDER BY id", "outer")
	require.NoError(t, err)
	_, err = e.Query(ctx, "SELECT age FROM wp_users WHERE age > 20 ORDER BY id", "inner")
	require.NoError(t, err)

	n, err := e.NumRows("outer")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = e.NumRows("inner")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var names []any
	for {
		row, ok := e.FetchRow("outer", false)
		if !ok {
			break
		}
		names = append(names, row.Values[0])

		// helpers never disturb stored handles
		_, err := e.GetRow(ctx, "SELECT 1")
		require.NoError(t, err)
	}
	assert.Equal(t, []any{"ann", "bob", "cid"}, names)

	// without closeOnFinish the handle stays registered
	n, err = e.NumRows("outer")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, e.FreeHandle("outer"))
	assert.False(t, e.FreeHandle("outer"))

	row, ok := e.FetchRow("inner", false)
	require.True(t, ok)
	assert.Equal(t, int64(21), row.Values[0])
}

func TestAffectedRowsFollowsLastStatement(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seedUsers(t, e, "ann", "bob", "cid")
	assert.Equal(t, int64(1), e.AffectedRows())

	_, err := e.Query(ctx, "SELECT * FROM wp_users", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.AffectedRows())

	_, err = e.Query(ctx, "SELECT * FROM wp_users WHERE age > 100", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.AffectedRows())
	assert.Equal(t, int64(3), e.InsertID())
}

func TestColumnsAreQuoted(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.Query(ctx, `CREATE TABLE wp_orders (id INTEGER PRIMARY KEY, "order" TEXT, "group" INTEGER)`, "")
	require.NoError(t, err)

	_, err = e.Insert(ctx, Table{Name: "orders"}, []Field{
		{Column: "order", Value: "first"},
		{Column: "group", Value: 1, Format: "%d"},
	})
	require.NoError(t, err)

	res, err := e.Update(ctx, Table{Name: "orders"},
		[]Field{{Column: "order", Value: "second"}},
		[]Field{{Column: "group", Value: 1, Format: "%d"}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = e.DeleteRow(ctx, Table{Name: "orders"}, []Field{{Column: "order", Value: "second"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
}

func TestFetchRowUnknownHandle(t *testing.T) {
	e := newTestEngine(t)
	_, ok := e.FetchRow("nope", true)
	assert.False(t, ok)
}

func TestHandleEviction(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithHandleCacheSize(2))
	seedUsers(t, e, "ann")

	for _, h := range []string{"a", "b", "c"} {
		_, err := e.Query(ctx, "SELECT name FROM wp_users", h)
		require.NoError(t, err)
	}

	_, err := e.NumRows("a")
	assert.ErrorIs(t, err, ErrUnknownHandle)
	_, err = e.NumRows("c")
	assert.NoError(t, err)
}

func TestGetHelpers(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seedUsers(t, e, "ann", "bob")

	row, err := e.GetRow(ctx, e.Prepare("SELECT name, age FROM %t WHERE name = %s", "users", "bob"))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, []any{"bob", int64(21)}, row.Values)

	row, err = e.GetRow(ctx, e.Prepare("SELECT name FROM %t WHERE name = %s", "users", "zed"))
	require.NoError(t, err)
	assert.Nil(t, row)

	rows, err := e.GetRows(ctx, "SELECT name FROM wp_users ORDER BY name")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ann", rows[0].Values[0])
	assert.Equal(t, "bob", rows[1].Values[0])

	col, err := e.GetColumn(ctx, "SELECT name, age FROM wp_users ORDER BY id", 1)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(20), int64(21)}, col)

	_, err = e.GetColumn(ctx, "SELECT name FROM wp_users", 3)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	_, err = e.GetRows(ctx, "DELETE FROM wp_users")
	assert.ErrorIs(t, err, ErrNoResultSet)
	_, err = e.GetRow(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestUpdateJoinsConditionsWithAnd(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seedUsers(t, e, "ann", "ann", "bob")

	res, err := e.Update(ctx, Table{Name: "users"},
		[]Field{{Column: "score", Value: "7.5", Format: "%f"}},
		[]Field{{Column: "name", Value: "ann"}, {Column: "age", Value: 21, Format: "%d"}},
	)
	require.NoError(t, err)
	assert.Equal(t, StatementUpdate, res.Kind)
	assert.Equal(t, int64(1), res.Value())
	assert.Equal(t, int64(1), e.AffectedRows())

	col, err := e.GetColumn(ctx, "SELECT score FROM wp_users ORDER BY id", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 7.5, 0.0}, col)
}

func TestDeleteRowRemovesOneRow(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seedUsers(t, e, "ann", "ann", "bob")

	res, err := e.DeleteRow(ctx, Table{Name: "users"}, []Field{{Column: "name", Value: "ann"}})
	require.NoError(t, err)
	assert.Equal(t, StatementDelete, res.Kind)
	assert.Equal(t, int64(1), res.RowsAffected)

	row, err := e.GetRow(ctx, "SELECT COUNT(*) FROM wp_users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Values[0])
}

func TestTablePrefixList(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithPrefix(prepare.PrefixList("wp_", "arch_")))

	_, err := e.Query(ctx, "CREATE TABLE arch_users (name TEXT)", "")
	require.NoError(t, err)

	_, err = e.Insert(ctx, Table{Name: "users", Format: "%1t"}, []Field{{Column: "name", Value: "old"}})
	require.NoError(t, err)

	row, err := e.GetRow(ctx, e.Prepare("SELECT COUNT(*) FROM %1t", "users"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Values[0])

	row, err = e.GetRow(ctx, e.Prepare("SELECT COUNT(*) FROM %t", "users"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.Values[0])
}

func TestStatementHelperValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	where := []Field{{Column: "id", Value: 1, Format: "%d"}}
	data := []Field{{Column: "name", Value: "x"}}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"insert without table", func() error { _, err := e.Insert(ctx, Table{}, data); return err }, ErrMissingTable},
		{"insert without data", func() error { _, err := e.Insert(ctx, Table{Name: "users"}, nil); return err }, ErrMissingData},
		{"update without where", func() error { _, err := e.Update(ctx, Table{Name: "users"}, data, nil); return err }, ErrMissingWhere},
		{"update without data", func() error { _, err := e.Update(ctx, Table{Name: "users"}, nil, where); return err }, ErrMissingData},
		{"delete without table", func() error { _, err := e.DeleteRow(ctx, Table{}, where); return err }, ErrMissingTable},
		{"delete without where", func() error { _, err := e.DeleteRow(ctx, Table{Name: "users"}, nil); return err }, ErrMissingWhere},
		{"empty query", func() error { _, err := e.Query(ctx, "", ""); return err }, ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestStrictModeRejectsUnpairedFormats(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithStrict(true))

	_, err := e.Insert(ctx, Table{Name: "users"}, []Field{
		{Column: "name", Value: "ann", Format: "%s || %s"},
	})
	require.Error(t, err)

	var subErr *prepare.SubstitutionError
	require.True(t, errors.As(err, &subErr))
	assert.ErrorIs(t, err, prepare.ErrUnresolvedPlaceholder)
	assert.Equal(t, 2, subErr.Consumed)

	row, err := e.GetRow(ctx, "SELECT COUNT(*) FROM wp_users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.Values[0])
}

func TestQueryFailureWrapsDriverError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := newTestEngine(t, WithLogger(zap.New(core)))

	_, err := e.Query(context.Background(), "UPDATE missing_table SET a = 1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")

	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zap.ErrorLevel, failed[0].Level)
}

func TestQueryLogsWithQueryID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := newTestEngine(t, WithLogger(zap.New(core)))
	seedUsers(t, e, "ann")

	_, err := e.Query(context.Background(), "SELECT * FROM wp_users", "h")
	require.NoError(t, err)

	entries := logs.FilterMessage("query executed").All()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1].ContextMap()
	assert.Equal(t, "sqlite", last["dialect"])
	assert.Equal(t, "select", last["kind"])
	assert.Equal(t, "h", last["handle"])
	assert.Equal(t, int64(1), last["rows"])
	assert.Len(t, last["query_id"], 26)
	assert.NotEmpty(t, last["fingerprint"])
}

func TestOtherStatementsReportSuccess(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), "CREATE INDEX idx_name ON wp_users (name)", "")
	require.NoError(t, err)
	assert.Equal(t, StatementOther, res.Kind)
	assert.Equal(t, int64(1), res.Value())
}

func TestQueryTimeout(t *testing.T) {
	e := newTestEngine(t, WithQueryTimeout(time.Nanosecond))

	_, err := e.GetRows(context.Background(), "WITH RECURSIVE n(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM n WHERE x < 1000000) SELECT count(*) FROM n")
	assert.Error(t, err)
}

func TestConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Insert(ctx, Table{Name: "users"}, []Field{{Column: "name", Value: uuid.New()}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	row, err := e.GetRow(ctx, "SELECT COUNT(DISTINCT name) FROM wp_users")
	require.NoError(t, err)
	assert.Equal(t, int64(8), row.Values[0])
}
