package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/sqlprep/database"
	"github.com/Konsultn-Engineering/sqlprep/utils"
)

// Result describes an executed statement.
type Result struct {
	Kind         StatementKind
	Rows         int64
	RowsAffected int64
	InsertID     int64
}

// Value is the single number that best describes the outcome: the row count
// for SELECT, rows affected for UPDATE, REPLACE and DELETE, the new id for
// INSERT and 1 otherwise.
func (r Result) Value() int64 {
	switch r.Kind {
	case StatementSelect:
		return r.Rows
	case StatementUpdate, StatementReplace, StatementDelete:
		return r.RowsAffected
	case StatementInsert:
		return r.InsertID
	}
	return 1
}

// Query runs an already prepared query. Statements returning rows are read
// completely and kept under handle ("" is the main handle) for FetchRow.
func (e *Engine) Query(ctx context.Context, query, handle string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrEmptyQuery
	}

	kind := Classify(query)
	log := e.logger.With(
		zap.String("query_id", e.newQueryID()),
		zap.Stringer("kind", kind),
		zap.String("fingerprint", utils.StatementFingerprint(query)))

	if kind.ReturnsRows() {
		rs, err := e.fetch(ctx, query)
		if err != nil {
			log.Error("query failed", zap.Error(err))
			return Result{Kind: kind}, err
		}
		e.handles.Set(handle, rs)
		e.mu.Lock()
		e.affected = int64(len(rs.records))
		e.mu.Unlock()
		log.Debug("query executed", zap.String("handle", handle), zap.Int("rows", len(rs.records)))
		return Result{Kind: kind, Rows: int64(len(rs.records))}, nil
	}

	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	res, err := e.db.ExecContext(ctx, query)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return Result{Kind: kind}, fmt.Errorf("query failed: %w", err)
	}

	out := Result{Kind: kind}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if kind == StatementInsert {
		id, err := res.LastInsertId()
		switch {
		case err == nil:
			out.InsertID = id
		case !errors.Is(err, database.ErrNoInsertID):
			log.Warn("insert id unavailable", zap.Error(err))
		}
	}

	e.mu.Lock()
	e.affected = out.RowsAffected
	if kind == StatementInsert {
		e.insertID = out.InsertID
	}
	e.mu.Unlock()

	log.Debug("query executed",
		zap.Int64("rows_affected", out.RowsAffected),
		zap.Int64("insert_id", out.InsertID),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// FetchRow returns the next row stored under handle. When the rows run out
// and closeOnFinish is set the handle is released.
func (e *Engine) FetchRow(handle string, closeOnFinish bool) (Row, bool) {
	rs, ok := e.handles.Get(handle)
	if !ok {
		return Row{}, false
	}
	row, ok := rs.next()
	if !ok && closeOnFinish {
		e.handles.Remove(handle)
	}
	return row, ok
}

// NumRows returns the size of the result set stored under handle.
func (e *Engine) NumRows(handle string) (int, error) {
	rs, ok := e.handles.Get(handle)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	return len(rs.records), nil
}

// FreeHandle releases the result set stored under handle.
func (e *Engine) FreeHandle(handle string) bool {
	return e.handles.Remove(handle)
}

// GetRow returns the first row of query, or nil when it selects nothing.
// Named handles are left untouched.
func (e *Engine) GetRow(ctx context.Context, query string) (*Row, error) {
	rs, err := e.selectOnly(ctx, query)
	if err != nil || len(rs.records) == 0 {
		return nil, err
	}
	row, _ := rs.next()
	return &row, nil
}

// GetRows returns every row of query.
func (e *Engine) GetRows(ctx context.Context, query string) ([]Row, error) {
	rs, err := e.selectOnly(ctx, query)
	if err != nil {
		return nil, err
	}
	return rs.rows(), nil
}

// GetColumn returns the values at column offset of every row of query.
func (e *Engine) GetColumn(ctx context.Context, query string, offset int) ([]any, error) {
	rs, err := e.selectOnly(ctx, query)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(rs.columns) {
		return nil, fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, offset, len(rs.columns))
	}

	values := make([]any, len(rs.records))
	for i, rec := range rs.records {
		values[i] = rec[offset]
	}
	return values, nil
}

func (e *Engine) selectOnly(ctx context.Context, query string) (*resultSet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if !Classify(query).ReturnsRows() {
		return nil, ErrNoResultSet
	}
	rs, err := e.fetch(ctx, query)
	if err != nil {
		e.logger.Error("query failed", zap.Error(err))
		return nil, err
	}
	return rs, nil
}

func (e *Engine) fetch(ctx context.Context, query string) (*resultSet, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	columns, records, err := database.ScanAll(rows)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return &resultSet{columns: columns, records: records}, nil
}
