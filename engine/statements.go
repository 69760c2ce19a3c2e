package engine

import (
	"context"
	"strings"
)

// Table names the target of a statement helper. Format is the placeholder
// used for the name and defaults to %t; %1t selects the second prefix.
type Table struct {
	Name   string
	Format string
}

// Field is one column and its value. Format defaults to %s. Column is
// quoted as an identifier by the connection's dialect.
type Field struct {
	Column string
	Value  any
	Format string
}

func (t Table) placeholder() string {
	if t.Format == "" {
		return "%t"
	}
	return t.Format
}

func (f Field) placeholder() string {
	if f.Format == "" {
		return "%s"
	}
	return f.Format
}

// Insert adds one row built from data and returns the outcome of the INSERT.
func (e *Engine) Insert(ctx context.Context, table Table, data []Field) (Result, error) {
	if table.Name == "" {
		return Result{}, ErrMissingTable
	}
	if len(data) == 0 {
		return Result{}, ErrMissingData
	}

	columns := make([]string, len(data))
	values := make([]string, len(data))
	args := make([]any, 0, len(data)+1)
	args = append(args, table.Name)
	for i, f := range data {
		columns[i] = e.dialect.QuoteIdentifier(f.Column)
		values[i] = f.placeholder()
		args = append(args, f.Value)
	}

	query := "INSERT INTO " + table.placeholder() +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(values, ", ") + ")"
	return e.run(ctx, query, args)
}

// Update sets data on every row matching all of the where conditions.
func (e *Engine) Update(ctx context.Context, table Table, data, where []Field) (Result, error) {
	if table.Name == "" {
		return Result{}, ErrMissingTable
	}
	if len(data) == 0 {
		return Result{}, ErrMissingData
	}
	if len(where) == 0 {
		return Result{}, ErrMissingWhere
	}

	args := make([]any, 0, len(data)+len(where)+1)
	args = append(args, table.Name)
	set, args := e.assignments(data, args)
	cond, args := e.assignments(where, args)

	query := "UPDATE " + table.placeholder() + " SET " + strings.Join(set, ", ") +
		" WHERE " + strings.Join(cond, " AND ")
	return e.run(ctx, query, args)
}

// DeleteRow deletes at most one row matching all of the where conditions.
func (e *Engine) DeleteRow(ctx context.Context, table Table, where []Field) (Result, error) {
	if table.Name == "" {
		return Result{}, ErrMissingTable
	}
	if len(where) == 0 {
		return Result{}, ErrMissingWhere
	}

	// The table is resolved on its own since DeleteOne may repeat it.
	name, err := e.build(table.placeholder(), []any{table.Name})
	if err != nil {
		return Result{}, err
	}
	cond, args := e.assignments(where, nil)
	clause, err := e.build(strings.Join(cond, " AND "), args)
	if err != nil {
		return Result{}, err
	}

	return e.Query(ctx, e.dialect.DeleteOne(name, clause), "")
}

func (e *Engine) run(ctx context.Context, query string, args []any) (Result, error) {
	stmt, err := e.build(query, args)
	if err != nil {
		return Result{}, err
	}
	return e.Query(ctx, stmt, "")
}

func (e *Engine) assignments(fields []Field, args []any) ([]string, []any) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = e.dialect.QuoteIdentifier(f.Column) + " = " + f.placeholder()
		args = append(args, f.Value)
	}
	return parts, args
}
