package engine

import "errors"

var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrMissingTable     = errors.New("table name is required")
	ErrMissingData      = errors.New("at least one field is required")
	ErrMissingWhere     = errors.New("at least one where condition is required")
	ErrUnknownHandle    = errors.New("unknown result handle")
	ErrNoResultSet      = errors.New("statement does not return rows")
	ErrColumnOutOfRange = errors.New("column offset out of range")
)
