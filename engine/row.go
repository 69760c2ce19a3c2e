package engine

import "sync"

// Row is one buffered result row. Values line up with Columns.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the first column called name.
func (r Row) Get(name string) (any, bool) {
	for i, col := range r.Columns {
		if col == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, col := range r.Columns {
		m[col] = r.Values[i]
	}
	return m
}

// resultSet is a fully read result with a fetch cursor.
type resultSet struct {
	columns []string
	records [][]any

	mu     sync.Mutex
	cursor int
}

func (rs *resultSet) next() (Row, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.cursor >= len(rs.records) {
		return Row{}, false
	}
	row := Row{Columns: rs.columns, Values: rs.records[rs.cursor]}
	rs.cursor++
	return row, true
}

func (rs *resultSet) rows() []Row {
	out := make([]Row, len(rs.records))
	for i, rec := range rs.records {
		out[i] = Row{Columns: rs.columns, Values: rec}
	}
	return out
}
