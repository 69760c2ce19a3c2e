package engine

import (
	"strings"
	"unicode"

	"github.com/xwb1989/sqlparser"
)

type StatementKind int

const (
	StatementOther StatementKind = iota
	StatementSelect
	StatementShow
	StatementDescribe
	StatementExplain
	StatementInsert
	StatementUpdate
	StatementReplace
	StatementDelete
)

var statementNames = map[StatementKind]string{
	StatementOther:    "other",
	StatementSelect:   "select",
	StatementShow:     "show",
	StatementDescribe: "describe",
	StatementExplain:  "explain",
	StatementInsert:   "insert",
	StatementUpdate:   "update",
	StatementReplace:  "replace",
	StatementDelete:   "delete",
}

func (k StatementKind) String() string {
	return statementNames[k]
}

// ReturnsRows reports whether the statement produces a result set.
func (k StatementKind) ReturnsRows() bool {
	switch k {
	case StatementSelect, StatementShow, StatementDescribe, StatementExplain:
		return true
	}
	return false
}

// Classify looks at the leading keyword of query, skipping comments.
func Classify(query string) StatementKind {
	query = sqlparser.StripLeadingComments(query)
	switch sqlparser.Preview(query) {
	case sqlparser.StmtSelect:
		return StatementSelect
	case sqlparser.StmtShow:
		return StatementShow
	case sqlparser.StmtInsert:
		return StatementInsert
	case sqlparser.StmtReplace:
		return StatementReplace
	case sqlparser.StmtUpdate:
		return StatementUpdate
	case sqlparser.StmtDelete:
		return StatementDelete
	}
	return classifyKeyword(query)
}

// classifyKeyword covers what the parser folds into "other".
func classifyKeyword(query string) StatementKind {
	query = strings.TrimLeftFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	end := strings.IndexFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end >= 0 {
		query = query[:end]
	}

	switch strings.ToUpper(query) {
	case "SELECT", "WITH", "VALUES", "PRAGMA":
		return StatementSelect
	case "SHOW":
		return StatementShow
	case "DESCRIBE", "DESC":
		return StatementDescribe
	case "EXPLAIN":
		return StatementExplain
	case "INSERT":
		return StatementInsert
	case "UPDATE":
		return StatementUpdate
	case "REPLACE":
		return StatementReplace
	case "DELETE":
		return StatementDelete
	}
	return StatementOther
}
