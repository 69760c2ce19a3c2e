// Package prepare substitutes typed placeholders in SQL templates with
// escaped literal values.
//
// Placeholders follow a small printf-like grammar:
//
//	%s      string, escaped by the store and wrapped in single quotes
//	%d      integer
//	%f      float; %2f cuts the value to two decimals
//	%t      table name with the configured prefix; %1t picks prefix 1 of a list
//
// A placeholder preceded by a backslash or a percent sign is left alone, so
// %%d stays literal.
package prepare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/sqlprep/dialect"
)

// sentinel stands in for '%' inside spliced values until the pass is done.
// Sentinel and escape runes already present in the input are prefixed with
// escape so restore can tell them apart.
const (
	sentinel = "\uE000"
	escape   = "\uE001"
)

var (
	encodeTemplate = strings.NewReplacer(escape, escape+escape, sentinel, escape+sentinel)
	encodeValue    = strings.NewReplacer(escape, escape+escape, sentinel, escape+sentinel, "%", sentinel)
	decode         = strings.NewReplacer(escape+escape, escape, escape+sentinel, sentinel, sentinel, "%")
)

var (
	ErrUnresolvedPlaceholder = errors.New("placeholder left without an argument")
	ErrUnusedArguments       = errors.New("arguments left without a placeholder")
)

// SubstitutionError is returned by SubstituteStrict.
type SubstitutionError struct {
	Err      error
	Token    string
	Consumed int
	Supplied int
}

func (e *SubstitutionError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("prepare: %v: %s (%d of %d arguments used)", e.Err, e.Token, e.Consumed, e.Supplied)
	}
	return fmt.Sprintf("prepare: %v (%d of %d arguments used)", e.Err, e.Consumed, e.Supplied)
}

func (e *SubstitutionError) Unwrap() error { return e.Err }

// Escaper escapes a string for use inside a single-quoted SQL literal.
type Escaper interface {
	EscapeString(s string) string
}

// Engine is immutable once built and safe for concurrent use.
type Engine struct {
	prefix       Prefix
	escaper      Escaper
	stripSlashes bool
}

type Option func(*Engine)

// WithPrefix sets the table prefix used by %t placeholders.
func WithPrefix(p Prefix) Option {
	return func(e *Engine) { e.prefix = p }
}

// WithEscaper sets the string literal escaper. Defaults to MySQL escaping.
func WithEscaper(esc Escaper) Option {
	return func(e *Engine) {
		if esc != nil {
			e.escaper = esc
		}
	}
}

// WithStripSlashes removes backslash escaping from string arguments before
// they are escaped again, for input that arrives pre-escaped.
func WithStripSlashes(on bool) Option {
	return func(e *Engine) { e.stripSlashes = on }
}

func New(opts ...Option) *Engine {
	e := &Engine{escaper: dialect.NewMySQLDialect()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Prefix() Prefix { return e.prefix }

// Prepare is Substitute with variadic arguments.
func (e *Engine) Prepare(template string, args ...any) string {
	return e.Substitute(template, args)
}

// Substitute replaces placeholders left to right, one per argument. It stops
// silently when no placeholder is left (extra arguments are dropped) and
// leaves later placeholders verbatim when arguments run out.
func (e *Engine) Substitute(template string, args []any) string {
	query, _ := e.splice(template, args)
	return restore(query)
}

// SubstituteStrict behaves like Substitute but reports a mismatch between
// placeholders and arguments. The partially substituted query is returned
// alongside the error.
func (e *Engine) SubstituteStrict(template string, args []any) (string, error) {
	query, used := e.splice(template, args)
	if tok, ok := Scan(query); ok {
		return restore(query), &SubstitutionError{Err: ErrUnresolvedPlaceholder, Token: tok.Text, Consumed: used, Supplied: len(args)}
	}
	if used < len(args) {
		return restore(query), &SubstitutionError{Err: ErrUnusedArguments, Consumed: used, Supplied: len(args)}
	}
	return restore(query), nil
}

// splice rescans the live template from the start for every argument.
// Spliced values carry the sentinel instead of '%' so they never match.
func (e *Engine) splice(template string, args []any) (string, int) {
	if template == "" {
		return "", 0
	}
	query := encodeTemplate.Replace(template)
	used := 0
	for _, arg := range args {
		tok, ok := Scan(query)
		if !ok {
			break
		}
		value := encodeValue.Replace(e.Convert(tok, arg))
		query = query[:tok.Start] + value + query[tok.End:]
		used++
	}
	return query, used
}

// Convert renders arg for the placeholder tok.
func (e *Engine) Convert(tok Token, arg any) string {
	switch tok.Kind {
	case KindInt:
		return strconv.FormatInt(ToInt(arg), 10)
	case KindFloat:
		return formatFloat(ToFloat(arg, tok.Precision))
	case KindTable:
		return ToTable(e.prefix, tok.Precision, arg)
	default:
		s := ToString(arg)
		if e.stripSlashes {
			s = StripSlashes(s)
		}
		return "'" + e.escaper.EscapeString(s) + "'"
	}
}

func restore(query string) string {
	return decode.Replace(query)
}
