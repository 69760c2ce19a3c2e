package prepare

import (
	"regexp"
	"strconv"
)

// Kind is the conversion requested by a placeholder.
type Kind byte

const (
	KindString Kind = 's'
	KindInt    Kind = 'd'
	KindFloat  Kind = 'f'
	KindTable  Kind = 't'
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindTable:
		return "table-name"
	default:
		return "string"
	}
}

// KindOf maps a placeholder symbol to its Kind. Unknown symbols are strings.
func KindOf(symbol byte) Kind {
	switch symbol | 0x20 {
	case 'd', 'i':
		return KindInt
	case 'f':
		return KindFloat
	case 't':
		return KindTable
	default:
		return KindString
	}
}

// A placeholder needs a lead character that is neither a backslash nor a
// percent sign, unless it sits at the very start of the template.
var tokenPattern = regexp.MustCompile(`(?i)(^|[^\\%])%([0-9]*)([dfst])`)

// Token is one placeholder found in a template.
type Token struct {
	Kind         Kind
	Precision    int
	HasPrecision bool
	// Start is the offset of the '%', End the offset just past the symbol.
	Start int
	End   int
	Text  string
}

// Scan returns the leftmost placeholder in template.
func Scan(template string) (Token, bool) {
	return scanFrom(template, 0)
}

// Tokens returns every placeholder of template, left to right.
func Tokens(template string) []Token {
	var tokens []Token
	from := 0
	for from <= len(template) {
		tok, ok := scanFrom(template, from)
		if !ok {
			break
		}
		tokens = append(tokens, tok)
		from = tok.End
	}
	return tokens
}

// scanFrom searches template[from:] while keeping the character before from
// as lead context. A previous token always ends with its symbol, so that
// character can never open a false start-of-input match.
func scanFrom(template string, from int) (Token, bool) {
	base := 0
	if from > 0 {
		base = from - 1
	}
	s := template[base:]

	m := tokenPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return Token{}, false
	}

	tok := Token{
		Kind:  KindOf(s[m[6]]),
		Start: base + m[3],
		End:   base + m[7],
	}
	if digits := s[m[4]:m[5]]; digits != "" {
		tok.HasPrecision = true
		if p, err := strconv.Atoi(digits); err == nil {
			tok.Precision = p
		}
	}
	tok.Text = template[tok.Start:tok.End]
	return tok, true
}
