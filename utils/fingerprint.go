package utils

import (
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"
)

// FingerprintString hashes s with FNV-64a.
func FingerprintString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// StatementFingerprint identifies the shape of a statement: quoted literals
// and numbers are blanked and whitespace is collapsed before hashing, so the
// same template rendered with different values shares a fingerprint.
func StatementFingerprint(query string) string {
	return strconv.FormatUint(FingerprintString(normalize(query)), 16)
}

func normalize(query string) string {
	var sb strings.Builder
	sb.Grow(len(query))

	inQuote := false
	space := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if inQuote {
			switch {
			case c == '\\' && i+1 < len(query):
				i++
			case c == '\'' && i+1 < len(query) && query[i+1] == '\'':
				i++
			case c == '\'':
				inQuote = false
			}
			continue
		}

		switch {
		case c == '\'':
			inQuote = true
			sb.WriteByte('?')
			space = false
		case c >= '0' && c <= '9' && (i == 0 || !isWordByte(query[i-1])):
			for i+1 < len(query) && (query[i+1] >= '0' && query[i+1] <= '9' || query[i+1] == '.') {
				i++
			}
			sb.WriteByte('?')
			space = false
		case unicode.IsSpace(rune(c)):
			space = sb.Len() > 0
		default:
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.WriteByte(byte(unicode.ToLower(rune(c))))
		}
	}
	return sb.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
