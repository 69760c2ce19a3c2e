package prepare

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Every conversion below is total: unparseable input falls back to the zero
// value of the target kind instead of failing.

var numericPrefix = regexp.MustCompile(`^[ \t\n\r\v\f]*([+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

// ToInt converts v to an integer, truncating fractions and reading only the
// leading base-10 numeric content of strings.
func ToInt(v any) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return clampUint(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return clampUint(val)
	case float32:
		return truncFloat(float64(val))
	case float64:
		return truncFloat(val)
	}

	num := leadingNumber(ToString(v))
	if num == "" {
		return 0
	}
	if !strings.ContainsAny(num, ".eE") {
		n, err := strconv.ParseInt(num, 10, 64)
		if err == nil {
			return n
		}
		if strings.HasPrefix(num, "-") {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	f, _ := strconv.ParseFloat(num, 64)
	return truncFloat(f)
}

// ToFloat converts v to a float. A positive precision cuts the value to that
// many decimal places (19.999 at 2 gives 19.99). Non-finite results are 0.
func ToFloat(v any, precision int) float64 {
	f := toFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if precision > 0 {
		f = truncateDecimals(f, precision)
	}
	return f
}

// ToTable prefixes the stringified v with the prefix selected by precision.
func ToTable(prefix Prefix, precision int, v any) string {
	return prefix.Lookup(precision) + ToString(v)
}

// ToString stringifies v. true is "1", false and nil are empty.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "1"
		}
		return ""
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

// StripSlashes removes one level of backslash escaping. "\0" becomes a NUL
// byte and a trailing lone backslash is dropped.
func StripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		if s[i] == '0' {
			b.WriteByte(0)
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case float32:
		return float64(val)
	case float64:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return float64(ToInt(val))
	}

	num := leadingNumber(ToString(v))
	if num == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(num, 64)
	return f
}

func leadingNumber(s string) string {
	m := numericPrefix.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func truncFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

// truncateDecimals works on the shortest decimal form of f so that values
// like 0.29 are not pulled down by binary representation error.
func truncateDecimals(f float64, precision int) float64 {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= precision {
		return f
	}
	t, err := strconv.ParseFloat(s[:dot+1+precision], 64)
	if err != nil {
		return f
	}
	return t
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
