package barcode

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformed is returned when the placeholder payload is not a URL-encoded JSON object
var ErrMalformed = errors.New("barcode placeholder is not a JSON object")

// Placeholder is the decoded payload of a barcode tag
type Placeholder struct {
	Fields map[string]any
}

// Parse decodes the data attribute of a barcode tag
func Parse(raw string) (Placeholder, error) {
	decoded := queryUnescape(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(decoded), &fields); err != nil || fields == nil {
		return Placeholder{}, ErrMalformed
	}

	return Placeholder{Fields: fields}, nil
}

// String returns a field when it holds a string
func (p Placeholder) String(key string) (string, bool) {
	s, ok := p.Fields[key].(string)
	return s, ok
}

// queryUnescape decodes '+' and %XX escapes. Invalid escapes are kept as written.
func queryUnescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c >= 'a':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}
