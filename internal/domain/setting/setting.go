// Package setting defines the application configuration values the CRM
// reads at runtime and the store they are persisted in.
package setting

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Configuration keys
const (
	KeyPDFEngine                = "pdfEngine"
	KeyGotenbergPDFEngineRevert = "gotenbergPdfEngineRevert"
	KeyGotenbergAPIURL          = "gotenbergApiUrl"
	KeyPDFFontSize              = "pdfFontSize"
	KeyPDFFontFace              = "pdfFontFace"
)

// Reader reads configuration values
type Reader interface {
	// Get returns the value and whether the key is set
	Get(ctx context.Context, key string) (any, bool, error)
}

// Writer batches configuration changes. Nothing is persisted until Save.
type Writer interface {
	// Set stages a value; nil removes the key
	Set(key string, value any)
	// Save persists all staged values atomically
	Save(ctx context.Context) error
}

// Store reads configuration and hands out batch writers
type Store interface {
	Reader
	Writer(ctx context.Context) Writer
}

// GetString returns the value when it is set and is a string
func GetString(ctx context.Context, r Reader, key string) (string, bool, error) {
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	s, isString := v.(string)
	return s, isString, nil
}

// GetNumber returns the value as a float when it is numeric or a numeric string
func GetNumber(ctx context.Context, r Reader, key string) (float64, bool, error) {
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, numeric := ToNumber(v)
	return n, numeric, nil
}

var numericString = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// IsNumericString reports whether s is a plain decimal number, optionally
// with an exponent. NaN, infinities and hex floats are not numeric.
func IsNumericString(s string) bool {
	return numericString.MatchString(s)
}

// ToNumber converts JSON-ish numeric values and numeric strings to a finite float64
func ToNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		if !IsNumericString(n) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders a number the way it is written in CSS and form fields
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue renders a numeric input in its original form when it is a string
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if n, ok := ToNumber(v); ok {
		return FormatNumber(n)
	}
	return fmt.Sprint(v)
}
