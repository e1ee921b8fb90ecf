// Package metadata exposes the static application metadata the PDF engine
// reads at render time: the named paper size table and the extra head
// items injected into every composed document.
package metadata

import (
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Root is the configuration section metadata lives under
const Root = "metadata"

// Well-known metadata paths
var (
	PaperSizeListPath    = []string{"pdf_engines", "gotenberg", "paper_size_list"}
	HTMLHeadItemListPath = []string{"pdf_engines", "gotenberg", "html_head_item_list"}
)

// PaperSizePath returns the metadata path of a named paper format
func PaperSizePath(format string) []string {
	return append(slices.Clone(PaperSizeListPath), format)
}

// PaperSize is a named paper format entry
type PaperSize struct {
	Width  float64
	Height float64
	Unit   string
}

// DefaultPaperSizes are the named formats available without configuration
var DefaultPaperSizes = map[string]PaperSize{
	"A3":     {Width: 297, Height: 420, Unit: "mm"},
	"A4":     {Width: 210, Height: 297, Unit: "mm"},
	"A5":     {Width: 148, Height: 210, Unit: "mm"},
	"A6":     {Width: 105, Height: 148, Unit: "mm"},
	"Letter": {Width: 215.9, Height: 279.4, Unit: "mm"},
	"Legal":  {Width: 215.9, Height: 355.6, Unit: "mm"},
}

// Store is a viper-backed metadata tree.
// Path segments are matched case-insensitively since viper lowercases keys.
type Store struct {
	v *viper.Viper
}

// New creates a metadata store over the metadata section of v.
// A nil v yields a store holding only the defaults.
func New(v *viper.Viper) *Store {
	if v == nil {
		v = viper.New()
	}
	applyDefaults(v)
	return &Store{v: v}
}

func applyDefaults(v *viper.Viper) {
	for name, size := range DefaultPaperSizes {
		key := join(Root, join(PaperSizeListPath...), name)
		v.SetDefault(key+".width", size.Width)
		v.SetDefault(key+".height", size.Height)
		v.SetDefault(key+".unit", size.Unit)
	}
	v.SetDefault(join(Root, join(HTMLHeadItemListPath...)), []string{})
}

// Get returns the value at path or nil
func (s *Store) Get(path ...string) any {
	if len(path) == 0 {
		return nil
	}
	key := join(Root, join(path...))
	if !s.v.IsSet(key) {
		return nil
	}
	return s.v.Get(key)
}

// HeadItems returns the configured head items as strings
func (s *Store) HeadItems() []string {
	return StringList(s.Get(HTMLHeadItemListPath...))
}

// StringList converts a list value to strings, skipping non-string items
func StringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func join(parts ...string) string {
	lowered := make([]string, 0, len(parts))
	for _, p := range parts {
		lowered = append(lowered, strings.ToLower(p))
	}
	return strings.Join(lowered, ".")
}
