package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TemplateInput is a fragment to render against an entity
type TemplateInput struct {
	// Name identifies the fragment in parse errors
	Name string
	// Content is the raw template markup
	Content string
	// Entity provides the attributes bound to the template
	Entity *printing.Entity
	// ApplyACL hides attributes the FieldACL forbids
	ApplyACL bool
	// Data is merged over the entity attributes
	Data map[string]any
}

// TemplateRenderer renders template fragments
type TemplateRenderer interface {
	Render(ctx context.Context, in TemplateInput) (string, error)
}

// FieldACL lists the attributes of an entity type that must not be printed
type FieldACL interface {
	ForbiddenFields(entityType string) []string
}

// StaticFieldACL is a FieldACL backed by a fixed map.
// Keys loaded from configuration are lowercase, lookups fall back to them.
type StaticFieldACL map[string][]string

// ForbiddenFields implements FieldACL
func (a StaticFieldACL) ForbiddenFields(entityType string) []string {
	if fields, ok := a[entityType]; ok {
		return fields
	}
	return a[strings.ToLower(entityType)]
}

// TemplateEngine handles rendering HTML template fragments with entity data.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
	acl     FieldACL
	printer *message.Printer
}

var _ TemplateRenderer = (*TemplateEngine)(nil)

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFieldACL sets the attribute ACL applied when rendering with ApplyACL
func WithFieldACL(acl FieldACL) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.acl = acl
	}
}

// WithLanguage sets the locale used for number formatting
func WithLanguage(tag language.Tag) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.printer = message.NewPrinter(tag)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		acl:     StaticFieldACL{},
		printer: message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// Number formatting
		"formatDecimal": formatDecimal,
		"formatNumber":  e.formatNumber,

		// String utilities
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,
		"replace":  strings.ReplaceAll,
		"join":     join,
		"truncate": truncate,

		// Arithmetic
		"add": add,
		"sub": sub,
		"mul": mul,

		// Conditional
		"default": defaultFunc,
		"empty":   empty,

		// Safe HTML
		"safeHTML": safeHTML,

		"now": time.Now,
	}

	return e
}

// Render renders a fragment. Empty content renders to an empty string.
func (e *TemplateEngine) Render(ctx context.Context, in TemplateInput) (string, error) {
	if strings.TrimSpace(in.Content) == "" {
		return "", nil
	}

	name := in.Name
	if name == "" {
		name = "fragment"
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Option("missingkey=zero").Parse(in.Content)
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.bindData(in)); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// bindData builds the template data: entity attributes, ACL applied, with Data on top
func (e *TemplateEngine) bindData(in TemplateInput) map[string]any {
	data := make(map[string]any)
	if in.Entity != nil {
		maps.Copy(data, in.Entity.Attributes)
		if _, ok := data["id"]; !ok && in.Entity.ID != "" {
			data["id"] = in.Entity.ID
		}
		if in.ApplyACL {
			for _, field := range e.acl.ForbiddenFields(in.Entity.Type) {
				delete(data, field)
			}
		}
	}
	maps.Copy(data, in.Data)
	return data
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// =============================================================================
// Template Functions - Formatting
// =============================================================================

// formatDate formats a time value as date string
// Example: time.Now() -> "2024-01-15"
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatDateTime formats a time value as datetime string
func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// formatDecimal formats a decimal with specified precision
func formatDecimal(v any, precision int) string {
	return toDecimal(v).StringFixed(int32(precision))
}

// formatNumber formats with locale grouping separators
// Example: 1234567.891 -> "1,234,567.89"
func (e *TemplateEngine) formatNumber(v any, precision int) string {
	f, _ := toDecimal(v).Round(int32(precision)).Float64()
	return e.printer.Sprintf(fmt.Sprintf("%%.%df", precision), f)
}

// titleCase converts string to title case using proper Unicode handling
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// truncate truncates a string to max runes, appending "..."
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func join(sep string, v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Sprint(v)
	}
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts = append(parts, fmt.Sprint(rv.Index(i).Interface()))
	}
	return strings.Join(parts, sep)
}

func add(a, b any) decimal.Decimal {
	return toDecimal(a).Add(toDecimal(b))
}

func sub(a, b any) decimal.Decimal {
	return toDecimal(a).Sub(toDecimal(b))
}

func mul(a, b any) decimal.Decimal {
	return toDecimal(a).Mul(toDecimal(b))
}

func defaultFunc(def, val any) any {
	if empty(val) {
		return def
	}
	return val
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

// safeHTML marks a string as safe HTML, bypassing automatic escaping.
// Only use with trusted markup such as rich text fields sanitized by the CRM.
func safeHTML(v any) template.HTML {
	return template.HTML(fmt.Sprint(v))
}

// =============================================================================
// Helper Functions
// =============================================================================

// toDecimal converts various types to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts various types to time.Time
func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, f := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
