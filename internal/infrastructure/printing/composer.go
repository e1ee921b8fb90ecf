package printing

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/erp/pdfengine/internal/infrastructure/metadata"
	"go.uber.org/zap"
)

const (
	// DefaultFontFace is used when neither the template nor the settings name a font
	DefaultFontFace = "DejaVu Sans"
	// DefaultFontSize is the body font size in points
	DefaultFontSize = 12
)

// documentPattern detects fragments that already are a complete document
var documentPattern = regexp.MustCompile(`^<!DOCTYPE html>|<html>`)

// Metadata reads static application metadata by path
type Metadata interface {
	Get(path ...string) any
}

// HTMLComposerConfig contains the collaborators of the HTML composer
type HTMLComposerConfig struct {
	Templates TemplateRenderer
	Settings  setting.Reader
	Metadata  Metadata
	Tags      *TagProcessor
	// DefaultFontFace overrides DefaultFontFace when set
	DefaultFontFace string
	// DefaultFontSize overrides DefaultFontSize when positive
	DefaultFontSize float64
	Logger          *zap.Logger
}

// HTMLComposer turns a template and an entity into the header, main and
// footer HTML documents sent to the rendering service
type HTMLComposer struct {
	templates       TemplateRenderer
	settings        setting.Reader
	metadata        Metadata
	tags            *TagProcessor
	defaultFontFace string
	defaultFontSize float64
	logger          *zap.Logger
}

// NewHTMLComposer creates an HTML composer
func NewHTMLComposer(cfg HTMLComposerConfig) *HTMLComposer {
	c := &HTMLComposer{
		templates:       cfg.Templates,
		settings:        cfg.Settings,
		metadata:        cfg.Metadata,
		tags:            cfg.Tags,
		defaultFontFace: cfg.DefaultFontFace,
		defaultFontSize: cfg.DefaultFontSize,
		logger:          cfg.Logger,
	}
	if c.templates == nil {
		c.templates = NewTemplateEngine()
	}
	if c.metadata == nil {
		c.metadata = metadata.New(nil)
	}
	if c.tags == nil {
		c.tags = NewTagProcessor(nil, nil)
	}
	if c.defaultFontFace == "" {
		c.defaultFontFace = DefaultFontFace
	}
	if c.defaultFontSize <= 0 {
		c.defaultFontSize = DefaultFontSize
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// fragment identifies which template part is being composed
type fragment struct {
	name     string
	wrapper  string
	headTags bool
}

var (
	fragmentMain   = fragment{name: "body", wrapper: "main"}
	fragmentHeader = fragment{name: "header", wrapper: "header", headTags: true}
	fragmentFooter = fragment{name: "footer", wrapper: "footer", headTags: true}
)

// ComposeMain composes the main document
func (c *HTMLComposer) ComposeMain(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, error) {
	return c.compose(ctx, fragmentMain, tpl.Body, tpl, entity, params, data)
}

// ComposeHeader composes the header document. ok is false when the template has no header.
func (c *HTMLComposer) ComposeHeader(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, bool, error) {
	if !tpl.HasHeader() {
		return "", false, nil
	}
	out, err := c.compose(ctx, fragmentHeader, tpl.Header, tpl, entity, params, data)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// ComposeFooter composes the footer document. ok is false when the template has no footer.
func (c *HTMLComposer) ComposeFooter(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, bool, error) {
	if !tpl.HasFooter() {
		return "", false, nil
	}
	out, err := c.compose(ctx, fragmentFooter, tpl.Footer, tpl, entity, params, data)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// Compose composes all parts of the document
func (c *HTMLComposer) Compose(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (*printing.ComposedDocument, error) {
	doc := &printing.ComposedDocument{}

	var err error
	if doc.Header, doc.HasHeader, err = c.ComposeHeader(ctx, tpl, entity, params, data); err != nil {
		return nil, err
	}
	if doc.Main, err = c.ComposeMain(ctx, tpl, entity, params, data); err != nil {
		return nil, err
	}
	if doc.Footer, doc.HasFooter, err = c.ComposeFooter(ctx, tpl, entity, params, data); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *HTMLComposer) compose(ctx context.Context, part fragment, content string, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, error) {
	rendered, err := c.templates.Render(ctx, TemplateInput{
		Name:     part.name,
		Content:  content,
		Entity:   entity,
		ApplyACL: params.ApplyACL,
		Data:     data.AdditionalTemplateData,
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", part.name, err)
	}

	var result TagResult
	if part.headTags {
		result = c.tags.ReplaceHeadTags(ctx, rendered)
	} else {
		result = c.tags.ReplaceTags(ctx, rendered)
	}
	c.logDegradations(part, tpl, result.Degradations)

	if documentPattern.MatchString(strings.TrimLeft(result.HTML, " \t\n\r\x00\x0B")) {
		return result.HTML, nil
	}

	body := "<" + part.wrapper + ">" + result.HTML + "</" + part.wrapper + ">"
	head, err := c.composeHead(ctx, tpl, entity)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html><html>" + head + "<body>" + body + "</body></html>", nil
}

func (c *HTMLComposer) logDegradations(part fragment, tpl *printing.Template, degradations []Degradation) {
	for _, d := range degradations {
		c.logger.Warn(d.Reason,
			zap.String("source", d.Source),
			zap.String("fragment", part.name),
			zap.String("template", tpl.Name),
		)
	}
}

func (c *HTMLComposer) composeHead(ctx context.Context, tpl *printing.Template, entity *printing.Entity) (string, error) {
	fontSize, err := c.fontSize(ctx)
	if err != nil {
		return "", err
	}
	fontFace, err := c.fontFace(ctx, tpl)
	if err != nil {
		return "", err
	}

	title := ""
	if tpl.HasTitle() {
		title = html.EscapeString(replacePlaceholders(tpl.GetTitle(), entity))
	}

	headItems := strings.Join(metadata.StringList(c.metadata.Get(metadata.HTMLHeadItemListPath...)), "\n")

	m := tpl.Margins
	top := setting.FormatNumber(m.Top)
	right := setting.FormatNumber(m.Right)
	bottom := setting.FormatNumber(m.Bottom)
	left := setting.FormatNumber(m.Left)

	var b strings.Builder
	b.WriteString(`<head><meta charset="utf-8" />`)
	b.WriteString("<title>" + title + "</title>")
	b.WriteString(headItems)
	b.WriteString("<style>")
	b.WriteString("html { line-height: 1.15; -webkit-text-size-adjust: 100%; }\n")
	fmt.Fprintf(&b, "body { font-family: '%s', sans-serif; font-size: %spt; margin: 0; }\n", fontFace, fontSize)
	b.WriteString("main { display: block; }\n")
	fmt.Fprintf(&b, "header { position: fixed; margin-top: -%smm; margin-left: -%smm; margin-right: -%smm; top: %smm; left: %smm; right: %smm; }\n",
		top, right, left, setting.FormatNumber(tpl.HeaderPosition), left, right)
	fmt.Fprintf(&b, "footer { position: fixed; margin-bottom: -%smm; margin-left: -%smm; margin-right: -%smm; height: %smm; bottom: 0; left: %smm; right: %smm; }\n",
		bottom, left, right, setting.FormatNumber(tpl.FooterPosition), left, right)
	b.WriteString(tpl.Style)
	b.WriteString("</style></head>")
	return b.String(), nil
}

// fontSize returns the configured font size when numeric, the default otherwise
func (c *HTMLComposer) fontSize(ctx context.Context) (string, error) {
	if c.settings != nil {
		v, ok, err := c.settings.Get(ctx, setting.KeyPDFFontSize)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", setting.KeyPDFFontSize, err)
		}
		if ok {
			if _, numeric := setting.ToNumber(v); numeric {
				return setting.FormatValue(v), nil
			}
		}
	}
	return setting.FormatNumber(c.defaultFontSize), nil
}

// fontFace resolves the template font, then the configured font, then the default
func (c *HTMLComposer) fontFace(ctx context.Context, tpl *printing.Template) (string, error) {
	if face, ok := tpl.GetFontFace(); ok {
		return face, nil
	}
	if c.settings != nil {
		face, ok, err := setting.GetString(ctx, c.settings, setting.KeyPDFFontFace)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", setting.KeyPDFFontFace, err)
		}
		if ok {
			return face, nil
		}
	}
	return c.defaultFontFace, nil
}

// replacePlaceholders substitutes {$name} with the entity name
func replacePlaceholders(s string, entity *printing.Entity) string {
	return strings.ReplaceAll(s, "{$name}", entity.GetString("name"))
}
