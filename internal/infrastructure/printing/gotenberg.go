package printing

import (
	"context"
	"fmt"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/erp/pdfengine/internal/infrastructure/metadata"
	"github.com/erp/pdfengine/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultPaperSizeUnit = "mm"

// DocumentComposer composes the three documents of a PDF
type DocumentComposer interface {
	ComposeMain(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, error)
	ComposeHeader(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, bool, error)
	ComposeFooter(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (string, bool, error)
}

var _ DocumentComposer = (*HTMLComposer)(nil)

// GotenbergRendererConfig contains the collaborators of the Gotenberg renderer
type GotenbergRendererConfig struct {
	Client   *GotenbergClient
	Composer DocumentComposer
	Settings setting.Reader
	Metadata Metadata
	// UsePaperSizeTable sends the width, height and unit of named formats
	// from the paper size table instead of the template page size.
	UsePaperSizeTable bool
	Logger            *zap.Logger
}

// GotenbergRenderer renders PDFs through the Gotenberg Chromium route
type GotenbergRenderer struct {
	client            *GotenbergClient
	composer          DocumentComposer
	settings          setting.Reader
	metadata          Metadata
	usePaperSizeTable bool
	logger            *zap.Logger
}

var _ Engine = (*GotenbergRenderer)(nil)

// NewGotenbergRenderer creates a Gotenberg renderer
func NewGotenbergRenderer(cfg GotenbergRendererConfig) *GotenbergRenderer {
	r := &GotenbergRenderer{
		client:            cfg.Client,
		composer:          cfg.Composer,
		settings:          cfg.Settings,
		metadata:          cfg.Metadata,
		usePaperSizeTable: cfg.UsePaperSizeTable,
		logger:            cfg.Logger,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.client == nil {
		r.client = NewGotenbergClient(GotenbergClientConfig{Logger: r.logger})
	}
	if r.metadata == nil {
		r.metadata = metadata.New(nil)
	}
	if r.composer == nil {
		r.composer = NewHTMLComposer(HTMLComposerConfig{
			Settings: cfg.Settings,
			Metadata: r.metadata,
			Logger:   r.logger,
		})
	}
	return r
}

// RenderPDF composes the documents and converts them with Gotenberg
func (r *GotenbergRenderer) RenderPDF(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (_ printing.Contents, err error) {
	ctx, span := telemetry.StartSpan(ctx, "gotenberg.render",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.AttrEngine.String(printing.EngineGotenberg)))
	defer func() { telemetry.Finish(span, err) }()

	apiURL, err := r.apiURL(ctx)
	if err != nil {
		return nil, err
	}

	req, err := r.initialize(tpl)
	if err != nil {
		return nil, err
	}

	header, hasHeader, err := r.composer.ComposeHeader(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}
	main, err := r.composer.ComposeMain(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}
	footer, hasFooter, err := r.composer.ComposeFooter(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}

	if hasHeader {
		req.Header(HeaderFileName, header)
	}
	if hasFooter {
		req.Footer(FooterFileName, footer)
	}
	req.Index(main)
	telemetry.Event(span, "documents_composed",
		attribute.Bool("has_header", hasHeader),
		attribute.Bool("has_footer", hasFooter),
		attribute.Int("index_bytes", len(main)))

	resp, err := r.client.Send(ctx, apiURL, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Header.Values("Content-Disposition")) == 0 {
		resp.Body.Close()
		return nil, ErrNoOutputFileInResponse
	}

	return NewContents(resp.Body), nil
}

// apiURL reads the Gotenberg URL from the settings
func (r *GotenbergRenderer) apiURL(ctx context.Context) (string, error) {
	if r.settings == nil {
		return "", NewRenderError(ErrCodeAPIURLNotSet, "Gotenberg API URL is not set.", nil)
	}
	url, ok, err := setting.GetString(ctx, r.settings, setting.KeyGotenbergAPIURL)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", setting.KeyGotenbergAPIURL, err)
	}
	if !ok {
		return "", NewRenderError(ErrCodeAPIURLNotSet, "Gotenberg API URL is not set.", nil)
	}
	return url, nil
}

// initialize builds the request with orientation, paper size and margins
func (r *GotenbergRenderer) initialize(tpl *printing.Template) (*ChromiumHTMLRequest, error) {
	req := NewChromiumHTMLRequest()

	if tpl.IsLandscape() {
		req.Landscape()
	}

	if err := r.setPaperSize(req, tpl); err != nil {
		return nil, err
	}

	m := tpl.Margins
	req.Margins(
		setting.FormatNumber(m.Top)+"pt",
		setting.FormatNumber(m.Bottom)+"pt",
		setting.FormatNumber(m.Left)+"pt",
		setting.FormatNumber(m.Right)+"pt",
	)

	return req, nil
}

func (r *GotenbergRenderer) setPaperSize(req *ChromiumHTMLRequest, tpl *printing.Template) error {
	templateSize := func() {
		req.PaperSize(
			setting.FormatNumber(tpl.PageWidth)+"mm",
			setting.FormatNumber(tpl.PageHeight)+"mm",
		)
	}

	if tpl.IsCustomFormat() {
		templateSize()
		return nil
	}

	if tpl.IsSinglePage() {
		req.SinglePage()
		return nil
	}

	format := tpl.PageFormat
	entry, ok := r.metadata.Get(metadata.PaperSizePath(format)...).(map[string]any)
	if !ok {
		return NewRenderError(ErrCodePaperSizeNotSet,
			fmt.Sprintf("Gotenberg: Paper size for '%s' is not set.", format), nil)
	}

	width, widthOK := setting.ToNumber(entry["width"])
	height, heightOK := setting.ToNumber(entry["height"])
	if !widthOK || !heightOK {
		return NewRenderError(ErrCodePaperSizeInvalid,
			fmt.Sprintf("Gotenberg: Paper size for '%s' is not set correctly.", format), nil)
	}

	unit, ok := entry["unit"].(string)
	if !ok {
		r.logger.Warn(fmt.Sprintf("Gotenberg: Paper size unit for '%s' is not a string. Using default unit '%s'.", format, defaultPaperSizeUnit),
			zap.String("page_format", format))
		unit = defaultPaperSizeUnit
	}

	if r.usePaperSizeTable {
		req.PaperSize(setting.FormatNumber(width)+unit, setting.FormatNumber(height)+unit)
		return nil
	}

	// The named format is validated but the template page size is sent.
	templateSize()
	return nil
}
