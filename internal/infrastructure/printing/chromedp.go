package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/erp/pdfengine/internal/infrastructure/metadata"
	"github.com/erp/pdfengine/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	// singlePageHeightMM is the page height used for single page templates
	singlePageHeightMM = 3000
)

// ChromedpConfig contains configuration for the local Chromium engine
type ChromedpConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale float64
	// Composer builds the documents; a default HTML composer is used when nil
	Composer DocumentComposer
	// Metadata provides the paper size table
	Metadata Metadata
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpRenderer renders templates to PDF through the Chrome DevTools Protocol.
// It is the local alternative to the Gotenberg service.
type ChromedpRenderer struct {
	config      *ChromedpConfig
	composer    DocumentComposer
	metadata    Metadata
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ Engine = (*ChromedpRenderer)(nil)

// NewChromedpRenderer creates a new chromedp-based PDF renderer.
// The browser is started on the first render.
func NewChromedpRenderer(config *ChromedpConfig) *ChromedpRenderer {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{
		config:   config,
		composer: config.Composer,
		metadata: config.Metadata,
		logger:   logger,
	}
	if r.metadata == nil {
		r.metadata = metadata.New(nil)
	}
	if r.composer == nil {
		r.composer = NewHTMLComposer(HTMLComposerConfig{Metadata: r.metadata, Logger: logger})
	}

	r.initAllocator()
	return r
}

// initAllocator initializes the Chrome allocator
func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// RenderPDF composes the documents and prints them with a local browser
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (_ printing.Contents, err error) {
	ctx, span := telemetry.StartSpan(ctx, "chromedp.render",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.AttrEngine.String(printing.EngineChromium)))
	defer func() { telemetry.Finish(span, err) }()

	header, _, err := r.composer.ComposeHeader(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}
	main, err := r.composer.ComposeMain(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}
	footer, _, err := r.composer.ComposeFooter(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(main) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	pp, err := r.buildPrintParams(tpl, header, footer)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Stop the browser tab when the caller gives up
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, main).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pp.paperWidth).
				WithPaperHeight(pp.paperHeight).
				WithMarginTop(pp.marginTop).
				WithMarginRight(pp.marginRight).
				WithMarginBottom(pp.marginBottom).
				WithMarginLeft(pp.marginLeft).
				WithScale(pp.scale).
				WithLandscape(pp.landscape).
				WithDisplayHeaderFooter(pp.displayHeaderFooter).
				WithHeaderTemplate(pp.headerTemplate).
				WithFooterTemplate(pp.footerTemplate).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", r.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	span.SetAttributes(telemetry.AttrPDFSize.Int(len(pdfData)))
	r.logger.Info("PDF rendered successfully",
		zap.String("template", tpl.Name),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)))

	return NewContentsFromBytes(pdfData), nil
}

// printParams holds the parameters for PDF printing, lengths in inches
type printParams struct {
	paperWidth          float64
	paperHeight         float64
	marginTop           float64
	marginRight         float64
	marginBottom        float64
	marginLeft          float64
	scale               float64
	landscape           bool
	displayHeaderFooter bool
	headerTemplate      string
	footerTemplate      string
}

// buildPrintParams derives the print parameters from the template
func (r *ChromedpRenderer) buildPrintParams(tpl *printing.Template, header, footer string) (*printParams, error) {
	pp := &printParams{
		scale:     r.config.Scale,
		landscape: tpl.IsLandscape(),
	}

	switch {
	case tpl.IsCustomFormat():
		pp.paperWidth = mmToInches(tpl.PageWidth)
		pp.paperHeight = mmToInches(tpl.PageHeight)
	case tpl.IsSinglePage():
		pp.paperWidth = mmToInches(metadata.DefaultPaperSizes["A4"].Width)
		pp.paperHeight = mmToInches(singlePageHeightMM)
	default:
		w, h, err := r.namedPaperSize(tpl.PageFormat)
		if err != nil {
			return nil, err
		}
		pp.paperWidth, pp.paperHeight = w, h
	}

	// Template margins are points
	pp.marginTop = pointsToInches(tpl.Margins.Top)
	pp.marginRight = pointsToInches(tpl.Margins.Right)
	pp.marginBottom = pointsToInches(tpl.Margins.Bottom)
	pp.marginLeft = pointsToInches(tpl.Margins.Left)

	if header != "" || footer != "" {
		pp.displayHeaderFooter = true
		// Chrome prints its default header when the template is empty
		pp.headerTemplate = orBlank(header)
		pp.footerTemplate = orBlank(footer)
	}

	return pp, nil
}

// namedPaperSize looks a format up in the paper size table
func (r *ChromedpRenderer) namedPaperSize(format string) (float64, float64, error) {
	entry, ok := r.metadata.Get(metadata.PaperSizePath(format)...).(map[string]any)
	if !ok {
		return 0, 0, NewRenderError(ErrCodePaperSizeNotSet,
			fmt.Sprintf("Paper size for '%s' is not set.", format), nil)
	}
	width, widthOK := setting.ToNumber(entry["width"])
	height, heightOK := setting.ToNumber(entry["height"])
	if !widthOK || !heightOK {
		return 0, 0, NewRenderError(ErrCodePaperSizeInvalid,
			fmt.Sprintf("Paper size for '%s' is not set correctly.", format), nil)
	}
	unit, _ := entry["unit"].(string)
	w, err := toInches(width, unit)
	if err != nil {
		return 0, 0, err
	}
	h, err := toInches(height, unit)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func orBlank(s string) string {
	if s == "" {
		return "<span></span>"
	}
	return s
}

// toInches converts a length in a CSS unit to inches. An empty unit means millimetres.
func toInches(v float64, unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "", "mm":
		return mmToInches(v), nil
	case "cm":
		return mmToInches(v * 10), nil
	case "in":
		return v, nil
	case "pt":
		return pointsToInches(v), nil
	case "px":
		return v / 96, nil
	}
	return 0, NewRenderError(ErrCodePaperSizeInvalid, "unsupported paper size unit: "+unit, nil)
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// pointsToInches converts typographic points to inches
func pointsToInches(pt float64) float64 {
	return pt / 72
}
