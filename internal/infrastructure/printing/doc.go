// Package printing provides the PDF engine infrastructure.
//
// This package contains:
//   - HTMLComposer turning template fragments into complete HTML documents
//   - TagProcessor for page breaks, inline images, barcodes and attachment images
//   - TemplateEngine, the html/template based fragment renderer
//   - GotenbergClient and GotenbergRenderer talking to a Gotenberg service
//   - ChromiumRenderer, a local chromedp based engine
//   - Contents, the lazily read PDF returned by the engines
//   - EngineRegistry, EnginePrinter and EntityPrinter selecting and running engines
//
// Example usage:
//
//	renderer := NewGotenbergRenderer(GotenbergRendererConfig{
//	    Client:   NewGotenbergClient(GotenbergClientConfig{}),
//	    Composer: composer,
//	    Settings: settings,
//	    Metadata: meta,
//	})
//	contents, err := renderer.RenderPDF(ctx, tpl, entity, printing.Params{ApplyACL: true}, printing.Data{})
//	if err != nil {
//	    return err
//	}
//	pdf, err := contents.String()
package printing
