package printing

import (
	"context"
	"regexp"
	"strings"

	"github.com/erp/pdfengine/internal/infrastructure/printing/barcode"
)

// ImageSourceProvider resolves an attachment id to an image src value
type ImageSourceProvider interface {
	// Get returns the src and whether the attachment could be resolved
	Get(ctx context.Context, id string) (string, bool)
}

// Degradation is a presentational failure that was replaced by empty output
type Degradation struct {
	Source string
	Reason string
}

// TagResult is the output of a tag pass
type TagResult struct {
	HTML         string
	Degradations []Degradation
}

const (
	degradationBarcode = "barcode"
	degradationImage   = "image"
)

var (
	inlineImagePattern     = regexp.MustCompile(`src="@([A-Za-z0-9+/]*={0,2})"`)
	barcodePattern         = regexp.MustCompile(`<barcodeimage data="([^"]+)"/>`)
	attachmentImagePattern = regexp.MustCompile(`src="\?entryPoint=attachment&id=([A-Za-z0-9]*)"`)

	headTagReplacer = strings.NewReplacer(
		"{date}", `<span class="date"></span>`,
		"{title}", `<span class="title"></span>`,
		"{url}", `<span class="url"></span>`,
		"{pageNumber}", `<span class="pageNumber"></span>`,
		"{totalPages}", `<span class="totalPages"></span>`,
	)
)

// TagProcessor rewrites the custom markup tags a rendered template may contain
type TagProcessor struct {
	barcodes *barcode.Renderer
	images   ImageSourceProvider
}

// NewTagProcessor creates a tag processor. A nil barcode renderer uses the default table.
func NewTagProcessor(barcodes *barcode.Renderer, images ImageSourceProvider) *TagProcessor {
	if barcodes == nil {
		barcodes = barcode.NewRenderer(barcode.DefaultTable())
	}
	return &TagProcessor{
		barcodes: barcodes,
		images:   images,
	}
}

// ReplaceTags expands page breaks, inline images, barcodes and attachment images
func (p *TagProcessor) ReplaceTags(ctx context.Context, html string) TagResult {
	result := TagResult{}

	html = strings.ReplaceAll(html, `<br pagebreak="true">`, `<div style="page-break-after: always;"></div>`)
	html = inlineImagePattern.ReplaceAllString(html, `src="data:image/jpeg;base64,$1"`)
	html = strings.ReplaceAll(html, "?entryPoint=attachment&amp;", "?entryPoint=attachment&")

	html = replaceSubmatch(barcodePattern, html, func(data string) string {
		outcome := p.barcodes.RenderPlaceholder(data)
		if outcome.IsDegraded() {
			result.Degradations = append(result.Degradations, Degradation{
				Source: degradationBarcode,
				Reason: outcome.Reason(),
			})
		}
		return outcome.HTML()
	})

	html = replaceSubmatch(attachmentImagePattern, html, func(id string) string {
		if id == "" {
			return ""
		}
		if p.images == nil {
			result.Degradations = append(result.Degradations, Degradation{
				Source: degradationImage,
				Reason: "No image source provider for attachment " + id + ".",
			})
			return ""
		}
		src, ok := p.images.Get(ctx, id)
		if !ok || src == "" {
			result.Degradations = append(result.Degradations, Degradation{
				Source: degradationImage,
				Reason: "Could not resolve attachment " + id + ".",
			})
			return ""
		}
		return `src="` + src + `"`
	})

	result.HTML = html
	return result
}

// ReplaceHeadTags expands the header/footer placeholders then runs ReplaceTags
func (p *TagProcessor) ReplaceHeadTags(ctx context.Context, html string) TagResult {
	return p.ReplaceTags(ctx, headTagReplacer.Replace(html))
}

// replaceSubmatch replaces every match of re with fn applied to its first group
func replaceSubmatch(re *regexp.Regexp, s string, fn func(group string) string) string {
	return re.ReplaceAllStringFunc(s, func(match string) string {
		groups := re.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		return fn(groups[1])
	})
}
