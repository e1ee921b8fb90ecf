package barcode

import (
	"encoding/base64"
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer turns barcode placeholders into inline images
type Renderer struct {
	table   Table
	qrLevel qrcode.RecoveryLevel
}

// NewRenderer creates a renderer for the given table.
// QR codes are always generated with the highest error correction level (H).
func NewRenderer(table Table) *Renderer {
	if table.ModuleWidth <= 0 {
		table.ModuleWidth = 2
	}
	return &Renderer{
		table:   table,
		qrLevel: qrcode.Highest,
	}
}

// RenderPlaceholder runs parse, validate and render for a raw data attribute
func (r *Renderer) RenderPlaceholder(raw string) Outcome {
	p, err := Parse(raw)
	if err != nil {
		return Degraded("Malformed barcode data.")
	}

	spec, outcome := r.table.Validate(p)
	if outcome.IsDegraded() {
		return outcome
	}

	return r.Render(spec)
}

// Render renders a validated spec
func (r *Renderer) Render(spec Spec) Outcome {
	switch spec.Kind {
	case KindQR:
		return r.renderQR(spec)
	case KindLinear:
		return r.renderLinear(spec)
	}
	return Degraded(fmt.Sprintf("Not supported barcode type %s.", spec.Type))
}

func (r *Renderer) renderQR(spec Spec) Outcome {
	code, err := qrcode.New(spec.Value, r.qrLevel)
	if err != nil {
		return Degraded("Failed to generate QR code.")
	}

	svg := matrixSVG(code.Bitmap())
	return Success(imgTag("data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(svg)), spec))
}

func (r *Renderer) renderLinear(spec Spec) Outcome {
	bars, err := encodeLinear(spec.Symbology, spec.Value)
	if err != nil {
		return Degraded(fmt.Sprintf("Failed to generate %s barcode: %s.", spec.Type, err.Error()))
	}

	height, err := strconv.ParseFloat(spec.Height, 64)
	if err != nil {
		return Degraded(fmt.Sprintf("Invalid barcode height %s.", spec.Height))
	}

	svg := linearSVG(bars, r.table.ModuleWidth, height, spec.Color, spec.Value)
	return Success(imgTag("data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(svg)), spec))
}

func imgTag(src string, spec Spec) string {
	return fmt.Sprintf(`<img src="%s" style="width: %smm; height: %smm;">`, src, spec.Width, spec.Height)
}
