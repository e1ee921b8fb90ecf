package barcode

import (
	"fmt"
	"strconv"

	"github.com/erp/pdfengine/internal/domain/setting"
)

// Symbology identifies an encoder
type Symbology string

const (
	SymbologyCode128  Symbology = "C128"
	SymbologyCode128A Symbology = "C128A"
	SymbologyCode128B Symbology = "C128B"
	SymbologyCode128C Symbology = "C128C"
	SymbologyEAN13    Symbology = "EAN13"
	SymbologyEAN8     Symbology = "EAN8"
	SymbologyEAN5     Symbology = "EAN5"
	SymbologyEAN2     Symbology = "EAN2"
	SymbologyUPCA     Symbology = "UPCA"
	SymbologyUPCE     Symbology = "UPCE"
	SymbologyI25      Symbology = "I25"
	SymbologyPharma   Symbology = "PHARMA"
	SymbologyQR       Symbology = "QRCODE,H"
)

// Kind distinguishes linear barcodes from QR codes
type Kind int

const (
	KindLinear Kind = iota + 1
	KindQR
)

// Table holds the placeholder type names and sizing defaults
type Table struct {
	// Types maps placeholder type names to symbologies
	Types map[string]Symbology
	// DefaultType is used when the placeholder has no string type
	DefaultType string
	// QRType is the placeholder type name rendered as a QR code
	QRType string

	LinearWidth  string
	LinearHeight string
	LinearColor  string
	QRWidth      string
	QRHeight     string

	// ModuleWidth is the SVG width of one bar module
	ModuleWidth float64
}

// DefaultTable returns the type table understood by the CRM template editor
func DefaultTable() Table {
	return Table{
		Types: map[string]Symbology{
			"CODE128":    SymbologyCode128,
			"CODE128A":   SymbologyCode128A,
			"CODE128B":   SymbologyCode128B,
			"CODE128C":   SymbologyCode128C,
			"EAN13":      SymbologyEAN13,
			"EAN8":       SymbologyEAN8,
			"EAN5":       SymbologyEAN5,
			"EAN2":       SymbologyEAN2,
			"UPC":        SymbologyUPCA,
			"UPCE":       SymbologyUPCE,
			"ITF14":      SymbologyI25,
			"pharmacode": SymbologyPharma,
			"QRcode":     SymbologyQR,
		},
		DefaultType:  "CODE128",
		QRType:       "QRcode",
		LinearWidth:  "60",
		LinearHeight: "30",
		LinearColor:  "#000",
		QRWidth:      "40",
		QRHeight:     "40",
		ModuleWidth:  2,
	}
}

// Spec is a validated placeholder ready to render
type Spec struct {
	Kind      Kind
	Type      string
	Symbology Symbology
	Value     string
	// Width and Height keep the numeric input as written, in millimeters
	Width  string
	Height string
	// Color is the bar color of linear barcodes
	Color string
}

// Validate resolves a placeholder against the table.
// The returned Outcome is degraded when the placeholder cannot be rendered.
func (t Table) Validate(p Placeholder) (Spec, Outcome) {
	value, ok := p.String("value")
	if !ok {
		return Spec{}, Degraded("Barcode value is not a string.")
	}

	codeType, ok := p.String("type")
	if !ok {
		codeType = t.DefaultType
	}

	if codeType == t.QRType {
		return Spec{
			Kind:      KindQR,
			Type:      codeType,
			Symbology: SymbologyQR,
			Value:     value,
			Width:     numericOr(p.Fields["width"], t.QRWidth),
			Height:    numericOr(p.Fields["height"], t.QRHeight),
		}, Outcome{}
	}

	symbology, ok := t.Types[codeType]
	if !ok || symbology == SymbologyQR {
		return Spec{}, Degraded(fmt.Sprintf("Not supported barcode type %s.", codeType))
	}

	color, ok := p.String("color")
	if !ok {
		color = t.LinearColor
	}

	return Spec{
		Kind:      KindLinear,
		Type:      codeType,
		Symbology: symbology,
		Value:     value,
		Width:     numericOr(p.Fields["width"], t.LinearWidth),
		Height:    numericOr(p.Fields["height"], t.LinearHeight),
		Color:     color,
	}, Outcome{}
}

// numericOr returns v formatted when it is a number or a numeric string
func numericOr(v any, def string) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		if setting.IsNumericString(n) {
			return n
		}
	}
	return def
}
