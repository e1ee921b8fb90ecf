package printing

// ComposedDocument holds the fully resolved HTML handed to a PDF engine.
// Header and Footer are only meaningful when the matching flag is set.
type ComposedDocument struct {
	Header    string `json:"header,omitempty"`
	HasHeader bool   `json:"has_header"`
	Main      string `json:"main"`
	Footer    string `json:"footer,omitempty"`
	HasFooter bool   `json:"has_footer"`
}
