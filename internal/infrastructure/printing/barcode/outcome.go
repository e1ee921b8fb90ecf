package barcode

// Outcome is the result of rendering a placeholder: markup on success or the
// reason it was dropped.
type Outcome struct {
	html     string
	reason   string
	degraded bool
}

// Success returns an Outcome carrying markup
func Success(html string) Outcome {
	return Outcome{html: html}
}

// Degraded returns an Outcome that renders as an empty string
func Degraded(reason string) Outcome {
	return Outcome{reason: reason, degraded: true}
}

// HTML returns the markup, empty when degraded
func (o Outcome) HTML() string {
	return o.html
}

// IsDegraded reports whether the placeholder was dropped
func (o Outcome) IsDegraded() bool {
	return o.degraded
}

// Reason explains a degraded Outcome
func (o Outcome) Reason() string {
	return o.reason
}
