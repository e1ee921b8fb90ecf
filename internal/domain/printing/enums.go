package printing

// Orientation represents the page orientation of a template
type Orientation string

const (
	OrientationPortrait  Orientation = "Portrait"
	OrientationLandscape Orientation = "Landscape"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// Page formats with special handling. Any other value names an entry of the
// configured paper size table (A4, Letter, ...).
const (
	PageFormatCustom     = "Custom"
	PageFormatSinglePage = "Single Page"
)

// PDF engine names
const (
	EngineGotenberg = "Gotenberg"
	EngineChromium  = "Chromium"
	EngineDompdf    = "Dompdf"
)
