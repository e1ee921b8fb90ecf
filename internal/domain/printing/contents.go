package printing

import "io"

// Contents is the generic PDF output handed back to the host.
// Implementations materialize lazily and may return the read error on every call.
type Contents interface {
	// String returns the full document
	String() (string, error)
	// Stream returns a fresh reader positioned at the start of the document
	Stream() (io.ReadSeeker, error)
	// Length returns the document size in bytes
	Length() (int, error)
}
