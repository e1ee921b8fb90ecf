package printing

import (
	"context"
	"errors"

	"github.com/erp/pdfengine/internal/domain/printing"
)

// Engine renders a template against an entity into PDF contents
type Engine interface {
	RenderPDF(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (printing.Contents, error)
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is matches another RenderError by code
func (e *RenderError) Is(target error) bool {
	var other *RenderError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout      = "RENDER_TIMEOUT"
	ErrCodeRenderFailed       = "RENDER_FAILED"
	ErrCodeInvalidHTML        = "INVALID_HTML"
	ErrCodeAPIURLNotSet       = "API_URL_NOT_SET"
	ErrCodePaperSizeNotSet    = "PAPER_SIZE_NOT_SET"
	ErrCodePaperSizeInvalid   = "PAPER_SIZE_INVALID"
	ErrCodeNoOutputFile       = "NO_OUTPUT_FILE"
	ErrCodeRequestFailed      = "GOTENBERG_REQUEST_FAILED"
	ErrCodeEngineNotAvailable = "ENGINE_NOT_AVAILABLE"
	ErrCodeTemplateFailed     = "TEMPLATE_FAILED"
)

// ErrNoOutputFileInResponse is returned when the rendering service answers without a file
var ErrNoOutputFileInResponse = NewRenderError(ErrCodeNoOutputFile, "no output file in response", nil)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
