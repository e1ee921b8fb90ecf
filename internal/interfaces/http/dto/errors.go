package dto

import (
	"net/http"

	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/infrastructure/printing"
)

// API error codes, ERR_<DESCRIPTION>
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeNotFound        = "ERR_NOT_FOUND"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"

	// template geometry or markup that cannot be printed
	ErrCodeInvalidTemplate = "ERR_INVALID_TEMPLATE"
	// the template engine failed while executing
	ErrCodeTemplateFailed = "ERR_TEMPLATE_FAILED"
	// the active engine lacks its settings, e.g. the Gotenberg API URL
	ErrCodeEngineNotConfigured = "ERR_ENGINE_NOT_CONFIGURED"
	// the active engine is not registered
	ErrCodeEngineUnavailable = "ERR_ENGINE_UNAVAILABLE"
	// the engine rejected the documents or could not be reached
	ErrCodeRenderFailed  = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout = "ERR_RENDER_TIMEOUT"
)

var statusByCode = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:        http.StatusNotFound,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeInvalidTemplate:     http.StatusUnprocessableEntity,
	ErrCodeTemplateFailed:      http.StatusUnprocessableEntity,
	ErrCodeEngineNotConfigured: http.StatusServiceUnavailable,
	ErrCodeEngineUnavailable:   http.StatusServiceUnavailable,
	ErrCodeRenderFailed:        http.StatusBadGateway,
	ErrCodeRenderTimeout:       http.StatusGatewayTimeout,
}

var domainCodes = map[string]string{
	shared.CodeNotFound:           ErrCodeNotFound,
	shared.CodeInvalidInput:       ErrCodeInvalidInput,
	shared.CodeInvalidTemplate:    ErrCodeInvalidTemplate,
	shared.CodeInvalidMargins:     ErrCodeInvalidTemplate,
	shared.CodeInvalidIntegration: ErrCodeValidation,
}

var renderCodes = map[string]string{
	printing.ErrCodeRenderTimeout:      ErrCodeRenderTimeout,
	printing.ErrCodeRenderFailed:       ErrCodeRenderFailed,
	printing.ErrCodeRequestFailed:      ErrCodeRenderFailed,
	printing.ErrCodeNoOutputFile:       ErrCodeRenderFailed,
	printing.ErrCodeInvalidHTML:        ErrCodeInvalidTemplate,
	printing.ErrCodePaperSizeNotSet:    ErrCodeInvalidTemplate,
	printing.ErrCodePaperSizeInvalid:   ErrCodeInvalidTemplate,
	printing.ErrCodeTemplateFailed:     ErrCodeTemplateFailed,
	printing.ErrCodeAPIURLNotSet:       ErrCodeEngineNotConfigured,
	printing.ErrCodeEngineNotAvailable: ErrCodeEngineUnavailable,
}

// GetHTTPStatus returns the status answered for an API error code, 500 for
// unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode maps a shared.DomainError code to its API code. Unknown
// codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	return code
}

// NormalizeRenderErrorCode maps a printing.RenderError code to its API code.
// Unknown codes become ErrCodeRenderFailed.
func NormalizeRenderErrorCode(code string) string {
	if api, ok := renderCodes[code]; ok {
		return api
	}
	return ErrCodeRenderFailed
}
