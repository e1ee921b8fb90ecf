package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/pdfengine/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidTemplate, http.StatusUnprocessableEntity},
		{ErrCodeEngineNotConfigured, http.StatusServiceUnavailable},
		{ErrCodeEngineUnavailable, http.StatusServiceUnavailable},
		{ErrCodeRenderFailed, http.StatusBadGateway},
		{ErrCodeRenderTimeout, http.StatusGatewayTimeout},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_TEMPLATE", ErrCodeInvalidTemplate},
		{"INVALID_MARGINS", ErrCodeInvalidTemplate},
		{"INVALID_INTEGRATION", ErrCodeValidation},
		// Already standardized codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNormalizeRenderErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeRenderTimeout, NormalizeRenderErrorCode(printing.ErrCodeRenderTimeout))
	assert.Equal(t, ErrCodeRenderFailed, NormalizeRenderErrorCode(printing.ErrCodeRequestFailed))
	assert.Equal(t, ErrCodeRenderFailed, NormalizeRenderErrorCode(printing.ErrCodeNoOutputFile))
	assert.Equal(t, ErrCodeInvalidTemplate, NormalizeRenderErrorCode(printing.ErrCodePaperSizeInvalid))
	assert.Equal(t, ErrCodeEngineNotConfigured, NormalizeRenderErrorCode(printing.ErrCodeAPIURLNotSet))
	assert.Equal(t, ErrCodeEngineUnavailable, NormalizeRenderErrorCode(printing.ErrCodeEngineNotAvailable))
	assert.Equal(t, ErrCodeRenderFailed, NormalizeRenderErrorCode("WHATEVER"))
}

func TestEveryDomainCodeHasStatus(t *testing.T) {
	for raw, code := range domainCodes {
		_, ok := statusByCode[code]
		assert.True(t, ok, "no status for %s (from %s)", code, raw)
	}
}

func TestEveryRenderCodeHasStatus(t *testing.T) {
	for raw, code := range renderCodes {
		_, ok := statusByCode[code]
		assert.True(t, ok, "no status for %s (from %s)", code, raw)
	}
}

func TestErrorResponseJSON(t *testing.T) {
	t.Run("with request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Template not found", "req-1")
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"Template not found","request_id":"req-1"}}`, string(data))
	})

	t.Run("validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
			{Field: "template_id", Message: "template_id is required", Code: "required"},
		})
		assert.False(t, resp.Success)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "template_id", resp.Error.Details[0].Field)
	})

	t.Run("success omits error", func(t *testing.T) {
		data, err := json.Marshal(NewSuccessResponse(map[string]string{"engine": "Gotenberg"}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":{"engine":"Gotenberg"}}`, string(data))
	})
}
