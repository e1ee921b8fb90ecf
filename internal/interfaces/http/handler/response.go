package handler

import "github.com/erp/pdfengine/internal/interfaces/http/dto"

// APIResponse documents the JSON envelope of every response except the PDF itself
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse documents a failed request. Render failures carry the engine
// code, for example RENDER_TIMEOUT or ENGINE_NOT_AVAILABLE.
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   dto.ErrorInfo `json:"error"`
}
