package shared

// Codes carried by DomainError. The HTTP layer maps each one to a status.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidTemplate    = "INVALID_TEMPLATE"
	CodeInvalidMargins     = "INVALID_MARGINS"
	CodeInvalidIntegration = "INVALID_INTEGRATION"
)

// DomainError is a broken business rule. Message is safe to show to API clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// Is matches any DomainError with the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error whatever its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for errors.Is
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
)
