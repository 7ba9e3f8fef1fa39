package shared

// DomainError is an error with a stable machine-readable code. The
// HTTP layer maps codes onto status codes without inspecting messages.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Generic persistence and state errors.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Scoring pipeline errors.
var (
	ErrEmptyResume      = NewDomainError("EMPTY_RESUME", "Resume text is empty")
	ErrInvalidScore     = NewDomainError("INVALID_SCORE", "Score is outside the allowed range")
	ErrModelFailure     = NewDomainError("MODEL_FAILURE", "Model failed to return valid JSON after 3 attempts")
	ErrUnsupportedFile  = NewDomainError("UNSUPPORTED_FILE", "Only PDF or JSON files are supported")
	ErrExtractionFailed = NewDomainError("EXTRACTION_FAILED", "Failed to extract text from document")
)
