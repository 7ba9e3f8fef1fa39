package dto

import "net/http"

// API error codes, ERR_<CATEGORY>_<DESCRIPTION>. Clients switch on
// these instead of parsing messages.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	// Request validation.
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"

	// Resource lifecycle.
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Scoring pipeline.
	ErrCodeEmptyResume      = "ERR_EMPTY_RESUME"
	ErrCodeUnsupportedFile  = "ERR_UNSUPPORTED_FILE"
	ErrCodeExtractionFailed = "ERR_EXTRACTION_FAILED"
	ErrCodeModelFailure     = "ERR_MODEL_FAILURE"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"

	// Malformed input.
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	// Rate limiting.
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus pins each error code to one HTTP status so every
// handler reports the same code with the same status.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Empty and unextractable resumes are caller mistakes; a model that
	// never produced a usable score is ours.
	ErrCodeEmptyResume:      http.StatusBadRequest,
	ErrCodeUnsupportedFile:  http.StatusBadRequest,
	ErrCodeExtractionFailed: http.StatusBadRequest,
	ErrCodeModelFailure:     http.StatusInternalServerError,
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus resolves the status for an error code, answering 500
// for anything unmapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates the bare codes the domain layer
// raises into the ERR_ namespace used on the wire.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"EMPTY_RESUME":         ErrCodeEmptyResume,
	"INVALID_SCORE":        ErrCodeValidationRange,
	"UNSUPPORTED_FILE":     ErrCodeUnsupportedFile,
	"EXTRACTION_FAILED":    ErrCodeExtractionFailed,
	"MODEL_FAILURE":        ErrCodeModelFailure,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its wire form. Codes
// already in the ERR_ namespace, and unknown ones, pass through.
func NormalizeErrorCode(code string) string {
	if wire, ok := LegacyErrorCodeMapping[code]; ok {
		return wire
	}
	return code
}
