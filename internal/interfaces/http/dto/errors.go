package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Domain codes not listed here fall back to the suffix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Back content
	"ARTICLE_ALREADY_PUBLISHED": http.StatusConflict,
	"DUPLICATE_DOI":             http.StatusConflict,
	"AUTHOR_NOT_ATTACHED":       http.StatusUnprocessableEntity,
	"MAIN_AUTHOR_REQUIRED":      http.StatusBadRequest,
	"UNKNOWN_WIZARD_ACTION":     http.StatusBadRequest,
	"NOT_XML_GALLEY":            http.StatusUnprocessableEntity,
	"DOI_PREFIX_MISSING":        http.StatusUnprocessableEntity,
	"FILE_TOO_LARGE":            http.StatusRequestEntityTooLarge,
	"NO_FILES":                  http.StatusBadRequest,
	"TOO_MANY_FILES":            http.StatusBadRequest,
	"UPLOAD_FAILED":             http.StatusBadGateway,
	"DOWNLOAD_URL_FAILED":       http.StatusBadGateway,

	// Importers
	"DOI_NOT_FOUND":        http.StatusUnprocessableEntity,
	"NO_CITATION_METADATA": http.StatusUnprocessableEntity,
	"INVALID_JATS":         http.StatusUnprocessableEntity,
	"REGISTRY_UNAVAILABLE": http.StatusBadGateway,
	"REMOTE_FETCH_FAILED":  http.StatusBadGateway,

	// Accounts
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted codes are matched by shape: INVALID_* is 400, *_NOT_FOUND is 404
// and *_EXISTS is 409. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic shared domain codes to the ERR_ codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_FAILED":  ErrCodeConcurrencyConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"TOKEN_EXPIRED":           ErrCodeTokenExpired,
	"TOKEN_INVALID":           ErrCodeTokenInvalid,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a generic domain code to the ERR_ format.
// Specific codes such as DUPLICATE_DOI are returned unchanged so clients can branch on them.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
