package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were raised with.
const (
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeInvalidID     = "INVALID_ID"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeTooLarge      = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "INVALID_TOKEN"
	ErrCodeTokenRevoked  = "TOKEN_REVOKED"
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
	ErrCodeDuplicate     = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps codes whose status cannot be derived from their
// shape
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeInvalidID:     http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRouteNotFound: http.StatusNotFound,
	ErrCodeRateLimited:   http.StatusTooManyRequests,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeDuplicate:     http.StatusConflict,

	// authentication
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	// authorization
	ErrCodeForbidden:         http.StatusForbidden,
	"ACCOUNT_INACTIVE":       http.StatusForbidden,
	"CANNOT_DELETE_SELF":     http.StatusForbidden,
	"CANNOT_DEACTIVATE_SELF": http.StatusForbidden,

	// conflicts
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CATEGORY_HAS_PRODUCTS":   http.StatusConflict,
	"HAS_PAYMENTS":            http.StatusConflict,
	"LAST_ADMIN":              http.StatusConflict,
	"DUPLICATE_PRODUCT":       http.StatusConflict,

	// state machine violations
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes missing from
// the table are classified by shape: *_NOT_FOUND is 404, ALREADY_* and
// *_EXISTS are 409, INVALID_* is 400 and anything else is a business rule
// violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "ALREADY_"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "NO_"):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
