package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeNotFound is used for unknown routes and resources
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Shipping error codes
const (
	// ErrCodeInvalidShipment is used when the provider does not know the shipment
	ErrCodeInvalidShipment = "ERR_INVALID_SHIPMENT"
	// ErrCodeNoRates is used when a shipment has no rate quotes
	ErrCodeNoRates = "ERR_NO_RATES"
	// ErrCodeInvalidRate is used when the selected rate is not offered
	ErrCodeInvalidRate = "ERR_INVALID_RATE"
)

// Upstream error codes
const (
	// ErrCodeUpstream is used when the provider or processor failed
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeUpstreamMalformed is used when an upstream response fails validation
	ErrCodeUpstreamMalformed = "ERR_UPSTREAM_MALFORMED"
)

// Webhook error codes
const (
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Shipping errors
	ErrCodeInvalidShipment: http.StatusBadRequest,
	ErrCodeNoRates:         http.StatusNotFound,
	ErrCodeInvalidRate:     http.StatusBadRequest,

	// Upstream errors -> 500
	ErrCodeUpstream:          http.StatusInternalServerError,
	ErrCodeUpstreamMalformed: http.StatusInternalServerError,

	ErrCodeInvalidSignature: http.StatusBadRequest,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"BAD_REQUEST":        ErrCodeBadRequest,
	"INVALID_SHIPMENT":   ErrCodeInvalidShipment,
	"NO_RATES":           ErrCodeNoRates,
	"INVALID_RATE":       ErrCodeInvalidRate,
	"UPSTREAM_FAILURE":   ErrCodeUpstream,
	"UPSTREAM_MALFORMED": ErrCodeUpstreamMalformed,
	"INVALID_SIGNATURE":  ErrCodeInvalidSignature,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
