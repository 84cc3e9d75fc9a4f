package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidShipment, http.StatusBadRequest},
		{ErrCodeNoRates, http.StatusNotFound},
		{ErrCodeInvalidRate, http.StatusBadRequest},
		{ErrCodeUpstream, http.StatusInternalServerError},
		{ErrCodeUpstreamMalformed, http.StatusInternalServerError},
		{ErrCodeInvalidSignature, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
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
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INVALID_SHIPMENT", ErrCodeInvalidShipment},
		{"NO_RATES", ErrCodeNoRates},
		{"INVALID_RATE", ErrCodeInvalidRate},
		{"UPSTREAM_FAILURE", ErrCodeUpstream},
		{"UPSTREAM_MALFORMED", ErrCodeUpstreamMalformed},
		{"INVALID_SIGNATURE", ErrCodeInvalidSignature},
		// API codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		t.Run(domainCode, func(t *testing.T) {
			_, ok := ErrorCodeHTTPStatus[apiCode]
			assert.True(t, ok, "%s should have an HTTP status", apiCode)
			assert.True(t, strings.HasPrefix(apiCode, "ERR_"))
		})
	}
}

func TestDomainErrorsAreMapped(t *testing.T) {
	domainErrs := []*shared.DomainError{
		shipping.ErrMissingReference,
		shipping.ErrMissingRateID,
		shipping.ErrShipmentNotFound,
		shipping.ErrNoRates,
		shipping.ErrInvalidRate,
		shared.ErrUpstreamFailure,
		shared.ErrMalformedResponse,
		payment.ErrInvalidSignature,
	}
	used := make(map[string]bool, len(domainErrs))
	for _, de := range domainErrs {
		apiCode, ok := DomainErrorCodeMapping[de.Code]
		assert.True(t, ok, "%s should be mapped", de.Code)
		used[de.Code] = true
		_, ok = ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s should have an HTTP status", apiCode)
	}
	for domainCode := range DomainErrorCodeMapping {
		assert.True(t, used[domainCode], "%s is mapped but no domain error carries it", domainCode)
	}
}

func TestErrorResponseJSON(t *testing.T) {
	t.Run("minimal envelope", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResponse(ErrCodeInvalidRate, "invalid rate"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"invalid rate","code":"ERR_INVALID_RATE"}`, string(data))
	})

	t.Run("with details and request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeUpstream, "Upstream service request failed", "req-1").
			WithDetails("HTTP 502: bad gateway")
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"error": "Upstream service request failed",
			"details": "HTTP 502: bad gateway",
			"code": "ERR_UPSTREAM",
			"request_id": "req-1"
		}`, string(data))
	})

	t.Run("validation fields", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
			{Field: "rateId", Message: "This field is required"},
		})
		assert.Equal(t, ErrCodeValidation, resp.Code)
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "rateId", resp.Fields[0].Field)
	})
}
