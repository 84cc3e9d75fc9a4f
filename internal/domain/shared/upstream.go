package shared

import "fmt"

// Failures of external services, shared by every adapter
var (
	ErrUpstreamFailure   = NewDomainError("UPSTREAM_FAILURE", "Upstream service request failed")
	ErrMalformedResponse = NewDomainError("UPSTREAM_MALFORMED", "Malformed response from upstream service")
)

// UpstreamError carries diagnostics from a failed call to an external service.
// StatusCode is zero when the request never produced an HTTP response.
type UpstreamError struct {
	Service    string
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s failed: %s", e.Service, e.Operation, e.Body)
	}
	return fmt.Sprintf("%s: %s returned HTTP %d: %s", e.Service, e.Operation, e.StatusCode, e.Body)
}

// Unwrap exposes the domain error classifying this failure
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details returns the upstream message suitable for a client-facing
// diagnostics field.
func (e *UpstreamError) Details() string {
	if e.StatusCode == 0 {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
