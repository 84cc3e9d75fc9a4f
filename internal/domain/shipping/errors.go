package shipping

import "github.com/shiprelay/backend/internal/domain/shared"

// Shipping domain errors
var (
	ErrMissingReference  = shared.NewDomainError("BAD_REQUEST", "Missing shipment reference")
	ErrMissingRateID     = shared.NewDomainError("BAD_REQUEST", "Missing rate identifier")
	ErrShipmentNotFound  = shared.NewDomainError("INVALID_SHIPMENT", "Missing or invalid shipment")
	ErrNoRates           = shared.NewDomainError("NO_RATES", "No rates available for this shipment")
	ErrInvalidRate       = shared.NewDomainError("INVALID_RATE", "invalid rate")
	ErrUpstreamFailure   = shared.ErrUpstreamFailure
	ErrMalformedResponse = shared.ErrMalformedResponse
)
