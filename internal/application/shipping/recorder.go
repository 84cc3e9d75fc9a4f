// Package shipping orchestrates rate inquiries, checkout initiation and
// webhook-driven label fulfillment.
package shipping

import (
	"errors"
	"time"

	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
)

// Outcome labels used for metrics
const (
	OutcomeOK              = "ok"
	OutcomeBadRequest      = "bad_request"
	OutcomeInvalidShipment = "invalid_shipment"
	OutcomeNoRates         = "no_rates"
	OutcomeInvalidRate     = "invalid_rate"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeMalformed       = "malformed"
	OutcomeFailed          = "failed"
	OutcomeDuplicate       = "duplicate"
	OutcomeIgnored         = "ignored"
	OutcomeRejected        = "rejected"
	OutcomeMissingRate     = "missing_rate"
)

// Recorder receives business metrics. *telemetry.RelayMetrics implements it.
type Recorder interface {
	RateInquiry(outcome string)
	CheckoutSession(outcome string)
	WebhookEvent(eventType, outcome string)
	LabelPurchase(outcome string, d time.Duration)
	SideEffectFailure(step string)
}

type nopRecorder struct{}

func (nopRecorder) RateInquiry(string) {}
func (nopRecorder) CheckoutSession(string) {}
func (nopRecorder) WebhookEvent(string, string) {}
func (nopRecorder) LabelPurchase(string, time.Duration) {}
func (nopRecorder) SideEffectFailure(string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// outcomeFor maps an error returned by the provider or processor to a metric label
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, shipping.ErrMissingReference), errors.Is(err, shipping.ErrMissingRateID):
		return OutcomeBadRequest
	case errors.Is(err, shipping.ErrShipmentNotFound):
		return OutcomeInvalidShipment
	case errors.Is(err, shipping.ErrNoRates):
		return OutcomeNoRates
	case errors.Is(err, shipping.ErrInvalidRate):
		return OutcomeInvalidRate
	case errors.Is(err, shared.ErrMalformedResponse):
		return OutcomeMalformed
	default:
		return OutcomeUpstreamError
	}
}
