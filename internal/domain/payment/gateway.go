// Package payment describes hosted checkout sessions and the signed event
// notifications the payment processor sends back.
package payment

import (
	"context"

	"github.com/shiprelay/backend/internal/domain/shared"
)

// Metadata keys echoed back by the processor in completion events
const (
	MetadataRateID     = "rateId"
	MetadataShipmentID = "shipmentId"
)

// EventType is the processor's event kind
type EventType string

const (
	// EventCheckoutSessionCompleted is sent once a hosted checkout is paid
	EventCheckoutSessionCompleted EventType = "checkout.session.completed"
)

// ErrInvalidSignature is returned when a webhook payload cannot be authenticated
var ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

// LineItem is a single priced line of a checkout session
type LineItem struct {
	Name       string
	UnitAmount int64 // minor currency units
	Quantity   int64
	Currency   string
}

// CreateSessionRequest contains input for creating a hosted checkout session
type CreateSessionRequest struct {
	LineItem          LineItem
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

// Session is a hosted checkout session created at the processor
type Session struct {
	ID  string
	URL string
}

// Event is a verified processor notification
type Event struct {
	ID            string
	Type          EventType
	SessionID     string
	PaymentStatus string
	Metadata      map[string]string
}

// IsCheckoutCompleted reports whether the event signals a completed checkout
func (e *Event) IsCheckoutCompleted() bool {
	return e.Type == EventCheckoutSessionCompleted
}

// RateID returns the correlated rate identifier from the event metadata
func (e *Event) RateID() string {
	return e.Metadata[MetadataRateID]
}

// Gateway is the payment processor.
type Gateway interface {
	// CreateCheckoutSession creates a hosted payment page.
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*Session, error)

	// VerifyEvent authenticates a raw webhook payload against its signature
	// header and decodes it. The payload must be the unmodified request body.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
