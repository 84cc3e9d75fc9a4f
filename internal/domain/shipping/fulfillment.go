package shipping

import "github.com/shiprelay/backend/internal/domain/shared"

// Fulfillment event types
const (
	EventLabelPurchased      = "label.purchased"
	EventLabelPurchaseFailed = "label.purchase_failed"
)

// LabelPurchaseEvent reports the outcome of a label purchase triggered by a
// completed checkout. The rate ID is the aggregate.
type LabelPurchaseEvent struct {
	shared.BaseDomainEvent
	RateID            string   `json:"rate_id"`
	ShipmentID        string   `json:"shipment_id,omitempty"`
	CheckoutSessionID string   `json:"checkout_session_id,omitempty"`
	PaymentEventID    string   `json:"payment_event_id"`
	TransactionID     string   `json:"transaction_id,omitempty"`
	Status            string   `json:"status,omitempty"`
	TrackingNumber    string   `json:"tracking_number,omitempty"`
	TrackingURL       string   `json:"tracking_url,omitempty"`
	LabelURL          string   `json:"label_url,omitempty"`
	ArchiveKey        string   `json:"archive_key,omitempty"`
	Error             string   `json:"error,omitempty"`
	Messages          []string `json:"messages,omitempty"`
}

// NewLabelPurchaseEvent builds the event for a purchase attempt. A nil label
// or a label that did not succeed produces label.purchase_failed.
func NewLabelPurchaseEvent(rateID string, label *Label, purchaseErr error) *LabelPurchaseEvent {
	eventType := EventLabelPurchased
	if purchaseErr != nil || !label.Succeeded() {
		eventType = EventLabelPurchaseFailed
	}

	e := &LabelPurchaseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, rateID),
		RateID:          rateID,
	}
	if label != nil {
		e.TransactionID = label.TransactionID
		e.Status = string(label.Status)
		e.TrackingNumber = label.TrackingNumber
		e.TrackingURL = label.TrackingURL
		e.LabelURL = label.LabelURL
		e.Messages = label.Messages
	}
	if purchaseErr != nil {
		e.Error = purchaseErr.Error()
	}
	return e
}
