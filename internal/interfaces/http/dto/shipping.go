package dto

import (
	"strings"

	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// RateResponse is a normalized rate quote
type RateResponse struct {
	RateID  string  `json:"rate_id"`
	Carrier string  `json:"carrier"`
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
	ETA     *int    `json:"eta"`
}

// RatesResponse is returned by GET /api/shipping/:reference
type RatesResponse struct {
	Customer string         `json:"customer"`
	Rates    []RateResponse `json:"rates"`
}

// NewRatesResponse converts a shipment into its API representation
func NewRatesResponse(s *shipping.Shipment) RatesResponse {
	rates := make([]RateResponse, 0, len(s.Rates))
	for _, r := range s.Rates {
		rates = append(rates, RateResponse{
			RateID:  r.ID,
			Carrier: r.Carrier,
			Service: r.Service,
			Amount:  r.Amount.InexactFloat64(),
			ETA:     r.EstimatedDays,
		})
	}
	return RatesResponse{
		Customer: s.Customer,
		Rates:    rates,
	}
}

// CheckoutRequest is the body of POST /api/checkout. The shipment may be
// referenced under any of its three historical names. Amount is accepted
// but never used for pricing.
type CheckoutRequest struct {
	ShipmentID string           `json:"shipmentId"`
	OrderToken string           `json:"orderToken"`
	SessionID  string           `json:"sessionId"`
	RateID     string           `json:"rateId" binding:"required"`
	Amount     *decimal.Decimal `json:"amount"`
}

// ShipmentReference returns the first non-empty shipment reference
func (r *CheckoutRequest) ShipmentReference() string {
	for _, ref := range []string{r.ShipmentID, r.OrderToken, r.SessionID} {
		if ref = strings.TrimSpace(ref); ref != "" {
			return ref
		}
	}
	return ""
}

// CheckoutResponse carries the hosted payment page URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a verified webhook delivery
type WebhookResponse struct {
	Received bool `json:"received"`
}
