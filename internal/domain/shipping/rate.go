// Package shipping holds the transient shipment, rate and label types passed
// between the relay's handlers and the shipping provider.
package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rate is a priced shipping offer for a specific shipment.
// Rates are sourced from the provider and never modified locally.
type Rate struct {
	ID            string
	ShipmentID    string
	Carrier       string
	Service       string
	Amount        decimal.Decimal
	Currency      string
	EstimatedDays *int
}

// AmountInMinorUnits converts the rate amount to integer cents,
// rounding to the nearest cent.
func (r Rate) AmountInMinorUnits() int64 {
	return r.Amount.Mul(hundred).Round(0).IntPart()
}

// Description returns a human readable label such as "UPS Ground".
func (r Rate) Description() string {
	return strings.TrimSpace(r.Carrier + " " + r.Service)
}

// Shipment is a shipment previously created with the provider, together
// with the rates the provider currently offers for it.
type Shipment struct {
	ID       string
	Customer string
	Rates    []Rate
}

// FindRate returns the rate with the given identifier.
func (s *Shipment) FindRate(rateID string) (Rate, bool) {
	for _, r := range s.Rates {
		if r.ID == rateID {
			return r, true
		}
	}
	return Rate{}, false
}

// HasRates reports whether the provider returned at least one rate.
func (s *Shipment) HasRates() bool {
	return len(s.Rates) > 0
}
