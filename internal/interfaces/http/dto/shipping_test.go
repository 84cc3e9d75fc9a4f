package dto

import (
	"encoding/json"
	"testing"

	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRatesResponse(t *testing.T) {
	eta := 3
	shipment := &shipping.Shipment{
		ID:       "SHIP_1",
		Customer: "Jane Doe",
		Rates: []shipping.Rate{
			{ID: "RATE_A", Carrier: "UPS", Service: "Ground", Amount: decimal.RequireFromString("12.50"), EstimatedDays: &eta},
			{ID: "RATE_B", Carrier: "USPS", Service: "Priority Mail", Amount: decimal.RequireFromString("7")},
		},
	}

	data, err := json.Marshal(NewRatesResponse(shipment))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"customer": "Jane Doe",
		"rates": [
			{"rate_id": "RATE_A", "carrier": "UPS", "service": "Ground", "amount": 12.5, "eta": 3},
			{"rate_id": "RATE_B", "carrier": "USPS", "service": "Priority Mail", "amount": 7, "eta": null}
		]
	}`, string(data))
}

func TestCheckoutRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		reference string
		amount    string
	}{
		{"shipment id", `{"shipmentId":"SHIP_1","rateId":"RATE_A"}`, "SHIP_1", ""},
		{"order token", `{"orderToken":" SHIP_2 ","rateId":"RATE_A","amount":12.5}`, "SHIP_2", "12.5"},
		{"session id", `{"sessionId":"SHIP_3","rateId":"RATE_A","amount":"12.50"}`, "SHIP_3", "12.5"},
		{"no reference", `{"rateId":"RATE_A"}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CheckoutRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, "RATE_A", req.RateID)
			assert.Equal(t, tt.reference, req.ShipmentReference())
			if tt.amount == "" {
				assert.Nil(t, req.Amount)
			} else {
				require.NotNil(t, req.Amount)
				assert.True(t, req.Amount.Equal(decimal.RequireFromString(tt.amount)))
			}
		})
	}
}
