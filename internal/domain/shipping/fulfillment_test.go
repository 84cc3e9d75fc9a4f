package shipping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabelPurchaseEvent(t *testing.T) {
	t.Run("successful purchase", func(t *testing.T) {
		label := &Label{TransactionID: "TXN_1", RateID: "RATE_A", Status: LabelStatusSuccess, TrackingNumber: "1Z999"}

		e := NewLabelPurchaseEvent("RATE_A", label, nil)

		assert.Equal(t, EventLabelPurchased, e.EventType())
		assert.Equal(t, "RATE_A", e.AggregateID())
		assert.Equal(t, "TXN_1", e.TransactionID)
		assert.Equal(t, "SUCCESS", e.Status)
		assert.Empty(t, e.Error)
		assert.NotZero(t, e.EventID())
		assert.False(t, e.OccurredAt().IsZero())
	})

	t.Run("provider reported error", func(t *testing.T) {
		label := &Label{TransactionID: "TXN_2", Status: LabelStatusError, Messages: []string{"Rate expired"}}

		e := NewLabelPurchaseEvent("RATE_A", label, nil)

		assert.Equal(t, EventLabelPurchaseFailed, e.EventType())
		assert.Equal(t, []string{"Rate expired"}, e.Messages)
	})

	t.Run("transport failure", func(t *testing.T) {
		e := NewLabelPurchaseEvent("RATE_A", nil, errors.New("connection reset"))

		assert.Equal(t, EventLabelPurchaseFailed, e.EventType())
		assert.Equal(t, "connection reset", e.Error)
		assert.Empty(t, e.TransactionID)
	})
}
