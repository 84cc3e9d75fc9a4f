package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appshipping "github.com/shiprelay/backend/internal/application/shipping"
	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func postWebhook(webhooks WebhookProcessor, body []byte, signature string) *httptest.ResponseRecorder {
	h := NewStripeWebhookHandler(webhooks)
	router := gin.New()
	router.POST("/webhook/stripe", h.HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHandler_HandleStripeWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	t.Run("acknowledges verified events", func(t *testing.T) {
		webhooks := new(MockWebhookProcessor)
		webhooks.On("HandleWebhook", mock.Anything, payload, "t=1,v1=abc").Return(&appshipping.WebhookResult{
			EventID:   "evt_1",
			EventType: "checkout.session.completed",
			Action:    appshipping.ActionPurchased,
		}, nil)

		w := postWebhook(webhooks, payload, "t=1,v1=abc")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		webhooks.AssertExpectations(t)
	})

	t.Run("acknowledges even when the purchase failed", func(t *testing.T) {
		webhooks := new(MockWebhookProcessor)
		webhooks.On("HandleWebhook", mock.Anything, payload, "sig").Return(&appshipping.WebhookResult{
			EventID: "evt_1",
			Action:  appshipping.ActionPurchaseFailed,
		}, nil)

		w := postWebhook(webhooks, payload, "sig")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("verification failure is plain-text 400", func(t *testing.T) {
		webhooks := new(MockWebhookProcessor)
		webhooks.On("HandleWebhook", mock.Anything, payload, "bad").
			Return(nil, fmt.Errorf("%w: signature mismatch", payment.ErrInvalidSignature))

		w := postWebhook(webhooks, payload, "bad")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		assert.Equal(t, "Webhook Error: Webhook signature verification failed: signature mismatch", w.Body.String())
	})

	t.Run("oversized payload is rejected before verification", func(t *testing.T) {
		webhooks := new(MockWebhookProcessor)

		w := postWebhook(webhooks, bytes.Repeat([]byte("x"), maxWebhookPayloadSize+1), "sig")

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeError(t, w).Code)
		webhooks.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payload at the limit is accepted", func(t *testing.T) {
		big := bytes.Repeat([]byte("x"), maxWebhookPayloadSize)
		webhooks := new(MockWebhookProcessor)
		webhooks.On("HandleWebhook", mock.Anything, big, "sig").Return(&appshipping.WebhookResult{Action: appshipping.ActionIgnored}, nil)

		w := postWebhook(webhooks, big, "sig")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
