package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testSuccessURL = "https://relay.example.com/success.html?session_id={CHECKOUT_SESSION_ID}"
	testCancelURL  = "https://relay.example.com/cancel.html"
)

func newTestCheckoutService(provider *MockProvider, gateway *MockGateway, metrics Recorder, logger *zap.Logger) *CheckoutService {
	return NewCheckoutService(CheckoutServiceConfig{
		Provider:        provider,
		Gateway:         gateway,
		SuccessURL:      testSuccessURL,
		CancelURL:       testCancelURL,
		DefaultCurrency: "usd",
		Metrics:         metrics,
		Logger:          logger,
	})
}

func TestCheckoutService_StartCheckout(t *testing.T) {
	t.Run("prices the session from the provider rate", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		metrics := &recordingMetrics{}
		provider.On("GetShipment", mock.Anything, "SHIP_1").Return(testShipment(), nil)

		var captured payment.CreateSessionRequest
		gateway.On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("payment.CreateSessionRequest")).
			Run(func(args mock.Arguments) { captured = args.Get(1).(payment.CreateSessionRequest) }).
			Return(&payment.Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil)

		svc := newTestCheckoutService(provider, gateway, metrics, nil)
		session, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: "RATE_A"})

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
		assert.Equal(t, payment.LineItem{
			Name:       "USPS Priority Mail",
			UnitAmount: 1250,
			Quantity:   1,
			Currency:   "usd",
		}, captured.LineItem)
		assert.Equal(t, map[string]string{"rateId": "RATE_A", "shipmentId": "SHIP_1"}, captured.Metadata)
		assert.Equal(t, testSuccessURL, captured.SuccessURL)
		assert.Equal(t, testCancelURL, captured.CancelURL)
		assert.Equal(t, "SHIP_1", captured.ClientReferenceID)
		assert.Equal(t, []string{"checkout:ok"}, metrics.Calls())
		provider.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("unknown rate creates no session", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		metrics := &recordingMetrics{}
		provider.On("GetShipment", mock.Anything, "SHIP_1").Return(testShipment(), nil)

		svc := newTestCheckoutService(provider, gateway, metrics, nil)
		session, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: "RATE_Z"})

		assert.Nil(t, session)
		assert.ErrorIs(t, err, shipping.ErrInvalidRate)
		assert.Equal(t, "invalid rate", err.Error())
		gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
		assert.Equal(t, []string{"checkout:invalid_rate"}, metrics.Calls())
	})

	t.Run("client amount is ignored", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		core, logs := observer.New(zap.WarnLevel)
		provider.On("GetShipment", mock.Anything, "SHIP_1").Return(testShipment(), nil)
		gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req payment.CreateSessionRequest) bool {
			return req.LineItem.UnitAmount == 1250
		})).Return(&payment.Session{ID: "cs_test_2", URL: "https://checkout.stripe.com/c/pay/cs_test_2"}, nil)

		cheap := decimal.RequireFromString("0.01")
		svc := newTestCheckoutService(provider, gateway, nil, zap.New(core))
		_, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: "RATE_A", ClientAmount: &cheap})

		require.NoError(t, err)
		gateway.AssertExpectations(t)
		require.Equal(t, 1, logs.FilterMessage("Ignoring client supplied amount").Len())
		assert.Equal(t, "0.01", logs.FilterMessage("Ignoring client supplied amount").All()[0].ContextMap()["client_amount"])
	})

	t.Run("falls back to the default currency", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		shipment := testShipment()
		shipment.Rates[1].Currency = ""
		provider.On("GetShipment", mock.Anything, "SHIP_1").Return(shipment, nil)
		gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req payment.CreateSessionRequest) bool {
			return req.LineItem.Currency == "usd" && req.LineItem.UnitAmount == 999
		})).Return(&payment.Session{ID: "cs_test_3", URL: "https://checkout.stripe.com/c/pay/cs_test_3"}, nil)

		svc := newTestCheckoutService(provider, gateway, nil, nil)
		_, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: "RATE_B"})

		require.NoError(t, err)
		gateway.AssertExpectations(t)
	})

	t.Run("missing rate identifier", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		svc := newTestCheckoutService(provider, gateway, nil, nil)

		_, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: " "})

		assert.ErrorIs(t, err, shipping.ErrMissingRateID)
		provider.AssertNotCalled(t, "GetShipment", mock.Anything, mock.Anything)
		gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("without shipment reference the rate is fetched directly", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		rate := testShipment().Rates[0]
		rate.ShipmentID = "SHIP_1"
		provider.On("GetRate", mock.Anything, "RATE_A").Return(&rate, nil)
		gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req payment.CreateSessionRequest) bool {
			return req.LineItem.UnitAmount == 1250 &&
				req.Metadata[payment.MetadataRateID] == "RATE_A" &&
				req.Metadata[payment.MetadataShipmentID] == "SHIP_1"
		})).Return(&payment.Session{ID: "cs_test_4", URL: "https://checkout.stripe.com/c/pay/cs_test_4"}, nil)

		svc := newTestCheckoutService(provider, gateway, nil, nil)
		session, err := svc.StartCheckout(context.Background(), CheckoutInput{RateID: "RATE_A"})

		require.NoError(t, err)
		assert.Equal(t, "cs_test_4", session.ID)
		provider.AssertNotCalled(t, "GetShipment", mock.Anything, mock.Anything)
		gateway.AssertExpectations(t)
	})

	t.Run("unknown rate without shipment reference", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		provider.On("GetRate", mock.Anything, "RATE_Z").Return(nil, shipping.ErrInvalidRate)

		svc := newTestCheckoutService(provider, gateway, nil, nil)
		_, err := svc.StartCheckout(context.Background(), CheckoutInput{RateID: "RATE_Z"})

		assert.ErrorIs(t, err, shipping.ErrInvalidRate)
		gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("provider failure creates no session", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		provider.On("GetShipment", mock.Anything, "SHIP_404").Return(nil, shipping.ErrShipmentNotFound)

		svc := newTestCheckoutService(provider, gateway, nil, nil)
		_, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_404", RateID: "RATE_A"})

		assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
		gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure is returned", func(t *testing.T) {
		provider := new(MockProvider)
		gateway := new(MockGateway)
		metrics := &recordingMetrics{}
		upstream := &shared.UpstreamError{Service: "stripe", Operation: "create checkout session", StatusCode: 400, Body: "No such price", Err: shared.ErrUpstreamFailure}
		provider.On("GetShipment", mock.Anything, "SHIP_1").Return(testShipment(), nil)
		gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, upstream)

		svc := newTestCheckoutService(provider, gateway, metrics, nil)
		_, err := svc.StartCheckout(context.Background(), CheckoutInput{ShipmentID: "SHIP_1", RateID: "RATE_A"})

		var ue *shared.UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, "HTTP 400: No such price", ue.Details())
		assert.Equal(t, []string{"checkout:upstream_error"}, metrics.Calls())
	})
}
