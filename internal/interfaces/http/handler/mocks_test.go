package handler

import (
	"context"

	appshipping "github.com/shiprelay/backend/internal/application/shipping"
	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/stretchr/testify/mock"
)

type MockRateLister struct {
	mock.Mock
}

func (m *MockRateLister) ListRates(ctx context.Context, reference string) (*shipping.Shipment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

type MockCheckoutStarter struct {
	mock.Mock
}

func (m *MockCheckoutStarter) StartCheckout(ctx context.Context, in appshipping.CheckoutInput) (*payment.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) HandleWebhook(ctx context.Context, payload []byte, signature string) (*appshipping.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipping.WebhookResult), args.Error(1)
}
