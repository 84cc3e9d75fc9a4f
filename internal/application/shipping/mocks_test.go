package shipping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of shipping.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetShipment(ctx context.Context, shipmentID string) (*shipping.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockProvider) GetRate(ctx context.Context, rateID string) (*shipping.Rate, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

func (m *MockProvider) PurchaseLabel(ctx context.Context, req shipping.LabelRequest) (*shipping.Label, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Label), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.CreateSessionRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) VerifyEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Kind() string { return "mock" }

func (m *MockIdempotencyStore) Close() error { return nil }

// MockDocuments is a mock implementation of shipping.LabelDocumentFetcher
type MockDocuments struct {
	mock.Mock
}

func (m *MockDocuments) FetchLabelDocument(ctx context.Context, labelURL string) ([]byte, string, error) {
	args := m.Called(ctx, labelURL)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// MockArchive is a mock implementation of shipping.LabelArchive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Store(ctx context.Context, label *shipping.Label, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, label, data, contentType)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of shared.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockPublisher) Close() error { return nil }

// recordingMetrics collects recorder calls as "kind:labels" strings
type recordingMetrics struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingMetrics) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingMetrics) RateInquiry(outcome string) { r.add("rate:%s", outcome) }

func (r *recordingMetrics) CheckoutSession(outcome string) { r.add("checkout:%s", outcome) }

func (r *recordingMetrics) WebhookEvent(eventType, outcome string) {
	r.add("webhook:%s:%s", eventType, outcome)
}

func (r *recordingMetrics) LabelPurchase(outcome string, _ time.Duration) {
	r.add("purchase:%s", outcome)
}

func (r *recordingMetrics) SideEffectFailure(step string) { r.add("side_effect:%s", step) }

func (r *recordingMetrics) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
