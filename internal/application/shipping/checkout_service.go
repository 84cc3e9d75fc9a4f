package shipping

import (
	"context"
	"strings"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shiprelay/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CheckoutServiceConfig contains dependencies for CheckoutService
type CheckoutServiceConfig struct {
	Provider        shipping.Provider
	Gateway         payment.Gateway
	SuccessURL      string
	CancelURL       string
	DefaultCurrency string
	Metrics         Recorder
	Logger          *zap.Logger
}

// CheckoutService turns a selected rate into a hosted checkout session
type CheckoutService struct {
	provider        shipping.Provider
	gateway         payment.Gateway
	successURL      string
	cancelURL       string
	defaultCurrency string
	metrics         Recorder
	logger          *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		provider:        cfg.Provider,
		gateway:         cfg.Gateway,
		successURL:      cfg.SuccessURL,
		cancelURL:       cfg.CancelURL,
		defaultCurrency: cfg.DefaultCurrency,
		metrics:         recorderOrNop(cfg.Metrics),
		logger:          logger,
	}
}

// CheckoutInput identifies the rate the customer selected and, optionally,
// the shipment it was quoted for.
// ClientAmount is informational only; the charged amount always comes from
// the provider's rate.
type CheckoutInput struct {
	ShipmentID   string
	RateID       string
	ClientAmount *decimal.Decimal
}

// StartCheckout looks up the selected rate at the provider and creates a
// checkout session priced from the provider's amount. With a shipment
// reference the rate must be among the shipment's current rates; without
// one the rate is fetched directly.
func (s *CheckoutService) StartCheckout(ctx context.Context, in CheckoutInput) (session *payment.Session, err error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.StartCheckout",
		attribute.String("shipment.id", in.ShipmentID),
		attribute.String("rate.id", in.RateID))
	defer func() {
		s.metrics.CheckoutSession(outcomeFor(err))
		telemetry.EndSpan(span, err)
	}()

	shipmentID := strings.TrimSpace(in.ShipmentID)
	rateID := strings.TrimSpace(in.RateID)
	if rateID == "" {
		return nil, shipping.ErrMissingRateID
	}

	rate, err := s.authoritativeRate(ctx, shipmentID, rateID)
	if err != nil {
		return nil, err
	}
	if rate.ShipmentID == "" {
		rate.ShipmentID = shipmentID
	}

	if in.ClientAmount != nil && !in.ClientAmount.Equal(rate.Amount) {
		s.logger.Warn("Ignoring client supplied amount",
			zap.String("rate_id", rateID),
			zap.String("client_amount", in.ClientAmount.String()),
			zap.String("rate_amount", rate.Amount.String()))
	}

	currency := strings.ToLower(rate.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	session, err = s.gateway.CreateCheckoutSession(ctx, payment.CreateSessionRequest{
		LineItem: payment.LineItem{
			Name:       rate.Description(),
			UnitAmount: rate.AmountInMinorUnits(),
			Quantity:   1,
			Currency:   currency,
		},
		Metadata: map[string]string{
			payment.MetadataRateID:     rate.ID,
			payment.MetadataShipmentID: rate.ShipmentID,
		},
		SuccessURL:        s.successURL,
		CancelURL:         s.cancelURL,
		ClientReferenceID: rate.ShipmentID,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("shipment_id", shipmentID),
			zap.String("rate_id", rateID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("shipment_id", rate.ShipmentID),
		zap.String("rate_id", rate.ID),
		zap.Int64("unit_amount", rate.AmountInMinorUnits()),
		zap.String("currency", currency))
	return session, nil
}

func (s *CheckoutService) authoritativeRate(ctx context.Context, shipmentID, rateID string) (shipping.Rate, error) {
	if shipmentID == "" {
		rate, err := s.provider.GetRate(ctx, rateID)
		if err != nil {
			s.logger.Warn("Failed to fetch rate for checkout",
				zap.String("rate_id", rateID),
				zap.Error(err))
			return shipping.Rate{}, err
		}
		return *rate, nil
	}

	shipment, err := s.provider.GetShipment(ctx, shipmentID)
	if err != nil {
		s.logger.Warn("Failed to fetch shipment for checkout",
			zap.String("shipment_id", shipmentID),
			zap.Error(err))
		return shipping.Rate{}, err
	}
	rate, ok := shipment.FindRate(rateID)
	if !ok {
		s.logger.Warn("Rate not offered for shipment",
			zap.String("shipment_id", shipmentID),
			zap.String("rate_id", rateID))
		return shipping.Rate{}, shipping.ErrInvalidRate
	}
	return rate, nil
}
