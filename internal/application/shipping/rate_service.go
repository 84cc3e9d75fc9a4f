package shipping

import (
	"context"
	"strings"

	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shiprelay/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RateService answers rate inquiries for previously created shipments
type RateService struct {
	provider shipping.Provider
	metrics  Recorder
	logger   *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(provider shipping.Provider, metrics Recorder, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		provider: provider,
		metrics:  recorderOrNop(metrics),
		logger:   logger,
	}
}

// ListRates fetches the shipment identified by reference and returns it with
// its current rates. A shipment without rates is reported as ErrNoRates.
func (s *RateService) ListRates(ctx context.Context, reference string) (shipment *shipping.Shipment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "RateService.ListRates",
		attribute.String("shipment.reference", reference))
	defer func() {
		s.metrics.RateInquiry(outcomeFor(err))
		telemetry.EndSpan(span, err)
	}()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, shipping.ErrMissingReference
	}

	shipment, err = s.provider.GetShipment(ctx, reference)
	if err != nil {
		s.logger.Warn("Failed to fetch shipment",
			zap.String("shipment_id", reference),
			zap.Error(err))
		return nil, err
	}
	if !shipment.HasRates() {
		s.logger.Info("Shipment has no rates", zap.String("shipment_id", reference))
		return nil, shipping.ErrNoRates
	}

	span.SetAttributes(attribute.Int("shipment.rate_count", len(shipment.Rates)))
	s.logger.Debug("Listed shipment rates",
		zap.String("shipment_id", shipment.ID),
		zap.Int("rate_count", len(shipment.Rates)))
	return shipment, nil
}
