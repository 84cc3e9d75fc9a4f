package shipping

import (
	"context"
	"time"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shiprelay/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultPurchaseTimeout = 30 * time.Second

// Webhook actions reported in WebhookResult
const (
	ActionPurchased      = "purchased"
	ActionPurchaseFailed = "purchase_failed"
	ActionDuplicate      = "duplicate"
	ActionIgnored        = "ignored"
	ActionMissingRate    = "missing_rate"
)

// Side effect names used for metrics
const (
	stepArchive = "archive"
	stepPublish = "publish"
)

// FulfillmentServiceConfig contains dependencies for FulfillmentService.
// Idempotency, Documents, Archive and Publisher are optional.
type FulfillmentServiceConfig struct {
	Gateway         payment.Gateway
	Provider        shipping.Provider
	Idempotency     shared.IdempotencyStore
	IdempotencyTTL  time.Duration
	PurchaseTimeout time.Duration
	Documents       shipping.LabelDocumentFetcher
	Archive         shipping.LabelArchive
	Publisher       shared.EventPublisher
	Metrics         Recorder
	Logger          *zap.Logger
}

// FulfillmentService purchases a label when the payment processor reports
// a completed checkout
type FulfillmentService struct {
	gateway         payment.Gateway
	provider        shipping.Provider
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	purchaseTimeout time.Duration
	documents       shipping.LabelDocumentFetcher
	archive         shipping.LabelArchive
	publisher       shared.EventPublisher
	metrics         Recorder
	logger          *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(cfg FulfillmentServiceConfig) *FulfillmentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	timeout := cfg.PurchaseTimeout
	if timeout <= 0 {
		timeout = defaultPurchaseTimeout
	}
	return &FulfillmentService{
		gateway:         cfg.Gateway,
		provider:        cfg.Provider,
		idempotency:     cfg.Idempotency,
		idempotencyTTL:  ttl,
		purchaseTimeout: timeout,
		documents:       cfg.Documents,
		archive:         cfg.Archive,
		publisher:       cfg.Publisher,
		metrics:         recorderOrNop(cfg.Metrics),
		logger:          logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID        string `json:"event_id"`
	EventType      string `json:"event_type"`
	Action         string `json:"action"`
	RateID         string `json:"rate_id,omitempty"`
	TransactionID  string `json:"transaction_id,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// HandleWebhook verifies a raw webhook payload and, for a completed checkout,
// purchases the label for the rate carried in the session metadata.
//
// Only a verification failure is returned as an error. Once the event is
// authenticated the processor is always acknowledged, including when the
// label purchase fails.
func (s *FulfillmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("unverified", OutcomeRejected)
		s.logger.Warn("Rejected webhook", zap.Error(err))
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "FulfillmentService.HandleWebhook",
		attribute.String("webhook.event_id", event.ID),
		attribute.String("webhook.event_type", string(event.Type)))
	defer telemetry.EndSpan(span, nil)

	log := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	if !event.IsCheckoutCompleted() {
		result.Action = ActionIgnored
		s.metrics.WebhookEvent(result.EventType, OutcomeIgnored)
		log.Debug("Ignoring webhook event")
		return result, nil
	}

	rateID := event.RateID()
	if rateID == "" {
		result.Action = ActionMissingRate
		s.metrics.WebhookEvent(result.EventType, OutcomeMissingRate)
		log.Error("Completed checkout carries no rate identifier",
			zap.String("session_id", event.SessionID))
		return result, nil
	}
	result.RateID = rateID
	span.SetAttributes(attribute.String("rate.id", rateID))
	log = log.With(zap.String("rate_id", rateID))

	if !s.claim(ctx, event.ID, log) {
		result.Action = ActionDuplicate
		s.metrics.WebhookEvent(result.EventType, OutcomeDuplicate)
		log.Info("Skipping already processed event")
		return result, nil
	}

	// A processor hang-up must not abort an in-flight purchase.
	detached := context.WithoutCancel(ctx)

	label, purchaseErr := s.purchase(detached, rateID, log)
	if purchaseErr == nil && label.Succeeded() {
		result.Action = ActionPurchased
		result.TransactionID = label.TransactionID
		result.TrackingNumber = label.TrackingNumber
		s.metrics.WebhookEvent(result.EventType, OutcomeOK)
	} else {
		result.Action = ActionPurchaseFailed
		s.metrics.WebhookEvent(result.EventType, OutcomeFailed)
	}

	archiveKey := s.archiveLabel(detached, label, log)
	s.publish(detached, event, label, purchaseErr, archiveKey, log)

	return result, nil
}

// claim records the event as processed and reports whether this delivery
// should proceed. Store errors let the delivery through.
func (s *FulfillmentService) claim(ctx context.Context, eventID string, log *zap.Logger) bool {
	if s.idempotency == nil {
		return true
	}
	first, err := s.idempotency.MarkProcessed(ctx, eventID, s.idempotencyTTL)
	if err != nil {
		log.Warn("Idempotency store unavailable, processing event anyway",
			zap.String("store", s.idempotency.Kind()),
			zap.Error(err))
		return true
	}
	return first
}

func (s *FulfillmentService) purchase(ctx context.Context, rateID string, log *zap.Logger) (label *shipping.Label, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.purchaseTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "FulfillmentService.PurchaseLabel",
		attribute.String("rate.id", rateID))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	label, err = s.provider.PurchaseLabel(ctx, shipping.NewLabelRequest(rateID))
	elapsed := time.Since(start)
	if err == nil && label == nil {
		err = shipping.ErrMalformedResponse
	}

	switch {
	case err != nil:
		s.metrics.LabelPurchase(outcomeFor(err), elapsed)
		log.Error("Label purchase failed", zap.Error(err), zap.Duration("elapsed", elapsed))
	case !label.Succeeded():
		s.metrics.LabelPurchase(OutcomeFailed, elapsed)
		log.Error("Label purchase not successful",
			zap.String("transaction_id", label.TransactionID),
			zap.String("status", string(label.Status)),
			zap.Strings("messages", label.Messages))
	default:
		s.metrics.LabelPurchase(OutcomeOK, elapsed)
		log.Info("Label purchased",
			zap.String("transaction_id", label.TransactionID),
			zap.String("tracking_number", label.TrackingNumber),
			zap.String("label_url", label.LabelURL),
			zap.Duration("elapsed", elapsed))
	}
	return label, err
}

// archiveLabel copies a successful label document into the archive and
// returns its key, or "" when archiving is disabled or fails.
func (s *FulfillmentService) archiveLabel(ctx context.Context, label *shipping.Label, log *zap.Logger) string {
	if s.archive == nil || s.documents == nil || !label.Succeeded() || label.LabelURL == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.purchaseTimeout)
	defer cancel()

	data, contentType, err := s.documents.FetchLabelDocument(ctx, label.LabelURL)
	if err != nil {
		s.metrics.SideEffectFailure(stepArchive)
		log.Warn("Failed to download label document", zap.Error(err))
		return ""
	}
	key, err := s.archive.Store(ctx, label, data, contentType)
	if err != nil {
		s.metrics.SideEffectFailure(stepArchive)
		log.Warn("Failed to archive label document", zap.Error(err))
		return ""
	}
	log.Info("Label document archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return key
}

func (s *FulfillmentService) publish(ctx context.Context, event *payment.Event, label *shipping.Label, purchaseErr error, archiveKey string, log *zap.Logger) {
	if s.publisher == nil {
		return
	}
	evt := shipping.NewLabelPurchaseEvent(event.RateID(), label, purchaseErr)
	evt.ShipmentID = event.Metadata[payment.MetadataShipmentID]
	evt.CheckoutSessionID = event.SessionID
	evt.PaymentEventID = event.ID
	evt.ArchiveKey = archiveKey

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.metrics.SideEffectFailure(stepPublish)
		log.Warn("Failed to publish fulfillment event",
			zap.String("fulfillment_event", evt.EventType()),
			zap.Error(err))
	}
}
