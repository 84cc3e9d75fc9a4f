package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/domain/shared"
)

// StripeGateway implements payment.Gateway on Stripe Checkout.
// It uses its own client.API rather than the package-level stripe.Key.
type StripeGateway struct {
	config *StripeConfig
	api    *client.API
	logger *zap.Logger
}

// NewStripeGateway creates a gateway. A nil backend selects Stripe's HTTP
// backend (or APIBaseURL when set) with network retries disabled.
func NewStripeGateway(cfg *StripeConfig, backend stripe.Backend, logger *zap.Logger) (*StripeGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backendConfig := &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     logger.Named("stripe").Sugar(),
		}
		if cfg.APIBaseURL != "" {
			backendConfig.URL = stripe.String(cfg.APIBaseURL)
		}
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)
	}

	api := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeGateway{config: cfg, api: api, logger: logger}, nil
}

// CreateCheckoutSession creates a one-line hosted checkout in payment mode
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req payment.CreateSessionRequest) (*payment.Session, error) {
	currency := strings.ToLower(req.LineItem.Currency)
	if currency == "" {
		currency = g.config.DefaultCurrency
	}
	quantity := req.LineItem.Quantity
	if quantity == 0 {
		quantity = 1
	}
	successURL := req.SuccessURL
	if successURL == "" {
		successURL = g.config.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = g.config.CancelURL
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.LineItem.Name),
					},
					UnitAmount: stripe.Int64(req.LineItem.UnitAmount),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	for k, v := range req.Metadata {
		if v != "" {
			params.AddMetadata(k, v)
		}
	}

	g.logger.Debug("Creating Stripe checkout session",
		zap.String("currency", currency),
		zap.Int64("unit_amount", req.LineItem.UnitAmount),
		zap.Any("metadata", req.Metadata))

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session", zap.Error(err))
		return nil, upstreamError("create checkout session", err)
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no url", shared.ErrMalformedResponse, sess.ID)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("session_id", sess.ID),
		zap.Int64("unit_amount", req.LineItem.UnitAmount))

	return &payment.Session{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload
// and decodes checkout session events.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*payment.Event, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature header", payment.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	out := &payment.Event{
		ID:   event.ID,
		Type: payment.EventType(event.Type),
	}

	if strings.HasPrefix(string(event.Type), "checkout.session.") && event.Data != nil {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode checkout session: %v", payment.ErrInvalidSignature, err)
		}
		out.SessionID = sess.ID
		out.PaymentStatus = string(sess.PaymentStatus)
		out.Metadata = sess.Metadata
	}

	return out, nil
}

// upstreamError converts a Stripe API error into the shared upstream error
func upstreamError(op string, err error) error {
	ue := &shared.UpstreamError{
		Service:   "stripe",
		Operation: op,
		Body:      err.Error(),
		Err:       shared.ErrUpstreamFailure,
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		ue.StatusCode = se.HTTPStatusCode
		if se.Msg != "" {
			ue.Body = se.Msg
		}
	}
	return ue
}

var _ payment.Gateway = (*StripeGateway)(nil)
