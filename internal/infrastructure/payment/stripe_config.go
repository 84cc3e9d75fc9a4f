package payment

import (
	"errors"
	"fmt"
	"strings"
)

// StripeConfig holds configuration for the Stripe Checkout integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// WebhookSecret verifies Stripe-Signature headers (whsec_xxx)
	WebhookSecret string

	// DefaultCurrency is used when a rate carries no currency
	DefaultCurrency string

	// SuccessURL may contain the {CHECKOUT_SESSION_ID} placeholder
	SuccessURL string
	CancelURL  string

	// APIBaseURL points the client at stripe-mock or another compatible endpoint
	APIBaseURL string
}

// Configuration errors
var (
	ErrStripeMissingSecretKey     = errors.New("stripe: secret key is required")
	ErrStripeMissingWebhookSecret = errors.New("stripe: webhook secret is required")
	ErrStripeMissingRedirectURLs  = errors.New("stripe: success and cancel URLs are required")
)

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrStripeMissingSecretKey
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.WebhookSecret == "" {
		return ErrStripeMissingWebhookSecret
	}
	if c.SuccessURL == "" || c.CancelURL == "" {
		return ErrStripeMissingRedirectURLs
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}
	return nil
}

// IsTestMode reports whether the key is a test-mode key
func (c *StripeConfig) IsTestMode() bool {
	return strings.Contains(c.SecretKey, "_test_")
}
