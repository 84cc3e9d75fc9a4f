package shippo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/domain/shipping"
)

const (
	serviceName = "shippo"

	// maxResponseBytes bounds how much of an upstream body is read
	maxResponseBytes = 4 << 20
	// maxErrorBodyBytes bounds upstream text echoed into error details
	maxErrorBodyBytes = 2048
)

// Config holds provider client settings
type Config struct {
	BaseURL    string
	APIToken   string
	AuthScheme string
	Timeout    time.Duration
}

// ErrMissingToken is returned by NewClient when no API token is configured
var ErrMissingToken = errors.New("shippo: missing API token")

// Client talks to the Shippo REST API
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	validate   *validator.Validate
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a provider client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, ErrMissingToken
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("shippo: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = "ShippoToken"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: scheme + " " + cfg.APIToken,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetShipment fetches a shipment with its rate quotes.
// A 400 or 404 from the provider means the reference does not exist.
func (c *Client) GetShipment(ctx context.Context, shipmentID string) (*shipping.Shipment, error) {
	if strings.TrimSpace(shipmentID) == "" {
		return nil, shipping.ErrMissingReference
	}

	status, body, err := c.doRequest(ctx, http.MethodGet, "/shipments/"+url.PathEscape(shipmentID), nil)
	if err != nil {
		return nil, c.networkError("get shipment", err)
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusBadRequest:
		return nil, shipping.ErrShipmentNotFound
	case status < 200 || status > 299:
		return nil, c.statusError("get shipment", status, body)
	}

	var resp shipmentResponse
	if err := c.decode(body, &resp); err != nil {
		return nil, err
	}

	shipment := &shipping.Shipment{
		ID:       resp.ObjectID,
		Customer: customerName(resp.AddressTo),
		Rates:    make([]shipping.Rate, 0, len(resp.Rates)),
	}
	for _, r := range resp.Rates {
		rate, err := toDomainRate(r)
		if err != nil {
			return nil, err
		}
		if rate.ShipmentID == "" {
			rate.ShipmentID = resp.ObjectID
		}
		shipment.Rates = append(shipment.Rates, rate)
	}
	return shipment, nil
}

// GetRate fetches a single rate quote. A 400 or 404 means the rate is unknown.
func (c *Client) GetRate(ctx context.Context, rateID string) (*shipping.Rate, error) {
	if strings.TrimSpace(rateID) == "" {
		return nil, shipping.ErrMissingRateID
	}

	status, body, err := c.doRequest(ctx, http.MethodGet, "/rates/"+url.PathEscape(rateID), nil)
	if err != nil {
		return nil, c.networkError("get rate", err)
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusBadRequest:
		return nil, shipping.ErrInvalidRate
	case status < 200 || status > 299:
		return nil, c.statusError("get rate", status, body)
	}

	var resp rateResponse
	if err := c.decode(body, &resp); err != nil {
		return nil, err
	}
	rate, err := toDomainRate(resp)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// PurchaseLabel creates a transaction for a rate. A transaction whose
// status is not SUCCESS is returned without error; callers decide.
func (c *Client) PurchaseLabel(ctx context.Context, req shipping.LabelRequest) (*shipping.Label, error) {
	if req.RateID == "" {
		return nil, shipping.ErrMissingRateID
	}
	fileType := req.FileType
	if fileType == "" {
		fileType = shipping.LabelFileTypePDF
	}
	payload, err := json.Marshal(transactionRequest{
		Rate:          req.RateID,
		LabelFileType: string(fileType),
		Async:         req.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("shippo: encode transaction: %w", err)
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, "/transactions", payload)
	if err != nil {
		return nil, c.networkError("purchase label", err)
	}
	if status < 200 || status > 299 {
		return nil, c.statusError("purchase label", status, body)
	}

	var resp transactionResponse
	if err := c.decode(body, &resp); err != nil {
		return nil, err
	}

	label := &shipping.Label{
		TransactionID:  resp.ObjectID,
		RateID:         resp.Rate,
		Status:         shipping.LabelStatus(strings.ToUpper(resp.Status)),
		TrackingNumber: resp.TrackingNumber,
		TrackingURL:    resp.TrackingURL,
		LabelURL:       resp.LabelURL,
	}
	if label.RateID == "" {
		label.RateID = req.RateID
	}
	for _, m := range resp.Messages {
		if m.Text != "" {
			label.Messages = append(label.Messages, m.Text)
		}
	}
	return label, nil
}

// FetchLabelDocument downloads a generated label. The URL is pre-signed
// by the provider, so no Authorization header is sent.
func (c *Client) FetchLabelDocument(ctx context.Context, labelURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("shippo: build label request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", c.networkError("fetch label", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("shippo: read label: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", c.statusError("fetch label", resp.StatusCode, data)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("shippo request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, respBody, nil
}

func (c *Client) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", shipping.ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", shipping.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) networkError(op string, err error) error {
	return &shared.UpstreamError{
		Service:   serviceName,
		Operation: op,
		Body:      err.Error(),
		Err:       shipping.ErrUpstreamFailure,
	}
}

func (c *Client) statusError(op string, status int, body []byte) error {
	return &shared.UpstreamError{
		Service:    serviceName,
		Operation:  op,
		StatusCode: status,
		Body:       errorText(body),
		Err:        shipping.ErrUpstreamFailure,
	}
}

// errorText prefers the provider's "detail" field, else the raw body
func errorText(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		return er.Detail
	}
	return truncateText(strings.TrimSpace(string(body)), maxErrorBodyBytes)
}

// truncateText cuts s to at most n bytes without splitting a rune
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// customerName reads address_to, which is either an expanded object or a bare ID
func customerName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var addr addressResponse
	if err := json.Unmarshal(raw, &addr); err != nil {
		return ""
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Company
}

func toDomainRate(r rateResponse) (shipping.Rate, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return shipping.Rate{}, fmt.Errorf("%w: rate %s amount %q: %v", shipping.ErrMalformedResponse, r.ObjectID, r.Amount, err)
	}
	if amount.IsNegative() {
		return shipping.Rate{}, fmt.Errorf("%w: rate %s has negative amount", shipping.ErrMalformedResponse, r.ObjectID)
	}
	service := r.ServiceLevel.Name
	if service == "" {
		service = r.ServiceLevel.Token
	}
	return shipping.Rate{
		ID:            r.ObjectID,
		ShipmentID:    r.Shipment,
		Carrier:       r.Provider,
		Service:       service,
		Amount:        amount,
		Currency:      strings.ToUpper(r.Currency),
		EstimatedDays: r.EstimatedDays,
	}, nil
}

var (
	_ shipping.Provider             = (*Client)(nil)
	_ shipping.LabelDocumentFetcher = (*Client)(nil)
)
