package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shiprelay/backend/internal/infrastructure/logger"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
	"github.com/shiprelay/backend/internal/interfaces/http/handler"
	"github.com/shiprelay/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MetricsExporter records HTTP metrics and serves the scrape endpoint
type MetricsExporter interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

// Handlers groups the relay's HTTP handlers
type Handlers struct {
	System   *handler.SystemHandler
	Shipping *handler.ShippingHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.StripeWebhookHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	MaxBodySize    int64
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	// RateLimiter limits /api requests per client IP. Nil disables it.
	RateLimiter *middleware.RateLimiter
	Metrics     MetricsExporter
}

// NewEngine builds the gin engine with middleware and all relay routes.
//
// The webhook route sits outside /api so that it is not subject to the JSON
// body limit; it enforces its own payload cap before verification.
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
	)
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	engine.Use(
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	engine.GET("/", h.System.Root)
	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.POST("/webhook/stripe", h.Webhook.HandleStripeWebhook)

	api := NewRouter(engine)
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.MaxBodySize > 0 {
		api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	api.Register(NewDomainGroup("shipping", "/shipping").
		GET("/:reference", h.Shipping.GetRates))
	api.Register(NewDomainGroup("checkout", "/checkout").
		POST("", h.Checkout.CreateCheckout))
	api.Setup()
	log.Debug("API routes registered", zap.Strings("groups", api.Groups()))

	return engine, nil
}
