package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appshipping "github.com/shiprelay/backend/internal/application/shipping"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/infrastructure/cache"
	"github.com/shiprelay/backend/internal/infrastructure/config"
	"github.com/shiprelay/backend/internal/infrastructure/event"
	"github.com/shiprelay/backend/internal/infrastructure/logger"
	"github.com/shiprelay/backend/internal/infrastructure/payment"
	"github.com/shiprelay/backend/internal/infrastructure/shippo"
	"github.com/shiprelay/backend/internal/infrastructure/storage"
	"github.com/shiprelay/backend/internal/infrastructure/telemetry"
	"github.com/shiprelay/backend/internal/interfaces/http/handler"
	"github.com/shiprelay/backend/internal/interfaces/http/middleware"
	"github.com/shiprelay/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shipping relay",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Relay stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// run wires the relay and serves until ctx is canceled
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	metrics := telemetry.NewRelayMetrics()

	provider, err := shippo.NewClient(shippo.Config{
		BaseURL:    cfg.Shippo.BaseURL,
		APIToken:   cfg.Shippo.APIToken,
		AuthScheme: cfg.Shippo.AuthScheme,
		Timeout:    cfg.Shippo.Timeout,
	}, shippo.WithLogger(log.Named("shippo")))
	if err != nil {
		return err
	}

	successURL, cancelURL := cfg.CheckoutURLs()
	gateway, err := payment.NewStripeGateway(&payment.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		DefaultCurrency: cfg.Stripe.DefaultCurrency,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
		APIBaseURL:      cfg.Stripe.APIBaseURL,
	}, nil, log)
	if err != nil {
		return err
	}

	var store shared.IdempotencyStore
	idempotencyKind := ""
	if cfg.Idempotency.Enabled {
		store, err = cache.NewIdempotencyStore(ctx, cfg.Idempotency, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotencyKind = store.Kind()
	} else {
		log.Warn("Idempotency disabled, redelivered webhooks will buy duplicate labels")
	}

	fulfillmentCfg := appshipping.FulfillmentServiceConfig{
		Gateway:         gateway,
		Provider:        provider,
		Idempotency:     store,
		IdempotencyTTL:  cfg.Idempotency.TTL,
		PurchaseTimeout: cfg.Shippo.Timeout,
		Metrics:         metrics,
		Logger:          log.Named("fulfillment"),
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3LabelArchive(ctx, cfg.Storage, storage.WithLogger(log.Named("archive")))
		if err != nil {
			return err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return err
		}
		fulfillmentCfg.Documents = provider
		fulfillmentCfg.Archive = archive
		log.Info("Label archive enabled", zap.String("bucket", archive.Bucket()))
	}

	if cfg.Kafka.Enabled {
		publisher, err := event.NewKafkaPublisher(cfg.Kafka, cfg.App.Name, log.Named("kafka"))
		if err != nil {
			return err
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		fulfillmentCfg.Publisher = publisher
		log.Info("Fulfillment events enabled", zap.String("topic", cfg.Kafka.Topic))
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	engine, err := router.NewEngine(router.EngineConfig{
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
		Security:       security,
		Tracing: middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        tp.IsEnabled(),
			TracerProvider: tp.Provider(),
		},
		RateLimiter: limiter,
		Metrics:     metrics,
	}, router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, version, idempotencyKind),
		Shipping: handler.NewShippingHandler(appshipping.NewRateService(provider, metrics, log.Named("rates"))),
		Checkout: handler.NewCheckoutHandler(appshipping.NewCheckoutService(appshipping.CheckoutServiceConfig{
			Provider:        provider,
			Gateway:         gateway,
			SuccessURL:      successURL,
			CancelURL:       cancelURL,
			DefaultCurrency: cfg.Stripe.DefaultCurrency,
			Metrics:         metrics,
			Logger:          log.Named("checkout"),
		})),
		Webhook: handler.NewStripeWebhookHandler(appshipping.NewFulfillmentService(fulfillmentCfg)),
	}, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
