package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/wanderlust-backend/api/routes"
	"github.com/angelmondragon/wanderlust-backend/internal/bookings"
	"github.com/angelmondragon/wanderlust-backend/internal/catalog"
	"github.com/angelmondragon/wanderlust-backend/internal/geocode"
	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	stripewebhook "github.com/angelmondragon/wanderlust-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
	"github.com/angelmondragon/wanderlust-backend/pkg/metrics"
	"github.com/angelmondragon/wanderlust-backend/pkg/migrate"
	"github.com/angelmondragon/wanderlust-backend/pkg/redis"
	"github.com/angelmondragon/wanderlust-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	resolver, err := pricing.NewResolver(pricing.Options{
		Static:            pricing.DefaultStaticTable(),
		Store:             catalogRepo,
		FallbackUnitCents: cfg.Booking.FallbackUnitPriceCents,
		ServiceFeeCents:   cfg.Booking.ServiceFeeCents,
		LookupTimeout:     cfg.Booking.PriceLookupTimeout,
		Metrics:           bookingMetrics,
		Logger:            logg,
	})
	if err != nil {
		return err
	}

	intentRepo := payments.NewRepository(dbClient.DB())
	var audit payments.AuditWriter
	if cfg.FeatureFlags.IntentAuditTrail {
		audit = intentRepo
	}
	intentService, err := payments.NewService(payments.ServiceParams{
		Pricer:    resolver,
		Processor: stripeClient,
		Audit:     audit,
		Metrics:   bookingMetrics,
		Logger:    logg,
		Currency:  cfg.Booking.Currency,
	})
	if err != nil {
		return err
	}

	recorder, err := bookings.NewRecorder(bookings.NewRepository(dbClient.DB()), bookingMetrics, logg)
	if err != nil {
		return err
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{Intents: intentRepo, Logger: logg})
	if err != nil {
		return err
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Booking.WebhookIdempotencyTTL, stripewebhook.Provider)
	if err != nil {
		return err
	}

	deps := routes.Deps{
		DB:                   dbClient,
		Redis:                redisClient,
		Gatherer:             registry,
		Intents:              intentService,
		Quotes:               resolver,
		Bookings:             recorder,
		Items:                catalogRepo,
		StripeSigning:        stripeClient,
		StripeWebhookService: webhookService,
		StripeWebhookGuard:   webhookGuard,
	}
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return err
		}
		deps.Geocoder = geocode.NewService(mapsClient, logg)
	} else {
		logg.Warn(ctx, "google maps api key not set, geocoding disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   id,
		"stripe_env": stripeClient.Environment(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
