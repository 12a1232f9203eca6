package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/wanderlust-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/wanderlust-backend/api/controllers/webhooks"
	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/redis"
)

const intentRateLimitName = "payment-intent"

// RedisStore is the redis surface the HTTP layer needs: readiness, idempotent
// replays and fixed-window counters.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

type Deps struct {
	DB       db.Pinger
	Redis    RedisStore
	Gatherer prometheus.Gatherer

	Intents  controllers.IntentService
	Quotes   controllers.QuoteService
	Bookings controllers.BookingService
	Items    pricing.ItemStore
	Geocoder controllers.GeocodeService

	StripeSigning        webhookcontrollers.SigningSecretProvider
	StripeWebhookService webhookcontrollers.StripeWebhookService
	StripeWebhookGuard   webhookcontrollers.WebhookGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	intentPolicy := middleware.NewRateLimitPolicy(
		intentRateLimitName,
		cfg.RateLimit.IntentWindow,
		cfg.RateLimit.IntentIPLimit,
		cfg.RateLimit.IntentUserLimit,
	)
	idempotent := middleware.Idempotency(deps.Redis, cfg.Booking.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(
			middleware.RateLimit(intentPolicy, deps.Redis, logg),
			idempotent,
		).Post("/payment-intent", controllers.CreatePaymentIntent(deps.Intents, logg))

		r.Get("/quote", controllers.Quote(deps.Quotes, logg))
		r.Get("/geocode", controllers.Geocode(deps.Geocoder, logg))

		r.With(idempotent).Post("/bookings", controllers.RecordBooking(deps.Bookings, logg))
		r.Get("/bookings", controllers.ListBookings(deps.Bookings, logg))
		r.Get("/bookings/{bookingId}", controllers.GetBooking(deps.Bookings, logg))
		r.Get("/bookings/{bookingId}/receipt", controllers.BookingReceipt(cfg.Booking, deps.Bookings, deps.Items, logg))

		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(
			deps.StripeWebhookService,
			deps.StripeSigning,
			deps.StripeWebhookGuard,
			logg,
		))
	})

	return r
}
