package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/internal/bookings"
	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, counters: map[string]int64{}}
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryRedis) RateLimitKey(scope string) string {
	return "rl:" + scope
}

type countingIntents struct {
	mu    sync.Mutex
	calls int
}

func (c *countingIntents) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &payments.Intent{
		ClientSecret:    fmt.Sprintf("pi_%d_secret_x", c.calls),
		PaymentIntentID: fmt.Sprintf("pi_%d", c.calls),
		Amount:          129900,
	}, nil
}

type stubQuotes struct{}

func (stubQuotes) Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) pricing.Quote {
	return pricing.Quote{ItemType: itemType, ItemID: itemID, Travelers: travelers, SubtotalCents: 129900}
}

type stubBookings struct{}

func (stubBookings) RecordBooking(ctx context.Context, input bookings.RecordInput) (string, error) {
	return "3f6c1d2e-9a41-4c55-8f0e-2b1a7c9d4e10", nil
}

func (stubBookings) Get(ctx context.Context, id string) (*bookings.Booking, error) {
	return &bookings.Booking{ID: id, ItemType: enums.ItemTypeHotel, ItemID: "h1", Travelers: 1, AmountCents: 100}, nil
}

func (stubBookings) ListByUser(ctx context.Context, userID, cursor string, limit int) (*bookings.BookingList, error) {
	return &bookings.BookingList{Bookings: []bookings.Booking{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		Booking: config.BookingConfig{
			IdempotencyTTL: time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			IntentWindow:    time.Minute,
			IntentIPLimit:   3,
			IntentUserLimit: 0,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

type testEnv struct {
	router  http.Handler
	intents *countingIntents
	redis   *memoryRedis
}

func newTestEnv(cfg *config.Config) testEnv {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	m.IncIntent("created")

	env := testEnv{intents: &countingIntents{}, redis: newMemoryRedis()}
	env.router = NewRouter(cfg, logg, Deps{
		DB:       stubPinger{},
		Redis:    env.redis,
		Gatherer: reg,
		Intents:  env.intents,
		Quotes:   stubQuotes{},
		Bookings: stubBookings{},
	})
	return env
}

func do(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const intentBody = `{"itemId":"santorini","itemType":"destination","travelers":1,"userId":"user_1"}`

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(testConfig())
	for _, path := range []string{"/health/live", "/health/ready"} {
		if rec := do(env.router, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestPaymentIntentWithoutKeyIsNotDeduplicated(t *testing.T) {
	env := newTestEnv(testConfig())
	for i := 0; i < 2; i++ {
		rec := do(env.router, http.MethodPost, "/api/payment-intent", intentBody, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	}
	if env.intents.calls != 2 {
		t.Fatalf("expected two intents without an idempotency key, got %d", env.intents.calls)
	}
}

func TestPaymentIntentIdempotentReplay(t *testing.T) {
	env := newTestEnv(testConfig())
	headers := map[string]string{middleware.HeaderIdempotencyKey: "key-1"}

	first := do(env.router, http.MethodPost, "/api/payment-intent", intentBody, headers)
	second := do(env.router, http.MethodPost, "/api/payment-intent", intentBody, headers)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("unexpected statuses %d/%d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body, got %q vs %q", first.Body.String(), second.Body.String())
	}
	if env.intents.calls != 1 {
		t.Fatalf("expected a single processor call, got %d", env.intents.calls)
	}

	conflict := do(env.router, http.MethodPost, "/api/payment-intent",
		`{"itemId":"bali","itemType":"destination","travelers":1,"userId":"user_1"}`, headers)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with a different body, got %d", conflict.Code)
	}
}

func TestPaymentIntentRateLimited(t *testing.T) {
	env := newTestEnv(testConfig())
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = do(env.router, http.MethodPost, "/api/payment-intent", intentBody, nil)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the ip limit, got %d", last.Code)
	}
	if env.intents.calls != 3 {
		t.Fatalf("expected three intents before limiting, got %d", env.intents.calls)
	}
}

func TestBookingRoutes(t *testing.T) {
	env := newTestEnv(testConfig())

	rec := do(env.router, http.MethodPost, "/api/bookings",
		`{"userId":"u","itemId":"h1","itemType":"hotel","travelers":1,"amount":100,"paymentIntentId":"pi_1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := do(env.router, http.MethodGet, "/api/bookings?userId=u", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", rec.Code)
	}
	if rec := do(env.router, http.MethodGet, "/api/bookings/3f6c1d2e-9a41-4c55-8f0e-2b1a7c9d4e10", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for get, got %d", rec.Code)
	}
	if rec := do(env.router, http.MethodGet, "/api/quote?itemType=hotel&itemId=h1", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for quote, got %d", rec.Code)
	}
}

func TestGeocodeWithoutProviderIsUnavailable(t *testing.T) {
	env := newTestEnv(testConfig())
	if rec := do(env.router, http.MethodGet, "/api/geocode?q=Santorini", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(testConfig())
	rec := do(env.router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wanderlust_payment_intents_total") {
		t.Fatalf("expected intent counter in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(testConfig())
	rec := do(env.router, http.MethodOptions, "/api/payment-intent", "", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(testConfig())
	if rec := do(env.router, http.MethodGet, "/api/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
