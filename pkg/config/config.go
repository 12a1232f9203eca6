package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Booking      BookingConfig
	RateLimit    RateLimitConfig
	GoogleMaps   GoogleMapsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WANDERLUST_APP_ENV" required:"true"`
	Port         string `envconfig:"WANDERLUST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WANDERLUST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WANDERLUST_LOG_WARN_STACK" default:"false"`
	// PublicURL is where the CLI and receipts point customers back to.
	PublicURL       string        `envconfig:"WANDERLUST_PUBLIC_URL" default:"http://localhost:8080"`
	ShutdownTimeout time.Duration `envconfig:"WANDERLUST_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WANDERLUST_DB_DSN"`
	Driver string `envconfig:"WANDERLUST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WANDERLUST_DB_HOST"`
	LegacyPort     int    `envconfig:"WANDERLUST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WANDERLUST_DB_USER"`
	LegacyPassword string `envconfig:"WANDERLUST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WANDERLUST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WANDERLUST_DB_SSLMODE" default:"require"`

	SQLitePath string `envconfig:"WANDERLUST_SQLITE_PATH" default:"wanderlust.db"`

	MaxOpenConns    int           `envconfig:"WANDERLUST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WANDERLUST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WANDERLUST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WANDERLUST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WANDERLUST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WANDERLUST_REDIS_ADDR"`
	Password     string        `envconfig:"WANDERLUST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WANDERLUST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WANDERLUST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WANDERLUST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WANDERLUST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WANDERLUST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WANDERLUST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WANDERLUST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WANDERLUST_AUTO_MIGRATE" default:"false"`
	// IntentAuditTrail toggles the best-effort payment_intents write after intent creation.
	IntentAuditTrail bool `envconfig:"WANDERLUST_FEATURE_INTENT_AUDIT" default:"true"`
}

type StripeConfig struct {
	APIKey         string `envconfig:"WANDERLUST_STRIPE_API_KEY"`
	Secret         string `envconfig:"WANDERLUST_STRIPE_SECRET"`
	PublishableKey string `envconfig:"WANDERLUST_STRIPE_PUBLISHABLE_KEY"`
	Env            string `envconfig:"WANDERLUST_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type BookingConfig struct {
	Currency                string        `envconfig:"WANDERLUST_BOOKING_CURRENCY" default:"usd"`
	FallbackUnitPriceCents  int64         `envconfig:"WANDERLUST_BOOKING_FALLBACK_UNIT_PRICE_CENTS" default:"10000"`
	ServiceFeeCents         int64         `envconfig:"WANDERLUST_BOOKING_SERVICE_FEE_CENTS" default:"15000"`
	IdempotencyTTL          time.Duration `envconfig:"WANDERLUST_BOOKING_IDEMPOTENCY_TTL" default:"24h"`
	WebhookIdempotencyTTL   time.Duration `envconfig:"WANDERLUST_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
	PriceLookupTimeout      time.Duration `envconfig:"WANDERLUST_BOOKING_PRICE_LOOKUP_TIMEOUT" default:"3s"`
	ReceiptCompanyName      string        `envconfig:"WANDERLUST_RECEIPT_COMPANY_NAME" default:"Wanderlust Travel"`
	ReceiptSupportEmail     string        `envconfig:"WANDERLUST_RECEIPT_SUPPORT_EMAIL" default:"support@wanderlust.travel"`
	ConfirmationReturnURL   string        `envconfig:"WANDERLUST_CONFIRMATION_RETURN_URL"`
	ConfirmationHTTPTimeout time.Duration `envconfig:"WANDERLUST_CONFIRMATION_HTTP_TIMEOUT" default:"30s"`
}

type RateLimitConfig struct {
	IntentWindow    time.Duration `envconfig:"WANDERLUST_RATE_LIMIT_INTENT_WINDOW" default:"1m"`
	IntentIPLimit   int           `envconfig:"WANDERLUST_RATE_LIMIT_INTENT_IP_LIMIT" default:"30"`
	IntentUserLimit int           `envconfig:"WANDERLUST_RATE_LIMIT_INTENT_USER_LIMIT" default:"10"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"WANDERLUST_GOOGLE_MAPS_API_KEY"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WANDERLUST_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if strings.TrimSpace(db.SQLitePath) == "" {
			return fmt.Errorf("%s is required when %s is enabled", EnvSQLitePath, EnvUseSQLite)
		}
		return nil
	}
	if db.Driver == "" {
		db.Driver = DriverPostgres
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

// ClientConfig is the subset read by the booking CLI, which needs neither a
// database nor redis.
type ClientConfig struct {
	APIURL  string `envconfig:"WANDERLUST_PUBLIC_URL" default:"http://localhost:8080"`
	Stripe  StripeConfig
	Booking BookingConfig
}

func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	return &cfg, nil
}
