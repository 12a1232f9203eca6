package config

// EnvPrefix is empty because every field carries its full WANDERLUST_* name.
const EnvPrefix = ""

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "WANDERLUST_APP_ENV"
	EnvPort     = "WANDERLUST_APP_PORT"
	EnvLogLevel = "WANDERLUST_LOG_LEVEL"

	EnvDBDSN      = "WANDERLUST_DB_DSN"
	EnvDBHost     = "WANDERLUST_DB_HOST"
	EnvDBUser     = "WANDERLUST_DB_USER"
	EnvDBPassword = "WANDERLUST_DB_PASSWORD"
	EnvDBName     = "WANDERLUST_DB_NAME"
	EnvUseSQLite  = "WANDERLUST_USE_SQLITE"
	EnvSQLitePath = "WANDERLUST_SQLITE_PATH"

	EnvRedisURL = "WANDERLUST_REDIS_URL"

	EnvStripeAPIKey         = "WANDERLUST_STRIPE_API_KEY"
	EnvStripeSecret         = "WANDERLUST_STRIPE_SECRET"
	EnvStripePublishableKey = "WANDERLUST_STRIPE_PUBLISHABLE_KEY"

	EnvBookingCurrency     = "WANDERLUST_BOOKING_CURRENCY"
	EnvBookingFallbackUnit = "WANDERLUST_BOOKING_FALLBACK_UNIT_PRICE_CENTS"
	EnvCORSAllowedOrigins  = "WANDERLUST_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
