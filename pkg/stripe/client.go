package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired         = errors.New("stripe api key is required")
	errSecretRequired         = errors.New("stripe webhook secret is required")
	errPublishableKeyRequired = errors.New("stripe publishable key is required")
	errInvalidStripeEnv       = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps Stripe's API client plus env-specific metadata. It holds the
// secret key and is only ever used server-side.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
}

// Option tweaks the backend used by a client. Tests point it at httptest servers.
type Option func(*stripe.BackendConfig)

// WithBaseURL overrides the API host.
func WithBaseURL(url string) Option {
	return func(cfg *stripe.BackendConfig) {
		if strings.TrimSpace(url) != "" {
			cfg.URL = stripe.String(strings.TrimRight(url, "/"))
		}
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *stripe.BackendConfig) {
		if client != nil {
			cfg.HTTPClient = client
		}
	}
}

// NewClient initializes Stripe with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey, backendOptions(opts)...)

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:           api,
		environment:   env,
		signingSecret: signingSecret,
	}, nil
}

// CreatePaymentIntent creates an intent with the secret key.
func (c *Client) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("stripe client not initialized")
	}
	return c.api.V1PaymentIntents.Create(ctx, params)
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// PublicClient talks to Stripe with the publishable key, exactly as a
// browser does. It can confirm an intent only when given its client secret.
type PublicClient struct {
	api         *stripe.Client
	environment string
}

// NewPublicClient builds a publishable-key client. timeout bounds each call.
func NewPublicClient(cfg config.StripeConfig, timeout time.Duration, opts ...Option) (*PublicClient, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(cfg.PublishableKey)
	if key == "" {
		return nil, errPublishableKeyRequired
	}
	if err := validatePublishableKey(env, key); err != nil {
		return nil, err
	}

	if timeout > 0 {
		opts = append([]Option{WithHTTPClient(&http.Client{Timeout: timeout})}, opts...)
	}

	return &PublicClient{
		api:         stripe.NewClient(key, backendOptions(opts)...),
		environment: env,
	}, nil
}

// ConfirmPaymentIntent confirms the intent behind clientSecret with the given
// payment method. returnURL is forwarded for redirect-based methods.
func (c *PublicClient) ConfirmPaymentIntent(ctx context.Context, clientSecret, paymentMethod, returnURL string) (*stripe.PaymentIntent, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("stripe public client not initialized")
	}
	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}
	params.AddExtra("client_secret", clientSecret)

	return c.api.V1PaymentIntents.Confirm(ctx, intentID, params)
}

// Environment reports the normalized Stripe environment in use.
func (c *PublicClient) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(strings.TrimSpace(secret), "_secret_")
	if !ok || !strings.HasPrefix(id, "pi_") || len(id) <= len("pi_") {
		return "", errors.New("malformed payment intent client secret")
	}
	return id, nil
}

// ErrorMessage returns the human-readable message Stripe attached to err,
// falling back to err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

func backendOptions(opts []Option) []stripe.ClientOption {
	if len(opts) == 0 {
		return nil
	}
	cfg := &stripe.BackendConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return []stripe.ClientOption{stripe.WithBackends(stripe.NewBackendsWithConfig(cfg))}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}

func validatePublishableKey(env, key string) error {
	if strings.HasPrefix(key, "pk_"+env) {
		return nil
	}
	return fmt.Errorf("stripe environment %q requires a pk_%s publishable key", env, env)
}
