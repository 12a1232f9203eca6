package stripe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
)

func TestNewClientValidatesKeys(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StripeConfig
		ok   bool
	}{
		{"missing key", config.StripeConfig{Secret: "whsec"}, false},
		{"missing secret", config.StripeConfig{APIKey: "sk_test_1"}, false},
		{"live key in test env", config.StripeConfig{APIKey: "sk_live_1", Secret: "whsec"}, false},
		{"bad env", config.StripeConfig{APIKey: "sk_test_1", Secret: "whsec", Env: "staging"}, false},
		{"valid", config.StripeConfig{APIKey: "sk_test_1", Secret: "whsec"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
			if tc.ok && client.SigningSecret() != "whsec" {
				t.Fatalf("unexpected signing secret %q", client.SigningSecret())
			}
		})
	}
}

func TestNewPublicClientRequiresPublishableKey(t *testing.T) {
	if _, err := NewPublicClient(config.StripeConfig{}, 0); err == nil {
		t.Fatal("expected error without publishable key")
	}
	if _, err := NewPublicClient(config.StripeConfig{PublishableKey: "sk_test_1"}, 0); err == nil {
		t.Fatal("secret key must not be accepted as publishable")
	}
	client, err := NewPublicClient(config.StripeConfig{PublishableKey: "pk_test_1"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Environment() != "test" {
		t.Fatalf("unexpected env %q", client.Environment())
	}
}

func TestIntentIDFromClientSecret(t *testing.T) {
	id, err := IntentIDFromClientSecret("pi_3Nabc_secret_xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "pi_3Nabc" {
		t.Fatalf("unexpected id %q", id)
	}
	for _, bad := range []string{"", "pi_3Nabc", "seti_1_secret_2", "pi__secret_x"} {
		if _, err := IntentIDFromClientSecret(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	stripeErr := &stripe.Error{Msg: "Your card was declined."}
	if got := ErrorMessage(fmt.Errorf("confirm: %w", stripeErr)); got != "Your card was declined." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrorMessage(errors.New("timeout")); got != "timeout" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestConfirmPaymentIntentSendsClientSecret(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_123","object":"payment_intent","status":"succeeded","amount":259800}`)
	}))
	defer srv.Close()

	client, err := NewPublicClient(config.StripeConfig{PublishableKey: "pk_test_abc"}, 0, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	intent, err := client.ConfirmPaymentIntent(context.Background(), "pi_123_secret_456", "pm_card_visa", "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		t.Fatalf("unexpected status %q", intent.Status)
	}
	if gotPath != "/v1/payment_intents/pi_123/confirm" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotAuth, "pk_test_abc") {
		t.Fatalf("expected publishable key auth, got %q", gotAuth)
	}
	if gotForm.Get("client_secret") != "pi_123_secret_456" {
		t.Fatalf("client secret not forwarded: %v", gotForm)
	}
	if gotForm.Get("payment_method") != "pm_card_visa" {
		t.Fatalf("payment method not forwarded: %v", gotForm)
	}
}
