package confirmation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"
)

type stubConfirmer struct {
	result Result
	err    error
	calls  int
	secret string
	block  chan struct{}
}

func (s *stubConfirmer) Confirm(ctx context.Context, clientSecret, paymentMethod string) (Result, error) {
	s.calls++
	s.secret = clientSecret
	if s.block != nil {
		<-s.block
	}
	return s.result, s.err
}

func TestSubmitSuccessInvokesCallback(t *testing.T) {
	confirmer := &stubConfirmer{result: Result{Outcome: OutcomeSucceeded}}
	called := 0
	el, err := NewPaymentElement("pi_1_secret_2", confirmer, func(context.Context) { called++ })
	if err != nil {
		t.Fatalf("new element: %v", err)
	}

	if err := el.Submit(context.Background(), "pm_card_visa"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected success callback once, got %d", called)
	}
	if confirmer.secret != "pi_1_secret_2" {
		t.Fatalf("element must confirm with its own secret, got %q", confirmer.secret)
	}
}

func TestSubmitFailureSurfacesProcessorMessage(t *testing.T) {
	confirmer := &stubConfirmer{result: Result{Outcome: OutcomeFailed, Message: "Your card was declined."}}
	called := false
	el, _ := NewPaymentElement("pi_1_secret_2", confirmer, func(context.Context) { called = true })

	err := el.Submit(context.Background(), "pm_card_chargeDeclined")
	var confErr *ConfirmationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfirmationError, got %v", err)
	}
	if confErr.Message != "Your card was declined." {
		t.Fatalf("message must be verbatim, got %q", confErr.Message)
	}
	if called {
		t.Fatal("callback must not run on failure")
	}

	confirmer.result = Result{Outcome: OutcomeSucceeded}
	if err := el.Submit(context.Background(), "pm_card_visa"); err != nil {
		t.Fatalf("element must stay usable after a decline: %v", err)
	}
	if !called {
		t.Fatal("expected callback after retry succeeded")
	}
}

func TestSubmitRequiresActionAndTransportErrors(t *testing.T) {
	el, _ := NewPaymentElement("pi_1_secret_2", &stubConfirmer{result: Result{Outcome: OutcomeRequiresAction}}, nil)
	err := el.Submit(context.Background(), "pm_card_threeDSecure2Required")
	var confErr *ConfirmationError
	if !errors.As(err, &confErr) || confErr.Outcome != OutcomeRequiresAction {
		t.Fatalf("expected requires-action error, got %v", err)
	}

	boom := errors.New("network unreachable")
	el, _ = NewPaymentElement("pi_1_secret_2", &stubConfirmer{err: boom}, nil)
	err = el.Submit(context.Background(), "pm_card_visa")
	if !errors.As(err, &confErr) || confErr.Message != "network unreachable" || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	if _, err := NewPaymentElement(" ", &stubConfirmer{}, nil); !errors.Is(err, ErrClientSecretRequired) {
		t.Fatalf("expected client secret error, got %v", err)
	}
	if _, err := NewPaymentElement("pi_1_secret_2", nil, nil); err == nil {
		t.Fatal("expected confirmer error")
	}

	confirmer := &stubConfirmer{}
	el, _ := NewPaymentElement("pi_1_secret_2", confirmer, nil)
	if err := el.Submit(context.Background(), ""); !errors.Is(err, ErrPaymentMethodRequired) {
		t.Fatalf("expected payment method error, got %v", err)
	}
	if confirmer.calls != 0 {
		t.Fatal("processor must not be called without a payment method")
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	confirmer := &stubConfirmer{result: Result{Outcome: OutcomeSucceeded}, block: make(chan struct{})}
	el, _ := NewPaymentElement("pi_1_secret_2", confirmer, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = el.Submit(context.Background(), "pm_card_visa")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		el.mu.Lock()
		busy := el.inFlight
		el.mu.Unlock()
		if busy {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := el.Submit(context.Background(), "pm_card_visa"); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}
	close(confirmer.block)
	wg.Wait()
}

func TestResultFromIntent(t *testing.T) {
	cases := []struct {
		pi   *stripe.PaymentIntent
		want Outcome
		msg  string
	}{
		{&stripe.PaymentIntent{Status: stripe.PaymentIntentStatusSucceeded}, OutcomeSucceeded, ""},
		{&stripe.PaymentIntent{Status: stripe.PaymentIntentStatusProcessing}, OutcomeSucceeded, ""},
		{&stripe.PaymentIntent{Status: stripe.PaymentIntentStatusRequiresAction}, OutcomeRequiresAction, ""},
		{&stripe.PaymentIntent{
			Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
			LastPaymentError: &stripe.Error{Msg: "Your card has insufficient funds."},
		}, OutcomeFailed, "Your card has insufficient funds."},
		{nil, OutcomeFailed, ""},
	}
	for _, tc := range cases {
		got := resultFromIntent(tc.pi)
		if got.Outcome != tc.want || got.Message != tc.msg {
			t.Fatalf("resultFromIntent = %+v, want outcome %d msg %q", got, tc.want, tc.msg)
		}
	}
}

type stubIntentClient struct {
	pi  *stripe.PaymentIntent
	err error
	url string
}

func (s *stubIntentClient) ConfirmPaymentIntent(ctx context.Context, clientSecret, paymentMethod, returnURL string) (*stripe.PaymentIntent, error) {
	s.url = returnURL
	return s.pi, s.err
}

func TestStripeConfirmer(t *testing.T) {
	client := &stubIntentClient{pi: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusSucceeded}}
	c := NewStripeConfirmer(client, "https://wanderlust.travel/bookings/return")
	res, err := c.Confirm(context.Background(), "pi_1_secret_2", "pm_card_visa")
	if err != nil || res.Outcome != OutcomeSucceeded {
		t.Fatalf("unexpected result %+v %v", res, err)
	}
	if client.url != "https://wanderlust.travel/bookings/return" {
		t.Fatalf("return url not forwarded: %q", client.url)
	}

	client.err = &stripe.Error{Msg: "Your card was declined."}
	_, err = c.Confirm(context.Background(), "pi_1_secret_2", "pm_card_visa")
	var confErr *ConfirmationError
	if !errors.As(err, &confErr) || confErr.Message != "Your card was declined." {
		t.Fatalf("expected processor message, got %v", err)
	}
}
