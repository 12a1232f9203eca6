// Package confirmation confirms a payment intent from the customer's side,
// using only the intent's client secret.
package confirmation

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Outcome is the processor's verdict for one confirmation attempt.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota + 1
	OutcomeFailed
	OutcomeRequiresAction
)

// Result carries the verdict and, for anything but success, the processor's
// message for the customer.
type Result struct {
	Outcome Outcome
	Message string
}

// Confirmer asks the processor to confirm an intent with a payment method.
// A transport or processor error is returned as err; a declined or
// incomplete confirmation is reported through Result.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret, paymentMethod string) (Result, error)
}

// ConfirmationError is shown to the customer verbatim; the element remains usable.
type ConfirmationError struct {
	Message string
	Outcome Outcome
	cause   error
}

func (e *ConfirmationError) Error() string {
	return e.Message
}

func (e *ConfirmationError) Unwrap() error {
	return e.cause
}

var (
	ErrClientSecretRequired  = errors.New("client secret is required")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrSubmitInFlight        = errors.New("payment submission already in progress")
)

const (
	defaultFailureMessage = "Your payment could not be completed."
	requiresActionMessage = "This payment needs additional authentication that cannot be completed here."
)

// PaymentElement is bound to one intent's client secret. onSuccess runs
// after each successful confirmation and receives no payload.
type PaymentElement struct {
	clientSecret string
	confirmer    Confirmer
	onSuccess    func(ctx context.Context)

	mu       sync.Mutex
	inFlight bool
}

func NewPaymentElement(clientSecret string, confirmer Confirmer, onSuccess func(ctx context.Context)) (*PaymentElement, error) {
	if strings.TrimSpace(clientSecret) == "" {
		return nil, ErrClientSecretRequired
	}
	if confirmer == nil {
		return nil, errors.New("confirmer is required")
	}
	return &PaymentElement{
		clientSecret: clientSecret,
		confirmer:    confirmer,
		onSuccess:    onSuccess,
	}, nil
}

// ClientSecret returns the secret the element is bound to.
func (e *PaymentElement) ClientSecret() string {
	return e.clientSecret
}

// Submit confirms the intent with paymentMethod. Failures come back as a
// *ConfirmationError and the element can be submitted again.
func (e *PaymentElement) Submit(ctx context.Context, paymentMethod string) error {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return &ConfirmationError{Message: ErrPaymentMethodRequired.Error(), Outcome: OutcomeFailed, cause: ErrPaymentMethodRequired}
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	e.inFlight = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	res, err := e.confirmer.Confirm(ctx, e.clientSecret, paymentMethod)
	if err != nil {
		var confErr *ConfirmationError
		if errors.As(err, &confErr) {
			return confErr
		}
		return &ConfirmationError{Message: err.Error(), Outcome: OutcomeFailed, cause: err}
	}

	switch res.Outcome {
	case OutcomeSucceeded:
		if e.onSuccess != nil {
			e.onSuccess(ctx)
		}
		return nil
	case OutcomeRequiresAction:
		return &ConfirmationError{Message: messageOr(res.Message, requiresActionMessage), Outcome: OutcomeRequiresAction}
	default:
		return &ConfirmationError{Message: messageOr(res.Message, defaultFailureMessage), Outcome: OutcomeFailed}
	}
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
