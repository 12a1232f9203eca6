package confirmation

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/angelmondragon/wanderlust-backend/pkg/stripe"
)

// intentConfirmer is satisfied by *pkgstripe.PublicClient.
type intentConfirmer interface {
	ConfirmPaymentIntent(ctx context.Context, clientSecret, paymentMethod, returnURL string) (*stripe.PaymentIntent, error)
}

// StripeConfirmer confirms intents with the publishable key, as the browser
// would. The server is never involved.
type StripeConfirmer struct {
	client    intentConfirmer
	returnURL string
}

func NewStripeConfirmer(client intentConfirmer, returnURL string) *StripeConfirmer {
	return &StripeConfirmer{client: client, returnURL: returnURL}
}

func (c *StripeConfirmer) Confirm(ctx context.Context, clientSecret, paymentMethod string) (Result, error) {
	pi, err := c.client.ConfirmPaymentIntent(ctx, clientSecret, paymentMethod, c.returnURL)
	if err != nil {
		return Result{}, &ConfirmationError{Message: pkgstripe.ErrorMessage(err), Outcome: OutcomeFailed, cause: err}
	}
	return resultFromIntent(pi), nil
}

func resultFromIntent(pi *stripe.PaymentIntent) Result {
	if pi == nil {
		return Result{Outcome: OutcomeFailed}
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return Result{Outcome: OutcomeSucceeded}
	case stripe.PaymentIntentStatusRequiresAction:
		return Result{Outcome: OutcomeRequiresAction}
	default:
		msg := ""
		if pi.LastPaymentError != nil {
			msg = pi.LastPaymentError.Msg
		}
		return Result{Outcome: OutcomeFailed, Message: msg}
	}
}
