// Package stripewebhook applies processor payment intent events to the local
// intent audit trail. It never creates or changes bookings.
package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

type intentRepository interface {
	UpdateStatus(ctx context.Context, intentID string, status enums.IntentStatus, failureReason *string) (bool, error)
}

type ServiceParams struct {
	Intents intentRepository
	Logger  *logger.Logger
}

type Service struct {
	intents intentRepository
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Intents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment intent repo required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{intents: params.Intents, logg: logg}, nil
}

// HandleEvent records the outcome carried by payment_intent.* events. Other
// event types are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var status enums.IntentStatus
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		status = enums.IntentStatusSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed:
		status = enums.IntentStatusFailed
	case stripe.EventTypePaymentIntentCanceled:
		status = enums.IntentStatusCanceled
	default:
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if pi.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	var reason *string
	if status == enums.IntentStatusFailed && pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		msg := pi.LastPaymentError.Msg
		reason = &msg
	}

	changed, err := s.intents.UpdateStatus(ctx, pi.ID, status, reason)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent status")
	}

	ctx = s.logg.WithPaymentIntentID(ctx, pi.ID)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event_type": string(event.Type),
		"status":     status.String(),
	})
	if !changed {
		s.logg.Info(ctx, "stripe_webhook.intent_unchanged")
		return nil
	}
	s.logg.Info(ctx, "stripe_webhook.intent_updated")
	return nil
}
