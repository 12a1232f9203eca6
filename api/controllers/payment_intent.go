package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/payments"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

type IntentService interface {
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error)
}

// CreatePaymentIntent prices the selected item and returns the client secret
// the browser needs to mount the payment element.
func CreatePaymentIntent(svc IntentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment intent service unavailable"))
			return
		}

		var payload types.PaymentIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemType, err := parseItemType(payload.ItemType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if payload.UserID != "" && logg != nil {
			ctx = logg.WithUserID(ctx, payload.UserID)
		}
		intent, err := svc.CreateIntent(ctx, payments.CreateIntentInput{
			ItemID:    validators.SanitizeString(payload.ItemID, 128),
			ItemType:  itemType,
			Travelers: payload.Travelers,
			Dates:     validators.SanitizeString(payload.Dates, 256),
			UserID:    payload.UserID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

func parseItemType(raw string) (enums.ItemType, error) {
	itemType, err := enums.ParseItemType(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itemType").
			WithDetails(map[string]any{"field": "itemType"})
	}
	return itemType, nil
}
