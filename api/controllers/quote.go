package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

type QuoteService interface {
	Quote(ctx context.Context, itemType enums.ItemType, itemID string, travelers int) pricing.Quote
}

// Quote returns the review-step breakdown for ?itemType=&itemId=&travelers=.
func Quote(svc QuoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing unavailable"))
			return
		}

		rawType, err := validators.RequireQuery(r, "itemType")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		itemType, err := parseItemType(rawType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		itemID, err := validators.RequireQuery(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		travelers, err := validators.ParseQueryInt(r, "travelers", 1, 1, pricing.MaxTravelers)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.Quote(ctx, itemType, validators.SanitizeString(itemID, 128), travelers))
	}
}
