package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/bookings"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/pagination"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

type BookingService interface {
	RecordBooking(ctx context.Context, input bookings.RecordInput) (string, error)
	Get(ctx context.Context, id string) (*bookings.Booking, error)
	ListByUser(ctx context.Context, userID, cursor string, limit int) (*bookings.BookingList, error)
}

// RecordBooking inserts a confirmed booking once the client reports that the
// processor accepted the payment.
func RecordBooking(svc BookingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload types.RecordBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		itemType, err := parseItemType(payload.ItemType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithUserID(ctx, payload.UserID)
			if payload.PaymentIntentID != "" {
				ctx = logg.WithPaymentIntentID(ctx, payload.PaymentIntentID)
			}
		}
		id, err := svc.RecordBooking(ctx, bookings.RecordInput{
			UserID:          payload.UserID,
			ItemID:          validators.SanitizeString(payload.ItemID, 128),
			ItemType:        itemType,
			Travelers:       payload.Travelers,
			Dates:           validators.SanitizeString(payload.Dates, 256),
			AmountCents:     payload.Amount,
			PaymentIntentID: payload.PaymentIntentID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, types.RecordBookingResponse{BookingID: id})
	}
}

func GetBooking(svc BookingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		booking, err := svc.Get(ctx, chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// ListBookings pages a user's bookings via ?userId=&cursor=&limit=.
func ListBookings(svc BookingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}
		userID, err := validators.RequireQuery(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		list, err := svc.ListByUser(ctx, userID, r.URL.Query().Get("cursor"), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
