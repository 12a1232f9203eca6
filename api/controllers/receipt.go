package controllers

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/internal/pricing"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/receipt"
)

// BookingReceipt renders a booking as a PDF. Catalog details are optional;
// a missing or unreadable item prints the id instead of its name.
func BookingReceipt(cfg config.BookingConfig, svc BookingService, items pricing.ItemStore, logg *logger.Logger) http.HandlerFunc {
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

		data := receipt.Data{
			CompanyName:     cfg.ReceiptCompanyName,
			SupportEmail:    cfg.ReceiptSupportEmail,
			BookingID:       booking.ID,
			PaymentIntentID: booking.PaymentIntentID,
			ItemType:        booking.ItemType.String(),
			ItemName:        booking.ItemID,
			Travelers:       booking.Travelers,
			Dates:           booking.Dates,
			AmountCents:     booking.AmountCents,
			Status:          string(booking.Status),
			IssuedAt:        booking.CreatedAt,
		}
		if data.IssuedAt.IsZero() {
			data.IssuedAt = time.Now().UTC()
		}
		if items != nil {
			item, err := items.FindPricedItem(ctx, booking.ItemType, booking.ItemID)
			switch {
			case err != nil:
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "booking_id", booking.ID), "receipt.item_lookup_failed")
				}
			case item != nil:
				data.ItemName = item.Name
				data.Location = item.Location
			}
		}

		var buf bytes.Buffer
		if err := receipt.Render(&buf, data); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt"))
			return
		}
		err = responses.WriteBinary(w, "application/pdf", receipt.Filename(booking.ID), func(out io.Writer) error {
			_, err := buf.WriteTo(out)
			return err
		})
		if err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "booking_id", booking.ID), "receipt.write_failed")
		}
	}
}
