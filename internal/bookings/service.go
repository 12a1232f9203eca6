// Package bookings writes and reads booking rows.
package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/money"
	"github.com/angelmondragon/wanderlust-backend/pkg/pagination"
)

const (
	outcomeRecorded = "recorded"
	outcomeFailed   = "failed"
)

// Recorder persists confirmed bookings and serves them back.
type Recorder struct {
	repo    Repository
	metrics Metrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewRecorder(repo Repository, metrics Metrics, logg *logger.Logger) (*Recorder, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Recorder{
		repo:    repo,
		metrics: metrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// RecordBooking inserts one confirmed booking for the item and returns its id.
// It does not check the payment intent with the processor.
func (r *Recorder) RecordBooking(ctx context.Context, input RecordInput) (string, error) {
	input.ItemID = strings.TrimSpace(input.ItemID)
	input.UserID = strings.TrimSpace(input.UserID)
	if err := validateRecord(input); err != nil {
		r.count(outcomeFailed)
		return "", err
	}

	row := &models.Booking{
		UserID:     input.UserID,
		Travelers:  input.Travelers,
		Dates:      input.Dates,
		TotalPrice: money.FormatCents(input.AmountCents),
		Status:     enums.BookingStatusConfirmed,
		CreatedAt:  r.now().UTC(),
	}
	row.SetItem(input.ItemType, input.ItemID)
	if intentID := strings.TrimSpace(input.PaymentIntentID); intentID != "" {
		row.PaymentIntentID = &intentID
	}

	if err := r.repo.Create(ctx, row); err != nil {
		r.count(outcomeFailed)
		if db.IsCheckViolation(err, "") {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "booking violates a table constraint")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record booking")
	}

	r.count(outcomeRecorded)
	ctx = r.logg.WithPaymentIntentID(r.logg.WithUserID(ctx, input.UserID), input.PaymentIntentID)
	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"booking_id": row.ID.String(),
		"item_type":  input.ItemType.String(),
		"item_id":    input.ItemID,
	}), "bookings.recorded")
	return row.ID.String(), nil
}

// Get loads a single booking.
func (r *Recorder) Get(ctx context.Context, id string) (*Booking, error) {
	bookingID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking id")
	}
	row, err := r.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load booking")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	out := fromModel(*row)
	return &out, nil
}

// ListByUser pages through a user's bookings, newest first.
func (r *Recorder) ListByUser(ctx context.Context, userID, cursor string, limit int) (*BookingList, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	rows, err := r.repo.ListByUser(ctx, userID, pagination.Params{Limit: limit, Cursor: cursor})
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list bookings")
	}

	page := pagination.Trim(rows, limit, func(b models.Booking) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	out := &BookingList{Bookings: make([]Booking, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, row := range page.Items {
		out.Bookings = append(out.Bookings, fromModel(row))
	}
	return out, nil
}

func (r *Recorder) count(outcome string) {
	if r.metrics != nil {
		r.metrics.IncBookingRecord(outcome)
	}
}

func validateRecord(input RecordInput) error {
	details := map[string]string{}
	if input.UserID == "" {
		details["userId"] = "is required"
	}
	if input.ItemID == "" {
		details["itemId"] = "is required"
	}
	if !input.ItemType.IsValid() {
		details["itemType"] = "must be one of hotel, package, destination"
	}
	if input.Travelers < 1 {
		details["travelers"] = "must be at least 1"
	}
	if input.AmountCents <= 0 {
		details["amount"] = "must be positive"
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid booking").WithDetails(details)
}
