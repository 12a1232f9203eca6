package bookings

import (
	"time"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/money"
)

// RecordInput is what the wizard knows once the processor reports success.
type RecordInput struct {
	UserID          string
	ItemID          string
	ItemType        enums.ItemType
	Travelers       int
	Dates           string
	AmountCents     int64
	PaymentIntentID string
}

// Booking is the API shape of a bookings row.
type Booking struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	ItemType        enums.ItemType      `json:"itemType"`
	ItemID          string              `json:"itemId"`
	Travelers       int                 `json:"travelers"`
	Dates           string              `json:"dates"`
	TotalPrice      string              `json:"totalPrice"`
	AmountCents     int64               `json:"amountCents"`
	Status          enums.BookingStatus `json:"status"`
	PaymentIntentID string              `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// BookingList wraps one page of a user's bookings.
type BookingList struct {
	Bookings   []Booking `json:"bookings"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

func fromModel(row models.Booking) Booking {
	out := Booking{
		ID:         row.ID.String(),
		UserID:     row.UserID,
		ItemType:   row.ItemType,
		ItemID:     row.ItemID(),
		Travelers:  row.Travelers,
		Dates:      row.Dates,
		TotalPrice: row.TotalPrice,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
	}
	if cents, err := money.CentsFromDecimalString(row.TotalPrice); err == nil {
		out.AmountCents = cents
	}
	if row.PaymentIntentID != nil {
		out.PaymentIntentID = *row.PaymentIntentID
	}
	return out
}
