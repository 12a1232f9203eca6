package types

// PaymentIntentRequest is the body of POST /api/payment-intent.
type PaymentIntentRequest struct {
	ItemID    string `json:"itemId" validate:"required,max=128"`
	ItemType  string `json:"itemType" validate:"required"`
	Travelers int    `json:"travelers" validate:"required,min=1,max=50"`
	Dates     string `json:"dates" validate:"max=256"`
	UserID    string `json:"userId" validate:"max=128"`
}

// RecordBookingRequest is the body of POST /api/bookings, sent after the
// processor reports a successful confirmation.
type RecordBookingRequest struct {
	UserID          string `json:"userId" validate:"required,max=128"`
	ItemID          string `json:"itemId" validate:"required,max=128"`
	ItemType        string `json:"itemType" validate:"required"`
	Travelers       int    `json:"travelers" validate:"required,min=1,max=50"`
	Dates           string `json:"dates" validate:"max=256"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	PaymentIntentID string `json:"paymentIntentId" validate:"max=255"`
}

// RecordBookingResponse carries the id of the inserted booking.
type RecordBookingResponse struct {
	BookingID string `json:"bookingId"`
}
