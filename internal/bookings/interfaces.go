package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/pagination"
)

// Repository defines persistence operations for the bookings table.
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string, params pagination.Params) ([]models.Booking, error)
}

type Metrics interface {
	IncBookingRecord(outcome string)
}
