package payments

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/internal/repo"
	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
)

// Repository stores the payment_intents audit trail.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts an audit row. A second row for the same processor intent is
// a CodeConflict.
func (r *Repository) Create(ctx context.Context, record *models.PaymentIntent) error {
	if err := r.DB(ctx).Create(record).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment intent already recorded")
		}
		return fmt.Errorf("insert payment intent audit row: %w", err)
	}
	return nil
}

// FindByStripeID returns the audit row for a processor intent id, or nil.
func (r *Repository) FindByStripeID(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	return repo.FirstOrNil[models.PaymentIntent](r.DB(ctx).Where("stripe_payment_intent_id = ?", intentID))
}

// UpdateStatus moves the audit row to status. It reports whether a row was
// changed; terminal rows are left alone.
func (r *Repository) UpdateStatus(ctx context.Context, intentID string, status enums.IntentStatus, failureReason *string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.PaymentIntent{}).
		Where("stripe_payment_intent_id = ?", intentID).
		Where("status NOT IN ?", []enums.IntentStatus{enums.IntentStatusSucceeded, enums.IntentStatusCanceled}).
		Updates(map[string]any{
			"status":         status,
			"failure_reason": failureReason,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update payment intent status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
