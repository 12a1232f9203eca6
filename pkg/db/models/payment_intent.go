package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
)

// PaymentIntent is the local audit row for a processor-side intent. The
// booking flow never reads it.
type PaymentIntent struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StripePaymentIntentID string             `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	ItemType              enums.ItemType     `gorm:"column:item_type;not null"`
	ItemID                string             `gorm:"column:item_id;not null"`
	UserID                string             `gorm:"column:user_id;not null;default:''"`
	Travelers             int                `gorm:"column:travelers;not null"`
	AmountCents           int64              `gorm:"column:amount_cents;not null"`
	Currency              string             `gorm:"column:currency;not null"`
	Status                enums.IntentStatus `gorm:"column:status;not null;default:'created'"`
	FailureReason         *string            `gorm:"column:failure_reason"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentIntent) TableName() string { return "payment_intents" }

func (p *PaymentIntent) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
