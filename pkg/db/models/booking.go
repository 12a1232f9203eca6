package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
)

// Booking is a paid reservation. Exactly one of HotelID, PackageID or
// DestinationID is set, matching ItemType.
type Booking struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID          string              `gorm:"column:user_id;not null"`
	HotelID         *string             `gorm:"column:hotel_id;check:bookings_single_item_chk,(CASE WHEN hotel_id IS NULL THEN 0 ELSE 1 END + CASE WHEN package_id IS NULL THEN 0 ELSE 1 END + CASE WHEN destination_id IS NULL THEN 0 ELSE 1 END) = 1"`
	PackageID       *string             `gorm:"column:package_id"`
	DestinationID   *string             `gorm:"column:destination_id"`
	ItemType        enums.ItemType      `gorm:"column:item_type;not null"`
	Travelers       int                 `gorm:"column:travelers;not null;check:bookings_travelers_chk,travelers >= 1"`
	Dates           string              `gorm:"column:dates;not null;default:''"`
	TotalPrice      string              `gorm:"column:total_price;not null"`
	Status          enums.BookingStatus `gorm:"column:status;not null;default:'pending';check:bookings_status_chk,status IN ('pending', 'confirmed')"`
	PaymentIntentID *string             `gorm:"column:payment_intent_id"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Booking) TableName() string { return "bookings" }

// BeforeCreate assigns an id when the database has no uuid default (sqlite).
func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ItemID returns whichever item column is populated.
func (b Booking) ItemID() string {
	for _, v := range []*string{b.HotelID, b.PackageID, b.DestinationID} {
		if v != nil {
			return *v
		}
	}
	return ""
}

// SetItem populates the column for itemType and clears the other two.
func (b *Booking) SetItem(itemType enums.ItemType, itemID string) {
	b.HotelID, b.PackageID, b.DestinationID = nil, nil, nil
	id := itemID
	switch itemType {
	case enums.ItemTypeHotel:
		b.HotelID = &id
	case enums.ItemTypePackage:
		b.PackageID = &id
	case enums.ItemTypeDestination:
		b.DestinationID = &id
	}
	b.ItemType = itemType
}
